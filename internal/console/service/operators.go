package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/aussiebroadwan/specter/internal/console/domain"
	"github.com/aussiebroadwan/specter/internal/console/store"
	"github.com/aussiebroadwan/specter/pkg/cryptox"
	"github.com/aussiebroadwan/specter/pkg/httpx"
	"github.com/aussiebroadwan/specter/pkg/idx"
	"github.com/aussiebroadwan/specter/pkg/slogx"
	"github.com/pquerna/otp"
	"github.com/pquerna/otp/totp"
)

// APIKeyPrefix starts every operator API key: sk_<operator id>_<secret>.
const APIKeyPrefix = "sk"

const defaultAdminUsername = "admin"

var (
	ErrInvalidTOTPCode    = errors.New("invalid TOTP code")
	ErrTOTPNotEnrolled    = errors.New("TOTP not enrolled, call enroll first")
	ErrTOTPAlreadyEnabled = errors.New("TOTP already enabled for this operator")
	ErrInvalidAPIKey      = errors.New("api key must look like sk_<ulid>_<secret>")
)

// OperatorService authenticates console operators and manages their
// credentials. It satisfies httpx.Authenticator.
type OperatorService struct {
	Store  store.Store
	Issuer string // TOTP issuer, e.g. "Specter"
	Now    func() time.Time
}

var _ httpx.Authenticator = (*OperatorService)(nil)

func (s *OperatorService) now() time.Time {
	if s.Now != nil {
		return s.Now().UTC()
	}
	return time.Now().UTC()
}

// Bootstrap creates the admin operator when none exist. presetKey, when set,
// becomes the admin's key and must have the sk_<ulid>_<secret> shape. The
// returned key is empty when operators already exist.
func (s *OperatorService) Bootstrap(ctx context.Context, presetKey string) (string, error) {
	empty, err := s.Store.Operators().IsEmpty(ctx)
	if err != nil {
		return "", fmt.Errorf("checking operators: %w", err)
	}
	if !empty {
		return "", nil
	}

	id, key := idx.New(), ""
	if presetKey != "" {
		parsed, _, err := idx.SplitPrefixed(APIKeyPrefix, presetKey)
		if err != nil {
			return "", fmt.Errorf("%w: %v", ErrInvalidAPIKey, err)
		}
		id, key = parsed, presetKey
	} else if key, err = newAPIKey(id); err != nil {
		return "", err
	}

	hash, err := cryptox.HashAPIKey(key)
	if err != nil {
		return "", fmt.Errorf("hashing api key: %w", err)
	}
	now := s.now()
	err = s.Store.Operators().CreateOperator(ctx, domain.Operator{
		ID:         id.String(),
		Username:   defaultAdminUsername,
		APIKeyHash: hash,
		CreatedAt:  now,
	})
	if err != nil {
		return "", fmt.Errorf("creating admin operator: %w", err)
	}

	slogx.FromContext(ctx).Info("bootstrap operator created", "operator", defaultAdminUsername, "operator_id", id)
	return key, nil
}

func newAPIKey(id idx.ID) (string, error) {
	secret, err := cryptox.GenerateToken(cryptox.TokenSize256)
	if err != nil {
		return "", err
	}
	// base64url may contain '_', which SplitPrefixed tolerates in the suffix.
	return idx.Prefixed(APIKeyPrefix, id, secret), nil
}

// Authenticate resolves an API key (and OTP code when the operator enabled
// TOTP) to a principal.
func (s *OperatorService) Authenticate(ctx context.Context, apiKey, code string) (httpx.Principal, error) {
	id, _, err := idx.SplitPrefixed(APIKeyPrefix, apiKey)
	if err != nil {
		return httpx.Principal{}, httpx.ErrUnauthenticated
	}

	op, err := s.Store.Operators().GetOperator(ctx, id.String())
	if errors.Is(err, store.ErrNotFound) {
		return httpx.Principal{}, httpx.ErrUnauthenticated
	}
	if err != nil {
		return httpx.Principal{}, err
	}

	if err := cryptox.VerifyAPIKey(apiKey, op.APIKeyHash); err != nil {
		return httpx.Principal{}, httpx.ErrUnauthenticated
	}

	if op.TOTPEnabled() {
		if code == "" || op.TOTPSecret == nil || !totp.Validate(code, *op.TOTPSecret) {
			return httpx.Principal{}, httpx.ErrOTPRequired
		}
	}

	if err := s.Store.Operators().TouchLastSeen(ctx, op.ID, s.now()); err != nil {
		slogx.FromContext(ctx).Warn("failed to record operator activity", "operator_id", op.ID, "err", err)
	}
	return httpx.Principal{OperatorID: op.ID, Username: op.Username}, nil
}

// EnrollTOTP stores a new pending TOTP secret. TOTP is enforced only after
// VerifyTOTP confirms a code.
func (s *OperatorService) EnrollTOTP(ctx context.Context, operatorID string) (domain.TOTPEnrollment, error) {
	op, err := s.Store.Operators().GetOperator(ctx, operatorID)
	if err != nil {
		return domain.TOTPEnrollment{}, err
	}
	if op.TOTPEnabled() {
		return domain.TOTPEnrollment{}, ErrTOTPAlreadyEnabled
	}

	key, err := totp.Generate(totp.GenerateOpts{
		Issuer:      s.issuer(),
		AccountName: op.Username,
		Period:      30,
		Digits:      otp.DigitsSix,
		Algorithm:   otp.AlgorithmSHA1,
	})
	if err != nil {
		return domain.TOTPEnrollment{}, fmt.Errorf("generating TOTP key: %w", err)
	}
	if err := s.Store.Operators().UpdateTOTPSecret(ctx, op.ID, key.Secret()); err != nil {
		return domain.TOTPEnrollment{}, fmt.Errorf("storing TOTP secret: %w", err)
	}

	return domain.TOTPEnrollment{
		Secret:  key.Secret(),
		URL:     key.URL(),
		Issuer:  s.issuer(),
		Account: op.Username,
	}, nil
}

// VerifyTOTP checks code against the pending secret and enables TOTP.
func (s *OperatorService) VerifyTOTP(ctx context.Context, operatorID, code string) error {
	op, err := s.Store.Operators().GetOperator(ctx, operatorID)
	if err != nil {
		return err
	}
	if op.TOTPEnabled() {
		return ErrTOTPAlreadyEnabled
	}
	if op.TOTPSecret == nil || *op.TOTPSecret == "" {
		return ErrTOTPNotEnrolled
	}
	if !totp.Validate(strings.TrimSpace(code), *op.TOTPSecret) {
		return ErrInvalidTOTPCode
	}

	if err := s.Store.Operators().EnableTOTP(ctx, op.ID, s.now()); err != nil {
		return fmt.Errorf("enabling TOTP: %w", err)
	}
	slogx.FromContext(ctx).Info("operator enabled TOTP", "operator_id", op.ID)
	return nil
}

// RotateAPIKey replaces the operator's key. The old key stops working
// immediately.
func (s *OperatorService) RotateAPIKey(ctx context.Context, operatorID string) (string, error) {
	id, err := idx.Parse(operatorID)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrInvalidRequest, err)
	}
	key, err := newAPIKey(id)
	if err != nil {
		return "", err
	}
	hash, err := cryptox.HashAPIKey(key)
	if err != nil {
		return "", fmt.Errorf("hashing api key: %w", err)
	}
	if err := s.Store.Operators().UpdateAPIKeyHash(ctx, operatorID, hash); err != nil {
		return "", err
	}
	slogx.FromContext(ctx).Info("operator api key rotated", "operator_id", operatorID)
	return key, nil
}

func (s *OperatorService) issuer() string {
	if s.Issuer != "" {
		return s.Issuer
	}
	return "Specter"
}
