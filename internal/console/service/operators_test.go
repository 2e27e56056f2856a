package service

import (
	"context"
	"testing"
	"time"

	"github.com/aussiebroadwan/specter/pkg/httpx"
	"github.com/aussiebroadwan/specter/pkg/idx"
	"github.com/pquerna/otp/totp"
	"github.com/stretchr/testify/require"
)

func newOperators(t *testing.T) (*OperatorService, string) {
	t.Helper()
	f := newFixture(t)
	ops := &OperatorService{Store: f.store, Issuer: "Specter Test"}

	key, err := ops.Bootstrap(context.Background(), "")
	require.NoError(t, err)
	require.NotEmpty(t, key)
	return ops, key
}

func TestBootstrapRunsOnce(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	ops, key := newOperators(t)

	p, err := ops.Authenticate(ctx, key, "")
	require.NoError(t, err)
	require.Equal(t, "admin", p.Username)

	again, err := ops.Bootstrap(ctx, "")
	require.NoError(t, err)
	require.Empty(t, again, "existing operators are left alone")

	op, err := ops.Store.Operators().GetOperator(ctx, p.OperatorID)
	require.NoError(t, err)
	require.NotNil(t, op.LastSeenAt)
	require.NotContains(t, op.APIKeyHash, key)
}

func TestBootstrapWithPresetKey(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	f := newFixture(t)
	ops := &OperatorService{Store: f.store}

	_, err := ops.Bootstrap(ctx, "not-a-key")
	require.ErrorIs(t, err, ErrInvalidAPIKey)

	id := idx.New()
	preset := idx.Prefixed(APIKeyPrefix, id, "correct-horse-battery-staple")

	key, err := ops.Bootstrap(ctx, preset)
	require.NoError(t, err)
	require.Equal(t, preset, key)

	p, err := ops.Authenticate(ctx, preset, "")
	require.NoError(t, err)
	require.Equal(t, id.String(), p.OperatorID)
}

func TestAuthenticateRejectsBadKeys(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	ops, key := newOperators(t)

	cases := map[string]string{
		"empty":         "",
		"garbage":       "hunter2",
		"wrong secret":  key + "x",
		"wrong prefix":  "pk" + key[len(APIKeyPrefix):],
		"unknown owner": idx.Prefixed(APIKeyPrefix, idx.New(), "secret"),
	}
	for name, candidate := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := ops.Authenticate(ctx, candidate, "")
			require.ErrorIs(t, err, httpx.ErrUnauthenticated)
		})
	}
}

func TestTOTPEnrollment(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	ops, key := newOperators(t)

	p, err := ops.Authenticate(ctx, key, "")
	require.NoError(t, err)

	require.ErrorIs(t, ops.VerifyTOTP(ctx, p.OperatorID, "000000"), ErrTOTPNotEnrolled)

	enrollment, err := ops.EnrollTOTP(ctx, p.OperatorID)
	require.NoError(t, err)
	require.NotEmpty(t, enrollment.Secret)
	require.Contains(t, enrollment.URL, "otpauth://totp/")
	require.Equal(t, "Specter Test", enrollment.Issuer)
	require.Equal(t, "admin", enrollment.Account)

	// Pending enrollment does not gate the key yet.
	_, err = ops.Authenticate(ctx, key, "")
	require.NoError(t, err)

	require.ErrorIs(t, ops.VerifyTOTP(ctx, p.OperatorID, "not-a-code"), ErrInvalidTOTPCode)

	code, err := totp.GenerateCode(enrollment.Secret, time.Now())
	require.NoError(t, err)
	require.NoError(t, ops.VerifyTOTP(ctx, p.OperatorID, " "+code+" "))

	_, err = ops.EnrollTOTP(ctx, p.OperatorID)
	require.ErrorIs(t, err, ErrTOTPAlreadyEnabled)

	_, err = ops.Authenticate(ctx, key, "")
	require.ErrorIs(t, err, httpx.ErrOTPRequired)

	_, err = ops.Authenticate(ctx, key, "123")
	require.ErrorIs(t, err, httpx.ErrOTPRequired)

	code, err = totp.GenerateCode(enrollment.Secret, time.Now())
	require.NoError(t, err)
	_, err = ops.Authenticate(ctx, key, code)
	require.NoError(t, err)
}

func TestRotateAPIKey(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	ops, key := newOperators(t)

	p, err := ops.Authenticate(ctx, key, "")
	require.NoError(t, err)

	rotated, err := ops.RotateAPIKey(ctx, p.OperatorID)
	require.NoError(t, err)
	require.NotEqual(t, key, rotated)

	_, err = ops.Authenticate(ctx, key, "")
	require.ErrorIs(t, err, httpx.ErrUnauthenticated)

	again, err := ops.Authenticate(ctx, rotated, "")
	require.NoError(t, err)
	require.Equal(t, p.OperatorID, again.OperatorID)

	_, err = ops.RotateAPIKey(ctx, "nope")
	require.ErrorIs(t, err, ErrInvalidRequest)
}
