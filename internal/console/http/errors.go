package http

import (
	"errors"
	"net/http"

	"github.com/aussiebroadwan/specter/internal/console/service"
	"github.com/aussiebroadwan/specter/internal/console/store"
	"github.com/aussiebroadwan/specter/internal/console/upstream"
	"github.com/aussiebroadwan/specter/pkg/consolesdk"
	"github.com/aussiebroadwan/specter/pkg/entra"
	"github.com/aussiebroadwan/specter/pkg/slogx"
)

// writeError maps a service error onto the JSON error body. Anything it does
// not recognise is a 500.
func writeError(w http.ResponseWriter, r *http.Request, err error) {
	apiErr := toAPIError(err)

	log := slogx.FromContext(r.Context())
	if apiErr.StatusCode >= http.StatusInternalServerError {
		log.Error("request failed", "error", err, "code", apiErr.Code)
	} else {
		log.Info("request rejected", "error", err, "code", apiErr.Code)
	}

	apiErr.WriteError(w)
}

func toAPIError(err error) *consolesdk.APIError {
	var (
		cross    *service.CrossIdentityError
		provider *entra.ProviderError
		status   *upstream.StatusError
		storage  *store.StorageError
	)

	switch {
	case errors.As(err, &cross):
		apiErr := consolesdk.NewAPIError(http.StatusConflict, consolesdk.ErrorCodeCrossIdentity, err.Error())
		for _, c := range cross.Candidates {
			apiErr.Candidates = append(apiErr.Candidates, consolesdk.Candidate{
				UPN:       c.UPN,
				TokenID:   c.TokenID,
				ExpiresAt: c.ExpiresAt,
			})
		}
		return apiErr

	case errors.As(err, &provider):
		return &consolesdk.APIError{
			StatusCode:               http.StatusBadGateway,
			Code:                     consolesdk.ErrorCodeExchangeFailed,
			Description:              "the identity provider rejected the token exchange",
			ProviderError:            provider.Code,
			ProviderErrorDescription: provider.Description,
			ProviderStatus:           provider.HTTPStatus,
			ErrorCodes:               provider.ErrorCodes,
		}

	case errors.As(err, &status):
		return &consolesdk.APIError{
			StatusCode:     http.StatusBadGateway,
			Code:           consolesdk.ErrorCodeUpstreamError,
			Description:    err.Error(),
			ProviderStatus: status.StatusCode,
		}

	case errors.Is(err, service.ErrNoActiveContext):
		return consolesdk.ErrNoActiveContext
	case errors.Is(err, service.ErrNoRefreshTokenAvailable):
		return consolesdk.ErrNoRefreshToken.WithDescription(err.Error())
	case errors.Is(err, service.ErrInvalidTokenReceived):
		return consolesdk.ErrInvalidTokenReceived.WithDescription(err.Error())
	case errors.Is(err, entra.ErrUpstreamTimeout):
		return consolesdk.ErrUpstreamTimeout

	case errors.Is(err, store.ErrNotFound):
		return consolesdk.ErrNotFound
	case errors.Is(err, store.ErrAlreadyExists):
		return consolesdk.NewAPIError(http.StatusConflict, consolesdk.ErrorCodeConflict, "resource already exists")

	case errors.Is(err, service.ErrInvalidRequest),
		errors.Is(err, service.ErrEmptyImport),
		errors.Is(err, service.ErrInvalidConfig),
		errors.Is(err, service.ErrInvalidTOTPCode):
		return consolesdk.ErrInvalidRequest.WithDescription(err.Error())
	case errors.Is(err, service.ErrNotRefreshToken):
		return consolesdk.NewAPIError(http.StatusBadRequest, consolesdk.ErrorCodeNotRefreshToken, err.Error())
	case errors.Is(err, service.ErrNotRedeemable):
		return consolesdk.NewAPIError(http.StatusConflict, consolesdk.ErrorCodeClientNotInFamily, err.Error())
	case errors.Is(err, service.ErrSchedulerRunning),
		errors.Is(err, service.ErrSchedulerNotRunning):
		return consolesdk.NewAPIError(http.StatusConflict, consolesdk.ErrorCodeSchedulerState, err.Error())
	case errors.Is(err, service.ErrTOTPAlreadyEnabled),
		errors.Is(err, service.ErrTOTPNotEnrolled):
		return consolesdk.NewAPIError(http.StatusConflict, consolesdk.ErrorCodeConflict, err.Error())

	case errors.As(err, &storage):
		return consolesdk.ErrStorage
	default:
		return consolesdk.ErrServerError
	}
}
