package http

import (
	"net/http"

	"github.com/aussiebroadwan/specter/internal/console/service"
	"github.com/aussiebroadwan/specter/pkg/consolesdk"
	"github.com/aussiebroadwan/specter/pkg/httpx"
)

// OperatorsHandler handles operator self-service.
type OperatorsHandler struct {
	OperatorService *service.OperatorService
}

// HandleEnrollTOTP handles POST /v1/operators/me/totp/enroll
//
//	@Summary		Enroll TOTP
//	@Description	Generates a TOTP secret for the calling operator. It is enforced only after a code is verified.
//	@Tags			Operators
//	@Produce		json
//	@Security		APIKeyAuth
//	@Success		200	{object}	consolesdk.TOTPEnrollResponse
//	@Failure		409	{object}	consolesdk.APIError	"TOTP already enabled"
//	@Router			/v1/operators/me/totp/enroll [post].
func (h *OperatorsHandler) HandleEnrollTOTP(w http.ResponseWriter, r *http.Request) {
	enr, err := h.OperatorService.EnrollTOTP(r.Context(), httpx.OperatorID(r.Context()))
	if err != nil {
		writeError(w, r, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, consolesdk.TOTPEnrollResponse{
		Secret:  enr.Secret,
		URL:     enr.URL,
		Issuer:  enr.Issuer,
		Account: enr.Account,
	})
}

// HandleVerifyTOTP handles POST /v1/operators/me/totp/verify
//
//	@Summary		Verify TOTP
//	@Description	Confirms enrollment with a current code. Every later request must carry X-OTP.
//	@Tags			Operators
//	@Accept			json
//	@Security		APIKeyAuth
//	@Param			request	body	consolesdk.TOTPVerifyRequest	true	"Six digit code"
//	@Success		204		"TOTP enabled"
//	@Failure		400		{object}	consolesdk.APIError	"invalid code"
//	@Failure		409		{object}	consolesdk.APIError	"not enrolled or already enabled"
//	@Router			/v1/operators/me/totp/verify [post].
func (h *OperatorsHandler) HandleVerifyTOTP(w http.ResponseWriter, r *http.Request) {
	var req consolesdk.TOTPVerifyRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		consolesdk.ErrInvalidRequest.WithDescription(err.Error()).WriteError(w)
		return
	}

	if err := h.OperatorService.VerifyTOTP(r.Context(), httpx.OperatorID(r.Context()), req.Code); err != nil {
		writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// HandleRotateAPIKey handles POST /v1/operators/me/api-key
//
//	@Summary		Rotate API Key
//	@Description	Issues a new API key for the calling operator. The old key stops working immediately.
//	@Tags			Operators
//	@Produce		json
//	@Security		APIKeyAuth
//	@Success		200	{object}	consolesdk.APIKeyResponse
//	@Router			/v1/operators/me/api-key [post].
func (h *OperatorsHandler) HandleRotateAPIKey(w http.ResponseWriter, r *http.Request) {
	key, err := h.OperatorService.RotateAPIKey(r.Context(), httpx.OperatorID(r.Context()))
	if err != nil {
		writeError(w, r, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, consolesdk.APIKeyResponse{APIKey: key})
}
