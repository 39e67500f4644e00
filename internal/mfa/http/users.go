package http

import (
	"net/http"
	"strconv"

	"github.com/nexosupport/nexomfa/internal/mfa/domain"
	"github.com/nexosupport/nexomfa/internal/mfa/service"
	"github.com/nexosupport/nexomfa/pkg/httpx"
	"github.com/nexosupport/nexomfa/pkg/mfasdk"
	"github.com/nexosupport/nexomfa/pkg/slogx"
)

// UsersHandler manages a user's factor enrollments.
type UsersHandler struct {
	EnrollmentService *service.EnrollmentService
}

// HandleList handles GET /v1/users/{user_id}/factors
//
//	@Summary		List a user's factors
//	@Description	Phone numbers and addresses are masked. Backup codes report how many are left.
//	@Tags			Users
//	@Security		ServiceToken
//	@Produce		json
//	@Param			user_id	path		string	true	"User ID"
//	@Success		200		{object}	mfasdk.UserFactorsResponse
//	@Failure		401		{object}	mfasdk.ErrorResponse	"Invalid or missing service token"
//	@Failure		500		{object}	mfasdk.ErrorResponse	"Internal server error"
//	@Router			/v1/users/{user_id}/factors [get]
func (h *UsersHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	userID := r.PathValue("user_id")

	list, err := h.EnrollmentService.ListFactors(r.Context(), userID)
	if err != nil {
		writeError(w, r, err)
		return
	}

	resp := mfasdk.UserFactorsResponse{
		UserID:  userID,
		Factors: make([]mfasdk.UserFactor, 0, len(list)),
	}
	for _, f := range list {
		resp.Factors = append(resp.Factors, toUserFactor(f))
	}
	httpx.WriteJSON(w, http.StatusOK, resp)
}

// HandleRevoke handles DELETE /v1/users/{user_id}/factors/{factor}
//
//	@Summary		Revoke a factor
//	@Description	Removes the enrollment and every pending code of the factor.
//	@Tags			Users
//	@Security		ServiceToken
//	@Param			user_id	path	string	true	"User ID"
//	@Param			factor	path	string	true	"Factor name"
//	@Success		204
//	@Failure		401	{object}	mfasdk.ErrorResponse	"Invalid or missing service token"
//	@Failure		404	{object}	mfasdk.ErrorResponse	"Enrollment not found"
//	@Router			/v1/users/{user_id}/factors/{factor} [delete]
func (h *UsersHandler) HandleRevoke(w http.ResponseWriter, r *http.Request) {
	userID, name := r.PathValue("user_id"), r.PathValue("factor")

	if err := h.EnrollmentService.Revoke(r.Context(), userID, name); err != nil {
		writeError(w, r, err)
		return
	}

	slogx.FromContext(r.Context()).Info("factor revoked", "user_id", userID, "factor", name)
	w.WriteHeader(http.StatusNoContent)
}

// HandleUnlock handles POST /v1/users/{user_id}/factors/{factor}/unlock
//
//	@Summary		Unlock a factor
//	@Description	Clears the lock and failure counter left by too many wrong codes.
//	@Tags			Users
//	@Security		ServiceToken
//	@Param			user_id	path	string	true	"User ID"
//	@Param			factor	path	string	true	"Factor name"
//	@Success		204
//	@Failure		401	{object}	mfasdk.ErrorResponse	"Invalid or missing service token"
//	@Failure		404	{object}	mfasdk.ErrorResponse	"Enrollment not found"
//	@Router			/v1/users/{user_id}/factors/{factor}/unlock [post]
func (h *UsersHandler) HandleUnlock(w http.ResponseWriter, r *http.Request) {
	userID, name := r.PathValue("user_id"), r.PathValue("factor")

	if err := h.EnrollmentService.Unlock(r.Context(), userID, name); err != nil {
		writeError(w, r, err)
		return
	}

	slogx.FromContext(r.Context()).Info("factor unlocked", "user_id", userID, "factor", name)
	w.WriteHeader(http.StatusNoContent)
}

// HandleBeginTOTP handles POST /v1/users/{user_id}/factors/totp
//
//	@Summary		Begin authenticator enrollment
//	@Description	Creates a pending TOTP secret. Show otpauth_url as a QR code, then confirm with the first code.
//	@Tags			Users
//	@Security		ServiceToken
//	@Accept			json
//	@Produce		json
//	@Param			user_id	path		string					true	"User ID"
//	@Param			request	body		mfasdk.TOTPBeginRequest	true	"Account label"
//	@Success		200		{object}	mfasdk.TOTPEnrollResponse
//	@Failure		401		{object}	mfasdk.ErrorResponse	"Invalid or missing service token"
//	@Failure		404		{object}	mfasdk.ErrorResponse	"TOTP factor disabled"
//	@Failure		409		{object}	mfasdk.ErrorResponse	"Already enrolled"
//	@Router			/v1/users/{user_id}/factors/totp [post]
func (h *UsersHandler) HandleBeginTOTP(w http.ResponseWriter, r *http.Request) {
	var req mfasdk.TOTPBeginRequest
	if err := httpx.DecodeJSON(w, r, &req); err != nil {
		mfasdk.ErrInvalidRequest.WithDescription(err.Error()).WriteError(w)
		return
	}

	enr, err := h.EnrollmentService.BeginTOTP(r.Context(), r.PathValue("user_id"), req.Account)
	if err != nil {
		writeError(w, r, err)
		return
	}

	httpx.WriteJSON(w, http.StatusOK, mfasdk.TOTPEnrollResponse{
		Secret:     enr.Secret,
		OTPAuthURL: enr.URL,
		Issuer:     enr.Issuer,
		Account:    enr.Account,
	})
}

// HandleConfirmTOTP handles POST /v1/users/{user_id}/factors/totp/confirm
//
//	@Summary		Confirm authenticator enrollment
//	@Tags			Users
//	@Security		ServiceToken
//	@Accept			json
//	@Param			user_id	path	string						true	"User ID"
//	@Param			request	body	mfasdk.TOTPConfirmRequest	true	"First code from the app"
//	@Success		204
//	@Failure		400	{object}	mfasdk.ErrorResponse	"Invalid code"
//	@Failure		401	{object}	mfasdk.ErrorResponse	"Invalid or missing service token"
//	@Failure		409	{object}	mfasdk.ErrorResponse	"No pending enrollment or already enrolled"
//	@Failure		429	{object}	mfasdk.ErrorResponse	"Too many requests"
//	@Router			/v1/users/{user_id}/factors/totp/confirm [post]
func (h *UsersHandler) HandleConfirmTOTP(w http.ResponseWriter, r *http.Request) {
	var req mfasdk.TOTPConfirmRequest
	if err := httpx.DecodeJSON(w, r, &req); err != nil {
		mfasdk.ErrInvalidRequest.WithDescription(err.Error()).WriteError(w)
		return
	}

	if err := h.EnrollmentService.ConfirmTOTP(r.Context(), r.PathValue("user_id"), req.Code); err != nil {
		writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// HandleSetPhone handles PUT /v1/users/{user_id}/factors/sms
//
//	@Summary		Set the SMS phone number
//	@Description	Accepts common formatting and stores the number in E.164. Replaces any previous number.
//	@Tags			Users
//	@Security		ServiceToken
//	@Accept			json
//	@Produce		json
//	@Param			user_id	path		string						true	"User ID"
//	@Param			request	body		mfasdk.DestinationRequest	true	"Phone number"
//	@Success		200		{object}	mfasdk.UserFactor
//	@Failure		400		{object}	mfasdk.ErrorResponse	"Invalid phone number"
//	@Failure		401		{object}	mfasdk.ErrorResponse	"Invalid or missing service token"
//	@Failure		404		{object}	mfasdk.ErrorResponse	"SMS factor disabled"
//	@Router			/v1/users/{user_id}/factors/sms [put]
func (h *UsersHandler) HandleSetPhone(w http.ResponseWriter, r *http.Request) {
	h.setDestination(w, r, domain.FactorSMS)
}

// HandleSetEmail handles PUT /v1/users/{user_id}/factors/email
//
//	@Summary		Set the email address
//	@Tags			Users
//	@Security		ServiceToken
//	@Accept			json
//	@Produce		json
//	@Param			user_id	path		string						true	"User ID"
//	@Param			request	body		mfasdk.DestinationRequest	true	"Email address"
//	@Success		200		{object}	mfasdk.UserFactor
//	@Failure		400		{object}	mfasdk.ErrorResponse	"Invalid email address"
//	@Failure		401		{object}	mfasdk.ErrorResponse	"Invalid or missing service token"
//	@Failure		404		{object}	mfasdk.ErrorResponse	"Email factor disabled"
//	@Router			/v1/users/{user_id}/factors/email [put]
func (h *UsersHandler) HandleSetEmail(w http.ResponseWriter, r *http.Request) {
	h.setDestination(w, r, domain.FactorEmail)
}

func (h *UsersHandler) setDestination(w http.ResponseWriter, r *http.Request, name string) {
	var req mfasdk.DestinationRequest
	if err := httpx.DecodeJSON(w, r, &req); err != nil {
		mfasdk.ErrInvalidRequest.WithDescription(err.Error()).WriteError(w)
		return
	}

	uf, err := h.EnrollmentService.SetDestination(r.Context(), r.PathValue("user_id"), name, req.Destination, req.Label)
	if err != nil {
		writeError(w, r, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, toUserFactor(uf))
}

// HandleRegenerateBackupCodes handles POST /v1/users/{user_id}/factors/backupcodes
//
//	@Summary		Regenerate backup codes
//	@Description	Replaces every backup code of the user. This is the only time the codes are returned.
//	@Tags			Users
//	@Security		ServiceToken
//	@Produce		json
//	@Param			user_id	path		string	true	"User ID"
//	@Success		200		{object}	mfasdk.BackupCodesResponse
//	@Failure		401		{object}	mfasdk.ErrorResponse	"Invalid or missing service token"
//	@Failure		404		{object}	mfasdk.ErrorResponse	"Backup codes disabled"
//	@Router			/v1/users/{user_id}/factors/backupcodes [post]
func (h *UsersHandler) HandleRegenerateBackupCodes(w http.ResponseWriter, r *http.Request) {
	codes, err := h.EnrollmentService.RegenerateBackupCodes(r.Context(), r.PathValue("user_id"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, mfasdk.BackupCodesResponse{Codes: codes})
}

// HandleAudit handles GET /v1/users/{user_id}/audit
//
//	@Summary		List audit events
//	@Description	Newest first. Pass next_before back as before to page.
//	@Tags			Users
//	@Security		ServiceToken
//	@Produce		json
//	@Param			user_id	path		string	true	"User ID"
//	@Param			before	query		string	false	"Return events older than this event ID"
//	@Param			limit	query		int		false	"Page size (default 50, max 200)"
//	@Success		200		{object}	mfasdk.AuditResponse
//	@Failure		400		{object}	mfasdk.ErrorResponse	"Invalid limit"
//	@Failure		401		{object}	mfasdk.ErrorResponse	"Invalid or missing service token"
//	@Router			/v1/users/{user_id}/audit [get]
func (h *UsersHandler) HandleAudit(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	limit := service.DefaultAuditPageSize
	if v := q.Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n <= 0 {
			mfasdk.ErrInvalidRequest.WithDescription("limit must be a positive integer").WriteError(w)
			return
		}
		limit = min(n, service.MaxAuditPageSize)
	}

	events, err := h.EnrollmentService.ListAudit(r.Context(), r.PathValue("user_id"), q.Get("before"), limit)
	if err != nil {
		writeError(w, r, err)
		return
	}

	resp := mfasdk.AuditResponse{Events: make([]mfasdk.AuditEvent, 0, len(events))}
	for _, e := range events {
		resp.Events = append(resp.Events, toAuditEvent(e))
	}
	if len(events) == limit {
		resp.NextBefore = events[len(events)-1].ID
	}
	httpx.WriteJSON(w, http.StatusOK, resp)
}
