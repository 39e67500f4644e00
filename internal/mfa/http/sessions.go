package http

import (
	"net/http"

	"github.com/nexosupport/nexomfa/internal/mfa/service"
	"github.com/nexosupport/nexomfa/pkg/httpx"
	"github.com/nexosupport/nexomfa/pkg/mfasdk"
	"github.com/nexosupport/nexomfa/pkg/slogx"
)

// SessionsHandler drives the login verification flow.
type SessionsHandler struct {
	LoginService *service.LoginService
}

// HandleStart handles POST /v1/sessions
//
//	@Summary		Start a verification session
//	@Description	Opens a session for a user whose password was accepted. remote_addr is the end user's address and feeds the IP range factor.
//	@Tags			Sessions
//	@Security		ServiceToken
//	@Accept			json
//	@Produce		json
//	@Param			request	body		mfasdk.StartSessionRequest	true	"User and client address"
//	@Success		201		{object}	mfasdk.SessionResponse
//	@Failure		400		{object}	mfasdk.ErrorResponse	"Missing user_id"
//	@Failure		401		{object}	mfasdk.ErrorResponse	"Invalid or missing service token"
//	@Failure		500		{object}	mfasdk.ErrorResponse	"Internal server error"
//	@Router			/v1/sessions [post]
func (h *SessionsHandler) HandleStart(w http.ResponseWriter, r *http.Request) {
	var req mfasdk.StartSessionRequest
	if err := httpx.DecodeJSON(w, r, &req); err != nil {
		mfasdk.ErrInvalidRequest.WithDescription(err.Error()).WriteError(w)
		return
	}

	slogx.Annotate(r.Context(), "user_id", req.UserID)
	sess, err := h.LoginService.Start(r.Context(), req.UserID, req.RemoteAddr)
	if err != nil {
		writeError(w, r, err)
		return
	}
	slogx.Annotate(r.Context(), "session_id", sess.ID)
	httpx.WriteJSON(w, http.StatusCreated, toSession(sess))
}

// HandleGet handles GET /v1/sessions/{id}
//
//	@Summary		Get session status
//	@Tags			Sessions
//	@Security		ServiceToken
//	@Produce		json
//	@Param			id	path		string	true	"Session ID"
//	@Success		200	{object}	mfasdk.SessionResponse
//	@Failure		401	{object}	mfasdk.ErrorResponse	"Invalid or missing service token"
//	@Failure		404	{object}	mfasdk.ErrorResponse	"Session not found"
//	@Router			/v1/sessions/{id} [get]
func (h *SessionsHandler) HandleGet(w http.ResponseWriter, r *http.Request) {
	sess, err := h.LoginService.Get(r.Context(), r.PathValue("id"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, toSession(sess))
}

// HandleNext handles GET /v1/sessions/{id}/next
//
//	@Summary		Get the next factor
//	@Description	Resolves passive factors and returns the next factor to present. The first time a code factor is
//	@Description	offered its code is sent. done=true means nothing is left to ask; status tells how the session ended
//	@Description	and a satisfied session carries the signed assertion.
//	@Tags			Sessions
//	@Security		ServiceToken
//	@Produce		json
//	@Param			id	path		string	true	"Session ID"
//	@Success		200	{object}	mfasdk.NextFactorResponse
//	@Failure		401	{object}	mfasdk.ErrorResponse	"Invalid or missing service token"
//	@Failure		404	{object}	mfasdk.ErrorResponse	"Session not found"
//	@Failure		409	{object}	mfasdk.ErrorResponse	"Session already complete"
//	@Failure		410	{object}	mfasdk.ErrorResponse	"Session expired"
//	@Router			/v1/sessions/{id}/next [get]
func (h *SessionsHandler) HandleNext(w http.ResponseWriter, r *http.Request) {
	step, err := h.LoginService.Next(r.Context(), r.PathValue("id"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, toNextFactor(step))
}

// HandleVerify handles POST /v1/sessions/{id}/verify
//
//	@Summary		Submit a factor code
//	@Description	Wrong, expired and locked codes are reported in outcome with 200 OK. Errors are reserved for
//	@Description	requests that cannot be processed.
//	@Tags			Sessions
//	@Security		ServiceToken
//	@Accept			json
//	@Produce		json
//	@Param			id		path		string					true	"Session ID"
//	@Param			request	body		mfasdk.VerifyRequest	true	"Factor and code"
//	@Success		200		{object}	mfasdk.VerifyResponse
//	@Failure		400		{object}	mfasdk.ErrorResponse	"Malformed request or non-interactive factor"
//	@Failure		401		{object}	mfasdk.ErrorResponse	"Invalid or missing service token"
//	@Failure		404		{object}	mfasdk.ErrorResponse	"Session or factor not found"
//	@Failure		409		{object}	mfasdk.ErrorResponse	"Session complete or factor already resolved"
//	@Failure		410		{object}	mfasdk.ErrorResponse	"Session expired"
//	@Failure		429		{object}	mfasdk.ErrorResponse	"Too many requests"
//	@Router			/v1/sessions/{id}/verify [post]
func (h *SessionsHandler) HandleVerify(w http.ResponseWriter, r *http.Request) {
	var req mfasdk.VerifyRequest
	if err := httpx.DecodeJSON(w, r, &req); err != nil {
		mfasdk.ErrInvalidRequest.WithDescription(err.Error()).WriteError(w)
		return
	}
	if req.Factor == "" {
		mfasdk.ErrInvalidRequest.WithDescription("factor is required").WriteError(w)
		return
	}

	res, err := h.LoginService.VerifyFactor(r.Context(), r.PathValue("id"), req.Factor, req.Code)
	if err != nil {
		writeError(w, r, err)
		return
	}

	slogx.Annotate(r.Context(),
		"factor", res.Factor,
		"outcome", res.Outcome,
		"session_status", res.Status,
	)
	httpx.WriteJSON(w, http.StatusOK, toVerify(res))
}

// HandleResend handles POST /v1/sessions/{id}/factors/{factor}/resend
//
//	@Summary		Resend a one-time code
//	@Description	Issues a fresh code for an sms or email factor. The previous code stops working.
//	@Tags			Sessions
//	@Security		ServiceToken
//	@Produce		json
//	@Param			id		path		string	true	"Session ID"
//	@Param			factor	path		string	true	"Factor name"	Enums(sms, email)
//	@Success		200		{object}	mfasdk.Delivery
//	@Failure		400		{object}	mfasdk.ErrorResponse	"Factor does not send codes"
//	@Failure		401		{object}	mfasdk.ErrorResponse	"Invalid or missing service token"
//	@Failure		404		{object}	mfasdk.ErrorResponse	"Session or factor not found"
//	@Failure		409		{object}	mfasdk.ErrorResponse	"Not enrolled or factor already resolved"
//	@Failure		429		{object}	mfasdk.ErrorResponse	"Send limit reached"
//	@Router			/v1/sessions/{id}/factors/{factor}/resend [post]
func (h *SessionsHandler) HandleResend(w http.ResponseWriter, r *http.Request) {
	d, err := h.LoginService.Resend(r.Context(), r.PathValue("id"), r.PathValue("factor"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, toDelivery(&d))
}
