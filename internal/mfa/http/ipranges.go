package http

import (
	"net/http"

	"github.com/nexosupport/nexomfa/internal/mfa/domain"
	"github.com/nexosupport/nexomfa/internal/mfa/service"
	"github.com/nexosupport/nexomfa/pkg/httpx"
	"github.com/nexosupport/nexomfa/pkg/mfasdk"
)

type IPRangesHandler struct {
	IPRangeService *service.IPRangeService
}

// HandleList handles GET /v1/ipranges
//
//	@Summary		List IP ranges
//	@Tags			IP Ranges
//	@Security		ServiceToken
//	@Produce		json
//	@Success		200	{object}	mfasdk.IPRangesResponse
//	@Failure		401	{object}	mfasdk.ErrorResponse	"Invalid or missing service token"
//	@Router			/v1/ipranges [get]
func (h *IPRangesHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	list, err := h.IPRangeService.List(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}

	resp := mfasdk.IPRangesResponse{Ranges: make([]mfasdk.IPRange, 0, len(list))}
	for _, ir := range list {
		resp.Ranges = append(resp.Ranges, toIPRange(ir))
	}
	httpx.WriteJSON(w, http.StatusOK, resp)
}

// HandleCreate handles POST /v1/ipranges
//
//	@Summary		Create an IP range
//	@Description	allow ranges pass the IP range factor, deny ranges fail the whole session. Deny wins on overlap.
//	@Tags			IP Ranges
//	@Security		ServiceToken
//	@Accept			json
//	@Produce		json
//	@Param			request	body		mfasdk.CreateIPRangeRequest	true	"Range"
//	@Success		201		{object}	mfasdk.IPRange
//	@Failure		400		{object}	mfasdk.ErrorResponse	"Invalid CIDR or kind"
//	@Failure		401		{object}	mfasdk.ErrorResponse	"Invalid or missing service token"
//	@Failure		409		{object}	mfasdk.ErrorResponse	"Range already exists"
//	@Router			/v1/ipranges [post]
func (h *IPRangesHandler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	var req mfasdk.CreateIPRangeRequest
	if err := httpx.DecodeJSON(w, r, &req); err != nil {
		mfasdk.ErrInvalidRequest.WithDescription(err.Error()).WriteError(w)
		return
	}

	enabled := true
	if req.Enabled != nil {
		enabled = *req.Enabled
	}

	ir, err := h.IPRangeService.Create(r.Context(), service.CreateIPRangeInput{
		CIDR:        req.CIDR,
		Kind:        domain.IPRangeKind(req.Kind),
		Description: req.Description,
		Enabled:     enabled,
	})
	if err != nil {
		writeError(w, r, err)
		return
	}
	httpx.WriteJSON(w, http.StatusCreated, toIPRange(ir))
}

// HandleDelete handles DELETE /v1/ipranges/{id}
//
//	@Summary		Delete an IP range
//	@Tags			IP Ranges
//	@Security		ServiceToken
//	@Param			id	path	string	true	"Range ID"
//	@Success		204
//	@Failure		401	{object}	mfasdk.ErrorResponse	"Invalid or missing service token"
//	@Failure		404	{object}	mfasdk.ErrorResponse	"Range not found"
//	@Router			/v1/ipranges/{id} [delete]
func (h *IPRangesHandler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	if err := h.IPRangeService.Delete(r.Context(), r.PathValue("id")); err != nil {
		writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
