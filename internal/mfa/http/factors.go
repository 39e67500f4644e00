package http

import (
	"net/http"

	"github.com/nexosupport/nexomfa/internal/mfa/factor"
	"github.com/nexosupport/nexomfa/pkg/httpx"
	"github.com/nexosupport/nexomfa/pkg/mfasdk"
)

type FactorsHandler struct {
	Registry *factor.Registry
}

// HandleList handles GET /v1/factors
//
//	@Summary		List enabled factors
//	@Description	Returns enabled factors in presentation order (weight ascending) and whether any of them needs user input.
//	@Tags			Factors
//	@Security		ServiceToken
//	@Produce		json
//	@Success		200	{object}	mfasdk.FactorsResponse
//	@Failure		401	{object}	mfasdk.ErrorResponse	"Invalid or missing service token"
//	@Router			/v1/factors [get]
func (h *FactorsHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	enabled := h.Registry.Enabled()

	resp := mfasdk.FactorsResponse{
		Factors:         make([]mfasdk.FactorDescriptor, 0, len(enabled)),
		HasInputFactors: h.Registry.HasInputFactors(),
	}
	for _, f := range enabled {
		resp.Factors = append(resp.Factors, toDescriptor(f))
	}
	httpx.WriteJSON(w, http.StatusOK, resp)
}
