package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/secmon-lab/guidebook/pkg/domain/types"
	"github.com/secmon-lab/guidebook/pkg/usecase"
)

func resourceHandler(uc *usecase.UseCases) http.HandlerFunc {
	type response struct {
		Kind string `json:"kind"`
		Text string `json:"text"`
	}

	return func(w http.ResponseWriter, r *http.Request) {
		kind := types.ResourceKind(chi.URLParam(r, "kind"))
		if !kind.IsValid() {
			writeJSON(r.Context(), w, http.StatusNotFound, errorResponse{Error: "unknown resource"})
			return
		}

		text, err := uc.Resource.Generate(r.Context(), kind)
		if err != nil {
			handleError(w, r, err)
			return
		}
		writeJSON(r.Context(), w, http.StatusOK, response{Kind: string(kind), Text: text})
	}
}
