package http

import (
	"net/http"

	"github.com/secmon-lab/guidebook/pkg/usecase"
)

func videoSummarizeHandler(uc *usecase.UseCases) http.HandlerFunc {
	type request struct {
		URL string `json:"url"`
	}
	type response struct {
		Summary string `json:"summary"`
	}

	return func(w http.ResponseWriter, r *http.Request) {
		var req request
		if err := readJSON(r, w, &req); err != nil {
			handleError(w, r, err)
			return
		}

		summary, err := uc.Video.SummarizeRemoteVideo(r.Context(), req.URL)
		if err != nil {
			handleError(w, r, err)
			return
		}
		writeJSON(r.Context(), w, http.StatusOK, response{Summary: summary})
	}
}
