package http

import (
	"net/http"

	"github.com/secmon-lab/guidebook/pkg/usecase"
)

func chatHandler(uc *usecase.UseCases) http.HandlerFunc {
	type request struct {
		Message string `json:"message"`
	}
	type response struct {
		Reply string `json:"reply"`
	}

	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		var req request
		if err := readJSON(r, w, &req); err != nil {
			handleError(w, r, err)
			return
		}

		reply, err := uc.Chat.Advance(ctx, sessionFrom(ctx).ID, req.Message)
		if err != nil {
			handleError(w, r, err)
			return
		}
		writeJSON(ctx, w, http.StatusOK, response{Reply: reply})
	}
}

// chatResetHandler drops the transcript and expires the session cookie
func chatResetHandler(uc *usecase.UseCases, secureCookie bool) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		if err := uc.Chat.Reset(ctx, sessionFrom(ctx).ID); err != nil {
			handleError(w, r, err)
			return
		}

		clearSessionCookie(w, r, secureCookie)
		writeJSON(ctx, w, http.StatusOK, successResponse{Success: true})
	}
}
