package http

import (
	"net/http"

	"github.com/secmon-lab/guidebook/pkg/usecase"
)

type progressRequest struct {
	Topic     string `json:"topic"`
	Day       int    `json:"day"`
	Completed bool   `json:"completed"`
}

type progressDay struct {
	Day       int  `json:"day"`
	Completed bool `json:"completed"`
}

func progressListHandler(uc *usecase.UseCases) http.HandlerFunc {
	type response struct {
		Progress map[string][]progressDay `json:"progress"`
	}

	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		grouped, err := uc.Progress.List(ctx, sessionFrom(ctx).UserID)
		if err != nil {
			handleError(w, r, err)
			return
		}

		resp := response{Progress: make(map[string][]progressDay, len(grouped))}
		for topic, records := range grouped {
			days := make([]progressDay, len(records))
			for i, p := range records {
				days[i] = progressDay{Day: p.Day, Completed: p.Completed}
			}
			resp.Progress[topic] = days
		}
		writeJSON(ctx, w, http.StatusOK, resp)
	}
}

func progressSetHandler(uc *usecase.UseCases) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		var req progressRequest
		if err := readJSON(r, w, &req); err != nil {
			handleError(w, r, err)
			return
		}

		if err := uc.Progress.SetDayCompletion(ctx, sessionFrom(ctx).UserID, req.Topic, req.Day, req.Completed); err != nil {
			handleError(w, r, err)
			return
		}
		writeJSON(ctx, w, http.StatusOK, successResponse{Success: true})
	}
}
