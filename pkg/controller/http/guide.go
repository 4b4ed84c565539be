package http

import (
	"net/http"
	"net/url"

	"github.com/go-chi/chi/v5"
	"github.com/secmon-lab/guidebook/pkg/domain/model"
	"github.com/secmon-lab/guidebook/pkg/usecase"
)

type topicResponse struct {
	Index int    `json:"index"`
	Name  string `json:"name"`
}

type dayResponse struct {
	Day        int      `json:"day"`
	Title      string   `json:"title"`
	Approaches []string `json:"approaches"`
	Completed  bool     `json:"completed"`
}

type guideResponse struct {
	Goal  string        `json:"goal"`
	Guide []dayResponse `json:"guide"`
}

type previewRequest struct {
	GoalIndex *int `json:"goal_index"`
}

type previewResponse struct {
	guideResponse
	Attempts int `json:"attempts"`
}

func toGuideResponse(g *model.Guide, completion map[int]bool) guideResponse {
	resp := guideResponse{
		Goal:  g.Goal,
		Guide: make([]dayResponse, len(g.Entries)),
	}
	for i, e := range g.Entries {
		resp.Guide[i] = dayResponse{
			Day:        e.Day,
			Title:      e.Title,
			Approaches: e.Approaches,
			Completed:  completion[e.Day],
		}
	}
	return resp
}

func topicsHandler(uc *usecase.UseCases) http.HandlerFunc {
	type response struct {
		Topics []topicResponse `json:"topics"`
	}

	return func(w http.ResponseWriter, r *http.Request) {
		topics := uc.Guide.Topics()
		resp := response{Topics: make([]topicResponse, len(topics))}
		for i, name := range topics {
			resp.Topics[i] = topicResponse{Index: i, Name: name}
		}
		writeJSON(r.Context(), w, http.StatusOK, resp)
	}
}

// guideHandler returns the user's guide for a topic, generating it on first access
func guideHandler(uc *usecase.UseCases) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		sess := sessionFrom(ctx)

		topic := chi.URLParam(r, "topic")
		if unescaped, err := url.PathUnescape(topic); err == nil {
			topic = unescaped
		}

		guide, err := uc.Guide.SynthesizeOrFetch(ctx, sess.UserID, topic)
		if err != nil {
			handleError(w, r, err)
			return
		}

		completion, err := uc.Progress.Completion(ctx, sess.UserID, topic)
		if err != nil {
			handleError(w, r, err)
			return
		}

		writeJSON(ctx, w, http.StatusOK, toGuideResponse(guide, completion))
	}
}

// guidePreviewHandler generates a guide for a topic index without storing it
func guidePreviewHandler(uc *usecase.UseCases) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req previewRequest
		if err := readJSON(r, w, &req); err != nil {
			handleError(w, r, err)
			return
		}
		if req.GoalIndex == nil {
			writeJSON(r.Context(), w, http.StatusBadRequest, errorResponse{Error: "goal_index is required"})
			return
		}

		guide, attempts, err := uc.Guide.Synthesize(r.Context(), *req.GoalIndex)
		if err != nil {
			handleError(w, r, err)
			return
		}

		writeJSON(r.Context(), w, http.StatusOK, previewResponse{
			guideResponse: toGuideResponse(guide, nil),
			Attempts:      attempts,
		})
	}
}
