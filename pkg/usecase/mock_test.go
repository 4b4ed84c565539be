package usecase_test

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/secmon-lab/guidebook/pkg/domain/model"
	"github.com/secmon-lab/guidebook/pkg/domain/types"
	"github.com/secmon-lab/guidebook/pkg/service/engine"
	"github.com/secmon-lab/guidebook/pkg/service/video"
)

// mockEngine records every request
type mockEngine struct {
	mu         sync.Mutex
	requests   []*engine.Request
	generateFn func(ctx context.Context, call int, req *engine.Request) (string, error)
}

func (m *mockEngine) Generate(ctx context.Context, req *engine.Request) (string, error) {
	m.mu.Lock()
	m.requests = append(m.requests, req)
	call := len(m.requests)
	m.mu.Unlock()

	if m.generateFn != nil {
		return m.generateFn(ctx, call, req)
	}
	return "ok", nil
}

func (m *mockEngine) Calls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.requests)
}

func (m *mockEngine) Request(i int) *engine.Request {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.requests[i]
}

// sequenceEngine returns outputs in order and repeats the last one
func sequenceEngine(outputs ...string) *mockEngine {
	return &mockEngine{
		generateFn: func(ctx context.Context, call int, req *engine.Request) (string, error) {
			if call > len(outputs) {
				return outputs[len(outputs)-1], nil
			}
			return outputs[call-1], nil
		},
	}
}

func guideJSON(days int) string {
	type day struct {
		Day        int      `json:"day"`
		Title      string   `json:"title"`
		Approaches []string `json:"approaches"`
	}
	entries := make([]day, 0, days)
	for d := 1; d <= days; d++ {
		entries = append(entries, day{
			Day:        d,
			Title:      fmt.Sprintf("Day %d", d),
			Approaches: []string{"first approach", "second approach"},
		})
	}
	raw, err := json.Marshal(map[string]any{"goal": "grow", "guide": entries})
	if err != nil {
		panic(err)
	}
	return string(raw)
}

var validGuide = guideJSON(model.GuideDays)

// mockStager records downloads and removals
type mockStager struct {
	mu         sync.Mutex
	dir        string
	downloadFn func(ctx context.Context, sourceURL string) (string, error)
	downloads  int
	removed    []string
}

func (m *mockStager) Download(ctx context.Context, sourceURL string) (string, error) {
	m.mu.Lock()
	m.downloads++
	m.mu.Unlock()
	if m.downloadFn != nil {
		return m.downloadFn(ctx, sourceURL)
	}
	return m.dir + "/video.mp4", nil
}

func (m *mockStager) Remove(ctx context.Context, path string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.removed = append(m.removed, path)
	return nil
}

// mockJobAPI answers status checks from a script
type mockJobAPI struct {
	mu       sync.Mutex
	statuses []types.ExternalStatus
	result   *model.JobResult
	submitFn func(ctx context.Context, localPath string) (*video.Submission, error)
	statusFn func(ctx context.Context, call int) (*video.Status, error)
	submits  int
	checks   int
	released []string
}

func (m *mockJobAPI) Submit(ctx context.Context, localPath string) (*video.Submission, error) {
	m.mu.Lock()
	m.submits++
	m.mu.Unlock()
	if m.submitFn != nil {
		return m.submitFn(ctx, localPath)
	}
	return &video.Submission{ExternalRef: "operations/1", StagedObject: "staging/1.mp4"}, nil
}

func (m *mockJobAPI) Status(ctx context.Context, externalRef string) (*video.Status, error) {
	m.mu.Lock()
	m.checks++
	call := m.checks
	m.mu.Unlock()

	if m.statusFn != nil {
		return m.statusFn(ctx, call)
	}

	state := m.statuses[len(m.statuses)-1]
	if call <= len(m.statuses) {
		state = m.statuses[call-1]
	}
	st := &video.Status{State: state}
	switch state {
	case types.ExternalStatusReady:
		st.Result = m.result
	case types.ExternalStatusFailed:
		st.Reason = "unsupported codec"
	}
	return st, nil
}

func (m *mockJobAPI) Release(ctx context.Context, stagedObject string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.released = append(m.released, stagedObject)
	return nil
}

func (m *mockJobAPI) Checks() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.checks
}
