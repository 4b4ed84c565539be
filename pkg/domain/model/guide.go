package model

import (
	"bytes"
	"encoding/json"
	"sort"
	"strings"

	"github.com/m-mizutani/goerr/v2"
)

// GuideDays is the number of days in every guide
const GuideDays = 21

// DayEntry is one day of a guide
type DayEntry struct {
	Day        int
	Title      string
	Approaches []string
}

// Guide is a 21-day structured guide for a single topic. Entries are ordered by Day.
// Completion state is tracked separately in Progress.
type Guide struct {
	Goal    string
	Entries []*DayEntry
}

// Validate checks that the guide has exactly GuideDays entries numbered 1..GuideDays
// without duplicates and that every entry has a title and at least one approach.
func (g *Guide) Validate() error {
	if len(g.Entries) != GuideDays {
		return goerr.Wrap(ErrInvalidEntryCount, "unexpected entry count",
			goerr.V(EntryCountKey, len(g.Entries)))
	}

	seen := make(map[int]bool, GuideDays)
	for _, e := range g.Entries {
		if e == nil {
			return goerr.Wrap(ErrInvalidDay, "nil entry")
		}
		if e.Day < 1 || e.Day > GuideDays || seen[e.Day] {
			return goerr.Wrap(ErrInvalidDay, "invalid day number", goerr.V(DayKey, e.Day))
		}
		seen[e.Day] = true

		if strings.TrimSpace(e.Title) == "" {
			return goerr.Wrap(ErrEmptyTitle, "empty title", goerr.V(DayKey, e.Day))
		}
		if len(e.Approaches) == 0 {
			return goerr.Wrap(ErrEmptyApproaches, "no approaches", goerr.V(DayKey, e.Day))
		}
		for _, a := range e.Approaches {
			if strings.TrimSpace(a) == "" {
				return goerr.Wrap(ErrEmptyApproaches, "blank approach", goerr.V(DayKey, e.Day))
			}
		}
	}

	return nil
}

// SortEntries orders entries by day in place
func (g *Guide) SortEntries() {
	sort.SliceStable(g.Entries, func(i, j int) bool {
		return g.Entries[i].Day < g.Entries[j].Day
	})
}

// Copy returns a deep copy of the guide
func (g *Guide) Copy() *Guide {
	copied := &Guide{
		Goal:    g.Goal,
		Entries: make([]*DayEntry, len(g.Entries)),
	}
	for i, e := range g.Entries {
		copied.Entries[i] = e.Copy()
	}
	return copied
}

// Copy returns a deep copy of the entry
func (e *DayEntry) Copy() *DayEntry {
	approaches := make([]string, len(e.Approaches))
	copy(approaches, e.Approaches)
	return &DayEntry{
		Day:        e.Day,
		Title:      e.Title,
		Approaches: approaches,
	}
}

type guideDoc struct {
	Goal  string          `json:"goal"`
	Guide json.RawMessage `json:"guide"`
}

type dayDoc struct {
	Day        int      `json:"day"`
	Title      string   `json:"title"`
	Approaches []string `json:"approaches"`
}

// ParseGuide decodes an engine response into a draft guide. The result is sorted by day
// but not validated; call Validate before trusting it.
func ParseGuide(raw string) (*Guide, error) {
	text := stripCodeFence(strings.TrimSpace(raw))

	var doc guideDoc
	if err := json.Unmarshal([]byte(text), &doc); err != nil {
		return nil, goerr.Wrap(ErrMalformedGuide, err.Error())
	}
	guide := bytes.TrimSpace(doc.Guide)
	if len(guide) == 0 || bytes.Equal(guide, []byte("null")) {
		return nil, goerr.Wrap(ErrMissingGuideKey, "guide key is absent")
	}

	var days []dayDoc
	if err := json.Unmarshal(guide, &days); err != nil {
		return nil, goerr.Wrap(ErrMalformedGuide, "guide is not an array of days")
	}

	g := &Guide{
		Goal:    doc.Goal,
		Entries: make([]*DayEntry, 0, len(days)),
	}
	for _, d := range days {
		g.Entries = append(g.Entries, &DayEntry{
			Day:        d.Day,
			Title:      strings.TrimSpace(d.Title),
			Approaches: d.Approaches,
		})
	}
	g.SortEntries()

	return g, nil
}

// stripCodeFence removes a surrounding markdown code fence such as ```json ... ```
func stripCodeFence(s string) string {
	if !strings.HasPrefix(s, "```") || !strings.HasSuffix(s, "```") || len(s) < 6 {
		return s
	}
	body := strings.TrimSuffix(strings.TrimPrefix(s, "```"), "```")
	if idx := strings.Index(body, "\n"); idx >= 0 {
		lang := strings.TrimSpace(body[:idx])
		if lang == "" || !strings.ContainsAny(lang, "{[") {
			body = body[idx+1:]
		}
	}
	return strings.TrimSpace(body)
}
