package calendar

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	gcal "google.golang.org/api/calendar/v3"
	"google.golang.org/api/option"

	"github.com/julianstephens/studyweek/internal/models"
	"github.com/julianstephens/studyweek/internal/validation"
)

func newFakeGoogle(t *testing.T, mux *http.ServeMux) *Google {
	t.Helper()
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)

	svc, err := gcal.NewService(context.Background(),
		option.WithHTTPClient(srv.Client()),
		option.WithEndpoint(srv.URL+"/"))
	if err != nil {
		t.Fatalf("failed to create service: %v", err)
	}
	g := NewGoogleWithService(svc, time.UTC)
	g.delay = 0
	return g
}

func writeJSON(t *testing.T, w http.ResponseWriter, v any) {
	t.Helper()
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(v); err != nil {
		t.Errorf("failed to encode response: %v", err)
	}
}

var (
	winStart = time.Date(2026, 1, 5, 0, 0, 0, 0, time.UTC)
	winEnd   = time.Date(2026, 1, 12, 0, 0, 0, 0, time.UTC)
)

func TestGoogle_GetBusyPeriods(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/freeBusy", func(w http.ResponseWriter, r *http.Request) {
		var req gcal.FreeBusyRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Errorf("bad request body: %v", err)
		}
		if len(req.Items) != 1 || req.Items[0].Id != "primary" {
			t.Errorf("items = %+v, want primary", req.Items)
		}
		writeJSON(t, w, map[string]any{
			"calendars": map[string]any{
				"primary": map[string]any{
					"busy": []map[string]string{
						{"start": "2026-01-05T09:00:00Z", "end": "2026-01-05T10:00:00Z"},
						{"start": "garbage", "end": "2026-01-05T12:00:00Z"},
						{"start": "2026-01-06T12:00:00Z", "end": "2026-01-06T11:00:00Z"},
					},
				},
			},
		})
	})

	busy, err := newFakeGoogle(t, mux).GetBusyPeriods(context.Background(), "u1", winStart, winEnd)
	if err != nil {
		t.Fatalf("GetBusyPeriods failed: %v", err)
	}
	if len(busy) != 2 {
		t.Fatalf("got %d busy periods, want 2 (unparseable skipped)", len(busy))
	}
	if !busy[0].Start.Equal(time.Date(2026, 1, 5, 9, 0, 0, 0, time.UTC)) {
		t.Errorf("busy start = %v", busy[0].Start)
	}
	// Inverted periods reach the caller so they are rejected at the boundary.
	if err := validation.ValidateBusyPeriods(busy); !errors.Is(err, validation.ErrInvalidInterval) {
		t.Errorf("ValidateBusyPeriods = %v, want ErrInvalidInterval", err)
	}
}

func TestGoogle_GetEvents(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/calendars/primary/events", func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		if q.Get("singleEvents") != "true" || q.Get("orderBy") != "startTime" || q.Get("maxResults") != "250" {
			t.Errorf("unexpected query %v", q)
		}
		writeJSON(t, w, map[string]any{
			"items": []map[string]any{
				{"id": "1", "summary": "Cours de Physique", "start": map[string]string{"dateTime": "2026-01-05T08:00:00Z"}, "end": map[string]string{"dateTime": "2026-01-05T10:00:00Z"}},
				{"id": "2", "summary": "Holiday", "start": map[string]string{"date": "2026-01-07"}, "end": map[string]string{"date": "2026-01-08"}},
				{"id": "3", "summary": "Free", "transparency": "transparent", "start": map[string]string{"dateTime": "2026-01-06T08:00:00Z"}, "end": map[string]string{"dateTime": "2026-01-06T09:00:00Z"}},
				{"id": "4", "summary": "Dropped", "status": "cancelled", "start": map[string]string{"dateTime": "2026-01-06T08:00:00Z"}, "end": map[string]string{"dateTime": "2026-01-06T09:00:00Z"}},
			},
		})
	})

	events, err := newFakeGoogle(t, mux).GetEvents(context.Background(), "u1", winStart, winEnd)
	if err != nil {
		t.Fatalf("GetEvents failed: %v", err)
	}
	if len(events) != 2 {
		t.Fatalf("got %d events, want 2: %+v", len(events), events)
	}
	if events[0].Title != "Cours de Physique" || events[0].AllDay {
		t.Errorf("first event = %+v", events[0])
	}
	holiday := events[1]
	if !holiday.AllDay || !holiday.Start.Equal(time.Date(2026, 1, 7, 0, 0, 0, 0, time.UTC)) || !holiday.End.Equal(time.Date(2026, 1, 8, 0, 0, 0, 0, time.UTC)) {
		t.Errorf("all-day event = %+v", holiday)
	}
}

func TestGoogle_PublishSession(t *testing.T) {
	var got gcal.Event
	mux := http.NewServeMux()
	mux.HandleFunc("/calendars/primary/events", func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			t.Errorf("method = %s, want POST", r.Method)
		}
		if err := json.NewDecoder(r.Body).Decode(&got); err != nil {
			t.Errorf("bad body: %v", err)
		}
		writeJSON(t, w, map[string]any{"id": "created-1"})
	})

	s := models.PlannedSession{
		SubjectID:   "a",
		SubjectName: "Algebra",
		Start:       time.Date(2026, 1, 5, 8, 0, 0, 0, time.UTC),
		End:         time.Date(2026, 1, 5, 9, 0, 0, 0, time.UTC),
	}
	id, err := newFakeGoogle(t, mux).PublishSession(context.Background(), s, []string{"Chapter 1"})
	if err != nil {
		t.Fatalf("PublishSession failed: %v", err)
	}
	if id != "created-1" {
		t.Errorf("id = %q", id)
	}
	if got.Summary != "[studyweek] Algebra" {
		t.Errorf("summary = %q", got.Summary)
	}
	if got.Reminders == nil || len(got.Reminders.Overrides) != 1 || got.Reminders.Overrides[0].Minutes != 15 {
		t.Errorf("reminders = %+v", got.Reminders)
	}
	if got.ExtendedProperties == nil || got.ExtendedProperties.Private["type"] != "weekly_plan" {
		t.Errorf("extended properties = %+v", got.ExtendedProperties)
	}
}

func TestGoogle_APIErrorIsReturned(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/freeBusy", func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"error":{"code":401,"message":"invalid token"}}`, http.StatusUnauthorized)
	})
	if _, err := newFakeGoogle(t, mux).GetBusyPeriods(context.Background(), "u1", winStart, winEnd); err == nil {
		t.Error("expected an error for a 401 response")
	}
}

func TestNewGoogle_NoToken(t *testing.T) {
	cfg, err := OAuthConfig("id", "secret")
	if err != nil {
		t.Fatalf("OAuthConfig failed: %v", err)
	}
	if _, err := NewGoogle(context.Background(), cfg, nil, nil, time.UTC); !errors.Is(err, ErrNotConnected) {
		t.Errorf("err = %v, want ErrNotConnected", err)
	}
	if _, err := OAuthConfig("", ""); !errors.Is(err, ErrNotConnected) {
		t.Errorf("err = %v, want ErrNotConnected", err)
	}
}
