package calendar

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/julianstephens/studyweek/internal/config"
)

func TestBuild(t *testing.T) {
	cfg := &config.Calendars{
		Sources: []config.Source{
			{Name: "google", Type: config.SourceGoogle, Enabled: true},
			{Name: "timetable", Type: config.SourceICS, Enabled: true, Paths: []string{"a.ics"}},
			{Name: "school", Type: config.SourceCalDAV, Enabled: true, Endpoint: "https://dav.example.com/", Path: "/cal/"},
			{Name: "off", Type: config.SourceICS, Paths: []string{"b.ics"}},
		},
	}

	merged := Build(context.Background(), cfg, GoogleAuth{}, time.UTC)
	if len(merged.Sources) != 2 {
		t.Fatalf("got %d sources, want 2 (google without token skipped)", len(merged.Sources))
	}
	if merged.Sources[0].Name() != "timetable" || merged.Sources[1].Name() != "school" {
		t.Errorf("sources = %s, %s", merged.Sources[0].Name(), merged.Sources[1].Name())
	}
}

func TestBuildPublisher(t *testing.T) {
	cfg := &config.Calendars{
		Publish: "none",
		Sources: []config.Source{
			{Name: "school", Type: config.SourceCalDAV, Endpoint: "https://dav.example.com/", Path: "/cal/"},
			{Name: "timetable", Type: config.SourceICS, Paths: []string{"a.ics"}},
		},
	}

	pub, err := BuildPublisher(context.Background(), cfg, GoogleAuth{}, time.UTC)
	if err != nil || pub != nil {
		t.Errorf("none = %v, %v; want nil publisher", pub, err)
	}

	cfg.Publish = "school"
	pub, err = BuildPublisher(context.Background(), cfg, GoogleAuth{}, time.UTC)
	if err != nil {
		t.Fatalf("caldav publisher failed: %v", err)
	}
	if _, ok := pub.(*CalDAV); !ok {
		t.Errorf("publisher = %T, want *CalDAV", pub)
	}

	cfg.Publish = "google"
	if _, err := BuildPublisher(context.Background(), cfg, GoogleAuth{}, time.UTC); !errors.Is(err, ErrNotConnected) {
		t.Errorf("google without token err = %v", err)
	}

	cfg.Publish = "timetable"
	if _, err := BuildPublisher(context.Background(), cfg, GoogleAuth{}, time.UTC); err == nil {
		t.Error("an ics source cannot be a publish target")
	}
}
