package services

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/codingclub/hackportal/internal/config"
	"github.com/codingclub/hackportal/internal/models"
)

func TestComputeSourceHash_StableAndDistinct(t *testing.T) {
	a := ComputeSourceHash("Kickoff", "https://example.com/1", "2026-01-10T10:00:00Z")
	b := ComputeSourceHash("Kickoff", "https://example.com/1", "2026-01-10T10:00:00Z")
	c := ComputeSourceHash("Kickoff", "https://example.com/2", "2026-01-10T10:00:00Z")

	if a != b {
		t.Error("hash should be stable for identical items")
	}
	if a == c {
		t.Error("hash should differ when the URL differs")
	}
	if len(a) != 64 {
		t.Errorf("hash length = %d, expected 64 hex chars", len(a))
	}
}

func TestScraperRun_ImportsAndDeduplicates(t *testing.T) {
	db := newTestDB(t)

	feed := []map[string]string{
		{"title": "Kickoff", "url": "https://example.com/1", "published_at": "2026-01-10T10:00:00Z"},
		{"title": "Mentor session", "url": "https://example.com/2", "published_at": "2026-01-11T10:00:00Z"},
	}
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(feed)
	}))
	defer server.Close()

	svc := NewScraperService(db, &config.ScraperConfig{
		Enabled: true,
		FeedURL: server.URL,
	})

	result, err := svc.Run()
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	if result.Imported != 2 {
		t.Errorf("Imported = %d, expected 2", result.Imported)
	}

	// re-running the same feed imports nothing
	result, err = svc.Run()
	if err != nil {
		t.Fatalf("second Run failed: %v", err)
	}
	if result.Imported != 0 {
		t.Errorf("Imported = %d on re-run, expected 0", result.Imported)
	}
	if result.Skipped != 2 {
		t.Errorf("Skipped = %d on re-run, expected 2", result.Skipped)
	}

	var count int64
	db.Model(&models.Update{}).Count(&count)
	if count != 2 {
		t.Errorf("stored updates = %d, expected 2", count)
	}

	var update models.Update
	if err := db.Where("title = ?", "Kickoff").First(&update).Error; err != nil {
		t.Fatalf("imported update missing: %v", err)
	}
	if update.Source != models.UpdateSourceScraped {
		t.Errorf("Source = %q, expected scraped", update.Source)
	}
}

func TestScraperRun_SkipsUntitledItems(t *testing.T) {
	db := newTestDB(t)

	feed := []map[string]string{
		{"title": "", "url": "https://example.com/1"},
		{"title": "Real", "url": "https://example.com/2"},
	}
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(feed)
	}))
	defer server.Close()

	svc := NewScraperService(db, &config.ScraperConfig{Enabled: true, FeedURL: server.URL})

	result, err := svc.Run()
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	if result.Imported != 1 {
		t.Errorf("Imported = %d, expected 1", result.Imported)
	}
}

func TestScraperRun_FeedErrorPropagates(t *testing.T) {
	db := newTestDB(t)

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer server.Close()

	svc := NewScraperService(db, &config.ScraperConfig{Enabled: true, FeedURL: server.URL})

	if _, err := svc.Run(); err == nil {
		t.Error("expected error for failing feed")
	}
}
