package adapter

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/jobscout/jobscout/internal/model"
)

func TestUSAJobsFetch_Success(t *testing.T) {
	payload := `{
		"SearchResult": {
			"SearchResultItems": [
				{
					"MatchedObjectId": "800001",
					"MatchedObjectDescriptor": {
						"PositionTitle": "IT Specialist (APPSW)",
						"OrganizationName": "Department of the Treasury",
						"PositionLocationDisplay": "Washington, DC",
						"PositionURI": "https://www.usajobs.gov/job/800001",
						"UserArea": {"Details": {"JobSummary": "<p>Build &amp; maintain systems.</p>"}}
					}
				},
				{
					"MatchedObjectId": "800002",
					"MatchedObjectDescriptor": {
						"PositionTitle": "Data Engineer",
						"OrganizationName": "",
						"PositionLocationDisplay": "",
						"PositionURI": "https://www.usajobs.gov/job/800002",
						"UserArea": {"Details": {"JobSummary": "Pipelines."}}
					}
				}
			]
		}
	}`
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got := r.Header.Get("Authorization-Key"); got != "key-123" {
			t.Errorf("Authorization-Key = %q", got)
		}
		if got := r.URL.Query().Get("Keyword"); got != "software engineer" {
			t.Errorf("Keyword = %q", got)
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(payload))
	}))
	defer srv.Close()

	a := NewUSAJobsAdapter("key-123", "me@example.com", srv.Client())
	a.baseURL = srv.URL

	jobs, err := a.Fetch(context.Background(), "software engineer", "Washington, DC")
	if err != nil {
		t.Fatalf("Fetch: %v", err)
	}
	if len(jobs) != 2 {
		t.Fatalf("expected 2 jobs, got %d", len(jobs))
	}

	j := jobs[0]
	if j.ExternalID != "usajobs:800001" {
		t.Errorf("ExternalID = %q", j.ExternalID)
	}
	if j.Source != "usajobs" {
		t.Errorf("Source = %q", j.Source)
	}
	if j.Description != "Build & maintain systems." {
		t.Errorf("Description = %q", j.Description)
	}

	// Missing fields default.
	j2 := jobs[1]
	if j2.Company != placeholderCompany {
		t.Errorf("Company = %q, want placeholder", j2.Company)
	}
	if j2.Location != "United States" {
		t.Errorf("Location = %q, want fallback", j2.Location)
	}
}

func TestUSAJobsFetch_RateLimited(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Retry-After", "30")
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	defer srv.Close()

	a := NewUSAJobsAdapter("key", "me@example.com", srv.Client())
	a.baseURL = srv.URL

	_, err := a.Fetch(context.Background(), "engineer", "")
	if err == nil {
		t.Fatal("expected error")
	}
	var httpErr *model.HTTPError
	if !errors.As(err, &httpErr) {
		t.Fatalf("expected HTTPError, got %v", err)
	}
	if httpErr.StatusCode != 429 {
		t.Errorf("StatusCode = %d", httpErr.StatusCode)
	}
	if httpErr.RetryAfter != 30*time.Second {
		t.Errorf("RetryAfter = %v", httpErr.RetryAfter)
	}
	if !model.IsRateLimited(err) {
		t.Error("expected IsRateLimited to be true")
	}
}

func TestUSAJobsFetch_EmptyResult(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"SearchResult": {"SearchResultItems": []}}`))
	}))
	defer srv.Close()

	a := NewUSAJobsAdapter("key", "me@example.com", srv.Client())
	a.baseURL = srv.URL

	jobs, err := a.Fetch(context.Background(), "underwater basket weaver", "")
	if err != nil {
		t.Fatalf("Fetch: %v", err)
	}
	if len(jobs) != 0 {
		t.Errorf("expected 0 jobs, got %d", len(jobs))
	}
}
