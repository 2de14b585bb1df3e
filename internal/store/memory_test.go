package store

import (
	"context"
	"testing"
	"time"

	"github.com/jobscout/jobscout/internal/model"
)

func TestMemoryStoreMirrorsSQLiteSemantics(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()
	since := time.Now().UTC().Truncate(time.Second)

	boundary := match("boundary", 88, since)
	before := match("before", 92, since.Add(-time.Second))
	if err := s.UpsertMatches(ctx, []model.ScoredMatch{boundary, before}); err != nil {
		t.Fatalf("UpsertMatches: %v", err)
	}

	got, err := s.MatchesForDigest(ctx, "user-1", &since, 50)
	if err != nil {
		t.Fatalf("MatchesForDigest: %v", err)
	}
	if len(got) != 1 || got[0].ID != "boundary" {
		t.Errorf("got %+v, want only the match created exactly at since", got)
	}

	// Rescan keeps review state and first-seen time.
	if err := s.UpdateStatus(ctx, "user-1", "boundary", model.StatusDismissed); err != nil {
		t.Fatalf("UpdateStatus: %v", err)
	}
	if err := s.UpsertMatches(ctx, []model.ScoredMatch{match("boundary", 95, since.Add(time.Hour))}); err != nil {
		t.Fatalf("rescan upsert: %v", err)
	}
	all, err := s.MatchesByUser(ctx, "user-1")
	if err != nil {
		t.Fatalf("MatchesByUser: %v", err)
	}
	for _, m := range all {
		if m.ID == "boundary" {
			if m.Status != model.StatusDismissed {
				t.Errorf("rescan reset status to %q", m.Status)
			}
			if !m.CreatedAt.Equal(since) {
				t.Errorf("created_at = %v, want original %v preserved", m.CreatedAt, since)
			}
		}
	}
}

func TestMemoryStoreAutomationEnabledNeedsDigestEmail(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()

	users := []model.UserSettings{
		{UserID: "a", DigestEmail: "a@example.com", AutomationEnabled: true},
		{UserID: "b", AccountEmail: "b@example.com", AutomationEnabled: true},
		{UserID: "c", DigestEmail: "c@example.com", AutomationEnabled: false},
	}
	for _, u := range users {
		if err := s.SaveSettings(ctx, u); err != nil {
			t.Fatalf("SaveSettings %s: %v", u.UserID, err)
		}
	}

	got, err := s.AutomationEnabled(ctx)
	if err != nil {
		t.Fatalf("AutomationEnabled: %v", err)
	}
	if len(got) != 1 || got[0].UserID != "a" {
		t.Errorf("enabled users = %+v, want only a", got)
	}
}
