package store

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/jobscout/jobscout/internal/model"
)

func newTestStore(t *testing.T) *SQLiteStore {
	t.Helper()
	dbPath := filepath.Join(t.TempDir(), "test.db")
	s, err := NewSQLiteStore(dbPath)
	if err != nil {
		t.Fatalf("NewSQLiteStore: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func match(id string, score float64, createdAt time.Time) model.ScoredMatch {
	return model.ScoredMatch{
		ID:        id,
		UserID:    "user-1",
		Title:     "Engineer " + id,
		Company:   "Acme",
		Location:  "Remote",
		Link:      "https://example.com/" + id,
		Score:     score,
		Reasoning: model.MatchReasoning{Pros: []string{"fit"}, Cons: []string{}, RiskFactors: []string{}},
		Source:    "usajobs",
		Status:    model.StatusPending,
		CreatedAt: createdAt,
	}
}

func TestUpsertAndReadBack(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	now := time.Now().UTC().Truncate(time.Second)

	err := s.UpsertMatches(ctx, []model.ScoredMatch{
		match("a", 91, now),
		match("b", 72, now),
	})
	if err != nil {
		t.Fatalf("UpsertMatches: %v", err)
	}

	got, err := s.MatchesByUser(ctx, "user-1")
	if err != nil {
		t.Fatalf("MatchesByUser: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("got %d matches, want 2", len(got))
	}
	for _, m := range got {
		if m.Status != model.StatusPending {
			t.Errorf("status = %q, want pending", m.Status)
		}
		if len(m.Reasoning.Pros) != 1 || m.Reasoning.Pros[0] != "fit" {
			t.Errorf("reasoning did not round-trip: %+v", m.Reasoning)
		}
	}
}

func TestUpsertPreservesStatusOnRescan(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	now := time.Now().UTC().Truncate(time.Second)

	if err := s.UpsertMatches(ctx, []model.ScoredMatch{match("a", 80, now)}); err != nil {
		t.Fatalf("first upsert: %v", err)
	}
	if err := s.UpdateStatus(ctx, "user-1", "a", model.StatusDismissed); err != nil {
		t.Fatalf("UpdateStatus: %v", err)
	}

	rescored := match("a", 85, now.Add(time.Hour))
	if err := s.UpsertMatches(ctx, []model.ScoredMatch{rescored}); err != nil {
		t.Fatalf("second upsert: %v", err)
	}

	got, err := s.MatchesByUser(ctx, "user-1")
	if err != nil {
		t.Fatalf("MatchesByUser: %v", err)
	}
	if len(got) != 1 {
		t.Fatalf("got %d matches, want 1", len(got))
	}
	if got[0].Status != model.StatusDismissed {
		t.Errorf("rescan reset status to %q, want dismissed preserved", got[0].Status)
	}
	if got[0].Score != 85 {
		t.Errorf("score = %v, want refreshed 85", got[0].Score)
	}
	if !got[0].CreatedAt.Equal(now) {
		t.Errorf("created_at = %v, want original %v preserved", got[0].CreatedAt, now)
	}
}

func TestUpdateStatusUnknownMatch(t *testing.T) {
	s := newTestStore(t)
	if err := s.UpdateStatus(context.Background(), "user-1", "nope", model.StatusAccepted); err == nil {
		t.Fatal("expected error for unknown match")
	}
}

func TestMatchesForDigestFiltering(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	now := time.Now().UTC().Truncate(time.Second)

	old := match("old", 95, now.Add(-48*time.Hour))
	dismissed := match("dismissed", 90, now)
	fresh := match("fresh", 85, now)
	low := match("low", 40, now)

	if err := s.UpsertMatches(ctx, []model.ScoredMatch{old, dismissed, fresh, low}); err != nil {
		t.Fatalf("UpsertMatches: %v", err)
	}
	if err := s.UpdateStatus(ctx, "user-1", "dismissed", model.StatusDismissed); err != nil {
		t.Fatalf("UpdateStatus: %v", err)
	}

	since := now.Add(-24 * time.Hour)
	got, err := s.MatchesForDigest(ctx, "user-1", &since, 50)
	if err != nil {
		t.Fatalf("MatchesForDigest: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("got %d matches, want 2 (old and dismissed excluded)", len(got))
	}
	if got[0].ID != "fresh" || got[1].ID != "low" {
		t.Errorf("order = [%s %s], want [fresh low] by score desc", got[0].ID, got[1].ID)
	}
}

func TestMatchesForDigestWindowIsInclusive(t *testing.T) {
	s := newTestStore(t)
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
}

func TestMatchesForDigestLimit(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	now := time.Now().UTC().Truncate(time.Second)

	var batch []model.ScoredMatch
	for i := 0; i < 5; i++ {
		batch = append(batch, match(string(rune('a'+i)), float64(50+i), now))
	}
	if err := s.UpsertMatches(ctx, batch); err != nil {
		t.Fatalf("UpsertMatches: %v", err)
	}

	got, err := s.MatchesForDigest(ctx, "user-1", nil, 3)
	if err != nil {
		t.Fatalf("MatchesForDigest: %v", err)
	}
	if len(got) != 3 {
		t.Fatalf("got %d matches, want limit 3", len(got))
	}
	if got[0].Score != 54 {
		t.Errorf("top score = %v, want 54", got[0].Score)
	}
}

func TestSettingsRoundTrip(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	// Unknown user gets zero defaults, not an error.
	got, err := s.Settings(ctx, "nobody")
	if err != nil {
		t.Fatalf("Settings for unknown user: %v", err)
	}
	if got.UserID != "nobody" || got.AutomationEnabled {
		t.Errorf("unknown user settings = %+v", got)
	}

	last := time.Date(2026, 8, 30, 8, 0, 0, 0, time.UTC)
	in := model.UserSettings{
		UserID:            "user-1",
		DisplayName:       "Sam",
		AccountEmail:      "sam@example.com",
		DigestEmail:       "digest@example.com",
		AutomationEnabled: true,
		MatchThreshold:    75,
		Timezone:          "Europe/Berlin",
		LastDigestSentAt:  &last,
	}
	if err := s.SaveSettings(ctx, in); err != nil {
		t.Fatalf("SaveSettings: %v", err)
	}

	got, err = s.Settings(ctx, "user-1")
	if err != nil {
		t.Fatalf("Settings: %v", err)
	}
	if got.DisplayName != "Sam" || got.MatchThreshold != 75 || got.Timezone != "Europe/Berlin" {
		t.Errorf("settings = %+v", got)
	}
	if got.LastDigestSentAt == nil || !got.LastDigestSentAt.Equal(last) {
		t.Errorf("last sent = %v, want %v", got.LastDigestSentAt, last)
	}
}

func TestStampDigestSent(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	if err := s.SaveSettings(ctx, model.UserSettings{UserID: "user-1", AccountEmail: "sam@example.com"}); err != nil {
		t.Fatalf("SaveSettings: %v", err)
	}

	at := time.Date(2026, 9, 1, 8, 0, 0, 0, time.UTC)
	if err := s.StampDigestSent(ctx, "user-1", at); err != nil {
		t.Fatalf("StampDigestSent: %v", err)
	}

	got, err := s.Settings(ctx, "user-1")
	if err != nil {
		t.Fatalf("Settings: %v", err)
	}
	if got.LastDigestSentAt == nil || !got.LastDigestSentAt.Equal(at) {
		t.Errorf("last sent = %v, want %v", got.LastDigestSentAt, at)
	}

	// Stamping a user with no settings row creates one.
	if err := s.StampDigestSent(ctx, "user-2", at); err != nil {
		t.Fatalf("StampDigestSent for rowless user: %v", err)
	}
	got, err = s.Settings(ctx, "user-2")
	if err != nil {
		t.Fatalf("Settings: %v", err)
	}
	if got.LastDigestSentAt == nil {
		t.Error("stamp did not create a settings row")
	}
}

func TestAutomationEnabled(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	users := []model.UserSettings{
		{UserID: "a", DigestEmail: "a@example.com", AutomationEnabled: true},
		{UserID: "b", DigestEmail: "b@example.com", AutomationEnabled: false},
		{UserID: "c", DigestEmail: "c@example.com", AutomationEnabled: true},
		// Automation on but no digest email: not a broadcast candidate even
		// though an account email exists.
		{UserID: "d", AccountEmail: "d@example.com", AutomationEnabled: true},
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
	if len(got) != 2 || got[0].UserID != "a" || got[1].UserID != "c" {
		t.Errorf("enabled users = %+v, want a and c", got)
	}
}

func TestUserIsolation(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	now := time.Now().UTC().Truncate(time.Second)

	mine := match("a", 90, now)
	theirs := match("a", 70, now)
	theirs.UserID = "user-2"

	if err := s.UpsertMatches(ctx, []model.ScoredMatch{mine, theirs}); err != nil {
		t.Fatalf("UpsertMatches: %v", err)
	}

	got, err := s.MatchesByUser(ctx, "user-2")
	if err != nil {
		t.Fatalf("MatchesByUser: %v", err)
	}
	if len(got) != 1 || got[0].Score != 70 {
		t.Errorf("user-2 matches = %+v", got)
	}
}
