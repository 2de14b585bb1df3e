package store

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/jobscout/jobscout/internal/model"
)

var (
	_ model.MatchStore    = (*MemoryStore)(nil)
	_ model.SettingsStore = (*MemoryStore)(nil)
)

// MemoryStore keeps matches and settings in process memory. Used for dry
// runs, where nothing should touch the database file.
type MemoryStore struct {
	mu       sync.Mutex
	matches  map[string]map[string]model.ScoredMatch // userID -> matchID -> match
	settings map[string]model.UserSettings
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		matches:  make(map[string]map[string]model.ScoredMatch),
		settings: make(map[string]model.UserSettings),
	}
}

func (s *MemoryStore) UpsertMatches(_ context.Context, matches []model.ScoredMatch) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, m := range matches {
		byID, ok := s.matches[m.UserID]
		if !ok {
			byID = make(map[string]model.ScoredMatch)
			s.matches[m.UserID] = byID
		}
		if existing, ok := byID[m.ID]; ok {
			// Keep review state and first-seen time across rescans.
			m.Status = existing.Status
			m.CreatedAt = existing.CreatedAt
		} else if m.Status == "" {
			m.Status = model.StatusPending
		}
		byID[m.ID] = m
	}
	return nil
}

func (s *MemoryStore) UpdateStatus(_ context.Context, userID, matchID string, status model.MatchStatus) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	m, ok := s.matches[userID][matchID]
	if !ok {
		return fmt.Errorf("match %s not found for user %s", matchID, userID)
	}
	m.Status = status
	s.matches[userID][matchID] = m
	return nil
}

func (s *MemoryStore) MatchesForDigest(_ context.Context, userID string, since *time.Time, limit int) ([]model.ScoredMatch, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []model.ScoredMatch
	for _, m := range s.matches[userID] {
		if m.Status == model.StatusDismissed {
			continue
		}
		if since != nil && m.CreatedAt.Before(*since) {
			continue
		}
		out = append(out, m)
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Score > out[j].Score })
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (s *MemoryStore) MatchesByUser(_ context.Context, userID string) ([]model.ScoredMatch, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []model.ScoredMatch
	for _, m := range s.matches[userID] {
		out = append(out, m)
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (s *MemoryStore) Settings(_ context.Context, userID string) (model.UserSettings, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if u, ok := s.settings[userID]; ok {
		return u, nil
	}
	return model.UserSettings{UserID: userID}, nil
}

func (s *MemoryStore) SaveSettings(_ context.Context, settings model.UserSettings) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.settings[settings.UserID] = settings
	return nil
}

func (s *MemoryStore) StampDigestSent(_ context.Context, userID string, at time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	u := s.settings[userID]
	u.UserID = userID
	u.LastDigestSentAt = &at
	s.settings[userID] = u
	return nil
}

// Close satisfies the shared store contract; nothing to release.
func (s *MemoryStore) Close() error { return nil }

func (s *MemoryStore) AutomationEnabled(_ context.Context) ([]model.UserSettings, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []model.UserSettings
	for _, u := range s.settings {
		if u.AutomationEnabled && u.DigestEmail != "" {
			out = append(out, u)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].UserID < out[j].UserID })
	return out, nil
}
