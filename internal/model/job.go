package model

import (
	"context"
	"time"
)

// CandidateJob is an unscored posting fetched from one external source.
// Immutable once produced by an adapter; only the scored form is persisted.
type CandidateJob struct {
	ExternalID  string // unique per source, prefixed with the source tag
	Title       string
	Company     string
	Location    string
	Description string
	Link        string
	Source      string // adapter source tag
}

// MatchStatus tracks where a scored match sits in the user's workflow.
type MatchStatus string

const (
	StatusPending   MatchStatus = "pending"
	StatusAccepted  MatchStatus = "accepted"
	StatusDismissed MatchStatus = "dismissed"
)

// MatchReasoning is the structured explanation attached to a score.
// All three lists default to empty, never nil, after parsing.
type MatchReasoning struct {
	Pros        []string `json:"pros"`
	Cons        []string `json:"cons"`
	RiskFactors []string `json:"risk_factors"`
}

// ScoredMatch is a candidate job after LLM evaluation against a profile and
// strategy. Score is always on the 0–100 scale before storage or comparison.
// Score and reasoning are never mutated after creation; only Status moves.
type ScoredMatch struct {
	ID          string
	UserID      string
	Title       string
	Company     string
	Location    string
	Description string
	Link        string
	Score       float64
	Reasoning   MatchReasoning
	Source      string
	Status      MatchStatus
	CreatedAt   time.Time
}

// DigestSnapshot is the ephemeral result of one digest selection run.
type DigestSnapshot struct {
	RecipientEmail     string
	EffectiveThreshold float64
	Since              *time.Time // nil when the time window was bypassed
	TotalFetched       int
	HighestScore       float64
	Matches            []ScoredMatch
	UsedMockData       bool
}

// Email is one outbound message handed to a Mailer.
type Email struct {
	From    string
	To      string
	Subject string
	HTML    string
}

// SourceAdapter fetches candidate jobs from one external job board.
// Fetch may return an error; the aggregator isolates it per adapter.
type SourceAdapter interface {
	Name() string
	Fetch(ctx context.Context, keywords, location string) ([]CandidateJob, error)
}

// Scorer evaluates one candidate job against a profile and strategy.
type Scorer interface {
	Score(ctx context.Context, profile MasterProfile, strategy SearchStrategy, job CandidateJob) (ScoredMatch, error)
}

// MatchStore persists scored matches, keyed by match ID per user.
type MatchStore interface {
	UpsertMatches(ctx context.Context, matches []ScoredMatch) error
	UpdateStatus(ctx context.Context, userID, matchID string, status MatchStatus) error
	// MatchesForDigest returns non-dismissed matches for the user, ordered by
	// score descending. since bounds CreatedAt (inclusive) when non-nil;
	// limit caps the result set.
	MatchesForDigest(ctx context.Context, userID string, since *time.Time, limit int) ([]ScoredMatch, error)
	MatchesByUser(ctx context.Context, userID string) ([]ScoredMatch, error)
}

// SettingsStore persists the per-user settings row.
type SettingsStore interface {
	Settings(ctx context.Context, userID string) (UserSettings, error)
	SaveSettings(ctx context.Context, settings UserSettings) error
	// StampDigestSent records the high-water mark for digest dedup.
	StampDigestSent(ctx context.Context, userID string, at time.Time) error
	// AutomationEnabled returns every user with automation on and a non-empty
	// digest email, for broadcast fan-out.
	AutomationEnabled(ctx context.Context) ([]UserSettings, error)
}

// Mailer sends one email and returns the provider's message id.
type Mailer interface {
	Send(ctx context.Context, msg Email) (string, error)
}
