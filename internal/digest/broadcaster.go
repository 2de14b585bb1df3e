package digest

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/jobscout/jobscout/internal/model"
)

// SendHour is the local hour at which a user's daily digest goes out. An
// hourly scheduler invokes BroadcastAll; the local-hour gate turns that into
// one send per user per day without per-user cron entries.
const SendHour = 8

// Outcome statuses for one user within a broadcast.
const (
	OutcomeSkipped     = "skipped"
	OutcomeNoRecipient = "no_recipient"
	OutcomeNoMatches   = "no_matches"
	OutcomeSent        = "sent"
	OutcomeSendFailed  = "send_failed"
)

// Outcome records what happened to one user during a broadcast.
type Outcome struct {
	UserID     string `json:"userId"`
	Status     string `json:"status"`
	Detail     string `json:"detail,omitempty"`
	EmailID    string `json:"emailId,omitempty"`
	MatchCount int    `json:"matchCount,omitempty"`
}

// Broadcaster evaluates every automation-enabled user for digest delivery.
type Broadcaster struct {
	settings model.SettingsStore
	sender   *Sender
	now      func() time.Time
	logger   *slog.Logger
}

// NewBroadcaster creates a Broadcaster driving the given Sender.
func NewBroadcaster(settings model.SettingsStore, sender *Sender, logger *slog.Logger) *Broadcaster {
	return &Broadcaster{
		settings: settings,
		sender:   sender,
		now:      time.Now,
		logger:   logger,
	}
}

// SetNow replaces the clock. Intended for tests.
func (b *Broadcaster) SetNow(fn func() time.Time) { b.now = fn }

// BroadcastAll processes every automation-enabled user sequentially. Users
// whose local hour is not SendHour are skipped for this invocation. One
// user's failure never aborts the loop.
func (b *Broadcaster) BroadcastAll(ctx context.Context) ([]Outcome, error) {
	users, err := b.settings.AutomationEnabled(ctx)
	if err != nil {
		return nil, err
	}

	outcomes := make([]Outcome, 0, len(users))
	for _, user := range users {
		outcomes = append(outcomes, b.processUser(ctx, user))
	}

	b.logger.Info("broadcast complete", "users", len(users))
	return outcomes, nil
}

func (b *Broadcaster) processUser(ctx context.Context, user model.UserSettings) Outcome {
	if !b.dueNow(user) {
		return Outcome{UserID: user.UserID, Status: OutcomeSkipped, Detail: "not yet due in user's timezone"}
	}

	report, err := b.sender.Send(ctx, user, SendOptions{})
	switch {
	case errors.Is(err, model.ErrNoRecipient):
		return Outcome{UserID: user.UserID, Status: OutcomeNoRecipient, Detail: err.Error()}
	case err != nil:
		b.logger.Error("digest failed for user", "user", user.UserID, "error", err)
		return Outcome{UserID: user.UserID, Status: OutcomeSendFailed, Detail: err.Error()}
	case report.NoOp:
		return Outcome{UserID: user.UserID, Status: OutcomeNoMatches}
	default:
		return Outcome{UserID: user.UserID, Status: OutcomeSent, EmailID: report.EmailID, MatchCount: report.MatchCount}
	}
}

// dueNow reports whether the user's local hour equals SendHour. An unset or
// unloadable timezone falls back to UTC.
func (b *Broadcaster) dueNow(user model.UserSettings) bool {
	loc := time.UTC
	if user.Timezone != "" {
		if l, err := time.LoadLocation(user.Timezone); err == nil {
			loc = l
		} else {
			b.logger.Warn("bad timezone, using UTC", "user", user.UserID, "timezone", user.Timezone)
		}
	}
	return b.now().In(loc).Hour() == SendHour
}
