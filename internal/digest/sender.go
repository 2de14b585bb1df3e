package digest

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/jobscout/jobscout/internal/mailer"
	"github.com/jobscout/jobscout/internal/model"
)

// SendOptions extends Overrides with the send-side knobs.
type SendOptions struct {
	Overrides
	Check bool // diagnostic: select only, never send, never stamp
}

// Report is the outcome of one digest send attempt for one user.
type Report struct {
	Success      bool
	NoOp         bool // zero eligible matches, nothing sent
	EmailID      string
	SentTo       string
	MatchCount   int
	Threshold    float64
	HighestScore float64
	IsTest       bool
	UsedMockData bool
	Message      string
}

// Sender runs selection and the actual email send for one user.
type Sender struct {
	selector *Selector
	settings model.SettingsStore
	mailer   model.Mailer
	from     string
	// alwaysSend sends an explanatory "no matches today" email instead of a
	// silent no-op when nothing clears the bar.
	alwaysSend bool
	now        func() time.Time
	logger     *slog.Logger
}

// NewSender wires the digest send path. from is the sender address on every
// outbound digest.
func NewSender(selector *Selector, settings model.SettingsStore, m model.Mailer, from string, alwaysSend bool, logger *slog.Logger) *Sender {
	return &Sender{
		selector:   selector,
		settings:   settings,
		mailer:     m,
		from:       from,
		alwaysSend: alwaysSend,
		now:        time.Now,
		logger:     logger,
	}
}

// SetNow replaces the clock. Intended for tests.
func (s *Sender) SetNow(fn func() time.Time) { s.now = fn }

// Send computes the eligible set and emails it. Zero eligible matches in
// non-test mode is a successful no-op unless alwaysSend is configured.
// LastDigestSentAt is stamped only after a successful, non-test,
// non-diagnostic send.
func (s *Sender) Send(ctx context.Context, settings model.UserSettings, opts SendOptions) (Report, error) {
	snapshot, err := s.selector.Select(ctx, settings, opts.Overrides)
	if err != nil {
		return Report{}, err
	}

	report := Report{
		SentTo:       snapshot.RecipientEmail,
		MatchCount:   len(snapshot.Matches),
		Threshold:    snapshot.EffectiveThreshold,
		HighestScore: snapshot.HighestScore,
		IsTest:       opts.Test,
		UsedMockData: snapshot.UsedMockData,
	}

	if opts.Check {
		report.Success = true
		report.Message = "configuration check only, nothing sent"
		return report, nil
	}

	if len(snapshot.Matches) == 0 && !s.alwaysSend {
		report.Success = true
		report.NoOp = true
		report.Message = "no matches cleared the threshold, nothing sent"
		return report, nil
	}

	msg := model.Email{
		From:    s.from,
		To:      snapshot.RecipientEmail,
		Subject: mailer.DigestSubject(snapshot),
		HTML:    mailer.DigestHTML(settings.DisplayName, snapshot),
	}

	emailID, err := s.mailer.Send(ctx, msg)
	if err != nil {
		return report, fmt.Errorf("digest send to %s: %w", snapshot.RecipientEmail, err)
	}
	report.Success = true
	report.EmailID = emailID

	if !opts.Test {
		if err := s.settings.StampDigestSent(ctx, settings.UserID, s.now()); err != nil {
			// The email is out; surface the stamping failure rather than
			// pretending the send failed.
			return report, fmt.Errorf("digest sent but stamping last-sent failed for %s: %w", settings.UserID, err)
		}
	}

	s.logger.Info("digest sent",
		"user", settings.UserID,
		"to", snapshot.RecipientEmail,
		"matches", len(snapshot.Matches),
		"email_id", emailID,
		"test", opts.Test,
	)

	return report, nil
}
