// Package mailer delivers digest emails through an HTTP email API, with a
// log-only fallback for local runs.
package mailer

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"

	"github.com/jobscout/jobscout/internal/model"
)

const resendBaseURL = "https://api.resend.com"

// Ensure ResendMailer implements model.Mailer.
var _ model.Mailer = (*ResendMailer)(nil)

// ResendMailer sends emails through the Resend HTTP API.
type ResendMailer struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
	logger     *slog.Logger
}

// NewResendMailer returns a mailer posting to the Resend API.
func NewResendMailer(apiKey string, httpClient *http.Client, logger *slog.Logger) *ResendMailer {
	return &ResendMailer{
		baseURL:    resendBaseURL,
		apiKey:     apiKey,
		httpClient: httpClient,
		logger:     logger,
	}
}

type resendRequest struct {
	From    string   `json:"from"`
	To      []string `json:"to"`
	Subject string   `json:"subject"`
	HTML    string   `json:"html"`
}

type resendResponse struct {
	ID string `json:"id"`
}

// Send posts one email and returns the provider's message id. A 429 response
// surfaces as a rate-limit HTTPError so callers can classify it.
func (m *ResendMailer) Send(ctx context.Context, msg model.Email) (string, error) {
	body, err := json.Marshal(resendRequest{
		From:    msg.From,
		To:      []string{msg.To},
		Subject: msg.Subject,
		HTML:    msg.HTML,
	})
	if err != nil {
		return "", fmt.Errorf("marshal email payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, m.baseURL+"/emails", bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("create email request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+m.apiKey)

	resp, err := m.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("post email: %w", err)
	}
	defer resp.Body.Close()

	respBytes, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("read email response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return "", &model.HTTPError{
			StatusCode: resp.StatusCode,
			Err:        fmt.Errorf("email provider: %s", string(respBytes)),
		}
	}

	var parsed resendResponse
	if err := json.Unmarshal(respBytes, &parsed); err != nil {
		return "", fmt.Errorf("parse email response: %w", err)
	}

	m.logger.Info("email sent", "to", msg.To, "email_id", parsed.ID)
	return parsed.ID, nil
}
