package server

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/jobscout/jobscout/internal/digest"
	"github.com/jobscout/jobscout/internal/model"
)

type sendDigestRequest struct {
	Email     string   `json:"email"`
	Threshold *float64 `json:"threshold"`
	Test      bool     `json:"test"`
	Check     bool     `json:"check"`
	UserID    string   `json:"user_id"`
}

type sendDigestResponse struct {
	Success      bool    `json:"success"`
	EmailID      string  `json:"emailId,omitempty"`
	SentTo       string  `json:"sentTo,omitempty"`
	MatchCount   int     `json:"matchCount"`
	Threshold    float64 `json:"threshold"`
	HighestScore float64 `json:"highestScore"`
	IsTest       bool    `json:"isTest"`
	UsedMockData bool    `json:"usedMockData"`
	Message      string  `json:"message,omitempty"`
}

type broadcastResponse struct {
	Success  bool             `json:"success"`
	Users    int              `json:"users"`
	Outcomes []digest.Outcome `json:"outcomes"`
}

// handleSendDigest dispatches on the caller identity: an end user previews
// their own digest (always test mode), the service caller sends for one user
// or broadcasts to everyone.
func (s *Server) handleSendDigest(w http.ResponseWriter, r *http.Request) {
	identity, ok := IdentityFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "missing identity")
		return
	}

	// Every request field is optional, so an empty body is a valid call.
	var req sendDigestRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil && !errors.Is(err, io.EOF) {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	var userID string
	switch identity.Kind {
	case IdentityEndUser:
		// End users can only act on their own data, and never trigger a real
		// send that would consume the daily digest window.
		userID = identity.Subject
		req.Test = true
	case IdentityService:
		if req.UserID == "" {
			s.handleBroadcast(w, r)
			return
		}
		userID = req.UserID
	default:
		writeError(w, http.StatusForbidden, "unknown caller identity")
		return
	}

	settings, err := s.settings.Settings(r.Context(), userID)
	if err != nil {
		writeErrorDetails(w, http.StatusInternalServerError, "loading user settings failed", err.Error())
		return
	}

	report, err := s.sender.Send(r.Context(), settings, digest.SendOptions{
		Overrides: digest.Overrides{
			Email:     req.Email,
			Threshold: req.Threshold,
			Test:      req.Test,
		},
		Check: req.Check,
	})
	switch {
	case errors.Is(err, model.ErrNoRecipient):
		writeError(w, http.StatusBadRequest, "no recipient email configured")
		return
	case err != nil:
		s.logger.Error("digest send failed", "user", userID, "error", err)
		writeErrorDetails(w, http.StatusBadGateway, "digest send failed", err.Error())
		return
	}

	writeJSON(w, http.StatusOK, sendDigestResponse{
		Success:      report.Success,
		EmailID:      report.EmailID,
		SentTo:       report.SentTo,
		MatchCount:   report.MatchCount,
		Threshold:    report.Threshold,
		HighestScore: report.HighestScore,
		IsTest:       report.IsTest,
		UsedMockData: report.UsedMockData,
		Message:      report.Message,
	})
}

func (s *Server) handleBroadcast(w http.ResponseWriter, r *http.Request) {
	outcomes, err := s.broadcaster.BroadcastAll(r.Context())
	if err != nil {
		s.logger.Error("broadcast failed", "error", err)
		writeErrorDetails(w, http.StatusInternalServerError, "broadcast failed", err.Error())
		return
	}
	writeJSON(w, http.StatusOK, broadcastResponse{
		Success:  true,
		Users:    len(outcomes),
		Outcomes: outcomes,
	})
}
