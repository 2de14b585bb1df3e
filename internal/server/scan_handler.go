package server

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/jobscout/jobscout/internal/scan"
)

type scanRequest struct {
	UserID string `json:"user_id"`
}

type scanResponse struct {
	Success   bool    `json:"success"`
	Fetched   int     `json:"fetched"`
	Persisted int     `json:"persisted"`
	TopScore  float64 `json:"topScore"`
}

// handleScan triggers one full scan. End users scan their own data; the
// service caller names the user in the body.
func (s *Server) handleScan(w http.ResponseWriter, r *http.Request) {
	identity, ok := IdentityFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "missing identity")
		return
	}

	var req scanRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil && !errors.Is(err, io.EOF) {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	var userID string
	switch identity.Kind {
	case IdentityEndUser:
		userID = identity.Subject
	case IdentityService:
		if req.UserID == "" {
			writeError(w, http.StatusBadRequest, "user_id is required for service calls")
			return
		}
		userID = req.UserID
	default:
		writeError(w, http.StatusForbidden, "unknown caller identity")
		return
	}

	result, err := s.scan(r.Context(), userID)
	if err != nil {
		s.logger.Error("scan failed", "user", userID, "error", err)
		writeErrorDetails(w, http.StatusBadGateway, scan.UserMessage(err), err.Error())
		return
	}

	writeJSON(w, http.StatusOK, scanResponse{
		Success:   true,
		Fetched:   result.Fetched,
		Persisted: result.Persisted,
		TopScore:  result.TopScore,
	})
}
