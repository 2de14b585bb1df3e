package model

import "time"

// MasterProfile is the structured career profile synthesized from the user's
// CV text, LinkedIn URL, and free-text preferences.
type MasterProfile struct {
	Name            string   `json:"name"`
	Headline        string   `json:"headline"`
	Summary         string   `json:"summary"`
	Skills          []string `json:"skills"`
	YearsExperience string   `json:"years_experience"`
	Locations       []string `json:"locations"`
	LinkedInURL     string   `json:"linkedin_url"`
}

// SearchStrategy is the synthesized plan for finding relevant postings.
type SearchStrategy struct {
	Keywords    string   `json:"keywords"`
	Location    string   `json:"location"`
	TargetRoles []string `json:"target_roles"`
	Notes       string   `json:"notes"`
}

// UserSettings is the singleton settings row for one user.
// LastDigestSentAt is the dedup high-water mark; it is stamped only after a
// successful non-test digest send.
type UserSettings struct {
	UserID            string
	DisplayName       string
	AccountEmail      string
	DigestEmail       string
	AutomationEnabled bool
	MatchThreshold    float64
	Timezone          string // IANA zone name, empty means UTC
	LastDigestSentAt  *time.Time
}

// RecipientEmail resolves where this user's digest goes: the stored digest
// address wins over the account address. Empty when neither is configured.
func (s UserSettings) RecipientEmail() string {
	if s.DigestEmail != "" {
		return s.DigestEmail
	}
	return s.AccountEmail
}
