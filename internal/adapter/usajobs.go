package adapter

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"

	"github.com/jobscout/jobscout/internal/model"
)

const (
	usajobsBaseURL   = "https://data.usajobs.gov/api/search"
	usajobsSourceTag = "usajobs"
)

// usajobsItem represents one search result in the USAJOBS API response.
type usajobsItem struct {
	MatchedObjectID         string `json:"MatchedObjectId"`
	MatchedObjectDescriptor struct {
		PositionTitle           string `json:"PositionTitle"`
		OrganizationName        string `json:"OrganizationName"`
		PositionLocationDisplay string `json:"PositionLocationDisplay"`
		PositionURI             string `json:"PositionURI"`
		UserArea                struct {
			Details struct {
				JobSummary string `json:"JobSummary"`
			} `json:"Details"`
		} `json:"UserArea"`
	} `json:"MatchedObjectDescriptor"`
}

// usajobsResponse is the top-level USAJOBS search response.
type usajobsResponse struct {
	SearchResult struct {
		SearchResultItems []usajobsItem `json:"SearchResultItems"`
	} `json:"SearchResult"`
}

// USAJobsAdapter fetches postings from the USAJOBS government API.
type USAJobsAdapter struct {
	baseURL   string
	apiKey    string
	userAgent string // USAJOBS requires the registered email as User-Agent
	client    *http.Client
}

// NewUSAJobsAdapter creates an adapter for the USAJOBS search API.
func NewUSAJobsAdapter(apiKey, userAgent string, client *http.Client) *USAJobsAdapter {
	return &USAJobsAdapter{
		baseURL:   usajobsBaseURL,
		apiKey:    apiKey,
		userAgent: userAgent,
		client:    client,
	}
}

func (a *USAJobsAdapter) Name() string { return usajobsSourceTag }

// Fetch searches USAJOBS and normalizes results into CandidateJobs.
func (a *USAJobsAdapter) Fetch(ctx context.Context, keywords, location string) ([]model.CandidateJob, error) {
	q := url.Values{}
	q.Set("Keyword", keywords)
	if location != "" {
		q.Set("LocationName", location)
	}
	q.Set("ResultsPerPage", "25")

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, a.baseURL+"?"+q.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("usajobs fetch: %w", err)
	}
	req.Header.Set("Authorization-Key", a.apiKey)
	req.Header.Set("User-Agent", a.userAgent)

	resp, err := a.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("usajobs fetch: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, &model.HTTPError{
			StatusCode: resp.StatusCode,
			RetryAfter: parseRetryAfter(resp.Header.Get("Retry-After")),
			Err:        fmt.Errorf("usajobs search"),
		}
	}

	var ujResp usajobsResponse
	if err := json.NewDecoder(resp.Body).Decode(&ujResp); err != nil {
		return nil, fmt.Errorf("usajobs fetch: %w", err)
	}

	jobs := make([]model.CandidateJob, 0, len(ujResp.SearchResult.SearchResultItems))
	for _, item := range ujResp.SearchResult.SearchResultItems {
		d := item.MatchedObjectDescriptor
		jobs = append(jobs, model.CandidateJob{
			ExternalID:  fmt.Sprintf("%s:%s", usajobsSourceTag, item.MatchedObjectID),
			Title:       d.PositionTitle,
			Company:     orDefault(d.OrganizationName, placeholderCompany),
			Location:    orDefault(d.PositionLocationDisplay, "United States"),
			Description: extractText(d.UserArea.Details.JobSummary),
			Link:        d.PositionURI,
			Source:      usajobsSourceTag,
		})
	}

	return jobs, nil
}
