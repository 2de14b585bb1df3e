package adapter

import (
	"context"
	"fmt"

	"github.com/go-resty/resty/v2"

	"github.com/jobscout/jobscout/internal/model"
)

const (
	joobleBaseURL   = "https://jooble.org/api"
	joobleSourceTag = "jooble"
)

// joobleJob represents one posting in the Jooble aggregator API response.
type joobleJob struct {
	ID       int64  `json:"id"`
	Title    string `json:"title"`
	Company  string `json:"company"`
	Location string `json:"location"`
	Snippet  string `json:"snippet"`
	Link     string `json:"link"`
}

// joobleResponse is the top-level Jooble search response.
type joobleResponse struct {
	TotalCount int         `json:"totalCount"`
	Jobs       []joobleJob `json:"jobs"`
}

// JoobleAdapter fetches postings from the Jooble aggregator API.
type JoobleAdapter struct {
	baseURL string
	apiKey  string
	client  *resty.Client
}

// NewJoobleAdapter creates an adapter for the Jooble search API.
func NewJoobleAdapter(apiKey string, client *resty.Client) *JoobleAdapter {
	return &JoobleAdapter{
		baseURL: joobleBaseURL,
		apiKey:  apiKey,
		client:  client,
	}
}

func (a *JoobleAdapter) Name() string { return joobleSourceTag }

// Fetch searches Jooble and normalizes results into CandidateJobs.
func (a *JoobleAdapter) Fetch(ctx context.Context, keywords, location string) ([]model.CandidateJob, error) {
	var result joobleResponse

	resp, err := a.client.R().
		SetContext(ctx).
		SetHeader("Content-Type", "application/json").
		SetBody(map[string]string{
			"keywords": keywords,
			"location": location,
		}).
		SetResult(&result).
		Post(fmt.Sprintf("%s/%s", a.baseURL, a.apiKey))
	if err != nil {
		return nil, fmt.Errorf("jooble fetch: %w", err)
	}

	if resp.IsError() {
		return nil, &model.HTTPError{
			StatusCode: resp.StatusCode(),
			RetryAfter: parseRetryAfter(resp.Header().Get("Retry-After")),
			Err:        fmt.Errorf("jooble search"),
		}
	}

	jobs := make([]model.CandidateJob, 0, len(result.Jobs))
	for _, jj := range result.Jobs {
		jobs = append(jobs, model.CandidateJob{
			ExternalID:  fmt.Sprintf("%s:%d", joobleSourceTag, jj.ID),
			Title:       jj.Title,
			Company:     orDefault(jj.Company, placeholderCompany),
			Location:    orDefault(jj.Location, orDefault(location, "Remote")),
			Description: extractText(jj.Snippet),
			Link:        jj.Link,
			Source:      joobleSourceTag,
		})
	}

	return jobs, nil
}
