package adapter

import (
	"bytes"
	"context"
	_ "embed"
	"fmt"
	"log/slog"
	"text/template"

	"github.com/google/uuid"
	"github.com/tidwall/gjson"

	"github.com/jobscout/jobscout/internal/ai"
	"github.com/jobscout/jobscout/internal/model"
	"github.com/jobscout/jobscout/internal/retry"
)

// LLMSearchTag is the fixed source tag for LLM-grounded search results.
const LLMSearchTag = "ai-search"

//go:embed prompts/live_search.md
var liveSearchPromptRaw string

var liveSearchTemplate = template.Must(template.New("live_search").Parse(liveSearchPromptRaw))

// LLMSearchAdapter asks a grounded LLM for live postings matching the search.
// The model is expected to answer with a raw JSON array of job objects; a
// response that fails to parse resolves to an empty result, not an error.
type LLMSearchAdapter struct {
	provider ai.LLMProvider
	caller   *retry.Caller
	logger   *slog.Logger
}

// NewLLMSearchAdapter creates the LLM-grounded search adapter.
func NewLLMSearchAdapter(provider ai.LLMProvider, caller *retry.Caller, logger *slog.Logger) *LLMSearchAdapter {
	return &LLMSearchAdapter{
		provider: provider,
		caller:   caller,
		logger:   logger,
	}
}

func (a *LLMSearchAdapter) Name() string { return LLMSearchTag }

// Fetch runs one retry-wrapped search call and maps the JSON array into
// CandidateJobs.
func (a *LLMSearchAdapter) Fetch(ctx context.Context, keywords, location string) ([]model.CandidateJob, error) {
	var promptBuf bytes.Buffer
	err := liveSearchTemplate.Execute(&promptBuf, struct {
		Keywords string
		Location string
	}{Keywords: keywords, Location: location})
	if err != nil {
		return nil, fmt.Errorf("render live search prompt: %w", err)
	}

	raw, err := retry.Do(ctx, a.caller, "live_search", func(ctx context.Context) (string, error) {
		return a.provider.Complete(ctx, promptBuf.String())
	})
	if err != nil {
		return nil, fmt.Errorf("llm search: %w", err)
	}

	return a.parseJobs(raw, location), nil
}

// parseJobs maps the raw array response into CandidateJobs. Anything that is
// not a JSON array yields an empty slice.
func (a *LLMSearchAdapter) parseJobs(raw, location string) []model.CandidateJob {
	cleaned := stripFences(raw)
	parsed := gjson.Parse(cleaned)
	if !parsed.IsArray() {
		a.logger.Warn("llm search returned non-array response, treating as empty",
			"response_length", len(raw),
		)
		return []model.CandidateJob{}
	}

	var jobs []model.CandidateJob
	for _, item := range parsed.Array() {
		title := item.Get("title").String()
		company := item.Get("company").String()
		if title == "" && company == "" {
			continue
		}

		link := item.Get("link").String()
		id := link
		if id == "" {
			id = uuid.NewString()
		}

		jobs = append(jobs, model.CandidateJob{
			ExternalID:  fmt.Sprintf("%s:%s", LLMSearchTag, id),
			Title:       title,
			Company:     orDefault(company, placeholderCompany),
			Location:    orDefault(item.Get("location").String(), orDefault(location, "Remote")),
			Description: extractText(item.Get("description").String()),
			Link:        link,
			Source:      LLMSearchTag,
		})
	}
	if jobs == nil {
		jobs = []model.CandidateJob{}
	}
	return jobs
}

// stripFences removes markdown code fences around a JSON payload.
func stripFences(raw string) string {
	b := []byte(raw)
	b = bytes.TrimSpace(b)
	if bytes.HasPrefix(b, []byte("```")) {
		b = bytes.TrimPrefix(b, []byte("```json"))
		b = bytes.TrimPrefix(b, []byte("```"))
		b = bytes.TrimSpace(b)
		if idx := bytes.LastIndex(b, []byte("```")); idx != -1 {
			b = b[:idx]
		}
	}
	return string(bytes.TrimSpace(b))
}
