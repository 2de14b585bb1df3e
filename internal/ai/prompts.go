package ai

import (
	_ "embed"
	"text/template"
)

//go:embed prompts/score_match.md
var scoreMatchPromptRaw string

//go:embed prompts/profile_synthesis.md
var profileSynthesisPromptRaw string

// ScoreMatchTemplate renders the scoring prompt. Parsed once at package init.
var ScoreMatchTemplate = template.Must(template.New("score_match").Parse(scoreMatchPromptRaw))

// ProfileSynthesisTemplate renders the profile/strategy synthesis prompt.
var ProfileSynthesisTemplate = template.Must(template.New("profile_synthesis").Parse(profileSynthesisPromptRaw))
