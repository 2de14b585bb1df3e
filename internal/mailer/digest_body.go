package mailer

import (
	"fmt"
	"html/template"
	"strings"

	"github.com/jobscout/jobscout/internal/model"
)

// DigestSubject builds the subject line for a digest email.
func DigestSubject(snapshot model.DigestSnapshot) string {
	n := len(snapshot.Matches)
	if n == 0 {
		return "Job digest: no new matches today"
	}
	return fmt.Sprintf("Job digest: %d match(es) above %.0f", n, snapshot.EffectiveThreshold)
}

var digestTmpl = template.Must(template.New("digest").Parse(`<h2>Hi {{.Name}},</h2>
{{if .Mock}}<p><em>Sample data — no real matches cleared your threshold yet.</em></p>{{end}}
{{if .Matches}}<p>Your top matches since the last digest:</p>
<ul>
{{range .Matches}}<li>
<strong>{{.Title}}</strong> at {{.Company}} ({{.Location}}) — score {{printf "%.0f" .Score}}<br>
{{if .Link}}<a href="{{.Link}}">View posting</a>{{end}}
{{if .Reasoning.Pros}}<br>Why: {{.ProsJoined}}{{end}}
</li>
{{end}}</ul>
{{else}}<p>No matches cleared your threshold today. We'll keep looking.</p>{{end}}`))

type digestItem struct {
	model.ScoredMatch
	ProsJoined string
}

// DigestHTML renders the minimal digest body. Layout stays deliberately
// plain; formatting beyond a list is out of scope.
func DigestHTML(displayName string, snapshot model.DigestSnapshot) string {
	if displayName == "" {
		displayName = "there"
	}

	items := make([]digestItem, 0, len(snapshot.Matches))
	for _, m := range snapshot.Matches {
		items = append(items, digestItem{ScoredMatch: m, ProsJoined: strings.Join(m.Reasoning.Pros, "; ")})
	}

	var b strings.Builder
	err := digestTmpl.Execute(&b, struct {
		Name    string
		Mock    bool
		Matches []digestItem
	}{Name: displayName, Mock: snapshot.UsedMockData, Matches: items})
	if err != nil {
		// Template and data are fully under our control; fall back to a bare
		// body rather than failing the send.
		return fmt.Sprintf("<p>%d new job match(es).</p>", len(snapshot.Matches))
	}
	return b.String()
}
