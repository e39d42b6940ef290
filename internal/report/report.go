// ABOUTME: Markdown and HTML reports for stored garden runs
// ABOUTME: HTML is rendered from the Markdown with goldmark and wrapped in a page template

// Package report formats stored runs for people.
package report

import (
	"bytes"
	"fmt"
	"html/template"
	"strings"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"

	"github.com/2389/gardeners/internal/garden"
	"github.com/2389/gardeners/internal/store"
)

// Markdown returns a summary table and the final grid of run.
func Markdown(run *store.Run) string {
	var b strings.Builder

	fmt.Fprintf(&b, "# Garden run %s\n\n", run.ID)
	fmt.Fprintf(&b, "- Status: %s\n", run.Status)
	fmt.Fprintf(&b, "- Grid: %dx%d\n", run.GridSize, run.GridSize)
	fmt.Fprintf(&b, "- Seed: %d\n", run.Seed)
	fmt.Fprintf(&b, "- Started: %s\n", run.StartedAt.UTC().Format("2006-01-02 15:04:05 UTC"))
	fmt.Fprintf(&b, "- Duration: %s\n\n", run.Duration().Round(1e6))

	b.WriteString("## Gardeners\n\n")
	b.WriteString("| Name | Speed | Step | Route | Final | Tended | Passed | Finished |\n")
	b.WriteString("|---|---:|---:|---|---|---:|---:|---|\n")
	for _, g := range run.Gardeners {
		finished := "no"
		if g.Finished {
			finished = "yes"
		}
		fmt.Fprintf(&b, "| %s | %g | %s | %s → %s | %s | %d | %d | %s |\n",
			escapeCell(g.Name), g.Speed, g.Step, g.Start, g.End, g.Final, g.Tended, g.Passed, finished)
	}

	if len(run.Cells) > 0 {
		snap := run.Snapshot()

		b.WriteString("\n## Cells\n\n")
		b.WriteString("| Tended | Rocks | Ponds | Untended |\n")
		b.WriteString("|---:|---:|---:|---:|\n")
		fmt.Fprintf(&b, "| %d | %d | %d | %d |\n",
			snap.Count(garden.Tended), snap.Count(garden.Rock), snap.Count(garden.Pond),
			snap.Count(garden.Untended)+snap.Count(garden.BeingTended))

		b.WriteString("\n## Final garden\n\n```\n")
		for y := snap.Size - 1; y >= 0; y-- {
			for x := 0; x < snap.Size; x++ {
				b.WriteString(snap.At(garden.Position{X: x, Y: y}).Symbol())
			}
			b.WriteByte('\n')
		}
		b.WriteString("```\n")
	}

	return b.String()
}

func escapeCell(s string) string {
	return strings.ReplaceAll(s, "|", `\|`)
}

var markdown = goldmark.New(goldmark.WithExtensions(extension.Table))

var pageTemplate = template.Must(template.New("report").Parse(`<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="utf-8">
<title>Garden run {{.ID}}</title>
</head>
<body>
{{.Body}}
</body>
</html>
`))

// HTML renders the Markdown report as a standalone page.
func HTML(run *store.Run) (string, error) {
	var body bytes.Buffer
	if err := markdown.Convert([]byte(Markdown(run)), &body); err != nil {
		return "", fmt.Errorf("converting markdown: %w", err)
	}

	var page bytes.Buffer
	err := pageTemplate.Execute(&page, struct {
		ID   string
		Body template.HTML
	}{
		ID:   run.ID,
		Body: template.HTML(body.String()),
	})
	if err != nil {
		return "", fmt.Errorf("rendering page: %w", err)
	}
	return page.String(), nil
}
