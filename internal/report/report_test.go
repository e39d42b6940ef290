package report

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/2389/gardeners/internal/garden"
	"github.com/2389/gardeners/internal/store"
)

func testRun() *store.Run {
	started := time.Date(2026, 5, 4, 10, 30, 0, 0, time.UTC)
	return &store.Run{
		ID:         "run-1",
		GridSize:   2,
		Seed:       99,
		Status:     store.StatusCompleted,
		StartedAt:  started,
		FinishedAt: started.Add(2 * time.Second),
		Gardeners: []store.GardenerResult{
			{Name: "first", Speed: 2.5, Step: 400 * time.Millisecond, End: garden.Position{}, Tended: 2, Passed: 1, Finished: true},
			{Name: "a|b", Speed: 10, Step: 100 * time.Millisecond, Tended: 1},
		},
		Cells: store.CellsFromSnapshot(garden.Snapshot{
			Size: 2,
			Cells: []garden.CellState{
				garden.Tended, garden.Tended,
				garden.Rock, garden.Tended,
			},
		}),
	}
}

func TestMarkdown(t *testing.T) {
	md := Markdown(testRun())

	assert.Contains(t, md, "# Garden run run-1")
	assert.Contains(t, md, "- Status: completed")
	assert.Contains(t, md, "- Grid: 2x2")
	assert.Contains(t, md, "- Seed: 99")
	assert.Contains(t, md, "- Duration: 2s")
	assert.Contains(t, md, "| first | 2.5 | 400ms | (0,0) → (0,0) | (0,0) | 2 | 1 | yes |")
	assert.Contains(t, md, `a\|b`)
	assert.Contains(t, md, "| 3 | 1 | 0 | 0 |")
	// Top row first
	assert.Contains(t, md, "```\n🗿🌻\n🌻🌻\n```")
}

func TestMarkdownWithoutCells(t *testing.T) {
	run := testRun()
	run.Cells = nil

	md := Markdown(run)
	assert.Contains(t, md, "## Gardeners")
	assert.NotContains(t, md, "## Final garden")
}

func TestHTML(t *testing.T) {
	page, err := HTML(testRun())
	require.NoError(t, err)

	assert.True(t, strings.HasPrefix(page, "<!DOCTYPE html>"))
	assert.Contains(t, page, "<title>Garden run run-1</title>")
	assert.Contains(t, page, "<h1>Garden run run-1</h1>")
	assert.Contains(t, page, "<table>")
	assert.Contains(t, page, "<td>first</td>")
	assert.Contains(t, page, "<pre><code>")
}
