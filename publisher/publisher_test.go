package publisher

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"banner_agent/design"
	"banner_agent/generator"
)

func sampleResult() generator.Result {
	dir := generator.DefaultCreativeDirection()
	layout := generator.DefaultLayout(design.DefaultCanvas, dir)
	layout[design.ElementSubheadline] = design.Element{
		Text:       design.MultiText("Ethics in AI", "A | panel"),
		FontSize:   28,
		Color:      "#8892B0",
		Position:   design.Point{X: 72, Y: 264},
		Dimensions: design.Size{Width: 720, Height: 75},
	}
	return generator.Result{
		RunID:      "12345678-aaaa-bbbb-cccc-1234567890ab",
		CreatedAt:  time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC),
		Request:    "Banner for AI Ethics discussion",
		Canvas:     design.DefaultCanvas,
		Direction:  dir,
		Background: generator.DefaultBackground(dir),
		Layout:     layout,
		Iterations: []generator.Turn{
			{
				Iteration: 1,
				Feedback: design.Feedback{
					Issues:      []design.Issue{{Element: "sticker", Action: "resize", Parameters: map[string]any{"width": 10.0}}},
					Suggestions: []string{"Logo feels cramped"},
				},
				Outcomes: []design.IssueOutcome{{
					Issue:  design.Issue{Element: "sticker", Action: "resize", Parameters: map[string]any{"width": 10.0}},
					Reason: design.ReasonUnknownElement,
				}},
			},
			{Iteration: 2, Feedback: design.Feedback{Approved: true}},
		},
		Approved:   true,
		StopReason: generator.StopApproved,
		Warnings:   []string{"strategist: boom; using defaults"},
		Logo:       "data:image/png;base64,YWJj",
	}
}

func newTestPublisher(t *testing.T) (*Publisher, string) {
	t.Helper()
	dir := t.TempDir()
	logger, _ := test.NewNullLogger()
	p, err := New(dir, logger)
	require.NoError(t, err)
	return p, dir
}

func TestPublishAllFormats(t *testing.T) {
	p, dir := newTestPublisher(t)
	res := sampleResult()

	paths, err := p.Publish(context.Background(), res, Formats...)
	require.NoError(t, err)

	runDir := filepath.Join(dir, res.RunID)
	want := []string{
		filepath.Join(runDir, "banner.json"),
		filepath.Join(runDir, "banner.svg"),
		filepath.Join(runDir, "figma-plugin", "code.js"),
		filepath.Join(runDir, "figma-plugin", "manifest.json"),
		filepath.Join(runDir, "figma-plugin", "ui.html"),
		filepath.Join(runDir, "report.html"),
	}
	assert.Equal(t, want, paths)

	data, err := os.ReadFile(filepath.Join(runDir, "banner.json"))
	require.NoError(t, err)
	var back generator.Result
	require.NoError(t, json.Unmarshal(data, &back))
	if diff := cmp.Diff(res.Layout, back.Layout); diff != "" {
		t.Errorf("layout changed on export (-want +got):\n%s", diff)
	}
	assert.Equal(t, res.StopReason, back.StopReason)
	assert.Equal(t, res.Warnings, back.Warnings)
	assert.Len(t, back.Iterations, 2)

	svg, err := os.ReadFile(filepath.Join(runDir, "banner.svg"))
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(string(svg), "<svg"))
	assert.Contains(t, string(svg), "data:image/png;base64,YWJj")

	var manifest map[string]any
	data, err = os.ReadFile(filepath.Join(runDir, "figma-plugin", "manifest.json"))
	require.NoError(t, err)
	require.NoError(t, json.Unmarshal(data, &manifest))
	assert.Equal(t, "code.js", manifest["main"])
	assert.Equal(t, "ui.html", manifest["ui"])
	assert.Equal(t, "Banner 12345678", manifest["name"])

	code, err := os.ReadFile(filepath.Join(runDir, "figma-plugin", "code.js"))
	require.NoError(t, err)
	assert.Contains(t, string(code), "const BANNER = {")
	assert.Contains(t, string(code), `"kind": "button"`)
	assert.Contains(t, string(code), "figma.createFrame()")

	ui, err := os.ReadFile(filepath.Join(runDir, "figma-plugin", "ui.html"))
	require.NoError(t, err)
	assert.Contains(t, string(ui), "base64,YWJj")
}

func TestPublishRejectsUnknownFormat(t *testing.T) {
	p, dir := newTestPublisher(t)
	_, err := p.Publish(context.Background(), sampleResult(), FormatJSON, "png")
	assert.ErrorIs(t, err, ErrUnknownFormat)

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Empty(t, entries)

	_, err = p.Publish(context.Background(), generator.Result{}, FormatJSON)
	assert.Error(t, err)

	_, err = New("  ", nil)
	assert.Error(t, err)
}

func TestParseFormats(t *testing.T) {
	cases := []struct {
		in      string
		want    []string
		wantErr bool
	}{
		{in: "json", want: []string{"json"}},
		{in: " SVG , json,svg", want: []string{"svg", "json"}},
		{in: "all", want: Formats},
		{in: "json,all", want: Formats},
		{in: "png", wantErr: true},
		{in: " , ", wantErr: true},
	}
	for _, tc := range cases {
		t.Run(tc.in, func(t *testing.T) {
			got, err := ParseFormats(tc.in)
			if tc.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tc.want, got)
		})
	}
}

func TestParseColor(t *testing.T) {
	fb := figmaColor{A: 1}
	cases := []struct {
		in   string
		want figmaColor
	}{
		{"#FFFFFF", figmaColor{R: 1, G: 1, B: 1, A: 1}},
		{"#000", figmaColor{A: 1}},
		{"#64FFDA", figmaColor{R: 0.392, G: 1, B: 0.855, A: 1}},
		{"#FF000080", figmaColor{R: 1, A: 0.502}},
		{"red", fb},
		{"#GGGGGG", fb},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, parseColor(tc.in, fb), tc.in)
	}
}

func TestBuildFigmaDoc(t *testing.T) {
	doc := buildFigmaDoc("Banner x", sampleResult())
	assert.Equal(t, 1200, doc.Width)
	assert.Equal(t, "gradient", doc.Background.Type)
	assert.Len(t, doc.Background.Colors, 2)

	require.Len(t, doc.Nodes, 4)
	names := []string{doc.Nodes[0].Name, doc.Nodes[1].Name, doc.Nodes[2].Name, doc.Nodes[3].Name}
	assert.Equal(t, design.ElementOrder, names)

	assert.Equal(t, "logo", doc.Nodes[0].Kind)
	assert.Nil(t, doc.Nodes[0].Color)
	assert.Equal(t, "Bold", doc.Nodes[1].FontStyle)
	assert.Equal(t, []string{"Ethics in AI", "A | panel"}, doc.Nodes[2].Lines)
	assert.Equal(t, "Inter", doc.Nodes[2].FontFamily)
	assert.Equal(t, "button", doc.Nodes[3].Kind)
	assert.Equal(t, "CENTER", doc.Nodes[3].Align)
	assert.Equal(t, 8.0, doc.Nodes[3].Radius)
	require.NotNil(t, doc.Nodes[3].Fill)
}

func TestMarkdownReport(t *testing.T) {
	out := Markdown(sampleResult())
	assert.Contains(t, out, "# Banner 12345678")
	assert.Contains(t, out, "| Stop reason | approved |")
	assert.Contains(t, out, `Ethics in AI A \| panel`)
	assert.Contains(t, out, "(skipped: unknown element)")
	assert.Contains(t, out, "Approved.")
	assert.Contains(t, out, "## Warnings")

	page, err := HTMLReport(sampleResult())
	require.NoError(t, err)
	assert.Contains(t, page, "<table>")
	assert.Contains(t, page, "<svg")
	assert.Contains(t, page, "<h2>Creative direction</h2>")
}
