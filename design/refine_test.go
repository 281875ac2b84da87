package design

import (
	"encoding/json"
	"math"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func radius(v float64) *float64 { return &v }

func sampleLayout() Layout {
	return Layout{
		ElementHeadline: {
			Text:       SingleText("Launch faster"),
			FontFamily: "Inter",
			FontSize:   56,
			Color:      "#FFFFFF",
			Position:   Point{X: 60, Y: 120},
			Dimensions: Size{Width: 700, Height: 80},
		},
		ElementSubheadline: {
			Text:       MultiText("AI tooling", "for busy teams"),
			FontFamily: "Inter",
			FontSize:   28,
			Color:      "#B0C4DE",
			Position:   Point{X: 60, Y: 220},
			Dimensions: Size{Width: 600, Height: 90},
		},
		ElementCTA: {
			Text:            SingleText("Try it free"),
			FontFamily:      "Inter",
			FontSize:        24,
			Color:           "#0A192F",
			BackgroundColor: "#64FFDA",
			BorderRadius:    radius(8),
			Position:        Point{X: 60, Y: 360},
			Dimensions:      Size{Width: 220, Height: 60},
		},
		ElementLogo: {
			Position:   Point{X: 1020, Y: 24},
			Dimensions: Size{Width: 150, Height: 60},
		},
	}
}

func TestApplyRepositionTouchesOnlyTarget(t *testing.T) {
	before := sampleLayout()
	after, outcomes := Apply(before, []Issue{{
		Element:    ElementHeadline,
		Action:     ActionReposition,
		Parameters: map[string]any{"x": 80.0, "y": 140.0},
	}})

	require.Len(t, outcomes, 1)
	assert.True(t, outcomes[0].Applied)
	assert.Equal(t, []string{"x", "y"}, outcomes[0].Changed)
	assert.Equal(t, Point{X: 80, Y: 140}, after[ElementHeadline].Position)

	for name, el := range before {
		if name == ElementHeadline {
			continue
		}
		if diff := cmp.Diff(el, after[name]); diff != "" {
			t.Errorf("%s changed (-before +after):\n%s", name, diff)
		}
	}
	// the headline's other fields are untouched too
	want := before[ElementHeadline]
	want.Position = Point{X: 80, Y: 140}
	if diff := cmp.Diff(want, after[ElementHeadline]); diff != "" {
		t.Errorf("headline mismatch (-want +got):\n%s", diff)
	}
}

func TestApplyDoesNotMutateInput(t *testing.T) {
	before := sampleLayout()
	snapshot := before.Clone()
	Apply(before, []Issue{
		{Element: ElementCTA, Action: ActionStyleChange, Parameters: map[string]any{"border_radius": 20.0}},
		{Element: ElementSubheadline, Action: ActionRetext, Parameters: map[string]any{"text": "Ship it"}},
	})
	if diff := cmp.Diff(snapshot, before); diff != "" {
		t.Fatalf("input layout mutated (-want +got):\n%s", diff)
	}
}

func TestApplyUnknownElementIsNoop(t *testing.T) {
	before := sampleLayout()
	after, outcomes := Apply(before, []Issue{{
		Element:    "footer",
		Action:     ActionReposition,
		Parameters: map[string]any{"x": 1.0},
	}})

	require.Len(t, outcomes, 1)
	assert.False(t, outcomes[0].Applied)
	assert.Equal(t, ReasonUnknownElement, outcomes[0].Reason)
	if diff := cmp.Diff(before, after); diff != "" {
		t.Fatalf("layout changed (-want +got):\n%s", diff)
	}
}

func TestApplyActions(t *testing.T) {
	tests := []struct {
		name    string
		issue   Issue
		check   func(t *testing.T, el Element)
		changed []string
	}{
		{
			name:    "resize with px strings",
			issue:   Issue{Element: ElementHeadline, Action: ActionResize, Parameters: map[string]any{"font_size": "64px", "width": 800}},
			changed: []string{"font_size", "width"},
			check: func(t *testing.T, el Element) {
				assert.Equal(t, 64.0, el.FontSize)
				assert.Equal(t, 800.0, el.Dimensions.Width)
				assert.Equal(t, 80.0, el.Dimensions.Height)
			},
		},
		{
			name:    "recolor via cta alias",
			issue:   Issue{Element: "cta", Action: ActionRecolor, Parameters: map[string]any{"background_color": "#FFC700"}},
			changed: []string{"background_color"},
			check: func(t *testing.T, el Element) {
				assert.Equal(t, "#FFC700", el.BackgroundColor)
				assert.Equal(t, "#0A192F", el.Color)
			},
		},
		{
			name:    "mixed-case element name",
			issue:   Issue{Element: " Headline ", Action: ActionReposition, Parameters: map[string]any{"x": 12.0}},
			changed: []string{"x"},
			check: func(t *testing.T, el Element) {
				assert.Equal(t, Point{X: 12, Y: 120}, el.Position)
			},
		},
		{
			name:    "upper-case cta alias",
			issue:   Issue{Element: "CTA", Action: ActionRecolor, Parameters: map[string]any{"color": "#111111"}},
			changed: []string{"color"},
			check: func(t *testing.T, el Element) {
				assert.Equal(t, "#111111", el.Color)
			},
		},
		{
			name:    "stylechange",
			issue:   Issue{Element: ElementCTA, Action: "StyleChange", Parameters: map[string]any{"font_family": "Poppins", "border_radius": 24.0}},
			changed: []string{"border_radius", "font_family"},
			check: func(t *testing.T, el Element) {
				assert.Equal(t, "Poppins", el.FontFamily)
				require.NotNil(t, el.BorderRadius)
				assert.Equal(t, 24.0, *el.BorderRadius)
			},
		},
		{
			name:    "retext with list",
			issue:   Issue{Element: ElementSubheadline, Action: ActionRetext, Parameters: map[string]any{"text": []any{"One", "Two"}}},
			changed: []string{"text"},
			check: func(t *testing.T, el Element) {
				assert.Equal(t, MultiText("One", "Two"), el.Text)
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			after, outcomes := Apply(sampleLayout(), []Issue{tt.issue})
			require.Len(t, outcomes, 1)
			require.True(t, outcomes[0].Applied, "reason: %s", outcomes[0].Reason)
			assert.Equal(t, tt.changed, outcomes[0].Changed)
			tt.check(t, after[CanonicalElement(tt.issue.Element)])
		})
	}
}

func TestApplySkipsUnusableIssues(t *testing.T) {
	tests := []struct {
		name   string
		issue  Issue
		reason string
	}{
		{"unknown action", Issue{Element: ElementHeadline, Action: "rotate", Parameters: map[string]any{"deg": 10}}, ReasonUnknownAction},
		{"no parameters", Issue{Element: ElementHeadline, Action: ActionResize}, ReasonNoParameters},
		{"bad number", Issue{Element: ElementHeadline, Action: ActionReposition, Parameters: map[string]any{"x": "left"}}, ReasonNoParameters},
		{"nan and inf strings", Issue{Element: ElementHeadline, Action: ActionReposition, Parameters: map[string]any{"x": "NaN", "y": "Inf"}}, ReasonNoParameters},
		{"infinite numbers", Issue{Element: ElementHeadline, Action: ActionResize, Parameters: map[string]any{"width": math.Inf(1), "font_size": "Infinity", "height": math.NaN()}}, ReasonNoParameters},
		{"bad text type", Issue{Element: ElementHeadline, Action: ActionRetext, Parameters: map[string]any{"text": 12}}, ReasonNoParameters},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			before := sampleLayout()
			after, outcomes := Apply(before, []Issue{tt.issue})
			require.Len(t, outcomes, 1)
			assert.False(t, outcomes[0].Applied)
			assert.Equal(t, tt.reason, outcomes[0].Reason)
			assert.Empty(t, cmp.Diff(before, after))
		})
	}
}

func TestApplyKeepsLayoutEncodable(t *testing.T) {
	after, outcomes := Apply(sampleLayout(), []Issue{
		{Element: ElementHeadline, Action: ActionReposition, Parameters: map[string]any{"x": "-Infinity", "y": 30.0}},
		{Element: ElementCTA, Action: ActionStyleChange, Parameters: map[string]any{"border_radius": "nan"}},
	})
	require.Len(t, outcomes, 2)
	assert.Equal(t, []string{"y"}, outcomes[0].Changed)
	assert.False(t, outcomes[1].Applied)

	_, err := json.Marshal(after)
	assert.NoError(t, err)
}

func TestCanonicalElement(t *testing.T) {
	for in, want := range map[string]string{
		"headline":    ElementHeadline,
		" Headline ":  ElementHeadline,
		"CTA":         ElementCTA,
		"Button":      ElementCTA,
		"cta-button":  ElementCTA,
		"SubHeadline": ElementSubheadline,
		"Footer":      "footer",
	} {
		assert.Equal(t, want, CanonicalElement(in), in)
	}
}
