package generator

import (
	"context"
	"encoding/json"

	"banner_agent/design"
)

// MockLLM is an offline stand-in for local runs and tests.
// It answers every step with schema-valid JSON and approves on the first review.
type MockLLM struct {
	// Canvas is used when the prompt carries none.
	Canvas design.Canvas
}

func (m MockLLM) Complete(_ context.Context, prompt Prompt) (string, error) {
	canvas := prompt.Canvas
	if canvas.Width <= 0 || canvas.Height <= 0 {
		canvas = m.Canvas
	}
	if canvas.Width <= 0 || canvas.Height <= 0 {
		canvas = design.DefaultCanvas
	}
	dir := DefaultCreativeDirection()

	var v any
	name := ""
	if prompt.Schema != nil {
		name = prompt.Schema.Name
	}
	switch name {
	case SchemaCreativeDirection:
		dir.LogoAnalysis = "No logo provided."
		if len(prompt.Attachments) > 0 {
			dir.LogoAnalysis = "Logo detected. Its colors will inspire the palette."
		}
		v = dir
	case SchemaBackground:
		bg := DefaultBackground(dir)
		bg.OverlayLayer = design.OverlayLayer{Type: design.OverlayDots, Color: "#FFFFFF", Opacity: 0.06}
		v = bg
	case SchemaLayout:
		v = DefaultLayout(canvas, dir)
	case SchemaFeedback:
		v = design.Feedback{Approved: true, Suggestions: []string{"Layout is balanced."}}
	case "banner_score":
		v = map[string]any{"score": 4, "explanation": "Mock evaluation."}
	default:
		v = map[string]any{}
	}
	data, err := json.Marshal(v)
	if err != nil {
		return "", err
	}
	return string(data), nil
}
