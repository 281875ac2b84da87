package generator

import (
	"context"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"banner_agent/design"
)

func TestDecodeStructured(t *testing.T) {
	schemas, err := newStepSchemas()
	require.NoError(t, err)

	valid := `{"base_layer":{"type":"gradient","colors":["#0A192F","#172A45"],"angle":120},"overlay_layer":{"type":"dots","color":"#FFFFFF","opacity":0.1}}`
	want := design.Background{
		BaseLayer:    design.BaseLayer{Type: design.BaseGradient, Colors: []string{"#0A192F", "#172A45"}, Angle: 120},
		OverlayLayer: design.OverlayLayer{Type: design.OverlayDots, Color: "#FFFFFF", Opacity: 0.1},
	}

	cases := []struct {
		name    string
		raw     string
		wantErr error
	}{
		{name: "plain", raw: valid},
		{name: "padded", raw: "\n  " + valid + "\n"},
		{name: "json fence", raw: "```json\n" + valid + "\n```"},
		{name: "bare fence", raw: "```\n" + valid + "\n```"},
		{name: "empty", raw: "   ", wantErr: ErrEmptyResponse},
		{name: "empty fence", raw: "```json\n```", wantErr: ErrEmptyResponse},
		{name: "prose around json", raw: "Here you go: " + valid, wantErr: ErrInvalidJSON},
		{name: "trailing prose", raw: valid + " hope this helps", wantErr: ErrInvalidJSON},
		{name: "two documents", raw: valid + valid, wantErr: ErrInvalidJSON},
		{name: "other fence language", raw: "```yaml\n" + valid + "\n```", wantErr: ErrInvalidJSON},
		{name: "unterminated fence", raw: "```json\n" + valid, wantErr: ErrInvalidJSON},
		{name: "unknown base type", raw: `{"base_layer":{"type":"image","colors":["#000000"]},"overlay_layer":{"type":"none","opacity":0}}`, wantErr: ErrSchemaViolation},
		{name: "missing overlay", raw: `{"base_layer":{"type":"solid","colors":["#000000"]}}`, wantErr: ErrSchemaViolation},
		{name: "empty colors", raw: `{"base_layer":{"type":"solid","colors":[]},"overlay_layer":{"type":"none","opacity":0}}`, wantErr: ErrSchemaViolation},
		{name: "opacity out of range", raw: `{"base_layer":{"type":"solid","colors":["#000000"]},"overlay_layer":{"type":"grid","opacity":3}}`, wantErr: ErrSchemaViolation},
		{name: "array instead of object", raw: `[1,2,3]`, wantErr: ErrSchemaViolation},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := DecodeStructured[design.Background](tc.raw, schemas.background)
			if tc.wantErr != nil {
				assert.ErrorIs(t, err, tc.wantErr)
				return
			}
			require.NoError(t, err)
			if diff := cmp.Diff(want, got); diff != "" {
				t.Errorf("background mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestDecodeLayoutKeepsTextShape(t *testing.T) {
	schemas, err := newStepSchemas()
	require.NoError(t, err)

	raw := `{
  "headline": {"text": "Think before you ship", "font_size": 56, "color": "#FFFFFF",
    "position": {"x": 60, "y": 120}, "dimensions": {"width": 700, "height": 80}},
  "subheadline": {"text": ["Ethics in AI", "A panel discussion"], "font_size": 28,
    "position": {"x": 60, "y": 220}, "dimensions": {"width": 600, "height": 90}},
  "logo": {"position": {"x": 1020, "y": 24}, "dimensions": {"width": 150, "height": 60}}
}`
	layout, err := DecodeStructured[design.Layout](raw, schemas.layout)
	require.NoError(t, err)
	assert.False(t, layout[design.ElementHeadline].Text.Multi)
	assert.True(t, layout[design.ElementSubheadline].Text.Multi)
	assert.Equal(t, []string{"Ethics in AI", "A panel discussion"}, layout[design.ElementSubheadline].Text.Lines)
	assert.True(t, layout[design.ElementLogo].Text.IsZero())

	_, err = DecodeStructured[design.Layout](`{"headline": {"text": 42, "position": {"x": 0, "y": 0}, "dimensions": {"width": 1, "height": 1}}}`, schemas.layout)
	assert.ErrorIs(t, err, ErrSchemaViolation)

	_, err = DecodeStructured[design.Layout](`{"headline": {"text": "no geometry"}}`, schemas.layout)
	assert.ErrorIs(t, err, ErrSchemaViolation)
}

func TestMockLLMRepliesMatchSchemas(t *testing.T) {
	schemas, err := newStepSchemas()
	require.NoError(t, err)
	ctx := context.Background()
	m := MockLLM{Canvas: design.Canvas{Width: 728, Height: 90}}

	raw, err := m.Complete(ctx, Prompt{Schema: schemas.direction})
	require.NoError(t, err)
	dir, err := DecodeStructured[design.CreativeDirection](raw, schemas.direction)
	require.NoError(t, err)
	assert.Equal(t, "No logo provided.", dir.LogoAnalysis)

	raw, err = m.Complete(ctx, Prompt{Schema: schemas.background})
	require.NoError(t, err)
	bg, err := DecodeStructured[design.Background](raw, schemas.background)
	require.NoError(t, err)
	assert.NoError(t, bg.Validate())

	raw, err = m.Complete(ctx, Prompt{Schema: schemas.layout})
	require.NoError(t, err)
	layout, err := DecodeStructured[design.Layout](raw, schemas.layout)
	require.NoError(t, err)
	if diff := cmp.Diff(DefaultLayout(m.Canvas, DefaultCreativeDirection()), layout); diff != "" {
		t.Errorf("layout mismatch (-want +got):\n%s", diff)
	}

	raw, err = m.Complete(ctx, Prompt{Schema: schemas.feedback})
	require.NoError(t, err)
	fb, err := DecodeStructured[design.Feedback](raw, schemas.feedback)
	require.NoError(t, err)
	assert.True(t, fb.Approved)
}

func TestSystemTextCarriesSchema(t *testing.T) {
	schemas, err := newStepSchemas()
	require.NoError(t, err)

	p := Prompt{System: "base", Schema: schemas.feedback}
	assert.Contains(t, p.SystemText(), "base")
	assert.Contains(t, p.SystemText(), `"approved"`)
	assert.Equal(t, "base", Prompt{System: "base"}.SystemText())

	doc := schemas.feedback.Document()
	assert.Equal(t, "object", doc["type"])
	assert.NotContains(t, doc, "$schema")
}
