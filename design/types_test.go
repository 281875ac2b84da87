package design

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLayoutJSONRoundTrip(t *testing.T) {
	original := sampleLayout()

	data, err := json.Marshal(original)
	require.NoError(t, err)

	var decoded Layout
	require.NoError(t, json.Unmarshal(data, &decoded))

	if diff := cmp.Diff(original, decoded); diff != "" {
		t.Fatalf("round trip mismatch (-want +got):\n%s", diff)
	}
}

func TestTextContentKeepsShape(t *testing.T) {
	tests := []struct {
		name string
		in   string
	}{
		{"string", `"Hello"`},
		{"list", `["Hello","World"]`},
		{"empty list", `[]`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var tc TextContent
			require.NoError(t, json.Unmarshal([]byte(tt.in), &tc))
			out, err := json.Marshal(tc)
			require.NoError(t, err)
			assert.JSONEq(t, tt.in, string(out))
		})
	}

	var tc TextContent
	assert.Error(t, json.Unmarshal([]byte(`{"a":1}`), &tc))
}

func TestLogoWithoutTextOmitsField(t *testing.T) {
	data, err := json.Marshal(Element{Position: Point{X: 1, Y: 2}})
	require.NoError(t, err)
	assert.NotContains(t, string(data), `"text"`)
}

func TestBackgroundValidate(t *testing.T) {
	ok := Background{
		BaseLayer:    BaseLayer{Type: BaseGradient, Colors: []string{"#000000", "#FFFFFF"}},
		OverlayLayer: OverlayLayer{Type: OverlayDots, Color: "#FFFFFF", Opacity: 0.1},
	}
	assert.NoError(t, ok.Validate())

	bad := ok
	bad.BaseLayer.Type = "photo"
	assert.True(t, errors.Is(bad.Validate(), ErrUnknownBaseType))

	bad = ok
	bad.OverlayLayer.Type = "stars"
	assert.True(t, errors.Is(bad.Validate(), ErrUnknownOverlayType))

	bad = ok
	bad.OverlayLayer.Opacity = 1.5
	assert.Error(t, bad.Validate())

	bad = ok
	bad.BaseLayer.Colors = nil
	assert.Error(t, bad.Validate())
}

func TestCheck(t *testing.T) {
	layout := sampleLayout()
	assert.Empty(t, Check(layout, DefaultCanvas))

	head := layout[ElementHeadline]
	head.Position.Y = 200 // now intersects the subheadline
	layout[ElementHeadline] = head
	logo := layout[ElementLogo]
	logo.Position.X = 1100
	layout[ElementLogo] = logo

	got := Check(layout, DefaultCanvas)
	require.Len(t, got, 2)
	assert.Equal(t, ViolationOutOfBounds, got[0].Kind)
	assert.Equal(t, []string{ElementLogo}, got[0].Elements)
	assert.Equal(t, ViolationOverlap, got[1].Kind)
	assert.Equal(t, []string{ElementHeadline, ElementSubheadline}, got[1].Elements)
}
