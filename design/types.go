// Package design holds the banner data model shared by every pipeline step:
// the creative direction, the background structure, the element layout and the
// reviewer feedback, plus the refine rules that apply feedback to a layout.
package design

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/invopop/jsonschema"
)

// Canonical element names.
const (
	ElementHeadline    = "headline"
	ElementSubheadline = "subheadline"
	ElementCTA         = "cta_button"
	ElementLogo        = "logo"
)

// ElementOrder is the paint order used by renderers (back to front).
var ElementOrder = []string{ElementLogo, ElementHeadline, ElementSubheadline, ElementCTA}

// elementAliases maps shorthand reviewers commonly use.
var elementAliases = map[string]string{
	"cta":        ElementCTA,
	"button":     ElementCTA,
	"cta-button": ElementCTA,
}

// CanonicalElement maps reviewer shorthand onto the layout's element names.
// Names are trimmed and lower-cased first.
func CanonicalElement(name string) string {
	name = strings.ToLower(strings.TrimSpace(name))
	if alias, ok := elementAliases[name]; ok {
		return alias
	}
	return name
}

// Canvas is the banner size in pixels.
type Canvas struct {
	Width  int `json:"width" yaml:"width"`
	Height int `json:"height" yaml:"height"`
}

// DefaultCanvas matches the most common social banner size.
var DefaultCanvas = Canvas{Width: 1200, Height: 628}

func (c Canvas) Validate() error {
	if c.Width <= 0 || c.Height <= 0 {
		return fmt.Errorf("canvas must be positive, got %dx%d", c.Width, c.Height)
	}
	return nil
}

func (c Canvas) String() string {
	return fmt.Sprintf("%dx%d", c.Width, c.Height)
}

// CreativeDirection is the strategist's output. It is read-only once produced.
type CreativeDirection struct {
	Theme        string            `json:"theme" jsonschema:"description=Core subject of the banner such as Technology or Food"`
	Mood         string            `json:"mood" jsonschema:"description=Feeling the banner should evoke"`
	LogoAnalysis string            `json:"logo_analysis,omitempty"`
	ColorPalette map[string]string `json:"color_palette" jsonschema:"description=Named colors: background primary_text secondary_text accent_1 accent_2. Values are hex or CSS linear-gradient"`
}

// Palette keys the downstream steps look up.
const (
	PaletteBackground    = "background"
	PalettePrimaryText   = "primary_text"
	PaletteSecondaryText = "secondary_text"
	PaletteAccent1       = "accent_1"
	PaletteAccent2       = "accent_2"
)

// Color returns the palette entry for key or fallback when missing.
func (d CreativeDirection) Color(key, fallback string) string {
	if v, ok := d.ColorPalette[key]; ok && v != "" {
		return v
	}
	return fallback
}

// Background layer types.
const (
	BaseSolid    = "solid"
	BaseGradient = "gradient"

	OverlayNone  = "none"
	OverlayDots  = "dots"
	OverlayLines = "lines"
	OverlayGrid  = "grid"
)

// BaseLayer is the bottom fill of the banner.
type BaseLayer struct {
	Type   string   `json:"type" jsonschema:"enum=solid,enum=gradient"`
	Colors []string `json:"colors" jsonschema:"minItems=1,description=Ordered hex colors: one for solid and two or more for gradient"`
	Angle  float64  `json:"angle,omitempty" jsonschema:"description=Gradient angle in degrees"`
}

// OverlayLayer is a low-opacity pattern drawn over the base layer.
type OverlayLayer struct {
	Type    string  `json:"type" jsonschema:"enum=none,enum=dots,enum=lines,enum=grid"`
	Color   string  `json:"color,omitempty"`
	Opacity float64 `json:"opacity" jsonschema:"minimum=0,maximum=1"`
}

// Background is the background designer's output.
type Background struct {
	BaseLayer    BaseLayer    `json:"base_layer"`
	OverlayLayer OverlayLayer `json:"overlay_layer"`
}

var (
	ErrUnknownBaseType    = errors.New("unknown base layer type")
	ErrUnknownOverlayType = errors.New("unknown overlay layer type")
)

// Validate checks the enum values and ranges that the schema cannot express
// across providers that ignore schemas.
func (b Background) Validate() error {
	switch b.BaseLayer.Type {
	case BaseSolid, BaseGradient:
	default:
		return fmt.Errorf("%w: %q", ErrUnknownBaseType, b.BaseLayer.Type)
	}
	if len(b.BaseLayer.Colors) == 0 {
		return errors.New("base layer needs at least one color")
	}
	switch b.OverlayLayer.Type {
	case "", OverlayNone, OverlayDots, OverlayLines, OverlayGrid:
	default:
		return fmt.Errorf("%w: %q", ErrUnknownOverlayType, b.OverlayLayer.Type)
	}
	if b.OverlayLayer.Opacity < 0 || b.OverlayLayer.Opacity > 1 {
		return fmt.Errorf("overlay opacity %v outside 0..1", b.OverlayLayer.Opacity)
	}
	return nil
}

// Point is an absolute position on the canvas.
type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Size is an element's box.
type Size struct {
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

// Element is one visible banner element.
type Element struct {
	Text            TextContent `json:"text,omitzero,omitempty"`
	FontFamily      string      `json:"font_family,omitempty"`
	FontSize        float64     `json:"font_size,omitempty"`
	FontWeight      string      `json:"font_weight,omitempty"`
	Color           string      `json:"color,omitempty"`
	TextAlign       string      `json:"text_align,omitempty" jsonschema:"enum=left,enum=center,enum=right"`
	Position        Point       `json:"position"`
	Dimensions      Size        `json:"dimensions"`
	BackgroundColor string      `json:"background_color,omitempty"`
	BorderRadius    *float64    `json:"border_radius,omitempty"`
}

// Layout maps element names to elements.
type Layout map[string]Element

// Clone returns a deep copy so refinements never alias the previous layout.
func (l Layout) Clone() Layout {
	if l == nil {
		return nil
	}
	out := make(Layout, len(l))
	for name, el := range l {
		out[name] = el.clone()
	}
	return out
}

func (e Element) clone() Element {
	c := e
	if e.Text.Lines != nil {
		c.Text.Lines = make([]string, len(e.Text.Lines))
		copy(c.Text.Lines, e.Text.Lines)
	}
	if e.BorderRadius != nil {
		r := *e.BorderRadius
		c.BorderRadius = &r
	}
	return c
}

// Rect returns the element's bounding box.
func (e Element) Rect() Rect {
	return Rect{X: e.Position.X, Y: e.Position.Y, W: e.Dimensions.Width, H: e.Dimensions.Height}
}

// TextContent is either a single string or an ordered list of lines. The
// original form is kept so a layout survives a JSON round-trip unchanged.
type TextContent struct {
	Lines []string
	Multi bool
}

// SingleText builds a single-string TextContent.
func SingleText(s string) TextContent { return TextContent{Lines: []string{s}} }

// MultiText builds a list-form TextContent.
func MultiText(lines ...string) TextContent {
	out := make([]string, len(lines))
	copy(out, lines)
	return TextContent{Lines: out, Multi: true}
}

func (t TextContent) IsZero() bool { return len(t.Lines) == 0 && !t.Multi }

// String joins the lines with a space.
func (t TextContent) String() string {
	return strings.Join(t.Lines, " ")
}

func (t TextContent) MarshalJSON() ([]byte, error) {
	if t.Multi {
		lines := t.Lines
		if lines == nil {
			lines = []string{}
		}
		return json.Marshal(lines)
	}
	if len(t.Lines) == 0 {
		return json.Marshal("")
	}
	return json.Marshal(t.String())
}

func (t *TextContent) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		*t = TextContent{Lines: []string{s}}
		return nil
	}
	var lines []string
	if err := json.Unmarshal(data, &lines); err != nil {
		return fmt.Errorf("text must be a string or a list of strings: %w", err)
	}
	if lines == nil {
		lines = []string{}
	}
	*t = TextContent{Lines: lines, Multi: true}
	return nil
}

// JSONSchema describes the string-or-list shape for schema reflection.
func (TextContent) JSONSchema() *jsonschema.Schema {
	return &jsonschema.Schema{
		AnyOf: []*jsonschema.Schema{
			{Type: "string"},
			{Type: "array", Items: &jsonschema.Schema{Type: "string"}},
		},
	}
}

// Issue actions understood by Apply.
const (
	ActionResize      = "resize"
	ActionReposition  = "reposition"
	ActionRecolor     = "recolor"
	ActionStyleChange = "stylechange"
	ActionRetext      = "retext"
)

// Issue is one requested correction to one element.
type Issue struct {
	Element    string         `json:"element" jsonschema:"description=One of headline subheadline cta_button logo"`
	Action     string         `json:"action" jsonschema:"enum=resize,enum=reposition,enum=recolor,enum=stylechange,enum=retext"`
	Parameters map[string]any `json:"parameters"`
}

// Feedback is the reviewer's verdict for one iteration.
type Feedback struct {
	Approved    bool     `json:"approved"`
	Issues      []Issue  `json:"issues,omitempty"`
	Suggestions []string `json:"suggestions,omitempty"`
}
