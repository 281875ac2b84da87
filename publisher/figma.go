package publisher

import (
	"bytes"
	"embed"
	"encoding/json"
	"fmt"
	htmltemplate "html/template"
	"strconv"
	"strings"
	texttemplate "text/template"

	"banner_agent/design"
	"banner_agent/generator"
	"banner_agent/render"
)

//go:embed figma/*.tmpl
var figmaFS embed.FS

var (
	codeTmpl = texttemplate.Must(texttemplate.ParseFS(figmaFS, "figma/code.js.tmpl"))
	uiTmpl   = htmltemplate.Must(htmltemplate.ParseFS(figmaFS, "figma/ui.html.tmpl"))
)

// figmaColor uses Figma's 0..1 channels.
type figmaColor struct {
	R float64 `json:"r"`
	G float64 `json:"g"`
	B float64 `json:"b"`
	A float64 `json:"a"`
}

type figmaBackground struct {
	Type   string       `json:"type"`
	Colors []figmaColor `json:"colors"`
	Angle  float64      `json:"angle"`
}

type figmaNode struct {
	Name       string      `json:"name"`
	Kind       string      `json:"kind"`
	Lines      []string    `json:"lines,omitempty"`
	X          float64     `json:"x"`
	Y          float64     `json:"y"`
	Width      float64     `json:"width"`
	Height     float64     `json:"height"`
	FontFamily string      `json:"font_family,omitempty"`
	FontStyle  string      `json:"font_style,omitempty"`
	FontSize   float64     `json:"font_size,omitempty"`
	Align      string      `json:"align,omitempty"`
	Color      *figmaColor `json:"color,omitempty"`
	Fill       *figmaColor `json:"fill,omitempty"`
	Radius     float64     `json:"radius,omitempty"`
}

type figmaDoc struct {
	Name       string          `json:"name"`
	Width      int             `json:"width"`
	Height     int             `json:"height"`
	Background figmaBackground `json:"background"`
	Nodes      []figmaNode     `json:"nodes"`
}

type figmaManifest struct {
	Name       string   `json:"name"`
	ID         string   `json:"id"`
	API        string   `json:"api"`
	Main       string   `json:"main"`
	UI         string   `json:"ui"`
	EditorType []string `json:"editorType"`
}

// figmaBundle renders manifest.json, code.js and ui.html.
func figmaBundle(res generator.Result) (map[string][]byte, error) {
	name := "Banner " + shortID(res.RunID)

	manifest, err := json.MarshalIndent(figmaManifest{
		Name:       name,
		ID:         "banner-" + res.RunID,
		API:        "1.0.0",
		Main:       "code.js",
		UI:         "ui.html",
		EditorType: []string{"figma"},
	}, "", "  ")
	if err != nil {
		return nil, err
	}

	doc, err := json.MarshalIndent(buildFigmaDoc(name, res), "", "  ")
	if err != nil {
		return nil, err
	}
	var code bytes.Buffer
	if err := codeTmpl.Execute(&code, string(doc)); err != nil {
		return nil, fmt.Errorf("render code.js: %w", err)
	}

	var ui bytes.Buffer
	if err := uiTmpl.Execute(&ui, struct{ Name, Logo string }{name, res.Logo}); err != nil {
		return nil, fmt.Errorf("render ui.html: %w", err)
	}

	return map[string][]byte{
		"manifest.json": append(manifest, '\n'),
		"code.js":       code.Bytes(),
		"ui.html":       ui.Bytes(),
	}, nil
}

func buildFigmaDoc(name string, res generator.Result) figmaDoc {
	base := res.Background.BaseLayer
	bg := figmaBackground{Type: base.Type, Angle: base.Angle}
	if bg.Angle == 0 {
		bg.Angle = 135
	}
	for _, c := range base.Colors {
		bg.Colors = append(bg.Colors, parseColor(c, figmaColor{A: 1}))
	}
	if len(bg.Colors) == 0 {
		bg.Colors = []figmaColor{{R: 1, G: 1, B: 1, A: 1}}
	}

	doc := figmaDoc{Name: name, Width: res.Canvas.Width, Height: res.Canvas.Height, Background: bg}
	for _, el := range orderedElements(res.Layout) {
		doc.Nodes = append(doc.Nodes, buildFigmaNode(el.name, el.Element))
	}
	return doc
}

func buildFigmaNode(name string, el design.Element) figmaNode {
	n := figmaNode{
		Name:   name,
		Kind:   "text",
		X:      el.Position.X,
		Y:      el.Position.Y,
		Width:  el.Dimensions.Width,
		Height: el.Dimensions.Height,
	}
	switch name {
	case design.ElementLogo:
		n.Kind = "logo"
		return n
	case design.ElementCTA:
		n.Kind = "button"
		fill := parseColor(render.Color(el.BackgroundColor, "#333333"), figmaColor{R: 0.2, G: 0.2, B: 0.2, A: 1})
		n.Fill = &fill
		if el.BorderRadius != nil {
			n.Radius = *el.BorderRadius
		}
	}

	n.Lines = el.Text.Lines
	if len(n.Lines) == 0 {
		n.Lines = []string{""}
	}
	n.FontFamily = el.FontFamily
	if n.FontFamily == "" {
		n.FontFamily = "Inter"
	}
	n.FontStyle = fontStyle(el.FontWeight)
	n.FontSize = el.FontSize
	if n.FontSize <= 0 {
		n.FontSize = 16
	}
	c := parseColor(render.Color(el.Color, "#000000"), figmaColor{A: 1})
	n.Color = &c
	n.Align = strings.ToUpper(el.TextAlign)
	switch n.Align {
	case "LEFT", "RIGHT":
	case "CENTER":
	default:
		n.Align = "LEFT"
		if n.Kind == "button" {
			n.Align = "CENTER"
		}
	}
	return n
}

func fontStyle(weight string) string {
	w := strings.ToLower(strings.TrimSpace(weight))
	if w == "bold" || w == "bolder" {
		return "Bold"
	}
	if v, err := strconv.Atoi(w); err == nil && v >= 600 {
		return "Bold"
	}
	return "Regular"
}

// parseColor converts #RGB, #RRGGBB or #RRGGBBAA to Figma channels.
func parseColor(hex string, fallback figmaColor) figmaColor {
	h := strings.TrimPrefix(strings.TrimSpace(hex), "#")
	if len(h) == 3 {
		h = string([]byte{h[0], h[0], h[1], h[1], h[2], h[2]})
	}
	if len(h) != 6 && len(h) != 8 {
		return fallback
	}
	v, err := strconv.ParseUint(h, 16, 32)
	if err != nil {
		return fallback
	}
	a := uint64(255)
	if len(h) == 8 {
		a = v & 0xff
		v >>= 8
	}
	return figmaColor{
		R: channel(v >> 16 & 0xff),
		G: channel(v >> 8 & 0xff),
		B: channel(v & 0xff),
		A: channel(a),
	}
}

func channel(v uint64) float64 {
	return float64(int(float64(v)/255*1000+0.5)) / 1000
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}
