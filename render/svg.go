// Package render turns a banner design into SVG markup and raster previews.
package render

import (
	"fmt"
	"html"
	"math"
	"regexp"
	"sort"
	"strings"

	"banner_agent/design"
)

// Assets are binary inputs referenced by the SVG.
type Assets struct {
	// LogoDataURI is embedded as the logo image when set; otherwise a
	// placeholder box is drawn.
	LogoDataURI string
}

const defaultGradientAngle = 135

var hexColorRe = regexp.MustCompile(`#(?:[0-9a-fA-F]{8}|[0-9a-fA-F]{6}|[0-9a-fA-F]{3})\b`)

// SVG renders the full banner: base layer, overlay pattern, then elements in
// design.ElementOrder followed by any extra elements sorted by name.
func SVG(canvas design.Canvas, bg design.Background, layout design.Layout, assets Assets) string {
	var b strings.Builder
	fmt.Fprintf(&b, `<svg xmlns="http://www.w3.org/2000/svg" xmlns:xlink="http://www.w3.org/1999/xlink" width="%d" height="%d" viewBox="0 0 %d %d">`,
		canvas.Width, canvas.Height, canvas.Width, canvas.Height)
	b.WriteString("\n<defs>\n")
	writeBaseDefs(&b, bg.BaseLayer)
	writeOverlayDefs(&b, bg.OverlayLayer)
	b.WriteString("</defs>\n")

	fmt.Fprintf(&b, `<rect x="0" y="0" width="%d" height="%d" fill="%s"/>`+"\n",
		canvas.Width, canvas.Height, baseFill(bg.BaseLayer))
	if hasOverlay(bg.OverlayLayer) {
		fmt.Fprintf(&b, `<rect x="0" y="0" width="%d" height="%d" fill="url(#overlay)" opacity="%s"/>`+"\n",
			canvas.Width, canvas.Height, num(bg.OverlayLayer.Opacity))
	}

	for _, name := range paintOrder(layout) {
		el := layout[name]
		switch name {
		case design.ElementLogo:
			writeLogo(&b, el, assets)
		case design.ElementCTA:
			writeButton(&b, name, el)
		default:
			writeText(&b, name, el)
		}
	}
	b.WriteString("</svg>\n")
	return b.String()
}

func paintOrder(layout design.Layout) []string {
	seen := make(map[string]bool, len(layout))
	var order []string
	for _, name := range design.ElementOrder {
		if _, ok := layout[name]; ok {
			order = append(order, name)
			seen[name] = true
		}
	}
	var extra []string
	for name := range layout {
		if !seen[name] {
			extra = append(extra, name)
		}
	}
	sort.Strings(extra)
	return append(order, extra...)
}

func writeBaseDefs(b *strings.Builder, base design.BaseLayer) {
	if base.Type != design.BaseGradient || len(base.Colors) < 2 {
		return
	}
	angle := base.Angle
	if angle == 0 {
		angle = defaultGradientAngle
	}
	// CSS angles: 0deg points up, 90deg points right.
	rad := angle * math.Pi / 180
	dx, dy := math.Sin(rad), -math.Cos(rad)
	fmt.Fprintf(b, `<linearGradient id="base" x1="%s" y1="%s" x2="%s" y2="%s">`+"\n",
		num(0.5-dx/2), num(0.5-dy/2), num(0.5+dx/2), num(0.5+dy/2))
	last := len(base.Colors) - 1
	for i, c := range base.Colors {
		offset := float64(i) / float64(last)
		fmt.Fprintf(b, `<stop offset="%s" stop-color="%s"/>`+"\n", num(offset), esc(Color(c, "#000000")))
	}
	b.WriteString("</linearGradient>\n")
}

func baseFill(base design.BaseLayer) string {
	if base.Type == design.BaseGradient && len(base.Colors) >= 2 {
		return "url(#base)"
	}
	if len(base.Colors) == 0 {
		return "#FFFFFF"
	}
	return esc(Color(base.Colors[0], "#FFFFFF"))
}

func hasOverlay(o design.OverlayLayer) bool {
	switch o.Type {
	case design.OverlayDots, design.OverlayLines, design.OverlayGrid:
		return o.Opacity > 0
	}
	return false
}

func writeOverlayDefs(b *strings.Builder, o design.OverlayLayer) {
	if !hasOverlay(o) {
		return
	}
	c := esc(Color(o.Color, "#FFFFFF"))
	b.WriteString(`<pattern id="overlay" width="24" height="24" patternUnits="userSpaceOnUse">`)
	switch o.Type {
	case design.OverlayDots:
		fmt.Fprintf(b, `<circle cx="4" cy="4" r="2" fill="%s"/>`, c)
	case design.OverlayLines:
		fmt.Fprintf(b, `<path d="M0 24 L24 0" stroke="%s" stroke-width="1.5"/>`, c)
	case design.OverlayGrid:
		fmt.Fprintf(b, `<path d="M24 0 L0 0 0 24" fill="none" stroke="%s" stroke-width="1"/>`, c)
	}
	b.WriteString("</pattern>\n")
}

func writeText(b *strings.Builder, name string, el design.Element) {
	if len(el.Text.Lines) == 0 {
		return
	}
	size := el.FontSize
	if size <= 0 {
		size = 16
	}
	anchor, x := anchorFor(el)
	fmt.Fprintf(b, `<text id="%s" x="%s" y="%s" font-family="%s" font-size="%s"%s fill="%s" text-anchor="%s">`,
		esc(name), num(x), num(el.Position.Y+size), esc(fontFamily(el.FontFamily)), num(size),
		weightAttr(el.FontWeight), esc(Color(el.Color, "#000000")), anchor)
	for i, line := range el.Text.Lines {
		if i == 0 {
			fmt.Fprintf(b, `<tspan x="%s">%s</tspan>`, num(x), esc(line))
			continue
		}
		fmt.Fprintf(b, `<tspan x="%s" dy="1.2em">%s</tspan>`, num(x), esc(line))
	}
	b.WriteString("</text>\n")
}

func writeButton(b *strings.Builder, name string, el design.Element) {
	r := 0.0
	if el.BorderRadius != nil {
		r = *el.BorderRadius
	}
	fmt.Fprintf(b, `<g id="%s">`, esc(name))
	fmt.Fprintf(b, `<rect x="%s" y="%s" width="%s" height="%s" rx="%s" fill="%s"/>`,
		num(el.Position.X), num(el.Position.Y), num(el.Dimensions.Width), num(el.Dimensions.Height),
		num(r), esc(Color(el.BackgroundColor, "#007BFF")))
	size := el.FontSize
	if size <= 0 {
		size = 18
	}
	fmt.Fprintf(b, `<text x="%s" y="%s" font-family="%s" font-size="%s"%s fill="%s" text-anchor="middle" dominant-baseline="central">%s</text>`,
		num(el.Position.X+el.Dimensions.Width/2), num(el.Position.Y+el.Dimensions.Height/2),
		esc(fontFamily(el.FontFamily)), num(size), weightAttr(el.FontWeight),
		esc(Color(el.Color, "#FFFFFF")), esc(el.Text.String()))
	b.WriteString("</g>\n")
}

func writeLogo(b *strings.Builder, el design.Element, assets Assets) {
	if assets.LogoDataURI != "" {
		fmt.Fprintf(b, `<image id="logo" x="%s" y="%s" width="%s" height="%s" preserveAspectRatio="xMidYMid meet" href="%s" xlink:href="%s"/>`+"\n",
			num(el.Position.X), num(el.Position.Y), num(el.Dimensions.Width), num(el.Dimensions.Height),
			esc(assets.LogoDataURI), esc(assets.LogoDataURI))
		return
	}
	fmt.Fprintf(b, `<rect id="logo" x="%s" y="%s" width="%s" height="%s" fill="none" stroke="#999999" stroke-dasharray="4 4"/>`+"\n",
		num(el.Position.X), num(el.Position.Y), num(el.Dimensions.Width), num(el.Dimensions.Height))
}

func anchorFor(el design.Element) (string, float64) {
	switch strings.ToLower(el.TextAlign) {
	case "center":
		return "middle", el.Position.X + el.Dimensions.Width/2
	case "right":
		return "end", el.Position.X + el.Dimensions.Width
	}
	return "start", el.Position.X
}

func weightAttr(w string) string {
	if w == "" {
		return ""
	}
	return fmt.Sprintf(` font-weight="%s"`, esc(w))
}

func fontFamily(f string) string {
	if f == "" {
		return "Arial, sans-serif"
	}
	return f
}

// Color returns c when it is a plain color. CSS gradients are reduced to their
// first hex stop, since fills on text and shapes take a single color here.
func Color(c, fallback string) string {
	c = strings.TrimSpace(c)
	if c == "" {
		return fallback
	}
	if strings.HasPrefix(strings.ToLower(c), "linear-gradient") {
		if m := hexColorRe.FindString(c); m != "" {
			return m
		}
		return fallback
	}
	return c
}

// GradientStops extracts the hex stops of a CSS linear-gradient string.
func GradientStops(c string) []string {
	return hexColorRe.FindAllString(c, -1)
}

func num(f float64) string {
	return fmt.Sprintf("%g", math.Round(f*100)/100)
}

func esc(s string) string {
	return html.EscapeString(s)
}
