package generator

import (
	"math"
	"strings"

	"banner_agent/design"
	"banner_agent/render"
)

// DefaultCreativeDirection is used when the strategist step fails.
func DefaultCreativeDirection() design.CreativeDirection {
	return design.CreativeDirection{
		Theme: "General",
		Mood:  "Professional, modern",
		ColorPalette: map[string]string{
			design.PaletteBackground:    "linear-gradient(135deg, #0A192F 0%, #172A45 100%)",
			design.PalettePrimaryText:   "#FFFFFF",
			design.PaletteSecondaryText: "#8892B0",
			design.PaletteAccent1:       "#64FFDA",
			design.PaletteAccent2:       "#FFC700",
		},
	}
}

// DefaultBackground derives a background from the palette's background entry.
func DefaultBackground(dir design.CreativeDirection) design.Background {
	raw := dir.Color(design.PaletteBackground, "#0A192F")
	base := design.BaseLayer{Type: design.BaseSolid, Colors: []string{render.Color(raw, "#0A192F")}}
	if strings.HasPrefix(strings.TrimSpace(raw), "linear-gradient") {
		if stops := render.GradientStops(raw); len(stops) >= 2 {
			base = design.BaseLayer{Type: design.BaseGradient, Colors: stops, Angle: 135}
		}
	}
	return design.Background{
		BaseLayer:    base,
		OverlayLayer: design.OverlayLayer{Type: design.OverlayNone},
	}
}

// DefaultLayout places the four elements by canvas proportions, inside the canvas and without overlap.
func DefaultLayout(canvas design.Canvas, dir design.CreativeDirection) design.Layout {
	w, h := float64(canvas.Width), float64(canvas.Height)
	radius := 8.0
	primary := render.Color(dir.Color(design.PalettePrimaryText, "#FFFFFF"), "#FFFFFF")
	secondary := render.Color(dir.Color(design.PaletteSecondaryText, primary), primary)
	accent := render.Color(dir.Color(design.PaletteAccent1, "#64FFDA"), "#64FFDA")
	bg := render.Color(dir.Color(design.PaletteBackground, "#0A192F"), "#0A192F")

	return design.Layout{
		design.ElementHeadline: {
			Text:       design.SingleText("Your headline here"),
			FontFamily: "Inter",
			FontSize:   clamp(round(h*0.09), 16, 72),
			FontWeight: "bold",
			Color:      primary,
			TextAlign:  "left",
			Position:   design.Point{X: round(w * 0.06), Y: round(h * 0.22)},
			Dimensions: design.Size{Width: round(w * 0.6), Height: round(h * 0.14)},
		},
		design.ElementSubheadline: {
			Text:       design.SingleText("A short supporting line"),
			FontFamily: "Inter",
			FontSize:   clamp(round(h*0.05), 12, 36),
			Color:      secondary,
			TextAlign:  "left",
			Position:   design.Point{X: round(w * 0.06), Y: round(h * 0.42)},
			Dimensions: design.Size{Width: round(w * 0.6), Height: round(h * 0.12)},
		},
		design.ElementCTA: {
			Text:            design.SingleText("Learn More"),
			FontFamily:      "Inter",
			FontSize:        clamp(round(h*0.035), 12, 28),
			FontWeight:      "bold",
			Color:           bg,
			TextAlign:       "center",
			BackgroundColor: accent,
			BorderRadius:    &radius,
			Position:        design.Point{X: round(w * 0.06), Y: round(h * 0.66)},
			Dimensions:      design.Size{Width: round(w * 0.2), Height: round(h * 0.1)},
		},
		design.ElementLogo: {
			Position:   design.Point{X: round(w * 0.82), Y: round(h * 0.05)},
			Dimensions: design.Size{Width: round(w * 0.14), Height: round(h * 0.1)},
		},
	}
}

func round(v float64) float64 { return math.Round(v) }

func clamp(v, lo, hi float64) float64 {
	return math.Max(lo, math.Min(hi, v))
}
