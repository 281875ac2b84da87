package generator

import (
	"encoding/json"
	"fmt"
	"strings"

	"banner_agent/design"
)

const strategistSystem = `You are a senior brand strategist. Read the banner request and define its creative direction.

Work through these steps:
1. Theme: the subject of the banner, for example Technology, Wildlife, Finance, Healthcare, Food or Fashion.
2. Mood: the feeling it should evoke, for example Professional, Playful, Urgent, Calm, Luxurious or Minimalist.
3. Logo: if a logo image is attached, say so in logo_analysis and let its colors inspire the palette.
4. Palette with these keys:
   - background: a hex color or a CSS linear-gradient such as "linear-gradient(135deg, #0B2545 0%, #1C4D8A 100%)"
   - primary_text: high contrast against the background, used for the headline
   - secondary_text: a softer variant for the subheadline
   - accent_1: an eye-catching color for the call-to-action that still fits the mood
   - accent_2: an optional second accent for small details`

const backgroundSystem = `You are an art director who designs banner backgrounds. Foreground elements (logo, texts, button)
are placed later by someone else, so describe only the background.

Choose:
- base_layer.type "solid" with one color, or "gradient" with two or more colors and an angle in degrees.
- overlay_layer.type "none", "dots", "lines" or "grid", with a color and an opacity between 0 and 0.3 so texts stay readable.

Respect the palette from the creative direction. If a logo is attached, avoid backgrounds that would hide it:
no light background behind a white logo, no dark background behind a black one.`

const foregroundSystem = `You are a typography and layout director for banner ads. Place the foreground elements on the canvas
following one established layout pattern: left or right content column, Z or F reading pattern, centered,
rule of thirds, golden ratio, diagonal, top-down hierarchy, pyramid or grid.

Elements (use exactly these keys): headline, subheadline, cta_button, logo.
For each element give position {x, y} of its top-left corner and dimensions {width, height} in pixels.
Text elements also need text, font_family, font_size, color and text_align. text may be a list of lines.
cta_button also needs background_color and border_radius. logo has no text.

Typography:
- small banners (300x250, 160x600): headline 24-32px, subheadline 18-24px, button 14-16px
- medium banners (728x90, 468x60): headline 20-28px, subheadline 16-20px, button 14px
- large banners (1200x628, 970x250): headline 40-64px, subheadline 24-32px, button 18-22px

Rules:
- every element stays inside the canvas with at least a 20px margin
- elements never overlap
- headline, subheadline and button colors come from the palette and contrast with the background
- keep the logo small and in a corner unless the pattern needs it elsewhere`

const reviewerSystem = `You are an experienced advertising professional reviewing a %dx%d banner under development.
Judge the foreground elements (texts, button, logo) against the background and against what makes a good banner ad.

Set approved to true only when nothing is left to fix. Otherwise list issues. Each issue names one element
(headline, subheadline, cta_button or logo), one action and its parameters:
- resize: width, height, font_size
- reposition: x, y
- recolor: color, background_color
- stylechange: font_family, border_radius, font_weight, text_align
- retext: text
Put short explanations in suggestions.`

// BuildStrategistPrompt 生成创意方向提示词。
func BuildStrategistPrompt(brief Brief, schema *OutputSchema) Prompt {
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("Banner request: %s\n", brief.Request))
	sb.WriteString(fmt.Sprintf("Canvas: %s\n", brief.Canvas))
	if brief.Logo != nil {
		sb.WriteString("A logo is attached.\n")
	} else {
		sb.WriteString("No logo provided.\n")
	}
	sb.WriteString("Produce the creative direction.")

	return Prompt{
		System:      strategistSystem,
		User:        sb.String(),
		Attachments: logoAttachment(brief.Logo),
		Schema:      schema,
		Canvas:      brief.Canvas,
	}
}

// BuildBackgroundPrompt 生成背景设计提示词。
func BuildBackgroundPrompt(brief Brief, dir design.CreativeDirection, schema *OutputSchema) Prompt {
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("Banner request: %s\n", brief.Request))
	sb.WriteString(fmt.Sprintf("Canvas: %s\n", brief.Canvas))
	sb.WriteString("Creative direction:\n")
	sb.WriteString(indentJSON(dir))
	sb.WriteString("\nDesign the background.")

	return Prompt{
		System:      backgroundSystem,
		User:        sb.String(),
		Attachments: logoAttachment(brief.Logo),
		Schema:      schema,
		Canvas:      brief.Canvas,
	}
}

// BuildForegroundPrompt 生成前景布局提示词。
func BuildForegroundPrompt(brief Brief, dir design.CreativeDirection, bg design.Background, schema *OutputSchema) Prompt {
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("Banner request: %s\n", brief.Request))
	sb.WriteString(fmt.Sprintf("Canvas: %d pixels wide, %d pixels high.\n", brief.Canvas.Width, brief.Canvas.Height))
	sb.WriteString("Creative direction:\n")
	sb.WriteString(indentJSON(dir))
	sb.WriteString("\nBackground:\n")
	sb.WriteString(indentJSON(bg))
	if brief.Logo == nil {
		sb.WriteString("\nNo logo was provided; still reserve a logo box.")
	}
	sb.WriteString("\nWrite the headline, subheadline and button texts yourself and lay out all four elements.")

	return Prompt{
		System:      foregroundSystem,
		User:        sb.String(),
		Attachments: logoAttachment(brief.Logo),
		Schema:      schema,
		Canvas:      brief.Canvas,
	}
}

// BuildReviewPrompt 生成评审提示词；有预览图时附上，否则只给布局 JSON。
func BuildReviewPrompt(in ReviewInput, schema *OutputSchema) Prompt {
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("Review iteration %d.\n", in.Iteration))
	sb.WriteString("Current layout:\n")
	sb.WriteString(indentJSON(in.Layout))
	if len(in.Violations) > 0 {
		sb.WriteString("\nAutomatic geometry check found:\n")
		for _, v := range in.Violations {
			sb.WriteString("- ")
			sb.WriteString(v.String())
			sb.WriteString("\n")
		}
	}
	if in.Preview == nil {
		sb.WriteString("\nNo rendered preview is available; judge from the layout values.")
	}

	var atts []Attachment
	if in.Preview != nil {
		atts = append(atts, Attachment{Label: "Rendered banner preview:", Image: *in.Preview})
	}
	if in.Logo != nil {
		atts = append(atts, Attachment{Label: "Brand logo:", Image: *in.Logo})
	}

	return Prompt{
		System:      fmt.Sprintf(reviewerSystem, in.Canvas.Width, in.Canvas.Height),
		User:        sb.String(),
		Attachments: atts,
		Schema:      schema,
		Canvas:      in.Canvas,
	}
}

func logoAttachment(logo *Image) []Attachment {
	if logo == nil {
		return nil
	}
	return []Attachment{{Label: "Brand logo:", Image: *logo}}
}

func indentJSON(v any) string {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Sprintf("%+v", v)
	}
	return string(data)
}
