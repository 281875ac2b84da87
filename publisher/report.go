package publisher

import (
	"bytes"
	"fmt"
	"html"
	"sort"
	"strings"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"

	"banner_agent/generator"
)

var md = goldmark.New(goldmark.WithExtensions(extension.Table))

// Markdown summarises a run: direction, palette, layout and every review iteration.
func Markdown(res generator.Result) string {
	var sb strings.Builder

	sb.WriteString(fmt.Sprintf("# Banner %s\n\n", shortID(res.RunID)))
	sb.WriteString(fmt.Sprintf("> %s\n\n", oneLine(res.Request)))

	sb.WriteString("| Field | Value |\n|---|---|\n")
	sb.WriteString(fmt.Sprintf("| Run | `%s` |\n", res.RunID))
	sb.WriteString(fmt.Sprintf("| Created | %s |\n", res.CreatedAt.Format("2006-01-02 15:04:05 MST")))
	sb.WriteString(fmt.Sprintf("| Canvas | %s |\n", res.Canvas))
	sb.WriteString(fmt.Sprintf("| Approved | %t |\n", res.Approved))
	sb.WriteString(fmt.Sprintf("| Stop reason | %s |\n", cell(res.StopReason)))
	sb.WriteString(fmt.Sprintf("| Iterations | %d |\n\n", len(res.Iterations)))

	sb.WriteString("## Creative direction\n\n")
	sb.WriteString(fmt.Sprintf("- **Theme:** %s\n", oneLine(res.Direction.Theme)))
	sb.WriteString(fmt.Sprintf("- **Mood:** %s\n", oneLine(res.Direction.Mood)))
	if res.Direction.LogoAnalysis != "" {
		sb.WriteString(fmt.Sprintf("- **Logo:** %s\n", oneLine(res.Direction.LogoAnalysis)))
	}
	if len(res.Direction.ColorPalette) > 0 {
		keys := make([]string, 0, len(res.Direction.ColorPalette))
		for k := range res.Direction.ColorPalette {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		sb.WriteString("\n| Palette | Color |\n|---|---|\n")
		for _, k := range keys {
			sb.WriteString(fmt.Sprintf("| %s | `%s` |\n", cell(k), cell(res.Direction.ColorPalette[k])))
		}
	}
	sb.WriteString("\n")

	bg := res.Background
	sb.WriteString("## Background\n\n")
	sb.WriteString(fmt.Sprintf("- Base: %s %s\n", bg.BaseLayer.Type, strings.Join(bg.BaseLayer.Colors, " → ")))
	sb.WriteString(fmt.Sprintf("- Overlay: %s (opacity %.2f)\n\n", cell(bg.OverlayLayer.Type), bg.OverlayLayer.Opacity))

	sb.WriteString("## Layout\n\n")
	sb.WriteString("| Element | Text | Position | Size | Font |\n|---|---|---|---|---|\n")
	for _, el := range orderedElements(res.Layout) {
		font := "-"
		if el.FontSize > 0 {
			font = fmt.Sprintf("%s %gpx", el.FontFamily, el.FontSize)
		}
		sb.WriteString(fmt.Sprintf("| %s | %s | %g,%g | %gx%g | %s |\n",
			el.name, cell(el.Text.String()), el.Position.X, el.Position.Y,
			el.Dimensions.Width, el.Dimensions.Height, cell(strings.TrimSpace(font))))
	}
	sb.WriteString("\n")

	if len(res.Iterations) > 0 {
		sb.WriteString("## Review\n\n")
		for _, t := range res.Iterations {
			sb.WriteString(fmt.Sprintf("### Iteration %d\n\n", t.Iteration))
			switch {
			case t.Error != "":
				sb.WriteString(fmt.Sprintf("Review failed: %s\n\n", oneLine(t.Error)))
				continue
			case t.Feedback.Approved:
				sb.WriteString("Approved.\n\n")
			}
			for i, o := range t.Outcomes {
				status := "applied"
				if !o.Applied {
					status = "skipped: " + o.Reason
				}
				sb.WriteString(fmt.Sprintf("%d. `%s` %s (%s)\n", i+1, o.Issue.Action, o.Issue.Element, status))
			}
			for _, s := range t.Feedback.Suggestions {
				sb.WriteString(fmt.Sprintf("- %s\n", oneLine(s)))
			}
			for _, v := range t.Violations {
				sb.WriteString(fmt.Sprintf("- check: %s\n", v.String()))
			}
			sb.WriteString("\n")
		}
	}

	if len(res.Warnings) > 0 {
		sb.WriteString("## Warnings\n\n")
		for _, w := range res.Warnings {
			sb.WriteString(fmt.Sprintf("- %s\n", oneLine(w)))
		}
		sb.WriteString("\n")
	}
	return sb.String()
}

// HTMLReport converts Markdown to HTML and prepends an inline SVG preview.
func HTMLReport(res generator.Result) (string, error) {
	var body bytes.Buffer
	if err := md.Convert([]byte(Markdown(res)), &body); err != nil {
		return "", err
	}

	var sb strings.Builder
	sb.WriteString("<!DOCTYPE html>\n<html>\n<head>\n<meta charset=\"utf-8\">\n")
	sb.WriteString(fmt.Sprintf("<title>Banner %s</title>\n", html.EscapeString(shortID(res.RunID))))
	sb.WriteString("<style>body{font-family:system-ui,sans-serif;max-width:1280px;margin:2em auto;padding:0 1em}" +
		"table{border-collapse:collapse}td,th{border:1px solid #ddd;padding:4px 8px}" +
		".preview svg{max-width:100%;height:auto;box-shadow:0 2px 8px rgba(0,0,0,.2)}</style>\n")
	sb.WriteString("</head>\n<body>\n<div class=\"preview\">\n")
	sb.WriteString(SVG(res))
	sb.WriteString("</div>\n")
	sb.Write(body.Bytes())
	sb.WriteString("</body>\n</html>\n")
	return sb.String(), nil
}

func oneLine(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

func cell(s string) string {
	s = oneLine(s)
	if s == "" {
		return "-"
	}
	return strings.ReplaceAll(s, "|", `\|`)
}
