package design

import (
	"fmt"
	"sort"
	"strings"
)

// IssueOutcome records what Apply did with one issue.
type IssueOutcome struct {
	Issue   Issue    `json:"issue"`
	Applied bool     `json:"applied"`
	Changed []string `json:"changed,omitempty"`
	Reason  string   `json:"reason,omitempty"`
}

// Skip reasons.
const (
	ReasonUnknownElement = "unknown element"
	ReasonUnknownAction  = "unknown action"
	ReasonNoParameters   = "no usable parameters"
)

// Apply applies each issue to a copy of layout and returns the copy with a
// per-issue outcome. Issues naming elements that are not in the layout, or
// actions outside the vocabulary, are skipped; they are never errors.
func Apply(layout Layout, issues []Issue) (Layout, []IssueOutcome) {
	out := layout.Clone()
	if out == nil {
		out = Layout{}
	}
	outcomes := make([]IssueOutcome, 0, len(issues))
	for _, issue := range issues {
		outcomes = append(outcomes, applyIssue(out, issue))
	}
	return out, outcomes
}

func applyIssue(layout Layout, issue Issue) IssueOutcome {
	res := IssueOutcome{Issue: issue}
	name := CanonicalElement(issue.Element)
	el, ok := layout[name]
	if !ok {
		res.Reason = ReasonUnknownElement
		return res
	}

	var changed []string
	switch strings.ToLower(strings.TrimSpace(issue.Action)) {
	case ActionResize:
		changed = resize(&el, issue.Parameters)
	case ActionReposition:
		changed = reposition(&el, issue.Parameters)
	case ActionRecolor:
		changed = recolor(&el, issue.Parameters)
	case ActionStyleChange:
		changed = restyle(&el, issue.Parameters)
	case ActionRetext:
		changed = retext(&el, issue.Parameters)
	default:
		res.Reason = ReasonUnknownAction
		return res
	}
	if len(changed) == 0 {
		res.Reason = ReasonNoParameters
		return res
	}
	layout[name] = el
	sort.Strings(changed)
	res.Applied = true
	res.Changed = changed
	return res
}

func resize(el *Element, params map[string]any) []string {
	var changed []string
	if v, ok := numberParam(params, "width"); ok && v > 0 {
		el.Dimensions.Width = v
		changed = append(changed, "width")
	}
	if v, ok := numberParam(params, "height"); ok && v > 0 {
		el.Dimensions.Height = v
		changed = append(changed, "height")
	}
	if v, ok := numberParam(params, "font_size"); ok && v > 0 {
		el.FontSize = v
		changed = append(changed, "font_size")
	}
	return changed
}

func reposition(el *Element, params map[string]any) []string {
	var changed []string
	if v, ok := numberParam(params, "x"); ok {
		el.Position.X = v
		changed = append(changed, "x")
	}
	if v, ok := numberParam(params, "y"); ok {
		el.Position.Y = v
		changed = append(changed, "y")
	}
	return changed
}

func recolor(el *Element, params map[string]any) []string {
	var changed []string
	if v, ok := stringParam(params, "color"); ok {
		el.Color = v
		changed = append(changed, "color")
	}
	if v, ok := stringParam(params, "background_color"); ok {
		el.BackgroundColor = v
		changed = append(changed, "background_color")
	}
	return changed
}

func restyle(el *Element, params map[string]any) []string {
	var changed []string
	if v, ok := stringParam(params, "font_family"); ok {
		el.FontFamily = v
		changed = append(changed, "font_family")
	}
	if v, ok := numberParam(params, "border_radius"); ok && v >= 0 {
		el.BorderRadius = &v
		changed = append(changed, "border_radius")
	}
	if v, ok := stringParam(params, "font_weight"); ok {
		el.FontWeight = v
		changed = append(changed, "font_weight")
	} else if n, ok := numberParam(params, "font_weight"); ok {
		el.FontWeight = fmt.Sprintf("%g", n)
		changed = append(changed, "font_weight")
	}
	if v, ok := stringParam(params, "text_align"); ok {
		el.TextAlign = v
		changed = append(changed, "text_align")
	}
	return changed
}

func retext(el *Element, params map[string]any) []string {
	raw, ok := params["text"]
	if !ok {
		return nil
	}
	switch v := raw.(type) {
	case string:
		el.Text = SingleText(v)
	case []string:
		el.Text = MultiText(v...)
	case []any:
		lines := make([]string, 0, len(v))
		for _, item := range v {
			s, ok := item.(string)
			if !ok {
				return nil
			}
			lines = append(lines, s)
		}
		el.Text = MultiText(lines...)
	default:
		return nil
	}
	return []string{"text"}
}
