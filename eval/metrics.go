// Package eval scores rendered banners against fixed rubrics with an LLM judge.
package eval

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

// ErrUnknownMetric is returned for rubric codes outside Metrics.
var ErrUnknownMetric = errors.New("unknown metric")

// Metric is one scoring rubric. Levels[0] describes score 1, Levels[4] score 5.
type Metric struct {
	Code       string
	Name       string
	Definition string
	Levels     [5]string
	Questions  []string
}

// Metrics maps rubric codes to rubrics.
var Metrics = map[string]Metric{
	"TAA": {
		Code:       "TAA",
		Name:       "Theme and audience alignment",
		Definition: "How well the banner matches the request: its theme, its target audience and its primary purpose.",
		Levels: [5]string{
			"Does not match the request at all.",
			"Barely matches; major elements are missing or wrong.",
			"Partly matches; key elements are missing or unclear.",
			"Mostly matches; minor details could improve.",
			"Fully matches; theme, audience and purpose are all clear.",
		},
		Questions: []string{"How well does the banner capture the requested theme and audience?"},
	},
	"LPS": {
		Code:       "LPS",
		Name:       "Logo placement",
		Definition: "Whether the logo is integrated well in terms of visibility, size and position.",
		Levels: [5]string{
			"Logo is missing or completely misplaced.",
			"Logo is hard to notice or awkwardly placed.",
			"Logo is visible but too small, too large or partly covered.",
			"Logo is well placed; small size or position tweaks would help.",
			"Logo is well placed, clearly visible, proportionate and blends in.",
		},
		Questions: []string{"Where is the logo and does it support the brand identity?"},
	},
	"AQS": {
		Code:       "AQS",
		Name:       "Aesthetic quality",
		Definition: "Visual appeal: color harmony, layout balance, typography and overall craft.",
		Levels: [5]string{
			"Poor design that lacks coherence.",
			"Visually weak with noticeable mistakes.",
			"Acceptable with clear flaws such as poor contrast or imbalance.",
			"Well designed; small refinements would help.",
			"Outstanding, balanced, harmonious and readable.",
		},
		Questions: []string{"What makes the design appealing or unappealing?"},
	},
	"CTAE": {
		Code:       "CTAE",
		Name:       "Call-to-action effectiveness",
		Definition: "Whether the call-to-action is clear, engaging and visually emphasised.",
		Levels: [5]string{
			"No clear call-to-action.",
			"Weak, hard to notice or poorly worded.",
			"Present but lacks emphasis or clarity.",
			"Effective; contrast or size could improve slightly.",
			"Clear, compelling, well placed and prominent.",
		},
		Questions: []string{"How effectively does the call-to-action prompt the viewer to act?"},
	},
	"CPYQ": {
		Code:       "CPYQ",
		Name:       "Copy quality",
		Definition: "Quality of the headline, subheadline and other text: clarity, readability, persuasiveness and grammar.",
		Levels: [5]string{
			"Unclear, irrelevant or unreadable.",
			"Weak, hard to read or contains noticeable errors.",
			"Somewhat effective with clarity, grammar or persuasion issues.",
			"Well written; minor word choices could improve.",
			"Clear, engaging, correct and persuasive.",
		},
		Questions: []string{
			"Is the copy easy to read against the background?",
			"Does it fit the purpose and the audience?",
			"Is it persuasive and action driven?",
			"Are there grammar or spelling errors?",
		},
	},
	"BIS": {
		Code:       "BIS",
		Name:       "Brand identity",
		Definition: "How well the whole banner reflects the brand beyond the logo: colors, typography, imagery and feel.",
		Levels: [5]string{
			"No brand identity; the banner looks generic.",
			"Only the logo carries the brand; other choices feel unrelated.",
			"Partly on brand with visible inconsistencies.",
			"Mostly on brand; small refinements would help.",
			"Strongly consistent with the logo and a recognisable identity.",
		},
		Questions: []string{
			"Do colors and typography match the brand's style?",
			"Does the layout reinforce the brand?",
			"Does the overall look belong to the brand?",
		},
	},
}

// Lookup returns the rubric for code, case-insensitively.
func Lookup(code string) (Metric, error) {
	m, ok := Metrics[strings.ToUpper(strings.TrimSpace(code))]
	if !ok {
		return Metric{}, fmt.Errorf("%w: %q (want one of %s)", ErrUnknownMetric, code, strings.Join(Codes(), ", "))
	}
	return m, nil
}

// Codes returns the rubric codes sorted.
func Codes() []string {
	out := make([]string, 0, len(Metrics))
	for k := range Metrics {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

// Rubric renders the scoring instructions for the system prompt.
func (m Metric) Rubric() string {
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("%s (%s)\n", m.Name, m.Code))
	sb.WriteString(fmt.Sprintf("Definition: %s\n\nScoring:\n", m.Definition))
	for i := len(m.Levels) - 1; i >= 0; i-- {
		sb.WriteString(fmt.Sprintf("%d - %s\n", i+1, m.Levels[i]))
	}
	sb.WriteString("\nJustify your score:\n")
	for _, q := range m.Questions {
		sb.WriteString("- ")
		sb.WriteString(q)
		sb.WriteString("\n")
	}
	return sb.String()
}
