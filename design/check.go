package design

import (
	"fmt"
	"sort"
)

// Rect is an axis-aligned box.
type Rect struct {
	X, Y, W, H float64
}

// Overlaps reports whether two boxes share any area. Touching edges do not count.
func (r Rect) Overlaps(o Rect) bool {
	if r.W <= 0 || r.H <= 0 || o.W <= 0 || o.H <= 0 {
		return false
	}
	return r.X < o.X+o.W && o.X < r.X+r.W && r.Y < o.Y+o.H && o.Y < r.Y+r.H
}

// Violation kinds.
const (
	ViolationOutOfBounds = "out_of_bounds"
	ViolationOverlap     = "overlap"
)

// Violation is an advisory layout problem. Nothing in the pipeline rejects a
// layout because of one.
type Violation struct {
	Kind     string   `json:"kind"`
	Elements []string `json:"elements"`
	Detail   string   `json:"detail"`
}

func (v Violation) String() string {
	return fmt.Sprintf("%s %v: %s", v.Kind, v.Elements, v.Detail)
}

// Check reports elements that leave the canvas and pairs of elements that
// overlap. Output order is deterministic.
func Check(layout Layout, canvas Canvas) []Violation {
	names := make([]string, 0, len(layout))
	for name := range layout {
		names = append(names, name)
	}
	sort.Strings(names)

	var out []Violation
	cw, ch := float64(canvas.Width), float64(canvas.Height)
	for _, name := range names {
		r := layout[name].Rect()
		if r.X < 0 || r.Y < 0 || r.X+r.W > cw || r.Y+r.H > ch {
			out = append(out, Violation{
				Kind:     ViolationOutOfBounds,
				Elements: []string{name},
				Detail: fmt.Sprintf("box (%g,%g %gx%g) exceeds canvas %s",
					r.X, r.Y, r.W, r.H, canvas),
			})
		}
	}
	for i := 0; i < len(names); i++ {
		for j := i + 1; j < len(names); j++ {
			a, b := layout[names[i]].Rect(), layout[names[j]].Rect()
			if a.Overlaps(b) {
				out = append(out, Violation{
					Kind:     ViolationOverlap,
					Elements: []string{names[i], names[j]},
					Detail:   "bounding boxes intersect",
				})
			}
		}
	}
	return out
}
