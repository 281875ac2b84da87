package generator

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"

	"banner_agent/design"
	"banner_agent/render"
)

// DefaultMaxIterations is the review/refine budget when none is given.
const DefaultMaxIterations = 3

// ErrInvalidIterations is returned when the iteration budget is below one.
var ErrInvalidIterations = errors.New("max iterations must be at least 1")

// Session holds one banner run: creative direction, background, layout and review history.
type Session struct {
	ID         string
	CreatedAt  time.Time
	Brief      Brief
	Direction  design.CreativeDirection
	Background design.Background
	Layout     design.Layout
	History    []Turn
	Warnings   []string
	Approved   bool
	StopReason string

	agent  *Agent
	raster render.Rasterizer
	strict bool
	log    logrus.FieldLogger
	refine func(design.Layout, []design.Issue) (design.Layout, []design.IssueOutcome)
}

// SessionOption configures a Session.
type SessionOption func(*Session)

// WithRasterizer sets the preview rasterizer used before each review.
func WithRasterizer(r render.Rasterizer) SessionOption {
	return func(s *Session) {
		if r != nil {
			s.raster = r
		}
	}
}

// WithStrict makes step failures return errors instead of falling back to defaults.
func WithStrict(strict bool) SessionOption {
	return func(s *Session) { s.strict = strict }
}

// NewSession creates an empty session; nothing is generated yet.
func NewSession(id string, brief Brief, agent *Agent, opts ...SessionOption) *Session {
	if brief.Canvas.Width == 0 && brief.Canvas.Height == 0 {
		brief.Canvas = design.DefaultCanvas
	}
	s := &Session{
		ID:        id,
		CreatedAt: time.Now().UTC(),
		Brief:     brief,
		agent:     agent,
		raster:    render.NopRasterizer{},
		log:       agent.log.WithField("run_id", id),
		refine:    design.Apply,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Propose runs strategist, background and foreground in order.
// A failed step falls back to defaults with a warning; strict mode returns the error.
func (s *Session) Propose(ctx context.Context) error {
	dir, err := s.agent.Strategize(ctx, s.Brief)
	if err != nil {
		if ferr := s.fallback(ctx, err); ferr != nil {
			return ferr
		}
		dir = DefaultCreativeDirection()
	}
	s.Direction = dir
	s.log.WithFields(logrus.Fields{"theme": dir.Theme, "mood": dir.Mood}).Info("creative direction ready")

	bg, err := s.agent.DesignBackground(ctx, s.Brief, s.Direction)
	if err != nil {
		if ferr := s.fallback(ctx, err); ferr != nil {
			return ferr
		}
		bg = DefaultBackground(s.Direction)
	}
	s.Background = bg
	s.log.WithField("base", bg.BaseLayer.Type).Info("background ready")

	layout, err := s.agent.DesignForeground(ctx, s.Brief, s.Direction, s.Background)
	if err != nil {
		if ferr := s.fallback(ctx, err); ferr != nil {
			return ferr
		}
		layout = DefaultLayout(s.Brief.Canvas, s.Direction)
	}
	s.Layout = layout
	s.log.WithField("elements", len(layout)).Info("layout ready")

	for _, v := range design.Check(s.Layout, s.Brief.Canvas) {
		s.log.WithField("kind", v.Kind).Warn(v.String())
	}
	return nil
}

func (s *Session) fallback(ctx context.Context, err error) error {
	if ctx.Err() != nil {
		return err
	}
	if s.strict {
		return err
	}
	s.warn(err.Error() + "; using defaults")
	return nil
}

// ReviewOnce runs one review iteration and, when not approved, applies the issues.
func (s *Session) ReviewOnce(ctx context.Context) (Turn, error) {
	turn := Turn{
		Iteration:  len(s.History) + 1,
		Violations: design.Check(s.Layout, s.Brief.Canvas),
		CreatedAt:  time.Now().UTC(),
	}

	var preview *Image
	png, err := s.raster.Rasterize(ctx, s.SVG(), s.Brief.Canvas)
	switch {
	case err == nil:
		preview = &Image{MIMEType: "image/png", Data: png}
		turn.Previewed = true
	case !errors.Is(err, render.ErrRasterizerUnavailable):
		s.log.WithError(err).Warn("preview rasterization failed")
	}

	fb, err := s.agent.Review(ctx, ReviewInput{
		Canvas:     s.Brief.Canvas,
		Layout:     s.Layout,
		Preview:    preview,
		Logo:       s.Brief.Logo,
		Iteration:  turn.Iteration,
		Violations: turn.Violations,
	})
	if err != nil {
		turn.Error = err.Error()
		s.History = append(s.History, turn)
		return turn, err
	}
	turn.Feedback = fb

	if fb.Approved {
		s.Approved = true
	} else {
		s.Approved = false
		s.Layout, turn.Outcomes = s.refine(s.Layout, fb.Issues)
	}
	s.History = append(s.History, turn)

	entry := s.log.WithFields(logrus.Fields{"iteration": turn.Iteration, "approved": fb.Approved, "issues": len(fb.Issues)})
	for _, o := range turn.Outcomes {
		if !o.Applied {
			entry.WithField("element", o.Issue.Element).Debugf("issue skipped: %s", o.Reason)
		}
	}
	entry.Info("review done")
	return turn, nil
}

// Refine runs up to maxIterations review/refine iterations.
// A reviewer error stops the loop without approving the layout.
func (s *Session) Refine(ctx context.Context, maxIterations int) error {
	if maxIterations < 1 {
		return ErrInvalidIterations
	}
	for i := 0; i < maxIterations; i++ {
		if err := ctx.Err(); err != nil {
			s.StopReason = StopCanceled
			return err
		}
		turn, err := s.ReviewOnce(ctx)
		if err != nil {
			s.StopReason = StopReviewFailed
			if ctx.Err() != nil {
				s.StopReason = StopCanceled
				return err
			}
			if s.strict {
				return err
			}
			s.warn(fmt.Sprintf("review iteration %d failed: %v", turn.Iteration, err))
			return nil
		}
		if turn.Feedback.Approved {
			s.StopReason = StopApproved
			return nil
		}
	}
	s.StopReason = StopMaxIterations
	return nil
}

// Run proposes a design and then enters the review loop.
func (s *Session) Run(ctx context.Context, maxIterations int) (Result, error) {
	if err := s.Propose(ctx); err != nil {
		return s.Result(), err
	}
	if err := s.Refine(ctx, maxIterations); err != nil {
		return s.Result(), err
	}
	return s.Result(), nil
}

// SVG renders the current state.
func (s *Session) SVG() string {
	return render.SVG(s.Brief.Canvas, s.Background, s.Layout, s.assets())
}

func (s *Session) assets() render.Assets {
	if s.Brief.Logo == nil {
		return render.Assets{}
	}
	return render.Assets{LogoDataURI: s.Brief.Logo.DataURI()}
}

// Result snapshots the session. Slices and the layout are copied.
func (s *Session) Result() Result {
	r := Result{
		RunID:      s.ID,
		CreatedAt:  s.CreatedAt,
		Request:    s.Brief.Request,
		Canvas:     s.Brief.Canvas,
		Direction:  s.Direction,
		Background: s.Background,
		Layout:     s.Layout.Clone(),
		Iterations: append([]Turn(nil), s.History...),
		Approved:   s.Approved,
		StopReason: s.StopReason,
		Warnings:   append([]string(nil), s.Warnings...),
		Logo:       s.assets().LogoDataURI,
	}
	if r.Iterations == nil {
		r.Iterations = []Turn{}
	}
	return r
}

func (s *Session) warn(msg string) {
	s.Warnings = append(s.Warnings, msg)
	s.log.Warn(msg)
}
