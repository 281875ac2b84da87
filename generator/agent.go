package generator

import (
	"context"
	"errors"
	"fmt"

	"github.com/sirupsen/logrus"

	"banner_agent/design"
)

// Agent 负责依次调用策略、背景、前景和评审四个步骤。
type Agent struct {
	llm     LLMClient
	log     logrus.FieldLogger
	schemas stepSchemas
}

// AgentOption 配置 Agent。
type AgentOption func(*Agent)

// WithLogger 设置 agent 及其 session 使用的日志。
func WithLogger(l logrus.FieldLogger) AgentOption {
	return func(a *Agent) {
		if l != nil {
			a.log = l
		}
	}
}

func NewAgent(llm LLMClient, opts ...AgentOption) (*Agent, error) {
	if llm == nil {
		return nil, errors.New("llm client is required")
	}
	schemas, err := newStepSchemas()
	if err != nil {
		return nil, err
	}
	a := &Agent{llm: llm, log: logrus.StandardLogger(), schemas: schemas}
	for _, opt := range opts {
		opt(a)
	}
	return a, nil
}

// Strategize 生成创意方向。
func (a *Agent) Strategize(ctx context.Context, brief Brief) (design.CreativeDirection, error) {
	dir, err := complete[design.CreativeDirection](ctx, a, "strategist", BuildStrategistPrompt(brief, a.schemas.direction))
	if err != nil {
		return design.CreativeDirection{}, err
	}
	if len(dir.ColorPalette) == 0 {
		return design.CreativeDirection{}, fmt.Errorf("strategist: %w: empty color palette", ErrSchemaViolation)
	}
	return dir, nil
}

// DesignBackground 生成背景结构。
func (a *Agent) DesignBackground(ctx context.Context, brief Brief, dir design.CreativeDirection) (design.Background, error) {
	bg, err := complete[design.Background](ctx, a, "background", BuildBackgroundPrompt(brief, dir, a.schemas.background))
	if err != nil {
		return design.Background{}, err
	}
	if bg.OverlayLayer.Type == "" {
		bg.OverlayLayer.Type = design.OverlayNone
	}
	if err := bg.Validate(); err != nil {
		return design.Background{}, fmt.Errorf("background: %w", err)
	}
	return bg, nil
}

// DesignForeground 生成前景布局。
func (a *Agent) DesignForeground(ctx context.Context, brief Brief, dir design.CreativeDirection, bg design.Background) (design.Layout, error) {
	raw, err := complete[design.Layout](ctx, a, "foreground", BuildForegroundPrompt(brief, dir, bg, a.schemas.layout))
	if err != nil {
		return nil, err
	}
	layout := make(design.Layout, len(raw))
	for name, el := range raw {
		layout[design.CanonicalElement(name)] = el
	}
	if _, ok := layout[design.ElementHeadline]; !ok {
		return nil, fmt.Errorf("foreground: %w: layout has no headline", ErrSchemaViolation)
	}
	return layout, nil
}

// Review 请评审模型判断当前布局。
func (a *Agent) Review(ctx context.Context, in ReviewInput) (design.Feedback, error) {
	return complete[design.Feedback](ctx, a, "reviewer", BuildReviewPrompt(in, a.schemas.feedback))
}

func complete[T any](ctx context.Context, a *Agent, step string, prompt Prompt) (T, error) {
	var zero T
	a.log.WithField("step", step).Debug("calling llm")
	raw, err := a.llm.Complete(ctx, prompt)
	if err != nil {
		return zero, fmt.Errorf("%s: %w", step, err)
	}
	out, err := DecodeStructured[T](raw, prompt.Schema)
	if err != nil {
		a.log.WithFields(logrus.Fields{"step": step, "bytes": len(raw)}).WithError(err).Debug("rejected llm response")
		return zero, fmt.Errorf("%s: %w", step, err)
	}
	return out, nil
}
