package eval

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/sirupsen/logrus"

	"banner_agent/generator"
)

const scoreSchemaName = "banner_score"

const judgeSystem = `You are an expert in advertising design, marketing and visual communication.
Evaluate the attached banner ad against the principle below, using the advertiser's logo and banner request
for reference. Rate it from 1 (poor) to 5 (excellent) and explain the score in one or two sentences.

%s`

// Score is the judge's verdict.
type Score struct {
	Score       int    `json:"score" jsonschema:"minimum=1,maximum=5"`
	Explanation string `json:"explanation" jsonschema:"description=Concise reason for the score"`
}

// Request describes one evaluation.
type Request struct {
	Metric        string
	Banner        generator.Image
	Logo          *generator.Image
	BannerRequest string
}

// Evaluator asks an LLM judge to score banners.
type Evaluator struct {
	llm    generator.LLMClient
	schema *generator.OutputSchema
	log    logrus.FieldLogger
}

func New(llm generator.LLMClient, logger logrus.FieldLogger) (*Evaluator, error) {
	if llm == nil {
		return nil, errors.New("llm client is required")
	}
	schema, err := generator.NewOutputSchema(scoreSchemaName, "Banner evaluation score", &Score{}, true)
	if err != nil {
		return nil, err
	}
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	return &Evaluator{llm: llm, schema: schema, log: logger}, nil
}

// Evaluate scores req.Banner on req.Metric.
func (e *Evaluator) Evaluate(ctx context.Context, req Request) (Score, error) {
	metric, err := Lookup(req.Metric)
	if err != nil {
		return Score{}, err
	}
	if len(req.Banner.Data) == 0 {
		return Score{}, errors.New("banner image is empty")
	}

	prompt := buildPrompt(metric, req)
	prompt.Schema = e.schema

	e.log.WithField("metric", metric.Code).Debug("requesting evaluation")
	raw, err := e.llm.Complete(ctx, prompt)
	if err != nil {
		return Score{}, fmt.Errorf("evaluate %s: %w", metric.Code, err)
	}
	score, err := generator.DecodeStructured[Score](raw, e.schema)
	if err != nil {
		return Score{}, fmt.Errorf("evaluate %s: %w", metric.Code, err)
	}
	e.log.WithFields(logrus.Fields{"metric": metric.Code, "score": score.Score}).Info("evaluation done")
	return score, nil
}

func buildPrompt(metric Metric, req Request) generator.Prompt {
	var sb strings.Builder
	sb.WriteString("Evaluate the banner image.\n")
	if req.BannerRequest != "" {
		sb.WriteString(fmt.Sprintf("For reference, the advertiser's banner request is: %s\n", req.BannerRequest))
	}
	atts := []generator.Attachment{{Label: "The banner image to be evaluated is:", Image: req.Banner}}
	if req.Logo != nil {
		atts = append(atts, generator.Attachment{Label: "For reference, the advertiser logo is:", Image: *req.Logo})
	} else {
		sb.WriteString("No advertiser logo was supplied.\n")
	}
	return generator.Prompt{
		System:      fmt.Sprintf(judgeSystem, metric.Rubric()),
		User:        sb.String(),
		Attachments: atts,
	}
}
