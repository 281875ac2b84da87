package generator

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"
)

var (
	// ErrEmptyResponse means the model returned nothing.
	ErrEmptyResponse = errors.New("model returned an empty response")
	// ErrInvalidJSON means the reply is not exactly one JSON document.
	ErrInvalidJSON = errors.New("model response is not a single JSON document")
	// ErrSchemaViolation means the reply parsed but does not match the step's schema.
	ErrSchemaViolation = errors.New("model response violates the output schema")
)

// DecodeStructured parses a reply strictly: one surrounding markdown fence is allowed,
// the rest must be a single JSON document that validates against schema.
func DecodeStructured[T any](raw string, schema *OutputSchema) (T, error) {
	var zero T

	body, err := stripFence(raw)
	if err != nil {
		return zero, err
	}
	if body == "" {
		return zero, ErrEmptyResponse
	}

	dec := json.NewDecoder(strings.NewReader(body))
	dec.UseNumber()
	var doc any
	if err := dec.Decode(&doc); err != nil {
		return zero, fmt.Errorf("%w: %v", ErrInvalidJSON, err)
	}
	if _, err := dec.Token(); !errors.Is(err, io.EOF) {
		return zero, fmt.Errorf("%w: trailing content after JSON value", ErrInvalidJSON)
	}

	if schema != nil {
		if err := schema.Validate(doc); err != nil {
			return zero, fmt.Errorf("%w: %s: %v", ErrSchemaViolation, schema.Name, err)
		}
	}

	var out T
	if err := json.Unmarshal([]byte(body), &out); err != nil {
		return zero, fmt.Errorf("%w: %v", ErrSchemaViolation, err)
	}
	return out, nil
}

// stripFence removes one surrounding ``` or ```json fence.
func stripFence(raw string) (string, error) {
	s := strings.TrimSpace(raw)
	if !strings.HasPrefix(s, "```") {
		return s, nil
	}
	nl := strings.IndexByte(s, '\n')
	if nl < 0 {
		return "", fmt.Errorf("%w: unterminated code fence", ErrInvalidJSON)
	}
	lang := strings.TrimSpace(s[3:nl])
	if lang != "" && !strings.EqualFold(lang, "json") {
		return "", fmt.Errorf("%w: unexpected %q code fence", ErrInvalidJSON, lang)
	}
	inner, ok := strings.CutSuffix(strings.TrimSpace(s[nl+1:]), "```")
	if !ok {
		return "", fmt.Errorf("%w: unterminated code fence", ErrInvalidJSON)
	}
	return strings.TrimSpace(inner), nil
}
