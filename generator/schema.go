package generator

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/invopop/jsonschema"
	jsv "github.com/santhosh-tekuri/jsonschema/v5"

	"banner_agent/design"
)

// Output schema names, one per pipeline step.
const (
	SchemaCreativeDirection = "creative_direction"
	SchemaBackground        = "background"
	SchemaLayout            = "layout"
	SchemaFeedback          = "feedback"
)

// OutputSchema is the structured-output contract for one step: a JSON Schema reflected
// from the Go type the reply is decoded into, plus its compiled validator.
type OutputSchema struct {
	Name        string
	Description string
	JSON        []byte

	compiled *jsv.Schema
}

// NewOutputSchema reflects v's type. With strict set, objects reject unknown keys.
func NewOutputSchema(name, description string, v any, strict bool) (*OutputSchema, error) {
	r := &jsonschema.Reflector{
		DoNotReference:            true,
		AllowAdditionalProperties: !strict,
	}
	s := r.Reflect(v)
	s.Version = ""
	s.ID = ""
	s.Definitions = nil
	s.Description = description

	data, err := json.Marshal(s)
	if err != nil {
		return nil, fmt.Errorf("marshal %s schema: %w", name, err)
	}
	compiled, err := jsv.CompileString(name+".schema.json", string(data))
	if err != nil {
		return nil, fmt.Errorf("compile %s schema: %w", name, err)
	}
	return &OutputSchema{Name: name, Description: description, JSON: data, compiled: compiled}, nil
}

// Document returns the schema as a generic JSON object for SDKs that take one.
func (s *OutputSchema) Document() map[string]any {
	var doc map[string]any
	dec := json.NewDecoder(bytes.NewReader(s.JSON))
	dec.UseNumber()
	if err := dec.Decode(&doc); err != nil {
		return map[string]any{"type": "object"}
	}
	return doc
}

// Validate checks a document decoded with json.Decoder.UseNumber.
func (s *OutputSchema) Validate(doc any) error {
	return s.compiled.Validate(doc)
}

// stepSchemas holds the schemas every Agent uses.
type stepSchemas struct {
	direction  *OutputSchema
	background *OutputSchema
	layout     *OutputSchema
	feedback   *OutputSchema
}

func newStepSchemas() (stepSchemas, error) {
	var (
		out stepSchemas
		err error
	)
	out.direction, err = NewOutputSchema(SchemaCreativeDirection,
		"Creative direction for a banner: theme, mood and color palette", &design.CreativeDirection{}, false)
	if err != nil {
		return out, err
	}
	out.background, err = NewOutputSchema(SchemaBackground,
		"Banner background: base layer and optional overlay pattern", &design.Background{}, false)
	if err != nil {
		return out, err
	}
	out.layout, err = NewOutputSchema(SchemaLayout,
		"Banner foreground layout keyed by element name", &design.Layout{}, false)
	if err != nil {
		return out, err
	}
	out.feedback, err = NewOutputSchema(SchemaFeedback,
		"Design review verdict with concrete issues", &design.Feedback{}, false)
	if err != nil {
		return out, err
	}
	return out, nil
}
