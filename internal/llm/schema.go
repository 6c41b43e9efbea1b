package llm

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/xeipuuv/gojsonschema"

	"github.com/pavelanni/examprep/internal/model"
)

// QuestionSchema is the JSON Schema of a single model-authored question.
const QuestionSchema = `{
	"type": "object",
	"properties": {
		"question": {"type": "string", "minLength": 1},
		"options": {
			"type": "object",
			"properties": {
				"A": {"type": "string", "minLength": 1},
				"B": {"type": "string", "minLength": 1},
				"C": {"type": "string", "minLength": 1},
				"D": {"type": "string", "minLength": 1},
				"E": {"type": "string", "minLength": 1}
			},
			"required": ["A", "B", "C", "D", "E"],
			"additionalProperties": false
		},
		"answer": {"type": "string", "enum": ["A", "B", "C", "D", "E"]},
		"explanation": {"type": "string", "minLength": 1},
		"topic": {"type": "string"},
		"difficulty": {"type": "string", "enum": ["easy", "medium", "hard"]},
		"step_solution": {"type": "string"}
	},
	"required": ["question", "options", "answer", "explanation"]
}`

// BatchSchema wraps QuestionSchema in an array.
var BatchSchema = fmt.Sprintf(`{"type":"array","items":%s}`, QuestionSchema)

var batchSchema = mustCompile(BatchSchema)

func mustCompile(schema string) *gojsonschema.Schema {
	s, err := gojsonschema.NewSchema(gojsonschema.NewStringLoader(schema))
	if err != nil {
		panic("compile question schema: " + err.Error())
	}
	return s
}

// Validate checks a decoded JSON value against BatchSchema. Any violation
// rejects the whole value.
func Validate(v any) error {
	result, err := batchSchema.Validate(gojsonschema.NewGoLoader(v))
	if err != nil {
		return fmt.Errorf("schema validation: %w", err)
	}
	if !result.Valid() {
		var msgs []string
		for _, e := range result.Errors() {
			msgs = append(msgs, e.String())
		}
		return errors.New("question batch failed schema validation: " + strings.Join(msgs, "; "))
	}
	return nil
}

// ParseQuestions runs a completion through sanitize, parse and validate. Each
// stage fails with an *OutputError of its own kind.
func ParseQuestions(completion string) ([]model.RawQuestion, error) {
	if strings.TrimSpace(completion) == "" {
		return nil, &OutputError{Kind: OutputEmpty, Err: errors.New("model returned an empty completion")}
	}

	cleaned := []byte(Sanitize(completion))

	var parsed any
	if err := json.Unmarshal(cleaned, &parsed); err != nil {
		return nil, &OutputError{Kind: OutputMalformed, Err: err}
	}
	if err := Validate(parsed); err != nil {
		return nil, &OutputError{Kind: OutputSchema, Err: err}
	}

	var questions []model.RawQuestion
	if err := json.Unmarshal(cleaned, &questions); err != nil {
		return nil, &OutputError{Kind: OutputMalformed, Err: err}
	}
	return questions, nil
}
