package prompts

import (
	"bytes"
	"embed"
	"errors"
	"fmt"
	"regexp"
	"strings"
	"sync"
	"text/template"
)

//go:embed templates/*.tmpl
var templateFS embed.FS

// DefaultLanguage is the language questions are written in unless configured otherwise.
const DefaultLanguage = "Turkish"

// MaxBatch bounds how many questions a single prompt may ask for, keeping
// model replies inside the token budget.
const MaxBatch = 10

var controlRegex = regexp.MustCompile(`[\r\n\t]+`)

var (
	loadOnce      sync.Once
	loadErr       error
	batchTemplate *template.Template
)

// BatchRequest describes one batch of questions to ask the model for.
type BatchRequest struct {
	Subject       string
	Topics        []string
	Count         int
	ExamType      string
	StepSolutions bool   // only the math subject asks for worked solutions
	Language      string // empty means DefaultLanguage
}

type batchData struct {
	ExamTitle     string
	Subject       string
	Topics        string
	Count         int
	ExamType      string
	StepSolutions bool
	Language      string
}

func load() error {
	loadOnce.Do(func() {
		content, err := templateFS.ReadFile("templates/question_batch.tmpl")
		if err != nil {
			loadErr = errors.New("failed to read prompt template: " + err.Error())
			return
		}
		batchTemplate, err = template.New("batch").Parse(string(content))
		if err != nil {
			loadErr = errors.New("failed to parse prompt template: " + err.Error())
		}
	})
	return loadErr
}

// Build renders the instruction asking the model for exactly req.Count
// questions as a bare JSON array.
func Build(req BatchRequest) (string, error) {
	if err := load(); err != nil {
		return "", err
	}
	if req.Count < 1 || req.Count > MaxBatch {
		return "", fmt.Errorf("question count %d out of range 1..%d", req.Count, MaxBatch)
	}
	if strings.TrimSpace(req.Subject) == "" {
		return "", errors.New("subject is required")
	}

	topics := make([]string, 0, len(req.Topics))
	for _, t := range req.Topics {
		if t = cleanField(t); t != "" {
			topics = append(topics, t)
		}
	}
	lang := cleanField(req.Language)
	if lang == "" {
		lang = DefaultLanguage
	}

	data := batchData{
		ExamTitle:     "KPSS",
		Subject:       cleanField(req.Subject),
		Topics:        strings.Join(topics, ", "),
		Count:         req.Count,
		ExamType:      cleanField(req.ExamType),
		StepSolutions: req.StepSolutions,
		Language:      lang,
	}

	var buf bytes.Buffer
	if err := batchTemplate.Execute(&buf, data); err != nil {
		return "", err
	}
	return strings.TrimSpace(buf.String()), nil
}

func cleanField(s string) string {
	return strings.TrimSpace(controlRegex.ReplaceAllString(s, " "))
}
