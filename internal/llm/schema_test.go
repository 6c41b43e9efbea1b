package llm

import (
	"encoding/json"
	"errors"
	"strings"
	"testing"

	"github.com/pavelanni/examprep/internal/model"
)

const validItem = `{
	"topic": "Osmanlı Tarihi",
	"difficulty": "medium",
	"question": "Osmanlı Devleti hangi yıl kurulmuştur?",
	"options": {"A": "1071", "B": "1299", "C": "1453", "D": "1517", "E": "1923"},
	"answer": "B",
	"explanation": "Osmanlı Devleti 1299'da kurulmuştur.",
	"step_solution": ""
}`

func decode(t *testing.T, s string) any {
	t.Helper()
	var v any
	if err := json.Unmarshal([]byte(s), &v); err != nil {
		t.Fatalf("decode fixture: %v", err)
	}
	return v
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		doc     string
		wantErr bool
	}{
		{"valid", "[" + validItem + "]", false},
		{"empty array", "[]", false},
		{"minimal", `[{"question":"q","options":{"A":"a","B":"b","C":"c","D":"d","E":"e"},"answer":"E","explanation":"x"}]`, false},
		{"not an array", validItem, true},
		{"missing options", `[{"question":"q","answer":"A","explanation":"x"}]`, true},
		{"missing label E", `[{"question":"q","options":{"A":"a","B":"b","C":"c","D":"d"},"answer":"A","explanation":"x"}]`, true},
		{"extra label F", `[{"question":"q","options":{"A":"a","B":"b","C":"c","D":"d","E":"e","F":"f"},"answer":"A","explanation":"x"}]`, true},
		{"empty option", `[{"question":"q","options":{"A":"","B":"b","C":"c","D":"d","E":"e"},"answer":"A","explanation":"x"}]`, true},
		{"answer not a label", `[{"question":"q","options":{"A":"a","B":"b","C":"c","D":"d","E":"e"},"answer":"F","explanation":"x"}]`, true},
		{"lower case answer", `[{"question":"q","options":{"A":"a","B":"b","C":"c","D":"d","E":"e"},"answer":"a","explanation":"x"}]`, true},
		{"empty question", `[{"question":"","options":{"A":"a","B":"b","C":"c","D":"d","E":"e"},"answer":"A","explanation":"x"}]`, true},
		{"numeric question", `[{"question":5,"options":{"A":"a","B":"b","C":"c","D":"d","E":"e"},"answer":"A","explanation":"x"}]`, true},
		{"empty explanation", `[{"question":"q","options":{"A":"a","B":"b","C":"c","D":"d","E":"e"},"answer":"A","explanation":""}]`, true},
		{"bad difficulty", `[{"question":"q","options":{"A":"a","B":"b","C":"c","D":"d","E":"e"},"answer":"A","explanation":"x","difficulty":"orta"}]`, true},
		{"one bad element rejects all", "[" + validItem + `,{"question":"q"}]`, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := Validate(decode(t, tt.doc))
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestParseQuestions(t *testing.T) {
	completion := "Sure! ```json\n[" + validItem + ",]\n``` Good luck."
	qs, err := ParseQuestions(completion)
	if err != nil {
		t.Fatalf("ParseQuestions: %v", err)
	}
	if len(qs) != 1 {
		t.Fatalf("expected 1 question, got %d", len(qs))
	}
	q := qs[0]
	if q.Answer != model.OptionB {
		t.Errorf("answer = %q, want B", q.Answer)
	}
	if q.Options[model.OptionC] != "1453" {
		t.Errorf("option C = %q", q.Options[model.OptionC])
	}
	if q.Difficulty != model.DifficultyMedium {
		t.Errorf("difficulty = %q", q.Difficulty)
	}
}

func TestParseQuestionsErrorKinds(t *testing.T) {
	tests := []struct {
		name string
		in   string
		kind OutputKind
	}{
		{"empty", "   ", OutputEmpty},
		{"prose", "I cannot do that.", OutputMalformed},
		{"broken json", `[{"question": "q",`, OutputMalformed},
		{"wrong shape", `[{"question": "q"}]`, OutputSchema},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseQuestions(tt.in)
			var oe *OutputError
			if !errors.As(err, &oe) {
				t.Fatalf("expected *OutputError, got %v", err)
			}
			if oe.Kind != tt.kind {
				t.Errorf("kind = %q, want %q", oe.Kind, tt.kind)
			}
		})
	}
}

func TestValidateErrorMessage(t *testing.T) {
	err := Validate(decode(t, `[{"question":"q","options":{"A":"a"},"answer":"A","explanation":"x"}]`))
	if err == nil {
		t.Fatal("expected error")
	}
	if !strings.Contains(err.Error(), "schema validation") {
		t.Errorf("unexpected message: %v", err)
	}
}
