package prompts

import (
	"strings"
	"testing"
)

func TestBuild(t *testing.T) {
	req := BatchRequest{
		Subject:  "Tarih",
		Topics:   []string{"Osmanlı Tarihi", "Kurtuluş Savaşı"},
		Count:    2,
		ExamType: "GK-GY",
	}

	prompt, err := Build(req)
	if err != nil {
		t.Fatalf("Build: %v", err)
	}

	for _, want := range []string{
		"Return ONLY a valid JSON array",
		"Do not use code blocks",
		"Subject: Tarih",
		"Topics: Osmanlı Tarihi, Kurtuluş Savaşı",
		"Exam type: GK-GY",
		`"options": { "A"`,
		"25% easy, 55% medium, 20% hard",
		"EXACTLY 2 objects",
		"written in Turkish",
		`set "step_solution" to the empty string`,
	} {
		if !strings.Contains(prompt, want) {
			t.Errorf("prompt missing %q", want)
		}
	}
	if strings.Contains(prompt, `fill "step_solution"`) {
		t.Error("non-math prompt should not ask for step solutions")
	}
}

func TestBuildMath(t *testing.T) {
	prompt, err := Build(BatchRequest{
		Subject:       "Matematik",
		Topics:        []string{"Problemler"},
		Count:         1,
		ExamType:      "GK-GY",
		StepSolutions: true,
		Language:      "English",
	})
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	if !strings.Contains(prompt, `fill "step_solution"`) {
		t.Error("math prompt should ask for step solutions")
	}
	if !strings.Contains(prompt, "written in English") {
		t.Error("prompt should honor the configured language")
	}
}

func TestBuildIsPure(t *testing.T) {
	req := BatchRequest{Subject: "Coğrafya", Topics: []string{"Nüfus"}, Count: 2, ExamType: "GK-GY"}
	a, err := Build(req)
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	b, _ := Build(req)
	if a != b {
		t.Error("same input produced different prompts")
	}
}

func TestBuildRejects(t *testing.T) {
	tests := []struct {
		name string
		req  BatchRequest
	}{
		{"zero count", BatchRequest{Subject: "Tarih", Count: 0}},
		{"too many", BatchRequest{Subject: "Tarih", Count: MaxBatch + 1}},
		{"no subject", BatchRequest{Subject: "  ", Count: 1}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := Build(tt.req); err == nil {
				t.Error("expected error")
			}
		})
	}
}

func TestCleanField(t *testing.T) {
	if got := cleanField(" Osmanlı\n\tTarihi "); got != "Osmanlı Tarihi" {
		t.Errorf("cleanField = %q", got)
	}
}
