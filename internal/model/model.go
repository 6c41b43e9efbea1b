package model

import "time"

// ExamType identifies one of the supported exam variants.
type ExamType string

const (
	// ExamGKGY is the general knowledge / general ability exam.
	ExamGKGY ExamType = "GK-GY"
	// ExamAGroup is the A group field exam.
	ExamAGroup ExamType = "A-GRUBU"
)

// Difficulty represents question difficulty level.
type Difficulty string

const (
	DifficultyEasy   Difficulty = "easy"
	DifficultyMedium Difficulty = "medium"
	DifficultyHard   Difficulty = "hard"
)

// OptionLabel is one of the five answer option labels.
type OptionLabel string

const (
	OptionA OptionLabel = "A"
	OptionB OptionLabel = "B"
	OptionC OptionLabel = "C"
	OptionD OptionLabel = "D"
	OptionE OptionLabel = "E"
)

// OptionLabels lists every option label in display order.
var OptionLabels = []OptionLabel{OptionA, OptionB, OptionC, OptionD, OptionE}

// Valid reports whether l is one of A..E.
func (l OptionLabel) Valid() bool {
	switch l {
	case OptionA, OptionB, OptionC, OptionD, OptionE:
		return true
	}
	return false
}

// SyllabusItem is one lesson of an exam: a subject, its topics and how many
// questions it contributes.
type SyllabusItem struct {
	Subject       string   `json:"subject"`
	Topics        []string `json:"topics"`
	QuestionCount int      `json:"question_count"`
}

// Question is a validated multiple-choice question ready to be shown.
type Question struct {
	ID           string                 `json:"id"`
	ExamType     ExamType               `json:"exam_type"`
	Subject      string                 `json:"subject"`
	Topic        string                 `json:"topic"`
	Difficulty   Difficulty             `json:"difficulty"`
	Text         string                 `json:"text"`
	Options      map[OptionLabel]string `json:"options"`
	Answer       OptionLabel            `json:"answer"`
	Explanation  string                 `json:"explanation"`
	StepSolution string                 `json:"step_solution"`
}

// Complete reports whether q carries text, all five options and an answer
// that names one of them.
func (q Question) Complete() bool {
	if q.Text == "" || len(q.Options) == 0 || !q.Answer.Valid() {
		return false
	}
	_, ok := q.Options[q.Answer]
	return ok
}

// RawQuestion is a question as asserted by the model, before ids, exam type and
// defaults are applied.
type RawQuestion struct {
	Question     string                 `json:"question"`
	Options      map[OptionLabel]string `json:"options"`
	Answer       OptionLabel            `json:"answer"`
	Explanation  string                 `json:"explanation"`
	Topic        string                 `json:"topic,omitempty"`
	Difficulty   Difficulty             `json:"difficulty,omitempty"`
	StepSolution string                 `json:"step_solution,omitempty"`
}

// Score holds the tally for a finished or in-progress attempt.
type Score struct {
	Total     int     `json:"total"`
	Correct   int     `json:"correct"`
	Incorrect int     `json:"incorrect"`
	Empty     int     `json:"empty"`
	Net       float64 `json:"net"`
}

// NetScore penalizes every wrong answer by a quarter of a correct one.
func NetScore(correct, incorrect int) float64 {
	return float64(correct) - float64(incorrect)/4
}

// HistoryItem is the reduced record of a completed attempt.
type HistoryItem struct {
	ID         string    `json:"id"`
	Timestamp  time.Time `json:"timestamp"`
	ExamType   ExamType  `json:"exam_type"`
	DurationMs int64     `json:"duration_ms"`
	Total      int       `json:"total"`
	Correct    int       `json:"correct"`
	Incorrect  int       `json:"incorrect"`
	Empty      int       `json:"empty"`
	Net        float64   `json:"net"`
}

// Duration returns the time spent on the attempt.
func (h HistoryItem) Duration() time.Duration {
	return time.Duration(h.DurationMs) * time.Millisecond
}

// Progress is a status event emitted while an exam is being generated.
type Progress struct {
	Subject string `json:"subject,omitempty"`
	Message string `json:"message"`
	Percent int    `json:"percent"`
	Done    bool   `json:"done"`
}

// ExamConfig holds runtime generation parameters set via CLI flags.
type ExamConfig struct {
	BatchSize    int           // questions requested per model call
	BatchDelay   time.Duration // pause after every batch
	QuestionLang string        // language the questions are written in
}
