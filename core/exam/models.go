package exam

import (
	"context"
	"fmt"

	"github.com/phamthikhanhhuyen281-commits/webthigiaoduc/core"
)

// JSON field names mirror the persisted browser-era shape so existing
// exported data stays loadable.
type (
	Question struct {
		ID            int      `json:"id"`
		Text          string   `json:"text"`
		Options       []string `json:"options"`
		CorrectAnswer int      `json:"correctAnswer"`
		Explanation   string   `json:"explanation"`
	}

	Exam struct {
		ID        string     `json:"id"`
		Title     string     `json:"title"`
		Subject   string     `json:"subject"`
		Duration  int        `json:"duration"` // minutes
		Questions []Question `json:"questions"`
	}
)

// Draft is an exam awaiting explicit human approval, typically produced by
// the digitization scanner. It has no ID until approved.
type Draft struct {
	Title     string     `json:"title"`
	Subject   string     `json:"subject"`
	Duration  int        `json:"duration"`
	Questions []Question `json:"questions"`
}

// Scanner is the AI digitization collaborator: document bytes in, structured
// draft out. Failures surface as *DigitizationError.
type Scanner interface {
	ScanExam(ctx context.Context, data []byte, mimeType string) (Draft, error)
}

// DigitizationError carries a user-displayable digitization failure.
type DigitizationError struct {
	Message string
	Err     error
}

func NewDigitizationError(msg string, err error) *DigitizationError {
	return &DigitizationError{Message: msg, Err: err}
}

func (e *DigitizationError) Error() string { return e.Message }
func (e *DigitizationError) Unwrap() error { return e.Err }

const optionsPerQuestion = 4

// Validate checks draft well-formedness before it may be shown for review:
// non-empty metadata, a positive duration, and per question exactly 4
// options with 0 <= correctAnswer < len(options) and a unique id.
func (d Draft) Validate() error {
	return validateShape(d.Title, d.Subject, d.Duration, d.Questions)
}

// Validate applies the same shape rules to a fully authored exam, so a
// manually created one can never carry an unscoreable question.
func (ex Exam) Validate() error {
	return validateShape(ex.Title, ex.Subject, ex.Duration, ex.Questions)
}

func validateShape(title, subject string, duration int, questions []Question) error {
	if core.CleanString(title) == "" {
		return fmt.Errorf("a title is required")
	}
	if core.CleanString(subject) == "" {
		return fmt.Errorf("a subject is required")
	}
	if duration <= 0 {
		return fmt.Errorf("duration must be positive, got %d", duration)
	}
	if len(questions) == 0 {
		return fmt.Errorf("at least one question is required")
	}

	seen := make(map[int]bool, len(questions))
	for i, q := range questions {
		if core.CleanString(q.Text) == "" {
			return fmt.Errorf("question %d has no text", i+1)
		}
		if len(q.Options) != optionsPerQuestion {
			return fmt.Errorf("question %d has %d options, want %d", i+1, len(q.Options), optionsPerQuestion)
		}
		if q.CorrectAnswer < 0 || q.CorrectAnswer >= len(q.Options) {
			return fmt.Errorf("question %d has correct answer index %d out of range", i+1, q.CorrectAnswer)
		}
		if seen[q.ID] {
			return fmt.Errorf("question id %d is duplicated", q.ID)
		}
		seen[q.ID] = true
	}
	return nil
}
