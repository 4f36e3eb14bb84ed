package exam

import (
	"errors"

	"github.com/mind-engage/mindengage-quiz/internal/question"
)

var (
	ErrExamNotFound     = errors.New("exam not found")
	ErrAttemptNotFound  = errors.New("attempt not found")
	ErrAttemptSubmitted = errors.New("attempt already submitted")
	ErrInvalidExam      = errors.New("invalid exam")
	ErrUnknownQuestion  = errors.New("unknown question")
)

const (
	StatusInProgress = "in_progress"
	StatusSubmitted  = "submitted"
)

type Exam struct {
	ID           string            `json:"id" yaml:"id"`
	Title        string            `json:"title" yaml:"title"`
	TimeLimitSec int               `json:"time_limit_sec" yaml:"time_limit_sec"`
	Questions    []question.Record `json:"questions" yaml:"questions"`

	CreatedAt int64 `json:"created_at,omitempty" yaml:"-"`
}

// Response is the saved input for one question. Only the fields matching the
// question kind are read back.
type Response struct {
	InputAnswer        *string `json:"inputAnswer,omitempty" yaml:"inputAnswer,omitempty"`
	InputChoiceIndices []*int  `json:"inputChoiceIndices" yaml:"inputChoiceIndices,omitempty"` // [] is an explicit empty pick, null is unset
}

type Attempt struct {
	ID          string              `json:"id"`
	ExamID      string              `json:"exam_id"`
	UserID      string              `json:"user_id"`
	Status      string              `json:"status"` // in_progress|submitted
	Score       float64             `json:"score"`
	Responses   map[string]Response `json:"responses"` // questionID -> saved input
	StartedAt   int64               `json:"started_at"`
	SubmittedAt int64               `json:"submitted_at,omitempty"`
}

// ResponseOf captures the current input of q.
func ResponseOf(q question.Question) Response {
	var r Response
	if c, ok := q.(question.Choice); ok {
		if idx := c.InputChoiceIndices(); idx != nil {
			r.InputChoiceIndices = question.Indices(idx...)
		}
		return r
	}
	if s, ok := q.InputAnswer(); ok {
		r.InputAnswer = &s
	}
	return r
}

// withResponse overlays a saved response onto a question record.
func withResponse(rec question.Record, r Response) question.Record {
	rec.InputAnswer = r.InputAnswer
	rec.InputChoiceIndices = r.InputChoiceIndices
	return rec
}

// studentView strips everything that reveals the answer.
func studentView(e Exam) Exam {
	qs := make([]question.Record, len(e.Questions))
	for i, rec := range e.Questions {
		rec.Answer = nil
		rec.CorrectChoiceIndices = nil
		rec.InputAnswer = nil
		rec.InputChoiceIndices = nil
		qs[i] = rec
	}
	e.Questions = qs
	return e
}
