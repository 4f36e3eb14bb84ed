package question

import "strings"

// Fill is a free-text question compared after trimming surrounding space.
type Fill struct {
	base
	answer string
	input  *string
}

func NewFill(title, answer string, opts ...Option) *Fill {
	return &Fill{base: newBase(KindFill, title, opts), answer: answer}
}

func (q *Fill) Answer() string { return q.answer }

func (q *Fill) InputAnswer() (string, bool) {
	if q.input == nil {
		return "", false
	}
	return *q.input, true
}

func (q *Fill) SetInputAnswer(s string) { q.input = q.update(cloneStr(q.input), &s) }
func (q *Fill) ResetInputAnswer()       { q.input = q.update(cloneStr(q.input), nil) }

func (q *Fill) TestCorrect() bool {
	if q.input == nil {
		return false
	}
	return strings.TrimSpace(*q.input) == strings.TrimSpace(q.answer)
}

func (q *Fill) ToRecord() Record { return q.record(q.answer, cloneStr(q.input)) }
