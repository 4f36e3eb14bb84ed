package question

import (
	"math/rand"
	"slices"
	"strconv"
	"strings"
)

// Choice is implemented by every kind answered by picking options.
type Choice interface {
	Question
	Choices() []string
	CorrectChoiceIndices() []int
	InputChoiceIndices() []int
	SetInputChoiceIndices(idx []int)
	// MatchedCount is the number of picked indices that are correct.
	MatchedCount() int
	RenderSequence() []int
	SetRenderSequence(seq []int)
	RandomizeRenderSequence()
}

// choiceSet is the option state shared by the choice kinds. Index slices keep
// insertion order and hold no duplicates.
type choiceSet struct {
	choices []string
	correct []int
	input   []int // nil until the user picks something; empty is an explicit "none"
	render  []int
}

func makeChoiceSet(texts []string, correct []int) choiceSet {
	cs := choiceSet{
		choices: append([]string(nil), texts...),
		correct: dedupe(correct),
		render:  make([]int, len(texts)),
	}
	for i := range cs.render {
		cs.render[i] = i
	}
	return cs
}

func (c *choiceSet) Choices() []string           { return append([]string(nil), c.choices...) }
func (c *choiceSet) CorrectChoiceIndices() []int { return append([]int(nil), c.correct...) }
func (c *choiceSet) InputChoiceIndices() []int   { return slices.Clone(c.input) }
func (c *choiceSet) RenderSequence() []int       { return append([]int(nil), c.render...) }

func (c *choiceSet) SetRenderSequence(seq []int) { c.render = append([]int(nil), seq...) }

// RandomizeRenderSequence reorders the display order uniformly at random.
func (c *choiceSet) RandomizeRenderSequence() {
	rand.Shuffle(len(c.render), func(i, j int) {
		c.render[i], c.render[j] = c.render[j], c.render[i]
	})
}

func (c *choiceSet) MatchedCount() int {
	n := 0
	for _, i := range c.input {
		if contains(c.correct, i) {
			n++
		}
	}
	return n
}

// matches reports set equality of input and correct indices. An unset input
// is never a match; an explicitly empty one matches an empty correct set.
func (c *choiceSet) matches() bool {
	if c.input == nil || len(c.input) != len(c.correct) {
		return false
	}
	return c.MatchedCount() == len(c.input)
}

func (c *choiceSet) Answer() string { return joinIndices(c.correct) }

// inputAnswer is nil while unset and for an index with no digit form, such as
// an undefined true/false option.
func (c *choiceSet) inputAnswer() *string {
	if c.input == nil {
		return nil
	}
	s := joinIndices(c.input)
	if s == "" && len(c.input) > 0 {
		return nil
	}
	return &s
}

// MultipleChoice accepts any subset of its options.
type MultipleChoice struct {
	base
	choiceSet
}

func NewMultipleChoice(title string, choices []string, correct []int, opts ...Option) *MultipleChoice {
	return &MultipleChoice{
		base:      newBase(KindMultipleChoice, title, opts),
		choiceSet: makeChoiceSet(choices, correct),
	}
}

func (q *MultipleChoice) InputAnswer() (string, bool) { return deref(q.inputAnswer()) }

func (q *MultipleChoice) SetInputChoiceIndices(idx []int) { q.input = dedupe(idx) }

// SetInputAnswer parses s with ParseChoiceLetters and stores the indices.
func (q *MultipleChoice) SetInputAnswer(s string) {
	q.input = parseInput(q.update(q.inputAnswer(), &s), -1)
}

func (q *MultipleChoice) ResetInputAnswer() {
	q.input = parseInput(q.update(q.inputAnswer(), nil), -1)
}

func (q *MultipleChoice) TestCorrect() bool { return q.matches() }

func (q *MultipleChoice) ToRecord() Record { return q.record(q.Answer(), q.inputAnswer()) }

// SingleChoice is a choice question with at most one correct and one picked
// option. Longer index lists are cut to their first element.
type SingleChoice struct {
	base
	choiceSet
}

func NewSingleChoice(title string, choices []string, correct int, opts ...Option) *SingleChoice {
	return newSingleChoice(KindSingleChoice, title, choices, []int{correct}, opts)
}

func newSingleChoice(kind Kind, title string, choices []string, correct []int, opts []Option) *SingleChoice {
	return &SingleChoice{
		base:      newBase(kind, title, opts),
		choiceSet: makeChoiceSet(choices, firstOf(correct)),
	}
}

func (q *SingleChoice) CorrectChoiceIndex() (int, bool) { return first(q.correct) }
func (q *SingleChoice) InputChoiceIndex() (int, bool)   { return first(q.input) }

func (q *SingleChoice) SetInputChoiceIndex(i int)       { q.input = []int{i} }
func (q *SingleChoice) SetInputChoiceIndices(idx []int) { q.input = firstOf(idx) }

// ClearInputChoice drops the picked option without consulting the listener.
func (q *SingleChoice) ClearInputChoice() { q.input = nil }

func (q *SingleChoice) InputAnswer() (string, bool) { return deref(q.inputAnswer()) }

func (q *SingleChoice) ResetInputAnswer() {
	q.input = parseInput(q.update(q.inputAnswer(), nil), 1)
}

func (q *SingleChoice) TestCorrect() bool { return q.matches() }
func (q *SingleChoice) ToRecord() Record  { return q.record(q.Answer(), q.inputAnswer()) }

// SetInputAnswer reads only the first character of s. An empty string clears
// the input.
func (q *SingleChoice) SetInputAnswer(s string) {
	q.input = parseInput(q.update(q.inputAnswer(), &s), 1)
}

// ParseChoiceLetters maps each character of s to a zero-based choice index:
// '1'-'9' to 0-8 and 'a'-'z' or 'A'-'Z' to 0-25. Other characters are
// skipped.
func ParseChoiceLetters(s string) []int {
	var out []int
	for _, r := range s {
		switch {
		case r >= '1' && r <= '9':
			out = append(out, int(r-'1'))
		case r >= 'a' && r <= 'z':
			out = append(out, int(r-'a'))
		case r >= 'A' && r <= 'Z':
			out = append(out, int(r-'A'))
		}
	}
	return out
}

// parseInput turns a stored answer string into input indices. limit > 0
// restricts parsing to the first limit characters, and then a string without
// a letter clears the input. Without a limit it yields an explicit empty set.
func parseInput(s *string, limit int) []int {
	if s == nil {
		return nil
	}
	v := *s
	if limit > 0 {
		v = firstRunes(v, limit)
	}
	idx := dedupe(ParseChoiceLetters(v))
	if len(idx) == 0 {
		if limit > 0 {
			return nil
		}
		return []int{}
	}
	return idx
}

func firstRunes(s string, n int) string {
	i := 0
	for pos := range s {
		if i == n {
			return s[:pos]
		}
		i++
	}
	return s
}

// joinIndices renders indices one-based. Negative indices have no letter and
// are left out.
func joinIndices(idx []int) string {
	var sb strings.Builder
	for _, i := range idx {
		if i < 0 {
			continue
		}
		sb.WriteString(strconv.Itoa(i + 1))
	}
	return sb.String()
}

func dedupe(idx []int) []int {
	if idx == nil {
		return nil
	}
	out := make([]int, 0, len(idx))
	for _, i := range idx {
		if !contains(out, i) {
			out = append(out, i)
		}
	}
	return out
}

func contains(idx []int, v int) bool {
	for _, i := range idx {
		if i == v {
			return true
		}
	}
	return false
}

func first(idx []int) (int, bool) {
	if len(idx) == 0 {
		return 0, false
	}
	return idx[0], true
}

func firstOf(idx []int) []int {
	if len(idx) == 0 {
		return nil
	}
	return []int{idx[0]}
}

func deref(s *string) (string, bool) {
	if s == nil {
		return "", false
	}
	return *s, true
}
