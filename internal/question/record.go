package question

import (
	"encoding/json"
	"errors"
	"fmt"
)

// ErrMissingTitle is returned by Reconstruct for a record without a title.
var ErrMissingTitle = errors.New("question: record has no title")

// Record is the plain representation of a question used for storage and
// transport. ToRecord fills only Type, Title, Answer, InputAnswer and Tag;
// Reconstruct additionally reads the remaining fields.
//
// Index lists use *int so that a JSON null entry survives decoding.
type Record struct {
	Type        Kind    `json:"type" yaml:"type"`
	Title       *string `json:"title" yaml:"title"`
	Answer      *string `json:"answer" yaml:"answer"`
	InputAnswer *string `json:"inputAnswer" yaml:"inputAnswer"`
	Tag         *string `json:"tag" yaml:"tag"`

	ID                   string   `json:"id,omitempty" yaml:"id,omitempty"`
	Choices              []string `json:"choices,omitempty" yaml:"choices,omitempty"`
	CorrectChoiceIndices []*int   `json:"correctChoiceIndices,omitempty" yaml:"correctChoiceIndices,omitempty"`
	InputChoiceIndices   []*int   `json:"inputChoiceIndices,omitempty" yaml:"inputChoiceIndices,omitempty"`
	ImageURLs            []string `json:"imageUrls,omitempty" yaml:"imageUrls,omitempty"`
	Score                *float64 `json:"score,omitempty" yaml:"score,omitempty"`
	RenderSequence       []int    `json:"renderSequence,omitempty" yaml:"renderSequence,omitempty"`
}

// ParseRecord decodes a JSON record.
func ParseRecord(data []byte) (Record, error) {
	var rec Record
	if err := json.Unmarshal(data, &rec); err != nil {
		return Record{}, fmt.Errorf("parse question record: %w", err)
	}
	return rec, nil
}

// Indices builds a record index list from plain ints.
func Indices(idx ...int) []*int {
	out := make([]*int, len(idx))
	for i := range idx {
		v := idx[i]
		out[i] = &v
	}
	return out
}

type reconstructConfig struct {
	legacyTrueFalse bool
}

type ReconstructOption func(*reconstructConfig)

// WithLegacyTrueFalse makes discriminant 3 decode as a true/false question,
// as written by the older encoding. Without it 3 decodes as a fill question.
func WithLegacyTrueFalse() ReconstructOption {
	return func(c *reconstructConfig) { c.legacyTrueFalse = true }
}

// Reconstruct builds a typed question from rec. Missing optional fields fall
// back to empty values; unknown discriminants yield a fill question.
func Reconstruct(rec Record, opts ...ReconstructOption) (Question, error) {
	var cfg reconstructConfig
	for _, o := range opts {
		o(&cfg)
	}
	if rec.Title == nil {
		return nil, ErrMissingTitle
	}

	meta := []Option{WithID(rec.ID)}
	if rec.Tag != nil {
		meta = append(meta, WithTag(*rec.Tag))
	}
	if rec.ImageURLs != nil {
		meta = append(meta, WithImageURLs(rec.ImageURLs...))
	}
	if rec.Score != nil {
		meta = append(meta, WithScore(*rec.Score))
	}

	kind := rec.Type
	if cfg.legacyTrueFalse && kind == KindTrueFalseLegacy {
		kind = KindTrueFalse
	}

	var q Question
	switch kind {
	case KindSingleChoice:
		sc := newSingleChoice(KindSingleChoice, *rec.Title, rec.Choices, correctIndices(rec), meta)
		sc.SetInputChoiceIndices(inputIndices(rec))
		q = sc
	case KindMultipleChoice:
		mc := NewMultipleChoice(*rec.Title, rec.Choices, correctIndices(rec), meta...)
		mc.SetInputChoiceIndices(inputIndices(rec))
		q = mc
	case KindTrueFalse:
		tf := newTrueFalse(*rec.Title, choiceAt(rec.Choices, 1), choiceAt(rec.Choices, 0),
			truthIndices(rec.CorrectChoiceIndices, rec.Answer), meta)
		tf.input = truthIndices(rec.InputChoiceIndices, rec.InputAnswer)
		q = tf
	default:
		f := NewFill(*rec.Title, strOr(rec.Answer), meta...)
		f.input = cloneStr(rec.InputAnswer)
		q = f
	}

	if c, ok := q.(Choice); ok && rec.RenderSequence != nil {
		c.SetRenderSequence(rec.RenderSequence)
	}
	return q, nil
}

func correctIndices(rec Record) []int {
	if rec.CorrectChoiceIndices != nil {
		return plainIndices(rec.CorrectChoiceIndices)
	}
	return ParseChoiceLetters(strOr(rec.Answer))
}

func inputIndices(rec Record) []int {
	if rec.InputChoiceIndices != nil {
		return plainIndices(rec.InputChoiceIndices)
	}
	return parseInput(rec.InputAnswer, -1)
}

// truthIndices reads the first entry of a true/false index list. A missing
// or empty list, and a null first entry, mean "no option".
func truthIndices(idx []*int, canonical *string) []int {
	if len(idx) == 0 {
		if canonical != nil {
			return firstOf(ParseChoiceLetters(*canonical))
		}
		return nil
	}
	if idx[0] == nil {
		return nil
	}
	return []int{*idx[0]}
}

// plainIndices drops null entries.
func plainIndices(idx []*int) []int {
	out := make([]int, 0, len(idx))
	for _, p := range idx {
		if p != nil {
			out = append(out, *p)
		}
	}
	return out
}

func choiceAt(choices []string, i int) string {
	if i < len(choices) {
		return choices[i]
	}
	return ""
}

func strOr(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
