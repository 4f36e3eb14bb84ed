package grading

import (
	"context"
	"fmt"

	"github.com/mind-engage/mindengage-quiz/internal/question"
)

// Result is the outcome of grading a single question.
type Result struct {
	QuestionID  string        `json:"question_id,omitempty"`
	Kind        question.Kind `json:"kind"`
	Correct     bool          `json:"correct"`
	Matched     int           `json:"matched,omitempty"` // choice kinds only
	AutoPoints  float64       `json:"auto_points"`       // points awarded automatically
	MaxPoints   float64       `json:"max_points"`        // the question's max points
	NeedsManual bool          `json:"needs_manual,omitempty"`
	Feedback    []string      `json:"feedback,omitempty"`
}

// Strategy grades a single question kind.
type Strategy interface {
	Grade(ctx context.Context, q question.Question, max float64) (Result, error)
}

// Grader routes by question kind to the correct Strategy.
type Grader interface {
	Grade(ctx context.Context, q question.Question) (Result, error)
}

type defaultGrader struct {
	strategies    map[question.Kind]Strategy
	defaultPoints float64
}

func (g *defaultGrader) Grade(ctx context.Context, q question.Question) (Result, error) {
	max := g.defaultPoints
	if s, ok := q.Score(); ok {
		max = s
	}
	s, ok := g.strategies[q.Kind()]
	if !ok {
		return Result{
			QuestionID:  q.ID(),
			Kind:        q.Kind(),
			MaxPoints:   max,
			NeedsManual: true,
			Feedback:    []string{"no strategy available"},
		}, nil
	}
	res, err := s.Grade(ctx, q, max)
	if err != nil {
		return res, fmt.Errorf("grade %s question %q: %w", q.Kind(), q.ID(), err)
	}
	res.QuestionID = q.ID()
	res.Kind = q.Kind()
	return res, nil
}

// Engine options

type Option func(*config)

type config struct {
	MaxEditDistance   int     // fill near-miss tolerance, 0 disables
	AllowPartialMulti bool    // partial credit for multiple choice without wrong picks
	DefaultPoints     float64 // max points for questions without a score
	Numeric           numericTolerance
}

func WithMaxEditDistance(n int) Option   { return func(c *config) { c.MaxEditDistance = n } }
func WithPartialMulti(b bool) Option     { return func(c *config) { c.AllowPartialMulti = b } }
func WithDefaultPoints(p float64) Option { return func(c *config) { c.DefaultPoints = p } }

// WithNumericTolerance gives fill answers full credit when both sides parse as
// numbers within abs (absolute) or rel (relative) of each other. Pass -1 to
// disable a bound.
func WithNumericTolerance(abs, rel float64) Option {
	return func(c *config) { c.Numeric = numericTolerance{abs: abs, rel: rel} }
}

// NewDefaultGrader installs built-in strategies.
func NewDefaultGrader(opts ...Option) Grader {
	cfg := &config{
		AllowPartialMulti: true,
		DefaultPoints:     1,
		Numeric:           numericTolerance{abs: -1, rel: -1},
	}
	for _, o := range opts {
		o(cfg)
	}
	return &defaultGrader{
		defaultPoints: cfg.DefaultPoints,
		strategies: map[question.Kind]Strategy{
			question.KindSingleChoice:   exactStrategy{},
			question.KindTrueFalse:      exactStrategy{},
			question.KindMultipleChoice: multipleStrategy{allowPartial: cfg.AllowPartialMulti},
			question.KindFill:           fillStrategy{maxEdit: cfg.MaxEditDistance, numeric: cfg.Numeric},
		},
	}
}

// --- Strategies ---

type exactStrategy struct{}

func (exactStrategy) Grade(_ context.Context, q question.Question, max float64) (Result, error) {
	res := Result{MaxPoints: max, Correct: q.TestCorrect()}
	if c, ok := q.(question.Choice); ok {
		res.Matched = c.MatchedCount()
	}
	if res.Correct {
		res.AutoPoints = max
	}
	return res, nil
}

type multipleStrategy struct{ allowPartial bool }

func (s multipleStrategy) Grade(_ context.Context, q question.Question, max float64) (Result, error) {
	res := Result{MaxPoints: max}
	c, ok := q.(question.Choice)
	if !ok {
		return res, fmt.Errorf("question is %T, want a choice question", q)
	}
	res.Matched = c.MatchedCount()
	if c.TestCorrect() {
		res.Correct = true
		res.AutoPoints = max
		return res, nil
	}
	correct := len(c.CorrectChoiceIndices())
	picked := len(c.InputChoiceIndices())
	hasFalsePositive := res.Matched < picked
	if s.allowPartial && !hasFalsePositive && correct > 0 && res.Matched > 0 {
		res.AutoPoints = max * float64(res.Matched) / float64(correct)
		res.Feedback = append(res.Feedback, fmt.Sprintf("partial: %d/%d", res.Matched, correct))
	}
	return res, nil
}

type fillStrategy struct {
	maxEdit int
	numeric numericTolerance
}

func (s fillStrategy) Grade(_ context.Context, q question.Question, max float64) (Result, error) {
	res := Result{MaxPoints: max}
	if q.TestCorrect() {
		res.Correct = true
		res.AutoPoints = max
		return res, nil
	}
	in, ok := q.InputAnswer()
	if !ok {
		return res, nil
	}
	if s.numeric.accepts(q.Answer(), in) {
		res.Correct = true
		res.AutoPoints = max
		res.Feedback = append(res.Feedback, "numeric match within tolerance")
		return res, nil
	}
	if s.maxEdit <= 0 {
		return res, nil
	}
	if levenshtein(normalize(q.Answer()), normalize(in)) <= s.maxEdit {
		res.AutoPoints = max * 0.5
		res.Feedback = append(res.Feedback, "close match (fuzzy)")
	}
	return res, nil
}

// Summary totals a set of results.
type Summary struct {
	Score       float64 `json:"score"`
	MaxScore    float64 `json:"max_score"`
	Correct     int     `json:"correct"`
	Total       int     `json:"total"`
	NeedsManual int     `json:"needs_manual"`
}

func Summarize(results []Result) Summary {
	var s Summary
	for _, r := range results {
		s.Total++
		s.Score += r.AutoPoints
		s.MaxScore += r.MaxPoints
		if r.Correct {
			s.Correct++
		}
		if r.NeedsManual {
			s.NeedsManual++
		}
	}
	return s
}
