package exam

import (
	"context"
	"errors"
	"fmt"
	"slices"

	"github.com/google/uuid"

	"github.com/mind-engage/mindengage-quiz/internal/grading"
	"github.com/mind-engage/mindengage-quiz/internal/logger"
	"github.com/mind-engage/mindengage-quiz/internal/question"
)

// GradeObserver is told about every graded question.
type GradeObserver func(grading.Result)

const (
	EventAttemptStarted   = "attempt.started"
	EventAttemptSaved     = "attempt.saved"
	EventAttemptSubmitted = "attempt.submitted"
)

// Event describes an attempt transition. Data is JSON encoded by the sink.
type Event struct {
	AttemptID string
	Type      string
	Data      any
}

// EventSink records attempt events. A failing sink never fails the operation.
type EventSink interface {
	Append(ctx context.Context, e Event) error
}

// Service runs the attempt flow on top of a Store: restoring saved progress
// into typed questions and grading them on submit.
type Service struct {
	store    Store
	grader   grading.Grader
	log      *logger.Logger
	opts     []question.ReconstructOption
	observer GradeObserver
	events   EventSink
}

type ServiceOption func(*Service)

// WithReconstructOptions is passed through to question.Reconstruct.
func WithReconstructOptions(opts ...question.ReconstructOption) ServiceOption {
	return func(s *Service) { s.opts = append(s.opts, opts...) }
}

func WithGradeObserver(o GradeObserver) ServiceOption {
	return func(s *Service) { s.observer = o }
}

func WithEventSink(sink EventSink) ServiceOption {
	return func(s *Service) { s.events = sink }
}

func NewService(store Store, grader grading.Grader, log *logger.Logger, opts ...ServiceOption) *Service {
	s := &Service{store: store, grader: grader, log: log}
	for _, o := range opts {
		o(s)
	}
	return s
}

// PutExam validates every question record and stores the exam. Questions
// without an id get a fresh one.
func (s *Service) PutExam(ctx context.Context, e Exam) (Exam, error) {
	if e.ID == "" {
		e.ID = uuid.NewString()
	}
	qs := make([]question.Record, len(e.Questions))
	seen := make(map[string]bool, len(e.Questions))
	for i, rec := range e.Questions {
		if rec.ID == "" {
			rec.ID = uuid.NewString()
		}
		if seen[rec.ID] {
			return Exam{}, fmt.Errorf("%w: question %d: duplicate id %q", ErrInvalidExam, i, rec.ID)
		}
		seen[rec.ID] = true
		if _, err := question.Reconstruct(rec, s.opts...); err != nil {
			return Exam{}, fmt.Errorf("%w: question %d: %w", ErrInvalidExam, i, err)
		}
		qs[i] = rec
	}
	e.Questions = qs
	if err := s.store.PutExam(ctx, e); err != nil {
		return Exam{}, fmt.Errorf("put exam %s: %w", e.ID, err)
	}
	s.log.Info("exam stored", "exam_id", e.ID, "questions", len(e.Questions))
	return e, nil
}

// StudentExam returns the exam without answers.
func (s *Service) StudentExam(ctx context.Context, id string) (Exam, error) {
	e, err := s.store.GetExam(ctx, id)
	if err != nil {
		return Exam{}, err
	}
	return studentView(e), nil
}

func (s *Service) Start(ctx context.Context, examID, userID string) (Attempt, error) {
	a, err := s.store.NewAttempt(ctx, examID, userID)
	if err != nil {
		return Attempt{}, err
	}
	s.log.Debug("attempt started", "attempt_id", a.ID, "exam_id", examID)
	s.emit(ctx, Event{AttemptID: a.ID, Type: EventAttemptStarted, Data: map[string]string{"exam_id": examID, "user_id": userID}})
	return a, nil
}

func (s *Service) Attempt(ctx context.Context, id string) (Attempt, error) {
	return s.store.GetAttempt(ctx, id)
}

// Save merges responses into an in-progress attempt. Responses for unknown
// question ids are rejected.
func (s *Service) Save(ctx context.Context, attemptID string, resp map[string]Response) (Attempt, error) {
	a, err := s.store.GetAttempt(ctx, attemptID)
	if err != nil {
		return Attempt{}, err
	}
	e, err := s.store.GetExam(ctx, a.ExamID)
	if err != nil {
		return Attempt{}, err
	}
	known := make(map[string]bool, len(e.Questions))
	for _, rec := range e.Questions {
		known[rec.ID] = true
	}
	for id := range resp {
		if !known[id] {
			return Attempt{}, fmt.Errorf("%w %q", ErrUnknownQuestion, id)
		}
	}
	a, err = s.store.SaveResponses(ctx, attemptID, resp)
	if err != nil {
		return Attempt{}, err
	}
	ids := make([]string, 0, len(resp))
	for id := range resp {
		ids = append(ids, id)
	}
	slices.Sort(ids)
	s.emit(ctx, Event{AttemptID: attemptID, Type: EventAttemptSaved, Data: map[string][]string{"questions": ids}})
	return a, nil
}

// Restore rebuilds the exam's questions with the attempt's saved input.
func (s *Service) Restore(e Exam, a Attempt) ([]question.Question, error) {
	out := make([]question.Question, 0, len(e.Questions))
	for _, rec := range e.Questions {
		if r, ok := a.Responses[rec.ID]; ok {
			rec = withResponse(rec, r)
		} else {
			rec = withResponse(rec, Response{})
		}
		q, err := question.Reconstruct(rec, s.opts...)
		if err != nil {
			return nil, fmt.Errorf("restore question %q: %w", rec.ID, err)
		}
		out = append(out, q)
	}
	return out, nil
}

// Review grades the attempt as it stands without submitting it.
func (s *Service) Review(ctx context.Context, attemptID string) (Attempt, []grading.Result, error) {
	a, err := s.store.GetAttempt(ctx, attemptID)
	if err != nil {
		return Attempt{}, nil, err
	}
	results, err := s.grade(ctx, a)
	if err != nil {
		return Attempt{}, nil, err
	}
	return a, results, nil
}

// Submit grades the attempt and finalizes it. Submitting twice returns the
// stored attempt unchanged; only the call that finalizes it notifies the
// observer and emits attempt.submitted.
func (s *Service) Submit(ctx context.Context, attemptID string) (Attempt, []grading.Result, error) {
	a, err := s.store.GetAttempt(ctx, attemptID)
	if err != nil {
		return Attempt{}, nil, err
	}
	e, err := s.store.GetExam(ctx, a.ExamID)
	if err != nil {
		return Attempt{}, nil, err
	}
	var results []grading.Result
	a, done, err := s.store.Finalize(ctx, attemptID, func(frozen Attempt) (float64, error) {
		r, err := s.gradeExam(ctx, e, frozen)
		if err != nil {
			return 0, err
		}
		results = r
		return grading.Summarize(r).Score, nil
	})
	if err != nil {
		return Attempt{}, nil, fmt.Errorf("finalize attempt %s: %w", attemptID, err)
	}
	if !done {
		results, err = s.gradeExam(ctx, e, a)
		if err != nil {
			return Attempt{}, nil, err
		}
		return a, results, nil
	}
	if s.observer != nil {
		for _, r := range results {
			s.observer(r)
		}
	}
	sum := grading.Summarize(results)
	s.emit(ctx, Event{AttemptID: a.ID, Type: EventAttemptSubmitted, Data: sum})
	s.log.Info("attempt submitted",
		"attempt_id", a.ID, "score", sum.Score, "max_score", sum.MaxScore, "correct", sum.Correct, "total", sum.Total)
	return a, results, nil
}

func (s *Service) grade(ctx context.Context, a Attempt) ([]grading.Result, error) {
	e, err := s.store.GetExam(ctx, a.ExamID)
	if err != nil {
		return nil, err
	}
	return s.gradeExam(ctx, e, a)
}

func (s *Service) gradeExam(ctx context.Context, e Exam, a Attempt) ([]grading.Result, error) {
	qs, err := s.Restore(e, a)
	if err != nil {
		return nil, err
	}
	results := make([]grading.Result, 0, len(qs))
	for _, q := range qs {
		res, err := s.grader.Grade(ctx, q)
		if err != nil {
			// a question that cannot be graded scores zero
			s.log.Warn("grading failed", "attempt_id", a.ID, "question_id", q.ID(), "error", err)
			res = grading.Result{QuestionID: q.ID(), Kind: q.Kind(), NeedsManual: true}
		}
		results = append(results, res)
	}
	return results, nil
}

func (s *Service) emit(ctx context.Context, e Event) {
	if s.events == nil {
		return
	}
	if err := s.events.Append(ctx, e); err != nil {
		s.log.Warn("event append failed", "attempt_id", e.AttemptID, "type", e.Type, "error", err)
	}
}

// IsNotFound reports whether err means a missing exam or attempt.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrExamNotFound) || errors.Is(err, ErrAttemptNotFound)
}
