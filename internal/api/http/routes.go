package http

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/mind-engage/mindengage-quiz/internal/eventlog"
	"github.com/mind-engage/mindengage-quiz/internal/exam"
	"github.com/mind-engage/mindengage-quiz/internal/grading"
	"github.com/mind-engage/mindengage-quiz/internal/question"
)

// EventLister lists an attempt's recorded events.
type EventLister interface {
	List(ctx context.Context, attemptID string) ([]eventlog.Entry, error)
}

type Deps struct {
	Service            *exam.Service
	Grader             grading.Grader
	ReconstructOptions []question.ReconstructOption
	Events             EventLister // optional
}

// Routes registers the quiz API on r.
func Routes(r chi.Router, d Deps) {
	r.Post("/exams", CreateExamHandler(d.Service))
	r.Get("/exams/{examID}", GetExamHandler(d.Service))

	r.Post("/attempts", CreateAttemptHandler(d.Service))
	r.Get("/attempts/{attemptID}", GetAttemptHandler(d.Service))
	r.Post("/attempts/{attemptID}/responses", SaveResponsesHandler(d.Service))
	r.Post("/attempts/{attemptID}/submit", SubmitAttemptHandler(d.Service))
	r.Get("/attempts/{attemptID}/review", ReviewAttemptHandler(d.Service))
	if d.Events != nil {
		r.Get("/attempts/{attemptID}/events", AttemptEventsHandler(d.Service, d.Events))
	}

	r.Post("/check", CheckHandler(d.Grader, d.ReconstructOptions...))

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(200) })
}
