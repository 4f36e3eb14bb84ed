package http

import (
	"io"
	"net/http"

	"github.com/mind-engage/mindengage-quiz/internal/grading"
	"github.com/mind-engage/mindengage-quiz/internal/question"
)

type checkResponse struct {
	Kind        question.Kind   `json:"kind"`
	Correct     bool            `json:"correct"`
	Answer      string          `json:"answer"`
	InputAnswer *string         `json:"inputAnswer"`
	Record      question.Record `json:"record"`
	Result      grading.Result  `json:"result"`
}

// POST /check
// Grades a single question record carrying its own input. Nothing is stored.
func CheckHandler(grader grading.Grader, opts ...question.ReconstructOption) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		body, err := io.ReadAll(io.LimitReader(r.Body, 1<<20))
		if err != nil {
			http.Error(w, "read body", http.StatusBadRequest)
			return
		}
		rec, err := question.ParseRecord(body)
		if err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		q, err := question.Reconstruct(rec, opts...)
		if err != nil {
			writeError(w, err)
			return
		}
		res, err := grader.Grade(r.Context(), q)
		if err != nil {
			http.Error(w, err.Error(), http.StatusUnprocessableEntity)
			return
		}
		out := checkResponse{
			Kind:    q.Kind(),
			Correct: q.TestCorrect(),
			Answer:  q.Answer(),
			Record:  q.ToRecord(),
			Result:  res,
		}
		if in, ok := q.InputAnswer(); ok {
			out.InputAnswer = &in
		}
		writeJSON(w, http.StatusOK, out)
	}
}
