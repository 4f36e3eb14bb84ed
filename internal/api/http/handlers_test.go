package http_test

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"

	api "github.com/mind-engage/mindengage-quiz/internal/api/http"
	"github.com/mind-engage/mindengage-quiz/internal/eventlog"
	"github.com/mind-engage/mindengage-quiz/internal/exam"
	"github.com/mind-engage/mindengage-quiz/internal/grading"
	"github.com/mind-engage/mindengage-quiz/internal/logger"
	"github.com/mind-engage/mindengage-quiz/internal/question"
)

func newServer(t *testing.T) *httptest.Server {
	t.Helper()
	grader := grading.NewDefaultGrader()
	svc := exam.NewService(exam.NewInMemoryStore(), grader, logger.Nop())
	r := chi.NewRouter()
	api.Routes(r, api.Deps{Service: svc, Grader: grader})
	srv := httptest.NewServer(r)
	t.Cleanup(srv.Close)
	return srv
}

func do(t *testing.T, method, url string, body any, out any) int {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if s, ok := body.(string); ok {
			buf.WriteString(s)
		} else if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("encode: %v", err)
		}
	}
	req, err := http.NewRequest(method, url, &buf)
	if err != nil {
		t.Fatalf("new request: %v", err)
	}
	req.Header.Set("Content-Type", "application/json")
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("%s %s: %v", method, url, err)
	}
	defer resp.Body.Close()
	if out != nil && resp.StatusCode < 300 {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			t.Fatalf("decode %s %s: %v", method, url, err)
		}
	}
	return resp.StatusCode
}

func str(s string) *string { return &s }

func TestAttemptFlow(t *testing.T) {
	srv := newServer(t)

	var e exam.Exam
	code := do(t, http.MethodPost, srv.URL+"/exams", exam.Exam{
		Title: "HTTP",
		Questions: []question.Record{
			{ID: "q1", Type: question.KindFill, Title: str("Say hi"), Answer: str("hi")},
			{ID: "q2", Type: question.KindTrueFalse, Title: str("Sky is blue"), Choices: []string{"No", "Yes"},
				CorrectChoiceIndices: question.Indices(1)},
		},
	}, &e)
	if code != http.StatusCreated || e.ID == "" {
		t.Fatalf("create exam: %d %+v", code, e)
	}

	var view exam.Exam
	if code := do(t, http.MethodGet, srv.URL+"/exams/"+e.ID, nil, &view); code != http.StatusOK {
		t.Fatalf("get exam: %d", code)
	}
	if view.Questions[0].Answer != nil || view.Questions[1].CorrectChoiceIndices != nil {
		t.Fatal("student view leaked answers")
	}

	var a exam.Attempt
	if code := do(t, http.MethodPost, srv.URL+"/attempts", map[string]string{"exam_id": e.ID, "user_id": "u1"}, &a); code != http.StatusCreated {
		t.Fatalf("create attempt: %d", code)
	}
	code = do(t, http.MethodPost, srv.URL+"/attempts/"+a.ID+"/responses",
		`{"q1": {"inputAnswer": "hi "}, "q2": {"inputChoiceIndices": [1]}}`, &a)
	if code != http.StatusOK || len(a.Responses) != 2 {
		t.Fatalf("save: %d %+v", code, a)
	}

	var review struct {
		Attempt exam.Attempt    `json:"attempt"`
		Summary grading.Summary `json:"summary"`
	}
	if code := do(t, http.MethodGet, srv.URL+"/attempts/"+a.ID+"/review", nil, &review); code != http.StatusOK {
		t.Fatalf("review: %d", code)
	}
	if review.Summary.Correct != 2 || review.Attempt.Status != exam.StatusInProgress {
		t.Fatalf("review = %+v", review)
	}

	var submitted struct {
		Attempt exam.Attempt     `json:"attempt"`
		Results []grading.Result `json:"results"`
	}
	if code := do(t, http.MethodPost, srv.URL+"/attempts/"+a.ID+"/submit", nil, &submitted); code != http.StatusOK {
		t.Fatalf("submit: %d", code)
	}
	if submitted.Attempt.Score != 2 || len(submitted.Results) != 2 {
		t.Fatalf("submit = %+v", submitted)
	}

	if code := do(t, http.MethodPost, srv.URL+"/attempts/"+a.ID+"/responses", `{"q1": {}}`, nil); code != http.StatusConflict {
		t.Fatalf("save after submit: %d, want 409", code)
	}
	var got exam.Attempt
	if code := do(t, http.MethodGet, srv.URL+"/attempts/"+a.ID, nil, &got); code != http.StatusOK || got.Status != exam.StatusSubmitted {
		t.Fatalf("get attempt: %d %+v", code, got)
	}
}

func TestErrorStatuses(t *testing.T) {
	srv := newServer(t)
	cases := []struct {
		name   string
		method string
		path   string
		body   any
		want   int
	}{
		{"missing exam", http.MethodGet, "/exams/nope", nil, http.StatusNotFound},
		{"missing attempt", http.MethodGet, "/attempts/nope", nil, http.StatusNotFound},
		{"attempt for missing exam", http.MethodPost, "/attempts", map[string]string{"exam_id": "x", "user_id": "u"}, http.StatusNotFound},
		{"attempt without user", http.MethodPost, "/attempts", map[string]string{"exam_id": "x"}, http.StatusBadRequest},
		{"bad json", http.MethodPost, "/exams", "{", http.StatusBadRequest},
		{"no questions", http.MethodPost, "/exams", `{"title": "x"}`, http.StatusBadRequest},
		{"missing title", http.MethodPost, "/exams", `{"questions": [{"type": 3}]}`, http.StatusBadRequest},
		{"submit missing", http.MethodPost, "/attempts/nope/submit", nil, http.StatusNotFound},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := do(t, tc.method, srv.URL+tc.path, tc.body, nil); got != tc.want {
				t.Fatalf("status = %d, want %d", got, tc.want)
			}
		})
	}
}

func TestCheck(t *testing.T) {
	srv := newServer(t)
	var out struct {
		Kind        question.Kind   `json:"kind"`
		Correct     bool            `json:"correct"`
		Answer      string          `json:"answer"`
		InputAnswer *string         `json:"inputAnswer"`
		Record      question.Record `json:"record"`
		Result      grading.Result  `json:"result"`
	}
	code := do(t, http.MethodPost, srv.URL+"/check",
		`{"type": 2, "title": "Pick", "choices": ["a", "b", "c"], "correctChoiceIndices": [0, 2], "inputAnswer": "CA"}`, &out)
	if code != http.StatusOK {
		t.Fatalf("check: %d", code)
	}
	if out.Kind != question.KindMultipleChoice || !out.Correct || out.Answer != "13" {
		t.Fatalf("check = %+v", out)
	}
	if out.InputAnswer == nil || *out.InputAnswer != "31" {
		t.Fatalf("inputAnswer = %v", out.InputAnswer)
	}
	if out.Result.AutoPoints != 1 || *out.Record.Answer != "13" {
		t.Fatalf("result = %+v record = %+v", out.Result, out.Record)
	}

	if code := do(t, http.MethodPost, srv.URL+"/check", `{"type": 1}`, nil); code != http.StatusBadRequest {
		t.Fatalf("check without title: %d", code)
	}
	if code := do(t, http.MethodPost, srv.URL+"/check", `{"type": "x"}`, nil); code != http.StatusBadRequest {
		t.Fatalf("check bad json: %d", code)
	}
}

type stubEvents map[string][]eventlog.Entry

func (s stubEvents) List(_ context.Context, attemptID string) ([]eventlog.Entry, error) {
	return s[attemptID], nil
}

func TestAttemptEvents(t *testing.T) {
	grader := grading.NewDefaultGrader()
	svc := exam.NewService(exam.NewInMemoryStore(), grader, logger.Nop())
	ctx := context.Background()
	e, err := svc.PutExam(ctx, exam.Exam{Questions: []question.Record{{Title: str("Q")}}})
	if err != nil {
		t.Fatalf("PutExam: %v", err)
	}
	a, err := svc.Start(ctx, e.ID, "u1")
	if err != nil {
		t.Fatalf("Start: %v", err)
	}

	events := stubEvents{a.ID: {{Seq: 1, AttemptID: a.ID, Type: exam.EventAttemptStarted, Data: json.RawMessage(`{}`)}}}
	r := chi.NewRouter()
	api.Routes(r, api.Deps{Service: svc, Grader: grader, Events: events})
	srv := httptest.NewServer(r)
	defer srv.Close()

	var list []eventlog.Entry
	if code := do(t, http.MethodGet, srv.URL+"/attempts/"+a.ID+"/events", nil, &list); code != http.StatusOK {
		t.Fatalf("events: %d", code)
	}
	if len(list) != 1 || list[0].Type != exam.EventAttemptStarted {
		t.Fatalf("events = %+v", list)
	}
	if code := do(t, http.MethodGet, srv.URL+"/attempts/nope/events", nil, nil); code != http.StatusNotFound {
		t.Fatalf("events for missing attempt: %d", code)
	}
}
