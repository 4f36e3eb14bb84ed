package eventlog_test

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/google/uuid"

	"github.com/mind-engage/mindengage-quiz/internal/db"
	"github.com/mind-engage/mindengage-quiz/internal/eventlog"
	"github.com/mind-engage/mindengage-quiz/internal/exam"
	"github.com/mind-engage/mindengage-quiz/internal/grading"
	"github.com/mind-engage/mindengage-quiz/internal/logger"
	"github.com/mind-engage/mindengage-quiz/internal/question"
)

func TestAttemptEvents(t *testing.T) {
	ctx := context.Background()
	conn, err := db.Open(ctx, db.DriverSQLite, "file:"+uuid.NewString()+"?mode=memory&cache=shared")
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	t.Cleanup(func() { conn.Close() })

	repo := eventlog.NewRepo(conn)
	svc := exam.NewService(exam.NewSQLStore(conn), grading.NewDefaultGrader(), logger.Nop(), exam.WithEventSink(repo))

	title, answer := "Two plus two?", "4"
	e, err := svc.PutExam(ctx, exam.Exam{Title: "Events", Questions: []question.Record{
		{ID: "q1", Type: question.KindFill, Title: &title, Answer: &answer},
	}})
	if err != nil {
		t.Fatalf("PutExam: %v", err)
	}
	a, err := svc.Start(ctx, e.ID, "u1")
	if err != nil {
		t.Fatalf("Start: %v", err)
	}
	in := "4"
	if _, err := svc.Save(ctx, a.ID, map[string]exam.Response{"q1": {InputAnswer: &in}}); err != nil {
		t.Fatalf("Save: %v", err)
	}
	if _, _, err := svc.Submit(ctx, a.ID); err != nil {
		t.Fatalf("Submit: %v", err)
	}

	list, err := repo.List(ctx, a.ID)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	want := []string{exam.EventAttemptStarted, exam.EventAttemptSaved, exam.EventAttemptSubmitted}
	if len(list) != len(want) {
		t.Fatalf("got %d events, want %d", len(list), len(want))
	}
	for i, ev := range list {
		if ev.Type != want[i] || ev.AttemptID != a.ID {
			t.Errorf("event %d = %s/%s", i, ev.Type, ev.AttemptID)
		}
		if i > 0 && ev.Seq <= list[i-1].Seq {
			t.Errorf("events out of order: %d after %d", ev.Seq, list[i-1].Seq)
		}
	}

	var sum grading.Summary
	if err := json.Unmarshal(list[2].Data, &sum); err != nil {
		t.Fatalf("decode summary: %v", err)
	}
	if sum.Score != 1 || sum.Correct != 1 {
		t.Fatalf("summary = %+v", sum)
	}

	other, err := repo.List(ctx, "nobody")
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(other) != 0 {
		t.Fatalf("unexpected events %+v", other)
	}
}
