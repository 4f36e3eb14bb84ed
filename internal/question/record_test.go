package question_test

import (
	"encoding/json"
	"errors"
	"slices"
	"testing"

	"github.com/mind-engage/mindengage-quiz/internal/question"
)

func str(s string) *string { return &s }

func TestReconstructSingleChoice(t *testing.T) {
	q, err := question.Reconstruct(question.Record{
		Type:                 question.KindSingleChoice,
		Title:                str("Q"),
		Choices:              []string{"A", "B"},
		CorrectChoiceIndices: question.Indices(0),
	})
	if err != nil {
		t.Fatalf("Reconstruct: %v", err)
	}
	sc, ok := q.(*question.SingleChoice)
	if !ok {
		t.Fatalf("got %T, want *question.SingleChoice", q)
	}
	if i, ok := sc.CorrectChoiceIndex(); !ok || i != 0 {
		t.Fatalf("CorrectChoiceIndex = %d %v", i, ok)
	}
	if _, ok := sc.InputChoiceIndex(); ok {
		t.Fatal("input should be unset")
	}
}

func TestReconstructDispatch(t *testing.T) {
	cases := []struct {
		kind question.Kind
		opts []question.ReconstructOption
		want question.Kind
	}{
		{question.KindSingleChoice, nil, question.KindSingleChoice},
		{question.KindMultipleChoice, nil, question.KindMultipleChoice},
		{question.KindFill, nil, question.KindFill},
		{question.KindTrueFalse, nil, question.KindTrueFalse},
		{question.KindGeneric, nil, question.KindFill},
		{question.KindOther, nil, question.KindFill},
		{question.Kind(99), nil, question.KindFill},
		{question.KindTrueFalseLegacy, []question.ReconstructOption{question.WithLegacyTrueFalse()}, question.KindTrueFalse},
	}
	for _, tc := range cases {
		q, err := question.Reconstruct(question.Record{Type: tc.kind, Title: str("Q")}, tc.opts...)
		if err != nil {
			t.Fatalf("Reconstruct(%v): %v", tc.kind, err)
		}
		if q.Kind() != tc.want {
			t.Errorf("Reconstruct(%v).Kind() = %v, want %v", tc.kind, q.Kind(), tc.want)
		}
	}
}

func TestReconstructMissingTitle(t *testing.T) {
	_, err := question.Reconstruct(question.Record{Type: question.KindFill})
	if !errors.Is(err, question.ErrMissingTitle) {
		t.Fatalf("err = %v, want ErrMissingTitle", err)
	}
}

func TestReconstructCopiesMetadata(t *testing.T) {
	score := 3.0
	q, err := question.Reconstruct(question.Record{
		Type:                 question.KindMultipleChoice,
		Title:                str("Q"),
		Tag:                  str("math"),
		ID:                   "q-7",
		Choices:              []string{"A", "B", "C"},
		CorrectChoiceIndices: question.Indices(0, 2),
		InputChoiceIndices:   question.Indices(2, 0),
		ImageURLs:            []string{"fig.png"},
		Score:                &score,
		RenderSequence:       []int{2, 0, 1},
	})
	if err != nil {
		t.Fatalf("Reconstruct: %v", err)
	}
	mc := q.(*question.MultipleChoice)
	if mc.ID() != "q-7" {
		t.Errorf("ID = %q", mc.ID())
	}
	if tag, _ := mc.Tag(); tag != "math" {
		t.Errorf("Tag = %q", tag)
	}
	if !slices.Equal(mc.ImageURLs(), []string{"fig.png"}) {
		t.Errorf("ImageURLs = %v", mc.ImageURLs())
	}
	if s, ok := mc.Score(); !ok || s != 3 {
		t.Errorf("Score = %v %v", s, ok)
	}
	if !slices.Equal(mc.RenderSequence(), []int{2, 0, 1}) {
		t.Errorf("RenderSequence = %v", mc.RenderSequence())
	}
	if !slices.Equal(mc.InputChoiceIndices(), []int{2, 0}) {
		t.Errorf("InputChoiceIndices = %v", mc.InputChoiceIndices())
	}
	if !mc.TestCorrect() {
		t.Error("restored input should be correct")
	}
}

func TestReconstructIgnoresRenderSequenceForFill(t *testing.T) {
	q, err := question.Reconstruct(question.Record{
		Type:           question.KindFill,
		Title:          str("Q"),
		Answer:         str("x"),
		InputAnswer:    str(" x "),
		RenderSequence: []int{1, 0},
	})
	if err != nil {
		t.Fatalf("Reconstruct: %v", err)
	}
	if _, ok := q.(question.Choice); ok {
		t.Fatal("fill question should not be a choice question")
	}
	if !q.TestCorrect() {
		t.Fatal("restored fill input should be correct")
	}
}

func TestReconstructTrueFalse(t *testing.T) {
	one, zero := 1, 0
	cases := []struct {
		name    string
		correct []*int
		input   []*int
		want    question.Truth
		wantIn  question.Truth
	}{
		{"true", []*int{&one}, []*int{&one}, question.TruthTrue, question.TruthTrue},
		{"false", []*int{&zero}, nil, question.TruthFalse, question.TruthNull},
		{"null entry", []*int{nil}, []*int{nil}, question.TruthNull, question.TruthNull},
		{"missing", nil, nil, question.TruthNull, question.TruthNull},
		{"empty", []*int{}, []*int{}, question.TruthNull, question.TruthNull},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			q, err := question.Reconstruct(question.Record{
				Type:                 question.KindTrueFalse,
				Title:                str("Q"),
				Choices:              []string{"No", "Yes"},
				CorrectChoiceIndices: tc.correct,
				InputChoiceIndices:   tc.input,
			})
			if err != nil {
				t.Fatalf("Reconstruct: %v", err)
			}
			tf := q.(*question.TrueFalse)
			if tf.CorrectOption() != tc.want {
				t.Errorf("CorrectOption = %v, want %v", tf.CorrectOption(), tc.want)
			}
			if tf.InputOption() != tc.wantIn {
				t.Errorf("InputOption = %v, want %v", tf.InputOption(), tc.wantIn)
			}
			if tf.TrueTitle() != "Yes" || tf.FalseTitle() != "No" {
				t.Errorf("titles = %q/%q", tf.TrueTitle(), tf.FalseTitle())
			}
		})
	}
}

func TestReconstructFromJSON(t *testing.T) {
	rec, err := question.ParseRecord([]byte(`{
		"type": 4,
		"title": "Is Go garbage collected?",
		"choices": ["No", "Yes"],
		"correctChoiceIndices": [1],
		"inputChoiceIndices": [null],
		"tag": null
	}`))
	if err != nil {
		t.Fatalf("ParseRecord: %v", err)
	}
	q, err := question.Reconstruct(rec)
	if err != nil {
		t.Fatalf("Reconstruct: %v", err)
	}
	tf := q.(*question.TrueFalse)
	if tf.InputOption() != question.TruthNull {
		t.Fatalf("null entry decoded as %v", tf.InputOption())
	}
	if tf.TestCorrect() {
		t.Fatal("null input must not be correct")
	}
	if _, ok := tf.Tag(); ok {
		t.Fatal("null tag should stay absent")
	}

	if _, err := question.ParseRecord([]byte(`{"type": "x"}`)); err == nil {
		t.Fatal("expected decode error")
	}
}

func TestToRecordProjection(t *testing.T) {
	q := question.NewMultipleChoice("Q", []string{"A", "B", "C"}, []int{0, 2},
		question.WithID("id"), question.WithScore(4), question.WithImageURLs("x.png"))
	q.SetInputChoiceIndices([]int{2})

	rec := q.ToRecord()
	if rec.Type != question.KindMultipleChoice {
		t.Fatalf("Type = %v", rec.Type)
	}
	if *rec.Answer != "13" || *rec.InputAnswer != "3" {
		t.Fatalf("answer/input = %q/%q", *rec.Answer, *rec.InputAnswer)
	}
	if rec.Tag != nil {
		t.Fatal("tag should be null")
	}
	if rec.ID != "" || rec.Score != nil || rec.ImageURLs != nil || rec.Choices != nil {
		t.Fatalf("projection leaked reconstruction-only fields: %+v", rec)
	}

	raw, err := json.Marshal(rec)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	var m map[string]any
	if err := json.Unmarshal(raw, &m); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	for _, k := range []string{"type", "title", "answer", "inputAnswer", "tag"} {
		if _, ok := m[k]; !ok {
			t.Errorf("key %q missing from %s", k, raw)
		}
	}
	if len(m) != 5 {
		t.Errorf("unexpected keys in %s", raw)
	}
}

func TestProjectionRoundTrip(t *testing.T) {
	qs := []question.Question{
		question.NewFill("Fill", "Go for a trip.", question.WithTag("english")),
		question.NewSingleChoice("Single", []string{"A", "B", "C"}, 2),
		question.NewMultipleChoice("Multi", []string{"A", "B", "C", "D", "E"}, []int{0, 2, 3}, question.WithTag("set")),
		question.NewTrueFalse("TF", "Yes", "No", question.TruthTrue),
		question.NewTrueFalse("TF null", "Yes", "No", question.TruthNull),
	}
	for _, q := range qs {
		t.Run(q.Title(), func(t *testing.T) {
			q.SetInputAnswer("2")
			raw, err := json.Marshal(q.ToRecord())
			if err != nil {
				t.Fatalf("marshal: %v", err)
			}
			rec, err := question.ParseRecord(raw)
			if err != nil {
				t.Fatalf("ParseRecord: %v", err)
			}
			got, err := question.Reconstruct(rec)
			if err != nil {
				t.Fatalf("Reconstruct: %v", err)
			}
			if got.Kind() != q.Kind() {
				t.Errorf("Kind = %v, want %v", got.Kind(), q.Kind())
			}
			if got.Title() != q.Title() {
				t.Errorf("Title = %q, want %q", got.Title(), q.Title())
			}
			gt, gok := got.Tag()
			wt, wok := q.Tag()
			if gt != wt || gok != wok {
				t.Errorf("Tag = %q %v, want %q %v", gt, gok, wt, wok)
			}
			if got.Answer() != q.Answer() {
				t.Errorf("Answer = %q, want %q", got.Answer(), q.Answer())
			}
			gi, _ := got.InputAnswer()
			wi, _ := q.InputAnswer()
			if gi != wi {
				t.Errorf("InputAnswer = %q, want %q", gi, wi)
			}
			if got.TestCorrect() != q.TestCorrect() {
				t.Errorf("TestCorrect = %v, want %v", got.TestCorrect(), q.TestCorrect())
			}
		})
	}
}

func TestProjectionRoundTripEmptyPick(t *testing.T) {
	q := question.NewMultipleChoice("None apply", []string{"A", "B"}, nil)
	q.SetInputChoiceIndices([]int{})
	rec := q.ToRecord()
	if rec.InputAnswer == nil || *rec.InputAnswer != "" {
		t.Fatalf("empty pick projected to %v", rec.InputAnswer)
	}
	got, err := question.Reconstruct(rec)
	if err != nil {
		t.Fatalf("Reconstruct: %v", err)
	}
	if !got.TestCorrect() {
		t.Fatal("empty pick lost in round trip")
	}
	if idx := got.(*question.MultipleChoice).InputChoiceIndices(); idx == nil || len(idx) != 0 {
		t.Fatalf("InputChoiceIndices = %v", idx)
	}
}
