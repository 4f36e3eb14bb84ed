package exam

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// SQLStore keeps exams and attempts in the tables created by db.Open. Question
// records and responses are stored as JSON text.
type SQLStore struct {
	db *sql.DB
}

func NewSQLStore(db *sql.DB) *SQLStore {
	return &SQLStore{db: db}
}

func (s *SQLStore) PutExam(ctx context.Context, e Exam) error {
	qj, err := json.Marshal(e.Questions)
	if err != nil {
		return err
	}
	created := e.CreatedAt
	if created == 0 {
		created = time.Now().Unix()
	}
	_, err = s.db.ExecContext(ctx, `INSERT INTO exams (id,title,time_limit_sec,questions_json,created_at)
		VALUES ($1,$2,$3,$4,$5)
		ON CONFLICT (id) DO UPDATE SET title=EXCLUDED.title, time_limit_sec=EXCLUDED.time_limit_sec, questions_json=EXCLUDED.questions_json`,
		e.ID, e.Title, e.TimeLimitSec, string(qj), created)
	return err
}

func (s *SQLStore) GetExam(ctx context.Context, id string) (Exam, error) {
	row := s.db.QueryRowContext(ctx, `SELECT id,title,time_limit_sec,questions_json,created_at FROM exams WHERE id=$1`, id)
	var e Exam
	var qjson string
	if err := row.Scan(&e.ID, &e.Title, &e.TimeLimitSec, &qjson, &e.CreatedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Exam{}, ErrExamNotFound
		}
		return Exam{}, err
	}
	if err := json.Unmarshal([]byte(qjson), &e.Questions); err != nil {
		return Exam{}, fmt.Errorf("decode questions of exam %s: %w", id, err)
	}
	return e, nil
}

func (s *SQLStore) NewAttempt(ctx context.Context, examID, userID string) (Attempt, error) {
	var exist int
	if err := s.db.QueryRowContext(ctx, `SELECT 1 FROM exams WHERE id=$1`, examID).Scan(&exist); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Attempt{}, ErrExamNotFound
		}
		return Attempt{}, err
	}
	a := Attempt{
		ID:        uuid.NewString(),
		ExamID:    examID,
		UserID:    userID,
		Status:    StatusInProgress,
		Responses: map[string]Response{},
		StartedAt: time.Now().Unix(),
	}
	_, err := s.db.ExecContext(ctx, `INSERT INTO attempts (id,exam_id,user_id,status,score,responses_json,started_at)
		VALUES ($1,$2,$3,$4,0,'{}',$5)`,
		a.ID, a.ExamID, a.UserID, a.Status, a.StartedAt)
	if err != nil {
		return Attempt{}, err
	}
	return a, nil
}

func (s *SQLStore) SaveResponses(ctx context.Context, attemptID string, resp map[string]Response) (Attempt, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return Attempt{}, err
	}
	defer tx.Rollback()

	a, err := scanAttempt(tx.QueryRowContext(ctx, attemptQuery, attemptID))
	if err != nil {
		return Attempt{}, err
	}
	if a.Status == StatusSubmitted {
		return Attempt{}, ErrAttemptSubmitted
	}
	for k, v := range resp {
		a.Responses[k] = v
	}
	buf, err := json.Marshal(a.Responses)
	if err != nil {
		return Attempt{}, err
	}
	res, err := tx.ExecContext(ctx, `UPDATE attempts SET responses_json=$1 WHERE id=$2 AND status<>$3`,
		string(buf), attemptID, StatusSubmitted)
	if err != nil {
		return Attempt{}, err
	}
	if n, err := res.RowsAffected(); err != nil {
		return Attempt{}, err
	} else if n == 0 {
		return Attempt{}, ErrAttemptSubmitted
	}
	if err := tx.Commit(); err != nil {
		return Attempt{}, err
	}
	return a, nil
}

// Finalize claims the attempt with a guarded status update before reading
// the responses it scores, so concurrent submits and saves see it as
// submitted once the claim holds.
func (s *SQLStore) Finalize(ctx context.Context, attemptID string, score ScoreFunc) (Attempt, bool, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return Attempt{}, false, err
	}
	defer tx.Rollback()

	now := time.Now().Unix()
	res, err := tx.ExecContext(ctx,
		`UPDATE attempts SET status=$1, submitted_at=$2 WHERE id=$3 AND status<>$1`,
		StatusSubmitted, now, attemptID)
	if err != nil {
		return Attempt{}, false, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return Attempt{}, false, err
	}
	if n == 0 {
		if err := tx.Rollback(); err != nil {
			return Attempt{}, false, err
		}
		a, err := s.GetAttempt(ctx, attemptID)
		return a, false, err
	}

	a, err := scanAttempt(tx.QueryRowContext(ctx, attemptQuery, attemptID))
	if err != nil {
		return Attempt{}, false, err
	}
	v, err := score(a)
	if err != nil {
		return Attempt{}, false, err
	}
	if _, err := tx.ExecContext(ctx, `UPDATE attempts SET score=$1 WHERE id=$2`, v, attemptID); err != nil {
		return Attempt{}, false, err
	}
	if err := tx.Commit(); err != nil {
		return Attempt{}, false, err
	}
	a.Score = v
	return a, true, nil
}

func (s *SQLStore) GetAttempt(ctx context.Context, id string) (Attempt, error) {
	return scanAttempt(s.db.QueryRowContext(ctx, attemptQuery, id))
}

const attemptQuery = `SELECT id,exam_id,user_id,status,score,responses_json,started_at,submitted_at FROM attempts WHERE id=$1`

func scanAttempt(row *sql.Row) (Attempt, error) {
	var a Attempt
	var rjson string
	var submitted sql.NullInt64
	if err := row.Scan(&a.ID, &a.ExamID, &a.UserID, &a.Status, &a.Score, &rjson, &a.StartedAt, &submitted); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Attempt{}, ErrAttemptNotFound
		}
		return Attempt{}, err
	}
	a.SubmittedAt = submitted.Int64
	if err := json.Unmarshal([]byte(rjson), &a.Responses); err != nil {
		return Attempt{}, fmt.Errorf("decode responses of attempt %s: %w", a.ID, err)
	}
	if a.Responses == nil {
		a.Responses = map[string]Response{}
	}
	return a, nil
}
