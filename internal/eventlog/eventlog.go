package eventlog

import (
	"context"
	"database/sql"
	"encoding/json"
	"time"

	"github.com/mind-engage/mindengage-quiz/internal/exam"
)

// Entry is a stored attempt event.
type Entry struct {
	Seq       int64           `json:"seq"`
	AttemptID string          `json:"attempt_id"`
	Type      string          `json:"type"`
	Data      json.RawMessage `json:"data"`
	CreatedAt int64           `json:"created_at"`
}

// Repo appends attempt events to the attempt_events table created by db.Open.
type Repo struct{ db *sql.DB }

func NewRepo(db *sql.DB) *Repo { return &Repo{db: db} }

func (r *Repo) Append(ctx context.Context, e exam.Event) error {
	data, err := json.Marshal(e.Data)
	if err != nil {
		return err
	}
	_, err = r.db.ExecContext(ctx,
		`INSERT INTO attempt_events (attempt_id, typ, data, created_at)
		 VALUES ($1,$2,$3,$4)`,
		e.AttemptID, e.Type, string(data), time.Now().Unix())
	return err
}

// List returns the events of one attempt, oldest first.
func (r *Repo) List(ctx context.Context, attemptID string) ([]Entry, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT seq, attempt_id, typ, data, created_at FROM attempt_events WHERE attempt_id=$1 ORDER BY seq`,
		attemptID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []Entry{}
	for rows.Next() {
		var e Entry
		var data string
		if err := rows.Scan(&e.Seq, &e.AttemptID, &e.Type, &data, &e.CreatedAt); err != nil {
			return nil, err
		}
		e.Data = json.RawMessage(data)
		out = append(out, e)
	}
	return out, rows.Err()
}
