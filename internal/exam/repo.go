package exam

import "context"

// ScoreFunc scores the attempt exactly as it is being finalized.
type ScoreFunc func(Attempt) (float64, error)

// Store persists exams and attempts. Grading happens in Service; a store only
// records the outcome.
type Store interface {
	PutExam(ctx context.Context, e Exam) error
	GetExam(ctx context.Context, id string) (Exam, error) // full exam, answers included
	NewAttempt(ctx context.Context, examID, userID string) (Attempt, error)
	SaveResponses(ctx context.Context, attemptID string, resp map[string]Response) (Attempt, error)
	// Finalize marks the attempt submitted with the score computed by score
	// over its frozen responses. done is false when another call submitted it
	// first; the stored attempt is returned unchanged and score is not run.
	// score must not call back into the store.
	Finalize(ctx context.Context, attemptID string, score ScoreFunc) (a Attempt, done bool, err error)
	GetAttempt(ctx context.Context, id string) (Attempt, error)
}
