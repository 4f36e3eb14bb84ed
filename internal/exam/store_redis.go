package exam

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

const (
	examKeyPrefix    = "quiz:exam:"
	attemptKeyPrefix = "quiz:attempt:"
)

// RedisStore keeps exams and attempts as JSON values. Attempt updates run in
// a WATCH transaction and are retried when the key changes underneath.
type RedisStore struct {
	client  *redis.Client
	retries int
}

func NewRedisStore(client *redis.Client) *RedisStore {
	return &RedisStore{client: client, retries: 5}
}

func (s *RedisStore) PutExam(ctx context.Context, e Exam) error {
	if e.CreatedAt == 0 {
		e.CreatedAt = time.Now().Unix()
	}
	data, err := json.Marshal(e)
	if err != nil {
		return err
	}
	return s.client.Set(ctx, examKeyPrefix+e.ID, data, 0).Err()
}

func (s *RedisStore) GetExam(ctx context.Context, id string) (Exam, error) {
	data, err := s.client.Get(ctx, examKeyPrefix+id).Bytes()
	if errors.Is(err, redis.Nil) {
		return Exam{}, ErrExamNotFound
	}
	if err != nil {
		return Exam{}, err
	}
	var e Exam
	if err := json.Unmarshal(data, &e); err != nil {
		return Exam{}, fmt.Errorf("decode exam %s: %w", id, err)
	}
	return e, nil
}

func (s *RedisStore) NewAttempt(ctx context.Context, examID, userID string) (Attempt, error) {
	n, err := s.client.Exists(ctx, examKeyPrefix+examID).Result()
	if err != nil {
		return Attempt{}, err
	}
	if n == 0 {
		return Attempt{}, ErrExamNotFound
	}
	a := Attempt{
		ID:        uuid.NewString(),
		ExamID:    examID,
		UserID:    userID,
		Status:    StatusInProgress,
		Responses: map[string]Response{},
		StartedAt: time.Now().Unix(),
	}
	data, err := json.Marshal(a)
	if err != nil {
		return Attempt{}, err
	}
	if err := s.client.Set(ctx, attemptKeyPrefix+a.ID, data, 0).Err(); err != nil {
		return Attempt{}, err
	}
	return a, nil
}

func (s *RedisStore) SaveResponses(ctx context.Context, attemptID string, resp map[string]Response) (Attempt, error) {
	return s.updateAttempt(ctx, attemptID, func(a *Attempt) (bool, error) {
		if a.Status == StatusSubmitted {
			return false, ErrAttemptSubmitted
		}
		for k, v := range resp {
			a.Responses[k] = v
		}
		return true, nil
	})
}

// Finalize scores inside the WATCH transaction, so a concurrent save makes
// the write fail and the attempt is scored again on retry.
func (s *RedisStore) Finalize(ctx context.Context, attemptID string, score ScoreFunc) (Attempt, bool, error) {
	var done bool
	a, err := s.updateAttempt(ctx, attemptID, func(a *Attempt) (bool, error) {
		done = false
		if a.Status == StatusSubmitted {
			return false, nil
		}
		v, err := score(*a)
		if err != nil {
			return false, err
		}
		a.Status = StatusSubmitted
		a.Score = v
		a.SubmittedAt = time.Now().Unix()
		done = true
		return true, nil
	})
	if err != nil {
		return Attempt{}, false, err
	}
	return a, done, nil
}

func (s *RedisStore) GetAttempt(ctx context.Context, id string) (Attempt, error) {
	return getAttempt(ctx, s.client, id)
}

type redisGetter interface {
	Get(ctx context.Context, key string) *redis.StringCmd
}

func getAttempt(ctx context.Context, c redisGetter, id string) (Attempt, error) {
	data, err := c.Get(ctx, attemptKeyPrefix+id).Bytes()
	if errors.Is(err, redis.Nil) {
		return Attempt{}, ErrAttemptNotFound
	}
	if err != nil {
		return Attempt{}, err
	}
	var a Attempt
	if err := json.Unmarshal(data, &a); err != nil {
		return Attempt{}, fmt.Errorf("decode attempt %s: %w", id, err)
	}
	if a.Responses == nil {
		a.Responses = map[string]Response{}
	}
	return a, nil
}

// updateAttempt applies fn to the stored attempt. fn reports whether the
// attempt changed and must be written back.
func (s *RedisStore) updateAttempt(ctx context.Context, id string, fn func(*Attempt) (bool, error)) (Attempt, error) {
	key := attemptKeyPrefix + id
	var out Attempt
	txf := func(tx *redis.Tx) error {
		a, err := getAttempt(ctx, tx, id)
		if err != nil {
			return err
		}
		changed, err := fn(&a)
		if err != nil {
			return err
		}
		out = a
		if !changed {
			return nil
		}
		data, err := json.Marshal(a)
		if err != nil {
			return err
		}
		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Set(ctx, key, data, 0)
			return nil
		})
		return err
	}
	for i := 0; i < s.retries; i++ {
		err := s.client.Watch(ctx, txf, key)
		if errors.Is(err, redis.TxFailedErr) {
			continue
		}
		if err != nil {
			return Attempt{}, err
		}
		return out, nil
	}
	return Attempt{}, fmt.Errorf("update attempt %s: too much contention", id)
}
