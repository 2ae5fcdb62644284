package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"acadtutor/internal/domain"
	"github.com/redis/go-redis/v9"
)

// SessionStore keeps active quiz sessions in Redis so any instance can serve a user.
// Layout:
//
//	SET acadtutor:session:{sessionID}   JSON(QuizSession)  EX ttl
//	SET acadtutor:session:user:{userID} {sessionID}        EX ttl
type SessionStore struct {
	client *redis.Client
	ttl    time.Duration
}

func NewSessionStore(client *redis.Client, ttl time.Duration) *SessionStore {
	return &SessionStore{client: client, ttl: ttl}
}

// Put stores the session and drops the user's previous session, if any.
func (s *SessionStore) Put(ctx context.Context, session domain.QuizSession) error {
	data, err := json.Marshal(session)
	if err != nil {
		return fmt.Errorf("encode session: %w", err)
	}

	prev, err := s.client.Get(ctx, s.userKey(session.UserID)).Result()
	if err != nil && !errors.Is(err, redis.Nil) {
		return err
	}

	_, err = s.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		if prev != "" && prev != session.ID {
			pipe.Del(ctx, s.key(prev))
		}
		pipe.Set(ctx, s.key(session.ID), data, s.ttl)
		pipe.Set(ctx, s.userKey(session.UserID), session.ID, s.ttl)
		return nil
	})
	return err
}

func (s *SessionStore) Get(ctx context.Context, sessionID string) (domain.QuizSession, error) {
	data, err := s.client.Get(ctx, s.key(sessionID)).Bytes()
	if errors.Is(err, redis.Nil) {
		return domain.QuizSession{}, domain.ErrSessionNotFound
	}
	if err != nil {
		return domain.QuizSession{}, err
	}
	var session domain.QuizSession
	if err := json.Unmarshal(data, &session); err != nil {
		return domain.QuizSession{}, fmt.Errorf("decode session %s: %w", sessionID, err)
	}
	if session.Answers == nil {
		session.Answers = domain.AnswerSet{}
	}
	return session, nil
}

// Take claims the session with GETDEL, so concurrent callers cannot both receive it.
func (s *SessionStore) Take(ctx context.Context, sessionID string) (domain.QuizSession, error) {
	data, err := s.client.GetDel(ctx, s.key(sessionID)).Bytes()
	if errors.Is(err, redis.Nil) {
		return domain.QuizSession{}, domain.ErrSessionNotFound
	}
	if err != nil {
		return domain.QuizSession{}, err
	}
	var session domain.QuizSession
	if err := json.Unmarshal(data, &session); err != nil {
		return domain.QuizSession{}, fmt.Errorf("decode session %s: %w", sessionID, err)
	}
	if session.Answers == nil {
		session.Answers = domain.AnswerSet{}
	}

	owner, err := s.client.Get(ctx, s.userKey(session.UserID)).Result()
	if err != nil && !errors.Is(err, redis.Nil) {
		return session, err
	}
	if owner == sessionID {
		if err := s.client.Del(ctx, s.userKey(session.UserID)).Err(); err != nil {
			return session, err
		}
	}
	return session, nil
}

func (s *SessionStore) key(sessionID string) string {
	return "acadtutor:session:" + sessionID
}

func (s *SessionStore) userKey(userID string) string {
	return "acadtutor:session:user:" + userID
}
