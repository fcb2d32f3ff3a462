package cache

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"

	"campusforms/internal/model"
)

// ErrStaleSession is returned when a save loses against a concurrent update
// of the same session (the handler was working off an outdated snapshot).
var ErrStaleSession = errors.New("session was modified concurrently")

// SessionCache handles Redis operations for in-progress fill sessions
type SessionCache interface {
	Set(ctx context.Context, session *model.FillSession) error
	Get(ctx context.Context, formID, studentEmail string) (*model.FillSession, error)
	// Save persists the session only if its stored version still matches
	// expectedVersion, bumping the version on success.
	Save(ctx context.Context, session *model.FillSession, expectedVersion int64) error
	Delete(ctx context.Context, formID, studentEmail string) error
}

type sessionCache struct {
	client *redis.Client
	ttl    time.Duration
}

// NewSessionCache creates a new fill-session cache
func NewSessionCache(client *redis.Client) SessionCache {
	return &sessionCache{
		client: client,
		ttl:    24 * time.Hour,
	}
}

func sessionKey(formID, studentEmail string) string {
	return "fill:" + formID + ":" + studentEmail
}

func (c *sessionCache) Set(ctx context.Context, session *model.FillSession) error {
	data, err := json.Marshal(session)
	if err != nil {
		return err
	}
	return c.client.Set(ctx, sessionKey(session.FormID, session.StudentEmail), data, c.ttl).Err()
}

func (c *sessionCache) Get(ctx context.Context, formID, studentEmail string) (*model.FillSession, error) {
	data, err := c.client.Get(ctx, sessionKey(formID, studentEmail)).Result()
	if err == redis.Nil {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	var session model.FillSession
	if err := json.Unmarshal([]byte(data), &session); err != nil {
		return nil, err
	}
	return &session, nil
}

func (c *sessionCache) Save(ctx context.Context, session *model.FillSession, expectedVersion int64) error {
	key := sessionKey(session.FormID, session.StudentEmail)

	txn := func(tx *redis.Tx) error {
		data, err := tx.Get(ctx, key).Result()
		if err != nil && err != redis.Nil {
			return err
		}
		if err == nil {
			var stored model.FillSession
			if jsonErr := json.Unmarshal([]byte(data), &stored); jsonErr == nil && stored.Version != expectedVersion {
				return ErrStaleSession
			}
		}
		session.Version = expectedVersion + 1
		payload, err := json.Marshal(session)
		if err != nil {
			return err
		}
		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Set(ctx, key, payload, c.ttl)
			return nil
		})
		return err
	}

	err := c.client.Watch(ctx, txn, key)
	if err == redis.TxFailedErr {
		return ErrStaleSession
	}
	return err
}

func (c *sessionCache) Delete(ctx context.Context, formID, studentEmail string) error {
	return c.client.Del(ctx, sessionKey(formID, studentEmail)).Err()
}
