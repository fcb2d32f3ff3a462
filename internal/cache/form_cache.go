package cache

import (
	"context"
	"encoding/json"
	"time"

	"github.com/redis/go-redis/v9"

	"campusforms/internal/model"
)

// FormCache caches normalized form schemas. Schemas are immutable for the
// duration of a fill session, so a short TTL plus invalidation on staff
// updates is enough. Group availability is never cached here, it is a live
// read every time.
type FormCache interface {
	Set(ctx context.Context, form *model.Form) error
	Get(ctx context.Context, id string) (*model.Form, error)
	Invalidate(ctx context.Context, id string) error
}

type formCache struct {
	client *redis.Client
	ttl    time.Duration
}

// NewFormCache creates a new form schema cache
func NewFormCache(client *redis.Client) FormCache {
	return &formCache{
		client: client,
		ttl:    10 * time.Minute,
	}
}

func (c *formCache) Set(ctx context.Context, form *model.Form) error {
	data, err := json.Marshal(form)
	if err != nil {
		return err
	}
	return c.client.Set(ctx, "form:"+form.ID, data, c.ttl).Err()
}

func (c *formCache) Get(ctx context.Context, id string) (*model.Form, error) {
	data, err := c.client.Get(ctx, "form:"+id).Result()
	if err == redis.Nil {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	var form model.Form
	if err := json.Unmarshal([]byte(data), &form); err != nil {
		return nil, err
	}
	return &form, nil
}

func (c *formCache) Invalidate(ctx context.Context, id string) error {
	return c.client.Del(ctx, "form:"+id).Err()
}
