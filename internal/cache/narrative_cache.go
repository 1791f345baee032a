// Package cache holds the Redis backend for the narrative cache. It is
// interchangeable with the SQLite one returned by store.Store.NarrativeRepo.
package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/abhisek/sociogram/internal/store"
)

type narrativeCache struct {
	client *redis.Client
	ttl    time.Duration
	logger *slog.Logger
}

// NewNarrativeCache returns a store.NarrativeRepo kept in Redis. Entries
// expire after ttl; zero keeps them forever.
func NewNarrativeCache(client *redis.Client, ttl time.Duration, logger *slog.Logger) store.NarrativeRepo {
	if logger == nil {
		logger = slog.Default()
	}
	return &narrativeCache{client: client, ttl: ttl, logger: logger}
}

func (c *narrativeCache) key(k store.NarrativeKey) string {
	return fmt.Sprintf("sociogram:narrative:%s:%s:%s", k.SurveyID, k.Kind, k.StudentID)
}

func (c *narrativeCache) indexKey(surveyID string) string {
	return fmt.Sprintf("sociogram:narratives:%s", surveyID)
}

func (c *narrativeCache) Get(ctx context.Context, k store.NarrativeKey) (*store.Narrative, error) {
	data, err := c.client.Get(ctx, c.key(k)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	var n store.Narrative
	if err := json.Unmarshal(data, &n); err != nil {
		return nil, fmt.Errorf("decode cached narrative: %w", err)
	}
	return &n, nil
}

func (c *narrativeCache) Put(ctx context.Context, n *store.Narrative) error {
	if n.GeneratedAt.IsZero() {
		n.GeneratedAt = time.Now().UTC()
	}

	entry := *n
	if entry.Annotation == "" {
		prev, err := c.Get(ctx, n.NarrativeKey)
		if err != nil {
			return err
		}
		if prev != nil {
			entry.Annotation = prev.Annotation
		}
	}
	return c.write(ctx, &entry)
}

func (c *narrativeCache) Annotate(ctx context.Context, k store.NarrativeKey, note string) error {
	n, err := c.Get(ctx, k)
	if err != nil {
		return err
	}
	if n == nil {
		return fmt.Errorf("narrative %s/%s/%s: %w", k.SurveyID, k.Kind, k.StudentID, store.ErrNotFound)
	}
	n.Annotation = note
	return c.write(ctx, n)
}

func (c *narrativeCache) ListBySurvey(ctx context.Context, surveyID string) ([]store.Narrative, error) {
	members, err := c.client.SMembers(ctx, c.indexKey(surveyID)).Result()
	if err != nil {
		return nil, err
	}
	if len(members) == 0 {
		return nil, nil
	}

	vals, err := c.client.MGet(ctx, members...).Result()
	if err != nil {
		return nil, err
	}

	var out []store.Narrative
	var expired []any
	for i, v := range vals {
		s, ok := v.(string)
		if !ok {
			expired = append(expired, members[i])
			continue
		}
		var n store.Narrative
		if err := json.Unmarshal([]byte(s), &n); err != nil {
			return nil, fmt.Errorf("decode cached narrative: %w", err)
		}
		out = append(out, n)
	}
	if len(expired) > 0 {
		if err := c.client.SRem(ctx, c.indexKey(surveyID), expired...).Err(); err != nil {
			c.logger.Warn("failed to prune expired narratives from index",
				"survey", surveyID, "expired", len(expired), "error", err)
		}
	}

	sort.Slice(out, func(i, j int) bool {
		if out[i].Kind != out[j].Kind {
			return out[i].Kind < out[j].Kind
		}
		return out[i].StudentID < out[j].StudentID
	})
	return out, nil
}

func (c *narrativeCache) write(ctx context.Context, n *store.Narrative) error {
	data, err := json.Marshal(n)
	if err != nil {
		return err
	}
	key := c.key(n.NarrativeKey)
	_, err = c.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Set(ctx, key, data, c.ttl)
		pipe.SAdd(ctx, c.indexKey(n.SurveyID), key)
		return nil
	})
	return err
}
