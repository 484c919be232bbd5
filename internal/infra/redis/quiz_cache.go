package redis

import (
	"context"
	"encoding/json"
	"math/rand"
	"time"

	"github.com/redis/go-redis/v9"
	"golang.org/x/sync/singleflight"

	"quizcraft/internal/app"
	"quizcraft/internal/domain"
)

// QuizCache wraps a QuizStore with a Redis read-through cache. Quiz records
// are cached as JSON under quiz:{id} with a jittered TTL; every write goes
// to the inner store and drops the cached copy, so counters and appended
// questions never go stale past one redis round-trip.
type QuizCache struct {
	client *redis.Client
	inner  app.QuizStore
	ttl    time.Duration
	sf     singleflight.Group
	rnd    *rand.Rand
}

func NewQuizCache(client *redis.Client, inner app.QuizStore, ttl time.Duration) *QuizCache {
	return &QuizCache{
		client: client,
		inner:  inner,
		ttl:    ttl,
		rnd:    rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

func (c *QuizCache) GetQuiz(ctx context.Context, id string) (domain.Quiz, error) {
	key := c.key(id)

	if raw, err := c.client.Get(ctx, key).Bytes(); err == nil {
		var quiz domain.Quiz
		if err := json.Unmarshal(raw, &quiz); err == nil {
			return quiz, nil
		}
		// Unreadable cache entry: fall through to the store and rewrite it.
	}

	result, err, _ := c.sf.Do(id, func() (interface{}, error) {
		// Re-check in case another goroutine filled the cache.
		if raw, err := c.client.Get(ctx, key).Bytes(); err == nil {
			var quiz domain.Quiz
			if err := json.Unmarshal(raw, &quiz); err == nil {
				return quiz, nil
			}
		}

		quiz, err := c.inner.GetQuiz(ctx, id)
		if err != nil {
			return domain.Quiz{}, err
		}
		if raw, err := json.Marshal(quiz); err == nil {
			_ = c.client.Set(ctx, key, raw, c.ttlWithJitter()).Err()
		}
		return quiz, nil
	})
	if err != nil {
		return domain.Quiz{}, err
	}
	return result.(domain.Quiz), nil
}

func (c *QuizCache) CreateQuiz(ctx context.Context, quiz domain.Quiz) error {
	return c.inner.CreateQuiz(ctx, quiz)
}

func (c *QuizCache) ListQuizzes(ctx context.Context, limit int) ([]domain.Quiz, error) {
	// Listings are not cached: the home screen wants fresh counters.
	return c.inner.ListQuizzes(ctx, limit)
}

func (c *QuizCache) DeleteQuiz(ctx context.Context, id string) error {
	if err := c.inner.DeleteQuiz(ctx, id); err != nil {
		return err
	}
	c.invalidate(ctx, id)
	return nil
}

func (c *QuizCache) AppendQuestions(ctx context.Context, id string, questions []domain.Question) error {
	if err := c.inner.AppendQuestions(ctx, id, questions); err != nil {
		return err
	}
	c.invalidate(ctx, id)
	return nil
}

func (c *QuizCache) IncrementScore(ctx context.Context, id string, correct bool) error {
	if err := c.inner.IncrementScore(ctx, id, correct); err != nil {
		return err
	}
	c.invalidate(ctx, id)
	return nil
}

func (c *QuizCache) invalidate(ctx context.Context, id string) {
	// Best effort: a lost DEL only means one TTL of staleness.
	_ = c.client.Del(ctx, c.key(id)).Err()
}

func (c *QuizCache) key(id string) string {
	return "quiz:" + id
}

func (c *QuizCache) ttlWithJitter() time.Duration {
	if c.ttl <= 0 {
		return 0
	}
	// add up to 10% jitter to spread expirations
	jitterMax := int64(c.ttl) / 10
	return c.ttl + time.Duration(c.rnd.Int63n(jitterMax+1))
}
