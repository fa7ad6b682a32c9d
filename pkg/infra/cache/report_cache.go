package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/NeuralTrust/ImageGuard/pkg/domain/moderation"
	"github.com/go-redis/redis/v8"
)

const (
	ReportKeyPattern = "moderation:report:%s"
	localTTL         = time.Minute
)

type reportCache struct {
	client Client
	local  *TTLMap
}

// NewReportCache stores reports as JSON in redis with a short-lived local
// copy in front. Every Get decodes a fresh Report.
func NewReportCache(client Client) moderation.Cache {
	return &reportCache{client: client, local: NewTTLMap(localTTL)}
}

func (c *reportCache) Get(ctx context.Context, key string) (*moderation.Report, error) {
	redisKey := fmt.Sprintf(ReportKeyPattern, key)
	raw, ok := c.local.Get(redisKey)
	if !ok {
		var err error
		raw, err = c.client.Get(ctx, redisKey)
		if errors.Is(err, redis.Nil) {
			return nil, nil
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read cached report: %w", err)
		}
	}

	var report moderation.Report
	if err := json.Unmarshal([]byte(raw), &report); err != nil {
		c.local.Delete(redisKey)
		return nil, fmt.Errorf("corrupt cached report: %w", err)
	}
	return &report, nil
}

func (c *reportCache) Set(ctx context.Context, key string, report *moderation.Report, ttl time.Duration) error {
	raw, err := json.Marshal(report)
	if err != nil {
		return fmt.Errorf("failed to encode report: %w", err)
	}
	redisKey := fmt.Sprintf(ReportKeyPattern, key)
	if err := c.client.Set(ctx, redisKey, string(raw), ttl); err != nil {
		return err
	}
	c.local.Set(redisKey, string(raw), ttl)
	return nil
}
