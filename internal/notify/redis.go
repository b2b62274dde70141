package notify

import (
	"context"
	"encoding/json"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"

	"github.com/DDP16/se-jobs-pipeline/internal/config"
)

// Channel is the pub/sub channel stage-change events are published on.
// Subscribers (the job-board UI gateway, mail workers) fan the event out to
// employers and candidates.
const Channel = "pipeline.stage_changed"

// RedisNotifier publishes commit outcomes to a redis pub/sub channel.
type RedisNotifier struct {
	client *redis.Client
}

func NewRedisNotifier(cfg config.RedisConfig) *RedisNotifier {
	client := redis.NewClient(&redis.Options{
		Addr:         cfg.Addr(),
		Password:     cfg.Password,
		DB:           cfg.DB,
		DialTimeout:  5 * time.Second,
		ReadTimeout:  3 * time.Second,
		WriteTimeout: 3 * time.Second,
	})
	return &RedisNotifier{client: client}
}

func (n *RedisNotifier) Notify(ctx context.Context, event Event) {
	payload, _ := json.Marshal(event)
	if err := n.client.Publish(ctx, Channel, payload).Err(); err != nil {
		logrus.WithError(err).WithField("application_id", event.ApplicationID).
			Warn("Failed to publish stage change event")
	}
}

func (n *RedisNotifier) Close() error {
	return n.client.Close()
}
