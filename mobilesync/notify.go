package mobilesync

import (
	"context"
	"encoding/json"
	"os"
	"time"

	"cloud.google.com/go/pubsub"
	"github.com/sirupsen/logrus"

	"bitbucket.org/mmagritech/farm_backend/config"
)

// Notifier delivers fire-and-forget notices triggered by sync writes. A
// notifier must never block or fail the push that triggered it.
type Notifier interface {
	Notify(ctx context.Context, channel string, recipient string, message string)
}

type NoopNotifier struct{}

func (NoopNotifier) Notify(ctx context.Context, channel string, recipient string, message string) {}

// PubSubNotifier publishes notices to a Pub/Sub topic for the downstream SMS
// worker. Publishing happens on its own goroutine with its own deadline;
// failures are logged and dropped.
type PubSubNotifier struct {
	topic  string
	logger *logrus.Logger
}

func NewPubSubNotifier(logger *logrus.Logger) *PubSubNotifier {
	topic := os.Getenv("SYNC_NOTIFICATION_TOPIC")
	if topic == "" {
		topic = "farm-sync-notifications"
	}
	return &PubSubNotifier{topic: topic, logger: logger}
}

func (n *PubSubNotifier) Notify(ctx context.Context, channel string, recipient string, message string) {
	if !config.SyncNotificationsEnabled() || recipient == "" {
		return
	}
	payload, err := json.Marshal(map[string]string{
		"channel":   channel,
		"recipient": recipient,
		"message":   message,
	})
	if err != nil {
		return
	}
	go func() {
		pubCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()

		client, err := config.GetClient(pubCtx)
		if err != nil {
			config.LogError(n.logger, "mobilesync", "Notify", channel, nil, err)
			return
		}
		topic, err := config.CreateTopicIfNotExists(client, n.topic)
		if err != nil {
			config.LogError(n.logger, "mobilesync", "Notify", channel, nil, err)
			return
		}
		result := topic.Publish(pubCtx, &pubsub.Message{
			Data:       payload,
			Attributes: map[string]string{"channel": channel},
		})
		if _, err := result.Get(pubCtx); err != nil {
			config.LogError(n.logger, "mobilesync", "Notify", channel, nil, err)
		}
	}()
}
