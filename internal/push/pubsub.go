package push

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/sqs"
	"gocloud.dev/pubsub"
	"gocloud.dev/pubsub/awssnssqs"
	_ "gocloud.dev/pubsub/mempubsub"
)

// PubSubSource reads signals from a gocloud subscription.
type PubSubSource struct {
	sub   *pubsub.Subscription
	event string
	log   *slog.Logger

	once     sync.Once
	closeErr error
}

// NewPubSubSource wraps an open subscription.
func NewPubSubSource(sub *pubsub.Subscription, event string, log *slog.Logger) *PubSubSource {
	if log == nil {
		log = slog.Default()
	}
	return &PubSubSource{sub: sub, event: event, log: log}
}

// OpenPubSub opens a subscription by URL, e.g. mem://notes or awssqs://... .
func OpenPubSub(ctx context.Context, url, event string, log *slog.Logger) (*PubSubSource, error) {
	sub, err := pubsub.OpenSubscription(ctx, url)
	if err != nil {
		return nil, fmt.Errorf("open subscription %s: %w", url, err)
	}
	return NewPubSubSource(sub, event, log), nil
}

// OpenSQS subscribes to an SQS queue using the default AWS credential chain.
func OpenSQS(ctx context.Context, queueURL string, wait time.Duration, event string, log *slog.Logger) (*PubSubSource, error) {
	cfg, err := config.LoadDefaultConfig(ctx)
	if err != nil {
		return nil, fmt.Errorf("load aws config: %w", err)
	}
	sqsCli := sqs.NewFromConfig(cfg)

	sub := awssnssqs.OpenSubscriptionV2(ctx, sqsCli, queueURL, &awssnssqs.SubscriptionOptions{
		Raw:      true,
		WaitTime: wait,
	})
	return NewPubSubSource(sub, event, log), nil
}

func (s *PubSubSource) Next(ctx context.Context) (Signal, error) {
	for {
		m, err := s.sub.Receive(ctx)
		if err != nil {
			return Signal{}, err
		}
		m.Ack()

		if !Matches(s.event, m.Body, m.Metadata) {
			s.log.Debug("push message ignored", "body", string(m.Body))
			continue
		}
		return Signal{Event: s.event, At: time.Now()}, nil
	}
}

func (s *PubSubSource) Close(ctx context.Context) error {
	s.once.Do(func() {
		s.closeErr = s.sub.Shutdown(ctx)
	})
	return s.closeErr
}
