package aws

import (
	"context"
	"errors"
	"fmt"

	sdkaws "github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/sns"
	"github.com/aws/aws-sdk-go-v2/service/sns/types"
	"go.uber.org/zap"
)

type snsAPI interface {
	Publish(ctx context.Context, params *sns.PublishInput, optFns ...func(*sns.Options)) (*sns.PublishOutput, error)
}

// SNSClient publishes domain events to a single topic. The event type is
// sent as the "eventType" message attribute so subscribers can filter on it.
type SNSClient struct {
	client   snsAPI
	topicArn string
}

func NewSNSClient(cfg sdkaws.Config, topicArn string) *SNSClient {
	return &SNSClient{client: sns.NewFromConfig(cfg), topicArn: topicArn}
}

// Publish sends message to the configured topic.
func (s *SNSClient) Publish(ctx context.Context, eventType string, message []byte) error {
	if s.topicArn == "" {
		return errors.New("empty topicArn")
	}

	zap.L().Debug("publishing event",
		zap.String("topic_arn", s.topicArn),
		zap.String("event_type", eventType),
		zap.Int("message_len", len(message)),
	)

	_, err := s.client.Publish(ctx, &sns.PublishInput{
		TopicArn: sdkaws.String(s.topicArn),
		Message:  sdkaws.String(string(message)),
		MessageAttributes: map[string]types.MessageAttributeValue{
			"eventType": {
				DataType:    sdkaws.String("String"),
				StringValue: sdkaws.String(eventType),
			},
		},
	})
	if err != nil {
		return fmt.Errorf("sns publish failed for topic %s: %w", s.topicArn, err)
	}
	return nil
}
