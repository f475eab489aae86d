package notify

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/sns"

	"github.com/ops-tools/costpilot/pkg/adapters"
	"github.com/ops-tools/costpilot/pkg/models/domain"
)

// Notifier delivers the finalized run summary. Delivery is best
// effort; callers log failures and move on, a broken sink must never
// fail the run.
type Notifier interface {
	NotifyCompletion(ctx context.Context, summary *domain.RunSummary) error
}

type snsNotifier struct {
	client   *sns.Client
	topicARN string
}

func NewSNSNotifier(client *sns.Client, topicARN string) (Notifier, error) {
	if topicARN == "" {
		return nil, fmt.Errorf("sns topic arn is empty")
	}
	return &snsNotifier{client: client, topicARN: topicARN}, nil
}

func (n *snsNotifier) NotifyCompletion(ctx context.Context, summary *domain.RunSummary) error {
	payload, err := json.Marshal(adapters.MapRunSummaryToStore(summary))
	if err != nil {
		return fmt.Errorf("failed to marshal run summary: %w", err)
	}

	subject := fmt.Sprintf("Cost collection %s: %s", summary.Status, summary.AccountID)
	_, err = n.client.Publish(ctx, &sns.PublishInput{
		TopicArn: aws.String(n.topicARN),
		Subject:  aws.String(subject),
		Message:  aws.String(string(payload)),
	})
	if err != nil {
		return fmt.Errorf("failed to publish run summary: %w", err)
	}
	return nil
}

type noopNotifier struct{}

// NewNoopNotifier is used when no topic is configured.
func NewNoopNotifier() Notifier {
	return noopNotifier{}
}

func (noopNotifier) NotifyCompletion(context.Context, *domain.RunSummary) error {
	return nil
}
