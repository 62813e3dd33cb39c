// internal/formfill/notify/notify.go
package notify

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/ses"
	sestypes "github.com/aws/aws-sdk-go-v2/service/ses/types"
	"github.com/aws/aws-sdk-go-v2/service/sns"
	snstypes "github.com/aws/aws-sdk-go-v2/service/sns/types"

	"loan-form-workers/internal/formfill/report"
)

var ErrNotificationFailed = errors.New("NOTIFICATION_SEND_FAILED")

const EventFormGenerated = "form.generated"

// SNSService is the part of the SNS client the publisher uses.
type SNSService interface {
	Publish(ctx context.Context, params *sns.PublishInput, optFns ...func(*sns.Options)) (*sns.PublishOutput, error)
}

// SESService is the part of the SES client the alerter uses.
type SESService interface {
	SendEmail(ctx context.Context, params *ses.SendEmailInput, optFns ...func(*ses.Options)) (*ses.SendEmailOutput, error)
}

type FormGeneratedEvent struct {
	EventType     string   `json:"eventType"`
	ApplicationID string   `json:"applicationId"`
	DocumentID    string   `json:"documentId"`
	TemplateName  string   `json:"templateName"`
	PDFPath       string   `json:"pdfPath"`
	MissingFields []string `json:"missingFields"`
	GeneratedAt   string   `json:"generatedAt"`
}

// Publisher announces generated forms on an SNS topic.
type Publisher struct {
	client   SNSService
	topicARN string
}

func NewPublisher(client SNSService, topicARN string) *Publisher {
	return &Publisher{client: client, topicARN: topicARN}
}

func (p *Publisher) FormGenerated(ctx context.Context, ev FormGeneratedEvent) error {
	if ev.EventType == "" {
		ev.EventType = EventFormGenerated
	}
	msg, err := json.Marshal(ev)
	if err != nil {
		return fmt.Errorf("%w: marshal event: %v", ErrNotificationFailed, err)
	}

	_, err = p.client.Publish(ctx, &sns.PublishInput{
		TopicArn: aws.String(p.topicARN),
		Subject:  aws.String("Application form generated"),
		Message:  aws.String(string(msg)),
		MessageAttributes: map[string]snstypes.MessageAttributeValue{
			"eventType": {
				DataType:    aws.String("String"),
				StringValue: aws.String(ev.EventType),
			},
			"applicationId": {
				DataType:    aws.String("String"),
				StringValue: aws.String(ev.ApplicationID),
			},
		},
	})
	if err != nil {
		return fmt.Errorf("%w: publish: %v", ErrNotificationFailed, err)
	}
	return nil
}

// DriftAlerter emails template maintainers when a generation left mapped
// fields unfilled.
type DriftAlerter struct {
	client     SESService
	from       string
	recipients []string
}

func NewDriftAlerter(client SESService, from string, recipients []string) *DriftAlerter {
	return &DriftAlerter{client: client, from: from, recipients: recipients}
}

// Alert is a no-op without recipients or missing fields.
func (a *DriftAlerter) Alert(ctx context.Context, r report.GenerationReport) error {
	if len(a.recipients) == 0 || len(r.MissingFields) == 0 {
		return nil
	}

	subject := fmt.Sprintf("Template drift: %d unfilled fields on %s", len(r.MissingFields), r.TemplateName)

	var body strings.Builder
	fmt.Fprintf(&body, "Application: %s\n", r.ApplicationID)
	fmt.Fprintf(&body, "Template: %s (layout %s)\n", r.TemplateName, r.LayoutVersion)
	fmt.Fprintf(&body, "Output: %s\n", r.PDFPath)
	fmt.Fprintf(&body, "Generated: %s\n\n", r.GeneratedAt)
	body.WriteString("Fields with no matching widget:\n")
	for _, id := range r.MissingFields {
		fmt.Fprintf(&body, "  %s\n", id)
	}
	if len(r.MissingRequired) > 0 {
		fmt.Fprintf(&body, "\nRequired fields left empty: %s\n", strings.Join(r.MissingRequired, ", "))
	}

	_, err := a.client.SendEmail(ctx, &ses.SendEmailInput{
		Source: aws.String(a.from),
		Destination: &sestypes.Destination{
			ToAddresses: a.recipients,
		},
		Message: &sestypes.Message{
			Subject: &sestypes.Content{Data: aws.String(subject)},
			Body: &sestypes.Body{
				Text: &sestypes.Content{Data: aws.String(body.String())},
			},
		},
	})
	if err != nil {
		return fmt.Errorf("%w: send drift alert: %v", ErrNotificationFailed, err)
	}
	return nil
}
