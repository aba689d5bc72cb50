package notify

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/sesv2"
	"github.com/aws/aws-sdk-go-v2/service/sesv2/types"
	"github.com/panelmgmt/pms-core/config"
	"github.com/rs/zerolog/log"
)

// Notifier delivers transactional email. The only current use is the
// panelist magic-link login mail.
type Notifier interface {
	Send(ctx context.Context, to, subject, htmlBody, textBody string) error
}

// SESNotifier sends through Amazon SES.
type SESNotifier struct {
	client *sesv2.Client
	sender string
}

func NewSESNotifier(cfg *config.Config) Notifier {
	opts := func(o *sesv2.Options) {
		o.Region = cfg.SES.Region
	}
	client := sesv2.New(sesv2.Options{}, opts)

	log.Info().Str("region", cfg.SES.Region).Str("sender", cfg.SES.Sender).Msg("SES notifier initialized")
	return &SESNotifier{client: client, sender: cfg.SES.Sender}
}

func (n *SESNotifier) Send(ctx context.Context, to, subject, htmlBody, textBody string) error {
	_, err := n.client.SendEmail(ctx, &sesv2.SendEmailInput{
		FromEmailAddress: aws.String(n.sender),
		Destination: &types.Destination{
			ToAddresses: []string{to},
		},
		Content: &types.EmailContent{
			Simple: &types.Message{
				Subject: &types.Content{Data: aws.String(subject)},
				Body: &types.Body{
					Html: &types.Content{Data: aws.String(htmlBody)},
					Text: &types.Content{Data: aws.String(textBody)},
				},
			},
		},
	})
	if err != nil {
		return fmt.Errorf("failed to send email to %s: %w", to, err)
	}
	return nil
}
