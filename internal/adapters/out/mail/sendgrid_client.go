package mail

import (
	"context"
	"fmt"
	"log"

	"github.com/sendgrid/sendgrid-go"
	sgmail "github.com/sendgrid/sendgrid-go/helpers/mail"
)

// EmailClient は実際のメール送信クライアント（SMTP / SendGrid / SES など）を
// 抽象化した下位レベルのインターフェースです。戻り値はトランスポートの
// メッセージIDです。
type EmailClient interface {
	Send(ctx context.Context, from, to, subject, html, text string) (string, error)
}

// SendGridClient implements EmailClient
type SendGridClient struct {
	apiKey   string
	fromName string
}

func NewSendGridClient(apiKey, fromName string) *SendGridClient {
	return &SendGridClient{apiKey: apiKey, fromName: fromName}
}

var _ EmailClient = (*SendGridClient)(nil)

// Send sends one email via SendGrid and returns its message ID. Any
// transport error (malformed input, auth failure, delivery rejection) is
// opaque and non-retryable within the current call.
func (c *SendGridClient) Send(ctx context.Context, from, to, subject, html, text string) (string, error) {
	if c.apiKey == "" {
		return "", fmt.Errorf("sendgrid api key is empty")
	}
	if from == "" {
		return "", fmt.Errorf("from address is empty")
	}
	if to == "" {
		return "", fmt.Errorf("to address is empty")
	}

	message := sgmail.NewSingleEmail(
		sgmail.NewEmail(c.fromName, from),
		subject,
		sgmail.NewEmail("", to),
		text,
		html,
	)

	client := sendgrid.NewSendClient(c.apiKey)

	response, err := client.Send(message)
	if err != nil {
		return "", fmt.Errorf("sendgrid send error: %w", err)
	}

	if response.StatusCode >= 400 {
		log.Printf("[sendgrid] error status=%d, body=%s", response.StatusCode, response.Body)
		return "", fmt.Errorf(
			"sendgrid send failed: status=%d, body=%s",
			response.StatusCode,
			response.Body,
		)
	}

	messageID := ""
	if ids, ok := response.Headers["X-Message-Id"]; ok && len(ids) > 0 {
		messageID = ids[0]
	}

	log.Printf("[sendgrid] mail sent: status=%d to=%s subject=%s id=%s",
		response.StatusCode, to, subject, messageID)

	return messageID, nil
}
