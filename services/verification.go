package services

import (
	"fmt"
	"log/slog"

	"github.com/sendgrid/sendgrid-go"
	"github.com/sendgrid/sendgrid-go/helpers/mail"
)

type Mailer interface {
	SendVerification(email, token string) error
}

// SendGridMailer delivers verification links. Delivery is best-effort:
// callers dispatch it on a goroutine and only log failures.
type SendGridMailer struct {
	apiKey  string
	from    string
	baseURL string
	log     *slog.Logger
}

func NewSendGridMailer(apiKey, from, baseURL string, log *slog.Logger) *SendGridMailer {
	return &SendGridMailer{apiKey: apiKey, from: from, baseURL: baseURL, log: log}
}

func (m *SendGridMailer) SendVerification(email, token string) error {
	if m.apiKey == "" {
		m.log.Warn("missing SendGrid config, skipping verification email", "email", email)
		return nil
	}

	link := fmt.Sprintf("%s/users/verify/%s", m.baseURL, token)
	body := fmt.Sprintf(`Welcome to Contactbook!

Please confirm your email address by opening the link below:

%s

If you did not register, ignore this message.`, link)

	from := mail.NewEmail("Contactbook", m.from)
	to := mail.NewEmail(email, email)
	message := mail.NewSingleEmail(from, "Verify your email", to, body, body)
	client := sendgrid.NewSendClient(m.apiKey)

	response, err := client.Send(message)
	if err != nil {
		return fmt.Errorf("sending verification email: %w", err)
	}
	if response.StatusCode >= 400 {
		return fmt.Errorf("sending verification email: sendgrid status %d", response.StatusCode)
	}
	return nil
}
