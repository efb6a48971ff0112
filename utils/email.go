package utils

import (
	"fmt"

	"github.com/keighl/postmark"
	"github.com/sirupsen/logrus"

	"github.com/herbtrade/herbtrade-backend-go/config"
)

// EmailService sends transactional mail through Postmark. Every send is
// best-effort: failures are logged and never propagated, so a mail outage
// cannot fail an assignment or a password reset.
type EmailService struct {
	client *postmark.Client
	sender string
}

// NewEmailService builds the service from configuration. With no API
// token configured the service stays nil-safe and only logs.
func NewEmailService(cfg *config.Config) *EmailService {
	if cfg.PostmarkToken == "" {
		logrus.Warn("POSTMARK_API_TOKEN not set, outbound email disabled")
		return &EmailService{}
	}
	return &EmailService{
		client: postmark.NewClient(cfg.PostmarkToken, ""),
		sender: cfg.EmailSender,
	}
}

func (es *EmailService) send(toEmail, subject, htmlBody string) {
	if es == nil || es.client == nil {
		logrus.WithField("to", toEmail).Info("email disabled, skipping send")
		return
	}

	_, err := es.client.SendEmail(postmark.Email{
		From:     es.sender,
		To:       toEmail,
		Subject:  subject,
		HtmlBody: htmlBody,
		TextBody: htmlBody,
	})
	if err != nil {
		logrus.WithError(err).WithField("to", toEmail).Error("failed to send email")
		return
	}
	logrus.WithField("to", toEmail).Debug("email sent")
}

// SendEmployeeCredentials mails a newly created staff member their
// generated password.
func (es *EmailService) SendEmployeeCredentials(toEmail, name, password, role string) {
	subject := "Welcome to HerbTrade"
	htmlBody := fmt.Sprintf(
		"<h2>Hello %s!</h2>"+
			"<p>Your HerbTrade staff account has been created.</p>"+
			"<p><strong>Email:</strong> %s<br><strong>Password:</strong> %s<br><strong>Role:</strong> %s</p>"+
			"<p>Please change your password after your first login.</p>",
		name, toEmail, password, role,
	)
	es.send(toEmail, subject, htmlBody)
}

// SendPasswordReset mails a reset link that expires with its ticket.
func (es *EmailService) SendPasswordReset(toEmail, frontendURL, token string) {
	resetLink := fmt.Sprintf("%s/reset-password?token=%s", frontendURL, token)
	subject := "Password Reset from HerbTrade"
	htmlBody := fmt.Sprintf(
		"<p>You requested a password reset for your HerbTrade account.</p>"+
			"<p><a href=%q>Click here to reset your password</a></p>"+
			"<p>This link will expire in 15 minutes. If you did not request this, you can ignore this email.</p>",
		resetLink,
	)
	es.send(toEmail, subject, htmlBody)
}
