package utils

import (
	"fmt"
	"log"
	"net/smtp"
	"time"

	"MINDBRIDGE_BACK-END/internal/config"
)

// Mailer sends password reset codes
type Mailer interface {
	SendVerificationCode(to, code string, ttl time.Duration) error
}

// EmailService handles email sending operations
type EmailService struct {
	config *config.EmailConfig
}

// NewEmailService creates a new email service instance
func NewEmailService(cfg *config.EmailConfig) *EmailService {
	return &EmailService{
		config: cfg,
	}
}

// SendVerificationCode sends a password reset code. Without SMTP credentials
// the code is logged instead so local development still works.
func (e *EmailService) SendVerificationCode(to, code string, ttl time.Duration) error {
	if e.config.SMTPUsername == "" || e.config.SMTPPassword == "" {
		log.Printf("[email] SMTP not configured; reset code for %s is %s", to, code)
		return nil
	}

	subject := "Your MindBridge password reset code"
	body := fmt.Sprintf(`Hello,

We received a request to reset your MindBridge password.

Your verification code is: %s

This code expires in %s. If you didn't ask for this, you can ignore this email.

Take care,
%s`, code, ttl.Round(time.Minute), e.config.FromName)

	return e.sendEmail(to, subject, body)
}

// sendEmail sends an email using SMTP
func (e *EmailService) sendEmail(to, subject, body string) error {
	auth := smtp.PlainAuth("", e.config.SMTPUsername, e.config.SMTPPassword, e.config.SMTPHost)

	fromEmail := e.config.FromEmail
	if fromEmail == "" {
		fromEmail = e.config.SMTPUsername
	}

	message := []byte(fmt.Sprintf(
		"From: %s <%s>\r\n"+
			"To: %s\r\n"+
			"Subject: %s\r\n"+
			"Content-Type: text/plain; charset=UTF-8\r\n"+
			"\r\n"+
			"%s\r\n",
		e.config.FromName, fromEmail, to, subject, body))

	addr := e.config.SMTPHost + ":" + e.config.SMTPPort
	if err := smtp.SendMail(addr, auth, fromEmail, []string{to}, message); err != nil {
		return fmt.Errorf("failed to send email: %w", err)
	}
	return nil
}
