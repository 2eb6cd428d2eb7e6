// Package sender composes and delivers the outgoing mail: one-time
// codes and broadcast announcements.
package sender

import (
	"fmt"
	"log/slog"
	"strings"

	"github.com/techcfa/cfa-backend/internal/lib/sl"
	"github.com/techcfa/cfa-backend/internal/lib/smtp"
)

type Service struct {
	transport smtp.TransportInterface
	log       *slog.Logger
}

// New creates the mail sender on top of an SMTP transport.
func New(transport smtp.TransportInterface, log *slog.Logger) *Service {
	return &Service{
		transport: transport,
		log:       log,
	}
}

// SendOTPEmail delivers a one-time code. The purpose ("login" or
// "reset") only changes the wording.
func (s *Service) SendOTPEmail(to, fullName, code, purpose string) error {
	name := fullName
	if name == "" {
		name = "there"
	}

	subject := "Your verification code"
	action := "verify your account"
	if purpose == "reset" {
		subject = "Your password reset code"
		action = "reset your password"
	}

	bodyText := fmt.Sprintf("Hi %s,\n\nUse the code %s to %s. The code is valid for 10 minutes.\n\nIf you did not request this, you can ignore this email.",
		name, code, action)

	return s.sendEmail([]string{to}, subject, bodyText)
}

// SendAnnouncement delivers a broadcast update to the given recipients.
func (s *Service) SendAnnouncement(to []string, title, description string) error {
	if len(to) == 0 {
		return nil
	}

	subject := "New alert: " + title
	bodyText := fmt.Sprintf("Hello,\n\n%s\n\n%s\n\nStay safe,\nThe Cyber Fraud Awareness team",
		title, description)

	return s.sendEmail(to, subject, bodyText)
}

func (s *Service) sendEmail(to []string, subject, bodyText string) error {
	msg := strings.Join([]string{
		"From: " + s.transport.From(),
		"To: " + strings.Join(to, ";"),
		"Subject: " + subject,
		"MIME-Version: 1.0",
		"Content-Type: text/plain; charset=\"UTF-8\"",
		"",
		bodyText,
	}, "\r\n")

	client, err := s.transport.Connect()
	if err != nil {
		s.log.Error("failed to connect to SMTP server", sl.Err(err))
		return err
	}
	defer client.Close()

	if err := client.Mail(s.transport.From()); err != nil {
		s.log.Error("failed to set MAIL FROM", "from", s.transport.From(), "error", err)
		return err
	}

	for _, addr := range to {
		if err := client.Rcpt(addr); err != nil {
			s.log.Error("failed to set RCPT TO", "recipient", addr, "error", err)
			return err
		}
	}

	wc, err := client.Data()
	if err != nil {
		s.log.Error("failed to get Data writer", sl.Err(err))
		return err
	}

	_, err = wc.Write([]byte(msg))
	if err != nil {
		s.log.Error("failed to write email body", sl.Err(err))
		return err
	}

	if err = wc.Close(); err != nil {
		s.log.Error("failed to close Data writer", sl.Err(err))
		return err
	}

	if err = client.Quit(); err != nil {
		s.log.Error("failed to quit SMTP client", sl.Err(err))
		return err
	}

	s.log.Info("email sent", "to", to, "subject", subject)
	return nil
}
