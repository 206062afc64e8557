package main

import (
	"fmt"
	"log"
	"net/smtp"
	"strings"

	"github.com/Zachkp/portfolio/internal/config"
)

// mailer delivers a contact form submission.
type mailer func(name, email, message string) error

func smtpMailer(cfg config.MailConfig) mailer {
	return func(name, email, message string) error {
		return sendContactEmail(cfg, name, email, message)
	}
}

func sendContactEmail(cfg config.MailConfig, name, email, message string) error {
	if cfg.User == "" || cfg.Pass == "" {
		return fmt.Errorf("SMTP credentials not configured")
	}
	toEmail := cfg.To
	if toEmail == "" {
		toEmail = cfg.User
	}

	name, email = headerSafe(name), headerSafe(email)
	subject := fmt.Sprintf("Portfolio Contact: %s", name)
	body := fmt.Sprintf(`
New contact form submission from your portfolio:

Name: %s
Email: %s
Message:
%s

---
Sent from your portfolio contact form
`, name, email, message)

	msg := []byte("To: " + toEmail + "\r\n" +
		"Subject: " + subject + "\r\n" +
		"From: " + cfg.User + "\r\n" +
		"Reply-To: " + email + "\r\n" +
		"\r\n" +
		body + "\r\n")

	auth := smtp.PlainAuth("", cfg.User, cfg.Pass, cfg.Host)
	if err := smtp.SendMail(cfg.Host+":"+cfg.Port, auth, cfg.User, []string{toEmail}, msg); err != nil {
		log.Printf("Error sending email: %v", err)
		return err
	}

	log.Printf("Email sent successfully from %s (%s)", name, email)
	return nil
}

// headerSafe strips line breaks so form input cannot add mail headers.
func headerSafe(s string) string {
	return strings.NewReplacer("\r", " ", "\n", " ").Replace(s)
}
