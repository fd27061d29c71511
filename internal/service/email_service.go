package service

import (
	"fmt"

	"taskora_backend/internal/config"

	"gopkg.in/gomail.v2"
)

// EmailService SMTP邮件发送，实现 WinnerNotifier
type EmailService struct {
	Cfg    config.MailConfig
	dialer *gomail.Dialer
}

func NewEmailService(cfg config.MailConfig) *EmailService {
	return &EmailService{
		Cfg:    cfg,
		dialer: gomail.NewDialer(cfg.Host, cfg.Port, cfg.User, cfg.Password),
	}
}

func (s *EmailService) send(to, subject, html string) error {
	m := gomail.NewMessage()
	m.SetHeader("From", fmt.Sprintf("Taskora support <%s>", s.Cfg.From))
	m.SetHeader("To", to)
	m.SetHeader("Subject", subject)
	m.SetBody("text/html", html)

	return s.dialer.DialAndSend(m)
}

func (s *EmailService) NotifyWinner(email, name string) error {
	html := fmt.Sprintf(`
		<h2>Congratulations, %s! 🏆</h2>
		<p>You are one of the first to answer correctly and secured a winner spot in the Taskora challenge.</p>
		<p>We will reach out with your reward details shortly.</p>`, name)

	return s.send(email, "You won the Taskora challenge!", html)
}

func (s *EmailService) SendVerificationEmail(email, name, verifyURL string) error {
	html := fmt.Sprintf(`
		<h2>Welcome to Taskora, %s!</h2>
		<p>Please confirm your email address by clicking the link below. The link is valid for 24 hours.</p>
		<p><a href="%s">Verify my email</a></p>`, name, verifyURL)

	return s.send(email, "Verify your Taskora account", html)
}

func (s *EmailService) SendOtpEmail(email, name, otp string) error {
	html := fmt.Sprintf(`
		<h2>Hi %s,</h2>
		<p>Your password reset code is:</p>
		<h1>%s</h1>
		<p>The code expires in 10 minutes. If you did not request a reset, you can ignore this email.</p>`, name, otp)

	return s.send(email, "Your Taskora password reset code", html)
}
