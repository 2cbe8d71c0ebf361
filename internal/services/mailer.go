package services

import (
	"crypto/tls"
	"fmt"
	"net/smtp"
	"strings"

	"github.com/khoward/worktrack/internal/config"
	"github.com/khoward/worktrack/pkg/logger"
)

// MailService renders and delivers the account emails: confirmation
// links, one-time login codes and password reset links.
type MailService struct {
	cfg     *config.SMTPConfig
	baseURL string
}

func NewMailService(cfg *config.SMTPConfig, baseURL string) *MailService {
	return &MailService{cfg: cfg, baseURL: baseURL}
}

// ConfirmationMail builds the signup confirmation email.
func (s *MailService) ConfirmationMail(to, token string) *MailTask {
	link := fmt.Sprintf("%s/api/auth/confirm?token=%s", s.baseURL, token)
	body := s.buildBody("Confirm your email",
		"Welcome to WorkTrack. Click the link below to confirm your email address and activate your account.",
		link, "Confirm email")
	return &MailTask{To: to, Subject: "[WorkTrack] Confirm your email", Body: body}
}

// OTPMail builds the passwordless login email.
func (s *MailService) OTPMail(to, code string) *MailTask {
	body := s.buildCodeBody("Your login code",
		"Use this one-time code to sign in. It expires in 10 minutes.", code)
	return &MailTask{To: to, Subject: "[WorkTrack] Your login code", Body: body}
}

// ResetMail builds the password reset email.
func (s *MailService) ResetMail(to, token string) *MailTask {
	link := fmt.Sprintf("%s/reset-password?token=%s", s.baseURL, token)
	body := s.buildBody("Reset your password",
		"Someone requested a password reset for this account. If that was you, follow the link below. The link expires in one hour.",
		link, "Reset password")
	return &MailTask{To: to, Subject: "[WorkTrack] Reset your password", Body: body}
}

func (s *MailService) buildBody(title, text, link, linkLabel string) string {
	var sb strings.Builder

	sb.WriteString("<html><body style=\"font-family: Arial, sans-serif;\">")
	sb.WriteString(fmt.Sprintf("<h2>%s</h2>", title))
	sb.WriteString(fmt.Sprintf("<p>%s</p>", text))
	sb.WriteString(fmt.Sprintf("<p><a href=\"%s\" style=\"background: #2563eb; color: #fff; padding: 10px 18px; border-radius: 4px; text-decoration: none;\">%s</a></p>", link, linkLabel))
	sb.WriteString(fmt.Sprintf("<p style=\"color: #888; font-size: 12px;\">If the button does not work, copy this link: %s</p>", link))
	sb.WriteString("<hr><p style=\"color: #888; font-size: 12px;\">WorkTrack</p>")
	sb.WriteString("</body></html>")

	return sb.String()
}

func (s *MailService) buildCodeBody(title, text, code string) string {
	var sb strings.Builder

	sb.WriteString("<html><body style=\"font-family: Arial, sans-serif;\">")
	sb.WriteString(fmt.Sprintf("<h2>%s</h2>", title))
	sb.WriteString(fmt.Sprintf("<p>%s</p>", text))
	sb.WriteString(fmt.Sprintf("<pre style=\"background: #f5f5f5; padding: 12px; border-radius: 4px; font-size: 24px; letter-spacing: 4px;\">%s</pre>", code))
	sb.WriteString("<hr><p style=\"color: #888; font-size: 12px;\">WorkTrack</p>")
	sb.WriteString("</body></html>")

	return sb.String()
}

// Send delivers one mail task over SMTP. Disabled configs drop the
// mail silently so local setups work without a mail server.
func (s *MailService) Send(task *MailTask) error {
	if !s.cfg.Enabled || s.cfg.Host == "" {
		logger.Infof("[Mail] SMTP disabled, dropping mail to %s (%s)", task.To, task.Subject)
		return nil
	}

	from := s.cfg.From
	if from == "" {
		from = s.cfg.Username
	}

	headers := make(map[string]string)
	headers["From"] = from
	headers["To"] = task.To
	headers["Subject"] = task.Subject
	headers["MIME-Version"] = "1.0"
	headers["Content-Type"] = "text/html; charset=UTF-8"

	var message strings.Builder
	for k, v := range headers {
		message.WriteString(fmt.Sprintf("%s: %s\r\n", k, v))
	}
	message.WriteString("\r\n")
	message.WriteString(task.Body)

	addr := fmt.Sprintf("%s:%d", s.cfg.Host, s.cfg.Port)

	var auth smtp.Auth
	if s.cfg.Username != "" && s.cfg.Password != "" {
		auth = smtp.PlainAuth("", s.cfg.Username, s.cfg.Password, s.cfg.Host)
	}

	var err error
	if s.cfg.UseTLS {
		err = s.sendTLS(addr, auth, from, task.To, message.String())
	} else {
		err = smtp.SendMail(addr, auth, from, []string{task.To}, []byte(message.String()))
	}

	if err != nil {
		logger.Errorf("[Mail] Failed to send to %s: %v", task.To, err)
		return err
	}

	logger.Infof("[Mail] Sent %q to %s", task.Subject, task.To)
	return nil
}

func (s *MailService) sendTLS(addr string, auth smtp.Auth, from, to, message string) error {
	tlsConfig := &tls.Config{
		ServerName: s.cfg.Host,
	}

	conn, err := tls.Dial("tcp", addr, tlsConfig)
	if err != nil {
		return err
	}
	defer conn.Close()

	client, err := smtp.NewClient(conn, s.cfg.Host)
	if err != nil {
		return err
	}
	defer client.Close()

	if auth != nil {
		if err := client.Auth(auth); err != nil {
			return err
		}
	}

	if err := client.Mail(from); err != nil {
		return err
	}
	if err := client.Rcpt(to); err != nil {
		return err
	}

	w, err := client.Data()
	if err != nil {
		return err
	}
	if _, err = w.Write([]byte(message)); err != nil {
		return err
	}
	return w.Close()
}
