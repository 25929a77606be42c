package services

import (
	"fmt"
	"log"
	"net/smtp"
	"strings"
)

type EmailService struct {
	host    string
	port    string
	user    string
	pass    string
	from    string
	devMode bool
}

func NewEmailService(host, port, user, pass, from string) *EmailService {
	devMode := host == "" || user == ""
	if devMode {
		log.Println("⚠ Email service running in DEV MODE (logging to console)")
	}
	return &EmailService{
		host:    host,
		port:    port,
		user:    user,
		pass:    pass,
		from:    from,
		devMode: devMode,
	}
}

func (s *EmailService) SendVerificationCode(to, code string) error {
	subject := "Your GameVault verification code"
	body := codeEmailBody("Email Verification", "Your verification code:", code,
		"If you didn't request this code, please ignore this email.")
	return s.sendHTML(to, subject, body)
}

func (s *EmailService) SendPasswordResetCode(to, code string) error {
	subject := "GameVault password reset code"
	body := codeEmailBody("Password Reset", "Your reset code:", code,
		"If you didn't request a password reset, please ignore this email.")
	return s.sendHTML(to, subject, body)
}

func codeEmailBody(heading, lead, code, footer string) string {
	return fmt.Sprintf(`<!DOCTYPE html>
<html>
<head><meta charset="utf-8"></head>
<body style="font-family: Arial, sans-serif; margin: 0; padding: 0;">
  <div style="max-width: 600px; margin: 0 auto;">
    <div style="background: #f8f9fa; padding: 20px; border-radius: 8px;">
      <h2 style="color: #333; margin-bottom: 16px;">%s</h2>
      <p style="color: #555; font-size: 16px;">%s</p>
      <div style="font-size: 32px; font-weight: bold; letter-spacing: 8px; padding: 16px 24px; background: #111; color: #fff; display: inline-block; border-radius: 8px; margin: 20px 0; text-align: center;">
        %s
      </div>
      <p style="color: #999; font-size: 14px; margin-top: 16px;">
        This code expires in 5 minutes.
      </p>
      <hr style="border: none; border-top: 1px solid #ddd; margin: 24px 0;">
      <p style="color: #999; font-size: 12px;">
        %s
      </p>
    </div>
  </div>
</body>
</html>`, heading, lead, code, footer)
}

func (s *EmailService) sendHTML(to, subject, htmlBody string) error {
	if s.devMode {
		log.Printf("📧 [DEV EMAIL] To: %s | Subject: %s", to, subject)
		log.Printf("📧 Body:\n%s", htmlBody)
		return nil
	}

	headers := []string{
		fmt.Sprintf("From: GameVault <%s>", s.from),
		fmt.Sprintf("To: %s", to),
		fmt.Sprintf("Subject: %s", subject),
		"MIME-Version: 1.0",
		"Content-Type: text/html; charset=UTF-8",
	}

	message := strings.Join(headers, "\r\n") + "\r\n\r\n" + htmlBody

	auth := smtp.PlainAuth("", s.user, s.pass, s.host)
	addr := fmt.Sprintf("%s:%s", s.host, s.port)

	err := smtp.SendMail(addr, auth, s.from, []string{to}, []byte(message))
	if err != nil {
		return fmt.Errorf("failed to send email to %s: %w", to, err)
	}

	log.Printf("📧 Email sent to %s: %s", to, subject)
	return nil
}
