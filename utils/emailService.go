package utils

import (
	"fmt"
	"log"
	"net/smtp"
	"strings"

	"certchain/config"
)

// SendEmail sends an HTML email through the configured SMTP account. Skipped
// silently when no sender is configured.
func SendEmail(cfg *config.Config, to []string, subject string, htmlBody string) error {
	if cfg.EmailSender == "" {
		log.Printf("Email sender not configured, skipping mail to %v", to)
		return nil
	}

	smtpHost := "smtp.gmail.com"
	smtpPort := "587"

	from := cfg.EmailSender
	password := cfg.Password

	msg := "MIME-version: 1.0;\nContent-Type: text/html; charset=\"UTF-8\";\n"
	msg += fmt.Sprintf("From: CertChain <%s>\r\n", from)
	msg += fmt.Sprintf("To: %s\r\n", strings.Join(to, ","))
	msg += fmt.Sprintf("Subject: %s\r\n\r\n", subject)
	msg += htmlBody

	auth := smtp.PlainAuth("", from, password, smtpHost)

	if err := smtp.SendMail(smtpHost+":"+smtpPort, auth, from, to, []byte(msg)); err != nil {
		log.Printf("Error sending email to %v: %v", to, err)
		return err
	}
	return nil
}

// SendCertificateIssuedEmail notifies a student that their certificate was
// approved and issued
func SendCertificateIssuedEmail(cfg *config.Config, email, userName, credentialID string) error {
	body := fmt.Sprintf(`
		<html>
			<body style="font-family: Arial, sans-serif; background-color: #f4f4f4; padding: 20px;">
				<div style="max-width: 600px; margin: auto; background-color: #ffffff; border-radius: 8px; padding: 30px;">
					<h2 style="color: #333333; text-align: center;">Certificate Issued</h2>
					<p style="font-size: 16px; color: #555555;">Dear %s,</p>
					<p style="font-size: 16px; color: #555555;">Your certificate request has been approved. Your credential number:</p>
					<div style="background-color: #f8f9fa; border-radius: 8px; padding: 20px; margin: 20px 0; text-align: center;">
						<h2 style="color: #2196F3; margin: 0;">%s</h2>
					</div>
					<p style="font-size: 14px; color: #666666;">Anyone can verify this certificate with the credential number above.</p>
				</div>
			</body>
		</html>
	`, userName, credentialID)

	return SendEmail(cfg, []string{email}, "Your certificate has been issued", body)
}

// SendRequestRejectedEmail notifies a student that their certificate request
// was rejected
func SendRequestRejectedEmail(cfg *config.Config, email, userName, courseName, reason string) error {
	body := fmt.Sprintf(`
		<html>
			<body style="font-family: Arial, sans-serif; background-color: #f4f4f4; padding: 20px;">
				<div style="max-width: 600px; margin: auto; background-color: #ffffff; border-radius: 8px; padding: 30px;">
					<h2 style="color: #333333; text-align: center;">Certificate Request Rejected</h2>
					<p style="font-size: 16px; color: #555555;">Dear %s,</p>
					<p style="font-size: 16px; color: #555555;">Your certificate request for <b>%s</b> was not approved.</p>
					<div style="background-color: #f8f9fa; border-radius: 8px; padding: 20px; margin: 20px 0;">
						<p style="font-size: 14px; color: #666666; margin: 0;">Reason: %s</p>
					</div>
				</div>
			</body>
		</html>
	`, userName, courseName, reason)

	return SendEmail(cfg, []string{email}, "Your certificate request was rejected", body)
}
