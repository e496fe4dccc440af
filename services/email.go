package services

import (
	"fmt"
	"net/smtp"
	"strings"

	"mallhub-server/config"

	"github.com/shopspring/decimal"
)

// EmailService sends transactional mail over plain SMTP. Delivery is
// best-effort; callers fire it from goroutines and log failures.
type EmailService struct {
	host     string
	port     string
	username string
	password string
	from     string
}

func NewEmailService() *EmailService {
	return &EmailService{
		host:     config.AppConfig.SMTPHost,
		port:     config.AppConfig.SMTPPort,
		username: config.AppConfig.SMTPUser,
		password: config.AppConfig.SMTPPassword,
		from:     config.AppConfig.EmailFrom,
	}
}

func (s *EmailService) send(to []string, subject, body string) error {
	if s.host == "" {
		return fmt.Errorf("smtp host not configured")
	}

	msg := strings.Join([]string{
		"From: " + s.from,
		"To: " + strings.Join(to, ", "),
		"Subject: " + subject,
		"MIME-Version: 1.0",
		"Content-Type: text/plain; charset=\"utf-8\"",
		"",
		body,
	}, "\r\n")

	var auth smtp.Auth
	if s.username != "" {
		auth = smtp.PlainAuth("", s.username, s.password, s.host)
	}
	return smtp.SendMail(s.host+":"+s.port, auth, s.from, to, []byte(msg))
}

// SendDiscountCode mails a newly issued code to the given recipients.
// Each recipient gets an individual message so addresses are not exposed
// to one another.
func (s *EmailService) SendDiscountCode(to []string, code string, value decimal.Decimal) error {
	body := fmt.Sprintf(
		"You have received a discount code.\n\nCode: %s\nDiscount: %s%%\n\nApply it at checkout before it expires.",
		code, value.StringFixed(0))

	var firstErr error
	for _, recipient := range to {
		if err := s.send([]string{recipient}, "Your discount code", body); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}

// SendPaymentReceipt mails a checkout confirmation.
func (s *EmailService) SendPaymentReceipt(to, token string, amount decimal.Decimal) error {
	body := fmt.Sprintf(
		"Thank you for your purchase.\n\nReference: %s\nAmount: %s\n\nYour order is being prepared for delivery.",
		token, amount.StringFixed(2))
	return s.send([]string{to}, "Payment confirmation", body)
}
