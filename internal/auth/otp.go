package auth

import (
	"crypto/rand"
	"fmt"
	"math/big"
	"net/smtp"
)

// Mailer delivers OTP codes. Production uses SMTP; tests swap in a capture.
type Mailer interface {
	SendOTP(email, code string) error
}

// SMTPMailer sends the code through a plain SMTP relay.
type SMTPMailer struct {
	Host     string
	Port     int
	From     string
	Username string
	Password string
}

func (m *SMTPMailer) SendOTP(email, code string) error {
	addr := fmt.Sprintf("%s:%d", m.Host, m.Port)
	msg := []byte(fmt.Sprintf(
		"To: %s\r\nSubject: Your verification code\r\n\r\nYour verification code is %s. It expires in 10 minutes.\r\n",
		email, code,
	))

	var auth smtp.Auth
	if m.Username != "" {
		auth = smtp.PlainAuth("", m.Username, m.Password, m.Host)
	}
	return smtp.SendMail(addr, auth, m.From, []string{email}, msg)
}

// GenerateOTP returns a 6-digit numeric code from crypto/rand.
func GenerateOTP() (string, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(1000000))
	if err != nil {
		return "", fmt.Errorf("generate otp: %w", err)
	}
	return fmt.Sprintf("%06d", n.Int64()), nil
}
