package auth

import (
	"crypto/rand"
	"fmt"
	"log"
	"math/big"
)

// GenerateOTP returns a 6-digit one-time code.
func GenerateOTP() (string, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(900000))
	if err != nil {
		return "", fmt.Errorf("generate otp: %w", err)
	}
	return fmt.Sprintf("%06d", n.Int64()+100000), nil
}

// OTPSender delivers verification codes. Delivery failures never fail the
// signup that triggered them.
type OTPSender interface {
	SendOTP(email, otp string) error
}

// LogOTPSender stands in for a real mail provider and just logs the code.
type LogOTPSender struct{}

func (LogOTPSender) SendOTP(email, otp string) error {
	log.Printf("OTP for %s: %s", email, otp)
	return nil
}
