package service

import (
	"crypto/rand"
	"fmt"
	"math/big"
	"time"
)

const (
	otpLength = 6
	otpTTL    = 10 * time.Minute
)

// generateOTP draws a 6-digit code from crypto/rand. Leading zeros are
// valid, so the code is formatted, not ranged.
func generateOTP() (string, error) {
	max := big.NewInt(1)
	for i := 0; i < otpLength; i++ {
		max.Mul(max, big.NewInt(10))
	}
	n, err := rand.Int(rand.Reader, max)
	if err != nil {
		return "", fmt.Errorf("otp: %w", err)
	}
	return fmt.Sprintf("%0*d", otpLength, n), nil
}
