package otp

import (
	"crypto/rand"
	"errors"
	"fmt"
	"math/big"
	"strings"
)

var ErrInvalidPhone = errors.New("invalid phone number")

// NormalizePhone strips separators and validates a rough E.164 shape. The
// leading + is required; WhatsApp delivery depends on it.
func NormalizePhone(raw string) (string, error) {
	var b strings.Builder
	for _, c := range strings.TrimSpace(raw) {
		switch {
		case c >= '0' && c <= '9':
			b.WriteRune(c)
		case c == '+' && b.Len() == 0:
			b.WriteRune(c)
		case c == ' ' || c == '-' || c == '(' || c == ')':
		default:
			return "", ErrInvalidPhone
		}
	}
	phone := b.String()
	if len(phone) < 9 || len(phone) > 16 || !strings.HasPrefix(phone, "+") || phone[1] == '0' {
		return "", ErrInvalidPhone
	}
	return phone, nil
}

// NewCode returns a 6-digit code drawn from crypto/rand.
func NewCode() (string, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(1_000_000))
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%06d", n.Int64()), nil
}
