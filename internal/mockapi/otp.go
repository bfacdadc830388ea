package mockapi

import (
	"errors"
	"sync"
	"time"

	"food_marketplace/internal/utils"
)

var (
	ErrInvalidOTP      = errors.New("invalid or expired code")
	ErrTooManyAttempts = errors.New("too many attempts, request a new code")
)

const maxOTPAttempts = 5

type otpEntry struct {
	hash      string
	expiresAt time.Time
	attempts  int
}

// OTPIssuer hands out one-time codes and checks them. Only bcrypt hashes are kept.
type OTPIssuer struct {
	mu       sync.Mutex
	entries  map[string]otpEntry
	ttl      time.Duration
	generate func() (string, error)
	now      func() time.Time
}

// NewOTPIssuer creates an issuer whose codes live for ttl. A nil generate uses utils.GenerateOTP.
func NewOTPIssuer(ttl time.Duration, generate func() (string, error)) *OTPIssuer {
	if generate == nil {
		generate = utils.GenerateOTP
	}
	return &OTPIssuer{
		entries:  make(map[string]otpEntry),
		ttl:      ttl,
		generate: generate,
		now:      time.Now,
	}
}

// Issue creates a fresh code for phone, replacing any previous one
func (o *OTPIssuer) Issue(phone string) (string, error) {
	code, err := o.generate()
	if err != nil {
		return "", err
	}
	hash, err := utils.HashOTP(code)
	if err != nil {
		return "", err
	}

	o.mu.Lock()
	o.entries[phone] = otpEntry{hash: hash, expiresAt: o.now().Add(o.ttl)}
	o.mu.Unlock()
	return code, nil
}

// Verify consumes the code for phone. A code can be used once.
func (o *OTPIssuer) Verify(phone, code string) error {
	o.mu.Lock()
	defer o.mu.Unlock()

	entry, ok := o.entries[phone]
	if !ok {
		return ErrInvalidOTP
	}
	if o.now().After(entry.expiresAt) {
		delete(o.entries, phone)
		return ErrInvalidOTP
	}
	if entry.attempts >= maxOTPAttempts {
		delete(o.entries, phone)
		return ErrTooManyAttempts
	}
	if !utils.CheckOTPHash(code, entry.hash) {
		entry.attempts++
		o.entries[phone] = entry
		return ErrInvalidOTP
	}
	delete(o.entries, phone)
	return nil
}
