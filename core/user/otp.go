package user

import (
	"crypto/rand"
	"crypto/subtle"
	"errors"
	"fmt"
	"math/big"
	"strings"
	"sync"
	"time"
)

// OTP purposes
const (
	PurposeRegister       = "register"
	PurposeForgotPassword = "forgot_password"
	PurposeChangePassword = "change_password"
)

var (
	nowFunc = time.Now // mockable

	// errors
	ErrInvalidOTP = errors.New("incorrect verification code")
	ErrOTPExpired = errors.New("verification code has expired")
)

type (
	otpEntry struct {
		code     string
		issuedAt time.Time

		// pending registration payload; only set for PurposeRegister
		pending *NewUser

		// confirmed is flipped by a successful verification of a password
		// purpose; it arms exactly one ResetPassword call.
		confirmed bool
	}

	// otpTable holds codes in transient process memory only. Codes are never
	// persisted; a restart voids them all.
	otpTable struct {
		mu      sync.Mutex
		entries map[string]*otpEntry
		timeout time.Duration

		onIssue func(email, purpose, code string) // test hook
	}
)

func newOTPTable(timeout time.Duration) *otpTable {
	return &otpTable{
		entries: make(map[string]*otpEntry),
		timeout: timeout,
	}
}

func otpKey(email, purpose string) string { return email + "|" + purpose }

// generateOTP returns a uniformly random 6-digit code, leading zeros preserved.
func generateOTP() (string, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(1000000))
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%06d", n.Int64()), nil
}

func (t *otpTable) issue(email, purpose string, pending *NewUser) (string, error) {
	code, err := generateOTP()
	if err != nil {
		return "", err
	}

	t.mu.Lock()
	t.entries[otpKey(email, purpose)] = &otpEntry{
		code:     code,
		issuedAt: nowFunc(),
		pending:  pending,
	}
	t.mu.Unlock()

	if t.onIssue != nil {
		t.onIssue(email, purpose, code)
	}
	return code, nil
}

// verify checks the supplied code against the stored one. Comparison is
// exact equality after trimming both sides. The entry survives a failed
// attempt: there is no attempt counter or lockout.
func (t *otpTable) verify(email, purpose, input string) (*otpEntry, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	entry, ok := t.entries[otpKey(email, purpose)]
	if !ok {
		return nil, ErrInvalidOTP
	}
	if t.timeout > 0 && nowFunc().Sub(entry.issuedAt) > t.timeout {
		delete(t.entries, otpKey(email, purpose))
		return nil, ErrOTPExpired
	}

	in := strings.TrimSpace(input)
	want := strings.TrimSpace(entry.code)
	if subtle.ConstantTimeCompare([]byte(in), []byte(want)) == 0 {
		return nil, ErrInvalidOTP
	}
	return entry, nil
}

func (t *otpTable) invalidate(email, purpose string) {
	t.mu.Lock()
	delete(t.entries, otpKey(email, purpose))
	t.mu.Unlock()
}

// confirm marks a password-purpose entry as verified so that a single
// password reset may follow.
func (t *otpTable) confirm(email, purpose string) {
	t.mu.Lock()
	if entry, ok := t.entries[otpKey(email, purpose)]; ok {
		entry.confirmed = true
	}
	t.mu.Unlock()
}

// takeConfirmed consumes a confirmed password entry for the email, checking
// both password purposes. Returns false when no verification happened first.
func (t *otpTable) takeConfirmed(email string) bool {
	t.mu.Lock()
	defer t.mu.Unlock()

	for _, purpose := range []string{PurposeForgotPassword, PurposeChangePassword} {
		key := otpKey(email, purpose)
		if entry, ok := t.entries[key]; ok && entry.confirmed {
			delete(t.entries, key)
			return true
		}
	}
	return false
}
