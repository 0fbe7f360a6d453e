package uploadform

import (
	"crypto/rand"
	"fmt"
	"math/big"
)

// Expiry is the requested link lifetime.
type Expiry string

const (
	ExpiryNever Expiry = "never"
	ExpiryHour  Expiry = "1h"
	ExpiryDay   Expiry = "1d"
	ExpiryWeek  Expiry = "7d"
	ExpiryMonth Expiry = "30d"
)

const (
	passwordSet         = "ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz0123456789"
	defaultPasswordSize = 8
)

// Valid reports whether e is one of the known lifetimes.
func (e Expiry) Valid() bool {
	switch e {
	case ExpiryNever, ExpiryHour, ExpiryDay, ExpiryWeek, ExpiryMonth:
		return true
	}
	return false
}

// Options are the sharing choices sent with an upload. The server accepts but
// does not enforce them.
type Options struct {
	Public   bool
	Password string
	Expires  Expiry
}

// DefaultOptions is a public link that never expires.
func DefaultOptions() Options {
	return Options{Public: true, Expires: ExpiryNever}
}

func (o Options) validate() error {
	if !o.Expires.Valid() {
		return fmt.Errorf("unknown expiry %q", o.Expires)
	}
	return nil
}

// GeneratePassword returns a random alphanumeric password of n characters
// (8 when n <= 0).
func GeneratePassword(n int) (string, error) {
	if n <= 0 {
		n = defaultPasswordSize
	}
	max := big.NewInt(int64(len(passwordSet)))
	b := make([]byte, n)
	for i := range b {
		idx, err := rand.Int(rand.Reader, max)
		if err != nil {
			return "", fmt.Errorf("generate password: %w", err)
		}
		b[i] = passwordSet[idx.Int64()]
	}
	return string(b), nil
}
