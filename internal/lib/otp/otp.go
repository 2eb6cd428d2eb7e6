// Package otp generates the one-time codes and derived identifiers
// used by the account lifecycle.
package otp

import (
	"crypto/rand"
	"fmt"
	"math/big"
	"strings"
	"time"
)

// TTL is how long an issued code stays valid.
const TTL = 10 * time.Minute

// NewCode returns a 6-digit numeric code drawn uniformly from
// [100000, 999999].
func NewCode() (string, error) {
	const op = "otp.NewCode"
	n, err := rand.Int(rand.Reader, big.NewInt(900000))
	if err != nil {
		return "", fmt.Errorf("%s: %w", op, err)
	}
	return fmt.Sprintf("%06d", n.Int64()+100000), nil
}

// NewCustomerID derives a customer id from the user's email (or mobile
// number when no email is present): the local part plus a random
// 4-digit suffix, e.g. "john_3210".
func NewCustomerID(email, mobile string) (string, error) {
	const op = "otp.NewCustomerID"
	prefix := "user"
	if email != "" {
		prefix = strings.SplitN(email, "@", 2)[0]
	} else if mobile != "" {
		prefix = mobile
	}
	n, err := rand.Int(rand.Reader, big.NewInt(9000))
	if err != nil {
		return "", fmt.Errorf("%s: %w", op, err)
	}
	return fmt.Sprintf("%s_%04d", prefix, n.Int64()+1000), nil
}
