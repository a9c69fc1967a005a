package models

import (
	"crypto/rand"
	"fmt"
	"math/big"
	"regexp"
	"strconv"
	"time"
)

var firstInteger = regexp.MustCompile(`\d+`)

// ParseTarget reads a challenge target stored loosely as text. The first
// run of digits wins; anything without one, or below 1, becomes 1.
func ParseTarget(raw string) int {
	match := firstInteger.FindString(raw)
	if match == "" {
		return 1
	}
	n, err := strconv.Atoi(match)
	if err != nil || n < 1 {
		return 1
	}
	return n
}

// DateKeyLayout formats calendar dates used as daily progress keys
const DateKeyLayout = "2006-01-02"

// DateKey returns the UTC calendar date of t
func DateKey(t time.Time) string {
	return t.UTC().Format(DateKeyLayout)
}

// PreviousDateKey returns the calendar date before key
func PreviousDateKey(key string) (string, error) {
	day, err := time.Parse(DateKeyLayout, key)
	if err != nil {
		return "", fmt.Errorf("invalid date key %q: %w", key, err)
	}
	return day.AddDate(0, 0, -1).Format(DateKeyLayout), nil
}

const (
	voucherPrefix   = "VOUCHER-"
	voucherAlphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"
	voucherLength   = 6
)

// GenerateVoucherCode returns VOUCHER- followed by six random A-Z0-9 characters
func GenerateVoucherCode() (string, error) {
	buf := make([]byte, voucherLength)
	limit := big.NewInt(int64(len(voucherAlphabet)))
	for i := range buf {
		n, err := rand.Int(rand.Reader, limit)
		if err != nil {
			return "", fmt.Errorf("failed to generate voucher code: %w", err)
		}
		buf[i] = voucherAlphabet[n.Int64()]
	}
	return voucherPrefix + string(buf), nil
}

// IsVoucherCode reports whether code has the voucher shape
func IsVoucherCode(code string) bool {
	if len(code) != len(voucherPrefix)+voucherLength || code[:len(voucherPrefix)] != voucherPrefix {
		return false
	}
	for _, c := range code[len(voucherPrefix):] {
		if !(c >= 'A' && c <= 'Z') && !(c >= '0' && c <= '9') {
			return false
		}
	}
	return true
}
