// Package utils holds small parsing helpers shared by the HTTP handlers and
// the CLI. They know nothing about the domain.
package utils

import (
	"errors"
	"strconv"
	"strings"
)

// ErrInvalidID is returned by ParseID for malformed or out-of-range ids.
var ErrInvalidID = errors.New("invalid id")

// AtoiDefault parses s (surrounding space ignored) or returns def when s is
// empty or not an int.
func AtoiDefault(s string, def int) int {
	s = strings.TrimSpace(s)
	if s == "" {
		return def
	}
	if n, err := strconv.Atoi(s); err == nil {
		return n
	}
	return def
}

// Clamp bounds v to [lo, hi].
func Clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// ParseID parses a decimal record id. Zero is accepted only with allowZero,
// where it stands for "site level"; negative values never are.
func ParseID(s string, allowZero bool) (int64, error) {
	id, err := strconv.ParseInt(strings.TrimSpace(s), 10, 64)
	if err != nil || id < 0 || (id == 0 && !allowZero) {
		return 0, ErrInvalidID
	}
	return id, nil
}
