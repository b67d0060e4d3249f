// Package domain defines the identifier primitives shared across the service.
//
// Each identifier validates at parse time so downstream code can rely on a
// non-zero value being well formed.
package domain

import (
	"fmt"
	"regexp"
	"strings"
)

// Ticker is an exchange trading symbol (e.g. "META", "BRK-B").
type Ticker string

var tickerPattern = regexp.MustCompile(`^[A-Z0-9.-]{1,10}$`)

// ParseTicker validates and normalizes a ticker symbol.
func ParseTicker(s string) (Ticker, error) {
	t := Ticker(strings.ToUpper(strings.TrimSpace(s)))
	if !tickerPattern.MatchString(string(t)) {
		return "", fmt.Errorf("invalid ticker: %q", s)
	}
	return t, nil
}

func (t Ticker) String() string {
	return string(t)
}

// IsNil returns true if the ticker is empty.
func (t Ticker) IsNil() bool {
	return t == ""
}

// CIK is the SEC Central Index Key, zero-padded to ten digits.
type CIK string

// ParseCIK validates a CIK, accepting unpadded numeric input.
func ParseCIK(s string) (CIK, error) {
	s = strings.TrimSpace(s)
	if s == "" || len(s) > 10 {
		return "", fmt.Errorf("invalid CIK: %q", s)
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return "", fmt.Errorf("invalid CIK: %q", s)
		}
	}
	return CIK(strings.Repeat("0", 10-len(s)) + s), nil
}

func (c CIK) String() string {
	return string(c)
}

// IsNil returns true if the CIK is empty.
func (c CIK) IsNil() bool {
	return c == ""
}

// EntityID is a knowledge-graph entity identifier (e.g. "Q380" for Meta).
type EntityID string

var entityIDPattern = regexp.MustCompile(`^Q[0-9]+$`)

// ParseEntityID validates a knowledge-graph entity identifier.
func ParseEntityID(s string) (EntityID, error) {
	id := EntityID(strings.TrimSpace(s))
	if !entityIDPattern.MatchString(string(id)) {
		return "", fmt.Errorf("invalid entity id: %q", s)
	}
	return id, nil
}

func (id EntityID) String() string {
	return string(id)
}

// IsNil returns true if the entity ID is empty.
func (id EntityID) IsNil() bool {
	return id == ""
}
