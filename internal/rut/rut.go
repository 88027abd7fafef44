// Package rut implements validation and formatting of the Chilean national
// identification number (RUT): a digit body followed by a single check
// character computed with a modulo-11 weighted checksum.
package rut

import (
	"errors"
	"strings"
)

// ErrInvalid is returned when an input cannot be normalized into a RUT.
var ErrInvalid = errors.New("invalid rut")

// minLength is the minimum canonical length: a body of at least 7 digits
// plus the check character. Anything shorter cannot carry a valid checksum.
const minLength = 8

// Normalize strips every character except digits and the letter K
// (case-insensitive) and splits the result into the digit body and the
// provided check character.
func Normalize(raw string) (body string, check byte, err error) {
	var b strings.Builder
	for _, r := range raw {
		switch {
		case r >= '0' && r <= '9':
			b.WriteRune(r)
		case r == 'k' || r == 'K':
			b.WriteByte('K')
		}
	}
	clean := b.String()
	if len(clean) < minLength {
		return "", 0, ErrInvalid
	}
	body = clean[:len(clean)-1]
	check = clean[len(clean)-1]
	// K is only valid as the check character.
	if strings.ContainsRune(body, 'K') {
		return "", 0, ErrInvalid
	}
	return body, check, nil
}

// ComputeCheckChar returns the check character for a digit body, iterating
// from the least significant digit with the cyclic weight sequence
// 2,3,4,5,6,7,2,3,... The body must contain digits only.
func ComputeCheckChar(body string) byte {
	total := 0
	weight := 2
	for i := len(body) - 1; i >= 0; i-- {
		total += int(body[i]-'0') * weight
		weight++
		if weight > 7 {
			weight = 2
		}
	}
	switch remainder := 11 - (total % 11); remainder {
	case 11:
		return '0'
	case 10:
		return 'K'
	default:
		return byte('0' + remainder)
	}
}

// Validate reports whether the input carries the check character its digit
// body computes to. Inputs too short to normalize are simply invalid.
func Validate(raw string) bool {
	body, check, err := Normalize(raw)
	if err != nil {
		return false
	}
	return ComputeCheckChar(body) == check
}

// Canonical returns the comparison/storage form: digit body plus uppercase
// check character, no punctuation. It does not verify the checksum.
func Canonical(raw string) (string, error) {
	body, check, err := Normalize(raw)
	if err != nil {
		return "", err
	}
	return body + string(check), nil
}

// Format renders a normalizable RUT in display form: the body grouped in
// thousands with dots, a dash, and the check character. Inputs that cannot
// be normalized are returned unchanged.
func Format(raw string) string {
	body, check, err := Normalize(raw)
	if err != nil {
		return raw
	}
	var b strings.Builder
	for i, d := range body {
		if i > 0 && (len(body)-i)%3 == 0 {
			b.WriteByte('.')
		}
		b.WriteRune(d)
	}
	b.WriteByte('-')
	b.WriteByte(check)
	return b.String()
}
