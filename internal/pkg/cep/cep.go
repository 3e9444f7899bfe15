// Package cep handles Brazilian postal codes (CEP). Plans are served per
// 5-digit prefix, so every CEP entering the system is reduced to that prefix.
package cep

import "strings"

const PrefixLength = 5

// Normalize drops every non-digit and keeps the first five digits.
// "01310-100" becomes "01310". Inputs with fewer digits are returned shortened.
func Normalize(raw string) string {
	var b strings.Builder
	b.Grow(PrefixLength)
	for _, r := range raw {
		if r < '0' || r > '9' {
			continue
		}
		b.WriteRune(r)
		if b.Len() == PrefixLength {
			break
		}
	}
	return b.String()
}

// Valid reports whether raw carries at least a full prefix.
func Valid(raw string) bool {
	return len(Normalize(raw)) == PrefixLength
}
