// Package referral turns user ids into the short codes members share in
// invitation links, and back.
package referral

import (
	"strings"
)

// base62, digits first so small ids stay readable
const alphabet = "0123456789abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ"

// maxCodeLength bounds Parse so an oversized code cannot overflow the id.
const maxCodeLength = 10

// Code returns the referral code of the user with the given id.
func Code(userID uint) string {
	if userID == 0 {
		return ""
	}

	base := uint(len(alphabet))
	var buf [maxCodeLength + 2]byte
	i := len(buf)
	for id := userID; id > 0; id /= base {
		i--
		buf[i] = alphabet[id%base]
	}
	return string(buf[i:])
}

// Parse returns the user id behind code. Surrounding whitespace is ignored;
// any other character outside the alphabet makes the code invalid.
func Parse(code string) (uint, bool) {
	code = strings.TrimSpace(code)
	if code == "" || len(code) > maxCodeLength {
		return 0, false
	}

	var id uint
	for i := 0; i < len(code); i++ {
		v := strings.IndexByte(alphabet, code[i])
		if v < 0 {
			return 0, false
		}
		id = id*uint(len(alphabet)) + uint(v)
	}
	if id == 0 {
		return 0, false
	}
	return id, true
}
