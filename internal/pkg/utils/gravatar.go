package utils

import (
	"crypto/md5"
	"fmt"
	"strings"
)

// AvatarSize is the edge length in pixels of profile avatars.
const AvatarSize = 96

// GetGravatarURL returns the Gravatar image of email. Accounts without a
// Gravatar get a generated identicon so every member has a distinct avatar.
func GetGravatarURL(email string, size int) string {
	if size <= 0 {
		size = AvatarSize
	}
	hash := md5.Sum([]byte(strings.ToLower(strings.TrimSpace(email))))
	return fmt.Sprintf("https://www.gravatar.com/avatar/%x?s=%d&d=identicon", hash, size)
}
