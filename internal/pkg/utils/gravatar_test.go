package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestGetGravatarURLNormalizesEmail(t *testing.T) {
	a := GetGravatarURL("  Ana@Example.com ", 0)
	b := GetGravatarURL("ana@example.com", AvatarSize)
	assert.Equal(t, a, b)
	assert.Regexp(t, `^https://www\.gravatar\.com/avatar/[0-9a-f]{32}\?s=96&d=identicon$`, a)
	assert.Contains(t, GetGravatarURL("ana@example.com", 200), "s=200")
}
