package cep

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalize(t *testing.T) {
	tests := map[string]string{
		"01310-100": "01310",
		"01310100":  "01310",
		"01310":     "01310",
		" 20040-02": "20040",
		"123":       "123",
		"":          "",
		"ab-cd":     "",
	}
	for in, want := range tests {
		assert.Equal(t, want, Normalize(in), in)
	}
}

func TestValid(t *testing.T) {
	assert.True(t, Valid("01310-100"))
	assert.True(t, Valid("30130"))
	assert.False(t, Valid("3013"))
	assert.False(t, Valid("cep"))
}
