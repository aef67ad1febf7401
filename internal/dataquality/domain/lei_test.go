package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

var validLEIs = []string{
	"5493001KJTIIGC8Y1R12",
	"213800WAVVOPS85N2205",
	"549300E9PC51EN656011",
}

func TestIsValidLEI(t *testing.T) {
	for _, lei := range validLEIs {
		assert.True(t, IsValidLEI(lei), lei)
	}

	assert.False(t, IsValidLEI(""))
	assert.False(t, IsValidLEI("   "))
	assert.False(t, IsValidLEI("123456789"))
	assert.False(t, IsValidLEI("12345678901234567890A"))
	assert.False(t, IsValidLEI("5493001KJTIIGC8Y1R1@"))
	assert.False(t, IsValidLEI("5493001KJTIIGC8Y1R-1"))
	assert.False(t, IsValidLEI("5493001KJTIIGC8Y1R 1"))

	// 全数字与全字母都过不了校验位
	assert.False(t, IsValidLEI("12345678901234567890"))
	assert.False(t, IsValidLEI("ABCDEFGHIJKLMNOPQRST"))
}

func TestIsValidLEICaseInsensitive(t *testing.T) {
	assert.True(t, IsValidLEI("5493001kjtiigc8y1r12"))
	assert.True(t, IsValidLEI("5493001KjTiIgC8y1R12"))
	assert.True(t, IsValidLEI("  5493001KJTIIGC8Y1R12  "))
}

func TestIsValidLEIChecksumSensitivity(t *testing.T) {
	// 同类单字符替换必须破坏校验
	assert.False(t, IsValidLEI("6493001KJTIIGC8Y1R12"))
	assert.False(t, IsValidLEI("5493001LJTIIGC8Y1R12"))
	assert.False(t, IsValidLEI("5493001KJTIIGC8Y1R13"))
	assert.False(t, IsValidLEI("5493001KJTIIGC8Y1R21"))
}

func TestNormalizeLEI(t *testing.T) {
	assert.Equal(t, "5493001KJTIIGC8Y1R12", NormalizeLEI("5493001kjtiigc8y1r12"))
	assert.Equal(t, "5493001KJTIIGC8Y1R12", NormalizeLEI("  5493001KJTIIGC8Y1R12  "))

	assert.Empty(t, NormalizeLEI(""))
	assert.Empty(t, NormalizeLEI("INVALID"))
	assert.Empty(t, NormalizeLEI("123"))
}

func TestExtractLOU(t *testing.T) {
	assert.Equal(t, "5493", ExtractLOU("5493001KJTIIGC8Y1R12"))
	assert.Equal(t, "2138", ExtractLOU("213800WAVVOPS85N2205"))

	assert.Empty(t, ExtractLOU(""))
	assert.Empty(t, ExtractLOU("INVALID"))
}

func TestExtractEntityIdentifier(t *testing.T) {
	assert.Equal(t, "1KJTIIGC8Y1R", ExtractEntityIdentifier("5493001KJTIIGC8Y1R12"))

	assert.Empty(t, ExtractEntityIdentifier(""))
	assert.Empty(t, ExtractEntityIdentifier("INVALID"))
}

func TestIsFromLOU(t *testing.T) {
	assert.True(t, IsFromLOU("5493001KJTIIGC8Y1R12", "5493"))
	assert.True(t, IsFromLOU("5493001kjtiigc8y1r12", "5493"))

	assert.False(t, IsFromLOU("5493001KJTIIGC8Y1R12", "2138"))
	assert.False(t, IsFromLOU("5493001KJTIIGC8Y1R12", "XXXX"))
	assert.False(t, IsFromLOU("INVALID", "5493"))
	assert.False(t, IsFromLOU("", "5493"))
}
