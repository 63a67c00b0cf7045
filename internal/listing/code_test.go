package listing

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalizeCode(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want string
	}{
		{"plain", "abc001", "ABC001"},
		{"bom", "\ufeffabc001", "ABC001"},
		{"numeric artifact", "12345.0", "12345"},
		{"whitespace", "  12abcd001 \t", "12ABCD001"},
		{"artifact behind whitespace", " 12345.0 ", "12345"},
		{"repeated artifact", "1.0.0", "1"},
		{"inner dot kept", "1.05", "1.05"},
		{"empty", "   ", ""},
		{"fullwidth parens kept", "abc（親）", "ABC（親）"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := NormalizeCode(tt.raw)
			assert.Equal(t, tt.want, got)
			assert.Equal(t, got, NormalizeCode(got), "normalization must be idempotent")
		})
	}
}

func TestCompactDate(t *testing.T) {
	tests := []struct {
		raw  string
		want string
	}{
		{"2024/01/05 10:00:00", "20240105"},
		{"2024-1-5", "202415"},
		{"20991231", "20991231"},
		{"", ""},
		{"未定", ""},
	}
	for _, tt := range tests {
		t.Run(tt.raw, func(t *testing.T) {
			assert.Equal(t, tt.want, CompactDate(tt.raw))
		})
	}
}

func TestIsZero(t *testing.T) {
	assert.True(t, IsZero("0"))
	assert.True(t, IsZero("0.0"))
	assert.True(t, IsZero(" 0 "))
	assert.False(t, IsZero(""))
	assert.False(t, IsZero("1"))
	assert.False(t, IsZero("無制限"))
}

func TestVendorCode(t *testing.T) {
	tests := []struct {
		code string
		want string
	}{
		{"12ABCD123", "12ABCD"},
		{"ABCDxyz", "ABCD"},
		{"ABC123", "ABC"},
		{"1234", ""},
		{"AB12", ""},
		{"", ""},
	}
	for _, tt := range tests {
		t.Run(tt.code, func(t *testing.T) {
			assert.Equal(t, tt.want, VendorCode(tt.code))
		})
	}
}

func TestBracketKey(t *testing.T) {
	key, ok := BracketKey("【送料無料】お米 5kg [abc001] 新米")
	assert.True(t, ok)
	assert.Equal(t, "abc001", key)

	_, ok = BracketKey("no code here")
	assert.False(t, ok)

	_, ok = BracketKey("broken [abc")
	assert.False(t, ok)
}
