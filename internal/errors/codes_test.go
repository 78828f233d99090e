package errors

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMessage_EveryCatalogCode(t *testing.T) {
	for _, code := range Codes() {
		assert.NotEmpty(t, Message(code), "code %s has no message", code)
		assert.NotEqual(t, fallbackMessage, Message(code), "code %s uses the fallback", code)
		assert.True(t, Known(code))
		assert.NotEqual(t, RangeUnknown, RangeOf(code), "code %s has no range", code)
	}
}

func TestMessage_UnknownCode(t *testing.T) {
	assert.Equal(t, fallbackMessage, Message("E9999"))
	assert.Equal(t, fallbackMessage, Message(""))
	assert.False(t, Known("E9999"))
}

func TestRangeOf(t *testing.T) {
	tests := []struct {
		code Code
		want string
	}{
		{CodeInvalidCredentials, RangeAuthentication},
		{CodeValidationFailed, RangeValidation},
		{CodeInsufficientBalance, RangeBusinessRule},
		{CodeExternalTimeout, RangeExternalService},
		{CodeInternal, RangeSystem},
		{"E9001", RangeUnknown},
		{"X1001", RangeUnknown},
		{"E10", RangeUnknown},
		{"", RangeUnknown},
	}

	for _, tt := range tests {
		t.Run(string(tt.code), func(t *testing.T) {
			assert.Equal(t, tt.want, RangeOf(tt.code))
		})
	}
}

func TestInternalMessage(t *testing.T) {
	assert.Equal(t, "An internal error occurred. Please try again later.", Message(CodeInternal))
}
