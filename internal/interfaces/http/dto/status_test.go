package dto

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestStatusFor(t *testing.T) {
	want := map[string]int{
		"OK":                    200,
		"CREATED":               201,
		"NO_CONTENT":            204,
		"BAD_REQUEST":           400,
		"UNAUTHORIZED":          401,
		"FORBIDDEN":             403,
		"NOT_FOUND":             404,
		"CONFLICT":              409,
		"UNPROCESSABLE_ENTITY":  422,
		"TOO_MANY_REQUESTS":     429,
		"INTERNAL_SERVER_ERROR": 500,
		"SERVICE_UNAVAILABLE":   503,
	}

	assert.Len(t, StatusNames(), len(want))
	for name, code := range want {
		t.Run(name, func(t *testing.T) {
			got, ok := StatusFor(name)
			assert.True(t, ok)
			assert.Equal(t, code, got)
			assert.Equal(t, name, StatusName(code))
		})
	}
}

func TestStatusFor_Unknown(t *testing.T) {
	_, ok := StatusFor("IM_A_TEAPOT")
	assert.False(t, ok)
	assert.Empty(t, StatusName(418))
}

func TestDefaultMessage(t *testing.T) {
	assert.Equal(t, DefaultInternalErrorMessage, DefaultMessage(500))
	assert.Equal(t, "Validation failed", DefaultMessage(422))
	assert.Equal(t, "I'm a teapot", DefaultMessage(418))
}
