package services

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSendVerificationWithoutAPIKeySkips(t *testing.T) {
	m := NewSendGridMailer("", "no-reply@contactbook.local", "http://localhost:8080", discardLogger())

	// Missing mail config must never fail registration.
	assert.NoError(t, m.SendVerification("alice@example.com", "token"))
}
