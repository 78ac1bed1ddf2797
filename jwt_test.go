package main

import (
	"testing"
	"time"

	"github.com/go-playground/assert/v2"
)

func TestTokenRoundTrip(t *testing.T) {
	secret := []byte("s3cret")
	token, err := createToken(secret, time.Minute)
	assert.Equal(t, err, nil)
	assert.Equal(t, verifyToken(secret, token), nil)
}

func TestTokenRejected(t *testing.T) {
	secret := []byte("s3cret")

	token, err := createToken(secret, time.Minute)
	assert.Equal(t, err, nil)
	assert.NotEqual(t, verifyToken([]byte("other"), token), nil)

	expired, err := createToken(secret, -time.Minute)
	assert.Equal(t, err, nil)
	assert.NotEqual(t, verifyToken(secret, expired), nil)

	assert.NotEqual(t, verifyToken(secret, "not.a.token"), nil)
}

func TestJwtSecretRequired(t *testing.T) {
	t.Setenv(jwtSecretEnv, "")
	_, err := jwtSecret()
	assert.NotEqual(t, err, nil)

	t.Setenv(jwtSecretEnv, "abc")
	secret, err := jwtSecret()
	assert.Equal(t, err, nil)
	assert.Equal(t, string(secret), "abc")
}
