package storage

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestSignedURLSignerGenerateAndParse(t *testing.T) {
	signer := NewSignedURLSigner("secret", time.Hour)
	token, expiresAt, err := signer.Generate("rooms/room-1/thumb.jpg")
	require.NoError(t, err)
	require.NotEmpty(t, token)
	require.False(t, expiresAt.IsZero())

	key, parsedExpiry, err := signer.Parse(token)
	require.NoError(t, err)
	require.Equal(t, "rooms/room-1/thumb.jpg", key)
	require.WithinDuration(t, expiresAt, parsedExpiry, time.Second)
}

func TestSignedURLSignerExpired(t *testing.T) {
	signer := NewSignedURLSigner("secret", time.Minute)
	now := time.Now()
	signer.now = func() time.Time { return now }
	token, _, err := signer.Generate("rooms/room-1/thumb.jpg")
	require.NoError(t, err)

	signer.now = func() time.Time { return now.Add(2 * time.Minute) }
	_, _, err = signer.Parse(token)
	require.Error(t, err)
}

func TestSignedURLSignerRejectsTampering(t *testing.T) {
	signer := NewSignedURLSigner("secret", time.Hour)
	token, _, err := signer.Generate("rooms/a.jpg")
	require.NoError(t, err)

	parts := strings.Split(token, ".")
	parts[1] = "9999999999"
	_, _, err = signer.Parse(strings.Join(parts, "."))
	require.Error(t, err)

	_, _, err = NewSignedURLSigner("other", time.Hour).Parse(token)
	require.Error(t, err)

	_, _, err = NewSignedURLSigner("", time.Hour).Generate("x")
	require.Error(t, err)
}
