package crypto

import (
	"crypto/rand"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestSealer(t *testing.T) *Sealer {
	t.Helper()

	key := make([]byte, KeySize)
	_, _ = rand.Read(key)

	sealer, err := NewSealer(key)
	require.NoError(t, err)
	return sealer
}

func TestNewSealer(t *testing.T) {
	tests := []struct {
		name    string
		errMsg  string
		key     []byte
		wantErr bool
	}{
		{
			name: "valid 32 byte key",
			key:  make([]byte, 32),
		},
		{
			name:    "invalid key length - too short",
			key:     make([]byte, 16), // AES-128 не принимаем
			wantErr: true,
			errMsg:  "encryption key must be 32 bytes",
		},
		{
			name:    "invalid key length - too long",
			key:     make([]byte, 64),
			wantErr: true,
			errMsg:  "encryption key must be 32 bytes",
		},
		{
			name:    "nil key",
			key:     nil,
			wantErr: true,
			errMsg:  "encryption key must be 32 bytes",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sealer, err := NewSealer(tt.key)
			if tt.wantErr {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.errMsg)
				assert.Nil(t, sealer)
				return
			}
			require.NoError(t, err)
			assert.NotNil(t, sealer)
		})
	}
}

func TestSealer_RoundTrip(t *testing.T) {
	sealer := newTestSealer(t)

	tests := []struct {
		name      string
		plaintext []byte
	}{
		{name: "simple value", plaintext: []byte("p@ss")},
		{name: "empty value", plaintext: []byte{}},
		{name: "unicode value", plaintext: []byte("пароль 🔑 secret")},
		{name: "value containing separator", plaintext: []byte("a:b:c:d")},
		{name: "long value", plaintext: []byte(strings.Repeat("x", 64*1024))},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			blob, err := sealer.Seal(tt.plaintext)
			require.NoError(t, err)
			assert.True(t, strings.HasPrefix(blob, "v1:"))
			assert.Len(t, strings.Split(blob, ":"), 4)

			opened, err := sealer.Open(blob)
			require.NoError(t, err)
			assert.Equal(t, string(tt.plaintext), string(opened))
		})
	}
}

func TestSealer_FreshNoncePerCall(t *testing.T) {
	sealer := newTestSealer(t)
	plaintext := []byte("same plaintext")

	first, err := sealer.Seal(plaintext)
	require.NoError(t, err)
	second, err := sealer.Seal(plaintext)
	require.NoError(t, err)

	assert.NotEqual(t, first, second, "two seals of one value must differ")
	assert.NotEqual(t, strings.Split(first, ":")[1], strings.Split(second, ":")[1], "nonce must not repeat")

	for _, blob := range []string{first, second} {
		opened, err := sealer.Open(blob)
		require.NoError(t, err)
		assert.Equal(t, plaintext, opened)
	}
}

func TestSealer_OpenRejectsAnyFlippedByte(t *testing.T) {
	sealer := newTestSealer(t)

	blob, err := sealer.Seal([]byte("DB_PASS=p@ss"))
	require.NoError(t, err)

	for i := 0; i < len(blob); i++ {
		for _, mask := range []byte{0x01, 0x20, 0x80} {
			tampered := []byte(blob)
			tampered[i] ^= mask

			opened, err := sealer.Open(string(tampered))
			require.ErrorIs(t, err, ErrDecryption, "position %d mask %#x", i, mask)
			assert.Nil(t, opened)
		}
	}
}

func TestSealer_OpenWithWrongKey(t *testing.T) {
	blob, err := newTestSealer(t).Seal([]byte("secret"))
	require.NoError(t, err)

	opened, err := newTestSealer(t).Open(blob)
	assert.ErrorIs(t, err, ErrDecryption)
	assert.Nil(t, opened)
}

func TestSealer_OpenMalformed(t *testing.T) {
	sealer := newTestSealer(t)

	tests := []struct {
		name string
		blob string
	}{
		{name: "empty string", blob: ""},
		{name: "plaintext stored by mistake", blob: "p@ss"},
		{name: "unknown version", blob: "v2:AAAAAAAAAAAAAAAA:AAAAAAAAAAAAAAAAAAAAAA:"},
		{name: "missing part", blob: "v1:AAAAAAAAAAAAAAAA:AAAAAAAAAAAAAAAAAAAAAA"},
		{name: "extra part", blob: "v1:AAAAAAAAAAAAAAAA:AAAAAAAAAAAAAAAAAAAAAA:AA:AA"},
		{name: "short nonce", blob: "v1:AAAA:AAAAAAAAAAAAAAAAAAAAAA:"},
		{name: "short tag", blob: "v1:AAAAAAAAAAAAAAAA:AAAA:"},
		{name: "invalid base64", blob: "v1:!!!!:AAAAAAAAAAAAAAAAAAAAAA:"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			opened, err := sealer.Open(tt.blob)
			assert.ErrorIs(t, err, ErrDecryption)
			assert.Nil(t, opened)
		})
	}
}
