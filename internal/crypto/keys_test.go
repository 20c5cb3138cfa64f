package crypto

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDeriveMasterKey(t *testing.T) {
	salt := []byte("envdev-test-salt")

	tests := []struct {
		name    string
		secret  string
		errMsg  string
		salt    []byte
		wantErr bool
	}{
		{
			name:   "valid secret",
			secret: "default-32-byte-encryption-key-here!!",
			salt:   salt,
		},
		{
			name:    "secret too short",
			secret:  "short",
			salt:    salt,
			wantErr: true,
			errMsg:  "at least 16 characters",
		},
		{
			name:    "empty secret",
			secret:  "",
			salt:    salt,
			wantErr: true,
			errMsg:  "at least 16 characters",
		},
		{
			name:    "empty salt",
			secret:  "a-long-enough-master-secret",
			salt:    nil,
			wantErr: true,
			errMsg:  "salt cannot be empty",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			key, err := DeriveMasterKey(tt.secret, tt.salt)
			if tt.wantErr {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.errMsg)
				assert.Nil(t, key)
				return
			}
			require.NoError(t, err)
			assert.Len(t, key, KeySize)
		})
	}
}

func TestDeriveMasterKey_Deterministic(t *testing.T) {
	salt := []byte("envdev-test-salt")

	key1, err := DeriveMasterKey("a-long-enough-master-secret", salt)
	require.NoError(t, err)
	key2, err := DeriveMasterKey("a-long-enough-master-secret", salt)
	require.NoError(t, err)
	other, err := DeriveMasterKey("another-long-master-secret!", salt)
	require.NoError(t, err)

	assert.Equal(t, key1, key2)
	assert.NotEqual(t, key1, other)

	// Ключ из деривации должен подходить для Sealer, и значения читаются после "рестарта"
	sealer1, err := NewSealer(key1)
	require.NoError(t, err)
	blob, err := sealer1.Seal([]byte("value"))
	require.NoError(t, err)

	sealer2, err := NewSealer(key2)
	require.NoError(t, err)
	opened, err := sealer2.Open(blob)
	require.NoError(t, err)
	assert.Equal(t, []byte("value"), opened)
}
