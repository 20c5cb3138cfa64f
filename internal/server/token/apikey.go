package token

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"strings"
)

const (
	// APIKeyPrefix marks App API keys so they can be told apart from JWTs
	APIKeyPrefix = "envdev_"
	// APIKeyRandomBytes количество случайных байт в ключе
	APIKeyRandomBytes = 24
)

// GenerateAPIKey returns a new long-lived App API key:
// the fixed prefix followed by hex-encoded random bytes.
func GenerateAPIKey() (string, error) {
	// Генерируем случайные 24 байта
	keyBytes := make([]byte, APIKeyRandomBytes)
	if _, err := rand.Read(keyBytes); err != nil {
		return "", fmt.Errorf("failed to generate api key: %w", err)
	}

	return APIKeyPrefix + hex.EncodeToString(keyBytes), nil
}

// IsAPIKey reports whether a bearer credential looks like an App API key.
func IsAPIKey(credential string) bool {
	return strings.HasPrefix(credential, APIKeyPrefix)
}
