package crypto

import (
	"fmt"

	"golang.org/x/crypto/argon2"
)

// Параметры Argon2id для деривации master key
const (
	// Argon2Time - количество итераций (time cost)
	Argon2Time = 1
	// Argon2Memory - объем памяти в KB (64MB = 64*1024 KB)
	Argon2Memory = 64 * 1024
	// Argon2Threads - количество параллельных потоков
	Argon2Threads = 4

	// MinMasterSecretLen is the shortest configured master secret accepted.
	MinMasterSecretLen = 16
)

// DeriveMasterKey turns the configured encryption secret into the 32-byte
// AES-256 master key. The derivation is deterministic: the same secret and
// salt always produce the same key, so previously sealed values stay readable
// across restarts.
func DeriveMasterKey(secret string, salt []byte) ([]byte, error) {
	if len(secret) < MinMasterSecretLen {
		return nil, fmt.Errorf("encryption secret must be at least %d characters", MinMasterSecretLen)
	}
	if len(salt) == 0 {
		return nil, fmt.Errorf("encryption salt cannot be empty")
	}

	return argon2.IDKey([]byte(secret), salt, Argon2Time, Argon2Memory, Argon2Threads, KeySize), nil
}
