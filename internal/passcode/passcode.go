// Package passcode hashes and verifies the maintenance passcode that gates
// destructive operations.
package passcode

import (
	"crypto/rand"
	"crypto/subtle"
	"encoding/base64"
	"fmt"
	"strings"

	"golang.org/x/crypto/argon2"
)

type params struct {
	time        uint32
	memoryKiB   uint32
	parallelism uint8
	keyLen      uint32
}

func defaultParams() params {
	return params{
		time:        1,
		memoryKiB:   64 * 1024,
		parallelism: 4,
		keyLen:      32,
	}
}

// Hash derives an argon2id hash of the passcode with a random salt, encoded
// in the standard modular crypt format.
func Hash(passcode string) (string, error) {
	p := defaultParams()
	salt := make([]byte, 16)
	if _, err := rand.Read(salt); err != nil {
		return "", fmt.Errorf("generating salt: %w", err)
	}
	key := argon2.IDKey([]byte(passcode), salt, p.time, p.memoryKiB, p.parallelism, p.keyLen)
	return fmt.Sprintf("$argon2id$v=%d$m=%d,t=%d,p=%d$%s$%s",
		argon2.Version, p.memoryKiB, p.time, p.parallelism,
		base64.RawStdEncoding.EncodeToString(salt),
		base64.RawStdEncoding.EncodeToString(key)), nil
}

// Verify reports whether passcode matches the encoded hash. Malformed hashes
// verify as false, never as an error the caller could mishandle.
func Verify(encoded, passcode string) bool {
	parts := strings.Split(encoded, "$")
	if len(parts) != 6 || parts[1] != "argon2id" {
		return false
	}
	var version int
	if _, err := fmt.Sscanf(parts[2], "v=%d", &version); err != nil || version != argon2.Version {
		return false
	}
	var p params
	if _, err := fmt.Sscanf(parts[3], "m=%d,t=%d,p=%d", &p.memoryKiB, &p.time, &p.parallelism); err != nil {
		return false
	}
	salt, err := base64.RawStdEncoding.DecodeString(parts[4])
	if err != nil {
		return false
	}
	expected, err := base64.RawStdEncoding.DecodeString(parts[5])
	if err != nil {
		return false
	}
	key := argon2.IDKey([]byte(passcode), salt, p.time, p.memoryKiB, p.parallelism, uint32(len(expected)))
	return subtle.ConstantTimeCompare(key, expected) == 1
}
