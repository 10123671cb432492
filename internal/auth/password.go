// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package auth provides password hashing and verification utilities
// using the PBKDF2-SHA256 algorithm for secure credential storage.
package auth

import (
	"crypto/rand"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/base64"
	"fmt"
	"strconv"
	"strings"

	"golang.org/x/crypto/pbkdf2"
)

// PBKDF2 parameters (OWASP recommended: 600k iterations for HMAC-SHA256)
const (
	PBKDF2Iterations = 600000
	PBKDF2KeyLen     = 32
	PBKDF2SaltLen    = 16
)

// pbkdf2Method is the algorithm prefix embedded in every digest.
const pbkdf2Method = "pbkdf2:sha256"

// NeedsRehash checks whether an encoded hash uses different parameters than
// the current defaults. Returns true if the hash should be re-created.
func NeedsRehash(encodedHash string) bool {
	parts := strings.Split(encodedHash, "$")
	if len(parts) != 3 {
		return true
	}

	method := strings.Split(parts[0], ":")
	if len(method) != 3 || method[0]+":"+method[1] != pbkdf2Method {
		return true
	}

	iterations, err := strconv.Atoi(method[2])
	if err != nil {
		return true
	}

	return iterations != PBKDF2Iterations
}

// HashPBKDF2 creates a PBKDF2-SHA256 hash of the input string.
// Returns encoded hash in format: pbkdf2:sha256:600000$salt$hash
func HashPBKDF2(input string) (string, error) {
	salt := make([]byte, PBKDF2SaltLen)
	if _, err := rand.Read(salt); err != nil {
		return "", fmt.Errorf("generating salt: %w", err)
	}

	key := pbkdf2.Key([]byte(input), salt, PBKDF2Iterations, PBKDF2KeyLen, sha256.New)

	b64Salt := base64.RawStdEncoding.EncodeToString(salt)
	b64Key := base64.RawStdEncoding.EncodeToString(key)

	return fmt.Sprintf("%s:%d$%s$%s", pbkdf2Method, PBKDF2Iterations, b64Salt, b64Key), nil
}

// VerifyPBKDF2 verifies an input string against a PBKDF2-SHA256 hash.
// Uses constant-time comparison to prevent timing attacks.
func VerifyPBKDF2(input, encodedHash string) (bool, error) {
	parts := strings.Split(encodedHash, "$")
	if len(parts) != 3 {
		return false, fmt.Errorf("invalid hash format")
	}

	method := strings.Split(parts[0], ":")
	if len(method) != 3 {
		return false, fmt.Errorf("invalid hash method")
	}

	if method[0] != "pbkdf2" {
		return false, fmt.Errorf("unsupported hash type: %s", method[0])
	}

	if method[1] != "sha256" {
		return false, fmt.Errorf("unsupported hash function: %s", method[1])
	}

	iterations, err := strconv.Atoi(method[2])
	if err != nil {
		return false, fmt.Errorf("parsing iteration count: %w", err)
	}
	if iterations < 1 {
		return false, fmt.Errorf("invalid iteration count: %d", iterations)
	}

	salt, err := base64.RawStdEncoding.DecodeString(parts[1])
	if err != nil {
		return false, fmt.Errorf("decoding salt: %w", err)
	}

	expectedKey, err := base64.RawStdEncoding.DecodeString(parts[2])
	if err != nil {
		return false, fmt.Errorf("decoding hash: %w", err)
	}
	if len(expectedKey) == 0 {
		return false, fmt.Errorf("empty derived key")
	}

	key := pbkdf2.Key([]byte(input), salt, iterations, len(expectedKey), sha256.New)
	return subtle.ConstantTimeCompare(key, expectedKey) == 1, nil
}

// HashPassword creates a PBKDF2-SHA256 hash of the password.
func HashPassword(password string) (string, error) {
	return HashPBKDF2(password)
}

// CheckPassword verifies a password against a PBKDF2-SHA256 hash.
func CheckPassword(password, encodedHash string) (bool, error) {
	return VerifyPBKDF2(password, encodedHash)
}
