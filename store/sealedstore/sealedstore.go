// SAGE - Secure Agent Guarantee Engine
// Copyright (C) 2025 SAGE-X-project
//
// This file is part of SAGE.
//
// SAGE is free software: you can redistribute it and/or modify
// it under the terms of the GNU Lesser General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// SAGE is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE. See the
// GNU Lesser General Public License for more details.
//
// You should have received a copy of the GNU Lesser General Public License
// along with SAGE. If not, see <https://www.gnu.org/licenses/>.

// Package sealedstore wraps an in-memory store.Store with ChaCha20-Poly1305
// envelope encryption, so records never sit in process memory as plaintext
// JSON. A flow checkpoint carries device identifiers and, transiently, a
// derived SAS established secret reference; sealing it at rest costs one
// AEAD seal/open per store call and closes off a class of memory-dump
// exposure the plain memory.Store doesn't.
package sealedstore

import (
	"crypto/rand"
	"crypto/sha256"
	"fmt"
	"io"

	"golang.org/x/crypto/chacha20poly1305"
	"golang.org/x/crypto/hkdf"
)

// Sealer seals and opens opaque byte payloads with ChaCha20-Poly1305.
// Output format is nonce || ciphertext, mirroring the wire format the
// verification transport itself never needs to parse.
type Sealer struct {
	aead  cipherAEAD
	label string
}

type cipherAEAD interface {
	Seal(dst, nonce, plaintext, additionalData []byte) []byte
	Open(dst, nonce, ciphertext, additionalData []byte) ([]byte, error)
	NonceSize() int
}

// NewSealer derives a 32-byte ChaCha20-Poly1305 key from masterKey via
// HKDF-SHA256, salted by label so distinct record kinds (flow checkpoints,
// device caches) never share a derived key even when sealed by the same
// master key.
func NewSealer(masterKey []byte, label string) (*Sealer, error) {
	if len(masterKey) == 0 {
		return nil, fmt.Errorf("sealedstore: empty master key")
	}

	key := make([]byte, chacha20poly1305.KeySize)
	kdf := hkdf.New(sha256.New, masterKey, []byte(label), []byte("sealedstore-key"))
	if _, err := io.ReadFull(kdf, key); err != nil {
		return nil, fmt.Errorf("sealedstore: derive key: %w", err)
	}

	aead, err := chacha20poly1305.New(key)
	if err != nil {
		return nil, fmt.Errorf("sealedstore: new aead: %w", err)
	}

	return &Sealer{aead: aead, label: label}, nil
}

// Seal encrypts plaintext, returning nonce || ciphertext.
func (s *Sealer) Seal(plaintext []byte) ([]byte, error) {
	nonce := make([]byte, s.aead.NonceSize())
	if _, err := io.ReadFull(rand.Reader, nonce); err != nil {
		return nil, fmt.Errorf("sealedstore: nonce: %w", err)
	}

	sealed := s.aead.Seal(nil, nonce, plaintext, []byte(s.label))

	out := make([]byte, len(nonce)+len(sealed))
	copy(out, nonce)
	copy(out[len(nonce):], sealed)
	return out, nil
}

// Open decrypts a payload produced by Seal.
func (s *Sealer) Open(sealed []byte) ([]byte, error) {
	n := s.aead.NonceSize()
	if len(sealed) < n {
		return nil, fmt.Errorf("sealedstore: sealed payload too short")
	}

	nonce, ciphertext := sealed[:n], sealed[n:]
	plaintext, err := s.aead.Open(nil, nonce, ciphertext, []byte(s.label))
	if err != nil {
		return nil, fmt.Errorf("sealedstore: open: %w", err)
	}
	return plaintext, nil
}
