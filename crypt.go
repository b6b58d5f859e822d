// Copyright (c) 2025 suprsokr
// SPDX-License-Identifier: MIT

package mix

import (
	"crypto/rand"
	"errors"
	"fmt"
	"math/big"

	"golang.org/x/crypto/blowfish"
)

// Key transport sizes
const (
	// KeySize is the size of a decrypted Blowfish key.
	KeySize = 56

	// WrappedKeySize is the size of the encrypted key stored in the header.
	WrappedKeySize = 80

	// wrappedChunkSize is the size of one encrypted key chunk.
	wrappedChunkSize = 40

	// keyHalfSize is the size of one decrypted key chunk.
	keyHalfSize = 28
)

// ErrKeySize indicates a Blowfish key or key chunk of the wrong size.
var ErrKeySize = errors.New("bad blowfish key size")

// BlowfishKey is a 56-byte archive index encryption key.
type BlowfishKey [KeySize]byte

// Westwood's key-transport constants, little-endian. The key pair is
// fixed and shipped with every game, so none of this is secret.
var (
	keyExponent = []byte{1, 0, 1}

	keyModulus = []byte{
		21, 127, 67, 170, 61, 79, 251, 209, 230, 193, 176, 248, 106, 14, 221, 171,
		74, 176, 130, 102, 250, 84, 170, 232, 162, 63, 113, 81, 214, 96, 81, 86,
		228, 252, 57, 109, 8, 218, 188, 81,
	}

	keyPrivateExponent = []byte{
		129, 48, 137, 130, 230, 244, 251, 161, 6, 87, 223, 27, 78, 39, 88, 67,
		51, 212, 180, 74, 174, 174, 208, 219, 91, 94, 16, 84, 124, 198, 34, 196,
		71, 156, 19, 153, 188, 55, 86, 10,
	}
)

// GenerateKey creates a random Blowfish key.
func GenerateKey() (*BlowfishKey, error) {
	var key BlowfishKey
	if _, err := rand.Read(key[:]); err != nil {
		return nil, fmt.Errorf("generate key: %w", err)
	}
	return &key, nil
}

// unwrapKey decrypts the 80-byte header key into a 56-byte Blowfish key.
// Each 40-byte chunk is a little-endian big integer raised to the public
// exponent; the two 28-byte results are padded to exact width (big-integer
// conversions drop leading zeros) and concatenated.
func unwrapKey(wrapped []byte) (*BlowfishKey, error) {
	if len(wrapped) != WrappedKeySize {
		return nil, fmt.Errorf("%w: wrapped key is %d bytes, want %d", ErrKeySize, len(wrapped), WrappedKeySize)
	}

	exp := bigFromLE(keyExponent)
	mod := bigFromLE(keyModulus)

	var key BlowfishKey
	for i := 0; i < 2; i++ {
		chunk := bigFromLE(wrapped[i*wrappedChunkSize : (i+1)*wrappedChunkSize])
		half, ok := bigToLE(chunk.Exp(chunk, exp, mod), keyHalfSize)
		if !ok {
			return nil, fmt.Errorf("%w: decrypted chunk %d exceeds %d bytes", ErrKeySize, i, keyHalfSize)
		}
		copy(key[i*keyHalfSize:], half)
	}
	return &key, nil
}

// wrapKey encrypts a 56-byte Blowfish key into its 80-byte header form.
// Inverse of unwrapKey: two 28-byte halves raised to the private exponent,
// each padded to a full 40-byte chunk.
func wrapKey(key *BlowfishKey) []byte {
	exp := bigFromLE(keyPrivateExponent)
	mod := bigFromLE(keyModulus)

	wrapped := make([]byte, 0, WrappedKeySize)
	for i := 0; i < 2; i++ {
		half := bigFromLE(key[i*keyHalfSize : (i+1)*keyHalfSize])
		chunk, _ := bigToLE(half.Exp(half, exp, mod), wrappedChunkSize)
		wrapped = append(wrapped, chunk...)
	}
	return wrapped
}

// newCipher initializes a Blowfish cipher from an archive key.
func newCipher(key *BlowfishKey) (*blowfish.Cipher, error) {
	cipher, err := blowfish.NewCipher(key[:])
	if err != nil {
		return nil, fmt.Errorf("init blowfish: %w", err)
	}
	return cipher, nil
}

// encryptBlocks encrypts buf in place in ECB mode.
// The length must be a multiple of the cipher block size.
func encryptBlocks(cipher *blowfish.Cipher, buf []byte) {
	for i := 0; i+blowfish.BlockSize <= len(buf); i += blowfish.BlockSize {
		cipher.Encrypt(buf[i:i+blowfish.BlockSize], buf[i:i+blowfish.BlockSize])
	}
}

// decryptBlocks decrypts buf in place in ECB mode.
func decryptBlocks(cipher *blowfish.Cipher, buf []byte) {
	for i := 0; i+blowfish.BlockSize <= len(buf); i += blowfish.BlockSize {
		cipher.Decrypt(buf[i:i+blowfish.BlockSize], buf[i:i+blowfish.BlockSize])
	}
}

// bigFromLE interprets little-endian bytes as an unsigned big integer.
func bigFromLE(b []byte) *big.Int {
	be := make([]byte, len(b))
	for i, v := range b {
		be[len(b)-1-i] = v
	}
	return new(big.Int).SetBytes(be)
}

// bigToLE serializes an unsigned big integer to exactly width little-endian
// bytes. Returns false if the value does not fit.
func bigToLE(n *big.Int, width int) ([]byte, bool) {
	be := n.Bytes()
	if len(be) > width {
		return nil, false
	}
	le := make([]byte, width)
	for i, v := range be {
		le[len(be)-1-i] = v
	}
	return le, true
}
