// Copyright 2026 The UAssetKit Authors
// SPDX-License-Identifier: Apache-2.0

package pak

import (
	"crypto/aes"
	"fmt"
)

// The archive format encrypts index and entry blocks with AES-256 in
// ECB mode over 16-byte-aligned regions. ECB is what the format
// mandates; the key never protects anything beyond casual extraction.

const aesBlockSize = 16

// alignBlock rounds n up to the AES block size.
func alignBlock(n int) int {
	return (n + aesBlockSize - 1) &^ (aesBlockSize - 1)
}

// decryptECB decrypts data in place. The length must be a multiple of
// the AES block size.
func decryptECB(key, data []byte) error {
	block, err := aes.NewCipher(key)
	if err != nil {
		return fmt.Errorf("aes key: %w", err)
	}
	if len(data)%aesBlockSize != 0 {
		return fmt.Errorf("encrypted region of %d bytes is not block aligned", len(data))
	}
	for offset := 0; offset < len(data); offset += aesBlockSize {
		block.Decrypt(data[offset:offset+aesBlockSize], data[offset:offset+aesBlockSize])
	}
	return nil
}

// encryptECB encrypts data in place. The length must be a multiple of
// the AES block size.
func encryptECB(key, data []byte) error {
	block, err := aes.NewCipher(key)
	if err != nil {
		return fmt.Errorf("aes key: %w", err)
	}
	if len(data)%aesBlockSize != 0 {
		return fmt.Errorf("plaintext region of %d bytes is not block aligned", len(data))
	}
	for offset := 0; offset < len(data); offset += aesBlockSize {
		block.Encrypt(data[offset:offset+aesBlockSize], data[offset:offset+aesBlockSize])
	}
	return nil
}
