// Copyright 2026 The UAssetKit Authors
// SPDX-License-Identifier: Apache-2.0

package assetcache

import (
	"encoding/hex"
	"fmt"

	"github.com/zeebo/blake3"
)

// Hash is a 32-byte BLAKE3 digest of raw asset bytes.
type Hash [32]byte

// assetDomainKey separates cache keys from any other BLAKE3 use of
// the same bytes. The value is the ASCII domain name zero-padded to
// 32 bytes, readable in hex dumps; changing it invalidates every
// existing cache entry.
var assetDomainKey = [32]byte{
	'u', 'a', 's', 's', 'e', 't', 'k', 'i', 't', '.', 'c', 'a', 'c', 'h', 'e', '.',
	'a', 's', 's', 'e', 't', 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0,
}

// HashAsset computes the cache key for raw asset bytes.
func HashAsset(data []byte) Hash {
	hasher, err := blake3.NewKeyed(assetDomainKey[:])
	if err != nil {
		panic("assetcache: BLAKE3 keyed hash initialization failed: " + err.Error())
	}
	hasher.Write(data)
	var hash Hash
	copy(hash[:], hasher.Sum(nil))
	return hash
}

// String returns the canonical hex form of a hash.
func (h Hash) String() string {
	return hex.EncodeToString(h[:])
}

// ParseHash parses a 64-character hex string into a Hash.
func ParseHash(hexString string) (Hash, error) {
	decoded, err := hex.DecodeString(hexString)
	if err != nil {
		return Hash{}, fmt.Errorf("parsing cache key: %w", err)
	}
	if len(decoded) != 32 {
		return Hash{}, fmt.Errorf("cache key is %d bytes, want 32", len(decoded))
	}
	var hash Hash
	copy(hash[:], decoded)
	return hash, nil
}
