// Copyright 2026 The UAssetKit Authors
// SPDX-License-Identifier: Apache-2.0

package pak

import (
	"bytes"
	"fmt"
	"io"

	"github.com/klauspost/compress/gzip"
	"github.com/klauspost/compress/zlib"
	"github.com/klauspost/compress/zstd"
	"github.com/pierrec/lz4/v4"

	"github.com/uassetkit/uassetkit/lib/uasset"
)

// Method is a compression method as named in the archive footer.
// Version 8 archives introduced the name table; older versions store
// legacy flag values that map onto the same names.
type Method string

const (
	MethodNone  Method = "None"
	MethodZlib  Method = "Zlib"
	MethodGzip  Method = "Gzip"
	MethodZstd  Method = "Zstd"
	MethodLZ4   Method = "LZ4"
	MethodOodle Method = "Oodle"
)

// zstd coders are reused across calls; both are safe for concurrent
// use.
var (
	zstdEncoder *zstd.Encoder
	zstdDecoder *zstd.Decoder
)

func init() {
	var err error
	zstdEncoder, err = zstd.NewWriter(nil, zstd.WithEncoderLevel(zstd.SpeedDefault))
	if err != nil {
		panic("pak: zstd encoder initialization failed: " + err.Error())
	}
	zstdDecoder, err = zstd.NewReader(nil)
	if err != nil {
		panic("pak: zstd decoder initialization failed: " + err.Error())
	}
}

// compressBlock compresses one block with the given method. Unlike a
// general-purpose store, the archive format has no incompressible
// fallback per block: the method was chosen per entry and every block
// uses it, even when the output grows.
func compressBlock(data []byte, method Method) ([]byte, error) {
	switch method {
	case MethodNone:
		return data, nil

	case MethodZlib:
		var buf bytes.Buffer
		zw := zlib.NewWriter(&buf)
		if _, err := zw.Write(data); err != nil {
			return nil, fmt.Errorf("zlib compress: %w", err)
		}
		if err := zw.Close(); err != nil {
			return nil, fmt.Errorf("zlib compress: %w", err)
		}
		return buf.Bytes(), nil

	case MethodGzip:
		var buf bytes.Buffer
		gw := gzip.NewWriter(&buf)
		if _, err := gw.Write(data); err != nil {
			return nil, fmt.Errorf("gzip compress: %w", err)
		}
		if err := gw.Close(); err != nil {
			return nil, fmt.Errorf("gzip compress: %w", err)
		}
		return buf.Bytes(), nil

	case MethodZstd:
		return zstdEncoder.EncodeAll(data, nil), nil

	case MethodLZ4:
		destination := make([]byte, lz4.CompressBlockBound(len(data)))
		written, err := lz4.CompressBlock(data, destination, nil)
		if err != nil {
			return nil, fmt.Errorf("lz4 compress: %w", err)
		}
		if written == 0 {
			// The LZ4 block format has no stored mode; incompressible
			// entries should be added with MethodNone instead.
			return nil, fmt.Errorf("lz4 compress: block did not shrink")
		}
		return destination[:written], nil

	case MethodOodle:
		return nil, fmt.Errorf("%w: oodle compression", uasset.ErrUnimplementedVariant)

	default:
		return nil, fmt.Errorf("unknown compression method %q", method)
	}
}

// decompressBlock decompresses one block. uncompressedSize is the
// exact expected output length; a mismatch is corruption.
func decompressBlock(compressed []byte, method Method, uncompressedSize int) ([]byte, error) {
	switch method {
	case MethodNone:
		if len(compressed) != uncompressedSize {
			return nil, fmt.Errorf("stored block is %d bytes, want %d", len(compressed), uncompressedSize)
		}
		return compressed, nil

	case MethodZlib:
		zr, err := zlib.NewReader(bytes.NewReader(compressed))
		if err != nil {
			return nil, fmt.Errorf("zlib decompress: %w", err)
		}
		defer zr.Close()
		return readExactly(zr, uncompressedSize, "zlib")

	case MethodGzip:
		gr, err := gzip.NewReader(bytes.NewReader(compressed))
		if err != nil {
			return nil, fmt.Errorf("gzip decompress: %w", err)
		}
		defer gr.Close()
		return readExactly(gr, uncompressedSize, "gzip")

	case MethodZstd:
		result, err := zstdDecoder.DecodeAll(compressed, make([]byte, 0, uncompressedSize))
		if err != nil {
			return nil, fmt.Errorf("zstd decompress: %w", err)
		}
		if len(result) != uncompressedSize {
			return nil, fmt.Errorf("zstd decompress: got %d bytes, want %d", len(result), uncompressedSize)
		}
		return result, nil

	case MethodLZ4:
		destination := make([]byte, uncompressedSize)
		read, err := lz4.UncompressBlock(compressed, destination)
		if err != nil {
			return nil, fmt.Errorf("lz4 decompress: %w", err)
		}
		if read != uncompressedSize {
			return nil, fmt.Errorf("lz4 decompress: got %d bytes, want %d", read, uncompressedSize)
		}
		return destination, nil

	case MethodOodle:
		return nil, fmt.Errorf("%w: oodle compression", uasset.ErrUnimplementedVariant)

	default:
		return nil, fmt.Errorf("unknown compression method %q", method)
	}
}

func readExactly(r io.Reader, size int, label string) ([]byte, error) {
	result := make([]byte, size)
	if _, err := io.ReadFull(r, result); err != nil {
		return nil, fmt.Errorf("%s decompress: %w", label, err)
	}
	// A trailing byte means the stream was longer than declared.
	var extra [1]byte
	if n, _ := r.Read(extra[:]); n != 0 {
		return nil, fmt.Errorf("%s decompress: stream longer than declared %d bytes", label, size)
	}
	return result, nil
}

// Compress compresses one block. Exported for sibling container
// formats that share the method name vocabulary.
func Compress(data []byte, method Method) ([]byte, error) {
	return compressBlock(data, method)
}

// Decompress decompresses one block of known uncompressed size.
func Decompress(compressed []byte, method Method, uncompressedSize int) ([]byte, error) {
	return decompressBlock(compressed, method, uncompressedSize)
}

// legacyMethod maps pre-version-8 compression flag values onto method
// names.
func legacyMethod(flags int32) (Method, error) {
	switch flags {
	case 0:
		return MethodNone, nil
	case 1:
		return MethodZlib, nil
	case 2:
		return MethodGzip, nil
	default:
		return "", fmt.Errorf("%w: legacy compression flags %#x", uasset.ErrUnimplementedVariant, flags)
	}
}
