// Copyright 2026 The UAssetKit Authors
// SPDX-License-Identifier: Apache-2.0

package uasset

import (
	"errors"
	"fmt"
)

// Error taxonomy. Decode and encode failures wrap exactly one of
// these sentinels so callers can classify without string matching.
var (
	// ErrMalformedFile marks a structurally impossible byte
	// sequence: bad magic, negative counts, truncated sections,
	// strings running past the buffer.
	ErrMalformedFile = errors.New("uasset: malformed file")

	// ErrInvalidIndex marks a name reference or package index that
	// is outside its table's bounds. Always content corruption, never
	// recoverable.
	ErrInvalidIndex = errors.New("uasset: index out of table bounds")

	// ErrInvalidProperty marks a container or struct payload that
	// fails an internal consistency check, such as an array element
	// type that contradicts the declared tag.
	ErrInvalidProperty = errors.New("uasset: inconsistent property payload")

	// ErrUnimplementedVariant marks a historically rare encoding
	// path this codec does not yet model. Export-level decode
	// contains it by falling back to a raw export.
	ErrUnimplementedVariant = errors.New("uasset: unimplemented format variant")

	// ErrNoSchemaMapping marks an unversioned decode that asked the
	// supplied schema for a property it does not know.
	ErrNoSchemaMapping = errors.New("uasset: no schema mapping for property")
)

// malformed wraps ErrMalformedFile with formatted context.
func malformed(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrMalformedFile, fmt.Sprintf(format, args...))
}

// invalidIndex wraps ErrInvalidIndex with formatted context.
func invalidIndex(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrInvalidIndex, fmt.Sprintf(format, args...))
}

// invalidProperty wraps ErrInvalidProperty with formatted context.
func invalidProperty(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrInvalidProperty, fmt.Sprintf(format, args...))
}

// unimplemented wraps ErrUnimplementedVariant with formatted context.
func unimplemented(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrUnimplementedVariant, fmt.Sprintf(format, args...))
}

// noSchema wraps ErrNoSchemaMapping with formatted context.
func noSchema(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrNoSchemaMapping, fmt.Sprintf(format, args...))
}
