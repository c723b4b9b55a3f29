// Copyright 2026 The UAssetKit Authors
// SPDX-License-Identifier: Apache-2.0

package commands

import (
	"encoding/json"
	"fmt"
	"os"
)

// emitJSON writes v as indented JSON to stdout. Command output that
// scripts consume goes through here; human-readable text goes through
// plain Printf so the two never mix.
func emitJSON(v any) error {
	encoded, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding output: %w", err)
	}
	encoded = append(encoded, '\n')
	_, err = os.Stdout.Write(encoded)
	return err
}
