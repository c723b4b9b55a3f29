// Copyright 2026 The UAssetKit Authors
// SPDX-License-Identifier: Apache-2.0

// Package commands builds the complete uassetkit CLI command tree.
package commands

import (
	"fmt"

	"github.com/uassetkit/uassetkit/cmd/uassetkit/cli"
	"github.com/uassetkit/uassetkit/lib/version"
)

// Root builds and returns the complete uassetkit CLI command tree.
func Root() *cli.Command {
	return &cli.Command{
		Name: "uassetkit",
		Description: `uassetkit: codec toolkit for cooked game asset files.

Inspect and edit tagged-property asset packages, list and extract
archive containers, and load property mapping files for games that
ship unversioned property data.`,
		Subcommands: []*cli.Command{
			assetCommand(),
			pakCommand(),
			tocCommand(),
			mappingsCommand(),
			{
				Name:    "version",
				Summary: "Print version information",
				Run: func(args []string) error {
					fmt.Printf("uassetkit %s\n", version.Full())
					return nil
				},
			},
		},
	}
}
