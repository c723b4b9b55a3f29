// Copyright 2026 The UAssetKit Authors
// SPDX-License-Identifier: Apache-2.0

package commands

import (
	"fmt"
	"os"
	"sort"

	"github.com/spf13/pflag"

	"github.com/uassetkit/uassetkit/cmd/uassetkit/cli"
	"github.com/uassetkit/uassetkit/lib/usmap"
)

func mappingsCommand() *cli.Command {
	return &cli.Command{
		Name:    "mappings",
		Summary: "Inspect property mapping (.usmap) files",
		Subcommands: []*cli.Command{
			mappingsInfoCommand(),
			mappingsStructCommand(),
		},
	}
}

func mappingsInfoCommand() *cli.Command {
	var asJSON bool
	return &cli.Command{
		Name:    "info",
		Summary: "Summarize a mapping file",
		Usage:   "uassetkit mappings info [flags] <file.usmap>",
		Flags: func() *pflag.FlagSet {
			fs := pflag.NewFlagSet("info", pflag.ContinueOnError)
			fs.BoolVar(&asJSON, "json", false, "output as JSON")
			return fs
		},
		Run: func(args []string) error {
			if len(args) != 1 {
				return fmt.Errorf("expected exactly one mapping file, got %d", len(args))
			}
			data, err := os.ReadFile(args[0])
			if err != nil {
				return err
			}
			mappings, err := usmap.Load(data)
			if err != nil {
				return err
			}
			if asJSON {
				return emitJSON(map[string]any{
					"version": mappings.Version,
					"names":   len(mappings.Names),
					"enums":   len(mappings.Enums),
					"structs": len(mappings.Structs),
				})
			}
			fmt.Printf("version: %d\n", mappings.Version)
			fmt.Printf("names:   %d\n", len(mappings.Names))
			fmt.Printf("enums:   %d\n", len(mappings.Enums))
			fmt.Printf("structs: %d\n", len(mappings.Structs))
			return nil
		},
	}
}

func mappingsStructCommand() *cli.Command {
	var asJSON bool
	return &cli.Command{
		Name:    "struct",
		Summary: "Show one struct schema, or list all struct names",
		Usage:   "uassetkit mappings struct [flags] <file.usmap> [name]",
		Flags: func() *pflag.FlagSet {
			fs := pflag.NewFlagSet("struct", pflag.ContinueOnError)
			fs.BoolVar(&asJSON, "json", false, "output as JSON")
			return fs
		},
		Run: func(args []string) error {
			if len(args) < 1 || len(args) > 2 {
				return fmt.Errorf("expected a mapping file and an optional struct name")
			}
			data, err := os.ReadFile(args[0])
			if err != nil {
				return err
			}
			mappings, err := usmap.Load(data)
			if err != nil {
				return err
			}

			if len(args) == 1 {
				names := make([]string, 0, len(mappings.Structs))
				for name := range mappings.Structs {
					names = append(names, name)
				}
				sort.Strings(names)
				if asJSON {
					return emitJSON(names)
				}
				for _, name := range names {
					fmt.Println(name)
				}
				return nil
			}

			name := args[1]
			s, ok := mappings.Structs[name]
			if !ok {
				return fmt.Errorf("no struct %q in %s", name, args[0])
			}
			count, err := mappings.PropertyCount(name)
			if err != nil {
				return err
			}
			if asJSON {
				type slot struct {
					Index int    `json:"index"`
					Name  string `json:"name"`
					Type  string `json:"type"`
					Dup   int    `json:"dup,omitempty"`
				}
				slots := make([]slot, 0, count)
				for i := 0; i < count; i++ {
					p, err := mappings.PropertyAt(name, i)
					if err != nil {
						continue
					}
					slots = append(slots, slot{Index: i, Name: p.Name, Type: p.Type.Name, Dup: p.DupIndex})
				}
				return emitJSON(map[string]any{
					"name":  name,
					"super": s.Super,
					"slots": slots,
				})
			}
			fmt.Printf("struct: %s\n", name)
			if s.Super != "" {
				fmt.Printf("super:  %s\n", s.Super)
			}
			for i := 0; i < count; i++ {
				p, err := mappings.PropertyAt(name, i)
				if err != nil {
					fmt.Printf("  %3d  (stripped)\n", i)
					continue
				}
				fmt.Printf("  %3d  %s %s\n", i, p.Type.Name, p.Name)
			}
			return nil
		},
	}
}
