// Copyright 2026 The UAssetKit Authors
// SPDX-License-Identifier: Apache-2.0

package cli

import (
	"strings"
	"testing"

	"github.com/spf13/pflag"
)

func TestExecuteDispatchesSubcommand(t *testing.T) {
	var ran []string
	root := &Command{
		Name: "uassetkit",
		Subcommands: []*Command{
			{
				Name: "pak",
				Subcommands: []*Command{
					{
						Name: "list",
						Run: func(args []string) error {
							ran = args
							return nil
						},
					},
				},
			},
		},
	}
	if err := root.Execute([]string{"pak", "list", "game.pak"}); err != nil {
		t.Fatalf("execute: %v", err)
	}
	if len(ran) != 1 || ran[0] != "game.pak" {
		t.Fatalf("args = %v, want [game.pak]", ran)
	}
}

func TestExecuteSuggestsCloseCommand(t *testing.T) {
	root := &Command{
		Name: "uassetkit",
		Subcommands: []*Command{
			{Name: "mappings", Run: func([]string) error { return nil }},
		},
	}
	err := root.Execute([]string{"mapings"})
	if err == nil || !strings.Contains(err.Error(), `did you mean "mappings"`) {
		t.Fatalf("err = %v, want mappings suggestion", err)
	}
}

func TestExecuteParsesFlags(t *testing.T) {
	var output string
	command := &Command{
		Name: "extract",
		Flags: func() *pflag.FlagSet {
			fs := pflag.NewFlagSet("extract", pflag.ContinueOnError)
			fs.StringVar(&output, "output", ".", "destination directory")
			return fs
		},
		Run: func(args []string) error { return nil },
	}
	if err := command.Execute([]string{"--output", "/tmp/out", "game.pak"}); err != nil {
		t.Fatalf("execute: %v", err)
	}
	if output != "/tmp/out" {
		t.Fatalf("output = %q, want /tmp/out", output)
	}
}

func TestExecuteSuggestsCloseFlag(t *testing.T) {
	command := &Command{
		Name: "extract",
		Flags: func() *pflag.FlagSet {
			fs := pflag.NewFlagSet("extract", pflag.ContinueOnError)
			fs.String("output", ".", "destination directory")
			return fs
		},
		Run: func(args []string) error { return nil },
	}
	err := command.Execute([]string{"--ouput", "x"})
	if err == nil || !strings.Contains(err.Error(), "--output") {
		t.Fatalf("err = %v, want --output suggestion", err)
	}
}

func TestLevenshtein(t *testing.T) {
	cases := []struct {
		a, b string
		want int
	}{
		{"", "", 0},
		{"pak", "pak", 0},
		{"pak", "pka", 2},
		{"mapings", "mappings", 1},
		{"", "toc", 3},
	}
	for _, tc := range cases {
		if got := levenshtein(tc.a, tc.b); got != tc.want {
			t.Errorf("levenshtein(%q, %q) = %d, want %d", tc.a, tc.b, got, tc.want)
		}
	}
}
