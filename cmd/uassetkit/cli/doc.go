// Copyright 2026 The UAssetKit Authors
// SPDX-License-Identifier: Apache-2.0

// Package cli provides the command-line framework for the uassetkit
// binary.
//
// The central type is [Command], which represents a named subcommand with
// optional nested [Command.Subcommands], a [pflag.FlagSet] factory, and a
// Run function. Commands are assembled into a tree in
// cmd/uassetkit/commands and dispatched via [Command.Execute], which
// handles flag parsing, subcommand routing, and structured help output
// with examples.
//
// [Profile] is the optional YAML configuration file: a default engine
// version, a property mappings path, a snapshot cache directory, and
// per-archive AES keys, so that repeated invocations against the same
// game do not need the same flags every time.
package cli
