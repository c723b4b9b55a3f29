// Copyright 2026 The UAssetKit Authors
// SPDX-License-Identifier: Apache-2.0

package commands

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/pflag"

	"github.com/uassetkit/uassetkit/cmd/uassetkit/cli"
	"github.com/uassetkit/uassetkit/lib/pak"
)

func pakCommand() *cli.Command {
	return &cli.Command{
		Name:    "pak",
		Summary: "Inspect, extract, and build archive files",
		Subcommands: []*cli.Command{
			pakInfoCommand(),
			pakListCommand(),
			pakExtractCommand(),
			pakCreateCommand(),
		},
	}
}

// openArchive reads an archive and resolves its AES key through the
// profile machinery shared with the other container commands.
func openArchive(profilePath, keyFlag, archivePath string) (*pak.Archive, error) {
	profile, err := cli.LoadProfile(profilePath)
	if err != nil {
		return nil, err
	}
	key, err := profile.AESKey(keyFlag, archivePath)
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(archivePath)
	if err != nil {
		return nil, err
	}
	return pak.Open(data, &pak.Options{AESKey: key})
}

func pakInfoCommand() *cli.Command {
	var profilePath, keyFlag string
	var asJSON bool
	return &cli.Command{
		Name:    "info",
		Summary: "Show archive header details",
		Usage:   "uassetkit pak info [flags] <archive>",
		Flags: func() *pflag.FlagSet {
			fs := pflag.NewFlagSet("info", pflag.ContinueOnError)
			fs.StringVar(&profilePath, "profile", "", "YAML profile file")
			fs.StringVar(&keyFlag, "aes-key", "", "hex AES key for encrypted archives")
			fs.BoolVar(&asJSON, "json", false, "output as JSON")
			return fs
		},
		Run: func(args []string) error {
			if len(args) != 1 {
				return fmt.Errorf("expected exactly one archive, got %d", len(args))
			}
			archive, err := openArchive(profilePath, keyFlag, args[0])
			if err != nil {
				return err
			}
			if asJSON {
				return emitJSON(map[string]any{
					"version":         archive.Version,
					"mount_point":     archive.MountPoint,
					"methods":         archive.Methods,
					"entries":         len(archive.Entries),
					"encrypted_index": archive.EncryptedIndex,
				})
			}
			fmt.Printf("version: %d\n", archive.Version)
			fmt.Printf("mount:   %s\n", archive.MountPoint)
			fmt.Printf("methods: %v\n", archive.Methods)
			fmt.Printf("entries: %d\n", len(archive.Entries))
			if archive.EncryptedIndex {
				fmt.Println("index:   encrypted")
			}
			return nil
		},
	}
}

func pakListCommand() *cli.Command {
	var profilePath, keyFlag string
	var asJSON bool
	return &cli.Command{
		Name:    "list",
		Summary: "List archive contents",
		Usage:   "uassetkit pak list [flags] <archive>",
		Flags: func() *pflag.FlagSet {
			fs := pflag.NewFlagSet("list", pflag.ContinueOnError)
			fs.StringVar(&profilePath, "profile", "", "YAML profile file")
			fs.StringVar(&keyFlag, "aes-key", "", "hex AES key for encrypted archives")
			fs.BoolVar(&asJSON, "json", false, "output as JSON")
			return fs
		},
		Run: func(args []string) error {
			if len(args) != 1 {
				return fmt.Errorf("expected exactly one archive, got %d", len(args))
			}
			archive, err := openArchive(profilePath, keyFlag, args[0])
			if err != nil {
				return err
			}
			if asJSON {
				type listed struct {
					Path       string `json:"path"`
					Size       int64  `json:"size"`
					Compressed int64  `json:"compressed"`
					Method     string `json:"method"`
				}
				entries := make([]listed, 0, len(archive.Entries))
				for _, path := range archive.Paths() {
					e, _ := archive.Entry(path)
					entries = append(entries, listed{
						Path:       path,
						Size:       e.UncompressedSize,
						Compressed: e.CompressedSize,
						Method:     string(e.Method),
					})
				}
				return emitJSON(entries)
			}
			for _, path := range archive.Paths() {
				e, _ := archive.Entry(path)
				fmt.Printf("%12d  %-5s  %s\n", e.UncompressedSize, e.Method, path)
			}
			return nil
		},
	}
}

func pakExtractCommand() *cli.Command {
	var profilePath, keyFlag, outputDir string
	return &cli.Command{
		Name:    "extract",
		Summary: "Extract files from an archive",
		Usage:   "uassetkit pak extract [flags] <archive> [path...]",
		Examples: []cli.Example{
			{
				Description: "Extract everything into ./out",
				Command:     "uassetkit pak extract --output out game.pak",
			},
			{
				Description: "Extract one file",
				Command:     "uassetkit pak extract game.pak Game/Content/Weapon.uasset",
			},
		},
		Flags: func() *pflag.FlagSet {
			fs := pflag.NewFlagSet("extract", pflag.ContinueOnError)
			fs.StringVar(&profilePath, "profile", "", "YAML profile file")
			fs.StringVar(&keyFlag, "aes-key", "", "hex AES key for encrypted archives")
			fs.StringVar(&outputDir, "output", ".", "destination directory")
			return fs
		},
		Run: func(args []string) error {
			if len(args) < 1 {
				return fmt.Errorf("expected an archive path")
			}
			logger := cli.NewCommandLogger().With("command", "pak/extract", "archive", args[0])
			archive, err := openArchive(profilePath, keyFlag, args[0])
			if err != nil {
				return err
			}
			paths := args[1:]
			if len(paths) == 0 {
				paths = archive.Paths()
			}
			for _, path := range paths {
				data, err := archive.Read(path)
				if err != nil {
					return err
				}
				dest := filepath.Join(outputDir, filepath.FromSlash(path))
				if err := os.MkdirAll(filepath.Dir(dest), 0o755); err != nil {
					return err
				}
				if err := os.WriteFile(dest, data, 0o644); err != nil {
					return err
				}
			}
			logger.Info("extracted", "files", len(paths), "output", outputDir)
			return nil
		},
	}
}

func pakCreateCommand() *cli.Command {
	var outputPath, mountPoint, methodName string
	var blockSize int
	return &cli.Command{
		Name:    "create",
		Summary: "Build an archive from a directory tree",
		Usage:   "uassetkit pak create --output <archive> [flags] <dir>",
		Examples: []cli.Example{
			{
				Description: "Pack a cooked content directory with zstd",
				Command:     "uassetkit pak create --output mod.pak --method zstd Cooked/",
			},
		},
		Flags: func() *pflag.FlagSet {
			fs := pflag.NewFlagSet("create", pflag.ContinueOnError)
			fs.StringVar(&outputPath, "output", "", "archive file to write (required)")
			fs.StringVar(&mountPoint, "mount", "", "mount point (default ../../../)")
			fs.StringVar(&methodName, "method", "none", "compression method: none, zlib, gzip, zstd, lz4")
			fs.IntVar(&blockSize, "block-size", 0, "compression block size in bytes")
			return fs
		},
		Run: func(args []string) error {
			if len(args) != 1 {
				return fmt.Errorf("expected exactly one source directory, got %d", len(args))
			}
			if outputPath == "" {
				return fmt.Errorf("--output is required")
			}
			method, err := parseMethod(methodName)
			if err != nil {
				return err
			}
			logger := cli.NewCommandLogger().With("command", "pak/create", "output", outputPath)

			builder := pak.NewBuilder()
			if mountPoint != "" {
				builder.MountPoint = mountPoint
			}
			if blockSize > 0 {
				builder.BlockSize = uint32(blockSize)
			}

			root := args[0]
			count := 0
			err = filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
				if err != nil || d.IsDir() {
					return err
				}
				relative, err := filepath.Rel(root, path)
				if err != nil {
					return err
				}
				data, err := os.ReadFile(path)
				if err != nil {
					return err
				}
				builder.Add(filepath.ToSlash(relative), data, method)
				count++
				return nil
			})
			if err != nil {
				return err
			}
			if count == 0 {
				return fmt.Errorf("%s holds no files", root)
			}

			encoded, err := builder.Bytes()
			if err != nil {
				return err
			}
			if err := os.WriteFile(outputPath, encoded, 0o644); err != nil {
				return err
			}
			logger.Info("archive written", "files", count, "bytes", len(encoded))
			return nil
		},
	}
}

func parseMethod(name string) (pak.Method, error) {
	switch strings.ToLower(name) {
	case "none":
		return pak.MethodNone, nil
	case "zlib":
		return pak.MethodZlib, nil
	case "gzip":
		return pak.MethodGzip, nil
	case "zstd":
		return pak.MethodZstd, nil
	case "lz4":
		return pak.MethodLZ4, nil
	default:
		return "", fmt.Errorf("unknown compression method %q", name)
	}
}
