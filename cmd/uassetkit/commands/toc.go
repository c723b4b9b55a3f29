// Copyright 2026 The UAssetKit Authors
// SPDX-License-Identifier: Apache-2.0

package commands

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/pflag"

	"github.com/uassetkit/uassetkit/cmd/uassetkit/cli"
	"github.com/uassetkit/uassetkit/lib/iostore"
)

func tocCommand() *cli.Command {
	return &cli.Command{
		Name:    "toc",
		Summary: "Inspect and extract IoStore containers",
		Subcommands: []*cli.Command{
			tocListCommand(),
			tocExtractCommand(),
		},
	}
}

// openContainer opens a .utoc and its sibling data file. The data
// file defaults to the toc path with the extension swapped for .ucas.
func openContainer(profilePath, keyFlag, tocPath, dataPath string) (*iostore.Container, error) {
	profile, err := cli.LoadProfile(profilePath)
	if err != nil {
		return nil, err
	}
	key, err := profile.AESKey(keyFlag, tocPath)
	if err != nil {
		return nil, err
	}
	if dataPath == "" {
		dataPath = strings.TrimSuffix(tocPath, filepath.Ext(tocPath)) + ".ucas"
	}
	toc, err := os.ReadFile(tocPath)
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(dataPath)
	if err != nil {
		return nil, err
	}
	return iostore.Open(toc, data, &iostore.Options{AESKey: key})
}

func tocListCommand() *cli.Command {
	var profilePath, keyFlag, dataPath string
	var asJSON bool
	return &cli.Command{
		Name:    "list",
		Summary: "List container chunks and indexed paths",
		Usage:   "uassetkit toc list [flags] <file.utoc>",
		Flags: func() *pflag.FlagSet {
			fs := pflag.NewFlagSet("list", pflag.ContinueOnError)
			fs.StringVar(&profilePath, "profile", "", "YAML profile file")
			fs.StringVar(&keyFlag, "aes-key", "", "hex AES key for encrypted containers")
			fs.StringVar(&dataPath, "ucas", "", "data file (default: toc path with .ucas)")
			fs.BoolVar(&asJSON, "json", false, "output as JSON")
			return fs
		},
		Run: func(args []string) error {
			if len(args) != 1 {
				return fmt.Errorf("expected exactly one container, got %d", len(args))
			}
			container, err := openContainer(profilePath, keyFlag, args[0], dataPath)
			if err != nil {
				return err
			}

			paths := container.Paths()
			if asJSON {
				type listed struct {
					Path  string `json:"path,omitempty"`
					Chunk string `json:"chunk"`
					Size  uint64 `json:"size"`
				}
				entries := make([]listed, 0, len(paths))
				for _, path := range paths {
					id, _ := container.Lookup(path)
					size, _ := container.Size(id)
					entries = append(entries, listed{Path: path, Chunk: id.String(), Size: size})
				}
				if len(paths) == 0 {
					for _, id := range container.Chunks() {
						size, _ := container.Size(id)
						entries = append(entries, listed{Chunk: id.String(), Size: size})
					}
				}
				return emitJSON(map[string]any{
					"version":     container.Version,
					"container":   fmt.Sprintf("%016x", container.ContainerID),
					"mount_point": container.MountPoint,
					"chunks":      len(container.Chunks()),
					"entries":     entries,
				})
			}

			fmt.Printf("version:   %d\n", container.Version)
			fmt.Printf("container: %016x\n", container.ContainerID)
			fmt.Printf("mount:     %s\n", container.MountPoint)
			fmt.Printf("chunks:    %d\n", len(container.Chunks()))
			if len(paths) > 0 {
				for _, path := range paths {
					id, _ := container.Lookup(path)
					size, _ := container.Size(id)
					fmt.Printf("%12d  %s  %s\n", size, id, path)
				}
				return nil
			}
			// No directory index; list raw chunk ids.
			for _, id := range container.Chunks() {
				size, _ := container.Size(id)
				fmt.Printf("%12d  %s\n", size, id)
			}
			return nil
		},
	}
}

func tocExtractCommand() *cli.Command {
	var profilePath, keyFlag, dataPath, outputDir string
	return &cli.Command{
		Name:    "extract",
		Summary: "Extract indexed files from a container",
		Usage:   "uassetkit toc extract [flags] <file.utoc> [path...]",
		Flags: func() *pflag.FlagSet {
			fs := pflag.NewFlagSet("extract", pflag.ContinueOnError)
			fs.StringVar(&profilePath, "profile", "", "YAML profile file")
			fs.StringVar(&keyFlag, "aes-key", "", "hex AES key for encrypted containers")
			fs.StringVar(&dataPath, "ucas", "", "data file (default: toc path with .ucas)")
			fs.StringVar(&outputDir, "output", ".", "destination directory")
			return fs
		},
		Run: func(args []string) error {
			if len(args) < 1 {
				return fmt.Errorf("expected a container path")
			}
			logger := cli.NewCommandLogger().With("command", "toc/extract", "container", args[0])
			container, err := openContainer(profilePath, keyFlag, args[0], dataPath)
			if err != nil {
				return err
			}
			paths := args[1:]
			if len(paths) == 0 {
				paths = container.Paths()
				if len(paths) == 0 {
					return fmt.Errorf("container has no directory index; name chunks explicitly")
				}
			}
			for _, path := range paths {
				data, err := container.Read(path)
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
