// Copyright 2026 The UAssetKit Authors
// SPDX-License-Identifier: Apache-2.0

package commands

import (
	"fmt"
	"os"

	"github.com/spf13/pflag"

	"github.com/uassetkit/uassetkit/cmd/uassetkit/cli"
	"github.com/uassetkit/uassetkit/lib/assetcache"
	"github.com/uassetkit/uassetkit/lib/editspec"
	"github.com/uassetkit/uassetkit/lib/uasset"
)

func assetCommand() *cli.Command {
	return &cli.Command{
		Name:    "asset",
		Summary: "Inspect and edit asset packages",
		Subcommands: []*cli.Command{
			assetInfoCommand(),
			assetDumpCommand(),
			assetEditCommand(),
		},
	}
}

func assetInfoCommand() *cli.Command {
	var env decodeEnv
	var asJSON bool
	return &cli.Command{
		Name:    "info",
		Summary: "Summarize an asset package",
		Usage:   "uassetkit asset info [flags] <file>",
		Examples: []cli.Example{
			{
				Description: "Summarize a versioned package",
				Command:     "uassetkit asset info Weapon.uasset",
			},
			{
				Description: "Unversioned package with schema mappings",
				Command:     "uassetkit asset info --engine 5.3 --mappings Game.usmap Weapon.uasset",
			},
		},
		Flags: func() *pflag.FlagSet {
			fs := pflag.NewFlagSet("info", pflag.ContinueOnError)
			env.bind(fs)
			fs.BoolVar(&asJSON, "json", false, "output as JSON")
			return fs
		},
		Run: func(args []string) error {
			if len(args) != 1 {
				return fmt.Errorf("expected exactly one asset file, got %d", len(args))
			}
			_, opts, err := env.resolve()
			if err != nil {
				return err
			}
			data, err := os.ReadFile(args[0])
			if err != nil {
				return err
			}

			var snapshot *assetcache.Snapshot
			if env.cache != "" {
				cache, err := assetcache.Open(env.cache, cli.NewCommandLogger())
				if err != nil {
					return err
				}
				snapshot, err = cache.Snapshot(data, opts)
				if err != nil {
					return err
				}
			} else {
				asset, err := uasset.DecodeAsset(data, opts)
				if err != nil {
					return err
				}
				snapshot = assetcache.Summarize(asset)
			}

			if asJSON {
				return emitJSON(snapshot)
			}
			fmt.Printf("engine:   %s\n", snapshot.Engine)
			fmt.Printf("versions: object %d, ue5 %d\n", snapshot.ObjectVersion, snapshot.UE5Version)
			fmt.Printf("flags:    0x%08X", snapshot.PackageFlags)
			if snapshot.Unversioned {
				fmt.Printf(" (unversioned properties)")
			}
			fmt.Println()
			fmt.Printf("names:    %d\n", snapshot.NameCount)
			fmt.Printf("imports:  %d\n", snapshot.ImportCount)
			fmt.Printf("exports:  %d\n", len(snapshot.Exports))
			for _, e := range snapshot.Exports {
				line := fmt.Sprintf("  %s (%s) %d bytes", e.Name, e.Class, e.Size)
				if e.Failed {
					line += " [decode failed: " + e.Failure + "]"
				}
				fmt.Println(line)
			}
			return nil
		},
	}
}

func assetDumpCommand() *cli.Command {
	var env decodeEnv
	return &cli.Command{
		Name:    "dump",
		Summary: "Dump decoded export properties as JSON",
		Usage:   "uassetkit asset dump [flags] <file>",
		Flags: func() *pflag.FlagSet {
			fs := pflag.NewFlagSet("dump", pflag.ContinueOnError)
			env.bind(fs)
			return fs
		},
		Run: func(args []string) error {
			if len(args) != 1 {
				return fmt.Errorf("expected exactly one asset file, got %d", len(args))
			}
			_, opts, err := env.resolve()
			if err != nil {
				return err
			}
			data, err := os.ReadFile(args[0])
			if err != nil {
				return err
			}
			asset, err := uasset.DecodeAsset(data, opts)
			if err != nil {
				return err
			}
			return emitJSON(dumpAsset(asset))
		},
	}
}

func assetEditCommand() *cli.Command {
	var env decodeEnv
	var editsPath, outputPath string
	return &cli.Command{
		Name:    "edit",
		Summary: "Apply a batch-edit specification to an asset",
		Usage:   "uassetkit asset edit --edits <spec.jsonc> [flags] <file>",
		Examples: []cli.Example{
			{
				Description: "Apply edits and write the result next to the original",
				Command:     "uassetkit asset edit --edits buffs.jsonc --output Weapon_patched.uasset Weapon.uasset",
			},
		},
		Flags: func() *pflag.FlagSet {
			fs := pflag.NewFlagSet("edit", pflag.ContinueOnError)
			env.bind(fs)
			fs.StringVar(&editsPath, "edits", "", "JSONC edit specification (required)")
			fs.StringVar(&outputPath, "output", "", "output file (default: overwrite the input)")
			return fs
		},
		Run: func(args []string) error {
			if len(args) != 1 {
				return fmt.Errorf("expected exactly one asset file, got %d", len(args))
			}
			if editsPath == "" {
				return fmt.Errorf("--edits is required")
			}
			logger := cli.NewCommandLogger().With("command", "asset/edit", "asset", args[0])

			_, opts, err := env.resolve()
			if err != nil {
				return err
			}
			spec, err := editspec.ReadFile(editsPath)
			if err != nil {
				return err
			}
			data, err := os.ReadFile(args[0])
			if err != nil {
				return err
			}
			asset, err := uasset.DecodeAsset(data, opts)
			if err != nil {
				return err
			}
			if err := editspec.Apply(asset, spec); err != nil {
				return err
			}
			encoded, err := asset.Encode()
			if err != nil {
				return err
			}
			if outputPath == "" {
				outputPath = args[0]
			}
			if err := os.WriteFile(outputPath, encoded, 0o644); err != nil {
				return err
			}
			logger.Info("edits applied",
				"edits", len(spec.Edits), "output", outputPath, "bytes", len(encoded))
			return nil
		},
	}
}

// dumpAsset renders a decoded asset as a JSON-friendly document.
func dumpAsset(a *uasset.Asset) map[string]any {
	doc := map[string]any{
		"engine":  uasset.InferEngineVersion(a.Versions).String(),
		"names":   a.Names.Len(),
		"imports": dumpImports(a),
	}
	exports := make([]map[string]any, 0, len(a.Exports))
	for pos, e := range a.Exports {
		name, _ := a.Names.Resolve(e.ObjectName)
		entry := map[string]any{
			"name":  name,
			"class": a.ClassNameOf(e),
			"size":  e.SerialSize,
		}
		if e.Payload != nil {
			entry["kind"] = e.Payload.Kind()
		}
		if err, ok := a.PayloadErrors[pos]; ok {
			entry["error"] = err.Error()
		}
		switch payload := e.Payload.(type) {
		case *uasset.NormalExport:
			entry["properties"] = dumpProperties(a, payload.Properties)
		case *uasset.StructExport:
			entry["properties"] = dumpProperties(a, payload.Properties)
		}
		exports = append(exports, entry)
	}
	doc["exports"] = exports
	return doc
}

func dumpImports(a *uasset.Asset) []map[string]any {
	imports := make([]map[string]any, 0, len(a.Imports))
	for _, imp := range a.Imports {
		pkg, _ := a.Names.Resolve(imp.ClassPackage)
		class, _ := a.Names.Resolve(imp.ClassName)
		object, _ := a.Names.Resolve(imp.ObjectName)
		imports = append(imports, map[string]any{
			"package": pkg,
			"class":   class,
			"object":  object,
		})
	}
	return imports
}

func dumpProperties(a *uasset.Asset, properties []*uasset.Property) []map[string]any {
	out := make([]map[string]any, 0, len(properties))
	for _, p := range properties {
		name, _ := a.Names.Resolve(p.Name)
		entry := map[string]any{
			"name":  nameWithInstance(name, p.Name),
			"type":  p.Value.TypeName(),
			"value": dumpValue(a, p.Value),
		}
		if p.DuplicationIndex != 0 {
			entry["dup"] = p.DuplicationIndex
		}
		out = append(out, entry)
	}
	return out
}

// nameWithInstance renders a name reference the way the editor shows
// it: the base string, with "_N" appended for instance number N+1.
func nameWithInstance(base string, ref uasset.NameRef) string {
	if ref.Number == 0 {
		return base
	}
	return fmt.Sprintf("%s_%d", base, ref.Number-1)
}

func dumpName(a *uasset.Asset, ref uasset.NameRef) string {
	base, _ := a.Names.Resolve(ref)
	return nameWithInstance(base, ref)
}

func dumpObject(a *uasset.Asset, index uasset.PackageIndex) any {
	if index.IsNull() {
		return nil
	}
	return map[string]any{
		"index":  int32(index),
		"object": a.ObjectName(index),
	}
}

// dumpValue renders one property payload. Payload shapes with no
// useful flat rendering fall back to a type marker and byte count so
// the dump never drops a property silently.
func dumpValue(a *uasset.Asset, v uasset.Value) any {
	switch typed := v.(type) {
	case *uasset.Int8Value:
		return typed.Val
	case *uasset.Int16Value:
		return typed.Val
	case *uasset.IntValue:
		return typed.Val
	case *uasset.Int64Value:
		return typed.Val
	case *uasset.UInt16Value:
		return typed.Val
	case *uasset.UInt32Value:
		return typed.Val
	case *uasset.UInt64Value:
		return typed.Val
	case *uasset.FloatValue:
		return typed.Val
	case *uasset.DoubleValue:
		return typed.Val
	case *uasset.BoolValue:
		return typed.Val
	case *uasset.StrValue:
		return typed.Val
	case *uasset.NameValue:
		return dumpName(a, typed.Val)
	case *uasset.EnumValue:
		if typed.ByOrdinal {
			return typed.Ordinal
		}
		return dumpName(a, typed.Val)
	case *uasset.ByteValue:
		if typed.IsName {
			return dumpName(a, typed.NameVal)
		}
		return typed.ByteVal
	case *uasset.ObjectValue:
		return dumpObject(a, typed.Val)
	case *uasset.InterfaceValue:
		return dumpObject(a, typed.Val)
	case *uasset.WeakObjectValue:
		return dumpObject(a, typed.Val)
	case *uasset.TextValue:
		text := map[string]any{"flags": typed.Flags}
		if typed.Namespace != "" || typed.Key != "" {
			text["namespace"] = typed.Namespace
			text["key"] = typed.Key
		}
		if typed.SourceString != "" {
			text["source"] = typed.SourceString
		}
		if typed.HasCultureInvariant {
			text["invariant"] = typed.CultureInvariant
		}
		return text
	case *uasset.StructValue:
		entry := map[string]any{"struct": typed.StructType}
		switch {
		case typed.Binary != nil:
			entry["value"] = dumpValue(a, typed.Binary)
		case typed.Fields != nil:
			entry["fields"] = dumpProperties(a, typed.Fields)
		default:
			entry["bytes"] = len(typed.Raw)
		}
		return entry
	case *uasset.ArrayValue:
		return dumpElements(a, typed.Elements, typed.Raw)
	case *uasset.SetValue:
		return dumpElements(a, typed.Elements, typed.Raw)
	case *uasset.MapValue:
		entries := make([]map[string]any, 0, len(typed.Entries))
		for _, pair := range typed.Entries {
			entries = append(entries, map[string]any{
				"key":   dumpValue(a, pair.Key),
				"value": dumpValue(a, pair.Value),
			})
		}
		return entries
	case *uasset.RawValue:
		return map[string]any{"type": typed.Type, "bytes": len(typed.Data)}
	default:
		return map[string]any{"type": v.TypeName()}
	}
}

func dumpElements(a *uasset.Asset, elements []uasset.Value, raw []byte) any {
	if elements == nil && len(raw) > 0 {
		return map[string]any{"bytes": len(raw)}
	}
	out := make([]any, 0, len(elements))
	for _, element := range elements {
		out = append(out, dumpValue(a, element))
	}
	return out
}
