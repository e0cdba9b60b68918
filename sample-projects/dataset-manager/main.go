package main

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"log/slog"
	"os"
	"sort"
	"strings"

	metaset "github.com/reoring/metaset"
	"github.com/reoring/metaset/codec"
	"github.com/reoring/metaset/dsl"
	"github.com/reoring/metaset/yamlschema"
	"gopkg.in/yaml.v3"
)

// DatasetManager validates and edits an inventory record collection.
type DatasetManager struct {
	schema *metaset.Schema
}

func NewDatasetManager() *DatasetManager {
	// Declare the built-in inventory model using the metaset DSL. A model
	// document given with --model replaces it.
	schema := dsl.Schema().
		Field("sku", dsl.String()).Required().
		Field("name", dsl.String()).Required().
		Field("price", dsl.Float()).Required().
		Field("stock", dsl.Int()).Required().
		Field("active", dsl.Bool()).
		Field("tags", dsl.ListOf(dsl.String())).
		Field("supplier", dsl.ObjectOf(
			dsl.Schema().
				Field("name", dsl.String()).Required().
				Field("email", dsl.String()).
				MustBuild(),
		)).
		MustBuild()

	return &DatasetManager{schema: schema}
}

// UseModel replaces the built-in model with one loaded from path. YAML
// models go through yamlschema; everything else is treated as JSON.
func (dm *DatasetManager) UseModel(path string) error {
	var (
		s   *metaset.Schema
		err error
	)
	lower := strings.ToLower(path)
	if strings.HasSuffix(lower, ".yaml") || strings.HasSuffix(lower, ".yml") {
		s, err = yamlschema.ImportFile(path)
	} else {
		s, err = metaset.LoadSchemaFile(path)
	}
	if err != nil {
		return fmt.Errorf("failed to load model %s: %w", path, err)
	}
	dm.schema = s
	return nil
}

func (dm *DatasetManager) ValidateRecords(dataPath string, streaming bool) error {
	if streaming {
		return dm.validateStreaming(dataPath)
	}

	data, err := os.ReadFile(dataPath)
	if err != nil {
		return fmt.Errorf("failed to read %s: %w", dataPath, err)
	}

	// Hand-edited files can carry repeated keys that the decoder collapses
	// silently; surface them before loading.
	if dups, err := metaset.FindDuplicateKeysBytes(data); err == nil && len(dups) > 0 {
		for _, d := range dups {
			fmt.Fprintf(os.Stderr, "⚠️  Duplicate key %s (offset %d); the last value wins\n", d.Path, d.Offset)
		}
	}

	entries, err := metaset.LoadData(bytes.NewReader(data))
	if err != nil {
		return fmt.Errorf("failed to load records: %w", err)
	}

	report := dm.schema.ValidateData(entries)
	if len(report) > 0 {
		printReport(report)
		return fmt.Errorf("%d of %d records have violations", len(report), len(entries))
	}

	// Checks the model language cannot express.
	for i, e := range entries {
		if n, ok := e["price"].(json.Number); ok {
			if p, err := n.Float64(); err == nil && p < 0 {
				return fmt.Errorf("record %d: negative price %v", i, n)
			}
		}
	}

	fmt.Printf("✅ All %d records in %s are valid!\n", len(entries), dataPath)
	return nil
}

func (dm *DatasetManager) validateStreaming(dataPath string) error {
	r, err := metaset.StreamArrayFile(dataPath, metaset.ReadOpt{
		ChunkSize: 500,
		MaxDepth:  64,
		MaxBytes:  256 << 20,
	})
	if err != nil {
		return fmt.Errorf("failed to open stream: %w", err)
	}
	defer r.Close()

	total, bad := 0, 0
	for {
		chunk, err := r.Next()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return fmt.Errorf("stream aborted: %w", err)
		}

		for _, el := range chunk {
			obj, ok := el.(map[string]any)
			if !ok {
				return fmt.Errorf("record %d is not an object", total)
			}
			if vs := dm.schema.ValidateEntry(metaset.Entry(obj)); len(vs) > 0 {
				bad++
				fmt.Fprintf(os.Stderr, "❌ record %d:\n", total)
				for _, msg := range vs.Strings() {
					fmt.Fprintf(os.Stderr, "   - %s\n", msg)
				}
			}
			total++
		}
	}

	if bad > 0 {
		return fmt.Errorf("%d of %d records have violations", bad, total)
	}
	fmt.Printf("✅ All %d records in %s are valid!\n", total, dataPath)
	return nil
}

func printReport(report metaset.Report) {
	indexes := make([]int, 0, len(report))
	for i := range report {
		indexes = append(indexes, i)
	}
	sort.Ints(indexes)

	for _, i := range indexes {
		fmt.Fprintf(os.Stderr, "❌ record %d:\n", i)
		for _, msg := range report[i].Strings() {
			fmt.Fprintf(os.Stderr, "   - %s\n", msg)
		}
	}
}

func (dm *DatasetManager) ShowRecords(dataPath string, maskContacts bool) error {
	entries, err := metaset.LoadDataFile(dataPath)
	if err != nil {
		return fmt.Errorf("failed to load records: %w", err)
	}

	if maskContacts {
		entries = maskSupplierContacts(entries)
	}

	out, err := codec.Marshal(entries, codec.Options{Indent: 2})
	if err != nil {
		return fmt.Errorf("failed to render records: %w", err)
	}

	fmt.Printf("📋 Records in %s:\n", dataPath)
	fmt.Println(strings.Repeat("=", len(dataPath)+12))
	fmt.Println(string(out))

	return nil
}

func maskSupplierContacts(entries []metaset.Entry) []metaset.Entry {
	masked := make([]metaset.Entry, len(entries))
	for i, e := range entries {
		m := make(metaset.Entry, len(e))
		for k, v := range e {
			m[k] = v
		}
		if sup, ok := m["supplier"].(map[string]any); ok {
			if _, has := sup["email"]; has {
				cp := make(map[string]any, len(sup))
				for k, v := range sup {
					cp[k] = v
				}
				cp["email"] = "***masked***"
				m["supplier"] = cp
			}
		}
		masked[i] = m
	}
	return masked
}

func (dm *DatasetManager) AppendBlank(dataPath string) error {
	entries, err := metaset.LoadDataFile(dataPath)
	if err != nil {
		if !errors.Is(err, os.ErrNotExist) {
			return fmt.Errorf("failed to load records: %w", err)
		}
		entries = nil // start a fresh collection
	}

	entries = append(entries, metaset.NewEntry(dm.schema))

	logger := slog.New(slog.NewTextHandler(os.Stderr, nil))
	if err := metaset.SaveFile(entries, dataPath, metaset.SaveOpt{Logger: logger}); err != nil {
		return fmt.Errorf("failed to save records: %w", err)
	}

	fmt.Printf("📝 Appended a blank record to %s (%d records total)\n", dataPath, len(entries))
	return nil
}

func (dm *DatasetManager) GenerateTemplate() error {
	templates := map[string]string{
		"model.yaml": `# Inventory record model
__meta__:
  sku:
    type: str
    required: true
  name:
    type: str
    required: true
  price:
    type: float
    required: true
  stock:
    type: int
    required: true
  active:
    type: bool
  tags:
    type: list[str]
  supplier:
    type: object
    fields:
      name:
        type: str
        required: true
      email:
        type: str
`,
		"inventory.json": `[
  {
    "sku": "CBL-0042",
    "name": "USB-C cable 2m",
    "price": 9.5,
    "stock": 240,
    "active": true,
    "tags": ["cables", "usb-c"],
    "supplier": {"name": "Wiretap Ltda", "email": "sales@wiretap.example"}
  },
  {
    "sku": "KBD-0007",
    "name": "Compact keyboard",
    "price": 49.9,
    "stock": 12,
    "active": false,
    "tags": ["input"],
    "supplier": null
  }
]
`,
		"inventory-broken.json": `[
  {
    "sku": "CBL-0042",
    "name": "USB-C cable 2m",
    "name": "usb cable",
    "price": "9.50",
    "stock": 240
  },
  {
    "name": "Compact keyboard",
    "price": 49.9,
    "stock": "many",
    "tags": ["input", 7],
    "color": "black"
  }
]
`,
	}

	for filename, content := range templates {
		if err := os.WriteFile(filename, []byte(content), 0644); err != nil {
			return fmt.Errorf("failed to write %s: %w", filename, err)
		}
		fmt.Printf("📝 Generated %s\n", filename)
	}

	fmt.Println("✅ Template record files generated!")
	fmt.Println("\n📖 Next steps:")
	fmt.Println("1. Validate the clean set: go run . validate")
	fmt.Println("2. See violations: go run . validate --data=inventory-broken.json")
	fmt.Println("3. Append a blank record: go run . new")

	return nil
}

func main() {
	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	dm := NewDatasetManager()
	if model := getStringFlag("--model=", ""); model != "" {
		if err := dm.UseModel(model); err != nil {
			fmt.Fprintf(os.Stderr, "❌ %v\n", err)
			os.Exit(1)
		}
	}

	command := os.Args[1]

	switch command {
	case "validate":
		dataPath := getStringFlag("--data=", "inventory.json")
		streaming := getBoolFlag("--streaming")
		if err := dm.ValidateRecords(dataPath, streaming); err != nil {
			fmt.Fprintf(os.Stderr, "❌ Validation failed: %v\n", err)
			os.Exit(1)
		}

	case "show":
		dataPath := getStringFlag("--data=", "inventory.json")
		maskContacts := !getBoolFlag("--no-mask")
		if err := dm.ShowRecords(dataPath, maskContacts); err != nil {
			fmt.Fprintf(os.Stderr, "❌ Show failed: %v\n", err)
			os.Exit(1)
		}

	case "new":
		dataPath := getStringFlag("--data=", "inventory.json")
		if err := dm.AppendBlank(dataPath); err != nil {
			fmt.Fprintf(os.Stderr, "❌ New record failed: %v\n", err)
			os.Exit(1)
		}

	case "generate":
		if getBoolFlag("--template") {
			if err := dm.GenerateTemplate(); err != nil {
				fmt.Fprintf(os.Stderr, "❌ Generate failed: %v\n", err)
				os.Exit(1)
			}
		} else {
			fmt.Fprintf(os.Stderr, "❌ Use --template flag to generate template files\n")
			os.Exit(1)
		}

	case "schema":
		data, err := yaml.Marshal(dm.schema.JSONSchema())
		if err != nil {
			fmt.Fprintf(os.Stderr, "❌ Schema marshal failed: %v\n", err)
			os.Exit(1)
		}

		fmt.Println("📋 Inventory JSON Schema:")
		fmt.Print(string(data))

	default:
		printUsage()
		os.Exit(1)
	}
}

func printUsage() {
	fmt.Printf(`🎯 metaset Dataset Manager Sample

Usage: %s <command> [flags...]

Commands:
  validate [--data=<file>] [--streaming]  Validate records against the model
  show [--data=<file>] [--no-mask]        Show records (default: mask contacts)
  new [--data=<file>]                     Append a blank record and save
  generate --template                     Generate template record files
  schema                                  Show JSON Schema for the model

Flags:
  --data=<file>            Record file (default: inventory.json)
  --model=<file>           Model document, JSON or YAML (default: built-in)
  --streaming              Stream the record array chunk by chunk
  --no-mask               Don't mask supplier contact details
  --template              Generate template files

Examples:
  %s validate
  %s validate --data=export.json --streaming
  %s show --data=inventory.json
  %s show --no-mask
  %s new
  %s generate --template
  %s schema

Record Files:
  model.yaml              Model document declaring the record fields
  inventory.json          Record collection governed by the model

`, os.Args[0], os.Args[0], os.Args[0], os.Args[0], os.Args[0], os.Args[0], os.Args[0], os.Args[0])
}

func getStringFlag(prefix, fallback string) string {
	for _, arg := range os.Args {
		if strings.HasPrefix(arg, prefix) {
			return strings.TrimPrefix(arg, prefix)
		}
	}
	return fallback
}

func getBoolFlag(flag string) bool {
	for _, arg := range os.Args {
		if arg == flag {
			return true
		}
	}
	return false
}

func init() {
	log.SetFlags(log.LstdFlags | log.Lshortfile)
}
