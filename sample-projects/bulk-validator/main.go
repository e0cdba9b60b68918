package main

import (
	"errors"
	"fmt"
	"io"
	"log"
	"os"

	metaset "github.com/reoring/metaset"
	"github.com/reoring/metaset/yamlschema"
	"gopkg.in/yaml.v3"
)

// modelFile is the YAML model document governing the imported records.
const modelFile = "records-model.yaml"

func main() {
	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	command := os.Args[1]
	switch command {
	case "validate":
		if len(os.Args) < 3 {
			fmt.Fprintf(os.Stderr, "Usage: %s validate <file|->", os.Args[0])
			os.Exit(1)
		}
		filename := os.Args[2]
		if err := validateExport(filename); err != nil {
			fmt.Fprintf(os.Stderr, "Validation failed: %v\n", err)
			os.Exit(1)
		}
		fmt.Println("✅ Validation passed!")

	case "schema":
		if err := showSchema(); err != nil {
			fmt.Fprintf(os.Stderr, "Failed to show schema: %v\n", err)
			os.Exit(1)
		}

	case "demo":
		if err := runDemo(); err != nil {
			fmt.Fprintf(os.Stderr, "Demo failed: %v\n", err)
			os.Exit(1)
		}

	default:
		printUsage()
		os.Exit(1)
	}
}

func printUsage() {
	fmt.Printf(`🎯 metaset Bulk Import Validator Sample

Usage: %s <command> [args...]

Commands:
  validate <file|->     Validate a record export from file or stdin
  schema                Show the JSON Schema generated from the model
  demo                  Generate sample files and run a validation demo

Examples:
  %s validate export.json
  %s validate broken-export.json
  curl -s https://api.example.com/export | %s validate -
  %s demo

`, os.Args[0], os.Args[0], os.Args[0], os.Args[0], os.Args[0])
}

func loadModel() (*metaset.Schema, error) {
	schema, err := yamlschema.ImportFile(modelFile)
	if err != nil {
		return nil, fmt.Errorf("failed to load model %s: %w", modelFile, err)
	}
	return schema, nil
}

func validateExport(filename string) error {
	schema, err := loadModel()
	if err != nil {
		return err
	}

	// Exports can outgrow memory; stream the top-level array in chunks and
	// validate records as they arrive. The guards bound a hostile document.
	opt := metaset.ReadOpt{
		ChunkSize: 256,
		MaxDepth:  32,
		MaxBytes:  256 << 20,
	}

	var r *metaset.ArrayReader
	if filename == "-" {
		fmt.Fprintf(os.Stderr, "📖 Reading from stdin...\n")
		r, err = metaset.StreamArray(os.Stdin, opt)
	} else {
		if large, lerr := metaset.IsLargeFile(filename, 0); lerr == nil && large {
			fmt.Fprintf(os.Stderr, "📦 %s exceeds the in-memory threshold; streaming\n", filename)
		}
		fmt.Fprintf(os.Stderr, "📖 Validating %s...\n", filename)
		r, err = metaset.StreamArrayFile(filename, opt)
	}
	if err != nil {
		return describeStreamError(err)
	}
	defer r.Close()

	total, bad, chunks := 0, 0, 0
	for {
		chunk, err := r.Next()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return describeStreamError(err)
		}
		chunks++

		for _, el := range chunk {
			obj, ok := el.(map[string]any)
			if !ok {
				return fmt.Errorf("record %d is not an object", total)
			}
			if vs := schema.ValidateEntry(metaset.Entry(obj)); len(vs) > 0 {
				bad++
				reportViolations(total, vs)
			}
			total++
		}
	}

	fmt.Fprintf(os.Stderr, "📊 Scanned %d records in %d chunk(s)\n", total, chunks)
	if bad > 0 {
		return fmt.Errorf("%d of %d records have violations", bad, total)
	}

	return nil
}

func reportViolations(index int, vs metaset.Violations) {
	fmt.Fprintf(os.Stderr, "❌ Record %d failed with %d violation(s):\n", index, len(vs))
	for i, v := range vs {
		fmt.Fprintf(os.Stderr, "  %d. 🚨 %s\n", i+1, v.Message)
		fmt.Fprintf(os.Stderr, "     Field: %s\n", v.Field)
		fmt.Fprintf(os.Stderr, "     Code: %s\n", v.Code)
	}
	fmt.Fprintf(os.Stderr, "\n")
}

func describeStreamError(err error) error {
	var pe *metaset.ParseError
	if errors.As(err, &pe) {
		fmt.Fprintf(os.Stderr, "❌ Stream aborted: %s\n", pe.Reason)
		if pe.Offset >= 0 {
			fmt.Fprintf(os.Stderr, "   Offset: %d\n", pe.Offset)
		}
	}
	return err
}

func showSchema() error {
	schema, err := loadModel()
	if err != nil {
		return err
	}

	fmt.Println("📋 Generated JSON Schema for the record model:")
	fmt.Println()

	// Convert to YAML for readability
	yamlData, err := yaml.Marshal(schema.JSONSchema())
	if err != nil {
		return fmt.Errorf("failed to marshal to YAML: %w", err)
	}

	fmt.Print(string(yamlData))
	return nil
}

func runDemo() error {
	fmt.Println("🎪 Running metaset Bulk Validation Demo")
	fmt.Println("=======================================")
	fmt.Println()

	if err := writeSampleFiles(); err != nil {
		return err
	}

	// Test valid export
	fmt.Println("1️⃣ Testing valid record export:")
	fmt.Println("--------------------------------")
	if err := validateExport("valid-export.json"); err != nil {
		return fmt.Errorf("valid export test failed: %w", err)
	}
	fmt.Println("✅ Validation passed!")
	fmt.Println()

	// Test invalid export
	fmt.Println("2️⃣ Testing invalid record export:")
	fmt.Println("----------------------------------")
	if err := validateExport("invalid-export.json"); err != nil {
		fmt.Fprintf(os.Stderr, "Expected validation failure: %v\n", err)
	}
	fmt.Println()

	// Show schema
	fmt.Println("3️⃣ Generated JSON Schema:")
	fmt.Println("--------------------------")
	if err := showSchema(); err != nil {
		return fmt.Errorf("schema generation failed: %w", err)
	}

	fmt.Println()
	fmt.Println("✨ Demo completed!")
	fmt.Println()
	fmt.Println("🎯 Key Learning Points:")
	fmt.Println("  - YAML model import and record validation")
	fmt.Println("  - Chunked streaming over large exports")
	fmt.Println("  - Depth and size guards against hostile documents")
	fmt.Println("  - Per-record violation reporting with dotted field paths")
	fmt.Println("  - JSON Schema generation from metaset models")

	return nil
}

func writeSampleFiles() error {
	samples := map[string]string{
		modelFile: `# Record model for bulk imports
__meta__:
  id:
    type: str
    required: true
  name:
    type: str
    required: true
  age:
    type: int
  emails:
    type: list[str]
  address:
    type: object
    fields:
      city:
        type: str
        required: true
      zip:
        type: str
`,
		"valid-export.json": `[
  {"id": "u_1", "name": "Alice", "age": 34, "emails": ["alice@example.com"]},
  {"id": "u_2", "name": "Bruno", "emails": [], "address": {"city": "Recife", "zip": "50000-000"}},
  {"id": "u_3", "name": "Chiyo", "age": 29}
]
`,
		"invalid-export.json": `[
  {"id": "u_1", "age": "34"},
  {"id": "u_2", "name": "Bruno", "emails": ["ok@example.com", 42]},
  {"id": "u_3", "name": "Chiyo", "address": {"zip": "50000-000"}, "nickname": "Chi"}
]
`,
	}

	for filename, content := range samples {
		if err := os.WriteFile(filename, []byte(content), 0644); err != nil {
			return fmt.Errorf("failed to write %s: %w", filename, err)
		}
		fmt.Printf("📝 Generated %s\n", filename)
	}
	fmt.Println()

	return nil
}

func init() {
	// Setup logging for better debug experience
	log.SetFlags(log.LstdFlags | log.Lshortfile)
}
