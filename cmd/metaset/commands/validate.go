package commands

import (
	"errors"
	"fmt"
	"io"
	"os"
	"sort"

	"github.com/dustin/go-humanize"
	"github.com/fatih/color"
	"github.com/spf13/cobra"

	metaset "github.com/reoring/metaset"
	"github.com/reoring/metaset/i18n"
)

// exitCodeInputFailure is the exit code for unreadable or malformed input.
const exitCodeInputFailure = 2

// ValidateCommand holds configuration for the validate command.
type ValidateCommand struct {
	modelPath       string
	lang            string
	noColor         bool
	chunkSize       int
	streamThreshold string
	checkDuplicates bool
}

type entryViolations struct {
	index int
	vs    metaset.Violations
}

// NewValidateCommand creates the validate command.
func NewValidateCommand() *cobra.Command {
	vc := &ValidateCommand{}

	cmd := &cobra.Command{
		Use:   "validate <data.json|->",
		Short: "Validate a data file against a model",
		Long: `Validate entries in a JSON data file against a model document.

Files larger than the stream threshold are validated chunk by chunk instead
of being loaded whole.

Examples:
  metaset validate -m model.json people.json
  metaset validate -m model.yaml - < people.json
  metaset validate -m model.json --lang pt people.json`,
		Args: cobra.ExactArgs(1),
		RunE: vc.run,
	}

	cmd.Flags().StringVarP(&vc.modelPath, "model", "m", "", "path to the model document (JSON or YAML)")
	cmd.Flags().StringVar(&vc.lang, "lang", "", "violation message language: en, pt")
	cmd.Flags().BoolVar(&vc.noColor, "no-color", false, "disable colored output")
	cmd.Flags().IntVar(&vc.chunkSize, "chunk-size", metaset.DefaultChunkSize, "entries per chunk when streaming")
	cmd.Flags().StringVar(&vc.streamThreshold, "stream-threshold", "10MB", "stream files larger than this size (e.g. '64MB')")
	cmd.Flags().BoolVar(&vc.checkDuplicates, "check-duplicates", false, "reject repeated object keys in the data file (file input only)")
	_ = cmd.MarkFlagRequired("model")

	return cmd
}

func (vc *ValidateCommand) run(_ *cobra.Command, args []string) error {
	if vc.noColor {
		color.NoColor = true //nolint:reassign // intentional override of library global
	}
	if vc.lang != "" {
		i18n.SetLanguage(vc.lang)
	}

	schema, err := loadModel(vc.modelPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load model: %v\n", err)
		os.Exit(exitCodeInputFailure)
	}

	dataPath := args[0]
	label := dataPath
	if dataPath == "-" {
		label = "stdin"
	}

	if vc.checkDuplicates {
		if dataPath == "-" {
			fmt.Fprintln(os.Stderr, "Failed to validate stdin: --check-duplicates requires a file path")
			os.Exit(exitCodeInputFailure)
		}

		dups, err := findDuplicates(dataPath)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Failed to validate %s: %v\n", label, err)
			os.Exit(exitCodeInputFailure)
		}
		if len(dups) > 0 {
			color.New(color.FgRed).Fprintf(os.Stdout, "duplicate keys found (%s)\n", label)

			for _, d := range dups {
				color.New(color.FgYellow).Fprintf(os.Stdout, "  - %s (offset %d)\n", d.Path, d.Offset)
			}

			os.Exit(1)
		}
	}

	total, found, err := vc.validate(schema, dataPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to validate %s: %v\n", label, err)
		os.Exit(exitCodeInputFailure)
	}

	if len(found) == 0 {
		color.New(color.FgGreen).Fprintf(os.Stdout, "data is valid (%s)\n", label)
		color.New(color.FgGreen).Fprintf(os.Stdout, "  Entries: %s\n", humanize.Comma(int64(total)))

		return nil
	}

	color.New(color.FgRed).Fprintf(os.Stdout, "validation failed (%s)\n", label)
	color.New(color.FgYellow).Fprintf(os.Stdout, "  Entries: %s, with violations: %s\n",
		humanize.Comma(int64(total)), humanize.Comma(int64(len(found))))

	fmt.Fprintf(os.Stdout, "\nViolations:\n")

	for _, ev := range found {
		fmt.Fprintf(os.Stdout, "entry %d:\n", ev.index)

		for _, msg := range ev.vs.Strings() {
			color.New(color.FgRed).Fprintf(os.Stdout, "  - %s\n", msg)
		}
	}

	os.Exit(1)

	return nil
}

// validate picks the loading strategy for dataPath and returns the entry
// count plus per-entry violations ordered by entry index.
func (vc *ValidateCommand) validate(schema *metaset.Schema, dataPath string) (int, []entryViolations, error) {
	if dataPath == "-" {
		entries, err := metaset.LoadData(os.Stdin)
		if err != nil {
			return 0, nil, err
		}

		return len(entries), collectReport(schema, entries), nil
	}

	stream, err := vc.shouldStream(dataPath)
	if err != nil {
		return 0, nil, err
	}
	if stream {
		return vc.validateStream(schema, dataPath)
	}

	entries, err := metaset.LoadDataFile(dataPath)
	if err != nil {
		return 0, nil, err
	}

	return len(entries), collectReport(schema, entries), nil
}

func collectReport(schema *metaset.Schema, entries []metaset.Entry) []entryViolations {
	report := schema.ValidateData(entries)
	if len(report) == 0 {
		return nil
	}

	indexes := make([]int, 0, len(report))
	for i := range report {
		indexes = append(indexes, i)
	}
	sort.Ints(indexes)

	found := make([]entryViolations, 0, len(indexes))
	for _, i := range indexes {
		found = append(found, entryViolations{index: i, vs: report[i]})
	}

	return found
}

func (vc *ValidateCommand) validateStream(schema *metaset.Schema, path string) (int, []entryViolations, error) {
	r, err := metaset.StreamArrayFile(path, metaset.ReadOpt{ChunkSize: vc.chunkSize})
	if err != nil {
		return 0, nil, err
	}
	defer r.Close()

	var total int
	var found []entryViolations

	for {
		chunk, err := r.Next()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return 0, nil, err
		}

		for _, el := range chunk {
			obj, ok := el.(map[string]any)
			if !ok {
				return 0, nil, fmt.Errorf("array element %d is not an object", total)
			}

			if vs := schema.ValidateEntry(metaset.Entry(obj)); len(vs) > 0 {
				found = append(found, entryViolations{index: total, vs: vs})
			}

			total++
		}
	}

	return total, found, nil
}

func (vc *ValidateCommand) shouldStream(path string) (bool, error) {
	threshold, err := humanize.ParseBytes(vc.streamThreshold)
	if err != nil {
		return false, fmt.Errorf("invalid stream-threshold %q: %w", vc.streamThreshold, err)
	}

	return metaset.IsLargeFile(path, int64(threshold))
}

func findDuplicates(path string) ([]metaset.DuplicateKey, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	return metaset.FindDuplicateKeys(f)
}
