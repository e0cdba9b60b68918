package commands

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	metaset "github.com/reoring/metaset"
	"github.com/reoring/metaset/codec"
)

// EntryCommand holds configuration for the new command.
type EntryCommand struct {
	modelPath string
	out       string
	indent    int
}

// NewEntryCommand creates the new command.
func NewEntryCommand() *cobra.Command {
	ec := &EntryCommand{}

	cmd := &cobra.Command{
		Use:   "new",
		Short: "Print a zero-valued entry built from a model",
		Long: `Build an entry carrying every declared field: required fields get their
type's zero value, optional fields get null.

Examples:
  metaset new -m model.json
  metaset new -m model.yaml -o entry.json`,
		Args: cobra.NoArgs,
		RunE: ec.run,
	}

	cmd.Flags().StringVarP(&ec.modelPath, "model", "m", "", "path to the model document (JSON or YAML)")
	cmd.Flags().StringVarP(&ec.out, "output", "o", "", "output file (default: stdout)")
	cmd.Flags().IntVar(&ec.indent, "indent", metaset.DefaultIndent, "indentation width")
	_ = cmd.MarkFlagRequired("model")

	return cmd
}

func (ec *EntryCommand) run(cmd *cobra.Command, _ []string) error {
	schema, err := loadModel(ec.modelPath)
	if err != nil {
		return fmt.Errorf("load model: %w", err)
	}

	out, err := codec.Marshal(metaset.NewEntry(schema), codec.Options{Indent: ec.indent})
	if err != nil {
		return err
	}

	if ec.out == "" {
		_, err = cmd.OutOrStdout().Write(out)

		return err
	}

	return os.WriteFile(ec.out, out, 0o644)
}
