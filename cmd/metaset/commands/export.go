package commands

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	metaset "github.com/reoring/metaset"
	"github.com/reoring/metaset/codec"
)

// ExportCommand holds configuration for the export command.
type ExportCommand struct {
	modelPath string
	out       string
	indent    int
}

// NewExportCommand creates the export command.
func NewExportCommand() *cobra.Command {
	xc := &ExportCommand{}

	cmd := &cobra.Command{
		Use:   "export",
		Short: "Export a model as JSON Schema",
		Long: `Translate a model document into a draft JSON Schema object: declared
fields become properties, required fields fill the "required" array and
undeclared members are rejected via "additionalProperties": false.

Examples:
  metaset export -m model.json
  metaset export -m model.yaml -o schema.json`,
		Args: cobra.NoArgs,
		RunE: xc.run,
	}

	cmd.Flags().StringVarP(&xc.modelPath, "model", "m", "", "path to the model document (JSON or YAML)")
	cmd.Flags().StringVarP(&xc.out, "output", "o", "", "output file (default: stdout)")
	cmd.Flags().IntVar(&xc.indent, "indent", metaset.DefaultIndent, "indentation width")
	_ = cmd.MarkFlagRequired("model")

	return cmd
}

func (xc *ExportCommand) run(cmd *cobra.Command, _ []string) error {
	schema, err := loadModel(xc.modelPath)
	if err != nil {
		return fmt.Errorf("load model: %w", err)
	}

	out, err := codec.Marshal(schema.JSONSchema(), codec.Options{Indent: xc.indent})
	if err != nil {
		return err
	}

	if xc.out == "" {
		_, err = cmd.OutOrStdout().Write(out)

		return err
	}

	return os.WriteFile(xc.out, out, 0o644)
}
