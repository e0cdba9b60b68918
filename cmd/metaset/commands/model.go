// Package commands implements CLI command handlers for metaset.
package commands

import (
	"path/filepath"
	"strings"

	metaset "github.com/reoring/metaset"
	"github.com/reoring/metaset/yamlschema"
)

// loadModel reads a model document, dispatching on the file extension. YAML
// models go through yamlschema; everything else is treated as JSON.
func loadModel(path string) (*metaset.Schema, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return yamlschema.ImportFile(path)
	default:
		return metaset.LoadSchemaFile(path)
	}
}
