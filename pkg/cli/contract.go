package cli

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/ternhq/tern/pkg/adapters"
	"github.com/ternhq/tern/pkg/schema"
)

var extensionFormats = map[string]schema.Format{
	".proto":    schema.FormatProtobuf,
	".avsc":     schema.FormatAvro,
	".graphql":  schema.FormatGraphQL,
	".graphqls": schema.FormatGraphQL,
	".gql":      schema.FormatGraphQL,
	".sql":      schema.FormatSQL,
	".yaml":     schema.FormatOpenAPI,
	".yml":      schema.FormatOpenAPI,
}

// detectFormat resolves the contract format for a file. An explicit --format
// flag wins; otherwise the file extension decides. .json is ambiguous between
// JSON Schema and Avro, so it always requires the flag.
func detectFormat(path, explicit string) (schema.Format, error) {
	if explicit != "" {
		return schema.ParseFormat(explicit)
	}
	ext := strings.ToLower(filepath.Ext(path))
	if f, ok := extensionFormats[ext]; ok {
		return f, nil
	}
	return "", fmt.Errorf("cannot infer format from %q, pass --format", path)
}

// loadModel reads and parses a contract file.
func loadModel(path, explicit string) (*schema.Model, []byte, error) {
	format, err := detectFormat(path, explicit)
	if err != nil {
		return nil, nil, err
	}
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, nil, fmt.Errorf("reading %s: %w", path, err)
	}
	model, err := adapters.DefaultRegistry(nil).Parse(raw, format)
	if err != nil {
		return nil, nil, fmt.Errorf("parsing %s: %w", path, err)
	}
	return model, raw, nil
}
