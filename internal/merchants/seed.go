package merchants

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/santhosh-tekuri/jsonschema/v5"
)

// seedSchema constrains merchant seed files before their names enter a store.
const seedSchema = `{
	"type": "object",
	"additionalProperties": false,
	"required": ["merchants"],
	"properties": {
		"merchants": {
			"type": "array",
			"items": {"type": "string", "minLength": 1}
		}
	}
}`

type seedFile struct {
	Merchants []string `json:"merchants"`
}

// LoadSeed reads a JSON seed file, validates it against the seed schema, and
// adds every name to repo. Returns the number of names added.
func LoadSeed(ctx context.Context, path string, repo Repository) (int, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return 0, fmt.Errorf("read seed file: %w", err)
	}

	compiler := jsonschema.NewCompiler()
	if err := compiler.AddResource("seed.json", bytes.NewReader([]byte(seedSchema))); err != nil {
		return 0, fmt.Errorf("add seed schema: %w", err)
	}
	schema, err := compiler.Compile("seed.json")
	if err != nil {
		return 0, fmt.Errorf("compile seed schema: %w", err)
	}
	var v any
	if err := json.Unmarshal(data, &v); err != nil {
		return 0, fmt.Errorf("unmarshal seed file: %w", err)
	}
	if err := schema.Validate(v); err != nil {
		return 0, fmt.Errorf("seed file does not match schema: %w", err)
	}

	var seed seedFile
	if err := json.Unmarshal(data, &seed); err != nil {
		return 0, fmt.Errorf("decode seed file: %w", err)
	}
	for _, name := range seed.Merchants {
		if err := repo.Add(ctx, name); err != nil {
			return 0, fmt.Errorf("add %q: %w", name, err)
		}
	}
	return len(seed.Merchants), nil
}
