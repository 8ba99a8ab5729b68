package config

import (
	"fmt"
	"os"

	"github.com/pelletier/go-toml/v2"
)

// PromptsFile is the TOML document holding letter prompt overrides:
//
//	[instructions]
//	delinquent_late = "..."
//	inquiry = "..."
type PromptsFile struct {
	Instructions map[string]string `toml:"instructions"`
}

// LoadInstructions reads per-category letter instructions from a TOML file.
// Keys are category names; normalisation happens in the letter package.
func LoadInstructions(path string) (map[string]string, error) {
	data, err := os.ReadFile(ExpandPath(path))
	if err != nil {
		return nil, fmt.Errorf("failed to read prompts file '%s': %w", path, err)
	}

	var file PromptsFile
	if err := toml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("failed to parse TOML: %w", err)
	}
	if file.Instructions == nil {
		file.Instructions = map[string]string{}
	}
	return file.Instructions, nil
}
