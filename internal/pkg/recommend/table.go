package recommend

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Activity describes what a household activity asks of a plan.
type Activity struct {
	Category       string `yaml:"category"`
	MinSpeed       int    `yaml:"min_speed"`
	UploadWeighted bool   `yaml:"upload_weighted"`
}

// Table maps questionnaire activity names to their requirements.
type Table map[string]Activity

// DefaultTable is the built-in activity table.
func DefaultTable() Table {
	return Table{
		"Gaming":        {Category: "Gaming", MinSpeed: 300, UploadWeighted: true},
		"Streaming":     {Category: "Streaming", MinSpeed: 200},
		"Home Office":   {Category: "Trabalho", MinSpeed: 150, UploadWeighted: true},
		"Estudos":       {Category: "Trabalho", MinSpeed: 100},
		"Redes Sociais": {Category: "Streaming", MinSpeed: 50},
	}
}

// LoadTable reads an activity table from a YAML file of the form
//
//	Gaming:
//	  category: Gaming
//	  min_speed: 300
//	  upload_weighted: true
func LoadTable(path string) (Table, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read activity table: %w", err)
	}
	return ParseTable(raw)
}

// ParseTable decodes and validates a YAML activity table.
func ParseTable(raw []byte) (Table, error) {
	var table Table
	if err := yaml.Unmarshal(raw, &table); err != nil {
		return nil, fmt.Errorf("parse activity table: %w", err)
	}
	if len(table) == 0 {
		return nil, fmt.Errorf("activity table is empty")
	}
	for name, a := range table {
		if a.Category == "" {
			return nil, fmt.Errorf("activity %q has no category", name)
		}
		if a.MinSpeed <= 0 {
			return nil, fmt.Errorf("activity %q has invalid min_speed %d", name, a.MinSpeed)
		}
	}
	return table, nil
}
