// Package tasks provides the task shown by the task detail views.
package tasks

import (
	"bytes"
	_ "embed"
	"fmt"

	"github.com/ashureev/taskpilot/internal/domain"
	"gopkg.in/yaml.v3"
)

//go:embed fixture.yaml
var fixtureYAML []byte

// Load decodes the embedded task fixture.
func Load() (*domain.TaskRecord, error) {
	return Decode(fixtureYAML)
}

// Decode parses a TaskRecord from YAML, rejecting unknown fields.
func Decode(data []byte) (*domain.TaskRecord, error) {
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)

	var task domain.TaskRecord
	if err := dec.Decode(&task); err != nil {
		return nil, fmt.Errorf("decode task fixture: %w", err)
	}
	if task.Title == "" {
		return nil, fmt.Errorf("decode task fixture: title is required")
	}
	return &task, nil
}
