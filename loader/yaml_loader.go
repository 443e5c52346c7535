package loader

import (
	"context"
	"fmt"

	"github.com/spf13/afero"
	"gopkg.in/yaml.v3"

	"github.com/ridoystarlord/migraview/runner"
)

type yamlStateFile struct {
	Migrations []yamlMigration `yaml:"migrations"`
}

type yamlMigration struct {
	Migration string `yaml:"migration"`
	Batch     int    `yaml:"batch"`
}

// LoadStateFromYAML reads applied migrations from a YAML snapshot of the
// migrations table. File order is the recorded order.
func LoadStateFromYAML(fs afero.Fs, filename string) ([]runner.AppliedMigration, error) {
	data, err := afero.ReadFile(fs, filename)
	if err != nil {
		return nil, fmt.Errorf("reading state file: %w", err)
	}

	var yf yamlStateFile
	if err := yaml.Unmarshal(data, &yf); err != nil {
		return nil, fmt.Errorf("unmarshalling YAML: %w", err)
	}

	applied := make([]runner.AppliedMigration, 0, len(yf.Migrations))
	for i, m := range yf.Migrations {
		if m.Migration == "" {
			return nil, fmt.Errorf("state file %s: entry %d has no migration name", filename, i+1)
		}
		applied = append(applied, runner.AppliedMigration{Name: m.Migration, Batch: m.Batch})
	}
	return applied, nil
}

// YAMLState is a runner.StateStore backed by a YAML file, for previews
// without database access.
type YAMLState struct {
	Fs   afero.Fs
	Path string
}

func (s YAMLState) ListApplied(context.Context) ([]runner.AppliedMigration, error) {
	return LoadStateFromYAML(s.Fs, s.Path)
}

// Ping checks that the state file exists.
func (s YAMLState) Ping(context.Context) error {
	if _, err := s.Fs.Stat(s.Path); err != nil {
		return fmt.Errorf("state file: %w", err)
	}
	return nil
}

func (s YAMLState) Count(ctx context.Context) (int, error) {
	applied, err := s.ListApplied(ctx)
	if err != nil {
		return 0, err
	}
	return len(applied), nil
}

func (s YAMLState) Close() {}

// WriteStateYAML writes applied migrations in the format LoadStateFromYAML reads.
func WriteStateYAML(fs afero.Fs, filename string, applied []runner.AppliedMigration) error {
	yf := yamlStateFile{Migrations: make([]yamlMigration, 0, len(applied))}
	for _, m := range applied {
		yf.Migrations = append(yf.Migrations, yamlMigration{Migration: m.Name, Batch: m.Batch})
	}
	data, err := yaml.Marshal(&yf)
	if err != nil {
		return fmt.Errorf("marshalling YAML: %w", err)
	}
	return afero.WriteFile(fs, filename, data, 0644)
}
