package runner

import (
	"context"
	"errors"
	"fmt"
	"sort"

	"github.com/ridoystarlord/migraview/extract"
)

// ErrStateUnavailable wraps failures of the applied-migration store.
var ErrStateUnavailable = errors.New("migration state unavailable")

// AppliedMigration is one row of the migrations table
type AppliedMigration struct {
	Name  string `json:"migration" yaml:"migration"`
	Batch int    `json:"batch" yaml:"batch"`
}

// StateStore lists applied migrations in recorded order.
type StateStore interface {
	ListApplied(ctx context.Context) ([]AppliedMigration, error)
}

// ScriptLister lists every known migration script, in discovery order.
type ScriptLister interface {
	ListAll() ([]string, error)
}

// ScriptPreview is the forward preview of one pending migration
type ScriptPreview struct {
	Migration string           `json:"migration"`
	Actions   []extract.Action `json:"actions"`
}

// RollbackPreview is the backward preview of one applied migration
type RollbackPreview struct {
	Migration string           `json:"migration"`
	Batch     int              `json:"batch"`
	Actions   []extract.Action `json:"actions"`
}

// RollbackMode selects which applied migrations a rollback preview covers.
type RollbackMode string

const (
	ModeDefault RollbackMode = "default"
	ModeClean   RollbackMode = "clean"
	ModeLatest  RollbackMode = "latest"
)

// ParseRollbackMode parses a --mode value; "" means ModeDefault.
func ParseRollbackMode(s string) (RollbackMode, error) {
	switch RollbackMode(s) {
	case "", ModeDefault:
		return ModeDefault, nil
	case ModeClean, ModeLatest:
		return RollbackMode(s), nil
	}
	return "", fmt.Errorf("unknown rollback mode %q (expected default, clean or latest)", s)
}

// RollbackOptions configures PreviewRollback. Steps > 0 takes precedence
// over Mode and selects the last Steps migrations by batch, then recorded
// order.
type RollbackOptions struct {
	Mode  RollbackMode
	Steps int
}

// Runner reconciles migration scripts with the applied state and extracts
// the previews.
type Runner struct {
	scripts   ScriptLister
	state     StateStore
	extractor *extract.Extractor
}

// New creates a Runner.
func New(scripts ScriptLister, source extract.Source, state StateStore) *Runner {
	return &Runner{
		scripts:   scripts,
		state:     state,
		extractor: extract.NewExtractor(source),
	}
}

func (r *Runner) getAppliedMigrations(ctx context.Context) ([]AppliedMigration, error) {
	applied, err := r.state.ListApplied(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrStateUnavailable, err)
	}
	return applied, nil
}

func (r *Runner) getMigrationFiles() ([]string, error) {
	files, err := r.scripts.ListAll()
	if err != nil {
		return nil, fmt.Errorf("read migrations dir: %w", err)
	}
	return files, nil
}

// Status returns the applied migrations and the names of pending scripts.
func (r *Runner) Status(ctx context.Context) ([]AppliedMigration, []string, error) {
	applied, err := r.getAppliedMigrations(ctx)
	if err != nil {
		return nil, nil, err
	}
	files, err := r.getMigrationFiles()
	if err != nil {
		return nil, nil, err
	}
	return applied, pendingNames(files, applied), nil
}

// PreviewPending extracts the up() actions of every pending migration.
func (r *Runner) PreviewPending(ctx context.Context) ([]ScriptPreview, error) {
	_, pending, err := r.Status(ctx)
	if err != nil {
		return nil, err
	}

	previews := make([]ScriptPreview, 0, len(pending))
	for _, name := range pending {
		previews = append(previews, ScriptPreview{
			Migration: name,
			Actions:   r.extractor.Extract(name, extract.Forward),
		})
	}
	return previews, nil
}

// PreviewRollback extracts the down() actions of the migrations a rollback
// would revert.
func (r *Runner) PreviewRollback(ctx context.Context, opts RollbackOptions) ([]RollbackPreview, error) {
	applied, err := r.getAppliedMigrations(ctx)
	if err != nil {
		return nil, err
	}

	selected := selectRollback(applied, opts)
	previews := make([]RollbackPreview, 0, len(selected))
	for _, m := range selected {
		previews = append(previews, RollbackPreview{
			Migration: m.Name,
			Batch:     m.Batch,
			Actions:   r.extractor.Extract(m.Name, extract.Backward),
		})
	}
	return previews, nil
}

// Extract exposes the underlying extractor for single scripts.
func (r *Runner) Extract(name string, dir extract.Direction) []extract.Action {
	return r.extractor.Extract(name, dir)
}

func pendingNames(files []string, applied []AppliedMigration) []string {
	ran := make(map[string]bool, len(applied))
	for _, m := range applied {
		ran[m.Name] = true
	}

	pending := []string{}
	for _, f := range files {
		if !ran[f] {
			pending = append(pending, f)
		}
	}
	return pending
}

func selectRollback(applied []AppliedMigration, opts RollbackOptions) []AppliedMigration {
	if len(applied) == 0 {
		return nil
	}

	if opts.Steps > 0 {
		byBatch := append([]AppliedMigration(nil), applied...)
		sort.SliceStable(byBatch, func(i, j int) bool {
			return byBatch[i].Batch < byBatch[j].Batch
		})
		steps := min(opts.Steps, len(byBatch))
		return reversed(byBatch)[:steps]
	}

	if opts.Mode == ModeLatest {
		latest := applied[0].Batch
		for _, m := range applied {
			latest = max(latest, m.Batch)
		}
		var batch []AppliedMigration
		for _, m := range applied {
			if m.Batch == latest {
				batch = append(batch, m)
			}
		}
		return reversed(batch)
	}

	sorted := append([]AppliedMigration(nil), applied...)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Batch > sorted[j].Batch
	})
	return sorted
}

func reversed(in []AppliedMigration) []AppliedMigration {
	out := make([]AppliedMigration, len(in))
	for i, m := range in {
		out[len(in)-1-i] = m
	}
	return out
}

// BatchGroup is the rollback previews of one batch.
type BatchGroup struct {
	Batch      int
	Migrations []RollbackPreview
}

// GroupByBatch groups consecutive previews sharing a batch, keeping order.
func GroupByBatch(previews []RollbackPreview) []BatchGroup {
	var groups []BatchGroup
	for _, p := range previews {
		if n := len(groups); n > 0 && groups[n-1].Batch == p.Batch {
			groups[n-1].Migrations = append(groups[n-1].Migrations, p)
			continue
		}
		groups = append(groups, BatchGroup{Batch: p.Batch, Migrations: []RollbackPreview{p}})
	}
	return groups
}

// CheckReport lists inconsistencies between the scripts and the applied state.
type CheckReport struct {
	Scripts int `json:"scripts"`
	Applied int `json:"applied"`
	// MissingScripts are applied migrations whose script file is gone.
	MissingScripts []string `json:"missing_scripts"`
	// EmptyUp and EmptyDown are scripts whose procedure yields no actions.
	EmptyUp   []string `json:"empty_up"`
	EmptyDown []string `json:"empty_down"`
}

// Clean reports whether the check found nothing.
func (c CheckReport) Clean() bool {
	return len(c.MissingScripts) == 0 && len(c.EmptyUp) == 0 && len(c.EmptyDown) == 0
}

// Check extracts both procedures of every script and looks up every
// applied migration's script.
func (r *Runner) Check(ctx context.Context) (CheckReport, error) {
	applied, err := r.getAppliedMigrations(ctx)
	if err != nil {
		return CheckReport{}, err
	}
	files, err := r.getMigrationFiles()
	if err != nil {
		return CheckReport{}, err
	}

	report := CheckReport{
		Scripts:        len(files),
		Applied:        len(applied),
		MissingScripts: []string{},
		EmptyUp:        []string{},
		EmptyDown:      []string{},
	}
	for _, m := range applied {
		if extract.IsMissing(r.extractor.Extract(m.Name, extract.Backward)) {
			report.MissingScripts = append(report.MissingScripts, m.Name)
		}
	}
	for _, name := range files {
		if len(r.extractor.Extract(name, extract.Forward)) == 0 {
			report.EmptyUp = append(report.EmptyUp, name)
		}
		if len(r.extractor.Extract(name, extract.Backward)) == 0 {
			report.EmptyDown = append(report.EmptyDown, name)
		}
	}
	return report, nil
}
