package extract

import (
	"github.com/ridoystarlord/migraview/debug"
)

// Source gives access to migration scripts by name.
type Source interface {
	Exists(name string) bool
	Read(name string) (string, error)
}

// Result is the outcome of assembling one script.
type Result struct {
	Actions []Action
	Blocks  int
	Skipped int
}

// Assemble returns the ordered actions of the dir procedure of source.
// Table actions have depth 0 and are followed by their column actions at depth 1.
func Assemble(source string, dir Direction) []Action {
	return AssembleResult(source, dir).Actions
}

// AssembleResult is Assemble plus block and skipped-statement counts.
func AssembleResult(source string, dir Direction) Result {
	res := Result{Actions: []Action{}}

	body := procedureTokens(tokenize(source), dir)
	if len(body) == 0 {
		return res
	}

	blocks := findBlocks(source, body)
	res.Blocks = len(blocks)
	for _, b := range blocks {
		res.Actions = append(res.Actions, tableAction(b.SchemaBlock))
		if len(b.body) == 0 {
			continue
		}
		a := analyze(b.body, dir, b.Kind)
		res.Actions = append(res.Actions, a.actions...)
		res.Skipped += a.skipped
	}
	return res
}

// Extractor assembles actions for named scripts.
type Extractor struct {
	source Source
}

// NewExtractor creates an Extractor reading scripts from source.
func NewExtractor(source Source) *Extractor {
	return &Extractor{source: source}
}

// Extract returns the actions of the named script. A script that does not
// exist or cannot be read yields the single MissingScriptAction.
func (e *Extractor) Extract(name string, dir Direction) []Action {
	if !e.source.Exists(name) {
		debug.Debug("migration file not found", "migration", name)
		return []Action{MissingScriptAction()}
	}
	code, err := e.source.Read(name)
	if err != nil {
		debug.Warn("migration file unreadable", "migration", name, "error", err)
		return []Action{MissingScriptAction()}
	}

	res := AssembleResult(code, dir)
	debug.Debug("extracted migration actions",
		"migration", name,
		"direction", string(dir),
		"blocks", res.Blocks,
		"actions", len(res.Actions),
		"skipped_statements", res.Skipped,
	)
	return res.Actions
}
