package runner

import "github.com/ridoystarlord/migraview/extract"

// ScriptDiff is the forward and backward preview of one script.
type ScriptDiff struct {
	Migration string           `json:"migration"`
	Up        []extract.Action `json:"up"`
	Down      []extract.Action `json:"down"`
	// Unreverted lists tables ("users") and columns ("users.bio") that up()
	// adds and down() never drops.
	Unreverted []string `json:"unreverted"`
}

// Diff extracts both procedures of one script and compares them.
func (r *Runner) Diff(name string) ScriptDiff {
	d := ScriptDiff{
		Migration: name,
		Up:        r.extractor.Extract(name, extract.Forward),
		Down:      r.extractor.Extract(name, extract.Backward),
	}
	d.Unreverted = unreverted(d.Up, d.Down)
	return d
}

func unreverted(up, down []extract.Action) []string {
	if extract.IsMissing(up) {
		return []string{}
	}

	dropped := map[string]bool{}
	var table string
	for _, a := range down {
		if a.Depth == 0 {
			table = a.Table
			if a.Category == extract.CategoryDropTable {
				dropped[table] = true
			}
			continue
		}
		if a.Category == extract.CategoryDropColumn {
			dropped[table+"."+a.Column] = true
		}
	}

	out := []string{}
	seen := map[string]bool{}
	add := func(key string) {
		if !dropped[key] && !seen[key] {
			seen[key] = true
			out = append(out, key)
		}
	}
	var modifying bool
	for _, a := range up {
		if a.Depth == 0 {
			table = a.Table
			modifying = a.Category == extract.CategoryModifyTable
			if a.Category == extract.CategoryCreateTable {
				add(table)
			}
			continue
		}
		if modifying && a.Category == extract.CategoryAddColumn && !dropped[table] {
			add(table + "." + a.Column)
		}
	}
	return out
}
