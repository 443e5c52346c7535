package extract

import (
	"fmt"
	"strings"
)

// columnTypes maps lower-cased Blueprint column methods to their display name.
var columnTypes = map[string]string{
	"string":     "string",
	"integer":    "integer",
	"biginteger": "bigInteger",
	"uuid":       "uuid",
	"boolean":    "boolean",
	"text":       "text",
	"timestamp":  "timestamp",
	"date":       "date",
	"json":       "json",
	"enum":       "enum",
	"longtext":   "longText",
}

type macro int

const (
	macroID macro = iota
	macroRememberToken
	macroTimestamps
	macroCount
)

var macroCalls = map[string]macro{
	"id":            macroID,
	"remembertoken": macroRememberToken,
	"timestamps":    macroTimestamps,
}

var macroActions = [macroCount]Action{
	macroID:            {Text: "add column: id (bigIncrement)", Depth: 1, Category: CategoryMacro},
	macroRememberToken: {Text: "add column: remember_token (string)", Depth: 1, Category: CategoryMacro},
	macroTimestamps:    {Text: "add columns: created_at & updated_at (timestamps)", Depth: 1, Category: CategoryMacro},
}

// call is one `->name(args)` link of a builder chain.
type call struct {
	name string
	args []token
}

func (c call) is(name string) bool { return strings.EqualFold(c.name, name) }

// analysis is the result of scanning one closure body.
type analysis struct {
	actions []Action
	skipped int // statements that matched no known shape
}

// AnalyzeClosure returns the column-level actions for a closure body of the
// given block kind. Every returned action has depth 1. Plain column
// definitions and macros are only reported for Forward.
func AnalyzeClosure(body string, dir Direction, kind BlockKind) []Action {
	return analyze(tokenize(body), dir, kind).actions
}

func analyze(toks []token, dir Direction, kind BlockKind) analysis {
	var (
		res  analysis
		seen [macroCount]bool
	)
	for _, stmt := range splitTopLevel(toks, ";") {
		calls := parseChain(stmt)
		if len(calls) == 0 {
			res.skipped++
			continue
		}

		recognized := false
		if dir == Forward {
			for _, c := range calls {
				if m, ok := macroCalls[strings.ToLower(c.name)]; ok && len(c.args) == 0 {
					seen[m] = true
					recognized = true
				}
			}
		}

		actions := statementActions(calls, dir, kind)
		if len(actions) > 0 {
			recognized = true
			res.actions = append(res.actions, actions...)
		}
		if !recognized {
			res.skipped++
		}
	}

	for m, ok := range seen {
		if ok {
			res.actions = append(res.actions, macroActions[m])
		}
	}
	return res
}

// parseChain parses `$var->a(...)->b(...)`. It returns the calls read before
// the first token that does not continue the chain.
func parseChain(stmt []token) []call {
	if at(stmt, 0).kind != tokVariable {
		return nil
	}
	var calls []call
	for i := 1; i < len(stmt); {
		if stmt[i].kind != tokArrow || at(stmt, i+1).kind != tokIdent || !at(stmt, i+2).punct("(") {
			break
		}
		c := matchClose(stmt, i+2)
		if c < 0 {
			break
		}
		calls = append(calls, call{name: stmt[i+1].value, args: stmt[i+3 : c]})
		i = c + 1
	}
	return calls
}

func statementActions(calls []call, dir Direction, kind BlockKind) []Action {
	first := calls[0]
	if typ, ok := columnTypes[strings.ToLower(first.name)]; ok {
		if a, ok := columnAction(typ, first, calls[1:], dir); ok {
			return []Action{a}
		}
		return nil
	}

	if kind != AlterTable {
		return nil
	}
	switch {
	case first.is("dropColumn"):
		var actions []Action
		for _, name := range stringLiterals(first.args) {
			actions = append(actions, Action{Text: "drop_column: " + name, Depth: 1, Category: CategoryDropColumn, Column: name})
		}
		return actions
	case first.is("renameColumn"):
		args := splitTopLevel(first.args, ",")
		if len(args) < 2 || !isLiteral(args[0]) || !isLiteral(args[1]) {
			return nil
		}
		text := fmt.Sprintf("rename_column: %s → %s", unquote(args[0][0].value), unquote(args[1][0].value))
		return []Action{{Text: text, Depth: 1, Category: CategoryRenameColumn}}
	case first.is("dropForeign"):
		if name, ok := keyName(first.args); ok {
			return []Action{{Text: "drop_foreign: " + name, Depth: 1, Category: CategoryDropForeignKey}}
		}
	case first.is("dropIndex"):
		if name, ok := keyName(first.args); ok {
			return []Action{{Text: "drop_index: " + name, Depth: 1, Category: CategoryDropIndex}}
		}
	}
	return nil
}

// columnAction renders `$table->type('name')<modifiers>`.
func columnAction(typ string, def call, modifiers []call, dir Direction) (Action, bool) {
	args := splitTopLevel(def.args, ",")
	if len(args) == 0 || !isLiteral(args[0]) {
		return Action{}, false
	}
	name := unquote(args[0][0].value)

	var change, notNull, nullable bool
	for _, m := range modifiers {
		switch {
		case m.is("change") && len(m.args) == 0:
			change = true
		case m.is("nullable"):
			if len(m.args) == 1 && m.args[0].ident("false") {
				notNull = true
			} else if len(m.args) == 0 || (len(m.args) == 1 && m.args[0].ident("true")) {
				nullable = true
			}
		}
	}

	// down() only reports columns it reverts with change()
	if dir == Backward {
		if !change {
			return Action{}, false
		}
		return Action{
			Text:     fmt.Sprintf("modify_column: %s (%s)", name, typ),
			Depth:    1,
			Category: CategoryModifyColumn,
			Column:   name,
		}, true
	}

	a := Action{Text: fmt.Sprintf("add column: %s (%s)", name, typ), Depth: 1, Category: CategoryAddColumn, Column: name}
	if change {
		a = Action{Text: fmt.Sprintf("modify column: %s (%s)", name, typ), Depth: 1, Category: CategoryModifyColumn, Column: name}
	}
	switch {
	case notNull:
		a.Text += " [NOT NULL]"
	case nullable:
		a.Text += " [NULLABLE]"
	}
	return a, true
}

// keyName renders the index or foreign key argument: a literal name, or a
// column array as "[a, b]".
func keyName(args []token) (string, bool) {
	first := splitTopLevel(args, ",")
	if len(first) == 0 {
		return "", false
	}
	arg := first[0]
	if isLiteral(arg) {
		return unquote(arg[0].value), true
	}
	if arg[0].punct("[") {
		if names := stringLiterals(arg); len(names) > 0 {
			return "[" + strings.Join(names, ", ") + "]", true
		}
	}
	return "", false
}

func isLiteral(arg []token) bool {
	return len(arg) == 1 && arg[0].kind == tokString
}

// stringLiterals returns every string literal in toks, arrays included.
func stringLiterals(toks []token) []string {
	var out []string
	for _, t := range toks {
		if t.kind == tokString {
			out = append(out, unquote(t.value))
		}
	}
	return out
}
