package extract

import "strings"

// forwardTerminators are the declarations that end an up() body.
var forwardTerminators = []string{"down", "rules", "messages"}

// Slice returns the body of the procedure for dir, or "" when the script has
// no such procedure.
//
// The up() body runs from its opening brace to the next down/rules/messages
// or magic-method declaration (or the end of the text). The down() body is
// the balanced brace span of that method.
func Slice(source string, dir Direction) string {
	toks := tokenize(source)
	open, end, ok := procedureSpan(toks, dir)
	if !ok {
		return ""
	}
	from := toks[open].end()
	if end >= len(toks) {
		return source[from:]
	}
	return source[from:toks[end].offset]
}

// procedureTokens returns the tokens inside the procedure for dir.
func procedureTokens(toks []token, dir Direction) []token {
	open, end, ok := procedureSpan(toks, dir)
	if !ok {
		return nil
	}
	return toks[open+1 : end]
}

// procedureSpan locates the opening brace of the procedure and the index of
// the token where its body stops (exclusive, len(toks) for end of text).
func procedureSpan(toks []token, dir Direction) (open, end int, ok bool) {
	decl := findDeclaration(toks, string(dir), 0)
	if decl < 0 {
		return 0, 0, false
	}
	open = declarationBrace(toks, decl)
	if open < 0 {
		return 0, 0, false
	}

	if dir == Forward {
		for i := open + 1; i < len(toks)-1; i++ {
			if toks[i].ident("function") && isForwardTerminator(toks[i+1]) {
				return open, i, true
			}
		}
		return open, len(toks), true
	}

	if closeIdx := matchClose(toks, open); closeIdx >= 0 {
		return open, closeIdx, true
	}
	return open, len(toks), true
}

// findDeclaration returns the index of the first `function <name>(` at or
// after from, or -1.
func findDeclaration(toks []token, name string, from int) int {
	for i := from; i+2 < len(toks); i++ {
		if toks[i].ident("function") && toks[i+1].ident(name) && toks[i+2].punct("(") {
			return i
		}
	}
	return -1
}

// declarationBrace skips the parameter list and an optional return type and
// returns the index of the body's opening brace, or -1 for bodiless methods.
func declarationBrace(toks []token, decl int) int {
	params := matchClose(toks, decl+2)
	if params < 0 {
		return -1
	}
	for i := params + 1; i < len(toks); i++ {
		switch {
		case toks[i].punct("{"):
			return i
		case toks[i].punct(";"), toks[i].punct("}"):
			return -1
		}
	}
	return -1
}

func isForwardTerminator(t token) bool {
	if t.kind != tokIdent {
		return false
	}
	if strings.HasPrefix(t.value, "__") {
		return true
	}
	for _, name := range forwardTerminators {
		if strings.EqualFold(t.value, name) {
			return true
		}
	}
	return false
}
