package extract

import "strings"

// block is a SchemaBlock together with the tokens of its closure body.
type block struct {
	SchemaBlock
	body []token
}

var blockMethods = map[string]BlockKind{
	"create":       CreateTable,
	"table":        AlterTable,
	"dropifexists": DropTableIfExists,
	"drop":         DropTable,
}

// FindBlocks returns the Schema:: calls in body, in source order.
// Calls whose table name is not a string literal are ignored.
func FindBlocks(body string) []SchemaBlock {
	found := findBlocks(body, tokenize(body))
	blocks := make([]SchemaBlock, 0, len(found))
	for _, b := range found {
		blocks = append(blocks, b.SchemaBlock)
	}
	return blocks
}

func findBlocks(src string, toks []token) []block {
	var blocks []block
	for i := 0; i < len(toks); i++ {
		if !isSchemaFacade(toks[i]) || at(toks, i+1).kind != tokDoubleColon {
			continue
		}

		m := i + 2
		// Schema::connection('name')->create(...)
		if at(toks, m).ident("connection") && at(toks, m+1).punct("(") {
			c := matchClose(toks, m+1)
			if c < 0 || at(toks, c+1).kind != tokArrow {
				continue
			}
			m = c + 2
		}

		method := at(toks, m)
		if method.kind != tokIdent {
			continue
		}
		kind, ok := blockMethods[strings.ToLower(method.value)]
		if !ok || !at(toks, m+1).punct("(") {
			continue
		}
		callClose := matchClose(toks, m+1)
		if callClose < 0 {
			continue
		}

		args := toks[m+2 : callClose]
		i = callClose
		if len(args) == 0 || args[0].kind != tokString {
			continue
		}

		b := block{SchemaBlock: SchemaBlock{Kind: kind, Table: unquote(args[0].value)}}
		if kind.HasBody() {
			b.body, b.Body = closureBody(src, args[1:])
		}
		blocks = append(blocks, b)
	}
	return blocks
}

// isSchemaFacade matches Schema and fully qualified names ending in \Schema.
// Class names are case-insensitive.
func isSchemaFacade(t token) bool {
	if t.kind != tokIdent {
		return false
	}
	name := t.value
	if idx := strings.LastIndexByte(name, '\\'); idx >= 0 {
		name = name[idx+1:]
	}
	return strings.EqualFold(name, "Schema")
}

// closureBody extracts the body of the closure passed after the table name:
// `function (...) [use (...)] [: type] { body }` or `fn (...) => body`.
// Anything else yields an empty body.
func closureBody(src string, rest []token) ([]token, string) {
	if !at(rest, 0).punct(",") {
		return nil, ""
	}
	i := 1
	if at(rest, i).ident("static") {
		i++
	}

	switch {
	case at(rest, i).ident("function"):
		params := matchClose(rest, i+1)
		if params < 0 {
			return nil, ""
		}
		for j := params + 1; j < len(rest); j++ {
			if !rest[j].punct("{") {
				continue
			}
			c := matchClose(rest, j)
			if c < 0 {
				return nil, ""
			}
			return rest[j+1 : c], src[rest[j].end():rest[c].offset]
		}
	case at(rest, i).ident("fn"):
		params := matchClose(rest, i+1)
		if params < 0 {
			return nil, ""
		}
		for j := params + 1; j < len(rest); j++ {
			if rest[j].kind == tokDoubleArrow {
				body := rest[j+1:]
				return body, span(src, body)
			}
		}
	}
	return nil, ""
}
