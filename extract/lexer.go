package extract

import (
	"regexp"
	"strings"

	"github.com/alecthomas/participle/v2/lexer"

	"github.com/ridoystarlord/migraview/debug"
)

// scriptLexer tokenizes migration source. Comments and whitespace are
// dropped by tokenize; the trailing "Other" rule makes lexing total.
var scriptLexer = lexer.MustSimple([]lexer.SimpleRule{
	{Name: "Comment", Pattern: `//[^\n]*|#(?:[^\[\n][^\n]*)?|/\*(?:[^*]|\*+[^*/])*\*+/`},
	{Name: "Whitespace", Pattern: `\s+`},
	{Name: "String", Pattern: `'(?:\\.|[^'\\])*'|"(?:\\.|[^"\\])*"`},
	{Name: "Variable", Pattern: `\$[A-Za-z_][A-Za-z0-9_]*`},
	{Name: "Ident", Pattern: `\\?[A-Za-z_][A-Za-z0-9_]*(?:\\[A-Za-z_][A-Za-z0-9_]*)*`},
	{Name: "Number", Pattern: `\d+(?:\.\d+)?`},
	{Name: "Arrow", Pattern: `\??->`},
	{Name: "DoubleArrow", Pattern: `=>`},
	{Name: "DoubleColon", Pattern: `::`},
	{Name: "Punct", Pattern: `[(){}\[\],;:]`},
	{Name: "Other", Pattern: `.`},
})

type tokenKind int

const (
	tokString tokenKind = iota
	tokVariable
	tokIdent
	tokNumber
	tokArrow
	tokDoubleArrow
	tokDoubleColon
	tokPunct
	tokOther
	tokHeredoc // heredoc or nowdoc, opener through closing label
)

var tokenKinds = func() map[lexer.TokenType]tokenKind {
	symbols := scriptLexer.Symbols()
	return map[lexer.TokenType]tokenKind{
		symbols["String"]:      tokString,
		symbols["Variable"]:    tokVariable,
		symbols["Ident"]:       tokIdent,
		symbols["Number"]:      tokNumber,
		symbols["Arrow"]:       tokArrow,
		symbols["DoubleArrow"]: tokDoubleArrow,
		symbols["DoubleColon"]: tokDoubleColon,
		symbols["Punct"]:       tokPunct,
		symbols["Other"]:       tokOther,
	}
}()

type token struct {
	kind   tokenKind
	value  string
	offset int // byte offset into the lexed source
}

func (t token) end() int { return t.offset + len(t.value) }

func (t token) is(kind tokenKind, value string) bool {
	return t.kind == kind && t.value == value
}

func (t token) punct(value string) bool { return t.is(tokPunct, value) }

// ident matches identifiers case-insensitively, like PHP method names.
func (t token) ident(name string) bool {
	return t.kind == tokIdent && strings.EqualFold(t.value, name)
}

// tokenize lexes src into significant tokens. Lexer failures yield no tokens
// so that malformed scripts produce no actions instead of an error.
// Heredoc and nowdoc literals become one tokHeredoc token and lexing resumes
// after their closing label.
func tokenize(src string) []token {
	var toks []token
	for base := 0; base < len(src); {
		raw, err := lexAll(src[base:])
		if err != nil {
			debug.Debug("tokenize failed", "error", err)
			return nil
		}

		resume := -1
		for _, t := range raw {
			kind, ok := tokenKinds[t.Type]
			if !ok {
				continue
			}
			off := base + t.Pos.Offset
			if kind == tokOther && t.Value == "<" {
				if end, ok := heredocEnd(src, off); ok {
					toks = append(toks, token{kind: tokHeredoc, value: src[off:end], offset: off})
					resume = end
					break
				}
			}
			toks = append(toks, token{kind: kind, value: t.Value, offset: off})
		}
		if resume < 0 {
			break
		}
		base = resume
	}
	return toks
}

func lexAll(src string) ([]lexer.Token, error) {
	lex, err := scriptLexer.LexString("", src)
	if err != nil {
		return nil, err
	}
	return lexer.ConsumeAll(lex)
}

// heredocOpen matches `<<<LABEL`, `<<<"LABEL"` and `<<<'LABEL'` up to the end
// of the line.
var heredocOpen = regexp.MustCompile(`^<<<[ \t]*(?:([A-Za-z_]\w*)|"([A-Za-z_]\w*)"|'([A-Za-z_]\w*)')[ \t]*\r?\n`)

// heredocEnd returns the offset just past the closing label of the heredoc
// opening at src[off]. The closing label may be indented and must not be
// followed by an identifier character.
func heredocEnd(src string, off int) (int, bool) {
	m := heredocOpen.FindStringSubmatchIndex(src[off:])
	if m == nil {
		return 0, false
	}
	var label string
	for g := 1; g <= 3; g++ {
		if m[2*g] >= 0 {
			label = src[off+m[2*g] : off+m[2*g+1]]
		}
	}

	for pos := off + m[1]; pos <= len(src); {
		lineEnd := strings.IndexByte(src[pos:], '\n')
		if lineEnd < 0 {
			lineEnd = len(src)
		} else {
			lineEnd += pos
		}
		line := src[pos:lineEnd]
		trimmed := strings.TrimLeft(line, " \t")
		if rest, ok := strings.CutPrefix(trimmed, label); ok && (rest == "" || !isWordByte(rest[0])) {
			return pos + len(line) - len(trimmed) + len(label), true
		}
		if lineEnd == len(src) {
			break
		}
		pos = lineEnd + 1
	}
	return 0, false
}

func isWordByte(c byte) bool {
	return c == '_' || c >= '0' && c <= '9' || c >= 'a' && c <= 'z' || c >= 'A' && c <= 'Z'
}

// at returns toks[i] or a zero token when i is out of range.
func at(toks []token, i int) token {
	if i < 0 || i >= len(toks) {
		return token{kind: -1}
	}
	return toks[i]
}

var closers = map[string]string{"(": ")", "[": "]", "{": "}"}

// matchClose returns the index of the bracket closing toks[open], or -1 if
// toks[open] is not an opening bracket or is never closed.
func matchClose(toks []token, open int) int {
	if open < 0 || open >= len(toks) || toks[open].kind != tokPunct {
		return -1
	}
	if _, ok := closers[toks[open].value]; !ok {
		return -1
	}

	var stack []string
	for i := open; i < len(toks); i++ {
		t := toks[i]
		if t.kind != tokPunct {
			continue
		}
		if c, ok := closers[t.value]; ok {
			stack = append(stack, c)
			continue
		}
		if t.value == ")" || t.value == "]" || t.value == "}" {
			if len(stack) == 0 || stack[len(stack)-1] != t.value {
				return -1
			}
			stack = stack[:len(stack)-1]
			if len(stack) == 0 {
				return i
			}
		}
	}
	return -1
}

// splitTopLevel splits toks on sep punctuation that is not nested in brackets.
// Empty pieces are dropped.
func splitTopLevel(toks []token, sep string) [][]token {
	var parts [][]token
	depth, start := 0, 0
	for i, t := range toks {
		if t.kind != tokPunct {
			continue
		}
		switch t.value {
		case "(", "[", "{":
			depth++
		case ")", "]", "}":
			if depth > 0 {
				depth--
			}
		case sep:
			if depth == 0 {
				if i > start {
					parts = append(parts, toks[start:i])
				}
				start = i + 1
			}
		}
	}
	if start < len(toks) {
		parts = append(parts, toks[start:])
	}
	return parts
}

// unquote strips PHP string quotes and resolves backslash escapes of the
// quote character and the backslash itself.
func unquote(s string) string {
	if len(s) < 2 {
		return s
	}
	q := s[0]
	s = s[1 : len(s)-1]
	if !strings.Contains(s, `\`) {
		return s
	}
	var b strings.Builder
	for i := 0; i < len(s); i++ {
		if s[i] == '\\' && i+1 < len(s) && (s[i+1] == q || s[i+1] == '\\') {
			i++
		}
		b.WriteByte(s[i])
	}
	return b.String()
}

// span returns the source text covered by toks.
func span(src string, toks []token) string {
	if len(toks) == 0 {
		return ""
	}
	return src[toks[0].offset:toks[len(toks)-1].end()]
}
