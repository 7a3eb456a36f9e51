// Package parser extracts tool invocations embedded in model-generated text.
//
// The wire format is a bracketed marker containing a tool name and a
// parenthesized argument list:
//
//	[TOOL: tool_name(key='value', other=42)]
//
// Argument values are single-quoted strings ('...' or "..."), triple-quoted
// strings ('''...''' or """...""", which may span lines and contain commas,
// equals signs and quotes of the other kind), or bare literals such as
// numbers and booleans. The model is prompted with examples of this exact
// syntax, so the grammar here is the one bit-exact contract in the system.
//
// The producer of this format is a probabilistic text generator, not a
// disciplined peer: a malformed invocation is skipped and reported as a
// ParseError while later invocations in the same text still parse.
package parser

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
)

// marker opens a tool invocation. Matching is case-sensitive; the model is
// prompted with this exact spelling.
const marker = "[TOOL:"

// ToolCall is a single parsed invocation, consumed by the executor.
type ToolCall struct {
	Name string
	Args Args
}

// Args is an ordered mapping from argument name to string value.
// Duplicate names are last-write-wins; the original key order is preserved.
type Args struct {
	keys   []string
	values map[string]string
}

// NewArgs creates an empty argument mapping.
func NewArgs() Args {
	return Args{values: make(map[string]string)}
}

// Set stores a value, keeping the first occurrence's position on duplicates.
func (a *Args) Set(key, value string) {
	if a.values == nil {
		a.values = make(map[string]string)
	}
	if _, exists := a.values[key]; !exists {
		a.keys = append(a.keys, key)
	}
	a.values[key] = value
}

// Get returns the value for key and whether it was present.
func (a Args) Get(key string) (string, bool) {
	v, ok := a.values[key]
	return v, ok
}

// Keys returns the argument names in their original order.
func (a Args) Keys() []string {
	keys := make([]string, len(a.keys))
	copy(keys, a.keys)
	return keys
}

// Len returns the number of distinct arguments.
func (a Args) Len() int {
	return len(a.keys)
}

// String renders the arguments as key=value pairs for logging and prompts.
func (a Args) String() string {
	var sb strings.Builder
	for i, k := range a.keys {
		if i > 0 {
			sb.WriteString(", ")
		}
		v := a.values[k]
		if len(v) > 60 {
			v = v[:57] + "..."
		}
		fmt.Fprintf(&sb, "%s=%q", k, v)
	}
	return sb.String()
}

// MarshalJSON encodes the arguments as a JSON object in key order.
func (a Args) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, k := range a.keys {
		if i > 0 {
			buf.WriteByte(',')
		}
		kb, err := json.Marshal(k)
		if err != nil {
			return nil, err
		}
		vb, err := json.Marshal(a.values[k])
		if err != nil {
			return nil, err
		}
		buf.Write(kb)
		buf.WriteByte(':')
		buf.Write(vb)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// ParseError reports a malformed invocation that was skipped.
type ParseError struct {
	Offset int    // byte offset of the opening marker in the input
	Reason string // what went wrong
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("tool call at offset %d: %s", e.Offset, e.Reason)
}

// Parse scans text for embedded tool invocations. It returns the calls in
// the order they appear plus a ParseError for every invocation that could
// not be parsed. Parse has no side effects and never fails as a whole:
// a broken call does not prevent later calls from being extracted.
func Parse(text string) ([]ToolCall, []*ParseError) {
	var (
		calls  []ToolCall
		errs   []*ParseError
		offset int
	)

	for {
		idx := strings.Index(text[offset:], marker)
		if idx < 0 {
			break
		}
		start := offset + idx

		call, consumed, err := parseCall(text, start)
		if err != nil {
			errs = append(errs, err)
			// Resume scanning right after the failed marker so that a
			// later well-formed call is still found.
			offset = start + len(marker)
			continue
		}
		calls = append(calls, call)
		offset = start + consumed
	}

	return calls, errs
}

// parseCall parses one invocation starting at the marker position.
// It returns the call and the number of bytes consumed from start.
func parseCall(text string, start int) (ToolCall, int, *ParseError) {
	pos := start + len(marker)
	pos = skipSpaces(text, pos)

	name, pos := scanIdent(text, pos)
	if name == "" {
		return ToolCall{}, 0, &ParseError{Offset: start, Reason: "missing tool name"}
	}

	pos = skipSpaces(text, pos)
	if pos >= len(text) || text[pos] != '(' {
		return ToolCall{}, 0, &ParseError{Offset: start, Reason: fmt.Sprintf("expected '(' after tool name %q", name)}
	}
	pos++

	args := NewArgs()
	pos = skipSpaces(text, pos)

	for pos < len(text) && text[pos] != ')' {
		key, next := scanIdent(text, pos)
		if key == "" {
			return ToolCall{}, 0, &ParseError{Offset: start, Reason: "expected argument name"}
		}
		pos = skipSpaces(text, next)
		if pos >= len(text) || text[pos] != '=' {
			return ToolCall{}, 0, &ParseError{Offset: start, Reason: fmt.Sprintf("expected '=' after argument %q", key)}
		}
		pos = skipSpaces(text, pos+1)

		value, next, perr := scanValue(text, pos)
		if perr != nil {
			perr.Offset = start
			return ToolCall{}, 0, perr
		}
		args.Set(key, value)
		pos = skipSpaces(text, next)

		if pos < len(text) && text[pos] == ',' {
			pos = skipSpaces(text, pos+1)
			continue
		}
		break
	}

	if pos >= len(text) || text[pos] != ')' {
		return ToolCall{}, 0, &ParseError{Offset: start, Reason: "unterminated argument list"}
	}
	pos++

	// Tolerate the closing bracket being absent or separated by whitespace;
	// small models frequently drop it.
	pos = skipSpaces(text, pos)
	if pos < len(text) && text[pos] == ']' {
		pos++
	}

	return ToolCall{Name: name, Args: args}, pos - start, nil
}

// scanValue reads one argument value at pos. Quoted values are returned
// without their quotes; bare values are trimmed tokens ending at ',' or ')'.
func scanValue(text string, pos int) (string, int, *ParseError) {
	if pos >= len(text) {
		return "", 0, &ParseError{Reason: "missing argument value"}
	}

	// Triple quotes must be checked before single quotes.
	for _, q := range []string{"'''", `"""`} {
		if strings.HasPrefix(text[pos:], q) {
			body := pos + len(q)
			end := strings.Index(text[body:], q)
			if end < 0 {
				return "", 0, &ParseError{Reason: "unterminated triple-quoted value"}
			}
			return text[body : body+end], body + end + len(q), nil
		}
	}

	if text[pos] == '\'' || text[pos] == '"' {
		quote := text[pos]
		body := pos + 1
		end := strings.IndexByte(text[body:], quote)
		if end < 0 {
			return "", 0, &ParseError{Reason: "unterminated quoted value"}
		}
		return text[body : body+end], body + end + 1, nil
	}

	// Bare literal: number, boolean or similar token.
	end := pos
	for end < len(text) && text[end] != ',' && text[end] != ')' && text[end] != '\n' {
		end++
	}
	value := strings.TrimSpace(text[pos:end])
	if value == "" {
		return "", 0, &ParseError{Reason: "empty argument value"}
	}
	return value, end, nil
}

func scanIdent(text string, pos int) (string, int) {
	start := pos
	for pos < len(text) {
		c := text[pos]
		if c >= 'a' && c <= 'z' || c >= 'A' && c <= 'Z' || c >= '0' && c <= '9' || c == '_' {
			pos++
			continue
		}
		break
	}
	return text[start:pos], pos
}

func skipSpaces(text string, pos int) int {
	for pos < len(text) {
		switch text[pos] {
		case ' ', '\t', '\n', '\r':
			pos++
		default:
			return pos
		}
	}
	return pos
}
