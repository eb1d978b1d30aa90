package dispatch

import (
	"encoding/json"
	"strings"

	"github.com/Cyclone1070/devassist/internal/capability"
)

// genericClose closes a tagged call regardless of the opening tag name.
const genericClose = "</function>"

// Extract finds the first call tagged in text as
//
//	<name> {body} </name>   or   <name> {body} </function>
//
// where name is [a-zA-Z0-9_]+ and the body is everything from the first '{'
// to the first '}' that is followed by optional whitespace and a closing tag.
// A body that parses as a JSON object becomes a mapping payload; anything
// else becomes a text payload with surrounding braces and whitespace removed.
func Extract(text string) (RawCall, bool) {
	for i := 0; i < len(text); i++ {
		if text[i] != '<' {
			continue
		}
		name, bodyStart, ok := openTag(text, i)
		if !ok {
			continue
		}
		body, ok := closeBody(text, bodyStart, name)
		if !ok {
			continue
		}
		return RawCall{
			Name:    name,
			Payload: parseBody(body),
			Source:  SourceTagged,
		}, true
	}
	return RawCall{}, false
}

// openTag reads "<name>" at text[i] followed by optional whitespace and '{'.
// It returns the name and the index of the '{'.
func openTag(text string, i int) (string, int, bool) {
	j := i + 1
	for j < len(text) && capability.IsNameByte(text[j]) {
		j++
	}
	if j == i+1 || j >= len(text) || text[j] != '>' {
		return "", 0, false
	}
	k := skipSpace(text, j+1)
	if k >= len(text) || text[k] != '{' {
		return "", 0, false
	}
	return text[i+1 : j], k, true
}

// closeBody returns text[start:p+1] for the first '}' at p that is followed by
// optional whitespace and either </name> or </function>.
func closeBody(text string, start int, name string) (string, bool) {
	named := "</" + name + ">"
	for p := start + 1; p < len(text); p++ {
		if text[p] != '}' {
			continue
		}
		rest := text[skipSpace(text, p+1):]
		if strings.HasPrefix(rest, named) || strings.HasPrefix(rest, genericClose) {
			return text[start : p+1], true
		}
	}
	return "", false
}

func parseBody(body string) capability.Payload {
	trimmed := strings.TrimSpace(body)
	var args map[string]any
	if err := json.Unmarshal([]byte(trimmed), &args); err == nil && args != nil {
		return capability.MappingPayload(args)
	}
	return capability.TextPayload(strings.Trim(trimmed, "{} \t\r\n"))
}

func skipSpace(text string, i int) int {
	for i < len(text) && isSpace(text[i]) {
		i++
	}
	return i
}

func isSpace(b byte) bool {
	switch b {
	case ' ', '\t', '\n', '\r', '\f', '\v':
		return true
	}
	return false
}
