package template

import (
	"fmt"
	"sort"
	"strings"
)

// Substituter replaces parameter placeholders in a serialized definition
// document. Implementations must replace every literal occurrence of the
// token {{name}}, applying supplied params before defaults.
type Substituter interface {
	Substitute(doc []byte, params map[string]any, defaults map[string]any) []byte
}

// rawSubstituter is the compatibility implementation: literal text
// replacement with no awareness of the document syntax. A value containing
// structural characters can corrupt the document; callers detect that by
// reparsing.
type rawSubstituter struct{}

func (rawSubstituter) Substitute(doc []byte, params map[string]any, defaults map[string]any) []byte {
	text := string(doc)
	text = replaceAll(text, params)
	text = replaceAll(text, defaults)
	return []byte(text)
}

func replaceAll(text string, values map[string]any) string {
	// Sorted key order keeps substitution deterministic when one value
	// happens to contain another parameter's token.
	keys := make([]string, 0, len(values))
	for k := range values {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	for _, k := range keys {
		token := "{{" + k + "}}"
		text = strings.ReplaceAll(text, token, stringify(values[k]))
	}
	return text
}

// stringify renders a parameter value in its textual form: strings are
// substituted raw, nil becomes empty, everything else goes through the
// default formatting verb.
func stringify(value any) string {
	switch v := value.(type) {
	case string:
		return v
	case nil:
		return ""
	default:
		return fmt.Sprintf("%v", v)
	}
}
