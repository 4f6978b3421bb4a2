package engine

import (
	"path/filepath"
	"strings"

	"github.com/alecthomas/chroma/v2"
	"github.com/alecthomas/chroma/v2/lexers"

	"pkt.systems/tabula/schema"
)

// DetectLanguage picks a language id for a buffer. An explicit hint wins,
// then the identity file name, then content analysis for untitled buffers.
func DetectLanguage(hint, identity, content string) string {
	if hint = strings.TrimSpace(hint); hint != "" {
		return strings.ToLower(hint)
	}
	var lexer chroma.Lexer
	if identity != "" {
		lexer = lexers.Match(filepath.Base(identity))
	} else if strings.TrimSpace(content) != "" {
		lexer = lexers.Analyse(content)
	}
	if lexer == nil {
		return schema.LanguagePlainText
	}
	name := strings.ToLower(lexer.Config().Name)
	if name == "" {
		return schema.LanguagePlainText
	}
	return name
}

// warmLexers forces the lexer registry to initialise and returns its size.
func warmLexers() int {
	return len(lexers.Names(false))
}
