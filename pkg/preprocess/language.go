package preprocess

import (
	"regexp"
	"sort"
	"strings"
)

// Language carries the comment-delimiter and import-pattern data for one
// target language. The set is closed; a variant is selected once at job
// configuration time, not re-dispatched per file.
type Language struct {
	Name           string
	Extensions     []string
	lineComments   []*regexp.Regexp
	blockComments  []*regexp.Regexp
	importPrefixes []string
	keywords       map[string]struct{}
}

func keywordSet(words ...string) map[string]struct{} {
	m := make(map[string]struct{}, len(words))
	for _, w := range words {
		m[w] = struct{}{}
	}
	return m
}

var (
	hashLine    = regexp.MustCompile(`(?m)#.*$`)
	slashLine   = regexp.MustCompile(`(?m)//.*$`)
	cBlock      = regexp.MustCompile(`(?s)/\*.*?\*/`)
	tripleQuote = regexp.MustCompile(`(?s)""".*?"""|'''.*?'''`)
)

var languages = map[string]Language{
	"python": {
		Name:           "python",
		Extensions:     []string{".py"},
		lineComments:   []*regexp.Regexp{hashLine},
		blockComments:  []*regexp.Regexp{tripleQuote},
		importPrefixes: []string{"import ", "from "},
		keywords: keywordSet("if", "else", "elif", "for", "while", "return",
			"def", "class", "try", "except", "finally", "with", "as", "pass",
			"break", "continue", "lambda", "yield", "raise", "in", "is",
			"not", "and", "or", "None", "True", "False", "print"),
	},
	"java": {
		Name:           "java",
		Extensions:     []string{".java"},
		lineComments:   []*regexp.Regexp{slashLine},
		blockComments:  []*regexp.Regexp{cBlock},
		importPrefixes: []string{"import ", "package "},
		keywords: keywordSet("if", "else", "for", "while", "return", "class",
			"interface", "public", "private", "protected", "static", "final",
			"void", "int", "long", "double", "boolean", "new", "try", "catch",
			"finally", "throw", "throws", "this", "super", "null", "true", "false"),
	},
	"javascript": {
		Name:           "javascript",
		Extensions:     []string{".js", ".jsx"},
		lineComments:   []*regexp.Regexp{slashLine},
		blockComments:  []*regexp.Regexp{cBlock},
		importPrefixes: []string{"import ", "export ", "require("},
		keywords: keywordSet("if", "else", "for", "while", "return", "function",
			"const", "let", "var", "class", "new", "try", "catch", "finally",
			"throw", "this", "null", "undefined", "true", "false", "async",
			"await", "typeof", "instanceof"),
	},
	"typescript": {
		Name:           "typescript",
		Extensions:     []string{".ts", ".tsx"},
		lineComments:   []*regexp.Regexp{slashLine},
		blockComments:  []*regexp.Regexp{cBlock},
		importPrefixes: []string{"import ", "export ", "require("},
		keywords: keywordSet("if", "else", "for", "while", "return", "function",
			"const", "let", "var", "class", "interface", "type", "enum", "new",
			"try", "catch", "finally", "throw", "this", "null", "undefined",
			"true", "false", "async", "await", "string", "number", "boolean"),
	},
	"csharp": {
		Name:           "csharp",
		Extensions:     []string{".cs"},
		lineComments:   []*regexp.Regexp{slashLine},
		blockComments:  []*regexp.Regexp{cBlock},
		importPrefixes: []string{"using ", "namespace "},
		keywords: keywordSet("if", "else", "for", "foreach", "while", "return",
			"class", "struct", "interface", "public", "private", "protected",
			"static", "void", "int", "string", "bool", "new", "try", "catch",
			"finally", "throw", "this", "null", "true", "false", "var"),
	},
	"cpp": {
		Name:           "cpp",
		Extensions:     []string{".cpp", ".cc", ".h", ".hpp"},
		lineComments:   []*regexp.Regexp{slashLine},
		blockComments:  []*regexp.Regexp{cBlock},
		importPrefixes: []string{"#include", "#define", "using "},
		keywords: keywordSet("if", "else", "for", "while", "return", "class",
			"struct", "public", "private", "protected", "static", "void",
			"int", "long", "double", "bool", "char", "new", "delete", "try",
			"catch", "throw", "this", "nullptr", "true", "false", "const", "auto"),
	},
	"c": {
		Name:           "c",
		Extensions:     []string{".c", ".h"},
		lineComments:   []*regexp.Regexp{slashLine},
		blockComments:  []*regexp.Regexp{cBlock},
		importPrefixes: []string{"#include", "#define"},
		keywords: keywordSet("if", "else", "for", "while", "return", "struct",
			"static", "void", "int", "long", "double", "char", "const",
			"switch", "case", "break", "continue", "sizeof", "typedef"),
	},
	"go": {
		Name:           "go",
		Extensions:     []string{".go"},
		lineComments:   []*regexp.Regexp{slashLine},
		blockComments:  []*regexp.Regexp{cBlock},
		importPrefixes: []string{"import ", "package "},
		keywords: keywordSet("if", "else", "for", "range", "return", "func",
			"type", "struct", "interface", "map", "chan", "go", "defer",
			"select", "switch", "case", "break", "continue", "var", "const",
			"nil", "true", "false", "make", "new", "len", "append"),
	},
	"rust": {
		Name:           "rust",
		Extensions:     []string{".rs"},
		lineComments:   []*regexp.Regexp{slashLine},
		blockComments:  []*regexp.Regexp{cBlock},
		importPrefixes: []string{"use ", "extern crate ", "mod "},
		keywords: keywordSet("if", "else", "for", "while", "loop", "return",
			"fn", "struct", "enum", "impl", "trait", "match", "let", "mut",
			"pub", "self", "Self", "Some", "None", "Ok", "Err", "true", "false"),
	},
}

// Lookup returns the language variant for a name (case-insensitive).
func Lookup(name string) (Language, bool) {
	lang, ok := languages[strings.ToLower(name)]
	return lang, ok
}

// Supported returns the supported language names, sorted.
func Supported() []string {
	names := make([]string, 0, len(languages))
	for name := range languages {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// HasExtension reports whether a file path carries one of the
// language's source extensions.
func (l Language) HasExtension(path string) bool {
	for _, ext := range l.Extensions {
		if strings.HasSuffix(path, ext) {
			return true
		}
	}
	return false
}
