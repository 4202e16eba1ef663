package workspace

import (
	"path/filepath"
	"strings"
	"sync/atomic"

	"github.com/zjrosen/patchlens/internal/document"
)

// PlainText is the language tag of surfaces with no recognised type.
const PlainText = "plaintext"

var languageByExt = map[string]string{
	".c":    "c",
	".h":    "c",
	".cc":   "cpp",
	".cpp":  "cpp",
	".cxx":  "cpp",
	".hpp":  "cpp",
	".go":   "go",
	".java": "java",
	".js":   "javascript",
	".ts":   "typescript",
	".py":   "python",
	".rb":   "ruby",
	".rs":   "rust",
	".php":  "php",
	".cs":   "csharp",
	".md":   "markdown",
	".diff": "diff",
	".txt":  PlainText,
}

// LanguageFor derives a language tag from a file name.
func LanguageFor(path string) string {
	if lang, ok := languageByExt[strings.ToLower(filepath.Ext(path))]; ok {
		return lang
	}
	return PlainText
}

// Surface is an open document. Its identity is stable across edits; the
// text is swapped as a whole on every change.
type Surface struct {
	ID       string
	Path     string
	Title    string
	Language string
	ReadOnly bool

	doc atomic.Pointer[document.Document]
}

func newSurface(id, path, title, language string, readOnly bool, text string) *Surface {
	s := &Surface{
		ID:       id,
		Path:     path,
		Title:    title,
		Language: language,
		ReadOnly: readOnly,
	}
	s.doc.Store(document.New(text))
	return s
}

// Document returns the current snapshot.
func (s *Surface) Document() *document.Document {
	return s.doc.Load()
}

// Untitled reports whether the surface has no backing file.
func (s *Surface) Untitled() bool {
	return s.Path == ""
}

func (s *Surface) setText(text string) bool {
	if s.doc.Load().Text() == text {
		return false
	}
	s.doc.Store(document.New(text))
	return true
}
