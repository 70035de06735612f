package walker

import (
	"path/filepath"
	"strings"
)

// UnknownLanguage is reported for files with no mapped extension.
const UnknownLanguage = "unknown"

// extensionToLanguage maps file extensions to the language tags used by
// the conversion endpoints.
var extensionToLanguage = map[string]string{
	".py":    "python",
	".js":    "javascript",
	".java":  "java",
	".c":     "c",
	".cpp":   "c++",
	".cs":    "c#",
	".go":    "go",
	".rb":    "ruby",
	".php":   "php",
	".swift": "swift",
	".rs":    "rust",
}

// DetectLanguage returns the language tag for a file based on its
// extension, or "unknown".
func DetectLanguage(filename string) string {
	ext := strings.ToLower(filepath.Ext(filename))
	if lang, ok := extensionToLanguage[ext]; ok {
		return lang
	}
	return UnknownLanguage
}
