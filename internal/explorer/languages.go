package explorer

// TargetLanguages are the conversion targets offered by the language
// selector, in display order.
var TargetLanguages = []string{
	"python",
	"javascript",
	"java",
	"c",
	"c++",
	"c#",
	"go",
	"ruby",
	"php",
	"swift",
	"rust",
}

// IsTargetLanguage reports whether lang is offered by the selector.
func IsTargetLanguage(lang string) bool {
	for _, l := range TargetLanguages {
		if l == lang {
			return true
		}
	}
	return false
}
