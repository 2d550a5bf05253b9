package utils

import "strings"

// extensionBySyntax maps a paste's syntax label to the file extension
// used for downloads. The label has no meaning beyond this mapping.
var extensionBySyntax = map[string]string{
	"java":       ".java",
	"python":     ".py",
	"javascript": ".js",
	"typescript": ".ts",
	"cpp":        ".cpp",
	"c++":        ".cpp",
	"csharp":     ".cs",
	"c#":         ".cs",
	"go":         ".go",
	"rust":       ".rs",
	"php":        ".php",
	"ruby":       ".rb",
	"html":       ".html",
	"css":        ".css",
	"json":       ".json",
	"xml":        ".xml",
	"markdown":   ".md",
	"sql":        ".sql",
	"shell":      ".sh",
	"bash":       ".sh",
	"yaml":       ".yml",
}

// ExtensionForSyntax returns the download file extension for a syntax
// label, falling back to .txt.
func ExtensionForSyntax(syntax string) string {
	if ext, ok := extensionBySyntax[strings.ToLower(syntax)]; ok {
		return ext
	}
	return ".txt"
}
