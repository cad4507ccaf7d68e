package cfg

import "strings"

// Preprocess turns raw C text into the statement sequence: comments are
// removed, each remaining line is trimmed, and blank lines and preprocessor
// directives are dropped. Multi-line constructs are not joined.
//
// A block comment that is never closed swallows the rest of the source.
func Preprocess(source string) []string {
	statements := make([]string, 0)
	inComment := false

	for _, line := range strings.Split(source, "\n") {
		var kept strings.Builder
		rest := line
		for rest != "" {
			if inComment {
				end := strings.Index(rest, "*/")
				if end < 0 {
					rest = ""
					break
				}
				rest = rest[end+2:]
				inComment = false
				continue
			}
			lineIdx := strings.Index(rest, "//")
			blockIdx := strings.Index(rest, "/*")
			switch {
			case blockIdx >= 0 && (lineIdx < 0 || blockIdx < lineIdx):
				kept.WriteString(rest[:blockIdx])
				rest = rest[blockIdx+2:]
				inComment = true
			case lineIdx >= 0:
				kept.WriteString(rest[:lineIdx])
				rest = ""
			default:
				kept.WriteString(rest)
				rest = ""
			}
		}

		stmt := strings.TrimSpace(kept.String())
		if stmt == "" || strings.HasPrefix(stmt, "#") {
			continue
		}
		statements = append(statements, stmt)
	}

	return statements
}
