package extract

import (
	"regexp"
	"strings"
)

// standalonePageNumberPattern matches lines containing only a page number.
var standalonePageNumberPattern = regexp.MustCompile(`^\d+$`)

// Truncate discards everything before the first occurrence of marker. When
// the marker is empty or absent the text is returned unchanged.
func Truncate(text, marker string) string {
	if marker == "" {
		return text
	}
	if index := strings.Index(text, marker); index != -1 {
		return text[index:]
	}
	return text
}

// FilterNoise splits text into lines and removes pagination artifacts:
// standalone page numbers, repeated running headers, and citation or
// gazette-date footers. Blank lines are kept.
func (l Layout) FilterNoise(text string) []string {
	lines := strings.Split(text, "\n")
	cleanedLines := make([]string, 0, len(lines))

	for _, line := range lines {
		if l.isNoise(strings.TrimSpace(line)) {
			continue
		}
		cleanedLines = append(cleanedLines, line)
	}

	return cleanedLines
}

func (l Layout) isNoise(trimmedLine string) bool {
	if trimmedLine == "" {
		return false
	}

	if standalonePageNumberPattern.MatchString(trimmedLine) {
		return true
	}

	for _, header := range l.HeaderLines {
		if trimmedLine == header {
			return true
		}
	}

	for _, prefix := range l.FooterPrefixes {
		if prefix != "" && strings.HasPrefix(trimmedLine, prefix) {
			return true
		}
	}

	return false
}
