package notepads

import "strings"

// DefaultPreviewLines is how many text lines list views show per notepad.
const DefaultPreviewLines = 3

// TextPreview returns the first maxLines lines of text, appending "..." on a
// new line if truncated. Text with maxLines or fewer lines is returned
// unchanged.
func TextPreview(text string, maxLines int) string {
	if text == "" || maxLines <= 0 {
		return text
	}

	pos := 0
	found := 0
	for i := 0; i < len(text); i++ {
		if text[i] == '\n' {
			found++
			if found == maxLines {
				pos = i
				break
			}
		}
	}

	if found < maxLines {
		return text
	}

	return text[:pos] + "\n..."
}

// CountLines returns the number of lines in text. An empty string has 0 lines.
func CountLines(text string) int {
	if text == "" {
		return 0
	}
	return strings.Count(text, "\n") + 1
}
