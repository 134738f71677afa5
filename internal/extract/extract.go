// Package extract adapts the external PDF text-extraction collaborator.
package extract

import (
	"bytes"
	"fmt"
	"strings"

	"code.sajari.com/docconv"
)

const maxHeuristicNameLength = 60

// Text extracts the full text of a PDF from its raw bytes.
func Text(pdf []byte) (string, error) {
	res, err := docconv.Convert(bytes.NewReader(pdf), "application/pdf", true)
	if err != nil {
		return "", fmt.Errorf("convert pdf: %w", err)
	}

	text := strings.TrimSpace(res.Body)
	if text == "" {
		return "", fmt.Errorf("pdf contains no extractable text")
	}

	return text, nil
}

// NameHeuristic takes the first short non-empty line of the resume text as
// the candidate name. Used when AI-based extraction is unavailable or
// fails.
func NameHeuristic(text string) string {
	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimSpace(line)
		if line != "" && len([]rune(line)) < maxHeuristicNameLength {
			return line
		}
	}
	return "Unknown"
}
