package utils

import (
	"regexp"
	"strings"
)

var paragraphBreak = regexp.MustCompile(`\n\n+`)

// SemanticChunk splits text into chunks along paragraph boundaries, greedily
// packing paragraphs until maxSize would be exceeded. A single paragraph
// larger than maxSize is emitted whole rather than split mid-paragraph.
func SemanticChunk(text string, maxSize int) []string {
	paragraphs := paragraphBreak.Split(text, -1)

	var chunks []string
	var current strings.Builder

	for _, para := range paragraphs {
		if current.Len()+len(para) > maxSize && current.Len() > 0 {
			if flushed := strings.TrimSpace(current.String()); flushed != "" {
				chunks = append(chunks, flushed)
			}
			current.Reset()
			current.WriteString(para)
			continue
		}
		if current.Len() > 0 {
			current.WriteString("\n\n")
		}
		current.WriteString(para)
	}

	if flushed := strings.TrimSpace(current.String()); flushed != "" {
		chunks = append(chunks, flushed)
	}

	return chunks
}
