package render

import (
	"strings"
)

// ParsedContent represents the parsed sections of a skills document.
type ParsedContent struct {
	PreContent       string // Content before the generated section
	GeneratedContent string
	CustomContent    string // Content after the generated section
	HasMarkers       bool
}

// Parse splits content into generated and custom sections. A document
// without both markers is treated as entirely custom.
func Parse(content string) *ParsedContent {
	result := &ParsedContent{}

	startIdx := strings.Index(content, GeneratedStartMarker)
	endIdx := strings.Index(content, GeneratedEndMarker)

	if startIdx == -1 || endIdx == -1 || endIdx < startIdx {
		result.CustomContent = content
		return result
	}

	result.HasMarkers = true
	result.PreContent = content[:startIdx]
	result.GeneratedContent = content[startIdx : endIdx+len(GeneratedEndMarker)]
	result.CustomContent = content[endIdx+len(GeneratedEndMarker):]

	return result
}

// HasCustomContent returns true if the parsed content has custom sections.
func (p *ParsedContent) HasCustomContent() bool {
	return strings.TrimSpace(p.CustomContent) != ""
}
