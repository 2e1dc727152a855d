package render

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// WriteToProject writes rendered content to path, creating parent
// directories. Markdown documents keep whatever follows the generated end
// marker of an existing file; an existing file without markers is kept
// below the new generated section.
func WriteToProject(path, content string, f Format) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}

	if f != Markdown {
		return os.WriteFile(path, []byte(content), 0644)
	}
	return writeMarkdown(path, content, defaultCustomSection)
}

// WriteRules writes a rendered rules document to path with the same
// custom-content preservation as a markdown skills document.
func WriteRules(path, content string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}
	return writeMarkdown(path, content, defaultCustomRules)
}

func writeMarkdown(path, content, customSection string) error {
	generated := strings.TrimSuffix(content, "\n")

	existing, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return os.WriteFile(path, []byte(generated+"\n"+customSection), 0644)
		}
		return fmt.Errorf("failed to read existing file: %w", err)
	}

	parsed := Parse(string(existing))

	var final string
	switch {
	case parsed.HasMarkers && parsed.HasCustomContent():
		final = generated + parsed.CustomContent
	case parsed.HasMarkers:
		final = generated + "\n" + customSection
	case parsed.HasCustomContent():
		final = generated + "\n\n" + strings.TrimLeft(parsed.CustomContent, "\n")
	default:
		final = generated + "\n" + customSection
	}

	return os.WriteFile(path, []byte(final), 0644)
}
