// Package wizard provides interactive prompts for CLI commands.
package wizard

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/huh"

	"github.com/andywolf/rulesgen/internal/classifier"
	"github.com/andywolf/rulesgen/internal/scanner"
)

// ConfirmProjectInfo presents the detected project for user confirmation and
// lets the user correct the name and tech stack before skills are resolved.
func ConfirmProjectInfo(info *scanner.ProjectInfo, detected classifier.Result) (*scanner.ProjectInfo, error) {
	var confirmed bool

	form := huh.NewForm(
		huh.NewGroup(
			huh.NewNote().
				Title("Detected Project").
				Description(Summary(info, detected)),

			huh.NewConfirm().
				Title("Continue generating skills?").
				Value(&confirmed),
		),
	)

	if err := form.Run(); err != nil {
		return nil, fmt.Errorf("prompt cancelled: %w", err)
	}

	if confirmed {
		return info, nil
	}

	return editProjectInfo(info)
}

func editProjectInfo(info *scanner.ProjectInfo) (*scanner.ProjectInfo, error) {
	techStack := strings.Join(info.TechStack, ", ")

	form := huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title("Project Name").
				Value(&info.Name).
				Validate(func(s string) error {
					if strings.TrimSpace(s) == "" {
						return fmt.Errorf("project name is required")
					}
					return nil
				}),

			huh.NewInput().
				Title("Tech Stack (comma-separated)").
				Value(&techStack),
		),
	)

	if err := form.Run(); err != nil {
		return nil, fmt.Errorf("prompt cancelled: %w", err)
	}

	info.Name = strings.TrimSpace(info.Name)
	info.TechStack = parseList(strings.ToLower(techStack))

	return info, nil
}

// ConfirmRegeneration asks user to confirm regeneration when custom content exists.
func ConfirmRegeneration(path string, hasCustomContent bool) (bool, error) {
	if !hasCustomContent {
		return true, nil
	}

	var confirmed bool
	form := huh.NewForm(
		huh.NewGroup(
			huh.NewNote().
				Title("Existing skills file found").
				Description(fmt.Sprintf("%s has custom sections. They will be preserved; generated sections will be updated.", path)),

			huh.NewConfirm().
				Title("Continue with regeneration?").
				Value(&confirmed),
		),
	)

	if err := form.Run(); err != nil {
		return false, err
	}

	return confirmed, nil
}

// Summary is the plain-text description of a detected project shown in
// prompts.
func Summary(info *scanner.ProjectInfo, detected classifier.Result) string {
	tech := "None detected"
	if len(info.TechStack) > 0 {
		tech = strings.Join(info.TechStack, ", ")
	}
	s := fmt.Sprintf("Project: %s\nTech: %s\nType: %s (%.0f%% confidence)",
		displayName(info), tech, detected.PrimaryType, detected.Confidence*100)
	if len(detected.SecondaryTypes) > 0 {
		s += "\nAlso: " + strings.Join(detected.SecondaryNames(), ", ")
	}
	if len(info.Features) > 0 {
		s += "\nTop feature: " + info.Features[0]
	}
	return s
}

func displayName(info *scanner.ProjectInfo) string {
	if info.RawName != "" {
		return info.RawName
	}
	return info.Name
}

func parseList(s string) []string {
	if strings.TrimSpace(s) == "" {
		return nil
	}
	parts := strings.Split(s, ",")
	var result []string
	for _, p := range parts {
		if trimmed := strings.TrimSpace(p); trimmed != "" {
			result = append(result, trimmed)
		}
	}
	return result
}
