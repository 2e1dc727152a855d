package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"github.com/andywolf/rulesgen/internal/classifier"
	"github.com/andywolf/rulesgen/internal/scanner"
	"github.com/andywolf/rulesgen/internal/validate"
)

var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("39"))

	labelStyle = lipgloss.NewStyle().
			Width(14).
			Foreground(lipgloss.Color("241"))

	valueStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("39"))

	dimStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("241"))

	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("196"))

	warnStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("214"))
)

const scoreBarWidth = 20

var detectCmd = &cobra.Command{
	Use:   "detect [path]",
	Short: "Detect the project type",
	Long: `Scan a project and report its detected type, confidence, per-category scores,
directory layout, and any problems with the scanned project data.

Example:
  rulesgen detect
  rulesgen detect ./myapp --json`,
	Args: cobra.MaximumNArgs(1),
	RunE: runDetect,
}

func init() {
	rootCmd.AddCommand(detectCmd)

	detectCmd.Flags().String("readme", "", "README path (default: discovered in project root)")
	detectCmd.Flags().Bool("json", false, "Print the detection result as JSON")
}

type detectReport struct {
	Project    string                   `json:"project"`
	TechStack  []string                 `json:"tech_stack"`
	Readme     string                   `json:"readme,omitempty"`
	Structure  scanner.ProjectStructure `json:"structure"`
	Detection  classifier.Result        `json:"detection"`
	Validation validate.Result          `json:"validation"`
}

func runDetect(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	logger := newLogger(cmd.ErrOrStderr(), cfg.Generation.Verbose)

	root := "."
	if len(args) > 0 {
		root = args[0]
	}
	readme, _ := cmd.Flags().GetString("readme")

	info, err := scanProject(cfg, root, readme, logger)
	if err != nil {
		return err
	}
	analyzer, err := newAnalyzer(cfg)
	if err != nil {
		return err
	}
	detected := analyzer.Detect(info)

	asJSON, _ := cmd.Flags().GetBool("json")
	if asJSON {
		return writeDetectJSON(cmd.OutOrStdout(), info, detected)
	}
	fmt.Fprint(cmd.OutOrStdout(), formatDetection(info, detected))
	return nil
}

func writeDetectJSON(w io.Writer, info *scanner.ProjectInfo, detected classifier.Result) error {
	report := detectReport{
		Project:    info.Name,
		TechStack:  info.TechStack,
		Readme:     info.ReadmePath,
		Structure:  info.Structure,
		Detection:  detected,
		Validation: validate.Project(info),
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(report)
}

// formatDetection renders the styled detection report.
func formatDetection(info *scanner.ProjectInfo, detected classifier.Result) string {
	var b strings.Builder

	row := func(label, value string) {
		b.WriteString(labelStyle.Render(label) + valueStyle.Render(value) + "\n")
	}

	b.WriteString(titleStyle.Render("Project type detection") + "\n\n")
	row("Project", info.Name)
	if len(info.TechStack) > 0 {
		row("Tech stack", strings.Join(info.TechStack, ", "))
	} else {
		row("Tech stack", "none detected")
	}
	row("Type", string(detected.PrimaryType))
	row("Confidence", fmt.Sprintf("%.2f", detected.Confidence))
	if len(detected.SecondaryTypes) > 0 {
		row("Secondary", strings.Join(detected.SecondaryNames(), ", "))
	}

	b.WriteString("\n" + titleStyle.Render("Scores") + "\n")
	for _, c := range rankedCategories(detected.AllScores) {
		score := detected.AllScores[c]
		b.WriteString(labelStyle.Render(string(c)) + scoreBar(score) + dimStyle.Render(fmt.Sprintf(" %.2f", score)) + "\n")
	}

	if st := info.Structure; len(st.EntryPoints)+len(st.SourceDirs)+len(st.TestDirs) > 0 || st.HasCI || st.HasDocker {
		b.WriteString("\n" + titleStyle.Render("Layout") + "\n")
		if len(st.EntryPoints) > 0 {
			row("Entry points", strings.Join(st.EntryPoints, ", "))
		}
		if len(st.SourceDirs) > 0 {
			row("Source dirs", strings.Join(st.SourceDirs, ", "))
		}
		if len(st.TestDirs) > 0 {
			row("Test dirs", strings.Join(st.TestDirs, ", "))
		}
		if st.HasCI {
			row("CI", st.CISystem)
		}
		if st.HasDocker {
			row("Docker", "yes")
		}
	}

	report := validate.Project(info)
	if len(report.Errors)+len(report.Warnings) > 0 {
		b.WriteString("\n" + titleStyle.Render("Validation") + "\n")
		for _, e := range report.Errors {
			b.WriteString(errorStyle.Render("  error   ") + e + "\n")
		}
		for _, w := range report.Warnings {
			b.WriteString(warnStyle.Render("  warning ") + w + "\n")
		}
	}
	return b.String()
}

// rankedCategories orders categories by descending score, ties in
// canonical order.
func rankedCategories(scores classifier.Scores) []classifier.Category {
	cats := append([]classifier.Category(nil), classifier.Categories...)
	sort.SliceStable(cats, func(i, j int) bool {
		return scores[cats[i]] > scores[cats[j]]
	})
	return cats
}

func scoreBar(score float64) string {
	filled := int(min(score, 1.0)*scoreBarWidth + 0.5)
	return valueStyle.Render(strings.Repeat("█", filled)) + dimStyle.Render(strings.Repeat("░", scoreBarWidth-filled))
}
