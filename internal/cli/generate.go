package cli

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/andywolf/rulesgen/internal/cli/wizard"
	"github.com/andywolf/rulesgen/internal/config"
	"github.com/andywolf/rulesgen/internal/importers"
	"github.com/andywolf/rulesgen/internal/orchestrator"
	"github.com/andywolf/rulesgen/internal/render"
	"github.com/andywolf/rulesgen/internal/scanner"
	"github.com/andywolf/rulesgen/internal/validate"
	"github.com/andywolf/rulesgen/internal/version"
)

var generateCmd = &cobra.Command{
	Use:   "generate [path]",
	Short: "Generate the skills document for a project",
	Long: `Analyze a project, resolve skills from every enabled source, and render the
skills document.

The document is printed to stdout unless --write or --output is given. When
written, a <project>-rules.md coding rules document is written next to it
unless --no-rules is set. Written markdown documents keep everything below the
generated section, so custom skills and rules survive regeneration.

The project data and rendered documents are validated; findings are logged.

Example:
  rulesgen generate
  rulesgen generate ./myapp --write
  rulesgen generate ./myapp --format json --output skills.json
  rulesgen generate --include-pack ./packs/team-rules --write`,
	Args: cobra.MaximumNArgs(1),
	RunE: runGenerate,
}

func init() {
	rootCmd.AddCommand(generateCmd)

	generateCmd.Flags().StringP("format", "f", "", "Output format (markdown, json, yaml; default from config)")
	generateCmd.Flags().StringP("output", "o", "", "Write the document to this path")
	generateCmd.Flags().BoolP("write", "w", false, "Write <project>-skills.<ext> into the project directory")
	generateCmd.Flags().String("readme", "", "README path (default: discovered in project root)")
	generateCmd.Flags().StringSlice("include-pack", nil, "Skill pack directory or file to merge (repeatable)")
	generateCmd.Flags().BoolP("interactive", "i", false, "Confirm detected project details before generating")
	generateCmd.Flags().Bool("no-rules", false, "Do not write the <project>-rules.md document")
}

// generateOptions is the resolved flag set of one generate run.
type generateOptions struct {
	root        string
	readme      string
	format      render.Format
	output      string
	write       bool
	packs       []string
	interactive bool
	noRules     bool
}

func runGenerate(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	logger := newLogger(cmd.ErrOrStderr(), cfg.Generation.Verbose)

	opts := generateOptions{root: "."}
	if len(args) > 0 {
		opts.root = args[0]
	}
	opts.readme, _ = cmd.Flags().GetString("readme")
	opts.output, _ = cmd.Flags().GetString("output")
	opts.write, _ = cmd.Flags().GetBool("write")
	opts.packs, _ = cmd.Flags().GetStringSlice("include-pack")
	opts.interactive, _ = cmd.Flags().GetBool("interactive")
	opts.noRules, _ = cmd.Flags().GetBool("no-rules")

	formatName, _ := cmd.Flags().GetString("format")
	if formatName == "" {
		formatName = cfg.Generation.OutputFormat
	}
	opts.format, err = render.ParseFormat(formatName)
	if err != nil {
		return err
	}

	return generate(cmd.OutOrStdout(), cfg, opts, logger)
}

func generate(out io.Writer, cfg *config.Config, opts generateOptions, logger *slog.Logger) error {
	info, err := scanProject(cfg, opts.root, opts.readme, logger)
	if err != nil {
		return err
	}

	o, err := newOrchestrator(cfg, logger)
	if err != nil {
		return err
	}

	if opts.interactive {
		info, err = wizard.ConfirmProjectInfo(info, o.Detect(info))
		if err != nil {
			return err
		}
	}

	logValidation(logger, "project", validate.Project(info))

	result := o.Orchestrate(info)

	packs := importers.LoadPacks(packRefs(cfg, opts.packs), info.RootDir, logger)
	skills := importers.Merge(result.Skills, packs)

	doc := render.Document{
		ProjectName: projectDisplayName(info),
		ProjectType: string(result.Detection.PrimaryType),
		Confidence:  result.Detection.Confidence,
		TechStack:   info.TechStack,
		Description: info.Description,
		Features:    info.Features,
		Layout:      layoutOf(info.Structure),
		Version:     render.DocumentVersion,
		GeneratedBy: version.Generator(),
		Skills:      skills,
	}
	content, err := render.Render(opts.format, doc)
	if err != nil {
		return err
	}
	if opts.format == render.Markdown {
		logValidation(logger, "skills", validate.Document(content, validate.Skills))
	} else {
		logValidation(logger, "skills", validate.Placeholders(content))
	}

	path := opts.output
	if path == "" && opts.write {
		path = render.OutputPath(info.RootDir, info.Name, opts.format)
	}
	if path == "" {
		_, err := io.WriteString(out, content)
		return err
	}

	if opts.interactive && opts.format == render.Markdown {
		ok, err := confirmOverwrite(path)
		if err != nil {
			return err
		}
		if !ok {
			fmt.Fprintln(out, "Skipped writing", path)
			return nil
		}
	}

	if err := render.WriteToProject(path, content, opts.format); err != nil {
		return err
	}

	logger.Info("wrote skills document",
		"path", path,
		"skills", len(skills),
		"packs", len(packs),
		"run_id", result.RunID,
	)
	fmt.Fprintf(out, "Wrote %d skills to %s\n", len(skills), path)

	if opts.noRules {
		return nil
	}
	rulesPath, err := writeRules(doc, render.RulesPath(filepath.Dir(path), info.Name), logger)
	if err != nil {
		return err
	}
	fmt.Fprintf(out, "Wrote rules to %s\n", rulesPath)
	return nil
}

// writeRules renders, validates and writes the rules document for doc.
func writeRules(doc render.Document, path string, logger *slog.Logger) (string, error) {
	content, err := render.RenderRules(doc)
	if err != nil {
		return "", err
	}
	report := validate.Document(content, validate.Rules)
	logValidation(logger, "rules", report)
	if !report.Valid() {
		return "", fmt.Errorf("rules document failed validation: %s", strings.Join(report.Errors, "; "))
	}
	if err := render.WriteRules(path, content); err != nil {
		return "", err
	}
	logger.Info("wrote rules document", "path", path)
	return path, nil
}

// packRefs joins flag-supplied packs with configured ones. Configured packs
// are ignored when packs are disabled.
func packRefs(cfg *config.Config, flagPacks []string) []string {
	refs := append([]string(nil), flagPacks...)
	if cfg.Packs.Enabled {
		refs = append(refs, cfg.Packs.Sources...)
	}
	return refs
}

func confirmOverwrite(path string) (bool, error) {
	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return true, nil
	}
	if err != nil {
		return false, fmt.Errorf("failed to read %s: %w", path, err)
	}
	return wizard.ConfirmRegeneration(path, render.Parse(string(data)).HasCustomContent())
}

func projectDisplayName(info *scanner.ProjectInfo) string {
	switch {
	case info.RawName != "":
		return info.RawName
	case info.Name != "":
		return info.Name
	case info.RootDir != "":
		return filepath.Base(info.RootDir)
	}
	return orchestrator.DefaultProjectName
}
