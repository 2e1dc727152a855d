package cli

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"github.com/andywolf/rulesgen/internal/config"
	"github.com/andywolf/rulesgen/internal/scanner"
	"github.com/andywolf/rulesgen/internal/skill"
	"github.com/andywolf/rulesgen/internal/sources"
)

var skillsCmd = &cobra.Command{
	Use:   "skills",
	Short: "Manage skills",
	Long:  `List the skills every enabled source provides, or save a new learned skill.`,
}

var skillsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List skills from every enabled source",
	Long: `List every skill available from the enabled skill sources, in source
preference order.

Example:
  rulesgen skills list`,
	Args: cobra.NoArgs,
	RunE: runSkillsList,
}

var skillsCreateCmd = &cobra.Command{
	Use:   "create <name>",
	Short: "Save a new learned skill",
	Long: `Create a skill in the learned skills library. The name is lowercased and
reduced to letters, digits and hyphens.

Example:
  rulesgen skills create "Payment Flows" --description "Stripe checkout conventions"
  rulesgen skills create shop-api --from-readme ./README.md`,
	Args: cobra.ExactArgs(1),
	RunE: runSkillsCreate,
}

func init() {
	rootCmd.AddCommand(skillsCmd)
	skillsCmd.AddCommand(skillsListCmd)
	skillsCmd.AddCommand(skillsCreateCmd)

	skillsCreateCmd.Flags().String("from-readme", "", "Derive description, triggers and use cases from a README")
	skillsCreateCmd.Flags().String("category", skill.DefaultCategory, "Skill category")
	skillsCreateCmd.Flags().String("description", "", "Skill description")
	skillsCreateCmd.Flags().Bool("force", false, "Overwrite an existing learned skill")
}

var (
	sourceStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("241"))

	nameStyle = lipgloss.NewStyle().
			Bold(true)
)

func runSkillsList(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	logger := newLogger(cmd.ErrOrStderr(), cfg.Generation.Verbose)

	o, err := newOrchestrator(cfg, logger)
	if err != nil {
		return err
	}
	writeSkillList(cmd.OutOrStdout(), o.ListAll())
	return nil
}

func writeSkillList(w io.Writer, skills []skill.Skill) {
	if len(skills) == 0 {
		fmt.Fprintln(w, "No skills available from the enabled sources.")
		return
	}

	fmt.Fprintln(w, titleStyle.Render(fmt.Sprintf("%d skills", len(skills))))
	for _, s := range skills {
		fmt.Fprintf(w, "  %s %s %s\n",
			nameStyle.Render(s.Name),
			sourceStyle.Render("["+s.Source+"/"+s.Category+"]"),
			truncateLine(s.Description, 70))
	}
}

// createOptions are the inputs of skills create.
type createOptions struct {
	name        string
	readme      string
	category    string
	description string
	force       bool
}

func runSkillsCreate(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	logger := newLogger(cmd.ErrOrStderr(), cfg.Generation.Verbose)

	opts := createOptions{name: args[0]}
	opts.readme, _ = cmd.Flags().GetString("from-readme")
	opts.category, _ = cmd.Flags().GetString("category")
	opts.description, _ = cmd.Flags().GetString("description")
	opts.force, _ = cmd.Flags().GetBool("force")

	path, err := createSkill(cfg, opts, logger)
	if err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Saved learned skill to %s\n", path)
	return nil
}

// createSkill builds a learned skill from opts and saves it. It returns the
// record path.
func createSkill(cfg *config.Config, opts createOptions, logger *slog.Logger) (string, error) {
	name, err := skill.SanitizeName(opts.name)
	if err != nil {
		return "", fmt.Errorf("%w: %q", err, opts.name)
	}

	learned, err := sources.LearnedFromConfig(cfg.SkillSources, logger)
	if err != nil {
		return "", err
	}
	if learned.Exists(name) && !opts.force {
		return "", fmt.Errorf("learned skill %q already exists in %s (use --force to overwrite)", name, learned.Dir())
	}

	s := skill.Skill{
		Name:     name,
		Category: opts.category,
	}
	if opts.readme != "" {
		readme, err := scanner.ParseReadme(opts.readme)
		if err != nil {
			return "", err
		}
		s.Description = readme.Description
		s.Triggers = readme.TechStack
		s.WhenToUse = readme.Features
	}
	if opts.description != "" {
		s.Description = opts.description
	}
	if s.Description == "" {
		s.Description = "Project knowledge for " + name
	}
	if s.Category == "" {
		s.Category = skill.DefaultCategory
	}

	path, err := learned.SaveSkill(s)
	if errors.Is(err, sources.ErrAutoSaveDisabled) {
		return "", fmt.Errorf("%w (set skill_sources.learned.auto_save to true)", err)
	}
	return path, err
}

func truncateLine(s string, limit int) string {
	s = strings.Join(strings.Fields(s), " ")
	r := []rune(s)
	if len(r) <= limit {
		return s
	}
	return string(r[:limit-3]) + "..."
}
