package cli

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/andywolf/rulesgen/internal/config"
)

var initCmd = &cobra.Command{
	Use:   "init [dir]",
	Short: "Initialize project configuration",
	Long: `Initialize rulesgen configuration for a project.

This creates a .rulesgen.yaml file with the default settings that you can customize.

Example:
  rulesgen init
  rulesgen init ./myapp --force`,
	Args: cobra.MaximumNArgs(1),
	RunE: initProject,
}

func init() {
	rootCmd.AddCommand(initCmd)

	initCmd.Flags().Bool("force", false, "Overwrite existing config")
}

const configHeader = `# rulesgen configuration
# Skill sources are consulted in preference_order; earlier sources win
# when two provide a skill with the same name.

`

func initProject(cmd *cobra.Command, args []string) error {
	dir := "."
	if len(args) > 0 {
		dir = args[0]
	}
	force, _ := cmd.Flags().GetBool("force")

	configPath, err := writeDefaultConfig(dir, force)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Created %s\n\n", configPath)
	fmt.Fprintln(out, "Next steps:")
	fmt.Fprintln(out, "  1. Adjust skill_sources.preference_order to rank your sources")
	fmt.Fprintln(out, "  2. Point skill_sources.awesome.path at a community skills checkout")
	fmt.Fprintln(out, "  3. Run 'rulesgen generate' to write the skills document")
	return nil
}

// writeDefaultConfig writes the default configuration to dir and returns
// the file path.
func writeDefaultConfig(dir string, force bool) (string, error) {
	configPath := filepath.Join(dir, ConfigFileName)
	if _, err := os.Stat(configPath); err == nil && !force {
		return "", fmt.Errorf("config file already exists at %s (use --force to overwrite)", configPath)
	}

	data, err := yaml.Marshal(config.Default())
	if err != nil {
		return "", fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", fmt.Errorf("failed to create directory: %w", err)
	}
	if err := os.WriteFile(configPath, append([]byte(configHeader), data...), 0644); err != nil {
		return "", fmt.Errorf("failed to write config: %w", err)
	}
	return configPath, nil
}
