package cmd

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/unreal-companion/unreal-companion/internal/config"
	"github.com/unreal-companion/unreal-companion/internal/paths"
	"github.com/unreal-companion/unreal-companion/internal/seed"
)

var initProject bool

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Set up the global companion directory",
	Long: `Create the global companion directory with a commented default config
and the shipped workflow and agent definitions. Existing files are never
overwritten. With --project, also create the per-project definition
directories under the project root.`,
	RunE: runInit,
}

func init() {
	initCmd.Flags().BoolVar(&initProject, "project-dirs", false, "also create project-scope definition directories")
	rootCmd.AddCommand(initCmd)
}

func runInit(cmd *cobra.Command, args []string) error {
	configPath := filepath.Join(globalDir, "config.yaml")
	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		if err := config.WriteDefaultConfig(configPath); err != nil {
			return err
		}
		fmt.Println(progressStyle.Render("Created " + configPath))
	} else {
		fmt.Println(mutedStyle.Render("Config already present at " + configPath))
	}

	if err := seed.Materialize(globalDir); err != nil {
		return fmt.Errorf("installing default definitions: %w", err)
	}
	fmt.Println(progressStyle.Render("Default definitions installed under " + globalDir))

	// Custom-scope directories live alongside the defaults.
	for _, dir := range []string{
		filepath.Join(globalDir, "workflows", "custom"),
		filepath.Join(globalDir, "agents", "custom"),
	} {
		if err := os.MkdirAll(dir, 0750); err != nil {
			return fmt.Errorf("creating %s: %w", dir, err)
		}
	}

	if initProject {
		projectDir := paths.ResolveProjectDir(projectRoot)
		for _, dir := range []string{
			filepath.Join(projectDir, "workflows"),
			filepath.Join(projectDir, "agents"),
		} {
			if err := os.MkdirAll(dir, 0750); err != nil {
				return fmt.Errorf("creating %s: %w", dir, err)
			}
		}
		fmt.Println(progressStyle.Render("Project directories created under " + projectDir))
	}
	return nil
}
