package main

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"

	"github.com/spf13/cobra"

	"github.com/phobologic/phpdocgen/internal/config"
)

const configHeader = `# phpdocgen configuration.
#
# Every key can be overridden with a PHPDOCGEN_* environment variable, e.g.
# PHPDOCGEN_ROOTS=src,lib or PHPDOCGEN_AUTOLOAD_REQUIRED=true. A .env file
# next to this one is loaded first.
`

func initCmd(stdout, stderr io.Writer) *cobra.Command {
	var (
		dryRun bool
		force  bool
	)

	cmd := &cobra.Command{
		Use:   "init [path]",
		Short: "Write a default " + config.FileName,
		Long: `Write a phpdocgen configuration file holding the default settings.

path defaults to ./` + config.FileName + `. An existing file is left alone
unless --force is given.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			content, err := generateConfig()
			if err != nil {
				return err
			}

			if dryRun {
				_, _ = fmt.Fprint(stdout, content)
				return nil
			}

			path := config.FileName
			if len(args) > 0 {
				path = args[0]
			}

			if _, err := os.Stat(path); err == nil && !force {
				return fmt.Errorf("%s already exists (use --force to overwrite)", path)
			} else if err != nil && !errors.Is(err, fs.ErrNotExist) {
				return fmt.Errorf("checking %s: %w", path, err)
			}

			if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
				return fmt.Errorf("writing %s: %w", path, err)
			}
			_, _ = fmt.Fprintf(stderr, "wrote %s\n", path)
			return nil
		},
	}

	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "print the file instead of writing it")
	cmd.Flags().BoolVar(&force, "force", false, "overwrite an existing file")
	return cmd
}

// generateConfig renders the default configuration with an explanatory
// header.
func generateConfig() (string, error) {
	data, err := config.Default().Marshal()
	if err != nil {
		return "", err
	}
	return configHeader + "\n" + string(data), nil
}
