// phpdocgen extracts API documentation from PHP sources and reports it in
// TOON format.
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/phobologic/phpdocgen/internal/build"
	"github.com/phobologic/phpdocgen/internal/composer"
	"github.com/phobologic/phpdocgen/internal/config"
	"github.com/phobologic/phpdocgen/internal/discover"
	"github.com/phobologic/phpdocgen/internal/ranking"
	"github.com/phobologic/phpdocgen/internal/toon"
	"github.com/phobologic/phpdocgen/internal/watch"
)

var version = "dev"

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	code := run(ctx, os.Args[1:], os.Stdout, os.Stderr)
	stop()
	os.Exit(code)
}

// exitError carries a non-zero exit code for a command whose output has
// already been written.
type exitError struct {
	code int
}

func (e *exitError) Error() string { return fmt.Sprintf("exit status %d", e.code) }

func run(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	cmd := newRootCmd(stdout, stderr)
	cmd.SetArgs(args)
	if err := cmd.ExecuteContext(ctx); err != nil {
		var ee *exitError
		if errors.As(err, &ee) {
			return ee.code
		}
		_, _ = fmt.Fprintf(stderr, "error: %v\n", err)
		return 1
	}
	return 0
}

type app struct {
	configPath string
	logLevel   string
	stdout     io.Writer
	stderr     io.Writer
}

func newRootCmd(stdout, stderr io.Writer) *cobra.Command {
	a := &app{stdout: stdout, stderr: stderr}

	cmd := &cobra.Command{
		Use:   "phpdocgen",
		Short: "Extract API documentation from PHP sources",
		Long: `phpdocgen scans PHP source roots, resolves inherited names through
composer manifests and built-in stubs, normalizes docblocks and prints a
TOON index of classes, functions and their hierarchy.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	cmd.SetOut(stdout)
	cmd.SetErr(stderr)
	cmd.PersistentFlags().StringVarP(&a.configPath, "config", "c", "", "config file path (default ./"+config.FileName+")")
	cmd.PersistentFlags().StringVar(&a.logLevel, "log-level", "", "log level (debug, info, warn, error)")

	cmd.AddCommand(
		a.buildCmd(),
		a.errorsCmd(),
		a.watchCmd(),
		initCmd(stdout, stderr),
		&cobra.Command{
			Use:   "version",
			Short: "Print version information",
			Run: func(cmd *cobra.Command, _ []string) {
				_, _ = fmt.Fprintf(cmd.OutOrStdout(), "phpdocgen %s\n", version)
			},
		},
	)
	return cmd
}

// setup loads the config, applies flag overrides and returns a logger at
// the configured level.
func (a *app) setup(roots []string) (*config.Config, *slog.Logger, error) {
	boot := slog.New(slog.NewTextHandler(a.stderr, &slog.HandlerOptions{Level: slog.LevelWarn}))
	cfg, err := config.Load(a.configPath, boot)
	if err != nil {
		return nil, nil, err
	}
	if a.logLevel != "" {
		cfg.LogLevel = a.logLevel
	}
	if len(roots) > 0 {
		cfg.Roots = roots
	}
	if err := cfg.Validate(); err != nil {
		return nil, nil, err
	}
	logger := slog.New(slog.NewTextHandler(a.stderr, &slog.HandlerOptions{Level: cfg.Level()}))
	return cfg, logger, nil
}

func (a *app) buildCmd() *cobra.Command {
	var (
		top       int
		symbol    string
		file      string
		members   bool
		cachePath string
		project   string
	)

	cmd := &cobra.Command{
		Use:   "build [roots...]",
		Short: "Print the TOON documentation index",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, logger, err := a.setup(args)
			if err != nil {
				return err
			}

			filtered := symbol != "" || file != "" || top > 0 || members
			if cachePath != "" && !filtered && cacheIsFresh(cachePath, cfg) {
				if data, err := os.ReadFile(cachePath); err == nil {
					logger.Debug("using cached index", "path", cachePath)
					_, _ = cmd.OutOrStdout().Write(data)
					return nil
				}
			}

			b := build.New(cfg, logger)
			defer b.Close()
			res, err := b.Run(cmd.Context())
			if err != nil {
				return err
			}

			v := res.Catalog.View()
			if symbol != "" {
				v = ranking.FilterBySymbol(v, symbol, members)
			}
			if file != "" {
				v = ranking.FilterByFile(v, file)
			}
			if top > 0 {
				v = ranking.SelectClasses(v, top)
			}

			if project == "" {
				project = projectName(cfg.Roots)
			}
			output := toon.Encode(v, toon.Options{Project: project, Roots: cfg.Roots, Members: members})

			if cachePath != "" && !filtered {
				if err := os.WriteFile(cachePath, []byte(output+"\n"), 0o644); err != nil {
					logger.Warn("writing cache", "path", cachePath, "error", err)
				}
			}
			_, _ = fmt.Fprintln(cmd.OutOrStdout(), output)
			return nil
		},
	}

	cmd.Flags().IntVarP(&top, "top", "n", 0, "keep only the N highest-ranked classes")
	cmd.Flags().StringVarP(&symbol, "symbol", "s", "", "keep classes and functions whose name contains this substring")
	cmd.Flags().StringVarP(&file, "file", "f", "", "keep declarations whose file path contains this substring")
	cmd.Flags().BoolVarP(&members, "members", "m", false, "include the members table")
	cmd.Flags().StringVar(&cachePath, "cache", "", "cache the unfiltered index in this file")
	cmd.Flags().StringVar(&project, "project", "", "project name in the header (default: base name of the first root)")
	return cmd
}

func (a *app) errorsCmd() *cobra.Command {
	var (
		strict bool
		entity string
	)

	cmd := &cobra.Command{
		Use:   "errors [roots...]",
		Short: "Normalize every docblock and print the error report",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, logger, err := a.setup(args)
			if err != nil {
				return err
			}
			b := build.New(cfg, logger)
			defer b.Close()
			res, err := b.Run(cmd.Context())
			if err != nil {
				return err
			}

			if entity != "" {
				if _, err := res.Catalog.Strict(entity); err != nil {
					return err
				}
				_, _ = fmt.Fprintf(cmd.OutOrStdout(), "%s: ok\n", entity)
				return nil
			}

			res.Catalog.Warm()
			records := res.Catalog.Errors()
			_, _ = fmt.Fprintln(cmd.OutOrStdout(), toon.EncodeErrors(records))
			if strict && len(records) > 0 {
				return &exitError{code: 2}
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&strict, "strict", false, "exit with status 2 when any docblock error is recorded")
	cmd.Flags().StringVar(&entity, "entity", "", "resolve one class and fail if its doc comment is not a usable docblock")
	return cmd
}

func (a *app) watchCmd() *cobra.Command {
	var output string

	cmd := &cobra.Command{
		Use:   "watch [roots...]",
		Short: "Rebuild the index whenever sources change",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, logger, err := a.setup(args)
			if err != nil {
				return err
			}
			opts, err := cfg.SourceOptions(logger)
			if err != nil {
				return err
			}

			b := build.New(cfg, logger)
			defer b.Close()

			emit := func(ctx context.Context) {
				res, err := b.Run(ctx)
				if err != nil {
					logger.Error("build failed", "error", err)
					return
				}
				res.Catalog.Warm()
				index := toon.Encode(res.Catalog.View(), toon.Options{Project: projectName(cfg.Roots), Roots: cfg.Roots})
				if output == "" {
					_, _ = fmt.Fprintln(cmd.OutOrStdout(), index)
				} else if err := os.WriteFile(output, []byte(index+"\n"), 0o644); err != nil {
					logger.Error("writing index", "path", output, "error", err)
				}
				logger.Info("index updated", "classes", len(res.Catalog.Classes()), "errors", b.Log().Len())
			}

			emit(cmd.Context())

			w, err := watch.New(watch.Config{
				Roots:    cfg.Roots,
				Filter:   opts.Discover,
				Debounce: cfg.Watch.Debounce,
				Logger:   logger,
			}, func(ctx context.Context, changed []string) {
				logger.Debug("rebuilding", "changed", len(changed))
				emit(ctx)
			})
			if err != nil {
				return err
			}
			return w.Run(cmd.Context())
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "", "write the index to this file instead of stdout")
	return cmd
}

func projectName(roots []string) string {
	if len(roots) == 0 {
		return ""
	}
	abs, err := filepath.Abs(roots[0])
	if err != nil {
		return filepath.Base(roots[0])
	}
	return filepath.Base(abs)
}

// cacheIsFresh reports whether the cache file is newer than every source
// file and composer manifest under the configured roots.
func cacheIsFresh(cachePath string, cfg *config.Config) bool {
	cacheInfo, err := os.Stat(cachePath)
	if err != nil {
		return false
	}
	cacheMtime := cacheInfo.ModTime()

	opts, err := cfg.SourceOptions(nil)
	if err != nil {
		return false
	}
	for _, root := range cfg.Roots {
		files, err := discover.Files(root, opts.Discover)
		if err != nil {
			return false
		}
		paths := []string{filepath.Join(root, composer.FileName)}
		for _, f := range files {
			paths = append(paths, f.AbsPath)
		}
		for _, p := range paths {
			fi, err := os.Stat(p)
			if err != nil {
				if p == paths[0] {
					continue
				}
				return false
			}
			if !fi.ModTime().Before(cacheMtime) {
				return false
			}
		}
	}
	return true
}
