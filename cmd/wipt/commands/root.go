// Package commands implements the CLI commands for wipt.
package commands

import (
	"context"
	"fmt"
	"io"

	"github.com/spf13/cobra"
	"go.trai.ch/wipt/internal/adapters/detector"
	"go.trai.ch/wipt/internal/adapters/manifest"
	"go.trai.ch/wipt/internal/adapters/telemetry"
	"go.trai.ch/wipt/internal/build"
	"go.trai.ch/wipt/internal/core/domain"
	"go.trai.ch/wipt/internal/core/ports"
)

// CLI represents the command line interface for wipt.
type CLI struct {
	app     Application
	logger  ports.Logger
	rootCmd *cobra.Command

	logFormat     string
	trace         bool
	shutdownTrace func(context.Context) error
}

// Application represents the application logic interface.
type Application interface {
	Update(ctx context.Context) error
	Install(ctx context.Context, names []string, opts domain.InstallOptions) error
	Remove(ctx context.Context, names []string) error
	Upgrade(ctx context.Context, names []string, opts domain.InstallOptions) error
	Download(ctx context.Context, names []string, dir string) error
	Show(w io.Writer, names []string) error
	RepoCreate(path, maintainer, supportURL string) error
	RepoAddPackage(path string, info manifest.PackageInfo, makeStable bool) error
}

// jsonSwitcher is implemented by loggers that can switch to JSON output.
type jsonSwitcher interface {
	SetJSON(enable bool)
}

// New creates a new CLI instance with the given app and logger.
func New(a Application, log ports.Logger) *CLI {
	rootCmd := &cobra.Command{
		Use:           "wipt",
		Short:         "Install and maintain Windows Installer packages from repositories",
		SilenceUsage:  true,
		SilenceErrors: true,
		Version:       build.Version,
	}

	rootCmd.SetVersionTemplate(fmt.Sprintf(
		"{{.Name}} version {{.Version}} (commit: %s, date: %s)\n",
		build.Commit,
		build.Date,
	))
	rootCmd.InitDefaultVersionFlag()
	rootCmd.Flags().Lookup("version").Usage = "Print the application version"

	rootCmd.InitDefaultHelpFlag()
	rootCmd.Flags().Lookup("help").Usage = "Show help for command"

	c := &CLI{
		app:     a,
		logger:  log,
		rootCmd: rootCmd,
	}

	rootCmd.PersistentFlags().StringVar(&c.logFormat, "log-format", "auto", "Log format: auto, pretty, or json")
	rootCmd.PersistentFlags().BoolVar(&c.trace, "trace", false, "Log the duration of every repository operation")
	rootCmd.PersistentPreRun = func(_ *cobra.Command, _ []string) {
		c.configureLogging()
	}

	rootCmd.AddCommand(c.newUpdateCmd())
	rootCmd.AddCommand(c.newInstallCmd())
	rootCmd.AddCommand(c.newRemoveCmd())
	rootCmd.AddCommand(c.newUpgradeCmd())
	rootCmd.AddCommand(c.newShowCmd())
	rootCmd.AddCommand(c.newDownloadCmd())
	rootCmd.AddCommand(c.newRepoCmd())
	rootCmd.AddCommand(c.newVersionCmd())

	return c
}

// Execute runs the root command with the given context.
func (c *CLI) Execute(ctx context.Context) error {
	c.rootCmd.SetContext(ctx)
	err := c.rootCmd.Execute()

	if c.shutdownTrace != nil {
		_ = c.shutdownTrace(context.WithoutCancel(ctx))
		c.shutdownTrace = nil
	}
	return err
}

// SetArgs sets the arguments for the root command. Used for testing.
func (c *CLI) SetArgs(args []string) {
	c.rootCmd.SetArgs(args)
}

// SetOutput sets the output and error streams for the root command. Used for testing.
func (c *CLI) SetOutput(out, err io.Writer) {
	c.rootCmd.SetOut(out)
	c.rootCmd.SetErr(err)
}

func (c *CLI) configureLogging() {
	format := detector.ResolveLogFormat(detector.DetectLogFormat(), c.logFormat)
	if s, ok := c.logger.(jsonSwitcher); ok {
		s.SetJSON(format == detector.FormatJSON)
	}

	if c.trace && c.shutdownTrace == nil {
		c.shutdownTrace = telemetry.EnableLogging(c.logger)
	}
}

// installOptions reads the flags shared by install and upgrade.
func installOptions(cmd *cobra.Command) domain.InstallOptions {
	ignoreTransforms, _ := cmd.Flags().GetBool("ignore-transforms")
	ignorePatches, _ := cmd.Flags().GetBool("ignore-patches")
	perUser, _ := cmd.Flags().GetBool("per-user")
	targetDir, _ := cmd.Flags().GetString("target-dir")

	return domain.InstallOptions{
		IgnoreTransforms: ignoreTransforms,
		IgnorePatches:    ignorePatches,
		PerUser:          perUser,
		TargetDir:        targetDir,
	}
}

func addInstallFlags(cmd *cobra.Command) {
	cmd.Flags().Bool("ignore-transforms", false, "Do not apply transforms")
	cmd.Flags().Bool("ignore-patches", false, "Do not apply patches")
	cmd.Flags().BoolP("per-user", "u", false, "Install for the current user only")
	cmd.Flags().StringP("target-dir", "d", "", "Install into this directory")
}
