package main

import (
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/vango-dev/progressive/internal/config"
	"github.com/vango-dev/progressive/internal/errors"
)

// Version information set at build time.
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

// cli holds state shared by all commands.
type cli struct {
	v       *viper.Viper
	cfgFile string
	verbose bool
	stdout  io.Writer
	stderr  io.Writer
}

func main() {
	if err := newRootCmd(os.Stdout, os.Stderr).Execute(); err != nil {
		if e, ok := err.(*errors.Error); ok {
			fmt.Fprint(os.Stderr, e.Format())
		} else {
			fmt.Fprintf(os.Stderr, "\033[31mError:\033[0m %s\n", err)
		}
		os.Exit(1)
	}
}

func newRootCmd(stdout, stderr io.Writer) *cobra.Command {
	c := &cli{v: config.NewViper(), stdout: stdout, stderr: stderr}

	rootCmd := &cobra.Command{
		Use:   "progressive",
		Short: "Progressive server-side markup renderer",
		Long: `progressive renders component trees to HTML, either into one
buffer or as a stream of chunks produced on demand.

Configuration is read from progressive.json, PROGRESSIVE_* environment
variables and command-line flags, in increasing order of precedence.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	rootCmd.SetOut(stdout)
	rootCmd.SetErr(stderr)

	rootCmd.PersistentFlags().StringVarP(&c.cfgFile, "config", "c", "", "Config file (default ./progressive.json)")
	rootCmd.PersistentFlags().BoolVarP(&c.verbose, "verbose", "v", false, "Log debug output")

	rootCmd.AddCommand(
		c.serveCmd(),
		c.renderCmd(),
		c.benchCmd(),
		c.versionCmd(),
	)
	return rootCmd
}

// load binds the given flags of cmd to config keys and loads the config.
func (c *cli) load(cmd *cobra.Command, bindings map[string]string) (*config.Config, error) {
	for key, name := range bindings {
		if err := c.v.BindPFlag(key, cmd.Flags().Lookup(name)); err != nil {
			return nil, err
		}
	}
	return config.Load(c.v, c.cfgFile)
}

func (c *cli) logger() *slog.Logger {
	level := slog.LevelInfo
	if c.verbose {
		level = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(c.stderr, &slog.HandlerOptions{Level: level}))
}

// success prints a success message.
func (c *cli) success(format string, args ...any) {
	fmt.Fprintf(c.stderr, "\033[32m✓\033[0m %s\n", fmt.Sprintf(format, args...))
}

// info prints an info message.
func (c *cli) info(format string, args ...any) {
	fmt.Fprintf(c.stderr, "  %s\n", fmt.Sprintf(format, args...))
}

// treeFlags registers the demo tree parameters on fs.
func treeFlags(fs *pflag.FlagSet, depth, breadth, count *int) {
	fs.IntVar(depth, "depth", 4, "Tree depth")
	fs.IntVar(breadth, "breadth", 4, "Children per level")
	fs.IntVar(count, "count", 100, "Children of the wide tree")
}
