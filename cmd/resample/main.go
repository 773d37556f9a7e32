// Command resample warps and samples images with the resample kernels.
//
// Usage:
//
//	resample warp in.png out.png --rotate 30 --mode bicubic --supersample 2
//	resample sample in.png 10.25 3.5 --mode bilinear --dst 0,0,0,255
//	resample version [minimum]
//
// Settings are read from RESAMPLE_* environment variables, optionally
// from a .env file; flags override them.
package main

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/go-errors/errors"
	"github.com/spf13/cobra"

	"github.com/gogpu/resample"
	"github.com/gogpu/resample/internal/config"
)

func main() {
	os.Exit(execute(os.Args[1:], os.Stdout, os.Stderr))
}

// app holds the state shared by all sub-commands.
type app struct {
	debug    bool
	logLevel string
	envFile  string

	cfg config.Config
}

func execute(args []string, stdout, stderr io.Writer) int {
	a := &app{}
	root := a.rootCmd()
	root.SetArgs(args)
	root.SetOut(stdout)
	root.SetErr(stderr)

	if err := root.Execute(); err != nil {
		a.report(stderr, err)
		return 1
	}
	return 0
}

func (a *app) rootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:               filepath.Base(os.Args[0]),
		Short:             "resample warps and samples RGBA images",
		SilenceUsage:      true,
		SilenceErrors:     true,
		PersistentPreRunE: a.setup,
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
	}

	pf := root.PersistentFlags()
	pf.BoolVar(&a.debug, `debug`, false, `debug errors (print stack traces, log at debug level)`)
	pf.StringVar(&a.logLevel, `log-level`, ``, `log level: debug, info, warn, error (default from `+config.EnvLogLevel+`)`)
	pf.StringVar(&a.envFile, `env-file`, ``, `read settings from this file instead of `+config.DefaultEnvFile)

	root.AddCommand(a.warpCmd(), a.sampleCmd(), a.versionCmd())
	return root
}

// setup loads the configuration and installs the logger.
func (a *app) setup(cmd *cobra.Command, _ []string) error {
	var files []string
	if a.envFile != "" {
		files = append(files, a.envFile)
	}
	cfg, err := config.Load(files...)
	if err != nil {
		return errors.Wrap(err, 0)
	}
	a.cfg = cfg

	level := cfg.LogLevel
	if a.logLevel != "" {
		if err := level.UnmarshalText([]byte(a.logLevel)); err != nil {
			return errors.Errorf("invalid --log-level %q: %v", a.logLevel, err)
		}
	}
	if a.debug {
		level = slog.LevelDebug
	}
	resample.SetLogger(slog.New(slog.NewTextHandler(cmd.ErrOrStderr(), &slog.HandlerOptions{Level: level})))
	return nil
}

func (a *app) report(w io.Writer, err error) {
	if stackFramer, ok := err.(interface{ ErrorStack() string }); a.debug && ok {
		fmt.Fprintln(w, stackFramer.ErrorStack())
		return
	}
	fmt.Fprintln(w, "resample:", err)
}

// parseRGBA parses "r,g,b,a" with each component in 0..255.
func parseRGBA(s string) ([4]byte, error) {
	var c [4]byte
	parts := strings.Split(s, ",")
	if len(parts) != 4 {
		return c, errors.Errorf("color %q: want r,g,b,a", s)
	}
	for i, p := range parts {
		v, err := strconv.ParseUint(strings.TrimSpace(p), 10, 8)
		if err != nil {
			return c, errors.Errorf("color %q: component %d: %v", s, i, err)
		}
		c[i] = byte(v)
	}
	return c, nil
}

// parsePair parses "x,y".
func parsePair(s string) (float64, float64, error) {
	parts := strings.Split(s, ",")
	if len(parts) != 2 {
		return 0, 0, errors.Errorf("%q: want x,y", s)
	}
	x, err := strconv.ParseFloat(strings.TrimSpace(parts[0]), 64)
	if err != nil {
		return 0, 0, errors.Wrap(err, 0)
	}
	y, err := strconv.ParseFloat(strings.TrimSpace(parts[1]), 64)
	if err != nil {
		return 0, 0, errors.Wrap(err, 0)
	}
	return x, y, nil
}
