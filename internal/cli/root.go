package cli

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/alecthomas/kong"
	"github.com/sirupsen/logrus"

	"github.com/flatkit/flatpak-extract/internal"
	"github.com/flatkit/flatpak-extract/internal/extract"
	"github.com/flatkit/flatpak-extract/internal/ostree"
	"github.com/flatkit/flatpak-extract/internal/paths"
)

// Grammar for the flatpak-extract command line.
type rootCmd struct {
	Quiet   bool             `short:"q" help:"Suppress informational output."`
	Verbose bool             `short:"v" help:"Enable verbose output."`
	Debug   bool             `short:"d" help:"Enable debug output."`
	OutDir  string           `name:"outdir" help:"Directory to write the content into. Defaults to <filename stem>-flatpak." placeholder:"OUTDIR"`
	TmpDir  string           `name:"tmpdir" help:"Temporary directory for the OSTree repository. Defaults to a unique location." placeholder:"TMPDIR"`
	Version kong.VersionFlag `help:"Show version information."`

	Filename string `arg:"" help:"Path to the input .flatpak file."`
}

// Represents the root command.
var RootCmd rootCmd

// Parses arguments, configures logging, and runs the extraction.
func Execute() error {

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	kongCtx := kong.Parse(&RootCmd,
		kong.Name(internal.Name),
		kong.Description("Extracts a .flatpak bundle into a plain directory tree.\n\n"+
			"Exits 0 on success and 1 on any validation or extraction failure."),
		kong.UsageOnError(),
		kong.Vars{
			"version": internal.VersionString(),
		},
		kong.BindTo(ctx, (*context.Context)(nil)),
	)

	configureLogger()

	return kongCtx.Run()
}

// Executes the extraction with resolved defaults.
//
// An omitted --outdir derives from the input filename; an omitted --tmpdir
// becomes a unique scratch location. The scratch repository handle owns the
// tmpdir path for the lifetime of this invocation.
func (c *rootCmd) Run(ctx context.Context) error {
	outdir := c.OutDir
	if outdir == "" {
		outdir = paths.OutputDir(c.Filename)
	}

	tmpdir := c.TmpDir
	if tmpdir == "" {
		tmpdir = paths.ScratchDir()
	}

	result, err := extract.Run(ctx, ostree.New(tmpdir), extract.Options{
		Bundle: c.Filename,
		OutDir: outdir,
	})
	if err != nil {
		return err
	}

	if result.Commit != "" {
		logrus.Debugf("extracted commit %s", result.Commit)
	}
	return nil
}

// Configures the global logger based on CLI flags.
//
// Flags override build-time defaults set via linker flags. The effective
// modes are stored back into the internal package so the rest of the tool
// sees one source of truth.
func configureLogger() {
	if RootCmd.Quiet {
		internal.SetQuiet(true)
	}
	if RootCmd.Debug {
		internal.SetDebug(true)
	}
	if RootCmd.Verbose {
		internal.SetVerbose(true)
	}

	logrus.SetFormatter(&logrus.TextFormatter{
		DisableColors:          !isatty(os.Stderr),
		DisableTimestamp:       true,
		DisableLevelTruncation: true,
	})

	switch {
	case internal.IsDebug():
		logrus.SetLevel(logrus.DebugLevel)
	case internal.IsQuiet():
		logrus.SetLevel(logrus.WarnLevel)
	default:
		logrus.SetLevel(logrus.InfoLevel)
	}
}

// Whether the given file is an interactive terminal.
func isatty(f *os.File) bool {
	info, err := f.Stat()
	if err != nil {
		return false
	}
	return (info.Mode() & os.ModeCharDevice) != 0
}
