package main

import (
	"os"

	"github.com/sirupsen/logrus"

	"github.com/flatkit/flatpak-extract/internal"
	"github.com/flatkit/flatpak-extract/internal/cli"
)

// The entry point for flatpak-extract.
//
// Initializes logging from build-time linker flags, logs startup
// information, and executes the root command. If any error occurs during
// execution, it exits with a non-zero code.
func main() {
	logrus.SetOutput(os.Stderr)
	logrus.SetLevel(logLevel())

	logrus.Debugf("build %s", internal.VersionString())
	logrus.Debugf("%s is running, pid %d, cwd %s, args %v",
		internal.Name, os.Getpid(), cwd(), os.Args)

	if err := cli.Execute(); err != nil {
		logrus.Error(err.Error())
		os.Exit(1)
	}
}

// Returns the log level derived from build-time linker flags.
//
// The level is reconfigured again after flag parsing via cli.Execute.
func logLevel() logrus.Level {
	if internal.IsDebug() {
		return logrus.DebugLevel
	}
	if internal.IsQuiet() {
		return logrus.WarnLevel
	}
	return logrus.InfoLevel
}

// Returns the current working directory or "(unknown)".
func cwd() string {
	cwd, err := os.Getwd()
	if err != nil {
		return "(unknown)"
	}
	return cwd
}
