package internal

import (
	"strconv"
	"sync/atomic"
)

var (
	quietMode   atomic.Bool // Whether quiet mode is enabled.
	debugMode   atomic.Bool // Whether debug logging is enabled.
	verboseMode atomic.Bool // Whether verbose listing output is enabled.
)

// Seeds the runtime modes from the linker-flag variables.
//
// rawQuiet, rawDebug, and rawVerbose may be baked in via ldflags at build
// time; unset or unparsable values leave the modes at their "false"
// defaults. CLI flags can flip the modes later through the setters.
func init() {
	if v, err := strconv.ParseBool(rawQuiet); err == nil {
		quietMode.Store(v)
	}
	if v, err := strconv.ParseBool(rawDebug); err == nil {
		debugMode.Store(v)
	}
	if v, err := strconv.ParseBool(rawVerbose); err == nil {
		verboseMode.Store(v)
	}
}

// Enables or disables quiet mode.
func SetQuiet(enabled bool) {
	quietMode.Store(enabled)
}

// Returns true if quiet mode is enabled.
func IsQuiet() bool {
	return quietMode.Load()
}

// Enables or disables debug mode.
func SetDebug(enabled bool) {
	debugMode.Store(enabled)
}

// Returns true if debug mode is enabled.
func IsDebug() bool {
	return debugMode.Load()
}

// Enables or disables verbose listing output.
func SetVerbose(enabled bool) {
	verboseMode.Store(enabled)
}

// Returns true if verbose listing output is enabled.
func IsVerbose() bool {
	return verboseMode.Load()
}
