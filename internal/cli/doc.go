// Parses flags and configures logging for flatpak-extract.
//
// The tool accepts the following flags:
//
//	-q, --quiet     Suppress informational output.
//	-v, --verbose   Enable verbose output.
//	-d, --debug     Enable debug output.
//	    --outdir    Extraction destination.
//	    --tmpdir    Scratch location for the OSTree repository.
//	    --version   Show version information.
//
// Flags override build-time defaults set via linker flags. After parsing,
// the global logger is reconfigured to reflect the final level before the
// extraction starts. The command exits 0 on success and 1 on any failure.
package cli
