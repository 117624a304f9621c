// Provides default locations for extraction output and scratch repositories.
//
// Scratch paths follow XDG conventions where available and fall back to the
// system temp directory. Output paths are derived from the bundle filename
// so that extracting "App.flatpak" lands in "App-flatpak" by default.
package paths
