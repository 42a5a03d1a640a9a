// Package basedir resolves the two [XDG Base Directory Specification] variables the MIME
// database loader needs to find a system's installed mime/ trees: $XDG_DATA_HOME and
// $XDG_DATA_DIRS.
//
// [XDG Base Directory Specification]: https://specifications.freedesktop.org/basedir-spec/0.8/
package basedir

import (
	"os"
	"path/filepath"
	"strings"
)

var (
	// DataHome is the single, highest-precedence directory a database load should consult
	// first. It is defined by $XDG_DATA_HOME and defaults to $HOME/.local/share.
	DataHome string

	// DataDirs is the preference-ordered list of directories a database load should consult
	// after DataHome. It is defined by $XDG_DATA_DIRS and defaults to
	// ["/usr/local/share/", "/usr/share/"].
	DataDirs []string
)

func init() {
	Reinit()
}

// Reinit recomputes DataHome and DataDirs from the current environment. Call it after changing
// $XDG_DATA_HOME or $XDG_DATA_DIRS in the current process; package initialization calls it once
// automatically.
func Reinit() {
	home := os.Getenv("HOME")
	if home == "" {
		// $HOME must always be set in a POSIX environment.
		panic("$HOME environment variable not set")
	}

	DataHome = singleVar("XDG_DATA_HOME", filepath.Join(home, ".local/share"))
	DataDirs = listVar("XDG_DATA_DIRS", []string{"/usr/local/share/", "/usr/share/"})
}

func singleVar(envName string, defaultValue string) string {
	envValue := os.Getenv(envName)
	if envValue == "" || !filepath.IsAbs(envValue) {
		return defaultValue
	}

	return envValue
}

func listVar(envName string, defaultValue []string) []string {
	envValue := os.Getenv(envName)
	if envValue == "" {
		return defaultValue
	}

	result := make([]string, 0)
	for _, path := range strings.Split(envValue, ":") {
		if path == "" || !filepath.IsAbs(path) {
			continue
		}

		result = append(result, path)
	}

	if len(result) == 0 {
		return defaultValue
	}

	return result
}
