package job

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/spf13/afero"
)

// Candidates returns the paths a binary is looked up at, in order.
func Candidates(repository string, name string, debug bool) []string {
	if filepath.IsAbs(name) {
		return []string{name}
	}

	profile := "release"
	if debug {
		profile = "debug"
	}

	return []string{
		filepath.Join(repository, "bin", name),
		filepath.Join(repository, "target", profile, "examples", name),
		filepath.Join(repository, "target", profile, name),
	}
}

// ResolveBinary returns the first candidate path that is a regular file.
func ResolveBinary(fs afero.Fs, repository string, name string, debug bool) (string, error) {
	if name == "" {
		return "", fmt.Errorf("binary name is empty")
	}

	candidates := Candidates(repository, name, debug)
	for _, path := range candidates {
		info, err := fs.Stat(path)
		if err != nil || info.IsDir() {
			continue
		}
		return path, nil
	}

	return "", fmt.Errorf("binary %s not found, looked in: %s", name, strings.Join(candidates, ", "))
}
