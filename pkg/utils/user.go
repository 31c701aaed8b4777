package utils

import (
	"os"
	"os/user"
)

// GetUser returns the user that invoked the program. When running
// under sudo, this is the original user, not root.
func GetUser() (*user.User, error) {
	if name := os.Getenv("SUDO_USER"); name != "" && IsRootUser() {
		if u, err := user.Lookup(name); err == nil {
			return u, nil
		}
	}
	return user.Current()
}

func IsRootUser() bool {
	return os.Getuid() == 0
}
