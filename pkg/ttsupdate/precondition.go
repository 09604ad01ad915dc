package ttsupdate

import (
	"fmt"
	"os"
	"strings"
)

// DefaultProjectEntries mark the root of the website checkout.
var DefaultProjectEntries = []string{"index.html", "css", "main.js", "data"}

// CheckProjectRoot makes sure root holds every expected top-level entry.
func CheckProjectRoot(root string, expected []string) error {
	dirEntries, err := os.ReadDir(root)
	if err != nil {
		return fmt.Errorf("%w: %s", ErrWrongProjectRoot, err)
	}

	present := make(map[string]bool, len(dirEntries))
	for _, entry := range dirEntries {
		present[entry.Name()] = true
	}

	var missing []string
	for _, name := range expected {
		if !present[name] {
			missing = append(missing, name)
		}
	}
	if len(missing) > 0 {
		return fmt.Errorf("%w (%s is missing %s)", ErrWrongProjectRoot, root, strings.Join(missing, ", "))
	}
	return nil
}
