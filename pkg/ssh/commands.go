package ssh

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// ScriptHeader starts every synced command script.
const ScriptHeader = "#!/bin/bash\n\n"

// Commands is an ordered list of hosts.
type Commands []Command

// Find returns the host with the given name.
func (cs Commands) Find(name string) (Command, bool) {
	for _, c := range cs {
		if c.Name == name {
			return c, true
		}
	}
	return Command{}, false
}

// Script renders all hosts' helper blocks as one bash script.
func (cs Commands) Script() string {
	var b strings.Builder
	b.WriteString(ScriptHeader)
	for _, c := range cs {
		b.WriteString(c.String())
		b.WriteString("\n\n")
	}
	return b.String()
}

// Sync writes Script to path, creating parent directories as needed.
func (cs Commands) Sync(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return fmt.Errorf("failed to create script directory: %w", err)
	}
	// #nosec G306 -- the script is meant to be executed by its owner
	if err := os.WriteFile(path, []byte(cs.Script()), 0700); err != nil {
		return fmt.Errorf("failed to write ssh commands: %w", err)
	}
	return nil
}
