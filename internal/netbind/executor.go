package netbind

import (
	"fmt"
	"os/exec"
)

// CommandExecutor abstracts executing shell commands.
type CommandExecutor interface {
	RunCommand(name string, arg ...string) (string, error)
}

// DefaultCommandExecutor is the default RealCommandExecutor instance.
var DefaultCommandExecutor CommandExecutor = &RealCommandExecutor{}

// RealCommandExecutor is a concrete implementation of CommandExecutor using os/exec.
type RealCommandExecutor struct{}

// RunCommand runs a command and returns its combined output.
func (r *RealCommandExecutor) RunCommand(name string, arg ...string) (string, error) {
	cmd := exec.Command(name, arg...)
	output, err := cmd.CombinedOutput()
	if err != nil {
		return "", fmt.Errorf("command %s %v failed: %w, output: %s", name, arg, err, string(output))
	}
	return string(output), nil
}
