//go:build windows

package shell

import (
	"os/exec"
	"syscall"
)

// setCommandLine passes the prebuilt command line so quoted property values reach the program unchanged.
func setCommandLine(cmd *exec.Cmd, name string, args []string) {
	cmd.SysProcAttr = &syscall.SysProcAttr{CmdLine: CommandLine(name, args)}
}
