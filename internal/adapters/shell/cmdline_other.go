//go:build !windows

package shell

import "os/exec"

func setCommandLine(*exec.Cmd, string, []string) {}
