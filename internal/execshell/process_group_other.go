//go:build !unix

package execshell

import "os/exec"

// configureProcessGroup keeps the default cancellation, which kills only the direct child.
// WaitDelay still bounds how long Run waits for inherited output pipes.
func configureProcessGroup(executable *exec.Cmd) {}
