// Package execshell runs git as a subprocess.
//
// ShellExecutor wraps a CommandRunner with debug logging and lifecycle
// notifications, OSCommandRunner is the os/exec backed runner, and
// CommandMessageFormatter turns git invocations into readable progress lines.
package execshell
