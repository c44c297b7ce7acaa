package execs

import (
	"errors"
	"fmt"
	"slices"
	"strings"
)

var (
	// ErrCommandExecution is returned when command execution fails.
	ErrCommandExecution = errors.New("run")

	// ErrEmptyCommand is returned when a command is empty.
	ErrEmptyCommand = errors.New("empty command")
)

// EssentialEnv lists the caller's environment variables that are passed
// through to every command.
var EssentialEnv = []string{
	"PATH",
	"HOME",
	"USER",
	"LANG",
	"LC_ALL",
	"XDG_CONFIG_HOME",
	"XDG_DATA_HOME",
	"XDG_CACHE_HOME",
	"FONTCONFIG_FILE",
	"FONTCONFIG_PATH",
}

// Result represents the result of a command execution.
type Result struct {
	Stdout string
	Stderr string
}

// Lines returns the non-empty lines of stdout.
func (r *Result) Lines() []string {
	var out []string
	for line := range strings.Lines(r.Stdout) {
		line = strings.TrimRight(line, "\r\n")
		if line != "" {
			out = append(out, line)
		}
	}

	return out
}

// Command describes an external program invocation.
type Command struct {
	// Command is the program to execute.
	Command string `json:"command" jsonschema:"title=Command,pattern=^\\S+$"`
	// Args contains the command line arguments.
	Args []string `json:"args,omitempty" jsonschema:"title=Arguments" yaml:"args,flow,omitempty"`
	// Env contains additional environment variables in KEY=VALUE form.
	Env []string `json:"env,omitempty" jsonschema:"title=Environment Variables"`
}

// Environ builds the command environment from the caller's environment
// (usually [os.Environ]). Only [EssentialEnv] variables are inherited, and
// [Command.Env] entries take precedence. The result is sorted.
func (c Command) Environ(base []string) []string {
	env := map[string]string{}

	for _, kv := range base {
		k, v, ok := strings.Cut(kv, "=")
		if ok && slices.Contains(EssentialEnv, k) {
			env[k] = v
		}
	}

	for _, kv := range c.Env {
		k, v, ok := strings.Cut(kv, "=")
		if ok {
			env[k] = v
		}
	}

	out := make([]string, 0, len(env))
	for k, v := range env {
		out = append(out, fmt.Sprintf("%s=%s", k, v))
	}

	slices.Sort(out)

	return out
}

func (c Command) String() string {
	return strings.TrimSpace(c.Command + " " + strings.Join(c.Args, " "))
}
