package main

import (
	"context"
	"fmt"
	"io"
	"os"

	"go.uber.org/automaxprocs/maxprocs"
)

// Version is set at build time via ldflags.
var Version = "dev"

func main() {
	args := os.Args[1:]
	setMaxProcs(args, os.Stderr)

	ctx, stop := notifyContext(context.Background())
	code := run(ctx, args, DefaultEnv())
	stop()
	os.Exit(code)
}

// run dispatches to a command and returns the process exit code.
// A first argument that is not a known command is treated as convert input.
func run(ctx context.Context, args []string, env *Environment) int {
	if len(args) == 0 {
		printUsage(env.Stderr)
		return ExitUsage
	}

	switch args[0] {
	case "help", "-h", "--help":
		return runHelp(args[1:], env)
	case "version", "--version":
		fmt.Fprintf(env.Stdout, "mmd2pdf %s\n", Version)
		return ExitSuccess
	case "doctor":
		return runDoctorCmd(ctx, args[1:], env)
	case "completion":
		if err := runCompletion(args[1:], env); err != nil {
			printError(env.Stderr, err)
			return exitCodeFor(err)
		}
		return ExitSuccess
	case "convert":
		args = args[1:]
	}

	if err := runConvertCmd(ctx, args, env); err != nil {
		printError(env.Stderr, err)
		return exitCodeFor(err)
	}
	return ExitSuccess
}

// setMaxProcs configures GOMAXPROCS from the container CPU quota.
// The quota decides how many diagrams render at once by default.
func setMaxProcs(args []string, w io.Writer) {
	logf := func(string, ...interface{}) {}
	if hasVerboseFlag(args) {
		logf = func(format string, a ...interface{}) {
			fmt.Fprintf(w, format+"\n", a...)
		}
	}
	// Error ignored: maxprocs.Set only fails if GOMAXPROCS env is invalid,
	// in which case Go runtime defaults apply and the program continues safely.
	_, _ = maxprocs.Set(maxprocs.Logger(logf))
}

// hasVerboseFlag scans args for -v/--verbose before flags are parsed.
func hasVerboseFlag(args []string) bool {
	for _, arg := range args {
		if arg == "--" {
			return false
		}
		if arg == "-v" || arg == "--verbose" {
			return true
		}
	}
	return false
}
