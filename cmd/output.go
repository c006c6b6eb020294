package cmd

import (
	"fmt"
	"io"
	"os"
)

// ── Unified output helpers ────────────────────────────────────────────────────
// All commands use these functions to ensure consistent icon usage and
// indentation throughout roster's CLI output. Logs go to stderr through slog;
// these lines are the user-facing report.
//
// Icon semantics:
//   ✓  success / new hire
//   ✗  error / failure          (written to stderr)
//   ⚠  warning / needs review
//   ○  skipped / not applicable
//   -  resigned / missing
//   ~  neutral info / title change

// stdout and stderr are swapped by tests.
var (
	stdout io.Writer = os.Stdout
	stderr io.Writer = os.Stderr
)

// printSection prints a top-level section header, e.g. "=== Resignations ===".
func printSection(title string) {
	fmt.Fprintf(stdout, "\n=== %s ===\n", title)
}

// printBullet prints a grouped-section bullet, e.g. "● Professor:".
func printBullet(title string) {
	fmt.Fprintf(stdout, "\n● %s\n", title)
}

func printLine(icon, name, msg string) {
	if name == "" {
		fmt.Fprintf(stdout, "  %s  %s\n", icon, msg)
	} else {
		fmt.Fprintf(stdout, "  %s  [%s] %s\n", icon, name, msg)
	}
}

// printOK prints a success line.
//   name = "" → "  ✓  msg"
//   name set  → "  ✓  [name] msg"
func printOK(name, msg string) { printLine("✓", name, msg) }

// printErr prints an error line to stderr.
func printErr(name, msg string) {
	if name == "" {
		fmt.Fprintf(stderr, "  ✗  %s\n", msg)
	} else {
		fmt.Fprintf(stderr, "  ✗  [%s] %s\n", name, msg)
	}
}

func printWarn(name, msg string) { printLine("⚠", name, msg) }

func printSkip(name, msg string) { printLine("○", name, msg) }

func printMiss(name, msg string) { printLine("-", name, msg) }

func printInfo(name, msg string) { printLine("~", name, msg) }
