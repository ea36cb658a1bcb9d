package util

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"text/tabwriter"
)

// ----------------------------
// ----- Type definitions -----
// ----------------------------

// Mode selects which compiler stage the CLI should stop after.
type Mode int

// Compiler modes. The CLI requires exactly one of these as its first argument.
const (
	ModeKoopa Mode = iota // -koopa: stop after IR emission.
	ModeRiscv             // -riscv: run the RISC-V backend.
	ModePerf              // -perf: same as ModeRiscv in this subset.
)

// Options holds every setting derived from the command line.
type Options struct {
	Mode    Mode   // Compiler mode.
	Src     string // Path to source file.
	Out     string // Path to output file.
	Threads int    // Worker thread count for the per-function fan-out.
	Verbose bool   // Trace visited IR values while generating assembly.
}

// ---------------------
// ----- Constants -----
// ---------------------

const maxThreads = 64 // Maximum threads allowed executing in parallel.
const appVersion = "sysyc compiler 1.0"

// ---------------------
// ----- functions -----
// ---------------------

// ParseArgs parses command line arguments of the form:
// <mode> <input> -o <output> [-t <threads>] [-vb]
func ParseArgs(args []string) (Options, error) {
	opt := Options{Threads: 1}
	if len(args) == 0 {
		return opt, fmt.Errorf("expected a mode flag, got no arguments")
	}

	switch args[0] {
	case "-h", "--h", "-help", "--help":
		printHelp()
		os.Exit(0)
	case "-v", "--v", "-version", "--version":
		fmt.Println(appVersion)
		os.Exit(0)
	case "-koopa":
		opt.Mode = ModeKoopa
	case "-riscv":
		opt.Mode = ModeRiscv
	case "-perf":
		opt.Mode = ModePerf
	default:
		return opt, fmt.Errorf("unexpected mode flag: %s", args[0])
	}

	rest := args[1:]
	if len(rest) == 0 || strings.HasPrefix(rest[0], "-") {
		return opt, fmt.Errorf("expected path to source file")
	}
	opt.Src = rest[0]
	rest = rest[1:]

	for i1 := 0; i1 < len(rest); i1++ {
		switch rest[i1] {
		case "-o":
			if i1+1 >= len(rest) {
				return opt, fmt.Errorf("got flag -o but no argument")
			}
			opt.Out = rest[i1+1]
			i1++
		case "-t":
			if i1+1 >= len(rest) {
				return opt, fmt.Errorf("got flag -t but no argument")
			}
			t, err := strconv.Atoi(rest[i1+1])
			if err != nil || t < 1 || t > maxThreads {
				return opt, fmt.Errorf("thread count must be integer in range [1, %d]", maxThreads)
			}
			opt.Threads = t
			i1++
		case "-vb":
			opt.Verbose = true
		default:
			return opt, fmt.Errorf("unexpected flag: %s", rest[i1])
		}
	}
	return opt, nil
}

// printHelp prints a helpful usage message to stdout.
func printHelp() {
	w := tabwriter.NewWriter(os.Stdout, 6, 1, 1, 0, 0)
	_, _ = fmt.Fprintln(w, "-koopa, -riscv, -perf\tCompiler mode; -koopa stops after IR emission.")
	_, _ = fmt.Fprintln(w, "-o\tPath and name of the output file.")
	_, _ = fmt.Fprintf(w, "-t\tNumber of worker threads for the per-function fan-out. Must be in range [1, %d].\n", maxThreads)
	_, _ = fmt.Fprintln(w, "-vb\tVerbose mode: trace visited IR values while generating assembly.")
	_, _ = fmt.Fprintln(w, "-h, -help\tPrints this help message and exits.")
	_, _ = fmt.Fprintln(w, "-v, -version\tPrints application version and exits.")
	_ = w.Flush()
}
