package main

import (
	"bufio"
	"fmt"
	"io"
	"os"
)

var commandNames = []string{"run", "eval", "check", "cfg", "build", "repl", "help"}

func showUsage() {
	fmt.Fprintf(os.Stderr, `sateko - an interpreter and LLVM front end for the eight-symbol tape language

Usage:
    sateko <command> [arguments]

Commands:
    run <file>      Execute a program
    eval <code>     Execute inline code
    check <file>    Parse a program and report bracket errors
    cfg <file>      Print the basic-block graph of a program
    build <file>    Lower a program to LLVM IR
    repl            Start an interactive session
    help            Show this help message

Examples:
    sateko run examples/hello.b
    sateko run -t 100 -d hello.b < input.txt
    sateko build -o hello.ll -cc clang hello.b
    sateko eval '++++++++[>++++++++<-]>+.'

Use "sateko <command> -h" for more information about a command.
`)
}

// execute parses src and runs it with the configured backend. Output is
// buffered and flushed before every read and at the end.
func execute(src string, cfg Config, in io.Reader, out, trace io.Writer) error {
	prog, err := Parse(src)
	if err != nil {
		return err
	}

	w := bufio.NewWriter(out)
	switch cfg.Backend {
	case BackendCFG:
		g := Lower(prog, cfg.TapeLength)
		err = NewMachine(g, in, w).Run(g)
	default:
		ip := NewInterpreter(in, w)
		ip.Trace = NewTraceWriter(trace, cfg.Verbosity)
		err = ip.Exec(prog, cfg.TapeLength)
	}

	if flushErr := w.Flush(); err == nil && flushErr != nil {
		err = fmt.Errorf("flushing output: %w", flushErr)
	}
	return err
}

func main() {
	if len(os.Args) < 2 {
		showUsage()
		os.Exit(2)
	}

	command := os.Args[1]
	args := os.Args[2:]

	var code int
	switch command {
	case "run":
		code = runCommand(args)
	case "eval":
		code = evalCommand(args)
	case "check":
		code = checkCommand(args)
	case "cfg":
		code = cfgCommand(args)
	case "build":
		code = buildCommand(args)
	case "repl":
		code = replCommand(args)
	case "help", "-h", "--help":
		showUsage()
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n", command)
		if m := closestMatch(command, commandNames); m != "" {
			fmt.Fprintf(os.Stderr, "Did you mean %q?\n", m)
		}
		fmt.Fprintln(os.Stderr)
		showUsage()
		code = 2
	}
	os.Exit(code)
}
