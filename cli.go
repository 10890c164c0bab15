package main

import (
	"errors"
	"flag"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"sort"
	"strings"

	"github.com/lithammer/fuzzysearch/fuzzy"
)

// parseOneArg parses args into fs and returns its single positional
// argument. ok is false if the command should exit with status 2.
func parseOneArg(fs *flag.FlagSet, args []string, what string) (arg string, ok bool) {
	if err := fs.Parse(args); err != nil {
		return "", false
	}
	if fs.NArg() != 1 {
		fmt.Fprintf(os.Stderr, "Error: expected exactly one %s argument\n", what)
		fs.Usage()
		return "", false
	}
	return fs.Arg(0), true
}

func newFlagSet(name, usage, summary string) *flag.FlagSet {
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: sateko %s\n", usage)
		fmt.Fprintf(os.Stderr, "%s\n\n", summary)
		fmt.Fprintf(os.Stderr, "Flags:\n")
		fs.PrintDefaults()
	}
	return fs
}

// reportError prints err the way the CLI shows program errors and returns
// the exit status.
func reportError(err error) int {
	var syntaxErr *SyntaxError
	var runtimeErr *RuntimeError
	switch {
	case errors.As(err, &syntaxErr):
		fmt.Fprintf(os.Stderr, "Parse failed: %v\n", syntaxErr)
	case errors.As(err, &runtimeErr):
		fmt.Fprintf(os.Stderr, "Execution failed: %v\n", runtimeErr)
		if runtimeErr.Err != nil {
			fmt.Fprintf(os.Stderr, "  caused by: %v\n", runtimeErr.Err)
		}
	default:
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
	}
	return 1
}

// closestMatch returns the candidate that best fuzzy-matches target, or ""
// if none does.
func closestMatch(target string, candidates []string) string {
	if target == "" {
		return ""
	}
	ranks := fuzzy.RankFindFold(target, candidates)
	if len(ranks) == 0 {
		return ""
	}
	sort.Sort(ranks)
	return ranks[0].Target
}

func readSource(filename string) (string, error) {
	sourceBytes, err := os.ReadFile(filename)
	if err != nil {
		return "", fmt.Errorf("reading file %s: %w", filename, err)
	}
	return string(sourceBytes), nil
}

func runCommand(args []string) int {
	cfg := DefaultConfig()
	fs := newFlagSet("run", "run [-t cells] [-d] [-backend interp|cfg] [-v] <file>", "Execute a program")
	cfg.registerExecFlags(fs)
	fs.BoolVar(&cfg.Verbose, "v", false, "Show verbose details")

	filename, ok := parseOneArg(fs, args, "file")
	if !ok {
		return 2
	}
	if err := cfg.Validate(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 2
	}

	src, err := readSource(filename)
	if err != nil {
		return reportError(err)
	}
	if cfg.Verbose {
		fmt.Fprintf(os.Stderr, "Running %s (%d cells, %s backend)...\n", filename, cfg.TapeLength, cfg.Backend)
	}

	if err := execute(src, cfg, os.Stdin, os.Stdout, os.Stderr); err != nil {
		return reportError(err)
	}
	return 0
}

func evalCommand(args []string) int {
	cfg := DefaultConfig()
	fs := newFlagSet("eval", "eval [-t cells] [-d] [-backend interp|cfg] <code>", "Execute inline code")
	cfg.registerExecFlags(fs)

	code, ok := parseOneArg(fs, args, "code")
	if !ok {
		return 2
	}
	if err := cfg.Validate(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 2
	}

	if err := execute(code, cfg, os.Stdin, os.Stdout, os.Stderr); err != nil {
		return reportError(err)
	}
	return 0
}

func checkCommand(args []string) int {
	fs := newFlagSet("check", "check [-v] <file>", "Parse a program and report bracket errors")
	verbose := fs.Bool("v", false, "Print the syntax tree")

	filename, ok := parseOneArg(fs, args, "file")
	if !ok {
		return 2
	}

	src, err := readSource(filename)
	if err != nil {
		return reportError(err)
	}
	prog, err := Parse(src)
	if err != nil {
		return reportError(err)
	}

	fmt.Printf("%s: no errors found\n", filename)
	if *verbose {
		fmt.Printf("AST: %s\n", ToSExpr(prog))
	}
	return 0
}

func cfgCommand(args []string) int {
	cfg := DefaultConfig()
	fs := newFlagSet("cfg", "cfg [-t cells] <file>", "Print the basic-block graph of a program")
	cfg.registerTapeFlags(fs)

	filename, ok := parseOneArg(fs, args, "file")
	if !ok {
		return 2
	}
	if err := cfg.Validate(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 2
	}

	src, err := readSource(filename)
	if err != nil {
		return reportError(err)
	}
	prog, err := Parse(src)
	if err != nil {
		return reportError(err)
	}

	fmt.Println(Lower(prog, cfg.TapeLength).SExpr())
	return 0
}

func buildCommand(args []string) int {
	cfg := DefaultConfig()
	fs := newFlagSet("build", "build [-o output.ll] [-t cells] [-cc compiler] [-no-runtime] [-v] <file>", "Lower a program to LLVM IR")
	cfg.registerTapeFlags(fs)
	output := fs.String("o", "", "Output file path (default: <filename>.ll)")
	compiler := fs.String("cc", "", "Compiler to run on the generated IR, e.g. clang")
	noRuntime := fs.Bool("no-runtime", false, "Declare the I/O primitives instead of defining them over libc")
	fs.BoolVar(&cfg.Verbose, "v", false, "Show verbose compilation details")

	filename, ok := parseOneArg(fs, args, "file")
	if !ok {
		return 2
	}
	if err := cfg.Validate(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 2
	}

	outputFile := *output
	if outputFile == "" {
		outputFile = strings.TrimSuffix(filename, filepath.Ext(filename)) + ".ll"
	}

	src, err := readSource(filename)
	if err != nil {
		return reportError(err)
	}
	prog, err := Parse(src)
	if err != nil {
		return reportError(err)
	}

	g := Lower(prog, cfg.TapeLength)
	if err := g.Validate(); err != nil {
		// Lowering a parsed program always yields a valid graph.
		panic(err)
	}
	if cfg.Verbose {
		fmt.Printf("Lowered %s to %d blocks\n", filename, len(g.Blocks))
	}

	ir := EmitLLVM(g, LLVMOptions{ModuleName: filename, Runtime: !*noRuntime})
	if err := os.WriteFile(outputFile, []byte(ir), 0644); err != nil {
		return reportError(fmt.Errorf("writing %s: %w", outputFile, err))
	}
	fmt.Printf("Generated %s (%d bytes)\n", outputFile, len(ir))

	if *compiler == "" {
		return 0
	}
	binary := strings.TrimSuffix(outputFile, ".ll")
	if err := runCompiler(*compiler, outputFile, binary, cfg.Verbose); err != nil {
		return reportError(err)
	}
	fmt.Printf("Generated %s\n", binary)
	return 0
}

// runCompiler invokes an external compiler on an LLVM IR file.
func runCompiler(compiler, input, output string, verbose bool) error {
	cmd := exec.Command(compiler, input, "-o", output)
	if verbose {
		fmt.Printf("Running %s\n", strings.Join(cmd.Args, " "))
	}
	out, err := cmd.CombinedOutput()
	if err != nil {
		return fmt.Errorf("%s failed: %v\nOutput: %s", compiler, err, out)
	}
	return nil
}
