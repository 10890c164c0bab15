package main

import (
	"flag"
	"fmt"
	"strconv"
)

// Backend selects how a program is executed.
type Backend string

const (
	BackendInterp Backend = "interp" // tree interpreter
	BackendCFG    Backend = "cfg"    // lowered graph on the reference Machine
)

// Config holds the settings shared by the subcommands.
type Config struct {
	TapeLength int
	Verbosity  int // interpreter trace level, see TraceWriter
	Verbose    bool
	Backend    Backend
}

// DefaultConfig returns the settings used when no flags are given.
func DefaultConfig() Config {
	return Config{
		TapeLength: DefaultTapeLength,
		Backend:    BackendInterp,
	}
}

// countFlag is a boolean-style flag that counts its occurrences, so "-d -d"
// gives 2.
type countFlag int

func (c *countFlag) String() string {
	if c == nil {
		return "0"
	}
	return strconv.Itoa(int(*c))
}

func (c *countFlag) Set(s string) error {
	if s == "true" {
		*c++
		return nil
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return fmt.Errorf("invalid count %q", s)
	}
	*c = countFlag(n)
	return nil
}

func (c *countFlag) IsBoolFlag() bool { return true }

type backendFlag Backend

func (b *backendFlag) String() string {
	if b == nil {
		return ""
	}
	return string(*b)
}

func (b *backendFlag) Set(s string) error {
	switch Backend(s) {
	case BackendInterp, BackendCFG:
		*b = backendFlag(s)
		return nil
	default:
		return fmt.Errorf("unknown backend %q (want %q or %q)", s, BackendInterp, BackendCFG)
	}
}

// registerTapeFlags adds -t/-tape-length to fs.
func (c *Config) registerTapeFlags(fs *flag.FlagSet) {
	fs.IntVar(&c.TapeLength, "t", c.TapeLength, "number of cells on tape")
	fs.IntVar(&c.TapeLength, "tape-length", c.TapeLength, "number of cells on tape")
}

// registerExecFlags adds the flags used by commands that execute programs.
func (c *Config) registerExecFlags(fs *flag.FlagSet) {
	c.registerTapeFlags(fs)
	fs.Var((*countFlag)(&c.Verbosity), "d", "enable debug trace on stderr (repeat for more detail)")
	fs.Var((*backendFlag)(&c.Backend), "backend", "execution backend: interp or cfg")
}

// Validate reports settings that cannot be used.
func (c Config) Validate() error {
	if c.TapeLength < 1 {
		return fmt.Errorf("tape length must be at least 1, got %d", c.TapeLength)
	}
	return nil
}
