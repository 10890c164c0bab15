package main

import (
	"fmt"
	"strings"
)

// Names of the I/O primitives in emitted LLVM IR.
const (
	llvmReadFunc  = "sateko_read"
	llvmWriteFunc = "sateko_write"
)

// LLVMOptions controls EmitLLVM.
type LLVMOptions struct {
	ModuleName string
	// Runtime defines the I/O primitives on top of libc getchar/putchar
	// instead of leaving them as external declarations.
	Runtime bool
}

type llvmEmitter struct {
	out   strings.Builder
	g     *Graph
	temps int
}

func (e *llvmEmitter) line(format string, args ...any) {
	fmt.Fprintf(&e.out, format, args...)
	e.out.WriteByte('\n')
}

func (e *llvmEmitter) temp() string {
	e.temps++
	return fmt.Sprintf("%%t%d", e.temps)
}

func (e *llvmEmitter) tapeType() string {
	return fmt.Sprintf("[%d x i8]", e.g.TapeLen)
}

// cellAddr emits the address computation for tape[ptr] and returns the
// temporary holding it.
func (e *llvmEmitter) cellAddr() string {
	p := e.temp()
	e.line("  %s = load i64, ptr %%ptr", p)
	addr := e.temp()
	e.line("  %s = getelementptr %s, ptr @tape, i64 0, i64 %s", addr, e.tapeType(), p)
	return addr
}

func (e *llvmEmitter) instr(in Instr) {
	switch in.Op {
	case OpPtrAdd:
		p := e.temp()
		e.line("  %s = load i64, ptr %%ptr", p)
		q := e.temp()
		e.line("  %s = add i64 %s, %d", q, p, in.Imm)
		e.line("  store i64 %s, ptr %%ptr", q)
	case OpLoad:
		addr := e.cellAddr()
		e.line("  %%%s = load i8, ptr %s", in.Dst, addr)
	case OpAdd:
		e.line("  %%%s = add i8 %%%s, %d", in.Dst, in.Src, in.Imm)
	case OpStore:
		addr := e.cellAddr()
		e.line("  store i8 %%%s, ptr %s", in.Src, addr)
	case OpCall:
		fn := llvmReadFunc
		if in.Callee == CallWrite {
			fn = llvmWriteFunc
		}
		e.line("  %%%s = call i8 @%s(i8 %%%s)", in.Dst, fn, in.Src)
	case OpNonZero:
		e.line("  %%%s = icmp ne i8 %%%s, 0", in.Dst, in.Src)
	default:
		panic(fmt.Sprintf("unknown op %d", in.Op))
	}
}

func (e *llvmEmitter) term(t Terminator) {
	switch t.Kind {
	case TermJump:
		e.line("  br label %%%s", e.g.Blocks[t.Then].Name)
	case TermBranch:
		e.line("  br i1 %%%s, label %%%s, label %%%s", t.Cond, e.g.Blocks[t.Then].Name, e.g.Blocks[t.Else].Name)
	case TermReturn:
		e.line("  ret i32 0")
	default:
		panic("unterminated block")
	}
}

func (e *llvmEmitter) runtime() {
	e.line("declare i32 @getchar()")
	e.line("declare i32 @putchar(i32)")
	e.line("")
	e.line("define i8 @%s(i8 %%cur) {", llvmReadFunc)
	e.line("  %%c = call i32 @getchar()")
	e.line("  %%eof = icmp slt i32 %%c, 0")
	e.line("  %%b = trunc i32 %%c to i8")
	e.line("  %%r = select i1 %%eof, i8 %%cur, i8 %%b")
	e.line("  ret i8 %%r")
	e.line("}")
	e.line("")
	e.line("define i8 @%s(i8 %%v) {", llvmWriteFunc)
	e.line("  %%c = zext i8 %%v to i32")
	e.line("  %%r = call i32 @putchar(i32 %%c)")
	e.line("  ret i8 %%v")
	e.line("}")
}

// EmitLLVM renders g as textual LLVM IR with a single @main function.
// The entry block is emitted first and holds the pointer alloca; the
// return block returns 0 from main.
func EmitLLVM(g *Graph, opts LLVMOptions) string {
	e := &llvmEmitter{g: g}
	if opts.ModuleName != "" {
		e.line("; ModuleID = '%s'", opts.ModuleName)
		e.line("source_filename = %q", opts.ModuleName)
		e.line("")
	}
	e.line("@tape = internal global %s zeroinitializer", e.tapeType())
	e.line("")
	if opts.Runtime {
		e.runtime()
	} else {
		e.line("declare i8 @%s(i8)", llvmReadFunc)
		e.line("declare i8 @%s(i8)", llvmWriteFunc)
	}
	e.line("")

	order := make([]*Block, 0, len(g.Blocks))
	order = append(order, g.Block(g.Entry))
	for _, blk := range g.Blocks {
		if blk.ID != g.Entry {
			order = append(order, blk)
		}
	}

	e.line("define i32 @main() {")
	for i, blk := range order {
		if i > 0 {
			e.line("")
		}
		e.line("%s:", blk.Name)
		if blk.ID == g.Entry {
			e.line("  %%ptr = alloca i64")
			e.line("  store i64 0, ptr %%ptr")
		}
		for _, in := range blk.Instrs {
			e.instr(in)
		}
		e.term(blk.Term)
	}
	e.line("}")
	return e.out.String()
}
