// Command ether is the interpreter's CLI: it runs .eth source files,
// starts an interactive REPL (peterh/liner), and can persist a REPL
// session's history to SQLite.
package main

import (
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/peterh/liner"

	"github.com/etherlang/ether/bytecode"
	"github.com/etherlang/ether/compile"
	"github.com/etherlang/ether/diag"
	"github.com/etherlang/ether/image"
	"github.com/etherlang/ether/interp"
	"github.com/etherlang/ether/lexer"
	"github.com/etherlang/ether/manifest"
	"github.com/etherlang/ether/netrpc"
	"github.com/etherlang/ether/object"
	"github.com/etherlang/ether/parser"
	"github.com/etherlang/ether/stdlib"
	"github.com/etherlang/ether/store"
)

const (
	promptMain = "eth> "
	promptCont = "...> "
	histFile   = ".ether_history"
)

func main() {
	interactive := flag.Bool("i", false, "start the REPL after loading any files")
	imagePath := flag.String("image", "", "load a saved image before running")
	saveImagePath := flag.String("save-image", "", "save an image on exit")
	historyDB := flag.String("history", "", "persist REPL history to a SQLite database")
	grpcEnabled := flag.Bool("grpc", false, "expose grpcConnect on Ether")
	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: ether [options] [file...]\n\n")
		flag.PrintDefaults()
	}
	flag.Parse()

	env := object.NewEnvironment()
	vm := interp.New(env, diag.NewWriter(os.Stderr))
	stdlib.Bootstrap(vm)
	if *grpcEnabled {
		netrpc.Register(vm, env.Ether.(*object.Dynamic))
	}

	if *imagePath != "" {
		snap, err := image.Load(*imagePath)
		if err != nil {
			fmt.Fprintf(os.Stderr, "ether: %v\n", err)
			os.Exit(1)
		}
		image.Restore(env, snap)
	}

	var db *store.Store
	if *historyDB != "" {
		var err error
		db, err = store.Open(*historyDB)
		if err != nil {
			fmt.Fprintf(os.Stderr, "ether: %v\n", err)
			os.Exit(1)
		}
		defer db.Close()
	}

	paths := flag.Args()
	if len(paths) == 0 {
		if m, err := manifest.FindAndLoad("."); err == nil && m != nil {
			paths = m.SourceDirPaths()
			if entry := m.EntryPath(); entry != "" {
				paths = append(paths, entry)
			}
		}
	}

	for _, path := range paths {
		if err := runFile(vm, path); err != nil {
			fmt.Fprintf(os.Stderr, "ether: %v\n", err)
			os.Exit(1)
		}
	}

	if *saveImagePath != "" {
		defer func() {
			if err := image.Save(*saveImagePath, image.Capture(env)); err != nil {
				fmt.Fprintf(os.Stderr, "ether: %v\n", err)
			}
		}()
	}

	if *interactive || len(paths) == 0 {
		runREPL(vm, db)
	}
}

func runFile(vm *interp.Interpreter, path string) error {
	src, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("reading %s: %w", path, err)
	}
	code, err := compileSource(vm.Env, string(src))
	if err != nil {
		return fmt.Errorf("%s: %w", path, err)
	}
	vm.Execute(code)
	return nil
}

func compileSource(env *object.Environment, src string) (*bytecode.CodeBlock, error) {
	sink := diag.NewCollector(nil)
	l := lexer.New(src)
	p := parser.New(l, sink)
	prog := p.ParseProgram()
	if len(sink.Messages) > 0 {
		return nil, fmt.Errorf("%s", strings.Join(sink.Messages, "\n"))
	}
	code := compile.New(env).CompileProgram(prog)
	if len(sink.Messages) > 0 {
		return nil, fmt.Errorf("%s", strings.Join(sink.Messages, "\n"))
	}
	return code, nil
}

func runREPL(vm *interp.Interpreter, db *store.Store) {
	fmt.Println("Ether REPL. Type an expression and press Enter; Ctrl+D to exit.")

	ln := liner.NewLiner()
	defer ln.Close()
	ln.SetCtrlCAborts(true)

	home, _ := os.UserHomeDir()
	histPath := filepath.Join(home, histFile)
	if f, err := os.Open(histPath); err == nil {
		ln.ReadHistory(f)
		f.Close()
	}

	sessionName := "repl"
	for {
		line, ok := readMultiline(ln)
		if !ok {
			fmt.Println()
			break
		}
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		if line == "exit" || line == "quit" {
			break
		}

		sink := diag.NewCollector(diag.NewWriter(os.Stderr))
		l := lexer.New(line)
		p := parser.New(l, sink)
		prog := p.ParseProgram()
		var result string
		if len(sink.Messages) == 0 && prog != nil {
			code := compile.New(vm.Env).CompileProgram(prog)
			if len(sink.Messages) == 0 {
				v := vm.Execute(code)
				result = vm.Describe(v)
				fmt.Println(result)
			}
		}
		if len(sink.Messages) > 0 {
			result = strings.Join(sink.Messages, "; ")
		}

		ln.AppendHistory(line)
		if db != nil {
			db.AppendHistory(store.HistoryEntry{Session: sessionName, Source: line, Result: result, RanAt: time.Now()})
		}
	}

	if f, err := os.Create(histPath); err == nil {
		ln.WriteHistory(f)
		f.Close()
	}
}

// readMultiline accumulates lines until parens/braces/brackets balance,
// so a multi-line block literal can be entered without a continuation
// marker per line.
func readMultiline(ln *liner.State) (string, bool) {
	var b strings.Builder
	depth := 0
	for {
		prompt := promptMain
		if b.Len() > 0 {
			prompt = promptCont
		}
		line, err := ln.Prompt(prompt)
		if err != nil {
			return "", false
		}
		if b.Len() > 0 {
			b.WriteByte('\n')
		}
		b.WriteString(line)
		depth += strings.Count(line, "{") + strings.Count(line, "(") + strings.Count(line, "[")
		depth -= strings.Count(line, "}") + strings.Count(line, ")") + strings.Count(line, "]")
		if depth <= 0 {
			return b.String(), true
		}
	}
}
