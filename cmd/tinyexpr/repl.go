package main

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/peterh/liner"

	"github.com/zephyrtronium/tinyexpr"
)

const (
	historyFile = ".tinyexpr_history"
	prompt      = "> "
)

// repl reads expressions from the terminal until EOF or :quit. Lines of the
// form name = expr assign variables. It reports whether every expression
// compiled.
func (d *driver) repl() bool {
	home, _ := os.UserHomeDir()
	histPath := filepath.Join(home, historyFile)

	ln := liner.NewLiner()
	defer ln.Close()
	ln.SetCtrlCAborts(true)
	ln.SetCompleter(d.complete)

	if f, err := os.Open(histPath); err == nil {
		_, _ = ln.ReadHistory(f)
		_ = f.Close()
	}
	defer func() {
		if f, err := os.Create(histPath); err == nil {
			_, _ = ln.WriteHistory(f)
			_ = f.Close()
		}
	}()

	ok := true
	for {
		line, err := ln.Prompt(prompt)
		if errors.Is(err, io.EOF) || errors.Is(err, liner.ErrPromptAborted) {
			fmt.Fprintln(d.out)
			return ok
		}
		if err != nil {
			d.log.Errorw("reading input", "error", err)
			return false
		}
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		ln.AppendHistory(line)
		if quit := d.command(line, &ok); quit {
			return ok
		}
	}
}

// command handles one line of interactive input. It reports whether the
// session should end.
func (d *driver) command(line string, ok *bool) bool {
	switch line {
	case ":quit", ":q":
		return true
	case ":vars":
		names := append([]string(nil), d.scope.names...)
		sort.Strings(names)
		for _, name := range names {
			v, _ := d.scope.get(name)
			fmt.Fprintf(d.out, "%s = "+d.verb, name, v)
		}
		return false
	case ":help":
		fmt.Fprintln(d.out, "enter an expression, name = expression, :vars, or :quit")
		fmt.Fprintln(d.out, "functions:", strings.Join(tinyexpr.Builtins(), " "))
		return false
	}
	if strings.HasPrefix(line, ":") {
		fmt.Fprintln(d.errw, "unknown command. Type :help for help.")
		return false
	}
	if name, src, found := strings.Cut(line, "="); found && isIdent(strings.TrimSpace(name)) {
		name = strings.TrimSpace(name)
		if err := d.scope.define(name, strings.TrimSpace(src), d.opts); err != nil {
			fmt.Fprintf(d.errw, "setting %s: %v\n", name, err)
			*ok = false
			return false
		}
		v, _ := d.scope.get(name)
		fmt.Fprintf(d.out, d.verb, v)
		return false
	}
	*ok = d.eval(line) && *ok
	return false
}

// complete suggests variable and builtin names for the identifier at the end
// of line.
func (d *driver) complete(line string) []string {
	i := len(line)
	for i > 0 && isWordByte(line[i-1]) {
		i--
	}
	prefix, word := line[:i], line[i:]
	if word == "" {
		return nil
	}
	var r []string
	for _, name := range append(append([]string(nil), d.scope.names...), tinyexpr.Builtins()...) {
		if strings.HasPrefix(name, word) {
			r = append(r, prefix+name)
		}
	}
	return r
}
