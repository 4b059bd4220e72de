package main

import (
	"bufio"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/zephyrtronium/tinyexpr"
)

func main() {
	var (
		inname, verb, varsname string
		with                   [][2]string
		right, natlog, tree    bool
		verbose, interactive   bool
	)
	addwith := func(s string) error {
		name, value, err := parseGiven(s)
		if err != nil {
			return err
		}
		with = append(with, [2]string{name, value})
		return nil
	}
	flag.StringVar(&inname, "in", "", "input file, one expression per line (default stdin if no args given)")
	flag.StringVar(&verb, "fmt", "%g", "result formatting string")
	flag.Func("given", "name=value variable definition, value may be an expression (any number of times)", addwith)
	flag.StringVar(&varsname, "vars", "", "YAML or JSON file of variable definitions")
	flag.BoolVar(&right, "right", false, "evaluate a^b^c as a^(b^c)")
	flag.BoolVar(&natlog, "natlog", false, "make log the natural logarithm")
	flag.BoolVar(&tree, "tree", false, "print compiled trees")
	flag.BoolVar(&verbose, "v", false, "log debug messages")
	flag.BoolVar(&interactive, "i", false, "read expressions interactively")
	flag.Parse()

	log := newLogger(verbose)
	defer log.Sync()

	d := driver{
		out:  os.Stdout,
		errw: os.Stderr,
		verb: verb + "\n",
		tree: tree,
		log:  log,
	}
	if right {
		d.opts = append(d.opts, tinyexpr.PowFromRight())
	}
	if natlog {
		d.opts = append(d.opts, tinyexpr.NaturalLog())
	}
	if verbose {
		d.opts = append(d.opts, tinyexpr.Logger(log.Desugar()))
	}

	d.scope = newScope()
	if varsname != "" {
		vars, err := loadVars(varsname)
		if err != nil {
			log.Fatalf("loading variables: %v", err)
		}
		if err := d.scope.load(vars, d.opts); err != nil {
			log.Fatalf("loading variables from %s: %v", varsname, err)
		}
	}
	for _, w := range with {
		if err := d.scope.define(w[0], w[1], d.opts); err != nil {
			log.Fatalf("setting %s: %v", w[0], err)
		}
	}
	log.Debugw("variables ready", "names", d.scope.names)

	ok := true
	if interactive {
		ok = d.repl()
	} else {
		for _, arg := range flag.Args() {
			ok = d.eval(arg) && ok
		}
		f, err := infile(inname, flag.NArg() == 0)
		if err != nil {
			log.Fatal(err)
		}
		if f != nil {
			r, err := d.lines(f)
			if err != nil {
				log.Fatalf("reading input: %v", err)
			}
			ok = r && ok
			f.Close()
		}
	}
	if !ok {
		log.Sync()
		os.Exit(1)
	}
}

// newLogger creates a development logger writing to stderr.
func newLogger(debug bool) *zap.SugaredLogger {
	cfg := zap.NewDevelopmentConfig()
	cfg.EncoderConfig.EncodeTime = zapcore.TimeEncoderOfLayout("04:05.000")
	log, err := cfg.Build()
	if err != nil {
		panic(err)
	}
	lvl := zapcore.InfoLevel
	if debug {
		lvl = zapcore.DebugLevel
	}
	log = log.WithOptions(zap.IncreaseLevel(lvl), zap.AddStacktrace(zapcore.FatalLevel))
	return log.Sugar()
}

// driver compiles and evaluates expressions against a scope of variables.
type driver struct {
	out, errw io.Writer
	verb      string
	opts      []tinyexpr.CompileOption
	scope     *scope
	tree      bool
	log       *zap.SugaredLogger
}

// eval compiles src, prints its value, and reports whether it compiled.
func (d *driver) eval(src string) bool {
	e, err := tinyexpr.Compile(src, d.scope.bindings(), d.opts...)
	if err != nil {
		fmt.Fprintf(d.errw, "%s\n%*s^\nerror at %v\n", src, caret(err), "", err)
		return false
	}
	defer e.Free()
	if d.tree {
		fmt.Fprintf(d.out, "%v\n", e)
		if err := e.Dump(d.out); err != nil {
			d.log.Errorw("writing tree", "error", err)
		}
	}
	r := e.Eval()
	d.log.Debugw("evaluated", "src", src, "vars", e.Vars(), "result", r)
	fmt.Fprintf(d.out, d.verb, r)
	return true
}

// lines evaluates each non-blank line of r as an expression. It reports
// whether every expression compiled.
func (d *driver) lines(r io.Reader) (bool, error) {
	ok := true
	sc := bufio.NewScanner(r)
	for sc.Scan() {
		src := strings.TrimSpace(sc.Text())
		if src == "" {
			continue
		}
		ok = d.eval(src) && ok
	}
	return ok, sc.Err()
}

// caret gives the column at which to point to an error under its source.
func caret(err error) int {
	p := tinyexpr.ErrorPos(err)
	if p < 1 {
		return 0
	}
	return p - 1
}

func infile(inname string, std bool) (io.ReadCloser, error) {
	switch {
	case inname != "" && inname != "-":
		f, err := os.Open(inname)
		if err != nil {
			return nil, fmt.Errorf("opening input: %w", err)
		}
		return f, nil
	case inname == "-", std:
		return io.NopCloser(os.Stdin), nil
	}
	return nil, nil
}
