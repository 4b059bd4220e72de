package main

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/zephyrtronium/tinyexpr"
)

// loadVars loads variable definitions from a file, auto-detecting format by
// extension. Supported extensions: .yaml, .yml, .json
func loadVars(path string) (map[string]any, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read vars file: %w", err)
	}

	ext := strings.ToLower(filepath.Ext(path))
	switch ext {
	case ".yaml", ".yml":
		return varsYAML(data)
	case ".json":
		return varsJSON(data)
	default:
		return nil, fmt.Errorf("unsupported vars file extension: %q", ext)
	}
}

func varsYAML(data []byte) (map[string]any, error) {
	var m map[string]any
	if err := yaml.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("parse yaml: %w", err)
	}
	return m, nil
}

func varsJSON(data []byte) (map[string]any, error) {
	var m map[string]any
	if err := json.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("parse json: %w", err)
	}
	return m, nil
}

// parseGiven splits a name=value definition.
func parseGiven(s string) (name, value string, err error) {
	name, value, ok := strings.Cut(s, "=")
	if !ok {
		return "", "", fmt.Errorf(`variable definitions must be "name=value", not %q`, s)
	}
	name, value = strings.TrimSpace(name), strings.TrimSpace(value)
	if !isIdent(name) {
		return "", "", fmt.Errorf("invalid variable name %q", name)
	}
	return name, value, nil
}

// isIdent reports whether s is a name the compiler can resolve.
func isIdent(s string) bool {
	if s == "" || !isLetter(s[0]) {
		return false
	}
	for i := 1; i < len(s); i++ {
		if !isWordByte(s[i]) {
			return false
		}
	}
	return true
}

func isLetter(c byte) bool {
	return 'a' <= c && c <= 'z' || 'A' <= c && c <= 'Z'
}

func isWordByte(c byte) bool {
	return isLetter(c) || '0' <= c && c <= '9' || c == '_'
}

// scope is a set of named variables for the driver's expressions.
type scope struct {
	// names lists variables in order of definition.
	names []string
	vals  map[string]*float64
}

func newScope() *scope {
	return &scope{vals: make(map[string]*float64)}
}

// set assigns a variable, creating it if needed. Existing expressions see
// the new value.
func (s *scope) set(name string, v float64) {
	if p, ok := s.vals[name]; ok {
		*p = v
		return
	}
	p := new(float64)
	*p = v
	s.vals[name] = p
	s.names = append(s.names, name)
}

// get returns the value of a variable.
func (s *scope) get(name string) (float64, bool) {
	p, ok := s.vals[name]
	if !ok {
		return 0, false
	}
	return *p, true
}

// bindings creates bindings for every variable.
func (s *scope) bindings() []tinyexpr.Binding {
	b := make([]tinyexpr.Binding, len(s.names))
	for i, name := range s.names {
		b[i] = tinyexpr.Var(name, s.vals[name])
	}
	return b
}

// define evaluates src with the current variables and assigns the result to
// name.
func (s *scope) define(name, src string, opts []tinyexpr.CompileOption) error {
	if !isIdent(name) {
		return fmt.Errorf("invalid variable name %q", name)
	}
	e, err := tinyexpr.Compile(src, s.bindings(), opts...)
	if err != nil {
		return err
	}
	defer e.Free()
	s.set(name, e.Eval())
	return nil
}

// load assigns variables from a decoded file. Numbers are used as they are;
// strings are expressions over the variables defined before them in name
// order.
func (s *scope) load(vars map[string]any, opts []tinyexpr.CompileOption) error {
	names := make([]string, 0, len(vars))
	for k := range vars {
		names = append(names, k)
	}
	sort.Strings(names)
	for _, name := range names {
		if !isIdent(name) {
			return fmt.Errorf("invalid variable name %q", name)
		}
		switch v := vars[name].(type) {
		case float64:
			s.set(name, v)
		case int:
			s.set(name, float64(v))
		case int64:
			s.set(name, float64(v))
		case uint64:
			s.set(name, float64(v))
		case string:
			if err := s.define(name, v, opts); err != nil {
				return fmt.Errorf("variable %s: %w", name, err)
			}
		default:
			return fmt.Errorf("variable %s: unsupported value %v of type %T", name, v, v)
		}
	}
	return nil
}
