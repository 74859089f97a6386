package main

import (
	"flag"
	"fmt"
	"strconv"
	"strings"
)

// optionalFloat is a float flag that records whether it was set
type optionalFloat struct {
	value float64
	set   bool
}

func (f *optionalFloat) String() string {
	if !f.set {
		return ""
	}
	return strconv.FormatFloat(f.value, 'f', -1, 64)
}

func (f *optionalFloat) Set(s string) error {
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return fmt.Errorf("invalid number %q", s)
	}
	f.value, f.set = v, true
	return nil
}

func (f *optionalFloat) ptr() *float64 {
	if !f.set {
		return nil
	}
	v := f.value
	return &v
}

// parsePointer parses "x1,x2" or a single "x"
func parsePointer(s string) (float64, float64, error) {
	parts := strings.Split(s, ",")
	if len(parts) > 2 {
		return 0, 0, fmt.Errorf("pointer must be x or x1,x2, got %q", s)
	}

	var xs []float64
	for _, p := range parts {
		x, err := strconv.ParseFloat(strings.TrimSpace(p), 64)
		if err != nil {
			return 0, 0, fmt.Errorf("invalid pointer position %q", p)
		}
		xs = append(xs, x)
	}

	if len(xs) == 1 {
		return xs[0], xs[0], nil
	}
	return xs[0], xs[1], nil
}

// hasFlag reports whether args set the named flag
func hasFlag(args []string, name string) bool {
	for _, arg := range args {
		trimmed := strings.TrimLeft(arg, "-")
		if trimmed == arg {
			continue
		}
		if trimmed == name || strings.HasPrefix(trimmed, name+"=") {
			return true
		}
	}
	return false
}

func newFlagSet(name string) *flag.FlagSet {
	return flag.NewFlagSet(name, flag.ContinueOnError)
}

func requireAction(command string, args []string) (string, []string, error) {
	if len(args) == 0 {
		return "", nil, fmt.Errorf("%s needs an action: add, list, edit or rm", command)
	}
	return args[0], args[1:], nil
}
