package gowrap

import (
	"strings"
	"unicode"
)

// GoPackageToEtherGlobal converts a Go import path to the name a generated
// wrapper is bound under as an Ether global, e.g. "encoding/json" becomes
// "GoJson", "net/http" becomes "GoHttp".
func GoPackageToEtherGlobal(importPath string) string {
	parts := strings.Split(importPath, "/")
	last := parts[len(parts)-1]
	return "Go" + toPascal(last)
}

// GoNameToEtherSelector converts a Go function or method name and its
// parameter count to the selector a generated wrapper installs it under.
// Ether has no colon-chained keyword syntax; a call site instead groups
// every argument behind one NAME's parentheses, so any number of
// comma-separated arguments can ride behind a single word. A zero-arg Go
// function becomes a unary selector with no trailing space; anything else
// becomes one NAME with a trailing space, matching how every other
// keyword selector is built.
func GoNameToEtherSelector(name string, paramCount int) string {
	if len(name) == 0 {
		return name
	}
	sel := strings.ToLower(name[:1]) + name[1:]
	if paramCount == 0 {
		return sel
	}
	return sel + " "
}

// toPascal converts a hyphen- or underscore-separated string to PascalCase.
func toPascal(s string) string {
	if len(s) == 0 {
		return s
	}
	var b strings.Builder
	nextUpper := true
	for _, r := range s {
		if r == '-' || r == '_' {
			nextUpper = true
			continue
		}
		if nextUpper {
			b.WriteRune(unicode.ToUpper(r))
			nextUpper = false
		} else {
			b.WriteRune(r)
		}
	}
	return b.String()
}
