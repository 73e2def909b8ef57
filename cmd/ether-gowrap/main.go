// Command ether-gowrap introspects a Go package and writes a Go source
// file registering its wrappable exported functions as Ether primitives,
// for embedders who want to expose a Go package to Ether scripts without
// hand-writing the registration glue.
package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/etherlang/ether/gowrap"
)

func main() {
	importPath := flag.String("pkg", "", "import path of the Go package to introspect")
	out := flag.String("out", "", "output file for the generated glue (defaults to stdout)")
	flag.Parse()

	if *importPath == "" {
		fmt.Fprintln(os.Stderr, "ether-gowrap: -pkg is required")
		os.Exit(1)
	}

	model, err := gowrap.IntrospectPackage(*importPath, nil)
	if err != nil {
		fmt.Fprintf(os.Stderr, "ether-gowrap: %v\n", err)
		os.Exit(1)
	}

	src := gowrap.GenerateBootstrapGlue(model)

	if *out == "" {
		fmt.Print(src)
		return
	}
	if err := os.WriteFile(*out, []byte(src), 0644); err != nil {
		fmt.Fprintf(os.Stderr, "ether-gowrap: writing %s: %v\n", *out, err)
		os.Exit(1)
	}
}
