// Command ether-lsp starts the Ether language server on stdio, for
// editors that speak the Language Server Protocol.
package main

import (
	"fmt"
	"os"

	"github.com/etherlang/ether/diag"
	"github.com/etherlang/ether/interp"
	"github.com/etherlang/ether/langserver"
	"github.com/etherlang/ether/object"
	"github.com/etherlang/ether/server"
	"github.com/etherlang/ether/stdlib"
)

func main() {
	env := object.NewEnvironment()
	vm := interp.New(env, diag.NewWriter(os.Stderr))
	stdlib.Bootstrap(vm)

	worker := server.NewWorker(vm)
	defer worker.Stop()

	sessions := server.NewSessions(env)
	session := sessions.Create("default")

	srv := langserver.New(worker, session)
	if err := srv.Run(); err != nil {
		fmt.Fprintf(os.Stderr, "ether-lsp: %v\n", err)
		os.Exit(1)
	}
}
