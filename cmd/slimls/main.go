package main

import (
	"flag"
	"fmt"
	"os"

	"bennypowers.dev/slimls/internal/log"
	"bennypowers.dev/slimls/internal/version"
	"bennypowers.dev/slimls/lsp"
)

func main() {
	showVersion := flag.Bool("version", false, "Print the version and exit")
	// Editors commonly pass --stdio; it is the only transport
	flag.Bool("stdio", true, "Communicate over stdin/stdout")
	flag.Parse()

	if *showVersion {
		fmt.Println("slimls", version.GetFullVersion())
		return
	}

	server, err := lsp.NewServer()
	if err != nil {
		log.Error("Failed to create LSP server: %v", err)
		os.Exit(1)
	}
	defer server.Close()

	if err := server.RunStdio(); err != nil {
		log.Error("Server error: %v", err)
		os.Exit(1)
	}
}
