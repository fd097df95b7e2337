package main

import (
	"fmt"
	"os"

	"github.com/mark3labs/mcp-go/server"

	"github.com/calebmorrow/loreduel/internal/carddata"
	ldmcp "github.com/calebmorrow/loreduel/internal/mcp"
)

func main() {
	catalog, err := carddata.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	ldmcp.SetCatalog(catalog)

	s := server.NewMCPServer("loreduel", "1.0.0")
	ldmcp.RegisterTools(s)

	if err := server.ServeStdio(s); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
