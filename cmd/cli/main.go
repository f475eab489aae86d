package main

import (
	"fmt"
	"os"

	"github.com/ops-tools/costpilot/pkg/services/collector"
	"github.com/ops-tools/costpilot/pkg/terminal"
)

func main() {
	registry := collector.NewRegistry()
	// Per-service collectors are linked in by the deployment build;
	// the reference Cost Explorer collector is always available.
	if err := registry.Register(collector.NewCostExplorerUsage(30)); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	cli := terminal.NewCLI(terminal.Options{
		Registry: registry,
		Output:   os.Stdout,
	})

	if err := cli.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
