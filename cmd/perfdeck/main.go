package main

import (
	"fmt"
	"os"
)

const usageText = `perfdeck is a terminal console for Bencher perf plots.

Usage:
  perfdeck <command> [flags]

Commands:
  ui       pick branches, testbeds, benchmarks and measures for a plot
  ls       list the dimensions of a project
  delete   delete one dimension after confirmation
  url      print the console URL of a plot or manage page
  config   print configuration (effective or defaults)
  help     show help

Common flags:
  --config PATH    config file (default ~/.perfdeck/config.toml)
  --project SLUG   project slug (default [console] project)
  --token TOKEN    api token (default BENCHER_API_TOKEN, config, token file)
  --fixture PATH   serve dimensions from a YAML file instead of the API

Examples:
  perfdeck ui --project demo
  perfdeck ls --project demo --kind benchmarks --search alloc
  perfdeck ls --project demo --all
  perfdeck delete --project demo branch feature-x
  perfdeck url --project demo --saved
  perfdeck config --format toml
`

func printUsage() {
	fmt.Fprint(os.Stderr, usageText)
}

func main() {
	args := os.Args[1:]
	if len(args) == 0 {
		printUsage()
		return
	}

	wiring := defaultCommandWiring(os.Stdout, os.Stderr)
	commands := buildCommands(wiring)

	switch args[0] {
	case "-h", "--help", "help":
		printUsage()
		return
	case "-v", "--version", "version":
		fmt.Fprintln(os.Stdout, wiring.version)
		return
	}

	runner, ok := commands[args[0]]
	if !ok {
		fmt.Fprintf(os.Stderr, "unknown command: %s\n\n", args[0])
		printUsage()
		os.Exit(2)
	}
	exitOnErr(args[0], runner.Run(args[1:]), wiring.stderr)
}
