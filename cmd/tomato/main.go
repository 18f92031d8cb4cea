// Package main is the single-binary entrypoint for tomato.
package main

import "github.com/tomato-clock/tomato/internal/cli"

// version is set at build time via -ldflags.
var version = "dev"

func main() {
	cli.Execute(version)
}
