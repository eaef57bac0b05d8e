// Package main is the single-binary entrypoint for jobtrail.
package main

import "github.com/jobtrail/jobtrail/internal/cli"

// version is set at build time via -ldflags.
var version = "dev"

func main() {
	cli.Execute(version)
}
