// main.go
//
// Entry point for the nutrigrade CLI. Argument handling, settings and JSON
// output live in cmd/root.go.

package main

import (
	"github.com/nutricart/nutrigrade/cmd"
)

func main() {
	cmd.Execute()
}
