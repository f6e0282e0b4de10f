// The main package for the fundwatch executable.
package main

import (
	"github.com/fundwatch/fundwatch/cmd"
)

// main defers all execution to the Cobra CLI library.
func main() {
	cmd.Execute()
}
