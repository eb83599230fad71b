// main.go
//
// Minimal entry point that delegates CLI handling to the Cobra commands in cmd/

package main

import (
	"github.com/transmission-sim/transmission-sim/cmd"
)

func main() {
	cmd.Execute()
}
