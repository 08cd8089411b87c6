// The main package for the bookmarkd executable.
package main

import (
	"github.com/sohee-an/smart-bookmark-app/cmd"
)

// main is the entry point of the application.
// It defers all execution to the Cobra CLI library.
func main() {
	cmd.Execute()
}
