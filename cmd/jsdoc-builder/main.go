package main

import (
	"fmt"
	"os"

	"github.com/teranos/jsdoc-builder/cmd/jsdoc-builder/commands"
	"github.com/teranos/jsdoc-builder/errors"
	"github.com/teranos/jsdoc-builder/logger"
)

func main() {
	err := commands.NewRootCmd().Execute()
	logger.Cleanup()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		for _, hint := range errors.GetAllHints(err) {
			fmt.Fprintf(os.Stderr, "Hint: %s\n", hint)
		}
		os.Exit(1)
	}
}
