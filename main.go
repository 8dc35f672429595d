// scallop is a reference-guided transcript assembler: given a stream
// of spliced short-read alignments against a reference sequence, it
// reconstructs a minimal set of full-length transcript paths with
// per-path abundance estimates.
package main

import (
	"fmt"
	"log"
	"os"

	"github.com/exascience/scallop/cmd"
)

func printHelp() {
	fmt.Fprintln(os.Stderr, "Available commands: assemble")
	fmt.Fprint(os.Stderr, "\n", cmd.AssembleHelp)
}

func main() {
	fmt.Fprint(os.Stderr, cmd.ProgramMessage)
	if len(os.Args) < 2 {
		log.Println("Incorrect number of parameters.")
		fmt.Fprintln(os.Stderr, cmd.HelpMessage)
		printHelp()
		os.Exit(1)
	}

	var err error
	switch os.Args[1] {
	case "assemble":
		err = cmd.Assemble()
	case "help", "-help", "--help", "-h", "--h":
		printHelp()
	default:
		fmt.Fprintln(os.Stderr, "Unknown command:", os.Args[1])
		printHelp()
		os.Exit(1)
	}
	if err != nil {
		log.Println(err)
		os.Exit(1)
	}
}
