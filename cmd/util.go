package cmd

import (
	"flag"
	"fmt"
	"io"
	"io/ioutil"
	"log"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// ProgramMessage is the first line printed when the scallop binary is
// invoked, following elPrep's own ProgramMessage/main.go idiom.
const ProgramMessage = "\nscallop version 1.0.0 - reference-guided transcript assembler.\n"

// HelpMessage lists the flags every sub-command accepts for printing
// details.
const HelpMessage = "Print command details:\n" +
	"[--help]\n"

func getFilename(s, help string) string {
	switch s {
	case "-h", "--h", "-help", "--help":
		fmt.Fprint(os.Stderr, help)
		os.Exit(0)
	default:
		if strings.HasPrefix(s, "-") {
			fmt.Fprintln(os.Stderr, "Filename(s) in command line missing.")
			fmt.Fprint(os.Stderr, help)
			os.Exit(1)
		}
	}
	return s
}

// parseFlags mirrors elPrep's own cmd/util.go parseFlags: it discards
// the FlagSet's own usage output (each sub-command prints its own help
// text instead) and exits with the sub-command's help message on any
// parse error or leftover argument.
func parseFlags(flags flag.FlagSet, requiredArgs int, help string) {
	if len(os.Args) < requiredArgs {
		fmt.Fprintln(os.Stderr, "Incorrect number of parameters.")
		fmt.Fprint(os.Stderr, help)
		os.Exit(1)
	}
	flags.SetOutput(ioutil.Discard)
	if err := flags.Parse(os.Args[requiredArgs:]); err != nil {
		x := 0
		if err != flag.ErrHelp {
			fmt.Fprintln(os.Stderr, err)
			x = 1
		}
		fmt.Fprint(os.Stderr, help)
		os.Exit(x)
	}
	if flags.NArg() > 0 {
		fmt.Fprintln(os.Stderr, "Cannot parse remaining parameters:", flags.Args())
		fmt.Fprint(os.Stderr, help)
		os.Exit(1)
	}
}

// setLogOutput redirects the stdlib log package to a timestamped file
// under path in addition to stderr, following elPrep's own
// cmd/util.go::setLogOutput naming and createLogFilename convention,
// scoped down to what this module's Non-goals leave room for: no
// unix.Dup2 stderr redirection, since that exists in elPrep only to
// also capture C library (htslib) stderr output, which scallop has no
// equivalent of.
func setLogOutput(path string) {
	t := time.Now()
	name := fmt.Sprintf("scallop-%d-%02d-%02d-%02d-%02d-%02d.log",
		t.Year(), t.Month(), t.Day(), t.Hour(), t.Minute(), t.Second())
	if err := os.MkdirAll(path, 0700); err != nil {
		log.Println("Warning: could not create log directory", path, ":", err)
		return
	}
	f, err := os.Create(filepath.Join(path, name))
	if err != nil {
		log.Println("Warning: could not create log file:", err)
		return
	}
	log.SetOutput(io.MultiWriter(f, os.Stderr))
	log.Println("Command line:", os.Args)
}
