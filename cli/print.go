package cli

import (
	"fmt"
	"io"
	"log"
	"os"

	"github.com/fatih/color"
)

// printf prints a message with no prefix.
func printf(w io.Writer, format string, a ...interface{}) {
	//nolint:errcheck // no need to check for error
	fmt.Fprintf(w, format+"\n", a...)
}

// warningf prints a message prefixed with a bold yellow "Warning: ".
func warningf(w io.Writer, format string, a ...interface{}) {
	if _, err := color.New(color.Bold, color.FgYellow).Fprint(w, "Warning: "); err != nil {
		log.Fatal(err)
	}
	//nolint:errcheck // no need to check for error
	fmt.Fprintf(w, format+"\n", a...)
}

// Errorf prints a message prefixed with a bold red "Error: " prefix and exits with 1.
func Errorf(w io.Writer, format string, a ...interface{}) {
	if _, err := color.New(color.Bold, color.FgRed).Fprint(w, "Error: "); err != nil {
		log.Fatal(err)
	}
	//nolint:errcheck // no need to check for error
	fmt.Fprintf(w, format+"\n", a...)
	os.Exit(1)
}
