package cmd

import (
	"fmt"
	"log"
	"os"

	"github.com/fatih/color"
)

const (
	exitFailure            = 1
	exitAlreadyInitialized = 3
)

var (
	// globals used to patch over calls to os.Exit() during test

	logFatalln = log.Fatalln
	logFatalf  = log.Fatalf
	osExit     = os.Exit

	errorPrefix = color.New(color.FgRed, color.Bold).SprintFunc()
)

func wrapFatalln(msg string, err error) {
	if err == nil {
		logFatalln(errorPrefix("error:"), msg)
	} else {
		logFatalf("%s %v", errorPrefix("error:"), fmt.Errorf(msg+": %w", err))
	}
}

func wrapFatalWithCodef(code int, format string, args ...interface{}) {
	_, _ = fmt.Fprintf(os.Stderr, "%s "+format+"\n", append([]interface{}{errorPrefix("error:")}, args...)...)
	osExit(code)
}
