package main

import (
	"fmt"
	"os"

	"github.com/okian/salestrack/pkg/logger"
)

func main() {
	err := newRootCmd(os.Stdout, os.Stderr).Execute()
	if serr := logger.Sync(); serr != nil {
		fmt.Fprintln(os.Stderr, "logger sync:", serr)
	}
	if err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}
