package main

import (
	"os"

	"github.com/metrolinq/hostcfgd/cmd"
	"github.com/metrolinq/hostcfgd/internal/errors"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(errors.GetExitCode(err))
	}
}
