package main

import (
	"os"

	"github.com/hrassist/recruiter/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
