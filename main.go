package main

import (
	"os"

	"github.com/logly/logly/cmd"
)

func main() {
	os.Exit(cmd.Execute())
}
