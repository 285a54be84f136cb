package main

import (
	"os"

	"github.com/streamglitch/glitcher/cmd"
	"github.com/streamglitch/glitcher/utils"
)

func main() {
	defer utils.PanicRecoverWithInfo("main")
	exitCode := cmd.Execute()
	os.Exit(exitCode)
}
