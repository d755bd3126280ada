package main

import (
	"github.com/macvmio/rawflash/cmd/rawflash/cmd"
)

func main() {
	cmd.Execute(cmd.InitializeCommands())
}
