package main

import (
	"modpack-builder/cmd"

	_ "go.uber.org/automaxprocs"
)

func main() {
	cmd.Execute()
}
