package main

import "github.com/kiesman99/gridsplit/cmd"

func main() {
	cmd.Execute()
}
