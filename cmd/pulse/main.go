package main

import "github.com/OpenTraceLab/OpenTracePulse/cmd/pulse/cmd"

func main() {
	cmd.Execute()
}
