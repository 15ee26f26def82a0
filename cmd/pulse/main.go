package main

import "github.com/pulseobs/pulse/internal/cli"

func main() {
	cli.Execute()
}
