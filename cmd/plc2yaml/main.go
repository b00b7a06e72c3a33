package main

import "github.com/plc-visualizer/plc2yaml/internal/cli"

func main() {
	cli.Execute()
}
