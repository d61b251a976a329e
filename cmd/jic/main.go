package main

import "github.com/OpenTraceLab/OpenTraceJIC/cmd/jic/cmd"

func main() {
	cmd.Execute()
}
