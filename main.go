package main

import "satbench/cmd"

func main() {
	cmd.Execute()
}
