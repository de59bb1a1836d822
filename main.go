package main

import "spotigrab/cmd"

func main() {
	cmd.Execute()
}
