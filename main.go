package main

import "github.com/lukasmetzner/argus/cmd"

func main() {
	cmd.Execute()
}
