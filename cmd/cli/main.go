package main

import "mediahub/cmd/cli/command"

func main() {
	command.Execute()
}
