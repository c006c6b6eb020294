package main

import "github.com/kamusis/roster-cli/cmd"

func main() {
	cmd.Execute()
}
