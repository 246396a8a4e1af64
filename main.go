package main

import "matchday/cmd"

func main() {
	cmd.Execute()
}
