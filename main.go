package main

import "vidrop/cmd"

func main() {
	cmd.Execute()
}
