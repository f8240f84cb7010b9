package main

import "cueplay/internal/cli"

func main() {
	cli.Execute()
}
