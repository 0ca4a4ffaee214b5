package main

import "pyscope/internal/cli"

func main() {
	cli.Execute()
}
