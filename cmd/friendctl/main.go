package main

import "github.com/mcoot/friendfinder/internal/cli"

func main() {
	cli.Execute()
}
