package main

import "pagebuilder/internal/cli"

func main() {
	cli.Execute()
}
