package main

import "github.com/mcoot/wordrooms/internal/cli"

func main() {
	cli.Execute()
}
