package main

import "github.com/dmitrymomot/adaptive/internal/cli"

func main() {
	cli.Execute()
}
