// Package main is the entry point for the glucose command.
package main

import "github.com/jwulff/glucose-go/internal/cli"

func main() {
	cli.Execute()
}
