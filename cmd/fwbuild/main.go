package main

import "github.com/s22625/fwbuild/internal/cli"

func main() {
	cli.Execute()
}
