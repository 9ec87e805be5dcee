package main

import (
	"github.com/grandline/server/internal/cli"
)

func main() {
	cli.Execute()
}
