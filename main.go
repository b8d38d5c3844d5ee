package main

import (
	"os"

	"github.com/ormkit/ormgen/internal/cli"
)

var version = "dev"

func main() {
	cli.Version = version
	os.Exit(cli.Execute())
}
