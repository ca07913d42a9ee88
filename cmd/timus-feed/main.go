package main

import "github.com/pfrederiksen/timus-feed/internal/cli"

// version is set at build time with -ldflags "-X main.version=..."
var version = "dev"

func main() {
	cli.Execute(version)
}
