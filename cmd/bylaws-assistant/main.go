package main

import "github.com/hoalabs/bylaws-assistant/internal/adapters/driving/cli"

func main() {
	cli.Execute()
}
