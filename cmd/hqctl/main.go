package main

import "github.com/heoquay/backend/internal/cli"

func main() {
	cli.Execute()
}
