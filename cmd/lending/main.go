package main

import "github.com/praneet25101-blip/ShieldedLending/internal/cli"

func main() {
	cli.Execute()
}
