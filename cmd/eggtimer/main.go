package main

import "github.com/eggtimer-project/eggtimer/internal/cli"

func main() {
	cli.Execute()
}
