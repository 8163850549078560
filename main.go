package main

import "github.com/sadopc/focuslog/internal/cli"

func main() {
	cli.Execute()
}
