package main

import (
	_ "time/tzdata"

	"github.com/jo-hoe/gojournal/internal/cli"
)

func main() {
	cli.Execute()
}
