package main

import (
	"github.com/acmei/landgrab/internal/cli"
)

func main() {
	cli.Execute()
}
