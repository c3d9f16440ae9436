package main

import (
	"os"

	"github.com/insightdelivered/statement-extractor/internal/cli"
)

func main() {
	os.Exit(cli.Execute())
}
