package main

import (
	"os"

	"github.com/srr_metrics/backend/internal/cli"
)

func main() {
	os.Exit(int(cli.Run()))
}
