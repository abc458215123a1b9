package main

import (
	"log"

	"github.com/ledgergate/ledgergate/internal/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		log.Fatal(err)
	}
}
