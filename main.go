package main

import (
	"os"

	"go.dedis.ch/onet/v3/log"
)

func main() {
	if err := newRootCommand().Execute(); err != nil {
		log.Error(err)
		os.Exit(1)
	}
}
