package main

import (
	"log"

	"github.com/dshevko/talentsift/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		log.Fatal(err)
	}
}
