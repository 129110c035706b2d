// Command revenue-timeline charts average movie revenue by release year.
package main

import (
	"github.com/buffos/revenue-timeline/cmd"
	"github.com/buffos/revenue-timeline/internal/contract"
)

func main() {
	if err := cmd.Execute(); err != nil {
		contract.LogFatal("Error", err)
	}
}
