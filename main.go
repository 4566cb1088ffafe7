package main

import (
	"os"

	"github.com/classgroups/classgroups/app"
)

func main() {
	err := app.Execute()
	if err != nil {
		os.Exit(1)
	}
}
