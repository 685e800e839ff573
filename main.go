package main

import (
	"os"

	"github.com/noterelay/noterelay/app"
)

func main() {
	err := app.Execute()
	if err != nil {
		os.Exit(1)
	}
}
