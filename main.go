// devserver/main.go
package main

import (
	"os"

	"portfolio/devserver/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
