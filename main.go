package main

import (
	"fmt"
	"os"

	"github.com/pakagronglb/blogsmith/cmd"
)

func main() {
	if err := cmd.RootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}
