package main

import (
	"fmt"
	"os"

	"github.com/earthwall/earthwall/cmd"
)

func main() {
	if err := cmd.Execute(os.Args); err != nil {
		fmt.Fprintln(os.Stderr, "earthwall:", err)
		os.Exit(1)
	}
}
