package cmd

import (
	"fmt"

	"github.com/urfave/cli"
)

const version = "0.3.1"

func versionAction(_ *cli.Context) error {
	fmt.Println("earthwall", version)
	return nil
}
