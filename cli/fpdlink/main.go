// Package main is the fpdlink command itself.
package main

import (
	"os"

	"go.viam.com/fpdlink/cli"
)

func main() {
	app := cli.NewApp(os.Stdout, os.Stderr)
	if err := app.Run(os.Args); err != nil {
		cli.Errorf(app.ErrWriter, "%v", err)
	}
}
