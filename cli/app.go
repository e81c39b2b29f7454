// Package cli contains the fpdlink command line app.
package cli

import (
	"io"

	"github.com/urfave/cli/v2"

	// register components.
	_ "go.viam.com/fpdlink/components/register"
)

const (
	// Global flags.
	flagConfig  = "config"
	flagDebug   = "debug"
	flagLogFile = "log-file"

	// Profile parameter flags.
	flagDesPCLK  = "des-pclk"
	flagSerPCLK  = "ser-pclk"
	flagNoPatGen = "no-patgen"
	flagBoardID  = "board-id"

	flagTrace      = "trace"
	flagTraceSteps = "trace-steps"
	flagOutput     = "output"
)

// paramFlags returns the flags overriding profile params, followed by flags.
func paramFlags(flags ...cli.Flag) []cli.Flag {
	return append([]cli.Flag{
		&cli.Float64Flag{
			Name:  flagDesPCLK,
			Usage: "deserializer pixel clock in MHz, for profiles that compute their dividers",
		},
		&cli.Float64Flag{
			Name:  flagSerPCLK,
			Usage: "serializer pixel clock in MHz, for profiles that compute their dividers",
		},
		&cli.BoolFlag{
			Name:  flagNoPatGen,
			Usage: "leave the pattern generator off and pass the DP input through",
		},
		&cli.IntFlag{
			Name:  flagBoardID,
			Usage: "bus id selected by profiles that select a board",
		},
	}, flags...)
}

// NewApp returns the fpdlink app writing to the given streams. Logs go to errOut.
func NewApp(out, errOut io.Writer) *cli.App {
	return &cli.App{
		Name:            "fpdlink",
		Usage:           "bring up TI DS90Ux98x FPD-Link serializer/deserializer boards",
		HideHelpCommand: true,
		Writer:          out,
		ErrWriter:       errOut,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    flagConfig,
				Aliases: []string{"c"},
				Usage:   "load configuration from `FILE`",
			},
			&cli.BoolFlag{
				Name:    flagDebug,
				Aliases: []string{"vvv"},
				Usage:   "enable debug logging",
			},
			&cli.StringFlag{
				Name:  flagLogFile,
				Usage: "also write logs to `FILE`, rotated by size",
			},
		},
		Commands: []*cli.Command{
			{
				Name:   "list",
				Usage:  "list the bring-up profiles",
				Action: ListProfilesAction,
			},
			{
				Name:      "show",
				Usage:     "print the steps of a profile",
				ArgsUsage: "<profile>",
				Flags:     paramFlags(),
				Action:    ShowProfileAction,
			},
			{
				Name:      "run",
				Usage:     "run a profile against the configured board",
				ArgsUsage: "<profile>",
				Flags: paramFlags(
					&cli.StringFlag{
						Name:  flagTrace,
						Usage: "write every I2C transfer of the run to `FILE`",
					},
					&cli.BoolFlag{
						Name:  flagTraceSteps,
						Usage: "log every step of this run regardless of log levels",
					},
				),
				Action: RunProfileAction,
			},
			{
				Name:      "record",
				Usage:     "run a profile against the simulated bench and print its I2C trace",
				ArgsUsage: "<profile>",
				Flags: paramFlags(
					&cli.StringFlag{
						Name:    flagOutput,
						Aliases: []string{"o"},
						Usage:   "write the trace to `FILE` instead of stdout",
					},
				),
				Action: RecordProfileAction,
			},
			{
				Name:      "verify",
				Usage:     "replay a profile against a reference trace and report the first difference",
				ArgsUsage: "<profile> <trace file>",
				Flags:     paramFlags(),
				Action:    VerifyProfileAction,
			},
			{
				Name:   "schema",
				Usage:  "print the JSON schema of the config file",
				Action: SchemaAction,
			},
		},
	}
}
