package cli

import (
	"fmt"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/urfave/cli/v2"

	"go.viam.com/fpdlink/config"
	"go.viam.com/fpdlink/fpdlink"
)

// ListProfilesAction is the corresponding Action for 'list'.
func ListProfilesAction(c *cli.Context) error {
	t := table.NewWriter()
	t.AppendHeader(table.Row{"Name", "Board", "DES PCLK", "SER PCLK", "PATGEN", "Description"})
	for _, p := range fpdlink.Profiles() {
		board := "default"
		if p.SelectsBoard {
			board = fmt.Sprintf("%d", p.Defaults.BoardID)
		}
		t.AppendRow(table.Row{
			p.Name,
			board,
			clockString(p.Defaults.DesPCLK),
			clockString(p.Defaults.SerPCLK),
			p.Defaults.PatGen,
			p.Description,
		})
	}
	printf(c.App.Writer, "%s", t.Render())
	return nil
}

func clockString(mhz float64) string {
	if mhz == 0 {
		return "fixed"
	}
	return fmt.Sprintf("%g MHz", mhz)
}

// ShowProfileAction is the corresponding Action for 'show'.
func ShowProfileAction(c *cli.Context) error {
	b, err := newBench(c)
	if err != nil {
		return err
	}
	defer func() {
		//nolint:errcheck // nothing was logged to the file that matters here
		b.Close()
	}()
	p, params, err := b.profile(c)
	if err != nil {
		return err
	}
	steps, err := p.Steps(b.cfg.LinkAddresses(), params)
	if err != nil {
		return err
	}

	printf(c.App.Writer, "%s: %s", p.Name, p.Description)
	t := table.NewWriter()
	t.AppendHeader(table.Row{"#", "Operation", "Note"})
	for i, st := range steps {
		t.AppendRow(table.Row{i + 1, operationString(st), st.Note})
	}
	printf(c.App.Writer, "%s", t.Render())
	return nil
}

func operationString(st fpdlink.Step) string {
	switch st.Kind {
	case fpdlink.StepWrite:
		return fmt.Sprintf("%s 0x%02x = 0x%02x", st.Device, st.Reg, st.Val)
	case fpdlink.StepSleep:
		return fmt.Sprintf("sleep %v", st.Delay)
	default:
		return "check"
	}
}

// SchemaAction is the corresponding Action for 'schema'.
func SchemaAction(c *cli.Context) error {
	schema, err := config.Schema()
	if err != nil {
		return err
	}
	printf(c.App.Writer, "%s", schema)
	return nil
}
