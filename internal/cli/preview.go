package cli

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"

	"invoice-generator/internal/config"
	"invoice-generator/internal/export"

	"github.com/charmbracelet/glamour"
	"github.com/google/subcommands"
)

type previewCmd struct {
	configPath *string
	out        io.Writer

	items string
	raw   bool
	style string
}

func (*previewCmd) Name() string     { return "preview" }
func (*previewCmd) Synopsis() string { return "print an invoice preview for an items file" }
func (*previewCmd) Usage() string {
	return `preview -items <file> [-raw] [-style dark|light|notty]

  Reads a JSON array of products, e.g. [{"name":"Pen","qty":10,"rate":2}],
  and prints the invoice with amounts rounded to cents. Use "-" to read
  from standard input.
`
}

func (p *previewCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&p.items, "items", "", "Path to the JSON items file.")
	f.BoolVar(&p.raw, "raw", false, "Print plain markdown instead of styled terminal output.")
	f.StringVar(&p.style, "style", "dark", "glamour style used for terminal output.")
}

func (p *previewCmd) Execute(_ context.Context, _ *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	cfg, err := config.Load(*p.configPath)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return subcommands.ExitFailure
	}
	l, err := loadItems(p.items)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return subcommands.ExitFailure
	}
	svc, err := newOfflineService(cfg)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return subcommands.ExitFailure
	}

	inv := svc.Invoice(l.Snapshot())
	// A preview is not an issued invoice.
	inv.Number = ""
	md := export.Markdown(inv)

	if p.raw {
		fmt.Fprint(p.out, md)
		return subcommands.ExitSuccess
	}
	styled, err := glamour.Render(md, p.style)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return subcommands.ExitFailure
	}
	fmt.Fprint(p.out, styled)
	return subcommands.ExitSuccess
}
