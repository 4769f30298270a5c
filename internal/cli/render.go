package cli

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"

	"invoice-generator/internal/config"
	"invoice-generator/internal/export"

	"github.com/google/subcommands"
)

type renderCmd struct {
	configPath *string
	out        io.Writer

	items  string
	format string
	output string
}

func (*renderCmd) Name() string     { return "render" }
func (*renderCmd) Synopsis() string { return "export an items file to pdf, xlsx or csv" }
func (*renderCmd) Usage() string {
	return `render -items <file> [-format pdf|xlsx|csv] [-out <path>]

  Renders the products of an items file without a server or database.
  The output defaults to invoice_<date>.<format> in the working directory.
`
}

func (r *renderCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&r.items, "items", "", "Path to the JSON items file.")
	f.StringVar(&r.format, "format", "pdf", "Output format (pdf, xlsx, csv).")
	f.StringVar(&r.output, "out", "", "Output file path.")
}

func (r *renderCmd) Execute(ctx context.Context, _ *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	format, err := export.ParseFormat(r.format)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return subcommands.ExitUsageError
	}
	cfg, err := config.Load(*r.configPath)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return subcommands.ExitFailure
	}
	l, err := loadItems(r.items)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return subcommands.ExitFailure
	}
	svc, err := newOfflineService(cfg)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return subcommands.ExitFailure
	}

	doc, inv, err := svc.Render(ctx, l.Snapshot(), format)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return subcommands.ExitFailure
	}

	path := r.output
	if path == "" {
		path = doc.FileName
	}
	if err := os.WriteFile(path, doc.Data, 0o644); err != nil {
		fmt.Fprintln(os.Stderr, err)
		return subcommands.ExitFailure
	}
	fmt.Fprintf(r.out, "wrote %s (%d bytes, invoice %s, grand total %s)\n",
		path, len(doc.Data), inv.Number, export.FormatAmount(inv.Snapshot.GrandTotal, inv.Currency))
	return subcommands.ExitSuccess
}
