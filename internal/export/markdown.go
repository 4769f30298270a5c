package export

import (
	"fmt"
	"strings"
)

// Markdown renders inv as a markdown document for terminal previews. It is
// not a downloadable format.
func Markdown(inv Invoice) string {
	var b strings.Builder
	cur := inv.Currency

	b.WriteString("# Invoice\n\n")
	if inv.Number != "" {
		fmt.Fprintf(&b, "**Number:** %s  \n", inv.Number)
	}
	fmt.Fprintf(&b, "**Date:** %s\n\n", inv.IssuedAt.Format("2006-01-02"))
	writeParty(&b, "From", inv.Issuer)
	writeParty(&b, "Bill to", inv.BillTo)

	snap := inv.Snapshot
	if snap.IsEmpty() {
		b.WriteString("_No products added._\n")
		return b.String()
	}

	b.WriteString("| " + strings.Join(columnHeaders, " | ") + " |\n")
	b.WriteString("|---|---:|---:|---:|---:|\n")
	for _, it := range snap.Items {
		fmt.Fprintf(&b, "| %s | %s | %s | %s | %s |\n",
			escapeCell(it.Name),
			FormatQuantity(it.Quantity),
			FormatAmount(it.Rate, cur),
			FormatAmount(it.Total, cur),
			FormatAmount(it.Tax, cur))
	}

	b.WriteString("\n| | |\n|---|---:|\n")
	fmt.Fprintf(&b, "| Subtotal | %s |\n", FormatAmount(snap.Subtotal, cur))
	fmt.Fprintf(&b, "| %s | %s |\n", columnHeaders[4], FormatAmount(snap.TaxTotal, cur))
	fmt.Fprintf(&b, "| **Grand Total** | **%s** |\n", FormatAmount(snap.GrandTotal, cur))
	return b.String()
}

func writeParty(b *strings.Builder, label string, p Party) {
	if p.Name == "" && len(p.Lines) == 0 {
		return
	}
	fmt.Fprintf(b, "**%s:** %s", label, p.Name)
	for _, l := range p.Lines {
		fmt.Fprintf(b, ", %s", l)
	}
	b.WriteString("\n\n")
}

func escapeCell(s string) string {
	s = strings.ReplaceAll(s, "|", `\|`)
	return strings.ReplaceAll(s, "\n", " ")
}
