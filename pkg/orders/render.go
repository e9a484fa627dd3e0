package orders

import (
	"fmt"
	"html/template"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/interlux/shopchat/pkg/transport"
)

var listTmpl = template.Must(template.New("orders").Funcs(template.FuncMap{
	"money": func(m transport.MinorUnits) string { return FormatMoney(int64(m)) },
}).Parse(`{{range .}}<div class="order-item">
<div class="order-id">Order #{{.ID}}</div>
<div class="order-status">{{.Status}}</div>
<div class="order-total">Total: {{money .TotalAmount}}</div>
</div>
{{end}}`))

// RenderHTML renders one order-item block per order.
func RenderHTML(list []transport.Order) string {
	var b strings.Builder
	if err := listTmpl.Execute(&b, list); err != nil {
		return ""
	}
	return b.String()
}

// WriteTable writes the orders as an aligned text table.
func WriteTable(w io.Writer, list []transport.Order) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "ORDER\tSTATUS\tTOTAL")
	for _, o := range list {
		fmt.Fprintf(tw, "#%s\t%s\t%s\n", o.ID, o.Status, FormatMoney(int64(o.TotalAmount)))
	}
	return tw.Flush()
}
