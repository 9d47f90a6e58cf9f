package engine

import (
	"fmt"
	"io"
	"sort"

	"github.com/olekukonko/tablewriter"
)

// WriteReport renders the run result as a table.
func WriteReport(w io.Writer, result *Result) {
	table := tablewriter.NewWriter(w)
	table.SetHeader([]string{"Metric", "Value"})
	table.SetBorder(false)

	keys := make([]string, 0, len(result.Metrics))
	for k := range result.Metrics {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		table.Append([]string{k, fmt.Sprintf("%.4f", result.Metrics[k])})
	}

	table.Append([]string{"signals", fmt.Sprintf("%d", result.Signals)})
	table.Append([]string{"orders", fmt.Sprintf("%d", result.Orders)})
	table.Append([]string{"fills", fmt.Sprintf("%d", result.Fills)})
	table.Append([]string{"rejections", fmt.Sprintf("%d", result.Rejections)})
	table.Append([]string{"warnings", fmt.Sprintf("%d", result.Warnings)})

	table.Render()
}
