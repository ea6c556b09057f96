package journal

import (
	"bytes"
	"text/template"
)

var reportFuncs = template.FuncMap{
	"mul100": func(x float64) float64 { return x * 100.0 },
}

// RenderReport formats a run summary and its trades as a plain-text block
// suitable for a terminal or a log file.
func RenderReport(run RunRecord, trades []TradeRecord) (string, error) {
	t, err := template.New("report").Funcs(reportFuncs).Parse(reportTemplate)
	if err != nil {
		return "", err
	}

	buf := new(bytes.Buffer)
	err = t.Execute(buf, struct {
		Run    RunRecord
		Trades []TradeRecord
	}{run, trades})
	if err != nil {
		return "", err
	}
	return buf.String(), nil
}

const reportTemplate = `RUN {{.Run.RunID}}  {{.Run.Symbol}}  strategy={{.Run.Strategy}}
period:       {{.Run.Start.Format "2006-01-02"}} .. {{.Run.End.Format "2006-01-02"}}
capital:      {{printf "%.0f" .Run.InitialCapital}} -> {{printf "%.0f" .Run.FinalCapital}}
net p&l:      {{printf "%.0f" .Run.NetPnL}} ({{printf "%.2f" (mul100 .Run.ReturnPct)}}%)
total costs:  {{printf "%.0f" .Run.TotalCosts}}
max drawdown: {{printf "%.2f" (mul100 .Run.MaxDrawdownPct)}}%
trades:       {{.Run.Trades}} ({{.Run.Wins}}W / {{.Run.Losses}}L, {{printf "%.1f" (mul100 .Run.WinRate)}}% win rate)
{{- if ne .Run.ProfitFactor 0.0}}
profit fac:   {{printf "%.2f" .Run.ProfitFactor}}
{{- end}}
final state:  {{.Run.FinalState}}
{{if .Trades}}
TRADES
{{range .Trades -}}
{{.ExitTime.Format "2006-01-02"}}  {{.Symbol}}  {{.Lots}} lot(s)  {{printf "%.2f" .EntryPrice}} -> {{printf "%.2f" .ExitPrice}}  net {{printf "%+.0f" .NetPnL}}  costs {{printf "%.0f" .TotalCost}}  {{.Reason}}
{{end -}}
{{end -}}
`
