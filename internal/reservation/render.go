package reservation

import (
	"bytes"
	"fmt"
	htmltemplate "html/template"
	"text/template"

	"github.com/fjod/storefront/internal/domain"
)

var funcs = map[string]any{
	"eur":    FormatEUR,
	"liters": FormatLiters,
}

var textSummary = template.Must(template.New("summary.txt").Funcs(funcs).Parse(
	`{{range .Lines}}- {{.Label}} | {{.Quantity}} × {{eur .UnitPrice}} = {{eur .LineTotal}}
{{end}}
Subtotal: {{eur .Subtotal}}
{{if .WantsTransport}}Transport: {{eur .Shipping}} (boxes: {{.Boxes}}; volume: {{liters .TotalVolume}})
{{else}}Transport: {{eur .Shipping}} (pick-up)
{{end}}ESTIMATED TOTAL: {{eur .GrandTotal}}`))

const cell = `padding:10px;border-bottom:1px solid #eee;`

var htmlSummary = htmltemplate.Must(htmltemplate.New("summary.html").Funcs(funcs).Parse(`
<div style="font-family:Arial,sans-serif;line-height:1.4;color:#111;">
  <h2 style="margin:0 0 10px;">Reservation summary</h2>
  <p style="margin:0 0 14px;color:#444;">This is a <strong>reservation</strong> (no online payment). We will confirm the details by email.</p>
  <table style="width:100%;border-collapse:collapse;border:1px solid #eee;">
    <thead>
      <tr style="background:#fafafa;">
        <th style="` + cell + `text-align:left;">#</th>
        <th style="` + cell + `text-align:left;">Item</th>
        <th style="` + cell + `text-align:center;">Qty</th>
        <th style="` + cell + `text-align:right;">Price</th>
        <th style="` + cell + `text-align:right;">Subtotal</th>
      </tr>
    </thead>
    <tbody>{{range .Lines}}
      <tr>
        <td style="` + cell + `">{{.ProductID}}</td>
        <td style="` + cell + `">{{.Label}}</td>
        <td style="` + cell + `text-align:center;">{{.Quantity}}</td>
        <td style="` + cell + `text-align:right;">{{eur .UnitPrice}}</td>
        <td style="` + cell + `text-align:right;"><strong>{{eur .LineTotal}}</strong></td>
      </tr>{{end}}
    </tbody>
    <tfoot>
      <tr>
        <td colspan="4" style="padding:12px;text-align:right;">Subtotal</td>
        <td style="padding:12px;text-align:right;"><strong>{{eur .Subtotal}}</strong></td>
      </tr>
      <tr>
        <td colspan="4" style="padding:12px;text-align:right;">Transport{{if .WantsTransport}} ({{.Boxes}} boxes, {{liters .TotalVolume}}){{else}} (pick-up){{end}}</td>
        <td style="padding:12px;text-align:right;"><strong>{{eur .Shipping}}</strong></td>
      </tr>
      <tr>
        <td colspan="4" style="padding:12px;text-align:right;"><strong>ESTIMATED TOTAL</strong></td>
        <td style="padding:12px;text-align:right;"><strong>{{eur .GrandTotal}}</strong></td>
      </tr>
    </tfoot>
  </table>
</div>`))

// Text renders s as plain text for the text/plain part of an email.
func Text(s domain.Summary) (string, error) {
	var buf bytes.Buffer
	if err := textSummary.Execute(&buf, s); err != nil {
		return "", fmt.Errorf("render text summary: %w", err)
	}
	return buf.String(), nil
}

// HTML renders s as an HTML table. Labels and ids are escaped.
func HTML(s domain.Summary) (string, error) {
	var buf bytes.Buffer
	if err := htmlSummary.Execute(&buf, s); err != nil {
		return "", fmt.Errorf("render html summary: %w", err)
	}
	return buf.String(), nil
}
