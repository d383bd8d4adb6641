package reservation

import (
	"bytes"
	"fmt"
	htmltemplate "html/template"
	"strings"

	"github.com/fjod/storefront/internal/domain"
	"github.com/fjod/storefront/internal/mailer"
)

// Composer builds the two confirmation emails sent for a reservation: one to
// the shop owner and one to the customer.
type Composer struct {
	ShopName   string
	From       string
	OwnerEmail string
}

type messageData struct {
	Shop     string
	Customer domain.Customer
	Notes    string
	Summary  htmltemplate.HTML
}

var ownerHTML = htmltemplate.Must(htmltemplate.New("owner.html").Parse(`
<div style="font-family:Arial,sans-serif;color:#111;">
  <h2>New reservation received</h2>
  <p><strong>Name:</strong> {{.Customer.Name}}<br/>
     <strong>Email:</strong> {{.Customer.Email}}<br/>
     <strong>Phone:</strong> {{.Customer.Phone}}<br/>
     {{if .Notes}}<strong>Notes:</strong> {{.Notes}}{{end}}
  </p>
  {{.Summary}}
</div>`))

var customerHTML = htmltemplate.Must(htmltemplate.New("customer.html").Parse(`
<div style="font-family:Arial,sans-serif;color:#111;">
  <p>Hello <strong>{{.Customer.Name}}</strong>,</p>
  <p>We received your reservation.<br/>
  <span style="color:#555;">(No online payment. We will confirm the details by email.)</span></p>
  <p><strong>Contact phone:</strong><br/>{{.Customer.Phone}}</p>
  {{if .Notes}}<p><strong>Notes:</strong><br/>{{.Notes}}</p>{{end}}
  {{.Summary}}
  <p style="margin-top:14px;color:#555;">Thank you,<br/>{{.Shop}}</p>
</div>`))

// OwnerMessage is addressed to the owner with reply-to set to the customer.
func (c Composer) OwnerMessage(r domain.Reservation) (mailer.Message, error) {
	text, html, err := c.render(r, ownerHTML)
	if err != nil {
		return mailer.Message{}, err
	}

	var b strings.Builder
	b.WriteString("New reservation received:\n\n")
	fmt.Fprintf(&b, "Reservation: %s\n", r.ID)
	fmt.Fprintf(&b, "Name: %s\nEmail: %s\nPhone: %s\n", r.Customer.Name, r.Customer.Email, r.Customer.Phone)
	if notes := strings.TrimSpace(r.Customer.Notes); notes != "" {
		fmt.Fprintf(&b, "\nCustomer notes: %s\n", notes)
	}
	b.WriteString("\nSummary:\n")
	b.WriteString(text)
	b.WriteString("\n")

	return mailer.Message{
		From:    c.From,
		To:      c.OwnerEmail,
		ReplyTo: r.Customer.Email,
		Subject: fmt.Sprintf("New reservation - %s (%s)", r.Customer.Name, FormatEUR(r.Summary.GrandTotal)),
		Text:    b.String(),
		HTML:    html,
	}, nil
}

// CustomerMessage is the confirmation sent to the customer.
func (c Composer) CustomerMessage(r domain.Reservation) (mailer.Message, error) {
	text, html, err := c.render(r, customerHTML)
	if err != nil {
		return mailer.Message{}, err
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Hello %s,\n\n", r.Customer.Name)
	b.WriteString("We received your reservation. Thank you for taking part in this community initiative.\n\n")
	fmt.Fprintf(&b, "Contact phone:\n%s\n", r.Customer.Phone)
	if notes := strings.TrimSpace(r.Customer.Notes); notes != "" {
		fmt.Fprintf(&b, "\nNotes: %s\n", notes)
	}
	b.WriteString("\nSummary:\n")
	b.WriteString(text)
	fmt.Fprintf(&b, "\n\nThank you,\n%s\n", c.ShopName)

	return mailer.Message{
		From:    c.From,
		To:      r.Customer.Email,
		Subject: fmt.Sprintf("Your reservation confirmation - %s (%s)", c.ShopName, FormatEUR(r.Summary.GrandTotal)),
		Text:    b.String(),
		HTML:    html,
	}, nil
}

// render produces both summary renderings from the reservation's stored
// summary and wraps the HTML one in tmpl.
func (c Composer) render(r domain.Reservation, tmpl *htmltemplate.Template) (string, string, error) {
	text, err := Text(r.Summary)
	if err != nil {
		return "", "", err
	}
	table, err := HTML(r.Summary)
	if err != nil {
		return "", "", err
	}

	var buf bytes.Buffer
	err = tmpl.Execute(&buf, messageData{
		Shop:     c.ShopName,
		Customer: r.Customer,
		Notes:    strings.TrimSpace(r.Customer.Notes),
		// already escaped by HTML
		Summary: htmltemplate.HTML(table),
	})
	if err != nil {
		return "", "", fmt.Errorf("render %s: %w", tmpl.Name(), err)
	}
	return text, buf.String(), nil
}
