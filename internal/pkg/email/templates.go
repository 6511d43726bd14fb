// internal/pkg/email/templates.go
package email

import (
	"bytes"
	"fmt"
	"html/template"
	texttemplate "text/template"
)

const layout = `{{define "layout"}}<!DOCTYPE html>
<html><body style="font-family:Arial,sans-serif;color:#222">
<h2>{{.SiteName}}</h2>
<p>Hi {{if .UserName}}{{.UserName}}{{else}}there{{end}},</p>
{{template "content" .}}
<p style="color:#888;font-size:12px">Need help? <a href="{{.SupportURL}}">Contact support</a><br>&copy; {{.Year}} {{.SiteName}}</p>
</body></html>{{end}}`

var templateBodies = map[Template]struct {
	subject string
	body    string
}{
	TemplateOrderConfirmation: {
		subject: "Order #{{.OrderID}} confirmed",
		body: `{{define "content"}}<p>Thanks for your order #{{.OrderID}} placed on {{.OrderDate}}.</p>
<table>{{range .Items}}<tr><td>{{.Name}}</td><td>x{{.Quantity}}</td><td>{{.Price}}</td><td>{{.Total}}</td></tr>{{end}}</table>
<p>Delivery fee: {{.DeliveryFee}}<br><strong>Total: {{.OrderTotal}}</strong></p>
<p>Shipping to:<br>{{range .Address}}{{.}}<br>{{end}}</p>{{end}}`,
	},
	TemplateOrderCancelled: {
		subject: "Order #{{.OrderID}} cancelled",
		body: `{{define "content"}}<p>Your order #{{.OrderID}} ({{.OrderTotal}}) was cancelled by {{.CancelledBy}}.</p>
{{if .Reason}}<p>Reason: {{.Reason}}</p>{{end}}
<table>{{range .Items}}<tr><td>{{.Name}}</td><td>x{{.Quantity}}</td><td>{{.Total}}</td></tr>{{end}}</table>{{end}}`,
	},
	TemplateBackInStock: {
		subject: "{{.ProductName}} is back in stock",
		body: `{{define "content"}}<p>Good news: <strong>{{.ProductName}}</strong> is available again at {{.Price}}.</p>
<p><a href="{{.ProductURL}}">Buy it now</a> before it sells out.</p>{{end}}`,
	},
}

type compiledTemplate struct {
	subject *texttemplate.Template
	body    *template.Template
}

// Renderer turns template data into subject and HTML body
type Renderer struct {
	siteName  string
	siteURL   string
	templates map[Template]compiledTemplate
}

// NewRenderer parses all notification templates
func NewRenderer(siteName, siteURL string) (*Renderer, error) {
	r := &Renderer{
		siteName:  siteName,
		siteURL:   siteURL,
		templates: make(map[Template]compiledTemplate, len(templateBodies)),
	}

	for name, def := range templateBodies {
		subject, err := texttemplate.New(string(name) + "_subject").Parse(def.subject)
		if err != nil {
			return nil, fmt.Errorf("failed to parse %s subject: %w", name, err)
		}
		body, err := template.New(string(name)).Parse(layout)
		if err != nil {
			return nil, fmt.Errorf("failed to parse layout: %w", err)
		}
		if _, err := body.Parse(def.body); err != nil {
			return nil, fmt.Errorf("failed to parse %s body: %w", name, err)
		}
		r.templates[name] = compiledTemplate{subject: subject, body: body}
	}

	return r, nil
}

// Render fills site-wide fields and executes the named template
func (r *Renderer) Render(name Template, data interface{}) (string, string, error) {
	tpl, ok := r.templates[name]
	if !ok {
		return "", "", fmt.Errorf("unknown email template: %s", name)
	}

	if d, ok := data.(baseData); ok {
		b := d.base()
		userName := b.UserName
		*b = GetBaseTemplateData(r.siteName, r.siteURL, userName)
	}

	var subject bytes.Buffer
	if err := tpl.subject.Execute(&subject, data); err != nil {
		return "", "", fmt.Errorf("failed to render %s subject: %w", name, err)
	}

	var body bytes.Buffer
	if err := tpl.body.ExecuteTemplate(&body, "layout", data); err != nil {
		return "", "", fmt.Errorf("failed to render %s body: %w", name, err)
	}

	return subject.String(), body.String(), nil
}
