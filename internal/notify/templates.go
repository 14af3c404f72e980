package notify

import (
	"bytes"
	"fmt"
	"html/template"
	"time"
)

// Spanish month names used when rendering booking times for patients.
var spanishMonthNames = [12]string{
	"enero", "febrero", "marzo", "abril", "mayo", "junio",
	"julio", "agosto", "septiembre", "octubre", "noviembre", "diciembre",
}

// defaultTimezone is used when the caller does not name one. All tenants
// currently operate on Chilean time.
const defaultTimezone = "America/Santiago"

// formatLocalStartAt renders the booking start in the recipient's timezone,
// e.g. "12 de enero de 2026, 15:00 hrs". Unknown timezone names fall back
// to the default rather than failing the whole notification.
func formatLocalStartAt(t time.Time, timezone string) string {
	if timezone == "" {
		timezone = defaultTimezone
	}
	loc, err := time.LoadLocation(timezone)
	if err != nil {
		loc, _ = time.LoadLocation(defaultTimezone)
	}
	local := t.In(loc)
	return fmt.Sprintf("%d de %s de %d, %02d:%02d hrs",
		local.Day(), spanishMonthNames[int(local.Month())-1], local.Year(),
		local.Hour(), local.Minute())
}

type emailData struct {
	CustomerName string
	ServiceName  string
	TenantName   string
	StartAt      string
}

const emailShellTemplate = `<div style="font-family: sans-serif; max-width: 600px; margin: 0 auto;">
<h2 style="color: {{.Accent}};">{{.Heading}}</h2>
{{.Body}}
<table style="border-collapse: collapse; margin: 20px 0;">
{{if .Data.ServiceName}}  <tr><td style="padding: 8px; border-bottom: 1px solid #e5e7eb;"><strong>Servicio:</strong></td><td style="padding: 8px; border-bottom: 1px solid #e5e7eb;">{{.Data.ServiceName}}</td></tr>
{{end}}  <tr><td style="padding: 8px; border-bottom: 1px solid #e5e7eb;"><strong>Fecha:</strong></td><td style="padding: 8px; border-bottom: 1px solid #e5e7eb;">{{.Data.StartAt}}</td></tr>
{{if .Data.TenantName}}  <tr><td style="padding: 8px; border-bottom: 1px solid #e5e7eb;"><strong>Centro:</strong></td><td style="padding: 8px; border-bottom: 1px solid #e5e7eb;">{{.Data.TenantName}}</td></tr>
{{end}}</table>
<p style="color: #6b7280; font-size: 12px; margin-top: 20px;">{{.Footer}}</p>
</div>`

var emailShell = template.Must(
	template.New("email_shell").Option("missingkey=error").Parse(emailShellTemplate))

type renderedEmail struct {
	Subject string
	HTML    string
	Text    string
}

func greeting(customerName string) string {
	if customerName == "" {
		return "Hola"
	}
	return "Hola " + customerName
}

type shellData struct {
	Accent  string
	Heading string
	Body    template.HTML
	Footer  string
	Data    emailData
}

// renderBookingEmail builds subject, HTML body and a plain-text fallback for
// one notification type.
func renderBookingEmail(n BookingNotification) (renderedEmail, error) {
	data := emailData{
		CustomerName: n.CustomerName,
		ServiceName:  n.ServiceName,
		TenantName:   n.TenantName,
		StartAt:      formatLocalStartAt(n.StartAt, n.Timezone),
	}

	tenant := data.TenantName
	if tenant == "" {
		tenant = "AgendaSalud"
	}
	shell := shellData{
		Footer: fmt.Sprintf("— Equipo %s", tenant),
		Data:   data,
	}

	var out renderedEmail
	switch n.Type {
	case TypeConfirmation:
		out.Subject = "Tu reserva está confirmada"
		out.Text = fmt.Sprintf("%s, tu reserva quedó confirmada para el %s.", greeting(data.CustomerName), data.StartAt)
		shell.Accent = "#10b981"
		shell.Heading = "Reserva confirmada"
		shell.Body = template.HTML(fmt.Sprintf("<p>%s, tu reserva quedó confirmada.</p>", template.HTMLEscapeString(greeting(data.CustomerName))))
	case TypeCancelled:
		out.Subject = "Tu reserva fue cancelada"
		out.Text = fmt.Sprintf("%s, tu reserva del %s fue cancelada.", greeting(data.CustomerName), data.StartAt)
		shell.Accent = "#ef4444"
		shell.Heading = "Reserva cancelada"
		shell.Body = template.HTML(fmt.Sprintf("<p>%s, tu reserva fue cancelada. Si no fuiste tú, contáctanos.</p>", template.HTMLEscapeString(greeting(data.CustomerName))))
	case TypeRescheduled:
		out.Subject = "Tu reserva fue reagendada"
		out.Text = fmt.Sprintf("%s, tu reserva fue reagendada para el %s.", greeting(data.CustomerName), data.StartAt)
		shell.Accent = "#3b82f6"
		shell.Heading = "Reserva reagendada"
		shell.Body = template.HTML(fmt.Sprintf("<p>%s, tu reserva quedó reagendada para una nueva fecha.</p>", template.HTMLEscapeString(greeting(data.CustomerName))))
	default:
		return renderedEmail{}, fmt.Errorf("notify: unknown notification type %q", n.Type)
	}

	var buf bytes.Buffer
	if err := emailShell.Execute(&buf, shell); err != nil {
		return renderedEmail{}, fmt.Errorf("notify: render email: %w", err)
	}
	out.HTML = buf.String()
	return out, nil
}
