package leads

import (
	"bytes"
	"fmt"
	htmltemplate "html/template"
	"sort"
	"strings"
	"text/template"

	awsx "finportal/internal/common/aws"
	"finportal/internal/models"
)

var kindTitles = map[models.LeadKind]string{
	models.LeadKindQuote:        "Quote request",
	models.LeadKindScheduleCall: "Call booking",
	models.LeadKindSubscribe:    "Newsletter subscription",
	models.LeadKindPartner:      "Partner registration",
	models.LeadKindDemat:        "Demat account application",
	models.LeadKindInvestment:   "Investment enquiry",
	models.LeadKindCreditCard:   "Credit card application",
}

// Title is the human name of a lead kind.
func Title(kind models.LeadKind) string {
	if t, ok := kindTitles[kind]; ok {
		return t
	}
	return string(kind)
}

// Summary renders the payload as sorted "field: value" lines.
func Summary(lead *models.Lead) string {
	keys := make([]string, 0, len(lead.Payload))
	for k := range lead.Payload {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var b strings.Builder
	for _, k := range keys {
		fmt.Fprintf(&b, "%s: %v\n", k, lead.Payload[k])
	}
	return strings.TrimRight(b.String(), "\n")
}

var (
	textTemplate = template.Must(template.New("lead-text").Parse(
		`New {{.Title}} from {{.Name}}

Lead ID: {{.ID}}
Received: {{.Received}}

{{.Summary}}
`))

	htmlTemplate = htmltemplate.Must(htmltemplate.New("lead-html").Parse(
		`<h2>New {{.Title}}</h2>
<p>Lead ID: {{.ID}}<br>Received: {{.Received}}</p>
<table>{{range .Rows}}
<tr><th align="left">{{.Field}}</th><td>{{.Value}}</td></tr>{{end}}
</table>
`))
)

type row struct {
	Field string
	Value string
}

// NotificationTemplate renders the ops inbox notification for lead.
func NotificationTemplate(lead *models.Lead) (models.NotificationTemplate, error) {
	summary := Summary(lead)
	var rows []row
	for _, line := range strings.Split(summary, "\n") {
		if field, value, ok := strings.Cut(line, ": "); ok {
			rows = append(rows, row{Field: field, Value: value})
		}
	}

	name := lead.Name
	if name == "" {
		name = lead.Email
	}
	data := map[string]interface{}{
		"Title":    Title(lead.Kind),
		"Name":     name,
		"ID":       lead.ID,
		"Received": lead.CreatedAt.Format("02 Jan 2006 15:04 MST"),
		"Summary":  summary,
		"Rows":     rows,
	}

	var text, html bytes.Buffer
	if err := textTemplate.Execute(&text, data); err != nil {
		return models.NotificationTemplate{}, err
	}
	if err := htmlTemplate.Execute(&html, data); err != nil {
		return models.NotificationTemplate{}, err
	}

	return models.NotificationTemplate{
		Subject:  fmt.Sprintf("[%s] %s", Title(lead.Kind), name),
		Body:     text.String(),
		HTMLBody: html.String(),
	}, nil
}

// NotificationEmail addresses the rendered notification to opsInbox with
// the customer as reply-to.
func NotificationEmail(lead *models.Lead, opsInbox string) (awsx.Email, error) {
	tpl, err := NotificationTemplate(lead)
	if err != nil {
		return awsx.Email{}, err
	}
	email := awsx.Email{
		To:       []string{opsInbox},
		Subject:  tpl.Subject,
		TextBody: tpl.Body,
		HTMLBody: tpl.HTMLBody,
	}
	if lead.Email != "" {
		email.ReplyTo = []string{lead.Email}
	}
	return email, nil
}
