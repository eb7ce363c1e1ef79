package mailer

import (
	"bytes"
	"fmt"
	htmltpl "html/template"
)

var welcomeHTML = htmltpl.Must(htmltpl.New("welcome").Parse(`
<p>Hi {{.Name}},</p>
<p>Your account has been created. Complete your KYC documents to start applying for loans.</p>
`))

var decisionHTML = htmltpl.Must(htmltpl.New("loan_decision").Parse(`
<p>Hi {{.Name}},</p>
<p>Your {{.LoanType}} loan application for {{.Amount}} has been <b>{{.Decision}}</b>.</p>
{{if .Notes}}<p>Reviewer notes: {{.Notes}}</p>{{end}}
`))

// Render produces subject, text and HTML bodies for a job template.
func Render(job EmailJob) (subject, text, html string, err error) {
	get := func(k string) string { return fmt.Sprintf("%v", job.Data[k]) }

	switch job.Template {
	case TemplateWelcome:
		subject = "Welcome aboard"
		text = fmt.Sprintf("Hi %s, your account has been created.", get("Name"))
		html, err = render(welcomeHTML, job.Data)
	case TemplateLoanDecision:
		subject = fmt.Sprintf("Your loan application was %s", get("Decision"))
		text = fmt.Sprintf("Hi %s, your %s loan application for %s has been %s.",
			get("Name"), get("LoanType"), get("Amount"), get("Decision"))
		html, err = render(decisionHTML, job.Data)
	default:
		err = fmt.Errorf("unknown email template %q", job.Template)
	}
	return subject, text, html, err
}

func render(t *htmltpl.Template, data map[string]any) (string, error) {
	var buf bytes.Buffer
	if err := t.Execute(&buf, data); err != nil {
		return "", err
	}
	return buf.String(), nil
}
