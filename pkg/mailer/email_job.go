package mailer

// Template names understood by the email worker.
const (
	TemplateWelcome      = "welcome"
	TemplateLoanDecision = "loan_decision"
)

// EmailJob is the JSON payload put on the RabbitMQ queue for sending email.
type EmailJob struct {
	To       string         `json:"to"`
	Template string         `json:"template"`
	Data     map[string]any `json:"data,omitempty"`
}
