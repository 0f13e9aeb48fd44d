package mailer

// EmailJob is the JSON payload the API publishes to the orders queue and the
// email worker consumes. Either Template (with Data) or literal Subject and
// bodies are set.
type EmailJob struct {
	To       string         `json:"to"`
	OrderID  string         `json:"order_id,omitempty"`
	Subject  string         `json:"subject,omitempty"`
	Text     string         `json:"text,omitempty"`
	HTML     string         `json:"html,omitempty"`
	Template string         `json:"template,omitempty"`
	Data     map[string]any `json:"data,omitempty"`
	Tags     []string       `json:"tags,omitempty"`
}

// OrderJob builds a templated job for an order notification. The template
// name doubles as the Mailgun tag.
func OrderJob(to, orderID, template string, data map[string]any) EmailJob {
	return EmailJob{
		To:       to,
		OrderID:  orderID,
		Template: template,
		Data:     data,
		Tags:     []string{"order", template},
	}
}
