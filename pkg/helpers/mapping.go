package helpers

import (
	"fmt"
	"strings"

	"github.com/oksasatya/pastryjoy-api/pkg/mailer"
	mailtpl "github.com/oksasatya/pastryjoy-api/pkg/mailer/templates"
)

// SubjectFor is the fallback subject used when a job carries neither a
// subject nor a template that renders one.
func SubjectFor(job *mailer.EmailJob) string {
	id := fmt.Sprintf("%v", job.Data["OrderID"])
	switch strings.ToLower(job.Template) {
	case mailtpl.OrderCreated:
		return "Order " + id + " received"
	case mailtpl.OrderStatusChanged:
		return "Order " + id + " updated"
	default:
		return "Notification"
	}
}

func EnsureRecipientAndEmail(job *mailer.EmailJob) {
	if job.Data == nil {
		job.Data = map[string]any{}
	}
	if v, ok := job.Data["Email"]; !ok || fmt.Sprintf("%v", v) == "" {
		job.Data["Email"] = job.To
	}
	if v, ok := job.Data["RecipientEmail"]; !ok || fmt.Sprintf("%v", v) == "" {
		job.Data["RecipientEmail"] = job.To
	}
}

// RenderJob fills in recipient data, localizes times and renders the job's
// template. Jobs without a template keep their literal subject and bodies.
func RenderJob(job *mailer.EmailJob, timezone string) (subject, text, html string, err error) {
	EnsureRecipientAndEmail(job)
	LocalizeTimes(job.Data, timezone)

	subject, text, html = job.Subject, job.Text, job.HTML
	if job.Template != "" {
		subject, text, html, err = mailtpl.Render(strings.ToLower(job.Template), job.Data)
		if err != nil {
			return "", "", "", fmt.Errorf("render %s: %w", job.Template, err)
		}
	}
	if strings.TrimSpace(subject) == "" {
		subject = SubjectFor(job)
	}
	return subject, text, html, nil
}
