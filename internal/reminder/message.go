package reminder

import (
	"bytes"
	"fmt"
	"html/template"
	"strings"
	"time"

	"github.com/todolist/todolist/internal/model"
)

const dueDateLayout = "2006-01-02 15:04 MST"

var bodyTemplate = template.Must(template.New("reminder").Parse(`<!DOCTYPE html>
<html>
<body style="font-family: Arial, sans-serif; color: #222;">
  <p>Hello{{if .Username}}, {{.Username}}{{end}}!</p>
  {{if .Overdue}}
  <p>Your task is <strong>overdue</strong>.</p>
  {{else}}
  <p>Your task is due soon.</p>
  {{end}}
  <div style="border: 1px solid #ddd; padding: 12px; border-radius: 4px;">
    <h3 style="margin-top: 0;">{{.Title}}</h3>
    {{if .Description}}<p>{{.Description}}</p>{{end}}
    <p><strong>Due:</strong> {{.DueDate}}</p>
  </div>
  <p>Do not forget to complete it in time.</p>
</body>
</html>
`))

type bodyView struct {
	Username    string
	Title       string
	Description string
	DueDate     string
	Overdue     bool
}

// compose builds the subject and HTML body of a reminder. Task and user
// fields are HTML-escaped by the template.
func compose(task *model.Task, user *model.User, now time.Time) (string, string, error) {
	subject := fmt.Sprintf("Reminder: task %q is due soon or overdue", singleLine(task.Title))

	var buf bytes.Buffer
	err := bodyTemplate.Execute(&buf, bodyView{
		Username:    user.Username,
		Title:       task.Title,
		Description: task.Description,
		DueDate:     task.DueDate.UTC().Format(dueDateLayout),
		Overdue:     task.IsOverdue(now),
	})
	if err != nil {
		return "", "", fmt.Errorf("render reminder: %w", err)
	}

	return subject, buf.String(), nil
}

// singleLine keeps header values on one line.
func singleLine(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
