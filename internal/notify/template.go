package notify

import (
	"bytes"
	"html/template"
)

const confirmationSubject = "Your Appointment Confirmation"

var confirmationTmpl = template.Must(template.New("confirmation").Parse(`
<div style="font-family: sans-serif; max-width: 600px; margin: 0 auto;">
  <h1 style="color: #4f46e5;">Appointment Confirmed!</h1>
  <p>Hello {{with .User.FirstName}}{{.}}{{else}}there{{end}},</p>
  <p>Your appointment has been successfully scheduled:</p>
  <div style="background-color: #f3f4f6; padding: 16px; border-radius: 8px; margin: 20px 0;">
    <p><strong>Service:</strong> {{.Appointment.ServiceName}}</p>
    <p><strong>Date:</strong> {{.Appointment.ScheduledDate}}</p>
    <p><strong>Time:</strong> {{.Appointment.ScheduledTime}}</p>
    <p><strong>Location:</strong> {{.Appointment.Address}}</p>
  </div>
  <p>Our mechanic will arrive at the scheduled time. You'll receive a notification when they're on their way.</p>
  <p>If you need to reschedule or cancel, please contact us at least 2 hours before your appointment.</p>
  <p>Thank you for choosing {{.Brand}}!</p>
</div>
`))

func renderConfirmation(c Confirmation, brand string) (string, error) {
	var buf bytes.Buffer
	err := confirmationTmpl.Execute(&buf, struct {
		Confirmation
		Brand string
	}{c, brand})
	return buf.String(), err
}
