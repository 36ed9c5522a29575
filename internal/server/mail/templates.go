package mail

import (
	"bytes"
	"fmt"
	"net/url"
	"text/template"
	"time"
)

var verificationTmpl = template.Must(template.New("verification").Parse(
	`Hi{{with .FirstName}} {{.}}{{end}},

Your TeenBudget verification code is {{.Code}}.
It is valid for {{.Minutes}} minutes.

If you did not sign up, you can ignore this email.
`))

var resetTmpl = template.Must(template.New("reset").Parse(
	`Hi {{.FirstName}},

Someone asked to reset your TeenBudget password. Open the link below to choose a new one:

{{.Link}}

The link is valid for {{.Minutes}} minutes. If it was not you, ignore this email.
`))

func render(t *template.Template, data any) (string, error) {
	var buf bytes.Buffer
	if err := t.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("render %s: %w", t.Name(), err)
	}
	return buf.String(), nil
}

// VerificationMessage builds the email carrying a signup code.
func VerificationMessage(to, firstName, code string, validity time.Duration) (Message, error) {
	body, err := render(verificationTmpl, struct {
		FirstName string
		Code      string
		Minutes   int
	}{firstName, code, int(validity.Minutes())})
	if err != nil {
		return Message{}, err
	}
	return Message{To: to, Subject: "Your TeenBudget verification code", Body: body}, nil
}

// ResetLink appends the transport token to baseURL as the token query
// parameter.
func ResetLink(baseURL, token string) (string, error) {
	u, err := url.Parse(baseURL)
	if err != nil {
		return "", fmt.Errorf("reset link base url: %w", err)
	}
	q := u.Query()
	q.Set("token", token)
	u.RawQuery = q.Encode()
	return u.String(), nil
}

// ResetMessage builds the email carrying a password reset link.
func ResetMessage(to, firstName, baseURL, token string, validity time.Duration) (Message, error) {
	link, err := ResetLink(baseURL, token)
	if err != nil {
		return Message{}, err
	}
	body, err := render(resetTmpl, struct {
		FirstName string
		Link      string
		Minutes   int
	}{firstName, link, int(validity.Minutes())})
	if err != nil {
		return Message{}, err
	}
	return Message{To: to, Subject: "Reset your TeenBudget password", Body: body}, nil
}
