package mailer

import (
	"bytes"
	"fmt"
	"html/template"
	"time"
)

type PasswordResetData struct {
	FullName string
	ResetURL string
	Expiry   time.Duration
	AppName  string
}

type VerificationData struct {
	FullName  string
	VerifyURL string
	Expiry    time.Duration
	AppName   string
}

var passwordResetTmpl = template.Must(template.New("password_reset").Parse(`
<p>Hi {{.FullName}},</p>
<p>We received a request to reset the password for your {{.AppName}} account.</p>
<p><a href="{{.ResetURL}}">Reset your password</a></p>
<p>The link expires in {{.Expiry}}. If you did not request a reset you can ignore this email.</p>
`))

// The three verification variants differ only in subject and copy; the token
// lifecycle behind them is identical.
var verificationTmpls = map[string]*template.Template{
	"initial": template.Must(template.New("verification_initial").Parse(`
<p>Hi {{.FullName}},</p>
<p>Welcome to {{.AppName}}! Please confirm your email address to activate your account.</p>
<p><a href="{{.VerifyURL}}">Verify your email</a></p>
<p>The link expires in {{.Expiry}}.</p>
`)),
	"resend": template.Must(template.New("verification_resend").Parse(`
<p>Hi {{.FullName}},</p>
<p>Here is the new verification link you asked for. Any previous link no longer works.</p>
<p><a href="{{.VerifyURL}}">Verify your email</a></p>
<p>The link expires in {{.Expiry}}.</p>
`)),
	"login-reminder": template.Must(template.New("verification_login_reminder").Parse(`
<p>Hi {{.FullName}},</p>
<p>You tried to sign in to {{.AppName}}, but your email address has not been confirmed yet.</p>
<p><a href="{{.VerifyURL}}">Verify your email</a> to finish setting up your account.</p>
<p>The link expires in {{.Expiry}}.</p>
`)),
}

var verificationSubjects = map[string]string{
	"initial":        "Please verify your email address",
	"resend":         "Your new verification link",
	"login-reminder": "Verify your email to sign in",
}

func RenderPasswordReset(data PasswordResetData) (subject, htmlBody string, err error) {
	var buf bytes.Buffer
	if err := passwordResetTmpl.Execute(&buf, data); err != nil {
		return "", "", fmt.Errorf("failed to render password reset email: %w", err)
	}
	return "Password Reset Request", buf.String(), nil
}

func RenderVerification(kind string, data VerificationData) (subject, htmlBody string, err error) {
	tmpl, ok := verificationTmpls[kind]
	if !ok {
		return "", "", fmt.Errorf("unknown verification email kind: %q", kind)
	}
	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, data); err != nil {
		return "", "", fmt.Errorf("failed to render verification email: %w", err)
	}
	return verificationSubjects[kind], buf.String(), nil
}
