package email

import (
	"fmt"
	"html/template"
	"strings"
	"time"
)

// Templates render the two transactional emails. Each HTML body contains
// exactly one actionable link; usernames and links are escaped.

var verificationHTML = template.Must(template.New("verify").Parse(`<!DOCTYPE html><html lang="en"><head><meta charset="utf-8">
<title>Verify your email</title><meta name="color-scheme" content="light dark">
<style>
  body { margin:0; padding:0; background:#f7f7f7; color:#111; font:16px/1.5 system-ui,-apple-system,Segoe UI,Roboto,Arial,sans-serif; }
  .container { max-width:600px; margin:0 auto; background:#fff; border-radius:8px; overflow:hidden; border:1px solid #ececec; }
  .header { text-align:center; padding:20px; background-color:#0c513f; }
  .header img { max-width:150px; height:auto; display:block; margin:0 auto; }
  .content { padding:28px; text-align:center; }
  h1 { font-size:26px; margin:0 0 8px; color:#0c513f; }
  .hello { font-size:18px; margin:6px 0 16px; }
  p { margin:0 0 12px; }
  .button { background-color:#0c513f; color:#fff; padding:12px 20px; text-decoration:none; border-radius:6px; display:inline-block; margin:18px 0; }
  .muted { color:#666; font-size:13px; }
  .fallback { word-break:break-all; font-size:13px; color:#333; }
  .footer { background:#fafafa; padding:16px; text-align:center; font-size:12px; color:#666; border-top:1px solid #ececec; }
</style>
</head><body>
  <div class="container">
    <div class="header">
      <img src="https://schoolchow.com/verifyemail/logo.png" alt="School Chow">
    </div>
    <div class="content">
      <h1>Verify your email</h1>
      <p class="hello">Hi {{.Name}},</p>
      <p>Please confirm your email address to complete your School Chow account setup.</p>
      <p><a class="button" href="{{.Link}}">Verify email</a></p>
      <p class="muted">If the button doesn&rsquo;t work, copy and paste this link into your browser:</p>
      <p class="fallback">{{.Link}}</p>
      <p class="muted">If you didn&rsquo;t create an account, you can ignore this message.</p>
    </div>
    <div class="footer">
      School Chow &bull; support@schoolchow.com &bull; &copy; {{.Year}}
    </div>
  </div>
</body></html>`))

var resetHTML = template.Must(template.New("reset").Parse(`<!DOCTYPE html><html lang="en"><head><meta charset="utf-8">
<title>Reset your password</title><meta name="color-scheme" content="light dark">
<style>
  body { margin:0; padding:0; background:#f7f7f7; color:#111; font:16px/1.5 system-ui,-apple-system,Segoe UI,Roboto,Arial,sans-serif; }
  .container { max-width:600px; margin:0 auto; background:#fff; border-radius:8px; overflow:hidden; border:1px solid #ececec; }
  .header { text-align:center; padding:20px; background-color:#0c513f; }
  .header img { max-width:150px; height:auto; display:block; margin:0 auto; }
  .content { padding:28px; text-align:center; }
  h1 { font-size:26px; margin:0 0 8px; color:#0c513f; }
  .hello { font-size:18px; margin:6px 0 16px; }
  p { margin:0 0 12px; }
  .button { background-color:#0c513f; color:#fff; padding:12px 20px; text-decoration:none; border-radius:6px; display:inline-block; margin:18px 0; }
  .muted { color:#666; font-size:13px; }
  .fallback { word-break:break-all; font-size:13px; color:#333; }
  .footer { background:#fafafa; padding:16px; text-align:center; font-size:12px; color:#666; border-top:1px solid #ececec; }
</style>
</head><body>
  <div class="container">
    <div class="header">
      <img src="https://schoolchow.com/verifyemail/logo.png" alt="School Chow">
    </div>
    <div class="content">
      <h1>Reset your password</h1>
      <p class="hello">Hi {{.Name}},</p>
      <p>You requested a password reset for your School Chow account.</p>
      <p><a class="button" href="{{.Link}}">Reset password</a></p>
      <p class="muted">If the button doesn&rsquo;t work, copy and paste this link into your browser:</p>
      <p class="fallback">{{.Link}}</p>
      <p class="muted">If you didn&rsquo;t request this, you can ignore this message.</p>
    </div>
    <div class="footer">
      School Chow &bull; support@schoolchow.com &bull; &copy; {{.Year}}
    </div>
  </div>
</body></html>`))

type templateData struct {
	Name string
	Link string
	Year int
}

func displayName(name string) string {
	name = strings.TrimSpace(name)
	if name == "" {
		return "there"
	}
	return name
}

// VerificationEmail renders the verification message for the given recipient.
func VerificationEmail(to, link, name string) (Message, error) {
	data := templateData{Name: displayName(name), Link: link, Year: time.Now().Year()}
	var html strings.Builder
	if err := verificationHTML.Execute(&html, data); err != nil {
		return Message{}, fmt.Errorf("render verification email: %w", err)
	}
	text := fmt.Sprintf(`Verify your email

Hi %s,

Please confirm your email address to complete your School Chow account setup.

%s

If you didn't create an account, you can ignore this message.

School Chow - support@schoolchow.com`, data.Name, link)
	return Message{To: to, Subject: "Verify your email", HTML: html.String(), Text: text}, nil
}

// PasswordResetEmail renders the reset message for the given recipient.
func PasswordResetEmail(to, link, name string) (Message, error) {
	data := templateData{Name: displayName(name), Link: link, Year: time.Now().Year()}
	var html strings.Builder
	if err := resetHTML.Execute(&html, data); err != nil {
		return Message{}, fmt.Errorf("render reset email: %w", err)
	}
	text := fmt.Sprintf(`Reset your password

Hi %s,

You requested a password reset for your School Chow account.

%s

If you didn't request this, you can ignore this message.

School Chow - support@schoolchow.com`, data.Name, link)
	return Message{To: to, Subject: "Reset your password", HTML: html.String(), Text: text}, nil
}
