package services

import (
	"bytes"
	"html/template"
	"log"

	"github.com/go-mail/mail/v2"

	"mi-todoes/backend/internal/config"
)

// MailService はパスワードリセットメールの送信を扱います。
type MailService struct {
	dialer *mail.Dialer
	sender string
}

// NewMailService は新しいMailServiceを作成します。
func NewMailService(cfg config.SMTPConfig) *MailService {
	dialer := mail.NewDialer(cfg.Host, cfg.Port, cfg.User, cfg.Pass)
	return &MailService{dialer: dialer, sender: cfg.Sender}
}

var resetMailTemplate = template.Must(template.New("reset").Parse(`
{{define "subject"}}パスワードリセット{{end}}
{{define "plainBody"}}以下のURLからパスワードを再設定してください。
{{.ResetURL}}

このリンクの有効期限は1時間です。{{end}}
{{define "htmlBody"}}<p>以下のURLからパスワードを再設定してください。</p>
<p><a href="{{.ResetURL}}">{{.ResetURL}}</a></p>
<p>このリンクの有効期限は1時間です。</p>{{end}}
`))

// SendPasswordReset はリセットURL入りのメールを送信します。
// SMTPが一時的に落ちていても最大3回までリトライします。
func (m *MailService) SendPasswordReset(to, resetURL string) error {
	data := struct{ ResetURL string }{ResetURL: resetURL}

	var subject, plainBody, htmlBody bytes.Buffer
	if err := resetMailTemplate.ExecuteTemplate(&subject, "subject", data); err != nil {
		return err
	}
	if err := resetMailTemplate.ExecuteTemplate(&plainBody, "plainBody", data); err != nil {
		return err
	}
	if err := resetMailTemplate.ExecuteTemplate(&htmlBody, "htmlBody", data); err != nil {
		return err
	}

	msg := mail.NewMessage()
	msg.SetHeader("To", to)
	msg.SetHeader("From", m.sender)
	msg.SetHeader("Subject", subject.String())
	msg.SetBody("text/plain", plainBody.String())
	msg.AddAlternative("text/html", htmlBody.String())

	var err error
	for i := 0; i < 3; i++ {
		err = m.dialer.DialAndSend(msg)
		if err == nil {
			return nil
		}
	}
	log.Printf("Failed to send reset email: %v", err)
	return err
}
