// internal/adapters/out/mail/invitation_mailer.go
package mail

import (
	"context"
	"fmt"
	"html"
	"strings"
)

// InvitationMailer は usecase.InvitationMailerPort の具象実装で、
// 内部で EmailClient を利用してメール送信を行います。
//
// 招待リンクの形式: <appOrigin>/register?token=<token>
// リンクに email パラメータは含めません。登録フォームのアドレスは token から
// サーバ側で解決します（クライアントによる差し替え防止）。
type InvitationMailer struct {
	client      EmailClient
	fromAddress string
	appOrigin   string // 例: "https://app.clubhouse.run"
}

// NewInvitationMailer constructs the mailer.
//
//   - client      : SendGrid などの具体的な EmailClient 実装
//   - fromAddress : 送信元メールアドレス
//   - appOrigin   : "https://app.clubhouse.run" のようなアプリのオリジン
func NewInvitationMailer(client EmailClient, fromAddress, appOrigin string) *InvitationMailer {
	return &InvitationMailer{
		client:      client,
		fromAddress: fromAddress,
		appOrigin:   strings.TrimRight(appOrigin, "/"),
	}
}

// buildRegisterURL は招待メール内に記載する URL を組み立てます。
// token は base64url なのでエスケープ不要。
func (m *InvitationMailer) buildRegisterURL(token string) string {
	return fmt.Sprintf("%s/register?token=%s", m.appOrigin, strings.TrimSpace(token))
}

// SendInvitationEmail dispatches the invitation (or reminder) message.
func (m *InvitationMailer) SendInvitationEmail(ctx context.Context, toEmail, token string) error {
	link := m.buildRegisterURL(token)

	subject := "You're invited to join the club"

	text := fmt.Sprintf(
		`You have been invited to join our running club.

Open the link below to set your password and complete your registration:

  %s

The link is valid for 30 days. If you did not expect this email, you can
safely ignore it.

--
Clubhouse`,
		link,
	)

	return m.send(ctx, toEmail, subject, link, text)
}

// SendPasswordResetEmail dispatches the credential-reset link for an address
// that already belongs to a full member.
func (m *InvitationMailer) SendPasswordResetEmail(ctx context.Context, toEmail, resetLink string) error {
	subject := "Reset your club password"

	text := fmt.Sprintf(
		`An invitation was requested for this address, but you already have an
account. You can reset your password here:

  %s

If you did not expect this email, you can safely ignore it.

--
Clubhouse`,
		resetLink,
	)

	return m.send(ctx, toEmail, subject, resetLink, text)
}

// SendVerificationEmail dispatches the re-verification link for an account
// that never finished verifying its own address.
func (m *InvitationMailer) SendVerificationEmail(ctx context.Context, toEmail, verifyLink string) error {
	subject := "Verify your club account"

	text := fmt.Sprintf(
		`Your club account is still waiting for email verification. Finish it
here:

  %s

If you did not expect this email, you can safely ignore it.

--
Clubhouse`,
		verifyLink,
	)

	return m.send(ctx, toEmail, subject, verifyLink, text)
}

func (m *InvitationMailer) send(ctx context.Context, toEmail, subject, link, text string) error {
	htmlBody := fmt.Sprintf(
		`<p>%s</p><p><a href="%s">%s</a></p>`,
		html.EscapeString(subject),
		link,
		link,
	)
	_, err := m.client.Send(ctx, m.fromAddress, strings.TrimSpace(toEmail), subject, htmlBody, text)
	return err
}
