package mail

import "log"

// NewInvitationMailerWithSendGrid は、SendGrid を使った InvitationMailer を
// 生成します。apiKey は DI 側で（Secret Manager または環境変数から）解決済み
// の値を渡してください。
func NewInvitationMailerWithSendGrid(apiKey, fromAddr, fromName, appOrigin string) *InvitationMailer {
	if apiKey == "" {
		log.Printf("[mail] WARN: sendgrid api key is empty. InvitationMailer will fail to send mail.")
	}
	if fromAddr == "" {
		log.Printf("[mail] WARN: from address is empty. InvitationMailer will fail to send mail.")
	}
	if appOrigin == "" {
		appOrigin = "https://app.clubhouse.run"
		log.Printf("[mail] INFO: app origin is empty. default=%s", appOrigin)
	}

	client := NewSendGridClient(apiKey, fromName)
	mailer := NewInvitationMailer(client, fromAddr, appOrigin)

	log.Printf("[mail] InvitationMailerWithSendGrid initialized. from=%s origin=%s",
		fromAddr, appOrigin)

	return mailer
}
