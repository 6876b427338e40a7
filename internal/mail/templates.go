package mail

import (
	"fmt"
	"html/template"
)

// VerificationEmail builds the subject and body of the address-confirmation
// message sent after registration.
func VerificationEmail(appURL, name, token string) (subject, body string) {
	link := fmt.Sprintf("%s/verificar-email?token=%s", appURL, token)
	body = fmt.Sprintf(`<html>
<body style="font-family: Arial, sans-serif; max-width: 600px; margin: 0 auto;">
<h2>Bem-vindo ao Dedicandos!</h2>
<p>Olá %s,</p>
<p>Obrigado por se cadastrar. Clique no link abaixo para verificar seu email:</p>
<p><a href="%s">Verificar Email</a></p>
<p>Ou copie e cole este link no navegador:</p>
<p>%s</p>
<p>Se você não se cadastrou, ignore este email.</p>
</body>
</html>`, template.HTMLEscapeString(name), link, link)
	return "Verifique seu email - Dedicandos", body
}

// PasswordResetEmail builds the subject and body of the reset-link message.
// The link expires after one hour.
func PasswordResetEmail(appURL, name, token string) (subject, body string) {
	link := fmt.Sprintf("%s/resetar-senha?token=%s", appURL, token)
	body = fmt.Sprintf(`<html>
<body style="font-family: Arial, sans-serif; max-width: 600px; margin: 0 auto;">
<h2>Recuperação de Senha</h2>
<p>Olá %s,</p>
<p>Recebemos uma solicitação para redefinir sua senha. Clique no link abaixo:</p>
<p><a href="%s">Redefinir Senha</a></p>
<p>Ou copie e cole este link no navegador:</p>
<p>%s</p>
<p>Este link expira em 1 hora. Se você não solicitou esta alteração, ignore este email.</p>
</body>
</html>`, template.HTMLEscapeString(name), link, link)
	return "Recuperação de Senha - Dedicandos", body
}
