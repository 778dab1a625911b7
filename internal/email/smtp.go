package email

import (
	"bytes"
	"encoding/base64"
	"fmt"
	"log"
	"net/smtp"
	"strconv"
	"text/template"
)

type Config struct {
	Host     string
	Port     int
	User     string
	Pass     string
	FromName string
	FromAddr string
}

func (c *Config) Send(to, subject, body string, html bool) error {
	// Validação de config e destinatário
	if to == "" {
		log.Printf("[email] erro de config: destinatário (to) vazio")
		return fmt.Errorf("destinatário de e-mail vazio")
	}
	if c.Host == "" {
		log.Printf("[email] erro de config: SMTP host vazio (destinatário=%s)", to)
		return fmt.Errorf("SMTP host não configurado")
	}
	if c.FromAddr == "" {
		log.Printf("[email] erro de config: SMTP FromAddr vazio (destinatário=%s)", to)
		return fmt.Errorf("SMTP remetente (From) não configurado")
	}
	port := c.Port
	if port == 0 {
		port = 25
	}
	addr := fmt.Sprintf("%s:%d", c.Host, port)
	log.Printf("[email] enviando para %s assunto=%q via %s (from=%s)", to, subject, addr, c.FromAddr)
	from := c.FromAddr
	if c.FromName != "" {
		from = fmt.Sprintf("%s <%s>", c.FromName, c.FromAddr)
	}
	headers := map[string]string{
		"From":         from,
		"To":           to,
		"Subject":      subject,
		"Content-Type": "text/plain; charset=UTF-8",
	}
	if html {
		headers["Content-Type"] = "text/html; charset=UTF-8"
	}
	var buf bytes.Buffer
	for k, v := range headers {
		buf.WriteString(k + ": " + v + "\r\n")
	}
	buf.WriteString("\r\n")
	buf.WriteString(body)
	err := smtp.SendMail(addr, c.authForSend(), c.FromAddr, []string{to}, buf.Bytes())
	if err != nil {
		log.Printf("[email] falha ao enviar para %s assunto=%q: %v", to, subject, err)
		return err
	}
	log.Printf("[email] enviado com sucesso para %s assunto=%q", to, subject)
	return nil
}

// authForSend returns nil when User is empty (e.g. MailHog), so no AUTH is sent.
func (c *Config) authForSend() smtp.Auth {
	if c.User != "" {
		return smtp.PlainAuth("", c.User, c.Pass, c.Host)
	}
	return nil
}

// LogConfigSummary loga um resumo da config SMTP (sem senha) para diagnóstico.
func (c *Config) LogConfigSummary() {
	auth := "não"
	if c.User != "" {
		auth = "sim (user=" + c.User + ")"
	}
	log.Printf("[email] config SMTP: host=%s port=%d from=%q auth=%s", c.Host, c.Port, c.FromAddr, auth)
	if c.Host == "" || c.FromAddr == "" {
		log.Printf("[email] aviso: host ou from vazio; envios podem falhar")
	}
}

// SendSessaoConfirmacao envia a confirmação de agendamento ao cliente.
// dataHora em formato legível (ex.: "12/08/2024 às 14:00").
func (c *Config) SendSessaoConfirmacao(to, clienteNome, sessaoNome, dataHora string) error {
	if to == "" || dataHora == "" {
		log.Printf("[email] SendSessaoConfirmacao: to ou dataHora vazio")
		return fmt.Errorf("to ou dataHora vazio")
	}
	tpl := `Olá, {{.Nome}},

Sua sessão foi agendada com sucesso:

{{.Sessao}}
{{.DataHora}}

Se precisar remarcar ou cancelar, entre em contato com a clínica.

Até breve!
Soul Salutte`
	t, err := template.New("").Parse(tpl)
	if err != nil {
		log.Printf("[email] SendSessaoConfirmacao: erro ao parsear template: %v", err)
		return err
	}
	var b bytes.Buffer
	if err := t.Execute(&b, map[string]string{"Nome": clienteNome, "Sessao": sessaoNome, "DataHora": dataHora}); err != nil {
		log.Printf("[email] SendSessaoConfirmacao: erro ao executar template: %v", err)
		return err
	}
	return c.Send(to, "Sessão agendada - Soul Salutte", b.String(), false)
}

// SendSessaoLembrete envia lembrete por e-mail da sessão do dia seguinte.
func (c *Config) SendSessaoLembrete(to, clienteNome, dataHora string) error {
	tpl := `Olá, {{.Nome}},

Lembrete: você tem uma sessão de fisioterapia amanhã, {{.DataHora}}.

Em caso de imprevisto, avise a clínica com antecedência.

Até lá!
Soul Salutte`
	t, err := template.New("").Parse(tpl)
	if err != nil {
		return err
	}
	var b bytes.Buffer
	if err := t.Execute(&b, map[string]string{"Nome": clienteNome, "DataHora": dataHora}); err != nil {
		return err
	}
	return c.Send(to, "Lembrete de sessão - Soul Salutte", b.String(), false)
}

func PortFromString(s string) int {
	n, err := strconv.Atoi(s)
	_ = err
	return n
}

// SendWithAttachment envia e-mail com anexo PDF (ex.: avaliação exportada).
func (c *Config) SendWithAttachment(to, subject, body string, attachmentName string, attachmentPDF []byte) error {
	if to == "" {
		log.Printf("[email] erro de config: destinatário vazio (anexo)")
		return fmt.Errorf("destinatário de e-mail vazio")
	}
	if c.Host == "" || c.FromAddr == "" {
		log.Printf("[email] erro de config: host ou from vazio (destinatário=%s)", to)
		return fmt.Errorf("SMTP host ou remetente não configurado")
	}
	port := c.Port
	if port == 0 {
		port = 25
	}
	addr := fmt.Sprintf("%s:%d", c.Host, port)
	from := c.FromAddr
	if c.FromName != "" {
		from = fmt.Sprintf("%s <%s>", c.FromName, c.FromAddr)
	}
	boundary := "boundary-soulsalutte-pdf"
	var buf bytes.Buffer
	buf.WriteString("From: " + from + "\r\n")
	buf.WriteString("To: " + to + "\r\n")
	buf.WriteString("Subject: " + subject + "\r\n")
	buf.WriteString("MIME-Version: 1.0\r\n")
	buf.WriteString("Content-Type: multipart/mixed; boundary=" + boundary + "\r\n\r\n")
	buf.WriteString("--" + boundary + "\r\n")
	buf.WriteString("Content-Type: text/plain; charset=UTF-8\r\n\r\n")
	buf.WriteString(body)
	buf.WriteString("\r\n--" + boundary + "\r\n")
	buf.WriteString("Content-Type: application/pdf; name=\"" + attachmentName + "\"\r\n")
	buf.WriteString("Content-Transfer-Encoding: base64\r\n")
	buf.WriteString("Content-Disposition: attachment; filename=\"" + attachmentName + "\"\r\n\r\n")
	// RFC 2045: base64 em MIME deve ter linhas de no máximo 76 caracteres
	encoded := base64.StdEncoding.EncodeToString(attachmentPDF)
	const lineLen = 76
	for i := 0; i < len(encoded); i += lineLen {
		end := i + lineLen
		if end > len(encoded) {
			end = len(encoded)
		}
		buf.WriteString(encoded[i:end] + "\r\n")
	}
	buf.WriteString("\r\n--" + boundary + "--\r\n")
	log.Printf("[email] enviando com anexo para %s assunto=%q via %s", to, subject, addr)
	err := smtp.SendMail(addr, c.authForSend(), c.FromAddr, []string{to}, buf.Bytes())
	if err != nil {
		log.Printf("[email] falha ao enviar anexo para %s assunto=%q: %v", to, subject, err)
		return err
	}
	log.Printf("[email] enviado com anexo para %s assunto=%q", to, subject)
	return nil
}
