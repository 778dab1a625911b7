package reminder

import (
	"context"
	"log"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/lucasxpaire/soulsalutte/internal/repo"
	"github.com/lucasxpaire/soulsalutte/internal/whatsapp"
)

// WhatsAppSender sends a reminder to a phone number.
type WhatsAppSender interface {
	SendReminder(phone, clienteNome, dateStr, timeStr string) error
}

// EmailSender sends a reminder e-mail.
type EmailSender interface {
	SendSessaoLembrete(to, clienteNome, dataHora string) error
}

// SessaoLister returns sessions for reminder on a given date. Used in tests
// with a mock; in production pass nil to use repo.
type SessaoLister interface {
	ListSessoesParaLembrete(ctx context.Context, pool *pgxpool.Pool, date time.Time) ([]repo.SessaoLembreteRow, error)
}

// SendSessaoReminders loads scheduled sessions for the given date (tomorrow
// in practice) and sends one reminder per session: WhatsApp when the client
// has a phone, e-mail otherwise. Failures per recipient are logged and do not
// stop the rest.
func SendSessaoReminders(ctx context.Context, pool *pgxpool.Pool, date time.Time, wa WhatsAppSender, mail EmailSender) (sent int, skipped int) {
	return SendSessaoRemindersWithLister(ctx, pool, date, wa, mail, nil)
}

// SendSessaoRemindersWithLister is like SendSessaoReminders but accepts an
// optional lister for tests. If lister is nil, repo is used (and pool must be non-nil).
func SendSessaoRemindersWithLister(ctx context.Context, pool *pgxpool.Pool, date time.Time, wa WhatsAppSender, mail EmailSender, lister SessaoLister) (sent int, skipped int) {
	if pool == nil && lister == nil {
		log.Printf("[reminder] pool is nil and no lister, skipping")
		return 0, 0
	}
	var rows []repo.SessaoLembreteRow
	var err error
	if lister != nil {
		rows, err = lister.ListSessoesParaLembrete(ctx, pool, date)
	} else {
		rows, err = repo.ListSessoesParaLembrete(ctx, pool, date)
	}
	if err != nil {
		log.Printf("[reminder] ListSessoesParaLembrete: %v", err)
		return 0, 0
	}
	if wa == nil && mail == nil {
		log.Printf("[reminder] nenhum canal configurado, would send %d reminders", len(rows))
		return 0, len(rows)
	}
	dateStr := date.Format("02/01/2006")
	for _, r := range rows {
		timeStr := r.Inicio.Format("15:04")
		switch {
		case wa != nil && r.Telefone != "":
			if err := wa.SendReminder(r.Telefone, r.ClienteNome, dateStr, timeStr); err != nil {
				log.Printf("[reminder] whatsapp failed sessao=%s phone=%s: %v", r.SessaoID, r.Telefone, err)
				skipped++
				continue
			}
		case mail != nil && r.Email != "":
			if err := mail.SendSessaoLembrete(r.Email, r.ClienteNome, dateStr+" às "+timeStr); err != nil {
				log.Printf("[reminder] email failed sessao=%s to=%s: %v", r.SessaoID, r.Email, err)
				skipped++
				continue
			}
		default:
			skipped++
			continue
		}
		sent++
		log.Printf("[reminder] sent sessao=%s cliente=%s", r.SessaoID, r.ClienteID)
	}
	return sent, skipped
}

// DefaultWhatsAppSender returns a whatsapp.Client from the given config, or nil if not configured.
func DefaultWhatsAppSender(accountSid, authToken, from string) WhatsAppSender {
	if accountSid == "" || authToken == "" || from == "" {
		return nil
	}
	return whatsapp.NewClient(whatsapp.Config{
		AccountSid: accountSid,
		AuthToken:  authToken,
		From:       from,
	})
}
