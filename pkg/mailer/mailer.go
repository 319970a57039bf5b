package mailer

import (
	"fmt"
	"strings"

	"wms-core/config"

	"github.com/rs/zerolog"
	"gopkg.in/gomail.v2"
)

// Mailer sends shipment and delivery notifications. With no SMTP host
// configured every send is a logged no-op, so the workflows never depend on
// a mail server being up.
type Mailer struct {
	dialer *gomail.Dialer
	from   string
	to     []string
	log    zerolog.Logger
}

func New(log zerolog.Logger) *Mailer {
	m := &Mailer{
		from: config.MailFrom,
		log:  log.With().Str("component", "mailer").Logger(),
	}
	for _, addr := range strings.Split(config.MailTo, ",") {
		if addr = strings.TrimSpace(addr); addr != "" {
			m.to = append(m.to, addr)
		}
	}
	if config.SMTPHost != "" {
		m.dialer = gomail.NewDialer(config.SMTPHost, config.SMTPPort, config.SMTPUser, config.SMTPPassword)
	}
	return m
}

func (m *Mailer) OrderShipped(orderNo, customerCode, driverName string) {
	subject := fmt.Sprintf("[WMS] Order %s shipped", orderNo)
	body := fmt.Sprintf(
		"<p>Order <b>%s</b> for customer <b>%s</b> left the warehouse with driver %s.</p>",
		orderNo, customerCode, driverName)
	m.send(subject, body)
}

func (m *Mailer) OrderDelivered(orderNo, customerCode, receiverName string) {
	subject := fmt.Sprintf("[WMS] Order %s delivered", orderNo)
	body := fmt.Sprintf(
		"<p>Order <b>%s</b> for customer <b>%s</b> was received by %s.</p>",
		orderNo, customerCode, receiverName)
	m.send(subject, body)
}

func (m *Mailer) send(subject, body string) {
	if m.dialer == nil || len(m.to) == 0 {
		m.log.Debug().Str("subject", subject).Msg("mail disabled, skipping")
		return
	}

	msg := gomail.NewMessage()
	msg.SetHeader("From", m.from)
	msg.SetHeader("To", m.to...)
	msg.SetHeader("Subject", subject)
	msg.SetBody("text/html", body)

	if err := m.dialer.DialAndSend(msg); err != nil {
		m.log.Error().Err(err).Str("subject", subject).Msg("mail send failed")
		return
	}
	m.log.Info().Str("subject", subject).Msg("mail sent")
}
