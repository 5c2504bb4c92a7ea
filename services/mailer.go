package services

import (
	"context"
	"encoding/json"
	"fmt"
	"net"
	"net/smtp"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/kendall-kelly/kendalls-studio-api/config"
	"github.com/kendall-kelly/kendalls-studio-api/metrics"
	"github.com/segmentio/kafka-go"
	"github.com/sirupsen/logrus"
)

// Mail is a plain-text message to one recipient
type Mail struct {
	To      string `json:"to"`
	Subject string `json:"subject"`
	Body    string `json:"body"`
}

// Mailer delivers mail synchronously, without retries
type Mailer interface {
	Send(ctx context.Context, mail Mail) error
}

// NewMailer builds the transport selected by MAIL_TRANSPORT
func NewMailer(cfg *config.Config) (Mailer, error) {
	switch cfg.MailTransport {
	case "", "log":
		return NewLogMailer(), nil
	case "smtp":
		return NewSMTPMailer(cfg), nil
	case "kafka":
		return NewKafkaMailer(cfg.KafkaBrokers, cfg.KafkaMailTopic, cfg.MailFrom), nil
	default:
		return nil, fmt.Errorf("unknown mail transport %q", cfg.MailTransport)
	}
}

func recordSend(transport string, err error) error {
	metrics.MailsSent.WithLabelValues(transport, strconv.FormatBool(err == nil)).Inc()
	return err
}

// LogMailer writes mail to the log instead of sending it
type LogMailer struct{}

func NewLogMailer() *LogMailer {
	return &LogMailer{}
}

func (m *LogMailer) Send(ctx context.Context, mail Mail) error {
	logrus.WithFields(logrus.Fields{
		"to":      mail.To,
		"subject": mail.Subject,
	}).Info(mail.Body)
	return recordSend("log", nil)
}

type smtpSendFunc func(addr string, a smtp.Auth, from string, to []string, msg []byte) error

// SMTPMailer sends mail through an SMTP relay
type SMTPMailer struct {
	addr string
	from string
	auth smtp.Auth
	send smtpSendFunc
}

func NewSMTPMailer(cfg *config.Config) *SMTPMailer {
	var auth smtp.Auth
	if cfg.SMTPUsername != "" {
		auth = smtp.PlainAuth("", cfg.SMTPUsername, cfg.SMTPPassword, cfg.SMTPHost)
	}
	return &SMTPMailer{
		addr: net.JoinHostPort(cfg.SMTPHost, cfg.SMTPPort),
		from: cfg.MailFrom,
		auth: auth,
		send: smtp.SendMail,
	}
}

func (m *SMTPMailer) message(mail Mail) []byte {
	var b strings.Builder
	fmt.Fprintf(&b, "From: %s\r\n", m.from)
	fmt.Fprintf(&b, "To: %s\r\n", mail.To)
	fmt.Fprintf(&b, "Subject: %s\r\n", mail.Subject)
	fmt.Fprintf(&b, "Date: %s\r\n", time.Now().Format(time.RFC1123Z))
	b.WriteString("MIME-Version: 1.0\r\n")
	b.WriteString("Content-Type: text/plain; charset=UTF-8\r\n\r\n")
	b.WriteString(strings.ReplaceAll(mail.Body, "\n", "\r\n"))
	return []byte(b.String())
}

func (m *SMTPMailer) Send(ctx context.Context, mail Mail) error {
	if err := m.send(m.addr, m.auth, m.from, []string{mail.To}, m.message(mail)); err != nil {
		return recordSend("smtp", fmt.Errorf("failed to send mail via smtp: %w", err))
	}
	return recordSend("smtp", nil)
}

type messageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// KafkaMailer publishes mail to a topic consumed by an external mail relay
type KafkaMailer struct {
	w    messageWriter
	from string
}

func NewKafkaMailer(brokers []string, topic, from string) *KafkaMailer {
	return &KafkaMailer{
		w: &kafka.Writer{
			Addr:         kafka.TCP(brokers...),
			Topic:        topic,
			Balancer:     &kafka.Hash{},
			RequiredAcks: kafka.RequireAll,
		},
		from: from,
	}
}

type kafkaMail struct {
	From string `json:"from"`
	Mail
}

func (m *KafkaMailer) Send(ctx context.Context, mail Mail) error {
	value, err := json.Marshal(kafkaMail{From: m.from, Mail: mail})
	if err != nil {
		return recordSend("kafka", fmt.Errorf("failed to encode mail: %w", err))
	}

	err = m.w.WriteMessages(ctx, kafka.Message{
		Key:   []byte(mail.To),
		Value: value,
		Time:  time.Now(),
	})
	if err != nil {
		return recordSend("kafka", fmt.Errorf("failed to publish mail: %w", err))
	}
	return recordSend("kafka", nil)
}

// Close flushes and closes the underlying writer
func (m *KafkaMailer) Close() error {
	return m.w.Close()
}

// MockMailer records sent mail for tests
type MockMailer struct {
	mu   sync.Mutex
	sent []Mail
	Err  error
}

func NewMockMailer() *MockMailer {
	return &MockMailer{}
}

func (m *MockMailer) Send(ctx context.Context, mail Mail) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Err != nil {
		return m.Err
	}
	m.sent = append(m.sent, mail)
	return nil
}

// Sent returns a copy of every mail sent so far
func (m *MockMailer) Sent() []Mail {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]Mail(nil), m.sent...)
}
