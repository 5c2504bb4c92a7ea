package services

import (
	"context"
	"encoding/json"
	"errors"
	"net/smtp"
	"strings"
	"testing"

	"github.com/kendall-kelly/kendalls-studio-api/config"
	"github.com/kendall-kelly/kendalls-studio-api/metrics"
	prom "github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewMailerSelectsTransport(t *testing.T) {
	m, err := NewMailer(&config.Config{})
	require.NoError(t, err)
	assert.IsType(t, &LogMailer{}, m)

	m, err = NewMailer(&config.Config{MailTransport: "smtp", SMTPHost: "mail.example.com", SMTPPort: "587"})
	require.NoError(t, err)
	assert.IsType(t, &SMTPMailer{}, m)

	m, err = NewMailer(&config.Config{MailTransport: "kafka", KafkaBrokers: []string{"localhost:9092"}, KafkaMailTopic: "mail"})
	require.NoError(t, err)
	assert.IsType(t, &KafkaMailer{}, m)

	_, err = NewMailer(&config.Config{MailTransport: "pigeon"})
	assert.Error(t, err)
}

func TestSMTPMailer(t *testing.T) {
	var gotAddr, gotFrom string
	var gotTo []string
	var gotMsg []byte

	m := NewSMTPMailer(&config.Config{
		SMTPHost:     "mail.example.com",
		SMTPPort:     "2525",
		SMTPUsername: "studio",
		SMTPPassword: "secret",
		MailFrom:     "studio@example.com",
	})
	m.send = func(addr string, a smtp.Auth, from string, to []string, msg []byte) error {
		gotAddr, gotFrom, gotTo, gotMsg = addr, from, to, msg
		return nil
	}

	require.NoError(t, m.Send(context.Background(), Mail{To: "ana@example.com", Subject: "Hi", Body: "line1\nline2"}))
	assert.Equal(t, "mail.example.com:2525", gotAddr)
	assert.Equal(t, "studio@example.com", gotFrom)
	assert.Equal(t, []string{"ana@example.com"}, gotTo)

	msg := string(gotMsg)
	assert.Contains(t, msg, "Subject: Hi\r\n")
	assert.Contains(t, msg, "To: ana@example.com\r\n")
	assert.True(t, strings.HasSuffix(msg, "\r\n\r\nline1\r\nline2"))

	m.send = func(string, smtp.Auth, string, []string, []byte) error { return errors.New("relay down") }
	before := prom.ToFloat64(metrics.MailsSent.WithLabelValues("smtp", "false"))
	assert.Error(t, m.Send(context.Background(), Mail{To: "ana@example.com"}))
	assert.Equal(t, before+1, prom.ToFloat64(metrics.MailsSent.WithLabelValues("smtp", "false")))
}

type fakeWriter struct {
	msgs []kafka.Message
	err  error
}

func (f *fakeWriter) WriteMessages(ctx context.Context, msgs ...kafka.Message) error {
	if f.err != nil {
		return f.err
	}
	f.msgs = append(f.msgs, msgs...)
	return nil
}

func (f *fakeWriter) Close() error { return nil }

func TestKafkaMailer(t *testing.T) {
	w := &fakeWriter{}
	m := &KafkaMailer{w: w, from: "studio@example.com"}

	require.NoError(t, m.Send(context.Background(), Mail{To: "ana@example.com", Subject: "Code", Body: "123456"}))
	require.Len(t, w.msgs, 1)
	assert.Equal(t, "ana@example.com", string(w.msgs[0].Key))

	var payload map[string]string
	require.NoError(t, json.Unmarshal(w.msgs[0].Value, &payload))
	assert.Equal(t, map[string]string{
		"from":    "studio@example.com",
		"to":      "ana@example.com",
		"subject": "Code",
		"body":    "123456",
	}, payload)

	w.err = errors.New("broker unavailable")
	assert.Error(t, m.Send(context.Background(), Mail{To: "ana@example.com"}))
	assert.NoError(t, m.Close())
}

func TestLogAndMockMailer(t *testing.T) {
	assert.NoError(t, NewLogMailer().Send(context.Background(), Mail{To: "x@example.com", Subject: "s", Body: "b"}))

	mock := NewMockMailer()
	require.NoError(t, mock.Send(context.Background(), Mail{To: "x@example.com"}))
	assert.Len(t, mock.Sent(), 1)

	mock.Err = errors.New("boom")
	assert.Error(t, mock.Send(context.Background(), Mail{To: "y@example.com"}))
	assert.Len(t, mock.Sent(), 1)
}
