package notify

import (
	"context"
	"errors"
	"net/smtp"
	"testing"

	"github.com/jordan-wright/email"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"fintrack/internal/core"
	"fintrack/internal/finance"
	"fintrack/internal/log"
)

func TestDigestTips(t *testing.T) {
	tips := []finance.Tip{
		{ID: "a", Priority: finance.PriorityHigh, Actionable: true},
		{ID: "b", Priority: finance.PriorityHigh, Actionable: false},
		{ID: "c", Priority: finance.PriorityMedium, Actionable: true},
		{ID: "d", Priority: finance.PriorityHigh, Actionable: true},
	}
	got := DigestTips(tips)
	require.Len(t, got, 2)
	assert.Equal(t, "a", got[0].ID)
	assert.Equal(t, "d", got[1].ID)
	assert.Empty(t, DigestTips(nil))
}

func TestRender(t *testing.T) {
	d := Digest{
		Profile: core.Profile{Name: "Sam", Email: "sam@example.com"},
		Snapshot: finance.Snapshot{
			AvailableBalance: decimal.RequireFromString("1234.5"),
			SavingsRate:      decimal.RequireFromString("12.345"),
			TotalSavings:     decimal.NewFromInt(300),
		},
		Tips: []finance.Tip{{Title: "Build an emergency fund", Content: "Aim for six months."}},
	}
	msg, err := d.Render()
	require.NoError(t, err)
	assert.Equal(t, "sam@example.com", msg.To)
	assert.Contains(t, msg.Subject, "1 item(s)")
	assert.Contains(t, msg.Body, "Hello Sam,")
	assert.Contains(t, msg.Body, "$1234.50")
	assert.Contains(t, msg.Body, "12.3%")
	assert.Contains(t, msg.Body, "* Build an emergency fund")

	d.Tips = nil
	d.Profile.Name = ""
	msg, err = d.Render()
	require.NoError(t, err)
	assert.Equal(t, "Your weekly finance digest", msg.Subject)
	assert.Contains(t, msg.Body, "Hello there,")
	assert.Contains(t, msg.Body, "Nothing urgent")
}

func TestSMTPMailer(t *testing.T) {
	m := NewSMTPMailer(SMTPConfig{Host: "smtp.example.com", Port: 2525, Username: "u", Password: "p", From: "fintrack@example.com"})

	var gotAddr string
	var gotAuth smtp.Auth
	var gotMail *email.Email
	m.send = func(addr string, a smtp.Auth, e *email.Email) error {
		gotAddr, gotAuth, gotMail = addr, a, e
		return nil
	}

	err := m.Send(context.Background(), Message{To: "sam@example.com", Subject: "s", Body: "b"})
	require.NoError(t, err)
	assert.Equal(t, "smtp.example.com:2525", gotAddr)
	assert.NotNil(t, gotAuth)
	assert.Equal(t, "fintrack@example.com", gotMail.From)
	assert.Equal(t, []string{"sam@example.com"}, gotMail.To)
	assert.Equal(t, []byte("b"), gotMail.Text)

	m.send = func(string, smtp.Auth, *email.Email) error { return errors.New("relay down") }
	err = m.Send(context.Background(), Message{To: "x@example.com"})
	assert.ErrorContains(t, err, "send mail to x@example.com: relay down")

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	assert.ErrorIs(t, m.Send(ctx, Message{}), context.Canceled)
}

func TestLogMailer(t *testing.T) {
	assert.NoError(t, NewLogMailer(log.Nop()).Send(context.Background(), Message{To: "a@b.c"}))
}
