package worker

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"fintrack/internal/amqp"
	"fintrack/internal/core"
	"fintrack/internal/finance"
	"fintrack/internal/ledger/memory"
	"fintrack/internal/log"
	"fintrack/internal/notify"
	"fintrack/internal/services"
)

type fakeSource struct {
	events []amqp.Event
	errs   []error
}

func (f *fakeSource) Consume(ctx context.Context, h amqp.Handler) error {
	for _, e := range f.events {
		f.errs = append(f.errs, h(ctx, e))
	}
	return context.Canceled
}

func TestActivityWorker(t *testing.T) {
	store := memory.New()
	e1 := amqp.NewEvent(amqp.ContributionApplied, "u1", "g1", decimal.NewFromInt(50))
	e2 := amqp.NewEvent(amqp.IncomeCreated, "u1", "i1", decimal.NewFromInt(900))
	src := &fakeSource{events: []amqp.Event{e1, e2}}

	w := NewActivityWorker(src, store, log.Nop())
	require.NoError(t, w.Run(context.Background()))
	assert.Equal(t, []error{nil, nil}, src.errs)

	feed, err := store.ListActivity(context.Background(), "u1", 10)
	require.NoError(t, err)
	require.Len(t, feed, 2)
	kinds := []string{feed[0].Kind, feed[1].Kind}
	assert.ElementsMatch(t, []string{string(amqp.ContributionApplied), string(amqp.IncomeCreated)}, kinds)
}

type failingActivity struct{}

func (failingActivity) RecordActivity(context.Context, core.Activity) error {
	return errors.New("disk full")
}

func (failingActivity) ListActivity(context.Context, string, int) ([]core.Activity, error) {
	return nil, nil
}

func TestActivityWorkerHandleError(t *testing.T) {
	w := NewActivityWorker(&fakeSource{}, failingActivity{}, log.Nop())
	err := w.Handle(context.Background(), amqp.NewEvent(amqp.GoalCreated, "u1", "g1", decimal.Zero))
	assert.ErrorContains(t, err, "disk full")
}

type stubOverviews map[string]services.Overview

func (s stubOverviews) Overview(_ context.Context, userID string) (services.Overview, error) {
	ov, ok := s[userID]
	if !ok {
		return services.Overview{}, errors.New("boom")
	}
	return ov, nil
}

type recordingMailer struct {
	mu   sync.Mutex
	sent []notify.Message
	fail string
}

func (m *recordingMailer) Send(_ context.Context, msg notify.Message) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if msg.To == m.fail {
		return errors.New("rejected")
	}
	m.sent = append(m.sent, msg)
	return nil
}

func TestDigestJob(t *testing.T) {
	ctx := context.Background()
	store := memory.New()
	for _, p := range []core.Profile{
		{UserID: "a", Name: "Ann", Email: "ann@example.com"},
		{UserID: "b", Name: "Bob"},
		{UserID: "c", Name: "Cat", Email: "cat@example.com"},
		{UserID: "d", Name: "Dan", Email: "dan@example.com"},
		{UserID: "e", Name: "Eve", Email: "eve@example.com"},
	} {
		require.NoError(t, store.SaveProfile(ctx, p))
	}

	urgent := finance.Tip{ID: "emergency-fund", Title: "Build Your Emergency Fund", Priority: finance.PriorityHigh, Actionable: true}
	mild := finance.Tip{ID: "diversify-income", Priority: finance.PriorityLow, Actionable: true}
	ovs := stubOverviews{
		"a": {Tips: []finance.Tip{urgent, mild}},
		"c": {Tips: []finance.Tip{mild}},
		"e": {Tips: []finance.Tip{urgent}},
	}
	mailer := &recordingMailer{fail: "eve@example.com"}

	rep, err := NewDigestJob(store, ovs, mailer, log.Nop()).Run(ctx)
	require.NoError(t, err)
	assert.Equal(t, DigestReport{Sent: 1, Skipped: 2, Failed: 2}, rep)
	require.Len(t, mailer.sent, 1)
	assert.Equal(t, "ann@example.com", mailer.sent[0].To)
	assert.Contains(t, mailer.sent[0].Body, "Build Your Emergency Fund")
}

func TestDigestJobWithFinanceService(t *testing.T) {
	ctx := context.Background()
	store := memory.New()
	require.NoError(t, store.SaveProfile(ctx, core.Profile{UserID: "u1", Email: "u1@example.com"}))
	_, err := store.CreateIncome(ctx, core.IncomeEntry{
		UserID: "u1", Amount: decimal.NewFromInt(6000), Description: "Invoice",
		Date: core.NewDate(2026, 3, 1), Category: core.IncomeBonus,
	})
	require.NoError(t, err)

	fin := services.NewFinanceService(store, nil, nil, log.Nop())
	mailer := &recordingMailer{}
	rep, err := NewDigestJob(store, fin, mailer, log.Nop()).Run(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, rep.Sent)
	assert.Contains(t, mailer.sent[0].Body, "Increase Your Savings Rate")
}

func TestScheduler(t *testing.T) {
	job := NewDigestJob(memory.New(), stubOverviews{}, &recordingMailer{}, log.Nop())

	_, err := NewScheduler("every tuesday", job, time.Second, log.Nop())
	assert.ErrorContains(t, err, "invalid digest schedule")

	s, err := NewScheduler("0 8 * * 1", job, time.Second, log.Nop())
	require.NoError(t, err)
	s.Start()
	next := s.Next()
	assert.Equal(t, time.Monday, next.Weekday())
	assert.Equal(t, 8, next.Hour())

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	s.Stop(ctx)
}
