package reports

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"opsflow/internal/domain/compliance"
)

type fakeMailer struct {
	to      []string
	subject string
	body    string
	calls   int
	err     error
}

func (m *fakeMailer) Send(_ context.Context, to []string, subject, body string) error {
	m.calls++
	m.to, m.subject, m.body = to, subject, body
	return m.err
}

func fixedService() *Service {
	lics, inds := sample()
	policy := compliance.Policy{ThresholdDays: 30, Now: func() time.Time { return now }}
	return NewService(fakeLicenses{items: lics}, fakeInductions{items: inds}, policy)
}

func TestNotifierSendsDigest(t *testing.T) {
	mailer := &fakeMailer{}
	n := NewNotifier(fixedService(), mailer, []string{"ops@example.com"})

	count, err := n.Notify(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 4, count)
	assert.Equal(t, []string{"ops@example.com"}, mailer.to)
	assert.Equal(t, "Compliance alert: 1 expired, 3 expiring", mailer.subject)
	assert.Contains(t, mailer.body, `"Forklift" for Ana Ruiz: Expired on 2026-02-26 (-3 days)`)
	assert.Contains(t, mailer.body, `"First aid" for unassigned`)
}

func TestNotifierSkipsWithoutRecipientsOrItems(t *testing.T) {
	mailer := &fakeMailer{}
	count, err := NewNotifier(fixedService(), mailer, nil).Notify(context.Background())
	require.NoError(t, err)
	assert.Zero(t, count)

	empty := NewService(fakeLicenses{}, fakeInductions{}, compliance.Policy{ThresholdDays: 30})
	count, err = NewNotifier(empty, mailer, []string{"ops@example.com"}).Notify(context.Background())
	require.NoError(t, err)
	assert.Zero(t, count)
	assert.Zero(t, mailer.calls)
}

func TestNotifierWrapsSendFailure(t *testing.T) {
	mailer := &fakeMailer{err: errors.New("connection refused")}
	_, err := NewNotifier(fixedService(), mailer, []string{"ops@example.com"}).Notify(context.Background())
	assert.ErrorContains(t, err, "send compliance digest")
}
