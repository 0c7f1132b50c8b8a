package reminder

import (
	"context"
	"testing"

	"github.com/finwise/finance-service/internal/config"
	"github.com/finwise/finance-service/internal/repository"
	"github.com/finwise/finance-service/internal/utils/email"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type staticLister struct {
	items []repository.ReminderItem
	err   error
}

func (s staticLister) ListDueWithin(context.Context, int) ([]repository.ReminderItem, error) {
	return s.items, s.err
}

func TestStartWithoutSMTPIsNoop(t *testing.T) {
	cfg := &config.Config{ReminderSchedule: "0 8 * * *", ReminderDays: 3}
	log := logrus.New()
	log.SetLevel(logrus.PanicLevel)

	s := NewScheduler(cfg, staticLister{}, email.NewSender(cfg, log), log)
	require.NoError(t, s.Start())
	s.Stop()
}

func TestStartRejectsBadSchedule(t *testing.T) {
	cfg := &config.Config{ReminderSchedule: "not a schedule", ReminderDays: 3, SMTPHost: "smtp.example.com"}
	log := logrus.New()
	log.SetLevel(logrus.PanicLevel)

	s := NewScheduler(cfg, staticLister{}, email.NewSender(cfg, log), log)
	assert.Error(t, s.Start())
}
