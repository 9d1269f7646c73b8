package bot

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/edgard/sysblokbot/internal/bot/jobs"
	"github.com/edgard/sysblokbot/internal/config"
	"github.com/edgard/sysblokbot/internal/logger"
	"github.com/edgard/sysblokbot/internal/telegram"
)

type blockingListener struct{}

func (blockingListener) Start(ctx context.Context) { <-ctx.Done() }

type returningListener struct{}

func (returningListener) Start(context.Context) {}

func noop(context.Context, telegram.SendFunc) error { return nil }

func noSend(context.Context, string) error { return nil }

func TestScheduler_SchedulesEnabledJobs(t *testing.T) {
	t.Parallel()

	cfg := &config.SchedulerConfig{Tasks: map[string]config.TaskConfig{
		jobs.FillPostsList:    {Enabled: true, Schedule: "0 0 9 * * MON"},
		jobs.EditorialReport:  {Enabled: false, Schedule: "0 0 9 * * *"},
		"not_registered":      {Enabled: true, Schedule: "0 0 9 * * *"},
		jobs.TrelloBoardState: {Enabled: true, Schedule: "not a cron"},
	}}
	jobMap := map[string]jobs.JobFunc{
		jobs.FillPostsList:    noop,
		jobs.EditorialReport:  noop,
		jobs.TrelloBoardState: noop,
	}

	s, err := NewScheduler(logger.Discard(), cfg, jobMap, noSend)
	require.NoError(t, err)
	require.NoError(t, s.Start())
	t.Cleanup(func() { _ = s.Stop() })

	assert.Equal(t, []string{jobs.FillPostsList}, s.Jobs())
	assert.Error(t, s.Start(), "second start must fail")
}

func TestScheduler_StopWithoutStart(t *testing.T) {
	t.Parallel()

	s, err := NewScheduler(logger.Discard(), nil, nil, noSend)
	require.NoError(t, err)
	assert.NoError(t, s.Stop())
}

func TestBot_RunStopsOnCancel(t *testing.T) {
	t.Parallel()

	s, err := NewScheduler(logger.Discard(), &config.SchedulerConfig{}, nil, noSend)
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- NewBot(logger.Discard(), blockingListener{}, s).Run(ctx) }()

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("bot did not stop")
	}
}

func TestBot_RunFailsWhenListenerExits(t *testing.T) {
	t.Parallel()

	s, err := NewScheduler(logger.Discard(), &config.SchedulerConfig{}, nil, noSend)
	require.NoError(t, err)

	err = NewBot(logger.Discard(), returningListener{}, s).Run(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "stopped unexpectedly")
}
