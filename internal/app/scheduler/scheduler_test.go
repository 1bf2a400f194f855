package scheduler

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type SyncerMock struct{ mock.Mock }

func (m *SyncerMock) SyncPending(ctx context.Context) (int, error) {
	args := m.Called(ctx)
	return args.Int(0), args.Error(1)
}

func discard() *slog.Logger { return slog.New(slog.NewTextHandler(io.Discard, nil)) }

func TestNew_InvalidSchedule(t *testing.T) {
	_, err := New(new(SyncerMock), "every ten minutes", discard())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid schedule")
}

func TestRunOnce(t *testing.T) {
	tests := []struct {
		name    string
		changed int
		err     error
	}{
		{name: "изменены статусы", changed: 3},
		{name: "ошибка шлюза не роняет планировщик", err: errors.New("stripe unavailable")},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			syncer := new(SyncerMock)
			syncer.On("SyncPending", mock.Anything).Return(tt.changed, tt.err).Once()

			s, err := New(syncer, "@every 10m", discard())
			require.NoError(t, err)

			assert.NotPanics(t, s.runOnce)
			syncer.AssertExpectations(t)
		})
	}
}

func TestRun_StopsOnCancel(t *testing.T) {
	s, err := New(new(SyncerMock), "@every 1h", discard())
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		s.Run(ctx)
		close(done)
	}()
	cancel()
	<-done
}
