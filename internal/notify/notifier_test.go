package notify

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/dormi-app/dormi-api/pkg/config"
)

type stubTokens struct {
	tokens map[string]string
	err    error
}

func (s *stubTokens) FCMToken(_ context.Context, userID string) (string, error) {
	if s.err != nil {
		return "", s.err
	}
	return s.tokens[userID], nil
}

type recordingPusher struct {
	mu     sync.Mutex
	pushed []Message
	err    error
}

func (p *recordingPusher) Push(_ context.Context, _ string, msg Message) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.err != nil {
		return p.err
	}
	p.pushed = append(p.pushed, msg)
	return nil
}

func (p *recordingPusher) count() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.pushed)
}

func waitFor(t *testing.T, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(10 * time.Millisecond)
	}
	t.Fatal("condition not met in time")
}

func TestDispatcherDeliversToToken(t *testing.T) {
	tokens := &stubTokens{tokens: map[string]string{"U100": "tok-1"}}
	pusher := &recordingPusher{}
	d := NewDispatcher(config.NotifierConfig{Enabled: true, Workers: 1}, tokens, pusher, zap.NewNop())
	d.Start(context.Background())
	defer d.Stop()

	d.Send(Message{UserID: "U100", Title: "Reprimand issued", Body: "Check your record"})

	waitFor(t, func() bool { return pusher.count() == 1 })
	require.Len(t, pusher.pushed, 1)
	assert.Equal(t, "Reprimand issued", pusher.pushed[0].Title)
}

func TestDispatcherSkipsAccountWithoutToken(t *testing.T) {
	tokens := &stubTokens{tokens: map[string]string{}}
	pusher := &recordingPusher{}
	d := NewDispatcher(config.NotifierConfig{Enabled: true, Workers: 1}, tokens, pusher, zap.NewNop())
	d.Start(context.Background())
	defer d.Stop()

	d.Send(Message{UserID: "U404", Title: "ignored", Body: "no device"})

	time.Sleep(100 * time.Millisecond)
	assert.Equal(t, 0, pusher.count())
}

func TestDispatcherDisabledDropsMessages(t *testing.T) {
	pusher := &recordingPusher{}
	d := NewDispatcher(config.NotifierConfig{Enabled: false}, &stubTokens{}, pusher, zap.NewNop())
	d.Start(context.Background())
	defer d.Stop()

	d.Send(Message{UserID: "U100", Title: "nope", Body: "disabled"})

	time.Sleep(50 * time.Millisecond)
	assert.Equal(t, 0, pusher.count())
}

func TestDispatcherSendNeverBlocksCaller(t *testing.T) {
	tokens := &stubTokens{err: errors.New("store down")}
	d := NewDispatcher(config.NotifierConfig{Enabled: true, Workers: 1, MaxRetries: 1}, tokens, &recordingPusher{}, zap.NewNop())
	d.Start(context.Background())
	defer d.Stop()

	done := make(chan struct{})
	go func() {
		for i := 0; i < 20; i++ {
			d.Send(Message{UserID: "U100", Title: "t", Body: "b"})
		}
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("Send blocked the caller")
	}
}
