package logger

import (
	"log/slog"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"
)

type recordingNotifier struct {
	mu       sync.Mutex
	messages []string
}

func (n *recordingNotifier) SendMessage(msg string) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.messages = append(n.messages, msg)
}

func TestTelegramHandlerForwardsAboveLevel(t *testing.T) {
	n := &recordingNotifier{}
	log := SetupTelegramHandler(SetupLogger("local", ""), n, slog.LevelWarn)

	log.With(slog.String("module", "test")).Info("quiet")
	log.With(slog.String("module", "test")).Error("loud", slog.String("user_id", "42"))

	require.Len(t, n.messages, 1)
	require.Contains(t, n.messages[0], "[ERROR] loud")
	require.Contains(t, n.messages[0], "module: test")
	require.Contains(t, n.messages[0], "user_id: 42")
}

func TestSetupTelegramHandlerNilNotifier(t *testing.T) {
	log := SetupLogger("dev", "")
	require.Same(t, log, SetupTelegramHandler(log, nil, slog.LevelDebug))
}
