package utils

import (
	"context"
	"testing"
	"time"

	"ai-power-rankings/pkg/logger"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

func TestSlugify(t *testing.T) {
	assert.Equal(t, "claude-code", Slugify("Claude Code"))
	assert.Equal(t, "gpt-4o-launch-what-s-new", Slugify("GPT-4o launch: what's new?"))
	assert.Equal(t, "", Slugify("!!!"))
}

func TestSafeText(t *testing.T) {
	assert.Equal(t, "a b c", SafeText("  a\n\tb \x00 c  "))
	assert.Equal(t, "ok", SafeText("ok\xff"))
}

func TestTruncate(t *testing.T) {
	assert.Equal(t, "héll", Truncate("héllo", 4))
	assert.Equal(t, "hi", Truncate("hi", 10))
	assert.Equal(t, "", Truncate("hi", 0))
}

func TestParseDate(t *testing.T) {
	cases := map[string]string{
		"2025-06-15":                      "2025-06-15",
		"2025-06-15T10:00:00Z":            "2025-06-15",
		"2025-06":                         "2025-06-01",
		"Mon, 02 Jun 2025 10:00:00 +0000": "2025-06-02",
		"June 3, 2025":                    "2025-06-03",
	}
	for in, want := range cases {
		got, err := ParseDate(in)
		require.NoError(t, err, in)
		assert.Equal(t, want, FormatDate(got), in)
	}

	_, err := ParseDate("not a date")
	assert.Error(t, err)
	_, err = ParseDate("")
	assert.Error(t, err)
}

func TestShouldContinue(t *testing.T) {
	log := logger.NewNop()
	assert.True(t, ShouldContinue(context.Background(), log))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	assert.False(t, ShouldContinue(ctx, log))
}

func TestGoSafe_LogsRecoveredPanic(t *testing.T) {
	core, logs := observer.New(zap.ErrorLevel)
	log := &logger.Logger{Logger: zap.New(core)}

	done := make(chan struct{})
	GoSafe(log, func() {
		defer close(done)
		panic("worker exploded")
	})
	<-done

	require.Eventually(t, func() bool { return logs.Len() == 1 }, time.Second, 5*time.Millisecond)
	entry := logs.All()[0]
	assert.Equal(t, "Recovered from panic", entry.Message)
	assert.Equal(t, "worker exploded", entry.ContextMap()["panic"])
	assert.Contains(t, entry.ContextMap()["stack"], "GoSafe")
}
