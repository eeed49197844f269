package main

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/sunholo/naab/internal/config"
	"github.com/sunholo/naab/internal/logging"
)

func TestTimeoutForFallsBackToDefault(t *testing.T) {
	cfg := config.Default()
	require.Equal(t, defaultTimeout, timeoutFor(cfg, "python"))
}

func TestTimeoutForUsesConfiguredOverride(t *testing.T) {
	cfg := config.Default()
	cfg.Executors["js"] = config.ExecutorConfig{TimeoutMS: 500}
	require.Equal(t, 500*time.Millisecond, timeoutFor(cfg, "js"))
}

func TestRunFileReportsMissingFileAsStaticError(t *testing.T) {
	code := runFile("/nonexistent/path/does-not-exist.naab", time.Second, logging.Noop)
	require.Equal(t, exitStaticErr, code)
}
