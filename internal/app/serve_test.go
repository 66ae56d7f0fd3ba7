package app

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/remotedeck/remotedeck/internal/command"
	"github.com/remotedeck/remotedeck/internal/config"
)

func TestBuildExecutorMPDBackend(t *testing.T) {
	cfg := config.Default()

	executor, playback := buildExecutor(cfg, nil)
	require.NotNil(t, playback)
	require.ElementsMatch(t, []string{
		command.TokenPlayPause,
		command.TokenNext,
		command.TokenPrev,
		command.TokenVolUp,
		command.TokenVolDown,
		command.TokenMute,
	}, executor.MediaTokens())
}

func TestBuildExecutorExecBackendWithoutQuery(t *testing.T) {
	cfg := config.Default()
	cfg.Media.Backend = "exec"
	cfg.Mixer.Backend = "exec"

	executor, playback := buildExecutor(cfg, nil)
	require.Nil(t, playback)
	require.Empty(t, executor.MediaTokens())
}

func TestBuildExecutorExecBackendWithQuery(t *testing.T) {
	cfg := config.Default()
	cfg.Media.Backend = "exec"
	cfg.Media.Query = []string{"playerctl-status"}

	_, playback := buildExecutor(cfg, nil)
	require.NotNil(t, playback)
}

func TestBuildExecutorConfigTableOverridesNative(t *testing.T) {
	cfg := config.Default()
	cfg.Mixer.Backend = "exec"
	cfg.Media.Commands = map[string][]string{
		command.TokenNext: {"mpc", "next"},
		"MEDIA_STOP":      {"mpc", "stop"},
	}

	executor, _ := buildExecutor(cfg, nil)
	require.ElementsMatch(t, []string{
		command.TokenPlayPause,
		command.TokenNext,
		command.TokenPrev,
		"MEDIA_STOP",
	}, executor.MediaTokens())
}

func TestBuildExecutorAppTokens(t *testing.T) {
	cfg := config.Default()
	cfg.Apps = map[string][]string{
		"LAUNCH_BROWSER": {"firefox"},
		"LAUNCH_EDITOR":  {"codium"},
	}

	executor, _ := buildExecutor(cfg, nil)
	require.ElementsMatch(t, []string{"LAUNCH_BROWSER", "LAUNCH_EDITOR"}, executor.AppTokens())
}

func TestJoinTokens(t *testing.T) {
	require.Equal(t, "(none)", joinTokens(nil))
	require.Equal(t, "A B C", joinTokens([]string{"C", "A", "B"}))
}
