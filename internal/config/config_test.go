package config

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)
	require.Equal(t, "stdio", cfg.Transport.Mode)
	require.Equal(t, "heuristic", cfg.Engine.Provider)
	require.Zero(t, cfg.Engine.QuestionCap)
	require.Zero(t, cfg.Engine.DiminishingWindow)
	require.Zero(t, cfg.Engine.DiminishingThreshold)
}

func TestLoad_EngineTuningFromEnv(t *testing.T) {
	t.Setenv("COMPASS_ENGINE_QUESTION_CAP", "7")
	t.Setenv("COMPASS_ENGINE_DIMINISHING_WINDOW", "4")
	t.Setenv("COMPASS_ENGINE_DIMINISHING_THRESHOLD", "0.25")

	cfg, err := Load()
	require.NoError(t, err)
	require.Equal(t, 7, cfg.Engine.QuestionCap)
	require.Equal(t, 4, cfg.Engine.DiminishingWindow)
	require.InDelta(t, 0.25, cfg.Engine.DiminishingThreshold, 1e-9)
}

func TestLoad_RejectsInvalidTuning(t *testing.T) {
	t.Setenv("COMPASS_ENGINE_QUESTION_CAP", "many")

	_, err := Load()
	require.Error(t, err)
	require.Contains(t, err.Error(), "COMPASS_ENGINE_QUESTION_CAP")
}
