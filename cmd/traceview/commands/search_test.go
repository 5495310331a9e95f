package commands

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/traceviewhq/traceview/config"
)

func TestSearchCaseSensitivityPrecedence(t *testing.T) {
	cfg := &config.Config{}
	cfg.Search.CaseSensitive = true

	// Without the flag, the config default applies.
	assert.True(t, caseSensitivity(SearchCmd, cfg))

	// An explicit --case-sensitive=false overrides a true config default.
	require.NoError(t, SearchCmd.Flags().Set("case-sensitive", "false"))
	assert.False(t, caseSensitivity(SearchCmd, cfg))

	require.NoError(t, SearchCmd.Flags().Set("case-sensitive", "true"))
	assert.True(t, caseSensitivity(SearchCmd, cfg))
}
