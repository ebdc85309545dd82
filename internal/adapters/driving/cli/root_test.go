package cli

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRootCmd_Use(t *testing.T) {
	assert.Equal(t, "bylaws-assistant", rootCmd.Use)
}

func TestRootCmd_PersistentFlags(t *testing.T) {
	require.NotNil(t, rootCmd.PersistentFlags().Lookup("verbose"))
	require.NotNil(t, rootCmd.PersistentFlags().Lookup("config"))
}

func TestRootCmd_HasSubcommands(t *testing.T) {
	names := make(map[string]bool)
	for _, c := range rootCmd.Commands() {
		names[c.Name()] = true
	}
	assert.True(t, names["serve"])
	assert.True(t, names["reindex"])
	assert.True(t, names["version"])
}

func TestServeCmd_WatchFlag(t *testing.T) {
	require.NotNil(t, serveCmd.Flags().Lookup("watch"))
}

func TestReindexCmd_SkipSmokeFlag(t *testing.T) {
	require.NotNil(t, reindexCmd.Flags().Lookup("skip-smoke-test"))
}
