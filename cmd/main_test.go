package main

import (
	"bytes"
	"context"
	"testing"

	"github.com/IslamMhareeq/sha-256/config"
	"github.com/samber/oops"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func isolateConfig(t *testing.T) {
	t.Helper()
	original := config.Dir
	config.Dir = t.TempDir()
	t.Cleanup(func() { config.Dir = original })

	t.Setenv("ENV", "test")
	t.Setenv("DB_URL", "")
	t.Setenv("JWT_SECRET", "")
}

func TestRootCmd_Subcommands(t *testing.T) {
	cmd := NewRootCmd()

	names := make([]string, 0)
	for _, c := range cmd.Commands() {
		names = append(names, c.Name())
	}
	assert.Contains(t, names, "serve")
	assert.Contains(t, names, "migrate")
}

func TestServeCmd_MigrateFlagDefault(t *testing.T) {
	flag := NewServeCmd().Flags().Lookup("migrate")
	require.NotNil(t, flag)
	assert.Equal(t, "true", flag.DefValue)
}

func TestMigrateCmd_RejectsUnknownDirection(t *testing.T) {
	isolateConfig(t)

	cmd := NewRootCmd()
	cmd.SetOut(&bytes.Buffer{})
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetArgs([]string{"migrate", "sideways"})

	err := cmd.ExecuteContext(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "sideways")
}

func TestMigrateCmd_RequiresConfig(t *testing.T) {
	isolateConfig(t)

	cmd := NewRootCmd()
	cmd.SetOut(&bytes.Buffer{})
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetArgs([]string{"migrate"})

	err := cmd.ExecuteContext(context.Background())
	require.Error(t, err)

	oopsErr, ok := oops.AsOops(err)
	require.True(t, ok)
	assert.Equal(t, "CONFIG_INVALID", oopsErr.Code())
}

func TestServeCmd_RequiresConfig(t *testing.T) {
	isolateConfig(t)

	err := runServe(context.Background(), &serveOptions{migrate: true})
	require.Error(t, err)

	oopsErr, ok := oops.AsOops(err)
	require.True(t, ok)
	assert.Equal(t, "CONFIG_INVALID", oopsErr.Code())
}
