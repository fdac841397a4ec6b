package cmd

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	coreconfig "github.com/m3rciful/cinebot/core/config"
	coretelegram "github.com/m3rciful/cinebot/core/telegram"
)

type carrier struct{ cfg *coreconfig.Config }

func (c carrier) CoreConfig() *coreconfig.Config { return c.cfg }

type fakeApp struct {
	closed bool
}

func (a *fakeApp) TelegramRunOptions() (coretelegram.RunOptions, error) {
	return coretelegram.RunOptions{}, nil
}

func (a *fakeApp) Close() error {
	a.closed = true
	return nil
}

func TestResolveConfigPath(t *testing.T) {
	t.Setenv("CINEBOT_CONFIG", "/etc/cinebot.yaml")

	p, err := ResolveConfigPath(Options{ConfigPath: "flag.yaml", ConfigEnvVar: "CINEBOT_CONFIG"})
	require.NoError(t, err)
	assert.Equal(t, "flag.yaml", p)

	p, err = ResolveConfigPath(Options{ConfigEnvVar: "CINEBOT_CONFIG", DefaultConfigPath: "config.yaml"})
	require.NoError(t, err)
	assert.Equal(t, "/etc/cinebot.yaml", p)

	t.Setenv("CINEBOT_CONFIG", "")
	p, err = ResolveConfigPath(Options{ConfigEnvVar: "CINEBOT_CONFIG", DefaultConfigPath: "config.yaml"})
	require.NoError(t, err)
	assert.Equal(t, "config.yaml", p)

	_, err = ResolveConfigPath(Options{ConfigEnvVar: "CINEBOT_CONFIG"})
	assert.Error(t, err)
}

func TestRunWiresLifecycleHooks(t *testing.T) {
	app := &fakeApp{}
	var started, stopped bool
	err := Run(Options{
		ConfigPath:     "config.yaml",
		LoadConfig:     func(string) (ConfigCarrier, error) { return carrier{cfg: &coreconfig.Config{}}, nil },
		Bootstrap:      func(context.Context, ConfigCarrier) (TelegramApp, error) { return app, nil },
		ShutdownLogger: func() error { return nil },
		RunTelegram: func(ctx context.Context, opts coretelegram.RunOptions) error {
			require.NoError(t, opts.OnStart(ctx, coretelegram.Runtime{}))
			started = true
			require.NoError(t, opts.OnStop(ctx, coretelegram.Runtime{}))
			stopped = true
			return nil
		},
	})
	require.NoError(t, err)
	assert.True(t, started)
	assert.True(t, stopped)
	assert.True(t, app.closed)
}

func TestRunPropagatesBootstrapError(t *testing.T) {
	err := Run(Options{
		ConfigPath:     "config.yaml",
		LoadConfig:     func(string) (ConfigCarrier, error) { return carrier{cfg: &coreconfig.Config{}}, nil },
		Bootstrap:      func(context.Context, ConfigCarrier) (TelegramApp, error) { return nil, errors.New("db down") },
		ShutdownLogger: func() error { return nil },
	})
	assert.ErrorContains(t, err, "db down")
}
