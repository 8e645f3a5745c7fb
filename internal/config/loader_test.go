package config

import (
	"context"
	"errors"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// testSecretProvider records the keys it was asked for.
type testSecretProvider struct {
	values     map[string]string
	err        error
	calledWith []string
	callCount  int
}

func (p *testSecretProvider) GetParametersBatch(_ context.Context, keys []string) (map[string]string, error) {
	p.callCount++
	p.calledWith = append(p.calledWith, keys...)
	if p.err != nil {
		return nil, p.err
	}
	result := make(map[string]string)
	for _, k := range keys {
		if v, ok := p.values[k]; ok {
			result[k] = v
		}
	}
	return result, nil
}

// unsetEnv removes key for the duration of the test.
func unsetEnv(t *testing.T, key string) {
	t.Helper()
	t.Setenv(key, "")
	os.Unsetenv(key)
}

// setMinimalEnv sets the variables without defaults.
func setMinimalEnv(t *testing.T) {
	t.Helper()
	t.Setenv("APP_ENV", "local")
	t.Setenv("WEATHER_API_KEY", "owm-test-key")
	t.Setenv("STATE_TABLE_NAME", "heater-state")
	t.Setenv("SES_SENDER", "Elmdale Monitor <monitor@example.com>")
	t.Setenv("RECIPIENTS", "a@example.com,b@example.com")
	for _, key := range []string{"STATE_BACKEND", "DATABASE_URL", "SNS_TOPIC_ARN", "TRANSITION_QUEUE_URL", "HOURS_AHEAD", "WARM_THRESHOLD_F"} {
		unsetEnv(t, key)
	}
}

func TestLoadConfig_LocalDefaults(t *testing.T) {
	setMinimalEnv(t)

	cfg, err := LoadConfig(nil)
	require.NoError(t, err)

	assert.Equal(t, "local", cfg.Environment)
	assert.True(t, cfg.UseStubs())
	assert.Equal(t, 38.3736, cfg.Weather.Lat)
	assert.Equal(t, -96.6447, cfg.Weather.Lon)
	assert.Equal(t, 10*time.Second, cfg.Weather.Timeout)
	assert.Equal(t, "owm-test-key", cfg.Weather.APIKey.Unmask())

	th := cfg.Thresholds.Thresholds()
	assert.Equal(t, 12, th.HoursAhead)
	assert.Equal(t, 32.0, th.FreezeThresholdF)
	assert.Equal(t, 2, th.WarmClearDays)
	assert.Equal(t, 35.0, th.WarmThresholdF)

	assert.Equal(t, "dynamodb", cfg.State.Backend)
	assert.Equal(t, "main", cfg.State.RecordID)
	assert.Equal(t, []string{"a@example.com", "b@example.com"}, cfg.Email.Recipients)
	assert.Empty(t, cfg.SMS.TopicARN)
	assert.Equal(t, "America/Chicago", cfg.Display.Timezone)
	assert.Equal(t, "Elmdale", cfg.Display.SiteName)
	assert.Equal(t, "dev", cfg.Build.Version)
	assert.Equal(t, time.UTC, time.Local)
}

func TestLoadConfig_RecipientsAreTrimmed(t *testing.T) {
	setMinimalEnv(t)
	t.Setenv("RECIPIENTS", " a@example.com , b@example.com,")

	cfg, err := LoadConfig(nil)
	require.NoError(t, err)
	assert.Equal(t, []string{"a@example.com", "b@example.com"}, cfg.Email.Recipients)
}

func TestLoadConfig_ValidationFailures(t *testing.T) {
	tests := []struct {
		name string
		env  map[string]string
	}{
		{"bad recipient", map[string]string{"RECIPIENTS": "not-an-email"}},
		{"hours ahead zero", map[string]string{"HOURS_AHEAD": "0"}},
		{"unknown backend", map[string]string{"STATE_BACKEND": "redis"}},
		{"postgres without url", map[string]string{"STATE_BACKEND": "postgres"}},
		{"bad timezone", map[string]string{"DISPLAY_TIMEZONE": "Mars/Olympus"}},
		{"latitude out of range", map[string]string{"LAT": "123"}},
		{"bad queue url", map[string]string{"TRANSITION_QUEUE_URL": "queue"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			setMinimalEnv(t)
			for k, v := range tt.env {
				t.Setenv(k, v)
			}

			_, err := LoadConfig(nil)

			var cfgErr *ConfigError
			require.ErrorAs(t, err, &cfgErr)
			assert.Equal(t, ErrValidation, cfgErr.Type)
		})
	}
}

func TestLoadConfig_WarmBelowFreezeAccepted(t *testing.T) {
	setMinimalEnv(t)
	t.Setenv("FREEZE_THRESHOLD_F", "32")
	t.Setenv("WARM_THRESHOLD_F", "20")

	cfg, err := LoadConfig(nil)
	require.NoError(t, err)
	assert.Equal(t, 20.0, cfg.Thresholds.WarmThresholdF)
	assert.Equal(t, 32.0, cfg.Thresholds.FreezeThresholdF)
}

func TestLoadConfig_MissingTableForDynamo(t *testing.T) {
	setMinimalEnv(t)
	unsetEnv(t, "STATE_TABLE_NAME")

	_, err := LoadConfig(nil)

	var cfgErr *ConfigError
	require.ErrorAs(t, err, &cfgErr)
	assert.Equal(t, ErrValidation, cfgErr.Type)
	assert.Contains(t, err.Error(), "TableName")
}

func TestLoadConfig_MemoryBackendNeedsNoTable(t *testing.T) {
	setMinimalEnv(t)
	unsetEnv(t, "STATE_TABLE_NAME")
	t.Setenv("STATE_BACKEND", "memory")

	cfg, err := LoadConfig(nil)
	require.NoError(t, err)
	assert.Equal(t, "memory", cfg.State.Backend)
}

func TestLoadConfig_ParsingFailure(t *testing.T) {
	setMinimalEnv(t)
	t.Setenv("HOURS_AHEAD", "twelve")

	_, err := LoadConfig(nil)

	var cfgErr *ConfigError
	require.ErrorAs(t, err, &cfgErr)
	assert.Equal(t, ErrParsing, cfgErr.Type)
}

func testDeps(t *testing.T, environ []string) loaderDeps {
	t.Helper()
	return loaderDeps{
		lookupEnv: os.LookupEnv,
		setEnv: func(k, v string) error {
			t.Setenv(k, v)
			return nil
		},
		environ: func() []string { return environ },
	}
}

func TestLoadConfig_ResolvesSSMOutsideLocal(t *testing.T) {
	setMinimalEnv(t)
	t.Setenv("APP_ENV", "prod")
	unsetEnv(t, "WEATHER_API_KEY")

	provider := &testSecretProvider{values: map[string]string{"/prod/heaterwatch/weather": "owm-from-ssm"}}
	deps := testDeps(t, []string{"WEATHER_API_KEY_SSM_PARAM=/prod/heaterwatch/weather", "PATH=/usr/bin"})

	cfg, err := loadConfigWithDeps(provider, deps)
	require.NoError(t, err)

	assert.Equal(t, 1, provider.callCount)
	assert.Equal(t, []string{"/prod/heaterwatch/weather"}, provider.calledWith)
	assert.Equal(t, "owm-from-ssm", cfg.Weather.APIKey.Unmask())
	assert.False(t, cfg.UseStubs())
}

func TestLoadConfig_EnvWinsOverSSM(t *testing.T) {
	setMinimalEnv(t)
	t.Setenv("APP_ENV", "prod")

	provider := &testSecretProvider{}
	deps := testDeps(t, []string{"WEATHER_API_KEY_SSM_PARAM=/prod/heaterwatch/weather"})

	cfg, err := loadConfigWithDeps(provider, deps)
	require.NoError(t, err)

	assert.Zero(t, provider.callCount)
	assert.Equal(t, "owm-test-key", cfg.Weather.APIKey.Unmask())
}

func TestLoadConfig_LocalSkipsSSM(t *testing.T) {
	setMinimalEnv(t)
	unsetEnv(t, "WEATHER_API_KEY")

	provider := &testSecretProvider{}
	deps := testDeps(t, []string{"WEATHER_API_KEY_SSM_PARAM=/prod/heaterwatch/weather"})

	_, err := loadConfigWithDeps(provider, deps)

	assert.Zero(t, provider.callCount)
	var cfgErr *ConfigError
	require.ErrorAs(t, err, &cfgErr)
	assert.Equal(t, ErrValidation, cfgErr.Type)
}

func TestResolveSSMParams_Errors(t *testing.T) {
	t.Run("nil provider", func(t *testing.T) {
		unsetEnv(t, "WEATHER_API_KEY")
		err := resolveSSMParams(nil, testDeps(t, []string{"WEATHER_API_KEY_SSM_PARAM=/p/key"}))

		var cfgErr *ConfigError
		require.ErrorAs(t, err, &cfgErr)
		assert.Equal(t, ErrSSMResolution, cfgErr.Type)
		assert.Contains(t, cfgErr.Message, "WEATHER_API_KEY")
	})

	t.Run("provider failure", func(t *testing.T) {
		unsetEnv(t, "WEATHER_API_KEY")
		boom := errors.New("throttled")
		err := resolveSSMParams(&testSecretProvider{err: boom}, testDeps(t, []string{"WEATHER_API_KEY_SSM_PARAM=/p/key"}))

		assert.ErrorIs(t, err, boom)
	})

	t.Run("missing parameter", func(t *testing.T) {
		unsetEnv(t, "WEATHER_API_KEY")
		unsetEnv(t, "DATABASE_URL")
		provider := &testSecretProvider{values: map[string]string{"/p/key": "v"}}
		err := resolveSSMParams(provider, testDeps(t, []string{
			"WEATHER_API_KEY_SSM_PARAM=/p/key",
			"DATABASE_URL_SSM_PARAM=/p/db",
		}))

		require.Error(t, err)
		assert.True(t, strings.Contains(err.Error(), "DATABASE_URL"))
	})

	t.Run("empty path ignored", func(t *testing.T) {
		provider := &testSecretProvider{}
		require.NoError(t, resolveSSMParams(provider, testDeps(t, []string{"WEATHER_API_KEY_SSM_PARAM="})))
		assert.Zero(t, provider.callCount)
	})
}

func TestConfigError_Format(t *testing.T) {
	inner := errors.New("boom")
	err := &ConfigError{Type: ErrParsing, Message: "bad value", Err: inner}

	assert.Equal(t, "[PARSING_FAILED] bad value: boom", err.Error())
	assert.Equal(t, inner, errors.Unwrap(err))
	assert.Equal(t, "[VALIDATION_FAILED] nope", (&ConfigError{Type: ErrValidation, Message: "nope"}).Error())
}
