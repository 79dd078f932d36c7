package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func lookupFrom(values map[string]string) func(string) (string, bool) {
	return func(key string) (string, bool) {
		v, ok := values[key]
		return v, ok
	}
}

func TestFromLookupDefaults(t *testing.T) {
	cfg, err := FromLookup(lookupFrom(map[string]string{
		"DATABASE_URL":      "postgres://localhost/crm",
		"JWT_ACCESS_SECRET": "secret",
	}))
	require.NoError(t, err)

	assert.Equal(t, ":8080", cfg.GetHTTPAddr())
	assert.Equal(t, 15*time.Minute, cfg.GetAccessTokenTTL())
	assert.Equal(t, 720*time.Hour, cfg.GetRefreshTokenTTL())
	assert.Equal(t, 15*time.Minute, cfg.GetFollowupReminderLead())
	assert.Equal(t, time.Minute, cfg.GetDashboardCacheTTL())
	assert.Equal(t, "IN", cfg.GetPhoneDefaultRegion())
	assert.Equal(t, "default", cfg.GetAsynqQueueName())
	assert.False(t, cfg.GetEmailEnabled())
	assert.False(t, cfg.IsMinIOEnabled())
	assert.Equal(t, []string{"http://localhost:3000"}, cfg.GetCORSOrigins())
}

func TestFromLookupRequiredValues(t *testing.T) {
	_, err := FromLookup(lookupFrom(map[string]string{"JWT_ACCESS_SECRET": "s"}))
	require.Error(t, err)

	_, err = FromLookup(lookupFrom(map[string]string{"DATABASE_URL": "postgres://x"}))
	require.Error(t, err)
}

func TestFromLookupRejectsUnsafeCombinations(t *testing.T) {
	base := map[string]string{
		"DATABASE_URL":      "postgres://x",
		"JWT_ACCESS_SECRET": "s",
	}

	withWildcard := map[string]string{"CORS_ORIGINS": "*"}
	for k, v := range base {
		withWildcard[k] = v
	}
	_, err := FromLookup(lookupFrom(withWildcard))
	require.Error(t, err, "wildcard origin with credentials must be rejected")

	withSMTP := map[string]string{"SMTP_HOST": "smtp.example.com"}
	for k, v := range base {
		withSMTP[k] = v
	}
	_, err = FromLookup(lookupFrom(withSMTP))
	require.Error(t, err, "smtp without from address must be rejected")

	withSMTP["EMAIL_FROM_ADDRESS"] = "crm@example.com"
	cfg, err := FromLookup(lookupFrom(withSMTP))
	require.NoError(t, err)
	assert.True(t, cfg.GetEmailEnabled())
	assert.Equal(t, 587, cfg.GetSMTPPort())
}
