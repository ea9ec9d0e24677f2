package config

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestVerifyAgainstEmbeddedSchema(t *testing.T) {
	base := func() *Config {
		cfg := &Config{}
		cfg.setDefaults()
		return cfg
	}

	tests := []struct {
		name    string
		modify  func(c *Config)
		wantErr bool
		errMsg  string
	}{
		{name: "valid config", modify: func(c *Config) {
			c.Feeds = []Feed{{URL: "https://example.com/rss", Name: "ex"}}
			c.Seed.Coins = []map[string]any{{"coingeckoId": "bitcoin", "stats": map[string]any{"price": 1.5}}}
		}},
		{name: "missing server listen", modify: func(c *Config) { c.Server.Listen = "" },
			wantErr: true, errMsg: "server.listen is required"},
		{name: "missing server timeout", modify: func(c *Config) { c.Server.Timeout = 0 },
			wantErr: true, errMsg: "server.timeout is required"},
		{name: "missing dsn", modify: func(c *Config) { c.Database.DSN = "" },
			wantErr: true, errMsg: "database.dsn is required"},
		{name: "negative connections", modify: func(c *Config) { c.Database.MaxIdleConns = -1 },
			wantErr: true, errMsg: "non-negative"},
		{name: "feed without url", modify: func(c *Config) { c.Feeds = []Feed{{Name: "x"}} },
			wantErr: true, errMsg: "feeds[0].url is required"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := base()
			tt.modify(cfg)
			err := VerifyAgainstEmbeddedSchema(cfg)
			if tt.wantErr {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.errMsg)
				return
			}
			assert.NoError(t, err)
		})
	}
}

func TestValidateKnownSections(t *testing.T) {
	var schema map[string]any
	require.NoError(t, json.Unmarshal([]byte(embeddedSchema), &schema))

	require.NoError(t, validateKnownSections(schema, map[string]any{"server": nil, "seed": nil}))

	err := validateKnownSections(schema, map[string]any{"llm": nil})
	require.Error(t, err)
	assert.Contains(t, err.Error(), `section "llm" is not in schema`)

	err = validateKnownSections(map[string]any{}, map[string]any{"server": nil})
	require.Error(t, err)
}

func TestGenerateSchema(t *testing.T) {
	schema, err := GenerateSchema()
	require.NoError(t, err)
	require.NotNil(t, schema)

	data, err := json.Marshal(schema)
	require.NoError(t, err)
	for _, section := range []string{"server", "database", "auth", "schedule", "feeds", "seed"} {
		assert.Contains(t, string(data), `"`+section+`"`)
	}
}

func TestEmbeddedSchemaMatchesConfig(t *testing.T) {
	var schema map[string]any
	require.NoError(t, json.Unmarshal([]byte(embeddedSchema), &schema))

	cfg := &Config{}
	cfg.Server.Timeout = time.Second
	data, err := json.Marshal(cfg)
	require.NoError(t, err)
	var configMap map[string]any
	require.NoError(t, json.Unmarshal(data, &configMap))
	assert.NoError(t, validateKnownSections(schema, configMap))
}
