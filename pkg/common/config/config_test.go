package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/cloudwego/hertz/pkg/common/hlog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.json")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("APP_CONFIG", filepath.Join(t.TempDir(), "missing.json"))

	cfg := Load()

	assert.Equal(t, ":5000", cfg.Server.Address)
	assert.Equal(t, DriverMongo, cfg.Database.Driver)
	assert.Equal(t, "users", cfg.Database.Mongo.Collection)
	assert.Equal(t, "HS256", cfg.Middleware.JWT.SigningMethod)
	assert.Equal(t, 10, cfg.Hasher.BcryptCost)
	assert.False(t, cfg.Debug.ExposeAccountList)
	assert.True(t, cfg.IsDev())
	assert.True(t, cfg.Middleware.CORS.AllowAll())
	assert.NoError(t, cfg.Validate())
}

func TestLoad_FileThenEnv(t *testing.T) {
	path := writeConfig(t, `{
		"server": {"address": ":7000"},
		"database": {"driver": "mysql", "port": 3307},
		"middleware": {"jwt": {"secret": "from-file", "issuer": "file-issuer"}},
		"debug": {"exposeAccountList": true}
	}`)
	t.Setenv("APP_CONFIG", path)
	t.Setenv("PORT", "8081")
	t.Setenv("JWT_SECRET", "from-env")
	t.Setenv("JWT_ALGORITHM", " hs512 ")
	t.Setenv("MONGODB_CONNECT_TIMEOUT", "3s")
	t.Setenv("CORS_ALLOW_ORIGINS", "https://a.example, https://b.example,")

	cfg := Load()

	assert.Equal(t, ":8081", cfg.Server.Address)
	assert.Equal(t, DriverMySQL, cfg.Database.Driver)
	assert.Equal(t, 3307, cfg.Database.Port)
	assert.Equal(t, "from-env", cfg.Middleware.JWT.Secret)
	assert.Equal(t, "file-issuer", cfg.Middleware.JWT.Issuer)
	assert.Equal(t, "HS512", cfg.Middleware.JWT.SigningMethod)
	assert.Equal(t, 3*time.Second, cfg.Database.Mongo.ConnectTimeout)
	assert.Equal(t, []string{"https://a.example", "https://b.example"}, cfg.Middleware.CORS.AllowOrigins)
	assert.True(t, cfg.Debug.ExposeAccountList)
}

func TestLoad_ServerAddrWinsOverPort(t *testing.T) {
	t.Setenv("APP_CONFIG", filepath.Join(t.TempDir(), "missing.json"))
	t.Setenv("PORT", "8081")
	t.Setenv("SERVER_ADDR", "127.0.0.1:9000")

	assert.Equal(t, "127.0.0.1:9000", Load().Server.Address)
}

func TestLoad_RejectsUnknownAlgorithm(t *testing.T) {
	t.Setenv("APP_CONFIG", filepath.Join(t.TempDir(), "missing.json"))
	t.Setenv("JWT_ALGORITHM", "RS256")

	assert.Equal(t, "HS256", Load().Middleware.JWT.SigningMethod)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr bool
	}{
		{name: "defaults", mutate: func(*Config) {}},
		{name: "empty secret", mutate: func(c *Config) { c.Middleware.JWT.Secret = "" }, wantErr: true},
		{name: "dev secret in production", mutate: func(c *Config) { c.Env = EnvProduction }, wantErr: true},
		{name: "real secret in production", mutate: func(c *Config) {
			c.Env = EnvProduction
			c.Middleware.JWT.Secret = "s3cr3t"
		}},
		{name: "unknown driver", mutate: func(c *Config) { c.Database.Driver = "postgres" }, wantErr: true},
		{name: "memory driver", mutate: func(c *Config) { c.Database.Driver = DriverMemory }},
		{name: "mongo without uri", mutate: func(c *Config) { c.Database.Mongo.URI = "" }, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(&cfg)
			err := cfg.Validate()
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestMySQLDSN(t *testing.T) {
	cfg := Default()
	assert.Equal(t, "root:root@tcp(localhost:3306)/app?charset=utf8mb4&parseTime=True&loc=UTC", cfg.MySQLDSN())

	cfg.Database.UseUnixSock = true
	cfg.Database.Host = "/var/run/mysqld/mysqld.sock"
	assert.Equal(t, "root:root@unix(/var/run/mysqld/mysqld.sock)/app?charset=utf8mb4&parseTime=True&loc=UTC", cfg.MySQLDSN())
}

func TestServerBodyLimitAboveMiddlewareLimit(t *testing.T) {
	cfg := Default()
	assert.Greater(t, int64(cfg.ServerBodyLimit()), cfg.Middleware.Security.MaxBodySize)
	assert.Equal(t, 4<<20, cfg.ServerBodyLimit())

	cfg.Middleware.Security.MaxBodySize = 8 << 20
	assert.Equal(t, 16<<20, cfg.ServerBodyLimit())

	cfg.Middleware.Security.MaxBodySize = 0
	assert.Equal(t, 4<<20, cfg.ServerBodyLimit())
}

func TestHlogLevel(t *testing.T) {
	cfg := Default()
	assert.Equal(t, hlog.LevelInfo, cfg.HlogLevel())

	cfg.LogLevel = "debug"
	assert.Equal(t, hlog.LevelDebug, cfg.HlogLevel())

	cfg.LogLevel = "bogus"
	assert.Equal(t, hlog.LevelInfo, cfg.HlogLevel())
}
