package mysqlz

import (
	"testing"
	"time"

	"github.com/go-sql-driver/mysql"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFormatDSN(t *testing.T) {
	cfg := DefaultConfig()
	cfg.User = "app"
	cfg.Password = "s3cr3t"
	cfg.Database = "shop"
	cfg.Params = map[string]string{"parseTime": "true"}

	dsn := cfg.FormatDSN()

	parsed, err := mysql.ParseDSN(dsn)
	require.NoError(t, err)

	assert.Equal(t, "tcp", parsed.Net)
	assert.Equal(t, "127.0.0.1:3306", parsed.Addr)
	assert.Equal(t, "app", parsed.User)
	assert.Equal(t, "s3cr3t", parsed.Passwd)
	assert.Equal(t, "shop", parsed.DBName)
	assert.Equal(t, 3*time.Second, parsed.Timeout)
	assert.True(t, parsed.ParseTime)
	assert.Contains(t, dsn, "charset=utf8mb4")
}

func TestFormatDSNAddresses(t *testing.T) {
	cfg := Config{Host: "::1"}
	parsed, err := mysql.ParseDSN(cfg.FormatDSN())
	require.NoError(t, err)
	assert.Equal(t, "[::1]:3306", parsed.Addr)

	cfg = Config{Host: "db.internal", Socket: "/var/run/mysqld/mysqld.sock"}
	parsed, err = mysql.ParseDSN(cfg.FormatDSN())
	require.NoError(t, err)
	assert.Equal(t, "unix", parsed.Net)
	assert.Equal(t, "/var/run/mysqld/mysqld.sock", parsed.Addr)
}

func TestConfigValidate(t *testing.T) {
	tests := []struct {
		name  string
		cfg   Config
		valid bool
	}{
		{"default", DefaultConfig(), true},
		{"socket only", Config{Socket: "/tmp/mysql.sock"}, true},
		{"no host", Config{Port: 3306}, false},
		{"port out of range", Config{Host: "localhost", Port: 70000}, false},
		{"negative timeout", Config{Host: "localhost", ConnectTimeout: -time.Second}, false},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			err := tc.cfg.Validate()
			if tc.valid {
				assert.NoError(t, err)
			} else {
				assert.Error(t, err)
			}
		})
	}
}

func TestConfigEscaper(t *testing.T) {
	assert.Equal(t, BackslashEscaper{}, DefaultConfig().escaper())

	cfg := DefaultConfig()
	cfg.NoBackslashEscapes = true
	assert.Equal(t, QuotesEscaper{}, cfg.escaper())

	quoted, err := New(cfg).Quoter().QuoteScalarValue(`a"b`)
	require.NoError(t, err)
	assert.Equal(t, `"a""b"`, quoted)
}
