package mysqlz

import (
	"errors"
	"net"
	"strconv"
	"time"

	"github.com/go-sql-driver/mysql"
)

// Config holds the connection settings of a Driver. Field tags allow
// loading it with viper (or anything else using mapstructure).
type Config struct {
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	User     string `mapstructure:"user"`
	Password string `mapstructure:"password"`
	Database string `mapstructure:"database"`

	// Socket is the path of a unix socket. When set, Host and Port are
	// ignored.
	Socket string `mapstructure:"socket"`

	// Charset of the connection, sent with SET NAMES by the driver
	Charset string `mapstructure:"charset"`

	// ConnectTimeout limits how long establishing the connection may take
	ConnectTimeout time.Duration `mapstructure:"connect_timeout"`

	// NoBackslashEscapes must be set when the server runs with the
	// NO_BACKSLASH_ESCAPES SQL mode; values are then escaped by doubling
	// quotes instead of with backslashes.
	NoBackslashEscapes bool `mapstructure:"no_backslash_escapes"`

	// Params holds additional DSN parameters, passed to the driver as-is
	Params map[string]string `mapstructure:"params"`
}

// DefaultConfig returns the configuration used when nothing is set
func DefaultConfig() Config {
	return Config{
		Host:           "127.0.0.1",
		Port:           3306,
		Charset:        "utf8mb4",
		ConnectTimeout: 3 * time.Second,
	}
}

// Validate checks that the configuration can be used to connect
func (c Config) Validate() error {
	if c.Socket == "" && c.Host == "" {
		return errors.New("mysqlz: either a host or a socket is required")
	}
	if c.Socket == "" && (c.Port < 0 || c.Port > 65535) {
		return errors.New("mysqlz: port " + strconv.Itoa(c.Port) + " is out of range")
	}
	if c.ConnectTimeout < 0 {
		return errors.New("mysqlz: negative connect timeout")
	}
	return nil
}

// FormatDSN renders the configuration as a go-sql-driver/mysql DSN
func (c Config) FormatDSN() string {
	mc := mysql.NewConfig()
	mc.User = c.User
	mc.Passwd = c.Password
	mc.DBName = c.Database
	mc.Timeout = c.ConnectTimeout

	if c.Socket != "" {
		mc.Net = "unix"
		mc.Addr = c.Socket
	} else {
		port := c.Port
		if port == 0 {
			port = 3306
		}
		mc.Net = "tcp"
		mc.Addr = net.JoinHostPort(c.Host, strconv.Itoa(port))
	}

	mc.Params = make(map[string]string, len(c.Params)+1)
	for k, v := range c.Params {
		mc.Params[k] = v
	}
	if c.Charset != "" {
		mc.Params["charset"] = c.Charset
	}

	return mc.FormatDSN()
}

// escaper returns the value escaper matching the server's SQL mode
func (c Config) escaper() Escaper {
	if c.NoBackslashEscapes {
		return QuotesEscaper{}
	}
	return BackslashEscaper{}
}
