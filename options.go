package mysqlz

import (
	"database/sql"

	"github.com/jmoiron/sqlx"
	"go.uber.org/zap"
)

// Option configures a Driver
type Option func(*Driver)

// WithDB makes the driver use an already opened database handle instead of
// opening one from its configuration. The handle must use the mysql driver
// (or a mock of it).
func WithDB(db *sql.DB) Option {
	return func(d *Driver) {
		d.db = sqlx.NewDb(db, "mysql")
		d.injected = true
	}
}

// WithLogger sets the logger of the driver. Statements are logged at debug
// level, failures at error level.
func WithLogger(log *zap.Logger) Option {
	return func(d *Driver) {
		if log != nil {
			d.log = log
		}
	}
}

// WithErrorHandler adds a function called with every error the driver, or
// a builder created by it, returns
func WithErrorHandler(handler func(err error)) Option {
	return func(d *Driver) {
		d.ErrHandlers = append(d.ErrHandlers, handler)
	}
}

// WithSessionCommands sets commands executed right after connecting, e.g.
// SetVariable("sql_mode", "TRADITIONAL")
func WithSessionCommands(cmds ...SessionCmd) Option {
	return func(d *Driver) {
		d.session = append(d.session, cmds...)
	}
}

// WithEscaper overrides the value escaper chosen from the configuration
func WithEscaper(escaper Escaper) Option {
	return func(d *Driver) {
		if escaper != nil {
			d.quoter = NewQuoter(escaper)
		}
	}
}
