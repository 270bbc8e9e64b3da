package mysqlz

import (
	"context"
	"regexp"
	"strings"
)

// variableName matches the names accepted for SET NAMES and SET variable
// commands; they are rendered unquoted
var variableName = regexp.MustCompile(`^[A-Za-z0-9_]+$`)

// SessionCmd represents a MySQL SET command, e.g. SET NAMES or
// SET SESSION sql_mode. Session commands passed to WithSessionCommands are
// executed every time the driver connects.
type SessionCmd struct {
	names bool
	level string
	name  string
	value interface{}
}

// SetNames creates a "SET NAMES 'charset'" command
func SetNames(charset string) SessionCmd {
	return SessionCmd{names: true, name: charset}
}

// SetVariable creates a "SET SESSION name = value" command. The value is
// quoted as a scalar value.
func SetVariable(name string, value interface{}) SessionCmd {
	return SessionCmd{level: "SESSION", name: name, value: value}
}

// Global makes the command set the global value of the variable rather
// than the session's. It has no effect on SET NAMES.
func (cmd SessionCmd) Global() SessionCmd {
	if !cmd.names {
		cmd.level = "GLOBAL"
	}
	return cmd
}

// ToSQL generates the command's SQL, quoting its value with q
func (cmd SessionCmd) ToSQL(q *Quoter) (string, error) {
	name := strings.TrimSpace(cmd.name)
	if !variableName.MatchString(name) {
		return "", invalidQuery("invalid name %q in SET command", cmd.name)
	}

	if cmd.names {
		return "SET NAMES '" + name + "'", nil
	}

	value, err := q.QuoteScalarValue(cmd.value)
	if err != nil {
		return "", err
	}

	return strings.Join([]string{"SET", cmd.level, name, "=", value}, " "), nil
}

// Set executes a session command through the driver
func (d *Driver) Set(ctx context.Context, cmd SessionCmd) error {
	asSQL, err := cmd.ToSQL(d.quoter)
	if err != nil {
		return d.HandleError(err)
	}
	_, err = d.Execute(ctx, asSQL)
	return err
}
