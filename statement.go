package mysqlz

// Statement is embedded by Builder and Driver. It holds error handlers which
// are called with every error those types return to the caller.
type Statement struct {
	// ErrHandlers is a list of error handler functions
	ErrHandlers []func(err error)
}

// HandleError receives an error value, and executes all of the statement's
// error handlers with it. It returns the error unchanged so calls can be
// chained in return statements.
func (stmt *Statement) HandleError(err error) error {
	if err == nil || stmt == nil {
		return err
	}
	for _, handler := range stmt.ErrHandlers {
		handler(err)
	}
	return err
}
