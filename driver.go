package mysqlz

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/spf13/cast"
	"go.uber.org/zap"
)

// rowStatements holds the leading keywords of statements that return rows
var rowStatements = []string{
	"SELECT", "SHOW", "DESCRIBE", "DESC", "EXPLAIN", "WITH",
	"CALL", "TABLE", "VALUES",
}

// Driver executes statements against a MySQL server over a single
// connection, and materializes their results. The connection is opened
// explicitly with Connect, or on the first execution.
//
// A Driver is not meant for concurrent use; create one per goroutine, or
// synchronize access externally.
type Driver struct {
	*Statement
	cfg       Config
	db        *sqlx.DB
	log       *zap.Logger
	quoter    *Quoter
	session   []SessionCmd
	mu        sync.Mutex
	connected bool
	injected  bool
	closed    bool
	queries   atomic.Int64
}

// New creates a new Driver for the provided configuration. Nothing is
// opened until Connect or Execute is called.
func New(cfg Config, opts ...Option) *Driver {
	d := &Driver{
		Statement: &Statement{},
		cfg:       cfg,
		log:       zap.NewNop(),
		quoter:    NewQuoter(cfg.escaper()),
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// Quoter returns the Quoter configured for the server's escaping mode.
// Quoting never needs a connection.
func (d *Driver) Quoter() *Quoter {
	return d.quoter
}

// NewQuery creates a Builder quoting with the driver's Quoter. Statements
// built with it can be executed directly through Select, Insert, Update and
// Delete, and its errors are passed to the driver's error handlers.
func (d *Driver) NewQuery() *Builder {
	b := NewBuilder(d.quoter)
	b.driver = d
	b.Statement = &Statement{ErrHandlers: append([]func(error){}, d.ErrHandlers...)}
	return b
}

// Connect opens the connection to the server and executes the session
// commands. Calling it on a connected driver does nothing.
func (d *Driver) Connect(ctx context.Context) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.connected {
		return nil
	}

	if d.closed && d.injected {
		return d.HandleError(fmt.Errorf("%w: driver was closed and its database handle was provided with WithDB", ErrConnectionFailure))
	}

	if d.db == nil {
		if err := d.cfg.Validate(); err != nil {
			return d.HandleError(fmt.Errorf("%w: %w", ErrConnectionFailure, err))
		}
		db, err := sqlx.Open("mysql", d.cfg.FormatDSN())
		if err != nil {
			return d.HandleError(fmt.Errorf("%w: %w", ErrConnectionFailure, err))
		}
		d.db = db
	}

	// FOUND_ROWS() and session variables are per connection
	d.db.SetMaxOpenConns(1)
	d.db.SetMaxIdleConns(1)

	if d.cfg.ConnectTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, d.cfg.ConnectTimeout)
		defer cancel()
	}

	if err := d.db.PingContext(ctx); err != nil {
		d.log.Error("failed connecting to database", zap.String("addr", d.addr()), zap.Error(err))
		return d.HandleError(fmt.Errorf("%w: %w", ErrConnectionFailure, err))
	}

	for _, cmd := range d.session {
		asSQL, err := cmd.ToSQL(d.quoter)
		if err != nil {
			return d.HandleError(err)
		}
		if _, err := d.db.ExecContext(ctx, asSQL); err != nil {
			d.log.Error("failed executing session command", zap.String("query", asSQL), zap.Error(err))
			return d.HandleError(fmt.Errorf("%w: %w", ErrConnectionFailure, classifyError(err, asSQL)))
		}
		d.queries.Add(1)
	}

	d.connected = true
	d.log.Info("connected to database", zap.String("addr", d.addr()), zap.String("database", d.cfg.Database))

	return nil
}

// IsConnected reports whether Connect succeeded and Close was not called
// since
func (d *Driver) IsConnected() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.connected
}

// Close closes the connection. The driver connects again on the next
// execution, unless its database handle was provided with WithDB: that
// handle cannot be reopened, so executions fail with ErrConnectionFailure.
func (d *Driver) Close() error {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.db == nil {
		return nil
	}

	err := d.db.Close()
	d.db = nil
	d.connected = false
	d.closed = true
	return err
}

// TotalQueries returns the number of statements executed by the driver
func (d *Driver) TotalQueries() int64 {
	return d.queries.Load()
}

// Execute executes a statement and returns its result. Rows of statements
// that return rows are fetched, and converted according to the column types
// reported by the server (see ResultSet.ApplySchema).
//
// Failures are returned as a *QueryError whose kind is ErrAlreadyExists for
// duplicate keys, ErrForeignKeyRestriction for foreign key violations and
// ErrExecutionFailure for anything else.
func (d *Driver) Execute(ctx context.Context, query string) (*ResultSet, error) {
	if err := d.Connect(ctx); err != nil {
		return nil, err
	}

	start := time.Now()
	d.queries.Add(1)

	var rs *ResultSet
	var err error
	if returnsRows(query) {
		rs, err = d.query(ctx, query)
	} else {
		rs, err = d.exec(ctx, query)
	}

	elapsed := time.Since(start)

	if err != nil {
		qe := classifyError(err, query)
		d.log.Error(
			"query failed",
			zap.String("query", query),
			zap.Duration("elapsed", elapsed),
			zap.Uint16("code", qe.Code),
			zap.Error(err),
		)
		return nil, d.HandleError(qe)
	}

	rs.queryTime = elapsed
	rs.ApplySchema()

	d.log.Debug(
		"query executed",
		zap.String("query", query),
		zap.Duration("elapsed", elapsed),
		zap.Int("rows", rs.Len()),
		zap.Int64("affected", rs.affectedRows),
	)

	return rs, nil
}

func (d *Driver) query(ctx context.Context, query string) (*ResultSet, error) {
	rows, err := d.db.QueryxContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	types, err := rows.ColumnTypes()
	if err != nil {
		return nil, err
	}

	rs := &ResultSet{schema: make([]Column, len(types))}
	names := make([]string, len(types))
	for i, ct := range types {
		names[i] = ct.Name()
		rs.schema[i] = Column{
			Name:         ct.Name(),
			Type:         TypeTagOf(ct.DatabaseTypeName()),
			DatabaseType: ct.DatabaseTypeName(),
		}
	}

	for rows.Next() {
		raw, err := rows.SliceScan()
		if err != nil {
			return nil, err
		}
		values := make([]Value, len(raw))
		for i, v := range raw {
			values[i] = fetchedValue(v)
		}
		rs.rows = append(rs.rows, &Row{names: append([]string{}, names...), values: values})
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	rs.affectedRows = int64(len(rs.rows))

	return rs, nil
}

func (d *Driver) exec(ctx context.Context, query string) (*ResultSet, error) {
	res, err := d.db.ExecContext(ctx, query)
	if err != nil {
		return nil, err
	}

	rs := &ResultSet{}
	if affected, err := res.RowsAffected(); err == nil {
		rs.affectedRows = affected
	}
	if id, err := res.LastInsertId(); err == nil {
		rs.lastInsertID = id
	}

	return rs, nil
}

// ReadSingleRow executes a statement that must return exactly one row, and
// returns it. Any other number of rows fails with ErrCountMismatch; a
// statement that returns no rows at all (e.g. an UPDATE) fails with
// ErrNotFound.
func (d *Driver) ReadSingleRow(ctx context.Context, query string) (*Row, error) {
	rs, err := d.Execute(ctx, query)
	if err != nil {
		return nil, err
	}

	if rs.schema == nil {
		return nil, d.HandleError(fmt.Errorf("%w: statement returned no result set, query: %s", ErrNotFound, query))
	}

	if rs.Len() != 1 {
		return nil, d.HandleError(fmt.Errorf("%w: expected exactly one row, got %d, query: %s", ErrCountMismatch, rs.Len(), query))
	}

	return rs.rows[0], nil
}

// ReadSingleValue executes a statement that must return exactly one row
// with exactly one field, and returns the field's value
func (d *Driver) ReadSingleValue(ctx context.Context, query string) (Value, error) {
	row, err := d.ReadSingleRow(ctx, query)
	if err != nil {
		return Null(), err
	}

	if row.Len() != 1 {
		return Null(), d.HandleError(fmt.Errorf("%w: expected exactly one field, got %d, query: %s", ErrCountMismatch, row.Len(), query))
	}

	return row.values[0], nil
}

// ReadString reads a single value as a string. NULL is read as an empty
// string.
func (d *Driver) ReadString(ctx context.Context, query string) (string, error) {
	v, err := d.ReadSingleValue(ctx, query)
	if err != nil {
		return "", err
	}
	s, err := cast.ToStringE(v.Interface())
	if err != nil {
		return "", d.HandleError(fmt.Errorf("%w: %w", ErrTypeMismatch, err))
	}
	return s, nil
}

// ReadInt reads a single value as an integer
func (d *Driver) ReadInt(ctx context.Context, query string) (int64, error) {
	v, err := d.ReadSingleValue(ctx, query)
	if err != nil {
		return 0, err
	}
	i, err := v.Int()
	if err != nil {
		return 0, d.HandleError(err)
	}
	return i, nil
}

// ReadFloat reads a single value as a float
func (d *Driver) ReadFloat(ctx context.Context, query string) (float64, error) {
	v, err := d.ReadSingleValue(ctx, query)
	if err != nil {
		return 0, err
	}
	f, err := v.Float()
	if err != nil {
		return 0, d.HandleError(err)
	}
	return f, nil
}

// FoundRows returns the number of rows the last SELECT with
// SQL_CALC_FOUND_ROWS would have returned without its LIMIT clause
func (d *Driver) FoundRows(ctx context.Context) (int64, error) {
	return d.ReadInt(ctx, "SELECT FOUND_ROWS()")
}

func (d *Driver) addr() string {
	if d.cfg.Socket != "" {
		return d.cfg.Socket
	}
	return d.cfg.Host + ":" + cast.ToString(d.cfg.Port)
}

// returnsRows reports whether a statement returns rows, judging by its
// leading keyword. Comments before the keyword are skipped.
func returnsRows(query string) bool {
	query = skipComments(query)
	if strings.HasPrefix(query, "(") {
		return true
	}
	end := strings.IndexFunc(query, func(r rune) bool {
		return r == ' ' || r == '\t' || r == '\n' || r == '\r' || r == '('
	})
	if end < 0 {
		end = len(query)
	}
	keyword := strings.ToUpper(query[:end])
	for _, kw := range rowStatements {
		if keyword == kw {
			return true
		}
	}
	return false
}

// skipComments trims leading whitespace and /* */, -- and # comments
func skipComments(query string) string {
	for {
		query = strings.TrimSpace(query)
		switch {
		case strings.HasPrefix(query, "/*"):
			end := strings.Index(query[2:], "*/")
			if end < 0 {
				return ""
			}
			query = query[end+4:]
		case strings.HasPrefix(query, "#"), isDashComment(query):
			end := strings.IndexByte(query, '\n')
			if end < 0 {
				return ""
			}
			query = query[end+1:]
		default:
			return query
		}
	}
}

// isDashComment reports whether query starts with a "-- " comment. MySQL
// requires whitespace (or the end of input) after the two dashes.
func isDashComment(query string) bool {
	if !strings.HasPrefix(query, "--") {
		return false
	}
	return len(query) == 2 || strings.ContainsRune(" \t\n\r", rune(query[2]))
}
