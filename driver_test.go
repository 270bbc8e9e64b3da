package mysqlz

import (
	"context"
	"errors"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/go-sql-driver/mysql"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

func newMockDriver(t *testing.T, opts ...Option) (*Driver, sqlmock.Sqlmock) {
	t.Helper()

	mockDB, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherEqual))
	require.NoError(t, err)
	t.Cleanup(func() { mockDB.Close() })

	return New(DefaultConfig(), append([]Option{WithDB(mockDB)}, opts...)...), mock
}

func TestExecuteSelect(t *testing.T) {
	db, mock := newMockDriver(t)

	rows := sqlmock.NewRowsWithColumnDefinition(
		sqlmock.NewColumn("id").OfType("BIGINT", int64(0)),
		sqlmock.NewColumn("name").OfType("VARCHAR", ""),
		sqlmock.NewColumn("price").OfType("DECIMAL", float64(0)),
		sqlmock.NewColumn("qty").OfType("INT", int64(0)),
	).
		AddRow(int64(1), "widget", "5.90", "42").
		AddRow(int64(2), "gadget", nil, "7")

	mock.ExpectQuery("SELECT * FROM `products`").WillReturnRows(rows).RowsWillBeClosed()

	rs, err := db.Execute(context.Background(), "SELECT * FROM `products`")
	require.NoError(t, err)

	require.Equal(t, 2, rs.Len())
	assert.Equal(t, int64(2), rs.AffectedRows())
	assert.Equal(t, []Value{Int(1), String("widget"), Float(5.9), Int(42)}, rs.Rows()[0].Values())
	assert.Equal(t, []Value{Int(2), String("gadget"), Null(), Int(7)}, rs.Rows()[1].Values())

	schema := rs.Schema()
	require.Len(t, schema, 4)
	assert.Equal(t, Column{Name: "price", Type: TypeNewDecimal, DatabaseType: "DECIMAL"}, schema[2])
	assert.Equal(t, TypeLongLong, schema[0].Type)

	assert.Equal(t, int64(1), db.TotalQueries())
	assert.True(t, db.IsConnected())
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestExecuteWrite(t *testing.T) {
	db, mock := newMockDriver(t)

	mock.ExpectExec("INSERT INTO `users` (`name`) VALUES (\"John\")").
		WillReturnResult(sqlmock.NewResult(7, 1))

	rs, err := db.Execute(context.Background(), "INSERT INTO `users` (`name`) VALUES (\"John\")")
	require.NoError(t, err)

	assert.Equal(t, int64(7), rs.LastInsertID())
	assert.Equal(t, int64(1), rs.AffectedRows())
	assert.Equal(t, 0, rs.Len())
	assert.Nil(t, rs.Schema())
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestExecuteErrors(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		expected error
		code     uint16
	}{
		{"duplicate entry", &mysql.MySQLError{Number: 1062, Message: "Duplicate entry 'a' for key 'name'"}, ErrAlreadyExists, 1062},
		{"parent row", &mysql.MySQLError{Number: 1451, Message: "Cannot delete or update a parent row"}, ErrForeignKeyRestriction, 1451},
		{"child row", &mysql.MySQLError{Number: 1452, Message: "Cannot add or update a child row"}, ErrForeignKeyRestriction, 1452},
		{"syntax error", &mysql.MySQLError{Number: 1064, Message: "You have an error in your SQL syntax"}, ErrExecutionFailure, 1064},
		{"generic error", errors.New("broken pipe"), ErrExecutionFailure, 0},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			var handled int
			db, mock := newMockDriver(t, WithErrorHandler(func(err error) { handled++ }))

			const query = "INSERT INTO `users` (`name`) VALUES (\"a\")"
			mock.ExpectExec(query).WillReturnError(tc.err)

			rs, err := db.Execute(context.Background(), query)
			assert.Nil(t, rs)
			assert.ErrorIs(t, err, tc.expected)
			assert.ErrorIs(t, err, tc.err)

			var qe *QueryError
			require.True(t, errors.As(err, &qe))
			assert.Equal(t, query, qe.Query)
			assert.Equal(t, tc.code, qe.Code)
			assert.Contains(t, err.Error(), query)

			assert.Equal(t, 1, handled)
			assert.NoError(t, mock.ExpectationsWereMet())
		})
	}
}

func TestExecuteRowError(t *testing.T) {
	db, mock := newMockDriver(t)

	rows := sqlmock.NewRowsWithColumnDefinition(sqlmock.NewColumn("id").OfType("INT", int64(0))).
		AddRow(int64(1)).
		AddRow(int64(2)).
		RowError(1, errors.New("connection reset"))

	mock.ExpectQuery("SELECT `id` FROM `users`").WillReturnRows(rows).RowsWillBeClosed()

	_, err := db.Execute(context.Background(), "SELECT `id` FROM `users`")
	assert.ErrorIs(t, err, ErrExecutionFailure)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestConnect(t *testing.T) {
	t.Run("ping failure", func(t *testing.T) {
		mockDB, mock, err := sqlmock.New(sqlmock.MonitorPingsOption(true))
		require.NoError(t, err)
		defer mockDB.Close()

		mock.ExpectPing().WillReturnError(errors.New("connection refused"))

		db := New(DefaultConfig(), WithDB(mockDB))
		err = db.Connect(context.Background())
		assert.ErrorIs(t, err, ErrConnectionFailure)
		assert.False(t, db.IsConnected())

		_, err = db.Execute(context.Background(), "SELECT 1")
		assert.ErrorIs(t, err, ErrConnectionFailure)
		assert.Equal(t, int64(0), db.TotalQueries())
	})

	t.Run("connects once", func(t *testing.T) {
		mockDB, mock, err := sqlmock.New(sqlmock.MonitorPingsOption(true))
		require.NoError(t, err)
		defer mockDB.Close()

		mock.ExpectPing()

		db := New(DefaultConfig(), WithDB(mockDB))
		require.NoError(t, db.Connect(context.Background()))
		require.NoError(t, db.Connect(context.Background()))
		assert.True(t, db.IsConnected())
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("invalid config", func(t *testing.T) {
		db := New(Config{Port: 3306})
		assert.ErrorIs(t, db.Connect(context.Background()), ErrConnectionFailure)
	})
}

func TestSessionCommandsOnConnect(t *testing.T) {
	db, mock := newMockDriver(t, WithSessionCommands(
		SetNames("utf8"),
		SetVariable("sql_mode", "TRADITIONAL"),
	))

	mock.ExpectExec("SET NAMES 'utf8'").WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectExec("SET SESSION sql_mode = \"TRADITIONAL\"").WillReturnResult(sqlmock.NewResult(0, 0))

	require.NoError(t, db.Connect(context.Background()))
	assert.Equal(t, int64(2), db.TotalQueries())
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSessionCommandFailure(t *testing.T) {
	db, mock := newMockDriver(t, WithSessionCommands(SetVariable("sql_mode", "NOPE")))

	mock.ExpectExec("SET SESSION sql_mode = \"NOPE\"").
		WillReturnError(&mysql.MySQLError{Number: 1231, Message: "Variable 'sql_mode' can't be set"})

	err := db.Connect(context.Background())
	assert.ErrorIs(t, err, ErrConnectionFailure)
	assert.ErrorIs(t, err, ErrExecutionFailure)
	assert.False(t, db.IsConnected())
}

func TestSet(t *testing.T) {
	db, mock := newMockDriver(t)

	mock.ExpectExec("SET GLOBAL max_connections = \"200\"").WillReturnResult(sqlmock.NewResult(0, 0))

	require.NoError(t, db.Set(context.Background(), SetVariable("max_connections", 200).Global()))
	assert.ErrorIs(t, db.Set(context.Background(), SetVariable("bad name", 1)), ErrInvalidQuery)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestReadSingle(t *testing.T) {
	ctx := context.Background()

	intColumn := func(name string) *sqlmock.Column {
		return sqlmock.NewColumn(name).OfType("INT", int64(0))
	}

	t.Run("single row", func(t *testing.T) {
		db, mock := newMockDriver(t)
		mock.ExpectQuery("SELECT `id`, `age` FROM `users` WHERE (`id`=\"5\")").
			WillReturnRows(sqlmock.NewRowsWithColumnDefinition(intColumn("id"), intColumn("age")).AddRow("5", "30"))

		row, err := db.ReadSingleRow(ctx, "SELECT `id`, `age` FROM `users` WHERE (`id`=\"5\")")
		require.NoError(t, err)
		age, _ := row.Get("age")
		assert.Equal(t, Int(30), age)
	})

	t.Run("no rows", func(t *testing.T) {
		db, mock := newMockDriver(t)
		mock.ExpectQuery("SELECT `id` FROM `users`").
			WillReturnRows(sqlmock.NewRowsWithColumnDefinition(intColumn("id")))

		_, err := db.ReadSingleRow(ctx, "SELECT `id` FROM `users`")
		assert.ErrorIs(t, err, ErrCountMismatch)
	})

	t.Run("two rows", func(t *testing.T) {
		db, mock := newMockDriver(t)
		mock.ExpectQuery("SELECT `id` FROM `users`").
			WillReturnRows(sqlmock.NewRowsWithColumnDefinition(intColumn("id")).AddRow(1).AddRow(2))

		_, err := db.ReadSingleValue(ctx, "SELECT `id` FROM `users`")
		assert.ErrorIs(t, err, ErrCountMismatch)
	})

	t.Run("two fields", func(t *testing.T) {
		db, mock := newMockDriver(t)
		mock.ExpectQuery("SELECT `id`, `age` FROM `users`").
			WillReturnRows(sqlmock.NewRowsWithColumnDefinition(intColumn("id"), intColumn("age")).AddRow(1, 2))

		_, err := db.ReadSingleValue(ctx, "SELECT `id`, `age` FROM `users`")
		assert.ErrorIs(t, err, ErrCountMismatch)
	})

	t.Run("statement without rows", func(t *testing.T) {
		db, mock := newMockDriver(t)
		mock.ExpectExec("UPDATE `users` SET `age`=\"31\"").WillReturnResult(sqlmock.NewResult(0, 3))

		_, err := db.ReadSingleRow(ctx, "UPDATE `users` SET `age`=\"31\"")
		assert.ErrorIs(t, err, ErrNotFound)
	})
}

func TestReadTypedValues(t *testing.T) {
	ctx := context.Background()
	db, mock := newMockDriver(t)

	mock.ExpectQuery("SELECT COUNT(*) FROM `users`").
		WillReturnRows(sqlmock.NewRowsWithColumnDefinition(sqlmock.NewColumn("COUNT(*)").OfType("BIGINT", int64(0))).AddRow(int64(12)))
	mock.ExpectQuery("SELECT AVG(`age`) FROM `users`").
		WillReturnRows(sqlmock.NewRowsWithColumnDefinition(sqlmock.NewColumn("AVG(`age`)").OfType("DECIMAL", float64(0))).AddRow("31.50"))
	mock.ExpectQuery("SELECT `name` FROM `users` LIMIT 1").
		WillReturnRows(sqlmock.NewRowsWithColumnDefinition(sqlmock.NewColumn("name").OfType("VARCHAR", "")).AddRow("John"))
	mock.ExpectQuery("SELECT `name` FROM `users` LIMIT 1").
		WillReturnRows(sqlmock.NewRowsWithColumnDefinition(sqlmock.NewColumn("name").OfType("VARCHAR", "")).AddRow("John"))
	mock.ExpectQuery("SELECT `deleted_at` FROM `users` LIMIT 1").
		WillReturnRows(sqlmock.NewRowsWithColumnDefinition(sqlmock.NewColumn("deleted_at").OfType("DATETIME", "")).AddRow(nil))

	count, err := db.ReadInt(ctx, "SELECT COUNT(*) FROM `users`")
	require.NoError(t, err)
	assert.Equal(t, int64(12), count)

	avg, err := db.ReadFloat(ctx, "SELECT AVG(`age`) FROM `users`")
	require.NoError(t, err)
	assert.Equal(t, 31.5, avg)

	name, err := db.ReadString(ctx, "SELECT `name` FROM `users` LIMIT 1")
	require.NoError(t, err)
	assert.Equal(t, "John", name)

	_, err = db.ReadInt(ctx, "SELECT `name` FROM `users` LIMIT 1")
	assert.ErrorIs(t, err, ErrTypeMismatch)

	deleted, err := db.ReadString(ctx, "SELECT `deleted_at` FROM `users` LIMIT 1")
	require.NoError(t, err)
	assert.Equal(t, "", deleted)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestFoundRows(t *testing.T) {
	ctx := context.Background()
	db, mock := newMockDriver(t)

	mock.ExpectQuery("SELECT SQL_CALC_FOUND_ROWS * FROM `users` LIMIT 1").
		WillReturnRows(sqlmock.NewRowsWithColumnDefinition(sqlmock.NewColumn("id").OfType("INT", int64(0))).AddRow(1))
	mock.ExpectQuery("SELECT FOUND_ROWS()").
		WillReturnRows(sqlmock.NewRowsWithColumnDefinition(sqlmock.NewColumn("FOUND_ROWS()").OfType("BIGINT", int64(0))).AddRow(int64(42)))

	rs, err := db.NewQuery().Table("users").Select(ctx, SelectOptions{CalcFoundRows: true, Page: Limit(1)})
	require.NoError(t, err)
	assert.Equal(t, 1, rs.Len())

	found, err := db.FoundRows(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(42), found)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestBuilderExecution(t *testing.T) {
	ctx := context.Background()
	db, mock := newMockDriver(t)

	mock.ExpectExec("INSERT INTO `users` (`name`) VALUES (\"John\")").WillReturnResult(sqlmock.NewResult(3, 1))
	mock.ExpectExec("UPDATE `users` SET `name`=\"Jane\" WHERE (`id`=\"3\")").WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec("DELETE FROM `users` WHERE (`id`=\"3\")").WillReturnResult(sqlmock.NewResult(0, 1))

	rs, err := db.NewQuery().Table("users").Insert(ctx, InsertOptions{}, Record{{"name", "John"}})
	require.NoError(t, err)
	assert.Equal(t, int64(3), rs.LastInsertID())

	update := where(db.NewQuery().Table("users"), func(node *ConditionNode) { node.WhereEq("id", 3) })
	rs, err = update.Update(ctx, Record{{"name", "Jane"}}, UpdateOptions{})
	require.NoError(t, err)
	assert.Equal(t, int64(1), rs.AffectedRows())

	del := where(db.NewQuery().Table("users"), func(node *ConditionNode) { node.WhereEq("id", 3) })
	_, err = del.Delete(ctx, DeleteOptions{})
	require.NoError(t, err)

	// statements that fail to render never reach the server
	_, err = db.NewQuery().Select(ctx, SelectOptions{})
	assert.ErrorIs(t, err, ErrInvalidQuery)

	assert.Equal(t, int64(3), db.TotalQueries())
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestExecuteCommentedSelect(t *testing.T) {
	db, mock := newMockDriver(t)

	const query = "/* report */ SELECT `id` FROM `users`"
	mock.ExpectQuery(query).
		WillReturnRows(sqlmock.NewRowsWithColumnDefinition(sqlmock.NewColumn("id").OfType("INT", int64(0))).AddRow("3"))

	row, err := db.ReadSingleRow(context.Background(), query)
	require.NoError(t, err)
	assert.Equal(t, []Value{Int(3)}, row.Values())
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestBuilderWithoutDriver(t *testing.T) {
	_, err := NewBuilder(nil).Table("users").Select(context.Background(), SelectOptions{})
	assert.ErrorIs(t, err, ErrConnectionFailure)
}

func TestBuilderSharesErrorHandlers(t *testing.T) {
	var handled []error
	db, _ := newMockDriver(t, WithErrorHandler(func(err error) { handled = append(handled, err) }))

	db.NewQuery().Table("")
	require.Len(t, handled, 1)
	assert.ErrorIs(t, handled[0], ErrInvalidQuery)
}

func TestBuilderErrorHandlersAreCopied(t *testing.T) {
	var driverCalls, builderCalls int
	db, _ := newMockDriver(t,
		WithErrorHandler(func(error) { driverCalls++ }),
		WithErrorHandler(func(error) { driverCalls++ }),
		WithErrorHandler(func(error) { driverCalls++ }),
	)

	b := db.NewQuery()
	b.ErrHandlers = append(b.ErrHandlers, func(error) { builderCalls++ })
	other := db.NewQuery()
	other.ErrHandlers = append(other.ErrHandlers, func(error) {})

	require.Len(t, db.ErrHandlers, 3)

	b.Table("")
	assert.Equal(t, 3, driverCalls)
	assert.Equal(t, 1, builderCalls)

	db.HandleError(errors.New("x"))
	assert.Equal(t, 6, driverCalls)
	assert.Equal(t, 1, builderCalls)
}

func TestExecuteLogsQueries(t *testing.T) {
	core, logs := observer.New(zap.DebugLevel)
	db, mock := newMockDriver(t, WithLogger(zap.New(core)))

	mock.ExpectExec("DELETE FROM `sessions`").WillReturnResult(sqlmock.NewResult(0, 4))
	mock.ExpectExec("DELETE FROM `nope`").WillReturnError(errors.New("boom"))

	_, err := db.Execute(context.Background(), "DELETE FROM `sessions`")
	require.NoError(t, err)
	_, err = db.Execute(context.Background(), "DELETE FROM `nope`")
	require.Error(t, err)

	executed := logs.FilterMessage("query executed").All()
	require.Len(t, executed, 1)
	assert.Equal(t, "DELETE FROM `sessions`", executed[0].ContextMap()["query"])
	assert.Equal(t, int64(4), executed[0].ContextMap()["affected"])

	failed := logs.FilterMessage("query failed").All()
	require.Len(t, failed, 1)
	assert.Equal(t, zap.ErrorLevel, failed[0].Level)

	assert.Equal(t, 1, logs.FilterMessage("connected to database").Len())
}

func TestClose(t *testing.T) {
	db, mock := newMockDriver(t)

	require.NoError(t, db.Connect(context.Background()))
	mock.ExpectClose()

	require.NoError(t, db.Close())
	assert.False(t, db.IsConnected())
	assert.NoError(t, db.Close())
	assert.NoError(t, mock.ExpectationsWereMet())

	// the handle came from WithDB, so it is never replaced by a new
	// connection to the configured address
	_, err := db.Execute(context.Background(), "SELECT 1")
	assert.ErrorIs(t, err, ErrConnectionFailure)
	assert.ErrorIs(t, db.Connect(context.Background()), ErrConnectionFailure)
	assert.False(t, db.IsConnected())
}

func TestReturnsRows(t *testing.T) {
	tests := []struct {
		query    string
		expected bool
	}{
		{"SELECT 1", true},
		{"  select\n*", true},
		{"(SELECT 1) UNION (SELECT 2)", true},
		{"SHOW TABLES", true},
		{"DESCRIBE `users`", true},
		{"DESC `users`", true},
		{"EXPLAIN SELECT 1", true},
		{"WITH t AS (SELECT 1) SELECT * FROM t", true},
		{"SELECT(1)", true},
		{"/* report */ SELECT `id` FROM `users`", true},
		{"/* a */ /* b */\nSELECT 1", true},
		{"-- x\nSELECT 1", true},
		{"# x\nSELECT 1", true},
		{"--\nSHOW TABLES", true},
		{"CALL p()", true},
		{"TABLE t", true},
		{"VALUES ROW(1)", true},
		{"/* report */ DELETE FROM `t`", false},
		{"-- SELECT\nDELETE FROM `t`", false},
		{"/* unterminated SELECT", false},
		{"-- only a comment", false},
		{"INSERT INTO `t` (`a`) VALUES (\"1\")", false},
		{"UPDATE `t` SET `a`=\"1\"", false},
		{"DELETE FROM `t`", false},
		{"SET NAMES 'utf8'", false},
		{"SELECTED", false},
		{"", false},
	}

	for _, tc := range tests {
		assert.Equal(t, tc.expected, returnsRows(tc.query), tc.query)
	}
}
