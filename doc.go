// Package mysqlz is a MySQL statement builder and result materializer,
// based on github.com/jmoiron/sqlx and github.com/go-sql-driver/mysql.
//
// mysqlz does not use bound parameters. Every identifier given to a Builder
// is quoted with backticks and every value is escaped and inlined as a
// string literal, so the generated statements are complete SQL text that
// can be logged, printed or executed as-is. Only the explicitly raw inputs
// (WhereExists and WhereInQuery subqueries, RawColumns, RawValues and
// RawOnDuplicateValues) bypass quoting.
//
// A Builder accumulates a primary table, joins, groups of WHERE conditions,
// GROUP BY and ORDER BY columns, and generates one of four statements with
// SelectSQL, InsertSQL, UpdateSQL or DeleteSQL. Each of them validates the
// accumulated state for its own statement kind, e.g. an INSERT cannot have
// conditions.
//
// Rows fetched by a Driver are converted according to the column types
// reported by the server: DECIMAL, FLOAT and DOUBLE columns hold floats,
// integer columns up to MEDIUMINT hold integers, anything else is left as
// text.
//
//	import (
//		"context"
//		"fmt"
//
//		"github.com/ha-middleware/mysqlz"
//	)
//
//	func main() {
//		cfg := mysqlz.DefaultConfig()
//		cfg.User, cfg.Database = "app", "shop"
//
//		db := mysqlz.New(cfg)
//		defer db.Close()
//
//		q := db.NewQuery().TableAs("users", "u")
//		q.AddConditions().
//			WhereEq("u.active", true).
//			AddConditions().
//			ChangeJoinOperator("OR").
//			WhereLike("u.name", "jo%").
//			WhereGt("u.karma", 100)
//
//		rs, err := q.Select(context.Background(), mysqlz.SelectOptions{
//			Columns: []string{"u.id", "u.name"},
//			Page:    mysqlz.Page(20, 10),
//		})
//		if err != nil {
//			panic(err)
//		}
//
//		for _, row := range rs.Rows() {
//			fmt.Println(row.Values())
//		}
//	}
package mysqlz
