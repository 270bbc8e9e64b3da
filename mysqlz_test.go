package mysqlz

import (
	"errors"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
)

type test struct {
	name        string
	stmt        func() (string, error)
	expectedSQL string
	expectedErr error
}

func runTests(t *testing.T, source func(db *Driver) []test) {
	mockDB, _, err := sqlmock.New()
	if err != nil {
		t.Fatalf("Failed creating mock database: %s", err)
	}
	defer mockDB.Close()

	for _, tst := range source(New(DefaultConfig(), WithDB(mockDB))) {
		t.Run(tst.name, func(t *testing.T) {
			resultingSQL, err := tst.stmt()

			if tst.expectedErr != nil {
				if !errors.Is(err, tst.expectedErr) {
					t.Errorf("Failed %s: expected error %v, got %v", tst.name, tst.expectedErr, err)
				}
				if resultingSQL != "" {
					t.Errorf("Failed %s: expected no SQL on error, got %s", tst.name, resultingSQL)
				}
				return
			}

			if err != nil {
				t.Errorf("Failed %s: unexpected error %v", tst.name, err)
				return
			}

			if resultingSQL != tst.expectedSQL {
				t.Errorf("Failed %s: expected %s, got %s", tst.name, tst.expectedSQL, resultingSQL)
			}
		})
	}
}

// selectSQL, insertSQL, updateSQL and deleteSQL defer rendering until the
// test runs, after the builder was fully set up
func selectSQL(b *Builder, opts SelectOptions) func() (string, error) {
	return func() (string, error) { return b.SelectSQL(opts) }
}

func insertSQL(b *Builder, opts InsertOptions, rows ...Record) func() (string, error) {
	return func() (string, error) { return b.InsertSQL(opts, rows...) }
}

func updateSQL(b *Builder, row Record, opts UpdateOptions) func() (string, error) {
	return func() (string, error) { return b.UpdateSQL(row, opts) }
}

func deleteSQL(b *Builder, opts DeleteOptions) func() (string, error) {
	return func() (string, error) { return b.DeleteSQL(opts) }
}

// where adds a condition group to a builder and returns the builder
func where(b *Builder, build func(node *ConditionNode)) *Builder {
	build(b.AddConditions())
	return b
}
