package db

import (
	"errors"
	"fmt"
	"os"
	"testing"

	"github.com/go-sql-driver/mysql"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSplitSQLStatements(t *testing.T) {
	schema := `
-- users
CREATE TABLE a (id INT);

  -- indented comment
CREATE TABLE b (
    id INT
);
;
`
	got := splitSQLStatements(schema)

	require.Len(t, got, 2)
	assert.Equal(t, "CREATE TABLE a (id INT)", got[0])
	assert.Contains(t, got[1], "CREATE TABLE b")
}

func TestSchemaFileSplits(t *testing.T) {
	raw, err := os.ReadFile("../../schema.sql")
	require.NoError(t, err)

	stmts := splitSQLStatements(string(raw))
	require.NotEmpty(t, stmts)
	for _, s := range stmts {
		assert.Regexp(t, `^CREATE TABLE IF NOT EXISTS `, s)
	}
}

func TestIsDuplicateEntry(t *testing.T) {
	dup := &mysql.MySQLError{Number: 1062, Message: "Duplicate entry '1' for key 'carts.owner_id'"}

	assert.True(t, IsDuplicateEntry(dup))
	assert.True(t, IsDuplicateEntry(fmt.Errorf("insert cart: %w", dup)))
	assert.False(t, IsDuplicateEntry(&mysql.MySQLError{Number: 1452}))
	assert.False(t, IsDuplicateEntry(errors.New("Duplicate entry")))
	assert.False(t, IsDuplicateEntry(nil))
}
