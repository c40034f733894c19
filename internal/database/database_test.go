package database

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/go-sql-driver/mysql"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalizeDSN(t *testing.T) {
	dsn, err := normalizeDSN("cart:secret@tcp(db:3306)/taptosell_cart")
	require.NoError(t, err)

	cfg, err := mysql.ParseDSN(dsn)
	require.NoError(t, err)
	assert.True(t, cfg.ParseTime)
	assert.Equal(t, "UTC", cfg.Loc.String())
	assert.Equal(t, "taptosell_cart", cfg.DBName)

	_, err = normalizeDSN("not a dsn")
	assert.Error(t, err)
}

func TestIsDuplicateKey(t *testing.T) {
	assert.True(t, isDuplicateKey(&mysql.MySQLError{Number: 1062}))
	assert.False(t, isDuplicateKey(&mysql.MySQLError{Number: 1213}))
	assert.False(t, isDuplicateKey(errors.New("1062")))
}

func TestIsOutOfRange(t *testing.T) {
	assert.True(t, isOutOfRange(&mysql.MySQLError{Number: 1264}))
	assert.True(t, isOutOfRange(&mysql.MySQLError{Number: 3819}))
	assert.False(t, isOutOfRange(&mysql.MySQLError{Number: 1062}))
	assert.False(t, isOutOfRange(nil))
}

func TestSchemaOrdersCartItemsBySequence(t *testing.T) {
	assert.Contains(t, schema, "seq        BIGINT UNSIGNED NOT NULL AUTO_INCREMENT")
	assert.Contains(t, schema, "UNIQUE KEY uq_cart_items_seq (seq)")
}

func TestStatements(t *testing.T) {
	stmts := statements("CREATE TABLE a (x INT);\n\n  CREATE TABLE b (y INT) ;\n")
	assert.Equal(t, []string{"CREATE TABLE a (x INT)", "CREATE TABLE b (y INT)"}, stmts)
}

func TestEmbeddedSchema(t *testing.T) {
	stmts := statements(schema)
	require.NotEmpty(t, stmts)

	joined := strings.Join(stmts, "\n")
	for _, table := range []string{"users", "addresses", "carts", "cart_items", "orders", "order_items"} {
		assert.Contains(t, joined, "CREATE TABLE IF NOT EXISTS "+table+" ")
	}
	assert.Contains(t, joined, "uq_orders_cart")
}

func TestMigrate(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	for range statements(schema) {
		mock.ExpectExec("CREATE TABLE").WillReturnResult(sqlmock.NewResult(0, 0))
	}
	require.NoError(t, Migrate(context.Background(), db))
	assert.NoError(t, mock.ExpectationsWereMet())
}
