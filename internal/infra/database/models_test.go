package database_test

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/sqlitedialect"

	"botfleet/internal/domain/bot"
	"botfleet/internal/infra/database"

	_ "github.com/mattn/go-sqlite3"
)

func setupTestDB(t *testing.T) *bun.DB {
	sqldb, err := sql.Open("sqlite3", ":memory:")
	require.NoError(t, err)
	return bun.NewDB(sqldb, sqlitedialect.New())
}

func TestBotModel_CreateTable(t *testing.T) {
	db := setupTestDB(t)
	defer db.Close()
	ctx := context.Background()

	_, err := db.NewCreateTable().Model((*database.BotModel)(nil)).IfNotExists().Exec(ctx)
	require.NoError(t, err, "should be able to create fleet_bots table")

	var count int
	err = db.NewSelect().
		ColumnExpr("COUNT(*)").
		TableExpr("sqlite_master").
		Where("type = ? AND name = ?", "table", "fleet_bots").
		Scan(ctx, &count)
	require.NoError(t, err)
	assert.Equal(t, 1, count, "fleet_bots table should exist")

	rows, err := db.QueryContext(ctx, "PRAGMA table_info(fleet_bots)")
	require.NoError(t, err)
	defer rows.Close()

	columns := make(map[string]bool)
	for rows.Next() {
		var cid int
		var name, dataType string
		var notNull, pk int
		var defaultValue sql.NullString
		require.NoError(t, rows.Scan(&cid, &name, &dataType, &notNull, &defaultValue, &pk))
		columns[name] = true
	}

	for _, col := range []string{
		"id", "name", "phone", "tenant", "status", "approval_status",
		"feature_typing_mode", "created_at", "updated_at",
	} {
		assert.True(t, columns[col], "column %s should exist", col)
	}
}

func TestBotModel_RoundTrip(t *testing.T) {
	phone, err := bot.NewPhone("+5511999999999")
	require.NoError(t, err)

	b := bot.Restore(
		bot.NewID(), "test-bot", phone, []byte("creds"), "acme", false,
		bot.StatusOffline, bot.ApprovalPending, nil, 0,
		bot.Features{Typing: bot.TypingNone}, 0, 0, time.Now(), time.Now(),
	)

	model := database.ToBotModel(b)
	assert.Equal(t, b.ID().String(), model.ID)
	assert.Equal(t, b.Phone().String(), model.Phone)

	restored, err := database.FromBotModel(model)
	require.NoError(t, err)
	assert.Equal(t, b.ID(), restored.ID())
	assert.Equal(t, b.Tenant(), restored.Tenant())
	assert.Equal(t, b.Status(), restored.Status())
}
