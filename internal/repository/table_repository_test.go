package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iliyamo/tourism-gateway/internal/model"
	"github.com/iliyamo/tourism-gateway/internal/testing/testdb"
)

func TestTableRepo_Get(t *testing.T) {
	db := testdb.New(t)
	repo := NewTableRepo(db)
	ctx := context.Background()

	row, err := repo.Get(ctx, model.Agents, "1")
	require.NoError(t, err)
	require.NotNil(t, row)

	b, err := json.Marshal(row)
	require.NoError(t, err)
	assert.JSONEq(t, `{"AgentID":1,"Name":"Asha Rao","Email":"asha@example.com","Phone":"555-0101","CommissionRate":12.5}`, string(b))
}

func TestTableRepo_GetMissing(t *testing.T) {
	repo := NewTableRepo(testdb.New(t))

	row, err := repo.Get(context.Background(), model.Customers, "999")
	require.NoError(t, err)
	assert.Nil(t, row)
}

func TestTableRepo_GetEncodesTemporalColumns(t *testing.T) {
	repo := NewTableRepo(testdb.New(t))
	ctx := context.Background()

	booking, err := repo.Get(ctx, model.Bookings, "1")
	require.NoError(t, err)
	require.NotNil(t, booking)
	b, err := json.Marshal(booking)
	require.NoError(t, err)

	var got map[string]any
	require.NoError(t, json.Unmarshal(b, &got))
	assert.Equal(t, "2026-03-01T09:30:00", got["BookingDate"])
	assert.Equal(t, 1899.99, got["TotalAmount"])
	assert.Nil(t, got["TransportID"])

	customer, err := repo.Get(ctx, model.Customers, "1")
	require.NoError(t, err)
	b, err = json.Marshal(customer)
	require.NoError(t, err)
	assert.Contains(t, string(b), `"DateOfBirth":"1990-04-12"`)
}

func TestTableRepo_List(t *testing.T) {
	repo := NewTableRepo(testdb.New(t))

	rows, err := repo.List(context.Background(), model.Agents)
	require.NoError(t, err)
	require.Len(t, rows, 2)

	name, ok := rows[1].Value("Name")
	require.True(t, ok)
	assert.Equal(t, "Tomas Berg", fmt.Sprintf("%s", name))
}

func TestTableRepo_ListEmptyTable(t *testing.T) {
	db := testdb.New(t)
	_, err := db.Exec("DELETE FROM reviews")
	require.NoError(t, err)

	rows, err := NewTableRepo(db).List(context.Background(), model.Reviews)
	require.NoError(t, err)
	assert.NotNil(t, rows)
	assert.Empty(t, rows)

	b, err := json.Marshal(rows)
	require.NoError(t, err)
	assert.Equal(t, "[]", string(b))
}

func TestTableRepo_Insert(t *testing.T) {
	db := testdb.New(t)
	repo := NewTableRepo(db)

	a, err := model.CreateAgent.Bind(map[string]any{"Name": "Mira", "Email": "mira@example.com", "Phone": "555-0103"})
	require.NoError(t, err)

	id, err := repo.Insert(context.Background(), model.Agents, a)
	require.NoError(t, err)
	assert.Equal(t, int64(3), id)
	assert.Equal(t, 3, testdb.Count(t, db, "agents"))

	var rate float64
	require.NoError(t, db.Get(&rate, "SELECT CommissionRate FROM agents WHERE AgentID = 3"))
	assert.Equal(t, 10.0, rate)
}

func TestTableRepo_InsertBookingWithDefaults(t *testing.T) {
	db := testdb.New(t)
	repo := NewTableRepo(db)

	a, err := model.CreateBooking.Bind(map[string]any{
		"CustomerID": float64(1), "PackageID": float64(1), "TotalAmount": "120.75", "AgentID": float64(2),
	})
	require.NoError(t, err)
	id, err := repo.Insert(context.Background(), model.Bookings, a)
	require.NoError(t, err)

	var got struct {
		Status      string  `db:"Status"`
		TransportID *int64  `db:"TransportID"`
		TotalAmount float64 `db:"TotalAmount"`
	}
	require.NoError(t, db.Get(&got, "SELECT Status, TransportID, TotalAmount FROM bookings WHERE BookingID = ?", id))
	assert.Equal(t, model.BookingStatusPending, got.Status)
	assert.Nil(t, got.TransportID)
	assert.Equal(t, 120.75, got.TotalAmount)
}

func TestTableRepo_Update(t *testing.T) {
	db := testdb.New(t)
	repo := NewTableRepo(db)
	a := model.Assignment{Columns: []string{"Status"}, Args: []any{"Cancelled"}}

	n, err := repo.Update(context.Background(), model.Bookings, "1", a)
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)

	var statuses []string
	require.NoError(t, db.Select(&statuses, "SELECT Status FROM bookings ORDER BY BookingID"))
	assert.Equal(t, []string{"Cancelled", "Confirmed"}, statuses)
}

func TestTableRepo_UpdateNoMatch(t *testing.T) {
	repo := NewTableRepo(testdb.New(t))
	a := model.Assignment{Columns: []string{"Status"}, Args: []any{"Cancelled"}}

	n, err := repo.Update(context.Background(), model.Bookings, "404", a)
	require.NoError(t, err)
	assert.Zero(t, n)
}

func TestTableRepo_UpdateAgentDecimal(t *testing.T) {
	db := testdb.New(t)
	repo := NewTableRepo(db)
	a := model.Assignment{
		Columns: []string{"Name", "Email", "Phone", "CommissionRate"},
		Args:    []any{"Asha R.", "asha@example.com", "555-0101", decimal.RequireFromString("15.25")},
	}

	_, err := repo.Update(context.Background(), model.Agents, "1", a)
	require.NoError(t, err)

	var rate float64
	require.NoError(t, db.Get(&rate, "SELECT CommissionRate FROM agents WHERE AgentID = 1"))
	assert.Equal(t, 15.25, rate)
}

func TestTableRepo_Delete(t *testing.T) {
	db := testdb.New(t)
	repo := NewTableRepo(db)
	ctx := context.Background()

	require.NoError(t, repo.Delete(ctx, model.Payments, "1"))
	assert.Zero(t, testdb.Count(t, db, "payments"))

	err := repo.Delete(ctx, model.Payments, "1")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestTableRepo_DeleteMissingLeavesTable(t *testing.T) {
	db := testdb.New(t)
	repo := NewTableRepo(db)

	err := repo.Delete(context.Background(), model.Agents, "")
	assert.ErrorIs(t, err, ErrNotFound)
	assert.Equal(t, 2, testdb.Count(t, db, "agents"))
}

func TestTableRepo_DriverErrorsAreWrapped(t *testing.T) {
	db := testdb.New(t)
	_, err := db.Exec("DROP TABLE transport")
	require.NoError(t, err)
	repo := NewTableRepo(db)

	_, err = repo.List(context.Background(), model.Transport)
	var dbErr *DBError
	require.ErrorAs(t, err, &dbErr)
	assert.Equal(t, "list", dbErr.Op)
	assert.Equal(t, "transport", dbErr.Table)
	assert.Contains(t, dbErr.Error(), "no such table")
	assert.Contains(t, dbErr.Describe(), "list transport:")
}

func TestTableRepo_ClosedPool(t *testing.T) {
	db := testdb.New(t)
	require.NoError(t, db.Close())

	_, err := NewTableRepo(db).Get(context.Background(), model.Agents, "1")
	var dbErr *DBError
	require.ErrorAs(t, err, &dbErr)
	assert.Equal(t, "sql: database is closed", dbErr.Error())
}

func TestTableRepo_ContextCancelled(t *testing.T) {
	repo := NewTableRepo(testdb.New(t))
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := repo.Delete(ctx, model.Agents, "1")
	var dbErr *DBError
	require.ErrorAs(t, err, &dbErr)
	assert.ErrorIs(t, err, context.Canceled)
}
