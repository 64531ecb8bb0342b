// Package testdb opens throwaway SQLite databases carrying the tourism
// schema so repository and HTTP tests run real SQL.
package testdb

import (
	"path/filepath"
	"testing"

	"github.com/jmoiron/sqlx"
	_ "github.com/mattn/go-sqlite3" // registers the sqlite3 driver
	"github.com/stretchr/testify/require"
)

// Schema mirrors the MySQL tables with SQLite-compatible DDL. Declared types
// are kept so the driver reports DECIMAL, DATE and DATETIME column types.
const Schema = `
CREATE TABLE agents (
	AgentID        INTEGER PRIMARY KEY AUTOINCREMENT,
	Name           VARCHAR(100) NOT NULL,
	Email          VARCHAR(100) NOT NULL,
	Phone          VARCHAR(20)  NOT NULL,
	CommissionRate DECIMAL(5,2) DEFAULT 10.00
);
CREATE TABLE customers (
	CustomerID  INTEGER PRIMARY KEY AUTOINCREMENT,
	FirstName   VARCHAR(50),
	LastName    VARCHAR(50),
	Email       VARCHAR(100),
	Phone       VARCHAR(20),
	DateOfBirth DATE
);
CREATE TABLE destinations (
	DestinationID INTEGER PRIMARY KEY AUTOINCREMENT,
	Name          VARCHAR(100),
	Country       VARCHAR(50),
	Description   TEXT
);
CREATE TABLE tourpackages (
	PackageID     INTEGER PRIMARY KEY AUTOINCREMENT,
	Name          VARCHAR(100),
	DestinationID INT,
	Price         DECIMAL(10,2),
	DurationDays  INT,
	StartDate     DATE
);
CREATE TABLE transport (
	TransportID INTEGER PRIMARY KEY AUTOINCREMENT,
	Type        VARCHAR(50),
	Provider    VARCHAR(100),
	Capacity    INT
);
CREATE TABLE bookings (
	BookingID   INTEGER PRIMARY KEY AUTOINCREMENT,
	CustomerID  INT NOT NULL,
	PackageID   INT NOT NULL,
	AgentID     INT NOT NULL,
	TransportID INT,
	BookingDate DATETIME DEFAULT CURRENT_TIMESTAMP,
	TotalAmount DECIMAL(10,2) NOT NULL,
	Status      VARCHAR(20)
);
CREATE TABLE payments (
	PaymentID   INTEGER PRIMARY KEY AUTOINCREMENT,
	BookingID   INT,
	Amount      DECIMAL(10,2),
	PaymentDate DATETIME,
	Method      VARCHAR(30)
);
CREATE TABLE reviews (
	ReviewID   INTEGER PRIMARY KEY AUTOINCREMENT,
	CustomerID INT,
	PackageID  INT,
	Rating     INT,
	Comment    TEXT,
	ReviewDate DATE
);
`

// Fixtures seeds one or two rows per table. Ids start at 1.
const Fixtures = `
INSERT INTO agents (AgentID, Name, Email, Phone, CommissionRate) VALUES
	(1, 'Asha Rao', 'asha@example.com', '555-0101', 12.50),
	(2, 'Tomas Berg', 'tomas@example.com', '555-0102', 10.00);
INSERT INTO customers (CustomerID, FirstName, LastName, Email, Phone, DateOfBirth) VALUES
	(1, 'Lena', 'Ortiz', 'lena@example.com', '555-0201', '1990-04-12');
INSERT INTO destinations (DestinationID, Name, Country, Description) VALUES
	(1, 'Kyoto', 'Japan', 'Temples and gardens');
INSERT INTO tourpackages (PackageID, Name, DestinationID, Price, DurationDays, StartDate) VALUES
	(1, 'Kyoto Spring', 1, 1899.99, 7, '2026-04-01');
INSERT INTO transport (TransportID, Type, Provider, Capacity) VALUES
	(1, 'Bus', 'CityLines', 40);
INSERT INTO bookings (BookingID, CustomerID, PackageID, AgentID, TransportID, BookingDate, TotalAmount, Status) VALUES
	(1, 1, 1, 1, NULL, '2026-03-01 09:30:00', 1899.99, 'Pending'),
	(2, 1, 1, 2, 1, '2026-03-05 14:00:00', 950.50, 'Confirmed');
INSERT INTO payments (PaymentID, BookingID, Amount, PaymentDate, Method) VALUES
	(1, 1, 500.00, '2026-03-02 10:00:00', 'Card');
INSERT INTO reviews (ReviewID, CustomerID, PackageID, Rating, Comment, ReviewDate) VALUES
	(1, 1, 1, 5, 'Great trip', '2026-04-10');
`

// New returns a file-backed SQLite database with Schema and Fixtures
// applied. The database is closed when the test ends.
func New(t testing.TB) *sqlx.DB {
	t.Helper()
	db, err := sqlx.Open("sqlite3", filepath.Join(t.TempDir(), "tourism.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	_, err = db.Exec(Schema)
	require.NoError(t, err, "apply schema")
	_, err = db.Exec(Fixtures)
	require.NoError(t, err, "apply fixtures")
	return db
}

// Count returns the number of rows in table.
func Count(t testing.TB, db *sqlx.DB, table string) int {
	t.Helper()
	var n int
	require.NoError(t, db.Get(&n, "SELECT COUNT(*) FROM "+table))
	return n
}
