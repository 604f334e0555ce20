// internal/database/database_test.go
//
// Unit-tests for DSN building and the health probe using sqlmock.
//
// Run: go test ./internal/database -v

package database

import (
	"context"
	"errors"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"

	"github.com/AdeptTravel/adept-runtime/internal/config"
)

func TestDSNFromDiscreteFields(t *testing.T) {
	got, err := DSN(config.Database{Host: "database", Port: 3306, Username: "adept", Password: "pw", Name: "adept"})
	if err != nil {
		t.Fatalf("DSN: %v", err)
	}
	want := "adept:pw@tcp(database:3306)/adept?parseTime=true"
	if got != want {
		t.Fatalf("got %q, want %q", got, want)
	}
}

func TestDSNFromURL(t *testing.T) {
	got, err := DSN(config.Database{URL: "mysql://u:p@db1/app", Host: "ignored"})
	if err != nil {
		t.Fatalf("DSN: %v", err)
	}
	if want := "u:p@tcp(db1:3306)/app?parseTime=true"; got != want {
		t.Fatalf("got %q, want %q", got, want)
	}

	native := "u:p@unix(/run/mysqld.sock)/app"
	if got, _ := DSN(config.Database{URL: native}); got != native {
		t.Fatalf("native DSN should pass through, got %q", got)
	}
}

func TestHealthy(t *testing.T) {
	raw, mock, err := sqlmock.New(sqlmock.MonitorPingsOption(true))
	if err != nil {
		t.Fatalf("sqlmock: %v", err)
	}
	db := sqlx.NewDb(raw, "mysql")
	defer db.Close()
	configure(db, 2, 1)

	mock.ExpectPing()
	if err := Healthy(context.Background(), db); err != nil {
		t.Fatalf("Healthy: %v", err)
	}

	mock.ExpectPing().WillReturnError(errors.New("down"))
	if err := Healthy(context.Background(), db); err == nil {
		t.Fatal("expected ping failure")
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unmet expectations: %v", err)
	}
}

type samples map[string]float64

func (s samples) AddToCounter(name string, v float64)   { s[name] += v }
func (s samples) AddToHistogram(name string, v float64) { s[name+"_count"]++ }

func TestHealthCheckRecordsPings(t *testing.T) {
	raw, mock, err := sqlmock.New(sqlmock.MonitorPingsOption(true))
	if err != nil {
		t.Fatalf("sqlmock: %v", err)
	}
	db := sqlx.NewDb(raw, "mysql")
	defer db.Close()

	rec := samples{}
	check := HealthCheck(db, rec)

	mock.ExpectPing()
	mock.ExpectPing().WillReturnError(errors.New("down"))
	if err := check(context.Background()); err != nil {
		t.Fatalf("first ping: %v", err)
	}
	if err := check(context.Background()); err == nil {
		t.Fatal("expected second ping to fail")
	}

	if rec["db_ping_seconds_count"] != 2 || rec["db_ping_errors_total"] != 1 {
		t.Fatalf("samples = %v", rec)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unmet expectations: %v", err)
	}
}
