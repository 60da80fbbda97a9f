package errors

import (
	"fmt"
	"testing"

	"github.com/jackc/pgx/v5/pgconn"
)

func TestDumpExtractsPostgresDetail(t *testing.T) {
	pgErr := &pgconn.PgError{Code: "23505", ConstraintName: "ux_coupons_code", TableName: "coupons", Message: "duplicate key"}
	err := Wrap(CodeConflict, fmt.Errorf("insert coupon: %w", pgErr), "coupon code already exists")

	dump := Dump(err)
	if dump.Code != CodeConflict {
		t.Fatalf("expected conflict code, got %s", dump.Code)
	}
	if dump.Postgres == nil || dump.Postgres.SQLState != "23505" || dump.Postgres.Constraint != "ux_coupons_code" {
		t.Fatalf("expected postgres detail, got %+v", dump.Postgres)
	}
	if len(dump.Chain) != 3 {
		t.Fatalf("expected three links in chain, got %v", dump.Chain)
	}

	fields := dump.Fields()
	if fields["pg_table"] != "coupons" || fields["error_code"] != CodeConflict {
		t.Fatalf("unexpected fields %v", fields)
	}
}

func TestDumpWithoutDriverError(t *testing.T) {
	dump := Dump(fmt.Errorf("plain"))
	if dump.Postgres != nil {
		t.Fatalf("expected no postgres detail")
	}
	if _, ok := dump.Fields()["pg_code"]; ok {
		t.Fatal("pg fields should be omitted")
	}
	if empty := Dump(nil); empty.Message != "" || empty.Chain != nil {
		t.Fatal("nil error should dump empty")
	}
}
