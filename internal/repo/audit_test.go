package repo

import (
	"context"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
)

func TestAuditRepo_LogAndList(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	defer db.Close()

	mock.ExpectExec(`INSERT INTO audit_log`).
		WithArgs(1, "create", "feed_item", 9, "").
		WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectQuery(`FROM audit_log ORDER BY created_at DESC LIMIT \$1 OFFSET \$2`).
		WithArgs(50, 0).
		WillReturnRows(sqlmock.NewRows([]string{"id", "user_id", "action", "resource_type", "resource_id", "details", "created_at"}).
			AddRow(1, 1, "create", "feed_item", 9, "", time.Now()))

	repo := NewAuditRepo(db)
	if err := repo.Log(context.Background(), 1, "create", "feed_item", 9, ""); err != nil {
		t.Fatalf("Log: %v", err)
	}
	entries, err := repo.List(context.Background(), 50, 0)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(entries) != 1 || entries[0].ResourceType != "feed_item" {
		t.Errorf("unexpected entries: %+v", entries)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("expectations: %v", err)
	}
}
