package repo

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
)

var feedCols = []string{"id", "user_profile_id", "status_text", "created_on"}

func TestFeedRepo_Create(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	defer db.Close()

	mock.ExpectQuery(`INSERT INTO profile_feed_items \(user_profile_id, status_text\)`).
		WithArgs(3, "hello").
		WillReturnRows(sqlmock.NewRows(feedCols).AddRow(11, 3, "hello", time.Now()))

	f, err := NewFeedRepo(db).Create(context.Background(), 3, "hello")
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if f.ID != 11 || f.ProfileID != 3 || f.StatusText != "hello" {
		t.Errorf("unexpected item: %+v", f)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("expectations: %v", err)
	}
}

func TestFeedRepo_List(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	defer db.Close()

	mock.ExpectQuery(`FROM profile_feed_items ORDER BY id LIMIT \$1 OFFSET \$2`).
		WithArgs(50, 0).
		WillReturnRows(sqlmock.NewRows(feedCols).
			AddRow(1, 1, "first", time.Now()).
			AddRow(2, 2, "second", time.Now()))

	items, err := NewFeedRepo(db).List(context.Background(), 0, 50, 0)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(items) != 2 || items[1].StatusText != "second" {
		t.Errorf("unexpected items: %+v", items)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("expectations: %v", err)
	}
}

func TestFeedRepo_List_ByOwner(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	defer db.Close()

	mock.ExpectQuery(`WHERE user_profile_id = \$1 ORDER BY id LIMIT \$2 OFFSET \$3`).
		WithArgs(4, 20, 40).
		WillReturnRows(sqlmock.NewRows(feedCols).AddRow(9, 4, "mine", time.Now()))

	items, err := NewFeedRepo(db).List(context.Background(), 4, 20, 40)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(items) != 1 || items[0].ProfileID != 4 {
		t.Errorf("unexpected items: %+v", items)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("expectations: %v", err)
	}
}

func TestFeedRepo_Update_NotFound(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	defer db.Close()

	mock.ExpectQuery(`UPDATE profile_feed_items`).
		WithArgs("edited", 5).
		WillReturnRows(sqlmock.NewRows(feedCols))

	if _, err := NewFeedRepo(db).Update(context.Background(), 5, "edited"); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("expectations: %v", err)
	}
}

func TestFeedRepo_Delete(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	defer db.Close()

	mock.ExpectExec(`DELETE FROM profile_feed_items WHERE id = \$1`).
		WithArgs(5).
		WillReturnResult(sqlmock.NewResult(0, 1))

	if err := NewFeedRepo(db).Delete(context.Background(), 5); err != nil {
		t.Errorf("Delete: %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("expectations: %v", err)
	}
}
