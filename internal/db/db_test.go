package db

import (
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/tgienger/daybook/internal/models"
)

func setupTestDB(t *testing.T) *DB {
	t.Helper()
	database, err := Open(":memory:")
	if err != nil {
		t.Fatalf("open test database: %v", err)
	}
	t.Cleanup(func() { database.Close() })
	return database
}

func createUser(t *testing.T, database *DB, name string) *models.User {
	t.Helper()
	u, err := database.CreateUser(name, "secret-"+name, name+"@example.com")
	if err != nil {
		t.Fatalf("create user %s: %v", name, err)
	}
	return u
}

// setLocal swaps time.Local for the duration of the test
func setLocal(t *testing.T, name string) {
	t.Helper()
	loc, err := time.LoadLocation(name)
	if err != nil {
		t.Skipf("zone %s unavailable: %v", name, err)
	}
	prev := time.Local
	time.Local = loc
	t.Cleanup(func() { time.Local = prev })
}

func due(year int, month time.Month, day, hour int) *time.Time {
	d := time.Date(year, month, day, hour, 0, 0, 0, time.Local)
	return &d
}

func TestOpen_File(t *testing.T) {
	path := filepath.Join(t.TempDir(), "daybook.db")
	database, err := Open(path)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	if _, err := database.CreateUser("ann", "pw", "ann@example.com"); err != nil {
		t.Fatalf("CreateUser: %v", err)
	}
	database.Close()

	// schema creation must be repeatable on an existing file
	database, err = Open(path)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	defer database.Close()
	if _, err := database.GetUserByName("ann"); err != nil {
		t.Errorf("user lost after reopen: %v", err)
	}
}

func TestOpen_Unavailable(t *testing.T) {
	_, err := Open(filepath.Join(t.TempDir(), "missing", "dir", "daybook.db"))
	if !errors.Is(err, ErrStorageUnavailable) {
		t.Fatalf("expected ErrStorageUnavailable, got %v", err)
	}
}

func TestSettings(t *testing.T) {
	database := setupTestDB(t)

	v, err := database.GetSetting("last_user")
	if err != nil || v != "" {
		t.Fatalf("GetSetting on empty table = %q, %v", v, err)
	}

	for _, want := range []string{"ann", "bob"} {
		if err := database.SetSetting("last_user", want); err != nil {
			t.Fatalf("SetSetting: %v", err)
		}
		got, err := database.GetSetting("last_user")
		if err != nil {
			t.Fatalf("GetSetting: %v", err)
		}
		if got != want {
			t.Errorf("GetSetting = %q, want %q", got, want)
		}
	}
}

func TestClassify_Passthrough(t *testing.T) {
	if classify(nil) != nil {
		t.Error("classify(nil) should be nil")
	}
	for _, sentinel := range []error{ErrNotFound, ErrConflict, ErrStorageUnavailable, ErrInvalid} {
		if got := classify(sentinel); !errors.Is(got, sentinel) {
			t.Errorf("classify(%v) = %v", sentinel, got)
		}
	}
}
