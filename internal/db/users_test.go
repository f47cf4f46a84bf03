package db

import (
	"errors"
	"testing"
)

func TestCreateUser(t *testing.T) {
	database := setupTestDB(t)

	u, err := database.CreateUser("ann", "hunter2", "ann@example.com")
	if err != nil {
		t.Fatalf("CreateUser: %v", err)
	}
	if u.ID == 0 || u.Name != "ann" || u.Email != "ann@example.com" {
		t.Errorf("unexpected user: %+v", u)
	}
	if u.PasswordHash == "hunter2" {
		t.Error("password stored in plain text")
	}
}

func TestCreateUser_Errors(t *testing.T) {
	tests := []struct {
		name     string
		user     string
		password string
		email    string
		want     error
	}{
		{"duplicate name", "ann", "pw", "other@example.com", ErrConflict},
		{"duplicate email", "other", "pw", "ann@example.com", ErrConflict},
		{"empty name", "  ", "pw", "x@example.com", ErrInvalid},
		{"empty password", "x", "", "x@example.com", ErrInvalid},
		{"empty email", "x", "pw", "", ErrInvalid},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			database := setupTestDB(t)
			createUser(t, database, "ann")

			_, err := database.CreateUser(tt.user, tt.password, tt.email)
			if !errors.Is(err, tt.want) {
				t.Errorf("expected %v, got %v", tt.want, err)
			}
		})
	}
}

func TestAuthenticate(t *testing.T) {
	database := setupTestDB(t)
	ann, err := database.CreateUser("ann", "hunter2", "ann@example.com")
	if err != nil {
		t.Fatalf("CreateUser: %v", err)
	}

	tests := []struct {
		name     string
		login    string
		password string
		wantErr  error
	}{
		{"by name", "ann", "hunter2", nil},
		{"by email", "ann@example.com", "hunter2", nil},
		{"wrong password", "ann", "hunter3", ErrNotFound},
		{"unknown user", "bob", "hunter2", ErrNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			u, err := database.Authenticate(tt.login, tt.password)
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("expected %v, got %v", tt.wantErr, err)
				}
				return
			}
			if err != nil {
				t.Fatalf("Authenticate: %v", err)
			}
			if u.ID != ann.ID {
				t.Errorf("authenticated as %d, want %d", u.ID, ann.ID)
			}
		})
	}
}

func TestUserLookups(t *testing.T) {
	database := setupTestDB(t)
	ann := createUser(t, database, "ann")
	createUser(t, database, "bob")

	name, err := database.UserName(ann.ID)
	if err != nil || name != "ann" {
		t.Errorf("UserName = %q, %v", name, err)
	}
	if _, err := database.UserName(999); !errors.Is(err, ErrNotFound) {
		t.Errorf("UserName(999): expected ErrNotFound, got %v", err)
	}
	if _, err := database.GetUser(999); !errors.Is(err, ErrNotFound) {
		t.Errorf("GetUser(999): expected ErrNotFound, got %v", err)
	}

	u, err := database.GetUserByName("bob")
	if err != nil || u.Name != "bob" {
		t.Errorf("GetUserByName = %+v, %v", u, err)
	}

	users, err := database.ListUsers()
	if err != nil {
		t.Fatalf("ListUsers: %v", err)
	}
	if len(users) != 2 || users[0].Name != "ann" || users[1].Name != "bob" {
		t.Errorf("ListUsers unexpected: %+v", users)
	}
}
