package db

import (
	"fmt"
	"strings"

	"github.com/tgienger/daybook/internal/models"
	"golang.org/x/crypto/bcrypt"
)

const userColumns = "user_id, user_name, user_password, email"

func scanUser(row scanner) (*models.User, error) {
	u := &models.User{}
	if err := row.Scan(&u.ID, &u.Name, &u.PasswordHash, &u.Email); err != nil {
		return nil, classify(err)
	}
	return u, nil
}

// CreateUser registers a new user. The password is stored as a bcrypt hash.
func (db *DB) CreateUser(name, password, email string) (*models.User, error) {
	name = strings.TrimSpace(name)
	email = strings.TrimSpace(email)
	if name == "" || email == "" || password == "" {
		return nil, fmt.Errorf("%w: name, email and password are required", ErrInvalid)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalid, err)
	}

	result, err := db.Exec(`
		INSERT INTO users (user_name, user_password, email) VALUES (?, ?, ?)
	`, name, string(hash), email)
	if err != nil {
		return nil, classify(err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return nil, classify(err)
	}

	return db.GetUser(id)
}

// Authenticate looks a user up by exact name or email and checks the password
func (db *DB) Authenticate(nameOrEmail, password string) (*models.User, error) {
	u, err := scanUser(db.QueryRow(`
		SELECT `+userColumns+` FROM users WHERE user_name = ? OR email = ?
		ORDER BY user_name = ? DESC LIMIT 1
	`, nameOrEmail, nameOrEmail, nameOrEmail))
	if err != nil {
		return nil, err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(password)); err != nil {
		return nil, ErrNotFound
	}
	return u, nil
}

// GetUser retrieves a user by ID
func (db *DB) GetUser(id int64) (*models.User, error) {
	return scanUser(db.QueryRow("SELECT "+userColumns+" FROM users WHERE user_id = ?", id))
}

// GetUserByName retrieves a user by exact name
func (db *DB) GetUserByName(name string) (*models.User, error) {
	return scanUser(db.QueryRow("SELECT "+userColumns+" FROM users WHERE user_name = ?", strings.TrimSpace(name)))
}

// UserName resolves a user ID to its display name
func (db *DB) UserName(id int64) (string, error) {
	var name string
	if err := db.QueryRow("SELECT user_name FROM users WHERE user_id = ?", id).Scan(&name); err != nil {
		return "", classify(err)
	}
	return name, nil
}

// ListUsers returns all users ordered by name
func (db *DB) ListUsers() ([]models.User, error) {
	rows, err := db.Query("SELECT " + userColumns + " FROM users ORDER BY user_name")
	if err != nil {
		return nil, classify(err)
	}
	defer rows.Close()

	var users []models.User
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, err
		}
		users = append(users, *u)
	}
	return users, classify(rows.Err())
}
