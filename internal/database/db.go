package database

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "github.com/go-sql-driver/mysql"
)

// Open connects to MySQL and verifies the connection. The schema
// (users, roles, user_roles, refresh_tokens) is assumed to be
// provisioned, with these constraints in place:
//
//	users:      UNIQUE KEY uq_users_username (username)
//	            UNIQUE KEY uq_users_email (email)
//	roles:      UNIQUE KEY uq_roles_name (name)
//	            UNIQUE KEY uq_roles_description (description)
//	user_roles: PRIMARY KEY (user_id, role_id)
//	            FOREIGN KEY (role_id) REFERENCES roles (id) ON DELETE RESTRICT
//
// Those constraints are what makes uniqueness authoritative under
// concurrent writers, and the repository layer matches the index
// names above to pick the right sentinel error (see
// repository.translateError). A duplicate-key error from an index
// not listed here still surfaces as repository.ErrDuplicate, so a
// renamed index degrades the error message but never the guard.
func Open(user, pass, host, port, name string) (*sql.DB, error) {
	auth := user
	if pass != "" {
		auth = fmt.Sprintf("%s:%s", user, pass)
	}
	// parseTime=true -> DATETIME -> time.Time | loc=UTC keeps times consistent
	dsn := fmt.Sprintf("%s@tcp(%s:%s)/%s?charset=utf8mb4&parseTime=true&loc=UTC",
		auth, host, port, name)

	db, err := sql.Open("mysql", dsn)
	if err != nil {
		return nil, err
	}

	// Pool settings
	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(25)
	db.SetConnMaxLifetime(30 * time.Minute)

	// Ping with timeout
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := db.PingContext(ctx); err != nil {
		return nil, err
	}
	return db, nil
}
