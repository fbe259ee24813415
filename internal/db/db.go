package db

import (
	"fmt"
	"log"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
)

// Connect initializes the database connection and runs migrations.
func Connect(dsn string) (*sqlx.DB, error) {
	db, err := sqlx.Connect("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("connect db: %w", err)
	}

	if err := runMigrations(db); err != nil {
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	return db, nil
}

func runMigrations(db *sqlx.DB) error {
	migrations := []string{
		`CREATE TABLE IF NOT EXISTS profiles (
            id INT PRIMARY KEY,
            display_name TEXT NOT NULL,
            avatar_glyph TEXT NOT NULL DEFAULT '',
            created_at TIMESTAMPTZ DEFAULT NOW()
        );`,
		`CREATE TABLE IF NOT EXISTS group_messages (
            id SERIAL PRIMARY KEY,
            sender_id INT NOT NULL,
            text TEXT,
            code_content TEXT,
            code_language TEXT,
            created_at TIMESTAMPTZ DEFAULT NOW(),
            CHECK (text IS NOT NULL OR code_content IS NOT NULL)
        );`,
		`CREATE TABLE IF NOT EXISTS direct_messages (
            id SERIAL PRIMARY KEY,
            sender_id INT NOT NULL,
            receiver_id INT NOT NULL,
            text TEXT,
            code_content TEXT,
            code_language TEXT,
            created_at TIMESTAMPTZ DEFAULT NOW(),
            CHECK (text IS NOT NULL OR code_content IS NOT NULL)
        );`,
		`CREATE INDEX IF NOT EXISTS idx_direct_messages_pair
            ON direct_messages (LEAST(sender_id, receiver_id), GREATEST(sender_id, receiver_id), created_at);`,
		`CREATE TABLE IF NOT EXISTS snippets (
            id SERIAL PRIMARY KEY,
            owner_id INT NOT NULL,
            title TEXT NOT NULL,
            code TEXT NOT NULL,
            last_output TEXT,
            created_at TIMESTAMPTZ DEFAULT NOW()
        );`,
		`CREATE INDEX IF NOT EXISTS idx_snippets_owner ON snippets (owner_id, created_at);`,
	}

	for _, m := range migrations {
		if _, err := db.Exec(m); err != nil {
			return err
		}
	}
	log.Println("database migrations applied")
	return nil
}
