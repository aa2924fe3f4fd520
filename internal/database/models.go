package database

import "time"

// User is a private chat the bot has serviced at least once.
type User struct {
	UserID    int64     `db:"user_id"`
	Active    bool      `db:"active"`
	CreatedAt time.Time `db:"created_at"`
	UpdatedAt time.Time `db:"updated_at"`
}

// Group is a group chat the bot has serviced at least once.
type Group struct {
	ChatID    int64     `db:"chat_id"`
	Active    bool      `db:"active"`
	CreatedAt time.Time `db:"created_at"`
	UpdatedAt time.Time `db:"updated_at"`
}
