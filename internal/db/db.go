package db

import (
	"context"
	"fmt"
	"log"
	"os"

	"github.com/jackc/pgx/v5/pgxpool"
)

var Conn *pgxpool.Pool

// Init connects to Postgres
func Init() {
	dsn := os.Getenv("DATABASE_URL")
	if dsn == "" {
		dsn = fmt.Sprintf(
			"postgres://%s:%s@%s:%s/%s",
			os.Getenv("DB_USER"),
			os.Getenv("DB_PASSWORD"),
			os.Getenv("DB_HOST"),
			os.Getenv("DB_PORT"),
			os.Getenv("DB_NAME"),
		)
	}

	var err error
	Conn, err = pgxpool.New(context.Background(), dsn)
	if err != nil {
		log.Fatalf("Unable to connect to database: %v\n", err)
	}

	if err = Conn.Ping(context.Background()); err != nil {
		log.Fatalf("Unable to ping database: %v\n", err)
	}

	log.Println("Connected to Postgres successfully")

	// Ensure core tables used by the withdrawal flow
	ensureUsersTable()
	ensureWithdrawalsTable()
	ensureStagePinsTable()
	ensureNotificationsTable()
	ensurePaymentsTables()
}

// ensureUsersTable creates users if missing and backfills the withdrawal timer columns
func ensureUsersTable() {
	ctx := context.Background()
	_, err := Conn.Exec(ctx, `
        CREATE TABLE IF NOT EXISTS users (
            id UUID PRIMARY KEY DEFAULT gen_random_uuid(),
            name TEXT NOT NULL,
            email TEXT NOT NULL UNIQUE,
            password TEXT NOT NULL,
            role TEXT NOT NULL DEFAULT 'user' CHECK (role IN ('user', 'admin')),
            country TEXT DEFAULT '',
            balance NUMERIC(18,2) NOT NULL DEFAULT 0 CHECK (balance >= 0),
            timer_active BOOLEAN NOT NULL DEFAULT FALSE,
            timer_ends TIMESTAMP WITH TIME ZONE NULL,
            is_active BOOLEAN NOT NULL DEFAULT TRUE,
            created_at TIMESTAMP WITH TIME ZONE DEFAULT CURRENT_TIMESTAMP
        )`)
	if err != nil {
		log.Printf("failed to create users table: %v", err)
		return
	}

	// Older deployments predate the timer columns
	_, _ = Conn.Exec(ctx, `ALTER TABLE users ADD COLUMN IF NOT EXISTS timer_active BOOLEAN NOT NULL DEFAULT FALSE`)
	_, _ = Conn.Exec(ctx, `ALTER TABLE users ADD COLUMN IF NOT EXISTS timer_ends TIMESTAMP WITH TIME ZONE NULL`)
	_, _ = Conn.Exec(ctx, `ALTER TABLE users ADD COLUMN IF NOT EXISTS country TEXT DEFAULT ''`)
}

// ensureWithdrawalsTable creates withdrawals plus the partial unique index that
// keeps at most one non-terminal withdrawal per user.
func ensureWithdrawalsTable() {
	ctx := context.Background()
	_, err := Conn.Exec(ctx, `
        CREATE TABLE IF NOT EXISTS withdrawals (
            id UUID PRIMARY KEY DEFAULT gen_random_uuid(),
            user_id UUID NOT NULL REFERENCES users(id) ON DELETE CASCADE,
            amount NUMERIC(18,2) NOT NULL,
            method TEXT NOT NULL,
            details TEXT NOT NULL DEFAULT '',
            status TEXT NOT NULL DEFAULT 'preview'
                CHECK (status IN ('preview', 'pending_activation', 'approved', 'rejected', 'ready_for_payout')),
            stage TEXT NOT NULL DEFAULT 'activation'
                CHECK (stage IN ('activation', 'tax', 'insurance', 'verification', 'security', 'access')),
            created_at TIMESTAMP WITH TIME ZONE DEFAULT CURRENT_TIMESTAMP,
            updated_at TIMESTAMP WITH TIME ZONE DEFAULT CURRENT_TIMESTAMP,
            approved_by UUID NULL REFERENCES users(id) ON DELETE SET NULL,
            approved_at TIMESTAMP WITH TIME ZONE NULL
        )`)
	if err != nil {
		log.Printf("failed to create withdrawals table: %v", err)
		return
	}

	_, err = Conn.Exec(ctx, `
        CREATE UNIQUE INDEX IF NOT EXISTS uniq_withdrawals_user_active
        ON withdrawals(user_id)
        WHERE status NOT IN ('approved', 'rejected') AND stage <> 'access'`)
	if err != nil {
		log.Printf("failed to create active withdrawal index: %v", err)
	}
}

// ensureStagePinsTable creates stage_pins (one row per user per stage)
func ensureStagePinsTable() {
	ctx := context.Background()
	_, err := Conn.Exec(ctx, `
        CREATE TABLE IF NOT EXISTS stage_pins (
            user_id UUID NOT NULL REFERENCES users(id) ON DELETE CASCADE,
            stage TEXT NOT NULL
                CHECK (stage IN ('activation', 'tax', 'insurance', 'verification', 'security', 'access')),
            pin CHAR(4) NOT NULL,
            is_set BOOLEAN NOT NULL DEFAULT TRUE,
            set_at TIMESTAMP WITH TIME ZONE DEFAULT CURRENT_TIMESTAMP,
            from_notification BOOLEAN NOT NULL DEFAULT FALSE,
            confirmed BOOLEAN NOT NULL DEFAULT FALSE,
            PRIMARY KEY (user_id, stage)
        )`)
	if err != nil {
		log.Printf("failed to create stage_pins table: %v", err)
	}
}

// ensureNotificationsTable creates notifications table if it doesn't exist
func ensureNotificationsTable() {
	ctx := context.Background()
	_, err := Conn.Exec(ctx, `
        CREATE TABLE IF NOT EXISTS notifications (
            id UUID PRIMARY KEY DEFAULT gen_random_uuid(),
            user_id UUID NOT NULL REFERENCES users(id) ON DELETE CASCADE,
            title TEXT NOT NULL DEFAULT '',
            body TEXT NOT NULL,
            created_at TIMESTAMP WITH TIME ZONE DEFAULT CURRENT_TIMESTAMP,
            read_at TIMESTAMP WITH TIME ZONE NULL
        );
        CREATE INDEX IF NOT EXISTS idx_notifications_user_created ON notifications(user_id, created_at);
        CREATE INDEX IF NOT EXISTS idx_notifications_user_unread ON notifications(user_id) WHERE read_at IS NULL;
    `)
	if err != nil {
		log.Printf("failed to create notifications table: %v", err)
	}
}

// ensurePaymentsTables creates payments and payment_cards. payments carries
// user_id so the per-user admin view is a projection of the same rows the
// withdrawal owns.
func ensurePaymentsTables() {
	ctx := context.Background()
	_, err := Conn.Exec(ctx, `
        CREATE TABLE IF NOT EXISTS payments (
            id UUID PRIMARY KEY DEFAULT gen_random_uuid(),
            user_id UUID NOT NULL REFERENCES users(id) ON DELETE CASCADE,
            withdrawal_id UUID NOT NULL REFERENCES withdrawals(id) ON DELETE CASCADE,
            stage TEXT NOT NULL,
            amount NUMERIC(18,2) NOT NULL DEFAULT 0,
            status TEXT NOT NULL DEFAULT 'submitted'
                CHECK (status IN ('submitted', 'processed', 'rejected')),
            created_at TIMESTAMP WITH TIME ZONE DEFAULT CURRENT_TIMESTAMP
        );
        CREATE INDEX IF NOT EXISTS idx_payments_user ON payments(user_id, created_at);
        CREATE INDEX IF NOT EXISTS idx_payments_withdrawal ON payments(withdrawal_id);
    `)
	if err != nil {
		log.Printf("failed to create payments table: %v", err)
		return
	}

	_, err = Conn.Exec(ctx, `
        CREATE TABLE IF NOT EXISTS payment_cards (
            id UUID PRIMARY KEY DEFAULT gen_random_uuid(),
            payment_id UUID NOT NULL REFERENCES payments(id) ON DELETE CASCADE,
            position INTEGER NOT NULL DEFAULT 0,
            gift_card TEXT NOT NULL,
            card_pin TEXT NOT NULL DEFAULT '',
            file_url TEXT NULL,
            file_id TEXT NULL
        );
        CREATE INDEX IF NOT EXISTS idx_payment_cards_payment ON payment_cards(payment_id, position);
    `)
	if err != nil {
		log.Printf("failed to create payment_cards table: %v", err)
	}
}
