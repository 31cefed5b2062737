package sqlite

import "database/sql"

// schema contains the SQL statements to set up the database schema.
// These run on startup to ensure tables exist.
//
// Amounts are stored as decimal TEXT and timestamps as Unix seconds.
// Savings and wallet ledgers reference chamas and cycles by plain ID so
// closing a chama never removes money history.
const schema = `
CREATE TABLE IF NOT EXISTS users (
    id TEXT PRIMARY KEY,
    email TEXT NOT NULL UNIQUE,
    display_name TEXT NOT NULL,
    phone TEXT NOT NULL DEFAULT '',
    password_hash TEXT NOT NULL,
    created_at INTEGER NOT NULL,
    updated_at INTEGER NOT NULL
);

CREATE TABLE IF NOT EXISTS chamas (
    id TEXT PRIMARY KEY,
    name TEXT NOT NULL,
    type TEXT NOT NULL,
    status TEXT NOT NULL,
    max_members INTEGER NOT NULL,
    invite_code TEXT NOT NULL UNIQUE,
    default_interest_rate TEXT NOT NULL DEFAULT '0',
    created_by TEXT NOT NULL REFERENCES users(id),
    created_at INTEGER NOT NULL
);

CREATE TABLE IF NOT EXISTS chama_members (
    id TEXT PRIMARY KEY,
    chama_id TEXT NOT NULL REFERENCES chamas(id) ON DELETE CASCADE,
    user_id TEXT NOT NULL REFERENCES users(id),
    role TEXT NOT NULL,
    status TEXT NOT NULL,
    joined_at INTEGER NOT NULL,
    UNIQUE (chama_id, user_id)
);

CREATE TABLE IF NOT EXISTS cycles (
    id TEXT PRIMARY KEY,
    chama_id TEXT NOT NULL REFERENCES chamas(id) ON DELETE CASCADE,
    status TEXT NOT NULL,
    frequency TEXT NOT NULL,
    contribution_amount TEXT NOT NULL,
    payout_amount TEXT NOT NULL,
    savings_amount TEXT NOT NULL,
    service_fee TEXT NOT NULL,
    total_periods INTEGER NOT NULL,
    current_period INTEGER NOT NULL DEFAULT 0,
    start_date INTEGER NOT NULL,
    created_by TEXT NOT NULL,
    created_at INTEGER NOT NULL
);

CREATE TABLE IF NOT EXISTS cycle_members (
    id TEXT PRIMARY KEY,
    cycle_id TEXT NOT NULL REFERENCES cycles(id) ON DELETE CASCADE,
    user_id TEXT NOT NULL REFERENCES users(id),
    turn_order INTEGER NOT NULL,
    assigned_number INTEGER NOT NULL,
    custom_savings_amount TEXT,
    hide_savings INTEGER NOT NULL DEFAULT 0,
    UNIQUE (cycle_id, turn_order),
    UNIQUE (cycle_id, user_id)
);

CREATE TABLE IF NOT EXISTS contributions (
    id TEXT PRIMARY KEY,
    cycle_id TEXT NOT NULL REFERENCES cycles(id) ON DELETE CASCADE,
    user_id TEXT NOT NULL REFERENCES users(id),
    period_number INTEGER NOT NULL,
    amount_due TEXT NOT NULL,
    amount_paid TEXT NOT NULL,
    due_date INTEGER NOT NULL,
    status TEXT NOT NULL,
    paid_at INTEGER,
    confirmed_by TEXT NOT NULL DEFAULT '',
    confirmed_at INTEGER,
    created_at INTEGER NOT NULL,
    UNIQUE (cycle_id, user_id, period_number)
);

CREATE TABLE IF NOT EXISTS payouts (
    id TEXT PRIMARY KEY,
    cycle_id TEXT NOT NULL REFERENCES cycles(id) ON DELETE CASCADE,
    recipient_id TEXT NOT NULL REFERENCES users(id),
    period_number INTEGER NOT NULL,
    amount TEXT NOT NULL,
    status TEXT NOT NULL,
    scheduled_date INTEGER NOT NULL,
    paid_at INTEGER,
    paid_by TEXT NOT NULL DEFAULT '',
    confirmed_by_member INTEGER NOT NULL DEFAULT 0,
    confirmed_at INTEGER,
    notes TEXT NOT NULL DEFAULT '',
    created_at INTEGER NOT NULL,
    UNIQUE (cycle_id, period_number)
);

CREATE TABLE IF NOT EXISTS savings_accounts (
    id TEXT PRIMARY KEY,
    user_id TEXT NOT NULL UNIQUE REFERENCES users(id),
    balance TEXT NOT NULL,
    version INTEGER NOT NULL DEFAULT 0,
    created_at INTEGER NOT NULL,
    updated_at INTEGER NOT NULL
);

CREATE TABLE IF NOT EXISTS savings_transactions (
    id TEXT PRIMARY KEY,
    account_id TEXT NOT NULL REFERENCES savings_accounts(id),
    user_id TEXT NOT NULL,
    chama_id TEXT NOT NULL DEFAULT '',
    cycle_id TEXT NOT NULL DEFAULT '',
    direction TEXT NOT NULL,
    amount TEXT NOT NULL,
    balance_after TEXT NOT NULL,
    reason TEXT NOT NULL,
    created_at INTEGER NOT NULL
);

CREATE TABLE IF NOT EXISTS wallet_transactions (
    id TEXT PRIMARY KEY,
    user_id TEXT NOT NULL,
    chama_id TEXT NOT NULL DEFAULT '',
    type TEXT NOT NULL,
    direction TEXT NOT NULL,
    amount TEXT NOT NULL,
    reference_id TEXT NOT NULL DEFAULT '',
    description TEXT NOT NULL DEFAULT '',
    created_at INTEGER NOT NULL
);

CREATE TABLE IF NOT EXISTS loans (
    id TEXT PRIMARY KEY,
    chama_id TEXT NOT NULL REFERENCES chamas(id),
    borrower_id TEXT NOT NULL REFERENCES users(id),
    principal TEXT NOT NULL,
    interest_rate TEXT NOT NULL,
    status TEXT NOT NULL,
    amount_paid TEXT NOT NULL DEFAULT '0',
    due_date INTEGER,
    purpose TEXT NOT NULL DEFAULT '',
    approved_at INTEGER,
    created_at INTEGER NOT NULL
);

CREATE TABLE IF NOT EXISTS loan_guarantors (
    id TEXT PRIMARY KEY,
    loan_id TEXT NOT NULL REFERENCES loans(id) ON DELETE CASCADE,
    guarantor_id TEXT NOT NULL REFERENCES users(id),
    status TEXT NOT NULL,
    responded_at INTEGER,
    created_at INTEGER NOT NULL,
    UNIQUE (loan_id, guarantor_id)
);

CREATE TABLE IF NOT EXISTS loan_payments (
    id TEXT PRIMARY KEY,
    loan_id TEXT NOT NULL REFERENCES loans(id) ON DELETE CASCADE,
    payer_id TEXT NOT NULL REFERENCES users(id),
    amount TEXT NOT NULL,
    status TEXT NOT NULL,
    reviewed_by TEXT NOT NULL DEFAULT '',
    reviewed_at INTEGER,
    created_at INTEGER NOT NULL
);

CREATE TABLE IF NOT EXISTS notifications (
    id TEXT PRIMARY KEY,
    user_id TEXT NOT NULL,
    type TEXT NOT NULL,
    title TEXT NOT NULL,
    message TEXT NOT NULL,
    data TEXT NOT NULL DEFAULT '{}',
    is_read INTEGER NOT NULL DEFAULT 0,
    created_at INTEGER NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_chama_members_user_id ON chama_members(user_id);
CREATE INDEX IF NOT EXISTS idx_cycles_chama_id ON cycles(chama_id);
CREATE INDEX IF NOT EXISTS idx_contributions_cycle_period ON contributions(cycle_id, period_number);
CREATE INDEX IF NOT EXISTS idx_contributions_status_due ON contributions(status, due_date);
CREATE INDEX IF NOT EXISTS idx_payouts_cycle_id ON payouts(cycle_id);
CREATE INDEX IF NOT EXISTS idx_savings_transactions_user ON savings_transactions(user_id, chama_id);
CREATE INDEX IF NOT EXISTS idx_wallet_transactions_user ON wallet_transactions(user_id, created_at);
CREATE INDEX IF NOT EXISTS idx_loans_chama_borrower ON loans(chama_id, borrower_id);
CREATE INDEX IF NOT EXISTS idx_loan_guarantors_guarantor ON loan_guarantors(guarantor_id);
CREATE INDEX IF NOT EXISTS idx_loan_payments_loan_id ON loan_payments(loan_id);
CREATE INDEX IF NOT EXISTS idx_notifications_user ON notifications(user_id, created_at);
`

// runMigrations executes the schema setup.
func runMigrations(db *sql.DB) error {
	_, err := db.Exec(schema)
	return err
}
