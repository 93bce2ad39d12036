package postgres

import (
	"context"

	"github.com/uptrace/bun"
)

func init() {
	Migrations.MustRegister(func(ctx context.Context, db *bun.DB) error {
		return execAll(ctx, db,
			`CREATE TABLE IF NOT EXISTS denomination (
    id          TEXT PRIMARY KEY,
    description TEXT NOT NULL DEFAULT '',
    code        TEXT NOT NULL UNIQUE,
    symbol      TEXT NOT NULL DEFAULT '',
    created_at  TIMESTAMPTZ NOT NULL DEFAULT NOW(),
    updated_at  TIMESTAMPTZ NOT NULL DEFAULT NOW()
)`,
			`CREATE TABLE IF NOT EXISTS conversion_rate (
    id              TEXT PRIMARY KEY,
    unit_id         TEXT NOT NULL REFERENCES denomination (id) ON DELETE RESTRICT,
    denomination_id TEXT NOT NULL REFERENCES denomination (id) ON DELETE RESTRICT,
    basis           BIGINT NOT NULL CHECK (basis > 0),
    effective_at    TIMESTAMPTZ NOT NULL,
    created_at      TIMESTAMPTZ NOT NULL DEFAULT NOW(),
    updated_at      TIMESTAMPTZ NOT NULL DEFAULT NOW()
)`,
			`CREATE INDEX IF NOT EXISTS idx_conversion_rate_pair ON conversion_rate (unit_id, denomination_id, effective_at)`,
			`CREATE TABLE IF NOT EXISTS entity (
    id             TEXT PRIMARY KEY,
    name           TEXT NOT NULL UNIQUE,
    address        BYTEA NOT NULL,
    identification BYTEA,
    created_at     TIMESTAMPTZ NOT NULL DEFAULT NOW(),
    updated_at     TIMESTAMPTZ NOT NULL DEFAULT NOW()
)`,
			`CREATE TABLE IF NOT EXISTS account (
    id                TEXT PRIMARY KEY,
    entity_id         TEXT NOT NULL REFERENCES entity (id) ON DELETE CASCADE,
    denomination_id   TEXT NOT NULL REFERENCES denomination (id) ON DELETE RESTRICT,
    counterparty_info BYTEA NOT NULL,
    created_at        TIMESTAMPTZ NOT NULL DEFAULT NOW(),
    updated_at        TIMESTAMPTZ NOT NULL DEFAULT NOW()
)`,
			`CREATE INDEX IF NOT EXISTS idx_account_entity ON account (entity_id)`,
			`CREATE TABLE IF NOT EXISTS relation (
    id          TEXT PRIMARY KEY,
    description TEXT NOT NULL UNIQUE,
    payee_id    TEXT NOT NULL REFERENCES entity (id) ON DELETE CASCADE,
    payor_id    TEXT NOT NULL REFERENCES entity (id) ON DELETE CASCADE,
    created_at  TIMESTAMPTZ NOT NULL DEFAULT NOW(),
    updated_at  TIMESTAMPTZ NOT NULL DEFAULT NOW()
)`,
			`CREATE INDEX IF NOT EXISTS idx_relation_payee ON relation (payee_id)`,
			`CREATE INDEX IF NOT EXISTS idx_relation_payor ON relation (payor_id)`,
			`CREATE TABLE IF NOT EXISTS fee_schedule (
    id             TEXT PRIMARY KEY,
    period_seconds BIGINT NOT NULL CHECK (period_seconds > 0),
    interest_rate  BIGINT NOT NULL CHECK (interest_rate >= 0),
    created_at     TIMESTAMPTZ NOT NULL DEFAULT NOW(),
    updated_at     TIMESTAMPTZ NOT NULL DEFAULT NOW()
)`,
			`CREATE TABLE IF NOT EXISTS charge (
    id              TEXT PRIMARY KEY,
    relation_id     TEXT NOT NULL REFERENCES relation (id) ON DELETE CASCADE,
    denomination_id TEXT NOT NULL REFERENCES denomination (id) ON DELETE RESTRICT,
    description     TEXT NOT NULL UNIQUE,
    payload         JSONB,
    amount          BIGINT NOT NULL CHECK (amount >= 0),
    due_date        TIMESTAMPTZ NOT NULL,
    fee_schedule_id TEXT REFERENCES fee_schedule (id) ON DELETE RESTRICT,
    state           TEXT NOT NULL DEFAULT 'active' CHECK (state IN ('active', 'inactive')),
    created_at      TIMESTAMPTZ NOT NULL DEFAULT NOW(),
    updated_at      TIMESTAMPTZ NOT NULL DEFAULT NOW()
)`,
			`CREATE INDEX IF NOT EXISTS idx_charge_relation ON charge (relation_id, state)`,
			`CREATE INDEX IF NOT EXISTS idx_charge_due ON charge (due_date, id)`,
			`CREATE TABLE IF NOT EXISTS payment (
    id              TEXT PRIMARY KEY,
    from_account_id TEXT NOT NULL REFERENCES account (id) ON DELETE RESTRICT,
    to_account_id   TEXT NOT NULL REFERENCES account (id) ON DELETE RESTRICT,
    description     TEXT NOT NULL UNIQUE,
    date            TIMESTAMPTZ NOT NULL,
    amount          BIGINT NOT NULL CHECK (amount > 0),
    state           TEXT NOT NULL DEFAULT 'active' CHECK (state IN ('active', 'inactive')),
    created_at      TIMESTAMPTZ NOT NULL DEFAULT NOW(),
    updated_at      TIMESTAMPTZ NOT NULL DEFAULT NOW()
)`,
			`CREATE INDEX IF NOT EXISTS idx_payment_from ON payment (from_account_id)`,
			`CREATE INDEX IF NOT EXISTS idx_payment_to ON payment (to_account_id)`,
			`CREATE TABLE IF NOT EXISTS payment_application (
    id             TEXT PRIMARY KEY,
    payment_id     TEXT NOT NULL REFERENCES payment (id) ON DELETE CASCADE,
    charge_id      TEXT NOT NULL REFERENCES charge (id) ON DELETE RESTRICT,
    amount         BIGINT NOT NULL CHECK (amount >= 0),
    payment_amount BIGINT NOT NULL CHECK (payment_amount >= 0),
    date           TIMESTAMPTZ NOT NULL,
    state          TEXT NOT NULL DEFAULT 'active' CHECK (state IN ('active', 'inactive')),
    created_at     TIMESTAMPTZ NOT NULL DEFAULT NOW(),
    updated_at     TIMESTAMPTZ NOT NULL DEFAULT NOW()
)`,
			`CREATE INDEX IF NOT EXISTS idx_payment_application_charge ON payment_application (charge_id, state)`,
			`CREATE INDEX IF NOT EXISTS idx_payment_application_payment ON payment_application (payment_id)`,
		)
	}, func(ctx context.Context, db *bun.DB) error {
		return execAll(ctx, db,
			`DROP TABLE IF EXISTS payment_application`,
			`DROP TABLE IF EXISTS payment`,
			`DROP TABLE IF EXISTS charge`,
			`DROP TABLE IF EXISTS fee_schedule`,
			`DROP TABLE IF EXISTS relation`,
			`DROP TABLE IF EXISTS account`,
			`DROP TABLE IF EXISTS entity`,
			`DROP TABLE IF EXISTS conversion_rate`,
			`DROP TABLE IF EXISTS denomination`,
		)
	})
}
