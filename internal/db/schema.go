package db

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Migrate applies the schema at startup. Statements are idempotent.
func Migrate(ctx context.Context, pool *pgxpool.Pool) error {
	_, err := pool.Exec(ctx, schema)
	return err
}

const schema = `
create extension if not exists "pgcrypto";

create table if not exists clients (
    id uuid primary key default gen_random_uuid(),
    code text not null unique,
    name text not null,
    email text not null unique,
    phone text not null default '',
    opening_balance numeric(19,2) not null default 0,
    status text not null default 'ACTIVE',
    risk_tier text not null default 'LOW',
    daily_trade_limit numeric(19,2),
    created_at timestamptz not null default now(),
    updated_at timestamptz not null default now()
);

create table if not exists accounts (
    id uuid primary key default gen_random_uuid(),
    client_id uuid not null unique references clients(id),
    cash_balance numeric(19,2) not null default 0,
    reserved_balance numeric(19,2) not null default 0,
    updated_at timestamptz not null default now()
);

create table if not exists positions (
    id uuid primary key default gen_random_uuid(),
    client_id uuid not null references clients(id),
    symbol text not null,
    quantity bigint not null,
    average_cost numeric(19,2) not null,
    updated_at timestamptz not null default now(),
    unique (client_id, symbol)
);

create table if not exists orders (
    id uuid primary key default gen_random_uuid(),
    client_id uuid not null references clients(id),
    symbol text not null,
    quantity bigint not null,
    price numeric(19,4) not null,
    side text not null,
    kind text not null,
    status text not null,
    trade_time timestamptz not null,
    expiry_time timestamptz,
    check_passed boolean,
    check_reason text not null default '',
    created_at timestamptz not null default now(),
    updated_at timestamptz not null default now()
);
create index if not exists idx_orders_client on orders(client_id);
create index if not exists idx_orders_status on orders(status);
create index if not exists idx_orders_trade_time on orders(trade_time);

create table if not exists audit_log (
    id uuid primary key default gen_random_uuid(),
    event_time timestamptz not null default now(),
    entity_type text not null,
    entity_id text not null default '',
    action text not null,
    actor text not null default 'SYSTEM',
    details text not null default ''
);
create index if not exists idx_audit_entity on audit_log(entity_type, entity_id);

create table if not exists users (
    id uuid primary key default gen_random_uuid(),
    email text not null unique,
    created_at timestamptz not null default now()
);

create table if not exists user_credentials (
    user_id uuid primary key references users(id),
    password_hash text not null
);
`
