package db

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Migrate applies the schema. Every statement is idempotent so the service
// can run it on every boot.
func Migrate(ctx context.Context, pool *pgxpool.Pool) error {
	statements := []string{
		`create table if not exists customers (
			id bigint generated always as identity primary key,
			name text not null,
			email text not null unique,
			phone text not null,
			password_hash text not null,
			photo_url text,
			reset_token text,
			reset_expires_at timestamptz,
			is_active boolean not null default true,
			created_at timestamptz not null default now(),
			updated_at timestamptz not null default now()
		)`,
		`create table if not exists admins (
			id bigint generated always as identity primary key,
			name text not null,
			email text not null unique,
			password_hash text not null,
			is_super boolean not null default false,
			created_at timestamptz not null default now()
		)`,
		`create table if not exists sessions (
			id bigint generated always as identity primary key,
			actor_type text not null,
			actor_id bigint not null,
			status text not null default 'ACTIVE',
			expires_at timestamptz not null,
			created_at timestamptz not null default now()
		)`,
		`create index if not exists sessions_actor_idx on sessions (actor_type, actor_id)`,
		`create table if not exists categories (
			id bigint generated always as identity primary key,
			name text not null unique,
			created_at timestamptz not null default now()
		)`,
		`create table if not exists menus (
			id bigint generated always as identity primary key,
			category_id bigint not null references categories(id),
			name text not null,
			price bigint not null check (price >= 0),
			image_url text,
			stock integer not null default 0 check (stock >= 0 and stock <= 99),
			description text not null default '',
			is_recommended boolean not null default false,
			total_purchased bigint not null default 0,
			created_at timestamptz not null default now(),
			updated_at timestamptz not null default now()
		)`,
		`create table if not exists bank_accounts (
			id bigint generated always as identity primary key,
			bank_name text not null,
			account_number text not null,
			account_holder text not null,
			is_active boolean not null default false,
			created_at timestamptz not null default now()
		)`,
		`create table if not exists payments (
			id bigint generated always as identity primary key,
			customer_id bigint not null references customers(id) on delete cascade,
			bank_account_id bigint not null references bank_accounts(id),
			order_number text not null unique,
			total_amount bigint not null check (total_amount >= 0),
			proof_url text not null,
			status text not null default 'pending',
			note text,
			created_at timestamptz not null default now(),
			updated_at timestamptz not null default now()
		)`,
		`create index if not exists payments_customer_idx on payments (customer_id)`,
		`create table if not exists carts (
			id bigint generated always as identity primary key,
			customer_id bigint not null references customers(id) on delete cascade,
			menu_id bigint not null references menus(id),
			quantity integer not null check (quantity >= 1 and quantity <= 99),
			price bigint not null check (price >= 0),
			payment_id bigint references payments(id),
			created_at timestamptz not null default now(),
			updated_at timestamptz not null default now()
		)`,
		`create index if not exists carts_customer_active_idx on carts (customer_id) where payment_id is null`,
		`create table if not exists whatsapp_numbers (
			id bigint generated always as identity primary key,
			label text not null,
			phone text not null,
			is_active boolean not null default true,
			created_at timestamptz not null default now()
		)`,
		`create table if not exists reservations (
			id bigint generated always as identity primary key,
			customer_id bigint not null references customers(id) on delete cascade,
			reservation_date text not null,
			reservation_time text not null,
			party_size integer not null check (party_size >= 1 and party_size <= 20),
			notes text,
			status text not null default 'pending',
			whatsapp_number_id bigint references whatsapp_numbers(id),
			created_at timestamptz not null default now(),
			updated_at timestamptz not null default now()
		)`,
		`create index if not exists reservations_customer_idx on reservations (customer_id)`,
	}

	for _, stmt := range statements {
		if _, err := pool.Exec(ctx, stmt); err != nil {
			return err
		}
	}
	return nil
}
