package store

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
)

// Postgres backend. Expected schema:
//
//	CREATE TABLE users (
//	    seq      bigserial PRIMARY KEY,
//	    username text NOT NULL UNIQUE,
//	    password text NOT NULL,
//	    role     text NOT NULL
//	);
//	CREATE TABLE products (
//	    seq      bigserial PRIMARY KEY,
//	    id       int  NOT NULL,
//	    category text NOT NULL,
//	    name     text NOT NULL,
//	    weight   text NOT NULL,
//	    price    text NOT NULL,
//	    status   text NOT NULL,
//	    stock    int  NOT NULL
//	);
//
// seq preserves file order; id keeps the application-assigned
// identifier so both backends expose identical collections.

const (
	pingTimeout  = 1 * time.Second
	queryTimeout = 3 * time.Second
	pgUniqueCode = "23505"
)

func withTimeout(parent context.Context, d time.Duration, fn func(ctx context.Context) error) error {
	ctx, cancel := context.WithTimeout(parent, d)
	defer cancel()
	return fn(ctx)
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == pgUniqueCode
}

type PostgresUserStore struct {
	db *sql.DB
}

func NewPostgresUserStore(db *sql.DB) *PostgresUserStore {
	return &PostgresUserStore{db: db}
}

func (s *PostgresUserStore) Ping(ctx context.Context) error {
	return withTimeout(ctx, pingTimeout, func(ctx context.Context) error {
		return s.db.PingContext(ctx)
	})
}

func (s *PostgresUserStore) LoadAll(ctx context.Context) ([]User, error) {
	var out []User

	err := withTimeout(ctx, queryTimeout, func(ctx context.Context) error {
		rows, err := s.db.QueryContext(ctx, `
			SELECT username, password, role
			FROM users
			ORDER BY seq ASC
		`)
		if err != nil {
			return err
		}
		defer rows.Close()

		out = make([]User, 0, 16)
		for rows.Next() {
			var u User
			if err := rows.Scan(&u.Username, &u.Password, &u.Role); err != nil {
				return err
			}
			out = append(out, u)
		}
		return rows.Err()
	})

	if err != nil {
		return nil, err
	}
	return out, nil
}

func (s *PostgresUserStore) Create(ctx context.Context, u User) error {
	return withTimeout(ctx, queryTimeout, func(ctx context.Context) error {
		_, err := s.db.ExecContext(ctx, `
			INSERT INTO users (username, password, role)
			VALUES ($1, $2, $3)
		`, u.Username, u.Password, u.Role)

		if err == nil {
			return nil
		}
		if isUniqueViolation(err) {
			return ErrUsernameTaken
		}
		return err
	})
}

func (s *PostgresUserStore) Authenticate(ctx context.Context, username, password string) (User, bool, error) {
	var u User

	err := withTimeout(ctx, queryTimeout, func(ctx context.Context) error {
		return s.db.QueryRowContext(ctx, `
			SELECT username, password, role
			FROM users
			WHERE username = $1 AND password = $2
			ORDER BY seq ASC
			LIMIT 1
		`, username, password).Scan(&u.Username, &u.Password, &u.Role)
	})

	if err == sql.ErrNoRows {
		return User{}, false, nil
	}
	if err != nil {
		return User{}, false, err
	}
	return u, true, nil
}

type PostgresProductStore struct {
	db *sql.DB
}

func NewPostgresProductStore(db *sql.DB) *PostgresProductStore {
	return &PostgresProductStore{db: db}
}

func (s *PostgresProductStore) Ping(ctx context.Context) error {
	return withTimeout(ctx, pingTimeout, func(ctx context.Context) error {
		return s.db.PingContext(ctx)
	})
}

func (s *PostgresProductStore) LoadAll(ctx context.Context) ([]Product, error) {
	var out []Product

	err := withTimeout(ctx, queryTimeout, func(ctx context.Context) error {
		rows, err := s.db.QueryContext(ctx, `
			SELECT id, category, name, weight, price, status, stock
			FROM products
			ORDER BY seq ASC
		`)
		if err != nil {
			return err
		}
		defer rows.Close()

		out = make([]Product, 0, 16)
		for rows.Next() {
			var p Product
			if err := rows.Scan(&p.ID, &p.Category, &p.Name, &p.Weight, &p.Price, &p.Status, &p.Stock); err != nil {
				return err
			}
			out = append(out, p)
		}
		return rows.Err()
	})

	if err != nil {
		return nil, err
	}
	return out, nil
}

func (s *PostgresProductStore) SaveAll(ctx context.Context, products []Product) error {
	return withTimeout(ctx, queryTimeout, func(ctx context.Context) error {
		tx, err := s.db.BeginTx(ctx, &sql.TxOptions{Isolation: sql.LevelReadCommitted})
		if err != nil {
			return err
		}
		defer func() { _ = tx.Rollback() }()

		if err := replaceProducts(ctx, tx, products); err != nil {
			return err
		}
		return tx.Commit()
	})
}

// Update keeps the whole-collection view of the flat file: the
// transaction takes an exclusive table lock, so concurrent updates
// serialize instead of overwriting each other.
func (s *PostgresProductStore) Update(ctx context.Context, fn func(products []Product) ([]Product, error)) error {
	return withTimeout(ctx, queryTimeout, func(ctx context.Context) error {
		tx, err := s.db.BeginTx(ctx, &sql.TxOptions{Isolation: sql.LevelReadCommitted})
		if err != nil {
			return err
		}
		defer func() { _ = tx.Rollback() }()

		if _, err := tx.ExecContext(ctx, `LOCK TABLE products IN ACCESS EXCLUSIVE MODE`); err != nil {
			return err
		}

		rows, err := tx.QueryContext(ctx, `
			SELECT id, category, name, weight, price, status, stock
			FROM products
			ORDER BY seq ASC
		`)
		if err != nil {
			return err
		}

		products := make([]Product, 0, 16)
		for rows.Next() {
			var p Product
			if err := rows.Scan(&p.ID, &p.Category, &p.Name, &p.Weight, &p.Price, &p.Status, &p.Stock); err != nil {
				rows.Close()
				return err
			}
			products = append(products, p)
		}
		if err := rows.Err(); err != nil {
			rows.Close()
			return err
		}
		rows.Close()

		updated, err := fn(products)
		if err != nil {
			return err
		}

		if err := replaceProducts(ctx, tx, updated); err != nil {
			return err
		}
		return tx.Commit()
	})
}

func replaceProducts(ctx context.Context, tx *sql.Tx, products []Product) error {
	if _, err := tx.ExecContext(ctx, `DELETE FROM products`); err != nil {
		return err
	}

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO products (id, category, name, weight, price, status, stock)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`)
	if err != nil {
		return err
	}
	defer stmt.Close()

	for _, p := range products {
		_, err := stmt.ExecContext(ctx, p.ID, p.Category, p.Name, p.Weight, p.Price, StatusFor(p.Stock), p.Stock)
		if err != nil {
			return err
		}
	}
	return nil
}
