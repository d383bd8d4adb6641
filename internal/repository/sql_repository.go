package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/fjod/storefront/internal/domain"
	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database"
	"github.com/golang-migrate/migrate/v4/database/postgres"
	"github.com/golang-migrate/migrate/v4/database/sqlite"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	_ "github.com/lib/pq"
	_ "modernc.org/sqlite"
)

const migrationsTable = "storefront_schema_migrations"

// Repository stores reservations and their outbox events in SQLite or
// Postgres. Queries are written with "?" placeholders and rebound for
// Postgres.
type Repository struct {
	db     *sql.DB
	driver string
	now    func() time.Time
}

func NewSQLiteRepository(path string) (*Repository, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	// sqlite allows a single writer
	db.SetMaxOpenConns(1)
	return &Repository{db: db, driver: DriverSQLite, now: time.Now}, nil
}

func NewPostgresRepository(cred *Credentials) (*Repository, error) {
	sslMode := cred.SSLMode
	if sslMode == "" {
		sslMode = "disable"
	}
	psqlconn := fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		cred.Host,
		cred.Port,
		cred.User,
		cred.Password,
		cred.DBName,
		sslMode)

	db, err := sql.Open("postgres", psqlconn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if e2 := db.Ping(); e2 != nil {
		return nil, fmt.Errorf("failed to ping database: %w", e2)
	}

	db.SetMaxOpenConns(20)
	db.SetMaxIdleConns(10)
	db.SetConnMaxLifetime(time.Hour)
	return &Repository{db: db, driver: DriverPostgres, now: time.Now}, nil
}

// RunMigrations applies the migrations found in dir/<driver>.
func (r *Repository) RunMigrations(dir string) error {
	var (
		driver database.Driver
		err    error
	)
	switch r.driver {
	case DriverPostgres:
		driver, err = postgres.WithInstance(r.db, &postgres.Config{MigrationsTable: migrationsTable})
	default:
		driver, err = sqlite.WithInstance(r.db, &sqlite.Config{MigrationsTable: migrationsTable})
	}
	if err != nil {
		return fmt.Errorf("could not create migration driver: %w", err)
	}

	m, err := migrate.NewWithDatabaseInstance(
		fmt.Sprintf("file://%s/%s", strings.TrimRight(dir, "/"), r.driver),
		r.driver,
		driver,
	)
	if err != nil {
		return fmt.Errorf("could not create migrate instance: %w", err)
	}

	if e2 := m.Up(); e2 != nil && !errors.Is(e2, migrate.ErrNoChange) {
		return fmt.Errorf("could not run migrations: %w", e2)
	}

	return nil
}

type submittedEvent struct {
	ReservationID  string            `json:"reservation_id"`
	CustomerName   string            `json:"customer_name"`
	CustomerEmail  string            `json:"customer_email"`
	WantsTransport bool              `json:"wants_transport"`
	Items          []domain.CartLine `json:"items"`
	Summary        domain.Summary    `json:"summary"`
	SubmittedAt    time.Time         `json:"submitted_at"`
}

func (r *Repository) CreateReservation(ctx context.Context, res *domain.Reservation) error {
	now := r.now().UTC()
	if res.CreatedAt.IsZero() {
		res.CreatedAt = now
	}
	res.UpdatedAt = now

	linesJSON, err := json.Marshal(res.Lines)
	if err != nil {
		return fmt.Errorf("failed to marshal reservation lines: %w", err)
	}
	summaryJSON, err := json.Marshal(res.Summary)
	if err != nil {
		return fmt.Errorf("failed to marshal reservation summary: %w", err)
	}
	payload, err := json.Marshal(submittedEvent{
		ReservationID:  res.ID,
		CustomerName:   res.Customer.Name,
		CustomerEmail:  res.Customer.Email,
		WantsTransport: res.Summary.WantsTransport,
		Items:          res.Lines,
		Summary:        res.Summary,
		SubmittedAt:    res.CreatedAt,
	})
	if err != nil {
		return fmt.Errorf("failed to marshal outbox payload: %w", err)
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	_, err = tx.ExecContext(ctx, r.rebind(`
		INSERT INTO reservations
		(id, session_id, customer_name, customer_email, customer_phone, notes, wants_transport,
		 lines, summary, grand_total, status, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`),
		res.ID,
		res.SessionID,
		res.Customer.Name,
		res.Customer.Email,
		res.Customer.Phone,
		res.Customer.Notes,
		res.Summary.WantsTransport,
		string(linesJSON),
		string(summaryJSON),
		res.Summary.GrandTotal.StringFixed(2),
		string(res.Status),
		res.CreatedAt,
		res.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert reservation: %w", err)
	}

	_, err = tx.ExecContext(ctx, r.rebind(`
		INSERT INTO outbox_events (aggregate_id, event_type, payload, created_at)
		VALUES (?, ?, ?, ?)`),
		res.ID, EventReservationSubmitted, string(payload), now,
	)
	if err != nil {
		return fmt.Errorf("failed to insert outbox event: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit reservation: %w", err)
	}
	return nil
}

func (r *Repository) GetReservation(ctx context.Context, id string) (*domain.Reservation, error) {
	var (
		res         domain.Reservation
		status      string
		linesJSON   string
		summaryJSON string
	)
	err := r.db.QueryRowContext(ctx, r.rebind(`
		SELECT id, session_id, customer_name, customer_email, customer_phone, notes,
		       lines, summary, status, created_at, updated_at
		FROM reservations
		WHERE id = ?`), id).Scan(
		&res.ID,
		&res.SessionID,
		&res.Customer.Name,
		&res.Customer.Email,
		&res.Customer.Phone,
		&res.Customer.Notes,
		&linesJSON,
		&summaryJSON,
		&status,
		&res.CreatedAt,
		&res.UpdatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrReservationNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get reservation: %w", err)
	}

	if err := json.Unmarshal([]byte(linesJSON), &res.Lines); err != nil {
		return nil, fmt.Errorf("failed to unmarshal reservation lines: %w", err)
	}
	if err := json.Unmarshal([]byte(summaryJSON), &res.Summary); err != nil {
		return nil, fmt.Errorf("failed to unmarshal reservation summary: %w", err)
	}
	res.Status = domain.ReservationStatus(status)
	return &res, nil
}

func (r *Repository) UpdateStatus(ctx context.Context, id string, status domain.ReservationStatus) error {
	result, err := r.db.ExecContext(ctx, r.rebind(`
		UPDATE reservations SET status = ?, updated_at = ? WHERE id = ?`),
		string(status), r.now().UTC(), id,
	)
	if err != nil {
		return fmt.Errorf("failed to update reservation status: %w", err)
	}
	n, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to read affected rows: %w", err)
	}
	if n == 0 {
		return ErrReservationNotFound
	}
	return nil
}

func (r *Repository) GetUnprocessedEvents(ctx context.Context, limit int) ([]*OutboxEvent, error) {
	rows, err := r.db.QueryContext(ctx, r.rebind(`
		SELECT id, aggregate_id, event_type, payload, created_at
		FROM outbox_events
		WHERE processed_at IS NULL
		ORDER BY id
		LIMIT ?`), limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query outbox events: %w", err)
	}
	defer rows.Close()

	var events []*OutboxEvent
	for rows.Next() {
		var (
			e       OutboxEvent
			payload string
		)
		if err := rows.Scan(&e.ID, &e.AggregateID, &e.EventType, &payload, &e.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan outbox event: %w", err)
		}
		e.Payload = []byte(payload)
		events = append(events, &e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate outbox events: %w", err)
	}
	return events, nil
}

func (r *Repository) MarkEventAsProcessed(ctx context.Context, id int64) error {
	_, err := r.db.ExecContext(ctx, r.rebind(`
		UPDATE outbox_events SET processed_at = ? WHERE id = ?`), r.now().UTC(), id)
	if err != nil {
		return fmt.Errorf("failed to mark outbox event %d as processed: %w", id, err)
	}
	return nil
}

func (r *Repository) Close() error {
	return r.db.Close()
}

// rebind turns "?" placeholders into "$n" for Postgres.
func (r *Repository) rebind(query string) string {
	if r.driver != DriverPostgres {
		return query
	}
	var b strings.Builder
	n := 0
	for _, ch := range query {
		if ch == '?' {
			n++
			b.WriteString("$" + strconv.Itoa(n))
			continue
		}
		b.WriteRune(ch)
	}
	return b.String()
}
