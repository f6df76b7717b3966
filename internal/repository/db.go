package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

// ErrNotFound is returned when a looked-up row does not exist.
var ErrNotFound = errors.New("record not found")

// DBTX is the query surface shared by *pgxpool.Pool and pgx.Tx.
type DBTX interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	CopyFrom(ctx context.Context, tableName pgx.Identifier, columnNames []string, rowSrc pgx.CopyFromSource) (int64, error)
}

// Repos bundles every repository bound to one connection or transaction.
type Repos struct {
	Plans            PlanRepository
	Semesters        SemesterRepository
	SemesterLectures SemesterLectureRepository
	Catalog          CatalogRepository
	Requirements     PlanRequirementRepository
	History          HistoryRepository
}

// TxManager runs a unit of work inside a single transaction. The work is
// committed only if fn returns nil; any error or a cancelled context rolls
// everything back.
type TxManager interface {
	RunInTx(ctx context.Context, fn func(ctx context.Context, r Repos) error) error
}

// NewRepos binds the postgres repositories to db.
func NewRepos(db DBTX) Repos {
	return Repos{
		Plans:            &planRepository{db: db},
		Semesters:        &semesterRepository{db: db},
		SemesterLectures: &semesterLectureRepository{db: db},
		Catalog:          &catalogRepository{db: db},
		Requirements:     &planRequirementRepository{db: db},
		History:          &historyRepository{db: db},
	}
}

type pgTxManager struct {
	pool *pgxpool.Pool
}

// NewTxManager creates a TxManager over the pool. Transactions run at
// REPEATABLE READ so an operation sees one consistent snapshot.
func NewTxManager(pool *pgxpool.Pool) TxManager {
	return &pgTxManager{pool: pool}
}

func (m *pgTxManager) RunInTx(ctx context.Context, fn func(ctx context.Context, r Repos) error) error {
	tx, err := m.pool.BeginTx(ctx, pgx.TxOptions{IsoLevel: pgx.RepeatableRead})
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	// Rollback after Commit is a no-op.
	defer tx.Rollback(context.Background())

	if err := fn(ctx, NewRepos(tx)); err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit tx: %w", err)
	}
	return nil
}

func notFound(err error) error {
	if errors.Is(err, pgx.ErrNoRows) {
		return ErrNotFound
	}
	return err
}

type rowScanner interface {
	Scan(dest ...any) error
}
