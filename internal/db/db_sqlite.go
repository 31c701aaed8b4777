package db

// Local implementation of DB using SQL

import (
	"context"
	dbsql "database/sql"
	"errors"
	"fmt"
	"time"

	_ "embed"

	"github.com/cedana/netbench/pkg/runner"
	_ "github.com/mattn/go-sqlite3"
)

//go:embed sql/schema.sql
var Ddl string

type SqliteDB struct {
	db *dbsql.DB
}

func NewSqliteDB(ctx context.Context, path string) (*SqliteDB, error) {
	if path == "" {
		return nil, fmt.Errorf("please provide a DB path")
	}

	db, err := dbsql.Open("sqlite3", path+"?_foreign_keys=on")
	if err != nil {
		return nil, err
	}

	// create sqlite tables
	if _, err := db.ExecContext(ctx, Ddl); err != nil {
		db.Close()
		return nil, err
	}

	return &SqliteDB{db: db}, nil
}

func (db *SqliteDB) Close() error {
	return db.db.Close()
}

///////////
/// Run ///
///////////

func (db *SqliteDB) PutRun(ctx context.Context, report *runner.Report) error {
	tx, err := db.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM verdicts WHERE run_id = ?`, report.ID); err != nil {
		return err
	}

	_, err = tx.ExecContext(ctx,
		`INSERT INTO runs (id, started_at, duration, aggregation, passed) VALUES (?, ?, ?, ?, ?)
		 ON CONFLICT(id) DO UPDATE SET started_at = excluded.started_at, duration = excluded.duration,
		 aggregation = excluded.aggregation, passed = excluded.passed`,
		report.ID, report.StartedAt.UnixNano(), int64(report.Duration), report.Aggregation, boolToInt(report.Passed),
	)
	if err != nil {
		return err
	}

	for i, v := range report.Verdicts {
		_, err = tx.ExecContext(ctx,
			`INSERT INTO verdicts (run_id, idx, label, alias, nrounds, bufsize, passed, duration, diagnostic)
			 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			report.ID, i, v.Label, v.Alias, v.NRounds, v.BufSize, boolToInt(v.Passed), int64(v.Duration), v.Diagnostic,
		)
		if err != nil {
			return err
		}
	}

	return tx.Commit()
}

func (db *SqliteDB) GetRun(ctx context.Context, id string) (*runner.Report, error) {
	row := db.db.QueryRowContext(ctx,
		`SELECT id, started_at, duration, aggregation, passed FROM runs WHERE id = ?`, id)

	report, err := scanRun(row)
	if errors.Is(err, dbsql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}

	if err := db.fillVerdicts(ctx, report); err != nil {
		return nil, err
	}

	return report, nil
}

func (db *SqliteDB) ListRuns(ctx context.Context, limit int) ([]*runner.Report, error) {
	if limit <= 0 {
		limit = -1 // no limit
	}

	rows, err := db.db.QueryContext(ctx,
		`SELECT id, started_at, duration, aggregation, passed FROM runs ORDER BY started_at DESC, id DESC LIMIT ?`, limit)
	if err != nil {
		return nil, err
	}

	var list []*runner.Report
	for rows.Next() {
		report, err := scanRun(rows)
		if err != nil {
			rows.Close()
			return nil, err
		}
		list = append(list, report)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, err
	}

	for _, report := range list {
		if err := db.fillVerdicts(ctx, report); err != nil {
			return nil, err
		}
	}

	return list, nil
}

func (db *SqliteDB) DeleteRun(ctx context.Context, id string) error {
	res, err := db.db.ExecContext(ctx, `DELETE FROM runs WHERE id = ?`, id)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}

///////////////
/// Helpers ///
///////////////

type scanner interface {
	Scan(dest ...any) error
}

func scanRun(s scanner) (*runner.Report, error) {
	var (
		report    runner.Report
		startedAt int64
		duration  int64
		passed    int64
	)
	if err := s.Scan(&report.ID, &startedAt, &duration, &report.Aggregation, &passed); err != nil {
		return nil, err
	}
	report.StartedAt = time.Unix(0, startedAt)
	report.Duration = time.Duration(duration)
	report.Passed = passed != 0
	report.Verdicts = []runner.Verdict{}
	return &report, nil
}

func (db *SqliteDB) fillVerdicts(ctx context.Context, report *runner.Report) error {
	rows, err := db.db.QueryContext(ctx,
		`SELECT label, alias, nrounds, bufsize, passed, duration, diagnostic FROM verdicts WHERE run_id = ? ORDER BY idx`,
		report.ID)
	if err != nil {
		return err
	}
	defer rows.Close()

	for rows.Next() {
		var (
			v        runner.Verdict
			passed   int64
			duration int64
		)
		if err := rows.Scan(&v.Label, &v.Alias, &v.NRounds, &v.BufSize, &passed, &duration, &v.Diagnostic); err != nil {
			return err
		}
		v.Passed = passed != 0
		v.Duration = time.Duration(duration)
		report.Verdicts = append(report.Verdicts, v)
	}

	return rows.Err()
}

func boolToInt(b bool) int64 {
	if b {
		return 1
	}
	return 0
}

var _ DB = (*SqliteDB)(nil)
