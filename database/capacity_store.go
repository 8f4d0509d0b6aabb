// database/capacity_store.go
package database

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/tecenergy/tecingest/models"
)

const tableName = "tec_data"

// createTableStmt matches the fixed storage shape: one row per accepted
// capacity record plus a surrogate identity. The flag columns are stored as
// nullable booleans, converted from the source's Y/N labels at insert time.
const createTableStmt = `
	CREATE TABLE IF NOT EXISTS ` + tableName + ` (
		id BIGSERIAL PRIMARY KEY,
		loc VARCHAR(255),
		loc_zn VARCHAR(255),
		loc_name VARCHAR(255),
		loc_purp_desc VARCHAR(255),
		loc_qti VARCHAR(255),
		flow_ind VARCHAR(10),
		dc INTEGER,
		opc INTEGER,
		tsq INTEGER,
		oac INTEGER,
		it BOOLEAN,
		auth_overrun_ind BOOLEAN,
		nom_cap_exceed_ind BOOLEAN,
		all_qty_avail BOOLEAN,
		qty_reason VARCHAR(255),
		cycle INTEGER
	)`

const insertStmt = `
	INSERT INTO ` + tableName + ` (
		loc, loc_zn, loc_name, loc_purp_desc, loc_qti, flow_ind,
		dc, opc, tsq, oac,
		it, auth_overrun_ind, nom_cap_exceed_ind, all_qty_avail,
		qty_reason, cycle
	) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16)`

// CapacityStore appends validated capacity records to the tec_data table.
// Inserts are purely additive: there is no upsert, and re-uploading the same
// snapshot duplicates its rows. The snapshot file naming is the idempotency
// boundary, not row content.
type CapacityStore struct {
	db  *sql.DB
	log *zap.Logger
}

func NewCapacityStore(db *sql.DB, log *zap.Logger) *CapacityStore {
	return &CapacityStore{db: db, log: log}
}

// Ping verifies database connectivity without touching the table.
func (s *CapacityStore) Ping(ctx context.Context) error {
	if err := s.db.PingContext(ctx); err != nil {
		return fmt.Errorf("database ping failed: %w", err)
	}
	return nil
}

// EnsureTable creates the tec_data table if it does not exist.
func (s *CapacityStore) EnsureTable(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, createTableStmt); err != nil {
		return fmt.Errorf("failed to ensure table %s: %w", tableName, err)
	}
	return nil
}

// AppendRecords inserts all records from one snapshot, tagged with its
// cycle, inside a single transaction. Returns the number of rows appended.
func (s *CapacityStore) AppendRecords(ctx context.Context, records []models.CapacityRecord, cycle int) (int64, error) {
	if len(records) == 0 {
		return 0, nil
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx, insertStmt)
	if err != nil {
		return 0, fmt.Errorf("failed to prepare insert: %w", err)
	}
	defer stmt.Close()

	for _, rec := range records {
		_, err := stmt.ExecContext(ctx,
			rec.Loc, rec.LocZn, rec.LocName, rec.LocPurpDesc, rec.LocQTI, rec.FlowInd,
			nullInt(rec.DC), nullInt(rec.OPC), nullInt(rec.TSQ), nullInt(rec.OAC),
			flagBool(rec.IT), flagBool(rec.AuthOverrunInd), flagBool(rec.NomCapExceedInd), flagBool(rec.AllQtyAvail),
			nullString(rec.QtyReason), cycle,
		)
		if err != nil {
			return 0, fmt.Errorf("failed to insert record for loc %q: %w", rec.Loc, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("failed to commit insert transaction: %w", err)
	}

	s.log.Info("appended records", zap.Int("rows", len(records)), zap.Int("cycle", cycle))
	return int64(len(records)), nil
}

func nullInt(v *int) sql.NullInt64 {
	if v == nil {
		return sql.NullInt64{}
	}
	return sql.NullInt64{Int64: int64(*v), Valid: true}
}

func nullString(v string) sql.NullString {
	if strings.TrimSpace(v) == "" {
		return sql.NullString{}
	}
	return sql.NullString{String: v, Valid: true}
}

// flagBool converts the source's Y/N flag labels to a nullable boolean,
// leaving blank cells NULL.
func flagBool(v string) sql.NullBool {
	switch strings.TrimSpace(v) {
	case models.FlagYes:
		return sql.NullBool{Bool: true, Valid: true}
	case models.FlagNo:
		return sql.NullBool{Bool: false, Valid: true}
	default:
		return sql.NullBool{}
	}
}
