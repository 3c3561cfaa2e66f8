package analysis

import (
	"context"
	"database/sql"
	"encoding/json"
	"time"

	"github.com/pkg/errors"
)

// ErrNotFound is returned when no analysis exists for a patient id.
var ErrNotFound = errors.New("analysis not found")

type postgresRepo struct {
	db *sql.DB
}

func NewRepository(db *sql.DB) Repository {
	return &postgresRepo{db: db}
}

func (r *postgresRepo) GetByPatientID(ctx context.Context, patientID string) (*Record, error) {
	query := `SELECT id, patient_id, result, transcript, created_at, updated_at FROM analyses WHERE patient_id = $1`

	row := r.db.QueryRowContext(ctx, query, patientID)

	var rec Record
	var resultJSON, transcriptJSON []byte

	err := row.Scan(
		&rec.ID,
		&rec.PatientID,
		&resultJSON,
		&transcriptJSON,
		&rec.CreatedAt,
		&rec.UpdatedAt,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, ErrNotFound
		}
		return nil, err
	}

	if len(resultJSON) > 0 {
		if err := json.Unmarshal(resultJSON, &rec.Result); err != nil {
			return nil, errors.Wrap(err, "unmarshal analysis result")
		}
	}
	if len(transcriptJSON) > 0 {
		if err := json.Unmarshal(transcriptJSON, &rec.Transcript); err != nil {
			return nil, errors.Wrap(err, "unmarshal transcript")
		}
	}

	return &rec, nil
}

func (r *postgresRepo) Save(ctx context.Context, rec *Record) error {
	resultJSON, err := json.Marshal(rec.Result)
	if err != nil {
		return err
	}
	transcriptJSON, err := json.Marshal(rec.Transcript)
	if err != nil {
		return err
	}

	if rec.CreatedAt.IsZero() {
		rec.CreatedAt = time.Now()
	}
	rec.UpdatedAt = time.Now()

	query := `
		INSERT INTO analyses (id, patient_id, result, transcript, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (patient_id) DO UPDATE SET
			result = $3,
			transcript = $4,
			updated_at = $6
	`
	_, err = r.db.ExecContext(ctx, query,
		rec.ID, rec.PatientID, resultJSON, transcriptJSON, rec.CreatedAt, rec.UpdatedAt)
	return err
}
