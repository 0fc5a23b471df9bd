package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"disease-detector/internal/models"
)

var (
	// ErrPatientNotFound 患者不存在
	ErrPatientNotFound = errors.New("patient not found")
	// ErrPatientExists 患者ID已存在
	ErrPatientExists = errors.New("patient ID already exists")
)

// PatientRepository 患者与诊断历史仓库
type PatientRepository interface {
	EnsureSchema(ctx context.Context) error
	CreatePatient(ctx context.Context, patientID, name string) (*models.Patient, error)
	GetPatient(ctx context.Context, patientID string) (*models.Patient, error)
	// ListHistory returns newest records first. limit <= 0 returns all.
	ListHistory(ctx context.Context, patientID string, limit int) ([]models.HistoryRecord, error)
	AppendHistory(ctx context.Context, rec *models.HistoryRecord) error
	// ClearHistory deletes every record of an existing patient.
	ClearHistory(ctx context.Context, patientID string) (int64, error)
}

// SQLPatientRepository implements PatientRepository on database/sql for
// both PostgreSQL and SQLite; the dialect supplies placeholders, DDL and
// duplicate-key detection.
type SQLPatientRepository struct {
	db      *sql.DB
	dialect dialect
	logger  *zap.Logger
	now     func() time.Time
}

// NewPostgresPatientRepository 创建 PostgreSQL 患者仓库
func NewPostgresPatientRepository(db *sql.DB, logger *zap.Logger) *SQLPatientRepository {
	return newSQLPatientRepository(db, postgresDialect{}, logger)
}

// NewSQLitePatientRepository 创建 SQLite 患者仓库
func NewSQLitePatientRepository(db *sql.DB, logger *zap.Logger) *SQLPatientRepository {
	return newSQLPatientRepository(db, sqliteDialect{}, logger)
}

func newSQLPatientRepository(db *sql.DB, d dialect, logger *zap.Logger) *SQLPatientRepository {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &SQLPatientRepository{
		db:      db,
		dialect: d,
		logger:  logger,
		now:     func() time.Time { return time.Now().UTC() },
	}
}

// EnsureSchema creates the tables and index if missing.
func (r *SQLPatientRepository) EnsureSchema(ctx context.Context) error {
	for _, stmt := range r.dialect.schema() {
		if _, err := r.db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("failed to ensure schema: %w", err)
		}
	}
	r.logger.Info("Patient store schema ready", zap.String("dialect", r.dialect.name()))
	return nil
}

// CreatePatient 注册患者
func (r *SQLPatientRepository) CreatePatient(ctx context.Context, patientID, name string) (*models.Patient, error) {
	patientID = strings.TrimSpace(patientID)
	if patientID == "" {
		return nil, fmt.Errorf("patient_id is required")
	}

	p := &models.Patient{
		PatientID: patientID,
		Name:      strings.TrimSpace(name),
		CreatedAt: r.now(),
	}
	query := r.dialect.rebind(`
		INSERT INTO patients (patient_id, name, created_at)
		VALUES (?, ?, ?)
		RETURNING id
	`)
	if err := r.db.QueryRowContext(ctx, query, p.PatientID, p.Name, p.CreatedAt).Scan(&p.ID); err != nil {
		if r.dialect.isUniqueViolation(err) {
			return nil, ErrPatientExists
		}
		return nil, fmt.Errorf("failed to create patient: %w", err)
	}
	return p, nil
}

// GetPatient 根据 patient_id 获取患者
func (r *SQLPatientRepository) GetPatient(ctx context.Context, patientID string) (*models.Patient, error) {
	query := r.dialect.rebind(`
		SELECT id, patient_id, name, created_at
		FROM patients
		WHERE patient_id = ?
	`)

	var p models.Patient
	err := r.db.QueryRowContext(ctx, query, patientID).Scan(&p.ID, &p.PatientID, &p.Name, &p.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, ErrPatientNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get patient: %w", err)
	}
	return &p, nil
}

// ListHistory 获取诊断历史（按时间倒序）
func (r *SQLPatientRepository) ListHistory(ctx context.Context, patientID string, limit int) ([]models.HistoryRecord, error) {
	query := `
		SELECT id, patient_id, symptoms, predicted_disease, confidence, created_at
		FROM medical_history
		WHERE patient_id = ?
		ORDER BY created_at DESC, id DESC
	`
	args := []any{patientID}
	if limit > 0 {
		query += " LIMIT ?"
		args = append(args, limit)
	}

	rows, err := r.db.QueryContext(ctx, r.dialect.rebind(query), args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query history: %w", err)
	}
	defer rows.Close()

	records := []models.HistoryRecord{}
	for rows.Next() {
		var rec models.HistoryRecord
		if err := rows.Scan(&rec.ID, &rec.PatientID, &rec.Symptoms, &rec.PredictedDisease, &rec.Confidence, &rec.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan history: %w", err)
		}
		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate history: %w", err)
	}
	return records, nil
}

// AppendHistory 写入一条诊断历史
func (r *SQLPatientRepository) AppendHistory(ctx context.Context, rec *models.HistoryRecord) error {
	if rec == nil || rec.PatientID == "" {
		return fmt.Errorf("patient_id is required")
	}
	if rec.CreatedAt.IsZero() {
		rec.CreatedAt = r.now()
	}

	query := r.dialect.rebind(`
		INSERT INTO medical_history (patient_id, symptoms, predicted_disease, confidence, created_at)
		VALUES (?, ?, ?, ?, ?)
		RETURNING id
	`)
	err := r.db.QueryRowContext(ctx, query,
		rec.PatientID, rec.Symptoms, rec.PredictedDisease, rec.Confidence, rec.CreatedAt,
	).Scan(&rec.ID)
	if err != nil {
		return fmt.Errorf("failed to append history: %w", err)
	}
	return nil
}

// ClearHistory 清空患者诊断历史
func (r *SQLPatientRepository) ClearHistory(ctx context.Context, patientID string) (int64, error) {
	if _, err := r.GetPatient(ctx, patientID); err != nil {
		return 0, err
	}

	result, err := r.db.ExecContext(ctx, r.dialect.rebind(`DELETE FROM medical_history WHERE patient_id = ?`), patientID)
	if err != nil {
		return 0, fmt.Errorf("failed to clear history: %w", err)
	}
	n, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to get rows affected: %w", err)
	}

	r.logger.Info("Patient history cleared",
		zap.String("patient_id", patientID),
		zap.Int64("deleted_count", n),
	)
	return n, nil
}
