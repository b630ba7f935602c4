package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/costwatch/costwatch/internal/domain/anomaly"
	"github.com/costwatch/costwatch/internal/pkg/errors"
)

type AnomalyRepository struct {
	db *sql.DB
}

func NewAnomalyRepository(db *sql.DB) anomaly.Repository {
	return &AnomalyRepository{db: db}
}

func (r *AnomalyRepository) CreateBatch(ctx context.Context, results []anomaly.Result) error {
	if len(results) == 0 {
		return nil
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return errors.DatabaseError("Failed to begin transaction", err)
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx, `INSERT INTO cost_anomalies
		(resource_id, subscription_id, date, actual_cost, expected_cost, variance, variance_percentage, z_score, anomaly_type, severity, confidence, detected_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)`)
	if err != nil {
		return errors.DatabaseError("Failed to prepare insert", err)
	}
	defer stmt.Close()

	for _, a := range results {
		_, err := stmt.ExecContext(ctx,
			a.ResourceID, a.SubscriptionID, a.Date, a.ActualCost, a.ExpectedCost,
			a.Variance, a.VariancePercentage, a.ZScore, string(a.AnomalyType),
			string(a.Severity), a.Confidence, a.DetectedAt)
		if err != nil {
			return errors.DatabaseError("Failed to insert anomaly", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return errors.DatabaseError("Failed to commit anomalies", err)
	}
	return nil
}

func (r *AnomalyRepository) ListWithPagination(ctx context.Context, filter anomaly.Filter, limit, offset int) ([]anomaly.Result, int64, error) {
	where := []string{"1=1"}
	args := []interface{}{}

	addFilter := func(column, value string) {
		if value != "" {
			args = append(args, value)
			where = append(where, fmt.Sprintf("%s = $%d", column, len(args)))
		}
	}
	addFilter("subscription_id", filter.SubscriptionID)
	addFilter("resource_id", filter.ResourceID)
	addFilter("anomaly_type", filter.Type)
	addFilter("severity", filter.Severity)

	whereClause := strings.Join(where, " AND ")

	var total int64
	countQuery := fmt.Sprintf("SELECT COUNT(*) FROM cost_anomalies WHERE %s", whereClause)
	if err := r.db.QueryRowContext(ctx, countQuery, args...).Scan(&total); err != nil {
		return nil, 0, errors.DatabaseError("Failed to count anomalies", err)
	}

	query := fmt.Sprintf(`SELECT resource_id, subscription_id, date, actual_cost, expected_cost,
		variance, variance_percentage, z_score, anomaly_type, severity, confidence, detected_at
		FROM cost_anomalies WHERE %s ORDER BY detected_at DESC, id DESC LIMIT $%d OFFSET $%d`,
		whereClause, len(args)+1, len(args)+2)
	args = append(args, limit, offset)

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, 0, errors.DatabaseError("Failed to list anomalies", err)
	}
	defer rows.Close()

	var results []anomaly.Result
	for rows.Next() {
		var a anomaly.Result
		var anomalyType, severity string
		err := rows.Scan(&a.ResourceID, &a.SubscriptionID, &a.Date, &a.ActualCost, &a.ExpectedCost,
			&a.Variance, &a.VariancePercentage, &a.ZScore, &anomalyType, &severity, &a.Confidence, &a.DetectedAt)
		if err != nil {
			return nil, 0, errors.DatabaseError("Failed to scan anomaly", err)
		}
		a.AnomalyType = anomaly.Type(anomalyType)
		a.Severity = anomaly.Severity(severity)
		a.IsAnomaly = true
		results = append(results, a)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, errors.DatabaseError("Failed to read anomalies", err)
	}

	return results, total, nil
}

func (r *AnomalyRepository) CountBySeverity(ctx context.Context, subscriptionID string) (map[anomaly.Severity]int, error) {
	counts := map[anomaly.Severity]int{
		anomaly.SeverityHigh:   0,
		anomaly.SeverityMedium: 0,
		anomaly.SeverityLow:    0,
	}

	query := `SELECT severity, COUNT(*) FROM cost_anomalies WHERE subscription_id = $1 GROUP BY severity`
	rows, err := r.db.QueryContext(ctx, query, subscriptionID)
	if err != nil {
		return nil, errors.DatabaseError("Failed to count anomalies by severity", err)
	}
	defer rows.Close()

	for rows.Next() {
		var severity string
		var count int
		if err := rows.Scan(&severity, &count); err != nil {
			return nil, errors.DatabaseError("Failed to scan severity count", err)
		}
		counts[anomaly.Severity(severity)] = count
	}
	if err := rows.Err(); err != nil {
		return nil, errors.DatabaseError("Failed to read severity counts", err)
	}

	return counts, nil
}
