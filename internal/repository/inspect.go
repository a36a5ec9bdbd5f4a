package repository

import (
	"context"
	"database/sql"
	"fmt"

	"go.uber.org/zap"
)

// ColumnInfo name and driver-reported type of one table column
type ColumnInfo struct {
	Name         string
	DatabaseType string
}

// SampleRow one row of the diagnostic join, NULL rendered as empty
type SampleRow struct {
	ID        string
	UUID      string
	Title     string
	StartDate string
	EndDate   string
}

// SchemaInspector diagnostic reads against the node tables
type SchemaInspector struct {
	db      *sql.DB
	builder *QueryBuilder
	logger  *zap.Logger
}

// NewSchemaInspector creates a new schema inspector
func NewSchemaInspector(db *sql.DB, builder *QueryBuilder, logger *zap.Logger) *SchemaInspector {
	return &SchemaInspector{
		db:      db,
		builder: builder,
		logger:  logger,
	}
}

// DescribeTable lists the columns of table via a zero-row probe
func (i *SchemaInspector) DescribeTable(ctx context.Context, table string) ([]ColumnInfo, error) {
	query, err := i.builder.ProbeQuery(table)
	if err != nil {
		return nil, err
	}

	rows, err := i.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to probe table %s: %w", table, err)
	}
	defer rows.Close()

	types, err := rows.ColumnTypes()
	if err != nil {
		return nil, fmt.Errorf("failed to read columns of %s: %w", table, err)
	}

	columns := make([]ColumnInfo, 0, len(types))
	for _, ct := range types {
		columns = append(columns, ColumnInfo{
			Name:         ct.Name(),
			DatabaseType: ct.DatabaseTypeName(),
		})
	}
	return columns, nil
}

// SampleEvents returns up to limit rows of id, uuid, title and date columns
func (i *SchemaInspector) SampleEvents(ctx context.Context, entityType string, limit int) ([]SampleRow, error) {
	rows, err := i.db.QueryContext(ctx, i.builder.SampleQuery(limit), entityType)
	if err != nil {
		return nil, fmt.Errorf("failed to query sample events: %w", err)
	}
	defer rows.Close()

	var samples []SampleRow
	for rows.Next() {
		var id, uuid, title, start, end sql.NullString
		if err := rows.Scan(&id, &uuid, &title, &start, &end); err != nil {
			return nil, fmt.Errorf("failed to scan sample event: %w", err)
		}
		samples = append(samples, SampleRow{
			ID:        id.String,
			UUID:      uuid.String,
			Title:     title.String,
			StartDate: start.String,
			EndDate:   end.String,
		})
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate sample events: %w", err)
	}

	return samples, nil
}
