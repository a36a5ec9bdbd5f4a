package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"egov-event-export/internal/models"

	"go.uber.org/zap"
)

// ErrExtractionFailed wraps every data-source failure of a corpus load
var ErrExtractionFailed = errors.New("event extraction failed")

// RowNormalizer turns one raw row into an event
type RowNormalizer interface {
	Normalize(row models.RawRow) models.Event
}

// EventRepository reads calendar events from the per-field node tables
type EventRepository struct {
	db      *sql.DB
	builder *QueryBuilder
	timeout time.Duration
	logger  *zap.Logger
}

// NewEventRepository creates a new event repository.
// timeout bounds the single read query; zero means no bound beyond ctx.
func NewEventRepository(db *sql.DB, builder *QueryBuilder, timeout time.Duration, logger *zap.Logger) *EventRepository {
	return &EventRepository{
		db:      db,
		builder: builder,
		timeout: timeout,
		logger:  logger,
	}
}

// LoadCorpus runs the event query once and normalizes every row in query order.
// Returns (nil, err) on any failure; an empty corpus is a non-nil empty slice.
func (r *EventRepository) LoadCorpus(ctx context.Context, entityType string, normalizer RowNormalizer) ([]models.Event, error) {
	rows, err := r.FetchRows(ctx, entityType)
	if err != nil {
		return nil, err
	}

	events := make([]models.Event, 0, len(rows))
	for _, row := range rows {
		events = append(events, normalizer.Normalize(row))
	}

	r.logger.Debug("Loaded event corpus",
		zap.String("entity_type", entityType),
		zap.Int("count", len(events)),
	)
	return events, nil
}

// FetchRows runs the event query and converts each row into tagged values
func (r *EventRepository) FetchRows(ctx context.Context, entityType string) ([]models.RawRow, error) {
	if r.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, r.timeout)
		defer cancel()
	}

	query := r.builder.Build()
	rows, err := r.db.QueryContext(ctx, query, entityType)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to query events: %w", ErrExtractionFailed, err)
	}
	defer rows.Close()

	columnTypes, err := rows.ColumnTypes()
	if err != nil {
		return nil, fmt.Errorf("%w: failed to read column types: %w", ErrExtractionFailed, err)
	}

	kinds := make(map[string]ColumnKind, len(r.builder.Columns()))
	for _, c := range r.builder.Columns() {
		kinds[c.Alias] = c.Kind
	}

	scanners := make([]columnScanner, len(columnTypes))
	for i, ct := range columnTypes {
		kind, ok := kinds[ct.Name()]
		if !ok {
			kind = ColumnText
		}
		scanners[i] = newColumnScanner(ct.Name(), kind, ct.DatabaseTypeName())
	}

	dest := make([]interface{}, len(scanners))
	result := make([]models.RawRow, 0)
	for rows.Next() {
		for i := range scanners {
			dest[i] = scanners[i].target()
		}
		if err := rows.Scan(dest...); err != nil {
			return nil, fmt.Errorf("%w: failed to scan event row: %w", ErrExtractionFailed, err)
		}

		row := make(models.RawRow, len(scanners))
		for i := range scanners {
			row[scanners[i].alias] = scanners[i].value()
		}
		result = append(result, row)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: failed to iterate event rows: %w", ErrExtractionFailed, err)
	}

	return result, nil
}

// columnScanner holds the scan target of one column for the current row
type columnScanner struct {
	alias string
	kind  ColumnKind
	fixed bool

	str sql.NullString
	i64 sql.NullInt64
	f64 sql.NullFloat64
}

func newColumnScanner(alias string, kind ColumnKind, dbType string) columnScanner {
	s := columnScanner{alias: alias, kind: kind}
	if kind == ColumnNumeric {
		s.fixed = isFixedPointType(dbType)
	}
	return s
}

func (s *columnScanner) target() interface{} {
	switch {
	case s.kind == ColumnText:
		s.str = sql.NullString{}
		return &s.str
	case s.fixed:
		s.f64 = sql.NullFloat64{}
		return &s.f64
	default:
		s.i64 = sql.NullInt64{}
		return &s.i64
	}
}

func (s *columnScanner) value() models.Value {
	switch {
	case s.kind == ColumnText:
		if !s.str.Valid {
			return models.Null()
		}
		return models.Text(s.str.String)
	case s.fixed:
		if !s.f64.Valid {
			return models.Null()
		}
		return models.FixedPoint(s.f64.Float64)
	case s.kind == ColumnEpoch:
		if !s.i64.Valid {
			return models.Null()
		}
		return models.Timestamp(time.Unix(s.i64.Int64, 0).UTC())
	default:
		if !s.i64.Valid {
			return models.Null()
		}
		return models.Integer(s.i64.Int64)
	}
}

func isFixedPointType(dbType string) bool {
	t := strings.ToUpper(dbType)
	return strings.HasPrefix(t, "DECIMAL") || strings.HasPrefix(t, "NUMERIC")
}
