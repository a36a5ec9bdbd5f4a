package repository

import (
	"context"
	"database/sql"
	"database/sql/driver"
	"errors"
	"fmt"
	"path/filepath"
	"sort"
	"strings"
	"testing"
	"time"

	"egov-event-export/internal/common/config"
	"egov-event-export/internal/common/database"
	"egov-event-export/internal/models"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// passthrough keeps the raw row values visible to assertions
type passthrough struct {
	rows []models.RawRow
}

func (p *passthrough) Normalize(row models.RawRow) models.Event {
	p.rows = append(p.rows, row)
	return models.Event{Title: row.Get(models.ColTitle).Text}
}

func setupMockRepo(t *testing.T) (*sql.DB, sqlmock.Sqlmock, *EventRepository) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)

	b, err := NewEventQueryBuilder("mysql", "")
	require.NoError(t, err)

	return db, mock, NewEventRepository(db, b, time.Second, zap.NewNop())
}

func columnNames() []string {
	names := make([]string, 0, len(eventColumns))
	for _, c := range eventColumns {
		names = append(names, c.Alias)
	}
	return names
}

// rowValues returns one driver row with the given values, nil elsewhere
func rowValues(values map[string]interface{}) []driver.Value {
	row := make([]driver.Value, len(eventColumns))
	for i, c := range eventColumns {
		row[i] = values[c.Alias]
	}
	return row
}

func TestFetchRows_Success(t *testing.T) {
	db, mock, repo := setupMockRepo(t)
	defer db.Close()

	rows := sqlmock.NewRows(columnNames()).
		AddRow(rowValues(map[string]interface{}{
			models.ColID:            int64(5),
			models.ColTitle:         "Konference",
			models.ColStartDate:     int64(1700000000),
			models.ColActive:        int64(1),
			models.ColCategoryID:    int64(3),
			models.ColOfficeID:      "orgán-veřejné-moci/1",
			models.ColServiceDeskID: nil,
		})...).
		AddRow(rowValues(map[string]interface{}{
			models.ColID: int64(6),
		})...)

	mock.ExpectQuery(`SELECT`).
		WithArgs("udalost_kalendar").
		WillReturnRows(rows)

	got, err := repo.FetchRows(context.Background(), "udalost_kalendar")

	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, models.Integer(5), got[0].Get(models.ColID))
	assert.Equal(t, models.Text("Konference"), got[0].Get(models.ColTitle))
	assert.Equal(t, models.Timestamp(time.Unix(1700000000, 0).UTC()), got[0].Get(models.ColStartDate))
	assert.Equal(t, models.Integer(1), got[0].Get(models.ColActive))
	assert.True(t, got[0].Get(models.ColServiceDeskID).IsNull())
	assert.True(t, got[1].Get(models.ColTitle).IsNull())
	assert.True(t, got[1].Get(models.ColStartDate).IsNull())

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestFetchRows_DecimalBecomesFixedPoint(t *testing.T) {
	db, mock, repo := setupMockRepo(t)
	defer db.Close()

	columns := make([]*sqlmock.Column, 0, len(eventColumns))
	for _, c := range eventColumns {
		switch c.Alias {
		case models.ColID:
			columns = append(columns, sqlmock.NewColumn(c.Alias).OfType("DECIMAL", 1.5))
		case models.ColCategoryID:
			columns = append(columns, sqlmock.NewColumn(c.Alias).OfType("INT", int64(1)))
		default:
			columns = append(columns, sqlmock.NewColumn(c.Alias).OfType("VARCHAR", ""))
		}
	}
	values := rowValues(map[string]interface{}{
		models.ColID:         12.0,
		models.ColCategoryID: int64(4),
	})
	rows := sqlmock.NewRowsWithColumnDefinition(columns...).AddRow(values...)

	mock.ExpectQuery(`SELECT`).WithArgs("udalost_kalendar").WillReturnRows(rows)

	got, err := repo.FetchRows(context.Background(), "udalost_kalendar")

	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, models.FixedPoint(12), got[0].Get(models.ColID))
	assert.Equal(t, models.Integer(4), got[0].Get(models.ColCategoryID))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestLoadCorpus_QueryError(t *testing.T) {
	db, mock, repo := setupMockRepo(t)
	defer db.Close()

	mock.ExpectQuery(`SELECT`).
		WithArgs("udalost_kalendar").
		WillReturnError(errors.New("Unknown column 'n.uuid'"))

	events, err := repo.LoadCorpus(context.Background(), "udalost_kalendar", &passthrough{})

	require.Error(t, err)
	assert.Nil(t, events)
	assert.ErrorIs(t, err, ErrExtractionFailed)
	assert.Contains(t, err.Error(), "Unknown column")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestLoadCorpus_RowErrorMidIteration(t *testing.T) {
	db, mock, repo := setupMockRepo(t)
	defer db.Close()

	rows := sqlmock.NewRows(columnNames()).
		AddRow(rowValues(map[string]interface{}{models.ColID: int64(1)})...).
		AddRow(rowValues(map[string]interface{}{models.ColID: int64(2)})...).
		RowError(1, errors.New("connection reset"))

	mock.ExpectQuery(`SELECT`).WithArgs("udalost_kalendar").WillReturnRows(rows)

	events, err := repo.LoadCorpus(context.Background(), "udalost_kalendar", &passthrough{})

	require.Error(t, err)
	assert.Nil(t, events)
	assert.ErrorIs(t, err, ErrExtractionFailed)
}

func TestLoadCorpus_ScanError(t *testing.T) {
	db, mock, repo := setupMockRepo(t)
	defer db.Close()

	rows := sqlmock.NewRows(columnNames()).
		AddRow(rowValues(map[string]interface{}{models.ColActive: "not a number"})...)

	mock.ExpectQuery(`SELECT`).WithArgs("udalost_kalendar").WillReturnRows(rows)

	events, err := repo.LoadCorpus(context.Background(), "udalost_kalendar", &passthrough{})

	assert.Nil(t, events)
	assert.ErrorIs(t, err, ErrExtractionFailed)
}

func TestLoadCorpus_EmptyResultIsNotFailure(t *testing.T) {
	db, mock, repo := setupMockRepo(t)
	defer db.Close()

	mock.ExpectQuery(`SELECT`).WithArgs("udalost_kalendar").WillReturnRows(sqlmock.NewRows(columnNames()))

	events, err := repo.LoadCorpus(context.Background(), "udalost_kalendar", &passthrough{})

	require.NoError(t, err)
	assert.NotNil(t, events)
	assert.Empty(t, events)
}

// createSchema creates node and every joined field table with the columns the query reads
func createSchema(t *testing.T, db *sql.DB, b *QueryBuilder) {
	tables := make(map[string]string)
	for _, j := range b.Joins() {
		tables[j.Alias] = j.Table
	}

	columns := make(map[string]map[string]string)
	for _, c := range b.Columns() {
		parts := strings.SplitN(c.Source, ".", 2)
		table, ok := tables[parts[0]]
		if !ok {
			continue
		}
		if columns[table] == nil {
			columns[table] = make(map[string]string)
		}
		sqlType := "TEXT"
		if c.Kind != ColumnText {
			sqlType = "INTEGER"
		}
		columns[table][parts[1]] = sqlType
	}

	_, err := db.Exec(`CREATE TABLE node (nid INTEGER PRIMARY KEY, type TEXT NOT NULL, uuid TEXT)`)
	require.NoError(t, err)

	for _, j := range b.Joins() {
		defs := []string{"entity_id INTEGER NOT NULL"}
		names := make([]string, 0, len(columns[j.Table]))
		for name := range columns[j.Table] {
			names = append(names, name)
		}
		sort.Strings(names)
		for _, name := range names {
			defs = append(defs, name+" "+columns[j.Table][name])
		}
		_, err := db.Exec(fmt.Sprintf("CREATE TABLE %s (%s)", j.Table, strings.Join(defs, ", ")))
		require.NoError(t, err, j.Table)
	}
}

func insertField(t *testing.T, db *sql.DB, table string, nid int, values map[string]interface{}) {
	names := []string{"entity_id"}
	args := []interface{}{nid}
	for k, v := range values {
		names = append(names, k)
		args = append(args, v)
	}
	marks := strings.TrimSuffix(strings.Repeat("?, ", len(names)), ", ")
	_, err := db.Exec(fmt.Sprintf("INSERT INTO %s (%s) VALUES (%s)", table, strings.Join(names, ", "), marks), args...)
	require.NoError(t, err)
}

func TestLoadCorpus_SQLiteJoin(t *testing.T) {
	ctx := context.Background()
	db, err := database.Open(ctx, &config.DatabaseConfig{
		Driver: config.DriverSQLite,
		Path:   filepath.Join(t.TempDir(), "events.db"),
	})
	require.NoError(t, err)
	defer db.Close()

	b, err := NewEventQueryBuilder(config.DriverSQLite, "")
	require.NoError(t, err)
	createSchema(t, db, b)

	for _, n := range []struct {
		nid  int
		kind string
	}{{1, "udalost_kalendar"}, {2, "udalost_kalendar"}, {3, "udalost_kalendar"}, {4, "page"}} {
		_, err := db.Exec(`INSERT INTO node (nid, type, uuid) VALUES (?, ?, ?)`, n.nid, n.kind, fmt.Sprintf("uuid-%d", n.nid))
		require.NoError(t, err)
	}

	insertField(t, db, "node__field_nazev_udalosti", 1, map[string]interface{}{"field_nazev_udalosti_value": "Konference"})
	insertField(t, db, "node__field_datumudalosti", 1, map[string]interface{}{
		"field_datumudalosti_value":     1700000000,
		"field_datumudalosti_end_value": 1700003600,
	})
	insertField(t, db, "node__field_jeaktivnizaznam", 1, map[string]interface{}{"field_jeaktivnizaznam_value": 1})
	insertField(t, db, "node__field_kategorie_text", 2, map[string]interface{}{"field_kategorie_text_value": "událost ISVS"})
	insertField(t, db, "node__field_datumudalosti", 3, map[string]interface{}{"field_datumudalosti_value": 1800000000})
	insertField(t, db, "node__field_nazev_udalosti", 4, map[string]interface{}{"field_nazev_udalosti_value": "Stránka"})

	repo := NewEventRepository(db, b, 5*time.Second, zap.NewNop())
	p := &passthrough{}
	events, err := repo.LoadCorpus(ctx, "udalost_kalendar", p)

	require.NoError(t, err)
	require.Len(t, events, 3)
	require.Len(t, p.rows, 3)

	assert.Equal(t, models.Integer(3), p.rows[0].Get(models.ColID))
	assert.Equal(t, models.Integer(1), p.rows[1].Get(models.ColID))
	assert.Equal(t, models.Integer(2), p.rows[2].Get(models.ColID))

	first := p.rows[1]
	assert.Equal(t, models.Text("uuid-1"), first.Get(models.ColUUID))
	assert.Equal(t, models.Text("Konference"), first.Get(models.ColTitle))
	assert.Equal(t, models.Timestamp(time.Unix(1700000000, 0).UTC()), first.Get(models.ColStartDate))
	assert.Equal(t, models.Integer(1700003600), first.Get(models.ColEndTimestamp))
	assert.Equal(t, models.Integer(1), first.Get(models.ColActive))
	assert.True(t, first.Get(models.ColCategoryLabel).IsNull())

	last := p.rows[2]
	assert.True(t, last.Get(models.ColStartDate).IsNull())
	assert.Equal(t, models.Text("událost ISVS"), last.Get(models.ColCategoryLabel))
}

func TestSchemaInspector_SQLite(t *testing.T) {
	ctx := context.Background()
	db, err := database.Open(ctx, &config.DatabaseConfig{
		Driver: config.DriverSQLite,
		Path:   filepath.Join(t.TempDir(), "events.db"),
	})
	require.NoError(t, err)
	defer db.Close()

	b, err := NewEventQueryBuilder(config.DriverSQLite, "")
	require.NoError(t, err)
	createSchema(t, db, b)

	_, err = db.Exec(`INSERT INTO node (nid, type, uuid) VALUES (1, 'udalost_kalendar', 'u-1')`)
	require.NoError(t, err)
	insertField(t, db, "node__field_nazev_udalosti", 1, map[string]interface{}{"field_nazev_udalosti_value": "Konference"})

	inspector := NewSchemaInspector(db, b, zap.NewNop())

	columns, err := inspector.DescribeTable(ctx, "node__field_nazev_udalosti")
	require.NoError(t, err)
	require.Len(t, columns, 2)
	assert.Equal(t, "entity_id", columns[0].Name)
	assert.Equal(t, "INTEGER", strings.ToUpper(columns[0].DatabaseType))
	assert.Equal(t, "field_nazev_udalosti_value", columns[1].Name)

	_, err = inspector.DescribeTable(ctx, "missing_table")
	assert.Error(t, err)

	samples, err := inspector.SampleEvents(ctx, "udalost_kalendar", 5)
	require.NoError(t, err)
	require.Len(t, samples, 1)
	assert.Equal(t, SampleRow{ID: "1", UUID: "u-1", Title: "Konference"}, samples[0])
}
