package repository

import (
	"strings"
	"testing"

	"egov-event-export/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewEventQueryBuilder_Validation(t *testing.T) {
	_, err := NewEventQueryBuilder("oracle", "")
	assert.Error(t, err)

	_, err = NewEventQueryBuilder("mysql", "db; DROP TABLE node")
	assert.Error(t, err)

	b, err := NewEventQueryBuilder("", "db")
	require.NoError(t, err)
	assert.Equal(t, "db.node", b.Table("node"))
	assert.Equal(t, "?", b.Placeholder(1))
}

func TestQueryBuilder_Build(t *testing.T) {
	b, err := NewEventQueryBuilder("mysql", "")
	require.NoError(t, err)

	query := b.Build()

	assert.True(t, strings.HasPrefix(query, "SELECT\n"))
	assert.Contains(t, query, "FROM node n\n")
	assert.Contains(t, query, "LEFT JOIN node__field_nazev_udalosti nazev ON n.nid = nazev.entity_id\n")
	assert.Contains(t, query, "WHERE n.type = ?\n")
	assert.True(t, strings.HasSuffix(query,
		"ORDER BY CASE WHEN datum.field_datumudalosti_value IS NULL THEN 1 ELSE 0 END, datum.field_datumudalosti_value DESC, n.nid"))

	assert.Equal(t, len(b.Joins()), strings.Count(query, "LEFT JOIN "))
	for _, c := range b.Columns() {
		assert.Contains(t, query, c.Source+" AS "+c.Alias)
	}
	assert.NotContains(t, query, "FROM_UNIXTIME")
}

func TestQueryBuilder_PostgresPlaceholderAndSchema(t *testing.T) {
	b, err := NewEventQueryBuilder("postgres", "drupal")
	require.NoError(t, err)

	query := b.Build()

	assert.Contains(t, query, "FROM drupal.node n\n")
	assert.Contains(t, query, "LEFT JOIN drupal.node__field_id_ovm id_ovm ON")
	assert.Contains(t, query, "WHERE n.type = $1\n")
	assert.Contains(t, b.SampleQuery(5), "WHERE n.type = $1\nLIMIT 5")
}

func TestQueryBuilder_ColumnsMatchEventKeys(t *testing.T) {
	b, err := NewEventQueryBuilder("sqlite", "")
	require.NoError(t, err)

	aliases := make(map[string]bool)
	for _, c := range b.Columns() {
		assert.False(t, aliases[c.Alias], "duplicate alias %s", c.Alias)
		aliases[c.Alias] = true
	}
	assert.Len(t, aliases, 34)
	assert.True(t, aliases[models.ColCreatedDate])

	joins := make(map[string]bool)
	for _, j := range b.Joins() {
		joins[j.Alias] = true
	}
	for _, c := range b.Columns() {
		alias := strings.SplitN(c.Source, ".", 2)[0]
		assert.True(t, alias == "n" || joins[alias], "column %s uses unknown alias %s", c.Alias, alias)
	}
}

func TestQueryBuilder_ProbeQuery(t *testing.T) {
	b, err := NewEventQueryBuilder("mysql", "db")
	require.NoError(t, err)

	q, err := b.ProbeQuery("node__field_popis")
	require.NoError(t, err)
	assert.Equal(t, "SELECT * FROM db.node__field_popis WHERE 1 = 0", q)

	_, err = b.ProbeQuery("node; --")
	assert.Error(t, err)
}
