package repository

import (
	"fmt"
	"regexp"
	"strings"

	"egov-event-export/internal/common/config"
	"egov-event-export/internal/models"
)

// ColumnKind declared kind of a selected column, decides how it is scanned
type ColumnKind int

const (
	ColumnText ColumnKind = iota
	ColumnInteger
	// ColumnNumeric is an integer unless the driver reports DECIMAL/NUMERIC
	ColumnNumeric
	// ColumnEpoch is a unix timestamp surfaced as a point in time
	ColumnEpoch
)

// FieldJoin one per-field side table joined on entity_id
type FieldJoin struct {
	Alias string
	Table string
}

// SelectColumn one output column of the event query
type SelectColumn struct {
	Alias  string
	Source string
	Kind   ColumnKind
}

const (
	baseTable   = "node"
	baseAlias   = "n"
	entityKey   = "nid"
	typeColumn  = "type"
	joinKey     = "entity_id"
	orderSource = "datum.field_datumudalosti_value"
)

var identPattern = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)

// eventJoins side tables of the calendar event content type
var eventJoins = []FieldJoin{
	{"nazev", "node__field_nazev_udalosti"},
	{"id_ud", "node__field_id_udalosti"},
	{"vytvoreno", "node__field_vytvoreno"},
	{"datum", "node__field_datumudalosti"},
	{"popis", "node__field_popis"},
	{"misto", "node__field_egov_misto_udalosti"},
	{"organizator", "node__field_egov_organizator"},
	{"url", "node__field_egov_url"},
	{"kat", "node__field_kategorie"},
	{"kat_text", "node__field_kategorie_text"},
	{"kat_rizika", "node__field_kategorie_rizika"},
	{"aktivni", "node__field_jeaktivnizaznam"},
	{"verejny", "node__field_jeverejny"},
	{"dopad", "node__field_dopad_do_systemu"},
	{"leg_oblast", "node__field_leg_oblast_pravni_upravy"},
	{"leg_predpis", "node__field_leg_pravni_predpis"},
	{"leg_typ", "node__field_leg_typ"},
	{"leg_url", "node__field_leg_url"},
	{"id_ovm", "node__field_id_ovm"},
	{"zkratka_ovm", "node__field_zkratka_ovm"},
	{"zkratka_isvs", "node__field_zkratka_isvs"},
	{"kontakt", "node__field_kontaktni_osoba_pro_isvs_o"},
	{"utvar", "node__field_utvar_kontaktni_osoby_ovm"},
	{"odst_dodavatel", "node__field_odst_dodavatel"},
	{"odst_prostredi", "node__field_odst_prostredi"},
	{"odst_stav", "node__field_odst_stav"},
	{"odst_typ", "node__field_odst_typ_udalosti"},
	{"odst_dopad", "node__field_odst_dopad_na_ostatni_syst"},
	{"odst_sd", "node__field_odst_id_sd"},
}

// eventColumns select list, in Event field order
var eventColumns = []SelectColumn{
	{models.ColID, "n.nid", ColumnNumeric},
	{models.ColUUID, "n.uuid", ColumnText},
	{models.ColTitle, "nazev.field_nazev_udalosti_value", ColumnText},
	{models.ColEventCode, "id_ud.field_id_udalosti_value", ColumnText},
	{models.ColStartDate, "datum.field_datumudalosti_value", ColumnEpoch},
	{models.ColEndDate, "datum.field_datumudalosti_end_value", ColumnEpoch},
	{models.ColStartTimestamp, "datum.field_datumudalosti_value", ColumnNumeric},
	{models.ColEndTimestamp, "datum.field_datumudalosti_end_value", ColumnNumeric},
	{models.ColCreatedDate, "vytvoreno.field_vytvoreno_value", ColumnEpoch},
	{models.ColDescription, "popis.field_popis_value", ColumnText},
	{models.ColLocation, "misto.field_egov_misto_udalosti_value", ColumnText},
	{models.ColOrganizer, "organizator.field_egov_organizator_value", ColumnText},
	{models.ColURL, "url.field_egov_url_uri", ColumnText},
	{models.ColCategoryID, "kat.field_kategorie_target_id", ColumnNumeric},
	{models.ColCategoryLabel, "kat_text.field_kategorie_text_value", ColumnText},
	{models.ColRiskLabel, "kat_rizika.field_kategorie_rizika_value", ColumnText},
	{models.ColActive, "aktivni.field_jeaktivnizaznam_value", ColumnInteger},
	{models.ColPublic, "verejny.field_jeverejny_value", ColumnInteger},
	{models.ColSystemImpact, "dopad.field_dopad_do_systemu_value", ColumnInteger},
	{models.ColLegalArea, "leg_oblast.field_leg_oblast_pravni_upravy_value", ColumnText},
	{models.ColStatute, "leg_predpis.field_leg_pravni_predpis_value", ColumnText},
	{models.ColStatuteType, "leg_typ.field_leg_typ_value", ColumnText},
	{models.ColStatuteURL, "leg_url.field_leg_url_uri", ColumnText},
	{models.ColOfficeID, "id_ovm.field_id_ovm_value", ColumnText},
	{models.ColOfficeAbbreviation, "zkratka_ovm.field_zkratka_ovm_value", ColumnText},
	{models.ColSubsystemAbbreviation, "zkratka_isvs.field_zkratka_isvs_value", ColumnText},
	{models.ColContactPerson, "kontakt.field_kontaktni_osoba_pro_isvs_o_value", ColumnText},
	{models.ColContactDepartment, "utvar.field_utvar_kontaktni_osoby_ovm_value", ColumnText},
	{models.ColSupplier, "odst_dodavatel.field_odst_dodavatel_value", ColumnText},
	{models.ColEnvironment, "odst_prostredi.field_odst_prostredi_value", ColumnText},
	{models.ColStatus, "odst_stav.field_odst_stav_value", ColumnText},
	{models.ColOutageType, "odst_typ.field_odst_typ_udalosti_value", ColumnText},
	{models.ColCrossSystemImpact, "odst_dopad.field_odst_dopad_na_ostatni_syst_value", ColumnText},
	{models.ColServiceDeskID, "odst_sd.field_odst_id_sd_value", ColumnText},
}

// QueryBuilder composes the wide outer join that rebuilds one event per node
type QueryBuilder struct {
	driver  string
	schema  string
	joins   []FieldJoin
	columns []SelectColumn
}

// NewEventQueryBuilder returns the builder for calendar events.
// schema qualifies table names when non-empty.
func NewEventQueryBuilder(driver, schema string) (*QueryBuilder, error) {
	switch driver {
	case config.DriverMySQL, config.DriverPostgres, config.DriverSQLite:
	case "":
		driver = config.DriverMySQL
	default:
		return nil, fmt.Errorf("unsupported database driver: %s", driver)
	}
	if schema != "" && !identPattern.MatchString(schema) {
		return nil, fmt.Errorf("invalid schema name: %q", schema)
	}

	return &QueryBuilder{
		driver:  driver,
		schema:  schema,
		joins:   eventJoins,
		columns: eventColumns,
	}, nil
}

// Joins returns the joined side tables
func (b *QueryBuilder) Joins() []FieldJoin {
	return b.joins
}

// Columns returns the select list in output order
func (b *QueryBuilder) Columns() []SelectColumn {
	return b.columns
}

// Table qualifies a table name with the schema
func (b *QueryBuilder) Table(name string) string {
	if b.schema == "" {
		return name
	}
	return b.schema + "." + name
}

// Placeholder returns the n-th (1-based) bind parameter marker
func (b *QueryBuilder) Placeholder(n int) string {
	if b.driver == config.DriverPostgres {
		return fmt.Sprintf("$%d", n)
	}
	return "?"
}

// Build returns the event query; the entity type is bound as parameter 1.
// Rows are ordered by start time descending with missing dates last, then by node id.
func (b *QueryBuilder) Build() string {
	var sb strings.Builder

	sb.WriteString("SELECT\n")
	for i, c := range b.columns {
		sb.WriteString("\t")
		sb.WriteString(c.Source)
		sb.WriteString(" AS ")
		sb.WriteString(c.Alias)
		if i < len(b.columns)-1 {
			sb.WriteString(",")
		}
		sb.WriteString("\n")
	}

	fmt.Fprintf(&sb, "FROM %s %s\n", b.Table(baseTable), baseAlias)
	for _, j := range b.joins {
		fmt.Fprintf(&sb, "LEFT JOIN %s %s ON %s.%s = %s.%s\n",
			b.Table(j.Table), j.Alias, baseAlias, entityKey, j.Alias, joinKey)
	}

	fmt.Fprintf(&sb, "WHERE %s.%s = %s\n", baseAlias, typeColumn, b.Placeholder(1))
	fmt.Fprintf(&sb, "ORDER BY CASE WHEN %s IS NULL THEN 1 ELSE 0 END, %s DESC, %s.%s",
		orderSource, orderSource, baseAlias, entityKey)

	return sb.String()
}

// SampleQuery returns a small diagnostic join of the core event columns
func (b *QueryBuilder) SampleQuery(limit int) string {
	return fmt.Sprintf(`SELECT
	n.nid,
	n.uuid,
	nazev.field_nazev_udalosti_value,
	datum.field_datumudalosti_value,
	datum.field_datumudalosti_end_value
FROM %s n
LEFT JOIN %s nazev ON n.nid = nazev.entity_id
LEFT JOIN %s datum ON n.nid = datum.entity_id
WHERE n.type = %s
LIMIT %d`,
		b.Table(baseTable),
		b.Table("node__field_nazev_udalosti"),
		b.Table("node__field_datumudalosti"),
		b.Placeholder(1),
		limit,
	)
}

// ProbeQuery returns a zero-row select used to read a table's columns
func (b *QueryBuilder) ProbeQuery(table string) (string, error) {
	if !identPattern.MatchString(table) {
		return "", fmt.Errorf("invalid table name: %q", table)
	}
	return fmt.Sprintf("SELECT * FROM %s WHERE 1 = 0", b.Table(table)), nil
}
