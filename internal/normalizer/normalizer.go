// Package normalizer turns joined source rows into flattened events.
package normalizer

import (
	"math"
	"strconv"
	"strings"
	"time"

	"egov-event-export/internal/config"
	"egov-event-export/internal/models"
)

// DateLayout format of every date attribute
const DateLayout = "2006-01-02 15:04:05"

// Options normalization settings
type Options struct {
	// Location formats timestamps; UTC when nil
	Location  *time.Location
	Templates config.Templates
}

// Normalizer converts RawRow values into the fixed event shape
type Normalizer struct {
	location  *time.Location
	templates config.Templates
}

// New creates a normalizer; empty title templates fall back to the built-in ones
func New(opts Options) *Normalizer {
	loc := opts.Location
	if loc == nil {
		loc = time.UTC
	}

	tpl := opts.Templates
	builtin := config.DefaultDefaults().Templates
	if tpl.EventTitle == "" {
		tpl.EventTitle = builtin.EventTitle
	}
	if tpl.EventTitleNoCategory == "" {
		tpl.EventTitleNoCategory = builtin.EventTitleNoCategory
	}

	return &Normalizer{
		location:  loc,
		templates: tpl,
	}
}

// Normalize maps one row to an event. Every attribute is set; missing or
// null columns become "" or 0.
func (n *Normalizer) Normalize(row models.RawRow) models.Event {
	e := models.Event{
		ID:             n.number(row.Get(models.ColID)),
		UUID:           n.text(row.Get(models.ColUUID)),
		Title:          n.text(row.Get(models.ColTitle)),
		EventCode:      n.text(row.Get(models.ColEventCode)),
		StartDate:      n.text(row.Get(models.ColStartDate)),
		EndDate:        n.text(row.Get(models.ColEndDate)),
		StartTimestamp: n.number(row.Get(models.ColStartTimestamp)),
		EndTimestamp:   n.number(row.Get(models.ColEndTimestamp)),
		CreatedDate:    n.text(row.Get(models.ColCreatedDate)),

		Description: n.text(row.Get(models.ColDescription)),
		Location:    n.text(row.Get(models.ColLocation)),
		Organizer:   n.text(row.Get(models.ColOrganizer)),
		URL:         n.text(row.Get(models.ColURL)),

		CategoryID:    n.number(row.Get(models.ColCategoryID)),
		CategoryLabel: n.text(row.Get(models.ColCategoryLabel)),
		RiskLabel:     n.text(row.Get(models.ColRiskLabel)),

		Active:       flag(row.Get(models.ColActive)),
		Public:       flag(row.Get(models.ColPublic)),
		SystemImpact: flag(row.Get(models.ColSystemImpact)),

		LegalArea:   n.text(row.Get(models.ColLegalArea)),
		Statute:     n.text(row.Get(models.ColStatute)),
		StatuteType: n.text(row.Get(models.ColStatuteType)),
		StatuteURL:  n.text(row.Get(models.ColStatuteURL)),

		OfficeID:              n.text(row.Get(models.ColOfficeID)),
		OfficeAbbreviation:    n.text(row.Get(models.ColOfficeAbbreviation)),
		SubsystemAbbreviation: n.text(row.Get(models.ColSubsystemAbbreviation)),

		ContactPerson:     n.text(row.Get(models.ColContactPerson)),
		ContactDepartment: n.text(row.Get(models.ColContactDepartment)),

		Supplier:          n.text(row.Get(models.ColSupplier)),
		Environment:       n.text(row.Get(models.ColEnvironment)),
		Status:            n.text(row.Get(models.ColStatus)),
		OutageType:        n.text(row.Get(models.ColOutageType)),
		CrossSystemImpact: n.text(row.Get(models.ColCrossSystemImpact)),
		ServiceDeskID:     n.text(row.Get(models.ColServiceDeskID)),
	}

	if strings.TrimSpace(e.Title) == "" {
		e.Title = n.fallbackTitle(e.ID, e.CategoryLabel)
	}

	return e
}

// FormatTime formats t in the configured location
func (n *Normalizer) FormatTime(t time.Time) string {
	return t.In(n.location).Format(DateLayout)
}

func (n *Normalizer) fallbackTitle(id models.Number, category string) string {
	tpl := n.templates.EventTitleNoCategory
	if category != "" {
		tpl = n.templates.EventTitle
	}
	return strings.NewReplacer("{category}", category, "{id}", id.String()).Replace(tpl)
}

func (n *Normalizer) text(v models.Value) string {
	switch v.Kind {
	case models.KindText:
		return v.Text
	case models.KindInteger:
		return strconv.FormatInt(v.Int, 10)
	case models.KindFixedPoint:
		return models.FloatNumber(v.Float).String()
	case models.KindTimestamp:
		return n.FormatTime(v.Time)
	default:
		return ""
	}
}

func (n *Normalizer) number(v models.Value) models.Number {
	switch v.Kind {
	case models.KindInteger:
		return models.IntNumber(v.Int)
	case models.KindFixedPoint:
		return models.FloatNumber(v.Float)
	case models.KindTimestamp:
		return models.IntNumber(v.Time.Unix())
	case models.KindText:
		s := strings.TrimSpace(v.Text)
		if i, err := strconv.ParseInt(s, 10, 64); err == nil {
			return models.IntNumber(i)
		}
		if f, err := strconv.ParseFloat(s, 64); err == nil && !math.IsNaN(f) && !math.IsInf(f, 0) {
			return models.FloatNumber(f)
		}
		return models.Number{}
	default:
		return models.Number{}
	}
}

// flag maps a numeric 1 to "ANO", everything else to "NE"
func flag(v models.Value) string {
	switch {
	case v.Kind == models.KindInteger && v.Int == 1:
		return models.FlagYes
	case v.Kind == models.KindFixedPoint && v.Float == 1:
		return models.FlagYes
	default:
		return models.FlagNo
	}
}
