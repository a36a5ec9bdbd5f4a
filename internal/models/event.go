package models

// Flag values of the tri-state source columns
const (
	FlagYes = "ANO"
	FlagNo  = "NE"
)

// Event one flattened calendar event.
// JSON keys are the ones the static site reads; no attribute is ever omitted.
type Event struct {
	ID             Number `json:"id_zaznamu"`
	UUID           string `json:"unikatni_id"`
	Title          string `json:"nazev_udalosti"`
	EventCode      string `json:"id_udalosti"`
	StartDate      string `json:"datum_zacatek"`
	EndDate        string `json:"datum_konec"`
	StartTimestamp Number `json:"timestamp_zacatek"`
	EndTimestamp   Number `json:"timestamp_konec"`
	CreatedDate    string `json:"datum_vytvoreni"`

	Description string `json:"popis_udalosti"`
	Location    string `json:"misto_konani"`
	Organizer   string `json:"organizator"`
	URL         string `json:"url_udalosti"`

	CategoryID    Number `json:"kategorie_id"`
	CategoryLabel string `json:"kategorie_nazev"`
	RiskLabel     string `json:"kategorie_rizika"`

	Active       string `json:"je_aktivni_zaznam"`
	Public       string `json:"je_verejny"`
	SystemImpact string `json:"dopad_do_systemu"`

	LegalArea   string `json:"oblast_pravni_upravy"`
	Statute     string `json:"pravni_predpis"`
	StatuteType string `json:"typ_pravniho_predpisu"`
	StatuteURL  string `json:"url_pravniho_predpisu"`

	OfficeID              string `json:"id_organu_verejne_moci"`
	OfficeAbbreviation    string `json:"zkratka_uradu"`
	SubsystemAbbreviation string `json:"zkratka_informacniho_systemu"`

	ContactPerson     string `json:"kontaktni_osoba"`
	ContactDepartment string `json:"utvar_kontaktni_osoby"`

	Supplier          string `json:"dodavatel"`
	Environment       string `json:"prostredi"`
	Status            string `json:"stav_udalosti"`
	OutageType        string `json:"typ_odstavo_udalosti"`
	CrossSystemImpact string `json:"dopad_na_ostatni_systemy"`
	ServiceDeskID     string `json:"id_service_desk"`
}

// SearchableText concatenates the fields used for suggestion frequency, not case folded
func (e *Event) SearchableText() string {
	return e.Title + " " + e.Description + " " + e.Organizer + " " + e.Location + " " + e.CategoryLabel
}
