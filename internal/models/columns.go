package models

// Output column aliases of the event query, equal to the Event JSON keys
const (
	ColID                    = "id_zaznamu"
	ColUUID                  = "unikatni_id"
	ColTitle                 = "nazev_udalosti"
	ColEventCode             = "id_udalosti"
	ColStartDate             = "datum_zacatek"
	ColEndDate               = "datum_konec"
	ColStartTimestamp        = "timestamp_zacatek"
	ColEndTimestamp          = "timestamp_konec"
	ColCreatedDate           = "datum_vytvoreni"
	ColDescription           = "popis_udalosti"
	ColLocation              = "misto_konani"
	ColOrganizer             = "organizator"
	ColURL                   = "url_udalosti"
	ColCategoryID            = "kategorie_id"
	ColCategoryLabel         = "kategorie_nazev"
	ColRiskLabel             = "kategorie_rizika"
	ColActive                = "je_aktivni_zaznam"
	ColPublic                = "je_verejny"
	ColSystemImpact          = "dopad_do_systemu"
	ColLegalArea             = "oblast_pravni_upravy"
	ColStatute               = "pravni_predpis"
	ColStatuteType           = "typ_pravniho_predpisu"
	ColStatuteURL            = "url_pravniho_predpisu"
	ColOfficeID              = "id_organu_verejne_moci"
	ColOfficeAbbreviation    = "zkratka_uradu"
	ColSubsystemAbbreviation = "zkratka_informacniho_systemu"
	ColContactPerson         = "kontaktni_osoba"
	ColContactDepartment     = "utvar_kontaktni_osoby"
	ColSupplier              = "dodavatel"
	ColEnvironment           = "prostredi"
	ColStatus                = "stav_udalosti"
	ColOutageType            = "typ_odstavo_udalosti"
	ColCrossSystemImpact     = "dopad_na_ostatni_systemy"
	ColServiceDeskID         = "id_service_desk"
)
