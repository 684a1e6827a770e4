package model

// Fixed option sets for the manual-entry form. These mirror the dropdowns in
// the management UI; free text coming out of extraction is not constrained by
// them, only form validation is.

// Regions returns the Moroccan regions and major cities accepted for the
// region field.
func Regions() []string {
	return []string{
		"Tanger-Tétouan-Al Hoceïma",
		"Oriental",
		"Fès-Meknès",
		"Rabat-Salé-Kénitra",
		"Béni Mellal-Khénifra",
		"Casablanca-Settat",
		"Marrakech-Safi",
		"Drâa-Tafilalet",
		"Souss-Massa",
		"Guelmim-Oued Noun",
		"Laâyoune-Sakia El Hamra",
		"Dakhla-Oued Ed-Dahab",
		"Casablanca",
		"Rabat",
		"Fès",
		"Marrakech",
		"Agadir",
		"Tanger",
		"Meknès",
		"Oujda",
		"Kenitra",
		"Tétouan",
	}
}

// Sectors returns the accepted sector labels.
func Sectors() []string {
	return []string{
		"Benchmark",
		"Management de transition",
		"Chantiers de compétitivité",
		"P2P",
		"Comptabilité analytique",
		"Services IT",
		"Pilotage analytique",
		"Formations",
		"Staffing",
		"Conseil stratégique",
		"BTP",
		"Énergie",
	}
}

// TeamMembers returns the roster of people a tender can be assigned to.
func TeamMembers() []string {
	return []string{
		"A. El Mansouri",
		"D. Chraibi",
		"B. Haddad",
		"C. Tazi",
		"M. Benali",
		"S. Alaoui",
	}
}

// Statuses returns the accepted status values, excluding unset.
func Statuses() []Status {
	return []Status{StatusPending, StatusWon, StatusLost, StatusAbandoned, StatusRejected}
}

// Decisions returns the accepted go/no-go values, excluding unset.
func Decisions() []Decision {
	return []Decision{DecisionGo, DecisionNoGo}
}

// MissionTypes returns the accepted mission type values.
func MissionTypes() []MissionType {
	return []MissionType{MissionService, MissionSupply, MissionWorks}
}

// ValidRegion reports whether the value belongs to the region option set.
func ValidRegion(v string) bool { return contains(Regions(), v) }

// ValidSector reports whether the value belongs to the sector option set.
func ValidSector(v string) bool { return contains(Sectors(), v) }

// ValidTeamMember reports whether the value belongs to the team roster.
func ValidTeamMember(v string) bool { return contains(TeamMembers(), v) }

// ValidStatus reports whether the value is a known status.
func ValidStatus(v Status) bool {
	for _, s := range Statuses() {
		if s == v {
			return true
		}
	}
	return false
}

// ValidDecision reports whether the value is a known go/no-go decision.
func ValidDecision(v Decision) bool {
	return v == DecisionGo || v == DecisionNoGo
}

// ValidMissionType reports whether the value is a known mission type.
func ValidMissionType(v MissionType) bool {
	for _, m := range MissionTypes() {
		if m == v {
			return true
		}
	}
	return false
}

func contains(options []string, v string) bool {
	for _, o := range options {
		if o == v {
			return true
		}
	}
	return false
}
