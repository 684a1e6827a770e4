// Package validate implements the pre-persistence validation gate.
//
// Every rule is evaluated independently; the gate reports the full list of
// violations rather than stopping at the first one, so the form can show
// everything that needs fixing in one pass. Messages are user-facing and in
// French, matching the UI language.
package validate

import (
	"fmt"

	"github.com/atlas-conseil/tenderflow/internal/model"
)

// Record checks a candidate record (normalized + derived + manual fields)
// and returns the violation messages. An empty slice means the record can be
// persisted. Nothing is auto-corrected.
func Record(rec model.TenderRecord) []string {
	var violations []string

	required := []struct {
		label string
		empty bool
	}{
		{"Référence AO", rec.Reference == ""},
		{"Objet de l'appel d'offres", rec.Object == ""},
		{"Organisme émetteur", rec.Organization == ""},
		{"Montant estimé", rec.EstimatedAmount == nil},
		{"Date de publication", rec.PublicationDate == nil},
		{"Région/Ville", rec.Region == ""},
		{"Décision GO/NO GO", rec.Decision == model.DecisionUnset},
		{"Responsable", rec.Owner == ""},
	}
	for _, field := range required {
		if field.empty {
			violations = append(violations, fmt.Sprintf("%s est obligatoire", field.label))
		}
	}

	if rec.EstimatedAmount != nil && *rec.EstimatedAmount <= 0 {
		violations = append(violations, "Le montant estimé doit être supérieur à 0")
	}

	if rec.Complexity < 1 || rec.Complexity > 5 {
		violations = append(violations, "La complexité doit être entre 1 et 5")
	}

	if rec.SubmissionDate != nil && rec.PublicationDate != nil &&
		!rec.SubmissionDate.After(*rec.PublicationDate) {
		violations = append(violations, "La date de soumission doit être après la date de publication")
	}

	if rec.Reference != "" && len([]rune(rec.Reference)) < 3 {
		violations = append(violations, "La référence AO doit contenir au moins 3 caractères")
	}

	// Option-set membership. Extraction output may carry free text in these
	// fields; they only become violations once the user tries to save.
	if rec.Region != "" && !model.ValidRegion(rec.Region) {
		violations = append(violations, fmt.Sprintf("Région/Ville inconnue: %s", rec.Region))
	}
	if rec.Sector != "" && !model.ValidSector(rec.Sector) {
		violations = append(violations, fmt.Sprintf("Secteur inconnu: %s", rec.Sector))
	}
	if rec.Owner != "" && !model.ValidTeamMember(rec.Owner) {
		violations = append(violations, fmt.Sprintf("Responsable inconnu: %s", rec.Owner))
	}
	if rec.Decision != model.DecisionUnset && !model.ValidDecision(rec.Decision) {
		violations = append(violations, fmt.Sprintf("Décision GO/NO GO invalide: %s", rec.Decision))
	}
	if rec.Status != model.StatusUnset && !model.ValidStatus(rec.Status) {
		violations = append(violations, fmt.Sprintf("Statut inconnu: %s", rec.Status))
	}
	if rec.MissionType != "" && !model.ValidMissionType(rec.MissionType) {
		violations = append(violations, fmt.Sprintf("Type de mission inconnu: %s", rec.MissionType))
	}

	return violations
}
