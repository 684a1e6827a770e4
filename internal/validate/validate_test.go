package validate

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/atlas-conseil/tenderflow/internal/model"
)

func datePtr(year int, month time.Month, day int) *time.Time {
	d := time.Date(year, month, day, 0, 0, 0, 0, time.UTC)
	return &d
}

func floatPtr(v float64) *float64 { return &v }

func validRecord() model.TenderRecord {
	return model.TenderRecord{
		Reference:       "AO-2025-001",
		Object:          "Mise en place d'une comptabilité analytique",
		Organization:    "Office National de l'Eau",
		Region:          "Rabat",
		Sector:          "Comptabilité analytique",
		Decision:        model.DecisionGo,
		Owner:           "S. Alaoui",
		Complexity:      3,
		EstimatedAmount: floatPtr(2000000),
		PublicationDate: datePtr(2025, 3, 1),
		SubmissionDate:  datePtr(2025, 3, 20),
	}
}

func TestValidRecordHasNoViolations(t *testing.T) {
	t.Parallel()

	assert.Empty(t, Record(validRecord()))
}

func TestRequiredFields(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		mutate  func(*model.TenderRecord)
		message string
	}{
		{
			name:    "missing reference",
			mutate:  func(r *model.TenderRecord) { r.Reference = "" },
			message: "Référence AO est obligatoire",
		},
		{
			name:    "missing object",
			mutate:  func(r *model.TenderRecord) { r.Object = "" },
			message: "Objet de l'appel d'offres est obligatoire",
		},
		{
			name:    "missing organization",
			mutate:  func(r *model.TenderRecord) { r.Organization = "" },
			message: "Organisme émetteur est obligatoire",
		},
		{
			name:    "missing estimated amount",
			mutate:  func(r *model.TenderRecord) { r.EstimatedAmount = nil },
			message: "Montant estimé est obligatoire",
		},
		{
			name:    "missing publication date",
			mutate:  func(r *model.TenderRecord) { r.PublicationDate = nil },
			message: "Date de publication est obligatoire",
		},
		{
			name:    "missing region",
			mutate:  func(r *model.TenderRecord) { r.Region = "" },
			message: "Région/Ville est obligatoire",
		},
		{
			name:    "missing decision",
			mutate:  func(r *model.TenderRecord) { r.Decision = model.DecisionUnset },
			message: "Décision GO/NO GO est obligatoire",
		},
		{
			name:    "missing owner",
			mutate:  func(r *model.TenderRecord) { r.Owner = "" },
			message: "Responsable est obligatoire",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			rec := validRecord()
			tt.mutate(&rec)
			assert.Contains(t, Record(rec), tt.message)
		})
	}
}

func TestAllViolationsReported(t *testing.T) {
	t.Parallel()

	// Two independent problems must both be reported in one pass.
	rec := validRecord()
	rec.Owner = ""
	rec.Complexity = 6

	violations := Record(rec)
	assert.Len(t, violations, 2)
	assert.Contains(t, violations, "Responsable est obligatoire")
	assert.Contains(t, violations, "La complexité doit être entre 1 et 5")
}

func TestAmountMustBePositive(t *testing.T) {
	t.Parallel()

	rec := validRecord()
	rec.EstimatedAmount = floatPtr(0)
	assert.Contains(t, Record(rec), "Le montant estimé doit être supérieur à 0")

	rec.EstimatedAmount = floatPtr(-500)
	assert.Contains(t, Record(rec), "Le montant estimé doit être supérieur à 0")
}

func TestComplexityBounds(t *testing.T) {
	t.Parallel()

	for _, complexity := range []int{1, 2, 3, 4, 5} {
		rec := validRecord()
		rec.Complexity = complexity
		assert.Empty(t, Record(rec), "complexity %d", complexity)
	}

	for _, complexity := range []int{0, -1, 6} {
		rec := validRecord()
		rec.Complexity = complexity
		assert.Contains(t, Record(rec), "La complexité doit être entre 1 et 5", "complexity %d", complexity)
	}
}

func TestSubmissionMustFollowPublication(t *testing.T) {
	t.Parallel()

	rec := validRecord()
	rec.SubmissionDate = datePtr(2025, 2, 20)
	assert.Contains(t, Record(rec), "La date de soumission doit être après la date de publication")

	// Same day is too early as well.
	rec.SubmissionDate = datePtr(2025, 3, 1)
	assert.Contains(t, Record(rec), "La date de soumission doit être après la date de publication")

	// No submission date yet is fine.
	rec.SubmissionDate = nil
	assert.Empty(t, Record(rec))
}

func TestReferenceMinLength(t *testing.T) {
	t.Parallel()

	rec := validRecord()
	rec.Reference = "AO"
	assert.Contains(t, Record(rec), "La référence AO doit contenir au moins 3 caractères")

	rec.Reference = "AO1"
	assert.Empty(t, Record(rec))
}

func TestOptionSetMembership(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		mutate  func(*model.TenderRecord)
		message string
	}{
		{
			name:    "unknown region",
			mutate:  func(r *model.TenderRecord) { r.Region = "Atlantis" },
			message: "Région/Ville inconnue: Atlantis",
		},
		{
			name:    "unknown sector",
			mutate:  func(r *model.TenderRecord) { r.Sector = "Alchimie" },
			message: "Secteur inconnu: Alchimie",
		},
		{
			name:    "unknown owner",
			mutate:  func(r *model.TenderRecord) { r.Owner = "Z. Personne" },
			message: "Responsable inconnu: Z. Personne",
		},
		{
			name:    "invalid decision",
			mutate:  func(r *model.TenderRecord) { r.Decision = "PEUT-ÊTRE" },
			message: "Décision GO/NO GO invalide: PEUT-ÊTRE",
		},
		{
			name:    "unknown status",
			mutate:  func(r *model.TenderRecord) { r.Status = "En cours" },
			message: "Statut inconnu: En cours",
		},
		{
			name:    "unknown mission type",
			mutate:  func(r *model.TenderRecord) { r.MissionType = "Conseil" },
			message: "Type de mission inconnu: Conseil",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			rec := validRecord()
			tt.mutate(&rec)
			violations := Record(rec)
			assert.Len(t, violations, 1)
			assert.Contains(t, violations, tt.message)
		})
	}
}

func TestEmptyOptionalEnumsAreAccepted(t *testing.T) {
	t.Parallel()

	rec := validRecord()
	rec.Sector = ""
	rec.Status = model.StatusUnset
	rec.MissionType = ""
	assert.Empty(t, Record(rec))
}
