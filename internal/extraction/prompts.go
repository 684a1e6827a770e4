package extraction

import "github.com/atlas-conseil/tenderflow/internal/normalize"

// systemPrompt frames every field question. The wording matters: the
// "Non spécifié" rule is what lets the normalizer treat a missing answer as
// an absent value instead of prose.
const systemPrompt = `Tu es un expert en extraction d'informations des appels d'offres marocains.
Examine attentivement le contexte fourni pour trouver l'information demandée.

Règles:
1. Réponds UNIQUEMENT par l'information demandée, sans phrases introductives
2. Si l'information n'est pas explicitement mentionnée, réponds "Non spécifié"
3. Ne confonds jamais les noms de fichiers ou les en-têtes de document avec le contenu réel`

// FieldPrompt couples a document question to the record field its answer
// feeds. Label is the human-readable name shown in the audit trail.
type FieldPrompt struct {
	Key    string
	Label  string
	Prompt string
}

// FieldPrompts returns the questions asked of every tender document, in the
// order they are asked.
func FieldPrompts() []FieldPrompt {
	return []FieldPrompt{
		{
			Key:   normalize.FieldObject,
			Label: "Objet",
			Prompt: "Quel est l'objet principal de l'appel d'offres ? " +
				"Cherche une formulation explicite comme 'objet de l'appel', 'la présente consultation a pour objet', etc.",
		},
		{
			Key:   normalize.FieldReference,
			Label: "Référence",
			Prompt: "Quel est le numéro de référence de l'appel d'offres ? " +
				"Cherche un identifiant précédé de 'Réf.', 'N°', ou 'numéro de la consultation'.",
		},
		{
			Key:   normalize.FieldPublicationDate,
			Label: "Date",
			Prompt: "Quelle est la date de l'appel d'offres ? " +
				"Cherche une date explicite comme 12/04/2024 ou 01-01-2025.",
		},
		{
			Key:   normalize.FieldEstimatedAmount,
			Label: "Estimation des coûts",
			Prompt: "Quelle est l'estimation des coûts ou la valeur du marché pour cet appel d'offres ? " +
				"Cherche les mentions comme 'montant estimé', 'coût prévisionnel', 'valeur du marché', 'budget alloué', etc.",
		},
		{
			Key:   normalize.FieldDepositAmount,
			Label: "Montant de la caution",
			Prompt: "Quel est le montant de la caution provisoire exigée pour cet appel d'offres ? " +
				"Cherche une mention comme 'le montant de la caution est fixé à', 'caution provisoire', etc.",
		},
		{
			Key:   normalize.FieldOrganization,
			Label: "Maître d'Ouvrage",
			Prompt: "Quel est le Maître d'Ouvrage de cet appel d'offres ? " +
				"Cherche une mention comme 'le maître d'ouvrage est', 'l'entité adjudicatrice', ou similaire.",
		},
	}
}
