package models

// Category is the kind of legal act being drafted.
type Category string

const (
	CategoryAssignation             Category = "Assignation en justice"
	CategoryCommandement            Category = "Commandement de payer"
	CategoryConstat                 Category = "Constat de faits"
	CategoryConge                   Category = "Congé (Bail commercial/habitation)"
	CategoryDenonciation            Category = "Dénonciation de saisie"
	CategoryExpulsion               Category = "Procédure d'expulsion"
	CategoryInjonction              Category = "Injonction de payer"
	CategoryMiseEnDemeure           Category = "Mise en demeure"
	CategoryOffreReelle             Category = "Offre réelle de paiement"
	CategorySaisieAttribution       Category = "PV de Saisie-Attribution"
	CategorySaisieVente             Category = "PV de Saisie-Vente"
	CategorySignificationJugement   Category = "Signification de jugement"
	CategorySommationPayer          Category = "Sommation de payer"
	CategorySommationInterpellative Category = "Sommation interpellative"
	CategorySaisieContrefacon       Category = "Saisie-contrefaçon"
	CategoryAutre                   Category = "Autre acte"
)

// Categories lists every act type in the order offered to the user.
var Categories = []Category{
	CategoryAssignation,
	CategoryCommandement,
	CategoryConstat,
	CategoryConge,
	CategoryDenonciation,
	CategoryExpulsion,
	CategoryInjonction,
	CategoryMiseEnDemeure,
	CategoryOffreReelle,
	CategorySaisieAttribution,
	CategorySaisieVente,
	CategorySignificationJugement,
	CategorySommationPayer,
	CategorySommationInterpellative,
	CategorySaisieContrefacon,
	CategoryAutre,
}

func (c Category) String() string { return string(c) }

func (c Category) IsValid() bool {
	for _, known := range Categories {
		if c == known {
			return true
		}
	}
	return false
}
