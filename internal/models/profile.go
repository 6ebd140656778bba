package models

import "strings"

// Profile is the identity of the acting professional and their study.
type Profile struct {
	Name         string `json:"name"`
	StudyName    string `json:"studyName"`
	Matricule    string `json:"matricule"`
	RCCM         string `json:"rccm,omitempty"`
	BankAccount  string `json:"bankAccount,omitempty"`
	Jurisdiction string `json:"jurisdiction"`
	Address      string `json:"address"`
	City         string `json:"city"`
	Phone        string `json:"phone"`
	Email        string `json:"email"`
	Logo         string `json:"logo,omitempty"`
}

// Validate checks the fields required to print an act header.
func (p *Profile) Validate() error {
	if strings.TrimSpace(p.Name) == "" {
		return fieldError("profile.name", "required")
	}
	if strings.TrimSpace(p.StudyName) == "" {
		return fieldError("profile.studyName", "required")
	}
	return nil
}
