// Package demo holds the prior-authorization sample dataset behind the canned queries.
package demo

// Payor is an insurance company.
type Payor struct {
	Name     string `neo:"pk,property:name"`
	FullName string `neo:"property:fullName"`
}

// Plan is a health plan offered by a payor.
type Plan struct {
	PlanID string `neo:"pk,property:planId"`
	Name   string `neo:"property:name"`
	State  string `neo:"property:state"`
}

// Document is a policy document published for a plan.
type Document struct {
	FileName string `neo:"pk,property:fileName"`
	Title    string `neo:"property:title"`
	Kind     string `neo:"property:kind"`
}

// Offer links a payor to one of its plans.
type Offer struct {
	Payor  string
	PlanID string
}

// Publication links a plan to one of its documents.
type Publication struct {
	PlanID   string
	FileName string
}

// Dataset is a self-contained set of entities and the relationships between them.
type Dataset struct {
	Payors       []Payor
	Plans        []Plan
	Documents    []Document
	Offers       []Offer
	Publications []Publication
}

// Sample returns the dataset used by the demo queries.
func Sample() Dataset {
	return Dataset{
		Payors: []Payor{
			{Name: "uhc", FullName: "UnitedHealthcare"},
			{Name: "aetna", FullName: "Aetna"},
		},
		Plans: []Plan{
			{PlanID: "uhc-choice-plus", Name: "Choice Plus", State: "TX"},
			{PlanID: "uhc-navigate", Name: "Navigate", State: "CA"},
			{PlanID: "aetna-open-access", Name: "Open Access", State: "NY"},
		},
		Documents: []Document{
			{FileName: "uhc-pa-requirements.pdf", Title: "Prior Authorization Requirements", Kind: "requirements"},
			{FileName: "uhc-coverage-rationale.pdf", Title: "Coverage Rationale", Kind: "policy"},
			{FileName: "aetna-clinical-policy.pdf", Title: "Clinical Policy Bulletin", Kind: "policy"},
		},
		Offers: []Offer{
			{Payor: "uhc", PlanID: "uhc-choice-plus"},
			{Payor: "uhc", PlanID: "uhc-navigate"},
			{Payor: "aetna", PlanID: "aetna-open-access"},
		},
		Publications: []Publication{
			{PlanID: "uhc-choice-plus", FileName: "uhc-pa-requirements.pdf"},
			{PlanID: "uhc-choice-plus", FileName: "uhc-coverage-rationale.pdf"},
			{PlanID: "uhc-navigate", FileName: "uhc-coverage-rationale.pdf"},
			{PlanID: "aetna-open-access", FileName: "aetna-clinical-policy.pdf"},
		},
	}
}
