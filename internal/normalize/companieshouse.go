package normalize

import (
	"encoding/json"
	"strings"

	id "masterfile/pkg/domain"
	dErrors "masterfile/pkg/domain-errors"
	platformstrings "masterfile/pkg/platform/strings"
)

// chConfidence is lower than the primary registry: national registries lag
// behind filings and carry self-reported data.
var chConfidence = id.MustConfidence(0.85)

// chPayload follows the Companies House company profile resource.
type chPayload struct {
	CompanyName    string   `json:"company_name"`
	CompanyNumber  string   `json:"company_number"`
	CompanyStatus  string   `json:"company_status"`
	Type           string   `json:"type"`
	Jurisdiction   string   `json:"jurisdiction"`
	DateOfCreation string   `json:"date_of_creation"`
	SICCodes       []string `json:"sic_codes"`

	RegisteredOfficeAddress struct {
		AddressLine1 string `json:"address_line_1"`
		AddressLine2 string `json:"address_line_2"`
		Locality     string `json:"locality"`
		Region       string `json:"region"`
		PostalCode   string `json:"postal_code"`
		Country      string `json:"country"`
	} `json:"registered_office_address"`
}

// NormalizeCompaniesHouse derives candidates from a secondary-registry
// company profile.
func NormalizeCompaniesHouse(payload json.RawMessage, evidenceID id.EvidenceID) ([]Candidate, error) {
	var p chPayload
	if err := json.Unmarshal(payload, &p); err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeValidation, "malformed Companies House payload")
	}
	if p.CompanyNumber == "" && p.CompanyName == "" {
		return nil, dErrors.New(dErrors.CodeValidation, "Companies House payload carries no company profile")
	}

	b := newBuilder(id.SourceSecondaryRegistry, evidenceID, chConfidence)

	b.addString(1, p.CompanyName)
	b.addEnum(3, p.Type)
	b.addEnum(5, p.Jurisdiction)
	b.addString(7, p.CompanyNumber)
	b.addDate(9, p.DateOfCreation)
	b.addEnum(10, p.CompanyStatus)

	addr := p.RegisteredOfficeAddress
	b.addString(14, addr.AddressLine1)
	b.addString(15, addr.AddressLine2)
	b.addString(16, addr.Locality)
	b.addString(17, addr.Region)
	b.addString(18, addr.PostalCode)
	b.addEnum(19, addr.Country)

	// Registries repeat SIC codes across filings; store one clean list.
	if codes := platformstrings.DedupeAndTrim(p.SICCodes); len(codes) > 0 {
		b.addString(35, strings.Join(codes, ", "))
	}

	return b.build()
}
