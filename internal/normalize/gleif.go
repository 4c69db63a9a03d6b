package normalize

import (
	"encoding/json"

	id "masterfile/pkg/domain"
	dErrors "masterfile/pkg/domain-errors"
)

// gleifConfidence applies to every field derived from the LEI registry; it is
// the authoritative automated source.
var gleifConfidence = id.MustConfidence(0.95)

// gleifPayload follows the LEI records shape. Older ingests stored the
// attributes object directly; newer ones wrap it under data, so both shapes
// decode.
type gleifPayload struct {
	Data *struct {
		Attributes gleifAttributes `json:"attributes"`
	} `json:"data"`
	gleifAttributes
}

type gleifAttributes struct {
	LEI    string `json:"lei"`
	Entity struct {
		LegalName struct {
			Name string `json:"name"`
		} `json:"legalName"`
		LegalForm struct {
			ID string `json:"id"`
		} `json:"legalForm"`
		Status       string `json:"status"`
		Jurisdiction string `json:"jurisdiction"`
		CreationDate string `json:"creationDate"`
		RegisteredAs string `json:"registeredAs"`
		LegalAddress gleifAddress `json:"legalAddress"`
	} `json:"entity"`
	Registration struct {
		Status          string `json:"status"`
		NextRenewalDate string `json:"nextRenewalDate"`
		ManagingLou     string `json:"managingLou"`
	} `json:"registration"`
	Relationships struct {
		DirectParentLEI   string `json:"directParentLei"`
		UltimateParentLEI string `json:"ultimateParentLei"`
	} `json:"relationships"`
}

type gleifAddress struct {
	AddressLines []string `json:"addressLines"`
	City         string   `json:"city"`
	Region       string   `json:"region"`
	Country      string   `json:"country"`
	PostalCode   string   `json:"postalCode"`
}

// NormalizeGLEIF derives candidates from a primary-registry LEI record.
func NormalizeGLEIF(payload json.RawMessage, evidenceID id.EvidenceID) ([]Candidate, error) {
	var p gleifPayload
	if err := json.Unmarshal(payload, &p); err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeValidation, "malformed GLEIF payload")
	}
	attrs := p.gleifAttributes
	if p.Data != nil {
		attrs = p.Data.Attributes
	}
	if attrs.LEI == "" && attrs.Entity.LegalName.Name == "" {
		return nil, dErrors.New(dErrors.CodeValidation, "GLEIF payload carries no LEI record")
	}

	b := newBuilder(id.SourcePrimaryRegistry, evidenceID, gleifConfidence)

	b.addString(1, attrs.Entity.LegalName.Name)
	b.addString(4, attrs.Entity.LegalForm.ID)
	b.addEnum(5, attrs.Entity.Jurisdiction)
	b.addString(7, attrs.Entity.RegisteredAs)
	b.addString(8, attrs.LEI)
	b.addDate(9, attrs.Entity.CreationDate)
	b.addEnum(10, attrs.Entity.Status)

	addr := attrs.Entity.LegalAddress
	if len(addr.AddressLines) > 0 {
		b.addString(14, addr.AddressLines[0])
	}
	if len(addr.AddressLines) > 1 {
		b.addString(15, addr.AddressLines[1])
	}
	b.addString(16, addr.City)
	b.addString(17, addr.Region)
	b.addString(18, addr.PostalCode)
	b.addEnum(19, addr.Country)

	b.addEnum(65, attrs.Registration.Status)
	b.addDate(66, attrs.Registration.NextRenewalDate)
	b.addString(67, attrs.Registration.ManagingLou)
	b.addString(68, attrs.Relationships.DirectParentLEI)
	b.addString(69, attrs.Relationships.UltimateParentLEI)

	return b.build()
}
