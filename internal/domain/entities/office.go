package entities

import "arrangement/internal/domain/validation"

type Office string

const (
	OfficeOslo      Office = "Oslo"
	OfficeTrondheim Office = "Trondheim"
)

var AllOffices = []Office{OfficeOslo, OfficeTrondheim}

// PickedOffices is the per-office selection of an event.
type PickedOffices struct {
	Oslo      bool `json:"Oslo"`
	Trondheim bool `json:"Trondheim"`
}

func (p PickedOffices) Has(o Office) bool {
	switch o {
	case OfficeOslo:
		return p.Oslo
	case OfficeTrondheim:
		return p.Trondheim
	}
	return false
}

func (p PickedOffices) List() []Office {
	out := make([]Office, 0, len(AllOffices))
	for _, o := range AllOffices {
		if p.Has(o) {
			out = append(out, o)
		}
	}
	return out
}

func ParsePickedOffices(p PickedOffices) validation.Result[PickedOffices] {
	return validation.Validate(p,
		validation.Check("Minst ett kontor må velges", !p.Oslo && !p.Trondheim),
	)
}

// ParseOffices reads the wire list. A missing list means offices do not apply.
func ParseOffices(list []Office) *PickedOffices {
	if list == nil {
		return nil
	}
	p := PickedOffices{}
	for _, o := range list {
		switch o {
		case OfficeOslo:
			p.Oslo = true
		case OfficeTrondheim:
			p.Trondheim = true
		}
	}
	return &p
}

func pickedOfficesToList(p *PickedOffices) []Office {
	if p == nil {
		return nil
	}
	return p.List()
}
