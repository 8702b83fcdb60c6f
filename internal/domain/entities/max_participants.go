package entities

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"

	"arrangement/internal/domain/validation"
)

// MaxParticipants is either unlimited or limited to a non-negative count.
type MaxParticipants struct {
	limited bool
	limit   int
}

func Unlimited() MaxParticipants { return MaxParticipants{} }

func Limited(n int) MaxParticipants { return MaxParticipants{limited: true, limit: n} }

// Limit returns the cap and whether there is one.
func (m MaxParticipants) Limit() (int, bool) { return m.limit, m.limited }

func (m MaxParticipants) IsLimited() bool { return m.limited }

func (m MaxParticipants) String() string {
	if !m.limited {
		return "unlimited"
	}
	return strconv.Itoa(m.limit)
}

// ToWriteModel returns nil for unlimited.
func (m MaxParticipants) ToWriteModel() *int {
	if !m.limited {
		return nil
	}
	n := m.limit
	return &n
}

// EditMaxParticipants is the form value. Value is the raw text of the
// limit and is ignored when Limited is false.
type EditMaxParticipants struct {
	Limited bool
	Value   string
}

// MarshalJSON keeps the ["unlimited"] / ["limited", "n"] encoding used by
// saved drafts.
func (e EditMaxParticipants) MarshalJSON() ([]byte, error) {
	if !e.Limited {
		return json.Marshal([]string{"unlimited"})
	}
	return json.Marshal([]string{"limited", e.Value})
}

func (e *EditMaxParticipants) UnmarshalJSON(b []byte) error {
	var raw []string
	if err := json.Unmarshal(b, &raw); err != nil {
		return err
	}
	switch {
	case len(raw) == 1 && raw[0] == "unlimited":
		*e = EditMaxParticipants{}
	case len(raw) == 2 && raw[0] == "limited":
		*e = EditMaxParticipants{Limited: true, Value: raw[1]}
	default:
		return fmt.Errorf("max participants: unexpected encoding %s", b)
	}
	return nil
}

func ToEditMaxParticipants(m MaxParticipants) EditMaxParticipants {
	if !m.limited {
		return EditMaxParticipants{}
	}
	return EditMaxParticipants{Limited: true, Value: strconv.Itoa(m.limit)}
}

// ParseMaxParticipants validates the form value. Unlimited is always valid.
func ParseMaxParticipants(e EditMaxParticipants) validation.Result[MaxParticipants] {
	if !e.Limited {
		return validation.Ok(Unlimited())
	}
	raw := strings.TrimSpace(e.Value)
	f, err := strconv.ParseFloat(raw, 64)
	if errors.Is(err, strconv.ErrRange) {
		// f is ±Inf or 0, which the range checks below handle.
		err = nil
	}
	notANumber := raw != "" && (err != nil || math.IsNaN(f))
	number := raw != "" && !notANumber
	res := validation.Validate(0,
		validation.Check("Verdien må være et tall", notANumber),
		validation.Check("Du kan kun invitere et helt antall mennesker😎", number && f != math.Trunc(f)),
		validation.Check("Antallet kan ikke være over 5000, sett 0 hvis uendelig er ønsket", number && f > MaxParticipantsCeiling),
		validation.Check("Verdien må være positiv", number && f < 0),
		validation.Check("Antall deltakere må settes", raw == ""),
	)
	if !res.IsValid() {
		return validation.Fail[MaxParticipants](res.Errors()...)
	}
	return validation.Ok(Limited(int(f)))
}
