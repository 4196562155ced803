// Package review holds one engineering review session: the extracted
// datasheet record, the user's overrides and the baseline resolved from
// both.
package review

import (
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"

	"Plant3D/internal/calc/geometry"
	"Plant3D/internal/equipment"
)

// ErrNotFound is returned by stores for unknown review ids.
var ErrNotFound = errors.New("review not found")

type Review struct {
	ID        uuid.UUID            `json:"id"`
	OwnerID   int                  `json:"owner_id"`
	Source    string               `json:"source"`
	Params    equipment.Parameters `json:"params"`
	Overrides equipment.Parameters `json:"overrides"`
	Baseline  equipment.Baseline   `json:"baseline"`
	Warnings  []equipment.Warning  `json:"warnings"`
	CreatedAt time.Time            `json:"created_at"`
	UpdatedAt time.Time            `json:"updated_at"`
}

// New starts a review from freshly extracted parameters.
func New(ownerID int, source string, params equipment.Parameters, d equipment.Defaults, clock clockwork.Clock) Review {
	now := clock.Now().UTC()
	r := Review{
		ID:        uuid.New(),
		OwnerID:   ownerID,
		Source:    source,
		Params:    params,
		CreatedAt: now,
		UpdatedAt: now,
	}
	r.Baseline, r.Warnings = Resolve(r.Effective(), d)
	return r
}

// Effective is the datasheet record with the overrides applied.
func (r Review) Effective() equipment.Parameters {
	return r.Params.Merge(r.Overrides)
}

// Override returns a copy of r with o merged into the existing overrides
// and the baseline rebuilt.
func (r Review) Override(o equipment.Parameters, d equipment.Defaults, clock clockwork.Clock) Review {
	next := r
	next.Overrides = r.Overrides.Merge(o)
	next.Baseline, next.Warnings = Resolve(next.Effective(), d)
	next.UpdatedAt = clock.Now().UTC()
	return next
}

// Resolve validates p and builds its baseline. A model size such as
// "Size 11" stands in for a missing cylinder diameter.
func Resolve(p equipment.Parameters, d equipment.Defaults) (equipment.Baseline, []equipment.Warning) {
	warns := equipment.Validate(p)
	if p.Dimensions.CylinderDiameterMM == nil && p.Model != "" {
		if mm, err := geometry.DiameterFromModelSize(p.Model); err == nil {
			p.Dimensions.CylinderDiameterMM = equipment.Float(mm)
		}
	}
	b, missing := equipment.Resolve(p, d)
	return b, append(warns, missing...)
}
