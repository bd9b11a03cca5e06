package request

// TierPriceRequest is one entry of an event's pricing table.
type TierPriceRequest struct {
	Price     *float64 `json:"price" validate:"required,min=0"`
	Available *bool    `json:"available"`
}

type LayoutRequest struct {
	Rows        int    `json:"rows" validate:"required,min=1,max=26"`
	Columns     int    `json:"columns" validate:"required,min=1,max=30"`
	DefaultTier string `json:"default_tier,omitempty"`
}

type CreateEventRequest struct {
	Name          string                      `json:"name" validate:"required,notblank,max=200"`
	Date          string                      `json:"date" validate:"required"`
	Location      string                      `json:"location" validate:"required,notblank,max=200"`
	Description   string                      `json:"description" validate:"max=5000"`
	TotalSeats    *int                        `json:"total_seats,omitempty" validate:"omitempty,min=1,max=780"`
	Pricing       map[string]TierPriceRequest `json:"pricing" validate:"omitempty,dive,keys,oneof=gold silver platinum,endkeys"`
	SeatingLayout *LayoutRequest              `json:"seating_layout,omitempty"`
}

// UpdateEventRequest is a partial update. A nil field is left untouched; a
// non-nil pricing or seating_layout counts as touching it.
type UpdateEventRequest struct {
	Name          *string                     `json:"name,omitempty" validate:"omitempty,notblank,max=200"`
	Date          *string                     `json:"date,omitempty" validate:"omitempty,notblank"`
	Location      *string                     `json:"location,omitempty" validate:"omitempty,notblank,max=200"`
	Description   *string                     `json:"description,omitempty" validate:"omitempty,max=5000"`
	TotalSeats    *int                        `json:"total_seats,omitempty" validate:"omitempty,min=1,max=780"`
	Pricing       map[string]TierPriceRequest `json:"pricing,omitempty" validate:"omitempty,dive,keys,oneof=gold silver platinum,endkeys"`
	SeatingLayout *LayoutRequest              `json:"seating_layout,omitempty"`
}

// TouchesInventory reports whether the patch would alter pricing or seating.
func (r *UpdateEventRequest) TouchesInventory() bool {
	return r.Pricing != nil || r.SeatingLayout != nil || r.TotalSeats != nil
}

type AssignTierRequest struct {
	Tier string `json:"tier" validate:"required"`
}

type BulkAssignTierRequest struct {
	Tier string `json:"tier" validate:"required"`
}
