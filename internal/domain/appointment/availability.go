package appointment

type AvailabilityInput struct {
	ProfessionalID uint
	ServiceID      *uint
	Date           string // YYYY-MM-DD
}

type TimeSlot struct {
	Start string `json:"start"`
	End   string `json:"end"`
}
