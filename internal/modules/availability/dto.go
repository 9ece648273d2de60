package availability

import "time"

type CheckResponse struct {
	Available bool    `json:"available"`
	Reason    *string `json:"reason"`
}

type Slot struct {
	Start time.Time `json:"start"`
	End   time.Time `json:"end"`
}

type SlotsResponse struct {
	PlaceID int64  `json:"place_id"`
	Date    string `json:"date"`
	Slots   []Slot `json:"slots"`
}
