package block

import "parkshare/internal/domain"

type CreateBlockRequest struct {
	PlaceID          int64  `json:"place_id" binding:"required"`
	StartDatetime    string `json:"start_datetime" binding:"required"`
	EndDatetime      string `json:"end_datetime" binding:"required"`
	BlockType        string `json:"block_type"`
	Reason           string `json:"reason"`
	IsRecurring      bool   `json:"is_recurring"`
	RecurringPattern string `json:"recurring_pattern"`
	RecurringEndDate string `json:"recurring_end_date"`
}

type UpdateBlockRequest struct {
	StartDatetime *string `json:"start_datetime"`
	EndDatetime   *string `json:"end_datetime"`
	Reason        *string `json:"reason"`
}

// MergeOutcome describes what CreateBlock did besides returning a
// block: nothing (standalone insert), swallowing the request into an
// existing containing block, or merging overlapping blocks into one.
type MergeOutcome struct {
	Merged     bool    `json:"merged"`
	Contained  bool    `json:"contained,omitempty"`
	DeletedIDs []int64 `json:"deleted_block_ids,omitempty"`
	Message    string  `json:"message"`
}

type BlockResponse struct {
	Block *domain.BlockedPeriod `json:"block"`
	MergeOutcome
}
