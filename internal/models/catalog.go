package models

// Service item types
const (
	ItemTypeService = "service"
	ItemTypeAddon   = "addon"
)

// ServiceItem is a priced laundry service or add-on. PreviousPrice holds a
// single level of undo: every edit overwrites it with the price being
// replaced, so reverting twice swaps the two prices back and forth.
type ServiceItem struct {
	ID            string      `json:"id" db:"id"`
	Type          string      `json:"-" db:"item_type"`
	Name          string      `json:"name" db:"name"`
	CurrentPrice  float64     `json:"currentPrice" db:"current_price"`
	PreviousPrice NullFloat64 `json:"previousPrice" db:"previous_price"`
}

// ShopSchedule is the single-row shop opening hours with one level of
// previous-value memory, mirroring the service item revert pattern.
type ShopSchedule struct {
	Opens          string     `json:"opens" db:"opens"`
	Closes         string     `json:"closes" db:"closes"`
	PreviousOpens  NullString `json:"previousOpens" db:"previous_opens"`
	PreviousCloses NullString `json:"previousCloses" db:"previous_closes"`
}

// FAQ is a question/answer pair ordered by sort_order
type FAQ struct {
	ID        string `json:"id" db:"id"`
	Question  string `json:"question" db:"question"`
	Answer    string `json:"answer" db:"answer"`
	SortOrder int    `json:"-" db:"sort_order"`
}

// CreateItemRequest adds a new service or add-on
type CreateItemRequest struct {
	Type         string  `json:"type" binding:"required,oneof=service addon"`
	Name         string  `json:"name" binding:"required"`
	CurrentPrice float64 `json:"currentPrice" binding:"required,gt=0"`
}

// UpdateItemRequest edits or reverts an item's price. The client sends the
// full pair so an edit and a revert are the same operation server-side.
type UpdateItemRequest struct {
	CurrentPrice  float64  `json:"currentPrice" binding:"required,gt=0"`
	PreviousPrice *float64 `json:"previousPrice"`
}

// UpdateScheduleRequest replaces the shop schedule, carrying the previous
// values for the single-step revert.
type UpdateScheduleRequest struct {
	Opens          string `json:"opens" binding:"required"`
	Closes         string `json:"closes" binding:"required"`
	PreviousOpens  string `json:"previousOpens"`
	PreviousCloses string `json:"previousCloses"`
}

// SaveFAQRequest inserts a new FAQ or updates an existing one by id
type SaveFAQRequest struct {
	ID       string `json:"id"`
	Question string `json:"question" binding:"required"`
	Answer   string `json:"answer" binding:"required"`
}

// ReorderFAQsRequest rewrites the sort order to match the given id sequence
type ReorderFAQsRequest struct {
	OrderedIDs []string `json:"orderedIds" binding:"required,min=1"`
}
