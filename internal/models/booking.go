package models

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Collection options determine how laundry reaches the shop and the customer.
const (
	CollectionDropOffPickUpLater = "dropOffPickUpLater"
	CollectionDropOffDelivered   = "dropOffDelivered"
	CollectionPickedUpDelivered  = "pickedUpDelivered"
)

// JSONMap is a free-form jsonb column. Unknown keys survive read-modify-write
// cycles, which the payment details merge relies on.
type JSONMap map[string]interface{}

// Value implements driver.Valuer
func (m JSONMap) Value() (driver.Value, error) {
	if m == nil {
		return nil, nil
	}
	return json.Marshal(m)
}

// Scan implements sql.Scanner
func (m *JSONMap) Scan(value interface{}) error {
	if value == nil {
		*m = nil
		return nil
	}
	b, ok := value.([]byte)
	if !ok {
		return fmt.Errorf("unsupported type %T for JSONMap", value)
	}
	return json.Unmarshal(b, m)
}

// GetString returns the named key as a string, or "" when absent or not a string
func (m JSONMap) GetString(key string) string {
	if m == nil {
		return ""
	}
	if s, ok := m[key].(string); ok {
		return s
	}
	return ""
}

// TimelineEntry is one status change on a booking
type TimelineEntry struct {
	Status    string    `json:"status"`
	Timestamp time.Time `json:"timestamp"`
}

// Timeline is the append-only jsonb array of status changes attached to a booking
type Timeline []TimelineEntry

// Value implements driver.Valuer
func (t Timeline) Value() (driver.Value, error) {
	if t == nil {
		return json.Marshal(Timeline{})
	}
	return json.Marshal(t)
}

// Scan implements sql.Scanner
func (t *Timeline) Scan(value interface{}) error {
	if value == nil {
		*t = nil
		return nil
	}
	b, ok := value.([]byte)
	if !ok {
		return fmt.Errorf("unsupported type %T for Timeline", value)
	}
	return json.Unmarshal(b, t)
}

// CurrentStatus returns the status of the last timeline entry. The stage
// column is authoritative for workflow decisions; the timeline is history.
func (t Timeline) CurrentStatus() string {
	if len(t) == 0 {
		return "Booking Received"
	}
	return t[len(t)-1].Status
}

// Booking represents a laundry booking row
type Booking struct {
	ID                int64     `json:"dbId" db:"id"`
	UserID            uuid.UUID `json:"userId" db:"user_id"`
	ReferenceNumber   string    `json:"referenceNumber" db:"reference_number"`
	ServiceType       string    `json:"serviceType" db:"service_type"`
	Status            string    `json:"status" db:"status"`
	Stage             string    `json:"stage" db:"stage"`
	CollectionOption  string    `json:"collectionOption" db:"collection_option"`
	Timeline          Timeline  `json:"timeline" db:"timeline"`
	ServiceDetails    JSONMap   `json:"serviceDetails" db:"service_details"`
	CollectionDetails JSONMap   `json:"collectionDetails" db:"collection_details"`
	PaymentDetails    JSONMap   `json:"paymentDetails" db:"payment_details"`
	Notes             string    `json:"notes" db:"notes"`
	Schedule          NullTime  `json:"schedule,omitempty" db:"schedule"`
	CreatedAt         time.Time `json:"createdAt" db:"created_at"`
}

// BookingView is the normalized shape the dashboards consume: the booking
// reference doubles as the display id and the row id travels as dbId.
type BookingView struct {
	ID                string   `json:"id"`
	DBID              int64    `json:"dbId"`
	UserID            string   `json:"userId"`
	CustomerName      string   `json:"customerName"`
	Date              string   `json:"date"`
	CollectionOption  string   `json:"collectionOption"`
	Stage             string   `json:"stage"`
	Timeline          Timeline `json:"timeline"`
	ServiceDetails    JSONMap  `json:"serviceDetails"`
	CollectionDetails JSONMap  `json:"collectionDetails"`
	PaymentDetails    JSONMap  `json:"paymentDetails"`
	Status            string   `json:"status"`
	Notes             string   `json:"notes"`
}

// View converts a booking row into the normalized dashboard shape
func (b *Booking) View() BookingView {
	id := b.ReferenceNumber
	if id == "" {
		id = fmt.Sprintf("%d", b.ID)
	}

	customerName := b.ServiceType
	if customerName == "" {
		customerName = "Laundry Service"
	}

	collectionOption := b.CollectionOption
	if collectionOption == "" {
		collectionOption = CollectionDropOffPickUpLater
	}

	stage := b.Stage
	if stage == "" {
		stage = "received"
	}

	timeline := b.Timeline
	if len(timeline) == 0 {
		timeline = Timeline{{Status: "Booking Received", Timestamp: b.CreatedAt}}
	}

	status := b.Status
	if status == "" {
		status = "pending"
	}

	return BookingView{
		ID:                id,
		DBID:              b.ID,
		UserID:            b.UserID.String(),
		CustomerName:      customerName,
		Date:              b.CreatedAt.Format("Jan 2, 2006"),
		CollectionOption:  collectionOption,
		Stage:             stage,
		Timeline:          timeline,
		ServiceDetails:    b.ServiceDetails,
		CollectionDetails: b.CollectionDetails,
		PaymentDetails:    b.PaymentDetails,
		Status:            status,
		Notes:             b.Notes,
	}
}

// CreateBookingRequest is the customer booking submission payload
type CreateBookingRequest struct {
	ReferenceNumber   string  `json:"reference_number" binding:"required"`
	CollectionOption  string  `json:"collection_option"`
	ServiceDetails    JSONMap `json:"service_details"`
	CollectionDetails JSONMap `json:"collection_details"`
	PaymentDetails    JSONMap `json:"payment_details"`
	Notes             string  `json:"notes"`
}

// ServiceTypeSummary builds the human-readable service_type string from the
// selected services, falling back to a generic label.
func (r *CreateBookingRequest) ServiceTypeSummary() string {
	if r.ServiceDetails == nil {
		return "Laundry Service"
	}
	raw, ok := r.ServiceDetails["selectedServices"].([]interface{})
	if !ok || len(raw) == 0 {
		return "Laundry Service"
	}
	summary := ""
	for _, v := range raw {
		name, ok := v.(string)
		if !ok || name == "" {
			continue
		}
		if summary != "" {
			summary += ", "
		}
		summary += name
	}
	if summary == "" {
		return "Laundry Service"
	}
	return summary
}

// UpdateStatusRequest advances a booking through the lifecycle. Either the
// action label is supplied, or the legacy status/nextStage pair the old web
// client sends; both are validated against the transition table.
type UpdateStatusRequest struct {
	Action    string `json:"action"`
	Status    string `json:"status"`
	NextStage string `json:"nextStage"`
}

// UpdateAmountRequest sets the amount to pay on a booking's payment details
type UpdateAmountRequest struct {
	AmountToPay float64 `json:"amountToPay" binding:"required,gt=0"`
}

// PaymentReferenceRequest submits a customer's payment reference number
type PaymentReferenceRequest struct {
	ReferenceNumber string `json:"referenceNumber" binding:"required"`
}
