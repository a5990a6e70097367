// Package lifecycle holds the booking workflow: the fixed set of stages a
// booking moves through and the table of admin actions that advance it.
// The stage column on the booking row is the authoritative state; the
// timeline records one entry per applied action and is never rewritten.
package lifecycle

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/herland/laundry-backend/internal/models"
)

// Stages of a booking, in workflow order. Done is terminal.
const (
	StageReceived    = "received"
	StagePayment     = "payment"
	StagePreparation = "preparation"
	StageShipping    = "shipping"
	StageFinal       = "final"
	StageDone        = "done"
)

// Action labels shown on the admin dashboard buttons
const (
	ActionAccept     = "Accept Booking"
	ActionEdit       = "Edit Booking"
	ActionCancel     = "Cancel Booking"
	ActionConfirmPay = "Confirm Payment"
	ActionFlagPay    = "Flag Payment"
	ActionStart      = "Start Laundry"
	ActionMarkReady  = "Mark Ready for Pickup"
	ActionDispatch   = "Dispatch Booking"
	ActionComplete   = "Complete Booking"
)

var (
	// ErrUnknownAction is returned for action labels not in the table
	ErrUnknownAction = errors.New("unknown action")

	// ErrIllegalTransition is returned when the action is not available
	// from the booking's current stage
	ErrIllegalTransition = errors.New("action not allowed from current stage")

	// ErrPaymentNotConfirmable is returned when Confirm Payment is blocked
	// by a missing GCash reference number
	ErrPaymentNotConfirmable = errors.New("payment cannot be confirmed without a reference number")
)

// Effect is the result of applying an action: the status text appended to
// the timeline and the stage the booking moves to.
type Effect struct {
	Status    string
	NextStage string
}

var actionEffects = map[string]Effect{
	ActionAccept:     {Status: "Booking Accepted", NextStage: StagePayment},
	ActionEdit:       {Status: "Booking Edited", NextStage: StagePayment},
	ActionCancel:     {Status: "Booking Cancelled", NextStage: StageDone},
	ActionConfirmPay: {Status: "Payment Confirmed", NextStage: StagePreparation},
	ActionFlagPay:    {Status: "Payment Flagged", NextStage: StageDone},
	ActionStart:      {Status: "In Progress", NextStage: StageShipping},
	ActionMarkReady:  {Status: "Ready for Pick-up", NextStage: StageFinal},
	ActionDispatch:   {Status: "Out for Delivery", NextStage: StageFinal},
	ActionComplete:   {Status: "Booking Completed", NextStage: StageDone},
}

var stageActions = map[string][]string{
	StageReceived:    {ActionAccept, ActionEdit, ActionCancel},
	StagePayment:     {ActionConfirmPay, ActionFlagPay},
	StagePreparation: {ActionStart},
	StageShipping:    {}, // resolved per collection option, see shippingActions
	StageFinal:       {ActionComplete},
	StageDone:        {},
}

var shippingActions = map[string]string{
	models.CollectionDropOffPickUpLater: ActionMarkReady,
	models.CollectionDropOffDelivered:   ActionDispatch,
	models.CollectionPickedUpDelivered:  ActionDispatch,
}

// ValidStage reports whether the given string names a known stage
func ValidStage(stage string) bool {
	_, ok := stageActions[stage]
	return ok
}

// IsTerminal reports whether the stage has no outgoing actions
func IsTerminal(stage string) bool {
	return stage == StageDone
}

// EffectOf returns the effect of an action label
func EffectOf(action string) (Effect, bool) {
	effect, ok := actionEffects[action]
	return effect, ok
}

// ActionsFor returns the actions available from a stage, resolving the
// shipping stage by the booking's collection option.
func ActionsFor(stage, collectionOption string) []string {
	if stage == StageShipping {
		if action, ok := shippingActions[collectionOption]; ok {
			return []string{action}
		}
		return nil
	}
	actions, ok := stageActions[stage]
	if !ok {
		return nil
	}
	out := make([]string, len(actions))
	copy(out, actions)
	return out
}

// ActionByStatus resolves the legacy status/nextStage pair the old web
// client sends into the action label it corresponds to.
func ActionByStatus(status, nextStage string) (string, bool) {
	for action, effect := range actionEffects {
		if effect.Status == status && effect.NextStage == nextStage {
			return action, true
		}
	}
	return "", false
}

// HasReferenceNumber reports whether a payment reference is present and not
// the "-" placeholder the booking form seeds.
func HasReferenceNumber(reference string) bool {
	trimmed := strings.TrimSpace(reference)
	return trimmed != "" && trimmed != "-"
}

// CanConfirmPayment reports whether the payment on a booking may be
// confirmed. Non-GCash methods need no reference; GCash needs a real one.
func CanConfirmPayment(payment models.JSONMap) bool {
	method := payment.GetString("method")
	if method == "" {
		method = "GCash"
	}
	if strings.ToLower(method) != "gcash" {
		return true
	}
	return HasReferenceNumber(payment.GetString("referenceNumber"))
}

// Apply advances a booking by one action. It validates the action against
// the booking's current stage and collection option, appends exactly one
// timeline entry, overwrites the stage, and for the two payment actions
// also updates the payment details status.
func Apply(booking *models.Booking, action string, now time.Time) error {
	effect, ok := actionEffects[action]
	if !ok {
		return fmt.Errorf("%w: %q", ErrUnknownAction, action)
	}

	legal := false
	for _, available := range ActionsFor(booking.Stage, booking.CollectionOption) {
		if available == action {
			legal = true
			break
		}
	}
	if !legal {
		return fmt.Errorf("%w: %q from stage %q", ErrIllegalTransition, action, booking.Stage)
	}

	if action == ActionConfirmPay && !CanConfirmPayment(booking.PaymentDetails) {
		return ErrPaymentNotConfirmable
	}

	booking.Timeline = append(booking.Timeline, models.TimelineEntry{
		Status:    effect.Status,
		Timestamp: now,
	})
	booking.Stage = effect.NextStage

	switch action {
	case ActionConfirmPay, ActionFlagPay:
		if booking.PaymentDetails == nil {
			booking.PaymentDetails = models.JSONMap{}
		}
		booking.PaymentDetails["status"] = effect.Status
	}

	return nil
}

// PaymentLocked reports whether the amount to pay may no longer be edited.
// The lock engages once the payment status text contains "payment confirmed".
func PaymentLocked(payment models.JSONMap) bool {
	status := payment.GetString("status")
	return strings.Contains(strings.ToLower(status), "payment confirmed")
}
