package domain

import (
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Errors for the Order aggregate
var (
	ErrOrderAlreadyConfirmed = errors.New("order already confirmed")
	ErrEmptyOrderID          = errors.New("order id must not be empty")
)

// Platform represents the sales channel an order came from.
// Known platforms carry dedicated weights; anything else is accepted
// and treated as a generic low-weight channel.
type Platform string

const (
	PlatformTikTok  Platform = "tiktok"
	PlatformShopee  Platform = "shopee"
	PlatformWebsite Platform = "website"
)

// Weight returns the platform importance used by the priority score
func (p Platform) Weight() float64 {
	switch p {
	case PlatformTikTok:
		return 3
	case PlatformWebsite:
		return 2
	case PlatformShopee:
		return 1
	default:
		return 1
	}
}

// Status represents order confirmation status
type Status string

const (
	StatusPending   Status = "pending"
	StatusConfirmed Status = "confirmed"
)

// IsValid checks if the status is a known value
func (s Status) IsValid() bool {
	switch s {
	case StatusPending, StatusConfirmed:
		return true
	default:
		return false
	}
}

// SLALevel classifies how close an order is to its confirm deadline
type SLALevel string

const (
	SLALevelSafe    SLALevel = "safe"
	SLALevelWarning SLALevel = "warning"
	SLALevelExpired SLALevel = "expired"
	SLALevelUnknown SLALevel = "unknown"
)

// Urgency is the coarse alerting tier derived from the SLA level
type Urgency string

const (
	UrgencyLow      Urgency = "low"
	UrgencyMedium   Urgency = "medium"
	UrgencyCritical Urgency = "critical"
	UrgencyUnknown  Urgency = "unknown"
)

// SLAStatus pairs the deadline classification with its alerting tier
type SLAStatus struct {
	Level   SLALevel `bson:"level" json:"level"`
	Urgency Urgency  `bson:"urgency" json:"urgency"`
}

// Order is the central entity of the SLA engine. SLA, TimeRemainingHours
// and Priority are derived fields; they are only ever written together
// through ApplyDerivedState so they cannot drift apart.
type Order struct {
	ID               primitive.ObjectID `bson:"_id,omitempty" json:"-"`
	OrderID          string             `bson:"orderId" json:"orderId"`
	CustomerName     string             `bson:"customerName" json:"customerName"`
	Platform         Platform           `bson:"platform" json:"platform"`
	OrderValue       float64            `bson:"orderValue" json:"orderValue"`
	OrderTime        time.Time          `bson:"orderTime" json:"orderTime"`
	SuggestedCarrier string             `bson:"suggestedCarrier" json:"suggestedCarrier"`

	// Derived fields. TimeRemainingHours is +Inf when no policy entry
	// exists for the (platform, carrier) pair.
	SLA                SLAStatus `bson:"slaStatus" json:"slaStatus"`
	TimeRemainingHours float64   `bson:"timeRemainingHours" json:"-"`
	Priority           float64   `bson:"priority" json:"priority"`

	Status      Status     `bson:"status" json:"status"`
	ConfirmedAt *time.Time `bson:"confirmedAt,omitempty" json:"confirmedAt,omitempty"`

	// NeedsCleaning marks orders whose raw record required field repair
	// during normalization (substituted timestamp, generated id, ...).
	NeedsCleaning bool `bson:"needsCleaning" json:"needsCleaning"`

	BatchID   string    `bson:"batchId" json:"batchId"`
	CreatedAt time.Time `bson:"createdAt" json:"createdAt"`
	UpdatedAt time.Time `bson:"updatedAt" json:"updatedAt"`
}

// DerivedState is the atomic unit of per-order recomputation: the three
// derived fields are always produced and applied together.
type DerivedState struct {
	SLA                SLAStatus
	TimeRemainingHours float64
	Priority           float64
}

// ApplyDerivedState replaces all derived fields in one assignment
func (o *Order) ApplyDerivedState(state DerivedState, now time.Time) {
	o.SLA = state.SLA
	o.TimeRemainingHours = state.TimeRemainingHours
	o.Priority = state.Priority
	o.UpdatedAt = now.UTC()
}

// Confirm marks the order as confirmed. Confirming an already
// confirmed order is a no-op.
func (o *Order) Confirm(at time.Time) error {
	if o.Status == StatusConfirmed {
		return ErrOrderAlreadyConfirmed
	}

	ts := at.UTC()
	o.Status = StatusConfirmed
	o.ConfirmedAt = &ts
	o.UpdatedAt = ts

	return nil
}

// Clone returns a copy of the order. Refresh passes operate on clones so
// that concurrent readers only ever observe fully derived records.
func (o *Order) Clone() *Order {
	clone := *o
	if o.ConfirmedAt != nil {
		ts := *o.ConfirmedAt
		clone.ConfirmedAt = &ts
	}
	return &clone
}
