package orders

import (
	"time"
)

type Status string

const (
	StatusPending    Status = "PENDING"
	StatusProcessing Status = "PROCESSING"
	StatusShipped    Status = "SHIPPED"
	StatusDelivered  Status = "DELIVERED"
	StatusCancelled  Status = "CANCELLED"
	StatusRefunded   Status = "REFUNDED"
)

var Statuses = []Status{StatusPending, StatusProcessing, StatusShipped, StatusDelivered, StatusCancelled, StatusRefunded}

type Order struct {
	ID             string    `json:"id"`
	CompanyID      string    `json:"companyId"`
	PatientID      string    `json:"patientId,omitempty"`
	PatientName    string    `json:"patientName,omitempty"`
	MedicationID   string    `json:"medicationId,omitempty"`
	MedicationName string    `json:"medicationName,omitempty"`
	DosageID       string    `json:"dosageId,omitempty"`
	Status         Status    `json:"status"`
	Amount         float64   `json:"amount"`
	RefundedAmount float64   `json:"refundedAmount,omitempty"`
	CreatedAt      time.Time `json:"createdAt,omitempty"`
	UpdatedAt      time.Time `json:"updatedAt,omitempty"`
}

// Cancellable reports whether the order can still be stopped before it ships.
func (o *Order) Cancellable() bool {
	return o.Status == StatusPending || o.Status == StatusProcessing
}

// Refundable reports whether money can still go back to the patient.
func (o *Order) Refundable() bool {
	switch o.Status {
	case StatusCancelled, StatusRefunded:
		return false
	}
	return o.RefundedAmount < o.Amount
}

type RefundRequest struct {
	Amount *float64 `json:"amount,omitempty"`
	Reason string   `json:"reason,omitempty"`
}

type CancelRequest struct {
	Reason string `json:"reason,omitempty"`
}
