package model

import "time"

type AccessType string

const (
	AccessTypeDownload AccessType = "download"
	AccessTypeAccess   AccessType = "access"
	AccessTypePreview  AccessType = "preview"
)

func ParseAccessType(s string) (AccessType, bool) {
	switch t := AccessType(s); t {
	case AccessTypeDownload, AccessTypeAccess, AccessTypePreview:
		return t, true
	}
	return "", false
}

// RefundStatus is the refund state mirrored on a ProductAccess.
// It never returns to RefundStatusNone once it has left it.
type RefundStatus string

const (
	RefundStatusNone      RefundStatus = "none"
	RefundStatusRequested RefundStatus = "requested"
	RefundStatusApproved  RefundStatus = "approved"
	RefundStatusDenied    RefundStatus = "denied"
	RefundStatusProcessed RefundStatus = "processed"
)

type RequestStatus string

const (
	RequestStatusPending   RequestStatus = "pending"
	RequestStatusApproved  RequestStatus = "approved"
	RequestStatusDenied    RequestStatus = "denied"
	RequestStatusProcessed RequestStatus = "processed"
)

var requestTransitions = map[RequestStatus][]RequestStatus{
	RequestStatusPending:  {RequestStatusApproved, RequestStatusDenied},
	RequestStatusApproved: {RequestStatusProcessed},
}

func (s RequestStatus) CanTransitionTo(next RequestStatus) bool {
	for _, allowed := range requestTransitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

func (s RequestStatus) Terminal() bool {
	return len(requestTransitions[s]) == 0
}

// RefundStatus is the ProductAccess status that mirrors a request status.
func (s RequestStatus) RefundStatus() RefundStatus {
	switch s {
	case RequestStatusPending:
		return RefundStatusRequested
	case RequestStatusApproved:
		return RefundStatusApproved
	case RequestStatusDenied:
		return RefundStatusDenied
	case RequestStatusProcessed:
		return RefundStatusProcessed
	}
	return RefundStatusNone
}

func ParseRequestStatus(s string) (RequestStatus, bool) {
	switch st := RequestStatus(s); st {
	case RequestStatusPending, RequestStatusApproved, RequestStatusDenied, RequestStatusProcessed:
		return st, true
	}
	return "", false
}

// ProductAccess tracks access and refund state for one purchased product.
type ProductAccess struct {
	OrderID        string       `gorm:"primaryKey;size:64;not null"`
	ProductID      string       `gorm:"primaryKey;size:64;not null"`
	CustomerEmail  string       `gorm:"size:256;index;not null"`
	AccessedAt     *time.Time   // first in-app access
	DownloadedAt   *time.Time   // first download
	RefundEligible bool         `gorm:"not null"` // stored copy, see service.EligibilityEvaluator
	RefundStatus   RefundStatus `gorm:"size:16;index;not null;default:none"`
	CreatedAt      time.Time    `gorm:"not null"` // purchase time
	UpdatedAt      time.Time
}

func (a *ProductAccess) Accessed() bool {
	return a.AccessedAt != nil || a.DownloadedAt != nil
}

type RefundRequest struct {
	ID                string        `gorm:"primaryKey;size:36;not null"`
	OrderID           string        `gorm:"size:64;index:idx_refund_order_product;not null"`
	ProductID         string        `gorm:"size:64;index:idx_refund_order_product;not null"`
	CustomerEmail     string        `gorm:"size:256;index;not null"`
	Reason            string        `gorm:"size:1024;not null"`
	Status            RequestStatus `gorm:"size:16;index;not null"`
	RefundAmount      int32         `gorm:"not null"` // minor units, equals the purchase amount
	Currency          string        `gorm:"size:8;not null"`
	DenialReason      string        `gorm:"size:1024"`
	DecidedBy         string        `gorm:"size:128"`
	DecidedAt         *time.Time
	ProcessorRefundID string    `gorm:"size:128"`
	RequestedAt       time.Time `gorm:"not null"`
	ProcessedAt       *time.Time
	UpdatedAt         time.Time
}
