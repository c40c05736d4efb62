package dto

import "time"

type RecordAccessRequest struct {
	OrderID    string `json:"orderId"`
	ProductID  string `json:"productId"`
	AccessType string `json:"accessType"`
}

type RecordAccessResponse struct {
	Success        bool   `json:"success"`
	AccessType     string `json:"accessType"`
	RefundEligible bool   `json:"refundEligible"`
	RefundMessage  string `json:"refundMessage"`
}

type EligibilityResponse struct {
	Eligible      bool     `json:"eligible"`
	Reason        string   `json:"reason"`
	TimeRemaining *float64 `json:"timeRemaining,omitempty"` // hours
}

type CreateRefundRequest struct {
	OrderID       string `json:"orderId"`
	ProductID     string `json:"productId"`
	CustomerEmail string `json:"customerEmail"`
	Reason        string `json:"reason"`
	Amount        int32  `json:"amount,omitempty"` // minor units; must match the purchase when set
}

type CreateRefundResponse struct {
	RequestID string `json:"requestId"`
	Status    string `json:"status"`
}

type DecideRefundRequest struct {
	Decision     string `json:"decision"`
	DenialReason string `json:"denialReason,omitempty"`
}

type RefundRequest struct {
	ID                string     `json:"id"`
	OrderID           string     `json:"orderId"`
	ProductID         string     `json:"productId"`
	CustomerEmail     string     `json:"customerEmail"`
	Reason            string     `json:"reason"`
	Status            string     `json:"status"`
	RefundAmount      string     `json:"refundAmount"` // decimal, e.g. "9.99"
	Currency          string     `json:"currency"`
	DenialReason      string     `json:"denialReason,omitempty"`
	DecidedBy         string     `json:"decidedBy,omitempty"`
	DecidedAt         *time.Time `json:"decidedAt,omitempty"`
	ProcessorRefundID string     `json:"processorRefundId,omitempty"`
	RequestedAt       time.Time  `json:"requestedAt"`
	ProcessedAt       *time.Time `json:"processedAt,omitempty"`
}

type DownloadRequest struct {
	OrderID   string `json:"orderId"`
	ProductID string `json:"productId"`
}

type DownloadResponse struct {
	URL       string    `json:"url"`
	ExpiresAt time.Time `json:"expiresAt"`
}

type CompleteOrderResponse struct {
	OrderID string `json:"orderId"`
	Status  string `json:"status"`
}

type RefundPolicyResponse struct {
	MaxRefundHours   int      `json:"maxRefundHours"`
	Summary          string   `json:"summary"`
	SuggestedReasons []string `json:"suggestedReasons"`
}

type ErrorBody struct {
	Kind    string `json:"kind"`
	Message string `json:"message"`
}

type ErrorResponse struct {
	Error ErrorBody `json:"error"`
}
