package model

import "time"

type ProductType string

const (
	ProductTypeOneTime      ProductType = "ONE_TIME"
	ProductTypeSubscription ProductType = "SUBSCRIPTION"
)

type Product struct {
	ID          string      `gorm:"primaryKey;size:64;not null" json:"id"` // product sku
	Name        string      `gorm:"size:128;not null" json:"name"`
	Description string      `gorm:"size:512" json:"description"`
	Price       int32       `gorm:"not null" json:"price"` // minor units
	Currency    string      `gorm:"size:8;not null" json:"currency"`
	Type        ProductType `gorm:"size:32;index;not null" json:"type"`
	AssetKey    string      `gorm:"size:256" json:"-"` // object key of the downloadable file
	Active      bool        `gorm:"not null" json:"active"`
	CreatedAt   time.Time   `json:"createdAt"`
	UpdatedAt   time.Time   `json:"updatedAt"`
}

type OrderStatus string

const (
	OrderStatusCreated   OrderStatus = "CREATED"
	OrderStatusApproved  OrderStatus = "APPROVED"
	OrderStatusCompleted OrderStatus = "COMPLETED"
	OrderStatusFailed    OrderStatus = "FAILED"
)

// Processor names the payment processor that captured an order.
type Processor string

const (
	ProcessorNone      Processor = ""
	ProcessorPaypal    Processor = "paypal"
	ProcessorBraintree Processor = "braintree"
)

type Order struct {
	OrderID       string      `gorm:"primaryKey;size:64;not null"`
	Status        OrderStatus `gorm:"size:32;index;not null"`
	CustomerEmail string      `gorm:"size:256;index;not null"`
	PayerID       string      `gorm:"size:64;index"`
	Amount        int32       `gorm:"not null"` // total amount (sum of items)
	Currency      string      `gorm:"size:8;not null"`
	Processor     Processor   `gorm:"size:32"`
	ProcessorRef  string      `gorm:"size:128"` // paypal capture id or braintree transaction id
	CreatedAt     time.Time
	UpdatedAt     time.Time
	CompletedAt   *time.Time
}

// PurchasedAt anchors the refund window for the order's products.
func (o *Order) PurchasedAt() time.Time {
	if o.CompletedAt != nil {
		return *o.CompletedAt
	}
	return o.CreatedAt
}

type OrderItem struct {
	ID uint `gorm:"primaryKey"`
	// FK → order.order_id
	OrderID string `gorm:"size:64;index;not null"`
	// FK → product.id
	ProductID string `gorm:"size:64;index;not null"`
	Quantity  int32  `gorm:"not null"`
	UnitPrice int32  `gorm:"not null"`
	Currency  string `gorm:"size:8;not null"`

	CreatedAt time.Time
}

// Amount is the line total in minor units.
func (i *OrderItem) Amount() int64 {
	return int64(i.UnitPrice) * int64(i.Quantity)
}

// Purchase is a completed order line for one product.
type Purchase struct {
	OrderID       string
	ProductID     string
	CustomerEmail string
	Amount        int32
	Currency      string
	Processor     Processor
	ProcessorRef  string
	PurchasedAt   time.Time
}
