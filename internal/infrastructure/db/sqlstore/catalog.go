package sqlstore

import (
	"time"

	"github.com/shopspring/decimal"
)

// The catalog tables below store menu, ordering, takeaway, feedback and offer
// data. Status columns hold labels only; no transition rules are enforced.

type DishAvailability string

const (
	DishAvailable    DishAvailability = "available"
	DishNotAvailable DishAvailability = "not_available"
)

type OrderType string

const (
	OrderTypeDelivery OrderType = "delivery"
	OrderTypeTakeaway OrderType = "takeaway"
)

type OrderStatus string

const (
	OrderPending        OrderStatus = "pending"
	OrderAccepted       OrderStatus = "accepted"
	OrderPreparing      OrderStatus = "preparing"
	OrderOutForDelivery OrderStatus = "out_for_delivery"
	OrderDelivered      OrderStatus = "delivered"
	OrderCancelled      OrderStatus = "cancelled"
)

type PaymentMethod string

const (
	PaymentCreditCard PaymentMethod = "credit_card"
	PaymentPayPal     PaymentMethod = "paypal"
	PaymentUPI        PaymentMethod = "upi"
	PaymentCOD        PaymentMethod = "cod"
)

type PaymentStatus string

const (
	PaymentPaid    PaymentStatus = "paid"
	PaymentPending PaymentStatus = "pending"
	PaymentFailed  PaymentStatus = "failed"
)

type TakeawayStatus string

const (
	TakeawayPending        TakeawayStatus = "pending"
	TakeawayAccepted       TakeawayStatus = "accepted"
	TakeawayReadyForPickup TakeawayStatus = "ready_for_pickup"
	TakeawayPickedUp       TakeawayStatus = "picked_up"
	TakeawayCancelled      TakeawayStatus = "cancelled"
)

type MenuCategory struct {
	ID          uint   `gorm:"primaryKey"`
	Name        string `gorm:"size:50;not null"`
	Description string `gorm:"type:text"`
	Dishes      []Dish `gorm:"foreignKey:CategoryID"`
}

type Dish struct {
	ID           uint             `gorm:"primaryKey"`
	Name         string           `gorm:"size:100;not null"`
	Description  string           `gorm:"type:text"`
	Price        decimal.Decimal  `gorm:"type:decimal(10,2);not null"`
	ImageURL     string           `gorm:"size:255"`
	CategoryID   *uint            `gorm:"index"`
	IsSpecial    bool             `gorm:"not null;default:false"`
	Availability DishAvailability `gorm:"size:16;not null;default:'available'"`
}

type Special struct {
	ID          uint       `gorm:"primaryKey"`
	DishID      uint       `gorm:"index"`
	Dish        Dish       `gorm:"constraint:OnDelete:CASCADE"`
	SpecialDate *time.Time `gorm:"type:date"`
}

type Order struct {
	ID                uint                `gorm:"primaryKey"`
	UserID            *int64              `gorm:"index"`
	OrderType         OrderType           `gorm:"size:16;not null;default:'delivery'"`
	DeliveryAddress   string              `gorm:"type:text"`
	Status            OrderStatus         `gorm:"size:24;not null;default:'pending'"`
	TotalPrice        decimal.NullDecimal `gorm:"type:decimal(10,2)"`
	OrderTime         time.Time           `gorm:"autoCreateTime"`
	DeliveryPartnerID *int64              `gorm:"index"`
	Items             []OrderItem         `gorm:"constraint:OnDelete:CASCADE"`
	Payments          []Payment
}

type OrderItem struct {
	ID       uint            `gorm:"primaryKey"`
	OrderID  uint            `gorm:"index;not null"`
	DishID   *uint           `gorm:"index"`
	Quantity int             `gorm:"not null"`
	Price    decimal.Decimal `gorm:"type:decimal(10,2);not null"`
}

type Payment struct {
	ID            uint          `gorm:"primaryKey"`
	OrderID       uint          `gorm:"index;not null"`
	PaymentMethod PaymentMethod `gorm:"size:16;not null"`
	PaymentStatus PaymentStatus `gorm:"size:16;not null;default:'pending'"`
	PaymentTime   time.Time     `gorm:"autoCreateTime"`
}

type Chef struct {
	ID         uint   `gorm:"primaryKey"`
	Name       string `gorm:"size:100"`
	Bio        string `gorm:"type:text"`
	ImageURL   string `gorm:"size:255"`
	Popularity int    `gorm:"not null;default:0"`
}

type ChefDish struct {
	ID     uint `gorm:"primaryKey"`
	ChefID uint `gorm:"index"`
	DishID uint `gorm:"index"`
}

type TakeawayCounter struct {
	ID            uint   `gorm:"primaryKey"`
	Name          string `gorm:"size:100"`
	Address       string `gorm:"type:text"`
	ContactNumber string `gorm:"size:20"`
}

type TakeawayOrder struct {
	ID                  uint                `gorm:"primaryKey"`
	UserID              *int64              `gorm:"index"`
	CounterID           *uint               `gorm:"index"`
	PreferredPickupTime *time.Time
	TotalPrice          decimal.NullDecimal `gorm:"type:decimal(10,2)"`
	Status              TakeawayStatus      `gorm:"size:24;not null;default:'pending'"`
	OrderTime           time.Time           `gorm:"autoCreateTime"`
	Items               []TakeawayItem      `gorm:"constraint:OnDelete:CASCADE"`
}

type TakeawayItem struct {
	ID              uint            `gorm:"primaryKey"`
	TakeawayOrderID uint            `gorm:"index;not null"`
	DishID          *uint           `gorm:"index"`
	Quantity        int             `gorm:"not null"`
	Price           decimal.Decimal `gorm:"type:decimal(10,2);not null"`
}

type Feedback struct {
	ID        uint   `gorm:"primaryKey"`
	UserID    *int64 `gorm:"index"`
	DishID    *uint  `gorm:"index"`
	Rating    int
	Comment   string `gorm:"type:text"`
	CreatedAt time.Time
}

func (Feedback) TableName() string { return "feedback" }

type Offer struct {
	ID          uint       `gorm:"primaryKey"`
	Title       string     `gorm:"size:100"`
	Description string     `gorm:"type:text"`
	ImageURL    string     `gorm:"size:255"`
	StartDate   *time.Time `gorm:"type:date"`
	EndDate     *time.Time `gorm:"type:date"`
}

// CatalogModels lists the catalog tables in dependency order.
func CatalogModels() []any {
	return []any{
		&MenuCategory{},
		&Dish{},
		&Special{},
		&Order{},
		&OrderItem{},
		&Payment{},
		&Chef{},
		&ChefDish{},
		&TakeawayCounter{},
		&TakeawayOrder{},
		&TakeawayItem{},
		&Feedback{},
		&Offer{},
	}
}
