package models

import "time"

type Provider struct {
	ID   int64  `gorm:"column:Provider_ID;primaryKey;autoIncrement" json:"provider_id"`
	Name string `gorm:"column:Name;type:varchar(255);not null" json:"name"`
	Type string `gorm:"column:Type;type:varchar(100)" json:"type"`
	City string `gorm:"column:City;type:varchar(100)" json:"city"`
}

func (Provider) TableName() string {
	return "food_providers"
}

type Receiver struct {
	ID   int64  `gorm:"column:Receiver_ID;primaryKey;autoIncrement" json:"receiver_id"`
	Name string `gorm:"column:Name;type:varchar(255);not null" json:"name"`
	Type string `gorm:"column:Type;type:varchar(100)" json:"type"`
	City string `gorm:"column:City;type:varchar(100)" json:"city"`
}

func (Receiver) TableName() string {
	return "food_receivers"
}

const (
	ClaimPending   = "Pending"
	ClaimCompleted = "Completed"
	ClaimCancelled = "Cancelled"
)

// Claim records a receiver taking a listing. Claims disappear with their
// listing.
type Claim struct {
	ID         int64       `gorm:"column:Claim_ID;primaryKey;autoIncrement" json:"claim_id"`
	FoodID     int64       `gorm:"column:Food_ID;not null;index" json:"food_id"`
	Listing    FoodListing `gorm:"foreignKey:FoodID;references:ID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE" json:"-"`
	ReceiverID int64       `gorm:"column:Receiver_ID;not null;index" json:"receiver_id"`
	Receiver   Receiver    `gorm:"foreignKey:ReceiverID;references:ID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE" json:"-"`
	Status     string      `gorm:"column:Status;type:varchar(50);not null" json:"status"`
	Timestamp  time.Time   `gorm:"column:Timestamp;not null" json:"timestamp"`
}

func (Claim) TableName() string {
	return "food_claims"
}
