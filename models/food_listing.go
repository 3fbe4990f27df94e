package models

import (
	"strings"

	"github.com/yeremiapane/food-listing-dashboard/apperror"
)

var (
	ProviderTypes = []string{"Restaurant", "Grocery Store", "Supermarket", "Bakery", "Hotel", "Farm"}
	FoodTypes     = []string{"Vegetarian", "Non-Vegetarian", "Vegan", "Dairy", "Gluten-Free", "Organic"}
	MealTypes     = []string{"Breakfast", "Lunch", "Dinner", "Snacks", "Dessert", "Beverage"}
)

type FoodListing struct {
	ID           int64  `gorm:"column:Food_ID;primaryKey;autoIncrement" json:"id"`
	Name         string `gorm:"column:Food_Name;type:varchar(255);not null" json:"name"`
	Quantity     int    `gorm:"column:Quantity;not null" json:"quantity"`
	ExpiryDate   Date   `gorm:"column:Expiry_Date;type:date;not null;index" json:"expiry_date"`
	ProviderID   int64  `gorm:"column:Provider_ID;not null;index" json:"provider_id"`
	ProviderType string `gorm:"column:Provider_Type;type:varchar(100)" json:"provider_type"`
	Location     string `gorm:"column:Location;type:varchar(255)" json:"location"`
	FoodType     string `gorm:"column:Food_Type;type:varchar(100)" json:"food_type"`
	MealType     string `gorm:"column:Meal_Type;type:varchar(100)" json:"meal_type"`
	ListedDate   Date   `gorm:"column:Listed_Date;type:date" json:"listed_date"`
}

func (FoodListing) TableName() string {
	return "food_listings"
}

// FoodListingInput is what callers may set. Provider fields are only read on
// insert; updates ignore them.
type FoodListingInput struct {
	Name         string `json:"name"`
	Quantity     int    `json:"quantity"`
	ExpiryDate   Date   `json:"expiry_date"`
	ProviderID   int64  `json:"provider_id"`
	ProviderType string `json:"provider_type"`
	Location     string `json:"location"`
	FoodType     string `json:"food_type"`
	MealType     string `json:"meal_type"`
}

// Validate checks a full listing before insert.
func (in *FoodListingInput) Validate() error {
	if err := in.ValidatePatch(); err != nil {
		return err
	}
	if in.ProviderID < 1 {
		return apperror.ValidationFailed("provider_id", "provider_id must be at least 1")
	}
	return nil
}

// ValidatePatch checks the fields an update is allowed to replace.
func (in *FoodListingInput) ValidatePatch() error {
	in.Name = strings.TrimSpace(in.Name)
	in.Location = strings.TrimSpace(in.Location)

	switch {
	case in.Name == "":
		return apperror.ValidationFailed("name", "food name is required")
	case in.Location == "":
		return apperror.ValidationFailed("location", "location is required")
	case in.Quantity < 1:
		return apperror.ValidationFailed("quantity", "quantity must be at least 1")
	case in.ExpiryDate.IsZero():
		return apperror.ValidationFailed("expiry_date", "expiry date is required")
	case !oneOf(in.FoodType, FoodTypes):
		return apperror.ValidationFailed("food_type", "food type must be one of "+strings.Join(FoodTypes, ", "))
	case !oneOf(in.MealType, MealTypes):
		return apperror.ValidationFailed("meal_type", "meal type must be one of "+strings.Join(MealTypes, ", "))
	}
	return nil
}

// Listing builds the row to insert; the caller sets ListedDate.
func (in FoodListingInput) Listing() FoodListing {
	return FoodListing{
		Name:         in.Name,
		Quantity:     in.Quantity,
		ExpiryDate:   in.ExpiryDate,
		ProviderID:   in.ProviderID,
		ProviderType: in.ProviderType,
		Location:     in.Location,
		FoodType:     in.FoodType,
		MealType:     in.MealType,
	}
}

func oneOf(v string, set []string) bool {
	for _, s := range set {
		if s == v {
			return true
		}
	}
	return false
}
