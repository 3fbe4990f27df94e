package database

import (
	"fmt"
	"time"

	"github.com/yeremiapane/food-listing-dashboard/models"
	"gorm.io/gorm"
)

// EnsureSchema creates the listing and reporting tables when missing. It is
// safe to call on every start.
func EnsureSchema(db *gorm.DB) error {
	if err := db.AutoMigrate(
		&models.FoodListing{},
		&models.Provider{},
		&models.Receiver{},
		&models.Claim{},
	); err != nil {
		return fmt.Errorf("migrate schema: %w", err)
	}
	return nil
}

type sampleListing struct {
	name         string
	quantity     int
	expiresIn    int
	providerID   int64
	providerType string
	location     string
	foodType     string
	mealType     string
}

var sampleListings = []sampleListing{
	{"Fresh Vegetables", 10, 3, 1, "Farm", "Downtown Market", "Vegetarian", "Dinner"},
	{"Bread Loaves", 20, 1, 2, "Bakery", "Main Street", "Vegan", "Breakfast"},
	{"Milk Cartons", 15, 5, 3, "Grocery Store", "North District", "Dairy", "Breakfast"},
	{"Cooked Pasta", 25, 2, 4, "Restaurant", "Downtown", "Vegetarian", "Lunch"},
	{"Fresh Fruits", 30, 4, 1, "Farm", "East Market", "Organic", "Snacks"},
	{"Chicken Curry", 8, 1, 5, "Restaurant", "South District", "Non-Vegetarian", "Dinner"},
	{"Pastries", 12, 2, 2, "Bakery", "West End", "Vegetarian", "Dessert"},
	{"Rice Bags", 5, 30, 6, "Supermarket", "Central Area", "Gluten-Free", "Dinner"},
	{"Fresh Juice", 18, 3, 7, "Juice Bar", "Market Square", "Organic", "Beverage"},
	{"Vegetable Soup", 15, 2, 4, "Restaurant", "Downtown", "Vegan", "Lunch"},
}

// SampleListingCount is how many listings SeedIfEmpty inserts into an empty
// table.
var SampleListingCount = len(sampleListings)

var sampleProviders = []models.Provider{
	{ID: 1, Name: "Green Acres Farm", Type: "Farm", City: "Downtown"},
	{ID: 2, Name: "Daily Crumb Bakery", Type: "Bakery", City: "Main Street"},
	{ID: 3, Name: "Northside Grocers", Type: "Grocery Store", City: "North District"},
	{ID: 4, Name: "Trattoria Centrale", Type: "Restaurant", City: "Downtown"},
	{ID: 5, Name: "Spice Route Kitchen", Type: "Restaurant", City: "South District"},
	{ID: 6, Name: "MegaMart Central", Type: "Supermarket", City: "Central Area"},
	{ID: 7, Name: "Squeeze Juice Bar", Type: "Juice Bar", City: "Market Square"},
}

var sampleReceivers = []models.Receiver{
	{ID: 1, Name: "Hope Community Shelter", Type: "Shelter", City: "Downtown"},
	{ID: 2, Name: "Northside Food Bank", Type: "NGO", City: "North District"},
	{ID: 3, Name: "St. Mary's Kitchen", Type: "Charity", City: "South District"},
	{ID: 4, Name: "Alex Morgan", Type: "Individual", City: "Central Area"},
}

type sampleClaim struct {
	listing    int // index into sampleListings
	receiverID int64
	status     string
	hoursAgo   int
}

var sampleClaims = []sampleClaim{
	{0, 1, models.ClaimCompleted, 30},
	{2, 2, models.ClaimCompleted, 20},
	{3, 1, models.ClaimPending, 5},
	{5, 3, models.ClaimCompleted, 12},
	{7, 4, models.ClaimCancelled, 48},
	{9, 1, models.ClaimPending, 2},
}

// SeedIfEmpty fills an empty food_listings table with sample rows and
// returns how many listings it inserted. Provider and receiver tables are
// seeded independently when empty; claims are added only alongside freshly
// seeded listings.
func SeedIfEmpty(db *gorm.DB) (int, error) {
	inserted := 0
	err := db.Transaction(func(tx *gorm.DB) error {
		if err := seedTable(tx, &models.Provider{}, &sampleProviders); err != nil {
			return err
		}
		if err := seedTable(tx, &models.Receiver{}, &sampleReceivers); err != nil {
			return err
		}

		var count int64
		if err := tx.Model(&models.FoodListing{}).Count(&count).Error; err != nil {
			return fmt.Errorf("count listings: %w", err)
		}
		if count > 0 {
			return nil
		}

		today := models.Today()
		listings := make([]models.FoodListing, 0, len(sampleListings))
		for _, s := range sampleListings {
			listings = append(listings, models.FoodListing{
				Name:         s.name,
				Quantity:     s.quantity,
				ExpiryDate:   today.AddDays(s.expiresIn),
				ProviderID:   s.providerID,
				ProviderType: s.providerType,
				Location:     s.location,
				FoodType:     s.foodType,
				MealType:     s.mealType,
				ListedDate:   today,
			})
		}
		if err := tx.Create(&listings).Error; err != nil {
			return fmt.Errorf("seed listings: %w", err)
		}

		ids := make([]int64, 0, len(sampleReceivers))
		for _, r := range sampleReceivers {
			ids = append(ids, r.ID)
		}
		var receivers int64
		if err := tx.Model(&models.Receiver{}).Where(map[string]interface{}{"Receiver_ID": ids}).Count(&receivers).Error; err != nil {
			return fmt.Errorf("count receivers: %w", err)
		}
		if receivers == int64(len(ids)) {
			now := time.Now().UTC().Truncate(time.Second)
			claims := make([]models.Claim, 0, len(sampleClaims))
			for _, c := range sampleClaims {
				claims = append(claims, models.Claim{
					FoodID:     listings[c.listing].ID,
					ReceiverID: c.receiverID,
					Status:     c.status,
					Timestamp:  now.Add(-time.Duration(c.hoursAgo) * time.Hour),
				})
			}
			if err := tx.Omit("Listing", "Receiver").Create(&claims).Error; err != nil {
				return fmt.Errorf("seed claims: %w", err)
			}
		}

		inserted = len(listings)
		return nil
	})
	if err != nil {
		return 0, err
	}
	return inserted, nil
}

func seedTable[T any](tx *gorm.DB, model interface{}, rows *[]T) error {
	var count int64
	if err := tx.Model(model).Count(&count).Error; err != nil {
		return fmt.Errorf("count %T: %w", model, err)
	}
	if count > 0 {
		return nil
	}
	batch := make([]T, len(*rows))
	copy(batch, *rows)
	if err := tx.Create(&batch).Error; err != nil {
		return fmt.Errorf("seed %T: %w", model, err)
	}
	return nil
}
