package repository

import (
	"context"
	"errors"
	"strconv"
	"time"

	"github.com/yeremiapane/food-listing-dashboard/apperror"
	"github.com/yeremiapane/food-listing-dashboard/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Connector hands out a database handle for one operation.
type Connector interface {
	Conn(ctx context.Context) (*gorm.DB, error)
}

// patchable lists the columns an update may replace.
var patchable = []string{"Food_Name", "Quantity", "Expiry_Date", "Location", "Food_Type", "Meal_Type"}

// ListFilter narrows a listing query by exact match. Empty fields match all.
type ListFilter struct {
	Location     string
	ProviderType string
	FoodType     string
	MealType     string
}

type ListingRepository struct {
	store Connector
	now   func() time.Time
}

func NewListingRepository(store Connector) *ListingRepository {
	return &ListingRepository{store: store, now: time.Now}
}

// ListAll returns every listing, newest first.
func (r *ListingRepository) ListAll(ctx context.Context) ([]models.FoodListing, error) {
	return r.List(ctx, ListFilter{})
}

func (r *ListingRepository) List(ctx context.Context, f ListFilter) ([]models.FoodListing, error) {
	db, err := r.store.Conn(ctx)
	if err != nil {
		return nil, err
	}

	listings := []models.FoodListing{}
	res := db.Where(&models.FoodListing{
		Location:     f.Location,
		ProviderType: f.ProviderType,
		FoodType:     f.FoodType,
		MealType:     f.MealType,
	}).Order(clause.OrderByColumn{Column: clause.Column{Name: "Food_ID"}, Desc: true}).Find(&listings)
	if res.Error != nil {
		return nil, queryFailed(res)
	}
	return listings, nil
}

func (r *ListingRepository) Get(ctx context.Context, id int64) (*models.FoodListing, error) {
	if id <= 0 {
		return nil, apperror.NotFound("food listing", strconv.FormatInt(id, 10))
	}
	db, err := r.store.Conn(ctx)
	if err != nil {
		return nil, err
	}

	var listing models.FoodListing
	res := db.Where(&models.FoodListing{ID: id}).Take(&listing)
	if errors.Is(res.Error, gorm.ErrRecordNotFound) {
		return nil, apperror.NotFound("food listing", strconv.FormatInt(id, 10))
	}
	if res.Error != nil {
		return nil, queryFailed(res)
	}
	return &listing, nil
}

// Insert validates in and stores it as a new listing dated today. It returns
// the generated id.
func (r *ListingRepository) Insert(ctx context.Context, in models.FoodListingInput) (int64, error) {
	if err := in.Validate(); err != nil {
		return 0, err
	}

	db, err := r.store.Conn(ctx)
	if err != nil {
		return 0, err
	}

	listing := in.Listing()
	listing.ListedDate = models.NewDate(r.now())
	res := db.Create(&listing)
	if res.Error != nil {
		return 0, queryFailed(res)
	}
	return listing.ID, nil
}

// Update replaces the patchable fields of listing id and reports how many
// rows changed. A missing id yields 0 and no error.
func (r *ListingRepository) Update(ctx context.Context, id int64, in models.FoodListingInput) (int64, error) {
	if err := in.ValidatePatch(); err != nil {
		return 0, err
	}
	if id <= 0 {
		return 0, nil
	}

	db, err := r.store.Conn(ctx)
	if err != nil {
		return 0, err
	}

	res := db.Model(&models.FoodListing{ID: id}).
		Select(patchable).
		Updates(models.FoodListing{
			Name:       in.Name,
			Quantity:   in.Quantity,
			ExpiryDate: in.ExpiryDate,
			Location:   in.Location,
			FoodType:   in.FoodType,
			MealType:   in.MealType,
		})
	if res.Error != nil {
		return 0, queryFailed(res)
	}
	return res.RowsAffected, nil
}

// Delete removes listing id and reports how many rows went away.
func (r *ListingRepository) Delete(ctx context.Context, id int64) (int64, error) {
	if id <= 0 {
		return 0, nil
	}

	db, err := r.store.Conn(ctx)
	if err != nil {
		return 0, err
	}

	res := db.Delete(&models.FoodListing{}, id)
	if res.Error != nil {
		return 0, queryFailed(res)
	}
	return res.RowsAffected, nil
}

func queryFailed(res *gorm.DB) error {
	query := ""
	if res.Statement != nil {
		query = res.Statement.SQL.String()
	}
	return apperror.QueryFailed(res.Error, query)
}
