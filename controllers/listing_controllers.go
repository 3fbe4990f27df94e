package controllers

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/yeremiapane/food-listing-dashboard/apperror"
	"github.com/yeremiapane/food-listing-dashboard/models"
	"github.com/yeremiapane/food-listing-dashboard/realtime"
	"github.com/yeremiapane/food-listing-dashboard/repository"
	"github.com/yeremiapane/food-listing-dashboard/utils"
)

// ChangeNotifier is told about every successful listing mutation so open
// dashboards can refresh.
type ChangeNotifier interface {
	NotifyListingChange(action string, id int64)
}

type ListingController struct {
	Repo     *repository.ListingRepository
	Notifier ChangeNotifier
	now      func() time.Time
}

func NewListingController(repo *repository.ListingRepository, notifier ChangeNotifier) *ListingController {
	return &ListingController{Repo: repo, Notifier: notifier, now: time.Now}
}

// GetOptions lists the values the listing form offers.
func (lc *ListingController) GetOptions(c *gin.Context) {
	utils.RespondJSON(c, http.StatusOK, "Listing options", gin.H{
		"provider_types": models.ProviderTypes,
		"food_types":     models.FoodTypes,
		"meal_types":     models.MealTypes,
	})
}

// GetAllListings returns listings newest first, optionally filtered.
func (lc *ListingController) GetAllListings(c *gin.Context) {
	filter := repository.ListFilter{
		Location:     c.Query("location"),
		ProviderType: c.Query("provider_type"),
		FoodType:     c.Query("food_type"),
		MealType:     c.Query("meal_type"),
	}

	listings, err := lc.Repo.List(c.Request.Context(), filter)
	if err != nil {
		utils.RespondFailure(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "List of food listings", listings)
}

func (lc *ListingController) GetListing(c *gin.Context) {
	id, err := listingID(c)
	if err != nil {
		utils.RespondFailure(c, err)
		return
	}

	listing, err := lc.Repo.Get(c.Request.Context(), id)
	if err != nil {
		utils.RespondFailure(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Food listing details", listing)
}

// CreateListing adds a listing. New listings may not already be expired.
func (lc *ListingController) CreateListing(c *gin.Context) {
	var input models.FoodListingInput
	if err := c.ShouldBindJSON(&input); err != nil {
		utils.RespondFailure(c, apperror.ValidationFailed("body", err.Error()))
		return
	}
	if !input.ExpiryDate.IsZero() && input.ExpiryDate.Before(models.NewDate(lc.now())) {
		utils.RespondFailure(c, apperror.ValidationFailed("expiry_date", "expiry date cannot be in the past"))
		return
	}

	id, err := lc.Repo.Insert(c.Request.Context(), input)
	if err != nil {
		utils.RespondFailure(c, err)
		return
	}

	utils.InfoLogger.Printf("Food listing created: %d (%s)", id, input.Name)
	lc.notify(realtime.ActionCreated, id)
	utils.RespondJSON(c, http.StatusCreated, "Food listing added successfully", gin.H{"id": id})
}

// UpdateListing replaces the editable fields of a listing.
func (lc *ListingController) UpdateListing(c *gin.Context) {
	id, err := listingID(c)
	if err != nil {
		utils.RespondFailure(c, err)
		return
	}

	var input models.FoodListingInput
	if err := c.ShouldBindJSON(&input); err != nil {
		utils.RespondFailure(c, apperror.ValidationFailed("body", err.Error()))
		return
	}

	n, err := lc.Repo.Update(c.Request.Context(), id, input)
	if err != nil {
		utils.RespondFailure(c, err)
		return
	}
	if n == 0 {
		utils.RespondFailure(c, apperror.NotFound("food listing", strconv.FormatInt(id, 10)))
		return
	}

	lc.notify(realtime.ActionUpdated, id)
	utils.RespondJSON(c, http.StatusOK, "Food listing updated successfully", gin.H{"rows_affected": n})
}

func (lc *ListingController) DeleteListing(c *gin.Context) {
	id, err := listingID(c)
	if err != nil {
		utils.RespondFailure(c, err)
		return
	}

	n, err := lc.Repo.Delete(c.Request.Context(), id)
	if err != nil {
		utils.RespondFailure(c, err)
		return
	}
	if n == 0 {
		utils.RespondFailure(c, apperror.NotFound("food listing", strconv.FormatInt(id, 10)))
		return
	}

	utils.InfoLogger.Printf("Food listing deleted: %d", id)
	lc.notify(realtime.ActionDeleted, id)
	utils.RespondJSON(c, http.StatusOK, "Food listing deleted successfully", gin.H{"rows_affected": n})
}

func (lc *ListingController) notify(action string, id int64) {
	if lc.Notifier != nil {
		lc.Notifier.NotifyListingChange(action, id)
	}
}

func listingID(c *gin.Context) (int64, error) {
	id, err := strconv.ParseInt(c.Param("food_id"), 10, 64)
	if err != nil || id < 1 {
		return 0, apperror.ValidationFailed("food_id", "food_id must be a positive integer")
	}
	return id, nil
}
