package Controllers_test

import (
	"encoding/json"
	"net/http"
	"strconv"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/yeremiapane/food-listing-dashboard/controllers"
	"github.com/yeremiapane/food-listing-dashboard/database"
	"github.com/yeremiapane/food-listing-dashboard/models"
	"github.com/yeremiapane/food-listing-dashboard/realtime"
	"github.com/yeremiapane/food-listing-dashboard/repository"
	"github.com/yeremiapane/food-listing-dashboard/utils"
)

func setupListingRouter(t *testing.T, seed bool) (*gin.Engine, *recordingNotifier) {
	store := setupTestStore(t, seed)
	notifier := &recordingNotifier{}
	ctrl := controllers.NewListingController(repository.NewListingRepository(store), notifier)

	r := newRouter()
	r.GET("/options", ctrl.GetOptions)
	r.GET("/listings", ctrl.GetAllListings)
	r.GET("/listings/:food_id", ctrl.GetListing)
	r.POST("/admin/listings", ctrl.CreateListing)
	r.PUT("/admin/listings/:food_id", ctrl.UpdateListing)
	r.DELETE("/admin/listings/:food_id", ctrl.DeleteListing)
	return r, notifier
}

func soupPayload() map[string]interface{} {
	return map[string]interface{}{
		"name":          "Test Soup",
		"quantity":      5,
		"expiry_date":   models.Today().AddDays(2).String(),
		"provider_id":   1,
		"provider_type": "Restaurant",
		"location":      "Downtown",
		"food_type":     "Vegan",
		"meal_type":     "Lunch",
	}
}

func TestListingCRUD(t *testing.T) {
	r, notifier := setupListingRouter(t, true)

	// create
	w, env := doJSON(t, r, http.MethodPost, "/admin/listings", soupPayload())
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	assert.True(t, env.Status)
	var created struct {
		ID int64 `json:"id"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &created))
	require.Positive(t, created.ID)
	url := "/listings/" + strconv.FormatInt(created.ID, 10)

	// list puts the new listing first
	w, env = doJSON(t, r, http.MethodGet, "/listings", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var listings []models.FoodListing
	require.NoError(t, json.Unmarshal(env.Data, &listings))
	require.Len(t, listings, database.SampleListingCount+1)
	assert.Equal(t, created.ID, listings[0].ID)
	assert.Equal(t, "Test Soup", listings[0].Name)
	assert.Equal(t, models.Today().String(), listings[0].ListedDate.String())

	// update
	patch := soupPayload()
	patch["name"] = "Tomato Soup"
	patch["quantity"] = 12
	w, env = doJSON(t, r, http.MethodPut, "/admin/listings/"+strconv.FormatInt(created.ID, 10), patch)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.JSONEq(t, `{"rows_affected":1}`, string(env.Data))

	w, env = doJSON(t, r, http.MethodGet, url, nil)
	require.Equal(t, http.StatusOK, w.Code)
	var got models.FoodListing
	require.NoError(t, json.Unmarshal(env.Data, &got))
	assert.Equal(t, "Tomato Soup", got.Name)
	assert.Equal(t, 12, got.Quantity)

	// delete
	w, env = doJSON(t, r, http.MethodDelete, "/admin/listings/"+strconv.FormatInt(created.ID, 10), nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"rows_affected":1}`, string(env.Data))

	w, _ = doJSON(t, r, http.MethodGet, url, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)

	assert.Equal(t, []change{
		{realtime.ActionCreated, created.ID},
		{realtime.ActionUpdated, created.ID},
		{realtime.ActionDeleted, created.ID},
	}, notifier.all())
}

func TestCreateListingValidation(t *testing.T) {
	r, notifier := setupListingRouter(t, false)

	tests := []struct {
		name  string
		edit  func(map[string]interface{})
		field string
	}{
		{"past expiry", func(p map[string]interface{}) { p["expiry_date"] = models.Today().AddDays(-1).String() }, "expiry_date"},
		{"zero quantity", func(p map[string]interface{}) { p["quantity"] = 0 }, "quantity"},
		{"blank name", func(p map[string]interface{}) { p["name"] = "   " }, "name"},
		{"unknown meal", func(p map[string]interface{}) { p["meal_type"] = "Brunch" }, "meal_type"},
		{"bad date", func(p map[string]interface{}) { p["expiry_date"] = "next week" }, "body"},
		{"trailing garbage date", func(p map[string]interface{}) { p["expiry_date"] = models.Today().AddDays(2).String() + "garbage" }, "body"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := soupPayload()
			tt.edit(p)
			w, env := doJSON(t, r, http.MethodPost, "/admin/listings", p)
			require.Equal(t, http.StatusBadRequest, w.Code, w.Body.String())
			assert.False(t, env.Status)

			var failure utils.FailureData
			require.NoError(t, json.Unmarshal(env.Data, &failure))
			assert.Equal(t, "validation_failure", failure.Kind)
			assert.Equal(t, tt.field, failure.Field)
		})
	}

	w, env := doJSON(t, r, http.MethodGet, "/listings", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `[]`, string(env.Data))
	assert.Empty(t, notifier.all())
}

func TestCreateListingExpiringTodayIsAllowed(t *testing.T) {
	r, _ := setupListingRouter(t, false)

	p := soupPayload()
	p["expiry_date"] = models.Today().String()
	w, _ := doJSON(t, r, http.MethodPost, "/admin/listings", p)
	assert.Equal(t, http.StatusCreated, w.Code, w.Body.String())
}

func TestMissingListingIsNotFound(t *testing.T) {
	r, notifier := setupListingRouter(t, true)

	w, _ := doJSON(t, r, http.MethodPut, "/admin/listings/99999", soupPayload())
	assert.Equal(t, http.StatusNotFound, w.Code)

	w, _ = doJSON(t, r, http.MethodDelete, "/admin/listings/99999", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)

	w, _ = doJSON(t, r, http.MethodGet, "/listings/abc", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	assert.Empty(t, notifier.all())
}

func TestListingFiltersAndOptions(t *testing.T) {
	r, _ := setupListingRouter(t, true)

	w, env := doJSON(t, r, http.MethodGet, "/listings?location=Downtown&meal_type=Lunch", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var listings []models.FoodListing
	require.NoError(t, json.Unmarshal(env.Data, &listings))
	require.Len(t, listings, 2)
	for _, l := range listings {
		assert.Equal(t, "Downtown", l.Location)
		assert.Equal(t, "Lunch", l.MealType)
	}

	w, env = doJSON(t, r, http.MethodGet, "/options", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var opts map[string][]string
	require.NoError(t, json.Unmarshal(env.Data, &opts))
	assert.Equal(t, models.FoodTypes, opts["food_types"])
	assert.Equal(t, models.MealTypes, opts["meal_types"])
	assert.Equal(t, models.ProviderTypes, opts["provider_types"])
}
