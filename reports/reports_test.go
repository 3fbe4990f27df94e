package reports

import (
	"context"
	"errors"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/yeremiapane/food-listing-dashboard/apperror"
	"github.com/yeremiapane/food-listing-dashboard/config"
	"github.com/yeremiapane/food-listing-dashboard/database"
	"github.com/yeremiapane/food-listing-dashboard/models"
)

func newTestStore(t *testing.T, seed bool) *database.Store {
	t.Helper()
	store := database.NewStore(config.DatabaseConfig{
		Driver: config.DriverSQLite,
		Path:   filepath.Join(t.TempDir(), "reports.db"),
		Seed:   seed,
	})
	t.Cleanup(func() { store.Close() })
	return store
}

func addListing(t *testing.T, store *database.Store, name string, quantity, expiresIn int) {
	t.Helper()
	db, err := store.Conn(context.Background())
	require.NoError(t, err)
	today := models.Today()
	require.NoError(t, db.Create(&models.FoodListing{
		Name:         name,
		Quantity:     quantity,
		ExpiryDate:   today.AddDays(expiresIn),
		ProviderID:   4,
		ProviderType: "Restaurant",
		Location:     "Downtown",
		FoodType:     "Vegan",
		MealType:     "Lunch",
		ListedDate:   today,
	}).Error)
}

// fixtureStore holds the sample data plus listings that fall into every
// expiry window the catalog looks at.
func fixtureStore(t *testing.T) *database.Store {
	store := newTestStore(t, true)
	addListing(t, store, "Old Bagels", 3, -2)
	addListing(t, store, "Frozen Peas", 60, 10)
	addListing(t, store, "Canned Beans", 40, 20)
	addListing(t, store, "Dry Lentils", 2, 40)
	return store
}

func TestCatalogEntriesAreWellFormed(t *testing.T) {
	categories := map[string]bool{
		CategoryExpiry: true, CategoryInventory: true, CategoryProviders: true,
		CategoryDistribution: true, CategoryClaims: true,
	}
	labels := map[string]bool{}

	all := Catalog()
	require.NotEmpty(t, all)
	for _, r := range all {
		assert.NotEmpty(t, r.Key)
		assert.NotEmpty(t, r.Label, r.Key)
		assert.NotEmpty(t, r.Columns, r.Key)
		assert.True(t, categories[r.Category], "%s has category %q", r.Key, r.Category)
		assert.False(t, labels[r.Label], "duplicate label %q", r.Label)
		labels[r.Label] = true

		got, ok := Lookup(r.Key)
		require.True(t, ok, r.Key)
		assert.Equal(t, r.Label, got.Label)

		byLabel, ok := ByLabel(r.Label)
		require.True(t, ok, r.Label)
		assert.Equal(t, r.Key, byLabel.Key)
	}

	_, ok := Lookup("no-such-report")
	assert.False(t, ok)
}

func TestBuildBindsEveryPlaceholder(t *testing.T) {
	today := models.Today().Time
	for _, driver := range []string{config.DriverSQLite, config.DriverMySQL, config.DriverPostgres} {
		d, err := DialectFor(driver)
		require.NoError(t, err)
		for _, r := range Catalog() {
			q := r.Build(d, today)
			assert.Equal(t, strings.Count(q.Text, "?"), len(q.Args), "%s on %s", r.Key, driver)
		}
	}
}

func TestDialectForUnknownDriver(t *testing.T) {
	_, err := DialectFor("oracle")
	assert.Error(t, err)
}

func TestPostgresQuotesIdentifiersOutsideLiterals(t *testing.T) {
	in := `SELECT Food_Type, COUNT(*) AS Count FROM food_listings WHERE Location = 'Food_Type' AND "Count" > 1`
	got := Postgres{}.QuoteIdentifiers(in, []string{"Food_Type", "Count", "Location"})
	assert.Equal(t,
		`SELECT "Food_Type", COUNT(*) AS "Count" FROM food_listings WHERE "Location" = 'Food_Type' AND "Count" > 1`,
		got)

	assert.Equal(t, in, SQLite{}.QuoteIdentifiers(in, []string{"Food_Type"}))
	assert.Equal(t, in, MySQL{}.QuoteIdentifiers(in, []string{"Food_Type"}))
}

func TestPostgresBuildQuotesDeclaredColumns(t *testing.T) {
	r, ok := Lookup("food-by-type")
	require.True(t, ok)

	q := r.Build(Postgres{}, models.Today().Time)
	assert.Contains(t, q.Text, `SELECT "Food_Type", COUNT(*) AS "Count", SUM("Quantity") AS "Total_Quantity"`)
	assert.Contains(t, q.Text, "FROM food_listings")
}

func TestEveryReportRunsAgainstFixture(t *testing.T) {
	runner := NewRunner(fixtureStore(t))

	for _, r := range Catalog() {
		r := r
		t.Run(r.Key, func(t *testing.T) {
			_, res, err := runner.RunReport(context.Background(), r.Key)
			require.NoError(t, err)
			assert.Equal(t, r.Columns, res.Columns)
			assert.NotEmpty(t, res.Rows)
			assert.NotEmpty(t, res.Query)
		})
	}
}

func TestExpiringSoonWindow(t *testing.T) {
	store := newTestStore(t, false)
	addListing(t, store, "Tomorrow Bread", 4, 1)
	addListing(t, store, "Later Rice", 4, 10)

	_, res, err := NewRunner(store).RunReport(context.Background(), "expiring-soon")
	require.NoError(t, err)
	require.Len(t, res.Rows, 1)
	assert.Equal(t, "Tomorrow Bread", res.Rows[0]["Food_Name"])
	assert.Equal(t, models.Today().AddDays(1).String(), res.Rows[0]["Expiry_Date"])
}

func TestExpiryTimelineBucketOrder(t *testing.T) {
	_, res, err := NewRunner(fixtureStore(t)).RunReport(context.Background(), "expiry-timeline")
	require.NoError(t, err)

	var periods []string
	var total float64
	for _, row := range res.Rows {
		periods = append(periods, row["Expiry_Period"].(string))
		n, ok := Number(row["Count"])
		require.True(t, ok)
		total += n
	}
	assert.Equal(t, []string{"Expired", "0-3 Days", "4-7 Days", "1-2 Weeks", "2-4 Weeks", "Over 30 Days"}, periods)
	assert.Equal(t, float64(database.SampleListingCount+4), total)
}

func TestMonthlyTrendsCoversTwelveMonths(t *testing.T) {
	_, res, err := NewRunner(newTestStore(t, false)).RunReport(context.Background(), "monthly-trends")
	require.NoError(t, err)
	require.Len(t, res.Rows, 12)
	assert.Equal(t, models.Today().Format("2006-01"), res.Rows[0]["Month"])
	for _, row := range res.Rows {
		n, ok := Number(row["Listings"])
		require.True(t, ok)
		assert.Zero(t, n)
	}
}

func TestRunReportUnknownKey(t *testing.T) {
	_, _, err := NewRunner(newTestStore(t, false)).RunReport(context.Background(), "nope")
	assert.True(t, errors.Is(err, apperror.ErrNotFound))
}

func TestRunEmptyResult(t *testing.T) {
	runner := NewRunner(newTestStore(t, false))

	res, err := runner.Run(context.Background(), "SELECT Food_ID, Food_Name FROM food_listings WHERE 1 = 0")
	require.NoError(t, err)
	assert.Equal(t, []string{"Food_ID", "Food_Name"}, res.Columns)
	assert.NotNil(t, res.Rows)
	assert.Empty(t, res.Rows)
}

func TestRunBadSQLIsQueryFailure(t *testing.T) {
	runner := NewRunner(newTestStore(t, false))
	text := "SELEC Food_ID FROM food_listings"

	_, err := runner.Run(context.Background(), text)
	require.Error(t, err)
	assert.True(t, errors.Is(err, apperror.ErrQuery))

	appErr, ok := apperror.As(err)
	require.True(t, ok)
	assert.Equal(t, text, appErr.Query)
}

func TestRunUnknownDriverIsConnectionFailure(t *testing.T) {
	store := database.NewStore(config.DatabaseConfig{Driver: "oracle"})
	_, _, err := NewRunner(store).RunReport(context.Background(), "expired")
	assert.True(t, errors.Is(err, apperror.ErrConnection))
}

func TestFormatValue(t *testing.T) {
	assert.Equal(t, "", FormatValue(nil))
	assert.Equal(t, "12", FormatValue(int64(12)))
	assert.Equal(t, "2.5", FormatValue(2.5))
	assert.Equal(t, "Farm", FormatValue("Farm"))
}

func TestRunReadOnly(t *testing.T) {
	runner := NewRunner(newTestStore(t, true))

	res, err := runner.RunReadOnly(context.Background(), "SELECT COUNT(*) AS n FROM food_listings WHERE Quantity > ?", 0)
	require.NoError(t, err)
	n, ok := Number(res.Rows[0]["n"])
	require.True(t, ok)
	assert.Equal(t, float64(database.SampleListingCount), n)

	_, err = runner.RunReadOnly(context.Background(), "SELECT nope FROM food_listings")
	assert.True(t, errors.Is(err, apperror.ErrQuery))
}
