package reports

import (
	"fmt"
	"strings"
	"time"

	"github.com/yeremiapane/food-listing-dashboard/models"
)

const (
	CategoryExpiry       = "Expiry"
	CategoryInventory    = "Inventory"
	CategoryProviders    = "Providers"
	CategoryDistribution = "Distribution"
	CategoryClaims       = "Claims"
)

// Query is report SQL ready to run: placeholders in Text, values in Args.
type Query struct {
	Text string        `json:"text"`
	Args []interface{} `json:"args,omitempty"`
}

type buildFunc func(d Dialect, today models.Date) (string, []interface{})

// Report is one entry of the fixed catalog.
type Report struct {
	Key         string   `json:"key"`
	Label       string   `json:"label"`
	Category    string   `json:"category"`
	Description string   `json:"description"`
	Columns     []string `json:"columns"`

	build buildFunc
}

// Build renders the report for a dialect with time windows anchored on today.
func (r Report) Build(d Dialect, today time.Time) Query {
	text, args := r.build(d, models.NewDate(today))
	idents := make([]string, 0, len(schemaColumns)+len(r.Columns))
	idents = append(idents, schemaColumns...)
	idents = append(idents, r.Columns...)
	return Query{Text: d.QuoteIdentifiers(text, idents), Args: args}
}

// schemaColumns are the mixed case column names of every reporting table.
var schemaColumns = []string{
	"Food_ID", "Food_Name", "Quantity", "Expiry_Date", "Provider_ID", "Provider_Type",
	"Location", "Food_Type", "Meal_Type", "Listed_Date",
	"Name", "Type", "City", "Receiver_ID", "Claim_ID", "Status", "Timestamp",
}

var listingSummary = []string{"Food_ID", "Food_Name", "Quantity", "Expiry_Date", "Provider_Type", "Location"}

func staticSQL(text string) buildFunc {
	return func(Dialect, models.Date) (string, []interface{}) {
		return text, nil
	}
}

// sqlList renders constant strings as a quoted SQL list.
func sqlList(values []string) string {
	quoted := make([]string, len(values))
	for i, v := range values {
		quoted[i] = "'" + strings.ReplaceAll(v, "'", "''") + "'"
	}
	return strings.Join(quoted, ", ")
}

// recentMonths returns YYYY-MM keys for the month of today and the n-1
// months before it, newest first.
func recentMonths(today models.Date, n int) []interface{} {
	first := time.Date(today.Year(), today.Month(), 1, 0, 0, 0, 0, time.UTC)
	out := make([]interface{}, n)
	for i := 0; i < n; i++ {
		out[i] = first.AddDate(0, -i, 0).Format("2006-01")
	}
	return out
}

var catalog = []Report{
	{
		Key:         "expiring-soon",
		Label:       "Food Expiring Soon (Next 3 Days)",
		Category:    CategoryExpiry,
		Description: "Listings whose expiry date falls between today and three days from now.",
		Columns:     listingSummary,
		build: func(d Dialect, today models.Date) (string, []interface{}) {
			return `SELECT Food_ID, Food_Name, Quantity, Expiry_Date, Provider_Type, Location
FROM food_listings
WHERE Expiry_Date BETWEEN ? AND ?
ORDER BY Expiry_Date, Food_ID`, []interface{}{today.String(), today.AddDays(3).String()}
		},
	},
	{
		Key:         "food-by-type",
		Label:       "Food Available by Type",
		Category:    CategoryInventory,
		Description: "Listing count and total quantity per food type.",
		Columns:     []string{"Food_Type", "Count", "Total_Quantity"},
		build: staticSQL(`SELECT Food_Type, COUNT(*) AS Count, SUM(Quantity) AS Total_Quantity
FROM food_listings
GROUP BY Food_Type
ORDER BY Total_Quantity DESC`),
	},
	{
		Key:         "provider-contribution",
		Label:       "Provider Contribution Summary",
		Category:    CategoryProviders,
		Description: "Listings and total quantity contributed by each provider type.",
		Columns:     []string{"Provider_Type", "Listings", "Total_Quantity"},
		build: staticSQL(`SELECT Provider_Type, COUNT(*) AS Listings, SUM(Quantity) AS Total_Quantity
FROM food_listings
GROUP BY Provider_Type
ORDER BY Total_Quantity DESC`),
	},
	{
		Key:         "food-by-meal-type",
		Label:       "Food by Meal Type",
		Category:    CategoryInventory,
		Description: "Listing count and total quantity per meal type.",
		Columns:     []string{"Meal_Type", "Count", "Total_Quantity"},
		build: staticSQL(`SELECT Meal_Type, COUNT(*) AS Count, SUM(Quantity) AS Total_Quantity
FROM food_listings
GROUP BY Meal_Type
ORDER BY Total_Quantity DESC`),
	},
	{
		Key:         "location-distribution",
		Label:       "Location Distribution",
		Category:    CategoryDistribution,
		Description: "Listing count and total quantity per pickup location.",
		Columns:     []string{"Location", "Count", "Total_Quantity"},
		build: staticSQL(`SELECT Location, COUNT(*) AS Count, SUM(Quantity) AS Total_Quantity
FROM food_listings
GROUP BY Location
ORDER BY Count DESC, Location`),
	},
	{
		Key:         "expired",
		Label:       "Expired Food Items",
		Category:    CategoryExpiry,
		Description: "Listings whose expiry date is before today, most recent first.",
		Columns:     listingSummary,
		build: func(d Dialect, today models.Date) (string, []interface{}) {
			return `SELECT Food_ID, Food_Name, Quantity, Expiry_Date, Provider_Type, Location
FROM food_listings
WHERE Expiry_Date < ?
ORDER BY Expiry_Date DESC`, []interface{}{today.String()}
		},
	},
	{
		Key:         "longest-shelf-life",
		Label:       "Food Items with Longest Shelf Life",
		Category:    CategoryExpiry,
		Description: "Up to 20 unexpired listings with the most days left.",
		Columns:     []string{"Food_ID", "Food_Name", "Quantity", "Expiry_Date", "Days_Until_Expiry"},
		build: func(d Dialect, today models.Date) (string, []interface{}) {
			return fmt.Sprintf(`SELECT Food_ID, Food_Name, Quantity, Expiry_Date, %s AS Days_Until_Expiry
FROM food_listings
WHERE Expiry_Date > ?
ORDER BY Days_Until_Expiry DESC
LIMIT 20`, d.DaysBetween("Expiry_Date", "?")), []interface{}{today.String(), today.String()}
		},
	},
	{
		Key:         "low-quantity",
		Label:       "Low Quantity Items (Less than 10)",
		Category:    CategoryInventory,
		Description: "Unexpired listings with fewer than 10 units.",
		Columns:     listingSummary,
		build: func(d Dialect, today models.Date) (string, []interface{}) {
			return `SELECT Food_ID, Food_Name, Quantity, Expiry_Date, Provider_Type, Location
FROM food_listings
WHERE Quantity < 10 AND Expiry_Date > ?
ORDER BY Quantity`, []interface{}{today.String()}
		},
	},
	{
		Key:         "monthly-trends",
		Label:       "Monthly Food Entry Trends",
		Category:    CategoryExpiry,
		Description: "Listings and quantity expiring in each of the last twelve months.",
		Columns:     []string{"Month", "Listings", "Total_Quantity"},
		build: func(d Dialect, today models.Date) (string, []interface{}) {
			months := recentMonths(today, 12)
			selects := make([]string, len(months))
			for i := range months {
				if i == 0 {
					selects[i] = "SELECT ? AS Month"
				} else {
					selects[i] = "SELECT ?"
				}
			}
			return fmt.Sprintf(`SELECT months.Month AS Month, COUNT(fl.Food_ID) AS Listings, COALESCE(SUM(fl.Quantity), 0) AS Total_Quantity
FROM (%s) months
LEFT JOIN food_listings fl ON %s = months.Month
GROUP BY months.Month
ORDER BY months.Month DESC`, strings.Join(selects, " UNION ALL "), d.YearMonth("fl.Expiry_Date")), months
		},
	},
	{
		Key:         "top-providers-by-quantity",
		Label:       "Top 10 Providers by Quantity",
		Category:    CategoryProviders,
		Description: "The ten providers with the largest total quantity listed.",
		Columns:     []string{"Provider_Type", "Provider_ID", "Listings", "Total_Quantity"},
		build: staticSQL(`SELECT Provider_Type, Provider_ID, COUNT(*) AS Listings, SUM(Quantity) AS Total_Quantity
FROM food_listings
GROUP BY Provider_Type, Provider_ID
ORDER BY Total_Quantity DESC
LIMIT 10`),
	},
	{
		Key:         "diversity-by-location",
		Label:       "Food Diversity by Location",
		Category:    CategoryDistribution,
		Description: "Number of distinct food types offered at each location.",
		Columns:     []string{"Location", "Food_Type_Count"},
		build: staticSQL(`SELECT Location, COUNT(DISTINCT Food_Type) AS Food_Type_Count
FROM food_listings
GROUP BY Location
ORDER BY Food_Type_Count DESC, Location`),
	},
	{
		Key:         "avg-expiry-by-type",
		Label:       "Average Expiry Timeline by Food Type",
		Category:    CategoryExpiry,
		Description: "Average days until expiry per food type over unexpired listings.",
		Columns:     []string{"Food_Type", "Avg_Days_Until_Expiry"},
		build: func(d Dialect, today models.Date) (string, []interface{}) {
			return fmt.Sprintf(`SELECT Food_Type, ROUND(AVG(%s * 1.0), 1) AS Avg_Days_Until_Expiry
FROM food_listings
WHERE Expiry_Date > ?
GROUP BY Food_Type
ORDER BY Avg_Days_Until_Expiry DESC`, d.DaysBetween("Expiry_Date", "?")), []interface{}{today.String(), today.String()}
		},
	},
	{
		Key:         "recently-added",
		Label:       "Recently Added Items",
		Category:    CategoryInventory,
		Description: "The 20 most recently created listings.",
		Columns:     []string{"Food_ID", "Food_Name", "Quantity", "Expiry_Date", "Provider_Type", "Location", "Listed_Date"},
		build: staticSQL(`SELECT Food_ID, Food_Name, Quantity, Expiry_Date, Provider_Type, Location, Listed_Date
FROM food_listings
ORDER BY Food_ID DESC
LIMIT 20`),
	},
	{
		Key:         "quantity-distribution",
		Label:       "Quantity Distribution by Food Type",
		Category:    CategoryInventory,
		Description: "Low (<10), medium (10-50) and high (>50) stock counts per food type.",
		Columns:     []string{"Food_Type", "Low_Stock", "Medium_Stock", "High_Stock", "Total_Quantity"},
		build: staticSQL(`SELECT Food_Type,
  SUM(CASE WHEN Quantity < 10 THEN 1 ELSE 0 END) AS Low_Stock,
  SUM(CASE WHEN Quantity BETWEEN 10 AND 50 THEN 1 ELSE 0 END) AS Medium_Stock,
  SUM(CASE WHEN Quantity > 50 THEN 1 ELSE 0 END) AS High_Stock,
  SUM(Quantity) AS Total_Quantity
FROM food_listings
GROUP BY Food_Type
ORDER BY Total_Quantity DESC`),
	},
	{
		Key:         "inventory-by-location-type",
		Label:       "Inventory by Location and Food Type",
		Category:    CategoryDistribution,
		Description: "Items and quantity for every location and food type pair.",
		Columns:     []string{"Location", "Food_Type", "Items", "Total_Quantity"},
		build: staticSQL(`SELECT Location, Food_Type, COUNT(*) AS Items, SUM(Quantity) AS Total_Quantity
FROM food_listings
GROUP BY Location, Food_Type
ORDER BY Location, Total_Quantity DESC`),
	},
	{
		Key:         "provider-type-distribution",
		Label:       "Provider Type Distribution",
		Category:    CategoryProviders,
		Description: "Listings per known provider type, with unlisted types grouped as Other.",
		Columns:     []string{"Provider_Category", "Count", "Total_Quantity"},
		build: staticSQL(fmt.Sprintf(`SELECT Provider_Category, COUNT(*) AS Count, SUM(Quantity) AS Total_Quantity
FROM (
  SELECT CASE WHEN Provider_Type IN (%s) THEN Provider_Type ELSE 'Other' END AS Provider_Category, Quantity
  FROM food_listings
) categorized
GROUP BY Provider_Category
ORDER BY Total_Quantity DESC`, sqlList(models.ProviderTypes))),
	},
	{
		Key:         "diet-category",
		Label:       "Non-Vegetarian vs Vegetarian Inventory",
		Category:    CategoryInventory,
		Description: "Items and quantity split between non-vegetarian and everything else.",
		Columns:     []string{"Diet_Category", "Items", "Total_Quantity"},
		build: staticSQL(`SELECT Diet_Category, COUNT(*) AS Items, SUM(Quantity) AS Total_Quantity
FROM (
  SELECT CASE WHEN Food_Type = 'Non-Vegetarian' THEN 'Non-Vegetarian' ELSE 'Vegetarian/Vegan' END AS Diet_Category, Quantity
  FROM food_listings
) diets
GROUP BY Diet_Category
ORDER BY Total_Quantity DESC`),
	},
	{
		Key:         "expiring-4-7-days",
		Label:       "Food Expiring in 4-7 Days",
		Category:    CategoryExpiry,
		Description: "Listings expiring between four and seven days from today.",
		Columns:     listingSummary,
		build: func(d Dialect, today models.Date) (string, []interface{}) {
			return `SELECT Food_ID, Food_Name, Quantity, Expiry_Date, Provider_Type, Location
FROM food_listings
WHERE Expiry_Date BETWEEN ? AND ?
ORDER BY Expiry_Date, Food_ID`, []interface{}{today.AddDays(4).String(), today.AddDays(7).String()}
		},
	},
	{
		Key:         "expiry-timeline",
		Label:       "Expiry Timeline Analysis",
		Category:    CategoryExpiry,
		Description: "Listings bucketed by time to expiry, from expired to over 30 days.",
		Columns:     []string{"Expiry_Period", "Count", "Total_Quantity"},
		build: func(d Dialect, today models.Date) (string, []interface{}) {
			return `SELECT Expiry_Period, COUNT(*) AS Count, SUM(Quantity) AS Total_Quantity
FROM (
  SELECT CASE
      WHEN Expiry_Date < ? THEN 'Expired'
      WHEN Expiry_Date <= ? THEN '0-3 Days'
      WHEN Expiry_Date <= ? THEN '4-7 Days'
      WHEN Expiry_Date <= ? THEN '1-2 Weeks'
      WHEN Expiry_Date <= ? THEN '2-4 Weeks'
      ELSE 'Over 30 Days'
    END AS Expiry_Period, Quantity, Expiry_Date
  FROM food_listings
) buckets
GROUP BY Expiry_Period
ORDER BY MIN(Expiry_Date)`, []interface{}{
				today.String(),
				today.AddDays(3).String(),
				today.AddDays(7).String(),
				today.AddDays(14).String(),
				today.AddDays(30).String(),
			}
		},
	},
	{
		Key:         "location-capacity",
		Label:       "Location Capacity Estimate",
		Category:    CategoryDistribution,
		Description: "Item count, total quantity and average quantity per item for each location.",
		Columns:     []string{"Location", "Item_Count", "Total_Quantity", "Avg_Quantity_Per_Item"},
		build: func(d Dialect, _ models.Date) (string, []interface{}) {
			return fmt.Sprintf(`SELECT Location, COUNT(*) AS Item_Count, SUM(Quantity) AS Total_Quantity, %s AS Avg_Quantity_Per_Item
FROM food_listings
GROUP BY Location
ORDER BY Total_Quantity DESC`, d.IntDiv("SUM(Quantity)", "COUNT(*)")), nil
		},
	},
	{
		Key:         "provider-performance",
		Label:       "Provider Performance Analysis",
		Category:    CategoryProviders,
		Description: "Unique providers, listings and quantity per provider type with per-provider averages.",
		Columns: []string{"Provider_Type", "Unique_Providers", "Total_Listings", "Avg_Listings_Per_Provider",
			"Total_Quantity", "Avg_Quantity_Per_Provider"},
		build: staticSQL(`SELECT Provider_Type,
  COUNT(DISTINCT Provider_ID) AS Unique_Providers,
  COUNT(*) AS Total_Listings,
  ROUND(COUNT(*) * 1.0 / COUNT(DISTINCT Provider_ID), 1) AS Avg_Listings_Per_Provider,
  SUM(Quantity) AS Total_Quantity,
  ROUND(SUM(Quantity) * 1.0 / COUNT(DISTINCT Provider_ID), 1) AS Avg_Quantity_Per_Provider
FROM food_listings
GROUP BY Provider_Type
ORDER BY Total_Quantity DESC`),
	},

	// Reports below read the provider, receiver and claim tables.
	{
		Key:         "providers-per-city",
		Label:       "Providers per City",
		Category:    CategoryProviders,
		Description: "Registered providers in each city.",
		Columns:     []string{"City", "Total_Providers"},
		build: staticSQL(`SELECT City, COUNT(*) AS Total_Providers
FROM food_providers
GROUP BY City
ORDER BY Total_Providers DESC, City`),
	},
	{
		Key:         "receivers-per-city",
		Label:       "Receivers per City",
		Category:    CategoryClaims,
		Description: "Registered receivers in each city.",
		Columns:     []string{"City", "Total_Receivers"},
		build: staticSQL(`SELECT City, COUNT(*) AS Total_Receivers
FROM food_receivers
GROUP BY City
ORDER BY Total_Receivers DESC, City`),
	},
	{
		Key:         "most-contributing-type",
		Label:       "Most Contributing Provider Type",
		Category:    CategoryProviders,
		Description: "Listings joined to registered providers, counted per provider type.",
		Columns:     []string{"Provider_Type", "Contributions"},
		build: staticSQL(`SELECT p.Type AS Provider_Type, COUNT(*) AS Contributions
FROM food_providers p
JOIN food_listings fl ON p.Provider_ID = fl.Provider_ID
GROUP BY p.Type
ORDER BY Contributions DESC`),
	},
	{
		Key:         "top-providers",
		Label:       "Top Providers by Listings",
		Category:    CategoryProviders,
		Description: "The five registered providers with the most listings.",
		Columns:     []string{"Provider_ID", "Name", "Type", "Listings_Count"},
		build: staticSQL(`SELECT p.Provider_ID AS Provider_ID, p.Name AS Name, p.Type AS Type, COUNT(*) AS Listings_Count
FROM food_providers p
JOIN food_listings fl ON p.Provider_ID = fl.Provider_ID
GROUP BY p.Provider_ID, p.Name, p.Type
ORDER BY Listings_Count DESC
LIMIT 5`),
	},
	{
		Key:         "popular-food-types",
		Label:       "Most Claimed Food Types",
		Category:    CategoryClaims,
		Description: "Claims per food type.",
		Columns:     []string{"Food_Type", "Claim_Count"},
		build: staticSQL(`SELECT fl.Food_Type AS Food_Type, COUNT(*) AS Claim_Count
FROM food_claims c
JOIN food_listings fl ON c.Food_ID = fl.Food_ID
GROUP BY fl.Food_Type
ORDER BY Claim_Count DESC`),
	},
	{
		Key:         "claims-status",
		Label:       "Claims by Status",
		Category:    CategoryClaims,
		Description: "Number of claims in each status.",
		Columns:     []string{"Status", "Count"},
		build: staticSQL(`SELECT Status, COUNT(*) AS Count
FROM food_claims
GROUP BY Status
ORDER BY Count DESC`),
	},
	{
		Key:         "most-active-receivers",
		Label:       "Most Active Receivers",
		Category:    CategoryClaims,
		Description: "The ten receivers with the most claims.",
		Columns:     []string{"Receiver_ID", "Name", "Type", "Claim_Count"},
		build: staticSQL(`SELECT r.Receiver_ID AS Receiver_ID, r.Name AS Name, r.Type AS Type, COUNT(*) AS Claim_Count
FROM food_receivers r
JOIN food_claims c ON r.Receiver_ID = c.Receiver_ID
GROUP BY r.Receiver_ID, r.Name, r.Type
ORDER BY Claim_Count DESC
LIMIT 10`),
	},
	{
		Key:         "avg-quantity-by-type",
		Label:       "Average Quantity by Food Type",
		Category:    CategoryInventory,
		Description: "Mean listing quantity per food type.",
		Columns:     []string{"Food_Type", "Avg_Quantity"},
		build: staticSQL(`SELECT Food_Type, ROUND(AVG(Quantity * 1.0), 1) AS Avg_Quantity
FROM food_listings
GROUP BY Food_Type
ORDER BY Avg_Quantity DESC`),
	},
	{
		Key:         "unclaimed-food",
		Label:       "Unclaimed Food",
		Category:    CategoryClaims,
		Description: "Listings without any claim, soonest expiry first.",
		Columns:     []string{"Food_ID", "Food_Name", "Quantity", "Expiry_Date", "Location", "Food_Type"},
		build: staticSQL(`SELECT fl.Food_ID AS Food_ID, fl.Food_Name AS Food_Name, fl.Quantity AS Quantity, fl.Expiry_Date AS Expiry_Date,
  fl.Location AS Location, fl.Food_Type AS Food_Type
FROM food_listings fl
LEFT JOIN food_claims c ON fl.Food_ID = c.Food_ID
WHERE c.Claim_ID IS NULL
ORDER BY fl.Expiry_Date`),
	},
	{
		Key:         "monthly-claim-trends",
		Label:       "Monthly Claim Trends",
		Category:    CategoryClaims,
		Description: "Claims recorded per calendar month.",
		Columns:     []string{"Month", "Claim_Count"},
		build: func(d Dialect, _ models.Date) (string, []interface{}) {
			return fmt.Sprintf(`SELECT %s AS Month, COUNT(*) AS Claim_Count
FROM food_claims
GROUP BY Month
ORDER BY Month`, d.YearMonth("Timestamp")), nil
		},
	},
	{
		Key:         "provider-receiver-connections",
		Label:       "Provider to Receiver Connections",
		Category:    CategoryClaims,
		Description: "How often each provider's food was claimed by each receiver.",
		Columns:     []string{"Provider_Name", "Receiver_Name", "Connection_Count"},
		build: staticSQL(`SELECT p.Name AS Provider_Name, r.Name AS Receiver_Name, COUNT(*) AS Connection_Count
FROM food_claims c
JOIN food_listings fl ON c.Food_ID = fl.Food_ID
JOIN food_providers p ON fl.Provider_ID = p.Provider_ID
JOIN food_receivers r ON c.Receiver_ID = r.Receiver_ID
GROUP BY p.Provider_ID, p.Name, r.Receiver_ID, r.Name
ORDER BY Connection_Count DESC
LIMIT 20`),
	},
	{
		Key:         "food-waste-reduction",
		Label:       "Food Waste Reduction",
		Category:    CategoryClaims,
		Description: "Total quantity available, claimed and unclaimed.",
		Columns:     []string{"Category", "Total_Quantity"},
		build: staticSQL(`SELECT 'Total Available' AS Category, COALESCE(SUM(fl.Quantity), 0) AS Total_Quantity
FROM food_listings fl
UNION ALL
SELECT 'Claimed', COALESCE(SUM(fl.Quantity), 0)
FROM food_listings fl
WHERE EXISTS (SELECT 1 FROM food_claims c WHERE c.Food_ID = fl.Food_ID)
UNION ALL
SELECT 'Unclaimed', COALESCE(SUM(fl.Quantity), 0)
FROM food_listings fl
WHERE NOT EXISTS (SELECT 1 FROM food_claims c WHERE c.Food_ID = fl.Food_ID)`),
	},
	{
		Key:         "receiver-type-distribution",
		Label:       "Receiver Type Distribution",
		Category:    CategoryClaims,
		Description: "Registered receivers per receiver type.",
		Columns:     []string{"Receiver_Type", "Count"},
		build: staticSQL(`SELECT Type AS Receiver_Type, COUNT(*) AS Count
FROM food_receivers
GROUP BY Type
ORDER BY Count DESC`),
	},
	{
		Key:         "claim-processing-time",
		Label:       "Claim Timing vs Expiry",
		Category:    CategoryClaims,
		Description: "Each claim with the number of days left before the claimed food expired.",
		Columns:     []string{"Claim_ID", "Food_ID", "Receiver_Name", "Provider_Name", "Status", "Timestamp", "Days_Before_Expiry"},
		build: func(d Dialect, _ models.Date) (string, []interface{}) {
			return fmt.Sprintf(`SELECT c.Claim_ID AS Claim_ID, c.Food_ID AS Food_ID, r.Name AS Receiver_Name, p.Name AS Provider_Name,
  c.Status AS Status, c.Timestamp AS Timestamp,
  %s AS Days_Before_Expiry
FROM food_claims c
JOIN food_listings fl ON c.Food_ID = fl.Food_ID
JOIN food_providers p ON fl.Provider_ID = p.Provider_ID
JOIN food_receivers r ON c.Receiver_ID = r.Receiver_ID
ORDER BY Days_Before_Expiry`, d.DaysBetween("fl.Expiry_Date", "c.Timestamp")), nil
		},
	},
	{
		Key:         "local-distribution",
		Label:       "Local Distribution",
		Category:    CategoryDistribution,
		Description: "Claims where provider and receiver are in the same city.",
		Columns:     []string{"Provider_City", "Local_Claims_Count"},
		build: staticSQL(`SELECT p.City AS Provider_City, COUNT(*) AS Local_Claims_Count
FROM food_claims c
JOIN food_listings fl ON c.Food_ID = fl.Food_ID
JOIN food_providers p ON fl.Provider_ID = p.Provider_ID
JOIN food_receivers r ON c.Receiver_ID = r.Receiver_ID
WHERE p.City = r.City
GROUP BY p.City
ORDER BY Local_Claims_Count DESC`),
	},
	{
		Key:         "top-food-receiver-combinations",
		Label:       "Top Food and Receiver Combinations",
		Category:    CategoryClaims,
		Description: "The most frequent receiver and food type pairs among claims.",
		Columns:     []string{"Receiver_Name", "Food_Type", "Claim_Count"},
		build: staticSQL(`SELECT r.Name AS Receiver_Name, fl.Food_Type AS Food_Type, COUNT(*) AS Claim_Count
FROM food_claims c
JOIN food_listings fl ON c.Food_ID = fl.Food_ID
JOIN food_receivers r ON c.Receiver_ID = r.Receiver_ID
GROUP BY r.Receiver_ID, r.Name, fl.Food_Type
ORDER BY Claim_Count DESC
LIMIT 15`),
	},
	{
		Key:         "seasonal-trends",
		Label:       "Seasonal Donation Trends",
		Category:    CategoryExpiry,
		Description: "Listings and quantity per calendar month of expiry across all years.",
		Columns:     []string{"Month", "Listing_Count", "Total_Quantity", "Avg_Quantity_Per_Listing"},
		build: func(d Dialect, _ models.Date) (string, []interface{}) {
			return fmt.Sprintf(`SELECT %s AS Month, COUNT(*) AS Listing_Count, SUM(fl.Quantity) AS Total_Quantity,
  ROUND(AVG(fl.Quantity * 1.0), 1) AS Avg_Quantity_Per_Listing
FROM food_listings fl
GROUP BY Month
ORDER BY Month`, d.Month("fl.Expiry_Date")), nil
		},
	},
	{
		Key:         "claim-rate-by-food-type",
		Label:       "Claim Rate by Food Type",
		Category:    CategoryClaims,
		Description: "Share of listings with a claim and average quantity per food type.",
		Columns:     []string{"Food_Type", "Item_Count", "Claim_Percentage", "Avg_Quantity_Per_Item"},
		build: staticSQL(`SELECT fl.Food_Type AS Food_Type, COUNT(*) AS Item_Count,
  ROUND(AVG(CASE WHEN c.Claim_ID IS NOT NULL THEN 1.0 ELSE 0.0 END) * 100, 1) AS Claim_Percentage,
  ROUND(AVG(fl.Quantity * 1.0), 1) AS Avg_Quantity_Per_Item
FROM food_listings fl
LEFT JOIN food_claims c ON fl.Food_ID = c.Food_ID
GROUP BY fl.Food_Type
ORDER BY Claim_Percentage DESC`),
	},
	{
		Key:         "claimed-by-location",
		Label:       "Food Waste Reduction by Location",
		Category:    CategoryDistribution,
		Description: "Claimed listings and quantity as a share of each location's total.",
		Columns: []string{"Location", "Total_Listings", "Claimed_Listings", "Claimed_Percentage",
			"Total_Quantity", "Claimed_Quantity"},
		build: staticSQL(`SELECT fl.Location AS Location,
  COUNT(fl.Food_ID) AS Total_Listings,
  COUNT(c.Claim_ID) AS Claimed_Listings,
  ROUND(COUNT(c.Claim_ID) * 100.0 / COUNT(fl.Food_ID), 1) AS Claimed_Percentage,
  SUM(fl.Quantity) AS Total_Quantity,
  SUM(CASE WHEN c.Claim_ID IS NOT NULL THEN fl.Quantity ELSE 0 END) AS Claimed_Quantity
FROM food_listings fl
LEFT JOIN food_claims c ON fl.Food_ID = c.Food_ID
GROUP BY fl.Location
ORDER BY Claimed_Percentage DESC, fl.Location`),
	},
}

var catalogIndex = func() map[string]int {
	idx := make(map[string]int, len(catalog))
	for i, r := range catalog {
		if _, dup := idx[r.Key]; dup {
			panic("duplicate report key " + r.Key)
		}
		idx[r.Key] = i
	}
	return idx
}()

// Catalog returns every report in display order.
func Catalog() []Report {
	out := make([]Report, len(catalog))
	copy(out, catalog)
	return out
}

func Lookup(key string) (Report, bool) {
	i, ok := catalogIndex[key]
	if !ok {
		return Report{}, false
	}
	return catalog[i], true
}

// ByLabel finds a report by its display label.
func ByLabel(label string) (Report, bool) {
	for _, r := range catalog {
		if r.Label == label {
			return r, true
		}
	}
	return Report{}, false
}
