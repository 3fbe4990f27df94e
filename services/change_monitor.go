package services

import (
	"context"
	"fmt"
	"hash/fnv"
	"sync"
	"time"

	"github.com/yeremiapane/food-listing-dashboard/models"
	"github.com/yeremiapane/food-listing-dashboard/utils"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// ActionExternal marks listing changes made outside the API, for example by
// another tool writing to the same database.
const ActionExternal = "external"

type Connector interface {
	Conn(ctx context.Context) (*gorm.DB, error)
}

type ListingNotifier interface {
	NotifyListingChange(action string, id int64)
}

// listingFingerprint summarises every stored column of every listing, so an
// edit to any field moves Digest.
type listingFingerprint struct {
	Listings int64
	MaxID    int64
	Digest   uint64
}

// ChangeMonitor forwards API change notifications and polls the listings
// table so that writes from elsewhere reach the dashboards too.
type ChangeMonitor struct {
	store    Connector
	notifier ListingNotifier
	Interval time.Duration

	mu      sync.Mutex
	last    listingFingerprint
	known   bool
	pending int

	stopOnce sync.Once
	stopChan chan struct{}
	done     chan struct{}
}

func NewChangeMonitor(store Connector, notifier ListingNotifier, interval time.Duration) *ChangeMonitor {
	return &ChangeMonitor{
		store:    store,
		notifier: notifier,
		Interval: interval,
		stopChan: make(chan struct{}),
		done:     make(chan struct{}),
	}
}

// NotifyListingChange passes an API mutation on and remembers it so the next
// poll does not announce the same change again.
func (cm *ChangeMonitor) NotifyListingChange(action string, id int64) {
	cm.mu.Lock()
	cm.pending++
	cm.mu.Unlock()
	cm.notifier.NotifyListingChange(action, id)
}

// Start polls every Interval until Stop or ctx is done. A zero interval
// leaves polling off.
func (cm *ChangeMonitor) Start(ctx context.Context) {
	if cm.Interval <= 0 {
		close(cm.done)
		return
	}
	go func() {
		defer close(cm.done)
		ticker := time.NewTicker(cm.Interval)
		defer ticker.Stop()

		for {
			select {
			case <-ticker.C:
				if err := cm.CheckChanges(ctx); err != nil {
					utils.ErrorLogger.Warnf("listing change poll: %v", err)
				}
			case <-cm.stopChan:
				return
			case <-ctx.Done():
				return
			}
		}
	}()
}

func (cm *ChangeMonitor) Stop() {
	cm.stopOnce.Do(func() { close(cm.stopChan) })
	<-cm.done
}

// CheckChanges compares the listings fingerprint with the previous poll and
// broadcasts when it moved for a reason the API did not report.
func (cm *ChangeMonitor) CheckChanges(ctx context.Context) error {
	fp, err := cm.fingerprint(ctx)
	if err != nil {
		return err
	}

	cm.mu.Lock()
	changed := cm.known && fp != cm.last
	announced := cm.pending > 0
	cm.last = fp
	cm.known = true
	cm.pending = 0
	cm.mu.Unlock()

	if changed && !announced {
		cm.notifier.NotifyListingChange(ActionExternal, fp.MaxID)
	}
	return nil
}

func (cm *ChangeMonitor) fingerprint(ctx context.Context) (listingFingerprint, error) {
	var fp listingFingerprint
	db, err := cm.store.Conn(ctx)
	if err != nil {
		return fp, err
	}

	rows, err := db.Model(&models.FoodListing{}).
		Order(clause.OrderByColumn{Column: clause.Column{Name: "Food_ID"}}).
		Rows()
	if err != nil {
		return fp, fmt.Errorf("read listings: %w", err)
	}
	defer rows.Close()

	h := fnv.New64a()
	for rows.Next() {
		var l models.FoodListing
		if err := db.ScanRows(rows, &l); err != nil {
			return fp, fmt.Errorf("scan listing: %w", err)
		}
		fmt.Fprintf(h, "%d\x00%s\x00%d\x00%s\x00%d\x00%s\x00%s\x00%s\x00%s\x00%s\x1e",
			l.ID, l.Name, l.Quantity, l.ExpiryDate, l.ProviderID, l.ProviderType,
			l.Location, l.FoodType, l.MealType, l.ListedDate)
		fp.Listings++
		if l.ID > fp.MaxID {
			fp.MaxID = l.ID
		}
	}
	if err := rows.Err(); err != nil {
		return fp, fmt.Errorf("read listings: %w", err)
	}
	fp.Digest = h.Sum64()
	return fp, nil
}
