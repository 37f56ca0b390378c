package listings

import (
	"context"
	"errors"
	"strings"
	"time"

	"staybook/internal/domain/shared/daterange"
	"staybook/internal/domain/shared/events"
	"staybook/internal/domain/shared/money"
)

var (
	ErrTitleRequired      = errors.New("listings: title is required")
	ErrOwnerRequired      = errors.New("listings: owner is required")
	ErrCapacity           = errors.New("listings: capacity must be at least 1")
	ErrNightlyRate        = errors.New("listings: nightly rate must be positive")
	ErrAvailabilityWindow = errors.New("listings: availability end must not precede availability start")
	ErrNotOwner           = errors.New("listings: actor is not the listing owner")
	ErrNotFound           = errors.New("listings: not found")
)

type ListingID string
type OwnerID string

type Listing struct {
	ID          ListingID
	Owner       OwnerID
	Title       string
	Description string
	Location    string
	NightlyRate money.Money
	Capacity    int
	Amenities   []string
	// Availability window bounds; zero time means the bound is not set.
	AvailableFrom time.Time
	AvailableTo   time.Time
	Available     bool
	Photos        []string
	CreatedAt     time.Time
	UpdatedAt     time.Time
	Version       int64
	events.EventRecorder
}

type Repository interface {
	ByID(ctx context.Context, id ListingID) (*Listing, error)
	Save(ctx context.Context, listing *Listing) error
	List(ctx context.Context, params ListParams) ([]*Listing, error)
}

type ListParams struct {
	Owner    OwnerID
	Location string
	Limit    int
	Offset   int
}

type CreateParams struct {
	ID            ListingID
	Owner         OwnerID
	Title         string
	Description   string
	Location      string
	NightlyRate   money.Money
	Capacity      int
	Amenities     []string
	AvailableFrom time.Time
	AvailableTo   time.Time
	Now           time.Time
}

func NewListing(params CreateParams) (*Listing, error) {
	if strings.TrimSpace(string(params.ID)) == "" {
		return nil, errors.New("listings: id is required")
	}
	if strings.TrimSpace(string(params.Owner)) == "" {
		return nil, ErrOwnerRequired
	}
	if strings.TrimSpace(params.Title) == "" {
		return nil, ErrTitleRequired
	}
	if params.Capacity < 1 {
		return nil, ErrCapacity
	}
	if params.NightlyRate.Amount <= 0 || params.NightlyRate.Currency == "" {
		return nil, ErrNightlyRate
	}
	if err := validateWindow(params.AvailableFrom, params.AvailableTo); err != nil {
		return nil, err
	}
	now := params.Now.UTC()
	listing := &Listing{
		ID:            params.ID,
		Owner:         params.Owner,
		Title:         strings.TrimSpace(params.Title),
		Description:   strings.TrimSpace(params.Description),
		Location:      strings.TrimSpace(params.Location),
		NightlyRate:   params.NightlyRate,
		Capacity:      params.Capacity,
		Amenities:     append([]string(nil), params.Amenities...),
		AvailableFrom: normalizeBound(params.AvailableFrom),
		AvailableTo:   normalizeBound(params.AvailableTo),
		Available:     true,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	listing.Record(ListingCreated{ListingID: listing.ID, OwnerID: listing.Owner, At: now})
	return listing, nil
}

type UpdateParams struct {
	Title         string
	Description   string
	Location      string
	NightlyRate   money.Money
	Capacity      int
	Amenities     []string
	AvailableFrom time.Time
	AvailableTo   time.Time
	Available     bool
	Now           time.Time
}

func (l *Listing) Update(params UpdateParams) error {
	if strings.TrimSpace(params.Title) == "" {
		return ErrTitleRequired
	}
	if params.Capacity < 1 {
		return ErrCapacity
	}
	if params.NightlyRate.Amount <= 0 || params.NightlyRate.Currency == "" {
		return ErrNightlyRate
	}
	if err := validateWindow(params.AvailableFrom, params.AvailableTo); err != nil {
		return err
	}
	l.Title = strings.TrimSpace(params.Title)
	l.Description = strings.TrimSpace(params.Description)
	l.Location = strings.TrimSpace(params.Location)
	l.NightlyRate = params.NightlyRate
	l.Capacity = params.Capacity
	l.Amenities = append([]string(nil), params.Amenities...)
	l.AvailableFrom = normalizeBound(params.AvailableFrom)
	l.AvailableTo = normalizeBound(params.AvailableTo)
	l.Available = params.Available
	l.UpdatedAt = params.Now.UTC()
	l.Record(ListingUpdated{ListingID: l.ID, At: l.UpdatedAt})
	return nil
}

func (l *Listing) AttachPhoto(url string, now time.Time) {
	url = strings.TrimSpace(url)
	if url == "" {
		return
	}
	l.Photos = append(l.Photos, url)
	l.UpdatedAt = now.UTC()
	l.Record(ListingUpdated{ListingID: l.ID, At: l.UpdatedAt})
}

// WindowCovers reports whether the requested range fits the availability
// window. Unset bounds leave that side open.
func (l *Listing) WindowCovers(dr daterange.DateRange) bool {
	if !l.AvailableFrom.IsZero() && dr.CheckIn.Before(l.AvailableFrom) {
		return false
	}
	if !l.AvailableTo.IsZero() && dr.CheckOut.After(l.AvailableTo) {
		return false
	}
	return true
}

func validateWindow(from, to time.Time) error {
	if from.IsZero() || to.IsZero() {
		return nil
	}
	if to.Before(from) {
		return ErrAvailabilityWindow
	}
	return nil
}

func normalizeBound(t time.Time) time.Time {
	if t.IsZero() {
		return time.Time{}
	}
	return t.UTC()
}
