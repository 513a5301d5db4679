package catalog

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"time"

	"realty-catalog/internal/archive"
	"realty-catalog/internal/favorites"
	"realty-catalog/internal/models"
	"realty-catalog/internal/search"
)

// Policy holds the configurable rules the catalog does not hard-code.
type Policy struct {
	// AcceptRejectsOthers rejects every other open offer on a listing when
	// one offer is accepted.
	AcceptRejectsOthers bool
}

// Service is the catalog facade: the single entry point composing the entity
// store, the favorites index, the search pipeline and the archive journal.
// It is role-agnostic; callers bring their own authorization.
type Service struct {
	store     *Store
	favorites *favorites.Index
	archive   archive.Archive // nil disables journaling
	policy    Policy
}

// NewService wires the facade. archive may be nil.
func NewService(store *Store, favs *favorites.Index, arch archive.Archive, policy Policy) *Service {
	return &Service{
		store:     store,
		favorites: favs,
		archive:   arch,
		policy:    policy,
	}
}

// Store exposes the underlying entity store for wiring (scheduler, seeding).
func (s *Service) Store() *Store {
	return s.store
}

// Generation returns the store's mutation counter.
func (s *Service) Generation() int64 {
	return s.store.Generation()
}

// Search filters and orders a consistent snapshot of the catalog.
func (s *Service) Search(ctx context.Context, f search.Filters, sortBy search.SortKey) ([]models.Property, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return search.Query(s.store.Snapshot(), f, sortBy)
}

// GetProperty returns the listing and counts the view.
func (s *Service) GetProperty(ctx context.Context, id string) (models.Property, error) {
	return s.store.RecordView(id)
}

// CreateProperty inserts a new listing. Server-assigned fields in data
// (id, timestamps, counters, ledgers) are ignored.
func (s *Service) CreateProperty(ctx context.Context, data models.Property) (models.Property, error) {
	p, err := s.store.Create(data)
	if err != nil {
		return models.Property{}, err
	}
	s.record(models.EventPropertyCreated, p.ID, map[string]any{
		"title": p.Title,
		"price": p.Price,
		"type":  p.Type,
	})
	return p, nil
}

// UpdateProperty merges the partial update. A non-nil expectedVersion makes
// the write optimistic: a stale version is rejected with a conflict.
func (s *Service) UpdateProperty(ctx context.Context, id string, upd models.PropertyUpdate, expectedVersion *int64) (models.Property, error) {
	p, err := s.store.Update(id, upd, expectedVersion)
	if err != nil {
		return models.Property{}, err
	}
	s.record(models.EventPropertyUpdated, p.ID, upd)
	return p, nil
}

// DeleteProperty removes the listing and its ledgers.
func (s *Service) DeleteProperty(ctx context.Context, id string) error {
	if err := s.store.Delete(id); err != nil {
		return err
	}
	s.record(models.EventPropertyDeleted, id, nil)
	return nil
}

// OfferInput carries the caller-supplied fields of a new offer.
type OfferInput struct {
	BuyerID   string  `json:"buyer_id"`
	BuyerName string  `json:"buyer_name"`
	Amount    float64 `json:"amount"`
	Message   string  `json:"message"`
}

// SubmitOffer appends a Pending offer to the listing's ledger and counts the
// inquiry.
func (s *Service) SubmitOffer(ctx context.Context, propertyID string, in OfferInput) (models.Offer, error) {
	if in.Amount < 0 {
		return models.Offer{}, fmt.Errorf("%w: offer amount must be non-negative", models.ErrValidation)
	}

	now := time.Now()
	offer := models.Offer{
		ID:        NewID(),
		BuyerID:   in.BuyerID,
		BuyerName: in.BuyerName,
		Amount:    in.Amount,
		Status:    models.OfferStatusPending,
		Message:   in.Message,
		CreatedAt: now,
		History:   []models.OfferTransition{{Status: models.OfferStatusPending, At: now}},
	}

	_, err := s.store.apply(propertyID, nil, func(p *models.Property) error {
		p.Offers = append(p.Offers, offer)
		p.Inquiries++
		return nil
	})
	if err != nil {
		return models.Offer{}, err
	}

	s.record(models.EventOfferSubmitted, propertyID, map[string]any{
		"offer_id": offer.ID,
		"buyer_id": offer.BuyerID,
		"amount":   offer.Amount,
	})
	return offer, nil
}

// ResolveOffer transitions an offer out of its awaiting state. Accepted and
// Rejected are terminal; Countered re-arms the offer. Transitions from a
// terminal state are never allowed. History is appended, never rewritten.
func (s *Service) ResolveOffer(ctx context.Context, propertyID, offerID string, decision models.OfferStatus) (models.Offer, error) {
	switch decision {
	case models.OfferStatusAccepted, models.OfferStatusRejected, models.OfferStatusCountered:
	default:
		return models.Offer{}, fmt.Errorf("%w: %q is not an offer decision", models.ErrValidation, decision)
	}

	var resolved models.Offer
	_, err := s.store.apply(propertyID, nil, func(p *models.Property) error {
		idx := -1
		for i := range p.Offers {
			if p.Offers[i].ID == offerID {
				idx = i
				break
			}
		}
		if idx < 0 {
			return fmt.Errorf("offer %s: %w", offerID, models.ErrNotFound)
		}
		if p.Offers[idx].Status.Terminal() {
			return fmt.Errorf("%w: offer %s is already %s", models.ErrValidation, offerID, p.Offers[idx].Status)
		}

		now := time.Now()
		p.Offers[idx].Status = decision
		p.Offers[idx].History = append(p.Offers[idx].History,
			models.OfferTransition{Status: decision, At: now})

		if decision == models.OfferStatusAccepted && s.policy.AcceptRejectsOthers {
			for i := range p.Offers {
				if i == idx || p.Offers[i].Status.Terminal() {
					continue
				}
				p.Offers[i].Status = models.OfferStatusRejected
				p.Offers[i].History = append(p.Offers[i].History,
					models.OfferTransition{Status: models.OfferStatusRejected, At: now})
			}
		}

		resolved = p.Offers[idx].Clone()
		return nil
	})
	if err != nil {
		return models.Offer{}, err
	}

	s.record(models.EventOfferResolved, propertyID, map[string]any{
		"offer_id": offerID,
		"decision": decision,
	})
	return resolved, nil
}

// ViewingInput carries the caller-supplied fields of a new viewing.
type ViewingInput struct {
	UserID   string `json:"user_id"`
	UserName string `json:"user_name"`
	Date     string `json:"date"`
	Time     string `json:"time"`
	Notes    string `json:"notes"`
}

// ScheduleViewing appends a Scheduled viewing to the listing's ledger and
// counts the inquiry.
func (s *Service) ScheduleViewing(ctx context.Context, propertyID string, in ViewingInput) (models.Viewing, error) {
	if in.Date == "" || in.Time == "" {
		return models.Viewing{}, fmt.Errorf("%w: viewing date and time are required", models.ErrValidation)
	}

	now := time.Now()
	viewing := models.Viewing{
		ID:       NewID(),
		UserID:   in.UserID,
		UserName: in.UserName,
		Date:     in.Date,
		Time:     in.Time,
		Status:   models.ViewingStatusScheduled,
		Notes:    in.Notes,
		History:  []models.ViewingTransition{{Status: models.ViewingStatusScheduled, At: now}},
	}

	_, err := s.store.apply(propertyID, nil, func(p *models.Property) error {
		p.Viewings = append(p.Viewings, viewing)
		p.Inquiries++
		return nil
	})
	if err != nil {
		return models.Viewing{}, err
	}

	s.record(models.EventViewingScheduled, propertyID, map[string]any{
		"viewing_id": viewing.ID,
		"user_id":    viewing.UserID,
		"date":       viewing.Date,
		"time":       viewing.Time,
	})
	return viewing, nil
}

// CompleteViewing marks a scheduled viewing as completed.
func (s *Service) CompleteViewing(ctx context.Context, propertyID, viewingID string) (models.Viewing, error) {
	return s.transitionViewing(propertyID, viewingID, models.ViewingStatusCompleted, models.EventViewingCompleted)
}

// CancelViewing marks a scheduled viewing as cancelled.
func (s *Service) CancelViewing(ctx context.Context, propertyID, viewingID string) (models.Viewing, error) {
	return s.transitionViewing(propertyID, viewingID, models.ViewingStatusCancelled, models.EventViewingCancelled)
}

func (s *Service) transitionViewing(propertyID, viewingID string, to models.ViewingStatus, eventType string) (models.Viewing, error) {
	var out models.Viewing
	_, err := s.store.apply(propertyID, nil, func(p *models.Property) error {
		for i := range p.Viewings {
			if p.Viewings[i].ID != viewingID {
				continue
			}
			if p.Viewings[i].Status.Terminal() {
				return fmt.Errorf("%w: viewing %s is already %s", models.ErrValidation, viewingID, p.Viewings[i].Status)
			}
			p.Viewings[i].Status = to
			p.Viewings[i].History = append(p.Viewings[i].History,
				models.ViewingTransition{Status: to, At: time.Now()})
			out = p.Viewings[i].Clone()
			return nil
		}
		return fmt.Errorf("viewing %s: %w", viewingID, models.ErrNotFound)
	})
	if err != nil {
		return models.Viewing{}, err
	}

	s.record(eventType, propertyID, map[string]any{"viewing_id": viewingID})
	return out, nil
}

// ToggleFavorite flips the user's favorite mark on an existing listing and
// returns the new membership. Unknown listings are rejected.
func (s *Service) ToggleFavorite(ctx context.Context, userID, propertyID string) (bool, error) {
	if _, err := s.store.Get(propertyID); err != nil {
		return false, err
	}
	return s.favorites.Toggle(userID, propertyID), nil
}

// IsFavorite reports the user's current mark on the listing.
func (s *Service) IsFavorite(ctx context.Context, userID, propertyID string) bool {
	return s.favorites.Contains(userID, propertyID)
}

// ListFavorites returns the user's favorited listing ids.
func (s *Service) ListFavorites(ctx context.Context, userID string) []string {
	return s.favorites.List(userID)
}

// Stats summarizes the live catalog for the admin surface.
type Stats struct {
	Properties int            `json:"properties"`
	ByStatus   map[string]int `json:"by_status"`
	ByType     map[string]int `json:"by_type"`
	Generation int64          `json:"generation"`
}

// Stats counts listings by status and type.
func (s *Service) Stats() Stats {
	stats := Stats{
		ByStatus: make(map[string]int),
		ByType:   make(map[string]int),
	}
	for p := range s.store.List() {
		stats.Properties++
		stats.ByStatus[string(p.Status)]++
		stats.ByType[string(p.Type)]++
	}
	stats.Generation = s.store.Generation()
	return stats
}

// record journals the event when an archive is configured. Archive failures
// are logged, never surfaced: the in-memory catalog is authoritative.
func (s *Service) record(eventType, propertyID string, payload any) {
	if s.archive == nil {
		return
	}
	var body string
	if payload != nil {
		if b, err := json.Marshal(payload); err == nil {
			body = string(b)
		}
	}
	event := &models.CatalogEvent{
		PropertyID: propertyID,
		EventType:  eventType,
		Payload:    body,
		RecordedAt: time.Now(),
	}
	if err := s.archive.RecordEvent(event); err != nil {
		log.Printf("Catalog: failed to archive %s for %s: %v", eventType, propertyID, err)
	}
}
