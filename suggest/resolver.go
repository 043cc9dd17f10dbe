// Package suggest drives interactive address suggestion sessions. A session
// receives raw keystrokes, debounces them, queries whichever geocoding
// provider is available, and hands ranked suggestions to a subscriber.
package suggest

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/platterhq/delivery-shared/errors"
	"github.com/platterhq/delivery-shared/geo"
	"github.com/platterhq/delivery-shared/logging"
	"github.com/platterhq/delivery-shared/maps"
)

const defaultDebounce = 250 * time.Millisecond

// Provider names carried on suggestions.
const (
	ProviderGoogle    = "google"
	ProviderNominatim = "nominatim"
)

// Suggestion is a single place suggestion shown to the user.
type Suggestion struct {
	// ID identifies the place at the provider. For the primary provider
	// this is a place ID that must be resolved to coordinates; for the
	// secondary provider the coordinates are already embedded.
	ID string `json:"id"`

	// Label is the main display text.
	Label string `json:"label"`

	// SecondaryLabel is the supporting display text (city, region).
	SecondaryLabel string `json:"secondary_label,omitempty"`

	// Provider names the source provider.
	Provider string `json:"provider"`

	// Point is set when the provider returned coordinates up front.
	Point *geo.Point `json:"point,omitempty"`

	// Address is set when the provider returned a full address up front.
	Address *maps.AddressResult `json:"address,omitempty"`
}

// Config holds resolver tuning.
type Config struct {
	// Debounce is the quiet period after the last keystroke before a
	// fetch is issued. Zero means the default of 250ms.
	Debounce time.Duration

	// FetchTimeout bounds a single provider fetch. Zero means 10s.
	FetchTimeout time.Duration

	// MaxSuggestions caps the list handed to the subscriber.
	MaxSuggestions int
}

// Resolver turns a stream of query edits into place suggestions.
//
// Each edit restarts the debounce timer; only the last query within the
// quiet period triggers a fetch. Responses carry the sequence number of
// the query that produced them, and a response whose sequence is no
// longer current is discarded, so a slow early response can never
// overwrite the results of a later query. At most one fetch is in flight
// at a time; an edit arriving mid-fetch is queued and issued when the
// running fetch returns.
type Resolver struct {
	primary   *maps.Client
	secondary *maps.NominatimClient
	config    Config
	logger    *logging.Logger

	// sessionToken groups autocomplete calls with the place details call
	// that ends the session, which is how the primary provider bills.
	sessionToken string

	mu          sync.Mutex
	timer       *time.Timer
	seq         uint64
	inflight    bool
	pending     string
	pendingSeq  uint64
	suggestions []Suggestion
	onUpdate    func([]Suggestion)
	updates     [][]Suggestion
	notifying   bool
	closed      bool
}

// NewResolver creates a suggestion resolver. Either provider may be nil;
// the primary is used when it has credentials, the secondary otherwise.
func NewResolver(primary *maps.Client, secondary *maps.NominatimClient, config Config, logger *logging.Logger) *Resolver {
	if config.Debounce <= 0 {
		config.Debounce = defaultDebounce
	}
	if config.FetchTimeout <= 0 {
		config.FetchTimeout = 10 * time.Second
	}
	if config.MaxSuggestions <= 0 {
		config.MaxSuggestions = 5
	}
	if logger == nil {
		logger = logging.NewLogger("error")
	}

	return &Resolver{
		primary:      primary,
		secondary:    secondary,
		config:       config,
		logger:       logger,
		sessionToken: uuid.NewString(),
	}
}

// Subscribe registers the callback invoked whenever the suggestion list
// changes. Updates are delivered one at a time in the order they were
// produced, on a background goroutine; the callback must not block.
func (r *Resolver) Subscribe(fn func([]Suggestion)) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.onUpdate = fn
}

// Suggestions returns a snapshot of the current suggestion list.
func (r *Resolver) Suggestions() []Suggestion {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]Suggestion, len(r.suggestions))
	copy(out, r.suggestions)
	return out
}

// OnQueryChange feeds the resolver a new query string. Empty or
// whitespace-only input clears the suggestion list immediately and
// cancels any pending fetch without touching the network.
func (r *Resolver) OnQueryChange(text string) {
	text = strings.TrimSpace(text)

	r.mu.Lock()
	defer r.mu.Unlock()

	if r.closed {
		return
	}

	r.seq++
	seq := r.seq

	if r.timer != nil {
		r.timer.Stop()
		r.timer = nil
	}

	if text == "" {
		r.pending = ""
		r.setSuggestionsLocked(seq, nil)
		return
	}

	r.timer = time.AfterFunc(r.config.Debounce, func() {
		r.startFetch(text, seq)
	})
}

// Close cancels any pending timer. Calls after Close are no-ops.
func (r *Resolver) Close() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.closed = true
	if r.timer != nil {
		r.timer.Stop()
		r.timer = nil
	}
}

// ResolveSuggestion resolves a chosen suggestion into coordinates and a
// structured address. A failure here leaves the session state intact so
// the user can pick a different suggestion.
func (r *Resolver) ResolveSuggestion(ctx context.Context, s Suggestion) (geo.Point, *maps.AddressResult, error) {
	if s.Point != nil {
		addr := s.Address
		if addr == nil {
			addr = &maps.AddressResult{FullAddress: s.Label, SourcePoint: *s.Point}
		}
		return *s.Point, addr, nil
	}

	if r.primary == nil || !r.primary.HasCredentials() {
		return geo.Point{}, nil, errors.GeocodingUnavailable(fmt.Errorf("suggestion %s has no embedded coordinates and no provider can resolve it", s.ID))
	}

	details, err := r.primary.GetPlaceDetails(ctx, &maps.PlaceDetailsRequest{
		PlaceID:      s.ID,
		SessionToken: r.sessionToken,
	})
	if err != nil {
		return geo.Point{}, nil, errors.GeocodingUnavailable(err)
	}

	// Place details ends the billing session; the next query starts a
	// fresh one.
	r.mu.Lock()
	r.sessionToken = uuid.NewString()
	r.mu.Unlock()

	return details.Location, details.Address(), nil
}

// startFetch begins a provider fetch for the given query, or queues it
// when a fetch is already running.
func (r *Resolver) startFetch(text string, seq uint64) {
	r.mu.Lock()
	if r.closed || seq != r.seq {
		r.mu.Unlock()
		return
	}
	if r.inflight {
		r.pending = text
		r.pendingSeq = seq
		r.mu.Unlock()
		return
	}
	r.inflight = true
	token := r.sessionToken
	r.mu.Unlock()

	go r.fetch(text, seq, token)
}

func (r *Resolver) fetch(text string, seq uint64, sessionToken string) {
	ctx, cancel := context.WithTimeout(context.Background(), r.config.FetchTimeout)
	defer cancel()

	results, err := r.query(ctx, text, sessionToken)
	if err != nil {
		r.logger.Warn("suggestion fetch failed", "query", text, "error", err)
		results = nil
	}

	r.mu.Lock()
	r.inflight = false
	r.setSuggestionsLocked(seq, results)

	// Issue the edit that arrived while we were fetching, if it is
	// still the current one.
	if r.pending != "" && r.pendingSeq == r.seq && !r.closed {
		next, nextSeq := r.pending, r.pendingSeq
		r.pending = ""
		r.mu.Unlock()
		r.startFetch(next, nextSeq)
		return
	}
	r.pending = ""
	r.mu.Unlock()
}

// setSuggestionsLocked installs results if seq is still current. The
// caller holds r.mu.
func (r *Resolver) setSuggestionsLocked(seq uint64, results []Suggestion) {
	if seq != r.seq {
		return
	}
	r.suggestions = results
	if r.onUpdate == nil {
		return
	}

	out := make([]Suggestion, len(results))
	copy(out, results)
	r.updates = append(r.updates, out)
	if !r.notifying {
		r.notifying = true
		go r.notify()
	}
}

// notify drains queued updates in order. One drainer runs at a time so a
// subscriber always observes updates in the sequence they were produced.
func (r *Resolver) notify() {
	r.mu.Lock()
	for len(r.updates) > 0 {
		next := r.updates[0]
		r.updates = r.updates[1:]
		fn := r.onUpdate
		r.mu.Unlock()
		if fn != nil {
			fn(next)
		}
		r.mu.Lock()
	}
	r.notifying = false
	r.mu.Unlock()
}

// query fetches suggestions from the best available provider.
func (r *Resolver) query(ctx context.Context, text, sessionToken string) ([]Suggestion, error) {
	if r.primary != nil && r.primary.HasCredentials() {
		results, err := r.primary.Autocomplete(ctx, &maps.AutocompleteRequest{
			Input:        text,
			SessionToken: sessionToken,
		})
		if err == nil {
			return r.fromPrimary(results), nil
		}
		r.logger.Warn("primary suggestions failed, falling back", "error", err)
	}

	if r.secondary == nil {
		return nil, fmt.Errorf("no suggestion provider available")
	}

	results, err := r.secondary.Search(ctx, text)
	if err != nil {
		return nil, err
	}
	return r.fromSecondary(results), nil
}

func (r *Resolver) fromPrimary(results []maps.AutocompleteResult) []Suggestion {
	out := make([]Suggestion, 0, len(results))
	for _, p := range results {
		if len(out) >= r.config.MaxSuggestions {
			break
		}
		label := p.MainText
		if label == "" {
			label = p.Description
		}
		out = append(out, Suggestion{
			ID:             p.PlaceID,
			Label:          label,
			SecondaryLabel: p.SecondaryText,
			Provider:       ProviderGoogle,
		})
	}
	return out
}

func (r *Resolver) fromSecondary(results []maps.NominatimResult) []Suggestion {
	out := make([]Suggestion, 0, len(results))
	for i := range results {
		if len(out) >= r.config.MaxSuggestions {
			break
		}
		res := &results[i]
		point, err := res.Location()
		if err != nil {
			continue
		}

		label := res.DisplayName
		secondary := ""
		if idx := strings.Index(label, ","); idx >= 0 {
			secondary = strings.TrimSpace(label[idx+1:])
			label = label[:idx]
		}

		p := point
		out = append(out, Suggestion{
			ID:             fmt.Sprintf("osm:%d", res.PlaceID),
			Label:          label,
			SecondaryLabel: secondary,
			Provider:       ProviderNominatim,
			Point:          &p,
			Address:        maps.AddressFromNominatim(res, point),
		})
	}
	return out
}
