package state

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/five82/galley/internal/recipes"
	"github.com/five82/galley/internal/viewstore"
)

// Kind tags the active view state.
type Kind int

const (
	Loading Kind = iota
	FailedToLoad
	Loaded
)

func (k Kind) String() string {
	switch k {
	case Loading:
		return "loading"
	case FailedToLoad:
		return "failedToLoad"
	case Loaded:
		return "loaded"
	default:
		return "unknown"
	}
}

// ViewState is what the recipes screen renders. Exactly one Kind is active;
// Recipes is meaningful only when Loaded and Err only when FailedToLoad.
type ViewState struct {
	Kind        Kind
	Recipes     []recipes.Recipe
	Err         error
	Refreshing  bool // a pull-to-refresh is in flight
	LastUpdated time.Time
}

// IsLoading reports whether the loading state is active.
func (v ViewState) IsLoading() bool { return v.Kind == Loading }

// IsEmpty reports a successful load that returned no recipes.
func (v ViewState) IsEmpty() bool { return v.Kind == Loaded && len(v.Recipes) == 0 }

func cloneState(v ViewState) ViewState {
	if v.Recipes != nil {
		dup := make([]recipes.Recipe, len(v.Recipes))
		copy(dup, v.Recipes)
		v.Recipes = dup
	}
	return v
}

// Action is implemented by LoadRecipes and Refresh.
type Action interface {
	isAction()
}

// LoadRecipes shows the loading state and fetches the list.
type LoadRecipes struct{}

// Refresh re-fetches the list. A pull-to-refresh keeps the current list on
// screen instead of switching to the loading state.
type Refresh struct {
	PullToRefresh bool
}

func (LoadRecipes) isAction() {}
func (Refresh) isAction()     {}

// RecipesStore is the view store behind the recipes screen.
//
// Every action supersedes the one before it: the previous fetch is cancelled
// and its result discarded, so the state always reflects the most recently
// issued action.
type RecipesStore struct {
	*viewstore.Core[ViewState]

	fetcher recipes.Fetcher
	logger  *slog.Logger
	now     func() time.Time

	mu         sync.Mutex
	generation uint64
	cancel     context.CancelFunc
}

// Ensure RecipesStore satisfies the generic store contract.
var _ viewstore.Store[ViewState, Action] = (*RecipesStore)(nil)

// NewRecipesStore returns a store in the loading state.
func NewRecipesStore(fetcher recipes.Fetcher, logger *slog.Logger) *RecipesStore {
	if logger == nil {
		logger = slog.Default()
	}
	return &RecipesStore{
		Core:    viewstore.NewCore(ViewState{Kind: Loading}, cloneState),
		fetcher: fetcher,
		logger:  logger,
		now:     time.Now,
	}
}

// Send handles action and returns once its fetch has settled or been superseded.
func (s *RecipesStore) Send(ctx context.Context, action Action) {
	switch a := action.(type) {
	case LoadRecipes:
		s.run(ctx, true)
	case Refresh:
		s.run(ctx, !a.PullToRefresh)
	default:
		s.logger.Warn("unknown recipes action", "action", action)
	}
}

// Close cancels any in-flight fetch.
func (s *RecipesStore) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.cancel != nil {
		s.cancel()
		s.cancel = nil
	}
	s.generation++
}

func (s *RecipesStore) run(parent context.Context, showLoading bool) {
	ctx, gen := s.begin(parent)
	defer s.end(gen)

	if showLoading {
		s.commit(gen, func(ViewState) (ViewState, bool) {
			return ViewState{Kind: Loading}, true
		})
	} else {
		s.commit(gen, func(prev ViewState) (ViewState, bool) {
			if prev.Kind == Loading {
				return prev, false
			}
			prev.Refreshing = true
			return prev, true
		})
	}

	list, err := s.fetcher.FetchRecipes(ctx)

	if err != nil && ctx.Err() != nil && errors.Is(err, context.Canceled) {
		s.commit(gen, func(prev ViewState) (ViewState, bool) {
			if !prev.Refreshing {
				return prev, false
			}
			prev.Refreshing = false
			return prev, true
		})
		return
	}

	s.commit(gen, func(ViewState) (ViewState, bool) {
		if err != nil {
			s.logger.Warn("recipe fetch failed", "error", err)
			return ViewState{Kind: FailedToLoad, Err: err, LastUpdated: s.now()}, true
		}
		if list == nil {
			list = []recipes.Recipe{}
		}
		return ViewState{Kind: Loaded, Recipes: list, LastUpdated: s.now()}, true
	})
}

func (s *RecipesStore) begin(parent context.Context) (context.Context, uint64) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.cancel != nil {
		s.cancel()
	}
	ctx, cancel := context.WithCancel(parent)
	s.generation++
	s.cancel = cancel
	return ctx, s.generation
}

func (s *RecipesStore) end(gen uint64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if gen == s.generation && s.cancel != nil {
		s.cancel()
		s.cancel = nil
	}
}

// commit publishes the state produced by fn when gen is still current.
// Holding mu across Set keeps a superseded action from interleaving a write.
func (s *RecipesStore) commit(gen uint64, fn func(ViewState) (ViewState, bool)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if gen != s.generation {
		return
	}
	next, ok := fn(s.State())
	if !ok {
		return
	}
	s.Set(next)
}
