// Package memory is an in-process implementation of the repository
// contracts, used when no database is configured and by tests.
package memory

import (
	"context"
	"sort"
	"strings"
	"sync"

	"github.com/Clark-Hu/gamestore-catalogue/internal/domain"
	"github.com/Clark-Hu/gamestore-catalogue/internal/repository"
)

// Store holds committed video games. Ids come from a monotonic sequence
// that, like a database sequence, is consumed even if the add is discarded.
type Store struct {
	mu     sync.RWMutex
	rows   map[int64]domain.VideoGame
	nextID int64
}

var _ repository.UnitOfWorkFactory = (*Store)(nil)

// NewStore returns an empty store.
func NewStore() *Store {
	return &Store{rows: make(map[int64]domain.VideoGame)}
}

// Begin opens a unit of work that buffers changes until Commit.
func (s *Store) Begin(ctx context.Context) (repository.UnitOfWork, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	u := &unitOfWork{
		store:   s,
		adds:    make(map[int64]domain.VideoGame),
		updates: make(map[int64]domain.VideoGame),
		removes: make(map[int64]struct{}),
	}
	u.games = &videoGames{uow: u}
	return u, nil
}

// HealthCheck always succeeds; it mirrors store.Store for the HTTP layer.
func (s *Store) HealthCheck(ctx context.Context) error {
	return ctx.Err()
}

func (s *Store) reserveID() int64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.nextID++
	return s.nextID
}

type unitOfWork struct {
	store   *Store
	games   *videoGames
	adds    map[int64]domain.VideoGame
	updates map[int64]domain.VideoGame
	removes map[int64]struct{}
	done    bool
}

func (u *unitOfWork) VideoGames() repository.VideoGameRepository {
	return u.games
}

// Commit applies every pending add, update and remove under one lock.
// Updates of rows removed meanwhile by another unit of work are dropped.
func (u *unitOfWork) Commit(ctx context.Context) error {
	if u.done {
		return repository.ErrUnitOfWorkClosed
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	u.done = true

	s := u.store
	s.mu.Lock()
	defer s.mu.Unlock()
	for id, game := range u.adds {
		s.rows[id] = game
	}
	for id, game := range u.updates {
		if _, ok := s.rows[id]; ok {
			s.rows[id] = game
		}
	}
	for id := range u.removes {
		delete(s.rows, id)
	}
	return nil
}

// Close discards anything not committed.
func (u *unitOfWork) Close(context.Context) error {
	u.done = true
	u.adds, u.updates, u.removes = nil, nil, nil
	return nil
}

// view is the committed state overlaid with this unit of work's pending changes.
func (u *unitOfWork) view() map[int64]domain.VideoGame {
	s := u.store
	s.mu.RLock()
	out := make(map[int64]domain.VideoGame, len(s.rows)+len(u.adds))
	for id, game := range s.rows {
		out[id] = game
	}
	s.mu.RUnlock()

	for id, game := range u.updates {
		if _, ok := out[id]; ok {
			out[id] = game
		}
	}
	for id, game := range u.adds {
		out[id] = game
	}
	for id := range u.removes {
		delete(out, id)
	}
	return out
}

type videoGames struct {
	uow *unitOfWork
}

var _ repository.VideoGameRepository = (*videoGames)(nil)

func (r *videoGames) check(ctx context.Context) error {
	if r.uow.done {
		return repository.ErrUnitOfWorkClosed
	}
	return ctx.Err()
}

func (r *videoGames) GetByID(ctx context.Context, id int64) (*domain.VideoGame, error) {
	if err := r.check(ctx); err != nil {
		return nil, err
	}
	game, ok := r.uow.view()[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return &game, nil
}

func (r *videoGames) GetAll(ctx context.Context) ([]domain.VideoGame, error) {
	return r.Find(ctx, repository.VideoGameFilter{})
}

func (r *videoGames) GetAllPaged(ctx context.Context, page repository.Page) (domain.PagedResult[domain.VideoGame], error) {
	return r.FindPaged(ctx, repository.VideoGameFilter{}, page)
}

func (r *videoGames) Find(ctx context.Context, filter repository.VideoGameFilter) ([]domain.VideoGame, error) {
	if err := r.check(ctx); err != nil {
		return nil, err
	}
	items := make([]domain.VideoGame, 0)
	for _, game := range r.uow.view() {
		if matches(game, filter) {
			items = append(items, game)
		}
	}
	sort.Slice(items, func(i, j int) bool {
		if items[i].Title != items[j].Title {
			return items[i].Title < items[j].Title
		}
		return items[i].ID < items[j].ID
	})
	return items, nil
}

func (r *videoGames) FindPaged(ctx context.Context, filter repository.VideoGameFilter, page repository.Page) (domain.PagedResult[domain.VideoGame], error) {
	all, err := r.Find(ctx, filter)
	if err != nil {
		return domain.PagedResult[domain.VideoGame]{}, err
	}
	start := min(max(page.Offset(), 0), len(all))
	end := min(start+max(page.Size, 0), len(all))
	items := make([]domain.VideoGame, end-start)
	copy(items, all[start:end])
	return domain.NewPagedResult(items, len(all), page.Number, page.Size), nil
}

func (r *videoGames) Add(ctx context.Context, game *domain.VideoGame) error {
	if err := r.check(ctx); err != nil {
		return err
	}
	game.ID = r.uow.store.reserveID()
	r.uow.adds[game.ID] = *game
	return nil
}

func (r *videoGames) Update(ctx context.Context, game *domain.VideoGame) error {
	if err := r.check(ctx); err != nil {
		return err
	}
	if _, ok := r.uow.view()[game.ID]; !ok {
		return repository.ErrNotFound
	}
	if _, pending := r.uow.adds[game.ID]; pending {
		r.uow.adds[game.ID] = *game
		return nil
	}
	r.uow.updates[game.ID] = *game
	return nil
}

func (r *videoGames) Remove(ctx context.Context, game *domain.VideoGame) error {
	if err := r.check(ctx); err != nil {
		return err
	}
	if _, ok := r.uow.view()[game.ID]; !ok {
		return repository.ErrNotFound
	}
	if _, pending := r.uow.adds[game.ID]; pending {
		delete(r.uow.adds, game.ID)
		return nil
	}
	delete(r.uow.updates, game.ID)
	r.uow.removes[game.ID] = struct{}{}
	return nil
}

func (r *videoGames) Exists(ctx context.Context, id int64) (bool, error) {
	if err := r.check(ctx); err != nil {
		return false, err
	}
	_, ok := r.uow.view()[id]
	return ok, nil
}

func (r *videoGames) Count(ctx context.Context) (int, error) {
	return r.CountWhere(ctx, repository.VideoGameFilter{})
}

func (r *videoGames) CountWhere(ctx context.Context, filter repository.VideoGameFilter) (int, error) {
	items, err := r.Find(ctx, filter)
	if err != nil {
		return 0, err
	}
	return len(items), nil
}

func (r *videoGames) GetByGenre(ctx context.Context, genre string) ([]domain.VideoGame, error) {
	return r.Find(ctx, repository.GenreFilter(genre))
}

func (r *videoGames) GetByGenrePaged(ctx context.Context, genre string, page repository.Page) (domain.PagedResult[domain.VideoGame], error) {
	return r.FindPaged(ctx, repository.GenreFilter(genre), page)
}

func (r *videoGames) GetByPlatform(ctx context.Context, platform string) ([]domain.VideoGame, error) {
	return r.Find(ctx, repository.PlatformFilter(platform))
}

func (r *videoGames) GetByPlatformPaged(ctx context.Context, platform string, page repository.Page) (domain.PagedResult[domain.VideoGame], error) {
	return r.FindPaged(ctx, repository.PlatformFilter(platform), page)
}

func (r *videoGames) GetByReleaseYear(ctx context.Context, year int) ([]domain.VideoGame, error) {
	return r.Find(ctx, repository.YearFilter(year))
}

func (r *videoGames) GetByReleaseYearPaged(ctx context.Context, year int, page repository.Page) (domain.PagedResult[domain.VideoGame], error) {
	return r.FindPaged(ctx, repository.YearFilter(year), page)
}

func (r *videoGames) SearchByTitle(ctx context.Context, term string) ([]domain.VideoGame, error) {
	return r.Find(ctx, repository.TitleFilter(term))
}

func (r *videoGames) SearchByTitlePaged(ctx context.Context, term string, page repository.Page) (domain.PagedResult[domain.VideoGame], error) {
	return r.FindPaged(ctx, repository.TitleFilter(term), page)
}

func matches(game domain.VideoGame, filter repository.VideoGameFilter) bool {
	if filter.Genre != nil && !containsFold(game.Genre, *filter.Genre) {
		return false
	}
	if filter.Platform != nil && !containsFold(game.Platform, *filter.Platform) {
		return false
	}
	if filter.Title != nil && !containsFold(game.Title, *filter.Title) {
		return false
	}
	if filter.ReleaseYear != nil && game.ReleaseYear != *filter.ReleaseYear {
		return false
	}
	return true
}

func containsFold(value, term string) bool {
	return strings.Contains(strings.ToLower(value), strings.ToLower(term))
}
