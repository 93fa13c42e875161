package repository

import (
	"context"
	"errors"
	"math"

	"github.com/Clark-Hu/gamestore-catalogue/internal/domain"
)

// ErrNotFound indicates the requested entity does not exist.
var ErrNotFound = errors.New("repository: not found")

// ErrUnitOfWorkClosed is returned when a unit of work is used after Commit or Close.
var ErrUnitOfWorkClosed = errors.New("repository: unit of work closed")

// Page selects one 1-based page of an ordered result set.
type Page struct {
	Number int
	Size   int
}

// Offset is the number of rows skipped before the page starts. A page so far
// out that the offset would overflow saturates at math.MaxInt, which is past
// the end of any result set.
func (p Page) Offset() int {
	if p.Number <= 1 || p.Size <= 0 {
		return 0
	}
	if p.Number-1 > math.MaxInt/p.Size {
		return math.MaxInt
	}
	return (p.Number - 1) * p.Size
}

// VideoGameFilter narrows a query. Nil fields are ignored; string fields
// match as case-insensitive substrings, ReleaseYear matches exactly.
type VideoGameFilter struct {
	Genre       *string
	Platform    *string
	Title       *string
	ReleaseYear *int
}

// Repository is the persistence contract for one aggregate type T
// filtered by F. Writes are pending until the owning UnitOfWork commits.
type Repository[T domain.Entity, F any] interface {
	// GetByID returns ErrNotFound when no row has the id.
	GetByID(ctx context.Context, id int64) (*T, error)
	GetAll(ctx context.Context) ([]T, error)
	GetAllPaged(ctx context.Context, page Page) (domain.PagedResult[T], error)
	Find(ctx context.Context, filter F) ([]T, error)
	FindPaged(ctx context.Context, filter F, page Page) (domain.PagedResult[T], error)
	// Add stages entity for insertion and fills in its storage id.
	Add(ctx context.Context, entity *T) error
	Update(ctx context.Context, entity *T) error
	Remove(ctx context.Context, entity *T) error
	Exists(ctx context.Context, id int64) (bool, error)
	Count(ctx context.Context) (int, error)
	CountWhere(ctx context.Context, filter F) (int, error)
}

// VideoGameRepository adds the catalogue's named queries. Every list is
// ordered by title ascending.
type VideoGameRepository interface {
	Repository[domain.VideoGame, VideoGameFilter]

	GetByGenre(ctx context.Context, genre string) ([]domain.VideoGame, error)
	GetByGenrePaged(ctx context.Context, genre string, page Page) (domain.PagedResult[domain.VideoGame], error)
	GetByPlatform(ctx context.Context, platform string) ([]domain.VideoGame, error)
	GetByPlatformPaged(ctx context.Context, platform string, page Page) (domain.PagedResult[domain.VideoGame], error)
	GetByReleaseYear(ctx context.Context, year int) ([]domain.VideoGame, error)
	GetByReleaseYearPaged(ctx context.Context, year int, page Page) (domain.PagedResult[domain.VideoGame], error)
	SearchByTitle(ctx context.Context, term string) ([]domain.VideoGame, error)
	SearchByTitlePaged(ctx context.Context, term string, page Page) (domain.PagedResult[domain.VideoGame], error)
}

// UnitOfWork groups the repositories of one request and commits their
// pending changes atomically. Close releases the underlying resources and
// discards anything not committed; it is safe to call after Commit.
type UnitOfWork interface {
	VideoGames() VideoGameRepository
	Commit(ctx context.Context) error
	Close(ctx context.Context) error
}

// UnitOfWorkFactory opens a new unit of work per request.
type UnitOfWorkFactory interface {
	Begin(ctx context.Context) (UnitOfWork, error)
}

// GenreFilter, PlatformFilter, TitleFilter and YearFilter build the
// single-criterion filters behind the named queries.
func GenreFilter(genre string) VideoGameFilter { return VideoGameFilter{Genre: &genre} }

func PlatformFilter(platform string) VideoGameFilter { return VideoGameFilter{Platform: &platform} }

func TitleFilter(term string) VideoGameFilter { return VideoGameFilter{Title: &term} }

func YearFilter(year int) VideoGameFilter { return VideoGameFilter{ReleaseYear: &year} }
