package postgres

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/shopspring/decimal"

	"github.com/Clark-Hu/gamestore-catalogue/internal/domain"
	"github.com/Clark-Hu/gamestore-catalogue/internal/repository"
)

// querier is the subset of pgx.Tx the repository needs.
type querier interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// VideoGamesRepository persists video games inside one transaction.
type VideoGamesRepository struct {
	q querier
}

var _ repository.VideoGameRepository = (*VideoGamesRepository)(nil)

const videoGameColumns = `
    id,
    title,
    genre,
    platform,
    release_year,
    price::text,
    description,
    image_url,
    created_at,
    updated_at
`

const videoGameOrder = " ORDER BY title ASC, id ASC"

// GetByID fetches a video game by its identifier.
func (r *VideoGamesRepository) GetByID(ctx context.Context, id int64) (*domain.VideoGame, error) {
	query := fmt.Sprintf(`SELECT %s FROM video_games WHERE id = $1`, videoGameColumns)
	game, err := scanVideoGame(r.q.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, repository.ErrNotFound
		}
		return nil, mapTxErr(err)
	}
	return &game, nil
}

func (r *VideoGamesRepository) GetAll(ctx context.Context) ([]domain.VideoGame, error) {
	return r.Find(ctx, repository.VideoGameFilter{})
}

func (r *VideoGamesRepository) GetAllPaged(ctx context.Context, page repository.Page) (domain.PagedResult[domain.VideoGame], error) {
	return r.FindPaged(ctx, repository.VideoGameFilter{}, page)
}

// Find returns every video game matching filter, ordered by title.
func (r *VideoGamesRepository) Find(ctx context.Context, filter repository.VideoGameFilter) ([]domain.VideoGame, error) {
	where, args := buildWhere(filter)
	query := "SELECT " + videoGameColumns + " FROM video_games" + where + videoGameOrder
	return r.list(ctx, query, args...)
}

// FindPaged counts the matches and returns one page of them, ordered by title.
func (r *VideoGamesRepository) FindPaged(ctx context.Context, filter repository.VideoGameFilter, page repository.Page) (domain.PagedResult[domain.VideoGame], error) {
	total, err := r.CountWhere(ctx, filter)
	if err != nil {
		return domain.PagedResult[domain.VideoGame]{}, err
	}

	where, args := buildWhere(filter)
	queryBuilder := strings.Builder{}
	queryBuilder.WriteString("SELECT ")
	queryBuilder.WriteString(videoGameColumns)
	queryBuilder.WriteString(" FROM video_games")
	queryBuilder.WriteString(where)
	queryBuilder.WriteString(videoGameOrder)
	queryBuilder.WriteString(fmt.Sprintf(" LIMIT %d OFFSET %d", max(page.Size, 0), max(page.Offset(), 0)))

	items, err := r.list(ctx, queryBuilder.String(), args...)
	if err != nil {
		return domain.PagedResult[domain.VideoGame]{}, err
	}
	return domain.NewPagedResult(items, total, page.Number, page.Size), nil
}

// Add inserts the row inside the transaction and records the assigned id.
func (r *VideoGamesRepository) Add(ctx context.Context, game *domain.VideoGame) error {
	const query = `
        INSERT INTO video_games (title, genre, platform, release_year, price, description, image_url, created_at, updated_at)
        VALUES ($1,$2,$3,$4,$5::numeric,$6,$7,$8,$9)
        RETURNING id
    `
	var id int64
	err := r.q.QueryRow(ctx, query,
		game.Title,
		game.Genre,
		game.Platform,
		game.ReleaseYear,
		game.Price.StringFixed(2),
		game.Description,
		game.ImageURL,
		game.CreatedAt,
		game.UpdatedAt,
	).Scan(&id)
	if err != nil {
		return fmt.Errorf("insert video game: %w", mapTxErr(err))
	}
	game.ID = id
	return nil
}

func (r *VideoGamesRepository) Update(ctx context.Context, game *domain.VideoGame) error {
	const query = `
        UPDATE video_games
        SET title = $2,
            genre = $3,
            platform = $4,
            release_year = $5,
            price = $6::numeric,
            description = $7,
            image_url = $8,
            updated_at = $9
        WHERE id = $1
    `
	tag, err := r.q.Exec(ctx, query,
		game.ID,
		game.Title,
		game.Genre,
		game.Platform,
		game.ReleaseYear,
		game.Price.StringFixed(2),
		game.Description,
		game.ImageURL,
		game.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("update video game: %w", mapTxErr(err))
	}
	if tag.RowsAffected() == 0 {
		return repository.ErrNotFound
	}
	return nil
}

func (r *VideoGamesRepository) Remove(ctx context.Context, game *domain.VideoGame) error {
	tag, err := r.q.Exec(ctx, `DELETE FROM video_games WHERE id = $1`, game.ID)
	if err != nil {
		return fmt.Errorf("delete video game: %w", mapTxErr(err))
	}
	if tag.RowsAffected() == 0 {
		return repository.ErrNotFound
	}
	return nil
}

func (r *VideoGamesRepository) Exists(ctx context.Context, id int64) (bool, error) {
	var exists bool
	if err := r.q.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM video_games WHERE id = $1)`, id).Scan(&exists); err != nil {
		return false, fmt.Errorf("exists video game: %w", mapTxErr(err))
	}
	return exists, nil
}

func (r *VideoGamesRepository) Count(ctx context.Context) (int, error) {
	return r.CountWhere(ctx, repository.VideoGameFilter{})
}

func (r *VideoGamesRepository) CountWhere(ctx context.Context, filter repository.VideoGameFilter) (int, error) {
	where, args := buildWhere(filter)
	var count int64
	if err := r.q.QueryRow(ctx, "SELECT COUNT(*)::int8 FROM video_games"+where, args...).Scan(&count); err != nil {
		return 0, fmt.Errorf("count video games: %w", mapTxErr(err))
	}
	return int(count), nil
}

func (r *VideoGamesRepository) GetByGenre(ctx context.Context, genre string) ([]domain.VideoGame, error) {
	return r.Find(ctx, repository.GenreFilter(genre))
}

func (r *VideoGamesRepository) GetByGenrePaged(ctx context.Context, genre string, page repository.Page) (domain.PagedResult[domain.VideoGame], error) {
	return r.FindPaged(ctx, repository.GenreFilter(genre), page)
}

func (r *VideoGamesRepository) GetByPlatform(ctx context.Context, platform string) ([]domain.VideoGame, error) {
	return r.Find(ctx, repository.PlatformFilter(platform))
}

func (r *VideoGamesRepository) GetByPlatformPaged(ctx context.Context, platform string, page repository.Page) (domain.PagedResult[domain.VideoGame], error) {
	return r.FindPaged(ctx, repository.PlatformFilter(platform), page)
}

func (r *VideoGamesRepository) GetByReleaseYear(ctx context.Context, year int) ([]domain.VideoGame, error) {
	return r.Find(ctx, repository.YearFilter(year))
}

func (r *VideoGamesRepository) GetByReleaseYearPaged(ctx context.Context, year int, page repository.Page) (domain.PagedResult[domain.VideoGame], error) {
	return r.FindPaged(ctx, repository.YearFilter(year), page)
}

func (r *VideoGamesRepository) SearchByTitle(ctx context.Context, term string) ([]domain.VideoGame, error) {
	return r.Find(ctx, repository.TitleFilter(term))
}

func (r *VideoGamesRepository) SearchByTitlePaged(ctx context.Context, term string, page repository.Page) (domain.PagedResult[domain.VideoGame], error) {
	return r.FindPaged(ctx, repository.TitleFilter(term), page)
}

func (r *VideoGamesRepository) list(ctx context.Context, query string, args ...any) ([]domain.VideoGame, error) {
	rows, err := r.q.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list video games: %w", mapTxErr(err))
	}
	defer rows.Close()

	items := make([]domain.VideoGame, 0)
	for rows.Next() {
		game, err := scanVideoGame(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, game)
	}
	if err := rows.Err(); err != nil {
		return nil, mapTxErr(err)
	}
	return items, nil
}

// buildWhere renders filter as a WHERE clause. strpos keeps substring
// matching literal, so % and _ in user input carry no pattern meaning.
func buildWhere(filter repository.VideoGameFilter) (string, []any) {
	where := make([]string, 0)
	args := make([]any, 0)
	arg := func(value any) string {
		args = append(args, value)
		return fmt.Sprintf("$%d", len(args))
	}

	if filter.Genre != nil {
		where = append(where, fmt.Sprintf("strpos(lower(genre), lower(%s)) > 0", arg(*filter.Genre)))
	}
	if filter.Platform != nil {
		where = append(where, fmt.Sprintf("strpos(lower(platform), lower(%s)) > 0", arg(*filter.Platform)))
	}
	if filter.Title != nil {
		where = append(where, fmt.Sprintf("strpos(lower(title), lower(%s)) > 0", arg(*filter.Title)))
	}
	if filter.ReleaseYear != nil {
		where = append(where, fmt.Sprintf("release_year = %s", arg(*filter.ReleaseYear)))
	}

	if len(where) == 0 {
		return "", args
	}
	return " WHERE " + strings.Join(where, " AND "), args
}

func scanVideoGame(row pgx.Row) (domain.VideoGame, error) {
	var (
		game      domain.VideoGame
		price     string
		createdAt time.Time
		updatedAt *time.Time
	)

	err := row.Scan(
		&game.ID,
		&game.Title,
		&game.Genre,
		&game.Platform,
		&game.ReleaseYear,
		&price,
		&game.Description,
		&game.ImageURL,
		&createdAt,
		&updatedAt,
	)
	if err != nil {
		return domain.VideoGame{}, err
	}

	game.Price, err = decimal.NewFromString(price)
	if err != nil {
		return domain.VideoGame{}, fmt.Errorf("parse price %q: %w", price, err)
	}
	game.CreatedAt = createdAt.UTC()
	if updatedAt != nil {
		ts := updatedAt.UTC()
		game.UpdatedAt = &ts
	}
	return game, nil
}

func mapTxErr(err error) error {
	if errors.Is(err, pgx.ErrTxClosed) {
		return repository.ErrUnitOfWorkClosed
	}
	return err
}
