package domain

import (
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/shopspring/decimal"
)

const (
	// MaxTitleLength bounds the raw (untrimmed) title length in characters.
	MaxTitleLength = 200
	// MaxGenreLength and MaxPlatformLength bound the raw genre and platform.
	MaxGenreLength    = 100
	MaxPlatformLength = 100
	// MaxDescriptionLength and MaxImageURLLength bound the optional text fields.
	MaxDescriptionLength = 2000
	MaxImageURLLength    = 500
	// EarliestReleaseYear is the year of Tennis for Two.
	EarliestReleaseYear = 1958
	// ReleaseYearLookahead is how many years past the current one a release may be announced.
	ReleaseYearLookahead = 5
	pricePlaces          = 2
)

var maxPrice = decimal.NewFromInt(1000)

// VideoGameEntityName is used when reporting missing video games.
const VideoGameEntityName = "VideoGame"

// VideoGame is the catalogue aggregate root. Fields are exported for
// persistence adapters; callers mutate through the setters or Update so the
// invariants are always checked.
type VideoGame struct {
	ID          int64
	Title       string
	Genre       string
	Platform    string
	ReleaseYear int
	Price       decimal.Decimal
	Description string
	ImageURL    string
	CreatedAt   time.Time
	UpdatedAt   *time.Time
}

// VideoGameFields carries the caller-supplied values for construction and
// full-replacement updates.
type VideoGameFields struct {
	Title       string
	Genre       string
	Platform    string
	ReleaseYear int
	Price       decimal.Decimal
	Description string
	ImageURL    string
}

// NewVideoGame validates every field in order and returns a new entity
// stamped with now as its creation time. UpdatedAt stays nil.
func NewVideoGame(fields VideoGameFields, now time.Time) (VideoGame, error) {
	normalized, err := fields.normalize(now)
	if err != nil {
		return VideoGame{}, err
	}
	game := VideoGame{CreatedAt: now.UTC()}
	game.apply(normalized)
	return game, nil
}

func (g VideoGame) GetID() int64             { return g.ID }
func (g VideoGame) GetCreatedAt() time.Time  { return g.CreatedAt }
func (g VideoGame) GetUpdatedAt() *time.Time { return g.UpdatedAt }

// Update replaces every field. All values are validated before any is
// applied, so a failure leaves the entity exactly as it was.
func (g *VideoGame) Update(fields VideoGameFields, now time.Time) error {
	normalized, err := fields.normalize(now)
	if err != nil {
		return err
	}
	g.apply(normalized)
	g.touch(now)
	return nil
}

func (g *VideoGame) SetTitle(title string, now time.Time) error {
	value, err := normalizeTitle(title)
	if err != nil {
		return err
	}
	g.Title = value
	g.touch(now)
	return nil
}

func (g *VideoGame) SetGenre(genre string, now time.Time) error {
	value, err := normalizeRequired("genre", "Genre", genre, MaxGenreLength)
	if err != nil {
		return err
	}
	g.Genre = value
	g.touch(now)
	return nil
}

func (g *VideoGame) SetPlatform(platform string, now time.Time) error {
	value, err := normalizeRequired("platform", "Platform", platform, MaxPlatformLength)
	if err != nil {
		return err
	}
	g.Platform = value
	g.touch(now)
	return nil
}

// SetReleaseYear accepts years in [1958, current UTC year + 5].
func (g *VideoGame) SetReleaseYear(year int, now time.Time) error {
	if err := validateReleaseYear(year, now); err != nil {
		return err
	}
	g.ReleaseYear = year
	g.touch(now)
	return nil
}

// SetPrice accepts prices in [0, 1000] and stores them rounded to cents.
func (g *VideoGame) SetPrice(price decimal.Decimal, now time.Time) error {
	value, err := normalizePrice(price)
	if err != nil {
		return err
	}
	g.Price = value
	g.touch(now)
	return nil
}

func (g *VideoGame) SetDescription(description string, now time.Time) error {
	value, err := normalizeOptional("description", "Description", description, MaxDescriptionLength)
	if err != nil {
		return err
	}
	g.Description = value
	g.touch(now)
	return nil
}

func (g *VideoGame) SetImageURL(imageURL string, now time.Time) error {
	value, err := normalizeOptional("imageUrl", "Image URL", imageURL, MaxImageURLLength)
	if err != nil {
		return err
	}
	g.ImageURL = value
	g.touch(now)
	return nil
}

func (g *VideoGame) apply(f VideoGameFields) {
	g.Title = f.Title
	g.Genre = f.Genre
	g.Platform = f.Platform
	g.ReleaseYear = f.ReleaseYear
	g.Price = f.Price
	g.Description = f.Description
	g.ImageURL = f.ImageURL
}

func (g *VideoGame) touch(now time.Time) {
	ts := now.UTC()
	g.UpdatedAt = &ts
}

// normalize runs the field rules in the fixed order title, genre, platform,
// release year, price, description, image url and reports the first failure.
func (f VideoGameFields) normalize(now time.Time) (VideoGameFields, error) {
	var (
		out VideoGameFields
		err error
	)
	if out.Title, err = normalizeTitle(f.Title); err != nil {
		return VideoGameFields{}, err
	}
	if out.Genre, err = normalizeRequired("genre", "Genre", f.Genre, MaxGenreLength); err != nil {
		return VideoGameFields{}, err
	}
	if out.Platform, err = normalizeRequired("platform", "Platform", f.Platform, MaxPlatformLength); err != nil {
		return VideoGameFields{}, err
	}
	if err = validateReleaseYear(f.ReleaseYear, now); err != nil {
		return VideoGameFields{}, err
	}
	out.ReleaseYear = f.ReleaseYear
	if out.Price, err = normalizePrice(f.Price); err != nil {
		return VideoGameFields{}, err
	}
	if out.Description, err = normalizeOptional("description", "Description", f.Description, MaxDescriptionLength); err != nil {
		return VideoGameFields{}, err
	}
	if out.ImageURL, err = normalizeOptional("imageUrl", "Image URL", f.ImageURL, MaxImageURLLength); err != nil {
		return VideoGameFields{}, err
	}
	return out, nil
}

// The length limit applies to the raw input, before trimming.
func normalizeTitle(title string) (string, error) {
	if strings.TrimSpace(title) == "" {
		return "", NewValidationError("title", "Title cannot be empty.")
	}
	if utf8.RuneCountInString(title) > MaxTitleLength {
		return "", NewValidationError("title", fmt.Sprintf("Title cannot exceed %d characters.", MaxTitleLength))
	}
	return strings.TrimSpace(title), nil
}

func normalizeRequired(field, label, value string, maxLen int) (string, error) {
	trimmed := strings.TrimSpace(value)
	if trimmed == "" {
		return "", NewValidationError(field, label+" cannot be empty.")
	}
	return normalizeOptional(field, label, value, maxLen)
}

// Like the title, optional text is measured before trimming.
func normalizeOptional(field, label, value string, maxLen int) (string, error) {
	if utf8.RuneCountInString(value) > maxLen {
		return "", NewValidationError(field, fmt.Sprintf("%s cannot exceed %d characters.", label, maxLen))
	}
	return strings.TrimSpace(value), nil
}

func validateReleaseYear(year int, now time.Time) error {
	latest := MaxReleaseYear(now)
	if year < EarliestReleaseYear || year > latest {
		return NewValidationError("releaseYear",
			fmt.Sprintf("Release year must be between %d and %d.", EarliestReleaseYear, latest))
	}
	return nil
}

// MaxReleaseYear is the latest release year accepted at time now.
func MaxReleaseYear(now time.Time) int {
	return now.UTC().Year() + ReleaseYearLookahead
}

// Bounds are checked before rounding; rounding is half away from zero.
func normalizePrice(price decimal.Decimal) (decimal.Decimal, error) {
	if price.IsNegative() {
		return decimal.Decimal{}, NewValidationError("price", "Price cannot be negative.")
	}
	if price.GreaterThan(maxPrice) {
		return decimal.Decimal{}, NewValidationError("price", "Price cannot exceed $1000.")
	}
	return price.Round(pricePlaces), nil
}
