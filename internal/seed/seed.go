// Package seed fills an empty catalogue with a starter set of games.
package seed

import (
	"context"
	"fmt"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"

	"github.com/Clark-Hu/gamestore-catalogue/internal/domain"
	"github.com/Clark-Hu/gamestore-catalogue/internal/pkg/clock"
	"github.com/Clark-Hu/gamestore-catalogue/internal/repository"
)

// Games is the starter catalogue.
var Games = []domain.VideoGameFields{
	{
		Title:       "The Legend of Zelda: Tears of the Kingdom",
		Genre:       "Action-Adventure",
		Platform:    "Nintendo Switch",
		ReleaseYear: 2023,
		Price:       decimal.RequireFromString("69.99"),
		Description: "An epic adventure awaits in this sequel to Breath of the Wild.",
		ImageURL:    "https://placehold.co/400x300/1a472a/ffffff?text=Zelda+TOTK",
	},
	{
		Title:       "God of War Ragnarök",
		Genre:       "Action-Adventure",
		Platform:    "PlayStation 5",
		ReleaseYear: 2022,
		Price:       decimal.RequireFromString("59.99"),
		Description: "Kratos and Atreus embark on an epic journey through the Nine Realms.",
		ImageURL:    "https://placehold.co/400x300/2d3436/ffffff?text=God+of+War",
	},
	{
		Title:       "Elden Ring",
		Genre:       "Action RPG",
		Platform:    "Multi-platform",
		ReleaseYear: 2022,
		Price:       decimal.RequireFromString("59.99"),
		Description: "A dark fantasy action RPG created by FromSoftware and George R.R. Martin.",
		ImageURL:    "https://placehold.co/400x300/4a4a4a/ffffff?text=Elden+Ring",
	},
	{
		Title:       "Hogwarts Legacy",
		Genre:       "Action RPG",
		Platform:    "Multi-platform",
		ReleaseYear: 2023,
		Price:       decimal.RequireFromString("59.99"),
		Description: "Experience the wizarding world in this open-world action RPG.",
		ImageURL:    "https://placehold.co/400x300/5d4e37/ffffff?text=Hogwarts",
	},
	{
		Title:       "Spider-Man 2",
		Genre:       "Action-Adventure",
		Platform:    "PlayStation 5",
		ReleaseYear: 2023,
		Price:       decimal.RequireFromString("69.99"),
		Description: "Swing through New York as both Peter Parker and Miles Morales.",
		ImageURL:    "https://placehold.co/400x300/c0392b/ffffff?text=Spider-Man+2",
	},
	{
		Title:       "Starfield",
		Genre:       "Action RPG",
		Platform:    "Xbox/PC",
		ReleaseYear: 2023,
		Price:       decimal.RequireFromString("69.99"),
		Description: "Explore the vastness of space in Bethesda's new sci-fi RPG.",
		ImageURL:    "https://placehold.co/400x300/1e3799/ffffff?text=Starfield",
	},
}

// Run inserts Games in one unit of work when the catalogue is empty and
// reports how many were added.
func Run(ctx context.Context, uows repository.UnitOfWorkFactory, clk clock.Clock, logger *logrus.Logger) (int, error) {
	if clk == nil {
		clk = clock.RealClock{}
	}
	if logger == nil {
		logger = logrus.StandardLogger()
	}

	uow, err := uows.Begin(ctx)
	if err != nil {
		return 0, fmt.Errorf("seed: begin: %w", err)
	}
	defer func() {
		if cerr := uow.Close(ctx); cerr != nil {
			logger.WithError(cerr).Warn("seed: close unit of work")
		}
	}()

	repo := uow.VideoGames()
	count, err := repo.Count(ctx)
	if err != nil {
		return 0, fmt.Errorf("seed: count: %w", err)
	}
	if count > 0 {
		logger.WithField("existing", count).Info("seed: catalogue not empty, skipping")
		return 0, nil
	}

	now := clk.Now()
	for _, fields := range Games {
		game, err := domain.NewVideoGame(fields, now)
		if err != nil {
			return 0, fmt.Errorf("seed: %q: %w", fields.Title, err)
		}
		if err := repo.Add(ctx, &game); err != nil {
			return 0, fmt.Errorf("seed: add %q: %w", fields.Title, err)
		}
	}
	if err := uow.Commit(ctx); err != nil {
		return 0, fmt.Errorf("seed: commit: %w", err)
	}

	logger.WithField("games", len(Games)).Info("seed: catalogue seeded")
	return len(Games), nil
}
