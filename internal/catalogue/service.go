// Package catalogue implements the video game use cases on top of the
// repository unit of work.
package catalogue

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/Clark-Hu/gamestore-catalogue/internal/domain"
	"github.com/Clark-Hu/gamestore-catalogue/internal/dto"
	"github.com/Clark-Hu/gamestore-catalogue/internal/pkg/clock"
	"github.com/Clark-Hu/gamestore-catalogue/internal/repository"
)

// Service orchestrates catalogue reads and writes. Each call runs in its
// own unit of work, closed on every exit path.
type Service struct {
	uows   repository.UnitOfWorkFactory
	clock  clock.Clock
	logger *logrus.Logger
}

// NewService wires a catalogue service. A nil clock means wall-clock UTC.
func NewService(uows repository.UnitOfWorkFactory, clk clock.Clock, logger *logrus.Logger) *Service {
	if clk == nil {
		clk = clock.RealClock{}
	}
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	return &Service{uows: uows, clock: clk, logger: logger}
}

// inUnitOfWork opens a unit of work, runs fn and closes it.
func inUnitOfWork[T any](ctx context.Context, s *Service, fn func(uow repository.UnitOfWork) (T, error)) (T, error) {
	var zero T
	uow, err := s.uows.Begin(ctx)
	if err != nil {
		return zero, fmt.Errorf("begin unit of work: %w", err)
	}
	defer func() {
		if cerr := uow.Close(ctx); cerr != nil {
			s.logger.WithError(cerr).Warn("catalogue: close unit of work")
		}
	}()
	return fn(uow)
}

// GetByID returns nil without error when the game does not exist.
func (s *Service) GetByID(ctx context.Context, id int64) (*dto.VideoGame, error) {
	s.logger.WithField("id", id).Debug("catalogue: get by id")
	return inUnitOfWork(ctx, s, func(uow repository.UnitOfWork) (*dto.VideoGame, error) {
		game, err := uow.VideoGames().GetByID(ctx, id)
		if errors.Is(err, repository.ErrNotFound) {
			return nil, nil
		}
		if err != nil {
			return nil, err
		}
		out := toDTO(*game)
		return &out, nil
	})
}

func (s *Service) GetAll(ctx context.Context) ([]dto.VideoGame, error) {
	s.logger.Debug("catalogue: get all")
	return s.list(ctx, func(repo repository.VideoGameRepository) ([]domain.VideoGame, error) {
		return repo.GetAll(ctx)
	})
}

func (s *Service) GetAllPaged(ctx context.Context, pageNumber, pageSize int) (dto.PagedResult[dto.VideoGame], error) {
	s.logger.WithFields(logrus.Fields{"page": pageNumber, "size": pageSize}).Debug("catalogue: get all paged")
	return s.paged(ctx, func(repo repository.VideoGameRepository) (domain.PagedResult[domain.VideoGame], error) {
		return repo.GetAllPaged(ctx, repository.Page{Number: pageNumber, Size: pageSize})
	})
}

// GetByGenre matches genre as a case-insensitive substring.
func (s *Service) GetByGenre(ctx context.Context, genre string) ([]dto.VideoGame, error) {
	s.logger.WithField("genre", genre).Debug("catalogue: get by genre")
	if isBlank(genre) {
		return nil, domain.NewValidationError("genre", "Genre cannot be empty.")
	}
	return s.list(ctx, func(repo repository.VideoGameRepository) ([]domain.VideoGame, error) {
		return repo.GetByGenre(ctx, genre)
	})
}

func (s *Service) GetByGenrePaged(ctx context.Context, genre string, pageNumber, pageSize int) (dto.PagedResult[dto.VideoGame], error) {
	s.logger.WithFields(logrus.Fields{"genre": genre, "page": pageNumber, "size": pageSize}).Debug("catalogue: get by genre paged")
	if isBlank(genre) {
		return dto.PagedResult[dto.VideoGame]{}, domain.NewValidationError("genre", "Genre cannot be empty.")
	}
	return s.paged(ctx, func(repo repository.VideoGameRepository) (domain.PagedResult[domain.VideoGame], error) {
		return repo.GetByGenrePaged(ctx, genre, repository.Page{Number: pageNumber, Size: pageSize})
	})
}

// GetByPlatform matches platform as a case-insensitive substring.
func (s *Service) GetByPlatform(ctx context.Context, platform string) ([]dto.VideoGame, error) {
	s.logger.WithField("platform", platform).Debug("catalogue: get by platform")
	if isBlank(platform) {
		return nil, domain.NewValidationError("platform", "Platform cannot be empty.")
	}
	return s.list(ctx, func(repo repository.VideoGameRepository) ([]domain.VideoGame, error) {
		return repo.GetByPlatform(ctx, platform)
	})
}

func (s *Service) GetByPlatformPaged(ctx context.Context, platform string, pageNumber, pageSize int) (dto.PagedResult[dto.VideoGame], error) {
	s.logger.WithFields(logrus.Fields{"platform": platform, "page": pageNumber, "size": pageSize}).Debug("catalogue: get by platform paged")
	if isBlank(platform) {
		return dto.PagedResult[dto.VideoGame]{}, domain.NewValidationError("platform", "Platform cannot be empty.")
	}
	return s.paged(ctx, func(repo repository.VideoGameRepository) (domain.PagedResult[domain.VideoGame], error) {
		return repo.GetByPlatformPaged(ctx, platform, repository.Page{Number: pageNumber, Size: pageSize})
	})
}

func (s *Service) GetByReleaseYear(ctx context.Context, year int) ([]dto.VideoGame, error) {
	s.logger.WithField("year", year).Debug("catalogue: get by release year")
	return s.list(ctx, func(repo repository.VideoGameRepository) ([]domain.VideoGame, error) {
		return repo.GetByReleaseYear(ctx, year)
	})
}

func (s *Service) GetByReleaseYearPaged(ctx context.Context, year, pageNumber, pageSize int) (dto.PagedResult[dto.VideoGame], error) {
	s.logger.WithFields(logrus.Fields{"year": year, "page": pageNumber, "size": pageSize}).Debug("catalogue: get by release year paged")
	return s.paged(ctx, func(repo repository.VideoGameRepository) (domain.PagedResult[domain.VideoGame], error) {
		return repo.GetByReleaseYearPaged(ctx, year, repository.Page{Number: pageNumber, Size: pageSize})
	})
}

// Search matches term against titles; a blank term lists everything.
func (s *Service) Search(ctx context.Context, term string) ([]dto.VideoGame, error) {
	s.logger.WithField("term", term).Debug("catalogue: search")
	if isBlank(term) {
		return s.GetAll(ctx)
	}
	return s.list(ctx, func(repo repository.VideoGameRepository) ([]domain.VideoGame, error) {
		return repo.SearchByTitle(ctx, term)
	})
}

func (s *Service) SearchPaged(ctx context.Context, term string, pageNumber, pageSize int) (dto.PagedResult[dto.VideoGame], error) {
	s.logger.WithFields(logrus.Fields{"term": term, "page": pageNumber, "size": pageSize}).Debug("catalogue: search paged")
	if isBlank(term) {
		return s.GetAllPaged(ctx, pageNumber, pageSize)
	}
	return s.paged(ctx, func(repo repository.VideoGameRepository) (domain.PagedResult[domain.VideoGame], error) {
		return repo.SearchByTitlePaged(ctx, term, repository.Page{Number: pageNumber, Size: pageSize})
	})
}

// Create validates req, persists the game and returns it with its new id.
func (s *Service) Create(ctx context.Context, req dto.CreateVideoGameRequest) (dto.VideoGame, error) {
	game, err := domain.NewVideoGame(createFields(req), s.clock.Now())
	if err != nil {
		return dto.VideoGame{}, err
	}
	return inUnitOfWork(ctx, s, func(uow repository.UnitOfWork) (dto.VideoGame, error) {
		if err := uow.VideoGames().Add(ctx, &game); err != nil {
			return dto.VideoGame{}, err
		}
		if err := uow.Commit(ctx); err != nil {
			return dto.VideoGame{}, err
		}
		s.logger.WithFields(logrus.Fields{"id": game.ID, "title": game.Title}).Debug("catalogue: created")
		return toDTO(game), nil
	})
}

// Update replaces every field of game id. It fails with *domain.NotFoundError
// when the game does not exist.
func (s *Service) Update(ctx context.Context, id int64, req dto.UpdateVideoGameRequest) (dto.VideoGame, error) {
	return inUnitOfWork(ctx, s, func(uow repository.UnitOfWork) (dto.VideoGame, error) {
		repo := uow.VideoGames()
		game, err := repo.GetByID(ctx, id)
		if errors.Is(err, repository.ErrNotFound) {
			return dto.VideoGame{}, domain.NewNotFoundError(domain.VideoGameEntityName, id)
		}
		if err != nil {
			return dto.VideoGame{}, err
		}
		if err := game.Update(updateFields(req), s.clock.Now()); err != nil {
			return dto.VideoGame{}, err
		}
		if err := repo.Update(ctx, game); err != nil {
			if errors.Is(err, repository.ErrNotFound) {
				return dto.VideoGame{}, domain.NewNotFoundError(domain.VideoGameEntityName, id)
			}
			return dto.VideoGame{}, err
		}
		if err := uow.Commit(ctx); err != nil {
			return dto.VideoGame{}, err
		}
		s.logger.WithField("id", id).Debug("catalogue: updated")
		return toDTO(*game), nil
	})
}

// Delete removes game id. It fails with *domain.NotFoundError when the game
// does not exist.
func (s *Service) Delete(ctx context.Context, id int64) error {
	_, err := inUnitOfWork(ctx, s, func(uow repository.UnitOfWork) (struct{}, error) {
		repo := uow.VideoGames()
		game, err := repo.GetByID(ctx, id)
		if errors.Is(err, repository.ErrNotFound) {
			return struct{}{}, domain.NewNotFoundError(domain.VideoGameEntityName, id)
		}
		if err != nil {
			return struct{}{}, err
		}
		if err := repo.Remove(ctx, game); err != nil {
			if errors.Is(err, repository.ErrNotFound) {
				return struct{}{}, domain.NewNotFoundError(domain.VideoGameEntityName, id)
			}
			return struct{}{}, err
		}
		if err := uow.Commit(ctx); err != nil {
			return struct{}{}, err
		}
		s.logger.WithField("id", id).Debug("catalogue: deleted")
		return struct{}{}, nil
	})
	return err
}

// Count returns the number of games in the catalogue.
func (s *Service) Count(ctx context.Context) (int, error) {
	return inUnitOfWork(ctx, s, func(uow repository.UnitOfWork) (int, error) {
		return uow.VideoGames().Count(ctx)
	})
}

func (s *Service) list(ctx context.Context, query func(repository.VideoGameRepository) ([]domain.VideoGame, error)) ([]dto.VideoGame, error) {
	return inUnitOfWork(ctx, s, func(uow repository.UnitOfWork) ([]dto.VideoGame, error) {
		games, err := query(uow.VideoGames())
		if err != nil {
			return nil, err
		}
		return toDTOList(games), nil
	})
}

func (s *Service) paged(ctx context.Context, query func(repository.VideoGameRepository) (domain.PagedResult[domain.VideoGame], error)) (dto.PagedResult[dto.VideoGame], error) {
	return inUnitOfWork(ctx, s, func(uow repository.UnitOfWork) (dto.PagedResult[dto.VideoGame], error) {
		page, err := query(uow.VideoGames())
		if err != nil {
			return dto.PagedResult[dto.VideoGame]{}, err
		}
		return toPagedDTO(page), nil
	})
}

func isBlank(s string) bool {
	return strings.TrimSpace(s) == ""
}
