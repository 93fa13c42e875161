package catalogue

import (
	"github.com/Clark-Hu/gamestore-catalogue/internal/domain"
	"github.com/Clark-Hu/gamestore-catalogue/internal/dto"
)

func toDTO(game domain.VideoGame) dto.VideoGame {
	return dto.VideoGame{
		ID:          game.ID,
		Title:       game.Title,
		Genre:       game.Genre,
		Platform:    game.Platform,
		ReleaseYear: game.ReleaseYear,
		Price:       game.Price,
		Description: game.Description,
		ImageURL:    game.ImageURL,
		CreatedAt:   game.CreatedAt,
		UpdatedAt:   game.UpdatedAt,
	}
}

func toDTOList(games []domain.VideoGame) []dto.VideoGame {
	out := make([]dto.VideoGame, 0, len(games))
	for _, g := range games {
		out = append(out, toDTO(g))
	}
	return out
}

func toPagedDTO(page domain.PagedResult[domain.VideoGame]) dto.PagedResult[dto.VideoGame] {
	mapped := domain.MapPage(page, toDTO)
	return dto.PagedResult[dto.VideoGame]{
		Items:           mapped.Items,
		PageNumber:      mapped.PageNumber,
		PageSize:        mapped.PageSize,
		TotalCount:      mapped.TotalCount,
		TotalPages:      mapped.TotalPages(),
		HasPreviousPage: mapped.HasPreviousPage(),
		HasNextPage:     mapped.HasNextPage(),
	}
}

func createFields(req dto.CreateVideoGameRequest) domain.VideoGameFields {
	return domain.VideoGameFields{
		Title:       req.Title,
		Genre:       req.Genre,
		Platform:    req.Platform,
		ReleaseYear: req.ReleaseYear,
		Price:       req.Price,
		Description: req.Description,
		ImageURL:    req.ImageURL,
	}
}

func updateFields(req dto.UpdateVideoGameRequest) domain.VideoGameFields {
	return createFields(dto.CreateVideoGameRequest(req))
}
