package httpserver

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"reflect"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/Clark-Hu/gamestore-catalogue/internal/domain"
	"github.com/Clark-Hu/gamestore-catalogue/internal/dto"
)

const (
	maxRequestBody  = 1 << 20 // 1 MiB
	defaultPageSize = 10
	unexpectedError = "An unexpected error occurred."
)

type errorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

type countResponse struct {
	Count int `json:"count"`
}

// pageQuery holds the optional paging parameters shared by every list
// endpoint. Paging is requested by the presence of pageNumber.
type pageQuery struct {
	Number int `query:"pageNumber" validate:"min=1"`
	Size   int `query:"pageSize" validate:"min=1,max=100"`
}

type listFunc func(ctx context.Context) ([]dto.VideoGame, error)

type pagedFunc func(ctx context.Context, pageNumber, pageSize int) (dto.PagedResult[dto.VideoGame], error)

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(field reflect.StructField) string {
		if name := field.Tag.Get("query"); name != "" {
			return name
		}
		return field.Name
	})
	return v
}

func (s *Server) handleListVideoGames(w http.ResponseWriter, r *http.Request) {
	s.serveList(w, r, s.games.GetAll, s.games.GetAllPaged)
}

func (s *Server) handleSearchVideoGames(w http.ResponseWriter, r *http.Request) {
	term := r.URL.Query().Get("term")
	s.serveList(w, r,
		func(ctx context.Context) ([]dto.VideoGame, error) {
			return s.games.Search(ctx, term)
		},
		func(ctx context.Context, number, size int) (dto.PagedResult[dto.VideoGame], error) {
			return s.games.SearchPaged(ctx, term, number, size)
		},
	)
}

func (s *Server) handleVideoGamesByGenre(w http.ResponseWriter, r *http.Request) {
	genre, err := decodePathParam(r, "genre")
	if err != nil {
		s.respondError(w, http.StatusBadRequest, "BAD_REQUEST", err.Error())
		return
	}
	s.serveList(w, r,
		func(ctx context.Context) ([]dto.VideoGame, error) {
			return s.games.GetByGenre(ctx, genre)
		},
		func(ctx context.Context, number, size int) (dto.PagedResult[dto.VideoGame], error) {
			return s.games.GetByGenrePaged(ctx, genre, number, size)
		},
	)
}

func (s *Server) handleVideoGamesByPlatform(w http.ResponseWriter, r *http.Request) {
	platform, err := decodePathParam(r, "platform")
	if err != nil {
		s.respondError(w, http.StatusBadRequest, "BAD_REQUEST", err.Error())
		return
	}
	s.serveList(w, r,
		func(ctx context.Context) ([]dto.VideoGame, error) {
			return s.games.GetByPlatform(ctx, platform)
		},
		func(ctx context.Context, number, size int) (dto.PagedResult[dto.VideoGame], error) {
			return s.games.GetByPlatformPaged(ctx, platform, number, size)
		},
	)
}

func (s *Server) handleVideoGamesByYear(w http.ResponseWriter, r *http.Request) {
	year, err := strconv.Atoi(chi.URLParam(r, "year"))
	if err != nil {
		s.respondError(w, http.StatusBadRequest, "BAD_REQUEST", "year must be an integer")
		return
	}
	s.serveList(w, r,
		func(ctx context.Context) ([]dto.VideoGame, error) {
			return s.games.GetByReleaseYear(ctx, year)
		},
		func(ctx context.Context, number, size int) (dto.PagedResult[dto.VideoGame], error) {
			return s.games.GetByReleaseYearPaged(ctx, year, number, size)
		},
	)
}

func (s *Server) handleCountVideoGames(w http.ResponseWriter, r *http.Request) {
	count, err := s.games.Count(r.Context())
	if err != nil {
		s.respondServiceError(w, r, err)
		return
	}
	s.respondJSON(w, http.StatusOK, countResponse{Count: count})
}

func (s *Server) handleGetVideoGame(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(r)
	if err != nil {
		s.respondError(w, http.StatusBadRequest, "BAD_REQUEST", err.Error())
		return
	}

	game, err := s.games.GetByID(r.Context(), id)
	if err != nil {
		s.respondServiceError(w, r, err)
		return
	}
	if game == nil {
		s.respondServiceError(w, r, domain.NewNotFoundError(domain.VideoGameEntityName, id))
		return
	}
	s.respondJSON(w, http.StatusOK, game)
}

func (s *Server) handleCreateVideoGame(w http.ResponseWriter, r *http.Request) {
	var req dto.CreateVideoGameRequest
	if err := decodeJSONBody(w, r, &req); err != nil {
		s.respondDecodeError(w, err)
		return
	}

	game, err := s.games.Create(r.Context(), req)
	if err != nil {
		s.respondServiceError(w, r, err)
		return
	}

	w.Header().Set("Location", fmt.Sprintf("/api/videogames/%d", game.ID))
	s.respondJSON(w, http.StatusCreated, game)
}

func (s *Server) handleUpdateVideoGame(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(r)
	if err != nil {
		s.respondError(w, http.StatusBadRequest, "BAD_REQUEST", err.Error())
		return
	}

	var req dto.UpdateVideoGameRequest
	if err := decodeJSONBody(w, r, &req); err != nil {
		s.respondDecodeError(w, err)
		return
	}

	game, err := s.games.Update(r.Context(), id, req)
	if err != nil {
		s.respondServiceError(w, r, err)
		return
	}
	s.respondJSON(w, http.StatusOK, game)
}

func (s *Server) handleDeleteVideoGame(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(r)
	if err != nil {
		s.respondError(w, http.StatusBadRequest, "BAD_REQUEST", err.Error())
		return
	}

	if err := s.games.Delete(r.Context(), id); err != nil {
		s.respondServiceError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// serveList answers with a plain array, or with a page when pageNumber is
// present in the query string.
func (s *Server) serveList(w http.ResponseWriter, r *http.Request, list listFunc, paged pagedFunc) {
	page, isPaged, err := s.parsePageQuery(r.URL.Query())
	if err != nil {
		s.respondError(w, http.StatusBadRequest, "BAD_REQUEST", err.Error())
		return
	}

	if isPaged {
		result, err := paged(r.Context(), page.Number, page.Size)
		if err != nil {
			s.respondServiceError(w, r, err)
			return
		}
		s.respondJSON(w, http.StatusOK, result)
		return
	}

	items, err := list(r.Context())
	if err != nil {
		s.respondServiceError(w, r, err)
		return
	}
	s.respondJSON(w, http.StatusOK, items)
}

func (s *Server) parsePageQuery(query url.Values) (pageQuery, bool, error) {
	page := pageQuery{Size: defaultPageSize}

	rawNumber := strings.TrimSpace(query.Get("pageNumber"))
	if rawNumber == "" {
		return page, false, nil
	}
	number, err := strconv.Atoi(rawNumber)
	if err != nil {
		return page, false, fmt.Errorf("pageNumber must be an integer")
	}
	page.Number = number

	if rawSize := strings.TrimSpace(query.Get("pageSize")); rawSize != "" {
		size, err := strconv.Atoi(rawSize)
		if err != nil {
			return page, false, fmt.Errorf("pageSize must be an integer")
		}
		page.Size = size
	}

	if err := s.validate.Struct(page); err != nil {
		return page, false, describeValidation(err)
	}
	return page, true, nil
}

func describeValidation(err error) error {
	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) || len(fieldErrs) == 0 {
		return err
	}
	fe := fieldErrs[0]
	switch fe.Tag() {
	case "min":
		return fmt.Errorf("%s must be at least %s", fe.Field(), fe.Param())
	case "max":
		return fmt.Errorf("%s must be at most %s", fe.Field(), fe.Param())
	default:
		return fmt.Errorf("%s is invalid", fe.Field())
	}
}

func parseID(r *http.Request) (int64, error) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("id must be a positive integer")
	}
	return id, nil
}

// decodePathParam unescapes a path parameter only when chi routed on the raw
// path; otherwise the value is already decoded.
func decodePathParam(r *http.Request, name string) (string, error) {
	value := chi.URLParam(r, name)
	if r.URL.RawPath == "" {
		return value, nil
	}
	decoded, err := url.PathUnescape(value)
	if err != nil {
		return "", fmt.Errorf("invalid %s parameter", name)
	}
	return decoded, nil
}

func decodeJSONBody(w http.ResponseWriter, r *http.Request, dst interface{}) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxRequestBody)
	defer r.Body.Close()
	return json.NewDecoder(r.Body).Decode(dst)
}

func (s *Server) respondJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if payload != nil {
		if err := json.NewEncoder(w).Encode(payload); err != nil {
			s.logger.WithError(err).Error("http: failed to encode response")
		}
	}
}

func (s *Server) respondError(w http.ResponseWriter, status int, code, message string) {
	s.respondJSON(w, status, errorResponse{
		Code:    code,
		Message: message,
	})
}

func (s *Server) respondDecodeError(w http.ResponseWriter, err error) {
	var syntaxError *json.SyntaxError
	var typeError *json.UnmarshalTypeError
	var maxBytesError *http.MaxBytesError
	switch {
	case errors.As(err, &syntaxError), errors.Is(err, io.ErrUnexpectedEOF):
		s.respondError(w, http.StatusBadRequest, "BAD_REQUEST", "Malformed JSON payload")
	case errors.As(err, &typeError):
		s.respondError(w, http.StatusBadRequest, "BAD_REQUEST", fmt.Sprintf("Invalid value for field %s", typeError.Field))
	case errors.Is(err, io.EOF):
		s.respondError(w, http.StatusBadRequest, "BAD_REQUEST", "Request body cannot be empty")
	case errors.As(err, &maxBytesError):
		s.respondError(w, http.StatusRequestEntityTooLarge, "BAD_REQUEST", "Request body too large")
	default:
		s.respondError(w, http.StatusBadRequest, "BAD_REQUEST", "Unable to parse request body")
	}
}

// respondServiceError maps catalogue errors onto status codes. Anything
// that is neither a validation nor a not-found failure is logged and hidden
// behind a generic message.
func (s *Server) respondServiceError(w http.ResponseWriter, r *http.Request, err error) {
	var validationErr *domain.ValidationError
	var notFoundErr *domain.NotFoundError
	switch {
	case errors.As(err, &validationErr):
		s.respondError(w, http.StatusBadRequest, "VALIDATION_ERROR", validationErr.Message)
	case errors.As(err, &notFoundErr):
		s.respondError(w, http.StatusNotFound, "NOT_FOUND", notFoundErr.Error())
	default:
		s.logger.WithError(err).WithField("path", r.URL.Path).Error("http: unhandled service error")
		s.respondError(w, http.StatusInternalServerError, "INTERNAL_ERROR", unexpectedError)
	}
}
