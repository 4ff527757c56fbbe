package catalog

import (
	"catalogapi/internal/httpx"
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"go.uber.org/zap"
)

var errNullAvailability = errors.New("availability must be true or false")

type HTTPHandler struct {
	svc    *Service
	logger *zap.Logger
}

func NewHTTPHandler(svc *Service, logger *zap.Logger) *HTTPHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &HTTPHandler{svc: svc, logger: logger}
}

type searchRequest struct {
	Criterio string `validate:"notblank"`
}

// GetBook handles GET /libros/{id}
// @Summary Get a book
// @Description Full record of one book: title, ISBN, category, authors and availability
// @Tags libros
// @Produce json
// @Param id path string true "Book id" example(LIB001)
// @Success 200 {object} Book
// @Failure 401 {object} httpx.ErrorResponse
// @Failure 403 {object} httpx.ErrorResponse
// @Failure 404 "Book not found"
// @Security BearerAuth
// @Router /libros/{id} [get]
func (h *HTTPHandler) GetBook(w http.ResponseWriter, r *http.Request) {
	id, err := ParseBookID(r.PathValue("id"))
	if err != nil {
		httpx.Empty(w, http.StatusNotFound)
		return
	}

	book, ok, err := h.svc.GetBook(r.Context(), id)
	if err != nil {
		h.internalError(w, r, err)
		return
	}
	if !ok {
		httpx.Empty(w, http.StatusNotFound)
		return
	}
	httpx.JSON(w, http.StatusOK, book)
}

// IsAvailable handles GET /libros/{id}/disponible
// @Summary Check availability
// @Description true when the book exists and can be loaned, false otherwise
// @Tags libros
// @Produce json
// @Param id path string true "Book id" example(LIB001)
// @Success 200 {boolean} boolean
// @Failure 401 {object} httpx.ErrorResponse
// @Failure 403 {object} httpx.ErrorResponse
// @Security BearerAuth
// @Router /libros/{id}/disponible [get]
func (h *HTTPHandler) IsAvailable(w http.ResponseWriter, r *http.Request) {
	id, err := ParseBookID(r.PathValue("id"))
	if err != nil {
		httpx.JSON(w, http.StatusOK, false)
		return
	}

	available, err := h.svc.IsAvailable(r.Context(), id)
	if err != nil {
		h.internalError(w, r, err)
		return
	}
	httpx.JSON(w, http.StatusOK, available)
}

// UpdateAvailability handles PUT /libros/{id}/disponibilidad
// @Summary Update availability
// @Description Librarians set the availability flag when a loan starts or ends
// @Tags libros
// @Accept json
// @Param id path string true "Book id" example(LIB001)
// @Param disponible body boolean true "New availability"
// @Success 200 "Availability updated"
// @Failure 400 {object} httpx.ErrorResponse
// @Failure 401 {object} httpx.ErrorResponse
// @Failure 403 {object} httpx.ErrorResponse
// @Failure 404 "Book not found"
// @Security BearerAuth
// @Router /libros/{id}/disponibilidad [put]
func (h *HTTPHandler) UpdateAvailability(w http.ResponseWriter, r *http.Request) {
	id, err := ParseBookID(r.PathValue("id"))
	if err != nil {
		httpx.JSONError(w, r, http.StatusBadRequest, "INVALID_ID", "Book id must not be blank", nil)
		return
	}

	available, err := decodeAvailability(r.Body)
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			httpx.JSONError(w, r, http.StatusRequestEntityTooLarge, "PAYLOAD_TOO_LARGE", "Request body too large", nil)
			return
		}
		httpx.JSONError(w, r, http.StatusBadRequest, "BAD_REQUEST", "Body must be a JSON boolean", nil)
		return
	}

	err = h.svc.UpdateAvailability(r.Context(), id, available)
	switch {
	case errors.Is(err, ErrNotFound):
		httpx.Empty(w, http.StatusNotFound)
	case err != nil:
		h.internalError(w, r, err)
	default:
		httpx.Empty(w, http.StatusOK)
	}
}

// Search handles GET /libros/buscar
// @Summary Search books
// @Description Case-insensitive match on title, author, ISBN and category
// @Tags libros
// @Produce json
// @Param criterio query string true "Search text" example(García Márquez)
// @Success 200 {array} Book
// @Failure 400 {object} httpx.ErrorResponse
// @Failure 401 {object} httpx.ErrorResponse
// @Failure 403 {object} httpx.ErrorResponse
// @Security BearerAuth
// @Router /libros/buscar [get]
func (h *HTTPHandler) Search(w http.ResponseWriter, r *http.Request) {
	req := searchRequest{Criterio: r.URL.Query().Get("criterio")}
	if details := httpx.ValidateStruct(req); len(details) > 0 {
		httpx.JSONError(w, r, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid search criterion", details)
		return
	}

	books, err := h.svc.Search(r.Context(), req.Criterio)
	if err != nil {
		if errors.Is(err, ErrInvalidCriterion) {
			httpx.JSONError(w, r, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid search criterion", nil)
			return
		}
		h.internalError(w, r, err)
		return
	}
	httpx.JSON(w, http.StatusOK, books)
}

func (h *HTTPHandler) internalError(w http.ResponseWriter, r *http.Request, err error) {
	h.logger.Error("catalog request failed",
		zap.String("method", r.Method),
		zap.String("path", r.URL.Path),
		zap.String("request_id", httpx.RequestIDFrom(r)),
		zap.Error(err),
	)
	httpx.JSONError(w, r, http.StatusInternalServerError, "INTERNAL_ERROR", "Internal server error", nil)
}

// decodeAvailability reads exactly one JSON boolean from body.
func decodeAvailability(body io.Reader) (bool, error) {
	dec := json.NewDecoder(body)
	var v *bool
	if err := dec.Decode(&v); err != nil {
		return false, err
	}
	if v == nil {
		return false, errNullAvailability
	}
	if _, err := dec.Token(); !errors.Is(err, io.EOF) {
		if err == nil {
			err = errors.New("unexpected data after availability")
		}
		return false, err
	}
	return *v, nil
}
