package tracker

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"log/slog"

	"github.com/go-chi/chi/v5"

	"github.com/donnaphatt/product-tracking-app/internal/dto"
	"github.com/donnaphatt/product-tracking-app/internal/entity"
	"github.com/donnaphatt/product-tracking-app/internal/store"
)

// Router returns the tracker API route tree.
func (s *Server) Router() chi.Router {
	r := chi.NewRouter()

	r.Route("/products", func(r chi.Router) {
		r.Get("/", s.handleGetProducts)
		r.Post("/", s.handleCreateProduct)
		r.Delete("/{id}", s.handleDeleteProduct)
	})

	r.Route("/orders", func(r chi.Router) {
		r.Get("/", s.handleGetOrders)
		r.Post("/", s.handleCreateOrder)
		r.Get("/{id}", s.handleGetOrder)
		r.Patch("/{id}", s.handleUpdateOrderStatus)
	})

	r.Route("/events", func(r chi.Router) {
		r.Get("/", s.handleGetEvents)
		r.Post("/", s.handleCreateEvent)
		r.Get("/{id}", s.handleGetEvent)
		r.Delete("/{id}", s.handleDeleteEvent)
	})

	r.Get("/analytics", s.handleGetAnalytics)

	return r
}

func (s *Server) handleCreateProduct(w http.ResponseWriter, r *http.Request) {
	var req dto.ProductCreateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, r, &entity.ValidationError{Message: "malformed request body"})
		return
	}
	resp, err := s.CreateProduct(r.Context(), &req)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusCreated, resp)
}

func (s *Server) handleGetProducts(w http.ResponseWriter, r *http.Request) {
	resp, err := s.GetProducts(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, resp)
}

func (s *Server) handleDeleteProduct(w http.ResponseWriter, r *http.Request) {
	id, err := pathId(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	if err := s.DeleteProduct(r.Context(), id); err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, map[string]string{"detail": "product deleted"})
}

func (s *Server) handleCreateOrder(w http.ResponseWriter, r *http.Request) {
	var req dto.OrderCreateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, r, &entity.ValidationError{Message: "malformed request body"})
		return
	}
	resp, err := s.CreateOrder(r.Context(), &req)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusCreated, resp)
}

func (s *Server) handleGetOrders(w http.ResponseWriter, r *http.Request) {
	resp, err := s.GetOrders(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, resp)
}

func (s *Server) handleGetOrder(w http.ResponseWriter, r *http.Request) {
	id, err := pathId(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	resp, err := s.GetOrder(r.Context(), id)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, resp)
}

func (s *Server) handleUpdateOrderStatus(w http.ResponseWriter, r *http.Request) {
	id, err := pathId(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	var req dto.OrderStatusUpdateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, r, &entity.ValidationError{Message: "malformed request body"})
		return
	}
	resp, err := s.UpdateOrderStatus(r.Context(), id, req.Status)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, resp)
}

func (s *Server) handleCreateEvent(w http.ResponseWriter, r *http.Request) {
	var req dto.EventCreateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, r, &entity.ValidationError{Message: "malformed request body"})
		return
	}
	resp, err := s.CreateEvent(r.Context(), &req)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusCreated, resp)
}

func (s *Server) handleGetEvents(w http.ResponseWriter, r *http.Request) {
	resp, err := s.GetEvents(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, resp)
}

func (s *Server) handleGetEvent(w http.ResponseWriter, r *http.Request) {
	id, err := pathId(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	resp, err := s.GetEvent(r.Context(), id)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, resp)
}

func (s *Server) handleDeleteEvent(w http.ResponseWriter, r *http.Request) {
	id, err := pathId(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	if err := s.DeleteEvent(r.Context(), id); err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, map[string]string{"detail": "event deleted"})
}

func (s *Server) handleGetAnalytics(w http.ResponseWriter, r *http.Request) {
	period, err := periodFromQuery(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	resp, err := s.GetAnalytics(r.Context(), period)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, resp)
}

// HealthHandler serves the unauthenticated health probe.
func (s *Server) HealthHandler(w http.ResponseWriter, r *http.Request) {
	if err := s.Health(r.Context()); err != nil {
		writeJSON(w, r, http.StatusServiceUnavailable, map[string]string{
			"status":   "unhealthy",
			"database": "disconnected",
		})
		return
	}
	writeJSON(w, r, http.StatusOK, map[string]string{
		"status":   "healthy",
		"database": "connected",
	})
}

func pathId(r *http.Request) (int, error) {
	id, err := strconv.Atoi(chi.URLParam(r, "id"))
	if err != nil {
		return 0, &entity.ValidationError{Message: "id must be an integer"}
	}
	return id, nil
}

// periodFromQuery parses the optional inclusive from/to bounds.
func periodFromQuery(r *http.Request) (entity.TimeRange, error) {
	from, err := dto.ParseDate(r.URL.Query().Get("from"))
	if err != nil {
		return entity.TimeRange{}, &entity.ValidationError{Message: err.Error()}
	}
	to, err := dto.ParseDate(r.URL.Query().Get("to"))
	if err != nil {
		return entity.TimeRange{}, &entity.ValidationError{Message: err.Error()}
	}
	if !from.IsZero() && !to.IsZero() && to.Time.Before(from.Time) {
		return entity.TimeRange{}, &entity.ValidationError{Message: "to must not precede from"}
	}
	return entity.TimeRange{From: from.Time, To: to.Time}, nil
}

func writeJSON(w http.ResponseWriter, r *http.Request, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		slog.Default().ErrorContext(r.Context(), "can't encode response",
			slog.String("err", err.Error()),
		)
	}
}

func writeError(w http.ResponseWriter, r *http.Request, err error) {
	var ve *entity.ValidationError
	switch {
	case errors.As(err, &ve):
		writeJSON(w, r, http.StatusBadRequest, map[string]string{"detail": ve.Message})
	case errors.Is(err, store.ErrInsufficientStock):
		writeJSON(w, r, http.StatusBadRequest, map[string]string{"detail": err.Error()})
	case errors.Is(err, store.ErrProductNotFound),
		errors.Is(err, store.ErrOrderNotFound),
		errors.Is(err, store.ErrEventNotFound):
		writeJSON(w, r, http.StatusNotFound, map[string]string{"detail": err.Error()})
	default:
		slog.Default().ErrorContext(r.Context(), "internal error",
			slog.String("err", err.Error()),
		)
		writeJSON(w, r, http.StatusInternalServerError, map[string]string{
			"detail": http.StatusText(http.StatusInternalServerError),
		})
	}
}
