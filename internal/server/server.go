package server

import (
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"github.com/moonlight-dining/tableside/internal/breaker"
	"github.com/moonlight-dining/tableside/internal/store"
	"github.com/moonlight-dining/tableside/pkg/models"
	"github.com/sirupsen/logrus"
)

// EventPublisher pushes order lifecycle events to the broker. Nil-able:
// the service runs fine without a broker, it just stops emitting events.
type EventPublisher interface {
	PublishOrderCreated(order *models.Order) error
	PublishStatusChanged(orderID int64, oldStatus, newStatus models.Status) error
}

// Broadcaster pushes order updates to connected dashboards.
type Broadcaster interface {
	OrderCreated(order *models.Order)
	OrderStatusUpdated(order *models.Order)
}

type Server struct {
	store     store.Store
	logger    *logrus.Logger
	publisher EventPublisher
	hub       Broadcaster
	breaker   *breaker.Breaker
}

func New(st store.Store, logger *logrus.Logger) *Server {
	return &Server{
		store:  st,
		logger: logger,
		breaker: breaker.New(breaker.Config{
			Name:        "event-publisher",
			MaxFailures: 5,
			ResetAfter:  30 * time.Second,
		}, logger),
	}
}

func (s *Server) SetPublisher(p EventPublisher) {
	s.publisher = p
}

func (s *Server) SetBroadcaster(b Broadcaster) {
	s.hub = b
}

// Router wires every route of the ordering service API.
func (s *Server) Router() *mux.Router {
	router := mux.NewRouter()

	router.HandleFunc("/health", s.HealthCheck).Methods("GET")

	router.HandleFunc("/api/menu", s.ListMenu).Methods("GET")
	router.HandleFunc("/api/orders", s.CreateOrder).Methods("POST")

	router.HandleFunc("/api/admin/menu", s.AdminListMenu).Methods("GET")
	router.HandleFunc("/api/admin/menu", s.CreateMenuItem).Methods("POST")
	router.HandleFunc("/api/admin/menu/{id:[0-9]+}", s.UpdateMenuItem).Methods("PUT")
	router.HandleFunc("/api/admin/menu/{id:[0-9]+}", s.DeleteMenuItem).Methods("DELETE")
	router.HandleFunc("/api/admin/menu/{id:[0-9]+}/toggle", s.ToggleMenuItem).Methods("PATCH")

	router.HandleFunc("/api/admin/orders", s.AdminListOrders).Methods("GET")
	router.HandleFunc("/api/admin/orders/{id:[0-9]+}", s.GetOrder).Methods("GET")
	router.HandleFunc("/api/admin/orders/{id:[0-9]+}/status", s.UpdateOrderStatus).Methods("PATCH")

	router.HandleFunc("/api/admin/auth/login", s.Login).Methods("POST")

	return router
}

func (s *Server) HealthCheck(w http.ResponseWriter, r *http.Request) {
	s.respondWithJSON(w, http.StatusOK, map[string]string{
		"status":  "healthy",
		"service": "tableside",
	})
}

func (s *Server) ListMenu(w http.ResponseWriter, r *http.Request) {
	items, err := s.store.ListMenu(true)
	if err != nil {
		s.logger.WithError(err).Error("Failed to list menu")
		s.respondWithError(w, http.StatusInternalServerError, "Failed to load menu")
		return
	}
	s.respondWithJSON(w, http.StatusOK, items)
}

func (s *Server) AdminListMenu(w http.ResponseWriter, r *http.Request) {
	items, err := s.store.ListMenu(false)
	if err != nil {
		s.logger.WithError(err).Error("Failed to list menu")
		s.respondWithError(w, http.StatusInternalServerError, "Failed to load menu")
		return
	}
	s.respondWithJSON(w, http.StatusOK, items)
}

func (s *Server) CreateMenuItem(w http.ResponseWriter, r *http.Request) {
	var req models.MenuItemRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.respondWithError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	item, err := s.store.CreateMenuItem(req)
	if err != nil {
		s.respondWithStoreError(w, err, "Failed to create menu item")
		return
	}

	s.logger.WithFields(logrus.Fields{
		"menu_item_id": item.ID,
		"name":         item.Name,
	}).Info("Menu item created")
	s.respondWithJSON(w, http.StatusCreated, item)
}

func (s *Server) UpdateMenuItem(w http.ResponseWriter, r *http.Request) {
	id := pathID(r)

	var req models.MenuItemRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.respondWithError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	item, err := s.store.UpdateMenuItem(id, req)
	if err != nil {
		s.respondWithStoreError(w, err, "Failed to update menu item")
		return
	}

	s.logger.WithField("menu_item_id", id).Info("Menu item updated")
	s.respondWithJSON(w, http.StatusOK, item)
}

func (s *Server) DeleteMenuItem(w http.ResponseWriter, r *http.Request) {
	id := pathID(r)

	if err := s.store.DeleteMenuItem(id); err != nil {
		s.respondWithStoreError(w, err, "Failed to delete menu item")
		return
	}

	s.logger.WithField("menu_item_id", id).Info("Menu item deleted")
	s.respondWithJSON(w, http.StatusOK, map[string]bool{"success": true})
}

func (s *Server) ToggleMenuItem(w http.ResponseWriter, r *http.Request) {
	id := pathID(r)

	item, err := s.store.ToggleMenuItem(id)
	if err != nil {
		s.respondWithStoreError(w, err, "Failed to toggle menu item")
		return
	}

	s.logger.WithFields(logrus.Fields{
		"menu_item_id": id,
		"active":       item.Active,
	}).Info("Menu item toggled")
	s.respondWithJSON(w, http.StatusOK, item)
}

func (s *Server) CreateOrder(w http.ResponseWriter, r *http.Request) {
	var req models.CreateOrderRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.logger.WithError(err).Error("Failed to decode order request")
		s.respondWithError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	order, err := s.store.CreateOrder(req)
	if err != nil {
		s.respondWithStoreError(w, err, "Failed to create order")
		return
	}

	s.logger.WithFields(logrus.Fields{
		"order_id":     order.ID,
		"table_number": order.TableNumber,
		"total_amount": order.TotalAmount,
		"items_count":  len(order.Items),
	}).Info("Order created")

	if s.publisher != nil {
		err := s.breaker.Execute(func() error {
			return s.publisher.PublishOrderCreated(order)
		})
		if err != nil {
			// The order is already persisted; a broker problem is not the
			// customer's problem.
			s.logger.WithError(err).Error("Failed to publish order created event")
		}
	}
	if s.hub != nil {
		s.hub.OrderCreated(order)
	}

	s.respondWithJSON(w, http.StatusCreated, order)
}

func (s *Server) AdminListOrders(w http.ResponseWriter, r *http.Request) {
	orders, err := s.store.ListOrders()
	if err != nil {
		s.logger.WithError(err).Error("Failed to list orders")
		s.respondWithError(w, http.StatusInternalServerError, "Failed to load orders")
		return
	}
	s.respondWithJSON(w, http.StatusOK, orders)
}

func (s *Server) GetOrder(w http.ResponseWriter, r *http.Request) {
	order, err := s.store.GetOrder(pathID(r))
	if err != nil {
		s.respondWithStoreError(w, err, "Failed to load order")
		return
	}
	s.respondWithJSON(w, http.StatusOK, order)
}

func (s *Server) UpdateOrderStatus(w http.ResponseWriter, r *http.Request) {
	id := pathID(r)

	var req models.UpdateStatusRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.respondWithError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	previous, err := s.store.GetOrder(id)
	if err != nil {
		s.respondWithStoreError(w, err, "Failed to load order")
		return
	}

	order, err := s.store.UpdateOrderStatus(id, req.Status)
	if err != nil {
		s.respondWithStoreError(w, err, "Failed to update status")
		return
	}

	s.logger.WithFields(logrus.Fields{
		"order_id":   id,
		"old_status": previous.Status,
		"new_status": order.Status,
	}).Info("Order status updated")

	if s.publisher != nil {
		err := s.breaker.Execute(func() error {
			return s.publisher.PublishStatusChanged(id, previous.Status, order.Status)
		})
		if err != nil {
			s.logger.WithError(err).Error("Failed to publish status changed event")
		}
	}
	if s.hub != nil {
		s.hub.OrderStatusUpdated(order)
	}

	s.respondWithJSON(w, http.StatusOK, order)
}

func (s *Server) Login(w http.ResponseWriter, r *http.Request) {
	var req models.LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.respondWithError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	admin, err := s.store.Authenticate(req.Username, req.Password)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			s.logger.WithField("username", req.Username).Warn("Login rejected")
			s.respondWithError(w, http.StatusUnauthorized, "Invalid username or password")
			return
		}
		s.logger.WithError(err).Error("Login lookup failed")
		s.respondWithError(w, http.StatusInternalServerError, "Login failed")
		return
	}

	s.logger.WithField("username", admin.Username).Info("Admin logged in")
	s.respondWithJSON(w, http.StatusOK, models.LoginResponse{
		Token:    generateToken(admin),
		Username: admin.Username,
		FullName: admin.FullName,
		Role:     admin.Role,
	})
}

// generateToken issues an opaque session token. There is no server-side
// verification contract for it; it only has to be unguessable.
func generateToken(admin *models.Admin) string {
	raw := fmt.Sprintf("%d:%s:%s", admin.ID, admin.Username, uuid.New().String())
	return base64.StdEncoding.EncodeToString([]byte(raw))
}

func pathID(r *http.Request) int64 {
	id, _ := strconv.ParseInt(mux.Vars(r)["id"], 10, 64)
	return id
}

// respondWithStoreError maps store failures onto HTTP statuses.
func (s *Server) respondWithStoreError(w http.ResponseWriter, err error, fallback string) {
	var badReq store.BadRequestError
	switch {
	case errors.As(err, &badReq):
		s.respondWithError(w, http.StatusBadRequest, badReq.Message)
	case errors.Is(err, store.ErrNotFound):
		s.respondWithError(w, http.StatusNotFound, "Not found")
	default:
		s.logger.WithError(err).Error(fallback)
		s.respondWithError(w, http.StatusInternalServerError, fallback)
	}
}

func (s *Server) respondWithJSON(w http.ResponseWriter, code int, payload interface{}) {
	response, _ := json.Marshal(payload)
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	w.Write(response)
}

func (s *Server) respondWithError(w http.ResponseWriter, code int, message string) {
	s.respondWithJSON(w, code, models.ErrorResponse{
		Success: false,
		Message: message,
	})
}
