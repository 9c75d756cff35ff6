package http

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"

	"github.com/healthsurge/backend/internal/domain"
	"github.com/healthsurge/backend/internal/observability"
	"github.com/healthsurge/backend/internal/service"
)

// Handler contains all HTTP handlers
type Handler struct {
	scorer     *service.Scorer
	dispatcher *service.Dispatcher
	contacts   service.ContactRepository
	historical service.HistoricalRepository
	auditor    *service.Auditor
	metrics    *observability.Metrics
	validate   *validator.Validate
}

// NewHandler creates a new handler
func NewHandler(deps Dependencies) *Handler {
	return &Handler{
		scorer:     deps.Scorer,
		dispatcher: deps.Dispatcher,
		contacts:   deps.Contacts,
		historical: deps.Historical,
		auditor:    deps.Auditor,
		metrics:    deps.Metrics,
		validate:   newValidator(),
	}
}

func newValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// bind parses and validates the JSON body into out
func (h *Handler) bind(c *fiber.Ctx, out any) error {
	if err := c.BodyParser(out); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "Invalid request body")
	}
	if err := h.validate.Struct(out); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, describeValidation(err))
	}
	return nil
}

func describeValidation(err error) string {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return fmt.Sprintf("%v: %v", domain.ErrValidation, err)
	}
	parts := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		parts = append(parts, fmt.Sprintf("%s failed %q", fe.Field(), fe.Tag()))
	}
	return fmt.Sprintf("%v: %s", domain.ErrValidation, strings.Join(parts, ", "))
}

// Root returns the liveness banner
func (h *Handler) Root(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{"message": "HealthSurgeAI Prediction API"})
}

// HealthCheck returns service health status
func (h *Handler) HealthCheck(c *fiber.Ctx) error {
	audit := "ok"
	if err := h.auditor.Health(c.Context()); err != nil {
		audit = err.Error()
	}

	return c.JSON(fiber.Map{
		"status":          "ok",
		"service":         "healthsurge-backend",
		"version":         "1.0.0",
		"model":           h.scorer.Model(),
		"contacts":        len(h.contacts.List()),
		"historical_rows": h.historical.Len(),
		"audit":           audit,
	})
}

// Predict scores a surge prediction from environmental inputs
func (h *Handler) Predict(c *fiber.Ctx) error {
	var req domain.PredictionRequest
	if err := h.bind(c, &req); err != nil {
		return err
	}

	conditions := req.Conditions()
	result := h.scorer.Predict(conditions)
	h.auditor.RecordPrediction(conditions, result)

	return c.JSON(result)
}

// ExecuteEmergency fans the actions out to every contact
func (h *Handler) ExecuteEmergency(c *fiber.Ctx) error {
	var req domain.EmergencyRequest
	if err := h.bind(c, &req); err != nil {
		return err
	}

	outcome := h.dispatcher.ExecuteEmergency(c.Context(), req.Actions)
	if outcome.Status != domain.StatusError {
		h.auditor.RecordDispatch(req.Actions, outcome)
	}

	return c.JSON(outcome)
}

// CallStaff places a single voice call
func (h *Handler) CallStaff(c *fiber.Ctx) error {
	var req domain.CallRequest
	if err := h.bind(c, &req); err != nil {
		return err
	}

	return c.JSON(h.dispatcher.CallStaff(c.Context(), req.Phone, req.Message))
}

// SendRestockEmail emails a vendor a restock request
func (h *Handler) SendRestockEmail(c *fiber.Ctx) error {
	var req domain.RestockRequest
	if err := h.bind(c, &req); err != nil {
		return err
	}

	return c.JSON(h.dispatcher.SendRestockEmail(c.Context(), req.ItemName, req.Quantity, req.VendorEmail))
}

// GetContacts returns the emergency roster
func (h *Handler) GetContacts(c *fiber.Ctx) error {
	return c.JSON(h.contacts.List())
}

// AddContact appends a contact and returns the updated roster
func (h *Handler) AddContact(c *fiber.Ctx) error {
	var req domain.ContactInput
	if err := h.bind(c, &req); err != nil {
		return err
	}

	h.contacts.Add(req)
	return h.rosterResponse(c)
}

// DeleteContact removes a contact by id and returns the updated roster
func (h *Handler) DeleteContact(c *fiber.Ctx) error {
	id, err := c.ParamsInt("contact_id")
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "contact_id must be an integer")
	}

	h.contacts.Delete(id)
	return h.rosterResponse(c)
}

func (h *Handler) rosterResponse(c *fiber.Ctx) error {
	contacts := h.contacts.List()
	if h.metrics != nil {
		h.metrics.Contacts.Set(float64(len(contacts)))
	}
	return c.JSON(fiber.Map{
		"status":   "success",
		"contacts": contacts,
	})
}

// GetHistorical returns the trailing window of the historical dataset
func (h *Handler) GetHistorical(c *fiber.Ctx) error {
	return c.JSON(h.historical.Tail(domain.HistoricalWindow))
}
