package handlers

import (
	"context"
	"strings"
	"time"

	"github.com/danielgtaylor/huma/v2"
	"github.com/gdg-garage/academic-nft-api/internal/auth"
	"github.com/gdg-garage/academic-nft-api/internal/models"
	"github.com/gdg-garage/academic-nft-api/internal/notifier"
	"github.com/gdg-garage/academic-nft-api/internal/pricing"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type EventHandler struct {
	db          *gorm.DB
	notifier    notifier.Notifier
	authHandler *auth.AuthHandler
	log         *zap.Logger
}

func NewEventHandler(db *gorm.DB, notifier notifier.Notifier, authHandler *auth.AuthHandler, log *zap.Logger) *EventHandler {
	return &EventHandler{db: db, notifier: notifier, authHandler: authHandler, log: log}
}

type DiscountView struct {
	CredentialTag string `json:"credential_tag" doc:"Credential tag that earns the discount" minLength:"1"`
	Percent       int    `json:"percent" doc:"Percent off the base price, 100 means free" minimum:"0" maximum:"100"`
}

type EventView struct {
	ID          uint           `json:"id"`
	Name        string         `json:"name"`
	Description string         `json:"description"`
	StartsAt    time.Time      `json:"starts_at"`
	BasePrice   float64        `json:"base_price"`
	Discounts   []DiscountView `json:"discounts"`
}

func eventView(e models.Event) EventView {
	v := EventView{
		ID:          e.ID,
		Name:        e.Name,
		Description: e.Description,
		StartsAt:    e.StartsAt,
		BasePrice:   e.BasePrice.InexactFloat64(),
		Discounts:   make([]DiscountView, 0, len(e.Discounts)),
	}
	for _, d := range e.Discounts {
		v.Discounts = append(v.Discounts, DiscountView{CredentialTag: d.CredentialTag, Percent: d.Percent})
	}
	return v
}

func (h *EventHandler) loadEvent(ctx context.Context, id uint) (models.Event, error) {
	var event models.Event
	if err := h.db.WithContext(ctx).Preload("Discounts").First(&event, id).Error; err != nil {
		return models.Event{}, notFoundOr(err, "Event")
	}
	return event, nil
}

type ListEventsRequest struct {
	auth.AuthInput
	Upcoming bool `query:"upcoming" doc:"Only events that have not started yet"`
}

type ListEventsResponse struct {
	Body []EventView
}

func (h *EventHandler) HandleList(ctx context.Context, input *ListEventsRequest) (*ListEventsResponse, error) {
	if _, err := h.authHandler.Authorize(ctx, input.AuthInput); err != nil {
		return nil, err
	}

	query := h.db.WithContext(ctx).Preload("Discounts").Order("starts_at asc")
	if input.Upcoming {
		query = query.Where("starts_at > ?", time.Now())
	}

	var events []models.Event
	if err := query.Find(&events).Error; err != nil {
		return nil, huma.Error500InternalServerError("Failed to list events")
	}

	res := &ListEventsResponse{Body: make([]EventView, 0, len(events))}
	for _, e := range events {
		res.Body = append(res.Body, eventView(e))
	}
	return res, nil
}

type GetEventRequest struct {
	auth.AuthInput
	ID uint `path:"id"`
}

type EventResponse struct {
	Body EventView
}

func (h *EventHandler) HandleGet(ctx context.Context, input *GetEventRequest) (*EventResponse, error) {
	if _, err := h.authHandler.Authorize(ctx, input.AuthInput); err != nil {
		return nil, err
	}

	event, err := h.loadEvent(ctx, input.ID)
	if err != nil {
		return nil, err
	}
	return &EventResponse{Body: eventView(event)}, nil
}

type CreateEventRequest struct {
	auth.AuthInput
	Body struct {
		Name        string         `json:"name" required:"true" minLength:"1"`
		Description string         `json:"description,omitempty"`
		StartsAt    time.Time      `json:"starts_at" required:"true"`
		BasePrice   float64        `json:"base_price" minimum:"0"`
		Discounts   []DiscountView `json:"discounts,omitempty"`
	}
}

func (h *EventHandler) HandleCreate(ctx context.Context, input *CreateEventRequest) (*EventResponse, error) {
	if _, err := requireOrganizer(ctx, h.authHandler, input.AuthInput); err != nil {
		return nil, err
	}

	name := strings.TrimSpace(input.Body.Name)
	if name == "" {
		return nil, huma.Error400BadRequest("Name is required")
	}

	event := models.Event{
		Name:        name,
		Description: input.Body.Description,
		StartsAt:    input.Body.StartsAt,
		BasePrice:   decimal.NewFromFloat(input.Body.BasePrice),
	}
	table := make(map[string]int, len(input.Body.Discounts))
	for _, d := range input.Body.Discounts {
		if _, dup := table[d.CredentialTag]; dup {
			return nil, huma.Error400BadRequest("Duplicate discount for credential " + d.CredentialTag)
		}
		table[d.CredentialTag] = d.Percent
		event.Discounts = append(event.Discounts, models.EventDiscount{CredentialTag: d.CredentialTag, Percent: d.Percent})
	}
	if err := (pricing.Event{BasePrice: event.BasePrice, Discounts: table}).Validate(); err != nil {
		return nil, pricingError(err)
	}

	if err := h.db.WithContext(ctx).Create(&event).Error; err != nil {
		return nil, huma.Error500InternalServerError("Failed to create event: " + err.Error())
	}

	h.log.Info("Event created", zap.Uint("event_id", event.ID), zap.String("name", event.Name))
	return &EventResponse{Body: eventView(event)}, nil
}

// PriceView is the pricing contract shared by quotes and purchases.
type PriceView struct {
	UnitPrice         float64 `json:"unitPrice"`
	TotalPrice        float64 `json:"totalPrice"`
	Quantity          int     `json:"quantity"`
	DiscountPercent   int     `json:"discountPercent"`
	AppliedCredential *string `json:"appliedCredential"`
}

func priceView(r pricing.Result) PriceView {
	v := PriceView{
		UnitPrice:       r.UnitPrice.InexactFloat64(),
		TotalPrice:      r.TotalPrice.InexactFloat64(),
		Quantity:        r.Quantity,
		DiscountPercent: r.DiscountPercent,
	}
	if r.AppliedCredential != "" {
		tag := r.AppliedCredential
		v.AppliedCredential = &tag
	}
	return v
}

type QuoteRequest struct {
	auth.AuthInput
	ID   uint `path:"id"`
	Body struct {
		Quantity        int      `json:"quantity" minimum:"1"`
		HeldCredentials []string `json:"heldCredentials,omitempty" doc:"Credential tags to price with"`
	}
}

type QuoteResponse struct {
	Body PriceView
}

// HandleQuote prices tickets for an arbitrary credential set without buying.
func (h *EventHandler) HandleQuote(ctx context.Context, input *QuoteRequest) (*QuoteResponse, error) {
	if _, err := h.authHandler.Authorize(ctx, input.AuthInput); err != nil {
		return nil, err
	}

	event, err := h.loadEvent(ctx, input.ID)
	if err != nil {
		return nil, err
	}

	result, err := pricing.ComputePurchase(pricing.EventFromModel(event), input.Body.Quantity, input.Body.HeldCredentials)
	if err != nil {
		return nil, pricingError(err)
	}
	return &QuoteResponse{Body: priceView(result)}, nil
}

type PurchaseRequest struct {
	auth.AuthInput
	ID   uint `path:"id"`
	Body struct {
		Quantity int `json:"quantity" minimum:"1"`
	}
}

type PurchaseView struct {
	TicketID string `json:"ticketId"`
	EventID  uint   `json:"eventId"`
	PriceView
}

type PurchaseResponse struct {
	Body PurchaseView
}

// HandlePurchase prices tickets with the caller's minted credentials and
// records the purchase.
func (h *EventHandler) HandlePurchase(ctx context.Context, input *PurchaseRequest) (*PurchaseResponse, error) {
	userID, err := h.authHandler.Authorize(ctx, input.AuthInput)
	if err != nil {
		return nil, err
	}

	event, err := h.loadEvent(ctx, input.ID)
	if err != nil {
		return nil, err
	}

	var held []string
	if err := h.db.WithContext(ctx).Model(&models.Credential{}).Where("user_id = ?", userID).Pluck("tag", &held).Error; err != nil {
		return nil, huma.Error500InternalServerError("Failed to load credentials")
	}

	result, err := pricing.ComputePurchase(pricing.EventFromModel(event), input.Body.Quantity, held)
	if err != nil {
		return nil, pricingError(err)
	}

	view := priceView(result)
	ticket := models.Ticket{
		ID:                uuid.NewString(),
		EventID:           event.ID,
		UserID:            userID,
		Quantity:          result.Quantity,
		UnitPrice:         result.UnitPrice,
		TotalPrice:        result.TotalPrice,
		DiscountPercent:   result.DiscountPercent,
		AppliedCredential: view.AppliedCredential,
	}
	if err := h.db.WithContext(ctx).Create(&ticket).Error; err != nil {
		return nil, huma.Error500InternalServerError("Failed to record purchase: " + err.Error())
	}

	h.log.Info("Tickets purchased",
		zap.String("ticket_id", ticket.ID),
		zap.Uint("event_id", event.ID),
		zap.Uint("user_id", userID),
		zap.Int("quantity", ticket.Quantity),
		zap.String("total", ticket.TotalPrice.String()),
	)

	if h.notifier != nil {
		user, err := h.authHandler.User(ctx, userID)
		if err == nil {
			err = h.notifier.NotifyPurchase(user, event, ticket)
		}
		if err != nil {
			h.log.Warn("Failed to send purchase notification", zap.Error(err))
		}
	}

	return &PurchaseResponse{Body: PurchaseView{TicketID: ticket.ID, EventID: event.ID, PriceView: view}}, nil
}

type TicketView struct {
	ID        string    `json:"ticketId"`
	EventID   uint      `json:"eventId"`
	CreatedAt time.Time `json:"createdAt"`
	PriceView
}

type ListTicketsResponse struct {
	Body []TicketView
}

func (h *EventHandler) HandleListTickets(ctx context.Context, input *AuthRequest) (*ListTicketsResponse, error) {
	userID, err := h.authHandler.Authorize(ctx, input.AuthInput)
	if err != nil {
		return nil, err
	}

	var tickets []models.Ticket
	if err := h.db.WithContext(ctx).Where("user_id = ?", userID).Order("created_at desc").Find(&tickets).Error; err != nil {
		return nil, huma.Error500InternalServerError("Failed to list tickets")
	}

	res := &ListTicketsResponse{Body: make([]TicketView, 0, len(tickets))}
	for _, t := range tickets {
		res.Body = append(res.Body, TicketView{
			ID:        t.ID,
			EventID:   t.EventID,
			CreatedAt: t.CreatedAt,
			PriceView: PriceView{
				UnitPrice:         t.UnitPrice.InexactFloat64(),
				TotalPrice:        t.TotalPrice.InexactFloat64(),
				Quantity:          t.Quantity,
				DiscountPercent:   t.DiscountPercent,
				AppliedCredential: t.AppliedCredential,
			},
		})
	}
	return res, nil
}
