package handler

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/sanosuguru/go-event-booking/internal/api"
	"github.com/sanosuguru/go-event-booking/internal/application"
	"github.com/sanosuguru/go-event-booking/internal/domain/event"
)

type EventHandler struct {
	eventService EventServiceInterface
}

func NewEventHandler(eventService EventServiceInterface) *EventHandler {
	return &EventHandler{eventService: eventService}
}

type PriceTierRequest struct {
	ID          string `json:"id" example:"1"`
	Name        string `json:"name" validate:"required" example:"General"`
	Price       int    `json:"price" validate:"gte=0" example:"299"`
	Description string `json:"description" example:"一般席"`
	Available   *int   `json:"available" validate:"omitempty,gte=0" example:"200"`
	Total       int    `json:"total" validate:"gte=0" example:"300"`
}

type CreateEventRequest struct {
	Title          string             `json:"title" example:"Tech Conference 2024"`
	Description    string             `json:"description" example:"Join industry leaders"`
	Category       string             `json:"category" example:"Technology"`
	Date           string             `json:"date" validate:"omitempty,event_date" example:"2024-03-15"`
	Time           string             `json:"time" validate:"omitempty,event_time" example:"09:00"`
	Location       string             `json:"location" example:"San Francisco Convention Center"`
	ImageURL       string             `json:"image_url" example:"https://images.pexels.com/photos/2774556/pexels-photo-2774556.jpeg"`
	Organizer      string             `json:"organizer" example:"Tech Events Inc."`
	Featured       bool               `json:"featured" example:"true"`
	TotalSeats     int                `json:"total_seats" validate:"gte=0" example:"500"`
	AvailableSeats *int               `json:"available_seats" validate:"omitempty,gte=0" example:"350"`
	PriceTiers     []PriceTierRequest `json:"price_tiers" validate:"dive"`
}

// UpdateEventRequest は指定したフィールドだけを更新する
// price_tiers を指定した場合は種別全体を置き換える
type UpdateEventRequest struct {
	Title          *string            `json:"title"`
	Description    *string            `json:"description"`
	Category       *string            `json:"category"`
	Date           *string            `json:"date" validate:"omitempty,event_date"`
	Time           *string            `json:"time" validate:"omitempty,event_time"`
	Location       *string            `json:"location"`
	ImageURL       *string            `json:"image_url"`
	Organizer      *string            `json:"organizer"`
	Featured       *bool              `json:"featured"`
	TotalSeats     *int               `json:"total_seats" validate:"omitempty,gte=0"`
	AvailableSeats *int               `json:"available_seats" validate:"omitempty,gte=0"`
	PriceTiers     []PriceTierRequest `json:"price_tiers" validate:"omitempty,dive"`
}

type PriceTierResponse struct {
	ID          string `json:"id" example:"1"`
	Name        string `json:"name" example:"General"`
	Price       int    `json:"price" example:"299"`
	Description string `json:"description,omitempty" example:"一般席"`
	Available   int    `json:"available" example:"200"`
	Total       int    `json:"total" example:"300"`
}

type EventResponse struct {
	ID             string              `json:"id" example:"1"`
	Title          string              `json:"title" example:"Tech Conference 2024"`
	Description    string              `json:"description" example:"Join industry leaders"`
	Category       string              `json:"category" example:"Technology"`
	Date           string              `json:"date" example:"2024-03-15"`
	Time           string              `json:"time" example:"09:00"`
	Location       string              `json:"location" example:"San Francisco Convention Center"`
	ImageURL       string              `json:"image_url"`
	Organizer      string              `json:"organizer" example:"Tech Events Inc."`
	Featured       bool                `json:"featured" example:"true"`
	TotalSeats     int                 `json:"total_seats" example:"500"`
	AvailableSeats int                 `json:"available_seats" example:"350"`
	PriceTiers     []PriceTierResponse `json:"price_tiers"`
	CreatedAt      string              `json:"created_at" example:"2024-03-01T12:00:00Z"`
	UpdatedAt      string              `json:"updated_at" example:"2024-03-01T12:00:00Z"`
}

type AvailabilityResponse struct {
	EventID        string `json:"event_id" example:"1"`
	AvailableSeats int    `json:"available_seats" example:"350"`
}

func toEventResponse(e *event.Event) *EventResponse {
	tiers := make([]PriceTierResponse, len(e.PriceTiers))
	for i, t := range e.PriceTiers {
		tiers[i] = PriceTierResponse{
			ID: t.ID, Name: t.Name, Price: t.Price, Description: t.Description,
			Available: t.Available, Total: t.Total,
		}
	}
	return &EventResponse{
		ID:             e.ID,
		Title:          e.Title,
		Description:    e.Description,
		Category:       e.Category,
		Date:           e.Date,
		Time:           e.Time,
		Location:       e.Location,
		ImageURL:       e.ImageURL,
		Organizer:      e.Organizer,
		Featured:       e.Featured,
		TotalSeats:     e.TotalSeats,
		AvailableSeats: e.AvailableSeats,
		PriceTiers:     tiers,
		CreatedAt:      e.CreatedAt.Format(time.RFC3339),
		UpdatedAt:      e.UpdatedAt.Format(time.RFC3339),
	}
}

func toEventResponses(events []*event.Event) []*EventResponse {
	responses := make([]*EventResponse, len(events))
	for i, e := range events {
		responses[i] = toEventResponse(e)
	}
	return responses
}

func toTierInputs(reqs []PriceTierRequest) []application.PriceTierInput {
	if reqs == nil {
		return nil
	}
	inputs := make([]application.PriceTierInput, len(reqs))
	for i, r := range reqs {
		inputs[i] = application.PriceTierInput{
			ID: r.ID, Name: r.Name, Price: r.Price, Description: r.Description,
			Available: r.Available, Total: r.Total,
		}
	}
	return inputs
}

// Create godoc
// @Summary イベントを作成
// @Description 新しいイベントを作成します（管理者のみ）
// @Tags events
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body CreateEventRequest true "イベント情報"
// @Success 201 {object} EventResponse
// @Failure 400 {object} api.ErrorResponse
// @Failure 403 {object} api.ErrorResponse
// @Router /events [post]
func (h *EventHandler) Create(c echo.Context) error {
	var req CreateEventRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "リクエストの形式が不正です")
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	e, err := h.eventService.CreateEvent(c.Request().Context(), application.CreateEventInput{
		Title:          req.Title,
		Description:    req.Description,
		Category:       req.Category,
		Date:           req.Date,
		Time:           req.Time,
		Location:       req.Location,
		ImageURL:       req.ImageURL,
		Organizer:      req.Organizer,
		Featured:       req.Featured,
		TotalSeats:     req.TotalSeats,
		AvailableSeats: req.AvailableSeats,
		PriceTiers:     toTierInputs(req.PriceTiers),
	})
	if err != nil {
		return api.HTTPErrorFromDomain(err)
	}
	return c.JSON(http.StatusCreated, toEventResponse(e))
}

// GetByID godoc
// @Summary イベントを取得
// @Description 指定IDのイベントを取得します
// @Tags events
// @Produce json
// @Param id path string true "イベントID"
// @Success 200 {object} EventResponse
// @Failure 404 {object} api.ErrorResponse
// @Router /events/{id} [get]
func (h *EventHandler) GetByID(c echo.Context) error {
	e, err := h.eventService.GetEvent(c.Request().Context(), c.Param("id"))
	if err != nil {
		return api.HTTPErrorFromDomain(err)
	}
	return c.JSON(http.StatusOK, toEventResponse(e))
}

// List godoc
// @Summary イベントを検索
// @Description キーワード（タイトル・説明）、カテゴリ、日付で絞り込みます。条件なしで全件
// @Tags events
// @Produce json
// @Param q query string false "キーワード"
// @Param category query string false "カテゴリ"
// @Param date query string false "日付（YYYY-MM-DD）"
// @Success 200 {array} EventResponse
// @Router /events [get]
func (h *EventHandler) List(c echo.Context) error {
	events, err := h.eventService.SearchEvents(c.Request().Context(),
		c.QueryParam("q"), c.QueryParam("category"), c.QueryParam("date"))
	if err != nil {
		return api.HTTPErrorFromDomain(err)
	}
	return c.JSON(http.StatusOK, toEventResponses(events))
}

// Featured godoc
// @Summary 注目イベント
// @Tags events
// @Produce json
// @Success 200 {array} EventResponse
// @Router /events/featured [get]
func (h *EventHandler) Featured(c echo.Context) error {
	events, err := h.eventService.FeaturedEvents(c.Request().Context())
	if err != nil {
		return api.HTTPErrorFromDomain(err)
	}
	return c.JSON(http.StatusOK, toEventResponses(events))
}

// Categories godoc
// @Summary カテゴリ一覧
// @Tags events
// @Produce json
// @Success 200 {array} string
// @Router /events/categories [get]
func (h *EventHandler) Categories(c echo.Context) error {
	categories, err := h.eventService.Categories(c.Request().Context())
	if err != nil {
		return api.HTTPErrorFromDomain(err)
	}
	return c.JSON(http.StatusOK, categories)
}

// Availability godoc
// @Summary 残席数を取得
// @Tags events
// @Produce json
// @Param id path string true "イベントID"
// @Success 200 {object} AvailabilityResponse
// @Failure 404 {object} api.ErrorResponse
// @Router /events/{id}/availability [get]
func (h *EventHandler) Availability(c echo.Context) error {
	id := c.Param("id")
	seats, err := h.eventService.AvailableSeats(c.Request().Context(), id)
	if err != nil {
		return api.HTTPErrorFromDomain(err)
	}
	return c.JSON(http.StatusOK, AvailabilityResponse{EventID: id, AvailableSeats: seats})
}

// Update godoc
// @Summary イベントを更新
// @Description 指定したフィールドだけを更新します（管理者のみ）
// @Tags events
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "イベントID"
// @Param request body UpdateEventRequest true "更新するフィールド"
// @Success 200 {object} EventResponse
// @Failure 400 {object} api.ErrorResponse
// @Failure 404 {object} api.ErrorResponse
// @Router /events/{id} [patch]
func (h *EventHandler) Update(c echo.Context) error {
	var req UpdateEventRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "リクエストの形式が不正です")
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	e, err := h.eventService.UpdateEvent(c.Request().Context(), c.Param("id"), application.UpdateEventInput{
		Title:          req.Title,
		Description:    req.Description,
		Category:       req.Category,
		Date:           req.Date,
		Time:           req.Time,
		Location:       req.Location,
		ImageURL:       req.ImageURL,
		Organizer:      req.Organizer,
		Featured:       req.Featured,
		TotalSeats:     req.TotalSeats,
		AvailableSeats: req.AvailableSeats,
		PriceTiers:     toTierInputs(req.PriceTiers),
	})
	if err != nil {
		return api.HTTPErrorFromDomain(err)
	}
	return c.JSON(http.StatusOK, toEventResponse(e))
}

// Delete godoc
// @Summary イベントを削除
// @Description 指定IDのイベントを削除します。既存の予約は残ります（管理者のみ）
// @Tags events
// @Security BearerAuth
// @Param id path string true "イベントID"
// @Success 204
// @Failure 404 {object} api.ErrorResponse
// @Router /events/{id} [delete]
func (h *EventHandler) Delete(c echo.Context) error {
	if err := h.eventService.DeleteEvent(c.Request().Context(), c.Param("id")); err != nil {
		return api.HTTPErrorFromDomain(err)
	}
	return c.NoContent(http.StatusNoContent)
}
