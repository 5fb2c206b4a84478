package handler

import (
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/sanosuguru/go-event-booking/internal/api"
	"github.com/sanosuguru/go-event-booking/internal/application"
	"github.com/sanosuguru/go-event-booking/internal/domain/actor"
	"github.com/sanosuguru/go-event-booking/internal/domain/booking"
	"github.com/sanosuguru/go-event-booking/internal/ticket"
)

type BookingHandler struct {
	service BookingServiceInterface
}

func NewBookingHandler(s BookingServiceInterface) *BookingHandler {
	return &BookingHandler{service: s}
}

type CreateBookingRequest struct {
	EventID       string `json:"event_id" validate:"required" example:"1"`
	TierName      string `json:"tier_name" validate:"required" example:"General"`
	Quantity      int    `json:"quantity" validate:"required,min=1,max=10" example:"3"`
	CustomerName  string `json:"customer_name" validate:"required" example:"John Doe"`
	CustomerEmail string `json:"customer_email" validate:"required,email" example:"user@demo.com"`
}

type BookingResponse struct {
	ID            string         `json:"id" example:"550e8400-e29b-41d4-a716-446655440000"`
	UserID        int64          `json:"user_id" example:"1"`
	EventID       string         `json:"event_id" example:"1"`
	Event         *EventResponse `json:"event,omitempty"`
	TierID        string         `json:"tier_id" example:"1"`
	TicketType    string         `json:"ticket_type" example:"General"`
	Quantity      int            `json:"quantity" example:"3"`
	TotalPrice    int            `json:"total_price" example:"897"`
	Status        string         `json:"status" example:"confirmed"`
	BookingDate   time.Time      `json:"booking_date"`
	TicketCode    string         `json:"ticket_code" example:"QR-1A2B3C4D5E6F7A8B"`
	CustomerName  string         `json:"customer_name" example:"John Doe"`
	CustomerEmail string         `json:"customer_email" example:"user@demo.com"`
	CancelledAt   *time.Time     `json:"cancelled_at,omitempty"`
}

type BookingSummaryResponse struct {
	Confirmed int `json:"confirmed" example:"2"`
	Cancelled int `json:"cancelled" example:"1"`
	Pending   int `json:"pending" example:"0"`
}

func toBookingResponse(b *booking.Booking) BookingResponse {
	resp := BookingResponse{
		ID: b.ID, UserID: b.UserID, EventID: b.EventID,
		TierID: b.TierID, TicketType: b.TicketType, Quantity: b.Quantity,
		TotalPrice: b.TotalPrice, Status: string(b.Status), BookingDate: b.BookingDate,
		TicketCode: b.TicketCode, CustomerName: b.CustomerName, CustomerEmail: b.CustomerEmail,
		CancelledAt: b.CancelledAt,
	}
	if b.Event != nil {
		resp.Event = toEventResponse(b.Event)
	}
	return resp
}

func toBookingResponses(bookings []*booking.Booking) []BookingResponse {
	resp := make([]BookingResponse, len(bookings))
	for i, b := range bookings {
		resp[i] = toBookingResponse(b)
	}
	return resp
}

func currentActor(c echo.Context) (actor.Actor, error) {
	a, ok := api.ActorFrom(c)
	if !ok {
		return actor.Actor{}, echo.NewHTTPError(http.StatusUnauthorized, "認証が必要です")
	}
	return a, nil
}

// ownedBooking は操作者が参照できる予約を返す（本人または管理者）
func (h *BookingHandler) ownedBooking(c echo.Context) (*booking.Booking, error) {
	a, err := currentActor(c)
	if err != nil {
		return nil, err
	}
	b, err := h.service.GetBooking(c.Request().Context(), c.Param("id"))
	if err != nil {
		return nil, api.HTTPErrorFromDomain(err)
	}
	if !a.CanAccess(b.UserID) {
		return nil, echo.NewHTTPError(http.StatusForbidden, "この予約にアクセスする権限がありません")
	}
	return b, nil
}

// Create godoc
// @Summary 予約を作成
// @Description 指定したチケット種別の座席を確保して予約を確定します
// @Tags bookings
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body CreateBookingRequest true "予約情報"
// @Success 201 {object} BookingResponse
// @Failure 400 {object} api.ErrorResponse
// @Failure 401 {object} api.ErrorResponse
// @Failure 404 {object} api.ErrorResponse "イベントが存在しない"
// @Failure 409 {object} api.ErrorResponse "チケット種別の残数不足"
// @Router /bookings [post]
func (h *BookingHandler) Create(c echo.Context) error {
	a, err := currentActor(c)
	if err != nil {
		return err
	}
	var req CreateBookingRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "無効なリクエスト")
	}
	if err := c.Validate(&req); err != nil {
		return err
	}
	b, err := h.service.CreateBooking(c.Request().Context(), application.CreateBookingInput{
		UserID:        a.UserID,
		EventID:       req.EventID,
		TierName:      req.TierName,
		Quantity:      req.Quantity,
		CustomerName:  req.CustomerName,
		CustomerEmail: req.CustomerEmail,
	})
	if err != nil {
		return api.HTTPErrorFromDomain(err)
	}
	return c.JSON(http.StatusCreated, toBookingResponse(b))
}

// ListMine godoc
// @Summary 自分の予約一覧を取得
// @Description scope=upcoming は開催前の確定済み予約、scope=past は開催済みの予約
// @Tags bookings
// @Produce json
// @Security BearerAuth
// @Param scope query string false "all / upcoming / past" default(all)
// @Success 200 {array} BookingResponse
// @Failure 400 {object} api.ErrorResponse
// @Failure 401 {object} api.ErrorResponse
// @Router /bookings [get]
func (h *BookingHandler) ListMine(c echo.Context) error {
	a, err := currentActor(c)
	if err != nil {
		return err
	}
	scope, err := application.ParseBookingScope(c.QueryParam("scope"))
	if err != nil {
		return api.HTTPErrorFromDomain(err)
	}
	bookings, err := h.service.GetUserBookings(c.Request().Context(), a.UserID, scope)
	if err != nil {
		return api.HTTPErrorFromDomain(err)
	}
	return c.JSON(http.StatusOK, toBookingResponses(bookings))
}

// Summary godoc
// @Summary 自分の予約の状態別件数
// @Tags bookings
// @Produce json
// @Security BearerAuth
// @Success 200 {object} BookingSummaryResponse
// @Router /bookings/summary [get]
func (h *BookingHandler) Summary(c echo.Context) error {
	a, err := currentActor(c)
	if err != nil {
		return err
	}
	s, err := h.service.GetBookingSummary(c.Request().Context(), a.UserID)
	if err != nil {
		return api.HTTPErrorFromDomain(err)
	}
	return c.JSON(http.StatusOK, BookingSummaryResponse{
		Confirmed: s.Confirmed, Cancelled: s.Cancelled, Pending: s.Pending,
	})
}

// GetByID godoc
// @Summary 予約を取得
// @Description 本人または管理者のみ取得できます
// @Tags bookings
// @Produce json
// @Security BearerAuth
// @Param id path string true "予約ID"
// @Success 200 {object} BookingResponse
// @Failure 403 {object} api.ErrorResponse
// @Failure 404 {object} api.ErrorResponse
// @Router /bookings/{id} [get]
func (h *BookingHandler) GetByID(c echo.Context) error {
	b, err := h.ownedBooking(c)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, toBookingResponse(b))
}

// Cancel godoc
// @Summary 予約をキャンセル
// @Description 予約をキャンセルし、座席をイベントとチケット種別に戻します
// @Tags bookings
// @Produce json
// @Security BearerAuth
// @Param id path string true "予約ID"
// @Success 200 {object} BookingResponse
// @Failure 403 {object} api.ErrorResponse
// @Failure 404 {object} api.ErrorResponse
// @Failure 409 {object} api.ErrorResponse "キャンセル済み"
// @Router /bookings/{id}/cancel [post]
func (h *BookingHandler) Cancel(c echo.Context) error {
	b, err := h.ownedBooking(c)
	if err != nil {
		return err
	}
	cancelled, err := h.service.CancelBooking(c.Request().Context(), b.ID)
	if err != nil {
		return api.HTTPErrorFromDomain(err)
	}
	return c.JSON(http.StatusOK, toBookingResponse(cancelled))
}

// Ticket godoc
// @Summary チケット情報を取得
// @Tags bookings
// @Produce json
// @Security BearerAuth
// @Param id path string true "予約ID"
// @Success 200 {object} ticket.Ticket
// @Failure 409 {object} api.ErrorResponse "キャンセル済み"
// @Router /bookings/{id}/ticket [get]
func (h *BookingHandler) Ticket(c echo.Context) error {
	t, err := h.ticketFor(c)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, t)
}

// TicketPDF godoc
// @Summary eチケットPDFをダウンロード
// @Tags bookings
// @Produce application/pdf
// @Security BearerAuth
// @Param id path string true "予約ID"
// @Success 200 {file} binary
// @Failure 409 {object} api.ErrorResponse "キャンセル済み"
// @Router /bookings/{id}/ticket.pdf [get]
func (h *BookingHandler) TicketPDF(c echo.Context) error {
	t, err := h.ticketFor(c)
	if err != nil {
		return err
	}
	pdf, err := ticket.GeneratePDF(t)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "チケットの生成に失敗しました").SetInternal(err)
	}
	c.Response().Header().Set(echo.HeaderContentDisposition, fmt.Sprintf("attachment; filename=%q", t.FileName()))
	return c.Blob(http.StatusOK, "application/pdf", pdf)
}

func (h *BookingHandler) ticketFor(c echo.Context) (*ticket.Ticket, error) {
	b, err := h.ownedBooking(c)
	if err != nil {
		return nil, err
	}
	t, err := ticket.FromBooking(b)
	if err != nil {
		if errors.Is(err, ticket.ErrTicketUnavailable) {
			return nil, echo.NewHTTPError(http.StatusConflict, err.Error())
		}
		return nil, err
	}
	return t, nil
}

// ListAll godoc
// @Summary 全予約を取得
// @Description 登録順に全ユーザーの予約を返します（管理者のみ）
// @Tags admin
// @Produce json
// @Security BearerAuth
// @Success 200 {array} BookingResponse
// @Failure 403 {object} api.ErrorResponse
// @Router /admin/bookings [get]
func (h *BookingHandler) ListAll(c echo.Context) error {
	bookings, err := h.service.ListBookings(c.Request().Context())
	if err != nil {
		return api.HTTPErrorFromDomain(err)
	}
	return c.JSON(http.StatusOK, toBookingResponses(bookings))
}
