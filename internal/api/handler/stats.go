package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/sanosuguru/go-event-booking/internal/api"
	"github.com/sanosuguru/go-event-booking/internal/domain/booking"
)

type StatsHandler struct {
	service StatsServiceInterface
}

func NewStatsHandler(s StatsServiceInterface) *StatsHandler {
	return &StatsHandler{service: s}
}

type StatsResponse struct {
	TotalEvents      int              `json:"total_events" example:"4"`
	TotalBookings    int              `json:"total_bookings" example:"12"`
	TotalRevenue     int              `json:"total_revenue" example:"8970"`
	Month            string           `json:"month" example:"2024-03"`
	MonthlyBookings  int              `json:"monthly_bookings" example:"5"`
	MonthlyRevenue   int              `json:"monthly_revenue" example:"2990"`
	PopularEvents    []*EventResponse `json:"popular_events"`
	BookingsByStatus map[string]int   `json:"bookings_by_status"`
}

// Get godoc
// @Summary 集計を取得
// @Description 全期間と指定月の予約数・売上（キャンセル分を除く）を返します
// @Tags stats
// @Produce json
// @Param month query string false "集計月（YYYY-MM）。省略時は当月"
// @Success 200 {object} StatsResponse
// @Failure 400 {object} api.ErrorResponse
// @Router /stats [get]
func (h *StatsHandler) Get(c echo.Context) error {
	s, err := h.service.Stats(c.Request().Context(), c.QueryParam("month"))
	if err != nil {
		return api.HTTPErrorFromDomain(err)
	}
	byStatus := make(map[string]int, len(s.BookingsByStatus))
	for _, st := range []booking.Status{booking.StatusConfirmed, booking.StatusCancelled, booking.StatusPending} {
		byStatus[string(st)] = s.BookingsByStatus[st]
	}
	return c.JSON(http.StatusOK, StatsResponse{
		TotalEvents:      s.TotalEvents,
		TotalBookings:    s.TotalBookings,
		TotalRevenue:     s.TotalRevenue,
		Month:            s.Window,
		MonthlyBookings:  s.WindowBookings,
		MonthlyRevenue:   s.WindowRevenue,
		PopularEvents:    toEventResponses(s.PopularEvents),
		BookingsByStatus: byStatus,
	})
}
