package routes

import (
	"github.com/gofiber/fiber/v2"
	"github.com/tutorlink/api/handlers"
	"github.com/tutorlink/api/middleware"
)

func BookingRoutes(app *fiber.App, h *handlers.BookingHandler, p *handlers.PaymentHandler) {
	api := app.Group("/api")

	api.Get("/bookings/availability/:tutorId", h.GetTutorAvailability)

	bookings := api.Group("/bookings", middleware.Protected())
	bookings.Get("", h.GetBookings)
	bookings.Post("", h.CreateBooking)
	bookings.Get("/:id", h.GetBooking)
	bookings.Put("/:id", h.UpdateBooking)
	bookings.Delete("/:id", h.DeleteBooking)

	bookings.Post("/:id/payment", p.CreatePayment)
	bookings.Put("/:id/confirm-payment", p.ConfirmPayment)
	bookings.Put("/:id/pay", middleware.AdminRequired(), p.ProcessDirectPayment)
}
