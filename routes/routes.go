package routes

import (
	"gatepass/checkin"
	"gatepass/events"
	"gatepass/livesync"
	"gatepass/middleware"
	"gatepass/printpass"
	"gatepass/ratelim"
	"gatepass/registrations"

	"github.com/julienschmidt/httprouter"
)

func AddEventsRoutes(router *httprouter.Router) {
	router.GET("/api/events/events", ratelim.RateLimit(middleware.OptionalAuth(events.GetEvents)))
	router.GET("/api/events/event/:eventid", events.GetEvent)
	router.POST("/api/events/event", middleware.Authenticate(middleware.RequireAdmin(events.CreateEvent)))
	router.PUT("/api/events/event/:eventid", middleware.Authenticate(middleware.RequireAdmin(events.EditEvent)))
	router.DELETE("/api/events/event/:eventid", middleware.Authenticate(middleware.RequireAdmin(events.DeleteEvent)))
}

func AddRegistrationRoutes(router *httprouter.Router) {
	router.POST("/api/reg/event/:eventid/orders", ratelim.RateLimit(middleware.OptionalAuth(registrations.CreateOrderHandler)))
	router.GET("/api/reg/event/:eventid/next-number", ratelim.RateLimit(registrations.PeekQueueNumberHandler))
	router.GET("/api/reg/event/:eventid/seats", ratelim.RateLimit(registrations.SeatsLeftHandler))

	router.POST("/api/reg/event/:eventid/attendance", middleware.Authenticate(middleware.RequireAdmin(registrations.MarkAttendanceHandler)))
	router.POST("/api/reg/event/:eventid/attendance/bulk", middleware.Authenticate(middleware.RequireAdmin(registrations.BulkMarkAttendanceHandler)))
	router.POST("/api/reg/event/:eventid/cancel", ratelim.RateLimit(middleware.OptionalAuth(registrations.SetCancelledHandler)))
	router.DELETE("/api/reg/event/:eventid/group/:queuenumber", middleware.Authenticate(middleware.RequireAdmin(registrations.DeleteGroupHandler)))
	router.PATCH("/api/reg/order/:orderid/group/:groupid/field/:fieldid", middleware.Authenticate(middleware.RequireAdmin(registrations.UpdateFieldHandler)))
}

func AddCheckinRoutes(router *httprouter.Router) {
	router.POST("/api/checkin/scan", ratelim.RateLimit(middleware.Authenticate(checkin.HandleScan)))
}

func AddSyncRoutes(router *httprouter.Router) {
	router.GET("/api/sync/event/:eventid", middleware.Authenticate(livesync.EventSnapshotHandler))
	router.GET("/api/sync/phone/:phone", ratelim.RateLimit(middleware.OptionalAuth(livesync.PhoneSnapshotHandler)))
}

func AddPassRoutes(router *httprouter.Router) {
	router.GET("/api/pass/:eventid/:queuenumber", ratelim.RateLimit(printpass.PrintPass))
}
