package http

import (
	"log/slog"
	"net/http"

	"github.com/cmlabs-hris/attendance-backend-go/internal/handler/http/middleware"
	"github.com/cmlabs-hris/attendance-backend-go/internal/pkg/jwt"
	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/go-chi/httplog/v3"
	"github.com/go-chi/jwtauth/v5"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
)

type RouterOptions struct {
	Logger         *slog.Logger
	AllowedOrigins []string
	ServiceName    string
}

type Handlers struct {
	Auth       AuthHandler
	Attendance AttendanceHandler
	Leave      LeaveHandler
	Schedule   ScheduleHandler
	Overtime   OvertimeHandler
	Report     ReportHandler
}

func NewRouter(opts RouterOptions, JWTService jwt.Service, h Handlers) http.Handler {
	r := chi.NewRouter()

	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	origins := opts.AllowedOrigins
	if len(origins) == 0 {
		origins = []string{"http://localhost:3000"}
	}

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   origins,
		AllowCredentials: true,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-CSRF-Token"},
		ExposedHeaders:   []string{"Link", "Content-Disposition"},
		MaxAge:           300,
	}))

	r.Use(chiMiddleware.RealIP)

	r.Use(httplog.RequestLogger(logger, &httplog.Options{
		Level:  slog.LevelDebug,
		Schema: httplog.SchemaECS,
	}))

	r.Use(chiMiddleware.CleanPath)
	r.Use(chiMiddleware.Recoverer)
	r.Use(chiMiddleware.Heartbeat("/"))

	r.Route("/api/v1", func(r chi.Router) {

		r.Post("/auth/login", h.Auth.Login)

		// Kiosk: credentials travel in the body
		r.Group(func(r chi.Router) {
			r.Use(chiMiddleware.AllowContentType("application/json"))
			r.Post("/attendance/time-in", h.Attendance.TimeIn)
			r.Post("/attendance/go-on-break", h.Attendance.GoOnBreak)
			r.Post("/attendance/back-from-break", h.Attendance.BackFromBreak)
			r.Post("/attendance/time-out", h.Attendance.TimeOut)
			r.Post("/attendance/skip-break-time-out", h.Attendance.SkipBreakTimeOut)
		})

		// Requires authentication
		r.Group(func(r chi.Router) {
			r.Use(jwtauth.Verifier(JWTService.JWTAuth()))
			r.Use(middleware.AuthRequired)

			r.Post("/attendance/overtime-reason", h.Attendance.SubmitOvertimeReason)
			r.Route("/attendance/me", func(r chi.Router) {
				r.Get("/", h.Attendance.ListMyAttendance)
				r.Get("/today", h.Attendance.GetMyToday)
				r.Get("/history", h.Attendance.ListMyHistory)
			})

			r.Post("/leave-requests", h.Leave.CreateRequest)
			r.Get("/leave-requests/me", h.Leave.GetMyRequests)
			r.Get("/leave-balances/me", h.Leave.GetMyBalances)

			// Admin only
			r.Route("/admin", func(r chi.Router) {
				r.Use(middleware.AdminOnly)

				r.Route("/schedules", func(r chi.Router) {
					r.Get("/", h.Schedule.ListSlots)
					r.Post("/", h.Schedule.CreateSlot)
					r.Post("/recurring", h.Schedule.CreateRecurringSlots)
					r.Route("/{id}", func(r chi.Router) {
						r.Get("/", h.Schedule.GetSlot)
						r.Delete("/", h.Schedule.DeleteSlot)
						r.Put("/assign", h.Schedule.AssignSlot)
						r.Put("/reassign", h.Schedule.ReassignSlot)
					})
				})

				r.Route("/leave-requests", func(r chi.Router) {
					r.Get("/", h.Leave.ListRequests)
					r.Get("/{id}", h.Leave.GetRequest)
					r.Post("/{id}/approve", h.Leave.ApproveRequest)
					r.Post("/{id}/decline", h.Leave.DeclineRequest)
				})
				r.Put("/employees/{id}/leave-balances/{category}", h.Leave.EditBalance)

				r.Route("/overtime", func(r chi.Router) {
					r.Get("/", h.Overtime.List)
					r.Get("/statistics", h.Overtime.Statistics)
					r.Get("/{id}", h.Overtime.Get)
					r.Post("/{id}/approve", h.Overtime.Approve)
					r.Post("/{id}/decline", h.Overtime.Decline)
				})

				r.Get("/reports/employees/{id}/monthly", h.Report.GetMonthlyAttendanceReport)
				r.Post("/absences/sweep", h.Attendance.SweepAbsences)
			})
		})
	})

	serviceName := opts.ServiceName
	if serviceName == "" {
		serviceName = "attendance-backend"
	}
	return otelhttp.NewHandler(r, serviceName)
}
