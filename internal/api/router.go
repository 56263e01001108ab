package api

import (
	"context"
	"database/sql"
	"net/http"
	"time"

	"github.com/erazemk/hsetracker/internal/model"
	"github.com/erazemk/hsetracker/internal/monitor"
)

// Monitor is the part of the expiry monitor the handlers drive.
type Monitor interface {
	Reload(ctx context.Context, workerID int64) error
	Forget(workerID int64)
	Summary() monitor.Summary
}

// Options configures the API router.
type Options struct {
	DB        *sql.DB
	JWTSecret string
	Monitor   Monitor
	// Location is where calendar days for expiry are counted.
	Location *time.Location
	// EquipmentTypes are seeded as empty slots for new workers.
	EquipmentTypes []string
	// Now defaults to time.Now.
	Now func() time.Time
}

// NewRouter creates the API router with all endpoints registered.
func NewRouter(opts Options) http.Handler {
	if opts.Location == nil {
		opts.Location = time.Local
	}
	if opts.EquipmentTypes == nil {
		opts.EquipmentTypes = model.DefaultEquipmentTypes
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}

	mux := http.NewServeMux()

	authHandler := &AuthHandler{DB: opts.DB, JWTSecret: opts.JWTSecret}
	usersHandler := &UsersHandler{DB: opts.DB}
	workersHandler := &WorkersHandler{DB: opts.DB, Monitor: opts.Monitor, EquipmentTypes: opts.EquipmentTypes}
	equipmentHandler := &EquipmentHandler{DB: opts.DB, Monitor: opts.Monitor, Location: opts.Location, Now: opts.Now}
	stockHandler := &StockHandler{DB: opts.DB}
	notificationsHandler := &NotificationsHandler{DB: opts.DB}
	incidentsHandler := &IncidentsHandler{DB: opts.DB, Location: opts.Location, Now: opts.Now}
	trainingsHandler := &TrainingsHandler{DB: opts.DB}
	eventsHandler := &EventsHandler{DB: opts.DB}

	authMW := AuthMiddleware(opts.JWTSecret, opts.DB)
	requireAdmin := RequireRole(model.RoleAdmin)
	requireSupervisor := RequireRole(model.RoleSupervisor)

	// Public: login.
	mux.HandleFunc("POST /api/auth/login", authHandler.Login)

	mux.Handle("PUT /api/auth/password", authMW(http.HandlerFunc(authHandler.ChangePassword)))
	mux.Handle("POST /api/auth/logout", authMW(http.HandlerFunc(authHandler.Logout)))

	// Users (admin only).
	mux.Handle("GET /api/users", authMW(requireAdmin(http.HandlerFunc(usersHandler.List))))
	mux.Handle("POST /api/users", authMW(requireAdmin(http.HandlerFunc(usersHandler.Create))))
	mux.Handle("GET /api/users/{id}", authMW(requireAdmin(http.HandlerFunc(usersHandler.Get))))
	mux.Handle("PUT /api/users/{id}", authMW(requireAdmin(http.HandlerFunc(usersHandler.Update))))
	mux.Handle("PUT /api/users/{id}/password", authMW(requireAdmin(http.HandlerFunc(usersHandler.ResetPassword))))
	mux.Handle("DELETE /api/users/{id}", authMW(requireAdmin(http.HandlerFunc(usersHandler.Delete))))

	// Workers: read (all roles), write (supervisor+).
	mux.Handle("GET /api/workers", authMW(http.HandlerFunc(workersHandler.List)))
	mux.Handle("POST /api/workers", authMW(requireSupervisor(http.HandlerFunc(workersHandler.Create))))
	mux.Handle("GET /api/workers/{id}", authMW(http.HandlerFunc(workersHandler.Get)))
	mux.Handle("PUT /api/workers/{id}", authMW(requireSupervisor(http.HandlerFunc(workersHandler.Update))))
	mux.Handle("DELETE /api/workers/{id}", authMW(requireSupervisor(http.HandlerFunc(workersHandler.Delete))))

	// Equipment records: read (all roles), write (supervisor+).
	mux.Handle("GET /api/workers/{id}/equipment", authMW(http.HandlerFunc(equipmentHandler.Get)))
	mux.Handle("POST /api/workers/{id}/equipment", authMW(requireSupervisor(http.HandlerFunc(equipmentHandler.Add))))
	mux.Handle("PUT /api/workers/{id}/equipment", authMW(requireSupervisor(http.HandlerFunc(equipmentHandler.Save))))
	mux.Handle("DELETE /api/workers/{id}/equipment/{name}", authMW(requireSupervisor(http.HandlerFunc(equipmentHandler.Delete))))
	mux.Handle("GET /api/equipment/expiring", authMW(http.HandlerFunc(equipmentHandler.Expiring)))
	mux.Handle("GET /api/equipment/summary", authMW(http.HandlerFunc(equipmentHandler.Summary)))

	// Stock: read (all roles), write (supervisor+).
	mux.Handle("GET /api/stock", authMW(http.HandlerFunc(stockHandler.List)))
	mux.Handle("POST /api/stock", authMW(requireSupervisor(http.HandlerFunc(stockHandler.Create))))
	mux.Handle("GET /api/stock/low", authMW(http.HandlerFunc(stockHandler.Low)))
	mux.Handle("GET /api/stock/{id}", authMW(http.HandlerFunc(stockHandler.Get)))
	mux.Handle("PUT /api/stock/{id}", authMW(requireSupervisor(http.HandlerFunc(stockHandler.Update))))
	mux.Handle("DELETE /api/stock/{id}", authMW(requireSupervisor(http.HandlerFunc(stockHandler.Delete))))
	mux.Handle("POST /api/stock/{id}/adjust", authMW(requireSupervisor(http.HandlerFunc(stockHandler.Adjust))))
	mux.Handle("PUT /api/stock/{id}/photo", authMW(requireSupervisor(http.HandlerFunc(stockHandler.UploadPhoto))))
	mux.Handle("GET /api/stock/{id}/photo", authMW(http.HandlerFunc(stockHandler.GetPhoto)))

	// Notifications (all roles).
	mux.Handle("GET /api/notifications", authMW(http.HandlerFunc(notificationsHandler.List)))
	mux.Handle("POST /api/notifications/{id}/read", authMW(http.HandlerFunc(notificationsHandler.MarkRead)))

	// Incidents: read and report (all roles), edit (supervisor+).
	mux.Handle("GET /api/incidents", authMW(http.HandlerFunc(incidentsHandler.List)))
	mux.Handle("POST /api/incidents", authMW(http.HandlerFunc(incidentsHandler.Create)))
	mux.Handle("GET /api/incidents/{id}", authMW(http.HandlerFunc(incidentsHandler.Get)))
	mux.Handle("PUT /api/incidents/{id}", authMW(requireSupervisor(http.HandlerFunc(incidentsHandler.Update))))
	mux.Handle("DELETE /api/incidents/{id}", authMW(requireSupervisor(http.HandlerFunc(incidentsHandler.Delete))))

	// Trainings: read (all roles), write (supervisor+).
	mux.Handle("GET /api/trainings", authMW(http.HandlerFunc(trainingsHandler.List)))
	mux.Handle("POST /api/trainings", authMW(requireSupervisor(http.HandlerFunc(trainingsHandler.Create))))
	mux.Handle("GET /api/trainings/{id}", authMW(http.HandlerFunc(trainingsHandler.Get)))
	mux.Handle("PUT /api/trainings/{id}", authMW(requireSupervisor(http.HandlerFunc(trainingsHandler.Update))))
	mux.Handle("DELETE /api/trainings/{id}", authMW(requireSupervisor(http.HandlerFunc(trainingsHandler.Delete))))
	mux.Handle("POST /api/trainings/{id}/participants", authMW(requireSupervisor(http.HandlerFunc(trainingsHandler.Enroll))))
	mux.Handle("DELETE /api/trainings/{id}/participants/{worker}", authMW(requireSupervisor(http.HandlerFunc(trainingsHandler.Withdraw))))

	// Events: read (all roles), write (supervisor+).
	mux.Handle("GET /api/events", authMW(http.HandlerFunc(eventsHandler.List)))
	mux.Handle("POST /api/events", authMW(requireSupervisor(http.HandlerFunc(eventsHandler.Create))))
	mux.Handle("GET /api/events/{id}", authMW(http.HandlerFunc(eventsHandler.Get)))
	mux.Handle("DELETE /api/events/{id}", authMW(requireSupervisor(http.HandlerFunc(eventsHandler.Delete))))

	return mux
}
