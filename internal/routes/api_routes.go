package routes

import (
	"clubconnect/backend/internal/api"
	"clubconnect/backend/internal/middleware"

	"github.com/go-chi/chi/v5"
)

// RegisterAPIRoutes registers all API v1 routes and handlers
// This keeps API route registration separate from the main router setup
func RegisterAPIRoutes(r chi.Router, handlers *api.Handlers, jobsHandler *api.JobsHandler) {

	// API v1 routes
	r.Route("/api/v1", func(v1 chi.Router) {
		v1.Use(middleware.AuthMiddleware()) // global: all routes carry a verified token

		// User profile and activity
		v1.Post("/user/register", handlers.RegisterUser())
		v1.Get("/user/profile", handlers.GetProfile())
		v1.Post("/user/profile/complete", handlers.CompleteProfile())
		v1.Get("/user/clubs", handlers.GetUserClubs())
		v1.Get("/user/attendance", handlers.GetUserAttendance())

		// Clubs and memberships
		v1.Get("/clubs", handlers.ListClubs())
		v1.Get("/clubs/{club_id}", handlers.GetClub())
		v1.Post("/clubs/{club_id}/join", handlers.JoinClub())
		v1.Post("/clubs/{club_id}/leave", handlers.LeaveClub())
		v1.Get("/clubs/{club_id}/members", handlers.ListClubMembers())

		// Events and attendance
		v1.Get("/clubs/{club_id}/events", handlers.GetClubEvents())
		v1.Get("/events/upcoming", handlers.GetUpcomingEvents())
		v1.Post("/events/{event_id}/attend", handlers.AttendEvent())
		v1.Post("/events/{event_id}/attend/retry-xp", handlers.RetryEventXP())

		// Announcements
		v1.Get("/clubs/{club_id}/announcements", handlers.GetClubAnnouncements())

		// Gamification
		v1.Get("/gamification/progress", handlers.GetProgress())
		v1.Get("/gamification/badges", handlers.GetBadges())
		v1.Get("/gamification/leaderboard", handlers.GetLeaderboard())
		v1.Post("/gamification/daily-login", handlers.DailyLogin())

		// Admin-only group
		v1.Group(func(admin chi.Router) {
			admin.Use(middleware.IsAdminMiddleware())

			admin.Post("/clubs", handlers.CreateClub())
			admin.Put("/clubs/{club_id}", handlers.UpdateClub())
			admin.Delete("/clubs/{club_id}", handlers.DeleteClub())
			admin.Post("/events", handlers.CreateEvent())
			admin.Delete("/events/{event_id}", handlers.DeleteEvent())
			admin.Post("/clubs/{club_id}/announcements", handlers.CreateAnnouncement())
			admin.Delete("/announcements/{announcement_id}", handlers.DeleteAnnouncement())

			admin.Post("/gamification/award", handlers.AwardXP())

			// Background jobs management
			admin.Post("/admin/jobs/reconcile-counts", jobsHandler.TriggerReconcile())
			admin.Get("/admin/jobs/status", jobsHandler.GetJobStatus())
		})
	})
}
