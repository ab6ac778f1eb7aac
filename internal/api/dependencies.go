package api

import (
	"gorm.io/gorm"

	"clubconnect/backend/internal/common"
	"clubconnect/backend/internal/db/repositories"
	"clubconnect/backend/internal/services"
	"clubconnect/backend/internal/store"
)

type Repositories struct {
	XPTransactions *repositories.XPTransactionRepository
}

type Services struct {
	Cache         common.CacheInterface
	Clubs         *services.ClubService
	Events        *services.EventService
	Announcements *services.AnnouncementService
	Users         *services.UserService
	Memberships   *services.MembershipService
	Attendance    *services.AttendanceService
	Progression   *services.ProgressionService
	Gamification  *services.GamificationService
}

type Dependencies struct {
	Store    store.DirectoryStore
	Repo     *Repositories
	Services *Services
}

// InitDependencies wires every service with the shared store, the per-key
// lock manager and the transaction log.
func InitDependencies(st store.DirectoryStore, locks common.KeyLocker, ormDB *gorm.DB) (*Dependencies, error) {
	repos := &Repositories{
		XPTransactions: repositories.NewXPTransactionRepository(ormDB),
	}

	cacheSvc := common.NewCacheService(60, 600)

	progressionSvc := services.NewProgressionService(st, locks, repos.XPTransactions)
	membershipSvc := services.NewMembershipService(st, locks)
	attendanceSvc := services.NewAttendanceService(st, locks)

	svcs := &Services{
		Cache:         cacheSvc,
		Clubs:         services.NewClubService(st),
		Events:        services.NewEventService(st, progressionSvc),
		Announcements: services.NewAnnouncementService(st, cacheSvc, progressionSvc),
		Users:         services.NewUserService(st, locks, progressionSvc, repos.XPTransactions),
		Memberships:   membershipSvc,
		Attendance:    attendanceSvc,
		Progression:   progressionSvc,
		Gamification:  services.NewGamificationService(st, attendanceSvc, membershipSvc, progressionSvc, repos.XPTransactions),
	}

	return &Dependencies{
		Store:    st,
		Repo:     repos,
		Services: svcs,
	}, nil
}
