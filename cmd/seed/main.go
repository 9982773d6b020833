package main

import (
	"context"
	"log"
	"time"

	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/unilab/lab-reservation-api/internal/models"
	"github.com/unilab/lab-reservation-api/internal/repository"
	"github.com/unilab/lab-reservation-api/pkg/config"
	"github.com/unilab/lab-reservation-api/pkg/database"
	"github.com/unilab/lab-reservation-api/pkg/logger"
)

// Seeds a development database with demo accounts, labs, equipment, lab
// works, and one pending reservation. Skips seeding when labs already
// exist so it is safe to run repeatedly.
func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logr, err := logger.New(cfg)
	if err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}
	defer logr.Sync() //nolint:errcheck

	db, err := database.NewPostgres(cfg.Database)
	if err != nil {
		logr.Sugar().Fatalw("failed to connect to postgres", "error", err)
	}
	defer db.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	labRepo := repository.NewLabRepository(db)
	count, err := labRepo.Count(ctx)
	if err != nil {
		logr.Sugar().Fatalw("failed to inspect database", "error", err)
	}
	if count > 0 {
		logr.Info("database already seeded, nothing to do")
		return
	}

	userRepo := repository.NewUserRepository(db)
	equipmentRepo := repository.NewEquipmentRepository(db)
	labWorkRepo := repository.NewLabWorkRepository(db)
	reservationRepo := repository.NewReservationRepository(db)

	seedUser(ctx, logr, userRepo, "admin", "admin123", "System Administrator", "admin@unilab.edu", models.RoleAdmin)
	researcher := seedUser(ctx, logr, userRepo, "researcher", "research123", "Dr. Elena Vasquez", "e.vasquez@unilab.edu", models.RoleResearcher)
	student := seedUser(ctx, logr, userRepo, "student", "student123", "Jamie Park", "j.park@unilab.edu", models.RoleStudent)

	chemLab := &models.Lab{Name: "Chemistry Lab A", Location: "Building 2, Room 104", Capacity: 24}
	physLab := &models.Lab{Name: "Physics Lab", Location: "Building 1, Room 210", Capacity: 16}
	for _, lab := range []*models.Lab{chemLab, physLab} {
		if err := labRepo.Create(ctx, lab); err != nil {
			logr.Sugar().Fatalw("failed to seed lab", "name", lab.Name, "error", err)
		}
	}

	microscope := &models.Equipment{Name: "Electron Microscope", InventoryNumber: "INV-0001", LabID: &chemLab.ID}
	centrifuge := &models.Equipment{Name: "Centrifuge", InventoryNumber: "INV-0002", LabID: &chemLab.ID}
	oscilloscope := &models.Equipment{Name: "Oscilloscope", InventoryNumber: "INV-0003", LabID: &physLab.ID}
	for _, item := range []*models.Equipment{microscope, centrifuge, oscilloscope} {
		if err := equipmentRepo.Create(ctx, item); err != nil {
			logr.Sugar().Fatalw("failed to seed equipment", "name", item.Name, "error", err)
		}
	}

	labWork := &models.LabWork{
		Title:             "Cell Structure Observation",
		AuthorID:          researcher.ID,
		Status:            models.LabWorkPublished,
		RequiredEquipment: []models.Equipment{*microscope},
	}
	if err := labWorkRepo.Create(ctx, labWork); err != nil {
		logr.Sugar().Fatalw("failed to seed lab work", "error", err)
	}

	start := time.Now().UTC().Add(24 * time.Hour).Truncate(time.Hour)
	reservation := &models.Reservation{
		LabID:     chemLab.ID,
		UserID:    student.ID,
		LabWorkID: &labWork.ID,
		StartTime: start,
		EndTime:   start.Add(2 * time.Hour),
		Status:    models.ReservationPending,
		Equipment: []models.Equipment{*microscope, *centrifuge},
	}
	if err := reservationRepo.Create(ctx, reservation); err != nil {
		logr.Sugar().Fatalw("failed to seed reservation", "error", err)
	}

	logr.Sugar().Infow("database seeded",
		"labs", 2,
		"equipment", 3,
		"lab_works", 1,
		"reservations", 1,
	)
}

func seedUser(ctx context.Context, logr *zap.Logger, repo *repository.UserRepository, username, password, fullName, email string, role models.UserRole) *models.User {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		logr.Sugar().Fatalw("failed to hash seed password", "username", username, "error", err)
	}
	user := &models.User{
		Username:     username,
		PasswordHash: string(hash),
		FullName:     fullName,
		Email:        email,
		Role:         role,
		Active:       true,
	}
	if err := repo.Create(ctx, user); err != nil {
		logr.Sugar().Fatalw("failed to seed user", "username", username, "error", err)
	}
	return user
}
