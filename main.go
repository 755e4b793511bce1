package main

import (
	"context"
	"database/sql"
	"log"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"

	intconfig "github.com/DiosyStephen/routAfare/internal/config"
	"github.com/DiosyStephen/routAfare/internal/conversation"
	"github.com/DiosyStephen/routAfare/internal/domain"
	"github.com/DiosyStephen/routAfare/internal/fare"
	api "github.com/DiosyStephen/routAfare/internal/http"
	h "github.com/DiosyStephen/routAfare/internal/http/handlers"
	"github.com/DiosyStephen/routAfare/internal/repositories"
	"github.com/DiosyStephen/routAfare/internal/schedule"
	svc "github.com/DiosyStephen/routAfare/internal/services"
	"github.com/DiosyStephen/routAfare/internal/storage"
)

func main() {
	env := intconfig.LoadEnv()
	if env.GinMode != "" {
		gin.SetMode(env.GinMode)
	}

	var (
		db        *sql.DB
		sessions  domain.SessionStore
		services  domain.ServiceStore
		bookings  domain.BookingStore
	)

	if env.MySQLDSN != "" {
		var err error
		db, err = intconfig.ConnectDB(env.MySQLDSN)
		if err != nil {
			log.Fatalf("could not connect to MySQL: %v", err)
		}
		defer intconfig.CloseDB()

		sessions = repositories.SessionRepository{DB: db}
		services = repositories.ServiceRepository{DB: db}
		bookings = repositories.BookingRepository{DB: db}
		log.Println("storage: MySQL")
	} else {
		var err error
		sessions, err = storage.OpenSessionFile(filepath.Join(env.DataDir, "sessions.json"))
		if err != nil {
			log.Fatalf("could not open session store: %v", err)
		}
		services, err = storage.OpenServiceFile(filepath.Join(env.DataDir, "services.json"))
		if err != nil {
			log.Fatalf("could not open service store: %v", err)
		}
		bookings, err = storage.OpenBookingFile(filepath.Join(env.DataDir, "bookings.json"))
		if err != nil {
			log.Fatalf("could not open booking store: %v", err)
		}
		log.Printf("storage: JSON files under %s", env.DataDir)
	}

	rows, err := schedule.LoadCSV(env.TimetableCSV)
	if err != nil {
		log.Printf("warning: timetable %s not loaded: %v", env.TimetableCSV, err)
	}
	index := schedule.NewIndex(rows, schedule.DefaultIntervalMinutes)
	log.Printf("schedule index: %d entries", index.Len())

	estimator := &fare.Estimator{Timeout: env.FarePredictorTimeout}
	if env.FarePredictorURL != "" {
		estimator.Remote = &fare.HTTPPredictor{URL: env.FarePredictorURL}
		log.Printf("fare predictor: %s", env.FarePredictorURL)
	}

	engine := &conversation.Engine{
		Sessions:          sessions,
		Services:          services,
		Schedule:          index,
		Fares:             estimator,
		Booking:           svc.BookingService{Services: services, Bookings: bookings},
		ProviderPassword:  env.ProviderPassword,
		DefaultDistanceKM: env.DefaultDistanceKM,
	}

	r := api.NewRouter(&h.API{
		Engine:               engine,
		Services:             services,
		Tickets:              svc.TicketService{Bookings: bookings},
		JWTSecret:            []byte(env.JWTSecret),
		ProviderPassword:     env.ProviderPassword,
		ProviderPasswordHash: env.ProviderPasswordHash,
		DB:                   db,
	})

	srv := &http.Server{
		Addr:              env.AppAddr,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       20 * time.Second,
		WriteTimeout:      20 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	go func() {
		log.Printf("server listening on %s", env.AppAddr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("server failed: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	log.Println("shutting down...")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Fatalf("server shutdown failed: %v", err)
	}

	log.Println("server stopped cleanly.")
}
