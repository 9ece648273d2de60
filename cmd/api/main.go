package main

import (
	"log"
	"os"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"

	"parkshare/internal/database"
	"parkshare/internal/jobs"
	"parkshare/internal/middleware"
	"parkshare/internal/modules/auth"
	"parkshare/internal/modules/availability"
	"parkshare/internal/modules/block"
	"parkshare/internal/modules/booking"
	"parkshare/internal/modules/events"
	"parkshare/internal/modules/place"
	jwtsvc "parkshare/internal/pkg/jwt"
	"parkshare/internal/pkg/storage"
	"parkshare/internal/repository"
)

func main() {
	_ = godotenv.Load()

	dsn := os.Getenv("DATABASE_URL")
	if dsn == "" {
		log.Fatal("DATABASE_URL is empty")
	}
	secret := os.Getenv("JWT_SECRET")
	if secret == "" {
		log.Fatal("JWT_SECRET is empty")
	}
	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}
	uploadDir := os.Getenv("UPLOAD_DIR")
	if uploadDir == "" {
		uploadDir = "./uploads"
	}

	db, err := database.Connect(dsn)
	if err != nil {
		log.Fatal(err)
	}
	if err := database.Migrate(db); err != nil {
		log.Fatal(err)
	}

	userRepo := repository.NewUserRepository(db)
	placeRepo := repository.NewPlaceRepository(db)
	blockRepo := repository.NewBlockRepository(db)
	bookingRepo := repository.NewBookingRepository(db)

	j := jwtsvc.New(secret, 24*time.Hour)
	objects := storage.NewLocal(uploadDir, "/static/uploads")
	hub := events.NewHub()

	authService := auth.NewService(userRepo, j)
	authHandler := auth.NewHandler(authService)

	placeService := place.NewService(placeRepo, objects)
	placeHandler := place.NewHandler(placeService)

	availabilityService := availability.NewService(blockRepo, placeRepo)
	availabilityHandler := availability.NewHandler(availabilityService)

	blockService := block.NewService(blockRepo, bookingRepo, placeRepo, hub)
	blockHandler := block.NewHandler(blockService)

	bookingService := booking.NewService(bookingRepo, blockRepo, placeRepo, userRepo, availabilityService, hub)
	bookingHandler := booking.NewHandler(bookingService)

	wsHandler := events.NewWSHandler(hub, j, placeRepo)

	completer := jobs.NewCompleter(bookingRepo)
	if err := completer.Start(); err != nil {
		log.Fatal(err)
	}
	defer completer.Stop()

	r := gin.Default()
	r.Use(middleware.CORS())
	r.Use(middleware.ErrorLogger())

	r.Static("/static/uploads", uploadDir)
	r.GET("/ws/places/:id", wsHandler.HandleWebSocket)

	v1 := r.Group("/api/v1")
	{
		authHandler.RegisterPublicRoutes(v1)
		placeHandler.RegisterPublicRoutes(v1)
		availabilityHandler.RegisterRoutes(v1)

		protected := v1.Group("/")
		protected.Use(middleware.Auth(j))
		{
			authHandler.RegisterRoutes(protected)
			placeHandler.RegisterRoutes(protected)
			blockHandler.RegisterRoutes(protected)
			bookingHandler.RegisterRoutes(protected)
		}
	}

	if err := r.Run(":" + port); err != nil {
		log.Fatal(err)
	}
}
