package main

import (
	"log"
	"os"
	"time"

	"golang.org/x/crypto/bcrypt"

	"parkshare/internal/database"
	"parkshare/internal/domain"
)

func main() {
	dsn := os.Getenv("DATABASE_URL")
	if dsn == "" {
		dsn = "parkshare.db"
	}

	db, err := database.Connect(dsn)
	if err != nil {
		log.Fatal("DB connection failed:", err)
	}

	log.Println("Running migrations...")
	if err := database.Migrate(db); err != nil {
		log.Fatal("Migrate failed:", err)
	}

	// Cleanup old data (in safe order to avoid foreign key errors)
	log.Println("Cleaning old data...")
	db.Exec("DELETE FROM blocked_periods")
	db.Exec("DELETE FROM bookings")
	db.Exec("DELETE FROM place_images")
	db.Exec("DELETE FROM places")
	db.Exec("DELETE FROM users")

	// ================== USERS ==================
	log.Println("Creating users...")

	ownerHash, _ := bcrypt.GenerateFromPassword([]byte("owner123"), bcrypt.DefaultCost)
	owner := domain.User{
		Email:        "owner@parkshare.io",
		PasswordHash: string(ownerHash),
		Name:         "Olivia Owner",
		Phone:        "+1 415 555 0101",
	}
	db.Create(&owner)
	log.Println("Owner created: owner@parkshare.io / owner123")

	renterHash, _ := bcrypt.GenerateFromPassword([]byte("renter123"), bcrypt.DefaultCost)
	renter := domain.User{
		Email:        "renter@parkshare.io",
		PasswordHash: string(renterHash),
		Name:         "Rami Renter",
		Phone:        "+1 415 555 0102",
	}
	db.Create(&renter)
	log.Println("Renter created: renter@parkshare.io / renter123")

	// ================== PLACES ==================
	log.Println("Creating places...")

	lat1, lng1 := 37.7749, -122.4194
	driveway := domain.Place{
		OwnerID:           owner.ID,
		Name:              "Mission District Driveway",
		Description:       "Flat concrete driveway, fits a mid-size SUV.",
		Address:           "123 Valencia St",
		City:              "San Francisco",
		State:             "CA",
		ZipCode:           "94110",
		Latitude:          &lat1,
		Longitude:         &lng1,
		PricePerHourCents: 500,
	}
	db.Create(&driveway)

	lat2, lng2 := 37.8044, -122.2712
	garage := domain.Place{
		OwnerID:           owner.ID,
		Name:              "Downtown Oakland Garage Spot",
		Description:       "Covered single spot, badge access after 6pm.",
		Address:           "456 Broadway",
		City:              "Oakland",
		State:             "CA",
		ZipCode:           "94607",
		Latitude:          &lat2,
		Longitude:         &lng2,
		PricePerHourCents: 350,
	}
	db.Create(&garage)

	// ================== BLOCKS ==================
	log.Println("Creating blocked periods...")

	tomorrow := time.Now().UTC().Truncate(24 * time.Hour).Add(24 * time.Hour)

	maintenance := domain.BlockedPeriod{
		PlaceID:       driveway.ID,
		StartDatetime: tomorrow.Add(8 * time.Hour),
		EndDatetime:   tomorrow.Add(10 * time.Hour),
		BlockType:     domain.BlockMaintenance,
		Reason:        "Resurfacing the driveway",
	}
	db.Create(&maintenance)

	weekly := domain.BlockedPeriod{
		PlaceID:          garage.ID,
		StartDatetime:    tomorrow.Add(18 * time.Hour),
		EndDatetime:      tomorrow.Add(20 * time.Hour),
		BlockType:        domain.BlockOwner,
		Reason:           "Family car uses the spot",
		IsRecurring:      true,
		RecurringPattern: domain.RecurWeekly,
	}
	db.Create(&weekly)

	// ================== BOOKINGS ==================
	log.Println("Creating a confirmed booking...")

	start := tomorrow.Add(12 * time.Hour)
	end := tomorrow.Add(15 * time.Hour)
	booking := domain.Booking{
		PlaceID:         driveway.ID,
		UserID:          renter.ID,
		StartTime:       start,
		EndTime:         end,
		Status:          domain.BookingConfirmed,
		TotalPriceCents: driveway.PricePerHourCents * 3,
	}
	db.Create(&booking)

	derived := domain.BlockedPeriod{
		PlaceID:       driveway.ID,
		StartDatetime: start,
		EndDatetime:   end,
		BlockType:     domain.BlockBooking,
		Reason:        "Booked by " + renter.Email,
		BookingID:     &booking.ID,
	}
	db.Create(&derived)

	log.Println("Seed complete.")
}
