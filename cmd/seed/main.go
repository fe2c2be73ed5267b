package main

import (
	"context"
	"log"
	"time"

	"github.com/shopspring/decimal"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"receiptbox/internal/config"
	"receiptbox/internal/db"
	"receiptbox/internal/model"
	"receiptbox/internal/repository"
)

const seedPassword = "password123"

type seedUser struct {
	name  string
	email string
	role  model.Role
}

var seedUsers = []seedUser{
	{name: "Admin", email: "admin@receiptbox.local", role: model.RoleAdmin},
	{name: "Alice Example", email: "alice@example.com", role: model.RoleUser},
	{name: "Bob Example", email: "bob@example.com", role: model.RoleUser},
}

type seedReceipt struct {
	store    string
	date     model.Date
	amount   string
	category string
	payment  string
}

var seedReceipts = []seedReceipt{
	{store: "Acme Grocery", date: model.NewDate(2024, time.January, 12), amount: "54.20", category: "Groceries", payment: "Card"},
	{store: "Corner Cafe", date: model.NewDate(2024, time.January, 30), amount: "12.50", category: "Dining", payment: "Cash"},
	{store: "City Pharmacy", date: model.NewDate(2024, time.February, 3), amount: "23.99", category: "Health", payment: "Card"},
	{store: "Acme Grocery", date: model.NewDate(2024, time.February, 17), amount: "61.05", category: "Groceries", payment: "Card"},
	{store: "Hardware Depot", date: model.NewDate(2024, time.March, 8), amount: "104.75", category: "", payment: ""},
}

func main() {
	log.Println("Starting seed script...")

	cfg := config.Load()

	gormDB, err := db.NewMySQL(cfg.MySQLDSN)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	log.Println("Connected to database")

	if err := gormDB.AutoMigrate(&model.User{}, &model.Receipt{}); err != nil {
		log.Fatalf("Failed to run migrations: %v", err)
	}
	log.Println("Database migrations completed")

	ctx := context.Background()
	userRepo := repository.NewUserRepository(gormDB)
	receiptRepo := repository.NewReceiptRepository(gormDB)

	hash, err := bcrypt.GenerateFromPassword([]byte(seedPassword), bcrypt.DefaultCost)
	if err != nil {
		log.Fatalf("Failed to hash password: %v", err)
	}

	created := 0
	var owners []model.User
	for _, su := range seedUsers {
		existing, err := userRepo.FindByEmail(ctx, su.email)
		if err == nil {
			owners = append(owners, *existing)
			continue
		}
		if err != gorm.ErrRecordNotFound {
			log.Fatalf("Failed to look up %s: %v", su.email, err)
		}

		user := &model.User{
			Name:         su.name,
			Email:        su.email,
			PasswordHash: string(hash),
			Role:         su.role,
		}
		if err := userRepo.Create(ctx, user); err != nil {
			log.Fatalf("Failed to create %s: %v", su.email, err)
		}
		owners = append(owners, *user)
		created++
	}
	log.Printf("Seeded %d new users (%d total)", created, len(owners))

	// Receipts go to the non-admin users, round-robin.
	regular := owners[1:]
	seeded := 0
	for i, sr := range seedReceipts {
		owner := regular[i%len(regular)]

		amount, err := decimal.NewFromString(sr.amount)
		if err != nil {
			log.Fatalf("Invalid seed amount %q: %v", sr.amount, err)
		}

		receipt := &model.Receipt{
			OwnerID:      owner.ID,
			StoreName:    sr.store,
			PurchaseDate: sr.date,
			TotalAmount:  amount,
		}
		if sr.category != "" {
			category := sr.category
			receipt.Category = &category
		}
		if sr.payment != "" {
			payment := sr.payment
			receipt.PaymentMethod = &payment
		}

		if err := receiptRepo.Create(ctx, receipt); err != nil {
			log.Fatalf("Failed to create receipt for %s: %v", owner.Email, err)
		}
		seeded++
	}

	log.Printf("Seeded %d receipts, done", seeded)
}
