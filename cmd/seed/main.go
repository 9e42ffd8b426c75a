package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"time"

	"triptrek/internal/catalog"
	"triptrek/internal/offers"
	"triptrek/internal/shared/config"
	"triptrek/internal/shared/database"
	"triptrek/internal/shared/middleware"
	"triptrek/internal/users"

	"github.com/google/uuid"
	"github.com/joho/godotenv"
	"github.com/shopspring/decimal"
	"github.com/urfave/cli/v2"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type Seeder struct {
	db       *gorm.DB
	catalog  catalog.Repository
	offers   offers.Repository
	reporter func(format string, args ...any)
}

func NewSeeder(db *gorm.DB) *Seeder {
	return &Seeder{
		db:       db,
		catalog:  catalog.NewRepository(db),
		offers:   offers.NewRepository(db),
		reporter: printLine,
	}
}

func printLine(format string, args ...any) {
	fmt.Printf(format+"\n", args...)
}

type packageSeed struct {
	destination string
	title       string
	slug        string
	summary     string
	price       string
	days        int
	slots       int
	startOffset int
}

var destinationSeeds = []catalog.Destination{
	{Name: "Goa", Slug: "goa", Country: "India", Description: "Beaches, forts and Portuguese quarters."},
	{Name: "Manali", Slug: "manali", Country: "India", Description: "Himalayan valley town on the Beas river."},
	{Name: "Bali", Slug: "bali", Country: "Indonesia", Description: "Rice terraces, temples and surf."},
}

var packageSeeds = []packageSeed{
	{"goa", "Goa Beach Escape", "goa-beach-escape", "Four nights on the north Goa coast", "1000.00", 5, 10, 30},
	{"manali", "Manali Snow Trail", "manali-snow-trail", "Solang valley and Rohtang pass", "1500.00", 6, 8, 45},
	{"bali", "Bali Island Hopper", "bali-island-hopper", "Ubud, Nusa Penida and Gili", "4200.00", 8, 12, 60},
}

func (s *Seeder) SeedCatalog(ctx context.Context, today time.Time) error {
	destinations := make(map[string]uuid.UUID, len(destinationSeeds))
	for i := range destinationSeeds {
		d := destinationSeeds[i]
		if err := s.catalog.UpsertDestination(ctx, &d); err != nil {
			return err
		}
		destinations[d.Slug] = d.ID
		s.reporter("destination %-10s %s", d.Slug, d.ID)
	}

	for _, seed := range packageSeeds {
		destinationID, ok := destinations[seed.destination]
		if !ok {
			return fmt.Errorf("unknown destination %q for package %s", seed.destination, seed.slug)
		}
		start := today.AddDate(0, 0, seed.startOffset)
		pkg := &catalog.Package{
			DestinationID:    destinationID,
			Title:            seed.title,
			Slug:             seed.slug,
			ShortDescription: seed.summary,
			Price:            decimal.RequireFromString(seed.price),
			DurationDays:     seed.days,
			TotalSlots:       seed.slots,
			AvailableSlots:   seed.slots,
			StartDate:        start,
			EndDate:          start.AddDate(0, 0, seed.days-1),
		}
		if err := s.catalog.UpsertPackage(ctx, pkg); err != nil {
			return err
		}
		s.reporter("package     %-20s %s (%d/%d slots)", pkg.Slug, pkg.ID, pkg.AvailableSlots, pkg.TotalSlots)
	}
	return nil
}

func (s *Seeder) SeedOffers(ctx context.Context, today time.Time) error {
	validTo := today.AddDate(1, 0, 0)
	seeds := []offers.Offer{
		{Code: "SAVE10", Description: "10% off any package", DiscountPercent: 10, Active: true, ValidFrom: &today, ValidTo: &validTo},
		{Code: "MONSOON25", Description: "Monsoon sale", DiscountPercent: 25, Active: false},
	}
	for i := range seeds {
		if err := s.offers.Upsert(ctx, &seeds[i]); err != nil {
			return err
		}
		s.reporter("offer       %-10s %d%% active=%t", seeds[i].Code, seeds[i].DiscountPercent, seeds[i].Active)
	}
	return nil
}

// SeedUser creates or refreshes an account by username
func (s *Seeder) SeedUser(ctx context.Context, user *users.User) error {
	err := s.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "username"}},
			DoUpdates: clause.AssignmentColumns([]string{"first_name", "last_name", "email", "role"}),
		}).
		Create(user).Error
	if err != nil {
		return fmt.Errorf("failed to upsert user %s: %w", user.Username, err)
	}
	if err := s.db.WithContext(ctx).Where("username = ?", user.Username).First(user).Error; err != nil {
		return fmt.Errorf("failed to reload user %s: %w", user.Username, err)
	}
	s.reporter("user        %-10s %s (%s)", user.Username, user.ID, user.Role)
	return nil
}

func openSeeder(cfg *config.Config) (*Seeder, func(), error) {
	db, err := database.OpenPostgreSQL(cfg.Database.DSN, false)
	if err != nil {
		return nil, nil, err
	}
	if err := database.Migrate(db); err != nil {
		return nil, nil, err
	}
	closeFn := func() {
		if sqlDB, err := db.DB(); err == nil {
			_ = sqlDB.Close()
		}
	}
	return NewSeeder(db), closeFn, nil
}

func demoUser() *users.User {
	return &users.User{
		Username:  "demo",
		FirstName: "Demo",
		LastName:  "Traveler",
		Email:     "demo@triptrek.com",
		Role:      users.RoleUser,
	}
}

func main() {
	_ = godotenv.Load()
	cfg := config.Load()

	app := &cli.App{
		Name:  "seed",
		Usage: "Seed the TripTrek database with demo data",
		Commands: []*cli.Command{
			{
				Name:  "all",
				Usage: "seed destinations, packages, offers and the demo user",
				Action: func(c *cli.Context) error {
					seeder, closeFn, err := openSeeder(cfg)
					if err != nil {
						return err
					}
					defer closeFn()

					today := time.Now().UTC().Truncate(24 * time.Hour)
					if err := seeder.SeedCatalog(c.Context, today); err != nil {
						return err
					}
					if err := seeder.SeedOffers(c.Context, today); err != nil {
						return err
					}
					return seeder.SeedUser(c.Context, demoUser())
				},
			},
			{
				Name:  "catalog",
				Usage: "seed destinations and packages",
				Action: func(c *cli.Context) error {
					seeder, closeFn, err := openSeeder(cfg)
					if err != nil {
						return err
					}
					defer closeFn()
					return seeder.SeedCatalog(c.Context, time.Now().UTC().Truncate(24*time.Hour))
				},
			},
			{
				Name:  "offers",
				Usage: "seed offer codes",
				Action: func(c *cli.Context) error {
					seeder, closeFn, err := openSeeder(cfg)
					if err != nil {
						return err
					}
					defer closeFn()
					return seeder.SeedOffers(c.Context, time.Now().UTC().Truncate(24*time.Hour))
				},
			},
			{
				Name:      "token",
				Usage:     "print an access token for a seeded user",
				ArgsUsage: "<username>",
				Flags: []cli.Flag{
					&cli.DurationFlag{Name: "ttl", Value: 24 * time.Hour, Usage: "token lifetime"},
				},
				Action: func(c *cli.Context) error {
					username := c.Args().First()
					if username == "" {
						username = "demo"
					}

					seeder, closeFn, err := openSeeder(cfg)
					if err != nil {
						return err
					}
					defer closeFn()

					var user users.User
					if err := seeder.db.WithContext(c.Context).Where("username = ?", username).First(&user).Error; err != nil {
						return fmt.Errorf("user %s not found: %w", username, err)
					}

					token, err := middleware.IssueAccessToken(cfg.JWT.Secret, user.ID, user.Email, string(user.Role), c.Duration("ttl"))
					if err != nil {
						return err
					}
					fmt.Println(token)
					return nil
				},
			},
		},
	}

	if err := app.Run(os.Args); err != nil {
		log.Fatal(err)
	}
}
