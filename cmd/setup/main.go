// Command setup creates the seller account and, on an empty store, a few
// sample listings.
package main

import (
	"context"
	"flag"
	"os"
	"time"

	"inmobiliaria/internal/config"
	"inmobiliaria/internal/db"
	"inmobiliaria/internal/logger"
	"inmobiliaria/internal/models"
	"inmobiliaria/internal/services"

	"github.com/rs/zerolog"
)

func main() {
	var (
		email    = flag.String("email", "vendedor@inmobiliaria.com", "seller login email")
		password = flag.String("password", os.Getenv("SELLER_PASSWORD"), "seller password (or SELLER_PASSWORD)")
		name     = flag.String("name", "Ana García - Vendedora", "seller display name")
		phone    = flag.String("phone", "6012345678", "seller phone")
		whatsapp = flag.String("whatsapp", "573001234567", "seller WhatsApp number")
		seed     = flag.Bool("seed", false, "insert sample listings when none exist")
	)
	flag.Parse()

	cfg := config.LoadConfig()
	log := logger.InitLogger(cfg.LogLevel, cfg.Environment)

	if *password == "" {
		log.Fatal().Msg("A password is required (-password or SELLER_PASSWORD)")
	}

	database, err := db.InitDB(cfg.DBUrl, log)
	if err != nil {
		log.Fatal().Err(err).Msg("Database connection failed")
	}
	defer database.Close()

	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	if err := db.RunMigrations(ctx, database, log); err != nil {
		log.Fatal().Err(err).Msg("Migrations failed")
	}

	sellers := services.NewSellerService(database, log)
	seller, created, err := sellers.CreateSeller(ctx, &models.CreateSellerRequest{
		Name:     *name,
		Email:    *email,
		Password: *password,
		Phone:    *phone,
		WhatsApp: *whatsapp,
	})
	if err != nil {
		log.Fatal().Err(err).Msg("Seller setup failed")
	}
	if created {
		log.Info().Int("seller_id", seller.ID).Str("email", seller.Email).Msg("Seller created")
	} else {
		log.Info().Int("seller_id", seller.ID).Msg("Seller already exists")
	}

	if *seed {
		seedListings(ctx, services.NewListingService(database, log, nil, nil), seller.ID, log)
	}
}

func seedListings(ctx context.Context, listings *services.ListingService, sellerID int, log zerolog.Logger) {
	count, err := listings.CountListings(ctx)
	if err != nil {
		log.Fatal().Err(err).Msg("Counting listings failed")
	}
	if count > 0 {
		log.Info().Int("count", count).Msg("Listings already present, skipping seed")
		return
	}

	for _, req := range sampleListings() {
		l, err := listings.CreateListing(ctx, sellerID, req)
		if err != nil {
			log.Fatal().Err(err).Msg("Seeding listing failed")
		}
		log.Info().Int("listing_id", l.ID).Str("title", l.Title).Msg("Sample listing created")
	}
}

func sampleListings() []*models.ListingRequest {
	return []*models.ListingRequest{
		{
			Title:       models.Some("Hermosa Casa Campestre con Piscina"),
			Description: models.Some("Casa campestre ideal para descanso familiar. 4 habitaciones, 3 baños, piscina, jardín extenso y garaje para 2 vehículos."),
			Category:    models.Some(models.CategoryHouse),
			Price:       models.Some[int64](1850000000),
			Area:        models.Some(450.0),
			Bedrooms:    models.Some(4),
			Bathrooms:   models.Some(3),
			Floors:      models.Some(2),
			AgeYears:    models.Some(5),
			Stratum:     models.Some(6),
			HasGarage:   models.Some(true),
			Furnished:   models.Some(true),
			Featured:    models.Some(true),
			Address:     models.Some("Km 18 Vía Las Palmas"),
			City:        models.Some("Medellín"),
			Department:  models.Some("Antioquia"),
		},
		{
			Title:       models.Some("Apartamento Moderno en Conjunto Cerrado"),
			Description: models.Some("Apartamento nuevo con acabados de lujo. 3 habitaciones, 2 baños, parqueadero cubierto, zona BBQ y gimnasio."),
			Category:    models.Some(models.CategoryApartment),
			Price:       models.Some[int64](720000000),
			Area:        models.Some(95.0),
			Bedrooms:    models.Some(3),
			Bathrooms:   models.Some(2),
			Floors:      models.Some(12),
			AgeYears:    models.Some(1),
			Stratum:     models.Some(5),
			HasGarage:   models.Some(true),
			Featured:    models.Some(true),
			Address:     models.Some("Carrera 50 # 120-30"),
			City:        models.Some("Bogotá"),
			Department:  models.Some("Cundinamarca"),
		},
		{
			Title:             models.Some("Finca Productiva de 8 Hectáreas"),
			Description:       models.Some("Predio rural con cultivos de café y aguacate. Casa de descanso, bodega, sistema de riego. Ideal para inversión."),
			Category:          models.Some(models.CategoryRural),
			Price:             models.Some[int64](850000000),
			Area:              models.Some(8.0),
			AreaUnit:          models.Some(models.AreaUnitHectares),
			Address:           models.Some("Vereda La Esperanza"),
			City:              models.Some("Manizales"),
			Department:        models.Some("Caldas"),
			Terrain:           models.Some(models.TerrainRolling),
			AccessRoad:        models.Some(models.AccessRoadUnpaved),
			WaterAccess:       models.Some(true),
			ElectricityAccess: models.Some(true),
			Crops:             models.Some("Café, Aguacate"),
		},
	}
}
