package repository

import (
	bookingRepo "homeserve/database/repository/booking"
	catalogRepo "homeserve/database/repository/catalog"
	homeownerRepo "homeserve/database/repository/homeowner"
	providerRepo "homeserve/database/repository/provider"

	"go.mongodb.org/mongo-driver/mongo"
)

// Re-export the repository interfaces.
type (
	BookingRepository   = bookingRepo.BookingRepository
	ProviderRepository  = providerRepo.ProviderRepository
	HomeownerRepository = homeownerRepo.HomeownerRepository
	CatalogRepository   = catalogRepo.CatalogRepository
)

// Repositories groups the store implementations a process runs against.
type Repositories struct {
	Bookings   BookingRepository
	Providers  ProviderRepository
	Homeowners HomeownerRepository
	Catalog    CatalogRepository
}

// NewMongoRepositories builds every repository on one database.
func NewMongoRepositories(db *mongo.Database) Repositories {
	return Repositories{
		Bookings:   bookingRepo.NewMongoBookingRepo(db),
		Providers:  providerRepo.NewMongoProviderRepo(db),
		Homeowners: homeownerRepo.NewMongoHomeownerRepo(db),
		Catalog:    catalogRepo.NewMongoCatalogRepo(db),
	}
}

// NewMemoryRepositories builds in-process repositories, used for local runs and tests.
func NewMemoryRepositories() Repositories {
	return Repositories{
		Bookings:   bookingRepo.NewMemoryBookingRepo(),
		Providers:  providerRepo.NewMemoryProviderRepo(),
		Homeowners: homeownerRepo.NewMemoryHomeownerRepo(),
		Catalog:    catalogRepo.NewMemoryCatalogRepo(),
	}
}
