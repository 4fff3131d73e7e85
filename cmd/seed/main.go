// Command seed fills a MongoDB database with the default service catalogue and a
// handful of providers per service, for local testing.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"math/rand"
	"time"

	"homeserve/config"
	"homeserve/database"
	"homeserve/database/repository"
	catalogRepo "homeserve/database/repository/catalog"
	"homeserve/models"
	"homeserve/utils"

	"go.mongodb.org/mongo-driver/bson"
)

func main() {
	perService := flag.Int("providers", 5, "providers to create per service")
	reset := flag.Bool("reset", false, "delete existing providers before seeding")
	flag.Parse()

	config.LoadConfig()
	database.InitDB()
	db := database.DB()
	repos := repository.NewMongoRepositories(db)

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	defer func() { _ = database.Close(context.Background()) }()

	if *reset {
		if _, err := db.Collection("providers").DeleteMany(ctx, bson.M{}); err != nil {
			log.Fatalf("Failed to clear providers collection: %v", err)
		}
	}

	seeded, err := repos.Catalog.SeedDefaults(ctx, catalogRepo.DefaultServices)
	if err != nil {
		log.Fatalf("Failed to seed catalogue: %v", err)
	}
	fmt.Printf("Seeded %d services\n", seeded)

	names := make([]string, 0, len(catalogRepo.DefaultServices))
	for _, svc := range catalogRepo.DefaultServices {
		names = append(names, svc.Name)
	}

	rng := rand.New(rand.NewSource(time.Now().UnixNano()))
	created, skipped := 0, 0
	for _, service := range names {
		for i := 1; i <= *perService; i++ {
			professions := []string{service}
			// Some providers also cover a second trade so matching sees overlap.
			if rng.Intn(3) == 0 {
				professions = append(professions, names[rng.Intn(len(names))])
			}
			key := utils.NormalizeKey(service)
			provider := &models.Provider{
				ID:          fmt.Sprintf("prov-%s-%d", key, i),
				FullName:    fmt.Sprintf("%s Provider %d", service, i),
				Email:       fmt.Sprintf("%s_provider_%d@example.com", key, i),
				Professions: professions,
			}
			if err := repos.Providers.Create(ctx, provider); err != nil {
				if errors.Is(err, utils.ErrConflict) {
					skipped++
					continue
				}
				log.Fatalf("Failed to insert provider %s: %v", provider.ID, err)
			}
			created++
		}
	}
	fmt.Printf("Inserted %d providers (%d already present)\n", created, skipped)
}
