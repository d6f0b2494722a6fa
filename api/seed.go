/*
seed.go - Demo dataset loader

PURPOSE:
  Populates an empty store with the showroom demo data: the starter parts
  catalog, the workshop technicians, a staff account, and the boot
  notification. Runs at startup when SEED_DEMO_DATA is enabled and after an
  admin reset.

BEHAVIOR:
  Seeding is skipped entirely when any parts already exist, so restarting
  the server never duplicates or clobbers live data.
*/
package api

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/trotech/dealer-core/ledger"
	"github.com/trotech/dealer-core/notify"
	"github.com/trotech/dealer-core/staff"
)

// SeedStore is the slice of the store the seeder writes through.
type SeedStore interface {
	ListParts(ctx context.Context) ([]ledger.Part, error)
	SavePart(ctx context.Context, p ledger.Part) error
	SaveAccount(ctx context.Context, a staff.Account) error
	SaveTechnician(ctx context.Context, t staff.Technician) error
}

type Seeder struct {
	Store  SeedStore
	Notify *notify.Emitter
	Log    *zap.Logger
}

// Seed loads the demo dataset into an empty store. No-op when parts exist.
func (s *Seeder) Seed(ctx context.Context) error {
	existing, err := s.Store.ListParts(ctx)
	if err != nil {
		return fmt.Errorf("seed: %w", err)
	}
	if len(existing) > 0 {
		s.Log.Debug("store already populated, skipping seed")
		return nil
	}

	for _, p := range seedParts() {
		if err := s.Store.SavePart(ctx, p); err != nil {
			return fmt.Errorf("seed part %s: %w", p.ID, err)
		}
	}
	for _, t := range seedTechnicians() {
		if err := s.Store.SaveTechnician(ctx, t); err != nil {
			return fmt.Errorf("seed technician %s: %w", t.ID, err)
		}
	}
	for _, a := range seedAccounts() {
		if err := s.Store.SaveAccount(ctx, a); err != nil {
			return fmt.Errorf("seed account %s: %w", a.ID, err)
		}
	}
	if s.Notify != nil {
		s.Notify.System(ctx, "System Online", "Dealer core initialized successfully.", notify.PriorityLow)
	}

	s.Log.Info("demo data seeded",
		zap.Int("parts", len(seedParts())),
		zap.Int("technicians", len(seedTechnicians())))
	return nil
}

func seedParts() []ledger.Part {
	today := ledger.Today()
	return []ledger.Part{
		{ID: "1", Name: "Engine Oil 10W-30 (1L)", PartNumber: "08232-M99-K1L", Category: ledger.CategoryEngine, Stock: 45, Price: ledger.Money(1850), MinStock: 20, LastUpdated: today},
		{ID: "2", Name: "Front Brake Pad Set", PartNumber: "06455-KRE-K01", Category: ledger.CategoryBraking, Stock: 12, Price: ledger.Money(4200), MinStock: 15, LastUpdated: today},
		{ID: "3", Name: "Spark Plug CPR7EA-9", PartNumber: "31917-KPH-901", Category: ledger.CategoryElectrical, Stock: 80, Price: ledger.Money(850), MinStock: 30, LastUpdated: today},
		{ID: "4", Name: "Drive Chain Kit (DID)", PartNumber: "06401-KWB-601", Category: ledger.CategoryChassis, Stock: 8, Price: ledger.Money(9500), MinStock: 10, LastUpdated: today},
		{ID: "5", Name: "Air Filter Element", PartNumber: "17210-K12-900", Category: ledger.CategoryEngine, Stock: 22, Price: ledger.Money(2400), MinStock: 15, LastUpdated: today},
	}
}

func seedTechnicians() []staff.Technician {
	return []staff.Technician{
		{ID: "T1", Name: "Carlos Sainz", Specialization: "Master Mechanic", Status: staff.TechActive, JoinedDate: mustDate("2023-01-15")},
		{ID: "T2", Name: "Dave Miller", Specialization: "Electrical Expert", Status: staff.TechActive, JoinedDate: mustDate("2023-03-20")},
		{ID: "T3", Name: "Aslam Pervaiz", Specialization: "Engine Overhaul", Status: staff.TechActive, JoinedDate: mustDate("2023-05-10")},
	}
}

func seedAccounts() []staff.Account {
	return []staff.Account{
		{ID: "S1", Name: "Zeeshan Ali", Email: "zeeshan@atlashonda.com", Username: "zeeshan123", Role: staff.RoleUser, CreatedAt: time.Now()},
	}
}

func mustDate(s string) ledger.Date {
	d, err := ledger.ParseDate(s)
	if err != nil {
		panic(err)
	}
	return d
}
