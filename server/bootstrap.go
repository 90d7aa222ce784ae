package server

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/brianvoe/gofakeit/v6"
	"github.com/jrsteele09/rxadmin/orders"
	"github.com/jrsteele09/rxadmin/tenants"
	"github.com/jrsteele09/rxadmin/users"
	"github.com/rs/zerolog/log"
)

const (
	// Demo accounts, matching the credentials on the login screen
	DemoSuperAdminEmail      = "admin@example.com"
	DemoSuperAdminPassword   = "admin123"
	DemoCompanyAdminEmail    = "company@example.com"
	DemoCompanyAdminPassword = "company123"

	DemoCompanyID = "demo-company"

	seed            = 42
	maxSeededOrders = 12
)

var medicationCatalog = []string{
	"Semaglutide", "Tirzepatide", "Metformin", "Sildenafil", "Tadalafil",
	"Finasteride", "Minoxidil", "Naltrexone", "Bupropion", "Phentermine",
}

// InitialiseSystem seeds the demo accounts, the demo company and a set of generated
// companies with orders. It does nothing when the super admin already exists.
func (s *Server) InitialiseSystem(ctx context.Context) error {
	if _, err := s.repos.Users.GetByEmail(DemoSuperAdminEmail); err == nil {
		log.Info().Msg("Bootstrap: demo data already present")
		return nil
	}

	faker := gofakeit.New(seed)
	now := s.nowFunc()

	demo := s.fakeTenant(faker, now)
	demo.ID = DemoCompanyID
	demo.Name = "Demo Pharmacy"
	demo.Status = tenants.StatusActive
	if err := s.repos.Tenants.Upsert(demo); err != nil {
		return fmt.Errorf("failed to create demo company: %w", err)
	}

	if err := s.seedAccount(DemoSuperAdminEmail, DemoSuperAdminPassword, users.User{
		Role:      users.RoleSuperAdmin,
		FirstName: "Super",
		LastName:  "Admin",
	}, now); err != nil {
		return err
	}
	if err := s.seedAccount(DemoCompanyAdminEmail, DemoCompanyAdminPassword, users.User{
		Role:      users.RoleCompanyAdmin,
		FirstName: "Company",
		LastName:  "Admin",
		CompanyID: demo.ID,
		TenantID:  demo.ID,
	}, now); err != nil {
		return err
	}

	seeded := []*tenants.Tenant{demo}
	for i := 0; i < s.config.GetSeedCompanies(); i++ {
		if err := ctx.Err(); err != nil {
			return err
		}
		t := s.fakeTenant(faker, now)
		if err := s.repos.Tenants.Upsert(t); err != nil {
			return fmt.Errorf("failed to create company %q: %w", t.Name, err)
		}
		seeded = append(seeded, t)
	}

	for _, t := range seeded {
		if err := s.seedOrders(faker, t, now); err != nil {
			return err
		}
		if err := s.updateTenantCounts(t.ID); err != nil {
			return fmt.Errorf("failed to count orders for %q: %w", t.Name, err)
		}
	}

	log.Info().
		Int("companies", len(seeded)).
		Str("superAdmin", DemoSuperAdminEmail).
		Str("companyAdmin", DemoCompanyAdminEmail).
		Msg("Bootstrap: demo data created")
	return nil
}

func (s *Server) seedAccount(email, password string, user users.User, now time.Time) error {
	hash, err := users.HashPassword(password)
	if err != nil {
		return fmt.Errorf("failed to hash password for %s: %w", email, err)
	}
	user.Email = email
	if err := s.repos.Users.Upsert(&users.Account{User: user, PasswordHash: hash, DateJoined: now}); err != nil {
		return fmt.Errorf("failed to create %s: %w", email, err)
	}
	return nil
}

func (s *Server) fakeTenant(faker *gofakeit.Faker, now time.Time) *tenants.Tenant {
	address := faker.Address()
	name := faker.Company()

	status := tenants.StatusActive
	switch faker.Number(1, 10) {
	case 1:
		status = tenants.StatusSuspended
	case 2:
		status = tenants.StatusPending
	}

	picks := sequence(len(medicationCatalog))
	faker.ShuffleInts(picks)
	var meds []tenants.SupportedMedication
	for _, i := range picks[:faker.Number(2, 5)] {
		meds = append(meds, tenants.SupportedMedication{
			MedicationID: strings.ToLower(medicationCatalog[i]),
			Name:         medicationCatalog[i],
			Price:        faker.Price(29, 399),
			Enabled:      faker.Bool(),
		})
	}

	return &tenants.Tenant{
		ID:                   faker.UUID(),
		Name:                 name,
		Status:               status,
		Email:                faker.Email(),
		Phone:                faker.Phone(),
		Website:              faker.URL(),
		Address:              address.Street,
		City:                 address.City,
		State:                address.State,
		ZipCode:              address.Zip,
		PrimaryColor:         faker.HexColor(),
		SecondaryColor:       faker.HexColor(),
		SupportedMedications: meds,
		CreatedAt:            faker.DateRange(now.AddDate(-1, 0, 0), now),
	}
}

func (s *Server) seedOrders(faker *gofakeit.Faker, t *tenants.Tenant, now time.Time) error {
	count := faker.Number(3, maxSeededOrders)
	for i := 0; i < count; i++ {
		created := faker.DateRange(now.AddDate(0, -3, 0), now)
		med := medicationCatalog[faker.Number(0, len(medicationCatalog)-1)]
		order := &orders.Order{
			ID:             faker.UUID(),
			CompanyID:      t.ID,
			PatientID:      faker.UUID(),
			PatientName:    faker.Name(),
			MedicationID:   strings.ToLower(med),
			MedicationName: med,
			Status:         orders.Statuses[faker.Number(0, len(orders.Statuses)-1)],
			Amount:         roundCents(faker.Price(29, 499)),
			CreatedAt:      created,
			UpdatedAt:      created,
		}
		if order.Status == orders.StatusRefunded {
			order.RefundedAmount = order.Amount
		}
		if err := s.repos.Orders.Upsert(order); err != nil {
			return fmt.Errorf("failed to create order for %q: %w", t.Name, err)
		}
	}
	return nil
}

func sequence(n int) []int {
	seq := make([]int, n)
	for i := range seq {
		seq[i] = i
	}
	return seq
}
