// Package main provides a CLI tool for seeding the database with
// initial data: locations, a company with its main branch, and an
// admin profile able to sign in.
package main

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/jackc/pgx/v5"
	"golang.org/x/crypto/bcrypt"

	"comercio/internal/core/id"
	"comercio/internal/infrastructure/storage/postgres"
	"comercio/pkg/logger"
)

func main() {
	log, err := logger.New(logger.Config{
		Level:       "info",
		Development: true,
	})
	if err != nil {
		fmt.Printf("failed to create logger: %v\n", err)
		os.Exit(1)
	}

	ctx := context.Background()

	dbURL := os.Getenv("DATABASE_URL")
	if dbURL == "" {
		log.Fatal("DATABASE_URL environment variable is required")
	}

	poolCfg := postgres.DefaultPoolConfig(dbURL)
	pool, err := postgres.NewPool(ctx, poolCfg)
	if err != nil {
		log.Fatalw("failed to connect to database", "error", err)
	}
	defer pool.Close()

	log.Info("connected to database")

	munIDs, err := seedLocations(ctx, pool, log)
	if err != nil {
		log.Fatalw("failed to seed locations", "error", err)
	}

	if _, err := seedCompany(ctx, pool, log, munIDs); err != nil {
		log.Fatalw("failed to seed company", "error", err)
	}

	if err := seedAdminProfile(ctx, pool, log); err != nil {
		log.Fatalw("failed to seed admin profile", "error", err)
	}

	if os.Getenv("SEED_DEMO_DATA") == "true" {
		if err := seedDemoData(ctx, pool, log); err != nil {
			log.Fatalw("failed to seed demo data", "error", err)
		}
	}

	log.Info("seeding completed successfully")
}

// seedLocations inserts a few departments and their capitals.
// Returns municipality ids keyed by DANE code.
func seedLocations(ctx context.Context, pool *postgres.Pool, log *logger.Logger) (map[string]id.ID, error) {
	departments := []struct {
		name     string
		daneCode string
		region   string
	}{
		{"Antioquia", "05", "andina"},
		{"Cundinamarca", "25", "andina"},
		{"Valle del Cauca", "76", "pacifica"},
		{"Atlántico", "08", "caribe"},
	}

	depIDs := make(map[string]id.ID)
	for _, d := range departments {
		depID := id.New()
		tag, err := pool.Pool.Exec(ctx, `
			INSERT INTO cat_departments (id, code, name, dane_code, region, version, deletion_mark, attributes)
			VALUES ($1, $2, $3, $2, $4, 1, false, '{}')
			ON CONFLICT (dane_code) WHERE deletion_mark = FALSE DO NOTHING
		`, depID, d.daneCode, d.name, d.region)
		if err != nil {
			return nil, fmt.Errorf("insert department %s: %w", d.name, err)
		}
		if tag.RowsAffected() == 0 {
			err = pool.Pool.QueryRow(ctx,
				`SELECT id FROM cat_departments WHERE dane_code = $1 AND deletion_mark = FALSE`,
				d.daneCode,
			).Scan(&depID)
			if err != nil {
				return nil, fmt.Errorf("fetch department %s: %w", d.name, err)
			}
		}
		depIDs[d.daneCode] = depID
	}

	municipalities := []struct {
		name     string
		daneCode string
		depCode  string
	}{
		{"Medellín", "05001", "05"},
		{"Bogotá D.C.", "25001", "25"},
		{"Cali", "76001", "76"},
		{"Barranquilla", "08001", "08"},
	}

	munIDs := make(map[string]id.ID)
	for _, m := range municipalities {
		munID := id.New()
		tag, err := pool.Pool.Exec(ctx, `
			INSERT INTO cat_municipalities (id, code, name, department_id, dane_code, version, deletion_mark, attributes)
			VALUES ($1, $2, $3, $4, $2, 1, false, '{}')
			ON CONFLICT (dane_code) WHERE deletion_mark = FALSE DO NOTHING
		`, munID, m.daneCode, m.name, depIDs[m.depCode])
		if err != nil {
			return nil, fmt.Errorf("insert municipality %s: %w", m.name, err)
		}
		if tag.RowsAffected() == 0 {
			err = pool.Pool.QueryRow(ctx,
				`SELECT id FROM cat_municipalities WHERE dane_code = $1 AND deletion_mark = FALSE`,
				m.daneCode,
			).Scan(&munID)
			if err != nil {
				return nil, fmt.Errorf("fetch municipality %s: %w", m.name, err)
			}
		}
		munIDs[m.daneCode] = munID
	}

	log.Infow("locations seeded", "departments", len(depIDs), "municipalities", len(munIDs))
	return munIDs, nil
}

// seedCompany inserts the default company and its main branch.
// Returns the branch id.
func seedCompany(ctx context.Context, pool *postgres.Pool, log *logger.Logger, munIDs map[string]id.ID) (id.ID, error) {
	taxID := os.Getenv("COMPANY_TAX_ID")
	if taxID == "" {
		taxID = "900123456-7"
	}
	companyName := os.Getenv("COMPANY_NAME")
	if companyName == "" {
		companyName = "Comercio Demo S.A.S."
	}

	companyID := id.New()
	tag, err := pool.Pool.Exec(ctx, `
		INSERT INTO cat_companies (id, code, name, tax_id, kind, state, version, deletion_mark, attributes)
		VALUES ($1, $2, $3, $2, 'retail', 'active', 1, false, '{}')
		ON CONFLICT (tax_id) WHERE deletion_mark = FALSE DO NOTHING
	`, companyID, taxID, companyName)
	if err != nil {
		return id.Nil(), fmt.Errorf("insert company: %w", err)
	}
	if tag.RowsAffected() == 0 {
		err = pool.Pool.QueryRow(ctx,
			`SELECT id FROM cat_companies WHERE tax_id = $1 AND deletion_mark = FALSE`,
			taxID,
		).Scan(&companyID)
		if err != nil {
			return id.Nil(), fmt.Errorf("fetch company: %w", err)
		}
	}

	munID, ok := munIDs["05001"]
	if !ok {
		return id.Nil(), fmt.Errorf("seed municipality missing")
	}

	var branchID id.ID
	err = pool.Pool.QueryRow(ctx,
		`SELECT id FROM cat_branches WHERE company_id = $1 AND kind = 'main' AND deletion_mark = FALSE LIMIT 1`,
		companyID,
	).Scan(&branchID)
	if err == nil {
		log.Infow("main branch already exists", "branch_id", branchID)
		return branchID, nil
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		return id.Nil(), fmt.Errorf("check branch exists: %w", err)
	}

	branchID = id.New()
	_, err = pool.Pool.Exec(ctx, `
		INSERT INTO cat_branches (id, code, name, company_id, address, municipality_id, kind, state, version, deletion_mark, attributes)
		VALUES ($1, 'BR-001', 'Sede Principal', $2, 'Calle 10 # 43A-30', $3, 'main', 'active', 1, false, '{}')
	`, branchID, companyID, munID)
	if err != nil {
		return id.Nil(), fmt.Errorf("insert branch: %w", err)
	}

	log.Infow("company seeded", "company_id", companyID, "branch_id", branchID)
	return branchID, nil
}

// seedAdminProfile inserts an admin profile able to sign in.
func seedAdminProfile(ctx context.Context, pool *postgres.Pool, log *logger.Logger) error {
	adminEmail := os.Getenv("ADMIN_EMAIL")
	if adminEmail == "" {
		adminEmail = "admin@comercio.local"
	}
	adminPassword := os.Getenv("ADMIN_PASSWORD")
	if adminPassword == "" {
		adminPassword = "Admin123!"
	}

	var existingID id.ID
	err := pool.Pool.QueryRow(ctx,
		`SELECT id FROM cat_profiles WHERE email = $1 AND deletion_mark = FALSE`,
		adminEmail,
	).Scan(&existingID)
	if err == nil {
		log.Infow("admin profile already exists", "email", adminEmail, "profile_id", existingID)
		return nil
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		return fmt.Errorf("check admin exists: %w", err)
	}

	passwordHash, err := bcrypt.GenerateFromPassword([]byte(adminPassword), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}

	profileID := id.New()
	_, err = pool.Pool.Exec(ctx, `
		INSERT INTO cat_profiles (
			id, code, name, document_type, document_number, email,
			business_roles, state, password_hash, version, deletion_mark, attributes
		)
		VALUES ($1, $2, 'System Admin', 'cc', $2, $3, $4, 'active', $5, 1, false, '{}')
	`, profileID, "00000000", adminEmail, []string{"admin", "employee"}, string(passwordHash))
	if err != nil {
		return fmt.Errorf("insert admin profile: %w", err)
	}

	log.Infow("admin profile created", "email", adminEmail, "profile_id", profileID)
	return nil
}

// seedDemoData inserts sample categories and products.
func seedDemoData(ctx context.Context, pool *postgres.Pool, log *logger.Logger) error {
	log.Info("seeding demo data...")

	categories := []string{"Papelería", "Tecnología", "Aseo"}
	catIDs := make(map[string]id.ID)
	for _, name := range categories {
		catID := id.New()
		tag, err := pool.Pool.Exec(ctx, `
			INSERT INTO cat_categories (id, code, name, active, version, deletion_mark, attributes)
			VALUES ($1, $2, $2, true, 1, false, '{}')
			ON CONFLICT (name) WHERE deletion_mark = FALSE DO NOTHING
		`, catID, name)
		if err != nil {
			log.Warnw("failed to seed category", "name", name, "error", err)
			continue
		}
		if tag.RowsAffected() == 0 {
			if err := pool.Pool.QueryRow(ctx,
				`SELECT id FROM cat_categories WHERE name = $1 AND deletion_mark = FALSE`,
				name,
			).Scan(&catID); err != nil {
				log.Warnw("failed to fetch category", "name", name, "error", err)
				continue
			}
		}
		catIDs[name] = catID
	}

	products := []struct {
		code     string
		name     string
		category string
		unitCost string
		stock    int64 // whole units
	}{
		{"PAP-A4", "Resma papel carta", "Papelería", "12500", 100},
		{"PEN-BLU", "Bolígrafo azul", "Papelería", "900", 500},
		{"USB-32", "Memoria USB 32GB", "Tecnología", "28000", 40},
		{"JAB-LIQ", "Jabón líquido 1L", "Aseo", "8300", 60},
	}

	for _, p := range products {
		prodID := id.New()
		tag, err := pool.Pool.Exec(ctx, `
			INSERT INTO cat_products (id, code, name, stock, min_stock, unit_cost, state, version, deletion_mark, attributes)
			VALUES ($1, $2, $3, $4, $5, $6, 'active', 1, false, '{}')
			ON CONFLICT (code) WHERE deletion_mark = FALSE DO NOTHING
		`, prodID, p.code, p.name, p.stock*1000, 5*1000, p.unitCost)
		if err != nil {
			log.Warnw("failed to seed product", "code", p.code, "error", err)
			continue
		}
		if tag.RowsAffected() == 0 {
			if err := pool.Pool.QueryRow(ctx,
				`SELECT id FROM cat_products WHERE code = $1 AND deletion_mark = FALSE`,
				p.code,
			).Scan(&prodID); err != nil {
				continue
			}
		}

		catID, ok := catIDs[p.category]
		if !ok {
			continue
		}
		_, err = pool.Pool.Exec(ctx, `
			INSERT INTO cat_product_categories (id, product_id, category_id, is_primary)
			VALUES ($1, $2, $3, true)
			ON CONFLICT (product_id, category_id) DO NOTHING
		`, id.New(), prodID, catID)
		if err != nil {
			log.Warnw("failed to link product category", "code", p.code, "error", err)
		}
	}

	log.Info("demo data seeded successfully")
	return nil
}
