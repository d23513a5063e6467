package main

import (
	"context"
	"database/sql"
	"flag"
	"log"
	"time"

	"github.com/tallacworks/titan-crm/config"
	"github.com/tallacworks/titan-crm/pkg/auth"
	"github.com/tallacworks/titan-crm/pkg/database"
	"github.com/tallacworks/titan-crm/pkg/testdata"
)

func main() {
	leadCount := flag.Int("leads", 200, "number of leads to generate")
	userCount := flag.Int("users", 12, "number of users to generate")
	territoryCount := flag.Int("territories", 6, "number of territories to generate")
	seed := flag.Int64("seed", time.Now().UnixNano(), "random seed")
	flag.Parse()

	gen := testdata.NewGenerator(*seed)

	cfg := config.Load()
	db, err := database.NewClient(cfg.PostgresDSN())
	if err != nil {
		log.Fatalf("❌ Failed to connect to database: %v", err)
	}
	defer db.Close()

	ctx := context.Background()
	if err := db.Migrate(ctx); err != nil {
		log.Fatalf("❌ Failed to apply migrations: %v", err)
	}

	defaultHash, err := auth.HashPassword(auth.DefaultPassword)
	if err != nil {
		log.Fatalf("❌ Failed to hash default password: %v", err)
	}

	// Admin account with a stable email so the frontend has a login.
	var adminID int
	err = db.DB.QueryRowContext(ctx,
		`INSERT INTO users (email, password_hash, full_name, role, is_active, password_change_required)
		 VALUES ($1, $2, $3, $4, TRUE, TRUE)
		 ON CONFLICT (email) DO UPDATE SET role = EXCLUDED.role
		 RETURNING id`,
		"admin@tallacworks.com", defaultHash, "Administrator", "Corporate Admin").Scan(&adminID)
	if err != nil {
		log.Fatalf("❌ Failed to seed admin user: %v", err)
	}

	userIDs := []int{adminID}
	for i := 0; i < *userCount; i++ {
		u := gen.User(i)
		var id int
		err := db.DB.QueryRowContext(ctx,
			`INSERT INTO users (email, password_hash, first_name, last_name, full_name, role, is_active, reports_to_id, password_change_required)
			 VALUES ($1, $2, $3, $4, $5, $6, TRUE, $7, TRUE)
			 ON CONFLICT (email) DO NOTHING
			 RETURNING id`,
			u.Email, defaultHash, u.FirstName, u.LastName, u.FullName, u.Role, adminID).Scan(&id)
		if err == sql.ErrNoRows {
			continue
		}
		if err != nil {
			log.Fatalf("❌ Failed to seed user: %v", err)
		}
		userIDs = append(userIDs, id)
	}
	log.Printf("✅ Seeded %d users", len(userIDs))

	territoryIDs := make([]int, 0, *territoryCount)
	for i := 0; i < *territoryCount; i++ {
		tr := gen.Territory()
		var id int
		err := db.DB.QueryRowContext(ctx,
			`INSERT INTO tallac_territories (territory_name, status, territory_owner, mobile, address, territory_manager_email, email)
			 VALUES ($1, 'Active', $2, $3, $4, $5, $5)
			 ON CONFLICT (territory_name) DO NOTHING
			 RETURNING id`,
			tr.Name, tr.Owner, tr.Mobile, tr.Address, tr.ManagerEmail).Scan(&id)
		if err == sql.ErrNoRows {
			continue
		}
		if err != nil {
			log.Fatalf("❌ Failed to seed territory: %v", err)
		}
		territoryIDs = append(territoryIDs, id)

		for j := range tr.OwnerNames {
			if _, err := db.DB.ExecContext(ctx,
				`INSERT INTO territory_owners (territory_id, owner_name, owner_email, owner_phone)
				 VALUES ($1, $2, $3, $4)`,
				id, tr.OwnerNames[j], tr.OwnerEmails[j], tr.OwnerPhones[j]); err != nil {
				log.Fatalf("❌ Failed to seed territory owner: %v", err)
			}
		}
		for j := range tr.ZipCodes {
			if _, err := db.DB.ExecContext(ctx,
				`INSERT INTO territory_zip_codes (territory_id, zip_code, city, state)
				 VALUES ($1, $2, $3, $4)`,
				id, tr.ZipCodes[j], tr.Cities[j], tr.States[j]); err != nil {
				log.Fatalf("❌ Failed to seed territory zip code: %v", err)
			}
		}
	}
	log.Printf("✅ Seeded %d territories", len(territoryIDs))

	pick := func(ids []int) any {
		if len(ids) == 0 {
			return nil
		}
		return ids[gen.IntBetween(0, len(ids)-1)]
	}

	leadNames := make([]string, 0, *leadCount)
	for i := 0; i < *leadCount; i++ {
		ld := gen.Lead()

		var name string
		err := db.DB.QueryRowContext(ctx,
			`INSERT INTO tallac_leads (
				name, company_name, industry, status, lead_owner_id, assigned_to_id,
				primary_contact_name, primary_title, primary_phone, primary_email,
				city, state, zip_code, territory_id, callback_date, callback_time
			) VALUES (
				'TLEAD-' || lpad(nextval('tallac_lead_code_seq')::text, 5, '0'),
				$1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15
			) RETURNING name`,
			ld.CompanyName, ld.Industry, ld.Status, pick(userIDs), pick(userIDs),
			ld.PrimaryContactName, ld.PrimaryTitle, ld.PrimaryPhone, ld.PrimaryEmail,
			ld.City, ld.State, ld.ZipCode, pick(territoryIDs),
			ld.CallbackDate, ld.CallbackTime).Scan(&name)
		if err != nil {
			log.Fatalf("❌ Failed to seed lead: %v", err)
		}
		leadNames = append(leadNames, name)

		if _, err := db.DB.ExecContext(ctx,
			`INSERT INTO companies (company_name, industry, status, city, state, zip_code, territory_id,
				truck_count, driver_count, employee_count, annual_revenue, years_in_business, created_by_id)
			 VALUES ($1, $2, 'Active', $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)`,
			ld.CompanyName, ld.Industry, ld.City, ld.State, ld.ZipCode,
			pick(territoryIDs), gen.IntBetween(0, 120), gen.IntBetween(0, 150),
			gen.IntBetween(5, 500), float64(gen.IntBetween(50000, 5000000)),
			gen.IntBetween(1, 40), adminID); err != nil {
			log.Fatalf("❌ Failed to seed company: %v", err)
		}
	}
	log.Printf("✅ Seeded %d leads (and matching companies)", len(leadNames))

	activityCount := 0
	for _, leadName := range leadNames {
		for j := 0; j < gen.IntBetween(0, 3); j++ {
			act := gen.Activity()
			if _, err := db.DB.ExecContext(ctx,
				`INSERT INTO tallac_activities (
					name, activity_type, title, status_id, priority, scheduled_date,
					assigned_to_id, created_by_id, description, reference_doctype, reference_docname
				) VALUES (
					'TACT-' || lpad(nextval('tallac_activity_code_seq')::text, 5, '0'),
					$1, $2, (SELECT id FROM activity_statuses ORDER BY random() LIMIT 1),
					$3, $4, $5, $6, $7, 'Tallac Lead', $8
				)`,
				act.ActivityType, act.Title, act.Priority, act.ScheduledDate,
				pick(userIDs), adminID, act.Description, leadName); err != nil {
				log.Fatalf("❌ Failed to seed activity: %v", err)
			}
			activityCount++
		}
		if gen.Chance(0.3) {
			note := gen.Note()
			if _, err := db.DB.ExecContext(ctx,
				`INSERT INTO tallac_notes (title, content, reference_doctype, reference_docname, created_by_id)
				 VALUES ($1, $2, 'Tallac Lead', $3, $4)`,
				note.Title, note.Content, leadName, pick(userIDs)); err != nil {
				log.Fatalf("❌ Failed to seed note: %v", err)
			}
		}
	}
	log.Printf("✅ Seeded %d activities", activityCount)
	log.Printf("🎉 Seed complete (login: admin@tallacworks.com / %s)", auth.DefaultPassword)
}
