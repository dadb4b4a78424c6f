package cmd

import (
	"fmt"
	"log"

	"github.com/spf13/cobra"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Seed the database with sample data",
	Long:  `Seed the database with a sample company and users for development and testing purposes.`,
	Run: func(cmd *cobra.Command, args []string) {
		cfg, err := loadConfig(".")
		if err != nil {
			log.Fatalf("failed to load config: %v", err)
		}

		sqlxDB, err := initDB(cfg.Database)
		if err != nil {
			log.Fatalf("failed to init db: %v", err)
		}

		db, err := initGorm(sqlxDB)
		if err != nil {
			log.Fatalf("failed to init gorm: %v", err)
		}

		if clearData {
			for _, table := range []string{
				"audit_logs", "expense_payments", "reimbursements", "transactions",
				"user_permissions", "company_members", "permissions", "users", "companies",
			} {
				if err := db.Exec("DELETE FROM " + table).Error; err != nil {
					log.Fatalf("failed to clear %s: %v", table, err)
				}
			}
			fmt.Println("Cleared existing data")
		}

		companyName := "บ้านชีคาเฟ่"
		var companyID int64
		if err := db.Raw("SELECT id FROM companies WHERE name = ?", companyName).Row().Scan(&companyID); err != nil {
			if err := db.Exec("INSERT INTO companies (name, tax_id, created_at, updated_at) VALUES (?, ?, now(), now())",
				companyName, "0105561000001").Error; err != nil {
				log.Fatalf("failed to insert company: %v", err)
			}
			if err := db.Raw("SELECT id FROM companies WHERE name = ?", companyName).Row().Scan(&companyID); err != nil {
				log.Fatalf("failed to lookup company id: %v", err)
			}
			fmt.Println("Seeded company:", companyName)
		}

		password := "password"
		hash, _ := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)

		ownerID := seedUser(db, "nid@banchee.dev", "Nid Owner", string(hash))
		accountantID := seedUser(db, "somchai@banchee.dev", "Somchai Accountant", string(hash))
		staffID := seedUser(db, "malee@banchee.dev", "Malee Staff", string(hash))

		seedMember(db, companyID, ownerID, true)
		seedMember(db, companyID, accountantID, false)
		seedMember(db, companyID, staffID, false)

		permissions := []struct {
			Name string
			Desc string
		}{
			{"transactions:*", "Full access to expense and income records"},
			{"transactions:create", "Can record expenses and income"},
			{"transactions:read", "Can view expenses and income"},
			{"transactions:update", "Can edit records and advance document steps"},
			{"transactions:delete", "Can delete records"},
			{"transactions:pay", "Can mark records paid and add payments"},
			{"transactions:approve", "Can approve or reject records"},
			{"transactions:send", "Can send records to the accountant"},
			{"reimbursements:*", "Full access to reimbursement claims"},
			{"reimbursements:create", "Can submit reimbursement claims"},
			{"reimbursements:read", "Can view reimbursement claims"},
			{"reimbursements:approve", "Can approve, reject or flag claims"},
			{"reimbursements:pay", "Can pay out and convert claims"},
		}

		for _, p := range permissions {
			var pid int64
			if err := db.Raw("SELECT id FROM permissions WHERE name = ?", p.Name).Row().Scan(&pid); err != nil {
				if err := db.Exec("INSERT INTO permissions (name, description, created_at) VALUES (?, ?, now())", p.Name, p.Desc).Error; err != nil {
					log.Fatalf("failed to insert permission %s: %v", p.Name, err)
				}
			}
		}

		grantPermissions(db, accountantID, []string{
			"transactions:*",
			"reimbursements:read",
			"reimbursements:approve",
			"reimbursements:pay",
		})
		fmt.Println("Granted accountant permissions to: somchai@banchee.dev")

		grantPermissions(db, staffID, []string{
			"transactions:create",
			"transactions:read",
			"transactions:update",
			"reimbursements:create",
			"reimbursements:read",
		})
		fmt.Println("Granted staff permissions to: malee@banchee.dev")

		fmt.Println("Seed finished; owner account needs no grants: nid@banchee.dev")
	},
}

func seedUser(db *gorm.DB, email, name, passwordHash string) int64 {
	var id int64
	if err := db.Raw("SELECT id FROM users WHERE email = ?", email).Row().Scan(&id); err == nil {
		fmt.Println("user already exists:", email)
		return id
	}

	if err := db.Exec("INSERT INTO users (email, name, password_hash, is_active, created_at, updated_at) VALUES (?, ?, ?, true, now(), now())",
		email, name, passwordHash).Error; err != nil {
		log.Fatalf("failed to insert user %s: %v", email, err)
	}
	if err := db.Raw("SELECT id FROM users WHERE email = ?", email).Row().Scan(&id); err != nil {
		log.Fatalf("failed to lookup user id %s: %v", email, err)
	}
	fmt.Println("Seeded user:", email)
	return id
}

func seedMember(db *gorm.DB, companyID, userID int64, isOwner bool) {
	var exists int
	if err := db.Raw("SELECT 1 FROM company_members WHERE company_id = ? AND user_id = ?", companyID, userID).Row().Scan(&exists); err == nil {
		return
	}
	if err := db.Exec("INSERT INTO company_members (company_id, user_id, is_owner, created_at) VALUES (?, ?, ?, now())",
		companyID, userID, isOwner).Error; err != nil {
		log.Fatalf("failed to insert company member %d: %v", userID, err)
	}
}

func grantPermissions(db *gorm.DB, userID int64, names []string) {
	for _, name := range names {
		var pid int64
		if err := db.Raw("SELECT id FROM permissions WHERE name = ?", name).Row().Scan(&pid); err != nil {
			log.Fatalf("permission not found %s: %v", name, err)
		}

		var exists int
		if err := db.Raw("SELECT 1 FROM user_permissions WHERE user_id = ? AND permission_id = ?", userID, pid).Row().Scan(&exists); err == nil {
			continue
		}

		if err := db.Exec("INSERT INTO user_permissions (user_id, permission_id, granted_by, created_at) VALUES (?, ?, NULL, now())", userID, pid).Error; err != nil {
			log.Fatalf("failed to grant permission %s to user %d: %v", name, userID, err)
		}
	}
}
