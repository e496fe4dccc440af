package database

import (
	"database/sql"
	"fmt"
	"log"

	"mallhub-server/models"

	_ "github.com/lib/pq"
)

type DB struct {
	*sql.DB
}

var Database *DB

// Connect establishes a connection to the PostgreSQL database
func Connect(databaseURL string) (*DB, error) {
	db, err := sql.Open("postgres", databaseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	Database = &DB{db}
	return Database, nil
}

// InitializeTables creates all tables if they don't exist
func (db *DB) InitializeTables() error {
	// Enable pgcrypto extension
	if _, err := db.Exec(`CREATE EXTENSION IF NOT EXISTS "pgcrypto";`); err != nil {
		return fmt.Errorf("failed to enable pgcrypto extension: %w", err)
	}

	// Define the order of table creation (respecting foreign key dependencies)
	models := []interface{}{
		models.User{},
		models.Section{},
		models.Category{},
		models.Store{},
		models.StoreDiscount{},
		models.Product{},
		models.ShoppingCart{},
		models.CartItem{},
		models.GlobalLoyaltySetting{},
		models.Diamond{},
		models.UserPoints{},
		models.Prize{},
		models.PrizeRedemption{},
		models.DiscountCode{},
		models.Payment{},
		models.DeliveryOrder{},
		models.ReturnOrder{},
	}

	for _, model := range models {
		if tableModel, ok := model.(interface {
			TableName() string
			CreateTableSQL() string
		}); ok {
			tableName := tableModel.TableName()
			createSQL := tableModel.CreateTableSQL()

			log.Printf("Creating table: %s", tableName)
			if _, err := db.Exec(createSQL); err != nil {
				return fmt.Errorf("failed to create table %s: %w", tableName, err)
			}
		}
	}

	// Run schema migrations
	if err := db.runMigrations(); err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}

	log.Println("All tables created successfully!")
	return nil
}

// runMigrations handles schema updates for existing tables
func (db *DB) runMigrations() error {
	migrations := []string{
		// Older databases predate the staff flag on users
		`ALTER TABLE users ADD COLUMN IF NOT EXISTS is_staff BOOLEAN DEFAULT FALSE;`,

		// Prize items were added to cart_items after the first release
		`ALTER TABLE cart_items ADD COLUMN IF NOT EXISTS is_prize_redemption BOOLEAN DEFAULT FALSE;`,

		// Normalize legacy lowercase roles
		`UPDATE users SET role = 'CUSTOMER' WHERE role IS NULL OR role = '' OR role = 'user';`,
		`UPDATE users SET role = 'ADMIN' WHERE role = 'admin';`,

		`CREATE INDEX IF NOT EXISTS idx_user_points_user ON user_points(user_id);`,
		`CREATE INDEX IF NOT EXISTS idx_delivery_orders_user_status ON delivery_orders(delivery_user_id, status);`,
	}

	for i, migration := range migrations {
		log.Printf("Running migration %d", i+1)
		if _, err := db.Exec(migration); err != nil {
			log.Printf("Warning: Migration %d failed: %v", i+1, err)
			// Continue with other migrations even if one fails
		}
	}

	log.Println("Migrations completed!")
	return nil
}

// Close closes the database connection
func (db *DB) Close() error {
	return db.DB.Close()
}
