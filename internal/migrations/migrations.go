package migrations

import (
	"context"
	"fmt"
	"strings"

	"github.com/jmoiron/sqlx"

	"pharmatrack/m/internal/database"
)

// tenantTables carry a shop_id and get row level security on postgres.
var tenantTables = []string{"customers", "medicines", "sales", "sale_items", "credits", "settings", "activity_logs"}

var schema = []string{
	`CREATE TABLE IF NOT EXISTS shops (
            id {{pk}},
            shop_name TEXT NOT NULL,
            owner_name TEXT NOT NULL DEFAULT '',
            owner_email TEXT NOT NULL DEFAULT '',
            phone TEXT NOT NULL DEFAULT '',
            address TEXT NOT NULL DEFAULT '',
            subscription_type TEXT NOT NULL DEFAULT 'trial',
            subscription_status TEXT NOT NULL DEFAULT 'inactive',
            trial_ends_at {{ts}},
            subscription_expires_at {{ts}},
            subscription_amount {{money}} NOT NULL DEFAULT 0,
            is_active BOOLEAN NOT NULL DEFAULT TRUE,
            created_at {{ts}} NOT NULL,
            updated_at {{ts}} NOT NULL
        )`,
	`CREATE TABLE IF NOT EXISTS users (
            id {{pk}},
            username TEXT NOT NULL UNIQUE,
            password_hash TEXT NOT NULL,
            shop_id {{int}} REFERENCES shops(id),
            role TEXT NOT NULL,
            is_active BOOLEAN NOT NULL DEFAULT TRUE,
            last_login {{ts}},
            created_at {{ts}} NOT NULL,
            CHECK (role = 'superadmin' OR shop_id IS NOT NULL)
        )`,
	`CREATE INDEX IF NOT EXISTS users_shop_idx ON users (shop_id)`,
	`CREATE TABLE IF NOT EXISTS customers (
            id {{pk}},
            shop_id {{int}} NOT NULL REFERENCES shops(id),
            name TEXT NOT NULL,
            phone TEXT NOT NULL,
            address TEXT NOT NULL DEFAULT '',
            customer_code TEXT NOT NULL,
            created_at {{ts}} NOT NULL,
            updated_at {{ts}} NOT NULL,
            UNIQUE (shop_id, id)
        )`,
	`CREATE UNIQUE INDEX IF NOT EXISTS customers_shop_phone_uq ON customers (shop_id, phone)`,
	`CREATE UNIQUE INDEX IF NOT EXISTS customers_shop_code_uq ON customers (shop_id, customer_code)`,
	`CREATE TABLE IF NOT EXISTS medicines (
            id {{pk}},
            shop_id {{int}} NOT NULL REFERENCES shops(id),
            name TEXT NOT NULL,
            mrp {{money}} NOT NULL DEFAULT 0,
            selling_price {{money}} NOT NULL DEFAULT 0,
            stock {{int}} NOT NULL DEFAULT 0 CHECK (stock >= 0),
            expiry TEXT NOT NULL DEFAULT '',
            created_at {{ts}} NOT NULL,
            updated_at {{ts}} NOT NULL,
            UNIQUE (shop_id, id)
        )`,
	`CREATE INDEX IF NOT EXISTS medicines_shop_name_idx ON medicines (shop_id, name)`,
	`CREATE TABLE IF NOT EXISTS sales (
            id {{pk}},
            shop_id {{int}} NOT NULL REFERENCES shops(id),
            customer_id {{int}},
            user_id {{int}} REFERENCES users(id),
            subtotal {{money}} NOT NULL,
            gst_percent {{money}} NOT NULL DEFAULT 0,
            gst {{money}} NOT NULL DEFAULT 0,
            discount {{money}} NOT NULL DEFAULT 0,
            final_total {{money}} NOT NULL,
            paid {{money}} NOT NULL DEFAULT 0,
            due {{money}} NOT NULL DEFAULT 0,
            idempotency_key TEXT,
            created_at {{ts}} NOT NULL,
            UNIQUE (shop_id, id),
            FOREIGN KEY (shop_id, customer_id) REFERENCES customers (shop_id, id)
        )`,
	`CREATE INDEX IF NOT EXISTS sales_shop_created_idx ON sales (shop_id, created_at)`,
	`CREATE INDEX IF NOT EXISTS sales_shop_customer_idx ON sales (shop_id, customer_id)`,
	`CREATE UNIQUE INDEX IF NOT EXISTS sales_shop_idempotency_uq ON sales (shop_id, idempotency_key)`,
	`CREATE TABLE IF NOT EXISTS sale_items (
            id {{pk}},
            sale_id {{int}} NOT NULL,
            shop_id {{int}} NOT NULL,
            position INTEGER NOT NULL,
            medicine_id {{int}} NOT NULL,
            name TEXT NOT NULL,
            qty {{int}} NOT NULL CHECK (qty > 0),
            price {{money}} NOT NULL,
            item_discount_percent {{money}} NOT NULL DEFAULT 0,
            line_total {{money}} NOT NULL,
            FOREIGN KEY (shop_id, sale_id) REFERENCES sales (shop_id, id),
            FOREIGN KEY (shop_id, medicine_id) REFERENCES medicines (shop_id, id)
        )`,
	`CREATE INDEX IF NOT EXISTS sale_items_shop_sale_idx ON sale_items (shop_id, sale_id)`,
	`CREATE TABLE IF NOT EXISTS credits (
            id {{pk}},
            shop_id {{int}} NOT NULL REFERENCES shops(id),
            customer_id {{int}} NOT NULL,
            sale_id {{int}} NOT NULL UNIQUE,
            total_amount {{money}} NOT NULL,
            paid {{money}} NOT NULL DEFAULT 0,
            due {{money}} NOT NULL DEFAULT 0,
            status TEXT NOT NULL,
            created_at {{ts}} NOT NULL,
            updated_at {{ts}} NOT NULL,
            UNIQUE (shop_id, sale_id),
            FOREIGN KEY (shop_id, customer_id) REFERENCES customers (shop_id, id),
            FOREIGN KEY (shop_id, sale_id) REFERENCES sales (shop_id, id),
            CHECK ((due <= 0 AND status = 'paid') OR (due > 0 AND status = 'pending'))
        )`,
	`CREATE INDEX IF NOT EXISTS credits_shop_status_idx ON credits (shop_id, status)`,
	`CREATE TABLE IF NOT EXISTS settings (
            id {{pk}},
            shop_id {{int}} NOT NULL UNIQUE REFERENCES shops(id),
            store_name TEXT NOT NULL DEFAULT '',
            owner_name TEXT NOT NULL DEFAULT '',
            address TEXT NOT NULL DEFAULT '',
            phone TEXT NOT NULL DEFAULT '',
            alt_phone TEXT NOT NULL DEFAULT '',
            gst_number TEXT NOT NULL DEFAULT '',
            invoice_prefix TEXT NOT NULL DEFAULT 'INV',
            currency TEXT NOT NULL DEFAULT 'INR',
            updated_at {{ts}} NOT NULL
        )`,
	`CREATE TABLE IF NOT EXISTS activity_logs (
            id {{pk}},
            shop_id {{int}} NOT NULL REFERENCES shops(id),
            user_id {{int}},
            action TEXT NOT NULL,
            entity TEXT NOT NULL DEFAULT '',
            entity_id {{int}},
            details TEXT NOT NULL DEFAULT '',
            ip TEXT NOT NULL DEFAULT '',
            created_at {{ts}} NOT NULL
        )`,
	`CREATE INDEX IF NOT EXISTS activity_logs_shop_created_idx ON activity_logs (shop_id, created_at)`,
}

var (
	sqliteTypes = strings.NewReplacer(
		"{{pk}}", "INTEGER PRIMARY KEY AUTOINCREMENT",
		"{{int}}", "INTEGER",
		"{{ts}}", "DATETIME",
		"{{money}}", "REAL",
	)
	postgresTypes = strings.NewReplacer(
		"{{pk}}", "BIGSERIAL PRIMARY KEY",
		"{{int}}", "BIGINT",
		"{{ts}}", "TIMESTAMPTZ",
		"{{money}}", "NUMERIC(14,2)",
	)
)

// Run creates the database schema. It is safe to run on every start.
func Run(ctx context.Context, db *sqlx.DB) error {
	types := sqliteTypes
	if database.IsPostgres(db) {
		types = postgresTypes
	}

	for _, stmt := range schema {
		if _, err := db.ExecContext(ctx, types.Replace(stmt)); err != nil {
			return fmt.Errorf("migration failed: %w", err)
		}
	}

	if database.IsPostgres(db) {
		for _, stmt := range rowLevelSecurity() {
			if _, err := db.ExecContext(ctx, stmt); err != nil {
				return fmt.Errorf("row level security: %w", err)
			}
		}
	}
	return nil
}

// rowLevelSecurity restricts a transaction pinned to a shop to that shop's
// rows. FORCE keeps the table owner, usually the application role, bound by
// the policy too.
func rowLevelSecurity() []string {
	const setting = `current_setting('app.current_shop_id', true)`
	var stmts []string
	for _, table := range tenantTables {
		stmts = append(stmts,
			fmt.Sprintf(`ALTER TABLE %s ENABLE ROW LEVEL SECURITY`, table),
			fmt.Sprintf(`ALTER TABLE %s FORCE ROW LEVEL SECURITY`, table),
			fmt.Sprintf(`DROP POLICY IF EXISTS %s_tenant_isolation ON %s`, table, table),
			fmt.Sprintf(`CREATE POLICY %[1]s_tenant_isolation ON %[1]s USING (COALESCE(%[2]s, '') = '' OR shop_id = %[2]s::bigint)`, table, setting),
		)
	}
	return stmts
}
