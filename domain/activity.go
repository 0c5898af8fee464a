package domain

import "time"

// Activity is an audit entry for something a user did inside a shop.
type Activity struct {
	ID        int64     `db:"id" json:"id"`
	ShopID    int64     `db:"shop_id" json:"shopId"`
	UserID    *int64    `db:"user_id" json:"userId"`
	Action    string    `db:"action" json:"action"`
	Entity    string    `db:"entity" json:"entity"`
	EntityID  *int64    `db:"entity_id" json:"entityId"`
	Details   string    `db:"details" json:"details"`
	IP        string    `db:"ip" json:"ip"`
	CreatedAt time.Time `db:"created_at" json:"createdAt"`
}

const (
	ActionLogin              = "user_login"
	ActionCreateCustomer     = "create_customer"
	ActionUpdateCustomer     = "update_customer"
	ActionCreateMedicine     = "create_medicine"
	ActionUpdateMedicine     = "update_medicine"
	ActionImportMedicines    = "import_data"
	ActionCreateSale         = "create_sale"
	ActionUpdateCredit       = "update_credit"
	ActionUpdateSettings     = "update_settings"
	ActionExport             = "export_data"
	ActionSubscriptionChange = "subscription_change"
	ActionManageUser         = "manage_user"
)
