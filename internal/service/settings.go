package service

import (
	"context"
	"strings"

	"pharmatrack/m/domain"
	"pharmatrack/m/internal/activity"
	"pharmatrack/m/internal/clock"
	"pharmatrack/m/internal/store"
)

type SettingInput struct {
	StoreName     string `json:"storeName"`
	OwnerName     string `json:"ownerName"`
	Address       string `json:"address"`
	Phone         string `json:"phone"`
	AltPhone      string `json:"altPhone"`
	GSTNumber     string `json:"gstNumber"`
	InvoicePrefix string `json:"invoicePrefix"`
	Currency      string `json:"currency"`
}

type Settings struct {
	store    *store.Store
	clock    clock.Clock
	activity *activity.Recorder
}

func NewSettings(st *store.Store, clk clock.Clock, rec *activity.Recorder) *Settings {
	return &Settings{store: st, clock: clk, activity: rec}
}

// Get returns the shop's settings, creating them from the shop's profile on
// first use.
func (s *Settings) Get(ctx context.Context, shopID int64) (domain.Setting, error) {
	var setting domain.Setting
	err := s.store.Tenant(ctx, shopID, func(q *store.Queries) error {
		var err error
		setting, err = ensureSetting(ctx, q, shopID, s.clock)
		return err
	})
	return setting, err
}

// Update overwrites the settings. Blank store name, prefix and currency fall
// back to their defaults.
func (s *Settings) Update(ctx context.Context, shopID int64, in SettingInput) (domain.Setting, error) {
	in = trimSettingInput(in)
	if len(in.InvoicePrefix) > 10 {
		return domain.Setting{}, &domain.ValidationError{Message: "invoice prefix is at most 10 characters"}
	}
	if in.Currency != "" && len(in.Currency) != 3 {
		return domain.Setting{}, &domain.ValidationError{Message: "currency must be a 3 letter code"}
	}

	var setting domain.Setting
	err := s.store.Tenant(ctx, shopID, func(q *store.Queries) error {
		var err error
		if setting, err = ensureSetting(ctx, q, shopID, s.clock); err != nil {
			return err
		}
		setting.StoreName = orDefault(in.StoreName, domain.DefaultStoreName)
		setting.OwnerName = in.OwnerName
		setting.Address = in.Address
		setting.Phone = in.Phone
		setting.AltPhone = in.AltPhone
		setting.GSTNumber = in.GSTNumber
		setting.InvoicePrefix = orDefault(in.InvoicePrefix, domain.DefaultInvoicePrefix)
		setting.Currency = strings.ToUpper(orDefault(in.Currency, domain.DefaultCurrency))
		setting.UpdatedAt = s.clock.Now()
		return q.UpdateSetting(ctx, setting)
	})
	if err != nil {
		return domain.Setting{}, err
	}
	s.activity.Record(ctx, shopID, activity.Entry{Action: domain.ActionUpdateSettings, Entity: "settings", EntityID: setting.ID})
	return setting, nil
}

func ensureSetting(ctx context.Context, q *store.Queries, shopID int64, clk clock.Clock) (domain.Setting, error) {
	shop, err := q.GetShop(ctx, shopID)
	if err != nil {
		return domain.Setting{}, err
	}
	defaults := domain.Setting{
		StoreName:     orDefault(shop.ShopName, domain.DefaultStoreName),
		OwnerName:     shop.OwnerName,
		Address:       shop.Address,
		Phone:         shop.Phone,
		InvoicePrefix: domain.DefaultInvoicePrefix,
		Currency:      domain.DefaultCurrency,
	}
	return q.EnsureSetting(ctx, shopID, defaults, clk.Now())
}

func trimSettingInput(in SettingInput) SettingInput {
	for _, f := range []*string{&in.StoreName, &in.OwnerName, &in.Address, &in.Phone, &in.AltPhone,
		&in.GSTNumber, &in.InvoicePrefix, &in.Currency} {
		*f = strings.TrimSpace(*f)
	}
	return in
}

func orDefault(v, def string) string {
	if v == "" {
		return def
	}
	return v
}
