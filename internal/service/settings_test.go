package service_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pharmatrack/m/domain"
	"pharmatrack/m/internal/service"
)

func TestSettingsDefaultFromShop(t *testing.T) {
	e := newEnv(t)
	shop := e.shop(t, "City Pharmacy")

	s, err := e.settings.Get(context.Background(), shop)
	require.NoError(t, err)
	assert.Equal(t, "City Pharmacy", s.StoreName)
	assert.Equal(t, "Owner of City Pharmacy", s.OwnerName)
	assert.Equal(t, domain.DefaultInvoicePrefix, s.InvoicePrefix)
	assert.Equal(t, domain.DefaultCurrency, s.Currency)

	again, err := e.settings.Get(context.Background(), shop)
	require.NoError(t, err)
	assert.Equal(t, s.ID, again.ID)
}

func TestSettingsUpdate(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	shopA, shopB := e.shop(t, "A"), e.shop(t, "B")

	s, err := e.settings.Update(ctx, shopA, service.SettingInput{
		StoreName: "  Apollo Retail ",
		GSTNumber: "29ABCDE1234F1Z5",
		Currency:  "usd",
	})
	require.NoError(t, err)
	assert.Equal(t, "Apollo Retail", s.StoreName)
	assert.Equal(t, "USD", s.Currency)
	assert.Equal(t, domain.DefaultInvoicePrefix, s.InvoicePrefix)

	other, err := e.settings.Get(ctx, shopB)
	require.NoError(t, err)
	assert.Equal(t, "B", other.StoreName)
	assert.Empty(t, other.GSTNumber)

	var verr *domain.ValidationError
	_, err = e.settings.Update(ctx, shopA, service.SettingInput{InvoicePrefix: "TOO-LONG-PREFIX"})
	assert.True(t, errors.As(err, &verr))
	_, err = e.settings.Update(ctx, shopA, service.SettingInput{Currency: "RUPEE"})
	assert.True(t, errors.As(err, &verr))
}
