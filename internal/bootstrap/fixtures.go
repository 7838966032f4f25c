package bootstrap

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"

	"staybook/internal/app/dto"
	"staybook/internal/app/uow"
	domainbooking "staybook/internal/domain/booking"
	domainguest "staybook/internal/domain/guest"
	"staybook/internal/domain/shared/money"
)

type fixtures struct {
	Properties []propertyFixture `json:"properties"`
	Guests     []guestFixture    `json:"guests"`
}

type propertyFixture struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	MaxGuests   int       `json:"max_guests"`
	NightlyRate dto.Money `json:"nightly_rate"`
}

type guestFixture struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// LoadFixtures seeds properties and guests from a JSON file. Records that
// already exist are left alone, so restarting against persistent storage is
// safe. A missing file is not an error.
func (a *Application) LoadFixtures(ctx context.Context, path string, logger *slog.Logger) error {
	if logger == nil {
		logger = slog.Default()
	}
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			logger.Info("fixtures file not found, skipping", "path", path)
			return nil
		}
		return fmt.Errorf("read fixtures: %w", err)
	}
	var fx fixtures
	if err := json.Unmarshal(data, &fx); err != nil {
		return fmt.Errorf("decode fixtures: %w", err)
	}

	now := a.clock.Now()
	for _, pf := range fx.Properties {
		err := uow.Run(ctx, a.factory, uow.TxOptions{}, func(ctx context.Context, unit uow.UnitOfWork) error {
			id := domainbooking.PropertyID(pf.ID)
			if _, err := unit.Properties().ByID(ctx, id); err == nil {
				return nil
			} else if !errors.Is(err, domainbooking.ErrPropertyNotFound) {
				return err
			}
			rate, err := money.New(pf.NightlyRate.Amount, pf.NightlyRate.Currency)
			if err != nil {
				return err
			}
			p, err := domainbooking.NewProperty(domainbooking.PropertyParams{
				ID:          id,
				Name:        pf.Name,
				Description: pf.Description,
				MaxGuests:   pf.MaxGuests,
				NightlyRate: rate,
				CreatedAt:   now,
			})
			if err != nil {
				return err
			}
			return unit.Properties().Save(ctx, p)
		})
		if err != nil {
			logger.Error("property fixture rejected", "property_id", pf.ID, "error", err)
			continue
		}
		logger.Info("property fixture imported", "property_id", pf.ID)
	}

	for _, gf := range fx.Guests {
		err := uow.Run(ctx, a.factory, uow.TxOptions{}, func(ctx context.Context, unit uow.UnitOfWork) error {
			id := domainguest.ID(gf.ID)
			if _, err := unit.Guests().ByID(ctx, id); err == nil {
				return nil
			} else if !errors.Is(err, domainguest.ErrNotFound) {
				return err
			}
			g, err := domainguest.New(domainguest.CreateParams{ID: id, Name: gf.Name, CreatedAt: now})
			if err != nil {
				return err
			}
			return unit.Guests().Save(ctx, g)
		})
		if err != nil {
			logger.Error("guest fixture rejected", "guest_id", gf.ID, "error", err)
			continue
		}
		logger.Info("guest fixture imported", "guest_id", gf.ID)
	}
	return nil
}
