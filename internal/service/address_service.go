package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"storefront-service/internal/entity"
	"storefront-service/internal/repository"
)

// AddressService resolves a user's best-known shipping address.
type AddressService struct {
	addressRepo repository.AddressRepository
	orderRepo   repository.OrderRepository
}

// NewAddressService creates a new instance of AddressService
func NewAddressService(addressRepo repository.AddressRepository, orderRepo repository.OrderRepository) *AddressService {
	return &AddressService{
		addressRepo: addressRepo,
		orderRepo:   orderRepo,
	}
}

// GetAddressForUser returns the user's first stored address, synthesizing
// one from the most recent order's shipping fields when none exists.
// (nil, nil) means genuinely absent; a storage failure comes back wrapped
// so the caller can downgrade it explicitly.
func (s *AddressService) GetAddressForUser(ctx context.Context, userID int) (*entity.CustomerAddress, error) {
	if userID <= 0 {
		return nil, nil
	}

	address, err := s.addressRepo.GetFirstByUserID(ctx, userID)
	if err == nil {
		return address, nil
	}
	if !errors.Is(err, sql.ErrNoRows) {
		logger.Error().Err(err).Msgf("Error getting address for user %d", userID)
		return nil, fmt.Errorf("%w: %v", entity.ErrStorage, err)
	}

	order, err := s.orderRepo.GetLatestOrderByUser(ctx, userID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		logger.Error().Err(err).Msgf("Error getting latest order for user %d", userID)
		return nil, fmt.Errorf("%w: %v", entity.ErrStorage, err)
	}

	synthesized, err := s.addressRepo.CreateAddress(ctx, &entity.CustomerAddress{
		UserID:      userID,
		FullName:    order.FullName,
		Phone:       order.Phone,
		AddressLine: order.AddressLine,
		City:        order.City,
		Area:        order.Area,
		PostalCode:  order.PostalCode,
		Country:     order.Country,
	})
	if err != nil {
		logger.Error().Err(err).Msgf("Error synthesizing address for user %d", userID)
		return nil, fmt.Errorf("%w: %v", entity.ErrStorage, err)
	}

	return synthesized, nil
}
