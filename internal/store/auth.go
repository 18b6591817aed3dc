package store

import (
	"context"
	"log"

	"github.com/inspitereno-lang/entebhoomi/internal/models"
	"github.com/inspitereno-lang/entebhoomi/internal/session"
)

// RequestOTP asks the backend to send a login code to the phone number.
func (s *Store) RequestOTP(ctx context.Context, phone string) error {
	otp, err := s.client.RequestOTP(ctx, phone)
	if err != nil {
		return err
	}
	if otp != "" {
		log.Printf("[Store] OTP received (debug): %s", otp)
	}
	return nil
}

// Login verifies the OTP, stores the registered token and hydrates the
// profile.
func (s *Store) Login(ctx context.Context, phone, otp string) error {
	result, err := s.client.VerifyOTP(ctx, phone, otp)
	if err != nil {
		return err
	}

	if result.Token != "" {
		if err := s.Session().SetToken(result.Token, session.TokenRegistered); err != nil {
			log.Printf("[Store] session persist failed: %v", err)
		}
	}

	user := s.norm.User(result.User)
	s.mu.Lock()
	s.user = &user
	s.mu.Unlock()

	s.Init(ctx)
	return nil
}

// Logout clears the session and every piece of owned state.
func (s *Store) Logout() {
	s.mu.Lock()
	s.user = nil
	s.cart = nil
	s.wishlist = nil
	s.orders = nil
	s.addresses = nil
	s.mu.Unlock()

	if err := s.Session().Clear(); err != nil {
		log.Printf("[Store] session clear failed: %v", err)
	}
}

// UpdateUserDetails optimistically merges the profile change, then syncs.
func (s *Store) UpdateUserDetails(ctx context.Context, name, email string) error {
	if err := s.client.UpdateUser(ctx, name, email); err != nil {
		s.notify.Error("Failed to update profile")
		return err
	}

	s.mu.Lock()
	if s.user != nil {
		if name != "" {
			s.user.Name = name
		}
		if email != "" {
			s.user.Email = email
		}
	}
	s.mu.Unlock()

	if err := s.RefreshUser(ctx); err != nil {
		log.Printf("[Store] profile sync failed: %v", err)
	}
	s.notify.Success("User details updated successfully")
	return nil
}

// AddAddress creates an address and re-syncs the profile.
func (s *Store) AddAddress(ctx context.Context, address models.Address) error {
	if err := s.client.AddAddress(ctx, address); err != nil {
		s.notify.Error("Failed to add address")
		return err
	}
	return s.RefreshUser(ctx)
}

// UpdateAddress replaces an address and re-syncs the profile.
func (s *Store) UpdateAddress(ctx context.Context, id string, address models.Address) error {
	if err := s.client.UpdateAddress(ctx, id, address); err != nil {
		return err
	}
	return s.RefreshUser(ctx)
}

// DeleteAddress removes an address and re-syncs the profile.
func (s *Store) DeleteAddress(ctx context.Context, id string) error {
	if err := s.client.DeleteAddress(ctx, id); err != nil {
		return err
	}
	return s.RefreshUser(ctx)
}

// SetDefaultAddress marks the default address and re-syncs the profile.
// The backend guarantees at most one default at a time.
func (s *Store) SetDefaultAddress(ctx context.Context, id string) error {
	if err := s.client.SetDefaultAddress(ctx, id); err != nil {
		return err
	}
	return s.RefreshUser(ctx)
}
