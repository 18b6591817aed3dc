// Package store is the client state container: cart, wishlist, orders,
// profile and addresses for the lifetime of the authenticated session.
// Mutations apply optimistically, then reconcile with backend truth or roll
// back to the pre-operation snapshot; no partial state is ever retained.
package store

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sync"

	"github.com/inspitereno-lang/entebhoomi/internal/api"
	"github.com/inspitereno-lang/entebhoomi/internal/models"
	"github.com/inspitereno-lang/entebhoomi/internal/normalize"
	"github.com/inspitereno-lang/entebhoomi/internal/session"
)

// ErrPlacementInFlight rejects a second order placement while one is
// already pending.
var ErrPlacementInFlight = errors.New("store: an order placement is already in flight")

// Notifier surfaces immediate user feedback. The UI layer supplies a toast
// implementation; the default logs.
type Notifier interface {
	Success(msg string)
	Error(msg string)
}

type logNotifier struct{}

func (logNotifier) Success(msg string) { log.Printf("[Store] %s", msg) }
func (logNotifier) Error(msg string)   { log.Printf("[Store] error: %s", msg) }

// CartResult is the typed outcome of an optimistic cart mutation: either
// success carrying the authoritative backend cart, or failure after the
// snapshot was restored. Exactly one of the two transitions applies.
type CartResult struct {
	Cart       models.Cart
	RolledBack bool
}

// Store owns the client-side state.
type Store struct {
	mu     sync.RWMutex
	client *api.Client
	norm   *normalize.Normalizer
	notify Notifier

	user      *models.User
	cart      models.Cart
	wishlist  []models.Product
	addresses []models.Address
	orders    []models.Order

	placing bool
}

// New constructs a Store over the given API client. A nil notifier logs.
func New(client *api.Client, notify Notifier) *Store {
	if notify == nil {
		notify = logNotifier{}
	}
	return &Store{
		client: client,
		norm:   normalize.New(client.BaseURL()),
		notify: notify,
	}
}

// Session exposes the underlying session.
func (s *Store) Session() *session.Session {
	return s.client.Session()
}

// Init hydrates the store for an already-registered session.
func (s *Store) Init(ctx context.Context) {
	if !s.Session().IsRegistered() {
		return
	}
	if err := s.RefreshWishlist(ctx); err != nil {
		log.Printf("[Store] wishlist fetch failed: %v", err)
	}
	if err := s.RefreshCart(ctx); err != nil {
		log.Printf("[Store] cart fetch failed: %v", err)
	}
	if err := s.RefreshUser(ctx); err != nil {
		log.Printf("[Store] user fetch failed: %v", err)
	}
	if err := s.RefreshOrders(ctx); err != nil {
		log.Printf("[Store] orders fetch failed: %v", err)
	}
}

// Accessors return value copies; callers never see internal slices.

func (s *Store) Cart() models.Cart {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.cart.Clone()
}

func (s *Store) CartTotal() float64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.cart.Total()
}

func (s *Store) CartCount() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.cart.Count()
}

func (s *Store) Wishlist() []models.Product {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]models.Product(nil), s.wishlist...)
}

func (s *Store) Addresses() []models.Address {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]models.Address(nil), s.addresses...)
}

func (s *Store) Orders() []models.Order {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]models.Order(nil), s.orders...)
}

func (s *Store) User() (models.User, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.user == nil {
		return models.User{}, false
	}
	return *s.user, true
}

// DefaultAddress returns the default delivery address, if any.
func (s *Store) DefaultAddress() (models.Address, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, a := range s.addresses {
		if a.IsDefault {
			return a, true
		}
	}
	if len(s.addresses) > 0 {
		return s.addresses[0], true
	}
	return models.Address{}, false
}

// RefreshCart replaces the local cart with backend truth. An empty or
// invalid response clears the cart.
func (s *Store) RefreshCart(ctx context.Context) error {
	items, err := s.client.FetchCart(ctx)
	if err != nil {
		s.setCart(nil)
		return err
	}
	s.setCart(s.norm.CartItems(items))
	return nil
}

// RefreshWishlist replaces the local wishlist with backend truth.
func (s *Store) RefreshWishlist(ctx context.Context) error {
	items, err := s.client.FetchWishlist(ctx)
	if err != nil {
		return err
	}
	s.mu.Lock()
	s.wishlist = s.norm.WishlistItems(items)
	s.mu.Unlock()
	return nil
}

// RefreshUser replaces the profile and addresses with backend truth.
func (s *Store) RefreshUser(ctx context.Context) error {
	wire, err := s.client.FetchUser(ctx)
	if err != nil {
		return err
	}
	user := s.norm.User(*wire)
	addresses := s.norm.Addresses(wire.Addresses)

	s.mu.Lock()
	s.user = &user
	s.addresses = addresses
	s.mu.Unlock()
	return nil
}

// RefreshOrders replaces the order list with backend truth and enriches
// item images from the product catalog when the order payload lacks them.
func (s *Store) RefreshOrders(ctx context.Context) error {
	wireOrders, err := s.client.FetchOrders(ctx)
	if err != nil {
		return err
	}
	orders := s.norm.Orders(wireOrders)

	images := s.lookupProductImages(ctx, orders)
	for oi := range orders {
		for ii := range orders[oi].Items {
			item := &orders[oi].Items[ii]
			if image, ok := images[item.Product.ID]; ok && image != "" {
				item.Product.Image = s.norm.ImageURL(image)
			}
		}
	}

	s.mu.Lock()
	s.orders = orders
	s.mu.Unlock()
	return nil
}

func (s *Store) lookupProductImages(ctx context.Context, orders []models.Order) map[string]string {
	seen := map[string]bool{}
	images := map[string]string{}
	for _, order := range orders {
		for _, item := range order.Items {
			id := item.Product.ID
			if id == "" || seen[id] {
				continue
			}
			seen[id] = true

			product, err := s.client.FetchProduct(ctx, id)
			if err != nil {
				log.Printf("[Store] product lookup %s failed: %v", id, err)
				continue
			}
			images[id] = product.Image
		}
	}
	return images
}

func (s *Store) setCart(cart models.Cart) {
	s.mu.Lock()
	s.cart = cart
	s.mu.Unlock()
}

func (s *Store) snapshotCart() models.Cart {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.cart.Clone()
}

// AddToCart optimistically merges the product into the cart, then syncs.
// Existing lines get the summed quantity; new lines are created. On backend
// failure the cart reverts exactly to the pre-operation snapshot.
func (s *Store) AddToCart(ctx context.Context, product models.Product, quantity int) (CartResult, error) {
	if !s.Session().IsRegistered() {
		s.notify.Error("Please login to add to cart")
		return CartResult{Cart: s.Cart()}, session.ErrNotAuthenticated
	}
	if quantity <= 0 {
		quantity = 1
	}

	previous := s.snapshotCart()
	existing, existed := previous.Find(product.ID)

	s.mu.Lock()
	if existed {
		for i := range s.cart {
			if s.cart[i].Product.ID == product.ID {
				s.cart[i].Quantity += quantity
				s.cart[i].TotalPrice = s.cart[i].Product.Price * float64(s.cart[i].Quantity)
			}
		}
	} else {
		s.cart = append(s.cart, models.CartItem{
			Product:    product,
			Quantity:   quantity,
			TotalPrice: product.Price * float64(quantity),
		})
	}
	s.mu.Unlock()

	if quantity > 1 {
		s.notify.Success(fmt.Sprintf("%d x %s added to cart", quantity, productName(product)))
	} else {
		s.notify.Success(fmt.Sprintf("%s added to cart", productName(product)))
	}

	err := func() error {
		if existed {
			return s.client.UpdateCartQuantity(ctx, product.ID, existing.Quantity+quantity)
		}
		if err := s.client.AddToCart(ctx, product.ID); err != nil {
			return err
		}
		if quantity > 1 {
			return s.client.UpdateCartQuantity(ctx, product.ID, quantity)
		}
		return nil
	}()
	if err != nil {
		s.setCart(previous)
		s.notify.Error("Failed to add to cart")
		return CartResult{Cart: previous, RolledBack: true}, err
	}

	if err := s.RefreshCart(ctx); err != nil {
		log.Printf("[Store] cart sync after add failed: %v", err)
	}
	return CartResult{Cart: s.Cart()}, nil
}

// UpdateQuantity optimistically replaces a line's quantity. Zero or less
// removes the line. Same snapshot and rollback contract as AddToCart.
func (s *Store) UpdateQuantity(ctx context.Context, productID string, quantity int) (CartResult, error) {
	if !s.Session().IsRegistered() {
		s.notify.Error("Please login to update cart")
		return CartResult{Cart: s.Cart()}, session.ErrNotAuthenticated
	}

	previous := s.snapshotCart()

	s.mu.Lock()
	if quantity <= 0 {
		s.cart = filterOut(s.cart, productID)
	} else {
		for i := range s.cart {
			if s.cart[i].Product.ID == productID {
				s.cart[i].Quantity = quantity
				s.cart[i].TotalPrice = s.cart[i].Product.Price * float64(quantity)
			}
		}
	}
	s.mu.Unlock()

	if quantity <= 0 {
		s.notify.Success("Removed from cart")
	}

	if err := s.client.UpdateCartQuantity(ctx, productID, quantity); err != nil {
		s.setCart(previous)
		s.notify.Error("Failed to update quantity")
		return CartResult{Cart: previous, RolledBack: true}, err
	}

	if err := s.RefreshCart(ctx); err != nil {
		log.Printf("[Store] cart sync after update failed: %v", err)
	}
	return CartResult{Cart: s.Cart()}, nil
}

// RemoveFromCart removes a line. Guest carts are ephemeral: without a
// registered session the removal is purely local.
func (s *Store) RemoveFromCart(ctx context.Context, productID string) (CartResult, error) {
	if !s.Session().IsRegistered() {
		s.mu.Lock()
		s.cart = filterOut(s.cart, productID)
		s.mu.Unlock()
		return CartResult{Cart: s.Cart()}, nil
	}

	previous := s.snapshotCart()

	s.mu.Lock()
	s.cart = filterOut(s.cart, productID)
	s.mu.Unlock()
	s.notify.Success("Removed from cart")

	if err := s.client.RemoveFromCart(ctx, productID); err != nil {
		s.setCart(previous)
		s.notify.Error("Failed to remove item")
		return CartResult{Cart: previous, RolledBack: true}, err
	}

	if err := s.RefreshCart(ctx); err != nil {
		log.Printf("[Store] cart sync after remove failed: %v", err)
	}
	return CartResult{Cart: s.Cart()}, nil
}

// ClearCart drops the local cart without touching the backend.
func (s *Store) ClearCart() {
	s.setCart(nil)
}

// IsInWishlist reports wishlist membership by product id.
func (s *Store) IsInWishlist(productID string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, p := range s.wishlist {
		if p.ID == productID {
			return true
		}
	}
	return false
}

// ToggleWishlist adds or removes by membership, local-first. The backend
// sync is best-effort: the wishlist is non-critical, failures are logged
// and never rolled back.
func (s *Store) ToggleWishlist(ctx context.Context, product models.Product) {
	if !s.Session().IsRegistered() {
		s.notify.Error("Please login to add to wishlist")
		return
	}

	liked := s.IsInWishlist(product.ID)

	s.mu.Lock()
	if liked {
		kept := s.wishlist[:0]
		for _, p := range s.wishlist {
			if p.ID != product.ID {
				kept = append(kept, p)
			}
		}
		s.wishlist = kept
	} else {
		s.wishlist = append(s.wishlist, product)
	}
	s.mu.Unlock()

	if liked {
		s.notify.Success(fmt.Sprintf("%s removed from wishlist", productName(product)))
	} else {
		s.notify.Success(fmt.Sprintf("%s added to wishlist", productName(product)))
	}

	var err error
	if liked {
		err = s.client.RemoveFromWishlist(ctx, product.ID)
	} else {
		err = s.client.AddToWishlist(ctx, product.ID)
	}
	if err != nil {
		log.Printf("[Store] wishlist sync failed: %v", err)
	}
}

func filterOut(cart models.Cart, productID string) models.Cart {
	kept := make(models.Cart, 0, len(cart))
	for _, item := range cart {
		if item.Product.ID != productID {
			kept = append(kept, item)
		}
	}
	return kept
}

func productName(p models.Product) string {
	if p.Name == "" {
		return "Item"
	}
	return p.Name
}
