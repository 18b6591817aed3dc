package store_test

import (
	"context"
	"errors"
	"net"
	"path/filepath"
	"testing"
	"time"

	"github.com/inspitereno-lang/entebhoomi/internal/api"
	"github.com/inspitereno-lang/entebhoomi/internal/checkout"
	"github.com/inspitereno-lang/entebhoomi/internal/config"
	"github.com/inspitereno-lang/entebhoomi/internal/models"
	"github.com/inspitereno-lang/entebhoomi/internal/normalize"
	"github.com/inspitereno-lang/entebhoomi/internal/sandbox"
	"github.com/inspitereno-lang/entebhoomi/internal/session"
	"github.com/inspitereno-lang/entebhoomi/internal/store"
)

func startSandbox(t *testing.T) *config.Config {
	t.Helper()

	cfg := &config.Config{
		DatabaseURL:       filepath.Join(t.TempDir(), "sandbox.db"),
		JWTSecret:         "test-secret",
		TokenExpires:      time.Hour,
		RazorpayKeyID:     "rzp_test_key",
		RazorpayKeySecret: "rzp_test_secret",
	}

	srv, err := sandbox.New(cfg)
	if err != nil {
		t.Fatalf("sandbox setup: %v", err)
	}
	if err := srv.Seed(); err != nil {
		t.Fatalf("sandbox seed: %v", err)
	}

	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("listen: %v", err)
	}
	go srv.Listener(ln)
	t.Cleanup(func() { _ = srv.Shutdown() })

	cfg.APIBaseURL = "http://" + ln.Addr().String()
	return cfg
}

func loginStore(t *testing.T, cfg *config.Config, phone string) (*store.Store, *api.Client) {
	t.Helper()

	ctx := context.Background()
	client := api.New(cfg.APIBaseURL, session.New(""))
	st := store.New(client, nil)

	otp, err := client.RequestOTP(ctx, phone)
	if err != nil {
		t.Fatalf("request OTP: %v", err)
	}
	if err := st.Login(ctx, phone, otp); err != nil {
		t.Fatalf("login: %v", err)
	}
	return st, client
}

func productByName(t *testing.T, client *api.Client, name string) models.Product {
	t.Helper()

	refs, err := client.FetchProducts(context.Background(), 0)
	if err != nil {
		t.Fatalf("fetch products: %v", err)
	}
	norm := normalize.New(client.BaseURL())
	for _, ref := range refs {
		if ref.Name == name {
			return norm.Product(ref)
		}
	}
	t.Fatalf("seed product %q not found", name)
	return models.Product{}
}

func addDefaultAddress(t *testing.T, st *store.Store) models.Address {
	t.Helper()

	err := st.AddAddress(context.Background(), models.Address{
		Name:        "Home",
		FullAddress: "MG Road",
		City:        "Kochi",
		Pincode:     "682001",
		Phone:       "9876543210",
		IsDefault:   true,
	})
	if err != nil {
		t.Fatalf("add address: %v", err)
	}

	address, ok := st.DefaultAddress()
	if !ok {
		t.Fatal("expected a default address after adding one")
	}
	return address
}

func TestGuestCannotMutateCart(t *testing.T) {
	cfg := startSandbox(t)
	client := api.New(cfg.APIBaseURL, session.New(""))
	st := store.New(client, nil)

	_, err := st.AddToCart(context.Background(), models.Product{ID: "p1", Name: "Pepper"}, 1)
	if !errors.Is(err, session.ErrNotAuthenticated) {
		t.Errorf("err = %v, want ErrNotAuthenticated", err)
	}
	if len(st.Cart()) != 0 {
		t.Error("guest add must not touch the cart")
	}
}

func TestAddToCartMergesQuantities(t *testing.T) {
	cfg := startSandbox(t)
	st, client := loginStore(t, cfg, "9400000001")
	ctx := context.Background()

	pepper := productByName(t, client, "Black Pepper")

	if _, err := st.AddToCart(ctx, pepper, 2); err != nil {
		t.Fatalf("first add: %v", err)
	}
	if _, err := st.AddToCart(ctx, pepper, 3); err != nil {
		t.Fatalf("second add: %v", err)
	}

	cart := st.Cart()
	if len(cart) != 1 {
		t.Fatalf("got %d lines, want 1", len(cart))
	}
	if cart[0].Quantity != 5 {
		t.Errorf("quantity = %d, want 5", cart[0].Quantity)
	}
	if cart[0].TotalPrice != pepper.Price*5 {
		t.Errorf("total = %v, want %v", cart[0].TotalPrice, pepper.Price*5)
	}

	// The backend agrees after re-sync.
	if err := st.RefreshCart(ctx); err != nil {
		t.Fatalf("refresh: %v", err)
	}
	cart = st.Cart()
	if len(cart) != 1 || cart[0].Quantity != 5 {
		t.Errorf("backend cart = %d lines qty %d, want 1 line qty 5", len(cart), cart[0].Quantity)
	}
}

// cartSnoop records the cart as seen at the moment of the success toast,
// which fires after the optimistic mutation and before backend sync.
type cartSnoop struct {
	st   *store.Store
	seen models.Cart
}

func (n *cartSnoop) Success(string) { n.seen = n.st.Cart() }
func (n *cartSnoop) Error(string)   {}

func TestAddToCartOptimisticTotalPrice(t *testing.T) {
	cfg := startSandbox(t)
	ctx := context.Background()

	client := api.New(cfg.APIBaseURL, session.New(""))
	snoop := &cartSnoop{}
	st := store.New(client, snoop)
	snoop.st = st

	otp, err := client.RequestOTP(ctx, "9400000012")
	if err != nil {
		t.Fatalf("request OTP: %v", err)
	}
	if err := st.Login(ctx, "9400000012", otp); err != nil {
		t.Fatalf("login: %v", err)
	}

	pepper := productByName(t, client, "Black Pepper")
	if _, err := st.AddToCart(ctx, pepper, 2); err != nil {
		t.Fatalf("first add: %v", err)
	}
	if _, err := st.AddToCart(ctx, pepper, 3); err != nil {
		t.Fatalf("second add: %v", err)
	}

	// The snapshot taken inside the second add already carries the merged
	// line total, not the pre-merge value.
	if len(snoop.seen) != 1 {
		t.Fatalf("optimistic cart has %d lines, want 1", len(snoop.seen))
	}
	if snoop.seen[0].Quantity != 5 {
		t.Errorf("optimistic quantity = %d, want 5", snoop.seen[0].Quantity)
	}
	if want := pepper.Price * 5; snoop.seen[0].TotalPrice != want {
		t.Errorf("optimistic total = %v, want %v", snoop.seen[0].TotalPrice, want)
	}
}

func TestUpdateQuantityZeroRemovesLine(t *testing.T) {
	cfg := startSandbox(t)
	st, client := loginStore(t, cfg, "9400000002")
	ctx := context.Background()

	pepper := productByName(t, client, "Black Pepper")
	if _, err := st.AddToCart(ctx, pepper, 2); err != nil {
		t.Fatalf("add: %v", err)
	}

	if _, err := st.UpdateQuantity(ctx, pepper.ID, 0); err != nil {
		t.Fatalf("update to zero: %v", err)
	}
	if len(st.Cart()) != 0 {
		t.Errorf("cart has %d lines, want 0", len(st.Cart()))
	}

	if err := st.RefreshCart(ctx); err != nil {
		t.Fatalf("refresh: %v", err)
	}
	if len(st.Cart()) != 0 {
		t.Error("backend cart should be empty after removal")
	}
}

func TestAddToCartRollsBackOnBackendFailure(t *testing.T) {
	cfg := startSandbox(t)
	st, client := loginStore(t, cfg, "9400000003")
	ctx := context.Background()

	pepper := productByName(t, client, "Black Pepper")
	if _, err := st.AddToCart(ctx, pepper, 2); err != nil {
		t.Fatalf("add: %v", err)
	}
	before := st.Cart()

	ghost := models.Product{ID: "00000000-0000-0000-0000-000000000000", Name: "Ghost", Price: 10}
	result, err := st.AddToCart(ctx, ghost, 1)
	if err == nil {
		t.Fatal("expected backend rejection for unknown product")
	}
	if !result.RolledBack {
		t.Error("result should report the rollback")
	}

	after := st.Cart()
	if len(after) != len(before) {
		t.Fatalf("cart has %d lines after rollback, want %d", len(after), len(before))
	}
	for i := range before {
		if after[i].Product.ID != before[i].Product.ID || after[i].Quantity != before[i].Quantity {
			t.Errorf("line %d = %s x%d, want %s x%d", i,
				after[i].Product.ID, after[i].Quantity,
				before[i].Product.ID, before[i].Quantity)
		}
	}
}

func TestToggleWishlistRoundTrip(t *testing.T) {
	cfg := startSandbox(t)
	st, client := loginStore(t, cfg, "9400000004")
	ctx := context.Background()

	cardamom := productByName(t, client, "Cardamom")

	st.ToggleWishlist(ctx, cardamom)
	if !st.IsInWishlist(cardamom.ID) {
		t.Fatal("product should be in wishlist after toggle")
	}

	if err := st.RefreshWishlist(ctx); err != nil {
		t.Fatalf("refresh wishlist: %v", err)
	}
	if !st.IsInWishlist(cardamom.ID) {
		t.Error("backend should agree the product is liked")
	}

	st.ToggleWishlist(ctx, cardamom)
	if err := st.RefreshWishlist(ctx); err != nil {
		t.Fatalf("refresh wishlist: %v", err)
	}
	if st.IsInWishlist(cardamom.ID) {
		t.Error("second toggle should have removed the like")
	}
}

func TestDefaultAddressIsExclusive(t *testing.T) {
	cfg := startSandbox(t)
	st, _ := loginStore(t, cfg, "9400000005")
	ctx := context.Background()

	first := addDefaultAddress(t, st)

	err := st.AddAddress(ctx, models.Address{
		Name:        "Work",
		Type:        models.AddressTypeWork,
		FullAddress: "Infopark",
		Pincode:     "682030",
		Phone:       "9876543211",
	})
	if err != nil {
		t.Fatalf("add second address: %v", err)
	}

	addresses := st.Addresses()
	if len(addresses) != 2 {
		t.Fatalf("got %d addresses, want 2", len(addresses))
	}

	var second models.Address
	for _, a := range addresses {
		if a.ID != first.ID {
			second = a
		}
	}
	if second.IsDefault {
		t.Error("second address must not steal the default")
	}

	if err := st.SetDefaultAddress(ctx, second.ID); err != nil {
		t.Fatalf("set default: %v", err)
	}

	defaults := 0
	for _, a := range st.Addresses() {
		if a.IsDefault {
			defaults++
			if a.ID != second.ID {
				t.Errorf("default is %s, want %s", a.ID, second.ID)
			}
		}
	}
	if defaults != 1 {
		t.Errorf("got %d defaults, want exactly 1", defaults)
	}
}

func TestPlaceOrderPaidPath(t *testing.T) {
	cfg := startSandbox(t)
	st, client := loginStore(t, cfg, "9400000006")
	ctx := context.Background()

	addDefaultAddress(t, st)
	pepper := productByName(t, client, "Black Pepper")
	if _, err := st.AddToCart(ctx, pepper, 2); err != nil {
		t.Fatalf("add: %v", err)
	}

	gateway := &sandbox.Gateway{Secret: cfg.RazorpayKeySecret, Action: sandbox.GatewayPay}
	result, err := st.PlaceOrder(ctx, gateway, store.PlaceOrderOptions{})
	if err != nil {
		t.Fatalf("place order: %v", err)
	}

	if result.State != checkout.StateSucceeded {
		t.Errorf("state = %v, want succeeded", result.State)
	}
	if result.IsBulk {
		t.Error("a below-threshold order must not be bulk")
	}
	if len(result.OrderedCart) != 1 || result.OrderedCart[0].Quantity != 2 {
		t.Errorf("ordered cart = %v, want the 2 pepper line", result.OrderedCart)
	}
	if len(st.Cart()) != 0 {
		t.Error("cart should be empty after a paid order")
	}

	orders := st.Orders()
	if len(orders) != 1 {
		t.Fatalf("got %d orders, want 1", len(orders))
	}
	if orders[0].PaymentStatus != "Paid" {
		t.Errorf("payment status = %q, want %q", orders[0].PaymentStatus, "Paid")
	}
}

func TestPlaceOrderDismissRestoresCart(t *testing.T) {
	cfg := startSandbox(t)
	st, client := loginStore(t, cfg, "9400000007")
	ctx := context.Background()

	addDefaultAddress(t, st)
	pepper := productByName(t, client, "Black Pepper")
	rice := productByName(t, client, "Matta Rice")
	if _, err := st.AddToCart(ctx, pepper, 3); err != nil {
		t.Fatalf("add pepper: %v", err)
	}
	if _, err := st.AddToCart(ctx, rice, 1); err != nil {
		t.Fatalf("add rice: %v", err)
	}

	gateway := &sandbox.Gateway{Secret: cfg.RazorpayKeySecret, Action: sandbox.GatewayDismiss}
	_, err := st.PlaceOrder(ctx, gateway, store.PlaceOrderOptions{})
	if !errors.Is(err, checkout.ErrCancelled) {
		t.Fatalf("err = %v, want ErrCancelled", err)
	}

	cart := st.Cart()
	if len(cart) != 2 {
		t.Fatalf("restored cart has %d lines, want 2", len(cart))
	}
	quantities := map[string]int{}
	for _, item := range cart {
		quantities[item.Product.ID] = item.Quantity
	}
	if quantities[pepper.ID] != 3 {
		t.Errorf("pepper quantity = %d, want 3", quantities[pepper.ID])
	}
	if quantities[rice.ID] != 1 {
		t.Errorf("rice quantity = %d, want 1", quantities[rice.ID])
	}
}

func TestPlaceOrderFailedPayment(t *testing.T) {
	cfg := startSandbox(t)
	st, client := loginStore(t, cfg, "9400000008")
	ctx := context.Background()

	addDefaultAddress(t, st)
	pepper := productByName(t, client, "Black Pepper")
	if _, err := st.AddToCart(ctx, pepper, 2); err != nil {
		t.Fatalf("add: %v", err)
	}

	gateway := &sandbox.Gateway{
		Secret:        cfg.RazorpayKeySecret,
		Action:        sandbox.GatewayFailThenDismiss,
		FailureReason: "card declined",
	}
	_, err := st.PlaceOrder(ctx, gateway, store.PlaceOrderOptions{})

	var payErr *checkout.PaymentError
	if !errors.As(err, &payErr) {
		t.Fatalf("err = %v, want *PaymentError", err)
	}
	if payErr.Reason != "card declined" {
		t.Errorf("reason = %q, want %q", payErr.Reason, "card declined")
	}

	// The abandoned order's items come back to the cart.
	if len(st.Cart()) != 1 {
		t.Errorf("restored cart has %d lines, want 1", len(st.Cart()))
	}
}

func TestPlaceOrderRejectsTamperedSignature(t *testing.T) {
	cfg := startSandbox(t)
	st, client := loginStore(t, cfg, "9400000009")
	ctx := context.Background()

	addDefaultAddress(t, st)
	pepper := productByName(t, client, "Black Pepper")
	if _, err := st.AddToCart(ctx, pepper, 2); err != nil {
		t.Fatalf("add: %v", err)
	}

	gateway := &sandbox.Gateway{Secret: cfg.RazorpayKeySecret, Tamper: true}
	_, err := st.PlaceOrder(ctx, gateway, store.PlaceOrderOptions{})

	var verErr *checkout.VerificationError
	if !errors.As(err, &verErr) {
		t.Fatalf("err = %v, want *VerificationError", err)
	}

	if err := st.RefreshOrders(ctx); err != nil {
		t.Fatalf("refresh orders: %v", err)
	}
	orders := st.Orders()
	if len(orders) != 1 {
		t.Fatalf("got %d orders, want 1", len(orders))
	}
	if orders[0].PaymentStatus == "Paid" {
		t.Error("a tampered payment must never be marked paid")
	}
}

func TestPlaceOrderBulkPurchaseOrder(t *testing.T) {
	cfg := startSandbox(t)
	st, client := loginStore(t, cfg, "9400000010")
	ctx := context.Background()

	addDefaultAddress(t, st)
	// Black Pepper's bulk threshold is 10; 15 units is a purchase order.
	pepper := productByName(t, client, "Black Pepper")
	if _, err := st.AddToCart(ctx, pepper, 15); err != nil {
		t.Fatalf("add: %v", err)
	}

	gateway := &sandbox.Gateway{Secret: cfg.RazorpayKeySecret}
	result, err := st.PlaceOrder(ctx, gateway, store.PlaceOrderOptions{})
	if err != nil {
		t.Fatalf("place order: %v", err)
	}

	if result.State != checkout.StateSubmitted {
		t.Errorf("state = %v, want submitted", result.State)
	}
	if !result.IsBulk {
		t.Error("an over-threshold order must be bulk")
	}
	if len(st.Cart()) != 0 {
		t.Error("cart should be empty after a purchase order")
	}

	orders := st.Orders()
	if len(orders) != 1 {
		t.Fatalf("got %d orders, want 1", len(orders))
	}
	if !orders[0].IsBulkOrder {
		t.Error("the recorded order should be marked bulk")
	}
}

func TestPlaceOrderEmptyCart(t *testing.T) {
	cfg := startSandbox(t)
	st, _ := loginStore(t, cfg, "9400000011")
	ctx := context.Background()

	addDefaultAddress(t, st)

	gateway := &sandbox.Gateway{Secret: cfg.RazorpayKeySecret}
	_, err := st.PlaceOrder(ctx, gateway, store.PlaceOrderOptions{})
	if !errors.Is(err, checkout.ErrEmptyCart) {
		t.Fatalf("err = %v, want ErrEmptyCart", err)
	}

	if err := st.RefreshOrders(ctx); err != nil {
		t.Fatalf("refresh orders: %v", err)
	}
	if len(st.Orders()) != 0 {
		t.Error("no order may be created for an empty cart")
	}
}

func TestPlaceOrderMissingAddress(t *testing.T) {
	cfg := startSandbox(t)
	st, client := loginStore(t, cfg, "9400000012")
	ctx := context.Background()

	pepper := productByName(t, client, "Black Pepper")
	if _, err := st.AddToCart(ctx, pepper, 2); err != nil {
		t.Fatalf("add: %v", err)
	}

	gateway := &sandbox.Gateway{Secret: cfg.RazorpayKeySecret}
	_, err := st.PlaceOrder(ctx, gateway, store.PlaceOrderOptions{})
	if !errors.Is(err, checkout.ErrAddressRequired) {
		t.Fatalf("err = %v, want ErrAddressRequired", err)
	}
}

// blockingGateway parks the checkout until released, so a second placement
// can be attempted while the first is in flight.
type blockingGateway struct {
	entered  chan struct{}
	release  chan struct{}
	delegate checkout.Gateway
}

func (g *blockingGateway) Open(ctx context.Context, opts checkout.Options, cb checkout.Callbacks) error {
	close(g.entered)
	<-g.release
	return g.delegate.Open(ctx, opts, cb)
}

func TestPlaceOrderSingleFlight(t *testing.T) {
	cfg := startSandbox(t)
	st, client := loginStore(t, cfg, "9400000013")
	ctx := context.Background()

	addDefaultAddress(t, st)
	pepper := productByName(t, client, "Black Pepper")
	if _, err := st.AddToCart(ctx, pepper, 2); err != nil {
		t.Fatalf("add: %v", err)
	}

	gateway := &blockingGateway{
		entered:  make(chan struct{}),
		release:  make(chan struct{}),
		delegate: &sandbox.Gateway{Secret: cfg.RazorpayKeySecret},
	}

	done := make(chan error, 1)
	go func() {
		_, err := st.PlaceOrder(ctx, gateway, store.PlaceOrderOptions{})
		done <- err
	}()

	<-gateway.entered
	_, err := st.PlaceOrder(ctx, &sandbox.Gateway{Secret: cfg.RazorpayKeySecret}, store.PlaceOrderOptions{})
	if !errors.Is(err, store.ErrPlacementInFlight) {
		t.Errorf("err = %v, want ErrPlacementInFlight", err)
	}

	close(gateway.release)
	if err := <-done; err != nil {
		t.Fatalf("first placement failed: %v", err)
	}
}

func TestCancelOrderItem(t *testing.T) {
	cfg := startSandbox(t)
	st, client := loginStore(t, cfg, "9400000014")
	ctx := context.Background()

	addDefaultAddress(t, st)
	pepper := productByName(t, client, "Black Pepper")
	if _, err := st.AddToCart(ctx, pepper, 2); err != nil {
		t.Fatalf("add: %v", err)
	}

	gateway := &sandbox.Gateway{Secret: cfg.RazorpayKeySecret}
	result, err := st.PlaceOrder(ctx, gateway, store.PlaceOrderOptions{})
	if err != nil {
		t.Fatalf("place order: %v", err)
	}

	if err := st.CancelOrderItem(ctx, result.OrderID, pepper.ID); err != nil {
		t.Fatalf("cancel item: %v", err)
	}

	orders := st.Orders()
	if len(orders) != 1 || len(orders[0].Items) != 1 {
		t.Fatalf("unexpected order shape: %+v", orders)
	}
	if orders[0].Items[0].Status != models.ItemStatusCancelled {
		t.Errorf("item status = %q, want %q", orders[0].Items[0].Status, models.ItemStatusCancelled)
	}
}
