package sandbox_test

import (
	"context"
	"net"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/inspitereno-lang/entebhoomi/internal/api"
	"github.com/inspitereno-lang/entebhoomi/internal/config"
	"github.com/inspitereno-lang/entebhoomi/internal/sandbox"
	"github.com/inspitereno-lang/entebhoomi/internal/session"
)

func startSandbox(t *testing.T) (*sandbox.Server, *config.Config) {
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
	return srv, cfg
}

func TestOTPLoginRejectsWrongCode(t *testing.T) {
	_, cfg := startSandbox(t)
	client := api.New(cfg.APIBaseURL, session.New(""))
	ctx := context.Background()

	otp, err := client.RequestOTP(ctx, "9600000001")
	if err != nil {
		t.Fatalf("request OTP: %v", err)
	}
	if len(otp) != 6 {
		t.Fatalf("debug OTP = %q, want 6 digits", otp)
	}

	if _, err := client.VerifyOTP(ctx, "9600000001", "000000"); !api.IsUnauthorized(err) {
		t.Errorf("wrong code: err = %v, want 401", err)
	}

	result, err := client.VerifyOTP(ctx, "9600000001", otp)
	if err != nil {
		t.Fatalf("verify: %v", err)
	}
	if result.Token == "" {
		t.Error("expected a bearer token")
	}

	// A code cannot be replayed.
	if _, err := client.VerifyOTP(ctx, "9600000001", otp); !api.IsUnauthorized(err) {
		t.Errorf("replayed code: err = %v, want 401", err)
	}
}

func TestProtectedEndpointsRequireToken(t *testing.T) {
	_, cfg := startSandbox(t)
	client := api.New(cfg.APIBaseURL, session.New(""))

	_, err := client.FetchCart(context.Background())
	if !api.IsUnauthorized(err) {
		t.Errorf("err = %v, want 401", err)
	}
}

func TestCatalogUsesLegacyKeys(t *testing.T) {
	_, cfg := startSandbox(t)
	client := api.New(cfg.APIBaseURL, session.New(""))
	ctx := context.Background()

	products, err := client.FetchProducts(ctx, 0)
	if err != nil {
		t.Fatalf("fetch products: %v", err)
	}
	if len(products) == 0 {
		t.Fatal("seed catalog is empty")
	}
	for _, p := range products {
		if p.ID == "" || p.Name == "" {
			t.Errorf("product missing identity: %+v", p)
		}
		if p.Store == "" {
			t.Errorf("product %s missing store name", p.Name)
		}
	}

	stores, err := client.FetchStores(ctx)
	if err != nil {
		t.Fatalf("fetch stores: %v", err)
	}
	if len(stores) != 3 {
		t.Fatalf("got %d stores, want 3", len(stores))
	}

	storeID := stores[0].MongoID
	info, storeProducts, err := client.FetchStore(ctx, storeID)
	if err != nil {
		t.Fatalf("fetch store: %v", err)
	}
	if info.StoreName != stores[0].StoreName {
		t.Errorf("store name = %q, want %q", info.StoreName, stores[0].StoreName)
	}
	if len(storeProducts) == 0 {
		t.Error("store page should include its products")
	}
}

func TestSignMatchesKnownVector(t *testing.T) {
	// HMAC-SHA256("order_abc|pay_xyz", "secret")
	got := sandbox.Sign("order_abc", "pay_xyz", "secret")
	if len(got) != 64 {
		t.Fatalf("signature length = %d, want 64 hex chars", len(got))
	}
	if got != strings.ToLower(got) {
		t.Error("signature must be lowercase hex")
	}
	if sandbox.Sign("order_abc", "pay_xyz", "secret") != got {
		t.Error("signing is not deterministic")
	}
	if sandbox.Sign("order_abc", "pay_xyz", "other") == got {
		t.Error("different secrets must produce different signatures")
	}
}

func TestLandownerEnquiry(t *testing.T) {
	srv, cfg := startSandbox(t)
	client := api.New(cfg.APIBaseURL, session.New(""))
	ctx := context.Background()

	err := client.SubmitLandownerEnquiry(ctx, api.LandownerEnquiry{
		Name:           "Ravi",
		Phone:          "9447000001",
		District:       "Idukki",
		Acreage:        "3.5",
		Crop:           "Cardamom",
		Message:        "Interested in a partnership",
		AttachmentName: "deed.pdf",
		Attachment:     strings.NewReader("%PDF-1.4 test"),
	})
	if err != nil {
		t.Fatalf("submit enquiry: %v", err)
	}

	var enquiries []sandbox.LandownerEnquiry
	if err := srv.DB().Find(&enquiries).Error; err != nil {
		t.Fatalf("load enquiries: %v", err)
	}
	if len(enquiries) != 1 {
		t.Fatalf("got %d enquiries, want 1", len(enquiries))
	}
	if enquiries[0].Name != "Ravi" || enquiries[0].District != "Idukki" {
		t.Errorf("enquiry = %+v, want Ravi from Idukki", enquiries[0])
	}
	if enquiries[0].DocumentName != "deed.pdf" {
		t.Errorf("document name = %q, want %q", enquiries[0].DocumentName, "deed.pdf")
	}

	// Name and phone are mandatory.
	err = client.SubmitLandownerEnquiry(ctx, api.LandownerEnquiry{District: "Idukki"})
	if err == nil {
		t.Error("an enquiry without name and phone must be rejected")
	}
}

func TestPaymentKeyEndpoint(t *testing.T) {
	_, cfg := startSandbox(t)
	client := api.New(cfg.APIBaseURL, session.New(""))
	ctx := context.Background()

	otp, err := client.RequestOTP(ctx, "9600000002")
	if err != nil {
		t.Fatalf("request OTP: %v", err)
	}
	result, err := client.VerifyOTP(ctx, "9600000002", otp)
	if err != nil {
		t.Fatalf("verify: %v", err)
	}
	if err := client.Session().SetToken(result.Token, session.TokenRegistered); err != nil {
		t.Fatalf("set token: %v", err)
	}

	key, err := client.PaymentKey(ctx)
	if err != nil {
		t.Fatalf("payment key: %v", err)
	}
	if key != cfg.RazorpayKeyID {
		t.Errorf("key = %q, want %q", key, cfg.RazorpayKeyID)
	}
}
