package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/inspitereno-lang/entebhoomi/internal/api"
	"github.com/inspitereno-lang/entebhoomi/internal/checkout"
	"github.com/inspitereno-lang/entebhoomi/internal/config"
	"github.com/inspitereno-lang/entebhoomi/internal/normalize"
	"github.com/inspitereno-lang/entebhoomi/internal/sandbox"
	"github.com/inspitereno-lang/entebhoomi/internal/session"
	"github.com/inspitereno-lang/entebhoomi/internal/store"
)

const usage = `Usage: storefront <command> [args]

Commands:
  products              list the catalog
  login <phone> <otp>   verify an OTP and store the session
  request-otp <phone>   request a login OTP
  cart                  show the cart
  add <productId>       add a product to the cart
  orders                list placed orders
  place <addressId>     place an order and pay through the sandbox gateway
  logout                clear the stored session
`

func main() {
	if len(os.Args) < 2 {
		fmt.Fprint(os.Stderr, usage)
		os.Exit(2)
	}

	cfg := config.Load()

	sess := session.New(cfg.SessionFile)
	client := api.New(cfg.APIBaseURL, sess)
	st := store.New(client, nil)

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	switch os.Args[1] {
	case "products":
		listProducts(ctx, client)
	case "request-otp":
		requireArgs(3)
		if err := st.RequestOTP(ctx, os.Args[2]); err != nil {
			log.Fatalf("request OTP failed: %v", err)
		}
	case "login":
		requireArgs(4)
		if err := st.Login(ctx, os.Args[2], os.Args[3]); err != nil {
			log.Fatalf("login failed: %v", err)
		}
		fmt.Println("logged in")
	case "cart":
		st.Init(ctx)
		showCart(st)
	case "add":
		requireArgs(3)
		st.Init(ctx)
		addProduct(ctx, client, st, os.Args[2])
	case "orders":
		st.Init(ctx)
		for _, order := range st.Orders() {
			fmt.Printf("%s  %-10s  ₹%.2f\n", order.OrderID, order.Status, order.Total)
		}
	case "place":
		requireArgs(3)
		st.Init(ctx)
		placeOrder(ctx, cfg, st, os.Args[2])
	case "logout":
		st.Logout()
		fmt.Println("logged out")
	default:
		fmt.Fprint(os.Stderr, usage)
		os.Exit(2)
	}
}

func requireArgs(n int) {
	if len(os.Args) < n {
		fmt.Fprint(os.Stderr, usage)
		os.Exit(2)
	}
}

func listProducts(ctx context.Context, client *api.Client) {
	products, err := client.FetchProducts(ctx, 0)
	if err != nil {
		log.Fatalf("fetch products failed: %v", err)
	}
	for _, p := range products {
		fmt.Printf("%s  %-24s  ₹%.2f  %s\n", p.ID, p.Name, p.Price, p.Store)
	}
}

func showCart(st *store.Store) {
	cart := st.Cart()
	if len(cart) == 0 {
		fmt.Println("cart is empty")
		return
	}
	for _, item := range cart {
		bulk := ""
		if item.IsBulk() {
			bulk = "  [bulk]"
		}
		fmt.Printf("%-24s  x%d  ₹%.2f%s\n", item.Product.Name, item.Quantity, item.TotalPrice, bulk)
	}
	fmt.Printf("total: ₹%.2f\n", st.CartTotal())
}

func addProduct(ctx context.Context, client *api.Client, st *store.Store, productID string) {
	ref, err := client.FetchProduct(ctx, productID)
	if err != nil {
		log.Fatalf("fetch product failed: %v", err)
	}

	product := normalize.New(client.BaseURL()).Product(*ref)
	if _, err := st.AddToCart(ctx, product, 1); err != nil {
		log.Fatalf("add to cart failed: %v", err)
	}
}

func placeOrder(ctx context.Context, cfg *config.Config, st *store.Store, addressID string) {
	gateway := &sandbox.Gateway{Secret: cfg.RazorpayKeySecret}

	result, err := st.PlaceOrder(ctx, gateway, store.PlaceOrderOptions{AddressID: addressID})
	if err != nil {
		log.Fatalf("place order failed: %v", err)
	}

	switch result.State {
	case checkout.StateSubmitted:
		fmt.Printf("purchase order %s recorded\n", result.DisplayCode)
	default:
		fmt.Printf("order %s paid, total ₹%.2f\n", result.DisplayCode, result.Total)
	}
}
