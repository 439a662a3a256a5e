package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strconv"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/gamevault/storefront-backend/pkg/client"
	"github.com/gamevault/storefront-backend/pkg/logger"
	"github.com/google/uuid"
	"github.com/joho/godotenv"
)

const usage = `usage: shop [-api URL] [-state DIR] <command> [args]

commands:
  register <name> <email> <password>
  login <email> <password>
  logout
  products [-keyword K] [-category C] [-brand B] [-min P] [-max P] [-page N]
  product <id>
  add <productId> [quantity]
  update <productId> <quantity>
  remove <productId>
  cart
  review <productId> <rating> <comment>
  checkout -address A -city C -postal P -country C [-payment M]
  orders
  order <id>
  pay <orderId>
`

func main() {
	_ = godotenv.Load()

	api := flag.String("api", envOr("SHOP_API_URL", "http://localhost:5000"), "storefront API base URL")
	state := flag.String("state", envOr("SHOP_STATE_DIR", defaultStateDir()), "directory holding cart.json and session.json")
	flag.Usage = func() { fmt.Fprint(os.Stderr, usage) }
	flag.Parse()

	logger.Initialize(logger.Config{Level: "warn", Format: "console", EnableColor: true})

	if flag.NArg() == 0 {
		flag.Usage()
		os.Exit(2)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if err := os.MkdirAll(*state, 0o700); err != nil {
		fail(err)
	}
	c, err := client.NewClient(ctx, client.Config{BaseURL: *api, StateDir: *state, Timeout: 15 * time.Second})
	if err != nil {
		fail(err)
	}

	if err := run(ctx, c, flag.Arg(0), flag.Args()[1:]); err != nil {
		fail(err)
	}
}

func run(ctx context.Context, c *client.Client, cmd string, args []string) error {
	switch cmd {
	case "register":
		if len(args) != 3 {
			return errors.New("usage: register <name> <email> <password>")
		}
		s, err := c.Register(ctx, args[0], args[1], args[2])
		if err != nil {
			return err
		}
		fmt.Printf("Welcome, %s\n", s.Name)
	case "login":
		if len(args) != 2 {
			return errors.New("usage: login <email> <password>")
		}
		s, err := c.Login(ctx, args[0], args[1])
		if err != nil {
			return err
		}
		fmt.Printf("Signed in as %s\n", s.Email)
	case "logout":
		if err := c.Logout(ctx); err != nil {
			return err
		}
		fmt.Println("Signed out")
	case "products":
		return listProducts(ctx, c, args)
	case "product":
		id, err := parseID(args, "usage: product <id>")
		if err != nil {
			return err
		}
		p, err := c.GetProduct(ctx, id)
		if err != nil {
			return err
		}
		fmt.Printf("%s (%s, %s)\n$%.2f  rating %.1f from %d reviews  stock %d\n%s\n",
			p.Title, p.Brand, p.Category, p.Price, p.Rating, p.NumReviews, p.Stock, p.Description)
		for _, r := range p.Reviews {
			fmt.Printf("  %d/5 %s: %s\n", r.Rating, r.Name, r.Comment)
		}
	case "add":
		if len(args) < 1 || len(args) > 2 {
			return errors.New("usage: add <productId> [quantity]")
		}
		id, err := parseID(args[:1], "")
		if err != nil {
			return err
		}
		qty := 1
		if len(args) == 2 {
			if qty, err = strconv.Atoi(args[1]); err != nil {
				return fmt.Errorf("invalid quantity %q", args[1])
			}
		}
		if err := c.AddToCart(ctx, id, qty); err != nil {
			return err
		}
		return printCart(c)
	case "update":
		if len(args) != 2 {
			return errors.New("usage: update <productId> <quantity>")
		}
		id, err := parseID(args[:1], "")
		if err != nil {
			return err
		}
		qty, err := strconv.Atoi(args[1])
		if err != nil {
			return fmt.Errorf("invalid quantity %q", args[1])
		}
		if err := c.Cart().UpdateQuantity(ctx, id, qty); err != nil {
			return err
		}
		return printCart(c)
	case "remove":
		id, err := parseID(args, "usage: remove <productId>")
		if err != nil {
			return err
		}
		if err := c.Cart().RemoveFromCart(ctx, id); err != nil {
			return err
		}
		return printCart(c)
	case "cart":
		return printCart(c)
	case "review":
		if len(args) < 3 {
			return errors.New("usage: review <productId> <rating> <comment>")
		}
		id, err := parseID(args[:1], "")
		if err != nil {
			return err
		}
		rating, err := strconv.Atoi(args[1])
		if err != nil {
			return fmt.Errorf("invalid rating %q", args[1])
		}
		if err := c.AddReview(ctx, id, rating, strings.Join(args[2:], " ")); err != nil {
			return err
		}
		fmt.Println("Review added")
	case "checkout":
		return checkout(ctx, c, args)
	case "orders":
		orders, err := c.MyOrders(ctx)
		if err != nil {
			return err
		}
		w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
		fmt.Fprintln(w, "ID\tDATE\tTOTAL\tPAID\tDELIVERED")
		for _, o := range orders {
			fmt.Fprintf(w, "%d\t%s\t%.2f\t%t\t%t\n", o.ID, o.CreatedAt.Format("2006-01-02"), o.TotalPrice, o.IsPaid, o.IsDelivered)
		}
		return w.Flush()
	case "order":
		id, err := parseID(args, "usage: order <id>")
		if err != nil {
			return err
		}
		o, err := c.GetOrder(ctx, id)
		if err != nil {
			return err
		}
		fmt.Printf("Order %d  total $%.2f  paid %t  delivered %t\n", o.ID, o.TotalPrice, o.IsPaid, o.IsDelivered)
		for _, item := range o.OrderItems {
			fmt.Printf("  %d x %s @ $%.2f\n", item.Quantity, item.Title, item.Price)
		}
	case "pay":
		id, err := parseID(args, "usage: pay <orderId>")
		if err != nil {
			return err
		}
		email := ""
		if s := c.Session(); s != nil {
			email = s.Email
		}
		o, err := c.PayOrder(ctx, id, client.PaymentResultFor(uuid.NewString(), email))
		if err != nil {
			return err
		}
		fmt.Printf("Order %d paid\n", o.ID)
	default:
		return fmt.Errorf("unknown command %q\n\n%s", cmd, usage)
	}
	return nil
}

func listProducts(ctx context.Context, c *client.Client, args []string) error {
	fs := flag.NewFlagSet("products", flag.ContinueOnError)
	keyword := fs.String("keyword", "", "title search")
	category := fs.String("category", "", "exact category")
	brand := fs.String("brand", "", "exact brand")
	minPrice := fs.Float64("min", -1, "minimum price")
	maxPrice := fs.Float64("max", -1, "maximum price")
	page := fs.Int("page", 1, "page number")
	if err := fs.Parse(args); err != nil {
		return err
	}

	q := client.ProductQuery{Keyword: *keyword, Category: *category, Brand: *brand, Page: *page}
	if *minPrice >= 0 {
		q.MinPrice = minPrice
	}
	if *maxPrice >= 0 {
		q.MaxPrice = maxPrice
	}

	result, err := c.ListProducts(ctx, q)
	if err != nil {
		return err
	}
	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tTITLE\tBRAND\tPRICE\tRATING\tSTOCK")
	for _, p := range result.Products {
		fmt.Fprintf(w, "%d\t%s\t%s\t%.2f\t%.1f\t%d\n", p.ID, p.Title, p.Brand, p.Price, p.Rating, p.Stock)
	}
	if err := w.Flush(); err != nil {
		return err
	}
	fmt.Printf("page %d of %d (%d products)\n", result.Page, result.Pages, result.Total)
	return nil
}

func checkout(ctx context.Context, c *client.Client, args []string) error {
	fs := flag.NewFlagSet("checkout", flag.ContinueOnError)
	var form client.CheckoutForm
	fs.StringVar(&form.Address, "address", "", "street address")
	fs.StringVar(&form.City, "city", "", "city")
	fs.StringVar(&form.PostalCode, "postal", "", "postal code")
	fs.StringVar(&form.Country, "country", "", "one of: "+strings.Join(client.Countries, ", "))
	fs.StringVar(&form.PaymentMethod, "payment", "PayPal", "Credit Card or PayPal")
	if err := fs.Parse(args); err != nil {
		return err
	}

	order, err := c.Checkout(ctx, form)
	if err != nil {
		return err
	}
	fmt.Printf("Order %d placed, total $%.2f. Pay with: shop pay %d\n", order.ID, order.TotalPrice, order.ID)
	return nil
}

func printCart(c *client.Client) error {
	ledger := c.Cart()
	if ledger.IsEmpty() {
		fmt.Println("Your cart is empty")
		return nil
	}
	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tTITLE\tQTY\tPRICE")
	for _, item := range ledger.Items() {
		fmt.Fprintf(w, "%d\t%s\t%d\t%.2f\n", item.ProductID, item.Title, item.Quantity, item.Price)
	}
	if err := w.Flush(); err != nil {
		return err
	}
	fmt.Printf("%d items, total $%s\n", ledger.ItemCount(), ledger.Total().StringFixed(2))
	return nil
}

func parseID(args []string, usage string) (uint, error) {
	if len(args) != 1 {
		return 0, errors.New(usage)
	}
	id, err := strconv.ParseUint(args[0], 10, 32)
	if err != nil || id == 0 {
		return 0, fmt.Errorf("invalid id %q", args[0])
	}
	return uint(id), nil
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func defaultStateDir() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		return ".shop"
	}
	return filepath.Join(dir, "gamevault-shop")
}

func fail(err error) {
	var formErr *client.FormError
	switch {
	case errors.Is(err, client.ErrSessionExpired):
		fmt.Fprintln(os.Stderr, err.Error())
	case errors.As(err, &formErr):
		for field, msg := range formErr.Fields {
			fmt.Fprintf(os.Stderr, "%s %s\n", field, msg)
		}
	default:
		fmt.Fprintln(os.Stderr, "error:", err)
	}
	os.Exit(1)
}
