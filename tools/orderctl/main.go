package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"log"
	"mime"
	"os"
	"path/filepath"
	"text/tabwriter"
	"time"

	"github.com/maxwellzeha/jonduplastics/catalog"
	"github.com/maxwellzeha/jonduplastics/client"
	"github.com/maxwellzeha/jonduplastics/configurator"
	"github.com/maxwellzeha/jonduplastics/dashboard"
	"github.com/maxwellzeha/jonduplastics/models"
	"github.com/maxwellzeha/jonduplastics/navigation"
	"github.com/maxwellzeha/jonduplastics/pricing"
	"github.com/maxwellzeha/jonduplastics/session"
	"go.uber.org/zap"
)

const usage = `usage: orderctl [-api URL] [-email E] [-password P] [-v] <command> [flags]

commands:
  products                 list the catalogue
  quote    [draft flags]   price a draft
  signup   -first -last -phone -address
  login                    sign in with -email/-password
  order    [draft flags] [-artwork FILE] [-product ID]
  orders   [-tab All|Pending|Completed|Cancelled]
  recent                   list recent designs
  whoami                   show the signed-in identity
  logout
`

// app bundles the SDK pieces one invocation needs.
type app struct {
	api    *client.Client
	store  *session.Store
	router *navigation.Router
	logger *zap.Logger
	out    io.Writer
	tokens string
}

func main() {
	var apiURL, email, password string
	var verbose bool
	flag.StringVar(&apiURL, "api", envOr("JONDU_API_URL", "http://localhost:8080"), "API base URL")
	flag.StringVar(&email, "email", os.Getenv("JONDU_EMAIL"), "account email")
	flag.StringVar(&password, "password", os.Getenv("JONDU_PASSWORD"), "account password")
	flag.BoolVar(&verbose, "v", false, "log API calls")
	flag.Usage = func() { fmt.Fprint(os.Stderr, usage) }
	flag.Parse()

	if flag.NArg() == 0 {
		flag.Usage()
		os.Exit(2)
	}

	logger := zap.NewNop()
	if verbose {
		l, err := zap.NewDevelopment()
		if err != nil {
			log.Fatalf("logger: %v", err)
		}
		logger = l
	}
	defer logger.Sync()

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	a, err := newApp(ctx, apiURL, logger)
	if err != nil {
		log.Fatalf("orderctl: %v", err)
	}
	defer a.store.Close()

	cmd, args := flag.Arg(0), flag.Args()[1:]
	if err := a.run(ctx, cmd, args, email, password); err != nil {
		var apiErr *client.APIError
		if errors.As(err, &apiErr) && apiErr.SetupSQL != "" {
			fmt.Fprintln(os.Stderr, "The backend is not set up. Run this SQL against the database:")
			fmt.Fprintln(os.Stderr, apiErr.SetupSQL)
		}
		log.Fatalf("orderctl %s: %v", cmd, err)
	}
}

func newApp(ctx context.Context, apiURL string, logger *zap.Logger) (*app, error) {
	tokenFile, err := tokenPath()
	if err != nil {
		return nil, err
	}
	saved, err := loadTokens(tokenFile)
	if err != nil {
		return nil, err
	}

	api := client.New(apiURL, client.WithLogger(logger), client.WithTokens(saved))
	store := session.NewStore(api, api, logger)
	a := &app{
		api:    api,
		store:  store,
		router: navigation.NewRouter(navigation.Home),
		logger: logger,
		out:    os.Stdout,
		tokens: tokenFile,
	}
	if err := store.Start(ctx); err != nil {
		logger.Warn("Could not restore session", zap.Error(err))
	}
	if store.Snapshot().SetupError {
		script, err := api.SetupSQL(ctx)
		if err != nil {
			return nil, fmt.Errorf("backend not provisioned: %w", err)
		}
		return nil, fmt.Errorf("backend not provisioned; run this SQL:\n%s", script)
	}
	return a, nil
}

func (a *app) run(ctx context.Context, cmd string, args []string, email, password string) error {
	switch cmd {
	case "products":
		return a.products(ctx)
	case "quote":
		return a.quote(ctx, args)
	case "signup":
		return a.signup(ctx, args, email, password)
	case "login":
		return a.login(ctx, email, password)
	case "order":
		return a.order(ctx, args)
	case "orders":
		return a.orders(ctx, args)
	case "recent":
		return a.recent(ctx)
	case "whoami":
		return a.whoami()
	case "logout":
		return a.logout(ctx)
	}
	return fmt.Errorf("unknown command %q", cmd)
}

func (a *app) products(ctx context.Context) error {
	products, err := a.api.Products(ctx)
	if err != nil {
		return err
	}
	w := tabwriter.NewWriter(a.out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tNAME\tCATEGORY\tBAG TYPE\tPRICE")
	for _, p := range products {
		fmt.Fprintf(w, "%d\t%s\t%s\t%s\t$%.2f\n", p.ID, p.Name, p.Category, p.BagType, p.Price)
	}
	return w.Flush()
}

// draftFlags holds the configurator inputs shared by quote and order.
type draftFlags struct {
	bagType, material, color, handle, address string
	width, height, quantity                   int
	artwork                                   string
	product                                   int
}

func newDraftFlags(fs *flag.FlagSet) *draftFlags {
	def := catalog.DraftDefaults()
	f := &draftFlags{}
	fs.StringVar(&f.bagType, "bag", def.BagType, "bag type")
	fs.StringVar(&f.material, "material", string(def.Material), "material (HDPE, LDPE, PP, Biodegradable)")
	fs.StringVar(&f.color, "color", def.Color, "bag color as #RRGGBB")
	fs.StringVar(&f.handle, "handle", def.HandleType, "handle type")
	fs.StringVar(&f.address, "address", "", "delivery address (defaults to the business address)")
	fs.IntVar(&f.width, "width", def.Width, "width in inches")
	fs.IntVar(&f.height, "height", def.Height, "height in inches")
	fs.IntVar(&f.quantity, "quantity", def.Quantity, "number of bags")
	fs.StringVar(&f.artwork, "artwork", "", "artwork file to print")
	fs.IntVar(&f.product, "product", 0, "catalogue product to start from")
	return f
}

func (f *draftFlags) apply(ctx context.Context, api *client.Client, cfg *configurator.Configurator, fs *flag.FlagSet) error {
	if f.product != 0 {
		p, err := api.Product(ctx, f.product)
		if err != nil {
			return fmt.Errorf("product %d: %w", f.product, err)
		}
		cfg.FromProduct(p.Category)
	}
	set := map[string]bool{}
	fs.Visit(func(fl *flag.Flag) { set[fl.Name] = true })

	cfg.Update(func(d *configurator.Draft) {
		if set["bag"] || f.product == 0 {
			d.BagType = f.bagType
		}
		d.Material = pricing.Material(f.material)
		d.Width, d.Height = f.width, f.height
		d.Color = f.color
		d.HandleType = f.handle
		d.Quantity = f.quantity
		if f.address != "" {
			d.BusinessAddress = f.address
		}
	})
	return nil
}

func (a *app) quote(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("quote", flag.ContinueOnError)
	df := newDraftFlags(fs)
	if err := fs.Parse(args); err != nil {
		return err
	}
	cfg := configurator.New(a.api, a.store, a.router, a.logger)
	defer cfg.Close()
	if err := df.apply(ctx, a.api, cfg, fs); err != nil {
		return err
	}
	if df.artwork != "" {
		cfg.SetArtwork(&configurator.Artwork{Name: filepath.Base(df.artwork)})
	}
	if cfg.Draft().Quantity != df.quantity {
		fmt.Fprintf(a.out, "quantity raised to the minimum order of %d\n", catalog.MinOrderQuantity)
	}

	q := cfg.Price()
	if q.UnknownMaterial {
		fmt.Fprintf(a.out, "warning: unknown material %q is priced at 0\n", df.material)
	}
	fmt.Fprintf(a.out, "material  $%.4f\ndimension $%.4f\nartwork   $%.4f\nunit      $%.4f\nquantity  %d\ntotal     $%.2f\n",
		q.MaterialCost, q.DimensionCost, q.ArtworkCost, q.UnitPrice, q.Quantity, q.Total)
	return nil
}

func (a *app) signup(ctx context.Context, args []string, email, password string) error {
	fs := flag.NewFlagSet("signup", flag.ContinueOnError)
	first := fs.String("first", "", "first name")
	last := fs.String("last", "", "last name")
	phone := fs.String("phone", "", "phone number")
	address := fs.String("address", "", "business address")
	if err := fs.Parse(args); err != nil {
		return err
	}
	resp, err := a.api.Signup(ctx, models.SignupRequest{
		FirstName:       *first,
		LastName:        *last,
		Phone:           *phone,
		BusinessAddress: *address,
		Email:           email,
		Password:        password,
	})
	if err != nil {
		return err
	}
	a.router.Navigate(navigation.Confirmation)
	fmt.Fprintf(a.out, "%s\n(%s)\n", resp.Message, resp.Email)
	return nil
}

func (a *app) login(ctx context.Context, email, password string) error {
	if email == "" || password == "" {
		return errors.New("-email and -password are required")
	}
	if _, err := a.api.Login(ctx, email, password); err != nil {
		return err
	}
	if err := saveTokens(a.tokens, a.api.Tokens()); err != nil {
		return err
	}
	snap := a.store.Snapshot()
	if snap.Identity != nil {
		fmt.Fprintf(a.out, "signed in as %s %s <%s>\n", snap.Identity.FirstName, snap.Identity.LastName, snap.Identity.Email)
	}
	a.router.Navigate(navigation.ResumeTarget(a.router.Current()))
	return nil
}

func (a *app) order(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("order", flag.ContinueOnError)
	df := newDraftFlags(fs)
	if err := fs.Parse(args); err != nil {
		return err
	}

	if d := navigation.Guard(a.store.Snapshot(), navigation.CustomOrder); d.Redirect != "" {
		return fmt.Errorf("sign in first (%s)", d.Redirect)
	}

	cfg := configurator.New(a.api, a.store, a.router, a.logger)
	defer cfg.Close()
	if err := df.apply(ctx, a.api, cfg, fs); err != nil {
		return err
	}

	if df.artwork != "" {
		f, err := os.Open(df.artwork)
		if err != nil {
			return err
		}
		defer f.Close()
		info, err := f.Stat()
		if err != nil {
			return err
		}
		cfg.SetArtwork(&configurator.Artwork{
			Name:        filepath.Base(df.artwork),
			ContentType: mime.TypeByExtension(filepath.Ext(df.artwork)),
			Size:        info.Size(),
			Body:        f,
		})
	}

	arrived := make(chan struct{}, 1)
	unsubscribe := a.router.OnEnter(navigation.Dashboard, func(string) {
		select {
		case arrived <- struct{}{}:
		default:
		}
	})
	defer unsubscribe()

	fmt.Fprintf(a.out, "placing order for $%.2f\n", cfg.Price().Total)
	placed, err := cfg.Submit(ctx)
	if err != nil {
		return err
	}
	fmt.Fprintf(a.out, "%s\norder %s is %s\n", cfg.Message(), placed.ID, placed.Status)

	select {
	case <-arrived:
		return a.orders(ctx, nil)
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (a *app) dashboard(ctx context.Context) (*dashboard.Dashboard, error) {
	if d := navigation.Guard(a.store.Snapshot(), navigation.Dashboard); d.Redirect != "" {
		return nil, fmt.Errorf("sign in first (%s)", d.Redirect)
	}
	dash := dashboard.New(a.api, a.store, a.logger)
	if err := dash.Load(ctx); err != nil {
		return nil, err
	}
	return dash, nil
}

func (a *app) orders(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("orders", flag.ContinueOnError)
	tab := fs.String("tab", string(dashboard.TabAll), "status tab")
	if err := fs.Parse(args); err != nil {
		return err
	}
	dash, err := a.dashboard(ctx)
	if err != nil {
		return err
	}
	dash.SetTab(dashboard.ParseTab(*tab))
	return printOrders(a.out, dash.Orders())
}

func (a *app) recent(ctx context.Context) error {
	dash, err := a.dashboard(ctx)
	if err != nil {
		return err
	}
	return printOrders(a.out, dash.RecentDesigns())
}

func printOrders(out io.Writer, orders []models.Order) error {
	if len(orders) == 0 {
		fmt.Fprintln(out, "no orders")
		return nil
	}
	w := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "DATE\tSTATUS\tBAG\tMATERIAL\tSIZE\tCOLOR\tQTY\tTOTAL\tARTWORK")
	for _, o := range orders {
		artwork := "-"
		if o.ArtworkName != nil {
			artwork = *o.ArtworkName
		}
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%dx%d\t%s\t%d\t$%.2f\t%s\n",
			o.Date.Local().Format("2006-01-02 15:04"), o.Status, o.BagType, o.Material,
			o.Width, o.Height, o.Color, o.Quantity, o.TotalPrice, artwork)
	}
	return w.Flush()
}

func (a *app) whoami() error {
	snap := a.store.Snapshot()
	if snap.Identity == nil {
		fmt.Fprintln(a.out, "not signed in")
		return nil
	}
	id := snap.Identity
	fmt.Fprintf(a.out, "id:       %s\nname:     %s %s\nemail:    %s\nphone:    %s\naddress:  %s\n",
		id.ID, id.FirstName, id.LastName, id.Email, id.Phone, id.BusinessAddress)
	return nil
}

func (a *app) logout(ctx context.Context) error {
	err := a.store.SignOut(ctx)
	if rmErr := os.Remove(a.tokens); rmErr != nil && !errors.Is(rmErr, os.ErrNotExist) {
		return rmErr
	}
	a.router.Navigate(navigation.Home)
	fmt.Fprintln(a.out, "signed out")
	return err
}

func tokenPath() (string, error) {
	if p := os.Getenv("JONDU_TOKEN_FILE"); p != "" {
		return p, nil
	}
	dir, err := os.UserConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "orderctl", "tokens.json"), nil
}

func loadTokens(path string) (client.Tokens, error) {
	var t client.Tokens
	raw, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return t, nil
	}
	if err != nil {
		return t, err
	}
	if err := json.Unmarshal(raw, &t); err != nil {
		return client.Tokens{}, fmt.Errorf("read %s: %w", path, err)
	}
	return t, nil
}

func saveTokens(path string, t client.Tokens) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return err
	}
	raw, err := json.Marshal(t)
	if err != nil {
		return err
	}
	return os.WriteFile(path, raw, 0o600)
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
