package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/url"
	"strconv"
	"strings"
	"text/tabwriter"

	"github.com/Clark-Hu/store-rating/internal/browse"
	"github.com/Clark-Hu/store-rating/internal/client"
)

type command func(ctx context.Context, c *cli, args []string) error

var commands = map[string]command{
	"register":   runRegister,
	"login":      runLogin,
	"logout":     runLogout,
	"whoami":     runWhoami,
	"password":   runPassword,
	"stores":     runStores,
	"rate":       runRate,
	"my-ratings": runMyRatings,
	"owner":      runOwner,
	"admin":      runAdmin,
}

func (c *cli) flags(name string) *flag.FlagSet {
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	fs.SetOutput(c.out)
	return fs
}

func optional(s string) *string {
	if strings.TrimSpace(s) == "" {
		return nil
	}
	return &s
}

func runRegister(ctx context.Context, c *cli, args []string) error {
	fs := c.flags("register")
	name := fs.String("name", "", "display name")
	email := fs.String("email", "", "login email")
	password := fs.String("password", "", "password")
	address := fs.String("address", "", "postal address")
	role := fs.String("role", "", "user or store_owner")
	if err := fs.Parse(args); err != nil {
		return err
	}
	user, err := c.client.Register(ctx, client.RegisterRequest{
		Name:     *name,
		Email:    *email,
		Password: *password,
		Address:  optional(*address),
		Role:     *role,
	})
	if err != nil {
		return err
	}
	fmt.Fprintf(c.out, "registered %s as %s\n", user.Email, user.Role)
	return nil
}

func runLogin(ctx context.Context, c *cli, args []string) error {
	fs := c.flags("login")
	email := fs.String("email", "", "login email")
	password := fs.String("password", "", "password")
	if err := fs.Parse(args); err != nil {
		return err
	}
	user, err := c.client.Login(ctx, *email, *password)
	if err != nil {
		return err
	}
	fmt.Fprintf(c.out, "signed in as %s (%s), session valid until %s\n",
		user.Email, user.Role, c.client.Session().ExpiresAt().Local().Format("2006-01-02 15:04"))
	return nil
}

func runLogout(_ context.Context, c *cli, _ []string) error {
	if err := c.client.Logout(); err != nil {
		return err
	}
	fmt.Fprintln(c.out, "signed out")
	return nil
}

func runWhoami(ctx context.Context, c *cli, _ []string) error {
	if _, ok := c.client.Session().Identity(); !ok {
		return errors.New("not signed in")
	}
	user, err := c.client.Profile(ctx)
	if err != nil {
		return err
	}
	w := tabwriter.NewWriter(c.out, 0, 4, 2, ' ', 0)
	fmt.Fprintf(w, "id\t%s\n", user.ID)
	fmt.Fprintf(w, "name\t%s\n", user.Name)
	fmt.Fprintf(w, "email\t%s\n", user.Email)
	fmt.Fprintf(w, "role\t%s\n", user.Role)
	fmt.Fprintf(w, "address\t%s\n", orDash(user.Address))
	return w.Flush()
}

func runPassword(ctx context.Context, c *cli, args []string) error {
	fs := c.flags("password")
	current := fs.String("current", "", "current password")
	next := fs.String("new", "", "new password")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if err := c.client.UpdatePassword(ctx, *current, *next); err != nil {
		return err
	}
	fmt.Fprintln(c.out, "password updated")
	return nil
}

// storeQueryFlags registers the browse flags and returns a func that reads
// them as URL values once the set is parsed.
func storeQueryFlags(fs *flag.FlagSet) func() url.Values {
	keys := []struct{ name, usage string }{
		{"search", "match name, owner, address or category"},
		{"category", "category contains"},
		{"name", "name contains"},
		{"email", "owner email contains"},
		{"address", "address contains"},
		{"status", "all, active or inactive"},
		{"sort", "name, rating or category"},
	}
	vals := make(map[string]*string, len(keys))
	for _, k := range keys {
		vals[k.name] = fs.String(k.name, "", k.usage)
	}
	return func() url.Values {
		v := url.Values{}
		for name, p := range vals {
			if *p != "" {
				v.Set(name, *p)
			}
		}
		return v
	}
}

func runStores(ctx context.Context, c *cli, args []string) error {
	fs := c.flags("stores")
	values := storeQueryFlags(fs)
	if err := fs.Parse(args); err != nil {
		return err
	}
	q, err := browse.StoreQueryFromValues(values())
	if err != nil {
		return err
	}
	stores, err := c.client.Stores(ctx)
	if err != nil {
		return err
	}
	return c.printStores(browse.Stores(stores, q, client.Store.Fields))
}

func runRate(ctx context.Context, c *cli, args []string) error {
	fs := c.flags("rate")
	storeID := fs.String("store", "", "store id")
	score := fs.Int("score", 0, "rating from 1 to 5")
	comment := fs.String("comment", "", "optional comment")
	if err := fs.Parse(args); err != nil {
		return err
	}
	rating, created, err := c.client.Rate(ctx, *storeID, *score, *comment)
	if err != nil {
		return err
	}
	if created {
		fmt.Fprintf(c.out, "rated store %s with %d\n", rating.StoreID, rating.Rating)
	} else {
		fmt.Fprintf(c.out, "updated rating for store %s to %d\n", rating.StoreID, rating.Rating)
	}
	return nil
}

func runMyRatings(ctx context.Context, c *cli, _ []string) error {
	ratings, err := c.client.MyRatings(ctx)
	if err != nil {
		return err
	}
	w := tabwriter.NewWriter(c.out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "STORE\tRATING\tCOMMENT\tUPDATED")
	for _, r := range ratings {
		store := r.StoreID
		if r.Store != nil {
			store = r.Store.Name
		}
		fmt.Fprintf(w, "%s\t%d\t%s\t%s\n", store, r.Rating, orDash(r.Comment), r.UpdatedAt.Local().Format("2006-01-02"))
	}
	return w.Flush()
}

func runOwner(ctx context.Context, c *cli, args []string) error {
	if len(args) == 0 {
		return errors.New("owner: expected dashboard, create-store, update-store or analytics")
	}
	switch args[0] {
	case "dashboard":
		dash, err := c.client.OwnerDashboard(ctx)
		if err != nil {
			return err
		}
		if !dash.HasStore || dash.Store == nil || dash.Statistics == nil {
			fmt.Fprintln(c.out, dash.Message)
			return nil
		}
		fmt.Fprintf(c.out, "%s: %.2f average from %d ratings\n", dash.Store.Name, dash.Statistics.AverageRating, dash.Statistics.TotalRatings)
		for score := 5; score >= 1; score-- {
			fmt.Fprintf(c.out, "  %d stars: %d\n", score, dash.Statistics.RatingDistribution[strconv.Itoa(score)])
		}
		return c.printRaters(dash.UserRatings)
	case "create-store", "update-store":
		fs := c.flags("owner " + args[0])
		in := storeRequestFlags(fs)
		if err := fs.Parse(args[1:]); err != nil {
			return err
		}
		call := c.client.CreateStore
		if args[0] == "update-store" {
			call = c.client.UpdateStore
		}
		store, err := call(ctx, *in)
		if err != nil {
			return err
		}
		fmt.Fprintf(c.out, "saved store %s (%s)\n", store.Name, store.ID)
		return nil
	case "analytics":
		a, err := c.client.OwnerAnalytics(ctx)
		if err != nil {
			return err
		}
		w := tabwriter.NewWriter(c.out, 0, 4, 2, ' ', 0)
		fmt.Fprintln(w, "MONTH\tAVERAGE\tRATINGS")
		for _, m := range a.MonthlyTrends {
			fmt.Fprintf(w, "%s\t%.2f\t%d\n", m.Month.Format("2006-01"), m.AverageRating, m.TotalRatings)
		}
		fmt.Fprintf(w, "total\t%.2f\t%d\n", a.AverageRating, a.TotalRatings)
		return w.Flush()
	}
	return fmt.Errorf("owner: unknown subcommand %q", args[0])
}

func storeRequestFlags(fs *flag.FlagSet) *client.StoreRequest {
	in := &client.StoreRequest{}
	fs.StringVar(&in.Name, "name", "", "store name")
	fs.StringVar(&in.Description, "description", "", "description")
	fs.StringVar(&in.Address, "address", "", "address")
	fs.StringVar(&in.Phone, "phone", "", "phone number")
	fs.StringVar(&in.Category, "category", "", "category")
	return in
}

func runAdmin(ctx context.Context, c *cli, args []string) error {
	if len(args) == 0 {
		return errors.New("admin: expected stats, users, user, create-user, stores, create-store, store-ratings or owners")
	}
	switch args[0] {
	case "stats":
		d, err := c.client.AdminDashboard(ctx)
		if err != nil {
			return err
		}
		w := tabwriter.NewWriter(c.out, 0, 4, 2, ' ', 0)
		fmt.Fprintf(w, "users\t%d\n", d.TotalUsers)
		fmt.Fprintf(w, "stores\t%d\n", d.TotalStores)
		fmt.Fprintf(w, "ratings\t%d\n", d.TotalRatings)
		for _, role := range []string{"admin", "store_owner", "user"} {
			fmt.Fprintf(w, "  %s\t%d\n", role, d.UsersByRole[role])
		}
		return w.Flush()
	case "users":
		fs := c.flags("admin users")
		search := fs.String("search", "", "match name, email, address or role")
		role := fs.String("role", "", "admin, store_owner or user")
		if err := fs.Parse(args[1:]); err != nil {
			return err
		}
		q := url.Values{}
		if *search != "" {
			q.Set("search", *search)
		}
		if *role != "" {
			q.Set("role", *role)
		}
		users, err := c.client.AdminUsers(ctx, q)
		if err != nil {
			return err
		}
		return c.printUsers(users)
	case "user":
		fs := c.flags("admin user")
		id := fs.String("id", "", "user id")
		if err := fs.Parse(args[1:]); err != nil {
			return err
		}
		d, err := c.client.AdminUser(ctx, *id)
		if err != nil {
			return err
		}
		if err := c.printUsers([]client.User{d.User}); err != nil {
			return err
		}
		if d.OwnedStore != nil {
			return c.printStores([]client.Store{*d.OwnedStore})
		}
		return nil
	case "create-user":
		fs := c.flags("admin create-user")
		in := client.RegisterRequest{}
		address := fs.String("address", "", "postal address")
		fs.StringVar(&in.Name, "name", "", "display name")
		fs.StringVar(&in.Email, "email", "", "login email")
		fs.StringVar(&in.Password, "password", "", "password")
		fs.StringVar(&in.Role, "role", "user", "admin, store_owner or user")
		if err := fs.Parse(args[1:]); err != nil {
			return err
		}
		in.Address = optional(*address)
		user, err := c.client.AdminCreateUser(ctx, in)
		if err != nil {
			return err
		}
		fmt.Fprintf(c.out, "created %s as %s (%s)\n", user.Email, user.Role, user.ID)
		return nil
	case "stores":
		fs := c.flags("admin stores")
		values := storeQueryFlags(fs)
		if err := fs.Parse(args[1:]); err != nil {
			return err
		}
		stores, err := c.client.AdminStores(ctx, values())
		if err != nil {
			return err
		}
		return c.printStores(stores)
	case "create-store":
		fs := c.flags("admin create-store")
		in := storeRequestFlags(fs)
		fs.StringVar(&in.OwnerID, "owner", "", "owner user id")
		if err := fs.Parse(args[1:]); err != nil {
			return err
		}
		store, err := c.client.AdminCreateStore(ctx, *in)
		if err != nil {
			return err
		}
		fmt.Fprintf(c.out, "created store %s (%s)\n", store.Name, store.ID)
		return nil
	case "store-ratings":
		fs := c.flags("admin store-ratings")
		id := fs.String("store", "", "store id")
		if err := fs.Parse(args[1:]); err != nil {
			return err
		}
		ratings, err := c.client.AdminStoreRatings(ctx, *id)
		if err != nil {
			return err
		}
		return c.printRaters(ratings)
	case "owners":
		owners, err := c.client.AdminStoreOwners(ctx)
		if err != nil {
			return err
		}
		return c.printUsers(owners)
	}
	return fmt.Errorf("admin: unknown subcommand %q", args[0])
}

func (c *cli) printStores(stores []client.Store) error {
	w := tabwriter.NewWriter(c.out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tNAME\tCATEGORY\tADDRESS\tOWNER\tRATING\tCOUNT\tSTATUS")
	for _, s := range stores {
		owner := "-"
		if s.Owner != nil {
			owner = s.Owner.Name
		}
		status := "active"
		if !s.IsActive {
			status = "inactive"
		}
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\t%.2f\t%d\t%s\n",
			s.ID, s.Name, orDash(s.Category), orDash(s.Address), owner, s.AverageRating, s.TotalRatings, status)
	}
	return w.Flush()
}

func (c *cli) printUsers(users []client.User) error {
	w := tabwriter.NewWriter(c.out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tNAME\tEMAIL\tROLE\tADDRESS")
	for _, u := range users {
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\n", u.ID, u.Name, u.Email, u.Role, orDash(u.Address))
	}
	return w.Flush()
}

func (c *cli) printRaters(ratings []client.Rating) error {
	w := tabwriter.NewWriter(c.out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "USER\tEMAIL\tRATING\tCOMMENT")
	for _, r := range ratings {
		name, email := r.UserID, "-"
		if r.User != nil {
			name, email = r.User.Name, r.User.Email
		}
		fmt.Fprintf(w, "%s\t%s\t%d\t%s\n", name, email, r.Rating, orDash(r.Comment))
	}
	return w.Flush()
}

func orDash(p *string) string {
	if p == nil || *p == "" {
		return "-"
	}
	return *p
}
