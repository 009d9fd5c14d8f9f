package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/drstein77/storefront/internal/app"
	"github.com/drstein77/storefront/internal/config"
	"github.com/drstein77/storefront/internal/filters"
	"github.com/drstein77/storefront/internal/logger"
	"github.com/drstein77/storefront/internal/models"
	"github.com/drstein77/storefront/internal/query"
	"github.com/drstein77/storefront/internal/storage"
	"github.com/spf13/cobra"
)

const shutdownTimeout = 5 * time.Second

func newRootCmd() *cobra.Command {
	option := config.NewOptions()

	root := &cobra.Command{
		Use:           "storefront",
		Short:         "Catalog browsing client for the dummyjson product API",
		SilenceUsage:  true,
	}
	option.RegisterFlags(root.PersistentFlags())

	root.AddCommand(newServeCmd(option))
	root.AddCommand(newBrowseCmd(option))
	return root
}

func newServeCmd(option *config.Options) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Serve a browsing session over HTTP",
		RunE: func(cmd *cobra.Command, args []string) error {
			nLogger, err := logger.NewLogger(option.LogLevel())
			if err != nil {
				return err
			}
			defer nLogger.Sync()

			// Create a root context with the possibility of cancellation
			ctx, cancel := context.WithCancel(cmd.Context())
			defer cancel()

			signalCh := make(chan os.Signal, 1)
			signal.Notify(signalCh, os.Interrupt, syscall.SIGTERM)
			defer signal.Stop(signalCh)

			server := app.NewServer(ctx, option, nLogger)
			go func() {
				select {
				case sig := <-signalCh:
					server.Log.Info(fmt.Sprintf("Received signal: %+v", sig))
					server.Shutdown(shutdownTimeout)
					cancel()
				case <-ctx.Done():
				}
			}()

			return server.Serve()
		},
	}
}

type browseFlags struct {
	search     string
	categories []string
	brands     []string
	ratings    []int
	minPrice   float64
	maxPrice   float64
	delivery   bool
	sort       string
	page       int
	facets     bool
}

// browseOutput is what browse prints.
type browseOutput struct {
	Catalog    query.State   `json:"catalog"`
	TotalPages int           `json:"totalPages"`
	Filters    filters.State `json:"filters"`
}

func newBrowseCmd(option *config.Options) *cobra.Command {
	var f browseFlags

	cmd := &cobra.Command{
		Use:   "browse",
		Short: "Fetch one catalog page with the given filters and print it as JSON",
		RunE: func(cmd *cobra.Command, args []string) error {
			actions, err := f.actions(cmd)
			if err != nil {
				return err
			}

			nLogger, err := logger.NewLogger(option.LogLevel())
			if err != nil {
				return err
			}
			defer nLogger.Sync()

			store, release := app.NewSession(cmd.Context(), option, nLogger)
			defer release()

			for _, a := range actions {
				store.Dispatch(a)
			}
			if f.facets {
				store.Dispatch(storage.LoadFacets{})
			}
			store.Dispatch(storage.Refresh{})
			store.Wait()

			st := store.Snapshot()
			out := browseOutput{Catalog: st.Catalog, TotalPages: query.TotalPages(st.Catalog), Filters: st.Filters}
			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			if err := enc.Encode(out); err != nil {
				return err
			}
			if st.Catalog.Status == models.StatusFailed {
				return fmt.Errorf("catalog query failed: %s", st.Catalog.Error)
			}
			return nil
		},
	}

	fs := cmd.Flags()
	fs.StringVar(&f.search, "search", "", "free-text search")
	fs.StringSliceVar(&f.categories, "category", nil, "category slug, repeatable")
	fs.StringSliceVar(&f.brands, "brand", nil, "brand name, repeatable")
	fs.IntSliceVar(&f.ratings, "rating", nil, "rating floor 1-5, repeatable")
	fs.Float64Var(&f.minPrice, "min-price", 0, "lowest price, inclusive")
	fs.Float64Var(&f.maxPrice, "max-price", 0, "highest price, inclusive")
	fs.BoolVar(&f.delivery, "next-day-delivery", false, "only next-day delivery")
	fs.StringVar(&f.sort, "sort", string(models.SortRelevance), "relevance, price-low, price-high, rating or newest")
	fs.IntVar(&f.page, "page", 1, "page number, starting at 1")
	fs.BoolVar(&f.facets, "facets", false, "also load the category and brand catalogs")
	return cmd
}

// actions turns the flags into store actions. Filters come first because
// they reset the page.
func (f browseFlags) actions(cmd *cobra.Command) ([]storage.Action, error) {
	var out []storage.Action
	if f.search != "" {
		out = append(out, storage.SetSearch{Text: f.search})
	}
	for _, c := range f.categories {
		out = append(out, storage.ToggleCategory{Category: c})
	}
	for _, b := range f.brands {
		out = append(out, storage.ToggleBrand{Brand: b})
	}
	for _, r := range f.ratings {
		if r < 0 || r > filters.MaxRating {
			return nil, fmt.Errorf("rating must be between 0 and %d, got %d", filters.MaxRating, r)
		}
		out = append(out, storage.ToggleRating{Rating: r})
	}
	if cmd.Flags().Changed("min-price") || cmd.Flags().Changed("max-price") {
		hi := f.maxPrice
		if !cmd.Flags().Changed("max-price") {
			hi = filters.DefaultPriceBounds.Max
		}
		if f.minPrice < 0 || hi < 0 {
			return nil, fmt.Errorf("prices cannot be negative")
		}
		out = append(out, storage.SetPriceRange{Min: f.minPrice, Max: hi})
	}
	if f.delivery {
		out = append(out, storage.ToggleNextDayDelivery{})
	}

	key, err := models.ParseSortKey(f.sort)
	if err != nil {
		return nil, err
	}
	out = append(out, storage.SetSort{Sort: key})

	if f.page < 1 {
		return nil, fmt.Errorf("page must be at least 1, got %d", f.page)
	}
	out = append(out, storage.SetPage{Page: f.page})
	return out, nil
}
