package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/pocketbase/pocketbase"
	"github.com/pocketbase/pocketbase/core"
	"github.com/pocketbase/pocketbase/plugins/migratecmd"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	pubnub "github.com/pubnub/go"

	"ticket-marketplace/config"
	"ticket-marketplace/handlers"
	_ "ticket-marketplace/migrations"
	"ticket-marketplace/monitoring"
	"ticket-marketplace/security"
	"ticket-marketplace/services"
	"ticket-marketplace/store"
	"ticket-marketplace/utils"
)

func main() {
	app := pocketbase.New()

	// Load configuration
	cfg := config.LoadConfig()

	// Initialize Redis
	redisClient := utils.NewRedisClient(cfg.RedisURL)
	defer redisClient.Close()

	// Initialize PubNub
	pnConfig := pubnub.NewConfig()
	pnConfig.PublishKey = cfg.PubNubPublishKey
	pnConfig.SubscribeKey = cfg.PubNubSubscribeKey
	pnConfig.SecretKey = cfg.PubNubSecretKey

	pn := pubnub.NewPubNub(pnConfig)

	// Initialize services
	monitor := monitoring.NewMonitor()
	ticketStore := store.NewPocketBase(app)
	listingCache := services.NewListingCache(redisClient, cfg.ListingCacheTTL)
	marketplaceService := services.NewMarketplaceService(ticketStore, pn, monitor, listingCache)
	ticketViews := services.NewTicketViews(ticketStore, listingCache, monitor)
	issueService := services.NewIssueService(ticketStore, monitor)
	purchaseLimiter := security.NewRateLimiter(redisClient, cfg.PurchaseRateLimit, cfg.PurchaseRateInterval)

	// Initialize handlers
	marketplaceHandler := handlers.NewMarketplaceHandler(ticketStore, marketplaceService, purchaseLimiter)
	ticketHandler := handlers.NewTicketHandler(ticketStore, ticketViews, issueService)

	// Enable migrations
	migratecmd.MustRegister(app, app.RootCmd, migratecmd.Config{
		Automigrate: true,
	})

	// Create context for background tasks
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Start background tasks
	go refreshListedGauge(ctx, ticketViews, monitor, cfg.ListedGaugeInterval)
	if cfg.EnableMetrics {
		go serveMetrics(cfg.MetricsPort)
	}

	// Setup graceful shutdown
	go handleShutdown(cancel)

	// Register routes
	app.OnServe().BindFunc(func(e *core.ServeEvent) error {
		// Marketplace endpoints
		e.Router.POST("/api/marketplace/tickets/{ticketId}/list", marketplaceHandler.ListForSale)
		e.Router.POST("/api/marketplace/tickets/{ticketId}/cancel", marketplaceHandler.CancelListing)
		e.Router.POST("/api/marketplace/tickets/{ticketId}/purchase", marketplaceHandler.Purchase)
		e.Router.GET("/api/marketplace/listings", ticketHandler.AllListings)
		e.Router.GET("/api/marketplace/events/{eventId}/listings", ticketHandler.EventListings)

		// Ticket endpoints
		e.Router.POST("/api/tickets", ticketHandler.IssueTicket)
		e.Router.GET("/api/tickets", ticketHandler.MyTickets)
		e.Router.GET("/api/tickets/active", ticketHandler.ActiveTickets)
		e.Router.GET("/api/tickets/expired", ticketHandler.ExpiredTickets)
		e.Router.GET("/api/tickets/listings", ticketHandler.MyListings)
		e.Router.GET("/api/tickets/{ticketId}", ticketHandler.GetTicket)
		e.Router.DELETE("/api/tickets/{ticketId}", ticketHandler.RetireTicket)

		// Health check
		e.Router.GET("/health", func(e *core.RequestEvent) error {
			if err := utils.RedisHealthCheck(redisClient); err != nil {
				return e.JSON(503, map[string]string{
					"status": "unhealthy",
					"error":  err.Error(),
				})
			}
			return e.JSON(200, map[string]string{"status": "healthy"})
		})

		log.Println("Server routes registered")

		return e.Next()
	})

	// Start server
	if err := app.Start(); err != nil {
		log.Fatal(err)
	}
}

// refreshListedGauge keeps the listed-tickets gauge in step with the
// marketplace.
func refreshListedGauge(ctx context.Context, views *services.TicketViews, monitor *monitoring.Monitor, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			listings, err := views.AllListedTickets(ctx)
			if err != nil {
				log.Printf("Error refreshing listed gauge: %v", err)
				continue
			}
			monitor.SetListedTickets(len(listings))
		}
	}
}

// serveMetrics exposes prometheus metrics on a separate listener.
func serveMetrics(port string) {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())

	log.Printf("Metrics listening on :%s", port)
	if err := http.ListenAndServe(":"+port, mux); err != nil {
		log.Printf("Metrics server stopped: %v", err)
	}
}

// handleShutdown handles graceful shutdown
func handleShutdown(cancel context.CancelFunc) {
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	<-sigChan
	log.Println("Shutdown signal received, cleaning up...")
	cancel()
}
