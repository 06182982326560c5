package api

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/patrickmn/go-cache"
	"golang.org/x/time/rate"

	"yardgate-backend/config"
	"yardgate-backend/internal/mw"
	"yardgate-backend/internal/store"
)

// NewRouter creates and configures a new Gin router.
func NewRouter(s store.Store, cfg *config.Config) *gin.Engine {
	r := gin.Default()

	handler := NewHandler(s)

	rateLimiter := mw.RateLimiter(rate.Limit(cfg.Server.RateLimitPerSec), cfg.Server.RateLimitBurst)

	cacheTTL := time.Duration(cfg.Server.CacheTTLSeconds) * time.Second
	cacheStore := cache.New(cacheTTL, 2*cacheTTL)
	caching := mw.Cache(cacheStore, cacheTTL)

	api := r.Group("/api")
	api.Use(rateLimiter)

	// Yard views and operations (actor identity required).
	yard := api.Group("/yard")
	yard.Use(mw.Actor())
	{
		yard.GET("/containers-in-yard", handler.GetContainersInYard)
		yard.GET("/bays", handler.GetBlockBays)
		yard.GET("/map", caching, handler.GetBlockMap)
		yard.GET("/block/:block_code/availability", caching, handler.GetBlockAvailability)

		// Slot suggestions read fresh occupancy; never cached.
		yard.GET("/bays/:bay_code", handler.GetBayDetail)
		yard.GET("/bays/:bay_code/last-available", handler.GetBaySuggestion)
		yard.GET("/bays/:bay_code/rows-availability", handler.GetBayRowsAvailability)
		yard.GET("/bays/:bay_code/row/:row_number/suggest-tier", handler.GetRowSuggestTier)
		yard.GET("/bays/:bay_code/row/:row_number/containers", handler.GetRowContainers)

		yard.POST("/place", handler.PlaceContainer)
		yard.POST("/move", handler.MoveContainer)
		yard.POST("/gate-in", handler.GateIn)
		yard.POST("/gate-out", handler.GateOut)
	}

	authed := api.Group("")
	authed.Use(mw.Actor())
	{
		authed.GET("/inventory", handler.GetInventory)
		authed.GET("/reports/run", handler.RunReport)
		authed.GET("/reports/export", handler.ExportReport)
		authed.POST("/tickets/:movement_id/print", handler.PrintTicket)
		authed.POST("/tickets/reprint/:print_id", handler.ReprintTicket)
	}

	// Print queue. Enqueue is called by the application itself; claim and
	// complete belong to the gate agent and are gated on the shared key.
	api.POST("/print/jobs", handler.EnqueuePrintJob)

	agent := api.Group("/print")
	agent.Use(mw.AgentKey(cfg.Print.AgentKey))
	{
		agent.GET("/pending", handler.ClaimNextPrintJob)
		agent.POST("/jobs/:job_id/done", handler.CompletePrintJob)
	}

	return r
}
