package main

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	"github.com/BruksfildServices01/hms-scheduler/internal/cache"
	"github.com/BruksfildServices01/hms-scheduler/internal/config"
	dbpkg "github.com/BruksfildServices01/hms-scheduler/internal/db"
	"github.com/BruksfildServices01/hms-scheduler/internal/middleware"
	"github.com/BruksfildServices01/hms-scheduler/internal/observability"
	"github.com/BruksfildServices01/hms-scheduler/internal/routes"
)

func main() {

	cfg := config.Load()
	observability.InitLogger("hms-scheduler", cfg.Env)

	db := dbpkg.NewDB(cfg)

	// Redis only caches calendar credentials: the scheduler stays up
	// without it, calendar sync just hits the database every time.
	rdb, err := cache.NewRedisClient(cfg.RedisAddr, cfg.RedisPassword)
	if err != nil {
		log.Warn().Err(err).Msg("redis unavailable, credential cache disabled")
		rdb = nil
	}

	r := gin.Default()

	r.Use(middleware.CORSMiddleware())

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	routes.RegisterRoutes(r, db, rdb, cfg)

	log.Info().Str("addr", cfg.Addr()).Msg("server running")
	if err := r.Run(cfg.Addr()); err != nil {
		log.Fatal().Err(err).Msg("failed to start server")
	}
}
