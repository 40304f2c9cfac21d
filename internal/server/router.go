// Package server assembles the portal's HTTP surface.
package server

import (
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"finportal/internal/common/errors"
	httpx "finportal/internal/common/http"
	"finportal/internal/common/logger"
	"finportal/internal/gate"
)

const corsMaxAgeHours = 12

// Registrar is implemented by every API handler.
type Registrar interface {
	Register(rg gin.IRoutes)
}

// Deps is everything the router mounts. Nil handlers are skipped.
type Deps struct {
	AllowedOrigins []string
	Gate           *gate.Gate
	Sessions       *gate.SessionHandler
	API            []Registrar
	Checks         map[string]Check
	Logger         logger.Logger
}

func NewRouter(d Deps) *gin.Engine {
	if d.Logger == nil {
		d.Logger = logger.NewNoOpLogger()
	}
	router := gin.New()

	router.Use(cors.New(corsConfig(d.AllowedOrigins)))
	router.Use(gin.Recovery())
	router.Use(requestLogger(d.Logger))
	router.Use(requestMetrics())
	if d.Gate != nil {
		router.Use(d.Gate.Middleware())
	}

	router.GET("/health", health)
	router.GET("/ready", ready(d.Checks))
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	if d.Sessions != nil {
		router.GET("/sign-in", d.Sessions.SignIn)
		router.GET("/auth/callback", d.Sessions.Callback)
		router.GET("/sign-out", d.Sessions.SignOut)
		router.POST("/sign-out", d.Sessions.SignOut)
		router.GET("/unauthorized", d.Sessions.Unauthorized)
	}

	api := router.Group("/api")
	api.GET("/emi", calculateEMI)
	for _, h := range d.API {
		if h != nil {
			h.Register(api)
		}
	}

	router.NoRoute(func(c *gin.Context) {
		httpx.RespondError(c, d.Logger, errors.NewResourceNotFoundError("route", c.Request.URL.Path))
	})

	return router
}

func corsConfig(origins []string) cors.Config {
	cfg := cors.Config{
		AllowMethods: []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders: []string{
			"Origin", "Content-Type", "Content-Length", "Accept-Encoding",
			"Authorization", "Accept", "Cache-Control", "X-Requested-With",
		},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
		MaxAge:           corsMaxAgeHours * time.Hour,
	}
	if len(origins) == 0 {
		cfg.AllowOrigins = []string{"http://localhost:3000"}
	} else {
		cfg.AllowOrigins = origins
	}
	return cfg
}
