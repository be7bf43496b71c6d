package server

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/smallbiznis/revlens/internal/clock"
	"github.com/smallbiznis/revlens/internal/config"
	"github.com/smallbiznis/revlens/internal/observability"
	obsmiddleware "github.com/smallbiznis/revlens/internal/observability/logger"
	obsmetrics "github.com/smallbiznis/revlens/internal/observability/metrics"
	obstracing "github.com/smallbiznis/revlens/internal/observability/tracing"
	"github.com/smallbiznis/revlens/internal/providers/pdf"
	snapshotdomain "github.com/smallbiznis/revlens/internal/snapshot/domain"
	snapshotservice "github.com/smallbiznis/revlens/internal/snapshot/service"
	"go.uber.org/fx"
)

var Module = fx.Module("http.server",
	fx.Provide(registerGin),
	clock.Module,
	pdf.Module,
	snapshotservice.Module,
	fx.Invoke(NewServer),
	fx.Invoke(run),
)

func NewEngine(obsCfg observability.Config, httpMetrics *obsmetrics.HTTPMetrics) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(obsmiddleware.GinMiddleware(obsmiddleware.MiddlewareConfig{
		Debug:           obsCfg.Debug(),
		ErrorClassifier: classifyErrorForLog,
	}))
	r.Use(obstracing.GinMiddleware())
	r.Use(obsmetrics.GinMiddleware(httpMetrics))
	r.Use(ErrorHandlingMiddleware())

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	return r
}

func registerGin(obsCfg observability.Config, httpMetrics *obsmetrics.HTTPMetrics) *gin.Engine {
	return NewEngine(obsCfg, httpMetrics)
}

func run(lc fx.Lifecycle, r *gin.Engine, cfg config.Config) {
	srv := &http.Server{
		Addr:    cfg.HTTPAddr,
		Handler: r,
	}

	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			go func() {
				if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
					panic(err)
				}
			}()
			return nil
		},
		OnStop: func(ctx context.Context) error {
			shutdownCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
			defer cancel()
			return srv.Shutdown(shutdownCtx)
		},
	})
}

type Server struct {
	engine      *gin.Engine
	cfg         config.Config
	snapshotSvc snapshotdomain.Service
	pdfProvider pdf.Provider
	clock       clock.Clock
}

type ServerParams struct {
	fx.In

	Gin         *gin.Engine
	Cfg         config.Config
	SnapshotSvc snapshotdomain.Service
	PDFProvider pdf.Provider
	Clock       clock.Clock
}

func NewServer(p ServerParams) *Server {
	s := &Server{
		engine:      p.Gin,
		cfg:         p.Cfg,
		snapshotSvc: p.SnapshotSvc,
		pdfProvider: p.PDFProvider,
		clock:       p.Clock,
	}
	s.registerRoutes()
	return s
}

func (s *Server) registerRoutes() {
	api := s.engine.Group("/api")
	{
		metrics := api.Group("/metrics")
		{
			metrics.GET("/revenue", s.GetRevenueMetrics)
			metrics.GET("/revenue/report", s.GetRevenueMetricsReport)
		}
	}
}
