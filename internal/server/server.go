// Package server is the gin HTTP surface: deposit resolution, payouts and
// the billing card admin endpoints.
package server

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"

	auditservice "github.com/I7ZT1/club-manager-panel/internal/audit/service"
	billingdomain "github.com/I7ZT1/club-manager-panel/internal/billing/domain"
	"github.com/I7ZT1/club-manager-panel/internal/config"
	"github.com/I7ZT1/club-manager-panel/internal/events"
	obscontext "github.com/I7ZT1/club-manager-panel/internal/observability/context"
	"github.com/I7ZT1/club-manager-panel/internal/observability/logger"
	"github.com/I7ZT1/club-manager-panel/internal/observability/metrics"
	"github.com/I7ZT1/club-manager-panel/internal/resolver"
	"github.com/I7ZT1/club-manager-panel/internal/withdraw"
)

const depositRateLimit = 30

type Server struct {
	cfg config.Config
	log *zap.Logger
	db  *gorm.DB

	resolverSvc resolverService
	billingSvc  billingdomain.Service
	withdrawSvc withdrawService
	auditSvc    *auditservice.Service
	outbox      *events.Outbox

	genID          *snowflake.Node
	depositLimiter *rateLimiter
}

type ServerParam struct {
	fx.In

	Config      config.Config
	Log         *zap.Logger
	DB          *gorm.DB
	Resolver    *resolver.Service
	Billing     billingdomain.Service
	Withdraw    *withdraw.Service
	Audit       *auditservice.Service
	Outbox      *events.Outbox
	GenID       *snowflake.Node
	HTTPMetrics *metrics.HTTPMetrics
}

func NewServer(p ServerParam) *Server {
	return &Server{
		cfg:            p.Config,
		log:            p.Log.Named("server"),
		db:             p.DB,
		resolverSvc:    p.Resolver,
		billingSvc:     p.Billing,
		withdrawSvc:    p.Withdraw,
		auditSvc:       p.Audit,
		outbox:         p.Outbox,
		genID:          p.GenID,
		depositLimiter: newRateLimiter(depositRateLimit, time.Minute),
	}
}

func (s *Server) Engine(httpMetrics *metrics.HTTPMetrics) *gin.Engine {
	if s.cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(s.requestContext())
	r.Use(metrics.GinMiddleware(httpMetrics))
	r.Use(s.accessLog())

	r.GET("/healthz", s.Health)
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	api := r.Group("/api/v1")
	{
		payment := api.Group("/payment")
		payment.POST("/deposit", s.rateLimited(), s.CreateDeposit)
		payment.POST("/requisites", s.GetRequisites)
		payment.POST("/withdraw", s.CreateWithdraw)

		billing := api.Group("/billing")
		billing.GET("/filters", s.BillingFilters)
		billing.POST("", s.CreateBilling)
		billing.POST("/list", s.ListBillings)
		billing.GET("/:id", s.GetBilling)
		billing.PATCH("/:id", s.UpdateBilling)
		billing.DELETE("/:id", s.DeleteBilling)

		api.POST("/audit/list", s.ListAudit)
	}

	return r
}

func (s *Server) Health(c *gin.Context) {
	sqlDB, err := s.db.DB()
	if err == nil {
		err = sqlDB.PingContext(c.Request.Context())
	}
	if err != nil {
		AbortWithError(c, ErrServiceUnavailable)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// requestContext stamps every request with an id and mirrors it in the
// response for support tickets.
func (s *Server) requestContext() gin.HandlerFunc {
	return func(c *gin.Context) {
		requestID := c.GetHeader("X-Request-Id")
		if requestID == "" {
			requestID = s.genID.Generate().String()
		}
		ctx := obscontext.WithRequestID(c.Request.Context(), requestID)
		c.Request = c.Request.WithContext(ctx)
		c.Set("request_id", requestID)
		c.Header("X-Request-Id", requestID)
		c.Next()
	}
}

func (s *Server) accessLog() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		logger.FromContext(c.Request.Context()).Info("http request",
			zap.String("method", c.Request.Method),
			zap.String("path", c.FullPath()),
			zap.Int("status", c.Writer.Status()),
			zap.Duration("duration", time.Since(start)),
		)
	}
}

func (s *Server) rateLimited() gin.HandlerFunc {
	return func(c *gin.Context) {
		if !s.depositLimiter.Allow(c.ClientIP()) {
			AbortWithError(c, ErrTooManyRequests)
			return
		}
		c.Next()
	}
}

func Run(lc fx.Lifecycle, s *Server, httpMetrics *metrics.HTTPMetrics, log *zap.Logger) {
	srv := &http.Server{
		Addr:              s.cfg.HTTPAddr,
		Handler:           s.Engine(httpMetrics),
		ReadHeaderTimeout: 10 * time.Second,
	}

	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			go func() {
				log.Info("http server listening", zap.String("addr", s.cfg.HTTPAddr))
				if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
					log.Error("http server stopped", zap.Error(err))
				}
			}()
			return nil
		},
		OnStop: func(ctx context.Context) error {
			return srv.Shutdown(ctx)
		},
	})
}

var Module = fx.Module("server",
	fx.Provide(NewServer),
	fx.Invoke(Run),
)
