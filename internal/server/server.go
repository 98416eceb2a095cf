package server

import (
	"context"
	"net/http"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/gin-gonic/gin"
	"github.com/hogarlink/hogar/internal/config"
	devicestatedomain "github.com/hogarlink/hogar/internal/devicestate/domain"
	environmentdomain "github.com/hogarlink/hogar/internal/environment/domain"
	inventorydomain "github.com/hogarlink/hogar/internal/inventory/domain"
	"github.com/hogarlink/hogar/internal/observability"
	obsmiddleware "github.com/hogarlink/hogar/internal/observability/logger"
	"github.com/hogarlink/hogar/internal/ratelimit"
	snapshotdomain "github.com/hogarlink/hogar/internal/snapshot/domain"
	userdomain "github.com/hogarlink/hogar/internal/user/domain"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/fx"
	"gorm.io/gorm"
)

var Module = fx.Module("http.server",
	fx.Provide(registerGin),
	fx.Invoke(NewServer),
	fx.Invoke(run),
)

func NewEngine(obsCfg observability.Config) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(obsmiddleware.GinMiddleware(obsmiddleware.MiddlewareConfig{
		Debug:           obsCfg.Debug(),
		ErrorClassifier: classifyErrorForLog,
	}))
	r.Use(ErrorHandlingMiddleware())

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	return r
}

func registerGin(obsCfg observability.Config) *gin.Engine {
	return NewEngine(obsCfg)
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
	engine         *gin.Engine
	cfg            config.Config
	db             *gorm.DB
	genID          *snowflake.Node
	userSvc        userdomain.Service
	environmentSvc environmentdomain.Service
	snapshotSvc    snapshotdomain.Service
	inventorySvc   inventorydomain.Service
	deviceStateSvc devicestatedomain.Service
	pollLimiter    *ratelimit.PollLimiter
}

type ServerParams struct {
	fx.In

	Gin            *gin.Engine
	Cfg            config.Config
	DB             *gorm.DB
	GenID          *snowflake.Node
	UserSvc        userdomain.Service
	EnvironmentSvc environmentdomain.Service
	SnapshotSvc    snapshotdomain.Service
	InventorySvc   inventorydomain.Service
	DeviceStateSvc devicestatedomain.Service
	PollLimiter    *ratelimit.PollLimiter `optional:"true"`
}

func NewServer(p ServerParams) *Server {
	svc := &Server{
		engine:         p.Gin,
		cfg:            p.Cfg,
		db:             p.DB,
		genID:          p.GenID,
		userSvc:        p.UserSvc,
		environmentSvc: p.EnvironmentSvc,
		snapshotSvc:    p.SnapshotSvc,
		inventorySvc:   p.InventorySvc,
		deviceStateSvc: p.DeviceStateSvc,
		pollLimiter:    p.PollLimiter,
	}

	svc.registerUserRoutes()
	svc.registerEnvironmentRoutes()
	svc.registerSensorDataRoutes()
	svc.registerDeviceRoutes()

	return svc
}

func (s *Server) Engine() *gin.Engine {
	return s.engine
}

func (s *Server) registerUserRoutes() {
	s.engine.POST("/users", s.CreateUser)
	s.engine.GET("/users", s.ListUsers)
	s.engine.GET("/users/:id", s.GetUserByID)
	s.engine.PATCH("/users/:id", s.UpdateUser)
	s.engine.DELETE("/users/:id", s.DeleteUser)
	s.engine.POST("/login", s.Login)
}

func (s *Server) registerEnvironmentRoutes() {
	s.engine.GET("/environments", s.ListEnvironments)
	s.engine.GET("/environments/:id", s.GetEnvironmentByID)

	user := s.engine.Group("/users/:id/environments")
	{
		user.POST("", s.CreateEnvironment)
		user.GET("", s.ListUserEnvironments)
		user.GET("/sensors", s.DescribeEnvironmentSensors)
		user.GET("/:envId", s.GetUserEnvironment)
		user.PATCH("/:envId", s.UpdateEnvironment)
		user.DELETE("/:envId", s.DeleteEnvironment)
		user.POST("/:envId/toggle", s.ToggleEnvironment)
	}
}

func (s *Server) registerSensorDataRoutes() {
	data := s.engine.Group("/sensor-data")
	{
		data.POST("", s.CreateSnapshot)
		data.GET("", s.ListSnapshots)
		data.GET("/:id", s.GetSnapshotByID)
		data.PATCH("/:id", s.UpdateSnapshot)
		data.DELETE("/:id", s.DeleteSnapshot)
		data.DELETE("/device/:deviceId", s.DeleteSnapshotsByDevice)
	}

	sensors := s.engine.Group("/users/:id/sensors")
	{
		sensors.GET("", s.ClassifySensors)
		sensors.GET("/free", s.ListFreeSensors)
		sensors.GET("/all", s.ListAllSensors)
	}
	s.engine.GET("/sensors/:sensorId/owner", s.FindSensorOwner)
	s.engine.GET("/sensor-types", s.ListSensorTypes)
}

func (s *Server) registerDeviceRoutes() {
	esp := s.engine.Group("/esp32")
	{
		esp.GET("/status", s.DeviceStatus)
		esp.GET("/data/:userId", s.DevicePollRateLimit(), s.DeviceData)
		esp.POST("/commands", s.DeviceCommandAck)
	}
}
