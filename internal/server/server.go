package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	_ "chatrelay/docs"
	"chatrelay/internal/ai"
	"chatrelay/internal/config"
	"chatrelay/internal/handler"
	roomHandler "chatrelay/internal/handler/room"
	"chatrelay/internal/pkg/cache"
	"chatrelay/internal/pkg/jwt"
	chatrepo "chatrelay/internal/repository/chat"
	"chatrelay/internal/server/middleware"
	"chatrelay/internal/service"
)

const defaultJWTSecret = "default-secret-key-change-in-production"

// Deps 服务器依赖
type Deps struct {
	Store     chatrepo.Store
	Completer ai.Completer
	Cache     *cache.RedisCache // 可选
}

// Server HTTP 服务器
type Server struct {
	cfg    *config.Config
	engine *gin.Engine
	deps   Deps
}

// New 创建服务器实例，连接会话存储、Redis 与模型服务
func New(ctx context.Context, cfg *config.Config) (*Server, error) {
	store, err := chatrepo.Open(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("open conversation store: %w", err)
	}

	// 初始化 Redis (可选)
	var redisCache *cache.RedisCache
	if cfg.Redis.Addr != "" {
		rc, err := cache.NewRedisCache(ctx, &cfg.Redis)
		if err != nil {
			log.Warn().Err(err).Msg("failed to connect to Redis, continuing without room cache")
		} else {
			redisCache = rc
			log.Info().Str("addr", cfg.Redis.Addr).Msg("connected to Redis")
		}
	}

	completer, err := ai.NewCompleter(ctx, &cfg.AI)
	if err != nil {
		_ = store.Close(context.Background())
		return nil, err
	}
	log.Info().Str("provider", cfg.AI.Provider).Str("model", cfg.AI.Model).Msg("initialized AI client")

	return NewWithDeps(cfg, Deps{
		Store:     store,
		Completer: completer,
		Cache:     redisCache,
	})
}

// NewWithDeps 使用已创建的依赖构造服务器
func NewWithDeps(cfg *config.Config, deps Deps) (*Server, error) {
	// 设置 Gin 模式
	switch cfg.Server.Mode {
	case "debug":
		gin.SetMode(gin.DebugMode)
	case "test":
		gin.SetMode(gin.TestMode)
	default:
		gin.SetMode(gin.ReleaseMode)
	}

	srv := &Server{
		cfg:    cfg,
		engine: gin.New(),
		deps:   deps,
	}
	if err := srv.setupRoutes(); err != nil {
		return nil, err
	}
	return srv, nil
}

// setupRoutes 设置路由
func (s *Server) setupRoutes() error {
	loc, err := s.cfg.Chat.Location()
	if err != nil {
		return fmt.Errorf("load chat timezone: %w", err)
	}

	jwtSecret := s.cfg.Auth.JWTSecret
	if jwtSecret == "" {
		jwtSecret = defaultJWTSecret
		log.Warn().Msg("JWT secret not configured, using default (NOT SECURE for production)")
	}
	jwtUtil := jwt.NewJWT(jwtSecret)

	// 服务层
	store := s.deps.Store
	var roomCache service.RoomCache
	if s.deps.Cache != nil {
		roomCache = s.deps.Cache
	}
	bucketer := service.NewRoomBucketer(store.Rooms(), loc, roomCache, s.cfg.Redis.RoomCacheTTL)
	roomSvc := service.NewRoomService(store, bucketer)
	chatSvc := service.NewChatService(
		s.deps.Completer,
		service.NewHistoryLoader(store, s.cfg.Chat.HistoryLimit),
		service.NewTranscriptWriter(store.Messages(), loc),
		&s.cfg.AI,
		&s.cfg.Chat,
	)

	// 全局中间件
	s.engine.Use(middleware.Recovery())
	s.engine.Use(middleware.RequestID())
	s.engine.Use(middleware.Logger())
	s.engine.Use(middleware.CORS(s.cfg.Server.CORSOrigins))

	// 健康检查
	healthHandler := handler.NewHealthHandler(store)
	s.engine.GET("/health", healthHandler.Health)
	s.engine.GET("/ready", healthHandler.Ready)

	// Swagger 文档
	s.engine.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	// API v1（需要认证）
	v1 := s.engine.Group("/api/v1")
	v1.Use(middleware.Auth(jwtUtil))
	{
		chatHdl := handler.NewChatHandler(chatSvc)
		v1.POST("/chat", chatHdl.Chat)
		v1.GET("/chat/ws", chatHdl.ChatWS)

		modelHdl := handler.NewModelHandler(&s.cfg.AI)
		v1.GET("/models", modelHdl.List)

		roomHdl := roomHandler.NewHandler(roomSvc)
		rooms := v1.Group("/rooms")
		{
			rooms.POST("", roomHdl.Create)
			rooms.GET("", roomHdl.List)
			rooms.GET("/categorized", roomHdl.Categorized)
			rooms.PATCH("/update_active", roomHdl.UpdateActive)
			rooms.GET("/:id", roomHdl.Get)
			rooms.PATCH("/:id", roomHdl.Rename)
			rooms.DELETE("/:id", roomHdl.Delete)
			rooms.GET("/:id/messages", roomHdl.Messages)
		}
	}
	return nil
}

// Run 启动服务器
func (s *Server) Run(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:         addr,
		Handler:      s.engine,
		ReadTimeout:  s.cfg.Server.ReadTimeout,
		WriteTimeout: s.cfg.Server.WriteTimeout,
	}

	// 启动服务器
	errCh := make(chan error, 1)
	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	// 等待关闭信号或错误
	select {
	case <-ctx.Done():
		log.Info().Msg("shutting down server...")

		// 先停止接收请求，等待进行中的对话写完记录，再关闭连接
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		err := srv.Shutdown(shutdownCtx)

		s.Close()
		return err
	case err := <-errCh:
		s.Close()
		return err
	}
}

// Close 关闭存储与缓存连接
func (s *Server) Close() {
	if err := s.deps.Store.Close(context.Background()); err != nil {
		log.Error().Err(err).Msg("failed to close conversation store")
	}
	if s.deps.Cache != nil {
		if err := s.deps.Cache.Close(); err != nil {
			log.Error().Err(err).Msg("failed to close Redis connection")
		}
	}
}

// Engine 获取 Gin 引擎 (用于测试)
func (s *Server) Engine() *gin.Engine {
	return s.engine
}
