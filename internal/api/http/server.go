package http

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"os"
	"sync"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/weisyn/txledger/internal/api/http/handlers"
	"github.com/weisyn/txledger/internal/api/http/middleware"
	"github.com/weisyn/txledger/internal/api/websocket"
	"github.com/weisyn/txledger/internal/app/version"
	apiconfig "github.com/weisyn/txledger/internal/config/api"
	"github.com/weisyn/txledger/pkg/interfaces/infrastructure/event"
	"github.com/weisyn/txledger/pkg/interfaces/infrastructure/log"
	txledgerif "github.com/weisyn/txledger/pkg/interfaces/txledger"
)

// Server HTTP服务器
//
// 路由：
//   - /api/v1/transactions...: 账本只读查询
//   - /api/v1/ws: 状态变更推送（需启用 WebSocket 且存在事件总线）
//   - /metrics: Prometheus 指标（需启用）
//   - /health: 健康检查
type Server struct {
	router  *gin.Engine
	options *apiconfig.APIOptions
	logger  log.Logger

	mu         sync.Mutex
	httpServer *http.Server
	listener   net.Listener
}

// NewServer 创建HTTP服务器，bus 与 tree 可为 nil
func NewServer(options *apiconfig.APIOptions, logger log.Logger, ledger txledgerif.Reader, bus event.EventBus, tree handlers.StateTree) *Server {
	// GIN_MODE 未设置时使用 Release 模式，请求日志统一走 zap
	if os.Getenv(gin.EnvGinMode) == "" {
		gin.SetMode(gin.ReleaseMode)
		gin.DefaultWriter = io.Discard
	}

	router := gin.New()
	router.Use(
		middleware.RequestID(),
		middleware.Logger(logger),
		middleware.Metrics(),
		gin.Recovery(),
	)

	s := &Server{
		router:  router,
		options: options,
		logger:  logger,
	}
	s.setupRoutes(ledger, bus, tree)
	return s
}

// setupRoutes 设置HTTP路由
func (s *Server) setupRoutes(ledger txledgerif.Reader, bus event.EventBus, tree handlers.StateTree) {
	v1 := s.router.Group("/api/v1")
	handlers.NewTransactionHandler(s.logger, ledger).RegisterRoutes(v1)
	if tree != nil {
		handlers.NewStateHandler(tree).RegisterRoutes(v1)
	}

	if s.options.WebSocketEnabled {
		if bus == nil {
			s.logger.Warn("事件总线不可用，跳过 WebSocket 推送端点")
		} else {
			v1.GET("/ws", websocket.NewServer(s.logger, bus).HandleWebSocket)
		}
	}

	if s.options.MetricsEnabled {
		s.router.GET("/metrics", gin.WrapH(promhttp.Handler()))
	}

	s.router.GET("/health", handlers.NewHealthHandler(ledger, version.GetVersion()).GetHealth)
}

// Handler 返回路由处理器
func (s *Server) Handler() http.Handler {
	return s.router
}

// Start 监听配置地址并在后台提供服务
func (s *Server) Start() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.httpServer != nil {
		return errors.New("HTTP服务器已启动")
	}

	listener, err := net.Listen("tcp", s.options.HTTPListenAddr)
	if err != nil {
		return fmt.Errorf("监听 %s 失败: %w", s.options.HTTPListenAddr, err)
	}

	s.listener = listener
	s.httpServer = &http.Server{
		Handler:      s.router,
		ReadTimeout:  s.options.ReadTimeout,
		WriteTimeout: s.options.WriteTimeout,
	}

	srv := s.httpServer
	go func() {
		if err := srv.Serve(listener); err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.logger.Errorf("HTTP服务器异常退出: %v", err)
		}
	}()

	s.logger.Infof("HTTP服务器已启动: %s", listener.Addr())
	return nil
}

// Addr 实际监听地址，未启动时为空
func (s *Server) Addr() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.listener == nil {
		return ""
	}
	return s.listener.Addr().String()
}

// Stop 优雅关闭
func (s *Server) Stop(ctx context.Context) error {
	s.mu.Lock()
	srv := s.httpServer
	s.httpServer = nil
	s.listener = nil
	s.mu.Unlock()

	if srv == nil {
		return nil
	}
	if s.options.ShutdownTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.options.ShutdownTimeout)
		defer cancel()
	}
	if err := srv.Shutdown(ctx); err != nil {
		return fmt.Errorf("关闭HTTP服务器失败: %w", err)
	}
	s.logger.Info("HTTP服务器已停止")
	return nil
}
