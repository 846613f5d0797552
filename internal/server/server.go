package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/getkin/kin-openapi/openapi3"
	"github.com/gin-gonic/gin"
	log "github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"kinectbase/api"
	"kinectbase/internal/config"
	"kinectbase/internal/generated"
	"kinectbase/internal/kinect"
	"kinectbase/internal/sampler"
)

// shutdownTimeout はグレースフルシャットダウンの待機時間
const shutdownTimeout = 5 * time.Second

// Server はHTTPサーバーとデバイスセッションを管理する構造体
type Server struct {
	config     *config.Config
	engine     *gin.Engine
	httpServer *http.Server
	session    *Session
	sampler    *sampler.Sampler
	logger     *log.Entry

	shutdownTimeout time.Duration
}

// New は新しいServerインスタンスを作成する。
// デバイスを開けなかった場合も未初期化のセッションで起動する
func New(cfg *config.Config, driver kinect.Driver, logger *log.Logger) (*Server, error) {
	if logger == nil {
		logger = log.StandardLogger()
	}
	entry := log.NewEntry(logger)

	doc, err := api.Load(context.Background())
	if err != nil {
		return nil, err
	}

	stream := cfg.Kinect.Stream
	manager, err := kinect.NewManager(driver, kinect.Options{
		DeviceIndex:    cfg.Kinect.DeviceIndex,
		UseIMU:         cfg.Kinect.UseIMU,
		CaptureTimeout: cfg.Kinect.CaptureTimeout,
		IMUTimeout:     cfg.Kinect.IMUTimeout,
		Config:         &stream,
		Logger:         logger,
	})
	if err != nil {
		entry.WithError(err).Warnln("デバイスなしでサーバーを起動します")
	}

	session := NewSession(driver, manager)

	samplerConfig := cfg.Sampler
	samplerConfig.UseIMU = samplerConfig.UseIMU && cfg.Kinect.UseIMU

	s := &Server{
		config:  cfg,
		session: session,
		sampler: sampler.New(session, samplerConfig, entry),
		logger:  entry,

		shutdownTimeout: shutdownTimeout,
	}
	s.engine = s.setupRoutes(doc)
	s.httpServer = &http.Server{
		Addr:         cfg.ServerAddress(),
		Handler:      s.engine,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	return s, nil
}

// setupRoutes はOpenAPI定義から生成したルートを設定する
func (s *Server) setupRoutes(doc *openapi3.T) *gin.Engine {
	if !s.config.Debug {
		gin.SetMode(gin.ReleaseMode)
	}

	engine := gin.New()
	engine.Use(gin.Recovery(), s.requestLogger(), openAPIValidator(doc))

	h := &KinectHandler{
		config:  s.config,
		session: s.session,
		sampler: s.sampler,
		logger:  s.logger,
	}

	generated.RegisterHandlersWithOptions(engine, h, generated.GinServerOptions{
		ErrorHandler: func(c *gin.Context, err error, code int) {
			respondError(c, code, "invalid_request", "パラメーターが不正です", err)
		},
	})

	return engine
}

// requestLogger はリクエストをデバッグレベルで記録するミドルウェア
func (s *Server) requestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		s.logger.WithFields(log.Fields{
			"method":  c.Request.Method,
			"path":    c.FullPath(),
			"status":  c.Writer.Status(),
			"latency": time.Since(start),
		}).Debugln("リクエストを処理しました")
	}
}

// Handler はHTTPハンドラーを返す
func (s *Server) Handler() http.Handler {
	return s.engine
}

// Start はサーバーとサンプラーを起動し、コンテキストのキャンセルかシグナルで停止する
func (s *Server) Start(ctx context.Context) error {
	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		s.logger.Infof("HTTPサーバーを起動しています: %s", s.config.ServerAddress())
		if err := s.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("サーバーの起動に失敗: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		return s.sampler.Run(gctx)
	})

	g.Go(func() error {
		<-gctx.Done()
		return s.Shutdown()
	})

	return g.Wait()
}

// Shutdown はサーバーをグレースフルにシャットダウンし、デバイスを解放する。
// HTTPサーバーの停止に失敗してもデバイスは必ず解放する
func (s *Server) Shutdown() error {
	s.logger.Infoln("サーバーをシャットダウンしています...")

	ctx, cancel := context.WithTimeout(context.Background(), s.shutdownTimeout)
	defer cancel()

	var httpErr, closeErr error
	if err := s.httpServer.Shutdown(ctx); err != nil {
		httpErr = fmt.Errorf("サーバーのシャットダウンに失敗: %w", err)
		s.logger.WithError(err).Warnln("HTTPサーバーのグレースフルシャットダウンに失敗")
	}

	if err := s.session.Close(); err != nil {
		closeErr = fmt.Errorf("デバイスの解放に失敗: %w", err)
		s.logger.WithError(err).Warnln("デバイスの解放に失敗")
	}

	if err := errors.Join(httpErr, closeErr); err != nil {
		return err
	}

	s.logger.Infoln("サーバーが正常にシャットダウンされました")
	return nil
}
