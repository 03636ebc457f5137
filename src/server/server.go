package server

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"
	"gopkg.in/urfave/cli.v1"

	"github.com/andrewyi/omnicrawler/src/analyzer"
	"github.com/andrewyi/omnicrawler/src/config"
	"github.com/andrewyi/omnicrawler/src/controller"
	"github.com/andrewyi/omnicrawler/src/core"
	"github.com/andrewyi/omnicrawler/src/dbstorage"
	"github.com/andrewyi/omnicrawler/src/downloader"
	"github.com/andrewyi/omnicrawler/src/entity"
	"github.com/andrewyi/omnicrawler/src/exporter"
	"github.com/andrewyi/omnicrawler/src/filestorage"
	"github.com/andrewyi/omnicrawler/src/session"
	"github.com/andrewyi/omnicrawler/src/util"
)

type Server struct {
	ctx    context.Context
	cancel context.CancelFunc
	logger *log.Logger
	config *config.Config
	runID  string

	dbStorage *dbstorage.SimpleDBStorage
}

func NewServer() *Server {
	ctx, cancel := context.WithCancel(context.Background())
	return &Server{
		ctx:    ctx,
		cancel: cancel,
		runID:  uuid.New().String(),
	}
}

func (s *Server) initLog() {
	var logger = log.New()
	logger.SetFormatter(&log.TextFormatter{
		DisableColors: true,
		FullTimestamp: true,
	})
	logger.SetOutput(os.Stdout)

	if s.config.Log.Context {
		logger.SetReportCaller(true)
	}

	if logLevel, err := log.ParseLevel(s.config.Log.Level); err != nil {
		logger.SetLevel(log.DebugLevel)
	} else {
		logger.SetLevel(logLevel)
	}
	s.logger = logger
}

func LoadConfig(configPath string) (*config.Config, error) {
	var cfg = &config.Config{}
	if err := util.ReadConfig(configPath, cfg, config.Defaults, config.LegacyEnv); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (s *Server) Start(ctx *cli.Context) error {
	cfg, err := LoadConfig(ctx.String("config"))
	if err != nil {
		return fmt.Errorf("fail to load config, err: %w", err)
	}
	if date := ctx.String("date"); date != "" {
		cfg.Wiki.Date = date
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid config, err: %w", err)
	}
	s.config = cfg

	s.initLog()
	s.logger.WithField("run_id", s.runID).WithField("date", cfg.Wiki.Date).Info("crawler starting")

	seeds := []entity.PageRef{core.SeedRef(cfg.Wiki.Date, cfg.Wiki.SeedPage)}
	if cfg.Core.SeedFilePath != "" {
		extra, err := core.ReadSeeds(cfg.Core.SeedFilePath)
		if err != nil {
			return fmt.Errorf("fail to read seed file, err: %w", err)
		}
		seeds = append(seeds, extra...)
	}

	sessionManager, err := session.NewManager(s.logger, session.NewFileStore(cfg.Session.CookieJar), session.Options{
		BaseURL:      cfg.Wiki.BaseURL,
		LoginURL:     cfg.LoginURL(),
		LoginLink:    cfg.Session.LoginLink,
		Username:     cfg.Session.Username,
		Password:     cfg.Session.Password,
		CookiePrefix: cfg.Session.CookiePrefix,
		Timeout:      time.Duration(cfg.Downloader.Timeout) * time.Second,
		UserAgent:    cfg.Downloader.UserAgent,
	})
	if err != nil {
		return err
	}

	// 数据库记录是可选的，连接失败时不影响抓取
	var recorder controller.Recorder
	if cfg.Database.URL != "" {
		dbStorage, err := dbstorage.NewSimpleDBStorage(cfg.Database.URL, s.runID)
		if err != nil {
			s.logger.WithError(err).Error("fail to create dbstorage handler, pages will not be recorded")
		} else {
			s.dbStorage = dbStorage
			recorder = dbStorage
		}
	}

	pipeline := &core.Pipeline{
		Logger:        s.logger,
		Session:       sessionManager,
		Exporter:      exporter.NewFileExporter(cfg.Storage.HoversPath, cfg.Storage.LinksPath),
		NewController: func(jar *session.Jar) (controller.Controller, error) { return s.newController(jar, recorder) },
	}

	go s.wait()
	defer s.Stop()

	return pipeline.Run(s.ctx, seeds)
}

func (s *Server) newController(jar *session.Jar, recorder controller.Recorder) (controller.Controller, error) {
	cfg := s.config

	d, err := downloader.NewSimpleDownloader(jar, downloader.Options{
		BaseURL:      cfg.Wiki.BaseURL,
		Timeout:      time.Duration(cfg.Downloader.Timeout) * time.Second,
		UserAgent:    cfg.Downloader.UserAgent,
		MaxBodyBytes: cfg.Downloader.MaxBodyBytes,
	})
	if err != nil {
		return nil, err
	}

	a := analyzer.NewSimpleAnalyzer(s.logger, analyzer.Options{
		Classifier:       analyzer.NewLinkClassifier(cfg.Wiki.ContentPrefix, cfg.Wiki.ExcludedPaths),
		HistorySelector:  cfg.Wiki.HistorySelector,
		HoverTitleAttr:   cfg.Wiki.HoverTitleAttr,
		HoverContentAttr: cfg.Wiki.HoverContentAttr,
	})

	return controller.NewController(
		s.logger,
		d,
		a,
		filestorage.NewSimpleFileStorage(cfg.Storage.Location),
		recorder,
		controller.Options{
			RevisionDelay: time.Duration(cfg.Core.RevisionDelay) * time.Millisecond,
			Worker:        cfg.Core.Worker,
		},
	), nil
}

// 收到中断信号后取消ctx，正在进行的请求结束后停止，导出已经抓取的部分并保存cookie
func (s *Server) wait() {
	c := make(chan os.Signal, 1)
	signal.Notify(c, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(c)
	select {
	case <-c:
		s.logger.Warn("interrupt signal, crawler gonna stop")
		s.cancel()
	case <-s.ctx.Done():
	}
}

func (s *Server) Stop() {
	s.cancel()
	if s.dbStorage != nil {
		if err := s.dbStorage.Close(); err != nil {
			s.logger.WithError(err).Error("fail to close dbstorage")
		}
	}
}
