package http

import (
	"context"
	"net/http"
	"time"

	"ervault/internal/config"
	"ervault/internal/digest"
	"ervault/internal/domain"
	"ervault/internal/encoding"
	"ervault/internal/infra/db"
	"ervault/internal/infra/policyopa"
	"ervault/internal/infra/ratelimit"
	"ervault/internal/tsa"
	"ervault/internal/usecase"

	"github.com/gin-gonic/gin"
)

type Server struct {
	cfg   config.Config
	store *db.Store
	r     *gin.Engine

	archiveUC *usecase.ArchiveBatch
	renewUC   *usecase.RenewStored
	verifyUC  *usecase.VerifyStored
	records   usecase.RecordRepository
	digests   usecase.DigestRegistry

	adminAPIKey string
	initErr     error

	rateLimiter          domain.RateLimiter
	rateLimitRequests    int
	rateLimitWindow      time.Duration
	rateLimitWithSubject bool
	rateLimitFailClosed  bool
	rateLimitSubjectMax  int
	rateLimitSubjectHash bool
}

func NewServer(cfg config.Config, store *db.Store) *Server {
	r := gin.New()
	r.Use(gin.Recovery())

	s := &Server{cfg: cfg, store: store, r: r}
	s.initDeps()
	s.routes()
	return s
}

type ServerDeps struct {
	Archive     *usecase.ArchiveBatch
	Renew       *usecase.RenewStored
	Verify      *usecase.VerifyStored
	Records     usecase.RecordRepository
	Digests     usecase.DigestRegistry
	AdminAPIKey string
	RateLimiter domain.RateLimiter
}

func NewServerWithDeps(cfg config.Config, deps ServerDeps) *Server {
	r := gin.New()
	r.Use(gin.Recovery())

	s := &Server{
		cfg:         cfg,
		r:           r,
		archiveUC:   deps.Archive,
		renewUC:     deps.Renew,
		verifyUC:    deps.Verify,
		records:     deps.Records,
		digests:     deps.Digests,
		adminAPIKey: deps.AdminAPIKey,
	}
	s.initRateLimit(deps.RateLimiter)
	s.routes()
	return s
}

func (s *Server) initDeps() {
	s.adminAPIKey = s.cfg.AdminAPIKey

	registry := digest.NewRegistry()
	s.digests = registry
	encoder := encoding.CanonicalEncoder{}

	var oracle domain.TimestampOracle
	if s.cfg.TSAURL != "" {
		httpOracle, err := tsa.NewHTTPOracle(s.cfg.TSAURL, &http.Client{Timeout: s.cfg.TSATimeout()})
		if err != nil {
			s.initErr = err
			return
		}
		oracle = httpOracle
	} else {
		oracle = &tsa.LocalOracle{}
	}

	var policy usecase.PolicyEngine
	if s.cfg.PolicyBundlePath != "" {
		engine, err := policyopa.NewEngineFromBundlePath(context.Background(), s.cfg.PolicyBundlePath, s.cfg.PolicyBundleID)
		if err != nil {
			s.initErr = err
			return
		}
		policy = engine
	}

	var records usecase.RecordRepository
	if s.store != nil && s.store.DB != nil {
		records = db.NewEvidenceRecordRepository(s.store.DB)
	}
	s.records = records

	verifier := &usecase.VerifyRecord{
		Digests: registry,
		Encoder: encoder,
		Policy: usecase.VerifyPolicy{
			RequireAlgorithmChange: s.cfg.RequireAlgorithmChange,
			MaxTimestampAge:        s.cfg.MaxTimestampAge(),
		},
	}
	s.archiveUC = &usecase.ArchiveBatch{
		Create:  &usecase.CreateRecord{Oracle: oracle},
		Digests: registry,
		Records: records,
	}
	s.renewUC = &usecase.RenewStored{
		Renew: &usecase.RenewRecords{
			Digests: registry,
			Encoder: encoder,
			Oracle:  oracle,
		},
		Records: records,
	}
	s.verifyUC = &usecase.VerifyStored{
		Records:  records,
		Verifier: verifier,
		Policy:   policy,
	}

	s.initRateLimit(nil)
}

func (s *Server) initRateLimit(override domain.RateLimiter) {
	if override != nil {
		s.rateLimiter = override
	}
	if s.rateLimiter == nil && s.cfg.RateLimitRequests > 0 {
		if s.cfg.RedisAddr != "" {
			limiter, err := ratelimit.NewRedisLimiter(ratelimit.RedisLimiterConfig{
				Addr:     s.cfg.RedisAddr,
				Password: s.cfg.RedisPassword,
				DB:       s.cfg.RedisDB,
			})
			if err == nil {
				s.rateLimiter = limiter
			}
		}
		if s.rateLimiter == nil {
			s.rateLimiter = ratelimit.NewMemoryLimiter(ratelimit.MemoryLimiterConfig{
				MaxKeys: s.cfg.RateLimitMaxKeys,
			})
		}
	}
	s.rateLimitRequests = s.cfg.RateLimitRequests
	if s.cfg.RateLimitWindowSeconds > 0 {
		s.rateLimitWindow = time.Duration(s.cfg.RateLimitWindowSeconds) * time.Second
	}
	s.rateLimitWithSubject = s.cfg.RateLimitIncludeSubject
	s.rateLimitFailClosed = s.cfg.RateLimitFailClosed
	s.rateLimitSubjectMax = s.cfg.RateLimitSubjectMaxLen
	s.rateLimitSubjectHash = s.cfg.RateLimitSubjectHash
}

func (s *Server) routes() {
	s.r.GET("/healthz", func(c *gin.Context) {
		dbMode := "no-db"
		if s.store != nil && s.store.DB != nil {
			dbMode = "db"
		}
		c.JSON(http.StatusOK, gin.H{"status": "ok", "mode": dbMode})
	})

	v1 := s.r.Group("/v1")
	{
		v1.GET("/records", s.handleListRecords)
		v1.GET("/records/:record_id", s.handleGetRecord)
		v1.POST("/records/:record_id/verify", s.handleVerifyRecord)

		v1.POST("/batches", s.handleCreateBatch)
		v1.POST("/renewals", s.handleRenewals)
	}

	s.r.NoRoute(s.handleNoRoute)
}

// Handler exposes the router for tests and embedding.
func (s *Server) Handler() http.Handler {
	return s.r
}

func (s *Server) Run() error {
	if s.initErr != nil {
		return s.initErr
	}
	return s.r.Run(s.cfg.HTTPAddr)
}
