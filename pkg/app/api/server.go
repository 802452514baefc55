// Package api implements app.Runner for the registrar API process.
package api

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	apphttp "github.com/peyroll/registrar/pkg/app/http"
	"github.com/peyroll/registrar/pkg/auth"
	"github.com/peyroll/registrar/pkg/clock"
	"github.com/peyroll/registrar/pkg/config"
	"github.com/peyroll/registrar/pkg/ethereum"
	"github.com/peyroll/registrar/pkg/keys"
	"github.com/peyroll/registrar/pkg/ledger"
	"github.com/peyroll/registrar/pkg/otp"
	"github.com/peyroll/registrar/pkg/otp/local"
	"github.com/peyroll/registrar/pkg/otp/okto"
	"github.com/peyroll/registrar/pkg/pgutil"
	"github.com/peyroll/registrar/pkg/redisutil"
	"github.com/peyroll/registrar/pkg/registration"
	regservice "github.com/peyroll/registrar/pkg/registration/service"
	"github.com/peyroll/registrar/pkg/registrationstore"
	"github.com/peyroll/registrar/pkg/submission"
	"github.com/peyroll/registrar/pkg/wallet"
)

// Server holds cfg to init the registrar API.
type Server struct {
	cfg *config.Config
}

// NewServer initializes a new API server.
func NewServer(cfg *config.Config) *Server {
	return &Server{cfg: cfg}
}

func (s *Server) Run() error {
	if s.cfg == nil {
		return fmt.Errorf("registrar config is nil")
	}
	cfg := s.cfg

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	logger, err := config.NewLogger(cfg.Logging)
	if err != nil {
		return fmt.Errorf("setup logger: %w", err)
	}
	defer func() { _ = logger.Sync() }()

	logger.Info("Starting registrar API",
		zap.String("host", cfg.Server.Host),
		zap.Int("port", cfg.Server.Port),
	)

	db, err := pgutil.ConnectDB(&cfg.Database)
	if err != nil {
		return fmt.Errorf("connect db: %w", err)
	}
	defer func() { _ = db.Close() }()
	logger.Info("Connected to database",
		zap.String("host", cfg.Database.Host),
		zap.String("database", cfg.Database.Database),
	)
	store := registrationstore.NewStore(db)
	s.reportPending(ctx, store, logger)

	eth, err := ethereum.NewClient(&cfg.Ethereum, logger)
	if err != nil {
		return fmt.Errorf("create ethereum client: %w", err)
	}
	defer eth.Close()

	provider, closeProvider, err := s.openProvider(logger)
	if err != nil {
		return err
	}
	defer closeProvider()

	agent, err := s.openAgent(eth, logger)
	if err != nil {
		return err
	}

	controller, err := submission.NewController(agent, eth.FactoryAddress(), eth, store, clock.Real(), logger)
	if err != nil {
		return fmt.Errorf("create submission controller: %w", err)
	}
	correlator := ledger.NewCorrelator(
		ledger.NewEthereumFeed(eth, logger),
		ledger.WithTimeout(cfg.Registration.ConfirmationTimeout),
		ledger.WithLogger(logger),
	)

	tokens, err := s.openSessionTokens()
	if err != nil {
		return err
	}

	sessions := regservice.NewSessions(cfg.Registration.SessionTTL, clock.Real(), logger)
	defer sessions.Close()

	svc := regservice.NewService(
		sessions,
		registration.Deps{
			Provider:   provider,
			Submitter:  controller,
			Correlator: correlator,
			Blocks:     eth,
			Companies:  store,
		},
		registration.Config{
			Policy:   otp.Policy{MaxAttempts: cfg.OTP.MaxAttempts, Lockout: cfg.OTP.Lockout},
			Lookback: cfg.Ethereum.ConfirmationLookback,
		},
		tokens,
		eth,
		logger,
	)

	router := s.setupRouter(regservice.NewLog(svc, logger), tokens, logger)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return apphttp.ServeAndWait(gctx, router, logger, &cfg.Server)
	})
	g.Go(func() error {
		return sessions.Run(gctx, cfg.Registration.JanitorInterval)
	})
	return g.Wait()
}

// reportPending logs transactions left pending by an earlier process. Their sessions are gone,
// so they are only surfaced for operators.
func (s *Server) reportPending(ctx context.Context, store registrationstore.TransactionStore, logger *zap.Logger) {
	pending, err := store.ListPending(ctx, nil)
	if err != nil {
		logger.Warn("Failed to list pending registration transactions", zap.Error(err))
		return
	}
	for _, rec := range pending {
		logger.Warn("Registration transaction left pending by a previous run",
			zap.String("request_id", rec.RequestID.String()),
			zap.String("requester", rec.Request.Requester.Hex()),
			zap.String("tx_hash", rec.TxHash.Hex()),
			zap.Time("submitted_at", rec.SubmittedAt),
		)
	}
}

func (s *Server) openProvider(logger *zap.Logger) (otp.Provider, func(), error) {
	cfg := s.cfg
	noop := func() {}

	if cfg.OTP.Provider == "okto" {
		apiKey, err := config.Secret(cfg.OTP.Okto.APIKeyEnv)
		if err != nil {
			return nil, noop, fmt.Errorf("okto api key: %w", err)
		}
		logger.Info("Using hosted OTP provider", zap.String("base_url", cfg.OTP.Okto.BaseURL))
		return okto.NewClient(cfg.OTP.Okto.BaseURL, apiKey, cfg.OTP.Okto.Timeout), noop, nil
	}

	var (
		store   local.Store
		closeFn = noop
	)
	if cfg.Redis.URL != "" {
		rdb, err := redisutil.Connect(&cfg.Redis)
		if err != nil {
			return nil, noop, fmt.Errorf("connect redis: %w", err)
		}
		store = local.NewRedisStore(rdb, clock.Real())
		closeFn = func() { _ = rdb.Close() }
		logger.Info("Connected to redis for OTP codes")
	} else {
		store = local.NewMemoryStore(clock.Real())
		logger.Warn("Redis URL not set, OTP codes are kept in memory")
	}

	var mailer local.Mailer
	if cfg.SMTP.Host != "" {
		password, err := config.Secret(cfg.SMTP.PasswordEnv)
		if err != nil {
			closeFn()
			return nil, noop, fmt.Errorf("smtp password: %w", err)
		}
		mailer = local.NewSMTPMailer(cfg.SMTP.Host, cfg.SMTP.Port, cfg.SMTP.Username, password, cfg.SMTP.From)
	} else {
		mailer = local.NewLogMailer(logger)
		logger.Warn("SMTP host not set, verification codes are written to the log")
	}

	provider := local.NewProvider(store, mailer,
		local.WithCodeTTL(cfg.OTP.Local.CodeTTL),
		local.WithCodeLength(cfg.OTP.Local.CodeLength),
	)
	return provider, closeFn, nil
}

func (s *Server) openAgent(eth *ethereum.Client, logger *zap.Logger) (wallet.Agent, error) {
	cfg := s.cfg
	maxGasPrice, err := wallet.ParseMaxGasPrice(cfg.Ethereum.MaxGasPrice)
	if err != nil {
		return nil, err
	}
	gas := wallet.GasOptions{GasLimit: cfg.Ethereum.GasLimit, MaxGasPrice: maxGasPrice}

	if cfg.Wallet.Mode == "external" {
		agent, err := wallet.DialExternalAgent(cfg.Wallet.ExternalURL, eth.Backend(), eth.ChainID(), gas, logger)
		if err != nil {
			return nil, fmt.Errorf("dial external signer: %w", err)
		}
		logger.Info("Using external signer", zap.String("url", cfg.Wallet.ExternalURL))
		return agent, nil
	}

	masterKeyStr, err := config.Secret(cfg.Wallet.MasterKeyEnv)
	if err != nil {
		return nil, fmt.Errorf("master key not set (hint: keytool -gen-master): %w", err)
	}
	masterKey, err := keys.MasterKeyFromBase64(masterKeyStr)
	if err != nil {
		return nil, fmt.Errorf("invalid master key: %w", err)
	}
	cipher, err := keys.NewMasterKeyCipher(masterKey)
	if err != nil {
		return nil, err
	}
	signers, err := keys.LoadSigners(cipher, cfg.Wallet.EncryptedKeys)
	if err != nil {
		return nil, fmt.Errorf("load signing keys: %w", err)
	}

	agent := wallet.NewKeyedAgent(eth.Backend(), eth.ChainID(), signers, gas, logger)
	for _, addr := range agent.Accounts() {
		logger.Info("Custodial signer loaded", zap.String("address", addr.Hex()))
	}
	return agent, nil
}

func (s *Server) openSessionTokens() (*auth.SessionTokens, error) {
	secret, err := config.Secret(s.cfg.Auth.SessionSecretEnv)
	if err != nil {
		return nil, fmt.Errorf("session secret: %w", err)
	}
	tokens, err := auth.NewSessionTokens([]byte(secret), s.cfg.Auth.Issuer, s.cfg.Auth.SessionTTL)
	if err != nil {
		return nil, fmt.Errorf("session tokens: %w", err)
	}
	return tokens, nil
}

func (s *Server) setupRouter(svc regservice.Service, tokens regservice.TokenVerifier, logger *zap.Logger) chi.Router {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(s.cfg.Server.RequestTimeout))

	r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("OK"))
	})
	if s.cfg.Monitoring.Enabled {
		r.Handle(s.cfg.Monitoring.MetricsPath, promhttp.Handler())
	}

	regservice.RegisterRoutes(r, svc, tokens, logger)
	return r
}
