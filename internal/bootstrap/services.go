package bootstrap

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/redis/go-redis/v9"

	"github.com/guildgate/guildgate/config"
	"github.com/guildgate/guildgate/internal/adapters/discord"
	"github.com/guildgate/guildgate/internal/adapters/memstore"
	"github.com/guildgate/guildgate/internal/adapters/oidc"
	redisstore "github.com/guildgate/guildgate/internal/adapters/redis"
	"github.com/guildgate/guildgate/internal/events"
	httpx "github.com/guildgate/guildgate/internal/http"
	"github.com/guildgate/guildgate/internal/ports"
	"github.com/guildgate/guildgate/internal/service"
)

// ServiceDeps contains the inputs for service construction.
type ServiceDeps struct {
	Config *config.AppConfig
	Logger *slog.Logger
}

// ServiceContainer holds the constructed application services.
type ServiceContainer struct {
	Events   *events.Channel
	Verifier *service.VerificationService
	Bot      *discord.Bot
	Handler  http.Handler

	redisClient redis.UniversalClient
}

// NewServices wires the application together: token key, event channel,
// session store, identity provider, verification service, Discord bot and
// HTTP handler. The OIDC discovery fetch happens here, so construction
// needs network access to the tenant authority.
func NewServices(ctx context.Context, deps *ServiceDeps) (*ServiceContainer, error) {
	cfg := deps.Config
	logger := deps.Logger
	if logger == nil {
		logger = slog.Default()
	}

	key, err := ResolveTokenKey(cfg.TokenPassphrase, logger)
	if err != nil {
		return nil, err
	}

	channel := events.NewChannel(logger)

	sessions, redisClient, err := newSessionStore(cfg.Session, logger)
	if err != nil {
		return nil, err
	}

	provider, err := oidc.NewProvider(ctx, oidc.ProviderConfig{
		ClientID:     cfg.Azure.ClientID,
		ClientSecret: cfg.Azure.ClientSecret,
		Authority:    cfg.Azure.Authority(),
		RedirectURL:  cfg.HTTP.RedirectURL(),
		Scope:        cfg.Azure.Scope,
	})
	if err != nil {
		return nil, fmt.Errorf("create identity provider: %w", err)
	}

	verifier := service.NewVerificationService(service.VerificationServiceOptions{
		Key:        key,
		Window:     cfg.TokenWindow,
		BaseURL:    cfg.HTTP.BaseURL,
		SessionTTL: cfg.Session.TTL,
		Sessions:   sessions,
		Provider:   provider,
		Events:     channel,
		Logger:     logger,
	})

	bot, err := discord.NewBot(discord.BotOptions{
		Token:            cfg.Bot.Token,
		VerifiedRoleName: cfg.Bot.VerifiedRoleName,
		Issuer:           verifier,
		Events:           channel,
		Logger:           logger,
	})
	if err != nil {
		return nil, fmt.Errorf("create discord bot: %w", err)
	}

	router := httpx.NewRouter(httpx.RouterServices{
		Verifier:     verifier,
		OrgName:      cfg.Bot.OrgName,
		CookieDomain: cfg.HTTP.CookieDomain,
		Logger:       logger,
	})
	handler := httpx.Recover(logger)(httpx.Logging(logger)(router))

	return &ServiceContainer{
		Events:      channel,
		Verifier:    verifier,
		Bot:         bot,
		Handler:     handler,
		redisClient: redisClient,
	}, nil
}

// Close releases resources held by the container.
func (c *ServiceContainer) Close() error {
	if c.redisClient != nil {
		return c.redisClient.Close()
	}
	return nil
}

// newSessionStore builds the configured session store. The returned client
// is non-nil only for the redis store and must be closed on shutdown.
//
//nolint:ireturn // returning redis.UniversalClient keeps sentinel/cluster support flexible.
func newSessionStore(
	cfg config.SessionConfig,
	logger *slog.Logger,
) (ports.SessionStore, redis.UniversalClient, error) {
	switch cfg.Store {
	case config.StoreModeRedis:
		client := redis.NewUniversalClient(&redis.UniversalOptions{
			Addrs:    []string{cfg.Redis.Addr},
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		logger.Info("using redis session store", "addr", cfg.Redis.Addr)
		return redisstore.NewSessionStore(client), client, nil
	case config.StoreModeMemory, "":
		logger.Info("using in-memory session store")
		return memstore.NewSessionStore(), nil, nil
	default:
		return nil, nil, fmt.Errorf("unknown session store %q", cfg.Store)
	}
}
