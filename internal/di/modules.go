package di

import (
	"fmt"

	"resumebot-ai/config"
	"resumebot-ai/internal/apis/handlers"
	"resumebot-ai/internal/constants"
	"resumebot-ai/internal/repositories"
	"resumebot-ai/internal/services"
	"resumebot-ai/pkg/database"
	"resumebot-ai/pkg/llm"
	"resumebot-ai/pkg/redis"

	"github.com/rs/zerolog/log"
	"go.uber.org/dig"
	"gorm.io/gorm"
)

var DiContainer *dig.Container

func Initialize() {
	DiContainer = dig.New()

	// Initialize the conversation store
	db, err := database.InitializeDatabaseConnection(database.DatabaseConfigModel{
		Driver:       config.Env.DatabaseDriver,
		DSN:          config.Env.DatabaseDSN,
		MaxOpenConns: config.Env.DatabaseMaxOpenConns,
	})
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to initialize database")
	}

	if err := DiContainer.Provide(func() *gorm.DB { return db }); err != nil {
		log.Fatal().Err(err).Msg("Failed to provide database")
	}

	if err := DiContainer.Provide(func(db *gorm.DB) repositories.ConversationRepository {
		return repositories.NewConversationRepository(db)
	}); err != nil {
		log.Fatal().Err(err).Msg("Failed to provide conversation repository")
	}

	// Document cache, Redis when configured
	if err := DiContainer.Provide(func() repositories.DocumentCacheRepository {
		if !config.Env.RedisEnabled() {
			log.Info().Msg("Redis not configured, document cache disabled")
			return repositories.NewNoopDocumentCacheRepository()
		}
		redisClient, err := redis.RedisClient(redis.RedisConfigModel{
			Host:     config.Env.RedisHost,
			Port:     config.Env.RedisPort,
			Username: config.Env.RedisUsername,
			Password: config.Env.RedisPassword,
		})
		if err != nil {
			log.Warn().Err(err).Msg("Redis unavailable, document cache disabled")
			return repositories.NewNoopDocumentCacheRepository()
		}
		return repositories.NewDocumentCacheRepository(redis.NewRedisRepositories(redisClient), config.Env.DocumentCacheTTL)
	}); err != nil {
		log.Fatal().Err(err).Msg("Failed to provide document cache")
	}

	// Add LLM Manager
	if err := DiContainer.Provide(func() (*llm.Manager, error) {
		manager := llm.NewManager()
		cfg, err := defaultLLMConfig()
		if err != nil {
			return nil, err
		}
		if err := manager.RegisterClient(config.Env.DefaultLLMClient, cfg); err != nil {
			return nil, fmt.Errorf("register %s client: %w", config.Env.DefaultLLMClient, err)
		}
		return manager, nil
	}); err != nil {
		log.Fatal().Err(err).Msg("Failed to provide LLM manager")
	}

	if err := DiContainer.Provide(func(manager *llm.Manager) (llm.Client, error) {
		return manager.GetClient(config.Env.DefaultLLMClient)
	}); err != nil {
		log.Fatal().Err(err).Msg("Failed to provide LLM client")
	}

	// Provide services
	if err := DiContainer.Provide(services.NewDocumentTools); err != nil {
		log.Fatal().Err(err).Msg("Failed to provide document tools")
	}
	if err := DiContainer.Provide(services.NewChatOrchestrator); err != nil {
		log.Fatal().Err(err).Msg("Failed to provide chat orchestrator")
	}
	if err := DiContainer.Provide(services.NewDocumentBootstrap); err != nil {
		log.Fatal().Err(err).Msg("Failed to provide document bootstrap")
	}
	if err := DiContainer.Provide(services.NewConversationService); err != nil {
		log.Fatal().Err(err).Msg("Failed to provide conversation service")
	}

	// Provide handlers
	if err := DiContainer.Provide(handlers.NewConversationHandler); err != nil {
		log.Fatal().Err(err).Msg("Failed to provide conversation handler")
	}
}

func defaultLLMConfig() (llm.Config, error) {
	switch config.Env.DefaultLLMClient {
	case constants.OpenAI:
		return llm.Config{
			Provider:            constants.OpenAI,
			Model:               config.Env.OpenAIModel,
			APIKey:              config.Env.OpenAIAPIKey,
			MaxCompletionTokens: config.Env.OpenAIMaxCompletionTokens,
			Temperature:         config.Env.OpenAITemperature,
		}, nil
	case constants.Gemini:
		return llm.Config{
			Provider:            constants.Gemini,
			Model:               config.Env.GeminiModel,
			APIKey:              config.Env.GeminiAPIKey,
			MaxCompletionTokens: config.Env.GeminiMaxCompletionTokens,
			Temperature:         config.Env.GeminiTemperature,
		}, nil
	}
	return llm.Config{}, fmt.Errorf("unsupported LLM client %q", config.Env.DefaultLLMClient)
}

// GetConversationHandler retrieves the ConversationHandler from the DI container
func GetConversationHandler() (*handlers.ConversationHandler, error) {
	var handler *handlers.ConversationHandler
	err := DiContainer.Invoke(func(h *handlers.ConversationHandler) {
		handler = h
	})
	if err != nil {
		return nil, err
	}
	return handler, nil
}

// GetDatabase returns the store handle so it can be closed on shutdown.
func GetDatabase() (*gorm.DB, error) {
	var db *gorm.DB
	err := DiContainer.Invoke(func(d *gorm.DB) {
		db = d
	})
	return db, err
}
