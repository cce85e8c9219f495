package bootstrap

import (
	"context"
	"fmt"
	"log"

	"persuasive-dialogue-be/internal/config"
	"persuasive-dialogue-be/internal/controller"
	"persuasive-dialogue-be/internal/model"
	"persuasive-dialogue-be/internal/pkg/logger"
	"persuasive-dialogue-be/internal/repository/contract"
	"persuasive-dialogue-be/internal/repository/implementation"
	"persuasive-dialogue-be/internal/repository/memory"
	"persuasive-dialogue-be/internal/repository/redisrepo"
	"persuasive-dialogue-be/internal/service"
	"persuasive-dialogue-be/pkg/database"
	"persuasive-dialogue-be/pkg/events"
	"persuasive-dialogue-be/pkg/llm/factory"
	"persuasive-dialogue-be/pkg/rag/evidence"
	"persuasive-dialogue-be/pkg/rag/policy"
	"persuasive-dialogue-be/pkg/rag/trigger"

	pktNats "persuasive-dialogue-be/pkg/nats"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	"github.com/redis/go-redis/v9"
)

// DialogueEventsTopic is the in-process topic the audit consumer reads
const DialogueEventsTopic = "dialogue.events"

type Container struct {
	// Controllers
	DialogueController controller.IDialogueController

	// Background Services (Exposed for main.go to run)
	ConsumerService service.IConsumerService

	closers []func()
}

func NewContainer(cfg *config.Config) (*Container, error) {
	c := &Container{}

	// 1. Loggers
	sysLogger := logger.NewZapLogger(cfg.App.LogFilePath, cfg.IsProduction())
	auditLogger := logger.NewIsolatedLogger(cfg.App.AuditLogFilePath)
	c.closers = append(c.closers, func() {
		_ = sysLogger.Sync()
		_ = auditLogger.Sync()
	})

	// 2. Event Bus
	pubSub := gochannel.NewGoChannel(
		gochannel.Config{},
		watermill.NewStdLogger(false, false),
	)
	c.closers = append(c.closers, func() { _ = pubSub.Close() })

	publishers := events.Multi{service.NewPublisherService(DialogueEventsTopic, pubSub)}

	if cfg.App.NatsURL != "" {
		natsPub, err := pktNats.NewPublisher(cfg.App.NatsURL)
		if err != nil {
			log.Printf("[WARN] Failed to connect to NATS Publisher: %v", err)
		} else {
			publishers = append(publishers, natsPub)
			c.closers = append(c.closers, natsPub.Close)
		}
	}

	c.ConsumerService = service.NewConsumerService(pubSub, DialogueEventsTopic, auditLogger)

	// 3. Decision engine
	llmProvider, err := factory.NewLLMProvider(llmConfig(cfg.Ai))
	if err != nil {
		return nil, fmt.Errorf("failed to initialize LLM provider: %w", err)
	}
	if llmProvider == nil {
		log.Printf("[INFO] Trigger classifier runs on keyword rules only")
	} else {
		log.Printf("[INFO] Using LLM Provider: %s (%s)", cfg.Ai.LLMProvider, cfg.Ai.LLMModel)
	}

	classifier := trigger.NewClassifier(llmProvider, trigger.Config{
		MaxTokens: cfg.Ai.ClassifierTokens,
		Timeout:   cfg.Ai.ClassifierTimeout,
	}, sysLogger, publishers)

	retrievalConfig := cfg.Retrieval.EvidenceConfig()
	backend := evidence.NewClient(cfg.Retrieval.BackendURL, cfg.Retrieval.APIKey, cfg.Retrieval.Timeout)
	retriever := evidence.NewRetriever(backend, retrievalConfig, sysLogger, publishers)

	engine := policy.NewPolicy(classifier, retriever, retrievalConfig, sysLogger, publishers)

	// 4. Session storage
	sessionRepo, err := c.newSessionRepository(cfg)
	if err != nil {
		c.Close()
		return nil, err
	}
	log.Printf("[INFO] Using session store: %s", cfg.App.SessionStore)

	// 5. Services & Controllers
	dialogueService := service.NewDialogueService(sessionRepo, engine, cfg.Validate, auditLogger, sysLogger)
	c.DialogueController = controller.NewDialogueController(dialogueService)

	return c, nil
}

func (c *Container) newSessionRepository(cfg *config.Config) (contract.SearchSessionRepository, error) {
	switch cfg.App.SessionStore {
	case "redis":
		opt, err := redis.ParseURL(cfg.App.RedisURL)
		if err != nil {
			log.Printf("[WARN] Failed to parse Redis URL: %v. Using direct Addr", err)
			opt = &redis.Options{Addr: cfg.App.RedisURL}
		}
		rdb := redis.NewClient(opt)
		if _, err := rdb.Ping(context.Background()).Result(); err != nil {
			log.Printf("[WARN] Failed to connect to Redis: %v", err)
		}
		c.closers = append(c.closers, func() { _ = rdb.Close() })
		return redisrepo.NewSessionRepository(rdb, cfg.App.SessionTTL), nil

	case "postgres":
		db, err := database.NewGormDBFromDSN(cfg.Database.Connection, cfg.IsProduction(), &model.SearchSession{})
		if err != nil {
			return nil, fmt.Errorf("unable to connect to GORM DB: %w", err)
		}
		if sqlDB, err := db.DB(); err == nil {
			c.closers = append(c.closers, func() { _ = sqlDB.Close() })
		}
		return implementation.NewSearchSessionRepository(db), nil

	default:
		return memory.NewSessionRepository(cfg.App.SessionTTL), nil
	}
}

func llmConfig(ai config.AIConfig) factory.Config {
	cfg := factory.Config{
		Provider: ai.LLMProvider,
		Model:    ai.LLMModel,
	}
	switch ai.LLMProvider {
	case "ollama":
		cfg.BaseURL = ai.OllamaBaseURL
	case "huggingface":
		cfg.APIKey = ai.HuggingFaceAPIKey
	case "openai":
		cfg.BaseURL = ai.OpenAIBaseURL
		cfg.APIKey = ai.OpenAIAPIKey
	}
	return cfg
}

// Close releases connections in reverse order of creation
func (c *Container) Close() {
	for i := len(c.closers) - 1; i >= 0; i-- {
		c.closers[i]()
	}
}
