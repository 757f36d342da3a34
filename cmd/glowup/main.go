package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"net/http"
	"time"

	"go.mongodb.org/mongo-driver/mongo"
	mongooptions "go.mongodb.org/mongo-driver/mongo/options"

	"github.com/venuslab/glowup/api"
	"github.com/venuslab/glowup/internal/config"
	"github.com/venuslab/glowup/internal/utils"
	"github.com/venuslab/glowup/pkg/catalog"
	"github.com/venuslab/glowup/pkg/client"
	"github.com/venuslab/glowup/pkg/gemini"
	"github.com/venuslab/glowup/pkg/history"
	"github.com/venuslab/glowup/pkg/landmark"
	"github.com/venuslab/glowup/pkg/ollama"
	"github.com/venuslab/glowup/pkg/types"
)

func main() {
	var configPath, addr, backend, lang string

	flag.StringVar(&configPath, "config", "", "path to config file (defaults to "+config.GetConfigPath()+")")
	flag.StringVar(&addr, "addr", "", "listen address override (e.g. :8080)")
	flag.StringVar(&backend, "backend", "", "analysis backend override: gemini or ollama")
	flag.StringVar(&lang, "lang", "", "default journey language: en or zh (persisted)")
	flag.Parse()

	cfg := loadConfig(configPath)
	if addr != "" {
		cfg.Server.Addr = addr
	}
	if backend != "" {
		cfg.AI.Backend = backend
	}
	if err := cfg.Validate(); err != nil {
		log.Fatalf("invalid configuration: %v", err)
	}

	prefs := loadPreferences(lang)

	ctx := context.Background()

	ai, err := gemini.NewClient(ctx, cfg.AI.GeminiAPIKey)
	if err != nil {
		log.Fatalf("failed to create gemini client: %v", err)
	}
	defer ai.Close()

	// The backend flag only swaps the analysis stage; styling plans,
	// the image transform and the consultation chat stay on gemini.
	var analyzer client.FaceAnalyzer = ai
	if cfg.AI.Backend == "ollama" {
		analyzer, err = ollama.NewClient(cfg.AI.OllamaURL, cfg.AI.OllamaModel)
		if err != nil {
			log.Fatalf("failed to create ollama client: %v", err)
		}
		log.Printf("using ollama analysis backend at %s", cfg.AI.OllamaURL)
	}

	landmarks := landmark.New(func() (landmark.PointDetector, error) {
		if cfg.AI.LandmarkURL == "" {
			return nil, fmt.Errorf("no landmark service configured")
		}
		return landmark.NewServiceClient(cfg.AI.LandmarkURL)
	})

	catalogStore, historyStore := connectMongo(ctx, cfg)

	server := api.NewServer(api.Options{
		Analyzer:    analyzer,
		Planner:     ai,
		Transformer: ai,
		Consultant:  ai,
		Landmarks:   landmarks,
		Catalog:     catalogStore,
		History:     historyStore,
		JWTSecret:   cfg.Server.JWTSecret,
		Language:    prefs.Language,
		OutputDir:   cfg.Output.Dir,
	})

	log.Printf("glowup listening on %s", cfg.Server.Addr)
	if err := http.ListenAndServe(cfg.Server.Addr, server.Routes()); err != nil {
		log.Fatalf("server failed: %v", err)
	}
}

func loadConfig(path string) *config.Config {
	if path == "" {
		path = config.GetConfigPath()
	}
	cfg := config.Default()
	if utils.FileExists(path) {
		loaded, err := config.LoadFromFile(path)
		if err != nil {
			log.Fatalf("failed to load config: %v", err)
		}
		cfg = loaded
	}
	cfg.ApplyEnv()
	return cfg
}

func loadPreferences(langFlag string) *config.Preferences {
	path := config.GetPreferencesPath()
	prefs, err := config.LoadPreferences(path)
	if err != nil {
		log.Printf("failed to load preferences, using defaults: %v", err)
		prefs = config.DefaultPreferences()
	}
	if langFlag == string(types.LangEnglish) || langFlag == string(types.LangChinese) {
		prefs.Language = types.Language(langFlag)
		if err := prefs.Save(path); err != nil {
			log.Printf("failed to persist preferences: %v", err)
		}
	}
	return prefs
}

// connectMongo connects to the database. A failed connection is not
// fatal: the built-in style catalog takes over and history is
// disabled.
func connectMongo(ctx context.Context, cfg *config.Config) (catalog.Store, history.Store) {
	connectCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	mongoClient, err := mongo.Connect(connectCtx, mongooptions.Client().ApplyURI(cfg.Mongo.URI))
	if err == nil {
		err = mongoClient.Ping(connectCtx, nil)
	}
	if err != nil {
		log.Printf("mongodb unavailable, running with built-in catalog and no history: %v", err)
		return nil, nil
	}
	log.Println("connected to MongoDB")

	db := mongoClient.Database(cfg.Mongo.Database)
	return catalog.NewMongoStore(db.Collection(cfg.Mongo.StylesCollection)),
		history.NewMongoStore(db.Collection(cfg.Mongo.HistoryCollection))
}
