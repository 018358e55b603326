package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"github.com/anthropics/feishu-guard/classifier"
	"github.com/anthropics/feishu-guard/feishu"
	"github.com/anthropics/feishu-guard/internal/biz/usecase"
	"github.com/anthropics/feishu-guard/internal/conf"
	"github.com/anthropics/feishu-guard/internal/data"
	"github.com/anthropics/feishu-guard/internal/server"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using environment variables")
	}

	cfg := conf.LoadFromEnv()
	if err := cfg.Validate(); err != nil {
		log.Fatalf("Invalid configuration: %v", err)
	}

	feishuClient := feishu.NewClient(cfg.Feishu.AppID, cfg.Feishu.AppSecret)

	var classifierClient *classifier.Client
	if cfg.Classifier.APIKey != "" {
		classifierClient = classifier.NewClient(cfg.Classifier.APIKey, cfg.Classifier.Model, cfg.Classifier.BaseURL)
	} else {
		log.Println("CLASSIFIER_API_KEY not set, semantic classification disabled")
	}

	repos, err := data.NewRepositories(feishuClient, classifierClient, usecase.RulesText, cfg.AuditDBPath)
	if err != nil {
		log.Fatalf("Failed to create repositories: %v", err)
	}

	guardCfg := cfg.ToGuardConfig()
	rules := usecase.NewRuleEngine(cfg.Guard.ForbiddenWords, cfg.Guard.DangerousWords)
	actions := usecase.NewActionExecutor(guardCfg, repos.Platform, repos.Audit, nil)
	moderation := usecase.NewModerationUsecase(guardCfg, rules, repos.State, repos.Classifier, actions, nil)
	commands := usecase.NewCommandUsecase(guardCfg, repos.State, repos.Platform, actions, nil)

	srv := server.NewGuardServer(feishuClient, moderation, commands)

	// Liveness + metrics endpoint for the uptime monitor
	httpSrv := server.NewHTTPServer()
	server.StartHTTPServer(httpSrv, cfg.Port)

	// Graceful shutdown
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		<-sigCh
		fmt.Println("\nShutting down...")
		srv.Stop()
		if repos.Audit != nil {
			_ = repos.Audit.Close()
		}
		os.Exit(0)
	}()

	// Tell the admins the guard is back up
	actions.AlertAdmins(context.Background(), "Guard bot restarted and is now running.")

	fmt.Println("Starting Feishu Guard...")
	if err := srv.Start(); err != nil {
		log.Fatalf("Server error: %v", err)
	}
}
