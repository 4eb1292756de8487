package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"Stairs/internal/auth"
	"Stairs/internal/calc/stairs"
	"Stairs/internal/catalog"
	"Stairs/internal/config"
	"Stairs/internal/repo"
	"Stairs/internal/tgbot"
)

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	cfg, err := config.Load()
	if err != nil {
		log.Fatal("config: ", err)
	}
	if cfg.BotToken == "" {
		log.Fatal("TOKEN_BOT missing")
	}

	store := &catalog.Store{}
	var loader catalog.Loader = catalog.WorkbookLoader{Path: cfg.CatalogPath}
	if cfg.DatabaseURL != "" {
		db, err := auth.InitDB(cfg.DatabaseURL)
		if err != nil {
			log.Fatal("База не отвечает: ", err)
		}
		defer db.Close()
		loader = repo.NewPostgresCatalogDB(db)
	}
	refresher := &catalog.Refresher{Store: store, Loader: loader, Interval: cfg.CatalogRefresh}
	refresher.LoadInitial(ctx)
	go refresher.Run(ctx)

	bot := tgbot.New(stairs.NewCalculator(store, cfg.StepHeightMM), store)
	log.Println("Bot started")
	tgbot.Run(ctx, tgbot.NewClient(cfg.BotToken), bot)
	log.Println("Bot stopped")
}
