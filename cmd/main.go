package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"proofd/internal/candidates"
	"proofd/internal/config"
	"proofd/internal/customdict"
	"proofd/internal/grammar"
	"proofd/internal/lexicon"
	"proofd/internal/ngram"
	"proofd/internal/pipeline"
	"proofd/internal/postag"
	"proofd/internal/server"
	"proofd/pkg/options"
)

func main() {
	configPath := flag.String("config", "", "path to config file")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		zap.NewExample().Fatal("failed to load config", zap.Error(err))
	}

	var logger *zap.Logger
	if cfg.Debug {
		logger, err = zap.NewDevelopment()
	} else {
		logger, err = zap.NewProduction()
	}
	if err != nil {
		os.Exit(1)
	}
	defer logger.Sync()

	// Static resources; a failure here is fatal, the engine cannot run
	// without them.
	model, err := ngram.Load(cfg.Resources.NgramPath)
	if err != nil {
		logger.Fatal("failed to load ngram counts", zap.Error(err))
	}
	lex, err := lexicon.Load(cfg.Resources.LexiconPath)
	if err != nil {
		logger.Fatal("failed to load lexicon", zap.Error(err))
	}
	logger.Info("resources loaded", zap.Int("lexicon_words", lex.Size()))

	gen := candidates.NewGenerator(
		options.WithMaxDictionaryEditDistance(cfg.Analysis.MaxEditDistance),
		options.WithPrefixLength(7),
		options.WithCountThreshold(1),
		options.WithMaxCandidates(cfg.Analysis.MaxCandidates),
	)
	for _, w := range lex.Words() {
		count := model.Freq(w)
		if count < 1 {
			count = 1
		}
		gen.AddEntry(w, count)
	}

	// User dictionary is optional; without Redis custom words are
	// in-memory only for the process lifetime.
	var dict *customdict.CustomDict
	if cfg.Redis.Addr != "" {
		client := redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		dict = customdict.New(client)
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		words, err := dict.All(ctx)
		cancel()
		if err != nil {
			logger.Fatal("failed to load user dictionary", zap.Error(err))
		}
		for _, w := range words {
			lex.AddUserWord(w)
			gen.AddEntry(w, 1_000_000_000)
		}
		logger.Info("user dictionary loaded", zap.Int("words", len(words)))
	}

	var annotator postag.Annotator
	var rules *grammar.Engine
	if cfg.Grammar.EnabledOrDefault() {
		annotator = postag.NewProseAnnotator()
		rules = grammar.NewEngine()
		for base, forms := range cfg.Grammar.IrregularVerbs {
			if len(forms) == 3 {
				rules.AddIrregular(base, forms[0], forms[1], forms[2])
			}
		}
	}

	analyzer := pipeline.NewAnalyzer(pipeline.Config{
		MaxEditDistance:   cfg.Analysis.MaxEditDistance,
		MaxCandidates:     cfg.Analysis.MaxCandidates,
		MinWordLength:     cfg.Analysis.MinWordLength,
		RealWordThreshold: cfg.Analysis.RealWordThreshold,
		RealWordGain:      cfg.Analysis.RealWordGain,
		TaggerTimeout:     time.Duration(cfg.Grammar.TaggerTimeoutMS) * time.Millisecond,
	}, lex, model, gen, annotator, rules, dict, logger)

	srv := server.NewServer(analyzer, lex, &cfg.Server, logger)

	done := make(chan os.Signal, 1)
	signal.Notify(done, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-done
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := srv.Stop(ctx); err != nil {
			logger.Error("shutdown error", zap.Error(err))
		}
	}()

	if err := srv.Start(); err != nil {
		logger.Info("server stopped", zap.Error(err))
	}
}
