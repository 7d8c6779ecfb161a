package main

import (
	"flag"
	"fmt"
	"path/filepath"

	"github.com/drakos74/ripper/infra/config"
	"github.com/drakos74/ripper/internal/dataset"
	"github.com/drakos74/ripper/internal/ripper"
	"github.com/drakos74/ripper/internal/storage"
	"github.com/drakos74/ripper/internal/storage/file/json"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

func init() {
	zerolog.SetGlobalLevel(zerolog.InfoLevel)
}

func main() {

	dataPath := flag.String("data", "", "csv training data with headers, class column designated by the grid")
	cfgPath := flag.String("config", "", "json hyperparameter config, canonical defaults when empty")
	outDir := flag.String("out", filepath.Join(storage.DefaultDir, storage.ModelsDir), "output directory for the trained model")
	label := flag.String("label", "model", "label for the stored artifact")
	flag.Parse()

	if *dataPath == "" {
		log.Fatal().Msg("no training data given")
	}

	cfg := ripper.Default()
	if *cfgPath != "" {
		config.MustLoad(*cfgPath, &cfg)
	}
	switch {
	case cfg.Verbosity > 1:
		zerolog.SetGlobalLevel(zerolog.TraceLevel)
	case cfg.Verbosity > 0:
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
	}

	trainer, err := ripper.New(cfg)
	if err != nil {
		log.Fatal().Err(err).Msg("invalid configuration")
	}

	set, err := dataset.FromCSV(*dataPath)
	if err != nil {
		log.Fatal().Err(err).Str("data", *dataPath).Msg("could not load training data")
	}
	log.Info().
		Int("rows", set.RowCount()).
		Int("attributes", set.AttributeCount()).
		Int("classes", set.ClassAttribute().Size()).
		Msg("loaded training data")

	m, err := trainer.FitModel(set)
	if err != nil {
		log.Fatal().Err(err).Msg("training failed")
	}

	if _, err := m.Evaluate(set); err != nil {
		log.Fatal().Err(err).Msg("evaluation failed")
	}
	log.Info().
		Float64("accuracy", m.Accuracy(set)).
		Int("rules", len(m.Rules())).
		Msg("trained model")

	fmt.Println(m.Render())

	records, err := m.Records()
	if err != nil {
		log.Fatal().Err(err).Msg("could not serialize model")
	}
	store := json.NewStore(*outDir)
	key := storage.Key{ID: uuid.New().String(), Label: *label}
	if err := store.Store(key, records); err != nil {
		log.Fatal().Err(err).Msg("could not store model")
	}
	log.Info().Str("id", key.ID).Str("dir", *outDir).Msg("stored model")
}
