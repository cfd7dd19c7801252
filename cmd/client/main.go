package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	log "github.com/sirupsen/logrus"
	"github.com/spf13/pflag"

	"fedclassroom/internal/adapters/secondary/flclient"
	"fedclassroom/internal/adapters/secondary/localstore"
	"fedclassroom/internal/config"
	"fedclassroom/internal/core/domain"
	"fedclassroom/internal/core/learning"
	"fedclassroom/internal/core/services"
)

const usage = `usage: client <command> [flags]

commands:
  train   run one federated round on the local dataset
  track   read focus events (JSON lines) from stdin, record sessions
          and train periodically
`

func main() {
	if len(os.Args) < 2 {
		fmt.Fprint(os.Stderr, usage)
		os.Exit(2)
	}
	cmd := os.Args[1]

	fs := newFlagSet(cmd)
	if err := fs.Parse(os.Args[2:]); err != nil {
		os.Exit(2)
	}

	cfg, err := config.LoadWithFlags(fs)
	if err != nil {
		log.Fatalf("load config: %v", err)
	}
	initLogger(cfg)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	client := flclient.NewClient(&cfg.Federation)
	dataset := localstore.NewDataset(cfg.Tracker.DatasetPath)
	trainer := services.NewLocalTrainingService(client, learning.TrainOptions{
		Epochs:       cfg.Federation.LocalEpochs,
		LearningRate: cfg.Federation.LearningRate,
	})
	tracker := services.NewTrackerService(services.TrackerOptions{
		UserID:      cfg.Tracker.UserID,
		MinDuration: cfg.Tracker.MinSessionDuration,
		TrainEvery:  cfg.Tracker.TrainEvery,
		MinSamples:  cfg.Tracker.MinSamples,
		Report:      cfg.Tracker.ReportActivities,
	}, dataset, client, trainer)

	switch cmd {
	case "train":
		err = runTrain(ctx, tracker)
	case "track":
		sessions := services.NewSessionTracker(cfg.Tracker.UserID, cfg.Tracker.MinSessionDuration)
		err = runTrack(ctx, os.Stdin, sessions, tracker)
	default:
		fmt.Fprint(os.Stderr, usage)
		os.Exit(2)
	}
	if err != nil {
		log.WithError(err).Fatal(cmd + " failed")
	}
}

func newFlagSet(cmd string) *pflag.FlagSet {
	fs := pflag.NewFlagSet(cmd, pflag.ContinueOnError)
	fs.String("server-url", "", "federation server base URL")
	fs.Duration("timeout", 0, "per-request timeout, 0 for none")
	fs.Int("epochs", 0, "local training epochs")
	fs.Float64("learning-rate", 0, "local SGD learning rate")
	fs.String("dataset", "", "path of the local activity dataset")
	fs.String("log-level", "", "log level")
	fs.String("log-format", "", "log format: json or text")
	if cmd == "track" {
		fs.Int64("user-id", 0, "student id reported with activities")
		fs.Int("train-every", 0, "train after every N recorded activities")
		fs.Int("min-samples", 0, "minimum dataset size before training")
		fs.Bool("report", true, "report activities to the classroom server")
	}
	return fs
}

func runTrain(ctx context.Context, tracker *services.TrackerService) error {
	round, err := tracker.TrainNow(ctx)
	if err != nil {
		if errors.Is(err, domain.ErrNoLocalData) {
			log.Warn("local dataset is empty, record some activity first")
		}
		return err
	}

	log.WithFields(log.Fields{
		"model_version":  round.ModelVersion,
		"samples":        round.Samples,
		"local_accuracy": round.LocalAccuracy,
		"duration":       round.Duration,
	}).Info("federated round finished")
	return nil
}

func initLogger(cfg *config.Config) {
	level, err := log.ParseLevel(cfg.Logger.Level)
	if err != nil {
		level = log.InfoLevel
	}
	log.SetLevel(level)

	if cfg.Logger.Format == "json" {
		log.SetFormatter(&log.JSONFormatter{})
	} else {
		log.SetFormatter(&log.TextFormatter{FullTimestamp: true})
	}
}
