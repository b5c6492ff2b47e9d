// Package main provides the jacobian benchmarking CLI.
//
// Usage:
//
//	jacobian [flags] <batch_size> <epochs>
//
// It trains a 4-5-2 network (linear, lecun_tanh, linear) on a banknote-style
// dataset and prints the wall-clock seconds of the whole run.
package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"strings"
	"time"

	"github.com/jacobian-ml/jacobian/nn"
	"github.com/jacobian-ml/jacobian/optim"
)

func main() {
	dataPath := flag.String("data", "data_banknote_authentication.txt", "Training set, four features and a label per line")
	testPath := flag.String("test", "", "Test set scored after training (default: none)")
	optName := flag.String("optimizer", "momentum", "Update rule: "+strings.Join(optim.Names(), ", "))
	seed := flag.Uint64("seed", 0, "Seed for weights and shuffling (0 = random)")
	savePath := flag.String("save", "", "Write a SafeTensors checkpoint after training")
	fastExp := flag.Bool("fastexp", false, "Use the approximate exponential in activations")
	verbose := flag.Bool("v", false, "Log the host CPU and every epoch")
	flag.Usage = usage
	flag.Parse()

	run, err := parseArgs(flag.Args())
	if err != nil {
		fmt.Fprintf(os.Stderr, "jacobian: %v\n", err)
		flag.Usage()
		os.Exit(1)
	}

	opt, err := optim.Parse(*optName)
	if err != nil {
		log.Fatalf("Invalid optimizer: %v", err)
	}

	logger := log.New(os.Stderr, "", log.LstdFlags)
	if *verbose {
		logger.Printf("cpu: %s", describeCPU())
	}

	start := time.Now()
	cfg := nn.Config{
		BatchSize: run.batchSize,
		Optimizer: opt,
		Seed:      *seed,
		FastExp:   *fastExp,
		Parallel:  parallelHost(),
	}
	if *verbose {
		cfg.Logger = logger
	}

	net, err := nn.NewNetwork(*dataPath, cfg)
	if err != nil {
		log.Fatalf("Failed to load training set: %v", err)
	}
	defer func() {
		_ = net.Close()
	}()

	for _, l := range topology {
		if err := net.AddLayer(l.nodes, l.activation); err != nil {
			log.Fatalf("Failed to add layer: %v", err)
		}
	}
	if err := net.Initialize(); err != nil {
		log.Fatalf("Failed to initialize network: %v", err)
	}
	if *verbose {
		logger.Printf("network: %s", net)
	}

	stats, err := net.Train(run.epochs)
	if err != nil {
		log.Fatalf("Training failed: %v", err)
	}
	if len(stats) > 0 && !*verbose {
		last := stats[len(stats)-1]
		logger.Printf("final epoch: cost %.4f - acc %.4f", last.Cost, last.Accuracy)
	}

	if *testPath != "" {
		acc, err := net.Test(*testPath)
		if err != nil {
			log.Fatalf("Evaluation failed: %v", err)
		}
		logger.Printf("test accuracy: %.4f", acc)
	}
	if *savePath != "" {
		if err := net.Save(*savePath); err != nil {
			log.Fatalf("Failed to save checkpoint: %v", err)
		}
	}

	fmt.Printf("%.6f\n", time.Since(start).Seconds())
}

func usage() {
	fmt.Fprintf(flag.CommandLine.Output(), "Usage: %s [flags] <batch_size> <epochs>\n\nFlags:\n", os.Args[0])
	flag.PrintDefaults()
}
