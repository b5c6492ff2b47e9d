package main

import (
	"errors"
	"fmt"
	"strconv"

	"github.com/klauspost/cpuid/v2"
)

// errUsage is returned for a wrong number of positional arguments.
var errUsage = errors.New("expected <batch_size> <epochs>")

type runArgs struct {
	batchSize int
	epochs    int
}

// layer is one entry of the benchmark topology.
type layer struct {
	nodes      int
	activation string
}

// topology is the benchmark network: banknote features in, two classes out.
var topology = []layer{
	{4, "linear"},
	{5, "lecun_tanh"},
	{2, "linear"},
}

func parseArgs(args []string) (runArgs, error) {
	if len(args) != 2 {
		return runArgs{}, fmt.Errorf("%w, got %d arguments", errUsage, len(args))
	}
	batch, err := positive("batch_size", args[0])
	if err != nil {
		return runArgs{}, err
	}
	epochs, err := positive("epochs", args[1])
	if err != nil {
		return runArgs{}, err
	}
	return runArgs{batchSize: batch, epochs: epochs}, nil
}

func positive(name, s string) (int, error) {
	v, err := strconv.Atoi(s)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", name, err)
	}
	if v <= 0 {
		return 0, fmt.Errorf("%s must be positive, got %d", name, v)
	}
	return v, nil
}

// describeCPU summarizes the host features relevant to the matrix kernels.
func describeCPU() string {
	return fmt.Sprintf("%s, %d cores / %d threads, AVX2=%t FMA3=%t",
		cpuid.CPU.BrandName, cpuid.CPU.PhysicalCores, cpuid.CPU.LogicalCores,
		cpuid.CPU.Supports(cpuid.AVX2), cpuid.CPU.Supports(cpuid.FMA3))
}

// parallelHost reports whether elementwise work should be split across cores.
func parallelHost() bool {
	return cpuid.CPU.LogicalCores > 1
}
