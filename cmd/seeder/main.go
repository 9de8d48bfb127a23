// Copyright 2025 Lexemic Labs
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.


// Bulk-loads a knowledge base for local experiments: either the built-in
// fixtures or one resource per non-blank line of a source file.
package main

import (
	"bufio"
	"context"
	"flag"
	"iter"
	"log/slog"
	"os"
	"strings"

	"github.com/lexemic/recall"
	"github.com/lexemic/recall/ingestion"
	"github.com/lexemic/recall/seed"
)

var (
	seedFileName = flag.String("src", "", "file of seed data, one resource per line")
	dbPath       = flag.String("db", "./recall_db", "path to BadgerDB database directory")
)

func init() {
	handler := slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	})
	slog.SetDefault(slog.New(handler))
	flag.Parse()
}

// linesFromFile returns an iterator over non-blank lines in a file.
func linesFromFile(filename string) (iter.Seq[string], error) {
	f, err := os.Open(filename)
	if err != nil {
		return nil, err
	}

	return func(yield func(string) bool) {
		defer f.Close()
		scanner := bufio.NewScanner(f)
		for scanner.Scan() {
			line := strings.TrimSpace(scanner.Text())
			if line == "" {
				continue
			}
			if !yield(line) {
				return
			}
		}
	}, nil
}

// ingestLines bulk-ingests one resource per line over the pipeline's
// worker pool. Resource IDs are derived from content, so re-running on
// the same file reports duplicates rather than double-inserting.
func ingestLines(ctx context.Context, pipeline *ingestion.Pipeline, source iter.Seq[string]) error {
	var items []ingestion.Item
	for line := range source {
		items = append(items, ingestion.Item{Content: line})
	}
	return pipeline.IngestMany(ctx, items)
}

func main() {
	db, err := recall.NewDatabase(*dbPath)
	if err != nil {
		panic(err)
	}
	defer db.Close()

	pipeline, err := db.NewIngestionPipeline()
	if err != nil {
		panic(err)
	}
	defer pipeline.Release()

	ctx := context.Background()

	if *seedFileName != "" {
		source, err := linesFromFile(*seedFileName)
		if err != nil {
			panic(err)
		}
		if err := ingestLines(ctx, pipeline, source); err != nil {
			slog.Error("bulk ingest finished with errors", "err", err)
			os.Exit(1)
		}
		return
	}

	seeder, err := seed.NewSeeder(db.ResourceRepository(), pipeline)
	if err != nil {
		panic(err)
	}
	if err := seeder.Seed(ctx, seed.DefaultFixtures()); err != nil {
		panic(err)
	}
}
