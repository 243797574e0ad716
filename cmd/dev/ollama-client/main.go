package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"time"

	"github.com/jackgladowsky/tierjobs/pkg/ollama"
)

// Quick manual check of a local ollama install: lists available models and
// runs one generation with the configured model.
func main() {
	var (
		baseURL = flag.String("url", "http://localhost:11434", "ollama base URL")
		model   = flag.String("model", "llama3", "model to generate with")
		prompt  = flag.String("prompt", "Suggest three search queries a new grad might type into a tech job board.", "prompt to send")
	)
	flag.Parse()

	cfg := ollama.DefaultConfig()
	cfg.BaseURL = *baseURL
	cfg.Model = *model
	cfg.Timeout = 60 * time.Second

	client, err := ollama.NewDefaultClient(cfg)
	if err != nil {
		log.Fatal(err)
	}
	defer client.Close()

	ctx := context.Background()

	models, err := client.ListModels(ctx)
	if err != nil {
		log.Fatalf("listing models: %v", err)
	}
	fmt.Println("models:")
	for _, m := range models {
		fmt.Printf("  %s\n", m)
	}

	resp, err := client.Generate(ctx, *model, *prompt)
	if err != nil {
		log.Fatalf("generate: %v", err)
	}
	fmt.Printf("\n%s\n\nmeta: %v\n", resp.Text, resp.Meta)
}
