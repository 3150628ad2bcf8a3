// Package main provides a tool to seed the database with starter directory data.
//
// It creates a curator account, the default category tree, and a handful of
// published demo tools so a fresh install has something to browse. Seeding is
// recorded in the database and skipped on subsequent runs unless --force is set.
//
// Usage:
//
//	DATA_PATH=~/tooldex go run ./cmd/seed
//	DATA_PATH=~/tooldex go run ./cmd/seed --force
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"time"

	"github.com/tooldexapp/tooldex-server/internal/auth"
	"github.com/tooldexapp/tooldex-server/internal/domain"
	"github.com/tooldexapp/tooldex-server/internal/id"
	"github.com/tooldexapp/tooldex-server/internal/store"
	"github.com/tooldexapp/tooldex-server/internal/util"
)

const seedVersion = 1

var force = flag.Bool("force", false, "Reseed even if the database was seeded before")

// seedCategory is a starter category definition.
type seedCategory struct {
	Name        string
	Description string
	Icon        string
}

var defaultCategories = []seedCategory{
	{"Writing Assistants", "Drafting, rewriting, and editing copilots", "pen"},
	{"Agents", "Autonomous and semi-autonomous task runners", "robot"},
	{"Image Generation", "Text-to-image and image editing models", "image"},
	{"Developer Tools", "Code generation, review, and debugging helpers", "code"},
	{"Chatbots", "Conversational assistants and support bots", "chat"},
	{"Productivity", "Summarizers, schedulers, and inbox tamers", "bolt"},
}

// seedTool is a starter tool definition. Category is matched by name.
type seedTool struct {
	Name        string
	Tagline     string
	Description string
	WebsiteURL  string
	Category    string
	Tags        []string
	TechStack   []string
	Pricing     domain.PricingModel
	Featured    bool
}

var demoTools = []seedTool{
	{
		Name:        "Brief Bot",
		Tagline:     "Summarize anything in seconds",
		Description: "Paste a link or a wall of text and get a clean, structured brief. Handles articles, transcripts, and PDFs.",
		WebsiteURL:  "https://briefbot.example.com",
		Category:    "Productivity",
		Tags:        []string{"summarization", "reading"},
		TechStack:   []string{"GPT-4o"},
		Pricing:     domain.PricingFreemium,
		Featured:    true,
	},
	{
		Name:        "Prompt Forge",
		Tagline:     "Version control for your prompts",
		Description: "Draft, test, and diff prompt variants side by side. Ships with a regression runner for model upgrades.",
		WebsiteURL:  "https://promptforge.example.com",
		Category:    "Developer Tools",
		Tags:        []string{"prompts", "testing"},
		TechStack:   []string{"Claude", "TypeScript"},
		Pricing:     domain.PricingSubscription,
	},
	{
		Name:        "Inbox Pilot",
		Tagline:     "Your email, triaged before breakfast",
		Description: "Labels, drafts replies, and schedules follow-ups across Gmail and Outlook. You stay in the loop on anything important.",
		WebsiteURL:  "https://inboxpilot.example.com",
		Category:    "Productivity",
		Tags:        []string{"email", "automation"},
		TechStack:   []string{"GPT-4o", "Go"},
		Pricing:     domain.PricingSubscription,
	},
	{
		Name:        "Sketchwright",
		Tagline:     "Concept art from a sentence",
		Description: "Generates style-consistent concept art boards from short briefs. Exports layered files for further editing.",
		WebsiteURL:  "https://sketchwright.example.com",
		Category:    "Image Generation",
		Tags:        []string{"art", "design"},
		TechStack:   []string{"Stable Diffusion"},
		Pricing:     domain.PricingPayPerUse,
	},
	{
		Name:        "Support Sidekick",
		Tagline:     "First-line support that knows your docs",
		Description: "Answers customer questions straight from your documentation and escalates gracefully when it is unsure.",
		WebsiteURL:  "https://supportsidekick.example.com",
		Category:    "Chatbots",
		Tags:        []string{"support", "docs"},
		TechStack:   []string{"Claude", "Python"},
		Pricing:     domain.PricingFreemium,
	},
	{
		Name:        "Outline Owl",
		Tagline:     "From idea to essay skeleton",
		Description: "Turns a topic and a few bullet points into a structured outline with suggested sources to cite.",
		WebsiteURL:  "https://outlineowl.example.com",
		Category:    "Writing Assistants",
		Tags:        []string{"writing", "outlines"},
		TechStack:   []string{"GPT-4o"},
		Pricing:     domain.PricingFree,
	},
}

func main() {
	flag.Parse()

	dataPath := os.Getenv("DATA_PATH")
	if dataPath == "" {
		dataPath = os.ExpandEnv("$HOME/tooldex")
	}
	dbPath := filepath.Join(dataPath, "db")

	fmt.Printf("Opening database at: %s\n", dbPath)

	s, err := store.New(dbPath, nil)
	if err != nil {
		log.Fatalf("Failed to open store: %v", err)
	}
	defer s.Close()

	info, err := s.SeedInfo()
	if err != nil {
		log.Fatalf("Failed to read seed marker: %v", err)
	}
	if info != nil && !*force {
		fmt.Printf("Database already seeded (version %d at %s), nothing to do\n", info.Version, info.SeededAt)
		return
	}

	ctx := context.Background()
	now := time.Now()

	curator, err := ensureCurator(ctx, s, now)
	if err != nil {
		log.Fatalf("Failed to create curator account: %v", err)
	}

	// Categories first so tools can reference them by ID.
	categoryIDs := make(map[string]string, len(defaultCategories))
	categoriesCreated := 0
	for _, sc := range defaultCategories {
		slug := util.Slugify(sc.Name)

		if existing, err := s.Categories.GetByIndex(ctx, "slug", slug); err == nil {
			categoryIDs[sc.Name] = existing.ID
			fmt.Printf("  Category %q already exists, skipping\n", sc.Name)
			continue
		}

		cat := &domain.Category{
			Record:      domain.Record{ID: id.MustGenerate("cat"), CreatedAt: now, UpdatedAt: now},
			Name:        sc.Name,
			Slug:        slug,
			Description: sc.Description,
			Icon:        sc.Icon,
		}
		if err := s.Categories.Create(ctx, cat.ID, cat); err != nil {
			log.Printf("  Failed to create category %q: %v", sc.Name, err)
			continue
		}
		categoryIDs[sc.Name] = cat.ID
		categoriesCreated++
		fmt.Printf("  Created category: %s\n", sc.Name)
	}

	toolsCreated := 0
	for _, st := range demoTools {
		slug := util.Slugify(st.Name)

		if _, err := s.Tools.GetByIndex(ctx, "slug", slug); err == nil {
			fmt.Printf("  Tool %q already exists, skipping\n", st.Name)
			continue
		}

		tool := &domain.Tool{
			Record:       domain.Record{ID: id.MustGenerate("tool"), CreatedAt: now, UpdatedAt: now},
			OwnerID:      curator.ID,
			Name:         st.Name,
			Slug:         slug,
			Tagline:      st.Tagline,
			Description:  st.Description,
			WebsiteURL:   st.WebsiteURL,
			CategoryID:   categoryIDs[st.Category],
			Tags:         st.Tags,
			TechStack:    st.TechStack,
			PricingModel: st.Pricing,
			Status:       domain.StatusApproved,
			Visibility:   domain.VisibilityPublic,
			Featured:     st.Featured,
		}
		if err := s.Tools.Create(ctx, tool.ID, tool); err != nil {
			log.Printf("  Failed to create tool %q: %v", st.Name, err)
			continue
		}
		toolsCreated++
		fmt.Printf("  Created tool: %s\n", st.Name)
	}

	if err := s.MarkSeeded(store.SeedInfo{
		Version:    seedVersion,
		SeededAt:   now.Format(time.RFC3339),
		Categories: categoriesCreated,
		Tools:      toolsCreated,
	}); err != nil {
		log.Fatalf("Failed to record seed marker: %v", err)
	}

	// The server rebuilds an empty search index from the store on its next
	// start, so seeded tools become searchable without touching Bleve here.
	fmt.Printf("\nSeeding complete: %d categories, %d tools\n", categoriesCreated, toolsCreated)
}

// ensureCurator returns the curator account, creating it on first run.
func ensureCurator(ctx context.Context, s *store.Store, now time.Time) (*domain.User, error) {
	const curatorEmail = "curators@tooldex.app"

	if existing, err := s.Users.GetByIndex(ctx, "email", curatorEmail); err == nil {
		return existing, nil
	}

	hash, err := auth.HashPassword(id.MustGenerate("pw"))
	if err != nil {
		return nil, err
	}

	curator := &domain.User{
		Record:       domain.Record{ID: id.MustGenerate("usr"), CreatedAt: now, UpdatedAt: now},
		Email:        curatorEmail,
		PasswordHash: hash,
		DisplayName:  "Tooldex Curators",
		Role:         domain.RoleAdmin,
	}
	if err := s.Users.Create(ctx, curator.ID, curator); err != nil {
		return nil, err
	}

	fmt.Printf("  Created curator account: %s\n", curatorEmail)
	return curator, nil
}
