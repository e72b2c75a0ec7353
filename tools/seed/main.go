package main

import (
	"context"
	"flag"
	"fmt"
	"math/rand"
	"os"
	"os/signal"
	"syscall"
	"time"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/basetide/activity-marts/internal/domain"
	"github.com/basetide/activity-marts/internal/store"
)

const (
	defaultDays         = 30
	defaultUsers        = 500
	defaultHosts        = 25
	defaultEventsPerDay = 2000
	defaultCreators     = 100
	defaultWorks        = 12
	defaultBatchSize    = 500
)

type Config struct {
	DSN          string
	StartDate    string
	Days         int
	Users        int
	Hosts        int
	EventsPerDay int
	MaxCopies    int // Max duplicate copies per raw event (1 = no duplicates)
	Creators     int
	WorksPerCrtr int
	YearFrom     int
	YearTo       int
	Seed         int64
	BatchSize    int
	Direct       bool // Write only web_events, skipping the raw feed
}

func main() {
	cfg := parseFlags()

	if cfg.DSN == "" {
		fmt.Println("Error: no database DSN; pass -dsn or put one in the config file")
		flag.Usage()
		os.Exit(1)
	}
	if cfg.YearTo < cfg.YearFrom {
		fmt.Println("Error: -year-to must not be before -year-from")
		os.Exit(1)
	}

	startDay, err := domain.ParseDate(cfg.StartDate)
	if err != nil {
		fmt.Printf("Error: invalid -start date: %v\n", err)
		os.Exit(1)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Handle graceful shutdown
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-sigChan
		fmt.Println("\n\nReceived interrupt signal, shutting down...")
		cancel()
	}()

	db, err := gorm.Open(postgres.Open(cfg.DSN), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	if err != nil {
		fmt.Printf("Error connecting to database: %v\n", err)
		os.Exit(1)
	}
	dataStore := store.NewPGStore(db)

	fmt.Printf("Seeding %d days of events from %s (%d users, %d hosts, ~%d events/day)\n",
		cfg.Days, startDay, cfg.Users, cfg.Hosts, cfg.EventsPerDay)
	if cfg.Direct {
		fmt.Println("Writing events to web_events only, skipping the raw feed")
	} else {
		fmt.Printf("Writing events to web_events plus duplicated raw copies to web_events_raw (up to %d each)\n", cfg.MaxCopies)
	}

	rng := rand.New(rand.NewSource(cfg.Seed))
	users := userPool(cfg.Users)
	hosts := hostPool(cfg.Hosts)

	start := time.Now()
	totalEvents := 0
	totalRaw := 0
	seq := int64(0)

	for i := 0; i < cfg.Days; i++ {
		select {
		case <-ctx.Done():
			fmt.Printf("\nInterrupted after %d days\n", i)
			os.Exit(1)
		default:
		}

		day := startDay.AddDays(i)
		events := generateDayEvents(rng, day, users, hosts, cfg.EventsPerDay)
		totalEvents += len(events)

		if err := dataStore.CreateWebEvents(ctx, events); err != nil {
			fmt.Printf("\nError writing events for %s: %v\n", day, err)
			os.Exit(1)
		}
		if !cfg.Direct {
			raw := duplicateEvents(rng, events, cfg.MaxCopies, &seq)
			totalRaw += len(raw)
			if err := db.WithContext(ctx).Table("web_events_raw").CreateInBatches(raw, cfg.BatchSize).Error; err != nil {
				fmt.Printf("\nError writing raw events for %s: %v\n", day, err)
				os.Exit(1)
			}
		}

		fmt.Printf("\rSeeding events... day %d/%d (%d events)    ", i+1, cfg.Days, totalEvents)
	}
	fmt.Println()

	fmt.Printf("Seeding %d creators with up to %d works each (%d..%d)\n",
		cfg.Creators, cfg.WorksPerCrtr, cfg.YearFrom, cfg.YearTo)

	totalWorks := 0
	for i, creatorID := range creatorPool(cfg.Creators) {
		select {
		case <-ctx.Done():
			fmt.Printf("\nInterrupted after %d creators\n", i)
			os.Exit(1)
		default:
		}

		works := generateCreatorWorks(rng, creatorID, cfg.WorksPerCrtr, cfg.YearFrom, cfg.YearTo)
		totalWorks += len(works)
		if err := dataStore.CreateCreatorWorks(ctx, works); err != nil {
			fmt.Printf("\nError writing works for %s: %v\n", creatorID, err)
			os.Exit(1)
		}

		fmt.Printf("\rSeeding works... creator %d/%d (%d works)    ", i+1, cfg.Creators, totalWorks)
	}
	fmt.Println()

	elapsed := time.Since(start)
	fmt.Printf("\nDone in %s\n", formatDuration(elapsed))
	fmt.Printf("  events:     %d (%s)\n", totalEvents, formatRate(totalEvents, elapsed))
	if !cfg.Direct {
		fmt.Printf("  raw copies: %d\n", totalRaw)
	}
	fmt.Printf("  works:      %d\n", totalWorks)

	fmt.Println("\nNext steps:")
	if !cfg.Direct {
		fmt.Println("  go run ./cmd/dedup-runner -source web_events")
	}
	fmt.Println("  go run ./cmd/activity-runner -backfill")
	fmt.Println("  go run ./cmd/history-runner -backfill")
	fmt.Println("  go run ./cmd/mart-audit")
}

func parseFlags() *Config {
	cfg := &Config{}

	flag.StringVar(&cfg.DSN, "dsn", "", "PostgreSQL DSN (required unless set in the config file)")
	flag.StringVar(&cfg.StartDate, "start", domain.DateOf(time.Now().UTC()).AddDays(-defaultDays).String(), "First day to generate events for (YYYY-MM-DD)")
	flag.IntVar(&cfg.Days, "days", defaultDays, "Number of consecutive days to generate")
	flag.IntVar(&cfg.Users, "users", defaultUsers, "Size of the user pool")
	flag.IntVar(&cfg.Hosts, "hosts", defaultHosts, "Size of the host pool")
	flag.IntVar(&cfg.EventsPerDay, "events-per-day", defaultEventsPerDay, "Events generated per day")
	flag.IntVar(&cfg.MaxCopies, "max-copies", 3, "Max duplicate copies per raw event (1 = no duplicates)")
	flag.IntVar(&cfg.Creators, "creators", defaultCreators, "Number of creators in the works feed")
	flag.IntVar(&cfg.WorksPerCrtr, "works-per-creator", defaultWorks, "Max works per creator")
	flag.IntVar(&cfg.YearFrom, "year-from", 2018, "First release year in the works feed")
	flag.IntVar(&cfg.YearTo, "year-to", 2024, "Last release year in the works feed")
	flag.Int64Var(&cfg.Seed, "seed", 1, "RNG seed; the same seed reproduces the same data")
	flag.IntVar(&cfg.BatchSize, "batch-size", defaultBatchSize, "Insert batch size")
	flag.BoolVar(&cfg.Direct, "direct", false, "Write only web_events, skipping the duplicated raw feed")

	configFile := flag.String("config", "", "Path to config file (optional)")
	saveConfig := flag.Bool("save-config", false, "Save the DSN to the default config file and exit")

	flag.Parse()

	if cfg.MaxCopies < 1 {
		cfg.MaxCopies = 1
	}
	if cfg.BatchSize <= 0 {
		cfg.BatchSize = defaultBatchSize
	}

	if *saveConfig {
		path := GetDefaultConfigPath()
		if err := SaveConfig(path, &SeedConfig{DSN: cfg.DSN}); err != nil {
			fmt.Printf("Error saving config: %v\n", err)
			os.Exit(1)
		}
		fmt.Printf("Config written to %s\n", path)
		os.Exit(0)
	}

	// Fall back to the config file for the DSN
	if cfg.DSN == "" {
		path := *configFile
		if path == "" {
			path = GetDefaultConfigPath()
		}
		fileCfg, err := LoadConfig(path)
		if err != nil {
			if *configFile != "" {
				fmt.Printf("Warning: failed to load config file: %v\n", err)
			}
		} else if fileCfg.DSN != "" {
			cfg.DSN = fileCfg.DSN
		}
	}

	return cfg
}
