package cli

import (
	"fmt"
	"time"

	"lunchbudget/internal/budget"
	"lunchbudget/internal/cache"
	"lunchbudget/internal/calendar"
	"lunchbudget/internal/classifier"
	"lunchbudget/internal/config"
	"lunchbudget/internal/log"
	"lunchbudget/internal/services"
	"lunchbudget/internal/storage"
	"lunchbudget/internal/tenbis"
)

// rawCacheSize bounds the number of accounts whose raw records are cached.
const rawCacheSize = 500

// Pipeline is the report service together with the cache manager that
// sweeps its caches.
type Pipeline struct {
	Reports *services.ReportService
	Caches  *cache.Manager
}

// BuildPipeline wires calendar, classifier, aggregator, 10bis client and
// raw-record cache from cfg into a ReportService. publisher may be nil.
func BuildPipeline(cfg *config.Config, store storage.Store, publisher services.ReportPublisher, logger *log.Logger) (*Pipeline, error) {
	loc, err := time.LoadLocation(cfg.TimeZone)
	if err != nil {
		return nil, fmt.Errorf("load time zone %q: %w", cfg.TimeZone, err)
	}

	calCfg := calendar.Config{
		Location:     loc,
		HolidayNames: calendar.DefaultHolidayNames,
		Workweek:     calendar.DefaultWorkweek,
	}
	if len(cfg.HolidayNames) > 0 {
		calCfg.HolidayNames = cfg.HolidayNames
	}
	cal, err := calendar.New(calCfg)
	if err != nil {
		return nil, fmt.Errorf("create calendar: %w", err)
	}

	cls := classifier.New(loc, cfg.LunchCutoffHour, classifier.ParsePolicy(cfg.ParsePolicy))
	agg := budget.New(cal, cls, budget.Config{
		DailyLunchBudget: cfg.DailyLunchBudget,
		MaxLunchLimit:    cfg.MaxLunchLimit,
		Clock:            time.Now,
	})

	caches := cache.NewManager()
	rawCache := cache.NewLRUCache[[]tenbis.RawTransaction](rawCacheSize, cfg.CacheTTL)
	caches.Register(rawCache)

	reports := services.NewReportService(services.ReportDeps{
		Source:     tenbis.NewClient(cfg.TenbisAPIURL, cfg.TenbisTimeout),
		Links:      store,
		Reports:    store,
		Classifier: cls,
		Aggregator: agg,
		Cache:      rawCache,
		Publisher:  publisher,
		Logger:     logger,
	}, services.ReportConfig{
		RefreshConcurrency: cfg.RefreshConcurrency,
		Now:                time.Now,
	})

	return &Pipeline{Reports: reports, Caches: caches}, nil
}
