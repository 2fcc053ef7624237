// Package pipeline runs the full batch flow for one city and date range:
// fetch, checkpoint raw, clean, reshape, merge, analyze, and report. Every
// stage persists its output before the next stage starts, so any stage can
// be inspected after the run.
package pipeline

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path"
	"path/filepath"

	"airmet/internal/analyze"
	"airmet/internal/clean"
	"airmet/internal/config"
	"airmet/internal/csvio"
	"airmet/internal/fetchers"
	"airmet/internal/llm"
	"airmet/internal/logger"
	"airmet/internal/merge"
	"airmet/internal/models"
	"airmet/internal/reports"
	"airmet/internal/reshape"
	"airmet/internal/storage"
)

// Pipeline wires the stages together for one run.
type Pipeline struct {
	cfg     *config.Config
	store   storage.StorageClient
	fetcher *fetchers.DataFetcher
	log     *logger.Logger
}

// New creates a pipeline
func New(cfg *config.Config, store storage.StorageClient, fetcher *fetchers.DataFetcher, log *logger.Logger) *Pipeline {
	if log == nil {
		log = logger.Global()
	}
	return &Pipeline{
		cfg:     cfg,
		store:   store,
		fetcher: fetcher,
		log:     log.WithComponent("pipeline"),
	}
}

// Run executes all stages in order. The first hard failure aborts the run;
// checkpoints written before the failure stay on disk.
func (p *Pipeline) Run(ctx context.Context) error {
	p.log.Infof("Starting run for %s, %s to %s", p.cfg.City, p.cfg.StartDate, p.cfg.EndDate)

	for _, area := range []string{storage.AreaRaw, storage.AreaCleaned, storage.AreaMerged, storage.AreaReports} {
		if err := p.store.CreateDir(ctx, area); err != nil {
			return fmt.Errorf("failed to create %s area: %w", area, err)
		}
	}

	source, err := p.fetcher.FetchAll(ctx, p.cfg)
	if err != nil {
		return err
	}
	if err := p.checkpointRaw(ctx, source); err != nil {
		return err
	}

	weather, air, cleanReports, err := p.cleanStage(ctx, source)
	if err != nil {
		return err
	}

	merged, mergeReport, err := p.mergeStage(ctx, weather, air)
	if err != nil {
		return err
	}

	result := analyze.Run(merged)
	if err := p.storeJSON(ctx, path.Join(storage.AreaReports, "analysis.json"), result); err != nil {
		return err
	}

	return p.reportStage(ctx, result, merged, cleanReports, &mergeReport)
}

// checkpointRaw persists the fetched datasets exactly as received.
func (p *Pipeline) checkpointRaw(ctx context.Context, source *models.SourceData) error {
	var buf bytes.Buffer
	if err := csvio.WriteWeather(&buf, source.Weather); err != nil {
		return fmt.Errorf("failed to encode raw weather: %w", err)
	}
	if err := p.store.StoreFile(ctx, path.Join(storage.AreaRaw, "weather.csv"), buf.Bytes()); err != nil {
		return fmt.Errorf("failed to store raw weather: %w", err)
	}

	buf.Reset()
	if err := csvio.WriteAirQuality(&buf, source.AirQuality); err != nil {
		return fmt.Errorf("failed to encode raw air quality: %w", err)
	}
	if err := p.store.StoreFile(ctx, path.Join(storage.AreaRaw, "air_quality.csv"), buf.Bytes()); err != nil {
		return fmt.Errorf("failed to store raw air quality: %w", err)
	}

	p.log.Infof("Checkpointed raw data: %d weather rows, %d air quality rows",
		len(source.Weather), len(source.AirQuality))
	return nil
}

// cleanStage cleans both datasets and checkpoints the results, including
// the long-form air quality view.
func (p *Pipeline) cleanStage(ctx context.Context, source *models.SourceData) ([]models.WeatherRecord, []models.AirQualityRecord, []models.CleanReport, error) {
	weather, weatherReport := clean.Weather(source.Weather)
	p.logCleanReport(weatherReport)

	air, airReport := clean.AirQuality(source.AirQuality)
	p.logCleanReport(airReport)

	var buf bytes.Buffer
	if err := csvio.WriteWeather(&buf, weather); err != nil {
		return nil, nil, nil, fmt.Errorf("failed to encode cleaned weather: %w", err)
	}
	if err := p.store.StoreFile(ctx, path.Join(storage.AreaCleaned, "weather.csv"), buf.Bytes()); err != nil {
		return nil, nil, nil, fmt.Errorf("failed to store cleaned weather: %w", err)
	}

	buf.Reset()
	if err := csvio.WriteAirQuality(&buf, air); err != nil {
		return nil, nil, nil, fmt.Errorf("failed to encode cleaned air quality: %w", err)
	}
	if err := p.store.StoreFile(ctx, path.Join(storage.AreaCleaned, "air_quality.csv"), buf.Bytes()); err != nil {
		return nil, nil, nil, fmt.Errorf("failed to store cleaned air quality: %w", err)
	}

	buf.Reset()
	if err := csvio.WriteSamples(&buf, reshape.WideToLong(air)); err != nil {
		return nil, nil, nil, fmt.Errorf("failed to encode long-form air quality: %w", err)
	}
	if err := p.store.StoreFile(ctx, path.Join(storage.AreaCleaned, "air_quality_long.csv"), buf.Bytes()); err != nil {
		return nil, nil, nil, fmt.Errorf("failed to store long-form air quality: %w", err)
	}

	return weather, air, []models.CleanReport{weatherReport, airReport}, nil
}

// mergeStage joins the cleaned datasets on date and checkpoints the result.
// An empty join is a hard failure: nothing downstream can run without rows.
func (p *Pipeline) mergeStage(ctx context.Context, weather []models.WeatherRecord, air []models.AirQualityRecord) ([]models.MergedRecord, models.MergeReport, error) {
	merged, report := merge.Inner(weather, air)

	if report.HasDrops() {
		p.log.Warnf("Merge dropped unmatched days: %d weather-only, %d air-only",
			report.DroppedWeather, report.DroppedAir)
	}
	if len(merged) == 0 {
		return nil, report, fmt.Errorf("merge produced no rows: weather and air quality date ranges do not overlap")
	}

	var buf bytes.Buffer
	if err := csvio.WriteMerged(&buf, merged); err != nil {
		return nil, report, fmt.Errorf("failed to encode merged data: %w", err)
	}
	if err := p.store.StoreFile(ctx, path.Join(storage.AreaMerged, "daily.csv"), buf.Bytes()); err != nil {
		return nil, report, fmt.Errorf("failed to store merged data: %w", err)
	}

	p.log.Infof("Merged dataset has %d daily rows", len(merged))
	return merged, report, nil
}

// reportStage generates the markdown and HTML reports plus the static PNG
// charts, and persists all of them under the reports area.
func (p *Pipeline) reportStage(ctx context.Context, result *analyze.Result, merged []models.MergedRecord, cleanReports []models.CleanReport, mergeReport *models.MergeReport) error {
	narrative := p.narrative(ctx, result)

	gen := reports.NewGenerator(p.log)
	markdown, htmlPage, err := gen.Generate(result, merged, cleanReports, mergeReport, narrative)
	if err != nil {
		return err
	}

	if err := p.store.StoreFile(ctx, path.Join(storage.AreaReports, "report.md"), []byte(markdown)); err != nil {
		return fmt.Errorf("failed to store markdown report: %w", err)
	}
	if err := p.store.StoreFile(ctx, path.Join(storage.AreaReports, "report.html"), []byte(htmlPage)); err != nil {
		return fmt.Errorf("failed to store HTML report: %w", err)
	}

	if err := p.storeChartImages(ctx, merged); err != nil {
		p.log.Warnf("Failed to generate chart images: %v", err)
	}

	p.log.Info("Run complete")
	return nil
}

// narrative asks the LLM for the interpretation section. Any failure is
// logged and the report is produced without it.
func (p *Pipeline) narrative(ctx context.Context, result *analyze.Result) string {
	if p.cfg.OpenAIAPIKey == "" {
		p.log.Debug("No OpenAI API key configured, skipping narrative")
		return ""
	}

	client := llm.NewOpenAIClient(p.cfg.OpenAIAPIKey, p.cfg.OpenAIModel, p.log)
	narrative, err := client.Narrative(ctx, result)
	if err != nil {
		p.log.Warnf("Narrative generation failed: %v", err)
		return ""
	}
	return narrative
}

// storeChartImages renders the PNG charts into a scratch directory and
// copies them into the reports area.
func (p *Pipeline) storeChartImages(ctx context.Context, merged []models.MergedRecord) error {
	tmpDir, err := os.MkdirTemp("", "airmet-charts-")
	if err != nil {
		return fmt.Errorf("failed to create chart scratch dir: %w", err)
	}
	defer os.RemoveAll(tmpDir)

	chartGen := reports.NewChartGenerator(tmpDir)
	files, err := chartGen.GenerateCharts(merged)
	if err != nil {
		return err
	}

	for _, file := range files {
		data, err := os.ReadFile(file)
		if err != nil {
			return fmt.Errorf("failed to read chart image %s: %w", file, err)
		}
		target := path.Join(storage.AreaReports, filepath.Base(file))
		if err := p.store.StoreFile(ctx, target, data); err != nil {
			return fmt.Errorf("failed to store chart image %s: %w", target, err)
		}
	}

	p.log.Infof("Stored %d chart images", len(files))
	return nil
}

// storeJSON marshals v and persists it at filePath.
func (p *Pipeline) storeJSON(ctx context.Context, filePath string, v interface{}) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal %s: %w", filePath, err)
	}
	if err := p.store.StoreFile(ctx, filePath, data); err != nil {
		return fmt.Errorf("failed to store %s: %w", filePath, err)
	}
	return nil
}

// logCleanReport emits one structured line per cleaned dataset.
func (p *Pipeline) logCleanReport(r models.CleanReport) {
	p.log.Infof("Cleaned %s: %d rows in, %d rows out, %d rejected, %d duplicates collapsed, %d values imputed, %d values nulled, %d outliers flagged",
		r.Dataset, r.RowsIn, r.RowsOut, r.RowsRejected, r.DuplicatesCollapsed, r.ValuesImputed, r.ValuesNulled, r.OutliersFlagged)
}
