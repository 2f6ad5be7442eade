package service

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/news-notes-api/internal/models"
	"github.com/news-notes-api/internal/repository"
	"github.com/news-notes-api/internal/validation"
	"github.com/rs/zerolog"
)

// importService is the concrete implementation of ImportService
type importService struct {
	news      repository.NewsRepository
	validator *validation.Validator
	batchSize int
	log       zerolog.Logger
}

func newImportService(news repository.NewsRepository, validator *validation.Validator, batchSize int, log zerolog.Logger) *importService {
	return &importService{
		news:      news,
		validator: validator,
		batchSize: batchSize,
		log:       log.With().Str("service", "import").Logger(),
	}
}

// ImportNews reads one JSON news object per line, skips invalid lines with a
// line-numbered error and inserts the rest in batches
func (s *importService) ImportNews(ctx context.Context, r io.Reader) (*models.ImportResult, error) {
	start := time.Now()
	result := &models.ImportResult{Resource: "news"}

	scanner := bufio.NewScanner(r)
	buf := make([]byte, 0, 64*1024)
	scanner.Buffer(buf, 1024*1024)

	var batch []*models.News
	flush := func() {
		if len(batch) == 0 {
			return
		}
		inserted, err := s.news.BatchInsert(ctx, batch)
		if err != nil {
			s.log.Error().Err(err).Int("batch_size", len(batch)).Msg("Batch insert failed")
			result.FailedCount += len(batch)
		} else {
			result.SuccessfulCount += inserted
		}
		batch = batch[:0]
	}

	lineNum := 0
	for scanner.Scan() {
		lineNum++
		line := scanner.Text()

		if strings.TrimSpace(line) == "" {
			continue
		}

		result.TotalRecords++

		// Respect context cancellation for long-running imports
		if lineNum%1000 == 0 {
			select {
			case <-ctx.Done():
				return result, ctx.Err()
			default:
			}
		}

		var record models.NewsNDJSON
		if err := json.Unmarshal([]byte(line), &record); err != nil {
			result.FailedCount++
			result.Errors = append(result.Errors, models.ValidationError{
				Line:    lineNum,
				Field:   "json",
				Message: fmt.Sprintf("invalid JSON: %v", err),
			})
			continue
		}

		if errs := s.validator.ValidateNews(&record, lineNum); len(errs) > 0 {
			result.FailedCount++
			result.Errors = append(result.Errors, errs...)
			continue
		}

		news := &models.News{Title: record.Title, Text: record.Text}
		if record.Date != "" {
			// already validated above
			news.Date, _ = validation.ParseNewsDate(record.Date)
		}
		batch = append(batch, news)

		if len(batch) >= s.batchSize {
			flush()
		}
	}
	flush()

	result.DurationMs = time.Since(start).Milliseconds()

	s.log.Info().
		Int("total", result.TotalRecords).
		Int("successful", result.SuccessfulCount).
		Int("failed", result.FailedCount).
		Int64("duration_ms", result.DurationMs).
		Msg("News import finished")

	if err := scanner.Err(); err != nil {
		return result, fmt.Errorf("read news file: %w", err)
	}
	return result, nil
}
