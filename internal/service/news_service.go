package service

import (
	"context"
	"fmt"

	"github.com/news-notes-api/internal/listing"
	"github.com/news-notes-api/internal/models"
	"github.com/news-notes-api/internal/repository"
	"github.com/rs/zerolog"
)

// newsService is the concrete implementation of NewsService
type newsService struct {
	news         repository.NewsRepository
	comments     repository.CommentRepository
	homePageSize int
	log          zerolog.Logger
}

func newNewsService(repos *repository.Repositories, homePageSize int, log zerolog.Logger) *newsService {
	return &newsService{
		news:         repos.News,
		comments:     repos.Comment,
		homePageSize: homePageSize,
		log:          log.With().Str("service", "news").Logger(),
	}
}

// Home returns the newest news, at most homePageSize of them. The store picks
// the newest homePageSize items; listing only fixes their order.
func (s *newsService) Home(ctx context.Context) ([]models.News, error) {
	items, err := s.news.ListLatest(ctx, s.homePageSize)
	if err != nil {
		return nil, fmt.Errorf("list news: %w", err)
	}
	return listing.FirstPage(listing.OrderNews(items), s.homePageSize), nil
}

// Detail returns a news item with its comments oldest first
func (s *newsService) Detail(ctx context.Context, id int64) (*models.NewsDetail, error) {
	news, err := s.news.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get news %d: %w", id, err)
	}
	if news == nil {
		return nil, ErrNotFound
	}

	comments, err := s.comments.ListByNews(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("list comments of news %d: %w", id, err)
	}
	news.CommentCount = len(comments)

	return &models.NewsDetail{
		News:     *news,
		Comments: listing.OrderComments(comments),
	}, nil
}
