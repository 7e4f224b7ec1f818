package handler

import (
	"context"

	"github.com/lumeo-dev/lumeo/internal/config"
	"github.com/lumeo-dev/lumeo/internal/domain"
	"github.com/lumeo-dev/lumeo/internal/service"
)

// InfoService is the slice of the content service the handlers use.
type InfoService interface {
	FAQs(filter domain.ListFilter, admin bool) ([]domain.FAQ, error)
	SaveFAQ(f domain.FAQ) (domain.FAQ, error)
	DeleteFAQ(id int64) error

	TeamMembers(filter domain.ListFilter, admin bool) ([]domain.TeamMember, error)
	SaveTeamMember(m domain.TeamMember) (domain.TeamMember, error)
	DeleteTeamMember(id int64) error

	News(filter domain.ListFilter, admin bool) ([]domain.News, error)
	NewsItem(id int64, admin bool) (domain.News, error)
	SaveNews(n domain.News) (domain.News, error)
	DeleteNews(id int64) error

	Partners(filter domain.ListFilter, admin bool) ([]domain.Partner, error)
	SavePartner(p domain.Partner) (domain.Partner, error)
	DeletePartner(id int64) error
}

type ProfileService interface {
	Get(accountId domain.AccountId) (domain.Profile, error)
	Update(profile domain.Profile) error
}

type StatsService interface {
	AccountsByRole() (domain.ChartData, error)
	AccountActivity() (domain.ChartData, error)
	Registrations() (domain.ChartData, error)
	Content() (domain.ChartData, error)
}

type SiteInfoService interface {
	Current() domain.SiteInfo
	Update(info domain.SiteInfo) error
}

type RecommendService interface {
	Recommend(query string) (domain.Recommendation, error)
	Queries(filter domain.ListFilter) ([]domain.MovieQuery, error)
	SyncCatalog(ctx context.Context, pages int) (int, error)
}

type Handler struct {
	accounts  service.AccountService
	info      InfoService
	profiles  ProfileService
	stats     StatsService
	siteInfo  SiteInfoService
	recommend RecommendService
	health    Pinger
	cfg       *config.Config
}

func New(accounts service.AccountService, info InfoService, profiles ProfileService, stats StatsService, siteInfo SiteInfoService, recommend RecommendService, health Pinger, cfg *config.Config) *Handler {
	return &Handler{accounts, info, profiles, stats, siteInfo, recommend, health, cfg}
}
