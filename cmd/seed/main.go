package main

import (
	"context"
	"errors"
	"time"

	"github.com/gofiber/fiber/v2/log"
	"github.com/shopspring/decimal"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/ManuelReschke/PlanoCerto/app/models"
	"github.com/ManuelReschke/PlanoCerto/app/repository"
	"github.com/ManuelReschke/PlanoCerto/internal/pkg/badges"
	"github.com/ManuelReschke/PlanoCerto/internal/pkg/database"
	"github.com/ManuelReschke/PlanoCerto/internal/pkg/env"
	"github.com/ManuelReschke/PlanoCerto/internal/pkg/ranking"
)

const demoPassword = "senha123"

type demoPlan struct {
	slug       string
	provider   string
	plan       models.Plan
	promo      string
	promoPrice string
}

type demoReview struct {
	email   string
	plan    string
	rating  int
	comment string
}

var demoProviders = []models.Provider{
	{Name: "Claro", Slug: "claro", Logo: "/logos/claro.svg", Color: "#E02020"},
	{Name: "TechNet", Slug: "technet", Logo: "/logos/technet.svg", Color: "#2563EB"},
	{Name: "Vivo", Slug: "vivo", Logo: "/logos/vivo.svg", Color: "#6D28D9"},
}

func strs(v ...string) datatypes.JSONSlice[string] {
	return datatypes.JSONSlice[string](v)
}

func demoPlans() []demoPlan {
	return []demoPlan{
		{slug: "plan-claro-500", provider: "claro", promo: "Black Friday", promoPrice: "89.90", plan: models.Plan{
			Name: "Fibra Premium 500MB", DownloadSpeed: 500, UploadSpeed: 250,
			Price: decimal.RequireFromString("109.90"), Fidelidade: 12, Capacidade: "Ilimitado",
			ServicosInclusos: strs("Roteador Wi-Fi incluído", "Suporte 24h", "Instalação grátis"),
			IndicadoPara:     strs("Gaming", "Streaming", "Home Office"),
			Categorias:       strs("Gaming", "Streaming", "Trabalho"),
			CepsAtendidos:    strs("01310", "01311", "04530", "20040", "79000", "79001", "79002"),
			IsSponsored:      true, SponsorPriority: 10,
		}},
		{slug: "plan-technet-300", provider: "technet", plan: models.Plan{
			Name: "Fibra Ultra 300MB", DownloadSpeed: 300, UploadSpeed: 150,
			Price: decimal.RequireFromString("89.90"), Fidelidade: 12, Capacidade: "Ilimitado",
			ServicosInclusos: strs("Roteador Wi-Fi incluído", "Suporte 24h"),
			IndicadoPara:     strs("Streaming", "Home Office"),
			Categorias:       strs("Streaming", "Trabalho"),
			CepsAtendidos:    strs("01310", "01311", "04530", "20040", "79000", "79001"),
		}},
		{slug: "plan-technet-200", provider: "technet", plan: models.Plan{
			Name: "Plano Básico 200MB", DownloadSpeed: 200, UploadSpeed: 100,
			Price: decimal.RequireFromString("79.90"), Fidelidade: 12, Capacidade: "Ilimitado",
			ServicosInclusos: strs("Suporte comercial"),
			IndicadoPara:     strs("Redes Sociais", "Estudos"),
			Categorias:       strs("Trabalho"),
			CepsAtendidos:    strs("01310", "04530", "20040", "79000", "79002", "79003"),
		}},
		{slug: "plan-vivo-600", provider: "vivo", plan: models.Plan{
			Name: "Vivo Fibra Gamer 600MB", DownloadSpeed: 600, UploadSpeed: 300,
			Price: decimal.RequireFromString("129.90"), Fidelidade: 12, Capacidade: "Ilimitado",
			ServicosInclusos: strs("IP fixo", "Roteador Gaming", "Suporte 24h", "Instalação grátis"),
			IndicadoPara:     strs("Gaming", "Streaming"),
			Categorias:       strs("Gaming", "Streaming"),
			CepsAtendidos:    strs("01310", "04530", "20040", "79000", "79001", "79002"),
			IsSponsored:      true, SponsorPriority: 8,
		}},
		{slug: "plan-vivo-150", provider: "vivo", plan: models.Plan{
			Name: "Vivo Home 150MB", DownloadSpeed: 150, UploadSpeed: 75,
			Price: decimal.RequireFromString("69.90"), Fidelidade: 12, Capacidade: "Ilimitado",
			ServicosInclusos: strs("Suporte comercial"),
			IndicadoPara:     strs("Redes Sociais", "Estudos"),
			Categorias:       strs("Trabalho"),
			CepsAtendidos:    strs("01310", "04530", "20040", "79000", "79001", "79002", "79003", "79004"),
		}},
		{slug: "plan-claro-400", provider: "claro", plan: models.Plan{
			Name: "Claro Streaming 400MB", DownloadSpeed: 400, UploadSpeed: 200,
			Price: decimal.RequireFromString("99.90"), Fidelidade: 12, Capacidade: "Ilimitado",
			ServicosInclusos: strs("Globoplay incluído", "Roteador Wi-Fi", "Suporte 24h"),
			IndicadoPara:     strs("Streaming", "Home Office"),
			Categorias:       strs("Streaming", "Trabalho"),
			CepsAtendidos:    strs("01310", "04530", "20040", "79000", "79001", "79002", "79003"),
		}},
	}
}

var demoUsers = []models.User{
	{Name: "João S.", Email: "joao@email.com", Address: "01310-000"},
	{Name: "Maria T.", Email: "maria@email.com", Address: "04530-000"},
	{Name: "Pedro M.", Email: "pedro@email.com", Address: "79000-000"},
	{Name: "Marcos", Email: "marcos@email.com", Address: "01310-000"},
	{Name: "Paula W.", Email: "paula@email.com", Address: "04530-000"},
}

var demoReviews = []demoReview{
	{"joao@email.com", "plan-claro-500", 5, "Internet excelente, nunca cai no home office!"},
	{"maria@email.com", "plan-claro-500", 4, "Boa velocidade, suporte rápido."},
	{"pedro@email.com", "plan-claro-500", 5, "Perfeita para gaming, sem lag."},
	{"marcos@email.com", "plan-technet-300", 4, "Custo-benefício ótimo."},
	{"paula@email.com", "plan-technet-300", 4, "Velocidade estável, recomendo."},
	{"joao@email.com", "plan-technet-200", 3, "Funciona para uso básico."},
	{"maria@email.com", "plan-vivo-600", 5, "Incrível para gaming!"},
	{"pedro@email.com", "plan-vivo-600", 5, "Melhor plano para games."},
	{"marcos@email.com", "plan-vivo-150", 3, "Suficiente para uso casual."},
	{"paula@email.com", "plan-claro-400", 5, "Globoplay incluso é ótimo!"},
}

func main() {
	env.SetupEnvFile()
	database.SetupDatabase()
	repos := repository.NewRepositories(database.GetDB())

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	providerIDs := make(map[string]uint, len(demoProviders))
	for _, p := range demoProviders {
		p := p
		if err := p.Validate(); err != nil {
			log.Fatalf("[Seed] Invalid provider %s: %v", p.Slug, err)
		}
		if err := repos.Provider.UpsertBySlug(ctx, &p); err != nil {
			log.Fatalf("[Seed] Failed to upsert provider %s: %v", p.Slug, err)
		}
		providerIDs[p.Slug] = p.ID
	}
	log.Infof("[Seed] %d providers ready", len(providerIDs))

	planIDs := make(map[string]uint)
	promoExpiry := time.Now().Add(7 * 24 * time.Hour)
	for _, d := range demoPlans() {
		plan := d.plan
		plan.Slug = d.slug
		plan.ProviderID = providerIDs[d.provider]
		plan.IsActive = true
		if d.promo != "" {
			price := decimal.RequireFromString(d.promoPrice)
			label := d.promo
			plan.PromotionPrice = &price
			plan.PromotionExpiresAt = &promoExpiry
			plan.PromotionLabel = &label
		}
		if err := plan.Validate(); err != nil {
			log.Fatalf("[Seed] Invalid plan %s: %v", d.slug, err)
		}
		if err := repos.Plan.UpsertBySlug(ctx, &plan); err != nil {
			log.Fatalf("[Seed] Failed to upsert plan %s: %v", d.slug, err)
		}
		planIDs[d.slug] = plan.ID
	}
	log.Infof("[Seed] %d plans ready", len(planIDs))

	userIDs := make(map[string]uint, len(demoUsers))
	for _, u := range demoUsers {
		id, err := ensureUser(ctx, repos.User, u)
		if err != nil {
			log.Fatalf("[Seed] Failed to create user %s: %v", u.Email, err)
		}
		userIDs[u.Email] = id
	}

	for _, r := range demoReviews {
		review := &models.Review{
			UserID:  userIDs[r.email],
			PlanID:  planIDs[r.plan],
			Rating:  r.rating,
			Comment: r.comment,
		}
		if err := repos.Review.Create(ctx, review); err != nil && !errors.Is(err, repository.ErrAlreadyReviewed) {
			log.Fatalf("[Seed] Failed to create review for %s: %v", r.plan, err)
		}
	}

	awarder := badges.NewAwarder(repos.Badge)
	for email, id := range userIDs {
		if _, err := awarder.Check(ctx, id); err != nil {
			log.Warnf("[Seed] Badge check for %s failed: %v", email, err)
		}
	}

	report, err := ranking.NewEngine(repos.Plan, ranking.DefaultWorkers).Recompute(ctx)
	if err != nil {
		log.Fatalf("[Seed] Ranking recompute failed: %v", err)
	}
	log.Infof("[Seed] Ranked %d/%d plans in %s", report.Updated, report.Total, report.Duration)
}

func ensureUser(ctx context.Context, users repository.UserRepository, u models.User) (uint, error) {
	existing, err := users.GetByEmail(ctx, u.Email)
	if err == nil {
		return existing.ID, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return 0, err
	}

	user, err := models.CreateUser(u.Name, u.Email, demoPassword)
	if err != nil {
		return 0, err
	}
	user.Address = u.Address
	if err := users.Create(ctx, user); err != nil {
		return 0, err
	}
	return user.ID, nil
}
