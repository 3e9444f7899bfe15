package controllers

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/session"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/datatypes"

	"github.com/ManuelReschke/PlanoCerto/app/models"
	"github.com/ManuelReschke/PlanoCerto/app/repository"
	"github.com/ManuelReschke/PlanoCerto/internal/pkg/analytics"
	"github.com/ManuelReschke/PlanoCerto/internal/pkg/auth"
	"github.com/ManuelReschke/PlanoCerto/internal/pkg/badges"
	"github.com/ManuelReschke/PlanoCerto/internal/pkg/clock"
	"github.com/ManuelReschke/PlanoCerto/internal/pkg/jobqueue"
	"github.com/ManuelReschke/PlanoCerto/internal/pkg/usercontext"
)

var testNow = time.Date(2025, 3, 10, 12, 0, 0, 0, time.UTC)

var member = &usercontext.UserContext{UserID: 7, Username: "Ana", IsLoggedIn: true, SessionID: "sess-member"}

type testEnv struct {
	app     *fiber.App
	plans   *fakePlans
	reviews *fakeReviews
	favs    *fakeFavorites
	history *fakeHistory
	alerts  *fakeAlerts
	events  *fakeEvents
	users   *fakeUsers
	views   *fakeViews
	jobs    *fakeJobs
	badges  *fakeBadges
	profile *fakeProfiles
}

func testPlan(id uint, name string, sponsored bool, ceps ...string) models.Plan {
	return models.Plan{
		ID:               id,
		Slug:             name,
		Name:             name,
		ProviderID:       1,
		Provider:         models.Provider{ID: 1, Name: "Claro", Slug: "claro", Color: "#E02020"},
		DownloadSpeed:    int(id) * 100,
		UploadSpeed:      int(id) * 50,
		Price:            decimal.NewFromInt(int64(60 + id*10)),
		Capacidade:       "Ilimitado",
		ServicosInclusos: datatypes.JSONSlice[string]{"Suporte 24h", "Roteador Wi-Fi"},
		Categorias:       datatypes.JSONSlice[string]{"Streaming", "Trabalho"},
		CepsAtendidos:    datatypes.JSONSlice[string](ceps),
		IsActive:         true,
		IsSponsored:      sponsored,
		RankingScore:     float64(id),
	}
}

func defaultPlans() []models.Plan {
	return []models.Plan{
		testPlan(1, "basic", false, "01310", "04530"),
		testPlan(2, "ultra", false, "01310"),
		testPlan(3, "premium", true, "01310"),
		testPlan(4, "far-away", false, "79000"),
	}
}

// newTestEnv builds an API controller on in-memory repositories. A nil uc
// makes every request anonymous.
func newTestEnv(t *testing.T, uc *usercontext.UserContext, plans ...models.Plan) *testEnv {
	t.Helper()

	favs := newFakeFavorites()
	env := &testEnv{
		plans:   newFakePlans(favs, plans...),
		reviews: &fakeReviews{},
		favs:    favs,
		history: &fakeHistory{},
		alerts:  &fakeAlerts{},
		events:  &fakeEvents{},
		users:   &fakeUsers{},
		views:   &fakeViews{},
		jobs:    &fakeJobs{},
		profile: &fakeProfiles{},
	}
	env.badges = &fakeBadges{history: env.history, reviews: env.reviews, favs: favs}

	repos := &repository.Repositories{
		User:          env.users,
		Plan:          env.plans,
		Review:        env.reviews,
		Favorite:      favs,
		Profile:       env.profile,
		SearchHistory: env.history,
		Alert:         env.alerts,
		Event:         env.events,
		Badge:         env.badges,
	}
	now := clock.Fixed(testNow)
	ctrl := NewAPIController(Dependencies{
		Repos:    repos,
		Tracker:  analytics.NewTracker(env.events),
		Badges:   badges.NewAwarder(env.badges),
		Auth:     auth.NewService(env.users, now),
		Sessions: session.New(session.Config{KeyLookup: "cookie:planocerto_session"}),
		Views:    env.views,
		Jobs:     env.jobs,
		Now:      now,
	})

	app := fiber.New()
	app.Use(func(c *fiber.Ctx) error {
		if uc != nil {
			usercontext.SetUserContext(c, *uc)
		}
		return c.Next()
	})
	app.Get("/plans", ctrl.HandleSearchPlans)
	app.Post("/plans/recommend", ctrl.HandleRecommend)
	app.Get("/plans/:id", ctrl.HandleGetPlan)
	app.Post("/plans/:id/click", ctrl.HandleClickPlan)
	app.Post("/plans/:id/convert", ctrl.HandleConvertPlan)
	app.Post("/plans/:id/reviews", ctrl.HandleCreateReview)
	app.Get("/favorites", ctrl.HandleListFavorites)
	app.Post("/favorites", ctrl.HandleAddFavorite)
	app.Delete("/favorites", ctrl.HandleRemoveFavorite)
	app.Get("/alerts", ctrl.HandleListAlerts)
	app.Post("/alerts", ctrl.HandleCreateAlert)
	app.Delete("/alerts", ctrl.HandleDeleteAlert)
	app.Get("/user/profile", ctrl.HandleGetUserProfile)
	app.Get("/user/history", ctrl.HandleGetSearchHistory)
	app.Post("/track", ctrl.HandleTrack)
	app.Post("/auth/register", ctrl.HandleRegister)
	app.Post("/auth/login", ctrl.HandleLogin)
	app.Post("/auth/logout", ctrl.HandleLogout)
	app.Post("/admin/ranking/recompute", ctrl.HandleAdminRecomputeRanking)
	app.Get("/admin/jobs", ctrl.HandleAdminJobStats)
	app.Get("/stats", ctrl.HandleGetStats)
	env.app = app
	return env
}

type apiResponse struct {
	status int
	header func(string) string
	body   map[string]interface{}
}

func (e *testEnv) call(t *testing.T, method, target string, body interface{}) apiResponse {
	t.Helper()

	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, target, reader)
	if body != nil {
		req.Header.Set(fiber.HeaderContentType, fiber.MIMEApplicationJSON)
	}

	resp, err := e.app.Test(req, -1)
	require.NoError(t, err)
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	out := map[string]interface{}{}
	if len(raw) > 0 {
		require.NoError(t, json.Unmarshal(raw, &out), string(raw))
	}
	return apiResponse{status: resp.StatusCode, header: resp.Header.Get, body: out}
}

func planList(t *testing.T, body map[string]interface{}, key string) []map[string]interface{} {
	t.Helper()
	raw, ok := body[key].([]interface{})
	require.True(t, ok, "missing %s in %v", key, body)
	out := make([]map[string]interface{}, 0, len(raw))
	for _, r := range raw {
		out = append(out, r.(map[string]interface{}))
	}
	return out
}

func TestSearchPlansVisitorSeesTwoMaskedPlans(t *testing.T) {
	env := newTestEnv(t, nil, defaultPlans()...)

	resp := env.call(t, "GET", "/plans?cep=01310-100", nil)
	require.Equal(t, fiber.StatusOK, resp.status)

	plans := planList(t, resp.body, "plans")
	require.Len(t, plans, 2)
	assert.EqualValues(t, 3, resp.body["total"])
	assert.EqualValues(t, 1, resp.body["hidden_count"])
	assert.Equal(t, false, resp.body["is_logged_in"])

	// sponsored plan first
	assert.EqualValues(t, 3, plans[0]["id"])
	for _, p := range plans {
		assert.Equal(t, true, p["_masked"])
		assert.Nil(t, p["download_speed"])
		assert.Nil(t, p["capacidade"])
		assert.Empty(t, p["servicos_inclusos"])
	}

	assert.Contains(t, env.events.types(), string(analytics.EventCepSearched))
	assert.Empty(t, env.history.entries)
}

func TestSearchPlansMemberSeesEverything(t *testing.T) {
	env := newTestEnv(t, member, defaultPlans()...)

	resp := env.call(t, "GET", "/plans?cep=01310", nil)
	require.Equal(t, fiber.StatusOK, resp.status)

	plans := planList(t, resp.body, "plans")
	require.Len(t, plans, 3)
	assert.EqualValues(t, 0, resp.body["hidden_count"])
	for _, p := range plans {
		assert.Nil(t, p["_masked"])
		assert.NotNil(t, p["download_speed"])
	}

	require.Len(t, env.history.entries, 1)
	assert.Equal(t, "01310", env.history.entries[0].Cep)
	assert.Equal(t, 3, env.history.entries[0].ResultsCount)

	slugs, err := env.badges.ListSlugs(context.Background(), member.UserID)
	require.NoError(t, err)
	assert.Contains(t, slugs, models.BadgeExplorer)
}

func TestSearchPlansCategoryFilter(t *testing.T) {
	plans := defaultPlans()
	plans[0].Categorias = datatypes.JSONSlice[string]{"Gaming"}
	env := newTestEnv(t, member, plans...)

	resp := env.call(t, "GET", "/plans?category=Gaming", nil)
	require.Equal(t, fiber.StatusOK, resp.status)
	require.Len(t, planList(t, resp.body, "plans"), 1)

	resp = env.call(t, "GET", "/plans?category=Todos", nil)
	require.Equal(t, fiber.StatusOK, resp.status)
	assert.Len(t, planList(t, resp.body, "plans"), 4)
}

func TestSearchPlansRejectsShortCep(t *testing.T) {
	env := newTestEnv(t, nil, defaultPlans()...)

	resp := env.call(t, "GET", "/plans?cep=013", nil)
	assert.Equal(t, fiber.StatusBadRequest, resp.status)
	assert.Equal(t, "invalid_cep", resp.body["error"])
}

func TestGetPlan(t *testing.T) {
	t.Run("unknown plan", func(t *testing.T) {
		env := newTestEnv(t, nil, defaultPlans()...)
		resp := env.call(t, "GET", "/plans/99", nil)
		assert.Equal(t, fiber.StatusNotFound, resp.status)
		assert.Equal(t, "not_found", resp.body["error"])
	})

	t.Run("invalid id", func(t *testing.T) {
		env := newTestEnv(t, nil, defaultPlans()...)
		resp := env.call(t, "GET", "/plans/abc", nil)
		assert.Equal(t, fiber.StatusBadRequest, resp.status)
	})

	t.Run("visitor", func(t *testing.T) {
		env := newTestEnv(t, nil, defaultPlans()...)
		resp := env.call(t, "GET", "/plans/2", nil)
		require.Equal(t, fiber.StatusOK, resp.status)

		plan := resp.body["plan"].(map[string]interface{})
		assert.Equal(t, true, plan["_masked"])
		assert.Len(t, plan["servicos_inclusos"], 1)
		assert.Empty(t, resp.body["compare_plans"])
		assert.Equal(t, []uint{2}, env.views.views)
		assert.Contains(t, env.events.types(), string(analytics.EventPlanDetailOpened))
	})

	t.Run("member", func(t *testing.T) {
		env := newTestEnv(t, member, defaultPlans()...)
		resp := env.call(t, "GET", "/plans/2", nil)
		require.Equal(t, fiber.StatusOK, resp.status)

		plan := resp.body["plan"].(map[string]interface{})
		assert.Nil(t, plan["_masked"])
		assert.Len(t, plan["servicos_inclusos"], 2)
		assert.Len(t, resp.body["compare_plans"], 2)
	})
}

func TestClickPlan(t *testing.T) {
	env := newTestEnv(t, nil, defaultPlans()...)

	resp := env.call(t, "POST", "/plans/1/click", map[string]string{"session_id": "abc"})
	require.Equal(t, fiber.StatusOK, resp.status)
	assert.Equal(t, true, resp.body["success"])
	require.Len(t, env.plans.clicks, 1)
	require.NotNil(t, env.plans.clicks[0].SessionID)
	assert.Equal(t, "abc", *env.plans.clicks[0].SessionID)
	assert.Nil(t, env.plans.clicks[0].UserID)

	resp = env.call(t, "POST", "/plans/1/click", nil)
	require.Equal(t, fiber.StatusOK, resp.status)
	assert.Len(t, env.plans.clicks, 2)

	resp = env.call(t, "POST", "/plans/42/click", nil)
	assert.Equal(t, fiber.StatusNotFound, resp.status)
}

func TestConvertPlan(t *testing.T) {
	env := newTestEnv(t, nil, defaultPlans()...)

	resp := env.call(t, "POST", "/plans/1/convert", map[string]string{"name": "Ana", "cep": "01310-000"})
	assert.Equal(t, fiber.StatusBadRequest, resp.status)
	assert.Equal(t, "validation_error", resp.body["error"])
	assert.Empty(t, env.plans.leads)

	resp = env.call(t, "POST", "/plans/42/convert", map[string]string{"name": "Ana", "phone": "11999990000", "cep": "01310-000"})
	assert.Equal(t, fiber.StatusNotFound, resp.status)

	resp = env.call(t, "POST", "/plans/1/convert", map[string]string{"name": " Ana ", "phone": "11999990000", "cep": "01310-000"})
	require.Equal(t, fiber.StatusCreated, resp.status)
	assert.Equal(t, true, resp.body["success"])
	require.Len(t, env.plans.leads, 1)
	assert.Equal(t, env.plans.leads[0].UUID, resp.body["lead_id"])
	assert.Equal(t, "Ana", env.plans.leads[0].Name)
	assert.Equal(t, models.LEAD_STATUS_NEW, env.plans.leads[0].Status)
	assert.Contains(t, env.events.types(), string(analytics.EventLeadCaptured))
}

func TestCreateReview(t *testing.T) {
	env := newTestEnv(t, member, defaultPlans()...)
	body := map[string]interface{}{"nota": 5, "comentario": "Muito estável"}

	resp := env.call(t, "POST", "/plans/1/reviews", body)
	require.Equal(t, fiber.StatusCreated, resp.status)
	review := resp.body["review"].(map[string]interface{})
	assert.Equal(t, "Ana", review["author"])
	assert.EqualValues(t, 5, review["nota"])

	resp = env.call(t, "POST", "/plans/1/reviews", body)
	assert.Equal(t, fiber.StatusBadRequest, resp.status)
	assert.Equal(t, "already_reviewed", resp.body["error"])

	resp = env.call(t, "POST", "/plans/2/reviews", map[string]interface{}{"nota": 6, "comentario": "Muito estável"})
	assert.Equal(t, fiber.StatusBadRequest, resp.status)
	assert.Equal(t, "validation_error", resp.body["error"])

	resp = env.call(t, "POST", "/plans/2/reviews", map[string]interface{}{"nota": 4, "comentario": "ok"})
	assert.Equal(t, fiber.StatusBadRequest, resp.status)

	slugs, _ := env.badges.ListSlugs(context.Background(), member.UserID)
	assert.Contains(t, slugs, models.BadgeReviewer)
}

func TestFavorites(t *testing.T) {
	env := newTestEnv(t, member, defaultPlans()...)

	resp := env.call(t, "POST", "/favorites", map[string]uint{"plan_id": 2})
	require.Equal(t, fiber.StatusCreated, resp.status)
	// adding twice is fine
	resp = env.call(t, "POST", "/favorites", map[string]uint{"plan_id": 2})
	require.Equal(t, fiber.StatusCreated, resp.status)

	resp = env.call(t, "GET", "/favorites", nil)
	require.Equal(t, fiber.StatusOK, resp.status)
	favorites := planList(t, resp.body, "favorites")
	require.Len(t, favorites, 1)
	assert.Equal(t, true, favorites[0]["is_favorited"])

	resp = env.call(t, "POST", "/favorites", map[string]uint{"plan_id": 99})
	assert.Equal(t, fiber.StatusNotFound, resp.status)

	resp = env.call(t, "DELETE", "/favorites?plan_id=2", nil)
	require.Equal(t, fiber.StatusOK, resp.status)
	resp = env.call(t, "GET", "/favorites", nil)
	assert.Empty(t, resp.body["favorites"])

	resp = env.call(t, "DELETE", "/favorites", nil)
	assert.Equal(t, fiber.StatusBadRequest, resp.status)

	types := env.events.types()
	assert.Contains(t, types, string(analytics.EventFavoriteAdded))
	assert.Contains(t, types, string(analytics.EventFavoriteRemoved))
}

func TestAlerts(t *testing.T) {
	env := newTestEnv(t, member, defaultPlans()...)

	resp := env.call(t, "POST", "/alerts", map[string]interface{}{"cep": "01310-000", "max_price": 0})
	assert.Equal(t, fiber.StatusBadRequest, resp.status)

	resp = env.call(t, "POST", "/alerts", map[string]interface{}{"cep": "013-1", "max_price": 99.9})
	assert.Equal(t, fiber.StatusBadRequest, resp.status)
	assert.Equal(t, "invalid_cep", resp.body["error"])

	for i := 0; i < models.MaxActiveAlertsPerUser; i++ {
		resp = env.call(t, "POST", "/alerts", map[string]interface{}{"cep": "01310-000", "max_price": "99.90"})
		require.Equal(t, fiber.StatusCreated, resp.status)
	}
	alert := resp.body["alert"].(map[string]interface{})
	assert.Equal(t, "01310", alert["cep"])

	resp = env.call(t, "POST", "/alerts", map[string]interface{}{"cep": "01310-000", "max_price": "99.90"})
	assert.Equal(t, fiber.StatusBadRequest, resp.status)
	assert.Equal(t, "alert_limit_reached", resp.body["error"])

	resp = env.call(t, "GET", "/alerts", nil)
	require.Equal(t, fiber.StatusOK, resp.status)
	assert.Len(t, resp.body["alerts"], models.MaxActiveAlertsPerUser)

	resp = env.call(t, "DELETE", "/alerts?id=1", nil)
	require.Equal(t, fiber.StatusOK, resp.status)
	resp = env.call(t, "POST", "/alerts", map[string]interface{}{"cep": "04530", "max_price": "79.90"})
	assert.Equal(t, fiber.StatusCreated, resp.status)
}

func TestTrack(t *testing.T) {
	env := newTestEnv(t, nil)

	resp := env.call(t, "POST", "/track", map[string]interface{}{
		"type":       "PAGE_VIEW",
		"payload":    map[string]string{"path": "/"},
		"session_id": "visitor-1",
	})
	require.Equal(t, fiber.StatusOK, resp.status)
	assert.Equal(t, true, resp.body["success"])
	require.Len(t, env.events.events, 1)
	assert.Equal(t, "visitor-1", *env.events.events[0].SessionID)

	resp = env.call(t, "POST", "/track", map[string]string{"type": "LOGIN"})
	assert.Equal(t, fiber.StatusBadRequest, resp.status)
	assert.Equal(t, "event_not_allowed", resp.body["error"])
	assert.Len(t, env.events.events, 1)
}

func TestRecommend(t *testing.T) {
	env := newTestEnv(t, member, defaultPlans()...)

	resp := env.call(t, "POST", "/plans/recommend", map[string]interface{}{
		"pessoas":    3,
		"atividades": []string{"Streaming", "Home Office"},
	})
	require.Equal(t, fiber.StatusOK, resp.status)

	plans := planList(t, resp.body, "plans")
	require.Len(t, plans, 4)
	prev := plans[0]["compatibility_score"].(float64)
	for _, p := range plans[1:] {
		score := p["compatibility_score"].(float64)
		assert.LessOrEqual(t, score, prev)
		prev = score
	}

	profile, err := env.profile.GetByUserID(context.Background(), member.UserID)
	require.NoError(t, err)
	assert.Equal(t, 3, profile.HouseholdSize)
	assert.Empty(t, profile.Devices)
	assert.Contains(t, env.events.types(), string(analytics.EventQuestionnaireCompleted))

	resp = env.call(t, "POST", "/plans/recommend", map[string]interface{}{"pessoas": 0})
	assert.Equal(t, fiber.StatusBadRequest, resp.status)
}

func TestUserProfileAndHistory(t *testing.T) {
	env := newTestEnv(t, member, defaultPlans()...)
	require.NoError(t, env.users.Create(context.Background(), &models.User{Name: "Ana", Email: "ana@example.com", Role: models.ROLE_USER}))
	env.users.users[0].ID = member.UserID

	env.call(t, "GET", "/plans?cep=01310", nil)
	env.call(t, "GET", "/plans?cep=04530", nil)
	env.call(t, "GET", "/plans?cep=01310", nil)

	resp := env.call(t, "GET", "/user/history", nil)
	require.Equal(t, fiber.StatusOK, resp.status)
	history := planList(t, resp.body, "history")
	require.Len(t, history, 2)
	assert.Equal(t, "01310", history[0]["cep"])

	resp = env.call(t, "GET", "/user/profile", nil)
	require.Equal(t, fiber.StatusOK, resp.status)
	user := resp.body["user"].(map[string]interface{})
	assert.Equal(t, "ana@example.com", user["email"])
	assert.Nil(t, user["profile"])
	assert.Nil(t, user["last_login_at"])
	assert.NotEmpty(t, user["badges"])
	assert.Equal(t, "7", user["referral_code"])
	assert.Contains(t, user["avatar_url"], "gravatar.com/avatar/")
}

func TestRegisterAndLogin(t *testing.T) {
	env := newTestEnv(t, nil)
	register := map[string]string{"name": "Bruno", "email": "Bruno@Example.com", "password": "segredo1"}

	resp := env.call(t, "POST", "/auth/register", register)
	require.Equal(t, fiber.StatusCreated, resp.status)
	assert.EqualValues(t, 1, resp.body["user_id"])

	resp = env.call(t, "POST", "/auth/register", register)
	assert.Equal(t, fiber.StatusBadRequest, resp.status)
	assert.Equal(t, "email_taken", resp.body["error"])

	resp = env.call(t, "POST", "/auth/register", map[string]string{"name": "B", "email": "x@example.com", "password": "segredo1"})
	assert.Equal(t, fiber.StatusBadRequest, resp.status)
	assert.Equal(t, "validation_error", resp.body["error"])

	resp = env.call(t, "POST", "/auth/login", map[string]string{"email": "bruno@example.com", "password": "wrong-pass"})
	assert.Equal(t, fiber.StatusUnauthorized, resp.status)
	assert.Equal(t, "invalid_credentials", resp.body["error"])

	resp = env.call(t, "POST", "/auth/login", map[string]string{"email": "bruno@example.com", "password": "segredo1"})
	require.Equal(t, fiber.StatusOK, resp.status)
	user := resp.body["user"].(map[string]interface{})
	assert.Equal(t, "Bruno", user["name"])
	assert.Equal(t, false, user["is_admin"])
	assert.Contains(t, resp.header(fiber.HeaderSetCookie), "planocerto_session=")

	types := env.events.types()
	assert.Contains(t, types, string(analytics.EventSignupCompleted))
	assert.Contains(t, types, string(analytics.EventLogin))
}

func TestAdminRecomputeRanking(t *testing.T) {
	admin := &usercontext.UserContext{UserID: 1, IsLoggedIn: true, IsAdmin: true}

	env := newTestEnv(t, admin)
	resp := env.call(t, "POST", "/admin/ranking/recompute", nil)
	require.Equal(t, fiber.StatusAccepted, resp.status)
	assert.Equal(t, "job-1", resp.body["job_id"])
	assert.Equal(t, []uint{1}, env.jobs.enqueued)

	env.jobs.err = jobqueue.ErrJobAlreadyQueued
	resp = env.call(t, "POST", "/admin/ranking/recompute", nil)
	assert.Equal(t, fiber.StatusConflict, resp.status)
	assert.Equal(t, "already_queued", resp.body["error"])

	env.jobs.err = errors.New("redis down")
	resp = env.call(t, "POST", "/admin/ranking/recompute", nil)
	assert.Equal(t, fiber.StatusInternalServerError, resp.status)

	resp = env.call(t, "GET", "/admin/jobs", nil)
	require.Equal(t, fiber.StatusOK, resp.status)
	assert.EqualValues(t, 1, resp.body["queue_size"])
}

func TestStatsUnavailableWithoutService(t *testing.T) {
	env := newTestEnv(t, nil)
	resp := env.call(t, "GET", "/stats", nil)
	assert.Equal(t, fiber.StatusServiceUnavailable, resp.status)
}
