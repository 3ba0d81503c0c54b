package handler_test

import (
	"bytes"
	"context"
	"crypto/rand"
	"encoding/hex"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
	"github.com/xxxsen/common/webapi"

	"github.com/docgate-io/docgate/internal/access"
	"github.com/docgate-io/docgate/internal/config"
	"github.com/docgate-io/docgate/internal/extract"
	"github.com/docgate-io/docgate/internal/filestore"
	"github.com/docgate-io/docgate/internal/handler"
	"github.com/docgate-io/docgate/internal/middleware"
	"github.com/docgate-io/docgate/internal/model"
	"github.com/docgate-io/docgate/internal/pkg/password"
	"github.com/docgate-io/docgate/internal/pkg/timeutil"
	"github.com/docgate-io/docgate/internal/repo"
	"github.com/docgate-io/docgate/internal/service"
	"github.com/docgate-io/docgate/test/testutil"
)

type stubRetriever struct {
	hits []model.CandidateChunk
	err  error
	gotK int
}

func (s *stubRetriever) Retrieve(ctx context.Context, query string, k int, filters model.SearchFilters) ([]model.CandidateChunk, error) {
	s.gotK = k
	if s.err != nil {
		return nil, s.err
	}
	return s.hits, nil
}

type stubGenerator struct {
	reply string
}

func (s *stubGenerator) Generate(ctx context.Context, prompt string) (string, error) {
	return s.reply, nil
}

func (s *stubGenerator) MaxInputChars() int {
	return 0
}

type testEnv struct {
	router    http.Handler
	users     *repo.UserRepo
	docs      *repo.DocumentRepo
	store     filestore.Store
	retriever *stubRetriever
	generator *stubGenerator
}

func newTestID() string {
	buf := make([]byte, 16)
	_, _ = rand.Read(buf)
	return hex.EncodeToString(buf)
}

func setupEnv(t *testing.T) (*testEnv, func()) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	db, cleanup := testutil.OpenTestDB(t)
	userRepo := repo.NewUserRepo(db)
	clientRepo := repo.NewClientRepo(db)
	projectRepo := repo.NewProjectRepo(db)
	docRepo := repo.NewDocumentRepo(db)
	chunkRepo := repo.NewChunkRepo(db)

	jwtSecret := []byte("test-secret")
	authService := service.NewAuthService(userRepo, jwtSecret, time.Hour)
	adminService := service.NewAdminService(clientRepo, projectRepo, userRepo)

	resolver := access.NewResolver(userRepo)
	filter := access.NewFilter(docRepo, false)
	retriever := &stubRetriever{}
	generator := &stubGenerator{}
	composer := service.NewComposeService(generator)
	chatService := service.NewChatService(resolver, retriever, filter, composer, 5, 3)

	store, err := filestore.New(config.FileStoreConfig{
		Type: "local",
		Data: map[string]interface{}{"dir": t.TempDir()},
	})
	require.NoError(t, err)
	extractor, err := extract.New(config.ExtractorConfig{Type: "markdown"})
	require.NoError(t, err)
	documentService := service.NewDocumentService(docRepo, chunkRepo, projectRepo, store, extractor, nil, resolver, filter)

	deps := handler.RouterDeps{
		Auth:      handler.NewAuthHandler(authService),
		Chat:      handler.NewChatHandler(chatService),
		Documents: handler.NewDocumentHandler(documentService),
		Admin:     handler.NewAdminHandler(adminService),
		Files:     handler.NewFileHandler(store),
		JWTSecret: jwtSecret,
	}

	engine, err := webapi.NewEngine(
		"/api/v1",
		"",
		webapi.WithRegister(func(group *gin.RouterGroup) {
			handler.RegisterRoutes(group, deps)
		}),
		webapi.WithExtraMiddlewares(
			middleware.RequestID(),
			middleware.CORS(nil),
		),
	)
	require.NoError(t, err)

	env := &testEnv{
		router:    engine,
		users:     userRepo,
		docs:      docRepo,
		store:     store,
		retriever: retriever,
		generator: generator,
	}
	return env, cleanup
}

func seedUser(t *testing.T, env *testEnv, email, plain string, role model.Role, clientIDs, projectIDs []string) {
	t.Helper()
	hash, err := password.Hash(plain)
	require.NoError(t, err)
	now := timeutil.NowUnix()
	require.NoError(t, env.users.Create(context.Background(), &model.User{
		ID:           newTestID(),
		Email:        email,
		Name:         "test user",
		Role:         role,
		Status:       model.UserStatusActive,
		PasswordHash: hash,
		ClientIDs:    clientIDs,
		ProjectIDs:   projectIDs,
		Ctime:        now,
		Mtime:        now,
	}))
}

func seedDocument(t *testing.T, env *testEnv, clientID, projectID string) string {
	t.Helper()
	now := timeutil.NowUnix()
	id := newTestID()
	require.NoError(t, env.docs.Create(context.Background(), &model.Document{
		ID:        id,
		Title:     "doc " + id[:8],
		Status:    model.DocumentStatusProcessed,
		ClientID:  clientID,
		ProjectID: projectID,
		FileKey:   id,
		Ctime:     now,
		Mtime:     now,
	}))
	return id
}

type apiEnvelope struct {
	Code int             `json:"code"`
	Msg  string          `json:"msg"`
	Data json.RawMessage `json:"data"`
}

func doJSON(t *testing.T, env *testEnv, method, path, token string, body interface{}) (*httptest.ResponseRecorder, apiEnvelope) {
	t.Helper()
	var reader *bytes.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(payload)
	} else {
		reader = bytes.NewReader(nil)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	resp := httptest.NewRecorder()
	env.router.ServeHTTP(resp, req)

	var envelope apiEnvelope
	if err := json.Unmarshal(resp.Body.Bytes(), &envelope); err != nil {
		envelope = apiEnvelope{Code: -1}
	}
	return resp, envelope
}

func login(t *testing.T, env *testEnv, email, plain string) string {
	t.Helper()
	resp, envelope := doJSON(t, env, http.MethodPost, "/api/v1/auth/login", "", map[string]string{
		"email":    email,
		"password": plain,
	})
	require.Equal(t, http.StatusOK, resp.Code)
	require.Zero(t, envelope.Code)
	var data struct {
		Token string `json:"token"`
	}
	require.NoError(t, json.Unmarshal(envelope.Data, &data))
	require.NotEmpty(t, data.Token)
	return data.Token
}
