package test

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"cinechat/api"
	"cinechat/auth"
	"cinechat/relay"
	"cinechat/repositories"
	"cinechat/services"
	"cinechat/ws"

	"github.com/dgraph-io/badger/v4"
	"github.com/gorilla/websocket"
	"github.com/mama165/sdk-go/logs"
	"github.com/stretchr/testify/require"
)

func Test_Scenario(t *testing.T) {
	req := require.New(t)
	// Reduced to 16 Mo for testing (avoid 20 Go of storage)
	db, err := badger.Open(badger.DefaultOptions(t.TempDir()).
		WithLoggingLevel(badger.ERROR).
		WithValueLogFileSize(16 << 20))
	req.NoError(err)

	// 1. Wire the full gateway the way the binary does
	log := logs.GetLoggerFromLevel(slog.LevelDebug)
	userRepository := repositories.NewUserRepository(db)
	authenticator := auth.NewAuthenticator([]byte("integration-secret"), time.Hour, userRepository)
	authService := services.NewAuthService(userRepository, authenticator)
	messageRelay := relay.New(log, false)

	router := api.NewRouter(
		log,
		auth.NewGate(authenticator, log),
		api.NewAuthHandler(log, authService),
		api.NewUserHandler(log, authService),
		api.NewMovieHandler(log, repositories.NewMovieRepository(db)),
		api.NewGenreHandler(log, repositories.NewGenreRepository(db)),
		ws.NewHandler(log, messageRelay, authenticator, true, 16),
	)
	server := httptest.NewServer(router.Handler())

	// Clean everything at the end of the test
	t.Cleanup(func() {
		server.Close()
		messageRelay.Shutdown()
		db.Close()
	})

	// 2. Register two accounts over HTTP
	aliceToken := register(t, server.URL, "alice@example.com")
	bobToken := register(t, server.URL, "bob@example.com")

	// 3. Login yields a working credential too
	loginBody := map[string]string{"email": "alice@example.com", "password": "Str0ng&LongPassword!"}
	response := postJSON(t, server.URL+"/api/auth/login", loginBody)
	req.Equal(http.StatusOK, response.StatusCode)
	response.Body.Close()

	// 4. The credential opens the protected movie catalog
	movie := createMovie(t, server.URL, aliceToken)
	req.NotEmpty(movie.ID)

	// 5. Both users connect their sockets and meet in a room
	wsURL := "ws" + strings.TrimPrefix(server.URL, "http") + "/ws?token="
	alice, _, err := websocket.DefaultDialer.Dial(wsURL+aliceToken, nil)
	req.NoError(err)
	t.Cleanup(func() { _ = alice.Close() })
	bob, _, err := websocket.DefaultDialer.Dial(wsURL+bobToken, nil)
	req.NoError(err)
	t.Cleanup(func() { _ = bob.Close() })

	subscribe := []byte(`{"type":"subscribe","room":"screening-night"}`)
	req.NoError(alice.WriteMessage(websocket.TextMessage, subscribe))
	req.NoError(bob.WriteMessage(websocket.TextMessage, subscribe))
	req.Eventually(func() bool {
		return len(messageRelay.RoomMembers("screening-night")) == 2
	}, 2*time.Second, 10*time.Millisecond)

	// 6. When alice posts a chat event about the movie she created
	payload := []byte(`{"type":"chat","room":"screening-night","text":"watch Citizen Kane tonight"}`)
	req.NoError(alice.WriteMessage(websocket.TextMessage, payload))

	// Then bob receives exactly the bytes alice sent
	req.NoError(bob.SetReadDeadline(time.Now().Add(2 * time.Second)))
	_, received, err := bob.ReadMessage()
	req.NoError(err)
	req.Equal(payload, received)
}

func register(t *testing.T, baseURL, email string) string {
	t.Helper()

	response := postJSON(t, baseURL+"/api/users/", map[string]string{
		"email":    email,
		"password": "Str0ng&LongPassword!",
	})
	defer response.Body.Close()
	require.Equal(t, http.StatusCreated, response.StatusCode)

	var body map[string]string
	require.NoError(t, json.NewDecoder(response.Body).Decode(&body))
	require.NotEmpty(t, body["authToken"])
	return body["authToken"]
}

func createMovie(t *testing.T, baseURL, token string) repositories.Movie {
	t.Helper()

	var buf bytes.Buffer
	require.NoError(t, json.NewEncoder(&buf).Encode(map[string]any{
		"title": "Citizen Kane", "year": 1941, "genre": "Drama", "rating": 8.3,
	}))
	request, err := http.NewRequest(http.MethodPost, baseURL+"/api/movies/", &buf)
	require.NoError(t, err)
	request.Header.Set("Content-Type", "application/json")
	request.Header.Set("Authorization", "Bearer "+token)

	response, err := http.DefaultClient.Do(request)
	require.NoError(t, err)
	defer response.Body.Close()
	require.Equal(t, http.StatusCreated, response.StatusCode)

	var movie repositories.Movie
	require.NoError(t, json.NewDecoder(response.Body).Decode(&movie))
	return movie
}

func postJSON(t *testing.T, url string, body any) *http.Response {
	t.Helper()

	var buf bytes.Buffer
	require.NoError(t, json.NewEncoder(&buf).Encode(body))
	response, err := http.Post(url, "application/json", &buf)
	require.NoError(t, err)
	return response
}
