package api

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"github.com/acmei/landgrab/internal/api/apierr"
	"github.com/acmei/landgrab/internal/api/response"
	"github.com/acmei/landgrab/internal/factory"
	"github.com/acmei/landgrab/internal/model"
	"github.com/acmei/landgrab/internal/testutil"
)

// APITestSuite exercises the HTTP surface end to end against an
// in-memory application.
type APITestSuite struct {
	suite.Suite

	app    *factory.TestApp
	server *httptest.Server
	client *http.Client
}

func (s *APITestSuite) SetupTest() {
	s.app = factory.NewTestApp()

	router := NewRouter(RouterConfig{
		Logger:          testutil.NopLogger(),
		Storage:         s.app.Storage,
		LobbyController: s.app.LobbyController,
		GameController:  s.app.GameController,
		MapService:      s.app.MapService,
		Bus:             s.app.Bus,
	})

	s.server = httptest.NewServer(router)
	s.client = s.server.Client()
}

func (s *APITestSuite) TearDownTest() {
	s.server.Close()
	s.app.Bus.Close()
}

// do sends a JSON request, optionally authenticated, and returns the response
func (s *APITestSuite) do(method, path, token string, body any) *http.Response {
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		s.Require().NoError(err)
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequest(method, s.server.URL+path, reader)
	s.Require().NoError(err)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := s.client.Do(req)
	s.Require().NoError(err)
	return resp
}

// decode unmarshals a response body into out and closes it
func (s *APITestSuite) decode(resp *http.Response, out any) {
	defer resp.Body.Close()
	s.Require().NoError(json.NewDecoder(resp.Body).Decode(out))
}

// errorCode reads an error response body and returns its code
func (s *APITestSuite) errorCode(resp *http.Response) string {
	var body apierr.ErrorResponse
	s.decode(resp, &body)
	return body.Error.Code
}

// createSession creates a session with the default map
func (s *APITestSuite) createSession() response.CreatedGameResponse {
	resp := s.do(http.MethodPost, "/api/v1/games", "", nil)
	s.Require().Equal(http.StatusCreated, resp.StatusCode)

	var created response.CreatedGameResponse
	s.decode(resp, &created)
	return created
}

func (s *APITestSuite) TestHealthCheck() {
	resp := s.do(http.MethodGet, "/api/v1/health", "", nil)
	defer resp.Body.Close()
	s.Equal(http.StatusOK, resp.StatusCode)
}

func (s *APITestSuite) TestCreateSessionWithDefaultMap() {
	created := s.createSession()

	s.Equal(model.SessionID("SESSION00001"), created.SessionID)
	s.NotEmpty(created.JoinToken)
	s.NotEmpty(created.PlayerToken)
	s.Require().NotNil(created.Configuration)
	s.Require().Len(created.Configuration.Players, 1)
	s.Equal("Host", created.Configuration.Players[0].Name)
}

func (s *APITestSuite) TestCreateSessionWithUnknownMap() {
	resp := s.do(http.MethodPost, "/api/v1/games", "", map[string]any{
		"mapId": map[string]string{"kind": "user", "id": "nope"},
	})
	s.Equal(http.StatusNotFound, resp.StatusCode)
	s.Equal(apierr.CodeMapNotFound, s.errorCode(resp))
}

func (s *APITestSuite) TestJoinAndResolve() {
	created := s.createSession()

	resp := s.do(http.MethodPost, "/api/v1/games/join", "", map[string]string{
		"joinToken": created.JoinToken,
	})
	s.Require().Equal(http.StatusOK, resp.StatusCode)

	var joined response.JoinedGameResponse
	s.decode(resp, &joined)
	s.NotEmpty(joined.PlayerToken)

	// The guest sees the lobby but not the join token
	resp = s.do(http.MethodGet, "/api/v1/games/me", joined.PlayerToken, nil)
	s.Require().Equal(http.StatusOK, resp.StatusCode)

	var session response.SessionResponse
	s.decode(resp, &session)
	s.Equal(response.StateConfiguration, session.State)
	s.Equal(model.PlayerID(2), session.PlayerID)
	s.Require().NotNil(session.Configuration)
	s.Empty(session.Configuration.JoinToken)
	s.Len(session.Configuration.Players, 2)

	// The host still sees it
	resp = s.do(http.MethodGet, "/api/v1/games/me", created.PlayerToken, nil)
	s.Require().Equal(http.StatusOK, resp.StatusCode)

	s.decode(resp, &session)
	s.Equal(created.JoinToken, session.Configuration.JoinToken)
}

func (s *APITestSuite) TestJoinWithUnknownToken() {
	resp := s.do(http.MethodPost, "/api/v1/games/join", "", map[string]string{
		"joinToken": "bogus",
	})
	s.Equal(http.StatusNotFound, resp.StatusCode)
	s.Equal(apierr.CodeSessionNotFound, s.errorCode(resp))
}

func (s *APITestSuite) TestRenameAndRecolor() {
	created := s.createSession()

	resp := s.do(http.MethodPatch, "/api/v1/games/me/name", created.PlayerToken, map[string]string{
		"name": "Ada",
	})
	defer resp.Body.Close()
	s.Equal(http.StatusNoContent, resp.StatusCode)

	recolorBody := map[string]any{"color": model.Palette[3]}
	resp = s.do(http.MethodPatch, "/api/v1/games/me/color", created.PlayerToken, recolorBody)
	defer resp.Body.Close()
	s.Equal(http.StatusNoContent, resp.StatusCode)

	var session response.SessionResponse
	s.decode(s.do(http.MethodGet, "/api/v1/games/me", created.PlayerToken, nil), &session)
	s.Equal("Ada", session.Configuration.Players[0].Name)
	s.Equal(model.Palette[3], session.Configuration.Players[0].Color)
}

func (s *APITestSuite) TestRecolorOutsidePalette() {
	created := s.createSession()

	resp := s.do(http.MethodPatch, "/api/v1/games/me/color", created.PlayerToken, map[string]any{
		"color": model.Color{Red: 1, Green: 2, Blue: 3},
	})
	s.Equal(http.StatusBadRequest, resp.StatusCode)
	s.Equal(apierr.CodeColorNotAllowed, s.errorCode(resp))
}

func (s *APITestSuite) TestRecolorTakenColor() {
	created := s.createSession()
	s.decode(s.do(http.MethodPost, "/api/v1/games/join", "", map[string]string{
		"joinToken": created.JoinToken,
	}), new(response.JoinedGameResponse))

	// Palette[1] went to the joiner
	resp := s.do(http.MethodPatch, "/api/v1/games/me/color", created.PlayerToken, map[string]any{
		"color": model.Palette[1],
	})
	s.Equal(http.StatusConflict, resp.StatusCode)
	s.Equal(apierr.CodeColorTaken, s.errorCode(resp))
}

func (s *APITestSuite) TestStartLifecycle() {
	created := s.createSession()

	var joined response.JoinedGameResponse
	s.decode(s.do(http.MethodPost, "/api/v1/games/join", "", map[string]string{
		"joinToken": created.JoinToken,
	}), &joined)

	// Only the host can start
	resp := s.do(http.MethodPost, "/api/v1/games/me/start", joined.PlayerToken, nil)
	s.Equal(http.StatusForbidden, resp.StatusCode)
	s.Equal(apierr.CodeNotHost, s.errorCode(resp))

	resp = s.do(http.MethodPost, "/api/v1/games/me/start", created.PlayerToken, nil)
	s.Require().Equal(http.StatusOK, resp.StatusCode)

	var game model.Game
	s.decode(resp, &game)
	s.Equal(created.SessionID, game.ID)
	s.Len(game.Players, 2)
	s.Equal(model.StageCapitolPlacement, game.Turn.Stage)

	// Lobby operations now conflict
	resp = s.do(http.MethodPatch, "/api/v1/games/me/name", joined.PlayerToken, map[string]string{
		"name": "Late",
	})
	s.Equal(http.StatusConflict, resp.StatusCode)
	s.Equal(apierr.CodeAlreadyStarted, s.errorCode(resp))

	// The spent join token is gone
	resp = s.do(http.MethodPost, "/api/v1/games/join", "", map[string]string{
		"joinToken": created.JoinToken,
	})
	defer resp.Body.Close()
	s.Equal(http.StatusNotFound, resp.StatusCode)

	// Both players resolve to the game shape
	var session response.SessionResponse
	s.decode(s.do(http.MethodGet, "/api/v1/games/me", joined.PlayerToken, nil), &session)
	s.Equal(response.StateGame, session.State)
	s.Require().NotNil(session.Game)
	s.Nil(session.Configuration)
}

func (s *APITestSuite) TestSaveAndFetchGameState() {
	created := s.createSession()

	var game model.Game
	s.decode(s.do(http.MethodPost, "/api/v1/games/me/start", created.PlayerToken, nil), &game)

	game.Turn.Stage = model.StageTroopPlacement
	resp := s.do(http.MethodPut, "/api/v1/games/me", created.PlayerToken, map[string]any{
		"game": game,
	})
	defer resp.Body.Close()
	s.Equal(http.StatusNoContent, resp.StatusCode)

	var fetched model.Game
	s.decode(s.do(http.MethodGet, "/api/v1/games/me/state", created.PlayerToken, nil), &fetched)
	s.Equal(model.StageTroopPlacement, fetched.Turn.Stage)
}

func (s *APITestSuite) TestSaveRejectsMapChange() {
	created := s.createSession()

	var game model.Game
	s.decode(s.do(http.MethodPost, "/api/v1/games/me/start", created.PlayerToken, nil), &game)

	game.MapID = model.MapID{Kind: model.UserMap, ID: "other"}
	resp := s.do(http.MethodPut, "/api/v1/games/me", created.PlayerToken, map[string]any{
		"game": game,
	})
	s.Equal(http.StatusConflict, resp.StatusCode)
	s.Equal(apierr.CodeMapChangeNotAllowed, s.errorCode(resp))
}

func (s *APITestSuite) TestAuthRequired() {
	resp := s.do(http.MethodGet, "/api/v1/games/me", "", nil)
	s.Equal(http.StatusUnauthorized, resp.StatusCode)
	s.Equal(apierr.CodeUnauthorized, s.errorCode(resp))

	resp = s.do(http.MethodGet, "/api/v1/games/me", "bogus", nil)
	s.Equal(http.StatusUnauthorized, resp.StatusCode)
	s.Equal(apierr.CodeUnauthorized, s.errorCode(resp))
}

func (s *APITestSuite) TestMapCatalog() {
	resp := s.do(http.MethodPost, "/api/v1/maps", "", map[string]any{
		"name": "Pangea",
		"data": json.RawMessage(`{"countries":["x"]}`),
	})
	s.Require().Equal(http.StatusCreated, resp.StatusCode)

	var createdMap response.MapResponse
	s.decode(resp, &createdMap)
	s.Equal(model.UserMap, createdMap.ID.Kind)
	s.Equal("Pangea", createdMap.Name)

	resp = s.do(http.MethodGet, fmt.Sprintf("/api/v1/maps/%s/%s", createdMap.ID.Kind, createdMap.ID.ID), "", nil)
	s.Require().Equal(http.StatusOK, resp.StatusCode)

	var fetched response.MapResponse
	s.decode(resp, &fetched)
	s.Equal(createdMap.ID, fetched.ID)

	resp = s.do(http.MethodGet, "/api/v1/maps", "", nil)
	s.Require().Equal(http.StatusOK, resp.StatusCode)

	var list []response.MapResponse
	s.decode(resp, &list)
	s.Require().Len(list, 1)
	s.Equal(createdMap.ID, list[0].ID)
}

func (s *APITestSuite) TestMapGetRejectsUnknownKind() {
	resp := s.do(http.MethodGet, "/api/v1/maps/bogus/1", "", nil)
	s.Equal(http.StatusBadRequest, resp.StatusCode)
	s.Equal(apierr.CodeInvalidMapKind, s.errorCode(resp))
}

func (s *APITestSuite) TestEventStream() {
	created := s.createSession()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	// EventSource cannot set headers, so the stream accepts ?token=
	req, err := http.NewRequestWithContext(ctx, http.MethodGet,
		s.server.URL+"/api/v1/games/me/events?token="+created.PlayerToken, nil)
	s.Require().NoError(err)

	resp, err := s.client.Do(req)
	s.Require().NoError(err)
	defer resp.Body.Close()

	s.Require().Equal(http.StatusOK, resp.StatusCode)
	s.Equal("text/event-stream", resp.Header.Get("Content-Type"))

	reader := bufio.NewReader(resp.Body)
	line, err := reader.ReadString('\n')
	s.Require().NoError(err)
	s.Equal("event: connected", strings.TrimSpace(line))

	// A lobby change while connected shows up on the stream
	renameResp := s.do(http.MethodPatch, "/api/v1/games/me/name", created.PlayerToken, map[string]string{
		"name": "Ada",
	})
	renameResp.Body.Close()

	var eventLine string
	for {
		line, err = reader.ReadString('\n')
		s.Require().NoError(err)
		if strings.HasPrefix(line, "event: ") && strings.TrimSpace(line) != "event: connected" {
			eventLine = strings.TrimSpace(line)
			break
		}
	}
	s.Equal("event: lobby_changed", eventLine)

	dataLine, err := reader.ReadString('\n')
	s.Require().NoError(err)
	s.Require().True(strings.HasPrefix(dataLine, "data: "))

	var ev model.Event
	s.Require().NoError(json.Unmarshal([]byte(strings.TrimPrefix(strings.TrimSpace(dataLine), "data: ")), &ev))
	s.Equal(model.EventLobbyChanged, ev.Type)
	s.Equal(created.SessionID, ev.SessionID)
}

func TestAPITestSuite(t *testing.T) {
	suite.Run(t, new(APITestSuite))
}
