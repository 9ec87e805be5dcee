package e2e_test

import (
	"context"
	"encoding/json"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/grandline/server/internal/api"
	"github.com/grandline/server/internal/factory"
	"github.com/grandline/server/internal/services/auth"
)

// cliRunner manages CLI binary execution
type cliRunner struct {
	binaryPath string
	serverURL  string
	tokenFile  string
}

func newCLIRunner(t *testing.T, serverURL string) *cliRunner {
	t.Helper()

	projectRoot := findProjectRoot(t)

	// Build the CLI binary
	binaryPath := filepath.Join(projectRoot, "bin", "glgame-test")
	cmd := exec.Command("go", "build", "-o", binaryPath, "./cmd/glgame")
	cmd.Dir = projectRoot
	output, err := cmd.CombinedOutput()
	require.NoError(t, err, "failed to build CLI: %s", string(output))

	return &cliRunner{
		binaryPath: binaryPath,
		serverURL:  serverURL,
		tokenFile:  filepath.Join(t.TempDir(), "token"),
	}
}

func (r *cliRunner) run(args ...string) (string, error) {
	fullArgs := append([]string{
		"--server", r.serverURL,
		"--token-file", r.tokenFile,
		"--output", "json",
	}, args...)

	cmd := exec.Command(r.binaryPath, fullArgs...)
	output, err := cmd.CombinedOutput()
	return string(output), err
}

func (r *cliRunner) runWithToken(token string, args ...string) (string, error) {
	fullArgs := append([]string{
		"--server", r.serverURL,
		"--token", token,
		"--output", "json",
	}, args...)

	cmd := exec.Command(r.binaryPath, fullArgs...)
	output, err := cmd.CombinedOutput()
	return string(output), err
}

func findProjectRoot(t *testing.T) string {
	t.Helper()

	dir, err := os.Getwd()
	require.NoError(t, err)

	for {
		if _, err := os.Stat(filepath.Join(dir, "go.mod")); err == nil {
			return dir
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			t.Fatal("could not find project root (go.mod)")
		}
		dir = parent
	}
}

// testServer manages a real HTTP server for e2e tests
type testServer struct {
	server   *http.Server
	addr     string
	shutdown func()
}

func startTestServer(t *testing.T) *testServer {
	t.Helper()

	// Find a free port
	listener, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	addr := listener.Addr().String()
	require.NoError(t, listener.Close())

	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError}))

	// Exercise the sqlite backend end to end
	app, err := factory.New(factory.Config{
		AuthConfig:  auth.Config{Secret: "e2e-test-secret"},
		Logger:      logger,
		StorageType: factory.StorageTypeSQLite,
		SQLitePath:  filepath.Join(t.TempDir(), "game.db"),
	})
	require.NoError(t, err)

	require.NoError(t, app.ShopService.EnsureCatalog(context.Background()))

	router := api.NewRouter(api.RouterConfig{
		Logger:           logger,
		AuthService:      app.AuthService,
		CharacterService: app.CharacterService,
		ShopService:      app.ShopService,
		WorldMapService:  app.WorldMapService,
		Gateway:          app.Gateway,
	})

	server := &http.Server{
		Addr:    addr,
		Handler: router,
	}

	go func() {
		if err := server.ListenAndServe(); err != http.ErrServerClosed {
			t.Logf("server error: %v", err)
		}
	}()

	serverURL := "http://" + addr
	waitForServer(t, serverURL+"/api/v1/health")

	return &testServer{
		server: server,
		addr:   serverURL,
		shutdown: func() {
			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			_ = server.Shutdown(ctx)
			app.Hub.Close()
			_ = app.Storage.Close()
		},
	}
}

func waitForServer(t *testing.T, url string) {
	t.Helper()

	client := &http.Client{Timeout: 100 * time.Millisecond}
	deadline := time.Now().Add(5 * time.Second)

	for time.Now().Before(deadline) {
		resp, err := client.Get(url)
		if err == nil {
			_ = resp.Body.Close()
			if resp.StatusCode == http.StatusOK {
				return
			}
		}
		time.Sleep(50 * time.Millisecond)
	}

	t.Fatal("server did not become ready in time")
}

// Response types for JSON parsing

type authResponse struct {
	User struct {
		ID       string `json:"id"`
		Username string `json:"username"`
	} `json:"user"`
	Token string `json:"token"`
}

type characterResponse struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	Faction   string `json:"faction"`
	Level     int    `json:"level"`
	Berries   int    `json:"berries"`
	MapRegion string `json:"map_region"`
	X         int    `json:"x"`
	Y         int    `json:"y"`
}

type shopResponse struct {
	Items []struct {
		ID    string `json:"id"`
		Name  string `json:"name"`
		Type  string `json:"type"`
		Price int    `json:"price"`
	} `json:"items"`
}

type inventoryResponse struct {
	Berries int `json:"berries"`
	Items   []struct {
		Item struct {
			Name string `json:"name"`
		} `json:"item"`
		Quantity int `json:"quantity"`
	} `json:"items"`
}

type buyResponse struct {
	Berries  int    `json:"berries"`
	ItemID   string `json:"item_id"`
	Quantity int    `json:"quantity"`
}

type tileMapResponse struct {
	Region string  `json:"region"`
	Width  int     `json:"width"`
	Height int     `json:"height"`
	Tiles  [][]int `json:"tiles"`
}

type moveResponse struct {
	X      int  `json:"x"`
	Y      int  `json:"y"`
	AtPort bool `json:"at_port"`
}

type healthResponse struct {
	Status string `json:"status"`
}

// Tests

func TestCLI_HealthCheck(t *testing.T) {
	ts := startTestServer(t)
	defer ts.shutdown()

	cli := newCLIRunner(t, ts.addr)

	output, err := cli.run("health")
	require.NoError(t, err, "output: %s", output)

	var resp healthResponse
	require.NoError(t, json.Unmarshal([]byte(output), &resp))
	assert.Equal(t, "ok", resp.Status)
}

func TestCLI_AuthCommands(t *testing.T) {
	ts := startTestServer(t)
	defer ts.shutdown()

	cli := newCLIRunner(t, ts.addr)

	// Register
	output, err := cli.run("auth", "register", "--user", "luffy", "--pass", "meat12345")
	require.NoError(t, err, "output: %s", output)

	var registerResp authResponse
	require.NoError(t, json.Unmarshal([]byte(output), &registerResp))
	assert.Equal(t, "luffy", registerResp.User.Username)
	assert.NotEmpty(t, registerResp.Token)

	// Login
	output, err = cli.run("auth", "login", "--user", "luffy", "--pass", "meat12345")
	require.NoError(t, err, "output: %s", output)

	var loginResp authResponse
	require.NoError(t, json.Unmarshal([]byte(output), &loginResp))
	assert.Equal(t, registerResp.User.ID, loginResp.User.ID)

	// Registration saved the token, so authenticated commands work
	// from the token file without an explicit --token
	output, err = cli.run("character", "get")
	assert.Error(t, err, "no character exists yet")
	assert.Contains(t, strings.ToLower(output), "character")
}

func TestCLI_CharacterCommands(t *testing.T) {
	ts := startTestServer(t)
	defer ts.shutdown()

	cli := newCLIRunner(t, ts.addr)

	output, err := cli.run("auth", "register", "--user", "nami", "--pass", "tangerines")
	require.NoError(t, err, "output: %s", output)
	var auth authResponse
	require.NoError(t, json.Unmarshal([]byte(output), &auth))
	token := auth.Token

	// Create character
	output, err = cli.runWithToken(token, "character", "create", "--name", "Nami", "--faction", "PIRATE")
	require.NoError(t, err, "output: %s", output)

	var char characterResponse
	require.NoError(t, json.Unmarshal([]byte(output), &char))
	assert.Equal(t, "Nami", char.Name)
	assert.Equal(t, "PIRATE", char.Faction)
	assert.Equal(t, 1, char.Level)
	assert.Equal(t, 500, char.Berries)
	assert.Equal(t, "East Blue", char.MapRegion)
	assert.Equal(t, 6, char.X)
	assert.Equal(t, 10, char.Y)

	// Get character
	output, err = cli.runWithToken(token, "character", "get")
	require.NoError(t, err, "output: %s", output)

	var fetched characterResponse
	require.NoError(t, json.Unmarshal([]byte(output), &fetched))
	assert.Equal(t, char.ID, fetched.ID)

	// A second character is rejected
	output, err = cli.runWithToken(token, "character", "create", "--name", "Nojiko", "--faction", "MARINE")
	assert.Error(t, err, "second character should be rejected")
	assert.Contains(t, strings.ToLower(output), "character")
}

func TestCLI_ShopFlow(t *testing.T) {
	ts := startTestServer(t)
	defer ts.shutdown()

	cli := newCLIRunner(t, ts.addr)

	output, err := cli.run("auth", "register", "--user", "zoro", "--pass", "santoryu1")
	require.NoError(t, err, "output: %s", output)
	var auth authResponse
	require.NoError(t, json.Unmarshal([]byte(output), &auth))
	token := auth.Token

	_, err = cli.runWithToken(token, "character", "create", "--name", "Zoro", "--faction", "BOUNTY_HUNTER")
	require.NoError(t, err)

	// List the catalog and pick the sword
	output, err = cli.runWithToken(token, "shop", "list")
	require.NoError(t, err, "output: %s", output)

	var shop shopResponse
	require.NoError(t, json.Unmarshal([]byte(output), &shop))
	require.NotEmpty(t, shop.Items)

	var swordID string
	for _, item := range shop.Items {
		if item.Name == "Wooden Sword" {
			swordID = item.ID
		}
	}
	require.NotEmpty(t, swordID, "catalog should contain the Wooden Sword")

	// Buy two swords
	output, err = cli.runWithToken(token, "shop", "buy", swordID, "-q", "2")
	require.NoError(t, err, "output: %s", output)

	var buy buyResponse
	require.NoError(t, json.Unmarshal([]byte(output), &buy))
	assert.Equal(t, 200, buy.Berries)
	assert.Equal(t, 2, buy.Quantity)

	// Inventory shows the stack and the remaining balance
	output, err = cli.runWithToken(token, "shop", "inventory")
	require.NoError(t, err, "output: %s", output)

	var inv inventoryResponse
	require.NoError(t, json.Unmarshal([]byte(output), &inv))
	assert.Equal(t, 200, inv.Berries)
	require.Len(t, inv.Items, 1)
	assert.Equal(t, "Wooden Sword", inv.Items[0].Item.Name)
	assert.Equal(t, 2, inv.Items[0].Quantity)

	// An unaffordable purchase fails and changes nothing
	output, err = cli.runWithToken(token, "shop", "buy", swordID, "-q", "10")
	assert.Error(t, err, "should not afford 10 swords on 200 berries")
	assert.Contains(t, strings.ToLower(output), "berries")

	output, err = cli.runWithToken(token, "shop", "inventory")
	require.NoError(t, err, "output: %s", output)
	require.NoError(t, json.Unmarshal([]byte(output), &inv))
	assert.Equal(t, 200, inv.Berries)
	assert.Equal(t, 2, inv.Items[0].Quantity)
}

func TestCLI_MapCommands(t *testing.T) {
	ts := startTestServer(t)
	defer ts.shutdown()

	cli := newCLIRunner(t, ts.addr)

	output, err := cli.run("auth", "register", "--user", "usopp", "--pass", "slingshot8")
	require.NoError(t, err, "output: %s", output)
	var auth authResponse
	require.NoError(t, json.Unmarshal([]byte(output), &auth))
	token := auth.Token

	_, err = cli.runWithToken(token, "character", "create", "--name", "Usopp", "--faction", "PIRATE")
	require.NoError(t, err)

	// Show the map
	output, err = cli.runWithToken(token, "map", "show")
	require.NoError(t, err, "output: %s", output)

	var tiles tileMapResponse
	require.NoError(t, json.Unmarshal([]byte(output), &tiles))
	assert.Equal(t, "East Blue", tiles.Region)
	assert.Equal(t, 15, tiles.Width)
	assert.Equal(t, 15, tiles.Height)

	// Walk south toward the port: spawn (6,10) -> (6,11) -> (6,12)
	output, err = cli.runWithToken(token, "map", "move", "down")
	require.NoError(t, err, "output: %s", output)

	var move moveResponse
	require.NoError(t, json.Unmarshal([]byte(output), &move))
	assert.Equal(t, 6, move.X)
	assert.Equal(t, 11, move.Y)
	assert.False(t, move.AtPort)

	output, err = cli.runWithToken(token, "map", "move", "down")
	require.NoError(t, err, "output: %s", output)
	require.NoError(t, json.Unmarshal([]byte(output), &move))
	assert.Equal(t, 12, move.Y)
	assert.True(t, move.AtPort)

	// Water west of the pier blocks the step
	output, err = cli.runWithToken(token, "map", "move", "left")
	assert.Error(t, err, "stepping into water should fail")
	assert.Contains(t, strings.ToLower(output), "tile")
}

func TestCLI_ErrorHandling(t *testing.T) {
	ts := startTestServer(t)
	defer ts.shutdown()

	cli := newCLIRunner(t, ts.addr)

	// Authenticated command without credentials
	output, err := cli.run("character", "get")
	assert.Error(t, err)

	// Duplicate registration
	output, err = cli.run("auth", "register", "--user", "sanji", "--pass", "allblue99")
	require.NoError(t, err, "output: %s", output)

	output, err = cli.run("auth", "register", "--user", "sanji", "--pass", "different")
	assert.Error(t, err)
	assert.Contains(t, strings.ToLower(output), "username")

	// Wrong password
	output, err = cli.run("auth", "login", "--user", "sanji", "--pass", "wrong")
	assert.Error(t, err)
}
