package main

import (
	"bytes"
	"context"
	"fmt"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/RoGogDBD/salesitems/internal/auth"
	"github.com/RoGogDBD/salesitems/internal/fakeapi"
	"github.com/RoGogDBD/salesitems/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type cliEnv struct {
	storage     *fakeapi.MemStorage
	apiURL      string
	sessionFile string
}

func newCLIEnv(t *testing.T) *cliEnv {
	t.Helper()
	storage := fakeapi.NewMemStorage()
	storage.Save(models.Item{Description: "Bike", Price: 100, SellerEmail: "anna@example.com", CreatedAt: 1625155200})
	storage.Save(models.Item{Description: "Car", Price: 5000, SellerEmail: "bob@example.com"})
	storage.Save(models.Item{Description: "Boat", Price: 3000, SellerEmail: "bob@example.com"})

	srv := httptest.NewServer(fakeapi.NewRouter(fakeapi.NewHandler(storage, nil), fakeapi.RouterOptions{}))
	t.Cleanup(srv.Close)

	dir := t.TempDir()
	env := &cliEnv{
		storage:     storage,
		apiURL:      srv.URL + "/api/",
		sessionFile: filepath.Join(dir, "session.json"),
	}

	cfgPath := filepath.Join(dir, "config.yaml")
	cfg := fmt.Sprintf("api:\n  base_url: %s\nauth:\n  session_file: %s\ntelemetry:\n  metrics_enabled: false\n", env.apiURL, env.sessionFile)
	require.NoError(t, os.WriteFile(cfgPath, []byte(cfg), 0o600))

	t.Setenv("CONFIG_PATH", cfgPath)
	for _, key := range []string{"SALESITEMS_API_URL", "FIREBASE_API_KEY", "FIREBASE_PROJECT_ID", "FIREBASE_AUTH_EMULATOR_HOST"} {
		t.Setenv(key, "")
	}
	return env
}

func (e *cliEnv) signIn(t *testing.T, email string) {
	t.Helper()
	require.NoError(t, auth.NewFileStore(e.sessionFile).Save(&auth.User{
		UID:       "uid-" + email,
		Email:     email,
		IDToken:   "token",
		ExpiresAt: time.Now().Add(time.Hour),
	}))
}

func runCLI(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	err := run(context.Background(), args, &out)
	return out.String(), err
}

func TestListCommand(t *testing.T) {
	newCLIEnv(t)

	out, err := runCLI(t, "list", "-sort", "price", "-desc")
	require.NoError(t, err)
	assert.Less(t, strings.Index(out, "Car"), strings.Index(out, "Boat"))
	assert.Less(t, strings.Index(out, "Boat"), strings.Index(out, "Bike"))
	assert.Contains(t, out, "3 of 3 items, sort: price desc")

	out, err = runCLI(t, "list", "-max-price", "3000", "-keyword", "b")
	require.NoError(t, err)
	assert.Contains(t, out, "Bike")
	assert.Contains(t, out, "Boat")
	assert.NotContains(t, out, "Car")

	_, err = runCLI(t, "list", "-sort", "weight")
	assert.Error(t, err)
}

func TestListCommandUnreachable(t *testing.T) {
	newCLIEnv(t)

	srv := httptest.NewServer(nil)
	dead := srv.URL + "/api/"
	srv.Close()

	out, err := runCLI(t, "-api", dead, "list")
	assert.ErrorIs(t, err, errReported)
	assert.True(t, strings.HasPrefix(out, "Problem: "), out)
}

func TestGetCommand(t *testing.T) {
	newCLIEnv(t)

	out, err := runCLI(t, "get", "1")
	require.NoError(t, err)
	assert.Contains(t, out, "Bike")
	assert.Contains(t, out, "07/01/2021")

	out, err = runCLI(t, "get", "99")
	assert.ErrorIs(t, err, errReported)
	assert.Contains(t, out, "Problem:")

	_, err = runCLI(t, "get", "abc")
	assert.Error(t, err)
}

func TestAddCommand(t *testing.T) {
	env := newCLIEnv(t)

	out, err := runCLI(t, "add", "-description", "Lamp", "-price", "25")
	assert.ErrorIs(t, err, errReported)
	assert.Equal(t, "Problem: sign in to add items\n", out)

	env.signIn(t, "anna@example.com")

	out, err = runCLI(t, "add", "-description", " ", "-price", "x", "-picture", "nope")
	assert.ErrorIs(t, err, errReported)
	assert.Equal(t, "description: Description cannot be empty\npictureUrl: Enter a valid URL\nprice: Enter a valid number\n", out)
	assert.Equal(t, 3, env.storage.Len())

	out, err = runCLI(t, "add", "-description", "Lamp", "-price", "25")
	require.NoError(t, err)
	assert.Contains(t, out, `Added "Lamp", 4 items listed`)

	items := env.storage.List()
	lamp := items[len(items)-1]
	assert.Equal(t, "anna@example.com", lamp.SellerEmail)
	assert.Equal(t, "88888888", lamp.SellerPhone)
}

func TestDeleteCommand(t *testing.T) {
	env := newCLIEnv(t)

	out, err := runCLI(t, "delete", "1")
	assert.ErrorIs(t, err, errReported)
	assert.Contains(t, out, "sign in to delete items")

	env.signIn(t, "anna@example.com")

	out, err = runCLI(t, "delete", "2")
	assert.ErrorIs(t, err, errReported)
	assert.Contains(t, out, "only the seller can delete this item")
	assert.Equal(t, 3, env.storage.Len())

	out, err = runCLI(t, "delete", "1")
	require.NoError(t, err)
	assert.Equal(t, "Deleted item 1\n", out)
	assert.Equal(t, 2, env.storage.Len())
}

func TestSessionCommands(t *testing.T) {
	env := newCLIEnv(t)

	out, err := runCLI(t, "whoami")
	require.NoError(t, err)
	assert.Equal(t, "Not signed in\n", out)

	env.signIn(t, "anna@example.com")
	out, err = runCLI(t, "whoami")
	require.NoError(t, err)
	assert.Equal(t, "anna@example.com\n", out)

	out, err = runCLI(t, "login", "-email", "", "-password", "")
	assert.ErrorIs(t, err, errReported)
	assert.Equal(t, "Problem: email and password must not be empty\n", out)

	out, err = runCLI(t, "logout")
	require.NoError(t, err)
	assert.Equal(t, "Signed out\n", out)

	out, err = runCLI(t, "whoami")
	require.NoError(t, err)
	assert.Equal(t, "Not signed in\n", out)
}

func TestUnknownCommand(t *testing.T) {
	newCLIEnv(t)

	out, err := runCLI(t, "frobnicate")
	assert.ErrorIs(t, err, errReported)
	assert.Contains(t, out, `unknown command "frobnicate"`)
}
